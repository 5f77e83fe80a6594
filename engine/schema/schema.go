// Package schema decodes the JSON chunk of a GLB into a typed Document.
// Decoding is shape-only: wrong JSON types and missing required fields fail with MalformedSchema,
// while index bounds and format support are checked later by the resolver and the scene builder
// so their errors can name the failing reference.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-glb/common"
)

// missingFieldError reports a required key that is absent or null.
type missingFieldError struct {
	owner string
	field string
}

func (e *missingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.owner, e.field)
}

// Parse decodes JSON text into a Document.
//
// Parameters:
//   - jsonText: the JSON chunk payload
//
// Returns:
//   - *Document: the decoded document
//   - error: MalformedSchema when the JSON does not match the expected shape
func Parse(jsonText []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(jsonText, &doc); err != nil {
		return nil, common.WrapError(common.KindMalformedSchema, "document", err)
	}
	return &doc, nil
}

// DefaultScene returns the index of the scene to render: the document's scene field when present, else 0.
//
// Returns:
//   - int: the scene index
func (d *Document) DefaultScene() int {
	if d.Scene == nil {
		return 0
	}
	return *d.Scene
}

// CheckSupport rejects documents whose asset version or required extensions this loader cannot handle.
//
// Returns:
//   - error: UnsupportedFormat, or nil
func (d *Document) CheckSupport() error {
	if !strings.HasPrefix(d.Asset.Version, "2.") {
		return common.NewError(common.KindUnsupportedFormat, "asset", "version %q, want 2.x", d.Asset.Version)
	}
	if len(d.ExtensionsRequired) > 0 {
		return common.NewError(common.KindUnsupportedFormat, "extensionsRequired", "unhandled extensions %s", strings.Join(d.ExtensionsRequired, ", "))
	}
	return nil
}

// requireFields checks that every key is present and non-null in the JSON object, then decodes it into v.
func requireFields(data []byte, v any, owner string, keys ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%s: %w", owner, err)
	}
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok || string(raw) == "null" {
			return &missingFieldError{owner: owner, field: k}
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", owner, err)
	}
	return nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	return requireFields(data, (*plain)(d), "document", "asset")
}

func (a *Asset) UnmarshalJSON(data []byte) error {
	type plain Asset
	return requireFields(data, (*plain)(a), "asset", "version")
}

func (m *Mesh) UnmarshalJSON(data []byte) error {
	type plain Mesh
	return requireFields(data, (*plain)(m), "mesh", "primitives")
}

func (p *Primitive) UnmarshalJSON(data []byte) error {
	type plain Primitive
	return requireFields(data, (*plain)(p), "primitive", "attributes")
}

func (a *Accessor) UnmarshalJSON(data []byte) error {
	type plain Accessor
	return requireFields(data, (*plain)(a), "accessor", "bufferView", "componentType", "count", "type")
}

func (bv *BufferView) UnmarshalJSON(data []byte) error {
	type plain BufferView
	return requireFields(data, (*plain)(bv), "bufferView", "buffer", "byteLength")
}

func (b *Buffer) UnmarshalJSON(data []byte) error {
	type plain Buffer
	return requireFields(data, (*plain)(b), "buffer", "byteLength")
}

func (t *TextureInfo) UnmarshalJSON(data []byte) error {
	type plain TextureInfo
	return requireFields(data, (*plain)(t), "textureInfo", "index")
}

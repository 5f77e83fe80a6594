// Package glbtest builds GLB fixtures in memory for tests.
package glbtest

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
)

// Build assembles a GLB from raw JSON text and a binary payload. Lengths are written as given,
// with no padding added.
//
// Parameters:
//   - jsonText: the JSON chunk payload
//   - bin: the BIN chunk payload
//
// Returns:
//   - []byte: the complete GLB
func Build(jsonText, bin []byte) []byte {
	total := 12 + 8 + len(jsonText) + 8 + len(bin)
	out := make([]byte, 0, total)
	out = binary.LittleEndian.AppendUint32(out, 0x46546C67)
	out = binary.LittleEndian.AppendUint32(out, 2)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(jsonText)))
	out = binary.LittleEndian.AppendUint32(out, 0x4E4F534A)
	out = append(out, jsonText...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(bin)))
	out = binary.LittleEndian.AppendUint32(out, 0x004E4942)
	out = append(out, bin...)
	return out
}

// BuildDocument marshals doc and assembles it with bin into a GLB.
//
// Parameters:
//   - t: the calling test
//   - doc: the document to embed
//   - bin: the BIN chunk payload
//
// Returns:
//   - []byte: the complete GLB
func BuildDocument(t testing.TB, doc *schema.Document, bin []byte) []byte {
	t.Helper()
	text, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}
	return Build(text, bin)
}

// Float32s encodes values as little-endian float32s.
func Float32s(values ...float32) []byte {
	out := make([]byte, 0, len(values)*4)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

// Uint16s encodes values as little-endian uint16s.
func Uint16s(values ...uint16) []byte {
	out := make([]byte, 0, len(values)*2)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Minimal byte layout of the payload returned by Minimal.
const (
	MinimalPositionOffset = 0
	MinimalPositionLength = 36
	MinimalIndexOffset    = 36
	MinimalIndexLength    = 6
	MinimalPayloadLength  = 44
)

// Minimal returns a one-triangle document: one scene, one node, one mesh with one primitive
// whose POSITION accessor holds 3 float vertices and whose index accessor holds 3 unsigned shorts.
// There is no material.
//
// Returns:
//   - *schema.Document: the document
//   - []byte: the matching binary payload, padded to a multiple of 4
func Minimal() (*schema.Document, []byte) {
	bin := Float32s(
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	)
	bin = append(bin, Uint16s(0, 1, 2)...)
	bin = append(bin, 0, 0)

	doc := &schema.Document{
		Asset:  schema.Asset{Version: "2.0"},
		Scene:  Ptr(0),
		Scenes: []schema.Scene{{Nodes: []int{0}}},
		Nodes:  []schema.Node{{Name: "triangle", Mesh: Ptr(0)}},
		Meshes: []schema.Mesh{{
			Primitives: []schema.Primitive{{
				Attributes: map[string]int{schema.AttributePosition: 0},
				Indices:    Ptr(1),
			}},
		}},
		Accessors: []schema.Accessor{
			{
				BufferView:    0,
				ComponentType: schema.ComponentTypeFloat,
				Count:         3,
				Type:          schema.ElementTypeVec3,
				Min:           []float32{0, 0, 0},
				Max:           []float32{1, 1, 0},
			},
			{
				BufferView:    1,
				ComponentType: schema.ComponentTypeUnsignedShort,
				Count:         3,
				Type:          schema.ElementTypeScalar,
			},
		},
		BufferViews: []schema.BufferView{
			{Buffer: 0, ByteOffset: MinimalPositionOffset, ByteLength: MinimalPositionLength, Target: Ptr(schema.TargetArrayBuffer)},
			{Buffer: 0, ByteOffset: MinimalIndexOffset, ByteLength: MinimalIndexLength, Target: Ptr(schema.TargetElementArrayBuffer)},
		},
		Buffers: []schema.Buffer{{ByteLength: MinimalPayloadLength}},
	}
	return doc, bin
}

// PNG is a valid 1x1 opaque red PNG image.
var PNG = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53,
	0xDE, 0x00, 0x00, 0x00, 0x0C, 0x49, 0x44, 0x41,
	0x54, 0x08, 0xD7, 0x63, 0xF8, 0xCF, 0xC0, 0x00,
	0x00, 0x03, 0x01, 0x01, 0x00, 0x18, 0xDD, 0x8D,
	0xB0, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E,
	0x44, 0xAE, 0x42, 0x60, 0x82,
}

// Textured extends Minimal with NORMAL and TEXCOORD_0 attributes, a material and a base-color
// texture whose image is embedded as PNG bytes in its own buffer view.
//
// Returns:
//   - *schema.Document: the document
//   - []byte: the matching binary payload
func Textured() (*schema.Document, []byte) {
	doc, bin := Minimal()

	normalOffset := len(bin)
	bin = append(bin, Float32s(0, 0, 1, 0, 0, 1, 0, 0, 1)...)
	uvOffset := len(bin)
	bin = append(bin, Float32s(0, 0, 1, 0, 0, 1)...)
	imageOffset := len(bin)
	bin = append(bin, PNG...)
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	doc.BufferViews = append(doc.BufferViews,
		schema.BufferView{Buffer: 0, ByteOffset: normalOffset, ByteLength: 36},
		schema.BufferView{Buffer: 0, ByteOffset: uvOffset, ByteLength: 24},
		schema.BufferView{Buffer: 0, ByteOffset: imageOffset, ByteLength: len(PNG)},
	)
	doc.Accessors = append(doc.Accessors,
		schema.Accessor{BufferView: 2, ComponentType: schema.ComponentTypeFloat, Count: 3, Type: schema.ElementTypeVec3},
		schema.Accessor{BufferView: 3, ComponentType: schema.ComponentTypeFloat, Count: 3, Type: schema.ElementTypeVec2},
	)
	doc.Meshes[0].Primitives[0].Attributes[schema.AttributeNormal] = 2
	doc.Meshes[0].Primitives[0].Attributes[schema.AttributeTexCoord0] = 3
	doc.Meshes[0].Primitives[0].Material = Ptr(0)
	doc.Materials = []schema.Material{{
		Name: "red",
		PBRMetallicRoughness: &schema.PBRMetallicRoughness{
			BaseColorTexture: &schema.TextureInfo{Index: 0},
		},
	}}
	doc.Textures = []schema.Texture{{Sampler: Ptr(0), Source: Ptr(0)}}
	doc.Images = []schema.Image{{BufferView: Ptr(4), MimeType: "image/png"}}
	doc.Samplers = []schema.Sampler{{
		MagFilter: Ptr(schema.FilterNearest),
		MinFilter: Ptr(schema.FilterLinear),
		WrapS:     Ptr(schema.WrapClampToEdge),
		WrapT:     Ptr(schema.WrapMirroredRepeat),
	}}
	doc.Buffers[0].ByteLength = len(bin)
	return doc, bin
}

// Package resolver turns accessor indices into bounds-checked, typed descriptors of the GLB binary payload.
package resolver

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/container"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
)

// BindingTarget is the device binding an accessor is resolved for.
type BindingTarget int

const (
	// TargetVertexArray binds per-vertex attribute data.
	TargetVertexArray BindingTarget = iota + 1

	// TargetElementArray binds index data.
	TargetElementArray
)

func (t BindingTarget) String() string {
	switch t {
	case TargetVertexArray:
		return "vertex-array"
	case TargetElementArray:
		return "element-array"
	default:
		return "unknown"
	}
}

// Kind is the closed set of supported component/element combinations.
type Kind int

const (
	KindFloatScalar Kind = iota + 1
	KindFloatVec2
	KindFloatVec3
	KindUint16Scalar
)

// kindOf maps a component type and element type to a Kind. Anything outside the closed set is unsupported.
func kindOf(ct schema.ComponentType, et schema.ElementType) (Kind, bool) {
	switch ct {
	case schema.ComponentTypeFloat:
		switch et {
		case schema.ElementTypeScalar:
			return KindFloatScalar, true
		case schema.ElementTypeVec2:
			return KindFloatVec2, true
		case schema.ElementTypeVec3:
			return KindFloatVec3, true
		}
	case schema.ComponentTypeUnsignedShort:
		if et == schema.ElementTypeScalar {
			return KindUint16Scalar, true
		}
	}
	return 0, false
}

// ComponentType returns the component code of the kind.
func (k Kind) ComponentType() schema.ComponentType {
	if k == KindUint16Scalar {
		return schema.ComponentTypeUnsignedShort
	}
	return schema.ComponentTypeFloat
}

// ComponentSize returns the byte size of one component: 4 for float kinds, 2 for uint16.
func (k Kind) ComponentSize() int {
	return k.ComponentType().Size()
}

// ComponentCount returns the number of components per element: SCALAR 1, VEC2 2, VEC3 3.
func (k Kind) ComponentCount() int {
	switch k {
	case KindFloatVec2:
		return 2
	case KindFloatVec3:
		return 3
	default:
		return 1
	}
}

// ElementSize returns the packed byte size of one element.
func (k Kind) ElementSize() int {
	return k.ComponentSize() * k.ComponentCount()
}

func (k Kind) String() string {
	switch k {
	case KindFloatScalar:
		return "FLOAT/SCALAR"
	case KindFloatVec2:
		return "FLOAT/VEC2"
	case KindFloatVec3:
		return "FLOAT/VEC3"
	case KindUint16Scalar:
		return "UNSIGNED_SHORT/SCALAR"
	default:
		return "unsupported"
	}
}

// ResolvedBufferSlice describes a region of the GLB input without owning it.
// Offset and Length give the upload range (the whole buffer view); ElementOffset is the accessor's offset
// inside that range. The slice is only valid while the container's data is alive.
type ResolvedBufferSlice struct {
	// Accessor is the resolved accessor index.
	Accessor int

	// Target is the binding the slice was resolved for.
	Target BindingTarget

	// Offset is the absolute byte offset of the upload range in the container input.
	Offset int

	// Length is the byte length of the upload range.
	Length int

	// ElementOffset is the accessor byte offset relative to the upload range.
	ElementOffset int

	// Stride is the buffer view byte stride, 0 when tightly packed.
	Stride int

	// Count is the number of elements.
	Count int

	Kind Kind
}

// BoundOffset returns the absolute offset of the first element (upload offset plus accessor offset).
func (s ResolvedBufferSlice) BoundOffset() int {
	return s.Offset + s.ElementOffset
}

// ComponentCount returns the number of components per element.
func (s ResolvedBufferSlice) ComponentCount() int {
	return s.Kind.ComponentCount()
}

// ComponentSize returns the byte size of one component.
func (s ResolvedBufferSlice) ComponentSize() int {
	return s.Kind.ComponentSize()
}

// ComponentType returns the component code.
func (s ResolvedBufferSlice) ComponentType() schema.ComponentType {
	return s.Kind.ComponentType()
}

// Resolver resolves accessors and buffer views of one document against one binary payload.
// It holds no mutable state; resolving the same accessor twice yields equal slices.
type Resolver interface {
	// Resolve looks up an accessor and its buffer view and returns the typed upload range.
	//
	// Parameters:
	//   - accessorIndex: the accessor to resolve
	//   - target: the binding the data is resolved for
	//
	// Returns:
	//   - ResolvedBufferSlice: the descriptor
	//   - error: MissingReference, UnsupportedFormat or MalformedContainer
	Resolve(accessorIndex int, target BindingTarget) (ResolvedBufferSlice, error)

	// ResolveBufferView returns the absolute span of a buffer view, used for embedded images.
	//
	// Parameters:
	//   - viewIndex: the buffer view to resolve
	//
	// Returns:
	//   - container.Span: the absolute byte range in the container input
	//   - error: MissingReference, UnsupportedFormat or MalformedContainer
	ResolveBufferView(viewIndex int) (container.Span, error)

	// Bytes returns the upload range of a slice as a sub-slice of the container input, without copying.
	//
	// Parameters:
	//   - s: a slice produced by this resolver
	//
	// Returns:
	//   - []byte: the borrowed bytes
	Bytes(s ResolvedBufferSlice) []byte

	// SpanBytes returns an absolute span as a sub-slice of the container input, without copying.
	//
	// Parameters:
	//   - s: a span produced by this resolver
	//
	// Returns:
	//   - []byte: the borrowed bytes
	SpanBytes(s container.Span) []byte
}

// resolver is the implementation of the Resolver interface.
type resolver struct {
	doc     *schema.Document
	data    []byte
	payload container.Span
}

var _ Resolver = &resolver{}

// New creates a Resolver over a document and the binary payload of its container.
//
// Parameters:
//   - doc: the decoded document
//   - c: the decoded container whose BIN chunk backs buffer 0
//
// Returns:
//   - Resolver: the resolver
func New(doc *schema.Document, c *container.Container) Resolver {
	return &resolver{
		doc:     doc,
		data:    c.Data,
		payload: c.Binary,
	}
}

func (r *resolver) Resolve(accessorIndex int, target BindingTarget) (ResolvedBufferSlice, error) {
	op := fmt.Sprintf("accessor %d", accessorIndex)
	if !common.InRange(accessorIndex, len(r.doc.Accessors)) {
		return ResolvedBufferSlice{}, common.NewError(common.KindMissingReference, op, "index out of range (%d accessors)", len(r.doc.Accessors))
	}
	acc := &r.doc.Accessors[accessorIndex]

	if len(acc.Sparse) > 0 && string(acc.Sparse) != "null" {
		return ResolvedBufferSlice{}, common.NewError(common.KindUnsupportedFormat, op, "sparse accessors are not supported")
	}

	span, err := r.ResolveBufferView(acc.BufferView)
	if err != nil {
		return ResolvedBufferSlice{}, common.WrapError(common.KindMissingReference, op, err)
	}
	bv := &r.doc.BufferViews[acc.BufferView]

	kind, ok := kindOf(acc.ComponentType, acc.Type)
	if !ok {
		return ResolvedBufferSlice{}, common.NewError(common.KindUnsupportedFormat, op, "component type %s (%d) with element type %q", acc.ComponentType, uint32(acc.ComponentType), acc.Type)
	}

	if acc.Count < 0 || acc.Offset() < 0 || bv.Stride() < 0 {
		return ResolvedBufferSlice{}, common.NewError(common.KindMalformedContainer, op, "negative count, offset or stride")
	}
	if acc.Count > 0 {
		// Compared without multiplying so hostile counts and offsets cannot overflow.
		elem := kind.ElementSize()
		step := common.Coalesce(bv.Stride(), elem)
		if acc.Offset() > span.Length-elem || acc.Count-1 > (span.Length-acc.Offset()-elem)/step {
			return ResolvedBufferSlice{}, common.NewError(common.KindMalformedContainer, op, "%d elements of %d bytes from offset %d with stride %d exceed buffer view %d length %d", acc.Count, elem, acc.Offset(), step, acc.BufferView, span.Length)
		}
	}

	return ResolvedBufferSlice{
		Accessor:      accessorIndex,
		Target:        target,
		Offset:        span.Offset,
		Length:        span.Length,
		ElementOffset: acc.Offset(),
		Stride:        bv.Stride(),
		Count:         acc.Count,
		Kind:          kind,
	}, nil
}

func (r *resolver) ResolveBufferView(viewIndex int) (container.Span, error) {
	op := fmt.Sprintf("bufferView %d", viewIndex)
	if !common.InRange(viewIndex, len(r.doc.BufferViews)) {
		return container.Span{}, common.NewError(common.KindMissingReference, op, "index out of range (%d buffer views)", len(r.doc.BufferViews))
	}
	bv := &r.doc.BufferViews[viewIndex]

	if !common.InRange(bv.Buffer, len(r.doc.Buffers)) {
		return container.Span{}, common.NewError(common.KindMissingReference, op, "buffer %d out of range (%d buffers)", bv.Buffer, len(r.doc.Buffers))
	}
	if bv.Buffer != 0 {
		return container.Span{}, common.NewError(common.KindUnsupportedFormat, op, "buffer %d is not the embedded binary chunk", bv.Buffer)
	}
	buf := &r.doc.Buffers[0]
	if buf.URI != "" {
		return container.Span{}, common.NewError(common.KindUnsupportedFormat, op, "buffer 0 has external uri")
	}

	if bv.ByteOffset < 0 || bv.ByteLength < 0 {
		return container.Span{}, common.NewError(common.KindMalformedContainer, op, "negative offset or length")
	}
	if !fits(bv.ByteOffset, bv.ByteLength, buf.ByteLength) {
		return container.Span{}, common.NewError(common.KindMalformedContainer, op, "%d bytes at offset %d exceed declared buffer length %d", bv.ByteLength, bv.ByteOffset, buf.ByteLength)
	}
	if !fits(bv.ByteOffset, bv.ByteLength, r.payload.Length) {
		return container.Span{}, common.NewError(common.KindMalformedContainer, op, "%d bytes at offset %d exceed binary chunk length %d", bv.ByteLength, bv.ByteOffset, r.payload.Length)
	}

	return container.Span{Offset: r.payload.Offset + bv.ByteOffset, Length: bv.ByteLength}, nil
}

// fits reports whether [offset, offset+length) lies inside [0, limit) for non-negative offset and length,
// without computing offset+length.
func fits(offset, length, limit int) bool {
	return offset <= limit && length <= limit-offset
}

func (r *resolver) Bytes(s ResolvedBufferSlice) []byte {
	return r.data[s.Offset : s.Offset+s.Length]
}

func (r *resolver) SpanBytes(s container.Span) []byte {
	return r.data[s.Offset:s.End()]
}

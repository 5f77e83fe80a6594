package device

import (
	"fmt"
	"image"
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
)

// Op names a Device method.
type Op string

const (
	OpCreateVertexBuffer Op = "CreateVertexBuffer"
	OpCreateIndexBuffer  Op = "CreateIndexBuffer"
	OpCreateTexture      Op = "CreateTexture"
	OpBindAttribute      Op = "BindAttribute"
	OpBindTexture        Op = "BindTexture"
	OpSetUniformMat4     Op = "SetUniformMat4"
	OpBindIndexBuffer    Op = "BindIndexBuffer"
	OpDrawIndexed        Op = "DrawIndexed"
)

// Call is one recorded Device call. Only the fields relevant to Op are set.
type Call struct {
	Op Op

	Buffer  BufferHandle
	Texture TextureHandle

	// Size is the byte size of an uploaded buffer.
	Size int

	// Width and Height are the dimensions of an uploaded texture.
	Width, Height int
	Sampler       SamplerParams

	Location       AttributeLocation
	ComponentCount int
	ComponentType  schema.ComponentType
	Stride         int
	Offset         int

	Slot int

	Uniform UniformLocation
	Matrix  common.Mat4

	Mode  PrimitiveType
	Count int
}

// Recorder is a Device that keeps resources in memory and records every call in order.
// It is used by tests and by headless validation.
type Recorder struct {
	mu *sync.Mutex

	calls    []Call
	buffers  [][]byte
	textures []image.Image

	failOn map[Op]error
}

var _ Device = &Recorder{}

// NewRecorder creates an empty Recorder.
//
// Parameters:
//   - options: functional options to configure the recorder
//
// Returns:
//   - *Recorder: the recorder
func NewRecorder(options ...RecorderOption) *Recorder {
	r := &Recorder{
		mu:     &sync.Mutex{},
		failOn: make(map[Op]error),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Calls returns a copy of the recorded calls.
//
// Returns:
//   - []Call: the calls in issue order
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Ops returns the recorded operation names in issue order.
//
// Returns:
//   - []Op: the operation names
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]Op, len(r.calls))
	for i, c := range r.calls {
		ops[i] = c.Op
	}
	return ops
}

// CountOf returns how many calls of the given operation were recorded.
//
// Parameters:
//   - op: the operation name
//
// Returns:
//   - int: the number of calls
func (r *Recorder) CountOf(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// BufferData returns the bytes uploaded for a buffer handle, or nil when the handle is unknown.
//
// Parameters:
//   - h: the buffer handle
//
// Returns:
//   - []byte: the uploaded copy
func (r *Recorder) BufferData(h BufferHandle) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == 0 || int(h) > len(r.buffers) {
		return nil
	}
	return r.buffers[h-1]
}

// Texture returns the image uploaded for a texture handle, or nil when the handle is unknown.
//
// Parameters:
//   - h: the texture handle
//
// Returns:
//   - image.Image: the uploaded image
func (r *Recorder) Texture(h TextureHandle) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == 0 || int(h) > len(r.textures) {
		return nil
	}
	return r.textures[h-1]
}

// Reset drops recorded calls while keeping created resources, so one frame can be inspected at a time.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = r.calls[:0]
}

func (r *Recorder) CreateVertexBuffer(data []byte) (BufferHandle, error) {
	return r.createBuffer(OpCreateVertexBuffer, data)
}

func (r *Recorder) CreateIndexBuffer(data []byte) (BufferHandle, error) {
	return r.createBuffer(OpCreateIndexBuffer, data)
}

// createBuffer copies data, assigns the next handle and records the call.
func (r *Recorder) createBuffer(op Op, data []byte) (BufferHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failOn[op]; err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	r.buffers = append(r.buffers, append([]byte(nil), data...))
	h := BufferHandle(len(r.buffers))
	r.calls = append(r.calls, Call{Op: op, Buffer: h, Size: len(data)})
	return h, nil
}

func (r *Recorder) CreateTexture(img image.Image, sampler SamplerParams) (TextureHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failOn[OpCreateTexture]; err != nil {
		return 0, fmt.Errorf("%s: %w", OpCreateTexture, err)
	}
	r.textures = append(r.textures, img)
	h := TextureHandle(len(r.textures))
	b := img.Bounds()
	r.calls = append(r.calls, Call{Op: OpCreateTexture, Texture: h, Width: b.Dx(), Height: b.Dy(), Sampler: sampler})
	return h, nil
}

func (r *Recorder) BindAttribute(buf BufferHandle, location AttributeLocation, componentCount int, componentType schema.ComponentType, stride, offset int) {
	r.record(Call{
		Op:             OpBindAttribute,
		Buffer:         buf,
		Location:       location,
		ComponentCount: componentCount,
		ComponentType:  componentType,
		Stride:         stride,
		Offset:         offset,
	})
}

func (r *Recorder) BindTexture(tex TextureHandle, slot int) {
	r.record(Call{Op: OpBindTexture, Texture: tex, Slot: slot})
}

func (r *Recorder) SetUniformMat4(location UniformLocation, m common.Mat4) {
	r.record(Call{Op: OpSetUniformMat4, Uniform: location, Matrix: m})
}

func (r *Recorder) BindIndexBuffer(buf BufferHandle) {
	r.record(Call{Op: OpBindIndexBuffer, Buffer: buf})
}

func (r *Recorder) DrawIndexed(mode PrimitiveType, count int, componentType schema.ComponentType, byteOffset int) {
	r.record(Call{Op: OpDrawIndexed, Mode: mode, Count: count, ComponentType: componentType, Offset: byteOffset})
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// Package device defines the graphics-device capability the render graph is assembled against and drawn with.
// Implementations live in backend packages (see engine/device/wgpu_backend); Recorder is an in-memory
// implementation that records every call.
package device

import (
	"image"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
)

// BufferHandle identifies a device buffer created by CreateVertexBuffer or CreateIndexBuffer.
type BufferHandle uint32

// TextureHandle identifies a device texture created by CreateTexture.
type TextureHandle uint32

// AttributeLocation is the shader input slot of a vertex attribute.
type AttributeLocation int

const (
	LocationPosition AttributeLocation = 0
	LocationNormal   AttributeLocation = 1
	LocationTexCoord AttributeLocation = 2
)

func (l AttributeLocation) String() string {
	switch l {
	case LocationPosition:
		return "position"
	case LocationNormal:
		return "normal"
	case LocationTexCoord:
		return "texcoord"
	default:
		return "unknown"
	}
}

// UniformLocation names one of the three transform uniforms.
type UniformLocation int

const (
	UniformModel UniformLocation = iota
	UniformView
	UniformProjection
)

func (u UniformLocation) String() string {
	switch u {
	case UniformModel:
		return "model"
	case UniformView:
		return "view"
	case UniformProjection:
		return "projection"
	default:
		return "unknown"
	}
}

// PrimitiveType is the topology of an indexed draw.
type PrimitiveType int

const (
	// PrimitiveTriangles draws a triangle list, the only topology the assembler emits.
	PrimitiveTriangles PrimitiveType = schema.ModeTriangles
)

// BaseColorSlot is the texture slot the base-color texture is bound to.
const BaseColorSlot = 0

// AddressMode is a texture coordinate wrapping mode.
type AddressMode int

const (
	AddressModeRepeat AddressMode = iota
	AddressModeClampToEdge
	AddressModeMirrorRepeat
)

// FilterMode is a texture filtering mode.
type FilterMode int

const (
	FilterModeLinear FilterMode = iota
	FilterModeNearest
)

// SamplerParams describes how a texture is sampled.
type SamplerParams struct {
	WrapU, WrapV         AddressMode
	MagFilter, MinFilter FilterMode
	MipmapFilter         FilterMode
}

// DefaultSamplerParams returns repeat wrapping with linear filtering, used when a texture has no sampler.
//
// Returns:
//   - SamplerParams: the default sampler
func DefaultSamplerParams() SamplerParams {
	return SamplerParams{
		WrapU:        AddressModeRepeat,
		WrapV:        AddressModeRepeat,
		MagFilter:    FilterModeLinear,
		MinFilter:    FilterModeLinear,
		MipmapFilter: FilterModeLinear,
	}
}

// Device is the graphics-device capability. Resource creation may fail; bind, uniform and draw calls are
// infallible at the contract level and report problems through the implementation's own logging.
type Device interface {
	// CreateVertexBuffer uploads vertex data and returns its handle.
	//
	// Parameters:
	//   - data: the bytes to upload; the device must not retain the slice after returning
	//
	// Returns:
	//   - BufferHandle: the created buffer
	//   - error: error if the buffer could not be created
	CreateVertexBuffer(data []byte) (BufferHandle, error)

	// CreateIndexBuffer uploads index data and returns its handle.
	//
	// Parameters:
	//   - data: the bytes to upload; the device must not retain the slice after returning
	//
	// Returns:
	//   - BufferHandle: the created buffer
	//   - error: error if the buffer could not be created
	CreateIndexBuffer(data []byte) (BufferHandle, error)

	// CreateTexture uploads a decoded image with its sampling parameters.
	//
	// Parameters:
	//   - img: the decoded image
	//   - sampler: how the texture is sampled
	//
	// Returns:
	//   - TextureHandle: the created texture
	//   - error: error if the texture could not be created
	CreateTexture(img image.Image, sampler SamplerParams) (TextureHandle, error)

	// BindAttribute binds a vertex buffer region to a shader input.
	//
	// Parameters:
	//   - buf: the vertex buffer
	//   - location: the shader input slot
	//   - componentCount: components per vertex (1, 2 or 3)
	//   - componentType: the component code
	//   - stride: byte distance between vertices, 0 when tightly packed
	//   - offset: byte offset of the first vertex inside buf
	BindAttribute(buf BufferHandle, location AttributeLocation, componentCount int, componentType schema.ComponentType, stride, offset int)

	// BindTexture binds a texture to a sampler slot for the next draw.
	//
	// Parameters:
	//   - tex: the texture
	//   - slot: the sampler slot
	BindTexture(tex TextureHandle, slot int)

	// SetUniformMat4 sets a transform uniform for the next draw.
	//
	// Parameters:
	//   - location: which transform
	//   - m: the column-major matrix
	SetUniformMat4(location UniformLocation, m common.Mat4)

	// BindIndexBuffer selects the index buffer read by the next DrawIndexed.
	//
	// Parameters:
	//   - buf: the index buffer
	BindIndexBuffer(buf BufferHandle)

	// DrawIndexed issues one indexed draw with the current bindings.
	//
	// Parameters:
	//   - mode: the topology
	//   - count: number of indices
	//   - componentType: index component code
	//   - byteOffset: byte offset of the first index inside the bound index buffer
	DrawIndexed(mode PrimitiveType, count int, componentType schema.ComponentType, byteOffset int)
}

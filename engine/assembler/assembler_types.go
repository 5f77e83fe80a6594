package assembler

import (
	"image"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/resolver"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
)

// AttributeBinding is one uploaded vertex attribute.
type AttributeBinding struct {
	// Slice is the resolved upload range and layout.
	Slice resolver.ResolvedBufferSlice

	// Buffer is the device buffer holding Slice's upload range.
	Buffer device.BufferHandle

	// Location is the shader input the attribute is bound to.
	Location device.AttributeLocation
}

// bind binds the attribute with its stride and its offset inside the uploaded range.
func (a *AttributeBinding) bind(dev device.Device) {
	dev.BindAttribute(a.Buffer, a.Location, a.Slice.ComponentCount(), a.Slice.ComponentType(), a.Slice.Stride, a.Slice.ElementOffset)
}

// ResolvedTexture is a decoded base-color texture. Handle is valid once the owning primitive is uploaded.
type ResolvedTexture struct {
	// Texture is the texture index in the document.
	Texture int

	// Image is the decoded image.
	Image image.Image

	// Handle is the device texture.
	Handle device.TextureHandle

	// Slot is the sampler binding point.
	Slot int

	// Sampler holds the sampling parameters the texture was created with.
	Sampler device.SamplerParams

	uploaded bool
}

// RenderPrimitive is the renderable form of one mesh primitive. It is immutable once assembled.
type RenderPrimitive struct {
	// Indices is the resolved index slice.
	Indices resolver.ResolvedBufferSlice

	// IndexBuffer is the device buffer holding the index upload range.
	IndexBuffer device.BufferHandle

	Position AttributeBinding
	Normal   *AttributeBinding
	TexCoord *AttributeBinding

	// Material is the material index, nil when the primitive has none.
	Material *int

	// BaseColor is the material's base color factor, opaque white without a material.
	BaseColor [4]float32

	// Texture is the base-color texture, nil when the material has none.
	Texture *ResolvedTexture
}

// DrawCount returns the number of indices drawn.
func (p *RenderPrimitive) DrawCount() int {
	return p.Indices.Count
}

// IndexType returns the component type of the index data.
func (p *RenderPrimitive) IndexType() schema.ComponentType {
	return p.Indices.ComponentType()
}

// IndexOffset returns the byte offset of the first index inside the index buffer.
func (p *RenderPrimitive) IndexOffset() int {
	return p.Indices.ElementOffset
}

// Submit issues the primitive's draw: attributes in position, normal, texcoord order, the base-color texture,
// the model, view and projection uniforms, then a single indexed draw.
//
// Parameters:
//   - dev: the device to draw with
//   - model: the model matrix
//   - view: the view matrix
//   - projection: the projection matrix
func (p *RenderPrimitive) Submit(dev device.Device, model, view, projection common.Mat4) {
	p.Position.bind(dev)
	if p.Normal != nil {
		p.Normal.bind(dev)
	}
	if p.TexCoord != nil {
		p.TexCoord.bind(dev)
	}
	if p.Texture != nil {
		dev.BindTexture(p.Texture.Handle, p.Texture.Slot)
	}

	dev.SetUniformMat4(device.UniformModel, model)
	dev.SetUniformMat4(device.UniformView, view)
	dev.SetUniformMat4(device.UniformProjection, projection)

	dev.BindIndexBuffer(p.IndexBuffer)
	dev.DrawIndexed(device.PrimitiveTriangles, p.DrawCount(), p.IndexType(), p.IndexOffset())
}

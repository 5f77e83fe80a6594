// Package assembler turns schema primitives into render primitives by resolving their accessors, uploading
// vertex and index data and creating the optional base-color texture.
package assembler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/imagedecode"
	"github.com/Carmen-Shannon/oxy-glb/engine/resolver"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
)

// Assembler builds RenderPrimitives for one document.
type Assembler interface {
	// Assemble resolves and uploads one primitive. It is Prepare followed by Upload.
	//
	// Parameters:
	//   - ctx: passed to the image decoder
	//   - doc: the document the primitive belongs to
	//   - prim: the primitive
	//
	// Returns:
	//   - *RenderPrimitive: the assembled primitive
	//   - error: a *common.LoadError naming the failing reference
	Assemble(ctx context.Context, doc *schema.Document, prim *schema.Primitive) (*RenderPrimitive, error)

	// Prepare resolves every reference of a primitive and decodes its base-color image without touching the
	// device. Image decoding is the only blocking step.
	//
	// Parameters:
	//   - ctx: passed to the image decoder
	//   - doc: the document the primitive belongs to
	//   - prim: the primitive
	//
	// Returns:
	//   - *PreparedPrimitive: the resolved primitive, ready for Upload
	//   - error: a *common.LoadError naming the failing reference
	Prepare(ctx context.Context, doc *schema.Document, prim *schema.Primitive) (*PreparedPrimitive, error)

	// Upload creates the texture, index buffer and vertex buffers of a prepared primitive.
	//
	// Parameters:
	//   - p: a primitive returned by Prepare on this assembler
	//
	// Returns:
	//   - *RenderPrimitive: the assembled primitive
	//   - error: ResourceCreationFailure when the device rejects a resource
	Upload(p *PreparedPrimitive) (*RenderPrimitive, error)
}

// PreparedPrimitive is a primitive whose references are resolved and whose image is decoded, but which has
// no device resources yet.
type PreparedPrimitive struct {
	prim *RenderPrimitive
}

// assembler is the implementation of the Assembler interface.
type assembler struct {
	res     resolver.Resolver
	dev     device.Device
	decoder imagedecode.Decoder
	logger  *slog.Logger

	// textures caches textures by texture index so primitives sharing a texture decode and upload it once.
	textures      map[int]*ResolvedTexture
	shareTextures bool
}

var _ Assembler = &assembler{}

// New creates an Assembler.
//
// Parameters:
//   - res: the resolver for the document's binary payload
//   - dev: the device resources are created on
//   - dec: the image decoder
//   - options: functional options to configure the assembler
//
// Returns:
//   - Assembler: the assembler
func New(res resolver.Resolver, dev device.Device, dec imagedecode.Decoder, options ...AssemblerOption) Assembler {
	a := &assembler{
		res:      res,
		dev:      dev,
		decoder:  dec,
		logger:   slog.Default(),
		textures: make(map[int]*ResolvedTexture),
	}
	for _, option := range options {
		option(a)
	}
	return a
}

func (a *assembler) Assemble(ctx context.Context, doc *schema.Document, prim *schema.Primitive) (*RenderPrimitive, error) {
	p, err := a.Prepare(ctx, doc, prim)
	if err != nil {
		return nil, err
	}
	return a.Upload(p)
}

func (a *assembler) Prepare(ctx context.Context, doc *schema.Document, prim *schema.Primitive) (*PreparedPrimitive, error) {
	if prim.Mode != nil && *prim.Mode != schema.ModeTriangles {
		return nil, common.NewError(common.KindUnsupportedFormat, "primitive", "mode %d, only triangles are drawn", *prim.Mode)
	}
	if prim.Indices == nil {
		return nil, common.NewError(common.KindMissingReference, "primitive", "no index accessor")
	}
	posIndex := prim.Attribute(schema.AttributePosition)
	if posIndex == nil {
		return nil, common.NewError(common.KindMissingReference, "primitive", "no %s attribute", schema.AttributePosition)
	}

	out := &RenderPrimitive{
		Material:  prim.Material,
		BaseColor: [4]float32{1, 1, 1, 1},
	}

	indices, err := a.res.Resolve(*prim.Indices, resolver.TargetElementArray)
	if err != nil {
		return nil, fmt.Errorf("indices: %w", err)
	}
	out.Indices = indices

	position, err := a.attribute(*posIndex, device.LocationPosition)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", schema.AttributePosition, err)
	}
	out.Position = *position

	if idx := prim.Attribute(schema.AttributeNormal); idx != nil {
		if out.Normal, err = a.attribute(*idx, device.LocationNormal); err != nil {
			return nil, fmt.Errorf("%s: %w", schema.AttributeNormal, err)
		}
	}
	if idx := prim.Attribute(schema.AttributeTexCoord0); idx != nil {
		if out.TexCoord, err = a.attribute(*idx, device.LocationTexCoord); err != nil {
			return nil, fmt.Errorf("%s: %w", schema.AttributeTexCoord0, err)
		}
	}

	if prim.Material != nil {
		mat, err := materialAt(doc, *prim.Material)
		if err != nil {
			return nil, err
		}
		out.BaseColor = mat.PBRMetallicRoughness.BaseColor()
		if info := mat.BaseColorTexture(); info != nil {
			tex, err := a.texture(ctx, doc, info.Index)
			if err != nil {
				return nil, common.WrapError(common.KindMissingReference, fmt.Sprintf("material %d", *prim.Material), err)
			}
			out.Texture = tex
		}
	}
	return &PreparedPrimitive{prim: out}, nil
}

func (a *assembler) Upload(p *PreparedPrimitive) (*RenderPrimitive, error) {
	out := p.prim

	if tex := out.Texture; tex != nil && !tex.uploaded {
		handle, err := a.dev.CreateTexture(tex.Image, tex.Sampler)
		if err != nil {
			return nil, common.WrapError(common.KindResourceCreationFailure, fmt.Sprintf("texture %d", tex.Texture), err)
		}
		tex.Handle = handle
		tex.uploaded = true
	}

	ib, err := a.dev.CreateIndexBuffer(a.res.Bytes(out.Indices))
	if err != nil {
		return nil, common.WrapError(common.KindResourceCreationFailure, fmt.Sprintf("accessor %d", out.Indices.Accessor), err)
	}
	out.IndexBuffer = ib

	for _, binding := range []*AttributeBinding{&out.Position, out.Normal, out.TexCoord} {
		if binding == nil {
			continue
		}
		vb, err := a.dev.CreateVertexBuffer(a.res.Bytes(binding.Slice))
		if err != nil {
			return nil, common.WrapError(common.KindResourceCreationFailure, fmt.Sprintf("accessor %d", binding.Slice.Accessor), err)
		}
		binding.Buffer = vb
	}

	a.logger.Debug("assembled primitive",
		"indices", out.DrawCount(),
		"normal", out.Normal != nil,
		"texcoord", out.TexCoord != nil,
		"texture", out.Texture != nil,
	)
	return out, nil
}

// attribute resolves a vertex accessor for a shader location.
func (a *assembler) attribute(accessor int, location device.AttributeLocation) (*AttributeBinding, error) {
	s, err := a.res.Resolve(accessor, resolver.TargetVertexArray)
	if err != nil {
		return nil, err
	}
	return &AttributeBinding{Slice: s, Location: location}, nil
}

// materialAt looks up a material by index.
func materialAt(doc *schema.Document, index int) (*schema.Material, error) {
	if !common.InRange(index, len(doc.Materials)) {
		return nil, common.NewError(common.KindMissingReference, fmt.Sprintf("material %d", index), "index out of range (%d materials)", len(doc.Materials))
	}
	return &doc.Materials[index], nil
}

// texture follows texture → image → buffer view and decodes the image. The device texture is created by Upload.
func (a *assembler) texture(ctx context.Context, doc *schema.Document, index int) (*ResolvedTexture, error) {
	op := fmt.Sprintf("texture %d", index)
	if !common.InRange(index, len(doc.Textures)) {
		return nil, common.NewError(common.KindMissingReference, op, "index out of range (%d textures)", len(doc.Textures))
	}
	if a.shareTextures {
		if cached, ok := a.textures[index]; ok {
			return cached, nil
		}
	}
	tex := &doc.Textures[index]

	if tex.Source == nil {
		return nil, common.NewError(common.KindMissingReference, op, "no image source")
	}
	imageIndex := *tex.Source
	if !common.InRange(imageIndex, len(doc.Images)) {
		return nil, common.NewError(common.KindMissingReference, fmt.Sprintf("image %d", imageIndex), "index out of range (%d images)", len(doc.Images))
	}
	img := &doc.Images[imageIndex]
	if img.BufferView == nil {
		return nil, common.NewError(common.KindUnsupportedFormat, fmt.Sprintf("image %d", imageIndex), "external image %q is not supported", img.URI)
	}

	sampler, err := samplerParams(doc, tex.Sampler)
	if err != nil {
		return nil, err
	}

	span, err := a.res.ResolveBufferView(*img.BufferView)
	if err != nil {
		return nil, common.WrapError(common.KindMissingReference, fmt.Sprintf("image %d", imageIndex), err)
	}

	decoded, err := a.decoder.Decode(ctx, a.res.SpanBytes(span), img.MimeType)
	if err != nil {
		return nil, common.WrapError(common.KindResourceCreationFailure, fmt.Sprintf("image %d", imageIndex), err)
	}

	out := &ResolvedTexture{
		Texture: index,
		Image:   decoded,
		Slot:    device.BaseColorSlot,
		Sampler: sampler,
	}
	if a.shareTextures {
		a.textures[index] = out
	}
	return out, nil
}

// samplerParams maps a sampler's filter and wrap codes to device parameters. An absent sampler gives the
// default repeat/linear parameters.
func samplerParams(doc *schema.Document, index *int) (device.SamplerParams, error) {
	p := device.DefaultSamplerParams()
	if index == nil {
		return p, nil
	}
	if !common.InRange(*index, len(doc.Samplers)) {
		return p, common.NewError(common.KindMissingReference, fmt.Sprintf("sampler %d", *index), "index out of range (%d samplers)", len(doc.Samplers))
	}
	s := &doc.Samplers[*index]

	if s.WrapS != nil {
		p.WrapU = addressMode(*s.WrapS)
	}
	if s.WrapT != nil {
		p.WrapV = addressMode(*s.WrapT)
	}
	if s.MagFilter != nil {
		p.MagFilter = filterMode(*s.MagFilter)
	}
	if s.MinFilter != nil {
		p.MinFilter = filterMode(*s.MinFilter)
		switch *s.MinFilter {
		case schema.FilterNearestMipmapNearest, schema.FilterLinearMipmapNearest:
			p.MipmapFilter = device.FilterModeNearest
		}
	}
	return p, nil
}

func addressMode(code int) device.AddressMode {
	switch code {
	case schema.WrapClampToEdge:
		return device.AddressModeClampToEdge
	case schema.WrapMirroredRepeat:
		return device.AddressModeMirrorRepeat
	default:
		return device.AddressModeRepeat
	}
}

func filterMode(code int) device.FilterMode {
	switch code {
	case schema.FilterNearest, schema.FilterNearestMipmapNearest, schema.FilterNearestMipmapLinear:
		return device.FilterModeNearest
	default:
		return device.FilterModeLinear
	}
}

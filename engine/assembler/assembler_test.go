package assembler

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/container"
	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/imagedecode"
	"github.com/Carmen-Shannon/oxy-glb/engine/resolver"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
	"github.com/Carmen-Shannon/oxy-glb/internal/glbtest"
)

// stubDecoder returns a fixed image or error and counts calls.
type stubDecoder struct {
	img   image.Image
	err   error
	calls int
	mimes []string
}

func (d *stubDecoder) Decode(_ context.Context, _ []byte, mimeType string) (image.Image, error) {
	d.calls++
	d.mimes = append(d.mimes, mimeType)
	if d.err != nil {
		return nil, d.err
	}
	return d.img, nil
}

func newResolver(t *testing.T, doc *schema.Document, bin []byte) resolver.Resolver {
	t.Helper()
	c, err := container.Decode(glbtest.BuildDocument(t, doc, bin))
	require.NoError(t, err)
	return resolver.New(doc, c)
}

func TestAssembleMinimal(t *testing.T) {
	doc, bin := glbtest.Minimal()
	dev := device.NewRecorder()
	a := New(newResolver(t, doc, bin), dev, imagedecode.New())

	p, err := a.Assemble(context.Background(), doc, &doc.Meshes[0].Primitives[0])
	require.NoError(t, err)

	assert.Equal(t, 3, p.DrawCount())
	assert.Equal(t, schema.ComponentTypeUnsignedShort, p.IndexType())
	assert.Equal(t, 0, p.IndexOffset())
	assert.Nil(t, p.Normal)
	assert.Nil(t, p.TexCoord)
	assert.Nil(t, p.Texture)
	assert.Nil(t, p.Material)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, p.BaseColor)

	assert.Equal(t, glbtest.Uint16s(0, 1, 2), dev.BufferData(p.IndexBuffer))
	assert.Equal(t, bin[:glbtest.MinimalPositionLength], dev.BufferData(p.Position.Buffer))
	assert.Equal(t, device.LocationPosition, p.Position.Location)
	assert.Equal(t, []device.Op{device.OpCreateIndexBuffer, device.OpCreateVertexBuffer}, dev.Ops())
}

func TestAssembleTextured(t *testing.T) {
	doc, bin := glbtest.Textured()
	dev := device.NewRecorder()
	a := New(newResolver(t, doc, bin), dev, imagedecode.New())

	p, err := a.Assemble(context.Background(), doc, &doc.Meshes[0].Primitives[0])
	require.NoError(t, err)

	require.NotNil(t, p.Normal)
	require.NotNil(t, p.TexCoord)
	assert.Equal(t, device.LocationNormal, p.Normal.Location)
	assert.Equal(t, device.LocationTexCoord, p.TexCoord.Location)
	assert.Equal(t, 2, p.TexCoord.Slice.ComponentCount())
	assert.Equal(t, 0, *p.Material)

	require.NotNil(t, p.Texture)
	assert.Equal(t, 0, p.Texture.Texture)
	assert.Equal(t, device.BaseColorSlot, p.Texture.Slot)
	assert.Equal(t, image.Rect(0, 0, 1, 1), p.Texture.Image.Bounds())
	assert.Equal(t, device.SamplerParams{
		WrapU:        device.AddressModeClampToEdge,
		WrapV:        device.AddressModeMirrorRepeat,
		MagFilter:    device.FilterModeNearest,
		MinFilter:    device.FilterModeLinear,
		MipmapFilter: device.FilterModeLinear,
	}, p.Texture.Sampler)

	assert.Equal(t, 1, dev.CountOf(device.OpCreateTexture))
	assert.Equal(t, 3, dev.CountOf(device.OpCreateVertexBuffer))
	assert.Equal(t, 1, dev.CountOf(device.OpCreateIndexBuffer))
}

func TestPrepareThenUpload(t *testing.T) {
	doc, bin := glbtest.Textured()
	dev := device.NewRecorder()
	dec := &stubDecoder{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}
	a := New(newResolver(t, doc, bin), dev, dec)

	prepared, err := a.Prepare(context.Background(), doc, &doc.Meshes[0].Primitives[0])
	require.NoError(t, err)
	assert.Equal(t, 1, dec.calls)
	assert.Empty(t, dev.Calls())

	p, err := a.Upload(prepared)
	require.NoError(t, err)
	assert.Equal(t, []device.Op{
		device.OpCreateTexture,
		device.OpCreateIndexBuffer,
		device.OpCreateVertexBuffer,
		device.OpCreateVertexBuffer,
		device.OpCreateVertexBuffer,
	}, dev.Ops())
	assert.Equal(t, dec.img, p.Texture.Image)
}

func TestPrepareDecodeFailureCreatesNothing(t *testing.T) {
	doc, bin := glbtest.Textured()
	dev := device.NewRecorder()
	a := New(newResolver(t, doc, bin), dev, &stubDecoder{err: errors.New("truncated")})

	_, err := a.Prepare(context.Background(), doc, &doc.Meshes[0].Primitives[0])
	assert.ErrorIs(t, err, common.ErrResourceCreationFailure)
	assert.Empty(t, dev.Calls())
}

func TestAssembleDefaultSampler(t *testing.T) {
	doc, bin := glbtest.Textured()
	doc.Textures[0].Sampler = nil
	a := New(newResolver(t, doc, bin), device.NewRecorder(), imagedecode.New())

	p, err := a.Assemble(context.Background(), doc, &doc.Meshes[0].Primitives[0])
	require.NoError(t, err)
	assert.Equal(t, device.DefaultSamplerParams(), p.Texture.Sampler)
}

func TestAssembleBaseColorFactor(t *testing.T) {
	doc, bin := glbtest.Textured()
	doc.Materials[0].PBRMetallicRoughness.BaseColorFactor = &[4]float32{0.5, 0.25, 1, 1}
	a := New(newResolver(t, doc, bin), device.NewRecorder(), imagedecode.New())

	p, err := a.Assemble(context.Background(), doc, &doc.Meshes[0].Primitives[0])
	require.NoError(t, err)
	assert.Equal(t, [4]float32{0.5, 0.25, 1, 1}, p.BaseColor)
}

func TestAssembleErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(doc *schema.Document)
		want   error
	}{
		{"no indices", func(doc *schema.Document) { doc.Meshes[0].Primitives[0].Indices = nil }, common.ErrMissingReference},
		{"indices out of range", func(doc *schema.Document) { doc.Meshes[0].Primitives[0].Indices = glbtest.Ptr(42) }, common.ErrMissingReference},
		{"no position", func(doc *schema.Document) { delete(doc.Meshes[0].Primitives[0].Attributes, schema.AttributePosition) }, common.ErrMissingReference},
		{"normal out of range", func(doc *schema.Document) { doc.Meshes[0].Primitives[0].Attributes[schema.AttributeNormal] = 42 }, common.ErrMissingReference},
		{"material out of range", func(doc *schema.Document) { doc.Meshes[0].Primitives[0].Material = glbtest.Ptr(7) }, common.ErrMissingReference},
		{"texture out of range", func(doc *schema.Document) {
			doc.Materials[0].PBRMetallicRoughness.BaseColorTexture.Index = 3
		}, common.ErrMissingReference},
		{"texture without source", func(doc *schema.Document) { doc.Textures[0].Source = nil }, common.ErrMissingReference},
		{"image out of range", func(doc *schema.Document) { doc.Textures[0].Source = glbtest.Ptr(5) }, common.ErrMissingReference},
		{"image view out of range", func(doc *schema.Document) { doc.Images[0].BufferView = glbtest.Ptr(50) }, common.ErrMissingReference},
		{"sampler out of range", func(doc *schema.Document) { doc.Textures[0].Sampler = glbtest.Ptr(2) }, common.ErrMissingReference},
		{"external image", func(doc *schema.Document) {
			doc.Images[0].BufferView = nil
			doc.Images[0].URI = "albedo.png"
		}, common.ErrUnsupportedFormat},
		{"line mode", func(doc *schema.Document) { doc.Meshes[0].Primitives[0].Mode = glbtest.Ptr(schema.ModeLines) }, common.ErrUnsupportedFormat},
		{"unsigned int indices", func(doc *schema.Document) {
			doc.Accessors[1].ComponentType = schema.ComponentTypeUnsignedInt
		}, common.ErrUnsupportedFormat},
		{"vec4 texcoord", func(doc *schema.Document) { doc.Accessors[3].Type = schema.ElementTypeVec4 }, common.ErrUnsupportedFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, bin := glbtest.Textured()
			tc.mutate(doc)
			dev := device.NewRecorder()
			a := New(newResolver(t, doc, bin), dev, imagedecode.New())

			p, err := a.Assemble(context.Background(), doc, &doc.Meshes[0].Primitives[0])
			assert.Nil(t, p)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Zero(t, dev.CountOf(device.OpCreateIndexBuffer))
			assert.Zero(t, dev.CountOf(device.OpCreateVertexBuffer))
		})
	}
}

func TestAssembleErrorNamesReference(t *testing.T) {
	doc, bin := glbtest.Textured()
	doc.Meshes[0].Primitives[0].Material = glbtest.Ptr(7)
	a := New(newResolver(t, doc, bin), device.NewRecorder(), imagedecode.New())

	_, err := a.Assemble(context.Background(), doc, &doc.Meshes[0].Primitives[0])
	assert.ErrorContains(t, err, "material 7")
}

func TestAssembleResourceFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("decode", func(t *testing.T) {
		doc, bin := glbtest.Textured()
		dec := &stubDecoder{err: boom}
		_, err := New(newResolver(t, doc, bin), device.NewRecorder(), dec).Assemble(context.Background(), doc, &doc.Meshes[0].Primitives[0])
		assert.ErrorIs(t, err, common.ErrResourceCreationFailure)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, dec.calls)
	})

	for _, op := range []device.Op{device.OpCreateTexture, device.OpCreateIndexBuffer, device.OpCreateVertexBuffer} {
		t.Run(string(op), func(t *testing.T) {
			doc, bin := glbtest.Textured()
			dev := device.NewRecorder(device.WithFailure(op, boom))
			_, err := New(newResolver(t, doc, bin), dev, imagedecode.New()).Assemble(context.Background(), doc, &doc.Meshes[0].Primitives[0])
			assert.ErrorIs(t, err, common.ErrResourceCreationFailure)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestAssembleDecoderReceivesMimeType(t *testing.T) {
	doc, bin := glbtest.Textured()
	dec := &stubDecoder{img: image.NewRGBA(image.Rect(0, 0, 2, 2))}
	p, err := New(newResolver(t, doc, bin), device.NewRecorder(), dec).Assemble(context.Background(), doc, &doc.Meshes[0].Primitives[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"image/png"}, dec.mimes)
	assert.Equal(t, 2, p.Texture.Image.Bounds().Dx())
}

func TestAssembleSharedTextures(t *testing.T) {
	doc, bin := glbtest.Textured()
	prim := doc.Meshes[0].Primitives[0]
	doc.Meshes[0].Primitives = append(doc.Meshes[0].Primitives, prim)

	for _, share := range []bool{false, true} {
		dev := device.NewRecorder()
		dec := &stubDecoder{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}
		a := New(newResolver(t, doc, bin), dev, dec, WithSharedTextures(share))

		first, err := a.Assemble(context.Background(), doc, &doc.Meshes[0].Primitives[0])
		require.NoError(t, err)
		second, err := a.Assemble(context.Background(), doc, &doc.Meshes[0].Primitives[1])
		require.NoError(t, err)

		if share {
			assert.Equal(t, 1, dec.calls)
			assert.Same(t, first.Texture, second.Texture)
		} else {
			assert.Equal(t, 2, dec.calls)
			assert.NotEqual(t, first.Texture.Handle, second.Texture.Handle)
		}
	}
}

func TestSubmitOrder(t *testing.T) {
	doc, bin := glbtest.Textured()
	doc.Accessors[1].ByteOffset = glbtest.Ptr(2)
	doc.Accessors[1].Count = 2
	dev := device.NewRecorder()
	p, err := New(newResolver(t, doc, bin), dev, imagedecode.New()).Assemble(context.Background(), doc, &doc.Meshes[0].Primitives[0])
	require.NoError(t, err)
	dev.Reset()

	view := common.Mat4{}
	view[0] = 2
	p.Submit(dev, common.Identity(), view, common.Identity())

	assert.Equal(t, []device.Op{
		device.OpBindAttribute,
		device.OpBindAttribute,
		device.OpBindAttribute,
		device.OpBindTexture,
		device.OpSetUniformMat4,
		device.OpSetUniformMat4,
		device.OpSetUniformMat4,
		device.OpBindIndexBuffer,
		device.OpDrawIndexed,
	}, dev.Ops())

	calls := dev.Calls()
	assert.Equal(t, device.LocationPosition, calls[0].Location)
	assert.Equal(t, 3, calls[0].ComponentCount)
	assert.Equal(t, device.LocationNormal, calls[1].Location)
	assert.Equal(t, device.LocationTexCoord, calls[2].Location)
	assert.Equal(t, 2, calls[2].ComponentCount)
	assert.Equal(t, p.Texture.Handle, calls[3].Texture)
	assert.Equal(t, device.UniformModel, calls[4].Uniform)
	assert.Equal(t, device.UniformView, calls[5].Uniform)
	assert.Equal(t, view, calls[5].Matrix)
	assert.Equal(t, device.UniformProjection, calls[6].Uniform)
	assert.Equal(t, p.IndexBuffer, calls[7].Buffer)

	draw := calls[8]
	assert.Equal(t, device.PrimitiveTriangles, draw.Mode)
	assert.Equal(t, 2, draw.Count)
	assert.Equal(t, schema.ComponentTypeUnsignedShort, draw.ComponentType)
	assert.Equal(t, 2, draw.Offset)
}

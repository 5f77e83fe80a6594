package scene

import (
	"context"
	"errors"
	"image"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/container"
	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
	"github.com/Carmen-Shannon/oxy-glb/internal/glbtest"
)

func decode(t *testing.T, doc *schema.Document, bin []byte) *container.Container {
	t.Helper()
	c, err := container.Decode(glbtest.BuildDocument(t, doc, bin))
	require.NoError(t, err)
	return c
}

// mimeDecoder records the MIME type of every decode and fails for one of them.
type mimeDecoder struct {
	mimes  []string
	failOn string
}

func (d *mimeDecoder) Decode(_ context.Context, _ []byte, mimeType string) (image.Image, error) {
	d.mimes = append(d.mimes, mimeType)
	if mimeType == d.failOn {
		return nil, errors.New("corrupt " + mimeType)
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

// twoTexturedNodes extends Textured with a node "second" whose mesh has two primitives textured with
// images 1 (image/jpeg) and 2 (image/webp). The scene lists "second" before the original node, whose
// image 0 is image/png.
func twoTexturedNodes() (*schema.Document, []byte) {
	doc, bin := glbtest.Textured()
	base := doc.Meshes[0].Primitives[0]
	textured := func(material int) schema.Primitive {
		p := base
		p.Attributes = maps.Clone(base.Attributes)
		p.Material = glbtest.Ptr(material)
		return p
	}

	for _, mime := range []string{"image/jpeg", "image/webp"} {
		imageIndex := len(doc.Images)
		doc.Images = append(doc.Images, schema.Image{BufferView: doc.Images[0].BufferView, MimeType: mime})
		doc.Textures = append(doc.Textures, schema.Texture{Source: glbtest.Ptr(imageIndex)})
		doc.Materials = append(doc.Materials, schema.Material{
			PBRMetallicRoughness: &schema.PBRMetallicRoughness{
				BaseColorTexture: &schema.TextureInfo{Index: len(doc.Textures) - 1},
			},
		})
	}
	doc.Meshes = append(doc.Meshes, schema.Mesh{Primitives: []schema.Primitive{textured(1), textured(2)}})
	doc.Nodes = append(doc.Nodes, schema.Node{Name: "second", Mesh: glbtest.Ptr(1)})
	doc.Scenes[0].Nodes = []int{1, 0}
	return doc, bin
}

func TestBuildMinimal(t *testing.T) {
	doc, bin := glbtest.Minimal()
	dev := device.NewRecorder()

	s, err := NewBuilder(dev).Build(context.Background(), doc, decode(t, doc, bin), 0)
	require.NoError(t, err)

	require.Len(t, s.Nodes(), 1)
	node := s.Nodes()[0]
	assert.Equal(t, "triangle", node.Name)
	require.Len(t, node.Primitives, 1)
	prim := node.Primitives[0]
	assert.Nil(t, prim.Texture)
	assert.Equal(t, 3, prim.DrawCount())
	assert.Equal(t, schema.ComponentTypeUnsignedShort, prim.IndexType())
	assert.Equal(t, 1, s.PrimitiveCount())
}

func TestBuildOrder(t *testing.T) {
	doc, bin := glbtest.Minimal()
	prim := doc.Meshes[0].Primitives[0]
	doc.Meshes = append(doc.Meshes, schema.Mesh{Primitives: []schema.Primitive{prim, prim}})
	doc.Nodes = append(doc.Nodes,
		schema.Node{Name: "camera"},
		schema.Node{Name: "pair", Mesh: glbtest.Ptr(1)},
	)
	doc.Scenes[0].Nodes = []int{2, 1, 0}

	s, err := NewBuilder(device.NewRecorder()).Build(context.Background(), doc, decode(t, doc, bin), 0)
	require.NoError(t, err)

	nodes := s.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, 2, nodes[0].Index)
	assert.Equal(t, "pair", nodes[0].Name)
	assert.Len(t, nodes[0].Primitives, 2)
	assert.Equal(t, 0, nodes[1].Index)
	assert.Equal(t, 3, s.PrimitiveCount())
}

func TestBuildDecodesImagesInSceneOrder(t *testing.T) {
	doc, bin := twoTexturedNodes()
	dec := &mimeDecoder{}
	dev := device.NewRecorder()

	s, err := NewBuilder(dev, WithImageDecoder(dec)).Build(context.Background(), doc, decode(t, doc, bin), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"image/jpeg", "image/webp", "image/png"}, dec.mimes)
	assert.Equal(t, 3, dev.CountOf(device.OpCreateTexture))

	nodes := s.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "second", nodes[0].Name)
	assert.Equal(t, 1, nodes[0].Primitives[0].Texture.Texture)
	assert.Equal(t, 2, nodes[0].Primitives[1].Texture.Texture)
	assert.Equal(t, 0, nodes[1].Primitives[0].Texture.Texture)
}

func TestBuildLateFailureCreatesNothing(t *testing.T) {
	t.Run("decode", func(t *testing.T) {
		doc, bin := twoTexturedNodes()
		dec := &mimeDecoder{failOn: "image/png"}
		dev := device.NewRecorder()

		s, err := NewBuilder(dev, WithImageDecoder(dec)).Build(context.Background(), doc, decode(t, doc, bin), 0)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, common.ErrResourceCreationFailure)
		assert.Len(t, dec.mimes, 3)
		assert.Empty(t, dev.Calls())
	})

	t.Run("material", func(t *testing.T) {
		doc, bin := twoTexturedNodes()
		doc.Meshes[0].Primitives[0].Material = glbtest.Ptr(9)
		dev := device.NewRecorder()

		s, err := NewBuilder(dev, WithImageDecoder(&mimeDecoder{})).Build(context.Background(), doc, decode(t, doc, bin), 0)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, common.ErrMissingReference)
		assert.ErrorContains(t, err, "material 9")
		assert.Empty(t, dev.Calls())
	})
}

func TestBuildCapturesTransforms(t *testing.T) {
	doc, bin := glbtest.Minimal()
	doc.Nodes[0].Translation = &[3]float32{1, 2, 3}
	doc.Nodes[0].Rotation = &[4]float32{0, 0, 0, 1}

	s, err := NewBuilder(device.NewRecorder()).Build(context.Background(), doc, decode(t, doc, bin), 0)
	require.NoError(t, err)

	node := s.Nodes()[0]
	assert.Equal(t, &[3]float32{1, 2, 3}, node.Translation)
	m := node.LocalMatrix()
	assert.Equal(t, float32(1), m[12])
	assert.Equal(t, float32(2), m[13])
	assert.Equal(t, float32(3), m[14])
}

func TestBuildMissingNodeCreatesNothing(t *testing.T) {
	doc, bin := glbtest.Minimal()
	doc.Scenes[0].Nodes = []int{0, 5}
	dev := device.NewRecorder()

	s, err := NewBuilder(dev).Build(context.Background(), doc, decode(t, doc, bin), 0)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, common.ErrMissingReference)
	assert.ErrorContains(t, err, "node 5")
	assert.Empty(t, dev.Calls())
}

func TestBuildMissingMeshCreatesNothing(t *testing.T) {
	doc, bin := glbtest.Minimal()
	doc.Nodes = append(doc.Nodes, schema.Node{Mesh: glbtest.Ptr(9)})
	doc.Scenes[0].Nodes = []int{0, 1}
	dev := device.NewRecorder()

	s, err := NewBuilder(dev).Build(context.Background(), doc, decode(t, doc, bin), 0)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, common.ErrMissingReference)
	assert.Empty(t, dev.Calls())
}

func TestBuildMissingMaterial(t *testing.T) {
	doc, bin := glbtest.Minimal()
	doc.Meshes[0].Primitives[0].Material = glbtest.Ptr(3)

	s, err := NewBuilder(device.NewRecorder()).Build(context.Background(), doc, decode(t, doc, bin), 0)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, common.ErrMissingReference)
	assert.Equal(t, common.KindMissingReference, common.KindOf(err))
	assert.ErrorContains(t, err, "material 3")
}

func TestBuildSceneErrors(t *testing.T) {
	doc, bin := glbtest.Minimal()
	c := decode(t, doc, bin)
	b := NewBuilder(device.NewRecorder())

	_, err := b.Build(context.Background(), doc, c, 1)
	assert.ErrorIs(t, err, common.ErrMissingReference)

	_, err = b.Build(context.Background(), doc, c, -1)
	assert.ErrorIs(t, err, common.ErrMissingReference)

	doc.ExtensionsRequired = []string{"KHR_draco_mesh_compression"}
	_, err = b.Build(context.Background(), doc, c, 0)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestBuildKeepsUnsupportedKind(t *testing.T) {
	doc, bin := glbtest.Minimal()
	doc.Accessors[0].Type = schema.ElementTypeMat4

	_, err := NewBuilder(device.NewRecorder()).Build(context.Background(), doc, decode(t, doc, bin), 0)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
	assert.NotErrorIs(t, err, common.ErrMissingReference)
}

func TestRenderContract(t *testing.T) {
	doc, bin := glbtest.Textured()
	dev := device.NewRecorder()
	s, err := NewBuilder(dev).Build(context.Background(), doc, decode(t, doc, bin), 0)
	require.NoError(t, err)
	dev.Reset()

	view := common.LookAt([3]float32{0, 0, 5}, [3]float32{}, [3]float32{0, 1, 0})
	proj := common.Perspective(common.DegToRad(60), 1, 0.1, 100)
	s.Render(dev, NewRenderDescriptor(view, proj))

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
	assert.Equal(t, common.Identity(), calls[4].Matrix)
	assert.Equal(t, view, calls[5].Matrix)
	assert.Equal(t, proj, calls[6].Matrix)
	assert.Equal(t, 3, calls[8].Count)

	// Rendering again issues the same calls.
	dev.Reset()
	s.Render(dev, NewRenderDescriptor(view, proj))
	assert.Len(t, dev.Calls(), 9)
}

func TestRenderComposesNodeTransforms(t *testing.T) {
	doc, bin := glbtest.Minimal()
	doc.Nodes[0].Translation = &[3]float32{4, 0, 0}
	dev := device.NewRecorder()
	s, err := NewBuilder(dev).Build(context.Background(), doc, decode(t, doc, bin), 0)
	require.NoError(t, err)

	dev.Reset()
	s.Render(dev, NewRenderDescriptor(common.Identity(), common.Identity()))
	model := dev.Calls()[1].Matrix
	assert.Equal(t, common.Identity(), model)

	dev.Reset()
	desc := NewRenderDescriptor(common.Identity(), common.Identity())
	desc.ComposeNodeTransforms = true
	s.Render(dev, desc)
	model = dev.Calls()[1].Matrix
	assert.Equal(t, float32(4), model[12])
}

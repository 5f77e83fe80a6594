// Package scene builds the render graph of one GLB scene and submits it to a device.
package scene

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/assembler"
	"github.com/Carmen-Shannon/oxy-glb/engine/container"
	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
)

// RenderNode is a scene node that draws a mesh.
// Its transform fields are carried as parsed; Build never composes them into the draw.
type RenderNode struct {
	// Index is the node index in the document.
	Index int

	Name string

	// Mesh is the mesh index drawn at this node.
	Mesh int

	Matrix      *[16]float32
	Translation *[3]float32
	Rotation    *[4]float32
	Scale       *[3]float32

	// Primitives are the mesh primitives in mesh order.
	Primitives []*assembler.RenderPrimitive
}

// LocalMatrix returns the node's local transform: Matrix when present, otherwise translation * rotation * scale.
//
// Returns:
//   - common.Mat4: the column-major local transform
func (n *RenderNode) LocalMatrix() common.Mat4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	return common.ComposeTRS(n.Translation, n.Rotation, n.Scale)
}

// RenderDescriptor carries the per-frame transforms passed to Scene.Render.
type RenderDescriptor struct {
	Model      common.Mat4
	View       common.Mat4
	Projection common.Mat4

	// ComposeNodeTransforms multiplies Model by each node's LocalMatrix.
	ComposeNodeTransforms bool
}

// NewRenderDescriptor returns a descriptor with identity model, the given view and projection and
// node transforms ignored.
//
// Parameters:
//   - view: the view matrix
//   - projection: the projection matrix
//
// Returns:
//   - RenderDescriptor: the descriptor
func NewRenderDescriptor(view, projection common.Mat4) RenderDescriptor {
	return RenderDescriptor{
		Model:      common.Identity(),
		View:       view,
		Projection: projection,
	}
}

// Scene is a built, immutable render graph. It may be rendered any number of times.
type Scene interface {
	// Index returns the scene index in the document.
	Index() int

	// Name returns the scene name, empty when the document gives none.
	Name() string

	// Nodes returns the render nodes in scene order. Nodes without a mesh are not included.
	//
	// Returns:
	//   - []*RenderNode: the nodes; callers must not modify them
	Nodes() []*RenderNode

	// PrimitiveCount returns the total number of primitives across all nodes.
	PrimitiveCount() int

	// Render submits every primitive of every node, in build order, to dev.
	//
	// Parameters:
	//   - dev: the device to draw with
	//   - desc: the frame transforms
	Render(dev device.Device, desc RenderDescriptor)
}

// scene is the implementation of the Scene interface.
type scene struct {
	index int
	name  string
	nodes []*RenderNode
}

var _ Scene = &scene{}

func (s *scene) Index() int {
	return s.index
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Nodes() []*RenderNode {
	return s.nodes
}

func (s *scene) PrimitiveCount() int {
	n := 0
	for _, node := range s.nodes {
		n += len(node.Primitives)
	}
	return n
}

func (s *scene) Render(dev device.Device, desc RenderDescriptor) {
	for _, node := range s.nodes {
		model := desc.Model
		if desc.ComposeNodeTransforms {
			model = common.Mul4(desc.Model, node.LocalMatrix())
		}
		for _, prim := range node.Primitives {
			prim.Submit(dev, model, desc.View, desc.Projection)
		}
	}
}

// String summarises the scene for logs.
func (s *scene) String() string {
	return fmt.Sprintf("scene %d %q: %d nodes, %d primitives", s.index, s.name, len(s.nodes), s.PrimitiveCount())
}

// LogValue lets a Scene be passed directly as a slog attribute.
func (s *scene) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("index", s.index),
		slog.String("name", s.name),
		slog.Int("nodes", len(s.nodes)),
		slog.Int("primitives", s.PrimitiveCount()),
	)
}

// Builder builds Scenes from decoded documents.
type Builder interface {
	// Build walks scene → nodes → meshes → primitives and assembles every primitive.
	// Every reference of the scene is resolved and every base-color image decoded before any device resource
	// is created, so a dangling reference, unsupported format or undecodable image creates nothing. A device
	// that rejects a resource midway leaves the resources created before it in place; callers that need
	// cleanup wrap the load in the device's own checkpoint (see wgpu_backend.Backend.Checkpoint).
	// On error no scene is returned.
	//
	// Parameters:
	//   - ctx: passed to image decoding
	//   - doc: the document
	//   - c: the decoded container backing the document's buffer
	//   - sceneIndex: the scene to build
	//
	// Returns:
	//   - Scene: the built scene
	//   - error: a *common.LoadError
	Build(ctx context.Context, doc *schema.Document, c *container.Container, sceneIndex int) (Scene, error)
}

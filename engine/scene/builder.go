package scene

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/assembler"
	"github.com/Carmen-Shannon/oxy-glb/engine/container"
	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/imagedecode"
	"github.com/Carmen-Shannon/oxy-glb/engine/resolver"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
)

// builder is the implementation of the Builder interface.
type builder struct {
	dev           device.Device
	decoder       imagedecode.Decoder
	logger        *slog.Logger
	shareTextures bool
}

var _ Builder = &builder{}

// NewBuilder creates a Builder that creates resources on dev.
//
// Parameters:
//   - dev: the device every buffer and texture is created on
//   - options: functional options to configure the builder
//
// Returns:
//   - Builder: the builder
func NewBuilder(dev device.Device, options ...BuilderOption) Builder {
	b := &builder{
		dev:    dev,
		logger: slog.Default(),
	}
	for _, option := range options {
		option(b)
	}
	if b.decoder == nil {
		b.decoder = imagedecode.New(imagedecode.WithLogger(b.logger))
	}
	return b
}

func (b *builder) Build(ctx context.Context, doc *schema.Document, c *container.Container, sceneIndex int) (Scene, error) {
	if err := doc.CheckSupport(); err != nil {
		return nil, err
	}

	op := fmt.Sprintf("scene %d", sceneIndex)
	if !common.InRange(sceneIndex, len(doc.Scenes)) {
		return nil, common.NewError(common.KindMissingReference, op, "index out of range (%d scenes)", len(doc.Scenes))
	}
	sc := &doc.Scenes[sceneIndex]

	if err := validateScene(doc, sc); err != nil {
		return nil, common.WrapError(common.KindMissingReference, op, err)
	}

	asm := assembler.New(resolver.New(doc, c), b.dev, b.decoder,
		assembler.WithLogger(b.logger),
		assembler.WithSharedTextures(b.shareTextures),
	)

	// Every primitive is resolved and decoded before the first device resource is created, so reference
	// and decode failures leave the device untouched.
	type pending struct {
		node     *RenderNode
		prepared *assembler.PreparedPrimitive
		op       string
	}
	var work []pending

	out := &scene{
		index: sceneIndex,
		name:  sc.Name,
	}
	for _, nodeIndex := range sc.Nodes {
		node := &doc.Nodes[nodeIndex]
		if node.Mesh == nil {
			b.logger.Debug("skipping node without mesh", "node", nodeIndex, "name", node.Name)
			continue
		}
		mesh := &doc.Meshes[*node.Mesh]

		rn := &RenderNode{
			Index:       nodeIndex,
			Name:        node.Name,
			Mesh:        *node.Mesh,
			Matrix:      node.Matrix,
			Translation: node.Translation,
			Rotation:    node.Rotation,
			Scale:       node.Scale,
			Primitives:  make([]*assembler.RenderPrimitive, 0, len(mesh.Primitives)),
		}
		for i := range mesh.Primitives {
			primOp := fmt.Sprintf("node %d mesh %d primitive %d", nodeIndex, *node.Mesh, i)
			prepared, err := asm.Prepare(ctx, doc, &mesh.Primitives[i])
			if err != nil {
				return nil, common.WrapError(common.KindMissingReference, primOp, err)
			}
			work = append(work, pending{node: rn, prepared: prepared, op: primOp})
		}
		out.nodes = append(out.nodes, rn)
	}

	for _, w := range work {
		prim, err := asm.Upload(w.prepared)
		if err != nil {
			return nil, common.WrapError(common.KindResourceCreationFailure, w.op, err)
		}
		w.node.Primitives = append(w.node.Primitives, prim)
	}

	b.logger.Info("built scene", "scene", out)
	return out, nil
}

// validateScene checks every node index of the scene and every mesh index of those nodes.
func validateScene(doc *schema.Document, sc *schema.Scene) error {
	for _, nodeIndex := range sc.Nodes {
		if !common.InRange(nodeIndex, len(doc.Nodes)) {
			return common.NewError(common.KindMissingReference, fmt.Sprintf("node %d", nodeIndex), "index out of range (%d nodes)", len(doc.Nodes))
		}
		node := &doc.Nodes[nodeIndex]
		if node.Mesh == nil {
			continue
		}
		if !common.InRange(*node.Mesh, len(doc.Meshes)) {
			return common.NewError(common.KindMissingReference, fmt.Sprintf("node %d", nodeIndex), "mesh %d out of range (%d meshes)", *node.Mesh, len(doc.Meshes))
		}
	}
	return nil
}

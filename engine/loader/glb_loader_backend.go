package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/container"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
)

// glbLoaderBackendImpl is the implementation of glbLoaderBackend.
type glbLoaderBackendImpl struct {
	logger *slog.Logger
}

// glbLoaderBackend is a loaderBackend implementation for binary glTF (GLB) files.
type glbLoaderBackend interface {
	loaderBackend
}

var _ glbLoaderBackend = &glbLoaderBackendImpl{}

// newGLBLoaderBackend creates a new GLB loader backend.
//
// Parameters:
//   - logger: the logger for decode diagnostics
//
// Returns:
//   - glbLoaderBackend: the loader backend for GLB files
func newGLBLoaderBackend(logger *slog.Logger) glbLoaderBackend {
	return &glbLoaderBackendImpl{
		logger: logger,
	}
}

func (b *glbLoaderBackendImpl) Decode(data []byte) (*container.Container, *schema.Document, error) {
	if !container.IsGLB(data) && len(data) > 0 && data[0] == '{' {
		return nil, nil, common.NewError(common.KindMalformedContainer, "header", "input is JSON glTF, expected binary GLB")
	}

	c, err := container.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	b.logger.Debug("decoded container",
		"length", c.Header.Length,
		"json_bytes", c.JSON.Length,
		"bin_bytes", c.Binary.Length,
	)

	doc, err := schema.Parse(c.JSONText())
	if err != nil {
		return nil, nil, err
	}
	b.logger.Debug("parsed document",
		"generator", doc.Asset.Generator,
		"scenes", len(doc.Scenes),
		"nodes", len(doc.Nodes),
		"meshes", len(doc.Meshes),
		"accessors", len(doc.Accessors),
		"images", len(doc.Images),
	)
	return c, doc, nil
}

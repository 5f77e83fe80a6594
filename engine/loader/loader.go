// Package loader runs the whole GLB pipeline: fetch, container decode, schema parse and scene build.
package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/container"
	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/fetch"
	"github.com/Carmen-Shannon/oxy-glb/engine/imagedecode"
	"github.com/Carmen-Shannon/oxy-glb/engine/scene"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
)

// LoaderBackendType identifies the asset format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLB selects the binary glTF backend.
	BackendTypeGLB LoaderBackendType = iota
)

// Result is a completed load. Scene borrows Container's bytes, so the whole Result stays alive
// as long as the scene is rendered.
type Result struct {
	// Source is the URL the bytes came from, empty for LoadBytes and LoadReader.
	Source string

	Container *container.Container
	Document  *schema.Document
	Scene     scene.Scene

	// Elapsed is the wall time of the load.
	Elapsed time.Duration
}

// Loader loads GLB assets into render-ready scenes.
type Loader interface {
	// Load fetches the asset at url and builds its scene.
	//
	// Parameters:
	//   - ctx: passed to the fetcher and image decoder
	//   - url: a file path, file:// or http(s):// URL
	//
	// Returns:
	//   - *Result: the loaded asset
	//   - error: a *common.LoadError; fetch failures are ResourceCreationFailure
	Load(ctx context.Context, url string) (*Result, error)

	// LoadBytes builds the scene of an asset already in memory.
	//
	// Parameters:
	//   - ctx: passed to the image decoder
	//   - data: the GLB bytes; borrowed by the result
	//
	// Returns:
	//   - *Result: the loaded asset
	//   - error: a *common.LoadError
	LoadBytes(ctx context.Context, data []byte) (*Result, error)

	// LoadReader reads r to the end and builds its scene.
	//
	// Parameters:
	//   - ctx: passed to the image decoder
	//   - r: the reader providing GLB bytes
	//
	// Returns:
	//   - *Result: the loaded asset
	//   - error: a *common.LoadError
	LoadReader(ctx context.Context, r io.Reader) (*Result, error)
}

// loader is the implementation of the Loader interface.
type loader struct {
	fetcher fetch.Fetcher
	device  device.Device
	decoder imagedecode.Decoder
	logger  *slog.Logger

	// sceneIndex overrides the document's default scene when set.
	sceneIndex    *int
	shareTextures bool

	backendType LoaderBackendType
	backend     loaderBackend
}

var _ Loader = &loader{}

// NewLoader creates a Loader. Without WithDevice resources are created on an in-memory device.Recorder,
// which is enough to validate assets headlessly.
//
// Parameters:
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger:      slog.Default(),
		backendType: BackendTypeGLB,
	}
	for _, option := range options {
		option(l)
	}

	if l.fetcher == nil {
		l.fetcher = fetch.New(fetch.WithLogger(l.logger))
	}
	if l.decoder == nil {
		l.decoder = imagedecode.New(imagedecode.WithLogger(l.logger))
	}
	if l.device == nil {
		l.device = device.NewRecorder()
	}

	switch l.backendType {
	case BackendTypeGLB:
		l.backend = newGLBLoaderBackend(l.logger)
	default:
		panic(fmt.Sprintf("unsupported loader backend type: %d", l.backendType))
	}
	return l
}

func (l *loader) Load(ctx context.Context, url string) (*Result, error) {
	start := time.Now()
	data, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, common.WrapError(common.KindResourceCreationFailure, "fetch", err)
	}

	res, err := l.load(ctx, data, start)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", url, err)
	}
	res.Source = url
	l.logger.Info("loaded asset", "source", url, "bytes", len(data), "elapsed", res.Elapsed)
	return res, nil
}

func (l *loader) LoadBytes(ctx context.Context, data []byte) (*Result, error) {
	return l.load(ctx, data, time.Now())
}

func (l *loader) LoadReader(ctx context.Context, r io.Reader) (*Result, error) {
	start := time.Now()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, common.WrapError(common.KindResourceCreationFailure, "read", err)
	}
	return l.load(ctx, data, start)
}

// load runs decode, parse and build over data.
func (l *loader) load(ctx context.Context, data []byte, start time.Time) (*Result, error) {
	c, doc, err := l.backend.Decode(data)
	if err != nil {
		return nil, err
	}

	sceneIndex := doc.DefaultScene()
	if l.sceneIndex != nil {
		sceneIndex = *l.sceneIndex
	}

	b := scene.NewBuilder(l.device,
		scene.WithImageDecoder(l.decoder),
		scene.WithLogger(l.logger),
		scene.WithSharedTextures(l.shareTextures),
	)
	s, err := b.Build(ctx, doc, c, sceneIndex)
	if err != nil {
		return nil, err
	}

	return &Result{
		Container: c,
		Document:  doc,
		Scene:     s,
		Elapsed:   time.Since(start),
	}, nil
}

package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/fetch"
	"github.com/Carmen-Shannon/oxy-glb/engine/imagedecode"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFetcher is an option builder that sets the byte fetcher used by Load.
//
// Parameters:
//   - f: the fetcher
//
// Returns:
//   - LoaderBuilderOption: a function that applies the fetcher option to a loader
func WithFetcher(f fetch.Fetcher) LoaderBuilderOption {
	return func(l *loader) {
		l.fetcher = f
	}
}

// WithDevice is an option builder that sets the device buffers and textures are created on.
//
// Parameters:
//   - dev: the device
//
// Returns:
//   - LoaderBuilderOption: a function that applies the device option to a loader
func WithDevice(dev device.Device) LoaderBuilderOption {
	return func(l *loader) {
		l.device = dev
	}
}

// WithImageDecoder is an option builder that sets the embedded image decoder.
//
// Parameters:
//   - dec: the decoder
//
// Returns:
//   - LoaderBuilderOption: a function that applies the decoder option to a loader
func WithImageDecoder(dec imagedecode.Decoder) LoaderBuilderOption {
	return func(l *loader) {
		l.decoder = dec
	}
}

// WithLogger is an option builder that sets the logger shared by every stage of the load.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.logger = logger
	}
}

// WithSceneIndex is an option builder that selects a scene instead of the document's default scene.
//
// Parameters:
//   - index: the scene index
//
// Returns:
//   - LoaderBuilderOption: a function that applies the scene option to a loader
func WithSceneIndex(index int) LoaderBuilderOption {
	return func(l *loader) {
		l.sceneIndex = &index
	}
}

// WithSharedTextures is an option builder that uploads each texture index once per load.
func WithSharedTextures(share bool) LoaderBuilderOption {
	return func(l *loader) {
		l.shareTextures = share
	}
}

// WithBackendType is an option builder that selects the asset format backend.
//
// Parameters:
//   - t: the backend type
//
// Returns:
//   - LoaderBuilderOption: a function that applies the backend option to a loader
func WithBackendType(t LoaderBackendType) LoaderBuilderOption {
	return func(l *loader) {
		l.backendType = t
	}
}

package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-glb/engine/imagedecode"
)

// BuilderOption is a functional option for configuring a Builder.
// Use the With* functions to create options.
type BuilderOption func(b *builder)

// WithImageDecoder sets the decoder used for embedded images. Defaults to imagedecode.New().
//
// Parameters:
//   - dec: the image decoder
//
// Returns:
//   - BuilderOption: option function to apply
func WithImageDecoder(dec imagedecode.Decoder) BuilderOption {
	return func(b *builder) {
		b.decoder = dec
	}
}

// WithLogger sets the logger used by the builder and the assembler it creates.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - BuilderOption: option function to apply
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *builder) {
		b.logger = logger
	}
}

// WithSharedTextures decodes and uploads each texture index once per build.
//
// Parameters:
//   - share: whether textures are shared between primitives
//
// Returns:
//   - BuilderOption: option function to apply
func WithSharedTextures(share bool) BuilderOption {
	return func(b *builder) {
		b.shareTextures = share
	}
}

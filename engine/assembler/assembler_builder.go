package assembler

import "log/slog"

// AssemblerOption is a functional option for configuring an Assembler via New.
type AssemblerOption func(*assembler)

// WithLogger sets the logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - AssemblerOption: a function that applies the logger to an assembler
func WithLogger(logger *slog.Logger) AssemblerOption {
	return func(a *assembler) {
		a.logger = logger
	}
}

// WithSharedTextures makes primitives that reference the same texture index reuse one decoded, uploaded
// texture. Off by default, so every primitive decodes and uploads its own texture.
//
// Parameters:
//   - share: whether textures are shared
//
// Returns:
//   - AssemblerOption: a function that applies the setting to an assembler
func WithSharedTextures(share bool) AssemblerOption {
	return func(a *assembler) {
		a.shareTextures = share
	}
}

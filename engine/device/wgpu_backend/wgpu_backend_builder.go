package wgpu_backend

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
)

// BackendOption is a functional option for configuring a Backend via New.
type BackendOption func(*Backend)

// WithPresentMode sets how frames are delivered to the display.
//
// Parameters:
//   - mode: the present mode; see ParsePresentMode
//
// Returns:
//   - BackendOption: a function that applies the present mode to a backend
func WithPresentMode(mode wgpu.PresentMode) BackendOption {
	return func(b *Backend) {
		b.presentMode = mode
	}
}

// WithClearColor sets the color the frame is cleared to.
//
// Parameters:
//   - rgba: red, green, blue and alpha in [0, 1]
//
// Returns:
//   - BackendOption: a function that applies the clear color to a backend
func WithClearColor(rgba [4]float64) BackendOption {
	return func(b *Backend) {
		b.clearColor = wgpu.Color{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	}
}

// WithMaxDrawsPerFrame sizes the transform uniform ring. Draws beyond the limit are skipped.
func WithMaxDrawsPerFrame(n int) BackendOption {
	return func(b *Backend) {
		if n > 0 {
			b.maxDraws = n
		}
	}
}

// WithForceFallbackAdapter requests the software adapter.
func WithForceFallbackAdapter(force bool) BackendOption {
	return func(b *Backend) {
		b.forceFallbackAdapter = force
	}
}

// WithLogger sets the logger for device diagnostics.
func WithLogger(logger *slog.Logger) BackendOption {
	return func(b *Backend) {
		b.logger = logger
	}
}

package imagedecode

import "log/slog"

// DecoderOption is a functional option for configuring a Decoder via New.
type DecoderOption func(*decoder)

// WithLogger sets the logger used for mismatch warnings and debug output.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - DecoderOption: a function that applies the logger to a decoder
func WithLogger(logger *slog.Logger) DecoderOption {
	return func(d *decoder) {
		d.logger = logger
	}
}

// WithStrictMIME makes a declared MIME type that disagrees with the sniffed one an error instead of a warning.
//
// Parameters:
//   - strict: whether mismatches fail
//
// Returns:
//   - DecoderOption: a function that applies the setting to a decoder
func WithStrictMIME(strict bool) DecoderOption {
	return func(d *decoder) {
		d.strict = strict
	}
}

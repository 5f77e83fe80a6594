// Package imagedecode turns embedded image bytes into decoded images.
package imagedecode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned when the bytes are not in any registered image format.
var ErrUnsupportedImage = errors.New("unsupported image format")

// supportedMIME lists the MIME types with a registered image codec.
var supportedMIME = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/webp": true,
	"image/tiff": true,
}

// Decoder is the image-decode capability.
type Decoder interface {
	// Decode decodes one image.
	//
	// Parameters:
	//   - ctx: cancels the decode before it starts
	//   - data: the encoded bytes; not retained
	//   - mimeType: the declared MIME type, may be empty
	//
	// Returns:
	//   - image.Image: the decoded image
	//   - error: error if the bytes could not be decoded
	Decode(ctx context.Context, data []byte, mimeType string) (image.Image, error)
}

// decoder is the implementation of the Decoder interface.
type decoder struct {
	logger *slog.Logger
	strict bool
}

var _ Decoder = &decoder{}

// New creates a Decoder that sniffs the real format of the bytes and decodes it with the standard and
// x/image codecs.
//
// Parameters:
//   - options: functional options to configure the decoder
//
// Returns:
//   - Decoder: the decoder
func New(options ...DecoderOption) Decoder {
	d := &decoder{
		logger: slog.Default(),
	}
	for _, option := range options {
		option(d)
	}
	return d
}

func (d *decoder) Decode(ctx context.Context, data []byte, mimeType string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sniffed := Sniff(data)
	switch {
	case sniffed == "" && mimeType == "":
		return nil, fmt.Errorf("decode image: %w: unrecognised bytes", ErrUnsupportedImage)
	case sniffed == "":
		sniffed = mimeType
	case mimeType != "" && mimeType != sniffed:
		if d.strict {
			return nil, fmt.Errorf("decode image: declared %s but bytes are %s", mimeType, sniffed)
		}
		d.logger.Warn("image mime type mismatch", "declared", mimeType, "sniffed", sniffed)
	}
	if !supportedMIME[sniffed] {
		return nil, fmt.Errorf("decode image: %w: %s", ErrUnsupportedImage, sniffed)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image (%s): %w", sniffed, err)
	}
	d.logger.Debug("decoded image", "format", format, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, nil
}

// Sniff returns the MIME type detected from the leading bytes of data, or "" when unknown.
//
// Parameters:
//   - data: the encoded bytes
//
// Returns:
//   - string: the detected MIME type
func Sniff(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}

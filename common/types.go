// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"image"
	"image/draw"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the pixel data in RGBA format, with 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// NewTextureStagingData converts a decoded image into tightly packed RGBA pixels.
// Images that are already *image.RGBA with a zero origin and no row padding are used without copying.
//
// Parameters:
//   - img: the decoded image
//
// Returns:
//   - TextureStagingData: the staged pixels and dimensions
func NewTextureStagingData(img image.Image) TextureStagingData {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if rgba, ok := img.(*image.RGBA); ok && bounds.Min == (image.Point{}) && rgba.Stride == width*4 {
		return TextureStagingData{Pixels: rgba.Pix, Width: uint32(width), Height: uint32(height)}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(width),
		Height: uint32(height),
	}
}

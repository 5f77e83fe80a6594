package imagedecode

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-glb/internal/glbtest"
)

func TestDecodePNG(t *testing.T) {
	img, err := New().Decode(context.Background(), glbtest.PNG, "image/png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1, 1), img.Bounds())

	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestDecodeSniffsOverDeclared(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	img, err := New().Decode(context.Background(), buf.Bytes(), "image/png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, err = New(WithStrictMIME(true)).Decode(context.Background(), buf.Bytes(), "image/png")
	assert.Error(t, err)
}

func TestDecodeErrors(t *testing.T) {
	d := New()

	_, err := d.Decode(context.Background(), []byte("not an image"), "")
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = d.Decode(context.Background(), []byte("not an image"), "image/ktx2")
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	// Valid signature, truncated body.
	_, err = d.Decode(context.Background(), glbtest.PNG[:20], "image/png")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Decode(ctx, glbtest.PNG, "image/png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSniff(t *testing.T) {
	assert.Equal(t, "image/png", Sniff(glbtest.PNG))
	assert.Equal(t, "", Sniff([]byte{1, 2, 3}))
	assert.Equal(t, "", Sniff(nil))
}

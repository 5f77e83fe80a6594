package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadErrorClassification(t *testing.T) {
	inner := NewError(KindMissingReference, "texture 0", "index out of range (%d textures)", 0)
	wrapped := WrapError(KindResourceCreationFailure, "material 2", inner)

	assert.Equal(t, KindMissingReference, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, ErrMissingReference)
	assert.NotErrorIs(t, wrapped, ErrResourceCreationFailure)
	assert.Equal(t, "MissingReference: material 2: MissingReference: texture 0: index out of range (0 textures)", wrapped.Error())

	plain := WrapError(KindResourceCreationFailure, "image 1", errors.New("decode failed"))
	assert.Equal(t, KindResourceCreationFailure, KindOf(plain))
	assert.ErrorIs(t, fmt.Errorf("load a.glb: %w", plain), ErrResourceCreationFailure)

	assert.NoError(t, WrapError(KindMalformedSchema, "json", nil))
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("other")))
	assert.Equal(t, "ErrorKind(9)", ErrorKind(9).String())
}

func TestInRangeAndCoalesce(t *testing.T) {
	assert.True(t, InRange(0, 1))
	assert.False(t, InRange(1, 1))
	assert.False(t, InRange(-1, 3))
	assert.False(t, InRange(0, 0))

	assert.Equal(t, 12, Coalesce(0, 12))
	assert.Equal(t, 16, Coalesce(16, 12))
	assert.Equal(t, "", Coalesce("", ""))
}

func TestComposeTRS(t *testing.T) {
	assert.Equal(t, Identity(), ComposeTRS(nil, nil, nil))

	m := ComposeTRS(&[3]float32{1, 2, 3}, &[4]float32{0, 0, 0, 1}, &[3]float32{2, 2, 2})
	assert.Equal(t, Mat4{
		2, 0, 0, 0,
		0, 2, 0, 0,
		0, 0, 2, 0,
		1, 2, 3, 1,
	}, m)
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(DegToRad(90), 1, 1, 10)
	assert.InDelta(t, 1, p[0], 1e-6)
	assert.InDelta(t, 1, p[5], 1e-6)
	assert.Equal(t, float32(-1), p[11])

	// A point on the near plane (z = -1, w = 1) maps to depth 0.
	assert.InDelta(t, 0, -p[10]+p[14], 1e-6)
}

func TestSliceToBytes(t *testing.T) {
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)
	assert.Empty(t, SliceToBytes([]uint16{}))
}

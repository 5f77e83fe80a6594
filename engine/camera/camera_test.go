package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-glb/common"
)

func TestDefaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, [3]float32{-2, 5, 10}, c.Eye())
	assert.Equal(t, [3]float32{0, 0, 0}, c.Target())
	assert.Equal(t, [3]float32{0, 1, 0}, c.Up())
	assert.InDelta(t, math32.Pi/3, c.Fov(), 1e-6)
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(100), c.Far())
}

func TestViewMatrixMapsTargetToForwardAxis(t *testing.T) {
	c := NewCamera(WithEye(0, 0, 5))
	view := mgl32.Mat4(c.ViewMatrix())

	p := view.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, p.X(), 1e-5)
	assert.InDelta(t, 0, p.Y(), 1e-5)
	assert.InDelta(t, -5, p.Z(), 1e-5)
}

func TestViewProjection(t *testing.T) {
	c := NewCamera(WithAspect(16.0 / 9.0))
	assert.Equal(t, common.Mul4(c.ProjectionMatrix(), c.ViewMatrix()), c.ViewProjectionMatrix())

	before := c.ProjectionMatrix()
	c.SetAspect(1)
	assert.NotEqual(t, before, c.ProjectionMatrix())

	c.SetAspect(0)
	assert.Equal(t, float32(1), c.Aspect())
}

func TestOrbitKeepsDistance(t *testing.T) {
	c := NewCamera(WithEye(0, 0, 10))
	c.Orbit(10, 5)

	eye := c.Eye()
	dist := math32.Sqrt(eye[0]*eye[0] + eye[1]*eye[1] + eye[2]*eye[2])
	assert.InDelta(t, 10, dist, 1e-4)
	assert.Greater(t, eye[0], float32(0))
	assert.Greater(t, eye[1], float32(0))
}

func TestOrbitClampsElevation(t *testing.T) {
	c := NewCamera(WithEye(0, 0, 10), WithOrbitSpeed(1))
	c.Orbit(0, 10)
	eye := c.Eye()
	assert.Less(t, eye[1], float32(10))
	assert.Greater(t, eye[2], float32(0))
}

func TestZoomClamps(t *testing.T) {
	c := NewCamera(WithEye(0, 0, 10), WithZoomSpeed(1), WithRadiusBounds(2, 20))

	c.Zoom(5)
	assert.InDelta(t, 5, c.Eye()[2], 1e-4)

	c.Zoom(100)
	assert.InDelta(t, 2, c.Eye()[2], 1e-4)

	c.Zoom(-100)
	assert.InDelta(t, 20, c.Eye()[2], 1e-4)
}

package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-glb/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	eye    [3]float32
	target [3]float32
	up     [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	// Orbit state, derived from eye and target.
	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32

	viewMatrix           common.Mat4
	projectionMatrix     common.Mat4
	viewProjectionMatrix common.Mat4
}

// Camera is a look-at camera with a perspective projection and simple orbit controls around its target.
// It supplies the view and projection uniforms of a frame.
type Camera interface {
	// Eye returns the camera's world-space position.
	Eye() [3]float32

	// Target returns the look-at point.
	Target() [3]float32

	// Up returns the camera's up vector.
	Up() [3]float32

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the current view matrix (column-major).
	//
	// Returns:
	//   - common.Mat4: the view matrix
	ViewMatrix() common.Mat4

	// ProjectionMatrix returns the current projection matrix (column-major, depth in [0, 1]).
	//
	// Returns:
	//   - common.Mat4: the projection matrix
	ProjectionMatrix() common.Mat4

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - common.Mat4: the combined matrix
	ViewProjectionMatrix() common.Mat4

	// SetEye moves the camera and recomputes its matrices.
	//
	// Parameters:
	//   - eye: world-space position
	SetEye(eye [3]float32)

	// SetTarget changes the look-at point and recomputes the matrices. The eye keeps its position.
	//
	// Parameters:
	//   - target: world-space position
	SetTarget(target [3]float32)

	// SetAspect sets the aspect ratio, typically on window resize.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// Orbit rotates the eye around the target by a number of orbit speed steps.
	//
	// Parameters:
	//   - azimuthSteps: horizontal steps, positive rotates right
	//   - elevationSteps: vertical steps, positive tilts up; clamped to the elevation bounds
	Orbit(azimuthSteps, elevationSteps float32)

	// Zoom moves the eye toward the target. The distance is clamped to the radius bounds.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed; positive zooms in
	Zoom(delta float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera. Defaults: eye (-2, 5, 10), target at the origin, up +Y, 60° field of view,
// near 0.1, far 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    [3]float32{-2, 5, 10},
		target: [3]float32{0, 0, 0},
		up:     [3]float32{0, 1, 0},
		fov:    common.DegToRad(60),
		aspect: 1.0,
		near:   0.1,
		far:    100.0,

		minRadius:    0.1,
		maxRadius:    1000,
		minElevation: -math32.Pi/2 + 0.05,
		maxElevation: math32.Pi/2 - 0.05,

		orbitSpeed: 0.03,
		zoomSpeed:  0.5,
	}
	for _, option := range options {
		option(c)
	}
	c.syncOrbit()
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Eye() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) SetEye(eye [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = eye
	c.syncOrbit()
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(target [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.syncOrbit()
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Orbit(azimuthSteps, elevationSteps float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth += azimuthSteps * c.orbitSpeed
	c.elevation = clamp(c.elevation+elevationSteps*c.orbitSpeed, c.minElevation, c.maxElevation)
	c.updateEye()
	c.updateMatrices()
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = clamp(c.radius-delta*c.zoomSpeed, c.minRadius, c.maxRadius)
	c.updateEye()
	c.updateMatrices()
}

// syncOrbit derives radius, azimuth and elevation from eye and target.
// Caller must hold the mutex.
func (c *cameraImpl) syncOrbit() {
	dx := c.eye[0] - c.target[0]
	dy := c.eye[1] - c.target[1]
	dz := c.eye[2] - c.target[2]
	c.radius = math32.Sqrt(dx*dx + dy*dy + dz*dz)
	if c.radius < 1e-6 {
		c.azimuth, c.elevation = 0, 0
		return
	}
	c.azimuth = math32.Atan2(dx, dz)
	c.elevation = math32.Asin(dy / c.radius)
}

// updateEye recomputes the eye from the orbit state. Caller must hold the mutex.
func (c *cameraImpl) updateEye() {
	cosElev, sinElev := math32.Cos(c.elevation), math32.Sin(c.elevation)
	cosAzim, sinAzim := math32.Cos(c.azimuth), math32.Sin(c.azimuth)
	c.eye[0] = c.target[0] + c.radius*cosElev*sinAzim
	c.eye[1] = c.target[1] + c.radius*sinElev
	c.eye[2] = c.target[2] + c.radius*cosElev*cosAzim
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = common.LookAt(c.eye, c.target, c.up)
	c.projectionMatrix = common.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = common.Mul4(c.projectionMatrix, c.viewMatrix)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

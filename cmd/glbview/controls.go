package main

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/scene"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
)

// action is a request from the keyboard that the viewer, not the controls, carries out.
type action int

const (
	actionNone action = iota
	actionReload
	actionNextScene
)

const (
	// keyStepsPerSecond is the orbit or zoom rate of a held key.
	keyStepsPerSecond = 60
	// dragStepsPerPixel converts cursor movement to orbit steps.
	dragStepsPerPixel = 0.25
	// autoRotateSteps is the orbit rate while auto-rotating, in steps per second.
	autoRotateSteps = 15
)

// controls maps window input to camera movement and viewer toggles.
//
//	A / D, Left / Right     orbit horizontally
//	PageUp / PageDown       orbit vertically
//	W / S, Up / Down        zoom
//	Space                   toggle auto-rotate
//	T                       toggle node transforms
//	F                       frame the loaded scene
//	R                       reload
//	N                       next scene
type controls struct {
	cam camera.Camera

	// homeEye and homeTarget are restored by F when no scene bounds are known.
	homeEye, homeTarget [3]float32
	bounds              *[2][3]float32

	autoRotate        bool
	composeTransforms bool

	held map[uint32]bool
}

func newControls(cam camera.Camera, composeTransforms bool) *controls {
	return &controls{
		cam:               cam,
		homeEye:           cam.Eye(),
		homeTarget:        cam.Target(),
		composeTransforms: composeTransforms,
		held:              make(map[uint32]bool),
	}
}

// key handles a key transition and returns the action the viewer should take.
func (c *controls) key(code uint32, down bool) action {
	wasDown := c.held[code]
	c.held[code] = down
	if !down || wasDown {
		return actionNone
	}

	switch code {
	case common.KeyR:
		return actionReload
	case common.KeyN:
		return actionNextScene
	case common.KeyF:
		c.frame()
	case common.KeyT:
		c.composeTransforms = !c.composeTransforms
	case common.KeySpace:
		c.autoRotate = !c.autoRotate
	}
	return actionNone
}

func (c *controls) drag(dx, dy float32) {
	c.cam.Orbit(-dx*dragStepsPerPixel, dy*dragStepsPerPixel)
}

func (c *controls) scroll(delta float32) {
	c.cam.Zoom(delta)
}

// update applies held keys and auto-rotation for a frame of dt seconds.
func (c *controls) update(dt float32) {
	steps := dt * keyStepsPerSecond
	var azimuth, elevation, zoom float32

	if c.held[common.KeyA] || c.held[common.KeyLeft] {
		azimuth -= steps
	}
	if c.held[common.KeyD] || c.held[common.KeyRight] {
		azimuth += steps
	}
	if c.held[common.KeyPageUp] {
		elevation += steps
	}
	if c.held[common.KeyPageDown] {
		elevation -= steps
	}
	if c.held[common.KeyW] || c.held[common.KeyUp] {
		zoom += dt
	}
	if c.held[common.KeyS] || c.held[common.KeyDown] {
		zoom -= dt
	}
	if c.autoRotate {
		azimuth += dt * autoRotateSteps
	}

	if azimuth != 0 || elevation != 0 {
		c.cam.Orbit(azimuth, elevation)
	}
	if zoom != 0 {
		c.cam.Zoom(zoom)
	}
}

// setBounds records the bounds F frames, nil to fall back to the home placement.
func (c *controls) setBounds(b *[2][3]float32) {
	c.bounds = b
}

// frame points the camera at the scene bounds from the home direction, far enough to fit them.
func (c *controls) frame() {
	if c.bounds == nil {
		c.cam.SetTarget(c.homeTarget)
		c.cam.SetEye(c.homeEye)
		return
	}

	lo, hi := c.bounds[0], c.bounds[1]
	center := [3]float32{(lo[0] + hi[0]) / 2, (lo[1] + hi[1]) / 2, (lo[2] + hi[2]) / 2}
	radius := math32.Sqrt(sq(hi[0]-lo[0])+sq(hi[1]-lo[1])+sq(hi[2]-lo[2])) / 2
	if radius == 0 {
		radius = 1
	}

	dir := [3]float32{c.homeEye[0] - c.homeTarget[0], c.homeEye[1] - c.homeTarget[1], c.homeEye[2] - c.homeTarget[2]}
	length := math32.Sqrt(sq(dir[0]) + sq(dir[1]) + sq(dir[2]))
	if length == 0 {
		dir, length = [3]float32{0, 0, 1}, 1
	}
	distance := radius / math32.Sin(c.cam.Fov()/2)

	c.cam.SetTarget(center)
	c.cam.SetEye([3]float32{
		center[0] + dir[0]/length*distance,
		center[1] + dir[1]/length*distance,
		center[2] + dir[2]/length*distance,
	})
}

func sq(v float32) float32 { return v * v }

// sceneBounds unions the POSITION accessor bounds of every primitive in the scene, ignoring node
// transforms. ok is false when no primitive declares its bounds.
func sceneBounds(doc *schema.Document, sc scene.Scene) (bounds [2][3]float32, ok bool) {
	for _, node := range sc.Nodes() {
		if node.Mesh < 0 || node.Mesh >= len(doc.Meshes) {
			continue
		}
		for _, prim := range doc.Meshes[node.Mesh].Primitives {
			idx, found := prim.Attributes[schema.AttributePosition]
			if !found || idx < 0 || idx >= len(doc.Accessors) {
				continue
			}
			acc := doc.Accessors[idx]
			if len(acc.Min) < 3 || len(acc.Max) < 3 {
				continue
			}
			if !ok {
				copy(bounds[0][:], acc.Min[:3])
				copy(bounds[1][:], acc.Max[:3])
				ok = true
				continue
			}
			for i := range 3 {
				bounds[0][i] = min(bounds[0][i], acc.Min[i])
				bounds[1][i] = max(bounds[1][i], acc.Max[i])
			}
		}
	}
	return bounds, ok
}

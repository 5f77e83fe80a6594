package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mat4 is a 4x4 float32 matrix stored in column-major order, the layout expected by
// WGSL uniforms and by Device.SetUniformMat4.
type Mat4 = [16]float32

// Identity returns the 4x4 identity matrix.
//
// Returns:
//   - Mat4: the identity matrix
func Identity() Mat4 {
	return Mat4(mgl32.Ident4())
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mul4 multiplies two column-major matrices. Result: a * b.
//
// Parameters:
//   - a: left-hand matrix
//   - b: right-hand matrix
//
// Returns:
//   - Mat4: the product
func Mul4(a, b Mat4) Mat4 {
	return Mat4(mgl32.Mat4(a).Mul4(mgl32.Mat4(b)))
}

// Perspective creates a perspective projection matrix for the WebGPU clip space, where depth maps to [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1.0 / math32.Tan(fovY/2.0)
	out := Mat4{}

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// LookAt creates a view matrix that transforms world coordinates into camera space.
//
// Parameters:
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector defining camera orientation (typically 0,1,0)
//
// Returns:
//   - Mat4: the view matrix
func LookAt(eye, center, up [3]float32) Mat4 {
	return Mat4(mgl32.LookAtV(mgl32.Vec3(eye), mgl32.Vec3(center), mgl32.Vec3(up)))
}

// ComposeTRS builds a local transform from optional translation, rotation (quaternion x, y, z, w) and
// scale components. Absent components fall back to the identity transform.
//
// Parameters:
//   - translation: optional translation
//   - rotation: optional unit quaternion in x, y, z, w order
//   - scale: optional per-axis scale
//
// Returns:
//   - Mat4: T * R * S
func ComposeTRS(translation *[3]float32, rotation *[4]float32, scale *[3]float32) Mat4 {
	m := mgl32.Ident4()
	if translation != nil {
		m = m.Mul4(mgl32.Translate3D(translation[0], translation[1], translation[2]))
	}
	if rotation != nil {
		q := mgl32.Quat{W: rotation[3], V: mgl32.Vec3{rotation[0], rotation[1], rotation[2]}}
		m = m.Mul4(q.Normalize().Mat4())
	}
	if scale != nil {
		m = m.Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
	}
	return Mat4(m)
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

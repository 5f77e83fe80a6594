package common

// Key codes delivered by the window's key callback. They match GLFW key codes, which use ASCII for
// printable keys.
const (
	KeyA = 65
	KeyD = 68
	KeyF = 70
	KeyN = 78
	KeyR = 82
	KeyS = 83
	KeyT = 84
	KeyW = 87

	KeySpace = 32
	KeyEsc   = 256

	KeyRight = 262
	KeyLeft  = 263
	KeyDown  = 264
	KeyUp    = 265

	KeyPageUp   = 266
	KeyPageDown = 267
)

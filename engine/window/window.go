package window

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the viewer's native window: it owns the event loop, forwards input to callbacks and exposes
// a surface descriptor for the wgpu device backend.
type Window interface {
	// SetFrameCallback sets the function called once per event loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetFrameCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll delta (positive = up)
	SetScrollCallback(callback func(delta float32))

	// SetKeyCallback sets the callback for key presses, repeats and releases.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*) and whether it is down
	SetKeyCallback(callback func(keyCode uint32, down bool))

	// SetDragCallback sets the callback for mouse movement while the left button is held.
	//
	// Parameters:
	//   - callback: function receiving the cursor delta in pixels since the last event
	SetDragCallback(callback func(dx, dy float32))

	// SetDropCallback sets the callback for files dropped onto the window.
	//
	// Parameters:
	//   - callback: function receiving the dropped paths
	SetDropCallback(callback func(paths []string))

	// SetTitle replaces the title bar text.
	SetTitle(title string)

	// SurfaceDescriptor returns a platform-appropriate descriptor for creating a wgpu surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Size returns the framebuffer size in pixels.
	Size() (width, height int)

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// Run polls events and calls the frame callback until the window closes.
	Run()

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window is not open
	Close() error
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	width, height       int
	minWidth, minHeight int

	// closeOnEscape makes the Escape key close the window.
	closeOnEscape bool

	// internalWindow holds the platform-specific window (glfwWindow).
	internalWindow *glfwWindow

	onFrame  func()
	onResize func(width, height int)
	onScroll func(delta float32)
	onKey    func(keyCode uint32, down bool)
	onDrag   func(dx, dy float32)
	onDrop   func(paths []string)
}

var _ Window = &engineWindow{}

// NewWindow creates and opens a Window. It locks the calling goroutine to its OS thread, so it must be
// called from the goroutine that later calls Run.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:         "glbview",
		width:         1280,
		height:        720,
		minWidth:      320,
		minHeight:     240,
		closeOnEscape: true,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) SetFrameCallback(callback func()) {
	w.onFrame = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyCallback(callback func(keyCode uint32, down bool)) {
	w.onKey = callback
}

func (w *engineWindow) SetDragCallback(callback func(dx, dy float32)) {
	w.onDrag = callback
}

func (w *engineWindow) SetDropCallback(callback func(paths []string)) {
	w.onDrop = callback
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	if w.internalWindow != nil {
		w.internalWindow.window.SetTitle(title)
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return w.internalWindow.surfaceDescriptor()
}

func (w *engineWindow) Size() (width, height int) {
	return w.width, w.height
}

func (w *engineWindow) IsRunning() bool {
	return w.internalWindow.isRunning()
}

func (w *engineWindow) Run() {
	for w.internalWindow.poll() {
		if w.onFrame != nil {
			w.onFrame()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Close() error {
	err := w.internalWindow.close()
	w.internalWindow = nil
	return err
}

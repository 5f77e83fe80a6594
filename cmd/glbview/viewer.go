package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/config"
	"github.com/Carmen-Shannon/oxy-glb/engine/device/wgpu_backend"
	"github.com/Carmen-Shannon/oxy-glb/engine/loader"
	"github.com/Carmen-Shannon/oxy-glb/engine/profiler"
	"github.com/Carmen-Shannon/oxy-glb/engine/scene"
	"github.com/Carmen-Shannon/oxy-glb/engine/window"
)

// viewer owns the window, the device and the currently loaded asset. Every method runs on the window's
// thread: input callbacks and the frame callback are both called from Window.Run.
type viewer struct {
	ctx    context.Context
	cfg    config.Viewer
	logger *slog.Logger

	win      window.Window
	backend  *wgpu_backend.Backend
	cam      camera.Camera
	controls *controls
	profiler *profiler.Profiler
	watcher  *fileWatcher

	source  string
	current *loader.Result

	// sceneIndex is the scene requested from the loader, negative for the document default.
	sceneIndex int
	lastFrame  time.Time
	closed     bool
}

func newViewer(ctx context.Context, cfg config.Viewer, logger *slog.Logger) (*viewer, error) {
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return nil, err
	}

	presentMode, err := wgpu_backend.ParsePresentMode(cfg.Render.PresentMode)
	if err != nil {
		win.Close()
		return nil, err
	}
	width, height := win.Size()
	backend, err := wgpu_backend.New(win.SurfaceDescriptor(), width, height,
		wgpu_backend.WithPresentMode(presentMode),
		wgpu_backend.WithClearColor(cfg.Render.ClearColor),
		wgpu_backend.WithLogger(logger),
	)
	if err != nil {
		win.Close()
		return nil, err
	}

	c := cfg.Camera
	cam := camera.NewCamera(
		camera.WithEye(c.Eye[0], c.Eye[1], c.Eye[2]),
		camera.WithTarget(c.Target[0], c.Target[1], c.Target[2]),
		camera.WithUp(c.Up[0], c.Up[1], c.Up[2]),
		camera.WithFov(common.DegToRad(c.FovDegrees)),
		camera.WithAspect(float32(width)/float32(max(height, 1))),
		camera.WithClipPlanes(c.Near, c.Far),
	)

	v := &viewer{
		ctx:        ctx,
		cfg:        cfg,
		logger:     logger,
		win:        win,
		backend:    backend,
		cam:        cam,
		controls:   newControls(cam, cfg.Render.ComposeNodeTransforms),
		sceneIndex: cfg.Scene,
	}
	if cfg.Profile {
		v.profiler = profiler.NewProfiler(
			profiler.WithInterval(time.Duration(cfg.ProfileIntervalSeconds*float64(time.Second))),
			profiler.WithLogger(logger),
		)
	}
	if cfg.Watch {
		if v.watcher, err = newFileWatcher(logger); err != nil {
			v.close()
			return nil, err
		}
	}

	win.SetResizeCallback(v.resize)
	win.SetScrollCallback(v.controls.scroll)
	win.SetDragCallback(v.controls.drag)
	win.SetKeyCallback(v.key)
	win.SetDropCallback(v.drop)
	win.SetFrameCallback(v.frame)

	return v, nil
}

// open loads source as the current asset, keeping the previous asset when the load fails.
func (v *viewer) open(source string, sceneIndex int) error {
	options := []loader.LoaderBuilderOption{
		loader.WithDevice(v.backend),
		loader.WithLogger(v.logger),
		loader.WithSharedTextures(v.cfg.Render.ShareTextures),
	}
	if sceneIndex >= 0 {
		options = append(options, loader.WithSceneIndex(sceneIndex))
	}

	cp := v.backend.Checkpoint()
	res, err := loader.NewLoader(options...).Load(v.ctx, source)
	if err != nil {
		v.backend.ReleaseFrom(cp)
		return err
	}
	v.backend.ReleaseBefore(cp)

	v.source = source
	v.current = res
	v.sceneIndex = sceneIndex

	if bounds, ok := sceneBounds(res.Document, res.Scene); ok {
		v.controls.setBounds(&bounds)
	} else {
		v.controls.setBounds(nil)
	}

	if v.watcher != nil {
		if err := v.watcher.Watch(source); err != nil {
			v.logger.Warn("cannot watch asset", "source", source, "error", err)
		}
	}

	title := fmt.Sprintf("%s - %s", v.cfg.Window.Title, source)
	if name := res.Scene.Name(); name != "" {
		title += " [" + name + "]"
	}
	v.win.SetTitle(title)

	v.logger.Info("loaded asset",
		"source", source,
		"scene", res.Scene.Index(),
		"nodes", len(res.Scene.Nodes()),
		"primitives", res.Scene.PrimitiveCount(),
		"elapsed", res.Elapsed,
	)
	return nil
}

func (v *viewer) reload() {
	if v.source == "" {
		return
	}
	if err := v.open(v.source, v.sceneIndex); err != nil {
		v.logger.Error("reload failed; keeping previous asset", "source", v.source, "error", err)
	}
}

func (v *viewer) nextScene() {
	if v.current == nil {
		return
	}
	count := len(v.current.Document.Scenes)
	if count < 2 {
		return
	}
	next := (v.current.Scene.Index() + 1) % count
	if err := v.open(v.source, next); err != nil {
		v.logger.Error("cannot switch scene", "scene", next, "error", err)
	}
}

func (v *viewer) key(code uint32, down bool) {
	switch v.controls.key(code, down) {
	case actionReload:
		v.reload()
	case actionNextScene:
		v.nextScene()
	}
}

func (v *viewer) drop(paths []string) {
	if len(paths) == 0 {
		return
	}
	if err := v.open(paths[0], -1); err != nil {
		v.logger.Error("cannot open dropped file", "path", paths[0], "error", err)
		return
	}
	v.controls.frame()
}

func (v *viewer) resize(width, height int) {
	if err := v.backend.Configure(width, height); err != nil {
		v.logger.Error("cannot resize surface", "error", err)
		return
	}
	if height > 0 {
		v.cam.SetAspect(float32(width) / float32(height))
	}
}

func (v *viewer) frame() {
	if v.ctx.Err() != nil {
		v.logger.Info("interrupted")
		v.close()
		return
	}

	now := time.Now()
	dt := float32(0)
	if !v.lastFrame.IsZero() {
		dt = float32(now.Sub(v.lastFrame).Seconds())
	}
	v.lastFrame = now

	if v.watcher != nil {
		select {
		case <-v.watcher.Changes():
			v.reload()
		default:
		}
	}

	v.controls.update(dt)

	if err := v.backend.BeginFrame(); err != nil {
		// The surface is outdated after a resize the window has not reported yet.
		v.logger.Debug("frame skipped", "error", err)
		v.resize(v.win.Size())
		return
	}
	if v.current != nil {
		desc := scene.NewRenderDescriptor(v.cam.ViewMatrix(), v.cam.ProjectionMatrix())
		desc.ComposeNodeTransforms = v.controls.composeTransforms
		v.current.Scene.Render(v.backend, desc)
	}
	v.backend.EndFrame()
	v.backend.Present()

	if v.profiler != nil {
		v.profiler.AddDraws(v.backend.DrawsLastFrame())
		v.profiler.Tick()
	}
}

// run shows the window until it is closed or ctx is canceled, then releases everything.
func (v *viewer) run() {
	v.win.Run()
	v.close()
}

// close releases the device before the window that owns its surface.
func (v *viewer) close() {
	if v.closed {
		return
	}
	v.closed = true
	if v.watcher != nil {
		v.watcher.Close()
	}
	v.backend.Release()
	v.win.Close()
}

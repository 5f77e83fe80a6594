// Package wgpu_backend implements device.Device on WebGPU. Device calls made between BeginFrame and EndFrame
// are encoded into one render pass on the window surface.
package wgpu_backend

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoFrame is logged when a draw is issued outside BeginFrame and EndFrame.
var ErrNoFrame = errors.New("no frame in progress")

// gpuBuffer is a created vertex or index buffer. Index buffers keep their bytes so unsigned byte indices
// can be widened on draw.
type gpuBuffer struct {
	buffer  *wgpu.Buffer
	indices []byte
	widened map[[2]int]*wgpu.Buffer
}

func (g *gpuBuffer) release() {
	g.buffer.Release()
	for _, w := range g.widened {
		w.Release()
	}
}

// gpuTexture is a created texture with the bind group that samples it.
type gpuTexture struct {
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	sampler   *wgpu.Sampler
	bindGroup *wgpu.BindGroup
}

func (g *gpuTexture) release() {
	g.bindGroup.Release()
	g.sampler.Release()
	g.view.Release()
	g.texture.Release()
}

// Checkpoint marks the resources created so far; see ReleaseBefore and ReleaseFrom.
type Checkpoint struct {
	buffers, textures int
}

// Backend is the WebGPU device.
type Backend struct {
	mu     *sync.Mutex
	logger *slog.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	presentMode          wgpu.PresentMode
	clearColor           wgpu.Color
	forceFallbackAdapter bool
	width, height        int
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	shader          *wgpu.ShaderModule
	transformLayout *wgpu.BindGroupLayout
	textureLayout   *wgpu.BindGroupLayout
	pipelineLayout  *wgpu.PipelineLayout
	pipelines       map[pipelineKey]*wgpu.RenderPipeline

	// uniformBuffer holds one aligned transform block per draw of the frame.
	uniformBuffer *wgpu.Buffer
	uniformGroup  *wgpu.BindGroup
	maxDraws      int

	zeroBuffer *wgpu.Buffer
	white      *gpuTexture

	buffers  []*gpuBuffer
	textures []*gpuTexture

	// Frame state for batching every draw of a frame into one pass.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	frameDraws   int
	lastDraws    int

	// Binding state consumed by the next DrawIndexed.
	attributes [attributeSlots]boundAttribute
	texture    *gpuTexture
	uniforms   [3]common.Mat4
	index      *gpuBuffer
}

var _ device.Device = &Backend{}

// New creates the WebGPU instance, adapter and device for a window surface and configures the surface.
// The calling goroutine is locked to its OS thread.
//
// Parameters:
//   - surfaceDescriptor: the window's surface descriptor
//   - width: framebuffer width in pixels
//   - height: framebuffer height in pixels
//   - options: functional options to configure the backend
//
// Returns:
//   - *Backend: the ready backend
//   - error: error if any WebGPU object could not be created
func New(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...BackendOption) (*Backend, error) {
	runtime.LockOSThread()
	b := &Backend{
		mu:          &sync.Mutex{},
		logger:      slog.Default(),
		presentMode: wgpu.PresentModeFifo,
		clearColor:  wgpu.Color{R: 0.1, G: 0.1, B: 0.12, A: 1},
		maxDraws:    4096,
		pipelines:   make(map[pipelineKey]*wgpu.RenderPipeline),
		uniforms:    [3]common.Mat4{common.Identity(), common.Identity(), common.Identity()},
	}
	for _, opt := range options {
		opt(b)
	}
	if surfaceDescriptor == nil {
		return nil, errors.New("nil surface descriptor")
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "glb Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return nil, errors.New("surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	if err := b.createLayouts(); err != nil {
		return nil, err
	}
	if err := b.createFrameResources(); err != nil {
		return nil, err
	}
	if err := b.Configure(width, height); err != nil {
		return nil, err
	}

	b.logger.Info("wgpu device ready", "format", b.surfaceFormat.String(), "present_mode", b.presentMode.String(), "width", width, "height", height)
	return b, nil
}

// createFrameResources creates the uniform ring, the zero vertex buffer and the white fallback texture.
func (b *Backend) createFrameResources() error {
	var err error
	b.uniformBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Transforms",
		Size:  uint64(b.maxDraws * uniformAlignment),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.uniformGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Transforms",
		Layout: b.transformLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.uniformBuffer, Offset: 0, Size: uniformSize},
		},
	})
	if err != nil {
		return err
	}

	b.zeroBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Zero Attribute",
		Size:  16,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(b.zeroBuffer, 0, make([]byte, 16))

	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(white.Pix, []byte{0xFF, 0xFF, 0xFF, 0xFF})
	b.white, err = b.createTexture("White", white, device.DefaultSamplerParams())
	return err
}

// Configure (re)configures the surface and depth texture for a framebuffer size. Zero sizes, as reported
// for minimized windows, are ignored.
//
// Parameters:
//   - width: framebuffer width in pixels
//   - height: framebuffer height in pixels
//
// Returns:
//   - error: error if the depth texture could not be created
func (b *Backend) Configure(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return nil
	}
	b.width, b.height = width, height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		return err
	}

	// View is set per frame to the swapchain view.
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

// BeginFrame acquires the next surface texture and opens the frame's render pass.
//
// Returns:
//   - error: error if a frame is already open or the surface texture could not be acquired
func (b *Backend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.frameDraws = 0

	return nil
}

// EndFrame ends the render pass and submits the frame's commands.
func (b *Backend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.logger.Error("failed to finish frame", "error", err)
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
	b.lastDraws = b.frameDraws
}

// Present shows the frame submitted by EndFrame.
func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

// DrawsLastFrame returns the number of draws submitted by the last EndFrame.
func (b *Backend) DrawsLastFrame() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastDraws
}

// Checkpoint marks the resources created so far.
//
// Returns:
//   - Checkpoint: the mark
func (b *Backend) Checkpoint() Checkpoint {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Checkpoint{buffers: len(b.buffers), textures: len(b.textures)}
}

// ReleaseBefore releases every buffer and texture created before cp. Handles stay unique; released handles
// become invalid.
//
// Parameters:
//   - cp: the mark taken before the resources to keep were created
func (b *Backend) ReleaseBefore(cp Checkpoint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseRange(0, cp.buffers, 0, cp.textures)
}

// ReleaseFrom releases every buffer and texture created at or after cp.
//
// Parameters:
//   - cp: the mark taken before the resources to drop were created
func (b *Backend) ReleaseFrom(cp Checkpoint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseRange(cp.buffers, len(b.buffers), cp.textures, len(b.textures))
}

func (b *Backend) releaseRange(bufFrom, bufTo, texFrom, texTo int) {
	for i := bufFrom; i < bufTo && i < len(b.buffers); i++ {
		if b.buffers[i] != nil {
			b.buffers[i].release()
			b.buffers[i] = nil
		}
	}
	for i := texFrom; i < texTo && i < len(b.textures); i++ {
		if b.textures[i] != nil {
			b.textures[i].release()
			b.textures[i] = nil
		}
	}
	b.attributes = [attributeSlots]boundAttribute{}
	b.texture = nil
	b.index = nil
}

// Release destroys every resource and the device.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseRange(0, len(b.buffers), 0, len(b.textures))
	for _, p := range b.pipelines {
		p.Release()
	}
	b.white.release()
	b.zeroBuffer.Release()
	b.uniformGroup.Release()
	b.uniformBuffer.Release()
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
	}
	b.pipelineLayout.Release()
	b.textureLayout.Release()
	b.transformLayout.Release()
	b.shader.Release()
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}

func (b *Backend) CreateVertexBuffer(data []byte) (device.BufferHandle, error) {
	return b.createBuffer("Vertex Buffer", wgpu.BufferUsageVertex, data, false)
}

func (b *Backend) CreateIndexBuffer(data []byte) (device.BufferHandle, error) {
	return b.createBuffer("Index Buffer", wgpu.BufferUsageIndex, data, true)
}

func (b *Backend) createBuffer(label string, usage wgpu.BufferUsage, data []byte, keep bool) (device.BufferHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	contents := padded(data)
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(contents)),
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, contents)

	g := &gpuBuffer{buffer: buf}
	if keep {
		g.indices = append([]byte(nil), data...)
	}
	b.buffers = append(b.buffers, g)
	return device.BufferHandle(len(b.buffers)), nil
}

func (b *Backend) CreateTexture(img image.Image, sampler device.SamplerParams) (device.TextureHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.createTexture("Base Color", img, sampler)
	if err != nil {
		return 0, err
	}
	b.textures = append(b.textures, tex)
	return device.TextureHandle(len(b.textures)), nil
}

func (b *Backend) createTexture(label string, img image.Image, params device.SamplerParams) (*gpuTexture, error) {
	stagingData := common.NewTextureStagingData(img)
	if stagingData.Width == 0 || stagingData.Height == 0 {
		return nil, fmt.Errorf("failed to create %s texture: empty image", label)
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s texture: %w", label, err)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  stagingData.Width * 4,
			RowsPerImage: stagingData.Height,
		},
		&wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  addressMode(params.WrapU),
		AddressModeV:  addressMode(params.WrapV),
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     filterMode(params.MagFilter),
		MinFilter:     filterMode(params.MinFilter),
		MipmapFilter:  mipmapFilterMode(params.MipmapFilter),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, err
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: b.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: samp},
		},
	})
	if err != nil {
		samp.Release()
		view.Release()
		tex.Release()
		return nil, err
	}

	return &gpuTexture{texture: tex, view: view, sampler: samp, bindGroup: bindGroup}, nil
}

func (b *Backend) BindAttribute(buf device.BufferHandle, location device.AttributeLocation, componentCount int, componentType schema.ComponentType, stride, offset int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if location < 0 || int(location) >= attributeSlots {
		b.logger.Warn("attribute location out of range", "location", int(location))
		return
	}
	g := b.bufferAt(int(buf))
	if g == nil {
		b.logger.Warn("bind of unknown vertex buffer", "buffer", buf, "location", location.String())
		return
	}
	format, err := vertexFormat(componentCount, componentType)
	if err != nil {
		b.logger.Warn("unsupported attribute", "location", location.String(), "error", err)
		b.attributes[location] = boundAttribute{}
		return
	}
	if stride == 0 {
		stride = componentCount * componentType.Size()
	}
	b.attributes[location] = boundAttribute{
		buffer: g.buffer,
		format: format,
		stride: uint64(stride),
		offset: uint64(offset),
	}
}

func (b *Backend) BindTexture(tex device.TextureHandle, slot int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if slot != device.BaseColorSlot {
		b.logger.Warn("texture slot not supported", "slot", slot)
		return
	}
	if tex == 0 || int(tex) > len(b.textures) || b.textures[tex-1] == nil {
		b.logger.Warn("bind of unknown texture", "texture", tex)
		return
	}
	b.texture = b.textures[tex-1]
}

func (b *Backend) SetUniformMat4(location device.UniformLocation, m common.Mat4) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if location < device.UniformModel || location > device.UniformProjection {
		return
	}
	b.uniforms[location] = m
}

func (b *Backend) BindIndexBuffer(buf device.BufferHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.index = b.bufferAt(int(buf))
	if b.index == nil {
		b.logger.Warn("bind of unknown index buffer", "buffer", buf)
	}
}

// DrawIndexed encodes the draw into the open frame and resets the per-draw bindings, so attributes or
// a texture left from the previous primitive never leak into the next one.
func (b *Backend) DrawIndexed(mode device.PrimitiveType, count int, componentType schema.ComponentType, byteOffset int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.resetBindings()

	if err := b.draw(mode, count, componentType, byteOffset); err != nil {
		b.logger.Warn("draw skipped", "error", err)
	}
}

func (b *Backend) draw(mode device.PrimitiveType, count int, componentType schema.ComponentType, byteOffset int) error {
	switch {
	case b.framePass == nil:
		return ErrNoFrame
	case mode != device.PrimitiveTriangles:
		return fmt.Errorf("unsupported primitive mode %d", mode)
	case b.index == nil:
		return errors.New("no index buffer bound")
	case b.attributes[device.LocationPosition].buffer == nil:
		return errors.New("no position attribute bound")
	case b.frameDraws >= b.maxDraws:
		return fmt.Errorf("more than %d draws in one frame", b.maxDraws)
	}

	format, widen, err := indexFormat(componentType)
	if err != nil {
		return err
	}
	indexBuffer := b.index.buffer
	indexOffset := uint64(byteOffset)
	if widen {
		indexBuffer, err = b.widenedIndexBuffer(b.index, byteOffset, count)
		if err != nil {
			return err
		}
		indexOffset = 0
	}

	attrs := b.attributes
	for i := range attrs {
		if attrs[i].buffer == nil {
			attrs[i] = zeroAttribute(b.zeroBuffer, device.AttributeLocation(i))
		}
	}
	p, err := b.pipeline(keyOf(attrs))
	if err != nil {
		return err
	}

	block := make([]float32, 0, 48)
	for _, m := range b.uniforms {
		block = append(block, m[:]...)
	}
	uniformOffset := uint32(b.frameDraws * uniformAlignment)
	b.queue.WriteBuffer(b.uniformBuffer, uint64(uniformOffset), common.SliceToBytes(block))

	texture := b.texture
	if texture == nil {
		texture = b.white
	}

	b.framePass.SetPipeline(p)
	b.framePass.SetBindGroup(0, b.uniformGroup, []uint32{uniformOffset})
	b.framePass.SetBindGroup(1, texture.bindGroup, nil)
	for i, a := range attrs {
		b.framePass.SetVertexBuffer(uint32(i), a.buffer, a.offset, wgpu.WholeSize)
	}
	b.framePass.SetIndexBuffer(indexBuffer, format, indexOffset, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(count), 1, 0, 0, 0)
	b.frameDraws++

	return nil
}

// widenedIndexBuffer returns a cached 16 bit copy of a range of unsigned byte indices.
func (b *Backend) widenedIndexBuffer(g *gpuBuffer, byteOffset, count int) (*wgpu.Buffer, error) {
	key := [2]int{byteOffset, count}
	if w, ok := g.widened[key]; ok {
		return w, nil
	}
	data, err := widenIndices(g.indices, byteOffset, count)
	if err != nil {
		return nil, err
	}
	w, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Widened Index Buffer",
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(w, 0, data)
	if g.widened == nil {
		g.widened = make(map[[2]int]*wgpu.Buffer)
	}
	g.widened[key] = w
	return w, nil
}

func (b *Backend) resetBindings() {
	b.attributes = [attributeSlots]boundAttribute{}
	b.texture = nil
}

func (b *Backend) bufferAt(h int) *gpuBuffer {
	if h <= 0 || h > len(b.buffers) {
		return nil
	}
	return b.buffers[h-1]
}

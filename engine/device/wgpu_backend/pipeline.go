package wgpu_backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/cogentcore/webgpu/wgpu"
)

// attributeSlots is the number of vertex inputs of the shader, one buffer per input.
const attributeSlots = 3

// pipelineKey identifies a render pipeline by its vertex layout; everything else is fixed.
type pipelineKey struct {
	formats [attributeSlots]wgpu.VertexFormat
	strides [attributeSlots]uint64
}

// boundAttribute is the state left by one BindAttribute call.
type boundAttribute struct {
	buffer *wgpu.Buffer
	format wgpu.VertexFormat
	stride uint64
	offset uint64
}

// zeroAttribute reads the zero buffer with stride 0, so every vertex sees a zero value.
func zeroAttribute(zero *wgpu.Buffer, location device.AttributeLocation) boundAttribute {
	format := wgpu.VertexFormatFloat32x3
	if location == device.LocationTexCoord {
		format = wgpu.VertexFormatFloat32x2
	}
	return boundAttribute{buffer: zero, format: format}
}

func keyOf(attrs [attributeSlots]boundAttribute) pipelineKey {
	var key pipelineKey
	for i, a := range attrs {
		key.formats[i] = a.format
		key.strides[i] = a.stride
	}
	return key
}

// createLayouts creates the shader module, the transform and texture bind group layouts and the pipeline
// layout shared by every pipeline variant.
func (b *Backend) createLayouts() error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "glb lit textured",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: litTexturedShader,
		},
	})
	if err != nil {
		return err
	}
	b.shader = module

	b.transformLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Transforms",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   uniformSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create transform bind group layout: %w", err)
	}

	b.textureLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Base Color",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create texture bind group layout: %w", err)
	}

	b.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "glb",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.transformLayout, b.textureLayout},
	})
	return err
}

// pipeline returns the cached pipeline for key, creating it on first use.
func (b *Backend) pipeline(key pipelineKey) (*wgpu.RenderPipeline, error) {
	if p, ok := b.pipelines[key]; ok {
		return p, nil
	}

	buffers := make([]wgpu.VertexBufferLayout, attributeSlots)
	for i := range buffers {
		buffers[i] = wgpu.VertexBufferLayout{
			ArrayStride: key.strides[i],
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: key.formats[i], Offset: 0, ShaderLocation: uint32(i)},
			},
		}
	}

	p, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("glb %v", key.formats),
		Layout: b.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     b.shader,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     b.shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	b.pipelines[key] = p
	b.logger.Debug("created pipeline", "formats", fmt.Sprint(key.formats), "strides", fmt.Sprint(key.strides))
	return p, nil
}

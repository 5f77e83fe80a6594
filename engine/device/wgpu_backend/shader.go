package wgpu_backend

// uniformSize is the byte size of the transform block: model, view and projection.
const uniformSize = 3 * 64

// uniformAlignment is the minUniformBufferOffsetAlignment of the default limits.
const uniformAlignment = 256

// litTexturedShader draws a primitive with its base-color texture and a fixed directional light.
// Primitives without normals read a zero normal and are drawn unlit.
const litTexturedShader = `
struct Transforms {
	model: mat4x4<f32>,
	view: mat4x4<f32>,
	projection: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> transforms: Transforms;
@group(1) @binding(0) var baseColorTexture: texture_2d<f32>;
@group(1) @binding(1) var baseColorSampler: sampler;

struct VertexInput {
	@location(0) position: vec3<f32>,
	@location(1) normal: vec3<f32>,
	@location(2) uv: vec2<f32>,
};

struct VertexOutput {
	@builtin(position) clip: vec4<f32>,
	@location(0) normal: vec3<f32>,
	@location(1) uv: vec2<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
	var out: VertexOutput;
	let world = transforms.model * vec4<f32>(in.position, 1.0);
	out.clip = transforms.projection * transforms.view * world;
	out.normal = (transforms.model * vec4<f32>(in.normal, 0.0)).xyz;
	out.uv = in.uv;
	return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
	let base = textureSample(baseColorTexture, baseColorSampler, in.uv);
	var shade = 1.0;
	if (dot(in.normal, in.normal) > 0.0) {
		let light = normalize(vec3<f32>(0.4, 0.8, 0.6));
		shade = 0.35 + 0.65 * max(dot(normalize(in.normal), light), 0.0);
	}
	return vec4<f32>(base.rgb * shade, base.a);
}
`

// schema_types.go contains the typed scene description decoded from the GLB JSON chunk.
// Optional references are pointer fields: nil means absent, there are no sentinel indices.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package schema

import "encoding/json"

// Document is the root of the scene description.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-gltf
type Document struct {
	// Asset carries the format version (required).
	Asset Asset `json:"asset"`

	// Scene is the index of the default scene.
	Scene *int `json:"scene,omitempty"`

	Scenes      []Scene      `json:"scenes,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
	Accessors   []Accessor   `json:"accessors,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Textures    []Texture    `json:"textures,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Samplers    []Sampler    `json:"samplers,omitempty"`

	// ExtensionsUsed lists extensions the asset may use.
	ExtensionsUsed []string `json:"extensionsUsed,omitempty"`

	// ExtensionsRequired lists extensions a loader must implement to render the asset.
	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`
}

// Asset contains metadata about the asset.
type Asset struct {
	Version    string `json:"version"`
	MinVersion string `json:"minVersion,omitempty"`
	Generator  string `json:"generator,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
}

// Scene is an ordered list of root node indices.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is an element of the node hierarchy. Only root nodes of a scene are rendered;
// Children and Matrix are carried for completeness.
type Node struct {
	Name     string `json:"name,omitempty"`
	Children []int  `json:"children,omitempty"`

	// Mesh is the index of the mesh drawn at this node.
	Mesh *int `json:"mesh,omitempty"`

	Matrix *[16]float32 `json:"matrix,omitempty"`

	// Translation is the node's translation (x, y, z).
	Translation *[3]float32 `json:"translation,omitempty"`

	// Rotation is the node's rotation as a quaternion (x, y, z, w).
	Rotation *[4]float32 `json:"rotation,omitempty"`

	// Scale is the node's scale (x, y, z).
	Scale *[3]float32 `json:"scale,omitempty"`
}

// Mesh is an ordered list of primitives.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one drawable unit within a mesh.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh-primitive
type Primitive struct {
	// Attributes maps attribute semantics (POSITION, NORMAL, TEXCOORD_0, ...) to accessor indices.
	Attributes map[string]int `json:"attributes"`

	// Indices is the accessor index of the index data.
	Indices *int `json:"indices,omitempty"`

	// Material is the material index.
	Material *int `json:"material,omitempty"`

	// Mode is the topology; absent means TRIANGLES.
	Mode *int `json:"mode,omitempty"`

	// Targets holds morph targets. They are never read.
	Targets []map[string]int `json:"targets,omitempty"`
}

// Attribute semantics handled by the assembler.
const (
	AttributePosition  = "POSITION"
	AttributeNormal    = "NORMAL"
	AttributeTexCoord0 = "TEXCOORD_0"
)

// Attribute returns the accessor index for a semantic, or nil when the primitive does not carry it.
//
// Parameters:
//   - semantic: the attribute name, e.g. AttributePosition
//
// Returns:
//   - *int: the accessor index or nil
func (p *Primitive) Attribute(semantic string) *int {
	idx, ok := p.Attributes[semantic]
	if !ok {
		return nil
	}
	return &idx
}

// Primitive topology constants.
const (
	ModePoints        = 0
	ModeLines         = 1
	ModeLineLoop      = 2
	ModeLineStrip     = 3
	ModeTriangles     = 4
	ModeTriangleStrip = 5
	ModeTriangleFan   = 6
)

// Accessor is a typed view over a buffer view.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor
type Accessor struct {
	Name string `json:"name,omitempty"`

	// BufferView is the index of the owning buffer view (required).
	BufferView int `json:"bufferView"`

	// ByteOffset is the element offset inside the buffer view.
	ByteOffset *int `json:"byteOffset,omitempty"`

	ComponentType ComponentType `json:"componentType"`
	Normalized    bool          `json:"normalized,omitempty"`
	Count         int           `json:"count"`
	Type          ElementType   `json:"type"`

	Max []float32 `json:"max,omitempty"`
	Min []float32 `json:"min,omitempty"`

	// Sparse is kept raw; any sparse accessor is rejected at resolution.
	Sparse json.RawMessage `json:"sparse,omitempty"`
}

// Offset returns ByteOffset or 0 when absent.
func (a *Accessor) Offset() int {
	if a.ByteOffset == nil {
		return 0
	}
	return *a.ByteOffset
}

// ComponentType is the numeric code of an accessor's scalar component.
type ComponentType uint32

const (
	ComponentTypeByte          ComponentType = 5120
	ComponentTypeUnsignedByte  ComponentType = 5121
	ComponentTypeShort         ComponentType = 5122
	ComponentTypeUnsignedShort ComponentType = 5123
	ComponentTypeUnsignedInt   ComponentType = 5125
	ComponentTypeFloat         ComponentType = 5126
)

// Size returns the byte size of one component, or 0 for unknown codes.
func (c ComponentType) Size() int {
	switch c {
	case ComponentTypeByte, ComponentTypeUnsignedByte:
		return 1
	case ComponentTypeShort, ComponentTypeUnsignedShort:
		return 2
	case ComponentTypeUnsignedInt, ComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

func (c ComponentType) String() string {
	switch c {
	case ComponentTypeByte:
		return "BYTE"
	case ComponentTypeUnsignedByte:
		return "UNSIGNED_BYTE"
	case ComponentTypeShort:
		return "SHORT"
	case ComponentTypeUnsignedShort:
		return "UNSIGNED_SHORT"
	case ComponentTypeUnsignedInt:
		return "UNSIGNED_INT"
	case ComponentTypeFloat:
		return "FLOAT"
	default:
		return "UNKNOWN"
	}
}

// ElementType is the accessor's element shape name.
type ElementType string

const (
	ElementTypeScalar ElementType = "SCALAR"
	ElementTypeVec2   ElementType = "VEC2"
	ElementTypeVec3   ElementType = "VEC3"
	ElementTypeVec4   ElementType = "VEC4"
	ElementTypeMat2   ElementType = "MAT2"
	ElementTypeMat3   ElementType = "MAT3"
	ElementTypeMat4   ElementType = "MAT4"
)

// BufferView is a byte range within a buffer.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-bufferview
type BufferView struct {
	Name string `json:"name,omitempty"`

	// Buffer is the index of the owning buffer (required).
	Buffer int `json:"buffer"`

	ByteOffset int `json:"byteOffset,omitempty"`

	// ByteLength is the length of the view in bytes (required).
	ByteLength int `json:"byteLength"`

	// ByteStride is the distance between consecutive elements for vertex data.
	ByteStride *int `json:"byteStride,omitempty"`

	// Target is the intended binding, 34962 for vertex data and 34963 for index data.
	Target *int `json:"target,omitempty"`
}

// Stride returns ByteStride or 0 when absent, which means tightly packed.
func (bv *BufferView) Stride() int {
	if bv.ByteStride == nil {
		return 0
	}
	return *bv.ByteStride
}

// Buffer view target constants.
const (
	TargetArrayBuffer        = 34962
	TargetElementArrayBuffer = 34963
)

// Buffer declares a block of binary data. In a GLB, buffer 0 without a URI is the BIN chunk.
type Buffer struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
}

// Material describes the appearance of a primitive.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *TextureInfo          `json:"normalTexture,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
	AlphaMode            string                `json:"alphaMode,omitempty"`
}

// BaseColorTexture returns the base-color texture reference or nil.
func (m *Material) BaseColorTexture() *TextureInfo {
	if m.PBRMetallicRoughness == nil {
		return nil
	}
	return m.PBRMetallicRoughness.BaseColorTexture
}

// PBRMetallicRoughness holds the metallic-roughness factors and texture references.
type PBRMetallicRoughness struct {
	BaseColorFactor          *[4]float32  `json:"baseColorFactor,omitempty"`
	MetallicFactor           *float32     `json:"metallicFactor,omitempty"`
	RoughnessFactor          *float32     `json:"roughnessFactor,omitempty"`
	BaseColorTexture         *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicRoughnessTexture *TextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// BaseColor returns the base color factor, defaulting to opaque white.
func (p *PBRMetallicRoughness) BaseColor() [4]float32 {
	if p == nil || p.BaseColorFactor == nil {
		return [4]float32{1, 1, 1, 1}
	}
	return *p.BaseColorFactor
}

// Metallic returns the metallic factor, defaulting to 1.
func (p *PBRMetallicRoughness) Metallic() float32 {
	if p == nil || p.MetallicFactor == nil {
		return 1
	}
	return *p.MetallicFactor
}

// Roughness returns the roughness factor, defaulting to 1.
func (p *PBRMetallicRoughness) Roughness() float32 {
	if p == nil || p.RoughnessFactor == nil {
		return 1
	}
	return *p.RoughnessFactor
}

// TextureInfo references a texture from a material.
type TextureInfo struct {
	// Index is the texture index (required).
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

// Texture pairs an image source with an optional sampler.
type Texture struct {
	Name    string `json:"name,omitempty"`
	Sampler *int   `json:"sampler,omitempty"`
	Source  *int   `json:"source,omitempty"`
}

// Image is a texture image, either embedded through a buffer view or referenced by URI.
type Image struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

// Sampler holds texture filtering and wrapping codes.
type Sampler struct {
	Name      string `json:"name,omitempty"`
	MagFilter *int   `json:"magFilter,omitempty"`
	MinFilter *int   `json:"minFilter,omitempty"`
	WrapS     *int   `json:"wrapS,omitempty"`
	WrapT     *int   `json:"wrapT,omitempty"`
}

// Sampler filter constants.
const (
	FilterNearest              = 9728
	FilterLinear               = 9729
	FilterNearestMipmapNearest = 9984
	FilterLinearMipmapNearest  = 9985
	FilterNearestMipmapLinear  = 9986
	FilterLinearMipmapLinear   = 9987
)

// Sampler wrap constants.
const (
	WrapClampToEdge    = 33071
	WrapMirroredRepeat = 33648
	WrapRepeat         = 10497
)

package wgpu_backend

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
	"github.com/cogentcore/webgpu/wgpu"
)

// vertexFormats maps an attribute's component type and count to a wgpu vertex format.
// Integer components are normalized, which is how texture coordinates use them.
// WebGPU has no three-component 8 or 16 bit formats.
var vertexFormats = map[schema.ComponentType]map[int]wgpu.VertexFormat{
	schema.ComponentTypeFloat: {
		1: wgpu.VertexFormatFloat32,
		2: wgpu.VertexFormatFloat32x2,
		3: wgpu.VertexFormatFloat32x3,
		4: wgpu.VertexFormatFloat32x4,
	},
	schema.ComponentTypeUnsignedByte: {
		2: wgpu.VertexFormatUnorm8x2,
		4: wgpu.VertexFormatUnorm8x4,
	},
	schema.ComponentTypeByte: {
		2: wgpu.VertexFormatSnorm8x2,
		4: wgpu.VertexFormatSnorm8x4,
	},
	schema.ComponentTypeUnsignedShort: {
		2: wgpu.VertexFormatUnorm16x2,
		4: wgpu.VertexFormatUnorm16x4,
	},
	schema.ComponentTypeShort: {
		2: wgpu.VertexFormatSnorm16x2,
		4: wgpu.VertexFormatSnorm16x4,
	},
}

// vertexFormat returns the wgpu format of an attribute.
//
// Parameters:
//   - componentCount: components per vertex
//   - componentType: the component code
//
// Returns:
//   - wgpu.VertexFormat: the format
//   - error: error if WebGPU has no matching format
func vertexFormat(componentCount int, componentType schema.ComponentType) (wgpu.VertexFormat, error) {
	if f, ok := vertexFormats[componentType][componentCount]; ok {
		return f, nil
	}
	return wgpu.VertexFormatUndefined, fmt.Errorf("no vertex format for %d x %s", componentCount, componentType)
}

// indexFormat returns the wgpu index format of an index component type. Unsigned byte indices have no
// wgpu format; widen reports that they must be converted to 16 bit first.
func indexFormat(componentType schema.ComponentType) (format wgpu.IndexFormat, widen bool, err error) {
	switch componentType {
	case schema.ComponentTypeUnsignedShort:
		return wgpu.IndexFormatUint16, false, nil
	case schema.ComponentTypeUnsignedInt:
		return wgpu.IndexFormatUint32, false, nil
	case schema.ComponentTypeUnsignedByte:
		return wgpu.IndexFormatUint16, true, nil
	default:
		return wgpu.IndexFormatUndefined, false, fmt.Errorf("no index format for %s", componentType)
	}
}

// widenIndices converts count unsigned byte indices starting at offset into little-endian uint16 indices.
// The result is padded to a multiple of four bytes for WriteBuffer.
func widenIndices(data []byte, offset, count int) ([]byte, error) {
	if offset < 0 || count < 0 || offset+count > len(data) {
		return nil, fmt.Errorf("index range [%d, %d) exceeds buffer of %d bytes", offset, offset+count, len(data))
	}
	out := make([]byte, alignUp(count*2, 4))
	for i, v := range data[offset : offset+count] {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out, nil
}

func alignUp(n, alignment int) int {
	return (n + alignment - 1) / alignment * alignment
}

// padded returns data extended with zeros to a multiple of four bytes, at least four bytes long.
func padded(data []byte) []byte {
	size := max(alignUp(len(data), 4), 4)
	if size == len(data) {
		return data
	}
	out := make([]byte, size)
	copy(out, data)
	return out
}

func addressMode(m device.AddressMode) wgpu.AddressMode {
	switch m {
	case device.AddressModeClampToEdge:
		return wgpu.AddressModeClampToEdge
	case device.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

func filterMode(m device.FilterMode) wgpu.FilterMode {
	if m == device.FilterModeNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func mipmapFilterMode(m device.FilterMode) wgpu.MipmapFilterMode {
	if m == device.FilterModeNearest {
		return wgpu.MipmapFilterModeNearest
	}
	return wgpu.MipmapFilterModeLinear
}

// ParsePresentMode maps a config name to a present mode.
//
// Parameters:
//   - name: fifo, mailbox or immediate; case-insensitive
//
// Returns:
//   - wgpu.PresentMode: the present mode
//   - error: error if the name is unknown
func ParsePresentMode(name string) (wgpu.PresentMode, error) {
	switch strings.ToLower(name) {
	case "", "fifo", "vsync":
		return wgpu.PresentModeFifo, nil
	case "mailbox":
		return wgpu.PresentModeMailbox, nil
	case "immediate", "uncapped":
		return wgpu.PresentModeImmediate, nil
	default:
		return wgpu.PresentModeFifo, fmt.Errorf("unknown present mode %q", name)
	}
}

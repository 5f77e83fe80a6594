package wgpu_backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestVertexFormat(t *testing.T) {
	tests := []struct {
		count int
		ct    schema.ComponentType
		want  wgpu.VertexFormat
	}{
		{3, schema.ComponentTypeFloat, wgpu.VertexFormatFloat32x3},
		{2, schema.ComponentTypeFloat, wgpu.VertexFormatFloat32x2},
		{2, schema.ComponentTypeUnsignedByte, wgpu.VertexFormatUnorm8x2},
		{2, schema.ComponentTypeUnsignedShort, wgpu.VertexFormatUnorm16x2},
		{4, schema.ComponentTypeShort, wgpu.VertexFormatSnorm16x4},
	}
	for _, tt := range tests {
		got, err := vertexFormat(tt.count, tt.ct)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := vertexFormat(3, schema.ComponentTypeUnsignedByte)
	assert.Error(t, err)
	_, err = vertexFormat(2, schema.ComponentTypeUnsignedInt)
	assert.Error(t, err)
}

func TestIndexFormat(t *testing.T) {
	f, widen, err := indexFormat(schema.ComponentTypeUnsignedShort)
	require.NoError(t, err)
	assert.Equal(t, wgpu.IndexFormatUint16, f)
	assert.False(t, widen)

	f, widen, err = indexFormat(schema.ComponentTypeUnsignedInt)
	require.NoError(t, err)
	assert.Equal(t, wgpu.IndexFormatUint32, f)
	assert.False(t, widen)

	f, widen, err = indexFormat(schema.ComponentTypeUnsignedByte)
	require.NoError(t, err)
	assert.Equal(t, wgpu.IndexFormatUint16, f)
	assert.True(t, widen)

	_, _, err = indexFormat(schema.ComponentTypeFloat)
	assert.Error(t, err)
}

func TestWidenIndices(t *testing.T) {
	out, err := widenIndices([]byte{9, 0, 1, 2}, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 1, 0, 2, 0, 0, 0}, out)

	_, err = widenIndices([]byte{0, 1}, 1, 2)
	assert.Error(t, err)
}

func TestPadded(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0}, padded(nil))
	assert.Equal(t, []byte{1, 2, 3, 0}, padded([]byte{1, 2, 3}))

	exact := []byte{1, 2, 3, 4}
	assert.Equal(t, exact, padded(exact))
	assert.Equal(t, 256, alignUp(192, 256))
	assert.Equal(t, 512, alignUp(257, 256))
}

func TestSamplerMapping(t *testing.T) {
	assert.Equal(t, wgpu.AddressModeClampToEdge, addressMode(device.AddressModeClampToEdge))
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, addressMode(device.AddressModeMirrorRepeat))
	assert.Equal(t, wgpu.AddressModeRepeat, addressMode(device.AddressModeRepeat))
	assert.Equal(t, wgpu.FilterModeNearest, filterMode(device.FilterModeNearest))
	assert.Equal(t, wgpu.FilterModeLinear, filterMode(device.FilterModeLinear))
	assert.Equal(t, wgpu.MipmapFilterModeNearest, mipmapFilterMode(device.FilterModeNearest))
}

func TestParsePresentMode(t *testing.T) {
	m, err := ParsePresentMode("Mailbox")
	require.NoError(t, err)
	assert.Equal(t, wgpu.PresentModeMailbox, m)

	m, err = ParsePresentMode("")
	require.NoError(t, err)
	assert.Equal(t, wgpu.PresentModeFifo, m)

	_, err = ParsePresentMode("triple")
	assert.Error(t, err)
}

func TestPipelineKeyFillsMissingAttributes(t *testing.T) {
	attrs := [attributeSlots]boundAttribute{
		{format: wgpu.VertexFormatFloat32x3, stride: 12},
	}
	for i := range attrs {
		if attrs[i].format == wgpu.VertexFormatUndefined {
			attrs[i] = zeroAttribute(nil, device.AttributeLocation(i))
		}
	}
	key := keyOf(attrs)
	assert.Equal(t, [attributeSlots]wgpu.VertexFormat{
		wgpu.VertexFormatFloat32x3,
		wgpu.VertexFormatFloat32x3,
		wgpu.VertexFormatFloat32x2,
	}, key.formats)
	assert.Equal(t, [attributeSlots]uint64{12, 0, 0}, key.strides)
}

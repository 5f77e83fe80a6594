// Package container decodes the GLB binary envelope: a 12-byte header followed by a JSON chunk and a BIN chunk.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
package container

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/Carmen-Shannon/oxy-glb/common"
)

// GLB constants, all read as little-endian u32 words.
const (
	// Magic is the ASCII tag "glTF".
	Magic uint32 = 0x46546C67

	// Version is the only supported container version.
	Version uint32 = 2

	// ChunkTypeJSON is the ASCII tag "JSON".
	ChunkTypeJSON uint32 = 0x4E4F534A

	// ChunkTypeBIN is the ASCII tag "BIN\x00".
	ChunkTypeBIN uint32 = 0x004E4942

	// HeaderSize is the byte size of the GLB header.
	HeaderSize = 12

	// ChunkHeaderSize is the byte size of a chunk's length and type words.
	ChunkHeaderSize = 8
)

// Header is the validated 12-byte GLB header.
type Header struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

// Span is a byte range inside the original input buffer.
type Span struct {
	Offset int
	Length int
}

// End returns the exclusive end offset of the span.
func (s Span) End() int {
	return s.Offset + s.Length
}

// Container is a decoded GLB. It borrows the input buffer; JSON and Binary describe regions of Data
// and nothing is copied.
type Container struct {
	Header Header

	// JSON is the payload region of the JSON chunk.
	JSON Span

	// Binary is the payload region of the BIN chunk.
	Binary Span

	// Data is the complete input buffer.
	Data []byte
}

// JSONText returns the JSON chunk payload as a sub-slice of Data.
//
// Returns:
//   - []byte: the JSON text
func (c *Container) JSONText() []byte {
	return c.Data[c.JSON.Offset:c.JSON.End()]
}

// BinaryPayload returns the BIN chunk payload as a sub-slice of Data.
//
// Returns:
//   - []byte: the binary payload
func (c *Container) BinaryPayload() []byte {
	return c.Data[c.Binary.Offset:c.Binary.End()]
}

// IsGLB reports whether data starts with the GLB magic. It does not validate anything else.
//
// Parameters:
//   - data: the candidate input
//
// Returns:
//   - bool: true if the first four bytes are "glTF"
func IsGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[0:4]) == Magic
}

// Decode validates the header and both chunks of a GLB buffer.
// Any structural mismatch fails with a MalformedContainer error; the caller must not parse JSON afterwards.
//
// Parameters:
//   - data: the complete GLB input
//
// Returns:
//   - *Container: the decoded container borrowing data
//   - error: MalformedContainer on any mismatch
func Decode(data []byte) (*Container, error) {
	if len(data) < HeaderSize {
		return nil, common.NewError(common.KindMalformedContainer, "header", "input is %d bytes, need at least %d", len(data), HeaderSize)
	}

	header := Header{
		Magic:   binary.LittleEndian.Uint32(data[0:4]),
		Version: binary.LittleEndian.Uint32(data[4:8]),
		Length:  binary.LittleEndian.Uint32(data[8:12]),
	}
	if header.Magic != Magic {
		return nil, common.NewError(common.KindMalformedContainer, "header", "bad magic 0x%08X", header.Magic)
	}
	if header.Version != Version {
		return nil, common.NewError(common.KindMalformedContainer, "header", "unsupported version %d", header.Version)
	}
	if uint64(header.Length) != uint64(len(data)) {
		return nil, common.NewError(common.KindMalformedContainer, "header", "declared length %d does not match input length %d", header.Length, len(data))
	}

	jsonSpan, err := readChunk(data, HeaderSize, ChunkTypeJSON, "json chunk")
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data[jsonSpan.Offset:jsonSpan.End()]) {
		return nil, common.NewError(common.KindMalformedContainer, "json chunk", "payload is not valid UTF-8")
	}

	binSpan, err := readChunk(data, jsonSpan.End(), ChunkTypeBIN, "bin chunk")
	if err != nil {
		return nil, err
	}

	return &Container{
		Header: header,
		JSON:   jsonSpan,
		Binary: binSpan,
		Data:   data,
	}, nil
}

// readChunk reads the chunk header at offset, checks its type tag and returns the payload span.
func readChunk(data []byte, offset int, wantType uint32, op string) (Span, error) {
	if offset+ChunkHeaderSize > len(data) {
		return Span{}, common.NewError(common.KindMalformedContainer, op, "chunk header at %d exceeds input length %d", offset, len(data))
	}

	length := binary.LittleEndian.Uint32(data[offset : offset+4])
	chunkType := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
	if chunkType != wantType {
		return Span{}, common.NewError(common.KindMalformedContainer, op, "type tag 0x%08X, want 0x%08X", chunkType, wantType)
	}

	start := offset + ChunkHeaderSize
	if uint64(start)+uint64(length) > uint64(len(data)) {
		return Span{}, common.NewError(common.KindMalformedContainer, op, "payload of %d bytes at %d exceeds input length %d", length, start, len(data))
	}

	return Span{Offset: start, Length: int(length)}, nil
}

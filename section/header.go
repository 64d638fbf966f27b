package section

import (
	"fmt"

	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/format"
)

// Header represents the fixed-size header at the start of a sealed node.
type Header struct {
	// Flag is a packed field for the magic number, byte order, signature and compression.
	Flag Flag // byte offset 0-3
	// NVert is the number of vertices of the encoded node.
	NVert uint32 // byte offset 4-7
	// NFace is the number of faces of the encoded node, 0 for point clouds.
	NFace uint32 // byte offset 8-11
	// PatchCount is the number of patch records following the header.
	PatchCount uint32 // byte offset 12-15
	// PayloadSize is the number of payload bytes stored after the patch table,
	// after compression.
	PayloadSize uint32 // byte offset 16-19
	// RawSize is the payload size before compression.
	RawSize uint32 // byte offset 20-23
	// Checksum is the xxHash64 of header bytes 0-23, the patch table and the
	// stored payload.
	Checksum uint64 // byte offset 24-31
}

// NewHeader creates a Header with a default flag. Counts, sizes and the
// checksum are filled in by the sealer.
func NewHeader() *Header {
	return &Header{Flag: NewFlag()}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly 32 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 32 bytes, or flag validation errors
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	// Options is always little-endian: it tells us the order of everything else
	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Flag.Attributes = format.AttributeFlag(data[2])
	h.Flag.Compression = format.CompressionType(data[3])
	if err := h.Flag.Validate(); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()
	h.NVert = engine.Uint32(data[4:8])
	h.NFace = engine.Uint32(data[8:12])
	h.PatchCount = engine.Uint32(data[12:16])
	h.PayloadSize = engine.Uint32(data[16:20])
	h.RawSize = engine.Uint32(data[20:24])
	h.Checksum = engine.Uint64(data[24:32])

	return nil
}

// Bytes serializes the Header into a byte slice.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.WriteToSlice(b)

	return b
}

// WriteToSlice serializes the header into the first HeaderSize bytes of b.
func (h *Header) WriteToSlice(b []byte) {
	engine := h.Flag.GetEndianEngine()

	b[0] = byte(h.Flag.Options)
	b[1] = byte(h.Flag.Options >> 8)
	b[2] = uint8(h.Flag.Attributes)
	b[3] = uint8(h.Flag.Compression)
	engine.PutUint32(b[4:8], h.NVert)
	engine.PutUint32(b[8:12], h.NFace)
	engine.PutUint32(b[12:16], h.PatchCount)
	engine.PutUint32(b[16:20], h.PayloadSize)
	engine.PutUint32(b[20:24], h.RawSize)
	engine.PutUint64(b[24:32], h.Checksum)
}

// BodySize returns the number of bytes that follow the header.
func (h *Header) BodySize() int {
	return int(h.PatchCount)*PatchRecordSize + int(h.PayloadSize)
}

// ParseHeader parses a Header from the start of data.
//
// Parameters:
//   - data: Byte slice containing header (must be at least 32 bytes)
//
// Returns:
//   - Header: Parsed header struct
//   - error: ErrInvalidHeaderSize or flag validation errors
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: got %d bytes, want at least %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}

package section

import (
	"fmt"

	"github.com/arloliu/meco/endian"
	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/format"
)

// Flag represents the packed flag field at the start of an envelope header.
type Flag struct {
	// Options is a packed field for various options.
	// Bit 1 is endianness flag, 0 means little-endian, 1 means big-endian.
	// Bits 0, 2 and 3 are reserved for future use, must be set to 0.
	// Bits 4-15 are the magic number, 0xCE10 for version 1 node payloads.
	Options uint16

	// Attributes is the signature of the sealed node.
	Attributes format.AttributeFlag
	// Compression is the whole-payload compression applied after encoding.
	Compression format.CompressionType
}

// NewFlag creates a Flag with the version 1 magic number, little-endian byte
// order, no attributes beyond positions and no compression.
func NewFlag() Flag {
	return Flag{
		Options:     MagicNodeV1Opt,
		Compression: format.CompressionNone,
	}
}

// IsLittleEndian returns whether the payload is little-endian.
func (f Flag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the payload is big-endian.
func (f Flag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *Flag) WithLittleEndian() {
	f.Options &= ^uint16(EndiannessMask)
}

// WithBigEndian sets big-endian byte order.
func (f *Flag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// SetEndian records the byte order of engine.
func (f *Flag) SetEndian(engine endian.EndianEngine) {
	if endian.IsLittleEndian(engine) {
		f.WithLittleEndian()
	} else {
		f.WithBigEndian()
	}
}

// GetMagicNumber returns the magic number from the Options field.
func (f Flag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// Validate checks that the flag carries the right magic number and known values.
func (f Flag) Validate() error {
	if f.GetMagicNumber() != MagicNodeV1Opt {
		return fmt.Errorf("%w: 0x%04X", errs.ErrInvalidMagic, f.GetMagicNumber())
	}
	if f.Options&ReservedBitsMask != 0 {
		return fmt.Errorf("%w: reserved option bits 0x%04X set", errs.ErrInvalidEnvelope, f.Options&ReservedBitsMask)
	}
	if !f.Attributes.Valid() {
		return fmt.Errorf("%w: unknown attribute bits 0x%02X", errs.ErrInvalidEnvelope, uint8(f.Attributes))
	}
	switch f.Compression {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
	default:
		return fmt.Errorf("%w: unknown compression 0x%02X", errs.ErrInvalidEnvelope, uint8(f.Compression))
	}

	return nil
}

// GetEndianEngine returns the appropriate endian engine based on the flag.
func (f Flag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

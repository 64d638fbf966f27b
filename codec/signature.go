package codec

import (
	"fmt"

	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/format"
)

// Signature states which channels a node carries besides positions.
// It is fixed for the duration of one encode or decode call.
type Signature struct {
	Flags format.AttributeFlag
}

// NewSignature creates a signature from a set of attribute flags.
func NewSignature(flags ...format.AttributeFlag) Signature {
	var s Signature
	for _, f := range flags {
		s.Flags |= f
	}

	return s
}

// HasIndex reports whether the node has a face list.
func (s Signature) HasIndex() bool { return s.Flags.Has(format.AttrIndex) }

// HasNormals reports whether the node has per-vertex normals.
func (s Signature) HasNormals() bool { return s.Flags.Has(format.AttrNormal) }

// HasColors reports whether the node has per-vertex RGBA colors.
func (s Signature) HasColors() bool { return s.Flags.Has(format.AttrColor) }

// HasTexCoords reports whether the node has per-vertex texture coordinates.
func (s Signature) HasTexCoords() bool { return s.Flags.Has(format.AttrTexCoord) }

// Validate rejects unknown flags and texture coordinates on point clouds.
func (s Signature) Validate() error {
	if !s.Flags.Valid() {
		return fmt.Errorf("%w: unknown attribute bits 0x%02X", errs.ErrMalformedSignature, uint8(s.Flags))
	}
	if s.HasTexCoords() && !s.HasIndex() {
		return fmt.Errorf("%w: texture coordinates require a face list", errs.ErrMalformedSignature)
	}

	return nil
}

func (s Signature) String() string {
	return s.Flags.String()
}

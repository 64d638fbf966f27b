package compress

import (
	"fmt"

	"github.com/arloliu/meco/errs"
	"github.com/klauspost/compress/s2"
)

// S2Compressor provides S2 (Snappy-compatible) block compression.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses an S2 block. The decoded length stored in the
// block must match size before any output is allocated.
func (c S2Compressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return checkSize("s2", nil, size)
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("%w: s2: %w", errs.ErrCorruptStream, err)
	}
	if n != size {
		return nil, fmt.Errorf("%w: s2 block decodes to %d bytes, header says %d", errs.ErrCorruptStream, n, size)
	}

	out, err := s2.Decode(make([]byte, size), data)
	if err != nil {
		return nil, fmt.Errorf("%w: s2: %w", errs.ErrCorruptStream, err)
	}

	return checkSize("s2", out, size)
}

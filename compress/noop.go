package compress

import (
	"fmt"

	"github.com/arloliu/meco/errs"
)

// NoOpCompressor stores payloads unchanged.
//
// Node payloads are already entropy coded, so this is the default for
// envelopes; a general-purpose pass mostly pays off for large texture grids
// and point clouds.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data as-is. The result shares memory with the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data as-is after checking its length against size.
// The result shares memory with the input.
func (c NoOpCompressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) != size {
		return nil, fmt.Errorf("%w: stored payload of %d bytes, header says %d", errs.ErrCorruptStream, len(data), size)
	}

	return data, nil
}

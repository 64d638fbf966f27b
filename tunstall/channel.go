package tunstall

import (
	"fmt"

	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/stream"
)

// ChannelStats describes one written channel record.
type ChannelStats struct {
	Symbols      int // distinct symbols in the dictionary
	Uncompressed int // input length in bytes
	Compressed   int // code bytes written
}

// WriteChannel appends a self-describing channel record for data to w:
//
//	[dict size: 1][symbol, prob]*dict size[uncompressed len: uint32][compressed len: uint32][codes]
//
// A channel with a single distinct symbol carries no codes; empty input writes
// a zero dictionary size and zero lengths.
func WriteChannel(w *stream.ByteWriter, data []byte, opts ...CoderOption) (ChannelStats, error) {
	probs := Histogram(data)
	stats := ChannelStats{Symbols: len(probs), Uncompressed: len(data)}

	if len(probs) > MaxSymbols {
		return stats, fmt.Errorf("%w: %d distinct symbols, limit is %d", errs.ErrAlphabetTooLarge, len(probs), MaxSymbols)
	}
	if uint64(len(data)) > uint64(^uint32(0)) {
		return stats, fmt.Errorf("%w: channel of %d bytes", errs.ErrCorruptStream, len(data))
	}

	var codes []byte
	if len(probs) > 1 {
		coder, err := NewCoder(probs, opts...)
		if err != nil {
			return stats, err
		}
		codes, err = coder.Compress(data)
		if err != nil {
			return stats, err
		}
	}
	stats.Compressed = len(codes)

	w.PutUint8(uint8(len(probs))) //nolint:gosec // checked against MaxSymbols
	for _, p := range probs {
		w.PutUint8(p.Symbol)
		w.PutUint8(p.Prob)
	}
	w.PutUint32(uint32(len(data)))  //nolint:gosec // checked above
	w.PutUint32(uint32(len(codes))) //nolint:gosec // codes never outnumber data
	w.PutBytes(codes)

	return stats, nil
}

// ReadChannel reads a record written by WriteChannel. Records that declare more
// than limit symbols are rejected before anything is allocated.
func ReadChannel(r *stream.ByteReader, limit int, opts ...CoderOption) ([]byte, error) {
	dictSize, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	probs := make([]SymbolProb, dictSize)
	for i := range probs {
		if probs[i].Symbol, err = r.ReadUint8(); err != nil {
			return nil, err
		}
		if probs[i].Prob, err = r.ReadUint8(); err != nil {
			return nil, err
		}
		if probs[i].Prob == 0 {
			return nil, fmt.Errorf("%w: zero probability for symbol %d", errs.ErrCorruptStream, probs[i].Symbol)
		}
	}

	size, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	compressed, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if uint64(size) > uint64(max(limit, 0)) {
		return nil, fmt.Errorf("%w: channel declares %d symbols, expected at most %d", errs.ErrCorruptStream, size, limit)
	}
	if compressed > size {
		return nil, fmt.Errorf("%w: %d codes for %d symbols", errs.ErrCorruptStream, compressed, size)
	}
	codes, err := r.ReadBytes(int(compressed))
	if err != nil {
		return nil, err
	}

	switch {
	case dictSize == 0:
		if size != 0 {
			return nil, fmt.Errorf("%w: empty dictionary for %d symbols", errs.ErrCorruptStream, size)
		}

		return []byte{}, nil
	case dictSize == 1:
		if compressed != 0 {
			return nil, fmt.Errorf("%w: %d codes for a single-symbol channel", errs.ErrCorruptStream, compressed)
		}

		return fill(probs[0].Symbol, int(size)), nil
	}

	coder, err := NewCoder(probs, opts...)
	if err != nil {
		return nil, err
	}

	return coder.Decompress(codes, int(size))
}

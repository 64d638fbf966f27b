package tunstall

import (
	"fmt"

	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/internal/options"
)

const (
	// DefaultLookupSize is the number of input symbols resolved per encode table step.
	DefaultLookupSize = 2
	// MaxLookupSize bounds the encode table size (alphabet^lookup entries).
	MaxLookupSize = 4
)

// tableEntry resolves one lookup step of the encoder: either a complete code
// consuming length symbols, or a jump to the table of a longer prefix.
type tableEntry struct {
	code   int16 // -1 when next is used
	length uint8
	next   int32
}

// Coder compresses and decompresses byte symbols through a Tunstall dictionary.
//
// A Coder is immutable once built and safe for concurrent use.
type Coder struct {
	probs      []SymbolProb
	index      [256]int16 // symbol -> probability table index, -1 if absent
	lookupSize int

	// decode table: code -> symbols[offsets[code] : offsets[code]+lengths[code]]
	symbols []byte
	offsets []uint32
	lengths []uint16

	// encode tables, tables[0] resolves from the root
	tables [][]tableEntry
}

// CoderOption configures a Coder.
type CoderOption = options.Option[*Coder]

// WithLookupSize sets how many symbols each encode table step consumes.
// Larger values trade table memory for fewer steps per code.
func WithLookupSize(size int) CoderOption {
	return options.Named("lookup size", func(c *Coder) error {
		if size < 1 || size > MaxLookupSize {
			return fmt.Errorf("%w: %d, expected 1-%d", errs.ErrInvalidOption, size, MaxLookupSize)
		}
		c.lookupSize = size

		return nil
	})
}

// NewCoder builds the dictionary and both tables for probs. The table order of
// probs is significant: decoders must be given the same slice.
func NewCoder(probs []SymbolProb, opts ...CoderOption) (*Coder, error) {
	c := &Coder{
		probs:      probs,
		lookupSize: DefaultLookupSize,
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}
	if err := validateProbs(probs); err != nil {
		return nil, err
	}

	for i := range c.index {
		c.index[i] = -1
	}
	for i, p := range probs {
		c.index[p.Symbol] = int16(i) //nolint:gosec // i < MaxSymbols
	}

	if len(probs) < 2 {
		return c, nil
	}

	d := buildDictionary(probs)
	c.buildDecodeTable(d)
	c.buildEncodeTables(d)

	return c, nil
}

// Probabilities returns the probability table the coder was built from.
func (c *Coder) Probabilities() []SymbolProb {
	return c.probs
}

// Codes returns the number of dictionary codes, 0 for alphabets of fewer than two symbols.
func (c *Coder) Codes() int {
	return len(c.offsets)
}

func (c *Coder) buildDecodeTable(d *dictionary) {
	c.offsets = make([]uint32, len(d.leaves))
	c.lengths = make([]uint16, len(d.leaves))

	total := 0
	for _, w := range d.leaves {
		total += int(d.words[w].depth)
	}
	c.symbols = make([]byte, total)

	offset := 0
	for code, w := range d.leaves {
		depth := int(d.words[w].depth)
		c.offsets[code] = uint32(offset) //nolint:gosec // total is bounded by 256 * max depth
		c.lengths[code] = uint16(depth)  //nolint:gosec // depth < 2^16

		// walk up from the leaf filling the word backwards
		for cur, i := w, depth-1; cur >= 0; cur, i = d.words[cur].parent, i-1 {
			c.symbols[offset+i] = c.probs[d.words[cur].symbol].Symbol
		}
		offset += depth
	}
}

func (c *Coder) buildEncodeTables(d *dictionary) {
	n := d.n
	size := 1
	for range c.lookupSize {
		size *= n
	}

	var build func(node int32) int32
	build = func(node int32) int32 {
		id := int32(len(c.tables)) //nolint:gosec // one table per internal node at most
		table := make([]tableEntry, size)
		c.tables = append(c.tables, table)

		digits := make([]int, c.lookupSize)
		for code := range size {
			rest := code
			for k := c.lookupSize - 1; k >= 0; k-- {
				digits[k] = rest % n
				rest /= n
			}

			cur := node
			entry := tableEntry{code: -1}
			for k := range c.lookupSize {
				cur = d.child(cur, digits[k])
				if d.isLeaf(cur) {
					entry.code = int16(d.code[cur]) //nolint:gosec // fewer than 256 codes
					entry.length = uint8(k + 1)     //nolint:gosec // k < MaxLookupSize
					break
				}
			}
			if entry.code < 0 {
				entry.next = build(cur)
			}
			table[code] = entry
		}

		return id
	}
	build(-1)
}

// Compress maps data to one code byte per dictionary word. The final word may
// extend past the end of data; Decompress truncates it away.
func (c *Coder) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	if len(c.tables) == 0 {
		return nil, fmt.Errorf("%w: dictionary of %d symbols has no codes", errs.ErrUnknownSymbol, len(c.probs))
	}

	n := len(c.probs)
	out := make([]byte, 0, len(data)/2+1)
	pos := 0
	for pos < len(data) {
		table := c.tables[0]
		for {
			key := 0
			for k := range c.lookupSize {
				idx := 0 // padding past the end uses the most probable symbol
				if p := pos + k; p < len(data) {
					idx = int(c.index[data[p]])
					if idx < 0 {
						return nil, fmt.Errorf("%w: symbol %d at offset %d", errs.ErrUnknownSymbol, data[p], p)
					}
				}
				key = key*n + idx
			}

			entry := table[key]
			if entry.code >= 0 {
				out = append(out, byte(entry.code))
				pos += int(entry.length)

				break
			}
			pos += c.lookupSize
			table = c.tables[entry.next]
		}
	}

	return out, nil
}

// Decompress expands codes back to exactly size symbols.
func (c *Coder) Decompress(codes []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative output size %d", errs.ErrCorruptStream, size)
	}
	if len(c.probs) == 1 {
		if len(codes) != 0 {
			return nil, fmt.Errorf("%w: %d codes for a single-symbol alphabet", errs.ErrCorruptStream, len(codes))
		}
		return fill(c.probs[0].Symbol, size), nil
	}
	if len(c.offsets) == 0 {
		if size != 0 || len(codes) != 0 {
			return nil, fmt.Errorf("%w: empty dictionary for %d symbols", errs.ErrCorruptStream, size)
		}
		return []byte{}, nil
	}

	out := make([]byte, 0, size+int(maxLen(c.lengths)))
	for i, code := range codes {
		if len(out) >= size {
			return nil, fmt.Errorf("%w: %d trailing codes", errs.ErrCorruptStream, len(codes)-i)
		}
		if int(code) >= len(c.offsets) {
			return nil, fmt.Errorf("%w: code %d outside dictionary of %d words", errs.ErrCorruptStream, code, len(c.offsets))
		}
		off := c.offsets[code]
		out = append(out, c.symbols[off:off+uint32(c.lengths[code])]...)
	}
	if len(out) < size {
		return nil, fmt.Errorf("%w: decoded %d of %d symbols", errs.ErrCorruptStream, len(out), size)
	}

	return out[:size], nil
}

func fill(symbol byte, size int) []byte {
	out := make([]byte, size)
	if symbol != 0 {
		for i := range out {
			out[i] = symbol
		}
	}

	return out
}

func maxLen(lengths []uint16) uint16 {
	var m uint16
	for _, l := range lengths {
		m = max(m, l)
	}

	return m
}

package tunstall

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/arloliu/meco/errs"
)

const (
	// WordSize is the width in bits of one output code.
	WordSize = 8
	// MaxSymbols is the largest alphabet a dictionary record can describe.
	MaxSymbols = 255

	dictionaryCapacity = 1 << WordSize
	probabilityScale   = 255
	probabilityShift   = 8
)

// SymbolProb is one dictionary entry: a symbol and its probability scaled to 1-255.
type SymbolProb struct {
	Symbol byte
	Prob   byte
}

// Histogram counts the symbols of data and returns their scaled probabilities
// sorted by decreasing probability, ties broken by increasing symbol.
// Every present symbol gets a probability of at least 1.
func Histogram(data []byte) []SymbolProb {
	var counts [256]uint64
	for _, s := range data {
		counts[s]++
	}

	total := uint64(len(data))
	probs := make([]SymbolProb, 0, 16)
	for s, c := range counts {
		if c == 0 {
			continue
		}
		p := c * probabilityScale / total
		if p == 0 {
			p = 1
		}
		probs = append(probs, SymbolProb{Symbol: byte(s), Prob: byte(p)}) //nolint:gosec // s < 256, p <= 255
	}

	slices.SortFunc(probs, func(a, b SymbolProb) int {
		if c := cmp.Compare(b.Prob, a.Prob); c != 0 {
			return c
		}

		return cmp.Compare(a.Symbol, b.Symbol)
	})

	return probs
}

// word is a node of the dictionary tree. Unsplit words are the leaves that
// become dictionary codes.
type word struct {
	parent     int32  // -1 for words of length one
	symbol     uint8  // index into the probability table
	depth      uint16 // number of symbols
	prob       uint32 // fixed point, scaled by 2^8
	firstChild int32  // index of the child extended with symbol index 0, -1 if unsplit
}

// dictionary is the tree of words grown from a probability table.
type dictionary struct {
	words  []word
	leaves []int32 // word index for each code
	code   []int32 // code for each word, -1 for split words
	n      int     // alphabet size
}

func validateProbs(probs []SymbolProb) error {
	if len(probs) > MaxSymbols {
		return fmt.Errorf("%w: %d distinct symbols, limit is %d", errs.ErrAlphabetTooLarge, len(probs), MaxSymbols)
	}

	var seen [256]bool
	for _, p := range probs {
		if seen[p.Symbol] {
			return fmt.Errorf("%w: symbol %d listed twice in dictionary", errs.ErrCorruptStream, p.Symbol)
		}
		seen[p.Symbol] = true
	}

	return nil
}

// buildDictionary grows the word tree: starting from one word per symbol, the
// most probable unsplit word is replaced by its n one-symbol extensions until
// the number of words reaches 2^WordSize - n + 1.
func buildDictionary(probs []SymbolProb) *dictionary {
	n := len(probs)
	d := &dictionary{n: n}
	d.words = make([]word, 0, dictionaryCapacity+n)

	for i, p := range probs {
		d.words = append(d.words, word{
			parent:     -1,
			symbol:     uint8(i), //nolint:gosec // n <= MaxSymbols
			depth:      1,
			prob:       uint32(p.Prob) << probabilityShift,
			firstChild: -1,
		})
	}

	count := n
	if n > 1 {
		for count < dictionaryCapacity-n+1 {
			best := selectMostProbable(d.words)
			parent := d.words[best]
			d.words[best].firstChild = int32(len(d.words)) //nolint:gosec // bounded by dictionary capacity

			for i, p := range probs {
				d.words = append(d.words, word{
					parent:     int32(best), //nolint:gosec // bounded by dictionary capacity
					symbol:     uint8(i),    //nolint:gosec // n <= MaxSymbols
					depth:      parent.depth + 1,
					prob:       (parent.prob * uint32(p.Prob)) >> probabilityShift,
					firstChild: -1,
				})
			}
			count += n - 1
		}
	}

	d.code = make([]int32, len(d.words))
	for i, w := range d.words {
		if w.firstChild >= 0 {
			d.code[i] = -1
			continue
		}
		d.code[i] = int32(len(d.leaves)) //nolint:gosec // fewer than 256 leaves
		d.leaves = append(d.leaves, int32(i)) //nolint:gosec // bounded by dictionary capacity
	}

	return d
}

// selectMostProbable returns the index of the unsplit word with the highest
// probability; the earliest word wins ties.
//
// The scan is quadratic over the whole construction, which is fine for the
// small alphabets of prediction residuals. Swap in a heap here if alphabets grow.
func selectMostProbable(words []word) int {
	best := -1
	var bestProb uint32
	for i := range words {
		w := &words[i]
		if w.firstChild >= 0 {
			continue
		}
		if best < 0 || w.prob > bestProb {
			best = i
			bestProb = w.prob
		}
	}

	return best
}

// child returns the word extending w by the symbol with index s, or the word
// of length one when w is -1 (the root).
func (d *dictionary) child(w int32, s int) int32 {
	if w < 0 {
		return int32(s) //nolint:gosec // s < n
	}

	return d.words[w].firstChild + int32(s) //nolint:gosec // s < n
}

func (d *dictionary) isLeaf(w int32) bool {
	return d.words[w].firstChild < 0
}

package tunstall

import (
	"math/rand"
	"testing"

	"github.com/arloliu/meco/errs"
	"github.com/stretchr/testify/require"
)

// skewed returns size symbols where symbol 0 appears with probability p and
// the rest are drawn uniformly from 1..alphabet-1.
func skewed(rng *rand.Rand, size, alphabet int, p float64) []byte {
	data := make([]byte, size)
	for i := range data {
		if alphabet == 1 || rng.Float64() < p {
			continue
		}
		data[i] = byte(1 + rng.Intn(alphabet-1))
	}

	return data
}

func TestHistogram(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []SymbolProb
	}{
		{"empty", nil, []SymbolProb{}},
		{"single", []byte("zzz"), []SymbolProb{{'z', 255}}},
		{"skewed", []byte("aaab"), []SymbolProb{{'a', 191}, {'b', 63}}},
		{"ties by symbol", []byte("ba"), []SymbolProb{{'a', 127}, {'b', 127}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Histogram(tt.data))
		})
	}
}

func TestHistogram_RareSymbolKeepsMinimumProbability(t *testing.T) {
	data := make([]byte, 1001)
	data[500] = 1

	require.Equal(t, []SymbolProb{{0, 254}, {1, 1}}, Histogram(data))
}

func TestNewCoder_CodeCount(t *testing.T) {
	tests := []struct {
		alphabet int
		want     int
	}{
		{2, 255},
		{16, 241},
		{255, 255},
	}

	for _, tt := range tests {
		probs := make([]SymbolProb, tt.alphabet)
		for i := range probs {
			probs[i] = SymbolProb{Symbol: byte(i), Prob: 1}
		}

		c, err := NewCoder(probs)
		require.NoError(t, err)
		require.Equal(t, tt.want, c.Codes(), "alphabet=%d", tt.alphabet)
	}
}

func TestNewCoder_RejectsBadTables(t *testing.T) {
	_, err := NewCoder([]SymbolProb{{1, 10}, {1, 20}})
	require.ErrorIs(t, err, errs.ErrCorruptStream)

	_, err = NewCoder([]SymbolProb{{1, 10}, {2, 20}}, WithLookupSize(0))
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	_, err = NewCoder([]SymbolProb{{1, 10}, {2, 20}}, WithLookupSize(MaxLookupSize+1))
	require.ErrorIs(t, err, errs.ErrInvalidOption)
}

func TestCoder_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	tests := []struct {
		name     string
		alphabet int
		p        float64
		size     int
	}{
		{"binary balanced", 2, 0.5, 5000},
		{"binary skewed", 2, 0.95, 5000},
		{"small alphabet", 5, 0.6, 4000},
		{"medium alphabet", 40, 0.3, 4000},
		{"large alphabet", 200, 0.01, 8000},
		{"one byte", 3, 0.5, 1},
	}

	for _, tt := range tests {
		for _, lookup := range []int{1, 2, 3} {
			if lookup == 3 && tt.alphabet > 40 {
				continue
			}
			data := skewed(rng, tt.size, tt.alphabet, tt.p)
			probs := Histogram(data)
			if len(probs) < 2 {
				continue
			}

			enc, err := NewCoder(probs, WithLookupSize(lookup))
			require.NoError(t, err)
			codes, err := enc.Compress(data)
			require.NoError(t, err, "%s lookup=%d", tt.name, lookup)

			// decoding does not depend on the lookup size
			dec, err := NewCoder(probs)
			require.NoError(t, err)
			got, err := dec.Decompress(codes, len(data))
			require.NoError(t, err, "%s lookup=%d", tt.name, lookup)
			require.Equal(t, data, got, "%s lookup=%d", tt.name, lookup)
		}
	}
}

func TestCoder_CompressesSkewedInput(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	data := skewed(rng, 20000, 2, 0.9)

	c, err := NewCoder(Histogram(data))
	require.NoError(t, err)
	codes, err := c.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(codes), len(data)/4)
}

func TestCoder_CompressUnknownSymbol(t *testing.T) {
	c, err := NewCoder([]SymbolProb{{'a', 200}, {'b', 55}})
	require.NoError(t, err)

	_, err = c.Compress([]byte("abc"))
	require.ErrorIs(t, err, errs.ErrUnknownSymbol)
}

func TestCoder_DecompressCorrupt(t *testing.T) {
	probs := make([]SymbolProb, 16)
	for i := range probs {
		probs[i] = SymbolProb{Symbol: byte(i), Prob: 16}
	}
	c, err := NewCoder(probs)
	require.NoError(t, err)
	require.Equal(t, 241, c.Codes())

	t.Run("code outside dictionary", func(t *testing.T) {
		_, err := c.Decompress([]byte{250}, 1)
		require.ErrorIs(t, err, errs.ErrCorruptStream)
	})

	t.Run("short output", func(t *testing.T) {
		_, err := c.Decompress([]byte{0}, 1000)
		require.ErrorIs(t, err, errs.ErrCorruptStream)
	})

	t.Run("trailing codes", func(t *testing.T) {
		_, err := c.Decompress([]byte{0, 0}, 1)
		require.ErrorIs(t, err, errs.ErrCorruptStream)
	})

	t.Run("negative size", func(t *testing.T) {
		_, err := c.Decompress(nil, -1)
		require.ErrorIs(t, err, errs.ErrCorruptStream)
	})
}

func TestCoder_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	data := skewed(rng, 3000, 9, 0.5)

	first, err := NewCoder(Histogram(data))
	require.NoError(t, err)
	second, err := NewCoder(Histogram(data))
	require.NoError(t, err)

	a, err := first.Compress(data)
	require.NoError(t, err)
	b, err := second.Compress(data)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func BenchmarkCoder_Compress(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	data := skewed(rng, 64*1024, 12, 0.7)
	c, err := NewCoder(Histogram(data))
	require.NoError(b, err)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for b.Loop() {
		_, _ = c.Compress(data)
	}
}

func BenchmarkCoder_Decompress(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	data := skewed(rng, 64*1024, 12, 0.7)
	c, err := NewCoder(Histogram(data))
	require.NoError(b, err)
	codes, err := c.Compress(data)
	require.NoError(b, err)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for b.Loop() {
		_, _ = c.Decompress(codes, len(data))
	}
}

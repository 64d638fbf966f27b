package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Bits  int
	Name  string
	Calls []string
}

func withBits(bits int) Option[*testConfig] {
	return Named("bits", func(c *testConfig) error {
		if bits < 1 || bits > 16 {
			return errors.New("out of range")
		}
		c.Bits = bits
		c.Calls = append(c.Calls, "bits")

		return nil
	})
}

func withName(name string) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.Name = name
		c.Calls = append(c.Calls, "name")
	})
}

func TestApply_InOrder(t *testing.T) {
	cfg := &testConfig{}

	err := Apply(cfg, withName("mesh"), withBits(10))
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Bits)
	require.Equal(t, "mesh", cfg.Name)
	require.Equal(t, []string{"name", "bits"}, cfg.Calls)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &testConfig{}

	err := Apply(cfg, withBits(0), withName("never"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "bits: out of range")
	require.Empty(t, cfg.Name)
}

func TestApply_SkipsNil(t *testing.T) {
	cfg := &testConfig{}

	require.NoError(t, Apply(cfg, nil, withBits(4)))
	require.Equal(t, 4, cfg.Bits)
}

func TestNew_PropagatesErrorUnchanged(t *testing.T) {
	sentinel := errors.New("rejected")
	opt := New(func(*testConfig) error { return sentinel })

	err := Apply(&testConfig{}, opt)
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, "rejected", err.Error())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arloliu/meco/codec"
	"github.com/arloliu/meco/endian"
	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/format"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := Default()
	require.Equal(t, codec.DefaultCoordShift, p.Quantization.CoordShift)
	require.Equal(t, codec.DefaultUVShift, p.Quantization.UVShift)
	require.Equal(t, codec.DefaultNormalBits, p.Normals.Bits)
	require.Equal(t, ColorConfig{8, 8, 8, 8}, p.Colors)
	require.NoError(t, p.Validate())

	ct, err := p.Compression()
	require.NoError(t, err)
	require.Equal(t, format.CompressionNone, ct)

	engine, err := p.Engine()
	require.NoError(t, err)
	require.Equal(t, endian.GetNativeEngine(), engine)
}

func TestParse_OverlaysDefaults(t *testing.T) {
	p, err := Parse([]byte(`
quantization:
  coord_shift: -14
normals:
  bits: 12
colors:
  co: 6
  cg: 6
envelope:
  compression: zstd
  byte_order: big
`))
	require.NoError(t, err)

	require.Equal(t, -14, p.Quantization.CoordShift)
	require.Equal(t, codec.DefaultUVShift, p.Quantization.UVShift)
	require.Equal(t, 12, p.Normals.Bits)
	require.Equal(t, ColorConfig{Y: 8, Co: 6, Cg: 6, A: 8}, p.Colors)

	ct, err := p.Compression()
	require.NoError(t, err)
	require.Equal(t, format.CompressionZstd, ct)

	engine, err := p.Engine()
	require.NoError(t, err)
	require.False(t, endian.IsLittleEndian(engine))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"normal bits", "normals:\n  bits: 40\n"},
		{"color bits", "colors:\n  a: 0\n"},
		{"lookup size", "entropy:\n  lookup_size: 9\n"},
		{"coord shift", "quantization:\n  coord_shift: 100\n"},
		{"compression", "envelope:\n  compression: gzip\n"},
		{"byte order", "envelope:\n  byte_order: middle\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, errs.ErrInvalidOption)
		})
	}

	_, err := Parse([]byte("normals: [1, 2"))
	require.Error(t, err)
}

func TestProfile_EncoderOptions(t *testing.T) {
	p := Default()
	p.Quantization.CoordShift = 0
	p.Envelope.ByteOrder = "little"

	opts, err := p.EncoderOptions(nil)
	require.NoError(t, err)
	enc, err := codec.NewEncoder(opts...)
	require.NoError(t, err)

	buf := &codec.Buffers{
		Positions: []float32{0, 0, 0, 3, 0, 0, 0, 3, 0},
		Indices:   []uint16{0, 1, 2},
	}
	sig := codec.NewSignature(format.AttrIndex)
	res, err := enc.Encode(sig, codec.Node{NVert: 3, NFace: 1}, buf)
	require.NoError(t, err)

	dec, err := codec.NewDecoder(codec.WithDecoderEndian(endian.GetLittleEndianEngine()))
	require.NoError(t, err)
	out, err := dec.Decode(sig, res.Node, res.Payload)
	require.NoError(t, err)
	require.ElementsMatch(t, buf.Positions, out.Positions)

	sealOpts, err := p.SealOptions()
	require.NoError(t, err)
	require.Len(t, sealOpts, 1)
}

func TestLoad(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), p)

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "profile.yaml")

	want := Default()
	want.Envelope.Compression = "lz4"
	want.Entropy.LookupSize = 3
	want.Logging.Level = "debug"
	require.NoError(t, want.SaveTo(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatOf(t *testing.T) {
	require.Equal(t, FormatTOML, FormatOf("profile.toml"))
	require.Equal(t, FormatTOML, FormatOf("/etc/meco/PROFILE.TOML"))
	require.Equal(t, FormatYAML, FormatOf("profile.yaml"))
	require.Equal(t, FormatYAML, FormatOf("profile"))
}

func TestParseFormat_TOML(t *testing.T) {
	p, err := ParseFormat([]byte(`
[quantization]
coord_shift = -6

[entropy]
lookup_size = 4

[envelope]
compression = "s2"
`), FormatTOML)
	require.NoError(t, err)
	require.Equal(t, -6, p.Quantization.CoordShift)
	require.Equal(t, 4, p.Entropy.LookupSize)
	require.Equal(t, codec.DefaultNormalBits, p.Normals.Bits)

	ct, err := p.Compression()
	require.NoError(t, err)
	require.Equal(t, format.CompressionS2, ct)

	_, err = ParseFormat([]byte("[normals]\nbits = 1\n"), FormatTOML)
	require.ErrorIs(t, err, errs.ErrInvalidOption)
}

func TestLoad_TOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")

	want := Default()
	want.Colors = ColorConfig{Y: 7, Co: 5, Cg: 5, A: 2}
	want.Envelope.ByteOrder = "big"
	require.NoError(t, want.SaveTo(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, Default().SaveTo(path))

	w, err := Watch(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()

	// writes to other files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	// truncation shows up as its own write, so an empty file (the defaults)
	// may be delivered before the new content
	require.NoError(t, os.WriteFile(path, []byte("normals:\n  bits: 14\n"), 0o600))
	deadline := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case p := <-w.Profiles():
			reloaded = p.Normals.Bits == 14
		case err := <-w.Errors():
			require.NoError(t, err)
		case <-deadline:
			t.Fatal("no reload after write")
		}
	}

	require.NoError(t, os.WriteFile(path, []byte("normals:\n  bits: 99\n"), 0o600))
	deadline = time.After(5 * time.Second)
	for {
		select {
		case err := <-w.Errors():
			require.ErrorIs(t, err, errs.ErrInvalidOption)
			return
		case <-w.Profiles():
		case <-deadline:
			t.Fatal("no error after invalid write")
		}
	}
}

func TestWatch_EmptyPath(t *testing.T) {
	_, err := Watch("")
	require.Error(t, err)
}

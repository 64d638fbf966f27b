package meco

import (
	"slices"
	"testing"

	"github.com/arloliu/meco/codec"
	"github.com/arloliu/meco/config"
	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/format"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// grid returns a flat w x h vertex grid of 2(w-1)(h-1) faces with integer
// positions and normals pointing up.
func grid(w, h int) (codec.Node, *codec.Buffers) {
	n := w * h
	buf := &codec.Buffers{
		Positions: make([]float32, 0, n*3),
		Normals:   make([]int16, 0, n*3),
	}
	for y := range h {
		for x := range w {
			buf.Positions = append(buf.Positions, float32(x*2), float32(y*2), 5)
			buf.Normals = append(buf.Normals, 0, 0, 32767)
		}
	}
	for y := range h - 1 {
		for x := range w - 1 {
			i := uint16(y*w + x) //nolint:gosec // small grid
			w16 := uint16(w)     //nolint:gosec // small grid
			buf.Indices = append(buf.Indices, i, i+1, i+w16, i+1, i+w16+1, i+w16)
		}
	}

	return codec.Node{NVert: uint32(n), NFace: uint32(len(buf.Indices) / 3)}, buf //nolint:gosec // small grid
}

func canonical(indices []uint16, order []uint32) [][3]uint32 {
	faces := make([][3]uint32, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		f := [3]uint32{uint32(indices[i]), uint32(indices[i+1]), uint32(indices[i+2])}
		if order != nil {
			f = [3]uint32{order[f[0]], order[f[1]], order[f[2]]}
		}
		for f[0] > f[1] || f[0] > f[2] {
			f = [3]uint32{f[1], f[2], f[0]}
		}
		faces = append(faces, f)
	}
	slices.SortFunc(faces, func(a, b [3]uint32) int {
		for k := range 3 {
			if a[k] != b[k] {
				return int(a[k]) - int(b[k])
			}
		}

		return 0
	})

	return faces
}

func requireSameMesh(t *testing.T, in *codec.Buffers, res *codec.EncodeResult, out *codec.Buffers) {
	t.Helper()

	require.Len(t, out.Positions, len(res.VertexOrder)*3)
	for i, src := range res.VertexOrder {
		require.Equal(t, in.Positions[src*3:src*3+3], out.Positions[i*3:i*3+3], "vertex %d", i)
	}
	require.Equal(t, canonical(in.Indices, nil), canonical(out.Indices, res.VertexOrder))
}

func TestPackUnpack(t *testing.T) {
	node, buf := grid(6, 5)
	sig := codec.NewSignature(format.AttrIndex, format.AttrNormal)

	sealed, res, err := Pack(sig, node, buf)
	require.NoError(t, err)
	require.Equal(t, node.NFace, res.Node.NFace)

	mesh, err := Unpack(sealed)
	require.NoError(t, err)
	require.Equal(t, sig, mesh.Signature)
	require.Equal(t, res.Node, mesh.Node)
	requireSameMesh(t, buf, res, mesh.Buffers)

	for i := range len(res.VertexOrder) {
		require.Equal(t, []int16{0, 0, 32767}, mesh.Buffers.Normals[i*3:i*3+3])
	}
}

func TestPipeline_Profiles(t *testing.T) {
	node, buf := grid(9, 7)
	sig := codec.NewSignature(format.AttrIndex)

	for _, compression := range []string{"none", "zstd", "s2", "lz4"} {
		for _, order := range []string{"little", "big"} {
			t.Run(compression+"/"+order, func(t *testing.T) {
				profile := config.Default()
				profile.Envelope.Compression = compression
				profile.Envelope.ByteOrder = order
				profile.Entropy.LookupSize = 1

				pipe, err := NewPipeline(profile, nil)
				require.NoError(t, err)
				sealed, res, err := pipe.Pack(sig, node, buf)
				require.NoError(t, err)

				// any pipeline opens any envelope
				mesh, err := Unpack(sealed)
				require.NoError(t, err)
				requireSameMesh(t, buf, res, mesh.Buffers)
			})
		}
	}
}

func TestPipeline_InvalidProfile(t *testing.T) {
	profile := config.Default()
	profile.Envelope.Compression = "brotli"
	_, err := NewPipeline(profile, nil)
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	profile = config.Default()
	profile.Normals.Bits = 1
	_, err = NewPipeline(profile, nil)
	require.ErrorIs(t, err, errs.ErrInvalidOption)
}

func TestUnpack_Damaged(t *testing.T) {
	node, buf := grid(4, 4)
	sealed, _, err := Pack(codec.NewSignature(format.AttrIndex), node, buf)
	require.NoError(t, err)

	broken := slices.Clone(sealed)
	broken[len(broken)-1] ^= 0x01
	_, err = Unpack(broken)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)

	_, err = Unpack(sealed[:10])
	require.Error(t, err)
}

func TestPipeline_Logger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	pipe, err := NewPipeline(config.Default(), zap.New(core))
	require.NoError(t, err)

	node, buf := grid(3, 3)
	_, _, err = pipe.Pack(codec.NewSignature(format.AttrIndex), node, buf)
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("encoded node").Len())
}

func TestNewEncoderDecoder(t *testing.T) {
	enc, err := NewEncoder(codec.WithNormalBits(12))
	require.NoError(t, err)
	require.NotNil(t, enc)

	_, err = NewEncoder(codec.WithNormalBits(99))
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	dec, err := NewDecoder()
	require.NoError(t, err)
	require.NotNil(t, dec)
}

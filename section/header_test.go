package section

import (
	"testing"

	"github.com/arloliu/meco/endian"
	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/format"
	"github.com/stretchr/testify/require"
)

func TestNewHeader(t *testing.T) {
	header := NewHeader()

	require.NotNil(t, header)
	require.Equal(t, uint16(MagicNodeV1Opt), header.Flag.GetMagicNumber())
	require.True(t, header.Flag.IsLittleEndian())
	require.Equal(t, format.CompressionNone, header.Flag.Compression)
	require.NoError(t, header.Flag.Validate())
}

func TestHeader_Parse(t *testing.T) {
	for _, big := range []bool{false, true} {
		original := NewHeader()
		if big {
			original.Flag.WithBigEndian()
		}
		original.Flag.Attributes = format.AttrIndex | format.AttrNormal
		original.Flag.Compression = format.CompressionZstd
		original.NVert = 1200
		original.NFace = 2301
		original.PatchCount = 3
		original.PayloadSize = 4096
		original.RawSize = 9000
		original.Checksum = 0x0102030405060708

		parsed := &Header{}
		require.NoError(t, parsed.Parse(original.Bytes()))
		require.Equal(t, *original, *parsed)
		require.Equal(t, 3*PatchRecordSize+4096, parsed.BodySize())
	}
}

func TestHeader_Bytes_OptionsAlwaysLittleEndian(t *testing.T) {
	header := NewHeader()
	header.Flag.SetEndian(endian.GetBigEndianEngine())
	header.NVert = 1

	data := header.Bytes()
	require.Equal(t, byte(0x12), data[0])
	require.Equal(t, byte(0xCE), data[1])
	require.Equal(t, []byte{0, 0, 0, 1}, data[4:8])
}

func TestHeader_Parse_Invalid(t *testing.T) {
	t.Run("invalid size", func(t *testing.T) {
		err := (&Header{}).Parse([]byte{1, 2, 3})
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

		_, err = ParseHeader(make([]byte, HeaderSize-1))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("invalid magic number", func(t *testing.T) {
		data := make([]byte, HeaderSize)
		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})

	t.Run("reserved bits", func(t *testing.T) {
		data := NewHeader().Bytes()
		data[0] |= 0x01
		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidEnvelope)
	})

	t.Run("unknown attributes", func(t *testing.T) {
		data := NewHeader().Bytes()
		data[2] = 0x80
		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidEnvelope)
	})

	t.Run("unknown compression", func(t *testing.T) {
		data := NewHeader().Bytes()
		data[3] = 0x09
		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidEnvelope)
	})
}

func TestFlag_GetEndianEngine(t *testing.T) {
	flag := NewFlag()
	require.Equal(t, endian.GetLittleEndianEngine(), flag.GetEndianEngine())

	flag.SetEndian(endian.GetBigEndianEngine())
	require.True(t, flag.IsBigEndian())
	require.Equal(t, endian.GetBigEndianEngine(), flag.GetEndianEngine())

	flag.SetEndian(endian.GetLittleEndianEngine())
	require.True(t, flag.IsLittleEndian())
}

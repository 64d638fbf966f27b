package compress

import (
	"fmt"

	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/format"
)

// Compressor compresses a finished node payload before it is sealed into an
// envelope.
type Compressor interface {
	// Compress returns the compressed form of data. The input is not modified;
	// the result may alias it for codecs that do not transform the data.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores payloads produced by the matching Compressor.
//
// The envelope header records the uncompressed size, so every decompressor is
// told exactly how many bytes to produce and rejects streams that disagree.
type Decompressor interface {
	// Decompress expands data into exactly size bytes.
	//
	// Returns ErrCorruptStream if data is malformed or does not expand to size bytes.
	Decompress(data []byte, size int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec is a factory function that creates a Codec based on the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Compressor instance for the specified type
//   - error: ErrInvalidOption for an unknown compression type
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: invalid %s compression: %s", errs.ErrInvalidOption, target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: unsupported compression type: %s", errs.ErrInvalidEnvelope, compressionType)
}

// checkSize validates the output of a decompressor against the recorded size.
func checkSize(name string, out []byte, size int) ([]byte, error) {
	if len(out) != size {
		return nil, fmt.Errorf("%w: %s payload expands to %d bytes, header says %d", errs.ErrCorruptStream, name, len(out), size)
	}

	return out, nil
}

// Package compress provides the general-purpose codecs an envelope can apply
// to a node payload after the mesh codec has produced it.
//
// Node payloads are already entropy coded channel by channel, so a second
// pass is optional and recorded per envelope as a format.CompressionType:
//   - None: payload stored as-is (default)
//   - Zstd: best ratio, moderate speed
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
//
// # Architecture
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte, size int) ([]byte, error)
//	}
//
// Decompressors are handed the uncompressed size stored in the envelope
// header. They allocate exactly that much and fail with errs.ErrCorruptStream
// when the stream expands to anything else, so a damaged envelope cannot make
// a reader allocate unbounded memory.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//	...
//	payload, err = codec.Decompress(packed, rawSize)
//
// The built-in codecs are stateless values. Zstd and LZ4 keep their encoder
// and decoder state in sync.Pools, so one codec may be shared by goroutines.
package compress

package blob

import (
	"fmt"
	"math"

	"github.com/arloliu/meco/codec"
	"github.com/arloliu/meco/compress"
	"github.com/arloliu/meco/endian"
	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/format"
	"github.com/arloliu/meco/internal/hash"
	"github.com/arloliu/meco/internal/options"
	"github.com/arloliu/meco/internal/pool"
	"github.com/arloliu/meco/section"
)

// checksumOffset is the position of the checksum field in the header.
const checksumOffset = 24

// Envelope is the content of a sealed node.
type Envelope struct {
	Signature codec.Signature
	Node      codec.Node
	// Payload is the uncompressed codec payload.
	Payload []byte
	// Engine is the byte order the payload was encoded with. Seal defaults it
	// to the host order; Open fills it in from the header.
	Engine endian.EndianEngine
	// Compression is the codec the payload was stored with. Set by Open.
	Compression format.CompressionType
}

// SealConfig holds the settings of Seal.
type SealConfig struct {
	compression format.CompressionType
	codec       compress.Codec
}

// SealOption configures Seal.
type SealOption = options.Option[*SealConfig]

// WithCompression sets the codec applied to the payload. The default is
// format.CompressionNone.
func WithCompression(ct format.CompressionType) SealOption {
	return options.Named("compression", func(c *SealConfig) error {
		impl, err := compress.CreateCodec(ct, "envelope")
		if err != nil {
			return err
		}
		c.compression = ct
		c.codec = impl

		return nil
	})
}

// Seal builds an envelope for env. The returned slice is owned by the caller.
//
// Returns:
//   - ErrMalformedSignature: env.Signature is invalid or a point cloud carries patches
//   - ErrInvalidOption: an option is invalid
//   - ErrInvalidEnvelope: the payload or patch table exceeds the 32-bit size fields
func Seal(env Envelope, opts ...SealOption) ([]byte, error) {
	cfg := &SealConfig{
		compression: format.CompressionNone,
		codec:       compress.NewNoOpCompressor(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if err := env.Signature.Validate(); err != nil {
		return nil, err
	}
	if len(env.Node.Patches) > 0 && !env.Signature.HasIndex() {
		return nil, fmt.Errorf("%w: point cloud with %d patches", errs.ErrMalformedSignature, len(env.Node.Patches))
	}
	if uint64(len(env.Payload)) > math.MaxUint32 || uint64(len(env.Node.Patches)) > math.MaxUint32/section.PatchRecordSize {
		return nil, fmt.Errorf("%w: payload of %d bytes with %d patches", errs.ErrInvalidEnvelope, len(env.Payload), len(env.Node.Patches))
	}

	engine := env.Engine
	if engine == nil {
		engine = endian.GetNativeEngine()
	}

	stored, err := cfg.codec.Compress(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("compressing payload: %w", err)
	}
	if uint64(len(stored)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: compressed payload of %d bytes", errs.ErrInvalidEnvelope, len(stored))
	}

	header := section.NewHeader()
	header.Flag.SetEndian(engine)
	header.Flag.Attributes = env.Signature.Flags
	header.Flag.Compression = cfg.compression
	header.NVert = env.Node.NVert
	header.NFace = env.Node.NFace
	header.PatchCount = uint32(len(env.Node.Patches)) //nolint:gosec // checked above
	header.PayloadSize = uint32(len(stored))          //nolint:gosec // checked above
	header.RawSize = uint32(len(env.Payload))         //nolint:gosec // checked above

	buf := pool.GetEnvelopeBuffer()
	defer pool.PutEnvelopeBuffer(buf)

	buf.ExtendOrGrow(section.HeaderSize)
	table := buf.ExtendOrGrow(len(env.Node.Patches) * section.PatchRecordSize)
	for i, p := range env.Node.Patches {
		engine.PutUint32(table[i*section.PatchRecordSize:], p.TriangleEnd)
		engine.PutUint32(table[i*section.PatchRecordSize+4:], p.Texture)
	}
	buf.MustWrite(stored)

	// the checksum covers every header field before it
	header.WriteToSlice(buf.Bytes())
	header.Checksum = hash.ChecksumParts(buf.Bytes()[:checksumOffset], buf.Bytes()[section.HeaderSize:])
	header.WriteToSlice(buf.Bytes())

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// PeekHeader parses and validates the header of a sealed node without
// touching its body.
func PeekHeader(data []byte) (section.Header, error) {
	return section.ParseHeader(data)
}

// Open verifies a sealed node and returns its content with the payload
// decompressed. The returned payload may share memory with data when the
// envelope is uncompressed.
//
// Returns:
//   - ErrInvalidHeaderSize, ErrInvalidMagic, ErrInvalidEnvelope: the header is damaged
//   - ErrChecksumMismatch: the body does not match the header checksum
//   - ErrCorruptStream: the payload does not decompress to the recorded size
//   - ErrMalformedSignature: the recorded signature is not valid
func Open(data []byte) (*Envelope, error) {
	header, err := section.ParseHeader(data)
	if err != nil {
		return nil, err
	}

	bodySize := uint64(header.PatchCount)*section.PatchRecordSize + uint64(header.PayloadSize)
	if uint64(len(data)-section.HeaderSize) != bodySize {
		return nil, fmt.Errorf("%w: body of %d bytes, header describes %d", errs.ErrInvalidEnvelope, len(data)-section.HeaderSize, bodySize)
	}

	body := data[section.HeaderSize:]
	if sum := hash.ChecksumParts(data[:checksumOffset], body); sum != header.Checksum {
		return nil, fmt.Errorf("%w: computed %016x, header has %016x", errs.ErrChecksumMismatch, sum, header.Checksum)
	}

	env := &Envelope{
		Signature:   codec.Signature{Flags: header.Flag.Attributes},
		Node:        codec.Node{NVert: header.NVert, NFace: header.NFace},
		Engine:      header.Flag.GetEndianEngine(),
		Compression: header.Flag.Compression,
	}
	if err := env.Signature.Validate(); err != nil {
		return nil, err
	}

	tableSize := int(header.PatchCount) * section.PatchRecordSize
	if header.PatchCount > 0 {
		env.Node.Patches = make([]codec.Patch, header.PatchCount)
		for i := range env.Node.Patches {
			rec := body[i*section.PatchRecordSize:]
			env.Node.Patches[i] = codec.Patch{
				TriangleEnd: env.Engine.Uint32(rec),
				Texture:     env.Engine.Uint32(rec[4:]),
			}
		}
	}

	decompressor, err := compress.GetCodec(header.Flag.Compression)
	if err != nil {
		return nil, err
	}
	env.Payload, err = decompressor.Decompress(body[tableSize:], int(header.RawSize))
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	if env.Payload == nil {
		env.Payload = []byte{}
	}

	return env, nil
}

package section

const (
	// Bit masks of Flag.Options
	EndiannessMask   = 0x0002 // Mask for endianness bit (bit 1)
	ReservedBitsMask = 0x000D // Mask for reserved bits (bits 0, 2, 3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// Magic numbers (bits 4-15)
	MagicNodeV1Opt = 0xCE10 // MagicNodeV1Opt is a version 1 magic number for sealed node payloads.
)

// offset and section sizes in the envelope
const (
	HeaderSize      = 32         // fixed header size in bytes
	PatchRecordSize = 8          // triangle end + texture id, both uint32
	PatchOffset     = HeaderSize // byte offset where the patch table starts
)

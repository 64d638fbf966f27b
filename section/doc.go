// Package section defines the fixed binary records shared by the codec and
// the envelope: quantization grid records and the sealed node header.
//
// # Grid Record
//
// Every quantized attribute (positions, texture coordinates) starts with
//
//	Bytes      | Field  | Type       | Description
//	-----------|--------|------------|-------------------------------------
//	0..4c-1    | Min    | int32 × c  | Per-component minimum grid value
//	4c         | Shift  | int8       | Step is 2^Shift
//	4c+1       | Bits   | uint8      | Width of each rebased component
//
// # Envelope Layout
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (32 bytes, fixed)                                │
//	├─────────────────────────────────────────────────────────┤
//	│ Patch table (PatchCount × 8 bytes)                      │
//	│  - TriangleEnd (uint32), Texture (uint32)               │
//	├─────────────────────────────────────────────────────────┤
//	│ Payload (PayloadSize bytes, optionally compressed)      │
//	└─────────────────────────────────────────────────────────┘
//
// Header (32 bytes):
//
//	Bytes  | Field       | Type   | Description
//	-------|-------------|--------|----------------------------------
//	0-3    | Flag        | uint32 | Magic, byte order, signature, compression
//	4-7    | NVert       | uint32 | Vertex count of the node
//	8-11   | NFace       | uint32 | Face count, 0 for point clouds
//	12-15  | PatchCount  | uint32 | Number of patch records
//	16-19  | PayloadSize | uint32 | Stored payload bytes
//	20-23  | RawSize     | uint32 | Payload bytes before compression
//	24-31  | Checksum    | uint64 | xxHash64 of patch table and payload
//
// # Flag Format
//
//	Byte 0-1 (Options, 16 bits, always little-endian):
//	  Bit 1: Endianness (0=little-endian, 1=big-endian)
//	  Bits 0, 2, 3: Reserved (must be 0)
//	  Bits 4-15: Magic number (0xCE10)
//
//	Byte 2 (Attributes): format.AttributeFlag of the node signature
//	Byte 3 (Compression): format.CompressionType of the payload
//
// All other multi-byte values use the byte order of the flag, which is also
// the byte order of the codec payload itself.
package section

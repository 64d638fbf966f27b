// Package stream provides the bit and byte stream primitives that carry a
// compressed node payload.
//
// A BitWriter packs values of 1-64 bits into 64-bit words. A ByteWriter holds
// typed scalars, entropy-coded channels and embedded bitstreams. An embedded
// bitstream is stored as
//
//	[zero padding to 4 bytes][word count: uint32][word 0: uint64]...[word n-1]
//
// so that ByteReader.ReadBits can hand back a BitReader that points straight
// into the payload without copying.
//
// Readers never trust lengths found in the data: any read past the end of the
// buffer returns errs.ErrCorruptStream.
package stream

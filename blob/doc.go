// Package blob seals encoded node payloads into self-describing envelopes.
//
// An envelope stores everything a reader needs to decode a node without any
// outside context:
//
//	+--------------------+  offset 0
//	| header (32 bytes)  |  magic, byte order, signature, compression,
//	|                    |  vertex/face/patch counts, sizes, checksum
//	+--------------------+  offset 32
//	| patch table        |  PatchCount × (triangle end uint32, texture uint32)
//	+--------------------+
//	| stored payload     |  codec payload, optionally compressed
//	+--------------------+
//
// The checksum is the xxHash64 of the header fields before it, the patch
// table and the stored payload. Open verifies it before decompressing anything.
//
// # Usage
//
//	res, err := encoder.Encode(sig, node, buffers)
//	...
//	sealed, err := blob.Seal(blob.Envelope{
//	    Signature: sig,
//	    Node:      res.Node,
//	    Payload:   res.Payload,
//	}, blob.WithCompression(format.CompressionZstd))
//	...
//	env, err := blob.Open(sealed)
//	...
//	decoder, err := codec.NewDecoder(codec.WithDecoderEndian(env.Engine))
//	buffers, err = decoder.Decode(env.Signature, env.Node, env.Payload)
package blob

// Package meco compresses the geometry of multiresolution mesh nodes.
//
// A node is a patch of triangles (or a point cloud) with optional normals,
// colors and texture coordinates. The codec package turns a node into a
// compact payload using quantization, Edgebreaker-style connectivity coding,
// parallelogram prediction and a Tunstall entropy coder. The blob package
// seals a payload into a self-describing envelope carrying the signature,
// the counts, the byte order, an optional whole-payload compression and an
// xxHash64 checksum.
//
// # Basic Usage
//
//	sig := codec.NewSignature(format.AttrIndex, format.AttrNormal)
//	node := codec.Node{NVert: nvert, NFace: nface}
//	buf := &codec.Buffers{Positions: pos, Normals: nrm, Indices: idx}
//
//	sealed, res, err := meco.Pack(sig, node, buf)
//	...
//	mesh, err := meco.Unpack(sealed)
//	// mesh.Buffers.Positions[i] belongs to original vertex res.VertexOrder[i]
//
// A Pipeline built from a config.Profile fixes the quantization, entropy,
// compression and byte order settings for many nodes:
//
//	profile, err := config.Load("profile.yaml")
//	pipe, err := meco.NewPipeline(profile, logger)
//	sealed, res, err := pipe.Pack(sig, node, buf)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the codec and
// blob packages. For fine-grained control, use those packages directly.
package meco

import (
	"github.com/arloliu/meco/blob"
	"github.com/arloliu/meco/codec"
	"github.com/arloliu/meco/config"
	"github.com/arloliu/meco/endian"
	"go.uber.org/zap"
)

// Mesh is an unpacked node.
type Mesh struct {
	Signature codec.Signature
	Node      codec.Node
	Buffers   *codec.Buffers
}

// Pipeline encodes and seals nodes, and opens and decodes them, with one
// fixed set of settings. A Pipeline is safe for concurrent use.
type Pipeline struct {
	enc    *codec.Encoder
	seal   []blob.SealOption
	engine endian.EndianEngine
	logger *zap.Logger
}

var defaultPipeline = mustPipeline(config.Default())

func mustPipeline(p *config.Profile) *Pipeline {
	pipe, err := NewPipeline(p, nil)
	if err != nil {
		panic(err)
	}

	return pipe
}

// NewPipeline creates a Pipeline from profile. A nil logger disables logging.
func NewPipeline(profile *config.Profile, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts, err := profile.EncoderOptions(logger)
	if err != nil {
		return nil, err
	}
	enc, err := codec.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}
	seal, err := profile.SealOptions()
	if err != nil {
		return nil, err
	}
	engine, err := profile.Engine()
	if err != nil {
		return nil, err
	}

	return &Pipeline{enc: enc, seal: seal, engine: engine, logger: logger}, nil
}

// Pack encodes buf and seals the payload into an envelope.
//
// The returned EncodeResult describes the cleaned node and maps decoded
// vertices back to the caller's vertices.
func (p *Pipeline) Pack(sig codec.Signature, node codec.Node, buf *codec.Buffers) ([]byte, *codec.EncodeResult, error) {
	res, err := p.enc.Encode(sig, node, buf)
	if err != nil {
		return nil, nil, err
	}

	sealed, err := blob.Seal(blob.Envelope{
		Signature: sig,
		Node:      res.Node,
		Payload:   res.Payload,
		Engine:    p.engine,
	}, p.seal...)
	if err != nil {
		return nil, nil, err
	}

	return sealed, res, nil
}

// Unpack opens an envelope and decodes its node.
func (p *Pipeline) Unpack(data []byte) (*Mesh, error) {
	env, err := blob.Open(data)
	if err != nil {
		return nil, err
	}

	dec, err := codec.NewDecoder(codec.WithDecoderEndian(env.Engine), codec.WithDecoderLogger(p.logger))
	if err != nil {
		return nil, err
	}
	buf, err := dec.Decode(env.Signature, env.Node, env.Payload)
	if err != nil {
		return nil, err
	}

	return &Mesh{Signature: env.Signature, Node: env.Node, Buffers: buf}, nil
}

// Pack encodes and seals a node with the default settings.
func Pack(sig codec.Signature, node codec.Node, buf *codec.Buffers) ([]byte, *codec.EncodeResult, error) {
	return defaultPipeline.Pack(sig, node, buf)
}

// Unpack opens and decodes an envelope produced by any Pipeline.
func Unpack(data []byte) (*Mesh, error) {
	return defaultPipeline.Unpack(data)
}

// NewEncoder creates a payload encoder.
func NewEncoder(opts ...codec.EncoderOption) (*codec.Encoder, error) {
	return codec.NewEncoder(opts...)
}

// NewDecoder creates a payload decoder.
func NewDecoder(opts ...codec.DecoderOption) (*codec.Decoder, error) {
	return codec.NewDecoder(opts...)
}

package codec

import (
	"fmt"

	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/internal/options"
	"github.com/arloliu/meco/quant"
	"github.com/arloliu/meco/section"
	"github.com/arloliu/meco/stream"
	"github.com/arloliu/meco/tunstall"
	"go.uber.org/zap"
)

// Decoder expands payloads produced by Encoder.
//
// A Decoder holds only its configuration and may be shared by goroutines
// decoding different nodes.
type Decoder struct {
	cfg *DecoderConfig
}

// NewDecoder creates a Decoder.
func NewDecoder(opts ...DecoderOption) (*Decoder, error) {
	cfg := newDecoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Decoder{cfg: cfg}, nil
}

// nodeDecoder carries the state of a single Decode call.
type nodeDecoder struct {
	r    *stream.ByteReader
	sig  Signature
	node Node
	out  *Buffers

	coords []uint32 // rebased quantized positions in decoded order
	faces  []uint32
}

// Decode expands payload into freshly allocated buffers. sig and node must be
// the signature and the EncodeResult.Node of the encode call.
//
// Any inconsistency in the payload fails with ErrCorruptStream; no partially
// decoded buffers are returned.
func (d *Decoder) Decode(sig Signature, node Node, payload []byte) (*Buffers, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	if err := node.validate(sig); err != nil {
		return nil, err
	}

	nd := &nodeDecoder{
		r:    stream.NewByteReader(payload, d.cfg.engine),
		sig:  sig,
		node: node,
		out:  NewBuffers(sig, node),
	}

	var err error
	if sig.HasIndex() {
		err = nd.decodeIndexed()
	} else {
		err = nd.decodePointCloud()
	}
	if err != nil {
		return nil, err
	}

	if sig.HasNormals() {
		if err := nd.decodeNormals(); err != nil {
			return nil, err
		}
	}
	if sig.HasColors() {
		if err := nd.decodeColors(); err != nil {
			return nil, err
		}
	}
	if rest := nd.r.Remaining(); rest != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", errs.ErrCorruptStream, rest)
	}

	d.cfg.logger.Debug("decoded node",
		zap.Stringer("signature", sig),
		zap.Uint32("vertices", node.NVert),
		zap.Uint32("faces", node.NFace),
		zap.Int("payload_bytes", len(payload)),
	)

	return nd.out, nil
}

func (nd *nodeDecoder) channel(name string, limit int) (*symbolCursor, error) {
	data, err := tunstall.ReadChannel(nd.r, limit)
	if err != nil {
		return nil, fmt.Errorf("%s channel: %w", name, err)
	}

	return &symbolCursor{name: name, data: data}, nil
}

func (nd *nodeDecoder) decodeIndexed() error {
	n := int(nd.node.NVert)
	nface := int(nd.node.NFace)

	grid, err := section.ReadGrid(nd.r, PositionComponents, quant.MaxCoordBits)
	if err != nil {
		return fmt.Errorf("position grid: %w", err)
	}
	var uvGrid quant.Grid
	textured := nd.sig.HasTexCoords()
	if textured {
		if uvGrid, err = section.ReadGrid(nd.r, TexCoordComponents, quant.MaxUVBits); err != nil {
			return fmt.Errorf("texture grid: %w", err)
		}
	}

	cd := &connectivityDecoder{
		nvert:    n,
		coordMax: int64(1) << grid.Bits,
		coords:   make([]uint32, n*PositionComponents),
		faces:    make([]uint32, 0, nface*FaceCorners),
	}

	// every edge is processed at most twice and faces create at most five edges
	if cd.clers, err = nd.channel(ChannelCLERS, 10*nface); err != nil {
		return err
	}
	if cd.posMags, err = nd.channel(ChannelPosition, 3*nface); err != nil {
		return err
	}
	if textured {
		cd.uvMax = int64(1) << uvGrid.Bits
		cd.uvs = make([]uint32, n*TexCoordComponents)
		if cd.uvMags, err = nd.channel(ChannelTexCoord, n); err != nil {
			return err
		}
	}
	if cd.bits, err = nd.r.ReadBits(); err != nil {
		return err
	}

	start := uint32(0)
	for _, p := range nd.node.patchList() {
		if err := cd.decodePatch(int(p.TriangleEnd - start)); err != nil {
			return err
		}
		start = p.TriangleEnd
	}

	if cd.count != n {
		return fmt.Errorf("%w: decoded %d of %d vertices", errs.ErrCorruptStream, cd.count, n)
	}
	for _, c := range []*symbolCursor{cd.clers, cd.posMags, cd.uvMags} {
		if c == nil {
			continue
		}
		if err := c.done(); err != nil {
			return err
		}
	}

	for i, v := range cd.faces {
		nd.out.Indices[i] = uint16(v) //nolint:gosec // v < NVert <= MaxVertices
	}
	for i, q := range cd.coords {
		nd.out.Positions[i] = grid.Dequantize(i%PositionComponents, q)
	}
	for i, q := range cd.uvs {
		nd.out.TexCoords[i] = uvGrid.Dequantize(i%TexCoordComponents, q)
	}
	nd.coords = cd.coords
	nd.faces = cd.faces

	return nil
}

func (nd *nodeDecoder) decodePointCloud() error {
	n := int(nd.node.NVert)

	grid, err := section.ReadGrid(nd.r, PositionComponents, quant.MaxZOrderBits)
	if err != nil {
		return fmt.Errorf("position grid: %w", err)
	}
	mags, err := nd.channel(ChannelZOrder, n)
	if err != nil {
		return err
	}
	br, err := nd.r.ReadBits()
	if err != nil {
		return err
	}

	limit := uint32(1) << grid.Bits
	nd.coords = make([]uint32, n*PositionComponents)
	var key uint64
	for i := range n {
		mag, err := mags.next()
		if err != nil {
			return err
		}
		d, err := decodeDiff(mag, br)
		if err != nil {
			return err
		}
		switch {
		case i == 0 && d >= 0:
			key = uint64(d)
		case i > 0 && d > 0 && uint64(d) <= key:
			key -= uint64(d)
		default:
			return fmt.Errorf("%w: z-order keys not strictly decreasing at vertex %d", errs.ErrCorruptStream, i)
		}

		x, y, z := quant.Deinterleave3(key)
		if key>>(3*quant.MaxZOrderBits) != 0 || x >= limit || y >= limit || z >= limit {
			return fmt.Errorf("%w: z-order key %#x outside grid of %d bits", errs.ErrCorruptStream, key, grid.Bits)
		}
		for k, q := range [3]uint32{x, y, z} {
			nd.coords[i*3+k] = q
			nd.out.Positions[i*3+k] = grid.Dequantize(k, q)
		}
	}

	return mags.done()
}

func (nd *nodeDecoder) decodeNormals() error {
	n := int(nd.node.NVert)
	bits, err := nd.r.ReadUint8()
	if err != nil {
		return err
	}
	if bits < MinNormalBits || bits > MaxNormalBits {
		return fmt.Errorf("%w: normal quantization of %d bits", errs.ErrCorruptStream, bits)
	}
	r := normalRange(bits)

	mags, err := nd.channel(ChannelNormal, 2*n)
	if err != nil {
		return err
	}
	signs, err := nd.channel(ChannelNormalSign, n)
	if err != nil {
		return err
	}
	br, err := nd.r.ReadBits()
	if err != nil {
		return err
	}

	store := func(i int, q [3]int64) {
		for k := range q {
			nd.out.Normals[i*3+k] = dequantizeNormal(q[k], r)
		}
	}

	if nd.sig.HasIndex() {
		est := estimateNormals(nd.coords, nd.faces, n, r)
		boundary := boundaryVertices(nd.faces, n)
		for i := range n {
			q := est[i]
			if boundary[i] {
				if q, err = decodeNormal(mags, signs, br, est[i], r); err != nil {
					return err
				}
			}
			store(i, q)
		}
	} else {
		var prev [3]int64
		for i := range n {
			q, err := decodeNormal(mags, signs, br, prev, r)
			if err != nil {
				return err
			}
			store(i, q)
			prev = q
		}
	}

	if err := mags.done(); err != nil {
		return err
	}

	return signs.done()
}

func (nd *nodeDecoder) decodeColors() error {
	n := int(nd.node.NVert)
	cd := &colorDecoder{}
	for k := range cd.bits {
		b, err := nd.r.ReadUint8()
		if err != nil {
			return err
		}
		if b < MinColorBits || b > MaxColorBits {
			return fmt.Errorf("%w: color quantization of %d bits", errs.ErrCorruptStream, b)
		}
		cd.bits[k] = b
	}
	for k := range cd.mags {
		mags, err := nd.channel(ChannelColor[k], n)
		if err != nil {
			return err
		}
		cd.mags[k] = mags
	}
	br, err := nd.r.ReadBits()
	if err != nil {
		return err
	}

	for i := range n {
		c, err := cd.decode(br)
		if err != nil {
			return err
		}
		copy(nd.out.Colors[i*ColorComponents:], c[:])
	}
	for _, mags := range cd.mags {
		if err := mags.done(); err != nil {
			return err
		}
	}

	return nil
}

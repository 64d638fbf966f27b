package codec

import (
	"fmt"

	"github.com/arloliu/meco/internal/options"
	"github.com/arloliu/meco/quant"
	"github.com/arloliu/meco/section"
	"github.com/arloliu/meco/stream"
	"github.com/arloliu/meco/tunstall"
	"go.uber.org/zap"
)

// Channel names used in Stats.
const (
	ChannelCLERS      = "clers"
	ChannelPosition   = "position"
	ChannelTexCoord   = "texcoord"
	ChannelZOrder     = "zorder"
	ChannelNormal     = "normal"
	ChannelNormalSign = "normal_sign"
)

// ChannelColor holds the names of the Y, Co, Cg and A color channels.
var ChannelColor = [ColorComponents]string{"color_y", "color_co", "color_cg", "color_a"}

// Encoder compresses node buffers into payloads.
//
// An Encoder holds only its configuration and may be shared by goroutines
// encoding different nodes.
type Encoder struct {
	cfg *EncoderConfig
}

// EncodeResult is the outcome of one encode call.
type EncodeResult struct {
	// Payload is the compressed node.
	Payload []byte
	// Node is the node the payload decodes to: vertex and face counts after
	// cleaning, and patch ends adjusted for dropped faces.
	Node Node
	// VertexOrder maps decoded vertex i to original vertex VertexOrder[i].
	VertexOrder []uint32
	Stats       Stats
}

// NewEncoder creates an Encoder.
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	cfg := newEncoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Encoder{cfg: cfg}, nil
}

// nodeEncoder carries the state of a single Encode call.
type nodeEncoder struct {
	cfg   *EncoderConfig
	w     *stream.ByteWriter
	stats Stats
}

// Encode compresses buf as described by sig and node.
//
// Faces citing a vertex twice are dropped, and so are point cloud vertices
// that fall into an occupied grid cell; the returned Node and VertexOrder
// describe what the payload decodes to.
//
// Returns:
//   - ErrMalformedSignature: a requested channel is missing or too short
//   - ErrQuantizationOverflow: an attribute does not fit its grid
//   - ErrUnsupportedTopology: a textured node references several textures
func (e *Encoder) Encode(sig Signature, node Node, buf *Buffers) (*EncodeResult, error) {
	if err := buf.Validate(sig, node); err != nil {
		return nil, err
	}

	ne := &nodeEncoder{cfg: e.cfg, w: stream.NewByteWriter(e.cfg.engine)}
	defer ne.w.Release()

	var (
		res    *EncodeResult
		coords []uint32
		faces  []uint32
		err    error
	)
	if sig.HasIndex() {
		res, coords, faces, err = ne.encodeIndexed(sig, node, buf)
	} else {
		res, coords, err = ne.encodePointCloud(node, buf)
	}
	if err != nil {
		return nil, err
	}

	if sig.HasNormals() {
		if err := ne.encodeNormals(sig, buf, res.VertexOrder, coords, faces); err != nil {
			return nil, err
		}
	}
	if sig.HasColors() {
		if err := ne.encodeColors(buf, res.VertexOrder); err != nil {
			return nil, err
		}
	}

	res.Payload = ne.w.Detach()
	ne.stats.PayloadBytes = len(res.Payload)
	ne.stats.Vertices = int(res.Node.NVert)
	ne.stats.Faces = int(res.Node.NFace)
	res.Stats = ne.stats

	e.cfg.logger.Debug("encoded node",
		zap.Stringer("signature", sig),
		statsField(&res.Stats),
	)

	return res, nil
}

func (ne *nodeEncoder) channel(name string, data []byte) error {
	st, err := tunstall.WriteChannel(ne.w, data, tunstall.WithLookupSize(ne.cfg.lookupSize))
	if err != nil {
		return fmt.Errorf("%s channel: %w", name, err)
	}
	ne.stats.Channels = append(ne.stats.Channels, ChannelStat{Name: name, ChannelStats: st})

	return nil
}

func (ne *nodeEncoder) embed(bw *stream.BitWriter) {
	before := ne.w.Len()
	ne.w.EmbedBits(bw)
	ne.stats.BitstreamBytes += ne.w.Len() - before
	bw.Release()
}

// encodeIndexed writes the position grid, the optional texture grid and the
// connectivity record. It returns the rebased positions and the faces in
// decoded order for the attribute records that follow.
func (ne *nodeEncoder) encodeIndexed(sig Signature, node Node, buf *Buffers) (*EncodeResult, []uint32, []uint32, error) {
	n := int(node.NVert)
	if err := checkTextures(sig, node.patchList()); err != nil {
		return nil, nil, nil, err
	}

	grid, coords, err := quant.QuantizeComponents(buf.Positions[:n*PositionComponents], PositionComponents, ne.cfg.coordShift, quant.MaxCoordBits)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("positions: %w", err)
	}
	section.WriteGrid(ne.w, grid)

	var uvs []uint32
	if sig.HasTexCoords() {
		var uvGrid quant.Grid
		uvGrid, uvs, err = quant.QuantizeComponents(buf.TexCoords[:n*TexCoordComponents], TexCoordComponents, ne.cfg.uvShift, quant.MaxUVBits)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("texture coordinates: %w", err)
		}
		section.WriteGrid(ne.w, uvGrid)
	}

	faces, patches, dropped := removeDegenerate(buf.Indices[:int(node.NFace)*FaceCorners], node.patchList())
	ne.stats.DegenerateFaces = dropped

	bw := stream.NewBitWriter()
	ce := newConnectivityEncoder(faces, n, coords, uvs, bw)
	start := 0
	for _, p := range patches {
		if err := ce.encodePatch(start, int(p.TriangleEnd)); err != nil {
			bw.Release()
			return nil, nil, nil, err
		}
		start = int(p.TriangleEnd)
	}

	ne.stats.Symbols = ce.symbols
	ne.stats.Components = ce.seeds
	ne.stats.UnreferencedVertices = n - len(ce.order)

	if err := ne.channel(ChannelCLERS, ce.clers); err != nil {
		bw.Release()
		return nil, nil, nil, err
	}
	if err := ne.channel(ChannelPosition, ce.posMags); err != nil {
		bw.Release()
		return nil, nil, nil, err
	}
	if uvs != nil {
		if err := ne.channel(ChannelTexCoord, ce.uvMags); err != nil {
			bw.Release()
			return nil, nil, nil, err
		}
	}
	ne.embed(bw)

	if dropped > 0 || ne.stats.UnreferencedVertices > 0 {
		ne.cfg.logger.Debug("cleaned indexed node",
			zap.Int("degenerate_faces", dropped),
			zap.Int("unreferenced_vertices", ne.stats.UnreferencedVertices),
		)
	}

	res := &EncodeResult{
		Node: Node{
			NVert: uint32(len(ce.order)), //nolint:gosec // at most MaxVertices
			NFace: uint32(len(faces)),    //nolint:gosec // at most NFace
		},
		VertexOrder: ce.order,
	}
	if len(node.Patches) > 0 {
		res.Node.Patches = patches
	}

	return res, reorder(coords, PositionComponents, ce.order), ce.decoded, nil
}

// reorder returns the components of values in the vertex order given by order.
func reorder(values []uint32, components int, order []uint32) []uint32 {
	out := make([]uint32, len(order)*components)
	for i, v := range order {
		copy(out[i*components:(i+1)*components], values[int(v)*components:(int(v)+1)*components])
	}

	return out
}

// encodePointCloud writes the position grid and the Z-order key record.
func (ne *nodeEncoder) encodePointCloud(node Node, buf *Buffers) (*EncodeResult, []uint32, error) {
	n := int(node.NVert)
	grid, coords, err := quant.QuantizeComponents(buf.Positions[:n*PositionComponents], PositionComponents, ne.cfg.coordShift, quant.MaxZOrderBits)
	if err != nil {
		return nil, nil, fmt.Errorf("point cloud positions: %w", err)
	}
	section.WriteGrid(ne.w, grid)

	keys := make([]quant.ZOrderKey, n)
	for i := range keys {
		keys[i] = quant.ZOrderKey{
			Key:   quant.Interleave3(coords[i*3], coords[i*3+1], coords[i*3+2]),
			Index: uint32(i), //nolint:gosec // at most MaxVertices
		}
	}
	quant.SortZOrder(keys)
	keys = quant.DedupZOrder(keys)
	ne.stats.DuplicateVertices = n - len(keys)

	bw := stream.NewBitWriter()
	mags := make([]byte, 0, len(keys))
	order := make([]uint32, len(keys))
	for i, k := range keys {
		delta := k.Key
		if i > 0 {
			delta = keys[i-1].Key - k.Key
		}
		encodeDiff(&mags, bw, int64(delta)) //nolint:gosec // keys use 63 bits
		order[i] = k.Index
	}

	if err := ne.channel(ChannelZOrder, mags); err != nil {
		bw.Release()
		return nil, nil, err
	}
	ne.embed(bw)

	if ne.stats.DuplicateVertices > 0 {
		ne.cfg.logger.Debug("collapsed point cloud duplicates", zap.Int("duplicates", ne.stats.DuplicateVertices))
	}

	res := &EncodeResult{
		Node:        Node{NVert: uint32(len(keys))}, //nolint:gosec // at most MaxVertices
		VertexOrder: order,
	}

	return res, reorder(coords, PositionComponents, order), nil
}

// encodeNormals writes the normal record. Indexed nodes send residuals for
// boundary vertices only; point clouds difference every vertex against the
// previous one.
func (ne *nodeEncoder) encodeNormals(sig Signature, buf *Buffers, order []uint32, coords, faces []uint32) error {
	r := normalRange(ne.cfg.normalBits)
	ne.w.PutUint8(ne.cfg.normalBits)

	bw := stream.NewBitWriter()
	var nc normalChannels

	quantized := func(v uint32) [3]int64 {
		n := buf.Normal(int(v))
		return [3]int64{quantizeNormal(n[0], r), quantizeNormal(n[1], r), quantizeNormal(n[2], r)}
	}

	if sig.HasIndex() {
		est := estimateNormals(coords, faces, len(order), r)
		boundary := boundaryVertices(faces, len(order))
		for i, v := range order {
			if boundary[i] {
				nc.encodeNormal(bw, quantized(v), est[i])
			}
		}
	} else {
		var prev [3]int64
		for _, v := range order {
			q := quantized(v)
			nc.encodeNormal(bw, q, prev)
			prev = q
		}
	}

	if err := ne.channel(ChannelNormal, nc.mags); err != nil {
		bw.Release()
		return err
	}
	if err := ne.channel(ChannelNormalSign, nc.signs); err != nil {
		bw.Release()
		return err
	}
	ne.embed(bw)

	return nil
}

// encodeColors writes the color record in decoded vertex order.
func (ne *nodeEncoder) encodeColors(buf *Buffers, order []uint32) error {
	for _, b := range ne.cfg.colorBits {
		ne.w.PutUint8(b)
	}

	bw := stream.NewBitWriter()
	ce := newColorEncoder(ne.cfg.colorBits, len(order))
	for _, v := range order {
		ce.encode(bw, buf.Color(int(v)))
	}

	for k, mags := range ce.mags {
		if err := ne.channel(ChannelColor[k], mags); err != nil {
			bw.Release()
			return err
		}
	}
	ne.embed(bw)

	return nil
}

package codec

import (
	"github.com/arloliu/meco/format"
	"github.com/arloliu/meco/tunstall"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ChannelStat records the size of one entropy-coded channel.
type ChannelStat struct {
	Name string
	tunstall.ChannelStats
}

// Stats summarizes one encode call.
type Stats struct {
	Vertices             int // vertices in the payload
	Faces                int // faces in the payload
	DegenerateFaces      int // faces dropped for citing a vertex twice
	DuplicateVertices    int // point cloud vertices collapsed onto an occupied grid cell
	UnreferencedVertices int // indexed vertices no face uses
	Components           int // seeded traversal components
	Symbols              [format.SymbolDelay + 1]int
	Channels             []ChannelStat
	BitstreamBytes       int
	PayloadBytes         int
}

// Channel returns the statistics of the named channel.
func (s *Stats) Channel(name string) (ChannelStat, bool) {
	for _, c := range s.Channels {
		if c.Name == name {
			return c, true
		}
	}

	return ChannelStat{}, false
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s *Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("vertices", s.Vertices)
	enc.AddInt("faces", s.Faces)
	enc.AddInt("payload_bytes", s.PayloadBytes)
	enc.AddInt("bitstream_bytes", s.BitstreamBytes)
	if s.Components > 0 {
		enc.AddInt("components", s.Components)
	}
	for _, c := range s.Channels {
		enc.AddInt(c.Name+"_bytes", c.Compressed)
	}

	return nil
}

var _ zapcore.ObjectMarshaler = (*Stats)(nil)

func statsField(s *Stats) zap.Field {
	return zap.Object("stats", s)
}

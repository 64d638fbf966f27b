// Package config loads encoder profiles from YAML and turns them into codec
// options and envelope settings.
package config

import (
	"fmt"
	"strings"

	"github.com/arloliu/meco/blob"
	"github.com/arloliu/meco/codec"
	"github.com/arloliu/meco/endian"
	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/format"
	"github.com/arloliu/meco/tunstall"
	"go.uber.org/zap"
)

// Profile holds every tunable of an encode-and-seal pipeline.
type Profile struct {
	Quantization QuantizationConfig `yaml:"quantization" toml:"quantization"`
	Normals      NormalConfig       `yaml:"normals" toml:"normals"`
	Colors       ColorConfig        `yaml:"colors" toml:"colors"`
	Entropy      EntropyConfig      `yaml:"entropy" toml:"entropy"`
	Envelope     EnvelopeConfig     `yaml:"envelope" toml:"envelope"`
	Logging      LoggingConfig      `yaml:"logging" toml:"logging"`
}

// QuantizationConfig holds the power-of-two grid steps.
type QuantizationConfig struct {
	CoordShift int `yaml:"coord_shift" toml:"coord_shift"` // positions on a 2^coord_shift grid
	UVShift    int `yaml:"uv_shift" toml:"uv_shift"`       // texture coordinates on a 2^uv_shift grid
}

// NormalConfig holds normal quantization settings.
type NormalConfig struct {
	Bits int `yaml:"bits" toml:"bits"`
}

// ColorConfig holds the bits kept per transformed color channel.
type ColorConfig struct {
	Y  int `yaml:"y" toml:"y"`
	Co int `yaml:"co" toml:"co"`
	Cg int `yaml:"cg" toml:"cg"`
	A  int `yaml:"a" toml:"a"`
}

// EntropyConfig holds entropy coder settings.
type EntropyConfig struct {
	LookupSize int `yaml:"lookup_size" toml:"lookup_size"`
}

// EnvelopeConfig holds how encoded nodes are sealed.
type EnvelopeConfig struct {
	Compression string `yaml:"compression" toml:"compression"` // none, zstd, s2 or lz4
	ByteOrder   string `yaml:"byte_order" toml:"byte_order"`   // native, little or big
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Profile matching the codec defaults.
func Default() *Profile {
	return &Profile{
		Quantization: QuantizationConfig{
			CoordShift: codec.DefaultCoordShift,
			UVShift:    codec.DefaultUVShift,
		},
		Normals: NormalConfig{Bits: codec.DefaultNormalBits},
		Colors: ColorConfig{
			Y:  codec.DefaultColorBits,
			Co: codec.DefaultColorBits,
			Cg: codec.DefaultColorBits,
			A:  codec.DefaultColorBits,
		},
		Entropy: EntropyConfig{LookupSize: tunstall.DefaultLookupSize},
		Envelope: EnvelopeConfig{
			Compression: "none",
			ByteOrder:   "native",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

var compressionNames = map[string]format.CompressionType{
	"none": format.CompressionNone,
	"zstd": format.CompressionZstd,
	"s2":   format.CompressionS2,
	"lz4":  format.CompressionLZ4,
}

// Compression returns the envelope compression type.
func (p *Profile) Compression() (format.CompressionType, error) {
	ct, ok := compressionNames[strings.ToLower(p.Envelope.Compression)]
	if !ok {
		return 0, fmt.Errorf("%w: envelope compression %q", errs.ErrInvalidOption, p.Envelope.Compression)
	}

	return ct, nil
}

// Engine returns the byte order encoded payloads are written in.
func (p *Profile) Engine() (endian.EndianEngine, error) {
	switch strings.ToLower(p.Envelope.ByteOrder) {
	case "", "native":
		return endian.GetNativeEngine(), nil
	case "little":
		return endian.GetLittleEndianEngine(), nil
	case "big":
		return endian.GetBigEndianEngine(), nil
	default:
		return nil, fmt.Errorf("%w: byte order %q", errs.ErrInvalidOption, p.Envelope.ByteOrder)
	}
}

// EncoderOptions returns the codec options described by the profile. A nil
// logger leaves the encoder silent.
func (p *Profile) EncoderOptions(logger *zap.Logger) ([]codec.EncoderOption, error) {
	engine, err := p.Engine()
	if err != nil {
		return nil, err
	}

	return []codec.EncoderOption{
		codec.WithCoordQuantization(p.Quantization.CoordShift),
		codec.WithUVQuantization(p.Quantization.UVShift),
		codec.WithNormalBits(p.Normals.Bits),
		codec.WithColorBits(p.Colors.Y, p.Colors.Co, p.Colors.Cg, p.Colors.A),
		codec.WithLookupSize(p.Entropy.LookupSize),
		codec.WithEndian(engine),
		codec.WithLogger(logger),
	}, nil
}

// SealOptions returns the envelope options described by the profile.
func (p *Profile) SealOptions() ([]blob.SealOption, error) {
	ct, err := p.Compression()
	if err != nil {
		return nil, err
	}

	return []blob.SealOption{blob.WithCompression(ct)}, nil
}

// Validate checks every setting by building the options it describes.
func (p *Profile) Validate() error {
	opts, err := p.EncoderOptions(nil)
	if err != nil {
		return err
	}
	if _, err := codec.NewEncoder(opts...); err != nil {
		return err
	}
	if _, err := p.SealOptions(); err != nil {
		return err
	}

	return nil
}

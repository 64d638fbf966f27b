package codec

import (
	"fmt"

	"github.com/arloliu/meco/endian"
	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/internal/options"
	"github.com/arloliu/meco/quant"
	"github.com/arloliu/meco/tunstall"
	"go.uber.org/zap"
)

// Encoder defaults.
const (
	DefaultCoordShift = -10 // positions on a 2^-10 grid
	DefaultUVShift    = -12 // texture coordinates on a 2^-12 grid
	DefaultNormalBits = 10
	DefaultColorBits  = 8

	MinNormalBits = 2
	MaxNormalBits = 16
	MinColorBits  = 1
	MaxColorBits  = 8
)

// EncoderConfig holds the settings of an Encoder.
type EncoderConfig struct {
	coordShift int8
	uvShift    int8
	normalBits uint8
	colorBits  [ColorComponents]uint8
	lookupSize int
	engine     endian.EndianEngine
	logger     *zap.Logger
}

// EncoderOption configures an Encoder.
type EncoderOption = options.Option[*EncoderConfig]

func newEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		coordShift: DefaultCoordShift,
		uvShift:    DefaultUVShift,
		normalBits: DefaultNormalBits,
		colorBits:  [ColorComponents]uint8{DefaultColorBits, DefaultColorBits, DefaultColorBits, DefaultColorBits},
		lookupSize: tunstall.DefaultLookupSize,
		engine:     endian.GetNativeEngine(),
		logger:     zap.NewNop(),
	}
}

func checkShift(shift int) error {
	if shift < quant.MinShift || shift > quant.MaxShift {
		return fmt.Errorf("%w: shift %d, expected %d to %d", errs.ErrInvalidOption, shift, quant.MinShift, quant.MaxShift)
	}

	return nil
}

// WithCoordQuantization sets the position grid step to 2^shift.
func WithCoordQuantization(shift int) EncoderOption {
	return options.Named("coord quantization", func(c *EncoderConfig) error {
		if err := checkShift(shift); err != nil {
			return err
		}
		c.coordShift = int8(shift) //nolint:gosec // range checked

		return nil
	})
}

// WithUVQuantization sets the texture coordinate grid step to 2^shift.
func WithUVQuantization(shift int) EncoderOption {
	return options.Named("uv quantization", func(c *EncoderConfig) error {
		if err := checkShift(shift); err != nil {
			return err
		}
		c.uvShift = int8(shift) //nolint:gosec // range checked

		return nil
	})
}

// WithNormalBits sets the signed bit width of each quantized normal component.
func WithNormalBits(bits int) EncoderOption {
	return options.Named("normal bits", func(c *EncoderConfig) error {
		if bits < MinNormalBits || bits > MaxNormalBits {
			return fmt.Errorf("%w: %d, expected %d-%d", errs.ErrInvalidOption, bits, MinNormalBits, MaxNormalBits)
		}
		c.normalBits = uint8(bits) //nolint:gosec // range checked

		return nil
	})
}

// WithColorBits sets how many high bits of each transformed color channel
// (Y, Co, Cg, A) are kept.
func WithColorBits(y, co, cg, a int) EncoderOption {
	return options.Named("color bits", func(c *EncoderConfig) error {
		for i, bits := range [ColorComponents]int{y, co, cg, a} {
			if bits < MinColorBits || bits > MaxColorBits {
				return fmt.Errorf("%w: channel %d has %d bits, expected %d-%d", errs.ErrInvalidOption, i, bits, MinColorBits, MaxColorBits)
			}
			c.colorBits[i] = uint8(bits) //nolint:gosec // range checked
		}

		return nil
	})
}

// WithLookupSize sets the number of symbols resolved per entropy encode table step.
func WithLookupSize(size int) EncoderOption {
	return options.Named("lookup size", func(c *EncoderConfig) error {
		if size < 1 || size > tunstall.MaxLookupSize {
			return fmt.Errorf("%w: %d, expected 1-%d", errs.ErrInvalidOption, size, tunstall.MaxLookupSize)
		}
		c.lookupSize = size

		return nil
	})
}

// WithEndian sets the byte order of the payload. The default is the host order.
func WithEndian(engine endian.EndianEngine) EncoderOption {
	return options.Named("endian", func(c *EncoderConfig) error {
		if engine == nil {
			return fmt.Errorf("%w: nil endian engine", errs.ErrInvalidOption)
		}
		c.engine = engine

		return nil
	})
}

// WithLogger sets the logger used for per-node debug output.
func WithLogger(logger *zap.Logger) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// DecoderConfig holds the settings of a Decoder.
type DecoderConfig struct {
	engine endian.EndianEngine
	logger *zap.Logger
}

// DecoderOption configures a Decoder.
type DecoderOption = options.Option[*DecoderConfig]

func newDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		engine: endian.GetNativeEngine(),
		logger: zap.NewNop(),
	}
}

// WithDecoderEndian sets the byte order the payload was written with.
func WithDecoderEndian(engine endian.EndianEngine) DecoderOption {
	return options.Named("endian", func(c *DecoderConfig) error {
		if engine == nil {
			return fmt.Errorf("%w: nil endian engine", errs.ErrInvalidOption)
		}
		c.engine = engine

		return nil
	})
}

// WithDecoderLogger sets the logger used for per-node debug output.
func WithDecoderLogger(logger *zap.Logger) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// Package errs defines the sentinel errors returned by meco.
//
// Errors are wrapped with context using fmt.Errorf("%w: ...") so callers
// should compare with errors.Is rather than equality.
package errs

import "errors"

// Codec errors.
var (
	// ErrMalformedSignature is returned when the signature requests a channel
	// that the supplied buffers do not carry, or the buffers are too short.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrQuantizationOverflow is returned when a quantized attribute needs more
	// bits than the format can store.
	ErrQuantizationOverflow = errors.New("quantization overflow")

	// ErrCorruptStream is returned when a bit or byte stream is read past its
	// declared length or references data that cannot exist.
	ErrCorruptStream = errors.New("corrupt stream")

	// ErrUnsupportedTopology is returned when a node mixes texture assignments
	// the format cannot express in a single compression unit.
	ErrUnsupportedTopology = errors.New("unsupported topology")

	// ErrAlphabetTooLarge is returned when an entropy channel has more distinct
	// symbols than a dictionary can describe.
	ErrAlphabetTooLarge = errors.New("alphabet too large")

	// ErrUnknownSymbol is returned when data handed to an entropy coder holds a
	// symbol its dictionary was not built for.
	ErrUnknownSymbol = errors.New("symbol not in dictionary")

	// ErrInvalidOption is returned by option constructors given out of range values.
	ErrInvalidOption = errors.New("invalid option")
)

// Envelope errors.
var (
	ErrInvalidEnvelope   = errors.New("invalid envelope")
	ErrInvalidMagic      = errors.New("invalid magic number")
	ErrChecksumMismatch  = errors.New("checksum mismatch")
	ErrInvalidHeaderSize = errors.New("invalid header size")
)

// Package endian provides byte order utilities for meco payloads.
//
// Compressed node payloads are written in the byte order of the machine that
// produced them. The encoder and decoder agree on an EndianEngine, which combines
// encoding/binary's ByteOrder and AppendByteOrder so that scalars can be appended
// to a growing buffer without temporary slices:
//
//	engine := endian.GetNativeEngine()
//	buf = engine.AppendUint32(buf, wordCount)
//
// The sealed envelope (package blob) records which engine was used, so payloads
// can be moved between machines of different byte order.
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary.
//
// It is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

var nativeEngine = detectNative()

func detectNative() EndianEngine {
	// 0x0100 is 256: on a little-endian host the first byte in memory is 0x00.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// GetNativeEngine returns the engine matching the host byte order.
func GetNativeEngine() EndianEngine {
	return nativeEngine
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return nativeEngine == EndianEngine(binary.LittleEndian)
}

// IsLittleEndian reports whether engine writes little-endian data.
func IsLittleEndian(engine EndianEngine) bool {
	return engine == EndianEngine(binary.LittleEndian)
}

// CompareNativeEndian reports whether engine matches the host byte order.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == nativeEngine
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

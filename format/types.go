// Package format holds the small enumerations shared by the meco packages.
package format

import "strings"

type (
	CompressionType uint8
	Symbol          uint8
	AttributeFlag   uint8
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// Connectivity symbols emitted once per processed front edge.
const (
	SymbolVertex   Symbol = 0 // opposite face introduces a vertex
	SymbolLeft     Symbol = 1 // opposite face closes against the previous front edge
	SymbolRight    Symbol = 2 // opposite face closes against the next front edge
	SymbolEnd      Symbol = 3 // opposite face closes both sides
	SymbolBoundary Symbol = 4 // no opposite face
	SymbolDelay    Symbol = 5 // edge deferred to the delay stack

	symbolCount = 6
)

// Attribute channels carried by a node. Positions are always present.
const (
	AttrIndex    AttributeFlag = 1 << 0
	AttrNormal   AttributeFlag = 1 << 1
	AttrColor    AttributeFlag = 1 << 2
	AttrTexCoord AttributeFlag = 1 << 3

	attrMask = AttrIndex | AttrNormal | AttrColor | AttrTexCoord
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is a known connectivity symbol.
func (s Symbol) Valid() bool {
	return s < symbolCount
}

func (s Symbol) String() string {
	switch s {
	case SymbolVertex:
		return "VERTEX"
	case SymbolLeft:
		return "LEFT"
	case SymbolRight:
		return "RIGHT"
	case SymbolEnd:
		return "END"
	case SymbolBoundary:
		return "BOUNDARY"
	case SymbolDelay:
		return "DELAY"
	default:
		return "Unknown"
	}
}

// Has reports whether all bits of attr are set in f.
func (f AttributeFlag) Has(attr AttributeFlag) bool {
	return f&attr == attr
}

// Valid reports whether f only uses known attribute bits.
func (f AttributeFlag) Valid() bool {
	return f&^attrMask == 0
}

func (f AttributeFlag) String() string {
	parts := []string{"position"}
	if f.Has(AttrIndex) {
		parts = append(parts, "index")
	}
	if f.Has(AttrNormal) {
		parts = append(parts, "normal")
	}
	if f.Has(AttrColor) {
		parts = append(parts, "color")
	}
	if f.Has(AttrTexCoord) {
		parts = append(parts, "texcoord")
	}

	return strings.Join(parts, "|")
}

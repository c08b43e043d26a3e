// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import "fmt"

// FormatID names a pixel format independently of any graphics API.
type FormatID uint16

// Format IDs.
const (
	FormatNone FormatID = iota
	FormatR8Unorm
	FormatRG8Unorm
	FormatRGB8Unorm
	FormatRGBA8Unorm
	FormatRGBA8UnormSRGB
	FormatBGRA8Unorm
	FormatR16Float
	FormatRGBA16Float
	FormatR32Float
	FormatRG32Float
	FormatRGBA32Float
	FormatD16Unorm
	FormatD24UnormS8Uint
	FormatD32Float
	FormatETC2RGB8
	FormatETC2RGBA8
	FormatBC1RGBA
	FormatBC3RGBA
)

var formatNames = [...]string{
	FormatNone:           "None",
	FormatR8Unorm:        "R8Unorm",
	FormatRG8Unorm:       "RG8Unorm",
	FormatRGB8Unorm:      "RGB8Unorm",
	FormatRGBA8Unorm:     "RGBA8Unorm",
	FormatRGBA8UnormSRGB: "RGBA8UnormSRGB",
	FormatBGRA8Unorm:     "BGRA8Unorm",
	FormatR16Float:       "R16Float",
	FormatRGBA16Float:    "RGBA16Float",
	FormatR32Float:       "R32Float",
	FormatRG32Float:      "RG32Float",
	FormatRGBA32Float:    "RGBA32Float",
	FormatD16Unorm:       "D16Unorm",
	FormatD24UnormS8Uint: "D24UnormS8Uint",
	FormatD32Float:       "D32Float",
	FormatETC2RGB8:       "ETC2RGB8",
	FormatETC2RGBA8:      "ETC2RGBA8",
	FormatBC1RGBA:        "BC1RGBA",
	FormatBC3RGBA:        "BC3RGBA",
}

// String returns the format name.
func (id FormatID) String() string {
	if int(id) < len(formatNames) {
		return formatNames[id]
	}
	return fmt.Sprintf("FormatID(%d)", uint16(id))
}

// Format pairs a GL internal format with the format the backend stores it
// in. Intended and Actual differ when the backend emulates a format, for
// example RGB8 stored as RGBA8.
type Format struct {
	InternalFormat uint32
	Intended       FormatID
	Actual         FormatID

	// PixelBytes is the size of one texel of Actual. Zero for block
	// compressed formats.
	PixelBytes uint32

	// Block dimensions and size for compressed formats.
	BlockWidth  uint32
	BlockHeight uint32
	BlockBytes  uint32

	Depth   bool
	Stencil bool
}

// Valid reports whether the backend can store the format.
func (f Format) Valid() bool { return f.Actual != FormatNone }

// Compressed reports whether the format is block compressed.
func (f Format) Compressed() bool { return f.BlockBytes != 0 }

// Emulated reports whether the stored format differs from the requested one.
func (f Format) Emulated() bool { return f.Intended != f.Actual }

// RowPitch returns the byte size of one tightly packed row of width texels.
func (f Format) RowPitch(width int) uint32 {
	if f.Compressed() {
		return blocks(width, f.BlockWidth) * f.BlockBytes
	}
	return uint32(width) * f.PixelBytes
}

// Rows returns the number of rows of data covering height texels.
func (f Format) Rows(height int) uint32 {
	if f.Compressed() {
		return blocks(height, f.BlockHeight)
	}
	return uint32(height)
}

// LevelSize returns the tightly packed byte size of a w×h×d block.
func (f Format) LevelSize(e Extents) uint64 {
	return uint64(f.RowPitch(e.Width)) * uint64(f.Rows(e.Height)) * uint64(max(e.Depth, 1))
}

func blocks(n int, block uint32) uint32 {
	if n <= 0 {
		return 0
	}
	return (uint32(n) + block - 1) / block
}

// GL internal formats known to the format table.
const (
	GLR8                = 0x8229
	GLRG8               = 0x822B
	GLRGB8              = 0x8051
	GLRGBA8             = 0x8058
	GLSRGB8Alpha8       = 0x8C43
	GLBGRA8             = 0x93A1
	GLR16F              = 0x822D
	GLRGBA16F           = 0x881A
	GLR32F              = 0x822E
	GLRG32F             = 0x8230
	GLRGBA32F           = 0x8814
	GLDepthComponent16  = 0x81A5
	GLDepth24Stencil8   = 0x88F0
	GLDepthComponent32F = 0x8CAC

	GLCompressedRGB8ETC2     = 0x9274
	GLCompressedRGBA8ETC2EAC = 0x9278
	GLCompressedRGBAS3TCDXT1 = 0x83F1
	GLCompressedRGBAS3TCDXT5 = 0x83F3
)

var formatTable = map[uint32]Format{
	GLR8:                {Intended: FormatR8Unorm, Actual: FormatR8Unorm, PixelBytes: 1},
	GLRG8:               {Intended: FormatRG8Unorm, Actual: FormatRG8Unorm, PixelBytes: 2},
	GLRGB8:              {Intended: FormatRGB8Unorm, Actual: FormatRGBA8Unorm, PixelBytes: 4},
	GLRGBA8:             {Intended: FormatRGBA8Unorm, Actual: FormatRGBA8Unorm, PixelBytes: 4},
	GLSRGB8Alpha8:       {Intended: FormatRGBA8UnormSRGB, Actual: FormatRGBA8UnormSRGB, PixelBytes: 4},
	GLBGRA8:             {Intended: FormatBGRA8Unorm, Actual: FormatBGRA8Unorm, PixelBytes: 4},
	GLR16F:              {Intended: FormatR16Float, Actual: FormatR16Float, PixelBytes: 2},
	GLRGBA16F:           {Intended: FormatRGBA16Float, Actual: FormatRGBA16Float, PixelBytes: 8},
	GLR32F:              {Intended: FormatR32Float, Actual: FormatR32Float, PixelBytes: 4},
	GLRG32F:             {Intended: FormatRG32Float, Actual: FormatRG32Float, PixelBytes: 8},
	GLRGBA32F:           {Intended: FormatRGBA32Float, Actual: FormatRGBA32Float, PixelBytes: 16},
	GLDepthComponent16:  {Intended: FormatD16Unorm, Actual: FormatD16Unorm, PixelBytes: 2, Depth: true},
	GLDepth24Stencil8:   {Intended: FormatD24UnormS8Uint, Actual: FormatD24UnormS8Uint, PixelBytes: 4, Depth: true, Stencil: true},
	GLDepthComponent32F: {Intended: FormatD32Float, Actual: FormatD32Float, PixelBytes: 4, Depth: true},

	GLCompressedRGB8ETC2:     {Intended: FormatETC2RGB8, Actual: FormatETC2RGB8, BlockWidth: 4, BlockHeight: 4, BlockBytes: 8},
	GLCompressedRGBA8ETC2EAC: {Intended: FormatETC2RGBA8, Actual: FormatETC2RGBA8, BlockWidth: 4, BlockHeight: 4, BlockBytes: 16},
	GLCompressedRGBAS3TCDXT1: {Intended: FormatBC1RGBA, Actual: FormatBC1RGBA, BlockWidth: 4, BlockHeight: 4, BlockBytes: 8},
	GLCompressedRGBAS3TCDXT5: {Intended: FormatBC3RGBA, Actual: FormatBC3RGBA, BlockWidth: 4, BlockHeight: 4, BlockBytes: 16},
}

// LookupFormat returns the format for a sized GL internal format. Unknown
// formats come back with Actual set to FormatNone.
func LookupFormat(internalFormat uint32) Format {
	f, ok := formatTable[internalFormat]
	if !ok {
		return Format{InternalFormat: internalFormat}
	}
	f.InternalFormat = internalFormat
	return f
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"fmt"

	"github.com/gogpu/glres/backend"
)

// RowPitchAlignment is the row alignment of staged pixel data.
const RowPitchAlignment = 256

// Unpack is the pixel unpack state of a level-defining call. The zero value
// is the GL default with an alignment of 4.
type Unpack struct {
	Alignment   int
	RowLength   int
	ImageHeight int
	SkipPixels  int
	SkipRows    int
	SkipImages  int
}

// StagedUpdate is pixel data accepted by a write call and not yet committed
// to the realized image.
type StagedUpdate struct {
	// Level is the GL level the data belongs to.
	Level      int
	Layer      int
	LayerCount int
	Offset     backend.Offset
	Extents    backend.Extents

	// Data holds LayerCount × Extents.Depth slices of rows.
	Data       []byte
	RowPitch   uint32
	DepthPitch uint32
}

func (u *StagedUpdate) coversLayers(layer, layerCount int) bool {
	return u.Layer == layer && u.LayerCount == layerCount
}

func roundUp(v, align uint32) uint32 {
	return (v + align - 1) / align * align
}

// stageUpload repacks pixels laid out by unpack into rows aligned to
// RowPitchAlignment. Nil pixels stage zeros.
func stageUpload(f backend.Format, level, layer, layerCount int, area backend.Box,
	unpack Unpack, pixels []byte) (StagedUpdate, error) {
	ext := area.Extents
	rowBytes := f.RowPitch(ext.Width)
	rows := f.Rows(ext.Height)
	slices := uint32(ext.Depth * layerCount)

	outRow := roundUp(rowBytes, RowPitchAlignment)
	outDepth := outRow * rows
	u := StagedUpdate{
		Level:      level,
		Layer:      layer,
		LayerCount: layerCount,
		Offset:     area.Offset,
		Extents:    ext,
		Data:       make([]byte, outDepth*slices),
		RowPitch:   outRow,
		DepthPitch: outDepth,
	}
	if pixels == nil || rowBytes == 0 || rows == 0 || slices == 0 {
		return u, nil
	}

	inRow, inDepth, skip := inputLayout(f, ext, unpack)
	need := uint64(skip) + uint64(slices-1)*uint64(inDepth) + uint64(rows-1)*uint64(inRow) + uint64(rowBytes)
	if uint64(len(pixels)) < need {
		return StagedUpdate{}, fmt.Errorf("texture: %d bytes of pixel data for %v, need %d", len(pixels), ext, need)
	}

	for s := range slices {
		for r := range rows {
			src := skip + s*inDepth + r*inRow
			dst := s*outDepth + r*outRow
			copy(u.Data[dst:dst+rowBytes], pixels[src:src+rowBytes])
		}
	}
	return u, nil
}

// inputLayout returns the row pitch, image pitch and leading skip of pixel
// data described by unpack. Compressed data is tightly packed.
func inputLayout(f backend.Format, ext backend.Extents, unpack Unpack) (row, depth, skip uint32) {
	if f.Compressed() {
		row = f.RowPitch(ext.Width)
		return row, row * f.Rows(ext.Height), 0
	}

	width := ext.Width
	if unpack.RowLength > 0 {
		width = unpack.RowLength
	}
	height := ext.Height
	if unpack.ImageHeight > 0 {
		height = unpack.ImageHeight
	}
	align := uint32(4)
	if unpack.Alignment > 0 {
		align = uint32(unpack.Alignment)
	}

	row = roundUp(f.RowPitch(width), align)
	depth = row * uint32(height)
	skip = uint32(unpack.SkipImages)*depth + uint32(unpack.SkipRows)*row + uint32(unpack.SkipPixels)*f.PixelBytes
	return row, depth, skip
}

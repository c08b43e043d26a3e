// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import "fmt"

// Extents is the size of an image region in texels.
type Extents struct {
	Width, Height, Depth int
}

// Empty reports whether the region holds no texels.
func (e Extents) Empty() bool {
	return e.Width <= 0 || e.Height <= 0 || e.Depth <= 0
}

// MipLevel returns the extents of the level that is level steps below e.
// Depth is halved only when halveDepth is true, as for 3D images.
func (e Extents) MipLevel(level int, halveDepth bool) Extents {
	shrink := func(v int) int { return max(v>>uint(level), 1) }
	out := Extents{Width: shrink(e.Width), Height: shrink(e.Height), Depth: e.Depth}
	if halveDepth {
		out.Depth = shrink(e.Depth)
	}
	return out
}

// String formats the extents as WxHxD.
func (e Extents) String() string {
	return fmt.Sprintf("%dx%dx%d", e.Width, e.Height, e.Depth)
}

// Offset is the origin of an image region.
type Offset struct {
	X, Y, Z int
}

// Box is an image region.
type Box struct {
	Offset
	Extents
}

// Covers reports whether b covers the whole of e.
func (b Box) Covers(e Extents) bool {
	return b.X <= 0 && b.Y <= 0 && b.Z <= 0 &&
		b.X+b.Width >= e.Width && b.Y+b.Height >= e.Height && b.Z+b.Depth >= e.Depth
}

// MaxMipLevels returns the length of a full mip chain for e.
func MaxMipLevels(e Extents, includeDepth bool) int {
	m := max(e.Width, e.Height)
	if includeDepth {
		m = max(m, e.Depth)
	}
	n := 1
	for m > 1 {
		m >>= 1
		n++
	}
	return n
}

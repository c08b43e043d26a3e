// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"fmt"

	"github.com/gogpu/glres/backend"
	"github.com/gogpu/glres/internal/bitmask"
)

// MaxLevels is the number of mip levels a texture can track.
const MaxLevels = 16

// CubeFaceCount is the number of faces of a cube map.
const CubeFaceCount = 6

// LevelMask is a set of GL mip levels.
type LevelMask = bitmask.Mask[uint16]

// Type is the texture type fixed at creation.
type Type uint8

// Texture types.
const (
	Type2D Type = iota
	Type2DArray
	Type2DMultisample
	Type2DMultisampleArray
	Type3D
	TypeCubeMap
	TypeCubeMapArray
	TypeExternal
)

var typeNames = [...]string{
	Type2D:                 "2D",
	Type2DArray:            "2DArray",
	Type2DMultisample:      "2DMultisample",
	Type2DMultisampleArray: "2DMultisampleArray",
	Type3D:                 "3D",
	TypeCubeMap:            "CubeMap",
	TypeCubeMapArray:       "CubeMapArray",
	TypeExternal:           "External",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// arrayLike reports whether images of the type are indexed by array layer.
func (t Type) arrayLike() bool {
	return t == Type2DArray || t == Type2DMultisampleArray || t == TypeCubeMapArray
}

// faceCount returns the number of separately defined images per level.
func (t Type) faceCount() int {
	if t == TypeCubeMap {
		return CubeFaceCount
	}
	return 1
}

func (t Type) imageType() backend.ImageType {
	switch t {
	case Type2DArray:
		return backend.Image2DArray
	case Type2DMultisample:
		return backend.Image2DMultisample
	case Type3D:
		return backend.Image3D
	case TypeCubeMap:
		return backend.ImageCube
	default:
		return backend.Image2D
	}
}

// Target selects the image a level-defining call writes.
type Target uint8

// Targets.
const (
	Target2D Target = iota
	TargetCubeMapPositiveX
	TargetCubeMapNegativeX
	TargetCubeMapPositiveY
	TargetCubeMapNegativeY
	TargetCubeMapPositiveZ
	TargetCubeMapNegativeZ
	Target3D
	Target2DArray
	Target2DMultisample
	TargetExternal
)

// CubeFaceTarget returns the target of cube face i.
func CubeFaceTarget(i int) Target {
	return TargetCubeMapPositiveX + Target(i)
}

// IsCubeFace reports whether t names a cube map face.
func (t Target) IsCubeFace() bool {
	return t >= TargetCubeMapPositiveX && t <= TargetCubeMapNegativeZ
}

// Face returns the cube face index of t, or 0 for other targets.
func (t Target) Face() int {
	if t.IsCubeFace() {
		return int(t - TargetCubeMapPositiveX)
	}
	return 0
}

func (t Target) String() string {
	switch {
	case t == Target2D:
		return "2D"
	case t.IsCubeFace():
		return fmt.Sprintf("CubeMapFace%d", t.Face())
	case t == Target3D:
		return "3D"
	case t == Target2DArray:
		return "2DArray"
	case t == Target2DMultisample:
		return "2DMultisample"
	case t == TargetExternal:
		return "External"
	default:
		return fmt.Sprintf("Target(%d)", uint8(t))
	}
}

// EntireLevel as a layer count selects every layer of a level.
const EntireLevel = -1

// ImageIndex addresses a level and a layer range of a texture. For cube
// maps Layer is the face. The zero value is level 0, layer 0.
type ImageIndex struct {
	Level int
	Layer int

	// LayerCount is the number of layers starting at Layer. Zero means one
	// layer; EntireLevel means all of them.
	LayerCount int
}

// Command names the operation a sync prepares the texture for.
type Command uint8

// Commands.
const (
	CommandOther Command = iota
	CommandDraw
	CommandGenerateMipmap
)

func (c Command) String() string {
	switch c {
	case CommandDraw:
		return "draw"
	case CommandGenerateMipmap:
		return "generateMipmap"
	default:
		return "other"
	}
}

// Selector picks the render-target set of a texture: the single-sampled
// views, or the implicit multisampled ones of render-to-texture.
type Selector uint8

// Render target selectors.
const (
	SelectorDefault Selector = iota
	SelectorMultisampled

	selectorCount
)

func selectorFor(samples int) Selector {
	if samples > 1 {
		return SelectorMultisampled
	}
	return SelectorDefault
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"

	"github.com/gogpu/glres/backend"
	"github.com/gogpu/glres/buffer"
	"github.com/gogpu/glres/texture"
)

var usages = map[string]buffer.Usage{
	"":             buffer.StaticDraw,
	"stream_draw":  buffer.StreamDraw,
	"stream_read":  buffer.StreamRead,
	"stream_copy":  buffer.StreamCopy,
	"static_draw":  buffer.StaticDraw,
	"static_read":  buffer.StaticRead,
	"static_copy":  buffer.StaticCopy,
	"dynamic_draw": buffer.DynamicDraw,
	"dynamic_read": buffer.DynamicRead,
	"dynamic_copy": buffer.DynamicCopy,
}

var formats = map[string]uint32{
	"r8":               backend.GLR8,
	"rg8":              backend.GLRG8,
	"rgb8":             backend.GLRGB8,
	"rgba8":            backend.GLRGBA8,
	"srgb8_alpha8":     backend.GLSRGB8Alpha8,
	"bgra8":            backend.GLBGRA8,
	"r16f":             backend.GLR16F,
	"rgba16f":          backend.GLRGBA16F,
	"r32f":             backend.GLR32F,
	"rg32f":            backend.GLRG32F,
	"rgba32f":          backend.GLRGBA32F,
	"depth16":          backend.GLDepthComponent16,
	"depth24_stencil8": backend.GLDepth24Stencil8,
	"depth32f":         backend.GLDepthComponent32F,
	"etc2_rgb8":        backend.GLCompressedRGB8ETC2,
	"etc2_rgba8":       backend.GLCompressedRGBA8ETC2EAC,
	"dxt1":             backend.GLCompressedRGBAS3TCDXT1,
	"dxt5":             backend.GLCompressedRGBAS3TCDXT5,
}

var types = map[string]texture.Type{
	"":           texture.Type2D,
	"2d":         texture.Type2D,
	"2d_array":   texture.Type2DArray,
	"2d_ms":      texture.Type2DMultisample,
	"3d":         texture.Type3D,
	"cube":       texture.TypeCubeMap,
	"cube_array": texture.TypeCubeMapArray,
}

var targets = map[string]texture.Target{
	"":         texture.Target2D,
	"2d":       texture.Target2D,
	"cube_px":  texture.TargetCubeMapPositiveX,
	"cube_nx":  texture.TargetCubeMapNegativeX,
	"cube_py":  texture.TargetCubeMapPositiveY,
	"cube_ny":  texture.TargetCubeMapNegativeY,
	"cube_pz":  texture.TargetCubeMapPositiveZ,
	"cube_nz":  texture.TargetCubeMapNegativeZ,
	"3d":       texture.Target3D,
	"2d_array": texture.Target2DArray,
	"2d_ms":    texture.Target2DMultisample,
}

var indexTypes = map[string]buffer.IndexType{
	"":    buffer.IndexUnsignedShort,
	"u8":  buffer.IndexUnsignedByte,
	"u16": buffer.IndexUnsignedShort,
	"u32": buffer.IndexUnsignedInt,
}

func lookup[V any](kind string, m map[string]V, name string) (V, error) {
	v, ok := m[name]
	if !ok {
		return v, fmt.Errorf("%w: unknown %s %q", errTrace, kind, name)
	}
	return v, nil
}

func parseUsage(s string) (buffer.Usage, error)    { return lookup("usage", usages, s) }
func parseFormat(s string) (uint32, error)         { return lookup("format", formats, s) }
func parseType(s string) (texture.Type, error)     { return lookup("texture type", types, s) }
func parseTarget(s string) (texture.Target, error) { return lookup("target", targets, s) }

func parseIndexType(s string) (buffer.IndexType, error) {
	return lookup("index type", indexTypes, s)
}

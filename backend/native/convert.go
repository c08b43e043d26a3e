// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glres/backend"
)

// Copies between buffers and queue writes need 4-byte aligned offsets and
// sizes. Buffer to texture copies need 256-byte aligned rows.
const (
	copyAlignment      = 4
	copyPitchAlignment = 256
)

// convertBufferUsage converts backend.BufferUsage to gputypes.BufferUsage.
// Buffers are mapped through their CPU copy, so the map usages are never
// requested from the HAL.
func convertBufferUsage(usage backend.BufferUsage) gputypes.BufferUsage {
	result := gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst

	if usage&backend.BufferUsageVertex != 0 {
		result |= gputypes.BufferUsageVertex
	}
	if usage&backend.BufferUsageIndex != 0 {
		result |= gputypes.BufferUsageIndex
	}
	if usage&backend.BufferUsageUniform != 0 {
		result |= gputypes.BufferUsageUniform
	}
	if usage&backend.BufferUsageStorage != 0 {
		result |= gputypes.BufferUsageStorage
	}
	if usage&backend.BufferUsageIndirect != 0 {
		result |= gputypes.BufferUsageIndirect
	}
	return result
}

// convertImageUsage converts backend.ImageUsage to gputypes.TextureUsage.
// Images always accept copies in both directions for uploads and
// readback.
func convertImageUsage(usage backend.ImageUsage) gputypes.TextureUsage {
	result := gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst

	if usage&backend.ImageUsageSampled != 0 {
		result |= gputypes.TextureUsageTextureBinding
	}
	if usage&backend.ImageUsageRenderAttachment != 0 {
		result |= gputypes.TextureUsageRenderAttachment
	}
	if usage&backend.ImageUsageStorage != 0 {
		result |= gputypes.TextureUsageStorageBinding
	}
	return result
}

// convertFormat maps a stored format to the HAL. Formats without a mapping
// cannot be realized on this device.
func convertFormat(id backend.FormatID) (gputypes.TextureFormat, bool) {
	switch id {
	case backend.FormatR8Unorm:
		return gputypes.TextureFormatR8Unorm, true
	case backend.FormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm, true
	case backend.FormatRGBA8UnormSRGB:
		return gputypes.TextureFormatRGBA8UnormSrgb, true
	case backend.FormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm, true
	case backend.FormatR32Float:
		return gputypes.TextureFormatR32Float, true
	case backend.FormatRG32Float:
		return gputypes.TextureFormatRG32Float, true
	case backend.FormatRGBA32Float:
		return gputypes.TextureFormatRGBA32Float, true
	case backend.FormatD24UnormS8Uint:
		return gputypes.TextureFormatDepth24PlusStencil8, true
	default:
		return gputypes.TextureFormatUndefined, false
	}
}

func convertDimension(t backend.ImageType) gputypes.TextureDimension {
	if t == backend.Image3D {
		return gputypes.TextureDimension3D
	}
	return gputypes.TextureDimension2D
}

func convertViewDimension(t backend.ImageType) gputypes.TextureViewDimension {
	if t == backend.Image3D {
		return gputypes.TextureViewDimension3D
	}
	return gputypes.TextureViewDimension2D
}

// textureSize returns the HAL size of an image. Layers of 2D images map to
// array layers.
func textureSize(desc *backend.ImageDesc) hal.Extent3D {
	depth := desc.LayerCount
	if desc.Type == backend.Image3D {
		depth = desc.Extents.Depth
	}
	return hal.Extent3D{
		Width:              uint32(desc.Extents.Width),
		Height:             uint32(desc.Extents.Height),
		DepthOrArrayLayers: uint32(depth),
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/glres/backend"
)

var (
	_ backend.ContentReader   = (*Image)(nil)
	_ backend.MipmapGenerator = (*Image)(nil)
)

// Image is a backend.NativeImage backed by a hal.Texture.
type Image struct {
	dev       *Device
	raw       hal.Texture
	desc      backend.ImageDesc
	format    gputypes.TextureFormat
	destroyed bool
}

// Raw returns the HAL texture, or nil once destroyed.
func (img *Image) Raw() hal.Texture {
	if img.destroyed {
		return nil
	}
	return img.raw
}

// Desc implements backend.NativeImage.
func (img *Image) Desc() backend.ImageDesc { return img.desc }

func (img *Image) levelExtents(mipLevel int) backend.Extents {
	return img.desc.Extents.MipLevel(mipLevel, img.desc.Type == backend.Image3D)
}

func (img *Image) check(mipLevel, baseLayer, layerCount int) error {
	if img.destroyed {
		return ErrImageDestroyed
	}
	if mipLevel < 0 || mipLevel >= img.desc.LevelCount {
		return fmt.Errorf("%w: level %d of %d", ErrOutOfRange, mipLevel, img.desc.LevelCount)
	}
	if baseLayer < 0 || layerCount < 1 || baseLayer+layerCount > img.desc.LayerCount {
		return fmt.Errorf("%w: layers [%d, %d) of %d", ErrOutOfRange, baseLayer, baseLayer+layerCount, img.desc.LayerCount)
	}
	return nil
}

// copyTexture addresses one layer of a level. Layers of 2D images are
// array layers; 3D images have a single layer.
func (img *Image) copyTexture(mipLevel, layer int, offset backend.Offset) *hal.ImageCopyTexture {
	origin := hal.Origin3D{X: uint32(offset.X), Y: uint32(offset.Y), Z: uint32(offset.Z)}
	if img.desc.Type != backend.Image3D {
		origin.Z = uint32(layer)
	}
	return &hal.ImageCopyTexture{
		Texture:  img.raw,
		MipLevel: uint32(mipLevel),
		Origin:   origin,
		Aspect:   gputypes.TextureAspectAll,
	}
}

// Upload implements backend.NativeImage.
func (img *Image) Upload(u *backend.Upload) error {
	if err := img.check(u.MipLevel, u.BaseLayer, u.LayerCount); err != nil {
		return err
	}
	ext := img.levelExtents(u.MipLevel)
	if u.Offset.X+u.Extents.Width > ext.Width || u.Offset.Y+u.Extents.Height > ext.Height ||
		u.Offset.Z+u.Extents.Depth > ext.Depth {
		return fmt.Errorf("%w: upload %v at %v into level %d of %v",
			ErrOutOfRange, u.Extents, u.Offset, u.MipLevel, ext)
	}

	rows := img.desc.Format.Rows(u.Extents.Height)
	layerStride := uint64(u.DepthPitch) * uint64(u.Extents.Depth)
	if uint64(len(u.Data)) < layerStride*uint64(u.LayerCount) {
		return fmt.Errorf("%w: %d bytes of upload data, need %d",
			ErrOutOfRange, len(u.Data), layerStride*uint64(u.LayerCount))
	}

	for li := range uint64(u.LayerCount) {
		err := img.dev.queue.WriteTexture(
			img.copyTexture(u.MipLevel, u.BaseLayer+int(li), u.Offset),
			u.Data[li*layerStride:(li+1)*layerStride],
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  u.RowPitch,
				RowsPerImage: rows,
			},
			&hal.Extent3D{
				Width:              uint32(u.Extents.Width),
				Height:             uint32(u.Extents.Height),
				DepthOrArrayLayers: uint32(u.Extents.Depth),
			},
		)
		if err != nil {
			return fmt.Errorf("native: write image %q level %d layer %d: %w",
				img.desc.Label, u.MipLevel, u.BaseLayer+int(li), err)
		}
	}
	return nil
}

// ReadSubresource implements backend.ContentReader by copying the layer
// into a staging buffer.
func (img *Image) ReadSubresource(mipLevel, layer int) ([]byte, uint32, error) {
	if err := img.check(mipLevel, layer, 1); err != nil {
		return nil, 0, err
	}
	f := img.desc.Format
	if f.Depth || f.Stencil {
		return nil, 0, fmt.Errorf("native: read back %v: %w", f.Actual, ErrUnsupportedFormat)
	}

	ext := img.levelExtents(mipLevel)
	rowBytes := f.RowPitch(ext.Width)
	rows := f.Rows(ext.Height)
	pitch := uint32(alignTo(uint64(rowBytes), copyPitchAlignment))
	size := uint64(pitch) * uint64(rows) * uint64(ext.Depth)

	staging, err := img.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: img.desc.Label + " readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer img.dev.device.DestroyBuffer(staging)

	err = img.dev.submit("image-readback", func(encoder hal.CommandEncoder) {
		encoder.CopyTextureToBuffer(img.raw, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: rows},
			TextureBase:  *img.copyTexture(mipLevel, layer, backend.Offset{}),
			Size: hal.Extent3D{
				Width:              uint32(ext.Width),
				Height:             uint32(ext.Height),
				DepthOrArrayLayers: uint32(ext.Depth),
			},
		}})
	})
	if err != nil {
		return nil, 0, err
	}

	readback, err := img.dev.readBuffer(staging, size)
	if err != nil {
		return nil, 0, err
	}
	if pitch == rowBytes {
		return readback, rowBytes, nil
	}
	tight := make([]byte, uint64(rowBytes)*uint64(rows)*uint64(ext.Depth))
	for r := range uint64(rows) * uint64(ext.Depth) {
		copy(tight[r*uint64(rowBytes):][:rowBytes], readback[r*uint64(pitch):])
	}
	return tight, rowBytes, nil
}

// mipmappable reports whether levels of f can be filtered as 8-bit RGBA.
func mipmappable(f backend.Format) bool {
	switch f.Actual {
	case backend.FormatRGBA8Unorm, backend.FormatRGBA8UnormSRGB, backend.FormatBGRA8Unorm:
		return true
	}
	return false
}

// GenerateMipmaps implements backend.MipmapGenerator. Each level is
// filtered bilinearly from the one above it on the CPU.
func (img *Image) GenerateMipmaps(baseLevel, levelCount int) error {
	if img.desc.Type == backend.Image3D || !mipmappable(img.desc.Format) {
		return fmt.Errorf("native: generate mipmaps for %v %v: %w",
			img.desc.Type, img.desc.Format.Actual, ErrUnsupportedFormat)
	}
	if err := img.check(baseLevel+levelCount-1, 0, img.desc.LayerCount); err != nil {
		return err
	}

	for layer := range img.desc.LayerCount {
		pix, stride, err := img.ReadSubresource(baseLevel, layer)
		if err != nil {
			return err
		}
		ext := img.levelExtents(baseLevel)
		var src image.Image = &image.RGBA{Pix: pix, Stride: int(stride), Rect: image.Rect(0, 0, ext.Width, ext.Height)}

		for level := baseLevel + 1; level < baseLevel+levelCount; level++ {
			e := img.levelExtents(level)
			dst := image.NewRGBA(image.Rect(0, 0, e.Width, e.Height))
			draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
			err := img.Upload(&backend.Upload{
				MipLevel:   level,
				BaseLayer:  layer,
				LayerCount: 1,
				Extents:    e,
				Data:       dst.Pix,
				RowPitch:   uint32(dst.Stride),
				DepthPitch: uint32(dst.Stride * e.Height),
			})
			if err != nil {
				return err
			}
			src = dst
		}
	}
	return nil
}

// CreateView implements backend.NativeImage.
func (img *Image) CreateView(desc *backend.ViewDesc) (backend.View, error) {
	if err := img.check(desc.MipLevel, desc.BaseLayer, desc.LayerCount); err != nil {
		return nil, err
	}
	raw, err := img.dev.device.CreateTextureView(img.raw, &hal.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          img.format,
		Dimension:       convertViewDimension(img.desc.Type),
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    uint32(desc.MipLevel),
		MipLevelCount:   uint32(max(desc.LevelCount, 1)),
		BaseArrayLayer:  uint32(desc.BaseLayer),
		ArrayLayerCount: uint32(desc.LayerCount),
	})
	if err != nil {
		return nil, fmt.Errorf("native: create view %q: %w", desc.Label, err)
	}
	return &View{dev: img.dev, raw: raw}, nil
}

// Destroy implements backend.NativeImage.
func (img *Image) Destroy() {
	if img.destroyed {
		return
	}
	img.destroyed = true
	img.dev.device.DestroyTexture(img.raw)
}

// View is a backend.View backed by a hal.TextureView.
type View struct {
	dev       *Device
	raw       hal.TextureView
	destroyed bool
}

// Raw returns the HAL view, or nil once destroyed.
func (v *View) Raw() hal.TextureView {
	if v.destroyed {
		return nil
	}
	return v.raw
}

// Destroy implements backend.View.
func (v *View) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	v.dev.device.DestroyTextureView(v.raw)
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backendtest

import (
	"errors"
	"fmt"

	"github.com/gogpu/glres/backend"
)

var errImageDestroyed = errors.New("backendtest: image destroyed")

// Image is an in-memory backend.NativeImage. Every (level, layer) holds a
// tightly packed copy of its texels.
type Image struct {
	dev       *Device
	desc      backend.ImageDesc
	levels    [][][]byte
	uploads   []backend.Upload
	views     []*View
	destroyed bool
}

func newImage(d *Device, desc *backend.ImageDesc) *Image {
	img := &Image{dev: d, desc: *desc, levels: make([][][]byte, desc.LevelCount)}
	for level := range img.levels {
		ext := img.LevelExtents(level)
		img.levels[level] = make([][]byte, desc.LayerCount)
		for layer := range img.levels[level] {
			img.levels[level][layer] = make([]byte, desc.Format.LevelSize(ext))
		}
	}
	return img
}

// Desc implements backend.NativeImage.
func (img *Image) Desc() backend.ImageDesc { return img.desc }

// Destroyed reports whether Destroy was called.
func (img *Image) Destroyed() bool { return img.destroyed }

// Uploads returns every upload applied to the image, in order.
func (img *Image) Uploads() []backend.Upload { return img.uploads }

// Views returns every view created from the image.
func (img *Image) Views() []*View { return img.views }

// LevelExtents returns the extents of a native level.
func (img *Image) LevelExtents(mipLevel int) backend.Extents {
	return img.desc.Extents.MipLevel(mipLevel, img.desc.Type == backend.Image3D)
}

// Texels returns the stored contents of one layer of a native level.
func (img *Image) Texels(mipLevel, layer int) []byte {
	return img.levels[mipLevel][layer]
}

func (img *Image) check(mipLevel, baseLayer, layerCount int) error {
	if img.destroyed {
		return errImageDestroyed
	}
	if mipLevel < 0 || mipLevel >= img.desc.LevelCount {
		return fmt.Errorf("backendtest: level %d outside [0, %d)", mipLevel, img.desc.LevelCount)
	}
	if baseLayer < 0 || baseLayer+layerCount > img.desc.LayerCount {
		return fmt.Errorf("backendtest: layers [%d, %d) outside [0, %d)",
			baseLayer, baseLayer+layerCount, img.desc.LayerCount)
	}
	return nil
}

// Upload implements backend.NativeImage.
func (img *Image) Upload(u *backend.Upload) error {
	if err := img.dev.FailUploads; err != nil {
		return err
	}
	if err := img.check(u.MipLevel, u.BaseLayer, u.LayerCount); err != nil {
		return err
	}

	f := img.desc.Format
	ext := img.LevelExtents(u.MipLevel)
	if u.Offset.X+u.Extents.Width > ext.Width || u.Offset.Y+u.Extents.Height > ext.Height || u.Offset.Z+u.Extents.Depth > ext.Depth {
		return fmt.Errorf("backendtest: upload %v at %v exceeds level %d extents %v", u.Extents, u.Offset, u.MipLevel, ext)
	}

	dstRow := f.RowPitch(ext.Width)
	dstSlice := dstRow * f.Rows(ext.Height)
	rowBytes := f.RowPitch(u.Extents.Width)
	rows := f.Rows(u.Extents.Height)
	rowOff := f.Rows(u.Offset.Y)
	if f.Compressed() {
		rowOff = uint32(u.Offset.Y) / f.BlockHeight
	}
	colOff := f.RowPitch(u.Offset.X)
	if f.Compressed() {
		colOff = uint32(u.Offset.X) / f.BlockWidth * f.BlockBytes
	}
	layerStride := u.DepthPitch * uint32(u.Extents.Depth)

	for li := range u.LayerCount {
		dst := img.levels[u.MipLevel][u.BaseLayer+li]
		for z := range uint32(u.Extents.Depth) {
			for r := range rows {
				src := uint32(li)*layerStride + z*u.DepthPitch + r*u.RowPitch
				if int(src+rowBytes) > len(u.Data) {
					return fmt.Errorf("backendtest: upload data too short (%d bytes)", len(u.Data))
				}
				d := (uint32(u.Offset.Z)+z)*dstSlice + (rowOff+r)*dstRow + colOff
				copy(dst[d:d+rowBytes], u.Data[src:src+rowBytes])
			}
		}
	}

	rec := *u
	rec.Data = nil
	img.uploads = append(img.uploads, rec)
	img.dev.Stats.Uploads++
	return nil
}

// ReadSubresource implements backend.ContentReader.
func (img *Image) ReadSubresource(mipLevel, layer int) ([]byte, uint32, error) {
	if err := img.check(mipLevel, layer, 1); err != nil {
		return nil, 0, err
	}
	if err := img.dev.FailReads; err != nil {
		return nil, 0, err
	}
	src := img.levels[mipLevel][layer]
	out := make([]byte, len(src))
	copy(out, src)
	return out, img.desc.Format.RowPitch(img.LevelExtents(mipLevel).Width), nil
}

// GenerateMipmaps implements backend.MipmapGenerator with point sampling.
func (img *Image) GenerateMipmaps(baseLevel, levelCount int) error {
	f := img.desc.Format
	if f.Compressed() {
		return fmt.Errorf("backendtest: cannot generate mipmaps for %v", f.Actual)
	}
	for level := baseLevel + 1; level < baseLevel+levelCount; level++ {
		if err := img.check(level, 0, img.desc.LayerCount); err != nil {
			return err
		}
		src, dst := img.LevelExtents(level-1), img.LevelExtents(level)
		px := int(f.PixelBytes)
		for layer := range img.desc.LayerCount {
			s, d := img.levels[level-1][layer], img.levels[level][layer]
			for y := range dst.Height {
				sy := min(y*2, src.Height-1)
				for x := range dst.Width {
					sx := min(x*2, src.Width-1)
					copy(d[(y*dst.Width+x)*px:][:px], s[(sy*src.Width+sx)*px:][:px])
				}
			}
		}
	}
	img.dev.Stats.MipmapGenerations++
	return nil
}

// CreateView implements backend.NativeImage.
func (img *Image) CreateView(desc *backend.ViewDesc) (backend.View, error) {
	if err := img.check(desc.MipLevel, desc.BaseLayer, desc.LayerCount); err != nil {
		return nil, err
	}
	v := &View{dev: img.dev, image: img, desc: *desc}
	img.views = append(img.views, v)
	img.dev.Stats.ViewsCreated++
	return v, nil
}

// Destroy implements backend.NativeImage.
func (img *Image) Destroy() {
	if img.destroyed {
		return
	}
	img.destroyed = true
	img.dev.Stats.ImagesDestroyed++
}

// View is a recorded image view.
type View struct {
	dev       *Device
	image     *Image
	desc      backend.ViewDesc
	destroyed bool
}

// Desc returns the description the view was created with.
func (v *View) Desc() backend.ViewDesc { return v.desc }

// Image returns the image the view was created from.
func (v *View) Image() *Image { return v.image }

// Destroyed reports whether Destroy was called.
func (v *View) Destroyed() bool { return v.destroyed }

// Destroy implements backend.View.
func (v *View) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	v.dev.Stats.ViewsDestroyed++
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/glres/backend"
	"github.com/gogpu/glres/subject"
)

var errNoDevice = errors.New("texture: context has no device")

// Image is the realized storage of a texture together with the updates
// staged for it. An Image may outlive the texture that created it when it is
// handed to another texture as an external image.
//
// Image reports SubjectChanged when storage is created or released and
// InitializationComplete when a flush leaves nothing staged.
type Image struct {
	subject.Subject

	native     backend.NativeImage
	ownsNative bool
	desc       backend.ImageDesc
	staged     []StagedUpdate
}

// NewImage returns an image with no storage.
func NewImage() *Image { return &Image{} }

// WrapNativeImage returns an initialized image backed by native storage the
// caller keeps ownership of.
func WrapNativeImage(native backend.NativeImage) *Image {
	return &Image{native: native, desc: native.Desc()}
}

// IsInitialized reports whether native storage is realized.
func (img *Image) IsInitialized() bool { return img.native != nil }

// Native returns the realized storage, or nil.
func (img *Image) Native() backend.NativeImage { return img.native }

// Desc returns the description of the realized storage.
func (img *Image) Desc() backend.ImageDesc { return img.desc }

// Format returns the format of the realized storage.
func (img *Image) Format() backend.Format { return img.desc.Format }

// IntendedFormat returns the format the application asked for.
func (img *Image) IntendedFormat() backend.FormatID { return img.desc.Format.Intended }

// ActualFormat returns the format the storage uses.
func (img *Image) ActualFormat() backend.FormatID { return img.desc.Format.Actual }

// Usage returns the native usage of the storage.
func (img *Image) Usage() backend.ImageUsage { return img.desc.Usage }

// LevelCount returns the number of allocated levels, 0 when not realized.
func (img *Image) LevelCount() int {
	if img.native == nil {
		return 0
	}
	return img.desc.LevelCount
}

// LayerCount returns the number of array layers or cube faces.
func (img *Image) LayerCount() int { return img.desc.LayerCount }

// FirstAllocatedLevel returns the GL level stored at native level 0.
func (img *Image) FirstAllocatedLevel() int { return img.desc.FirstLevel }

// LastAllocatedLevel returns the last GL level held by the storage.
func (img *Image) LastAllocatedLevel() int {
	return img.desc.FirstLevel + img.LevelCount() - 1
}

// IsLevelAllocated reports whether GL level is held by the storage.
func (img *Image) IsLevelAllocated(level int) bool {
	return img.native != nil && level >= img.desc.FirstLevel && level <= img.LastAllocatedLevel()
}

// LevelExtents returns the extents of an allocated GL level.
func (img *Image) LevelExtents(level int) backend.Extents {
	return img.desc.Extents.MipLevel(img.toNativeLevel(level), img.desc.Type == backend.Image3D)
}

func (img *Image) toNativeLevel(level int) int { return level - img.desc.FirstLevel }

// isCompatible reports whether level can be redefined as ext in f without
// replacing the storage.
func (img *Image) isCompatible(level int, ext backend.Extents, f backend.Format) bool {
	return img.LevelExtents(level) == ext &&
		img.desc.Format.Intended == f.Intended &&
		img.desc.Format.Actual == f.Actual
}

func (img *Image) init(device backend.Device, desc *backend.ImageDesc) error {
	if device == nil {
		return errNoDevice
	}
	native, err := device.CreateImage(desc)
	if err != nil {
		return fmt.Errorf("create %v %s image %v with %d levels: %w",
			desc.Format.Actual, desc.Type, desc.Extents, desc.LevelCount, err)
	}
	img.native = native
	img.ownsNative = true
	img.desc = *desc
	img.OnStateChange(subject.SubjectChanged)
	return nil
}

// reset releases the storage. Staged updates are kept.
func (img *Image) reset() {
	if img.native == nil {
		return
	}
	if img.ownsNative {
		img.native.Destroy()
	}
	img.native = nil
	img.ownsNative = false
	img.desc = backend.ImageDesc{}
	img.OnStateChange(subject.SubjectChanged)
}

// destroy releases the storage and drops staged updates.
func (img *Image) destroy() {
	img.reset()
	img.staged = nil
}

// StagedUpdates returns the pending updates in staging order.
func (img *Image) StagedUpdates() []StagedUpdate { return slices.Clone(img.staged) }

// HasStagedUpdates reports whether any update is pending.
func (img *Image) HasStagedUpdates() bool { return len(img.staged) > 0 }

// HasStagedUpdatesForLevel reports whether an update is pending for level.
func (img *Image) HasStagedUpdatesForLevel(level int) bool {
	return slices.ContainsFunc(img.staged, func(u StagedUpdate) bool { return u.Level == level })
}

func (img *Image) stage(u StagedUpdate) {
	img.staged = append(img.staged, u)
}

// stageFront queues updates ahead of everything already staged.
func (img *Image) stageFront(us []StagedUpdate) {
	img.staged = append(us, img.staged...)
}

// removeStagedUpdates drops every update of level.
func (img *Image) removeStagedUpdates(level int) {
	img.staged = slices.DeleteFunc(img.staged, func(u StagedUpdate) bool {
		return u.Level == level
	})
}

// removeLayerStagedUpdates drops the updates of level that cover exactly
// the given layer range.
func (img *Image) removeLayerStagedUpdates(level, layer, layerCount int) {
	img.staged = slices.DeleteFunc(img.staged, func(u StagedUpdate) bool {
		return u.Level == level && u.coversLayers(layer, layerCount)
	})
}

func (img *Image) clearStagedUpdates() { img.staged = nil }

func (img *Image) fits(u *StagedUpdate) bool {
	if !img.IsLevelAllocated(u.Level) || u.Layer < 0 || u.Layer+u.LayerCount > img.desc.LayerCount {
		return false
	}
	ext := img.LevelExtents(u.Level)
	return u.Offset.X+u.Extents.Width <= ext.Width &&
		u.Offset.Y+u.Extents.Height <= ext.Height &&
		u.Offset.Z+u.Extents.Depth <= ext.Depth
}

// flush uploads, in level order, every staged update that fits the storage
// and is not excluded by skip. Updates that are not uploaded stay staged.
// On failure the updates not yet uploaded stay staged.
func (img *Image) flush(skip func(u *StagedUpdate) bool) (int, error) {
	if img.native == nil || len(img.staged) == 0 {
		return 0, nil
	}
	slices.SortStableFunc(img.staged, func(a, b StagedUpdate) int { return a.Level - b.Level })

	kept := img.staged[:0]
	flushed := 0
	var err error
	for i := range img.staged {
		u := img.staged[i]
		if err != nil || !img.fits(&u) || (skip != nil && skip(&u)) {
			kept = append(kept, u)
			continue
		}
		err = img.native.Upload(&backend.Upload{
			MipLevel:   img.toNativeLevel(u.Level),
			BaseLayer:  u.Layer,
			LayerCount: u.LayerCount,
			Offset:     u.Offset,
			Extents:    u.Extents,
			Data:       u.Data,
			RowPitch:   u.RowPitch,
			DepthPitch: u.DepthPitch,
		})
		if err != nil {
			err = fmt.Errorf("upload level %d layers [%d, %d): %w", u.Level, u.Layer, u.Layer+u.LayerCount, err)
			kept = append(kept, u)
			continue
		}
		flushed++
	}
	clear(img.staged[len(kept):])
	img.staged = kept

	if err == nil && flushed > 0 && len(img.staged) == 0 {
		img.OnStateChange(subject.InitializationComplete)
	}
	return flushed, err
}

// readLevel returns the contents of every layer of an allocated level as
// staged updates, or nil when the storage cannot be read back.
func (img *Image) readLevel(level int) ([]StagedUpdate, error) {
	reader, ok := img.native.(backend.ContentReader)
	if !ok {
		return nil, nil
	}
	ext := img.LevelExtents(level)
	out := make([]StagedUpdate, 0, img.desc.LayerCount)
	for layer := range img.desc.LayerCount {
		data, pitch, err := reader.ReadSubresource(img.toNativeLevel(level), layer)
		if err != nil {
			return nil, fmt.Errorf("read level %d layer %d: %w", level, layer, err)
		}
		out = append(out, StagedUpdate{
			Level:      level,
			Layer:      layer,
			LayerCount: 1,
			Extents:    ext,
			Data:       data,
			RowPitch:   pitch,
			DepthPitch: pitch * img.desc.Format.Rows(ext.Height),
		})
	}
	return out, nil
}

func (img *Image) canReadBack() bool {
	_, ok := img.native.(backend.ContentReader)
	return ok
}

// createSingleLevelView creates a view of one layer of an allocated level.
func (img *Image) createSingleLevelView(level, layer int, label string) (backend.View, error) {
	return img.native.CreateView(&backend.ViewDesc{
		Label:      label,
		MipLevel:   img.toNativeLevel(level),
		LevelCount: 1,
		BaseLayer:  layer,
		LayerCount: 1,
	})
}

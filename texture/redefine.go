// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"github.com/gogpu/glres"
	"github.com/gogpu/glres/backend"
	"github.com/gogpu/glres/internal/bitmask"
)

// redefineLevel classifies a redefinition of level on face against the
// realized image. Updates staged for exactly the redefined images are
// dropped first; the call that follows stages the new contents. An error
// reports contents lost while releasing an incompatible image.
func (t *Texture) redefineLevel(ctx *glres.Context, f backend.Format, face, level int, ext backend.Extents) error {
	if t.image == nil || !t.ownsImage {
		t.setImageHelper(NewImage(), true)
		return nil
	}

	img := t.image
	if t.state.typ == TypeCubeMap {
		img.removeLayerStagedUpdates(level, face, 1)
	} else {
		img.removeStagedUpdates(level)
	}

	if !img.IsInitialized() || t.state.immutableFormat {
		return nil
	}

	within := img.IsLevelAllocated(level)
	compatible := within && img.isCompatible(level, ext, f)
	var err error
	switch {
	case !within:
		// The image may later grow to include the level.
		t.redefined[face].Set(level)
	case compatible:
		t.redefined[face].Reset(level)
	default:
		t.redefined[face].Set(level)
		err = t.releaseImage(ctx, "incompatible redefinition", t.notRedefined)
	}
	glres.Logger().Debug("texture: level redefined",
		"id", t.id, "level", level, "face", face, "extents", ext.String(),
		"withinImage", within, "compatible", compatible)
	return err
}

// prepareForGenerateMipmap drops updates staged above the base level and
// marks those levels redefined. A redefined base level releases the image
// without preserving anything.
func (t *Texture) prepareForGenerateMipmap(ctx *glres.Context) {
	base := t.state.EffectiveBaseLevel()
	last := t.state.MipmapMaxLevel()

	for level := base + 1; level <= last; level++ {
		t.image.removeStagedUpdates(level)
	}
	generated := generatedLevels(base, last)
	for face := range t.state.typ.faceCount() {
		t.redefined[face] = t.redefined[face].Union(generated)
	}

	if t.isLevelRedefined(base) && t.image.IsInitialized() {
		// Nothing is preserved, so there is no readback to fail.
		_ = t.releaseImage(ctx, "generateMipmap over redefined base level", nil)
	}
}

// generatedLevels returns the levels generateMipmap writes.
func generatedLevels(base, last int) LevelMask {
	return bitmask.Range[uint16](base+1, last)
}

// isLevelRedefined reports whether level is redefined on any face.
func (t *Texture) isLevelRedefined(level int) bool {
	for face := range t.state.typ.faceCount() {
		if t.redefined[face].Test(level) {
			return true
		}
	}
	return false
}

// hasRedefinedLevels reports whether any level outside except is
// redefined.
func (t *Texture) hasRedefinedLevels(except LevelMask) bool {
	for face := range t.state.typ.faceCount() {
		if t.redefined[face].Difference(except).Any() {
			return true
		}
	}
	return false
}

// notRedefined keeps the contents of every level of face that is not
// redefined.
func (t *Texture) notRedefined(face, level int) bool {
	return !t.redefined[face].Test(level)
}

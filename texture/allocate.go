// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"fmt"

	"github.com/gogpu/glres"
	"github.com/gogpu/glres/backend"
)

// syncState brings the realized image in line with the texture state and
// commits every staged update it can hold.
func (t *Texture) syncState(ctx *glres.Context, cmd Command) error {
	if err := t.respecifyImageStorageIfNecessary(ctx, cmd); err != nil {
		return err
	}
	if err := t.initializeImage(ctx, cmd == CommandGenerateMipmap); err != nil {
		return err
	}
	if !t.image.IsInitialized() {
		return nil
	}
	n, err := t.image.flush(nil)
	if n > 0 {
		glres.Logger().Debug("texture: staged updates flushed",
			"id", t.id, "count", n, "pending", len(t.image.staged))
	}
	return err
}

// respecifyImageStorageIfNecessary releases the realized image when it can
// no longer back the texture: its usage is stale, a level it should hold was
// redefined, or it holds fewer levels than the texture now needs.
func (t *Texture) respecifyImageStorageIfNecessary(ctx *glres.Context, cmd Command) error {
	t.ensureImage()

	generateMipmap := cmd == CommandGenerateMipmap
	if generateMipmap {
		t.prepareForGenerateMipmap(ctx)
	}
	if err := t.maybeUpdateBaseMaxLevels(ctx); err != nil {
		return err
	}

	img := t.image
	if !img.IsInitialized() || !t.ownsImage {
		return nil
	}

	// Levels about to be generated are redefined by the generation itself.
	var generated LevelMask
	keep := t.notRedefined
	if generateMipmap {
		base := t.state.EffectiveBaseLevel()
		generated = generatedLevels(base, t.state.MipmapMaxLevel())
		keep = func(face, level int) bool { return level == base && t.notRedefined(face, level) }
	}

	var reason string
	switch {
	case img.Usage() != t.state.usage:
		reason = "usage changed"
	case t.hasRedefinedLevels(generated):
		reason = "levels redefined"
	case generateMipmap && !t.state.immutableFormat && img.LevelCount() != t.state.fullChainLevelCount():
		reason = "mip chain incomplete"
	case !generateMipmap && img.LevelCount() < t.state.EnabledLevelCount():
		reason = "enabled levels grew"
	default:
		return nil
	}

	// Commit what the old image can still hold so that it is carried over
	// with the rest of its contents.
	if img.canReadBack() {
		if _, err := img.flush(func(u *StagedUpdate) bool { return !keep(t.faceOf(u.Layer), u.Level) }); err != nil {
			return err
		}
	}
	return t.releaseImage(ctx, reason, keep)
}

// maybeUpdateBaseMaxLevels reconciles base and max level changes made since
// the image was allocated. Shrinking the max level inside the allocated
// range keeps the image; any other change releases it.
func (t *Texture) maybeUpdateBaseMaxLevels(ctx *glres.Context) error {
	baseChanged := t.currentBase != t.state.baseLevel
	maxChanged := t.currentMax != t.state.maxLevel
	if !baseChanged && !maxChanged {
		return nil
	}

	var err error
	img := t.image
	if img.IsInitialized() && t.ownsImage && !t.state.immutableFormat {
		if baseChanged || t.state.EffectiveMaxLevel() > img.LastAllocatedLevel() {
			err = t.releaseImage(ctx, "base or max level changed", t.notRedefined)
		}
	}
	// Recorded even when the image was released: initializeImage sets both
	// again from the state it allocates for.
	t.currentBase, t.currentMax = t.state.baseLevel, t.state.maxLevel
	return err
}

// initializeImage allocates the image when none is realized. It holds the
// enabled levels, or the whole chain from the base level when fullChain is
// set. An undefined base level leaves the texture without storage.
func (t *Texture) initializeImage(ctx *glres.Context, fullChain bool) error {
	t.ensureImage()
	if t.image.IsInitialized() {
		return nil
	}
	base := t.state.BaseLevelDesc()
	if !base.Defined() {
		return nil
	}

	levels := t.state.EnabledLevelCount()
	if fullChain {
		levels = t.state.fullChainLevelCount()
	}
	layers := 1
	if t.state.typ == TypeCubeMap {
		layers = CubeFaceCount
	}

	desc := &backend.ImageDesc{
		Label:      t.Label(),
		Type:       t.state.typ.imageType(),
		Format:     base.Format,
		Extents:    base.Extents,
		FirstLevel: t.state.EffectiveBaseLevel(),
		LevelCount: max(levels, 1),
		LayerCount: layers,
		Samples:    1,
		Usage:      t.state.usage,
	}
	if err := t.image.init(ctx.Device(), desc); err != nil {
		return err
	}

	t.redefined = [CubeFaceCount]LevelMask{}
	t.currentBase, t.currentMax = t.state.baseLevel, t.state.maxLevel
	glres.Logger().Debug("texture: image allocated",
		"id", t.id, "type", desc.Type.String(), "format", desc.Format.Actual.String(),
		"extents", desc.Extents.String(), "firstLevel", desc.FirstLevel, "levels", desc.LevelCount)
	return nil
}

// releaseImage tears down the realized image and its render targets. When
// keep is not nil and the image can be read back, the contents of every
// allocated (face, level) keep accepts are staged ahead of pending updates
// so that the next image starts from them. The image is released even when
// a readback fails; the error reports the levels whose contents were lost.
func (t *Texture) releaseImage(ctx *glres.Context, reason string, keep func(face, level int) bool) error {
	img := t.image
	var err error
	if keep != nil && img.canReadBack() {
		err = t.preserveContents(ctx, keep)
	}
	t.releaseRenderTargets()
	img.reset()
	glres.Logger().Debug("texture: image released", "id", t.id, "reason", reason)
	return err
}

// preserveContents stages every level that reads back and returns the
// first readback error.
func (t *Texture) preserveContents(ctx *glres.Context, keep func(face, level int) bool) error {
	img := t.image
	var kept []StagedUpdate
	var firstErr error
	for level := img.FirstAllocatedLevel(); level <= img.LastAllocatedLevel(); level++ {
		updates, err := img.readLevel(level)
		if err != nil {
			glres.Logger().Warn("texture: contents lost on release",
				"id", t.id, "context", ctx.String(), "level", level, "err", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("preserve contents of texture %d: %w", t.id, err)
			}
			continue
		}
		for _, u := range updates {
			if keep(t.faceOf(u.Layer), u.Level) {
				kept = append(kept, u)
			}
		}
	}
	if len(kept) > 0 {
		img.stageFront(kept)
	}
	return firstErr
}

func (t *Texture) faceOf(layer int) int {
	if t.state.typ == TypeCubeMap {
		return layer
	}
	return 0
}

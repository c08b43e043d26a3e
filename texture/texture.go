// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"errors"
	"fmt"

	"github.com/gogpu/glres"
	"github.com/gogpu/glres/backend"
	"github.com/gogpu/glres/resource"
	"github.com/gogpu/glres/subject"
)

// ErrIncomplete is returned when an operation needs storage for a level
// that has not been defined.
var ErrIncomplete = errors.New("texture: level not defined")

const imageSubjectIndex subject.Index = 0

// Option configures a Texture.
type Option func(*Texture)

// WithLabel sets the debug label. Native images inherit it.
func WithLabel(label string) Option {
	return func(t *Texture) { t.SetLabelText(label) }
}

// WithUsage adds native usage to every image the texture allocates.
func WithUsage(usage backend.ImageUsage) Option {
	return func(t *Texture) { t.state.usage |= usage }
}

// Texture is a GL texture object.
//
// Level-defining calls only record state and stage pixel data. Native
// storage is allocated, released and filled lazily by SyncState,
// GetAttachmentRenderTarget, EnsureImageInitialized and GenerateMipmap.
//
// The embedded Subject forwards SubjectChanged and InitializationComplete
// from the image.
type Texture struct {
	resource.RefCounted
	resource.DebugLabel
	subject.Subject

	id        resource.ID
	state     State
	image     *Image
	ownsImage bool

	imageBinding subject.Binding

	// Base and max level the realized image was reconciled with.
	currentBase int
	currentMax  int

	// Levels redefined since the image was allocated, per cube face.
	redefined [CubeFaceCount]LevelMask

	renderTargets renderTargetCache
}

// New returns a texture of type typ with no levels defined.
func New(id resource.ID, typ Type, opts ...Option) *Texture {
	t := &Texture{id: id, state: newState(typ)}
	t.imageBinding = subject.NewBinding(t, imageSubjectIndex)
	for _, opt := range opts {
		opt(t)
	}
	t.currentBase, t.currentMax = t.state.baseLevel, t.state.maxLevel
	t.setImageHelper(NewImage(), true)
	return t
}

// ID returns the texture name.
func (t *Texture) ID() resource.ID { return t.id }

// Type returns the texture type.
func (t *Texture) Type() Type { return t.state.typ }

// State returns the texture state. Callers must not modify it.
func (t *Texture) State() *State { return &t.state }

// Image returns the current image, or nil after ReleaseOwnershipOfImage.
func (t *Texture) Image() *Image { return t.image }

// OwnsImage reports whether the texture may reallocate its image.
func (t *Texture) OwnsImage() bool { return t.ownsImage }

// RedefinedLevels returns the levels of face redefined since the image was
// allocated.
func (t *Texture) RedefinedLevels(face int) LevelMask { return t.redefined[face] }

// RenderTargetCount returns the number of cached render targets.
func (t *Texture) RenderTargetCount() int { return t.renderTargets.count() }

// OnSubjectStateChange implements subject.Observer for the image.
func (t *Texture) OnSubjectStateChange(_ subject.Index, msg subject.Message) {
	t.OnStateChange(msg)
}

func (t *Texture) setImageHelper(img *Image, owns bool) {
	if t.image != nil {
		t.imageBinding.Reset()
		t.releaseRenderTargets()
		if t.ownsImage {
			t.image.destroy()
		}
	}
	t.image = img
	t.ownsImage = owns
	if img != nil {
		t.imageBinding.Bind(&img.Subject)
	}
	t.OnStateChange(subject.SubjectChanged)
}

func (t *Texture) ensureImage() {
	if t.image == nil {
		t.setImageHelper(NewImage(), true)
	}
}

// SetLabel sets the debug label.
func (t *Texture) SetLabel(_ *glres.Context, label string) error {
	if t.SetLabelText(label) {
		glres.Logger().Debug("texture: label set", "id", t.id, "label", label)
	}
	return nil
}

// OnDestroy releases the image and drops every observer.
func (t *Texture) OnDestroy(_ *glres.Context) {
	t.setImageHelper(nil, true)
	t.ResetObservers()
}

// SetImage defines level of target as size in internalFormat and stages
// pixels for it. Nil pixels leave the contents undefined unless the context
// requires robust initialization.
func (t *Texture) SetImage(ctx *glres.Context, target Target, level int, internalFormat uint32,
	size backend.Extents, pixels []byte, unpack Unpack) error {
	return t.setImage(ctx, "setImage", target, level, internalFormat, size, pixels, unpack)
}

// SetCompressedImage defines level of target from compressed data.
func (t *Texture) SetCompressedImage(ctx *glres.Context, target Target, level int, internalFormat uint32,
	size backend.Extents, data []byte) error {
	return t.setImage(ctx, "setCompressedImage", target, level, internalFormat, size, data, Unpack{})
}

func (t *Texture) setImage(ctx *glres.Context, op string, target Target, level int, internalFormat uint32,
	size backend.Extents, pixels []byte, unpack Unpack) error {
	f := backend.LookupFormat(internalFormat)
	if !f.Valid() {
		return ctx.Fail(op, fmt.Errorf("internal format 0x%X: %w", internalFormat, glres.ErrUnsupported))
	}

	face := target.Face()
	lost := t.redefineLevel(ctx, f, face, level, size)
	t.state.setImageDesc(face, level, ImageDesc{Format: f, Extents: size})
	t.OnStateChange(subject.SubjectChanged)

	if pixels != nil || ctx.RobustResourceInit() {
		if err := t.stage(op, f, face, level, backend.Box{Extents: size}, unpack, pixels); err != nil {
			return err
		}
	}
	return ctx.Fail(op, lost)
}

// SetSubImage stages pixels for area of an already defined level.
func (t *Texture) SetSubImage(ctx *glres.Context, target Target, level int, area backend.Box,
	pixels []byte, unpack Unpack) error {
	return t.setSubImage(ctx, "setSubImage", target, level, area, pixels, unpack)
}

// SetCompressedSubImage stages compressed data for area of a level.
func (t *Texture) SetCompressedSubImage(ctx *glres.Context, target Target, level int, area backend.Box,
	data []byte) error {
	return t.setSubImage(ctx, "setCompressedSubImage", target, level, area, data, Unpack{})
}

func (t *Texture) setSubImage(ctx *glres.Context, op string, target Target, level int, area backend.Box,
	pixels []byte, unpack Unpack) error {
	face := target.Face()
	f := t.state.ImageDesc(face, level).Format
	if !f.Valid() {
		return ctx.Fail(op, fmt.Errorf("level %d has no backend format: %w", level, glres.ErrUnsupported))
	}
	if pixels == nil {
		return nil
	}
	t.ensureImage()
	return t.stage(op, f, face, level, area, unpack, pixels)
}

func (t *Texture) stage(op string, f backend.Format, face, level int, area backend.Box,
	unpack Unpack, pixels []byte) error {
	u, err := stageUpload(f, level, face, 1, area, unpack, pixels)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	t.image.stage(u)
	return nil
}

// SetStorage defines levels immutable levels of size in internalFormat and
// allocates them.
func (t *Texture) SetStorage(ctx *glres.Context, levels int, internalFormat uint32, size backend.Extents) error {
	const op = "setStorage"
	f := backend.LookupFormat(internalFormat)
	if !f.Valid() {
		return ctx.Fail(op, fmt.Errorf("internal format 0x%X: %w", internalFormat, glres.ErrUnsupported))
	}

	if t.image != nil && t.ownsImage {
		t.releaseRenderTargets()
		t.image.destroy()
	} else {
		t.setImageHelper(NewImage(), true)
	}

	t.state.clearImageDescs()
	t.state.immutableFormat = true
	t.state.immutableLevels = levels
	t.state.setLevelChain(0, levels, ImageDesc{Format: f, Extents: size})
	t.redefined = [CubeFaceCount]LevelMask{}
	t.OnStateChange(subject.SubjectChanged)

	return ctx.Fail(op, t.initializeImage(ctx, false))
}

// SetEGLImageTarget makes img, realized by another texture, the storage of
// this texture. The texture does not own img and never reallocates it; a
// later redefinition replaces it with a new image.
func (t *Texture) SetEGLImageTarget(ctx *glres.Context, img *Image) error {
	if !img.IsInitialized() {
		return fmt.Errorf("setEGLImageTarget: %w", ErrIncomplete)
	}
	t.setImageHelper(img, false)

	d := img.Desc()
	t.state.clearImageDescs()
	t.state.setLevelChain(d.FirstLevel, d.LevelCount, ImageDesc{Format: d.Format, Extents: d.Extents})
	t.redefined = [CubeFaceCount]LevelMask{}
	glres.Logger().Debug("texture: external image attached",
		"id", t.id, "context", ctx.String(), "extents", d.Extents.String(), "levels", d.LevelCount)
	return nil
}

// ImportNativeImage adopts native storage the caller keeps ownership of.
func (t *Texture) ImportNativeImage(ctx *glres.Context, native backend.NativeImage) error {
	return t.SetEGLImageTarget(ctx, WrapNativeImage(native))
}

// ReleaseOwnershipOfImage detaches the image without destroying it, leaving
// the texture without storage. It is used when another object takes over
// the image.
func (t *Texture) ReleaseOwnershipOfImage(_ *glres.Context) {
	t.ownsImage = false
	t.setImageHelper(nil, true)
}

// SetBaseLevel sets TEXTURE_BASE_LEVEL. The image is reconciled on the next
// sync.
func (t *Texture) SetBaseLevel(_ *glres.Context, level int) error {
	t.state.baseLevel = level
	return nil
}

// SetMaxLevel sets TEXTURE_MAX_LEVEL. The image is reconciled on the next
// sync.
func (t *Texture) SetMaxLevel(_ *glres.Context, level int) error {
	t.state.maxLevel = level
	return nil
}

// SetUsage sets the native usage required on top of the default usage. A
// change reallocates the image on the next sync.
func (t *Texture) SetUsage(_ *glres.Context, usage backend.ImageUsage) {
	t.state.usage = backend.DefaultImageUsage | usage
}

// SyncState prepares the realized image for cmd and commits staged updates.
func (t *Texture) SyncState(ctx *glres.Context, cmd Command) error {
	return ctx.Fail("syncState", t.syncState(ctx, cmd))
}

// EnsureImageInitialized allocates the image if none is realized.
func (t *Texture) EnsureImageInitialized(ctx *glres.Context) error {
	return ctx.Fail("ensureImageInitialized", t.initializeImage(ctx, false))
}

// GenerateMipmap fills every level above the base level from the base
// level. The native image must implement backend.MipmapGenerator.
func (t *Texture) GenerateMipmap(ctx *glres.Context) error {
	const op = "generateMipmap"
	if err := t.syncState(ctx, CommandGenerateMipmap); err != nil {
		return ctx.Fail(op, err)
	}
	img := t.image
	if !img.IsInitialized() {
		return fmt.Errorf("%s: %w", op, ErrIncomplete)
	}

	base, last := t.state.EffectiveBaseLevel(), t.state.MipmapMaxLevel()
	if last > base {
		gen, ok := img.Native().(backend.MipmapGenerator)
		if !ok {
			return ctx.Fail(op, fmt.Errorf("native image cannot generate mipmaps: %w", glres.ErrUnsupported))
		}
		if err := gen.GenerateMipmaps(img.toNativeLevel(base), last-base+1); err != nil {
			return ctx.Fail(op, err)
		}
	}

	t.state.setLevelChain(base, last-base+1, t.state.BaseLevelDesc())
	generated := generatedLevels(base, last)
	for face := range t.state.typ.faceCount() {
		t.redefined[face] = t.redefined[face].Difference(generated)
	}
	return nil
}

// GetAttachmentRenderTarget returns the render target of one layer of a
// level, allocating the image and the views of that level on first use.
// For cube maps a face target selects the face. Array textures, 3D
// textures, multi-layer requests and multisampling are not supported.
func (t *Texture) GetAttachmentRenderTarget(ctx *glres.Context, target Target, index ImageIndex,
	samples int) (*RenderTarget, error) {
	const op = "getAttachmentRenderTarget"
	sel := selectorFor(samples)
	if sel != SelectorDefault {
		return nil, ctx.Fail(op, fmt.Errorf("%d samples: %w", samples, glres.ErrUnsupported))
	}
	if target.IsCubeFace() && index.LayerCount == 0 {
		index.Layer = target.Face()
	}
	layer, count, imageLayers, err := t.renderTargetLayers(index)
	if err != nil {
		return nil, ctx.Fail(op, err)
	}
	if count != 1 {
		return nil, ctx.Fail(op, fmt.Errorf("%d layer render target: %w", count, glres.ErrUnsupported))
	}

	if err := t.respecifyImageStorageIfNecessary(ctx, CommandDraw); err != nil {
		return nil, ctx.Fail(op, err)
	}
	if err := t.initializeImage(ctx, false); err != nil {
		return nil, ctx.Fail(op, err)
	}
	if !t.image.IsLevelAllocated(index.Level) {
		return nil, fmt.Errorf("%s: level %d: %w", op, index.Level, ErrIncomplete)
	}
	if _, err := t.image.flush(nil); err != nil {
		return nil, ctx.Fail(op, err)
	}

	if err := t.initSingleLayerRenderTargets(sel, index.Level, imageLayers); err != nil {
		return nil, ctx.Fail(op, err)
	}
	return t.renderTargets.lookup(sel, index.Level, layer), nil
}

func (t *Texture) unsupported(ctx *glres.Context, op string) error {
	return ctx.Fail(op, glres.ErrUnsupported)
}

// CopyImage is not supported.
func (t *Texture) CopyImage(ctx *glres.Context, _ Target, _ int, _ backend.Box, _ uint32) error {
	return t.unsupported(ctx, "copyImage")
}

// CopySubImage is not supported.
func (t *Texture) CopySubImage(ctx *glres.Context, _ Target, _ int, _ backend.Offset, _ backend.Box) error {
	return t.unsupported(ctx, "copySubImage")
}

// CopyTexture is not supported.
func (t *Texture) CopyTexture(ctx *glres.Context, _ Target, _ int, _ uint32, _ *Texture, _ int) error {
	return t.unsupported(ctx, "copyTexture")
}

// CopySubTexture is not supported.
func (t *Texture) CopySubTexture(ctx *glres.Context, _ Target, _ int, _ backend.Offset,
	_ *Texture, _ int, _ backend.Box) error {
	return t.unsupported(ctx, "copySubTexture")
}

// CopyCompressedTexture is not supported.
func (t *Texture) CopyCompressedTexture(ctx *glres.Context, _ *Texture) error {
	return t.unsupported(ctx, "copyCompressedTexture")
}

// CopyRenderbufferSubData is not supported.
func (t *Texture) CopyRenderbufferSubData(ctx *glres.Context, _ int, _ backend.Offset, _ backend.Box) error {
	return t.unsupported(ctx, "copyRenderbufferSubData")
}

// CopyTextureSubData is not supported.
func (t *Texture) CopyTextureSubData(ctx *glres.Context, _ *Texture, _ int, _ backend.Offset,
	_ int, _ backend.Offset, _ backend.Extents) error {
	return t.unsupported(ctx, "copyTextureSubData")
}

// SetStorageMultisample is not supported.
func (t *Texture) SetStorageMultisample(ctx *glres.Context, _ int, _ uint32, _ backend.Extents, _ bool) error {
	return t.unsupported(ctx, "setStorageMultisample")
}

// SetImageExternal is not supported.
func (t *Texture) SetImageExternal(ctx *glres.Context) error {
	return t.unsupported(ctx, "setImageExternal")
}

// BindTexImage is not supported.
func (t *Texture) BindTexImage(ctx *glres.Context) error {
	return t.unsupported(ctx, "bindTexImage")
}

// ReleaseTexImage is not supported.
func (t *Texture) ReleaseTexImage(ctx *glres.Context) error {
	return t.unsupported(ctx, "releaseTexImage")
}

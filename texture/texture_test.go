// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glres"
	"github.com/gogpu/glres/backend"
	"github.com/gogpu/glres/backend/backendtest"
	"github.com/gogpu/glres/subject"
)

func newTestContext(t *testing.T, opts ...glres.ContextOption) (*glres.Context, *backendtest.Device) {
	t.Helper()
	dev := backendtest.NewDevice()
	return glres.NewContext(dev, opts...), dev
}

func extent(w, h int) backend.Extents { return backend.Extents{Width: w, Height: h, Depth: 1} }

// rgba returns tightly packed RGBA8 pixels with every byte set to v.
func rgba(w, h int, v byte) []byte {
	return bytes.Repeat([]byte{v}, w*h*4)
}

func allBytes(b []byte, v byte) bool {
	for _, c := range b {
		if c != v {
			return false
		}
	}
	return len(b) > 0
}

// defineChain defines levels [0, n) of a 2D texture as a mip chain starting
// at size×size. Level i is filled with fill+i.
func defineChain(t *testing.T, ctx *glres.Context, tex *Texture, size, n int, fill byte) {
	t.Helper()
	for level := range n {
		s := max(size>>level, 1)
		require.NoError(t, tex.SetImage(ctx, Target2D, level, backend.GLRGBA8, extent(s, s),
			rgba(s, s, fill+byte(level)), Unpack{}))
	}
}

type stateRecorder struct {
	msgs []subject.Message
}

func (r *stateRecorder) OnSubjectStateChange(_ subject.Index, msg subject.Message) {
	r.msgs = append(r.msgs, msg)
}

func TestRenderTargetCreatesOneEntry(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(256, 256),
		rgba(256, 256, 0x7F), Unpack{}))
	assert.Zero(t, dev.Stats.ImagesCreated, "definition must not allocate")

	rt, err := tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
	require.NoError(t, err)
	require.NotNil(t, rt)

	assert.Equal(t, 1, dev.Stats.ImagesCreated)
	assert.Equal(t, 1, tex.RenderTargetCount())
	assert.Equal(t, 1, dev.Stats.ViewsCreated)
	assert.Equal(t, 0, rt.Level())
	assert.Equal(t, 0, rt.Layer())
	assert.Equal(t, backend.FormatRGBA8Unorm, rt.Format())

	img := dev.LastImage()
	assert.Equal(t, tex.State().EnabledLevelCount(), img.Desc().LevelCount)
	assert.Equal(t, 1, img.Desc().LevelCount)
	assert.True(t, allBytes(img.Texels(0, 0), 0x7F))

	again, err := tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
	require.NoError(t, err)
	assert.Same(t, rt, again)
	assert.Equal(t, 1, dev.Stats.ImagesCreated)
	assert.Equal(t, 1, dev.Stats.ViewsCreated)
}

func TestIncompatibleRedefinitionReallocatesOnce(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(256, 256), nil, Unpack{}))
	_, err := tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
	require.NoError(t, err)
	require.True(t, tex.Image().IsInitialized())

	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(128, 128), nil, Unpack{}))
	assert.False(t, tex.Image().IsInitialized())
	assert.Equal(t, 1, dev.Stats.ImagesDestroyed)
	assert.Equal(t, 1, dev.Stats.ViewsDestroyed)
	assert.Zero(t, tex.RenderTargetCount())

	rt, err := tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
	require.NoError(t, err)
	require.NotNil(t, rt.View())
	assert.Equal(t, 2, dev.Stats.ImagesCreated)
	assert.Equal(t, extent(128, 128), dev.LastImage().Desc().Extents)

	_, err = tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, dev.Stats.ImagesCreated)
}

func TestCompatibleRedefinitionsKeepImage(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)

	for i := range 5 {
		require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(64, 64),
			rgba(64, 64, byte(i+1)), Unpack{}))
		require.NoError(t, tex.SyncState(ctx, CommandDraw))
		_, err := tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, dev.Stats.ImagesCreated)
	assert.Zero(t, dev.Stats.ImagesDestroyed)
	assert.Equal(t, 5, dev.Stats.Uploads)
	assert.True(t, allBytes(dev.LastImage().Texels(0, 0), 5))
	assert.True(t, tex.RedefinedLevels(0).None())
}

func TestRedefinitionClassification(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(8, 8), rgba(8, 8, 0x10), Unpack{}))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	require.Equal(t, 1, dev.LastImage().Desc().LevelCount)

	// Outside the allocated range: only marked.
	require.NoError(t, tex.SetImage(ctx, Target2D, 1, backend.GLRGBA8, extent(4, 4), rgba(4, 4, 0x20), Unpack{}))
	assert.True(t, tex.RedefinedLevels(0).Test(1))
	assert.True(t, tex.Image().IsInitialized())
	assert.Equal(t, 1, dev.Stats.ImagesCreated)

	// The mark releases the image on the next sync, keeping level 0.
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	assert.Equal(t, 2, dev.Stats.ImagesCreated)
	assert.True(t, tex.RedefinedLevels(0).None())
	img := dev.LastImage()
	assert.Equal(t, 2, img.Desc().LevelCount)
	assert.True(t, allBytes(img.Texels(0, 0), 0x10))
	assert.True(t, allBytes(img.Texels(1, 0), 0x20))

	// Within the range and compatible: untouched.
	require.NoError(t, tex.SetImage(ctx, Target2D, 1, backend.GLRGBA8, extent(4, 4), nil, Unpack{}))
	assert.True(t, tex.Image().IsInitialized())
	assert.True(t, tex.RedefinedLevels(0).None())

	// Within the range and incompatible: released at once.
	require.NoError(t, tex.SetImage(ctx, Target2D, 1, backend.GLRGBA8, extent(2, 2), nil, Unpack{}))
	assert.False(t, tex.Image().IsInitialized())
	assert.Equal(t, 2, dev.Stats.ImagesDestroyed)

	// Level 1 no longer continues the chain, so only level 0 is allocated,
	// from the contents read back before the release.
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	img = dev.LastImage()
	assert.Equal(t, 3, dev.Stats.ImagesCreated)
	assert.Equal(t, 1, img.Desc().LevelCount)
	assert.True(t, allBytes(img.Texels(0, 0), 0x10))
}

func TestRedefinitionDiscardsStagedUpdates(t *testing.T) {
	ctx, _ := newTestContext(t)
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 4), rgba(4, 4, 1), Unpack{}))
	require.NoError(t, tex.SetImage(ctx, Target2D, 1, backend.GLRGBA8, extent(2, 2), rgba(2, 2, 2), Unpack{}))
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 4), rgba(4, 4, 3), Unpack{}))

	staged := tex.Image().StagedUpdates()
	require.Len(t, staged, 2)
	assert.Equal(t, 1, staged[0].Level)
	assert.Equal(t, 0, staged[1].Level)
	assert.Equal(t, byte(3), staged[1].Data[0])
}

func TestGenerateMipmapDiscardsStagedLevels(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	defineChain(t, ctx, tex, 8, 4, 0xA0)
	require.NoError(t, tex.SetMaxLevel(ctx, 3))

	require.NoError(t, tex.GenerateMipmap(ctx))

	assert.Equal(t, 1, dev.Stats.ImagesCreated)
	assert.Equal(t, 1, dev.Stats.MipmapGenerations)
	img := dev.LastImage()
	assert.Equal(t, 4, img.Desc().LevelCount)
	require.Len(t, img.Uploads(), 1)
	assert.Equal(t, 0, img.Uploads()[0].MipLevel)
	for level := 1; level < 4; level++ {
		assert.True(t, allBytes(img.Texels(level, 0), 0xA0), "level %d", level)
	}
	assert.False(t, tex.Image().HasStagedUpdates())
}

func TestGenerateMipmapRecreatesAfterBaseRedefinition(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	defineChain(t, ctx, tex, 8, 4, 0x10)
	require.NoError(t, tex.SetMaxLevel(ctx, 3))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	require.Equal(t, 4, dev.LastImage().Desc().LevelCount)

	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(16, 16), rgba(16, 16, 0x55), Unpack{}))
	require.NoError(t, tex.GenerateMipmap(ctx))

	assert.Equal(t, 2, dev.Stats.ImagesCreated)
	img := dev.LastImage()
	assert.Equal(t, 4, img.Desc().LevelCount)
	assert.Equal(t, extent(16, 16), img.Desc().Extents)
	assert.True(t, allBytes(img.Texels(3, 0), 0x55))
	assert.Equal(t, extent(8, 8), tex.State().ImageDesc(0, 1).Extents)
	assert.Equal(t, 4, tex.State().EnabledLevelCount())
}

func TestGenerateMipmapOverRedefinedBaseDropsImage(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(8, 8), rgba(8, 8, 1), Unpack{}))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	require.NoError(t, tex.SetImage(ctx, Target2D, 1, backend.GLRGBA8, extent(4, 4), rgba(4, 4, 2), Unpack{}))
	require.NoError(t, tex.SetBaseLevel(ctx, 1))

	require.NoError(t, tex.GenerateMipmap(ctx))

	assert.Equal(t, 1, dev.Stats.ImagesDestroyed)
	assert.Equal(t, 2, dev.Stats.ImagesCreated)
	desc := dev.LastImage().Desc()
	assert.Equal(t, 1, desc.FirstLevel)
	assert.Equal(t, 3, desc.LevelCount)
	assert.True(t, allBytes(dev.LastImage().Texels(2, 0), 2))
	assert.False(t, tex.Image().HasStagedUpdates(), "level 0 was not preserved")
}

func TestGenerateMipmapWithoutGenerator(t *testing.T) {
	ctx, dev := newTestContext(t)
	dev.NoReadback = true
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 4), nil, Unpack{}))
	err := tex.GenerateMipmap(ctx)
	assert.ErrorIs(t, err, glres.ErrUnsupported)
}

func TestBaseLevelChangePreservesContents(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(8, 8), rgba(8, 8, 0x10), Unpack{}))
	require.NoError(t, tex.SetImage(ctx, Target2D, 1, backend.GLRGBA8, extent(4, 4), rgba(4, 4, 0x20), Unpack{}))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	require.Equal(t, 2, dev.LastImage().Desc().LevelCount)

	require.NoError(t, tex.SetBaseLevel(ctx, 1))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	img := dev.LastImage()
	assert.Equal(t, 2, dev.Stats.ImagesCreated)
	assert.Equal(t, 1, img.Desc().FirstLevel)
	assert.True(t, allBytes(img.Texels(0, 0), 0x20))
	assert.True(t, tex.Image().HasStagedUpdatesForLevel(0), "level 0 waits for an image that holds it")

	require.NoError(t, tex.SetBaseLevel(ctx, 0))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	img = dev.LastImage()
	assert.Equal(t, 3, dev.Stats.ImagesCreated)
	assert.Equal(t, 2, img.Desc().LevelCount)
	assert.True(t, allBytes(img.Texels(0, 0), 0x10))
	assert.True(t, allBytes(img.Texels(1, 0), 0x20))
}

func TestBaseLevelChangeWithoutReadback(t *testing.T) {
	ctx, dev := newTestContext(t)
	dev.NoReadback = true
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(8, 8), rgba(8, 8, 0x10), Unpack{}))
	require.NoError(t, tex.SetImage(ctx, Target2D, 1, backend.GLRGBA8, extent(4, 4), rgba(4, 4, 0x20), Unpack{}))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))

	require.NoError(t, tex.SetBaseLevel(ctx, 1))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	assert.Equal(t, 2, dev.Stats.ImagesCreated)
	assert.True(t, allBytes(dev.LastImage().Texels(0, 0), 0))
}

func TestBaseLevelChangeReadbackFailure(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(8, 8), rgba(8, 8, 0x10), Unpack{}))
	require.NoError(t, tex.SetImage(ctx, Target2D, 1, backend.GLRGBA8, extent(4, 4), rgba(4, 4, 0x20), Unpack{}))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))

	dev.FailReads = backendtest.ErrInjected
	require.NoError(t, tex.SetBaseLevel(ctx, 1))
	err := tex.SyncState(ctx, CommandDraw)
	assert.ErrorIs(t, err, backendtest.ErrInjected)
	assert.False(t, tex.Image().IsInitialized(), "the image is released even when its contents are lost")
	assert.Equal(t, 1, dev.Stats.ImagesDestroyed)

	dev.FailReads = nil
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	img := dev.LastImage()
	assert.Equal(t, 2, dev.Stats.ImagesCreated)
	assert.Equal(t, 1, dev.Stats.ImagesDestroyed, "the base level change is not applied twice")
	assert.Equal(t, 1, img.Desc().FirstLevel)
	assert.True(t, allBytes(img.Texels(0, 0), 0))
}

func TestIncompatibleRedefinitionReadbackFailure(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	defineChain(t, ctx, tex, 8, 2, 1)
	require.NoError(t, tex.SyncState(ctx, CommandDraw))

	dev.FailReads = backendtest.ErrInjected
	err := tex.SetImage(ctx, Target2D, 1, backend.GLRGBA8, extent(2, 2), rgba(2, 2, 9), Unpack{})
	assert.ErrorIs(t, err, backendtest.ErrInjected)
	assert.False(t, tex.Image().IsInitialized())
	assert.True(t, tex.Image().HasStagedUpdatesForLevel(1), "the new level contents stay staged")

	dev.FailReads = nil
	require.NoError(t, tex.SetImage(ctx, Target2D, 1, backend.GLRGBA8, extent(4, 4), rgba(4, 4, 7), Unpack{}))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	assert.Equal(t, 2, dev.Stats.ImagesCreated)
	assert.True(t, allBytes(dev.LastImage().Texels(1, 0), 7))
}

func TestMaxLevelShrinkKeepsImage(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	defineChain(t, ctx, tex, 4, 3, 1)
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	require.Equal(t, 3, dev.LastImage().Desc().LevelCount)

	require.NoError(t, tex.SetMaxLevel(ctx, 1))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	require.NoError(t, tex.SetMaxLevel(ctx, 2))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))

	assert.Equal(t, 1, dev.Stats.ImagesCreated)
	assert.Zero(t, dev.Stats.ImagesDestroyed)
}

func TestUsageChangeReallocates(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 4), rgba(4, 4, 9), Unpack{}))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))

	tex.SetUsage(ctx, backend.ImageUsageStorage)
	require.NoError(t, tex.SyncState(ctx, CommandDraw))

	assert.Equal(t, 2, dev.Stats.ImagesCreated)
	img := dev.LastImage()
	assert.NotZero(t, img.Desc().Usage&backend.ImageUsageStorage)
	assert.True(t, allBytes(img.Texels(0, 0), 9))
}

func TestSetStorageAllocatesImmediately(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D, WithLabel("atlas"))
	require.NoError(t, tex.SetStorage(ctx, 3, backend.GLRGBA8, extent(8, 8)))

	assert.Equal(t, 1, dev.Stats.ImagesCreated)
	img := dev.LastImage()
	assert.Equal(t, 3, img.Desc().LevelCount)
	assert.Equal(t, "atlas", img.Desc().Label)
	assert.True(t, tex.State().ImmutableFormat())
	assert.Equal(t, extent(2, 2), tex.State().ImageDesc(0, 2).Extents)

	require.NoError(t, tex.SetSubImage(ctx, Target2D, 2, backend.Box{Extents: extent(2, 2)}, rgba(2, 2, 4), Unpack{}))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	require.Len(t, img.Uploads(), 1)
	assert.Equal(t, 2, img.Uploads()[0].MipLevel)

	require.NoError(t, tex.SetMaxLevel(ctx, 1))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	assert.Equal(t, 1, dev.Stats.ImagesCreated)

	rt, err := tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{Level: 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, rt.NativeLevel())
}

func TestSubImageUnpack(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 2), nil, Unpack{}))

	src := make([]byte, 4*2*4)
	for i := range 8 {
		copy(src[i*4:], bytes.Repeat([]byte{byte(i + 1)}, 4))
	}
	area := backend.Box{Offset: backend.Offset{X: 1}, Extents: extent(2, 2)}
	require.NoError(t, tex.SetSubImage(ctx, Target2D, 0, area, src, Unpack{RowLength: 4, SkipPixels: 1}))
	require.NoError(t, tex.SyncState(ctx, CommandDraw))

	texels := dev.LastImage().Texels(0, 0)
	pixel := func(x, y int) byte { return texels[(y*4+x)*4] }
	assert.Equal(t, byte(0), pixel(0, 0))
	assert.Equal(t, byte(2), pixel(1, 0))
	assert.Equal(t, byte(3), pixel(2, 0))
	assert.Equal(t, byte(6), pixel(1, 1))
	assert.Equal(t, byte(7), pixel(2, 1))
	assert.Equal(t, byte(0), pixel(3, 1))
}

func TestRobustInitStagesZeros(t *testing.T) {
	ctx, _ := newTestContext(t, glres.WithRobustResourceInit())
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 4), nil, Unpack{}))
	assert.True(t, tex.Image().HasStagedUpdatesForLevel(0))

	plain, _ := newTestContext(t)
	other := New(2, Type2D)
	require.NoError(t, other.SetImage(plain, Target2D, 0, backend.GLRGBA8, extent(4, 4), nil, Unpack{}))
	assert.False(t, other.Image().HasStagedUpdates())
}

func TestCubeMapRenderTargets(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, TypeCubeMap)
	for face := range CubeFaceCount {
		require.NoError(t, tex.SetImage(ctx, CubeFaceTarget(face), 0, backend.GLRGBA8, extent(16, 16),
			rgba(16, 16, byte(face+1)), Unpack{}))
	}
	require.NoError(t, tex.SetImage(ctx, CubeFaceTarget(1), 0, backend.GLRGBA8, extent(16, 16),
		rgba(16, 16, 0x42), Unpack{}))
	assert.Len(t, tex.Image().StagedUpdates(), CubeFaceCount)

	rt, err := tex.GetAttachmentRenderTarget(ctx, CubeFaceTarget(3), ImageIndex{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, rt.Layer())
	assert.Equal(t, CubeFaceCount, tex.RenderTargetCount())

	img := dev.LastImage()
	assert.Equal(t, backend.ImageCube, img.Desc().Type)
	assert.Equal(t, CubeFaceCount, img.Desc().LayerCount)
	assert.True(t, allBytes(img.Texels(0, 1), 0x42))
	assert.True(t, allBytes(img.Texels(0, 5), 6))

	require.NoError(t, tex.SetImage(ctx, CubeFaceTarget(2), 0, backend.GLRGBA8, extent(16, 16), nil, Unpack{}))
	assert.True(t, tex.Image().IsInitialized())
	assert.Zero(t, dev.Stats.ImagesDestroyed)

	_, err = tex.GetAttachmentRenderTarget(ctx, CubeFaceTarget(0), ImageIndex{LayerCount: EntireLevel}, 1)
	assert.ErrorIs(t, err, glres.ErrUnsupported)
}

func TestUnsupportedPaths(t *testing.T) {
	ctx, _ := newTestContext(t)

	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 4), nil, Unpack{}))
	_, err := tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 4)
	assert.ErrorIs(t, err, glres.ErrUnsupported)

	for _, typ := range []Type{Type2DArray, Type3D, TypeCubeMapArray} {
		arr := New(2, typ)
		_, err := arr.GetAttachmentRenderTarget(ctx, Target2DArray, ImageIndex{}, 1)
		assert.ErrorIs(t, err, glres.ErrUnsupported, typ.String())
	}

	err = tex.SetImage(ctx, Target2D, 0, 0x1234, extent(4, 4), nil, Unpack{})
	assert.ErrorIs(t, err, glres.ErrUnsupported)

	ops := map[string]func() error{
		"CopyImage":       func() error { return tex.CopyImage(ctx, Target2D, 0, backend.Box{}, backend.GLRGBA8) },
		"CopySubImage":    func() error { return tex.CopySubImage(ctx, Target2D, 0, backend.Offset{}, backend.Box{}) },
		"CopyTexture":     func() error { return tex.CopyTexture(ctx, Target2D, 0, backend.GLRGBA8, New(3, Type2D), 0) },
		"CopySubTexture":  func() error { return tex.CopySubTexture(ctx, Target2D, 0, backend.Offset{}, New(3, Type2D), 0, backend.Box{}) },
		"CopyCompressed":  func() error { return tex.CopyCompressedTexture(ctx, New(3, Type2D)) },
		"CopyRenderbuf":   func() error { return tex.CopyRenderbufferSubData(ctx, 0, backend.Offset{}, backend.Box{}) },
		"CopyTextureSub":  func() error { return tex.CopyTextureSubData(ctx, New(3, Type2D), 0, backend.Offset{}, 0, backend.Offset{}, extent(1, 1)) },
		"StorageMS":       func() error { return tex.SetStorageMultisample(ctx, 4, backend.GLRGBA8, extent(4, 4), true) },
		"ImageExternal":   func() error { return tex.SetImageExternal(ctx) },
		"BindTexImage":    func() error { return tex.BindTexImage(ctx) },
		"ReleaseTexImage": func() error { return tex.ReleaseTexImage(ctx) },
	}
	for name, op := range ops {
		assert.ErrorIs(t, op(), glres.ErrUnsupported, name)
	}
}

func TestAllocationFailure(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 4), rgba(4, 4, 1), Unpack{}))

	dev.FailImages = backendtest.ErrInjected
	_, err := tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
	assert.ErrorIs(t, err, glres.ErrOutOfMemory)
	assert.ErrorIs(t, err, backendtest.ErrInjected)
	assert.False(t, tex.Image().IsInitialized())
	assert.True(t, tex.Image().HasStagedUpdates())

	_, err = tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, dev.Stats.ImagesCreated)
}

func TestUploadFailureKeepsUpdatesStaged(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 4), rgba(4, 4, 1), Unpack{}))

	dev.FailUploads = backendtest.ErrInjected
	err := tex.SyncState(ctx, CommandDraw)
	assert.ErrorIs(t, err, glres.ErrOutOfMemory)
	assert.True(t, tex.Image().HasStagedUpdates())

	dev.FailUploads = nil
	require.NoError(t, tex.SyncState(ctx, CommandDraw))
	assert.False(t, tex.Image().HasStagedUpdates())
	assert.Equal(t, 1, dev.Stats.ImagesCreated)
}

func TestExternalImageOwnership(t *testing.T) {
	ctx, dev := newTestContext(t)
	src := New(1, Type2D)
	require.NoError(t, src.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(8, 8), rgba(8, 8, 3), Unpack{}))
	_, err := src.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
	require.NoError(t, err)

	img := src.Image()
	src.ReleaseOwnershipOfImage(ctx)
	assert.Nil(t, src.Image())
	assert.True(t, img.IsInitialized())

	dst := New(2, Type2D)
	require.NoError(t, dst.SetEGLImageTarget(ctx, img))
	assert.False(t, dst.OwnsImage())
	assert.Equal(t, extent(8, 8), dst.State().ImageDesc(0, 0).Extents)

	rt, err := dst.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
	require.NoError(t, err)
	assert.Same(t, img, rt.Image())
	assert.Equal(t, 1, dev.Stats.ImagesCreated)

	require.NoError(t, dst.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 4), nil, Unpack{}))
	assert.True(t, dst.OwnsImage())
	assert.NotSame(t, img, dst.Image())
	assert.True(t, img.IsInitialized())
	assert.Zero(t, dev.Stats.ImagesDestroyed)

	src.OnDestroy(ctx)
	dst.OnDestroy(ctx)
	assert.Zero(t, dev.Stats.ImagesDestroyed)
}

func TestImportNativeImage(t *testing.T) {
	ctx, dev := newTestContext(t)
	native, err := dev.CreateImage(&backend.ImageDesc{
		Type:       backend.Image2D,
		Format:     backend.LookupFormat(backend.GLRGBA8),
		Extents:    extent(4, 4),
		LevelCount: 1,
		LayerCount: 1,
		Usage:      backend.DefaultImageUsage,
	})
	require.NoError(t, err)

	tex := New(1, Type2D)
	require.NoError(t, tex.ImportNativeImage(ctx, native))
	rt, err := tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
	require.NoError(t, err)
	assert.Same(t, native, rt.Image().Native())

	tex.OnDestroy(ctx)
	assert.Zero(t, dev.Stats.ImagesDestroyed)
	assert.Equal(t, 1, dev.Stats.ViewsDestroyed)
}

func TestImageMessagesForwarded(t *testing.T) {
	ctx, _ := newTestContext(t)
	tex := New(1, Type2D)
	rec := &stateRecorder{}
	tex.AddObserver(rec, 7)

	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 4), rgba(4, 4, 1), Unpack{}))
	rec.msgs = nil
	require.NoError(t, tex.SyncState(ctx, CommandDraw))

	assert.Equal(t, []subject.Message{subject.SubjectChanged, subject.InitializationComplete}, rec.msgs)
}

func TestOnDestroyReleasesEverything(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex := New(1, Type2D)
	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 4), nil, Unpack{}))
	_, err := tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
	require.NoError(t, err)

	tex.OnDestroy(ctx)
	assert.Equal(t, 1, dev.Stats.ImagesDestroyed)
	assert.Equal(t, 1, dev.Stats.ViewsDestroyed)
	assert.Zero(t, dev.LiveImages())
	assert.False(t, tex.HasObservers())
}

func TestRenderTargetOfUndefinedLevel(t *testing.T) {
	ctx, _ := newTestContext(t)
	tex := New(1, Type2D)
	_, err := tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{}, 1)
	assert.ErrorIs(t, err, ErrIncomplete)

	require.NoError(t, tex.SetImage(ctx, Target2D, 0, backend.GLRGBA8, extent(4, 4), nil, Unpack{}))
	_, err = tex.GetAttachmentRenderTarget(ctx, Target2D, ImageIndex{Level: 3}, 1)
	assert.ErrorIs(t, err, ErrIncomplete)
}

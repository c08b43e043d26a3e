// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package share

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glres"
	"github.com/gogpu/glres/backend"
	"github.com/gogpu/glres/backend/backendtest"
	"github.com/gogpu/glres/buffer"
	"github.com/gogpu/glres/resource"
	"github.com/gogpu/glres/texture"
	"github.com/gogpu/glres/vertexarray"
)

func newGroup(t *testing.T) (*Group, *glres.Context, *backendtest.Device) {
	t.Helper()
	dev := backendtest.NewDevice()
	ctx := glres.NewContext(dev)
	return NewGroup(ctx.ShareGroup()), ctx, dev
}

func TestGenReservesNames(t *testing.T) {
	g, _, _ := newGroup(t)

	ids := g.GenBuffers(3)
	assert.Equal(t, []resource.ID{1, 2, 3}, ids)
	assert.Equal(t, 3, g.BufferCount())
	for _, id := range ids {
		assert.False(t, g.IsBuffer(id), "name %d has no object before first bind", id)
		assert.Nil(t, g.Buffer(id))
	}

	// Buffer and texture names are separate namespaces.
	assert.Equal(t, []resource.ID{1}, g.GenTextures(1))
}

func TestCheckBufferAllocation(t *testing.T) {
	g, _, _ := newGroup(t)
	id := g.GenBuffers(1)[0]

	buf := g.CheckBufferAllocation(id)
	require.NotNil(t, buf)
	assert.Equal(t, id, buf.ID())
	assert.Equal(t, 1, buf.RefCount())
	assert.Same(t, buf, g.CheckBufferAllocation(id))
	assert.True(t, g.IsBuffer(id))

	assert.Nil(t, g.CheckBufferAllocation(resource.InvalidID))

	// A name never generated is reserved on first bind.
	other := g.CheckBufferAllocation(42)
	require.NotNil(t, other)
	assert.NotEqual(t, resource.ID(42), g.GenBuffers(1)[0])
}

func TestDeleteBufferDestroysStorage(t *testing.T) {
	g, ctx, dev := newGroup(t)
	id := g.GenBuffers(1)[0]
	buf := g.CheckBufferAllocation(id)
	require.NoError(t, buf.BufferData(ctx, buffer.BindingArray, make([]byte, 16), 16, buffer.StaticDraw))
	require.Equal(t, 1, dev.Stats.BuffersCreated)

	assert.True(t, g.DeleteBuffer(ctx, id))
	assert.Equal(t, 1, dev.Stats.BuffersDestroyed)
	assert.False(t, g.IsBuffer(id))
	assert.Zero(t, g.BufferCount())
	assert.False(t, g.DeleteBuffer(ctx, id))

	// The freed name is handed out again.
	assert.Equal(t, id, g.GenBuffers(1)[0])
}

func TestDeleteBufferStillBound(t *testing.T) {
	g, ctx, dev := newGroup(t)
	id := g.GenBuffers(1)[0]
	buf := g.CheckBufferAllocation(id)
	require.NoError(t, buf.BufferData(ctx, buffer.BindingArray, make([]byte, 16), 16, buffer.StaticDraw))

	va := vertexarray.New(ctx, 1)
	va.BindVertexBuffer(0, buf, 0, 4)

	require.True(t, g.DeleteBuffer(ctx, id))
	assert.Zero(t, dev.Stats.BuffersDestroyed)
	assert.Equal(t, 1, buf.RefCount())

	va.DetachBuffer(buf)
	assert.Equal(t, 1, dev.Stats.BuffersDestroyed)
}

func TestCheckTextureAllocation(t *testing.T) {
	g, _, _ := newGroup(t)
	id := g.GenTextures(1)[0]

	tex, err := g.CheckTextureAllocation(id, texture.TypeCubeMap, texture.WithLabel("sky"))
	require.NoError(t, err)
	require.NotNil(t, tex)
	assert.Equal(t, texture.TypeCubeMap, tex.Type())
	assert.True(t, g.IsTexture(id))

	again, err := g.CheckTextureAllocation(id, texture.TypeCubeMap)
	require.NoError(t, err)
	assert.Same(t, tex, again)

	_, err = g.CheckTextureAllocation(id, texture.Type2D)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	tex, err = g.CheckTextureAllocation(resource.InvalidID, texture.Type2D)
	require.NoError(t, err)
	assert.Nil(t, tex)
}

func TestDeleteTextureReleasesImage(t *testing.T) {
	g, ctx, dev := newGroup(t)
	id := g.GenTextures(1)[0]
	tex, err := g.CheckTextureAllocation(id, texture.Type2D)
	require.NoError(t, err)
	require.NoError(t, tex.SetImage(ctx, texture.Target2D, 0, backend.GLRGBA8,
		backend.Extents{Width: 4, Height: 4, Depth: 1}, make([]byte, 64), texture.Unpack{}))
	require.NoError(t, tex.EnsureImageInitialized(ctx))
	require.Equal(t, 1, dev.Stats.ImagesCreated)

	assert.True(t, g.DeleteTexture(ctx, id))
	assert.Equal(t, 1, dev.Stats.ImagesDestroyed)
	assert.Nil(t, g.Texture(id))
	assert.Zero(t, g.TextureCount())
}

func TestReleaseDestroysEverything(t *testing.T) {
	g, ctx, dev := newGroup(t)
	for _, id := range g.GenBuffers(4) {
		buf := g.CheckBufferAllocation(id)
		require.NoError(t, buf.BufferData(ctx, buffer.BindingArray, nil, 8, buffer.DynamicDraw))
	}
	g.GenTextures(2)

	g.Release(ctx)
	assert.Equal(t, 4, dev.Stats.BuffersDestroyed)
	assert.Zero(t, g.BufferCount())
	assert.Zero(t, g.TextureCount())
}

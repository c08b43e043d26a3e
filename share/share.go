// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package share manages the buffer and texture names of a share group.
//
// Names are reserved by Gen and bound to an object on first use through
// the Check*Allocation calls, as GL does on the first bind. The group holds
// one reference to every object. Deleting a name drops that reference, and
// the object is destroyed once every other holder, such as a vertex array,
// has let go of it as well.
package share

import (
	"errors"
	"fmt"

	"github.com/gogpu/glres"
	"github.com/gogpu/glres/buffer"
	"github.com/gogpu/glres/resource"
	"github.com/gogpu/glres/texture"
)

// ErrTypeMismatch is returned when a texture name is bound to a target of
// another type than the one it was created with.
var ErrTypeMismatch = errors.New("share: texture type mismatch")

type object interface {
	comparable
	AddRef()
	Release() bool
	OnDestroy(ctx *glres.Context)
}

// manager maps names of one object kind to objects.
type manager[T object] struct {
	kind    string
	handles *resource.HandleAllocator
	objects *resource.Map[T]
}

func newManager[T object](kind string) manager[T] {
	return manager[T]{
		kind:    kind,
		handles: resource.NewHandleAllocator(),
		objects: resource.NewMap[T](),
	}
}

func (m *manager[T]) gen(n int) []resource.ID {
	ids := make([]resource.ID, n)
	var zero T
	for i := range ids {
		ids[i] = m.handles.Allocate()
		m.objects.Assign(ids[i], zero)
	}
	return ids
}

func (m *manager[T]) lookup(id resource.ID) T {
	v, _ := m.objects.Query(id)
	return v
}

func (m *manager[T]) isAllocated(id resource.ID) bool {
	var zero T
	return m.lookup(id) != zero
}

// checkAllocation returns the object named id, creating it when the name
// has none yet. Names that were never generated are reserved on the fly.
func (m *manager[T]) checkAllocation(id resource.ID, create func(resource.ID) T) T {
	var zero T
	if id == resource.InvalidID {
		return zero
	}
	v, ok := m.objects.Query(id)
	if ok && v != zero {
		return v
	}
	if !ok {
		m.handles.Reserve(id)
	}
	v = create(id)
	v.AddRef()
	m.objects.Assign(id, v)
	return v
}

func (m *manager[T]) remove(ctx *glres.Context, id resource.ID) bool {
	v, ok := m.objects.Erase(id)
	if !ok {
		return false
	}
	m.handles.Release(id)
	var zero T
	if v != zero && v.Release() {
		v.OnDestroy(ctx)
		glres.Logger().Debug("share: object destroyed", "kind", m.kind, "id", id)
	}
	return true
}

// created returns the objects bound to names, in name order.
func (m *manager[T]) created() []T {
	var out []T
	var zero T
	for _, id := range m.objects.IDs() {
		if v := m.lookup(id); v != zero {
			out = append(out, v)
		}
	}
	return out
}

func (m *manager[T]) removeAll(ctx *glres.Context) {
	for _, id := range m.objects.IDs() {
		m.remove(ctx, id)
	}
}

// Group holds the buffers and textures of one share group.
type Group struct {
	shareGroup *glres.ShareGroup
	buffers    manager[*buffer.Buffer]
	textures   manager[*texture.Texture]
}

// NewGroup returns an empty group for sg.
func NewGroup(sg *glres.ShareGroup) *Group {
	return &Group{
		shareGroup: sg,
		buffers:    newManager[*buffer.Buffer]("buffer"),
		textures:   newManager[*texture.Texture]("texture"),
	}
}

// ShareGroup returns the share group the names belong to.
func (g *Group) ShareGroup() *glres.ShareGroup { return g.shareGroup }

// GenBuffers reserves n buffer names.
func (g *Group) GenBuffers(n int) []resource.ID { return g.buffers.gen(n) }

// CheckBufferAllocation returns the buffer named id, creating it on first
// use. It returns nil for name zero.
func (g *Group) CheckBufferAllocation(id resource.ID) *buffer.Buffer {
	return g.buffers.checkAllocation(id, buffer.New)
}

// Buffer returns the buffer named id, or nil.
func (g *Group) Buffer(id resource.ID) *buffer.Buffer { return g.buffers.lookup(id) }

// IsBuffer reports whether id names a created buffer.
func (g *Group) IsBuffer(id resource.ID) bool { return g.buffers.isAllocated(id) }

// BufferCount returns the number of reserved buffer names.
func (g *Group) BufferCount() int { return g.buffers.objects.Len() }

// Buffers returns the created buffers in name order.
func (g *Group) Buffers() []*buffer.Buffer { return g.buffers.created() }

// DeleteBuffer frees the name id and drops the group's reference to its
// buffer. It reports whether the name was in use.
func (g *Group) DeleteBuffer(ctx *glres.Context, id resource.ID) bool {
	return g.buffers.remove(ctx, id)
}

// GenTextures reserves n texture names.
func (g *Group) GenTextures(n int) []resource.ID { return g.textures.gen(n) }

// CheckTextureAllocation returns the texture named id, creating it with
// typ on first use. A texture created with another type is an error.
func (g *Group) CheckTextureAllocation(id resource.ID, typ texture.Type, opts ...texture.Option) (*texture.Texture, error) {
	t := g.textures.checkAllocation(id, func(id resource.ID) *texture.Texture {
		return texture.New(id, typ, opts...)
	})
	if t != nil && t.Type() != typ {
		return nil, fmt.Errorf("%w: texture %d is %v, bound as %v", ErrTypeMismatch, id, t.Type(), typ)
	}
	return t, nil
}

// Texture returns the texture named id, or nil.
func (g *Group) Texture(id resource.ID) *texture.Texture { return g.textures.lookup(id) }

// IsTexture reports whether id names a created texture.
func (g *Group) IsTexture(id resource.ID) bool { return g.textures.isAllocated(id) }

// TextureCount returns the number of reserved texture names.
func (g *Group) TextureCount() int { return g.textures.objects.Len() }

// Textures returns the created textures in name order.
func (g *Group) Textures() []*texture.Texture { return g.textures.created() }

// DeleteTexture frees the name id and drops the group's reference to its
// texture. It reports whether the name was in use.
func (g *Group) DeleteTexture(ctx *glres.Context, id resource.ID) bool {
	return g.textures.remove(ctx, id)
}

// Release deletes every name. ctx is the last context of the group.
func (g *Group) Release(ctx *glres.Context) {
	g.buffers.removeAll(ctx)
	g.textures.removeAll(ctx)
}

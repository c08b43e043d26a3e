// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import (
	"math"

	"github.com/gogpu/glres"
	"github.com/gogpu/glres/internal/bitmask"
)

// WholeResourceSlot is the slot of an observer that watches the buffer as a
// whole, such as a texture buffer, rather than one of its binding points.
const WholeResourceSlot uint32 = math.MaxUint32

// ContentsObserver is told when the bytes of a buffer change. Vertex arrays
// observe one slot per attribute binding; texture buffers use
// WholeResourceSlot.
//
// OnBufferContentsChange must not add or remove contents observers of the
// buffer it is called from.
type ContentsObserver interface {
	OnBufferContentsChange(slot uint32)
}

type contentsEntry struct {
	observer ContentsObserver
	slot     uint32
}

func (b *Buffer) contentsObserverIndex(o ContentsObserver, slot uint32) int {
	for i, e := range b.contents {
		if e.observer == o && e.slot == slot {
			return i
		}
	}
	return -1
}

// AddContentsObserver registers o for content changes under slot. Adding an
// already registered pair is a no-op.
func (b *Buffer) AddContentsObserver(o ContentsObserver, slot uint32) {
	if b.contentsObserverIndex(o, slot) >= 0 {
		return
	}
	b.contents = append(b.contents, contentsEntry{observer: o, slot: slot})
}

// RemoveContentsObserver removes the first entry matching (o, slot). It is a
// no-op when nothing matches. Registration order is not preserved.
func (b *Buffer) RemoveContentsObserver(o ContentsObserver, slot uint32) {
	i := b.contentsObserverIndex(o, slot)
	if i < 0 {
		return
	}
	last := len(b.contents) - 1
	b.contents[i] = b.contents[last]
	b.contents[last] = contentsEntry{}
	b.contents = b.contents[:last]
}

// HasContentsObserver reports whether (o, slot) is registered.
func (b *Buffer) HasContentsObserver(o ContentsObserver, slot uint32) bool {
	return b.contentsObserverIndex(o, slot) >= 0
}

// ContentsObserverCount returns the number of registered entries.
func (b *Buffer) ContentsObserverCount() int { return len(b.contents) }

func (b *Buffer) onContentsChange() {
	for _, e := range b.contents {
		e.observer.OnBufferContentsChange(e.slot)
	}
}

// MaxVertexAttribBindings bounds the slot space of a BindingMask.
const MaxVertexAttribBindings = 16

// BindingMask is the set of vertex array binding slots a buffer is bound to.
type BindingMask = bitmask.Mask[uint16]

type bindingMaskEntry struct {
	ctx  *glres.Context
	mask BindingMask
}

// bindingMaskTable maps contexts to binding masks. A buffer is shared by few
// contexts, so the table is a short slice searched linearly.
type bindingMaskTable struct {
	entries []bindingMaskEntry
}

func (t *bindingMaskTable) add(ctx *glres.Context, slot int) {
	for i := range t.entries {
		if t.entries[i].ctx == ctx {
			t.entries[i].mask.Set(slot)
			return
		}
	}
	var m BindingMask
	m.Set(slot)
	t.entries = append(t.entries, bindingMaskEntry{ctx: ctx, mask: m})
}

func (t *bindingMaskTable) remove(ctx *glres.Context, slot int) {
	for i := range t.entries {
		if t.entries[i].ctx != ctx {
			continue
		}
		t.entries[i].mask.Reset(slot)
		if t.entries[i].mask.None() {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
		}
		return
	}
}

func (t *bindingMaskTable) maskFor(ctx *glres.Context) BindingMask {
	for _, e := range t.entries {
		if e.ctx == ctx {
			return e.mask
		}
	}
	return BindingMask{}
}

// AddVertexArrayBinding records that a vertex array of ctx binds the buffer
// at slot.
func (b *Buffer) AddVertexArrayBinding(ctx *glres.Context, slot int) {
	b.bindingMasks.add(ctx, slot)
}

// RemoveVertexArrayBinding clears slot for ctx. The context's entry is
// dropped once its mask is empty.
func (b *Buffer) RemoveVertexArrayBinding(ctx *glres.Context, slot int) {
	b.bindingMasks.remove(ctx, slot)
}

// BindingMask returns the slots ctx binds the buffer at. A context with no
// entry gets the empty mask.
func (b *Buffer) BindingMask(ctx *glres.Context) BindingMask {
	return b.bindingMasks.maskFor(ctx)
}

// BindingMaskContexts returns the number of contexts with a non-empty mask.
func (b *Buffer) BindingMaskContexts() int { return len(b.bindingMasks.entries) }

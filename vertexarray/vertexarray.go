// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vertexarray implements GL vertex array objects as dependents of
// the buffers they bind.
//
// A VertexArray observes the contents of every bound buffer and records the
// slots it binds in the buffer's per-context binding mask. The draw path
// reads the accumulated dirty bits with TakeDirty.
package vertexarray

import (
	"fmt"

	"github.com/gogpu/glres"
	"github.com/gogpu/glres/buffer"
	"github.com/gogpu/glres/resource"
	"github.com/gogpu/glres/subject"
)

// MaxBindings is the number of vertex buffer binding slots.
const MaxBindings = buffer.MaxVertexAttribBindings

// ElementArraySlot is the observer slot of the element array buffer. It
// never appears in binding masks.
const ElementArraySlot = MaxBindings

// BindingMask is a set of binding slots.
type BindingMask = buffer.BindingMask

// Binding is one vertex buffer binding point.
type Binding struct {
	Buffer  *buffer.Buffer
	Offset  int64
	Stride  int
	Divisor uint32
}

// Dirty is the state a draw must revalidate.
type Dirty struct {
	// Contents are bindings whose buffer bytes changed.
	Contents BindingMask

	// Storage are bindings whose buffer storage or map state changed.
	Storage BindingMask

	ElementArrayContents bool
	ElementArrayStorage  bool
}

// Any reports whether anything is dirty.
func (d Dirty) Any() bool {
	return d.Contents.Any() || d.Storage.Any() || d.ElementArrayContents || d.ElementArrayStorage
}

// VertexArray is a vertex array object of one context.
type VertexArray struct {
	resource.RefCounted
	resource.DebugLabel

	id  resource.ID
	ctx *glres.Context

	bindings       [MaxBindings]Binding
	observers      [MaxBindings]subject.Binding
	elementArray   *buffer.Buffer
	elementSubject subject.Binding

	dirty  Dirty
	mapped BindingMask
}

// New returns a vertex array of ctx with every slot empty.
func New(ctx *glres.Context, id resource.ID) *VertexArray {
	va := &VertexArray{id: id, ctx: ctx}
	for i := range va.observers {
		va.observers[i] = subject.NewBinding(va, subject.Index(i))
	}
	va.elementSubject = subject.NewBinding(va, subject.Index(ElementArraySlot))
	return va
}

// ID returns the vertex array name.
func (va *VertexArray) ID() resource.ID { return va.id }

// Context returns the owning context.
func (va *VertexArray) Context() *glres.Context { return va.ctx }

// Binding returns the binding at slot.
func (va *VertexArray) Binding(slot int) Binding {
	va.checkSlot(slot)
	return va.bindings[slot]
}

// ElementArrayBuffer returns the bound element array buffer, or nil.
func (va *VertexArray) ElementArrayBuffer() *buffer.Buffer { return va.elementArray }

// BoundSlots returns the slots holding a buffer.
func (va *VertexArray) BoundSlots() BindingMask {
	var m BindingMask
	for i, b := range va.bindings {
		if b.Buffer != nil {
			m.Set(i)
		}
	}
	return m
}

// MappedSlots returns the bound slots whose buffer is currently mapped.
func (va *VertexArray) MappedSlots() BindingMask { return va.mapped }

// Dirty returns the accumulated dirty state without clearing it.
func (va *VertexArray) Dirty() Dirty { return va.dirty }

// TakeDirty returns the accumulated dirty state and clears it.
func (va *VertexArray) TakeDirty() Dirty {
	d := va.dirty
	va.dirty = Dirty{}
	return d
}

func (va *VertexArray) checkSlot(slot int) {
	if slot < 0 || slot >= MaxBindings {
		panic(fmt.Sprintf("vertexarray: binding slot %d out of range [0, %d)", slot, MaxBindings))
	}
}

// BindVertexBuffer binds buf to slot. A nil buf clears the slot.
func (va *VertexArray) BindVertexBuffer(slot int, buf *buffer.Buffer, offset int64, stride int) {
	va.checkSlot(slot)
	b := &va.bindings[slot]
	if b.Buffer != buf {
		va.detach(slot)
		if buf != nil {
			buf.AddRef()
			buf.AddContentsObserver(va, uint32(slot))
			buf.AddVertexArrayBinding(va.ctx, slot)
			buf.OnNonTFBindingChanged(1)
			va.observers[slot].Bind(&buf.Subject)
			va.mapped.SetTo(slot, buf.IsMapped())
		}
		b.Buffer = buf
	}
	b.Offset, b.Stride = offset, stride
	va.dirty.Storage.Set(slot)
}

// SetDivisor sets the instance divisor of slot.
func (va *VertexArray) SetDivisor(slot int, divisor uint32) {
	va.checkSlot(slot)
	va.bindings[slot].Divisor = divisor
	va.dirty.Storage.Set(slot)
}

func (va *VertexArray) detach(slot int) {
	old := va.bindings[slot].Buffer
	if old == nil {
		return
	}
	va.observers[slot].Reset()
	old.RemoveContentsObserver(va, uint32(slot))
	old.RemoveVertexArrayBinding(va.ctx, slot)
	old.OnNonTFBindingChanged(-1)
	va.mapped.Reset(slot)
	va.bindings[slot].Buffer = nil
	va.release(old)
}

// SetElementArrayBuffer binds buf as the element array. A nil buf unbinds.
func (va *VertexArray) SetElementArrayBuffer(buf *buffer.Buffer) {
	if va.elementArray == buf {
		return
	}
	if old := va.elementArray; old != nil {
		va.elementSubject.Reset()
		old.RemoveContentsObserver(va, ElementArraySlot)
		old.OnNonTFBindingChanged(-1)
		va.release(old)
	}
	va.elementArray = buf
	if buf != nil {
		buf.AddRef()
		buf.AddContentsObserver(va, ElementArraySlot)
		buf.OnNonTFBindingChanged(1)
		buf.OnBind(va.ctx, buffer.BindingElementArray)
		va.elementSubject.Bind(&buf.Subject)
	}
	va.dirty.ElementArrayStorage = true
}

// release drops the reference the vertex array held on buf. A buffer whose
// last reference goes away with it is destroyed.
func (va *VertexArray) release(buf *buffer.Buffer) {
	if buf.Release() {
		buf.OnDestroy(va.ctx)
	}
}

// DetachBuffer unbinds buf from every slot and the element array, as when
// the buffer name is deleted while the vertex array is bound.
func (va *VertexArray) DetachBuffer(buf *buffer.Buffer) {
	for slot := range va.bindings {
		if va.bindings[slot].Buffer == buf {
			va.detach(slot)
			va.dirty.Storage.Set(slot)
		}
	}
	if va.elementArray == buf {
		va.SetElementArrayBuffer(nil)
	}
}

// OnBufferContentsChange implements buffer.ContentsObserver.
func (va *VertexArray) OnBufferContentsChange(slot uint32) {
	if slot == ElementArraySlot {
		va.dirty.ElementArrayContents = true
		return
	}
	va.dirty.Contents.Set(int(slot))
}

// OnSubjectStateChange implements subject.Observer. A storage change of a
// buffer dirties every slot this vertex array binds it to, as recorded in
// the buffer's binding mask for the context.
func (va *VertexArray) OnSubjectStateChange(index subject.Index, msg subject.Message) {
	if int(index) == ElementArraySlot {
		if msg != subject.InitializationComplete {
			va.dirty.ElementArrayStorage = true
		}
		return
	}
	slot := int(index)
	buf := va.bindings[slot].Buffer
	if buf == nil {
		return
	}

	switch msg {
	case subject.SubjectMapped:
		va.mapped.Set(slot)
	case subject.SubjectUnmapped:
		va.mapped.Reset(slot)
	case subject.InitializationComplete:
		return
	}
	shared := buf.BindingMask(va.ctx).Intersect(va.slotsOf(buf))
	va.dirty.Storage = va.dirty.Storage.Union(shared)
	va.dirty.Storage.Set(slot)
}

func (va *VertexArray) slotsOf(buf *buffer.Buffer) BindingMask {
	var m BindingMask
	for i, b := range va.bindings {
		if b.Buffer == buf {
			m.Set(i)
		}
	}
	return m
}

// SetLabel changes the debug label.
func (va *VertexArray) SetLabel(label string) {
	va.SetLabelText(label)
}

// OnDestroy unbinds every buffer.
func (va *VertexArray) OnDestroy() {
	for slot := range va.bindings {
		va.detach(slot)
	}
	va.SetElementArrayBuffer(nil)
	va.dirty = Dirty{}
	glres.Logger().Debug("vertexarray: destroyed", "id", va.id, "context", va.ctx.String())
}

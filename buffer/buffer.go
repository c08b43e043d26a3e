// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import (
	"errors"
	"fmt"

	"github.com/gogpu/glres"
	"github.com/gogpu/glres/backend"
	"github.com/gogpu/glres/internal/cache"
	"github.com/gogpu/glres/resource"
	"github.com/gogpu/glres/subject"
)

// UsageNone is the usage of a buffer defined with BufferStorage.
const UsageNone Usage = 0

// nativeUsage lets one native buffer serve every GL binding point.
const nativeUsage = backend.BufferUsageCopySrc | backend.BufferUsageCopyDst |
	backend.BufferUsageVertex | backend.BufferUsageIndex | backend.BufferUsageUniform |
	backend.BufferUsageStorage | backend.BufferUsageIndirect

var errNoStorage = errors.New("buffer: no storage")

// ErrShortData is returned when the data given to define a buffer's storage
// is smaller than the requested size.
var ErrShortData = errors.New("buffer: data shorter than size")

type storageKind uint8

const (
	storageMutable storageKind = iota
	storageImmutable
	storageExternal
)

// State is the GL-visible state of a buffer.
type State struct {
	Usage       Usage
	Size        int64
	AccessFlags uint32
	Access      uint32
	Mapped      bool
	MapOffset   int64
	MapLength   int64

	BindingCount          int
	TFIndexedBindingCount int
	TFGenericBindingCount int

	Immutable    bool
	External     bool
	StorageFlags uint32
	WebGLType    WebGLType
}

// Buffer is a GL buffer object.
//
// Writes to the buffer bytes notify contents observers once per call.
// Changes that leave the bytes alone (mapping, binding, backend feedback) are
// reported through the embedded Subject and never reach contents observers.
type Buffer struct {
	resource.RefCounted
	resource.DebugLabel
	subject.Subject

	id           resource.ID
	state        State
	native       backend.NativeBuffer
	mapPtr       []byte
	contents     []contentsEntry
	bindingMasks bindingMaskTable
	indexRanges  *cache.Cache[indexRangeKey, IndexRange]
}

// New returns an empty buffer named id.
func New(id resource.ID) *Buffer {
	return &Buffer{
		id:          id,
		state:       State{Usage: StaticDraw, Access: WriteOnlyOES},
		indexRanges: newIndexRangeCache(),
	}
}

// ID returns the buffer name.
func (b *Buffer) ID() resource.ID { return b.id }

// State returns a copy of the buffer state.
func (b *Buffer) State() State { return b.state }

// Size returns the size in bytes.
func (b *Buffer) Size() int64 { return b.state.Size }

// Usage returns the usage hint.
func (b *Buffer) Usage() Usage { return b.state.Usage }

// AccessFlags returns the access bits of the current mapping.
func (b *Buffer) AccessFlags() uint32 { return b.state.AccessFlags }

// Access returns the OES_mapbuffer access value.
func (b *Buffer) Access() uint32 { return b.state.Access }

// IsMapped reports whether the buffer is mapped.
func (b *Buffer) IsMapped() bool { return b.state.Mapped }

// MapPointer returns the mapped bytes, or nil when not mapped.
func (b *Buffer) MapPointer() []byte { return b.mapPtr }

// MapOffset returns the offset of the current mapping.
func (b *Buffer) MapOffset() int64 { return b.state.MapOffset }

// MapLength returns the length of the current mapping.
func (b *Buffer) MapLength() int64 { return b.state.MapLength }

// IsImmutable reports whether the storage was defined with BufferStorage.
func (b *Buffer) IsImmutable() bool { return b.state.Immutable }

// IsExternal reports whether the storage was imported.
func (b *Buffer) IsExternal() bool { return b.state.External }

// StorageFlags returns the flags of the storage definition.
func (b *Buffer) StorageFlags() uint32 { return b.state.StorageFlags }

// IsPersistentlyMapped reports whether the storage allows persistent maps.
func (b *Buffer) IsPersistentlyMapped() bool { return b.state.StorageFlags&MapPersistentBit != 0 }

// WebGLType returns the WebGL buffer type.
func (b *Buffer) WebGLType() WebGLType { return b.state.WebGLType }

// IsBoundForTransformFeedback reports whether an indexed transform feedback
// binding references the buffer.
func (b *Buffer) IsBoundForTransformFeedback() bool { return b.state.TFIndexedBindingCount != 0 }

// Native returns the realized storage, or nil.
func (b *Buffer) Native() backend.NativeBuffer { return b.native }

// MemorySize returns the bytes used by the realized storage, falling back to
// the GL size.
func (b *Buffer) MemorySize() int64 {
	if b.native != nil {
		if n := int64(b.native.Size()); n > 0 {
			return n
		}
	}
	return b.state.Size
}

// SetLabel sets the debug label.
func (b *Buffer) SetLabel(_ *glres.Context, label string) error {
	if b.SetLabelText(label) {
		glres.Logger().Debug("buffer: label set", "id", b.id, "label", label)
	}
	return nil
}

// OnDestroy releases the native storage and drops every observer and
// binding mask entry. The buffer does not own its observers.
func (b *Buffer) OnDestroy(_ *glres.Context) {
	if b.native != nil {
		if b.state.Mapped {
			_ = b.native.Unmap()
		}
		b.native.Destroy()
		b.native = nil
	}
	b.mapPtr = nil
	clear(b.contents)
	b.contents = nil
	b.bindingMasks.entries = nil
	b.ResetObservers()
	b.indexRanges.Clear()
}

// OnBind records the first binding target of a WebGL buffer.
func (b *Buffer) OnBind(ctx *glres.Context, target Binding) {
	if !ctx.IsWebGL() {
		return
	}
	if b.state.WebGLType == WebGLTypeUndefined {
		if target == BindingElementArray {
			b.state.WebGLType = WebGLTypeElementArray
		} else {
			b.state.WebGLType = WebGLTypeOtherData
		}
	}
}

// BufferData defines mutable storage of size bytes, filled from data when it
// is not nil.
func (b *Buffer) BufferData(ctx *glres.Context, target Binding, data []byte, size int64, usage Usage) error {
	flags := MapReadBit | MapWriteBit | DynamicStorageBit
	return b.setData(ctx, "bufferData", target, data, size, usage, flags, storageMutable)
}

// BufferStorage defines immutable storage of size bytes.
func (b *Buffer) BufferStorage(ctx *glres.Context, target Binding, size int64, data []byte, flags uint32) error {
	return b.setData(ctx, "bufferStorage", target, data, size, UsageNone, flags, storageImmutable)
}

// BufferStorageExternal defines immutable storage backed by client memory.
func (b *Buffer) BufferStorageExternal(ctx *glres.Context, target Binding, size int64, client []byte, flags uint32) error {
	return b.setData(ctx, "bufferStorageExternal", target, client, size, UsageNone, flags, storageExternal)
}

func (b *Buffer) setData(ctx *glres.Context, op string, target Binding, data []byte, size int64,
	usage Usage, flags uint32, kind storageKind) error {
	if data != nil && int64(len(data)) < size {
		return fmt.Errorf("%s: %w: %d bytes for %d byte buffer", op, ErrShortData, len(data), size)
	}
	// Redefining the storage of a mapped buffer unmaps it. The new contents
	// are signalled once below.
	if b.state.Mapped {
		if err := b.unmapNative(ctx); err != nil {
			return err
		}
	}

	payload := data
	if payload == nil && ctx.RobustResourceInit() && size > 0 {
		payload = make([]byte, size)
	}

	replaced, err := b.realize(ctx, target, size, payload)
	if err != nil {
		// The contents are undefined after a failed allocation.
		b.indexRanges.Clear()
		b.state.Size = 0
		b.OnStateChange(subject.SubjectChanged)
		return ctx.Fail(op, err)
	}

	sizeChanged := size != b.state.Size
	b.indexRanges.Clear()
	b.state.Usage = usage
	b.state.Size = size
	b.state.Immutable = kind != storageMutable
	b.state.External = kind == storageExternal
	b.state.StorageFlags = flags

	switch {
	case sizeChanged:
		b.OnStateChange(subject.SubjectChanged)
	case replaced:
		b.OnStateChange(subject.InternalMemoryAllocationChanged)
	}
	b.onContentsChange()
	return nil
}

// realize makes the native storage size bytes long and writes payload into
// it. It reports whether existing storage was replaced.
func (b *Buffer) realize(ctx *glres.Context, target Binding, size int64, payload []byte) (bool, error) {
	reuse := b.native != nil && size > 0 && b.native.Size() == uint64(size)
	replaced := false
	if !reuse {
		if b.native != nil {
			b.native.Destroy()
			b.native = nil
			replaced = true
		}
		if size > 0 {
			if ctx.Device() == nil {
				return replaced, errNoStorage
			}
			nb, err := ctx.Device().CreateBuffer(&backend.BufferDesc{
				Label: b.Label(),
				Size:  uint64(size),
				Usage: nativeUsage,
			})
			if err != nil {
				return replaced, fmt.Errorf("create %d byte buffer: %w", size, err)
			}
			b.native = nb
			glres.Logger().Debug("buffer: storage allocated",
				"id", b.id, "size", size, "target", target.String(), "replaced", replaced)
		}
	}
	if payload != nil && size > 0 {
		if err := b.native.Write(0, payload[:size]); err != nil {
			return replaced, fmt.Errorf("write %d bytes: %w", size, err)
		}
	}
	return replaced, nil
}

// BufferSubData writes data at offset.
func (b *Buffer) BufferSubData(ctx *glres.Context, _ Binding, data []byte, offset int64) error {
	if len(data) > 0 {
		if b.native == nil {
			return ctx.Fail("bufferSubData", errNoStorage)
		}
		if err := b.native.Write(uint64(offset), data); err != nil {
			return ctx.Fail("bufferSubData", err)
		}
	}
	b.invalidateIndexRanges(offset, int64(len(data)))
	b.onContentsChange()
	return nil
}

// CopyBufferSubData copies size bytes from src into this buffer.
func (b *Buffer) CopyBufferSubData(ctx *glres.Context, src *Buffer, srcOffset, dstOffset, size int64) error {
	if size > 0 {
		if b.native == nil || src.native == nil {
			return ctx.Fail("copyBufferSubData", errNoStorage)
		}
		if err := b.native.CopyFrom(src.native, uint64(srcOffset), uint64(dstOffset), uint64(size)); err != nil {
			return ctx.Fail("copyBufferSubData", err)
		}
	}
	b.invalidateIndexRanges(dstOffset, size)
	b.onContentsChange()
	return nil
}

// GetSubData reads len(out) bytes at offset.
func (b *Buffer) GetSubData(ctx *glres.Context, offset int64, out []byte) error {
	if len(out) == 0 {
		return nil
	}
	if b.native == nil {
		return ctx.Fail("getSubData", errNoStorage)
	}
	return ctx.Fail("getSubData", b.native.Read(uint64(offset), out))
}

func (b *Buffer) mapNative(ctx *glres.Context, op string, offset, length int64, write bool) ([]byte, error) {
	if b.native == nil || length == 0 {
		return []byte{}, nil
	}
	ptr, err := b.native.Map(uint64(offset), uint64(length), write)
	if err != nil {
		return nil, ctx.Fail(op, err)
	}
	return ptr, nil
}

// Map maps the whole buffer for writing. access is WriteOnlyOES.
func (b *Buffer) Map(ctx *glres.Context, access uint32) error {
	if b.state.Mapped {
		panic(fmt.Sprintf("buffer: map of mapped buffer %d", b.id))
	}
	ptr, err := b.mapNative(ctx, "map", 0, b.state.Size, true)
	if err != nil {
		return err
	}

	b.mapPtr = ptr
	b.state.Mapped = true
	b.state.MapOffset = 0
	b.state.MapLength = b.state.Size
	b.state.Access = access
	b.state.AccessFlags = MapWriteBit
	b.indexRanges.Clear()

	b.OnStateChange(subject.SubjectMapped)
	return nil
}

// MapRange maps [offset, offset+length) with the given access bits.
func (b *Buffer) MapRange(ctx *glres.Context, offset, length int64, access uint32) error {
	if b.state.Mapped {
		panic(fmt.Sprintf("buffer: map of mapped buffer %d", b.id))
	}
	if offset+length > b.state.Size {
		panic(fmt.Sprintf("buffer: map range [%d, %d) exceeds size %d", offset, offset+length, b.state.Size))
	}
	write := access&MapWriteBit != 0
	ptr, err := b.mapNative(ctx, "mapRange", offset, length, write)
	if err != nil {
		return err
	}

	b.mapPtr = ptr
	b.state.Mapped = true
	b.state.MapOffset = offset
	b.state.MapLength = length
	b.state.Access = WriteOnlyOES
	b.state.AccessFlags = access
	if write {
		b.invalidateIndexRanges(offset, length)
	}

	b.OnStateChange(subject.SubjectMapped)
	return nil
}

// Unmap ends the current mapping. It reports whether the buffer contents
// survived the mapping, which is always the case for this layer. Unmapping
// a write-enabled mapping counts as a content change.
func (b *Buffer) Unmap(ctx *glres.Context) (bool, error) {
	if !b.state.Mapped {
		panic(fmt.Sprintf("buffer: unmap of unmapped buffer %d", b.id))
	}
	wrote := b.state.AccessFlags&MapWriteBit != 0
	if err := b.unmapNative(ctx); err != nil {
		return false, err
	}
	if wrote {
		b.onContentsChange()
	}
	return true, nil
}

// unmapNative ends the mapping and signals SubjectUnmapped. Content
// observers are left to the caller.
func (b *Buffer) unmapNative(ctx *glres.Context) error {
	if b.native != nil && b.state.MapLength > 0 {
		if err := b.native.Unmap(); err != nil {
			return ctx.Fail("unmap", err)
		}
	}

	b.mapPtr = nil
	b.state.Mapped = false
	b.state.MapOffset = 0
	b.state.MapLength = 0
	b.state.Access = WriteOnlyOES
	b.state.AccessFlags = 0

	b.OnStateChange(subject.SubjectUnmapped)
	return nil
}

// OnDataChanged reports that the bytes were written outside of this
// buffer's entry points, for example by transform feedback or a pixel pack.
func (b *Buffer) OnDataChanged(_ *glres.Context) {
	b.indexRanges.Clear()
	b.onContentsChange()
}

// ApplyImplFeedback forwards backend feedback as state changes.
func (b *Buffer) ApplyImplFeedback(_ *glres.Context, fb Feedback) {
	if fb.InternalMemoryAllocationChanged {
		b.OnStateChange(subject.InternalMemoryAllocationChanged)
	}
	if fb.StateChanged {
		b.OnStateChange(subject.SubjectChanged)
	}
}

// GetIndexRange returns the range of count indices of type typ at offset.
// Results are cached until the bytes they were computed from change.
func (b *Buffer) GetIndexRange(ctx *glres.Context, typ IndexType, offset uint64, count int,
	primitiveRestart bool) (IndexRange, error) {
	key := indexRangeKey{typ: typ, offset: offset, count: count, primitiveRestart: primitiveRestart}
	if r, ok := b.indexRanges.Get(key); ok {
		return r, nil
	}
	if count == 0 {
		return IndexRange{}, nil
	}
	if b.native == nil {
		return IndexRange{}, ctx.Fail("getIndexRange", errNoStorage)
	}

	data := make([]byte, count*typ.Size())
	if err := b.native.Read(offset, data); err != nil {
		return IndexRange{}, ctx.Fail("getIndexRange", err)
	}
	r := ComputeIndexRange(typ, data, count, primitiveRestart)
	b.indexRanges.Set(key, r)
	return r, nil
}

// CachedIndexRanges returns the number of cached index ranges.
func (b *Buffer) CachedIndexRanges() int { return b.indexRanges.Len() }

func (b *Buffer) invalidateIndexRanges(offset, size int64) {
	if size <= 0 {
		return
	}
	b.indexRanges.DeleteFunc(func(k indexRangeKey, _ IndexRange) bool {
		return k.overlaps(uint64(offset), uint64(size))
	})
}

// OnNonTFBindingChanged adjusts the count of bindings other than transform
// feedback.
func (b *Buffer) OnNonTFBindingChanged(incr int) {
	b.state.BindingCount += incr
	b.checkBindingCounts()
}

// OnTFBindingChanged records a transform feedback binding or unbinding.
// Indexed bindings are reported to observers.
func (b *Buffer) OnTFBindingChanged(_ *glres.Context, bound, indexed bool) {
	d := 1
	if !bound {
		d = -1
	}
	b.state.BindingCount += d
	if indexed {
		b.state.TFIndexedBindingCount += d
		b.checkBindingCounts()
		b.OnStateChange(subject.BindingChanged)
		return
	}
	b.state.TFGenericBindingCount += d
	b.checkBindingCounts()
}

func (b *Buffer) checkBindingCounts() {
	s := b.state
	if s.BindingCount < 0 || s.TFIndexedBindingCount < 0 || s.TFGenericBindingCount < 0 ||
		s.TFIndexedBindingCount > s.BindingCount {
		panic(fmt.Sprintf("buffer: binding counts of buffer %d out of balance: total %d, tf indexed %d, tf generic %d",
			b.id, s.BindingCount, s.TFIndexedBindingCount, s.TFGenericBindingCount))
	}
}

// HasWebGLXFBBindingConflict reports whether a WebGL buffer is bound for
// transform feedback and somewhere else at the same time. The generic
// transform feedback binding point does not count as another use.
func (b *Buffer) HasWebGLXFBBindingConflict(isWebGL bool) bool {
	if !isWebGL {
		return false
	}
	s := b.state
	return s.TFIndexedBindingCount > 0 &&
		s.TFIndexedBindingCount != s.BindingCount-s.TFGenericBindingCount
}

// IsDoubleBoundForTransformFeedback reports whether more than one indexed
// transform feedback binding references the buffer.
func (b *Buffer) IsDoubleBoundForTransformFeedback() bool {
	return b.state.TFIndexedBindingCount > 1
}

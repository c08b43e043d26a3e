// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"container/heap"
	"maps"
	"slices"
)

// idHeap is a min-heap of released names.
type idHeap []ID

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(ID)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// HandleAllocator hands out object names. Released names are reused
// smallest first, and names reserved by the client are skipped.
type HandleAllocator struct {
	next     ID
	released idHeap
	reserved map[ID]struct{}
}

// NewHandleAllocator returns an allocator whose first name is 1.
func NewHandleAllocator() *HandleAllocator {
	return &HandleAllocator{next: 1, reserved: make(map[ID]struct{})}
}

// Allocate returns an unused name.
func (a *HandleAllocator) Allocate() ID {
	for a.released.Len() > 0 {
		id := heap.Pop(&a.released).(ID)
		if _, taken := a.reserved[id]; !taken {
			return id
		}
	}
	for {
		id := a.next
		a.next++
		if _, taken := a.reserved[id]; !taken {
			return id
		}
	}
}

// Reserve marks id as used. It reports false if id is invalid or already
// reserved.
func (a *HandleAllocator) Reserve(id ID) bool {
	if id == InvalidID {
		return false
	}
	if _, taken := a.reserved[id]; taken {
		return false
	}
	a.reserved[id] = struct{}{}
	return true
}

// Release returns id to the pool.
func (a *HandleAllocator) Release(id ID) {
	if id == InvalidID {
		return
	}
	if _, taken := a.reserved[id]; taken {
		delete(a.reserved, id)
		if id >= a.next {
			return
		}
	}
	heap.Push(&a.released, id)
}

// Map stores objects by name.
type Map[T any] struct {
	m map[ID]T
}

// NewMap returns an empty map.
func NewMap[T any]() *Map[T] {
	return &Map[T]{m: make(map[ID]T)}
}

// Assign stores v under id, replacing any previous value.
func (m *Map[T]) Assign(id ID, v T) { m.m[id] = v }

// Query returns the value stored under id.
func (m *Map[T]) Query(id ID) (T, bool) {
	v, ok := m.m[id]
	return v, ok
}

// Contains reports whether id has a value.
func (m *Map[T]) Contains(id ID) bool {
	_, ok := m.m[id]
	return ok
}

// Erase removes id and returns its value.
func (m *Map[T]) Erase(id ID) (T, bool) {
	v, ok := m.m[id]
	if ok {
		delete(m.m, id)
	}
	return v, ok
}

// Len returns the number of stored values.
func (m *Map[T]) Len() int { return len(m.m) }

// IDs returns the stored names in ascending order.
func (m *Map[T]) IDs() []ID {
	return slices.Sorted(maps.Keys(m.m))
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefCount(t *testing.T) {
	var rc RefCounted
	rc.AddRef()
	rc.AddRef()
	assert.Equal(t, 2, rc.RefCount())
	assert.False(t, rc.Release())
	assert.True(t, rc.Release())
	assert.Panics(t, func() { rc.Release() })
}

func TestRefCountConcurrent(t *testing.T) {
	var rc RefCounted
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rc.AddRef()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, rc.RefCount())
}

func TestLabel(t *testing.T) {
	var l DebugLabel
	assert.Empty(t, l.Label())
	assert.True(t, l.SetLabelText("vbo"))
	assert.False(t, l.SetLabelText("vbo"))
	assert.Equal(t, "vbo", l.Label())

	var _ Labeled = &l
}

func TestHandleAllocatorReusesSmallest(t *testing.T) {
	a := NewHandleAllocator()
	ids := []ID{a.Allocate(), a.Allocate(), a.Allocate(), a.Allocate()}
	assert.Equal(t, []ID{1, 2, 3, 4}, ids)

	a.Release(3)
	a.Release(2)
	assert.Equal(t, ID(2), a.Allocate())
	assert.Equal(t, ID(3), a.Allocate())
	assert.Equal(t, ID(5), a.Allocate())
}

func TestHandleAllocatorReserve(t *testing.T) {
	a := NewHandleAllocator()
	require.True(t, a.Reserve(2))
	assert.False(t, a.Reserve(2))
	assert.False(t, a.Reserve(InvalidID))

	assert.Equal(t, ID(1), a.Allocate())
	assert.Equal(t, ID(3), a.Allocate(), "reserved name must be skipped")

	a.Release(2)
	assert.Equal(t, ID(2), a.Allocate())
}

func TestMap(t *testing.T) {
	m := NewMap[string]()
	m.Assign(5, "five")
	m.Assign(1, "one")

	v, ok := m.Query(5)
	require.True(t, ok)
	assert.Equal(t, "five", v)
	assert.True(t, m.Contains(1))
	assert.Equal(t, []ID{1, 5}, m.IDs())

	v, ok = m.Erase(1)
	assert.True(t, ok)
	assert.Equal(t, "one", v)
	_, ok = m.Erase(1)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

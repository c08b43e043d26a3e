// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package bitmask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSetReset(t *testing.T) {
	var m Mask[uint32]
	assert.True(t, m.None())

	m.Set(3)
	m.Set(0)
	assert.True(t, m.Test(3))
	assert.True(t, m.Test(0))
	assert.False(t, m.Test(1))
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, uint32(0b1001), m.Bits())

	m.Reset(3)
	assert.False(t, m.Test(3))
	assert.Equal(t, 1, m.Count())

	m.SetTo(5, true)
	m.SetTo(0, false)
	assert.Equal(t, uint32(1<<5), m.Bits())
}

func TestMaskWidth(t *testing.T) {
	assert.Equal(t, 8, Mask[uint8]{}.Width())
	assert.Equal(t, 16, Mask[uint16]{}.Width())
	assert.Equal(t, 32, Mask[uint32]{}.Width())
	assert.Equal(t, 64, Mask[uint64]{}.Width())
}

func TestMaskOutOfRange(t *testing.T) {
	var m Mask[uint16]
	assert.False(t, m.Test(16))
	assert.False(t, m.Test(-1))
	assert.Panics(t, func() { m.Set(16) })
	assert.Panics(t, func() { m.Reset(-1) })
}

func TestMaskRange(t *testing.T) {
	tests := []struct {
		lo, hi int
		want   uint32
	}{
		{0, 0, 0b1},
		{1, 3, 0b1110},
		{4, 2, 0},
		{0, 31, 0xFFFFFFFF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Range[uint32](tt.lo, tt.hi).Bits(), "Range(%d, %d)", tt.lo, tt.hi)
	}
}

func TestMaskSetOps(t *testing.T) {
	a := From[uint32](0b1100)
	b := From[uint32](0b1010)
	assert.Equal(t, uint32(0b1110), a.Union(b).Bits())
	assert.Equal(t, uint32(0b1000), a.Intersect(b).Bits())
	assert.Equal(t, uint32(0b0100), a.Difference(b).Bits())
}

func TestMaskEachAndFirst(t *testing.T) {
	m := From[uint32](0b101001)
	var got []int
	m.Each(func(i int) { got = append(got, i) })
	assert.Equal(t, []int{0, 3, 5}, got)
	assert.Equal(t, 0, m.First())
	assert.Equal(t, -1, Mask[uint32]{}.First())
	assert.Equal(t, "{0 3 5}", m.String())
	assert.Equal(t, "{}", Mask[uint8]{}.String())
}

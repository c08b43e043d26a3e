// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package bitmask provides small fixed-width bit sets used for binding slots
// and mip level tracking.
//
// The zero value of every mask is the empty set. Masks are plain values and
// are cheap to copy and compare.
package bitmask

import (
	"fmt"
	"math/bits"
	"strings"
)

// Uint constrains the storage word of a Mask.
type Uint interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Mask is a bit set backed by a single machine word.
type Mask[T Uint] struct {
	w T
}

// From returns a mask with the bits of w.
func From[T Uint](w T) Mask[T] { return Mask[T]{w} }

// Range returns a mask with bits [lo, hi] set. An empty mask is returned when
// lo > hi.
func Range[T Uint](lo, hi int) Mask[T] {
	var m Mask[T]
	for i := lo; i <= hi; i++ {
		m.Set(i)
	}
	return m
}

// Width returns the number of bits the mask can hold.
func (m Mask[T]) Width() int { return bits.Len64(uint64(^T(0))) }

func (m Mask[T]) check(i int) {
	if i < 0 || i >= m.Width() {
		panic(fmt.Sprintf("bitmask: bit %d out of range [0, %d)", i, m.Width()))
	}
}

// Set sets bit i.
func (m *Mask[T]) Set(i int) {
	m.check(i)
	m.w |= T(1) << uint(i)
}

// Reset clears bit i.
func (m *Mask[T]) Reset(i int) {
	m.check(i)
	m.w &^= T(1) << uint(i)
}

// SetTo sets bit i when v is true and clears it otherwise.
func (m *Mask[T]) SetTo(i int, v bool) {
	if v {
		m.Set(i)
	} else {
		m.Reset(i)
	}
}

// Test reports whether bit i is set.
func (m Mask[T]) Test(i int) bool {
	if i < 0 || i >= m.Width() {
		return false
	}
	return m.w&(T(1)<<uint(i)) != 0
}

// Any reports whether at least one bit is set.
func (m Mask[T]) Any() bool { return m.w != 0 }

// None reports whether no bit is set.
func (m Mask[T]) None() bool { return m.w == 0 }

// Count returns the number of set bits.
func (m Mask[T]) Count() int { return bits.OnesCount64(uint64(m.w)) }

// Bits returns the raw word.
func (m Mask[T]) Bits() T { return m.w }

// Union returns m | o.
func (m Mask[T]) Union(o Mask[T]) Mask[T] { return Mask[T]{m.w | o.w} }

// Intersect returns m & o.
func (m Mask[T]) Intersect(o Mask[T]) Mask[T] { return Mask[T]{m.w & o.w} }

// Difference returns m &^ o.
func (m Mask[T]) Difference(o Mask[T]) Mask[T] { return Mask[T]{m.w &^ o.w} }

// Each calls fn for every set bit in ascending order.
func (m Mask[T]) Each(fn func(i int)) {
	w := uint64(m.w)
	for w != 0 {
		i := bits.TrailingZeros64(w)
		fn(i)
		w &^= 1 << uint(i)
	}
}

// First returns the lowest set bit, or -1 if the mask is empty.
func (m Mask[T]) First() int {
	if m.w == 0 {
		return -1
	}
	return bits.TrailingZeros64(uint64(m.w))
}

// String formats the mask as a set of bit indices, e.g. "{0 3}".
func (m Mask[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	m.Each(func(i int) {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&sb, "%d", i)
	})
	sb.WriteByte('}')
	return sb.String()
}

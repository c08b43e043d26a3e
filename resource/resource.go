// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package resource holds the capabilities every GL object shares: an opaque
// handle, a reference count and a debug label.
//
// Concrete objects compose these pieces instead of inheriting them, and the
// share group keeps them in a Map keyed by ID.
package resource

import (
	"fmt"
	"sync/atomic"
)

// ID is a client-visible object name. Zero is never allocated.
type ID uint32

// InvalidID is the reserved zero name.
const InvalidID ID = 0

// RefCounted is an atomic reference count. The zero value holds no references.
type RefCounted struct {
	n atomic.Int32
}

// AddRef takes a reference.
func (r *RefCounted) AddRef() { r.n.Add(1) }

// Release drops a reference and reports whether it was the last one.
// Releasing below zero is a logic defect and panics.
func (r *RefCounted) Release() bool {
	n := r.n.Add(-1)
	if n < 0 {
		panic(fmt.Sprintf("resource: reference count underflow (%d)", n))
	}
	return n == 0
}

// RefCount returns the current number of references.
func (r *RefCounted) RefCount() int { return int(r.n.Load()) }

// Labeled is implemented by objects that carry a debug label.
type Labeled interface {
	Label() string
}

// DebugLabel is embedded to give an object a debug label.
type DebugLabel struct {
	label string
}

// Label returns the current label.
func (l *DebugLabel) Label() string { return l.label }

// SetLabelText replaces the label and reports whether it changed.
func (l *DebugLabel) SetLabelText(s string) bool {
	if l.label == s {
		return false
	}
	l.label = s
	return true
}

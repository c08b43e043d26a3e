// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glres

import "errors"

// Errors returned across the state layer. Backend errors are wrapped
// together with one of these so callers can map any failure to a GL error
// with errors.Is.
var (
	// ErrOutOfMemory is returned when native storage could not be allocated
	// or written.
	ErrOutOfMemory = errors.New("glres: out of memory")

	// ErrUnsupported is returned for paths that are not implemented, such as
	// multi-layer render targets or texture copies.
	ErrUnsupported = errors.New("glres: not supported")

	// ErrContextLost is returned when the backend reports device loss.
	ErrContextLost = errors.New("glres: context lost")
)

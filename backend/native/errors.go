// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "errors"

// Package errors.
var (
	// ErrNilDevice is returned when a Device is built without a HAL device
	// or queue.
	ErrNilDevice = errors.New("native: HAL device is nil")

	// ErrBufferDestroyed is returned when operating on a destroyed buffer.
	ErrBufferDestroyed = errors.New("native: buffer has been destroyed")

	// ErrImageDestroyed is returned when operating on a destroyed image.
	ErrImageDestroyed = errors.New("native: image has been destroyed")

	// ErrOutOfRange is returned when a range exceeds the resource.
	ErrOutOfRange = errors.New("native: range out of bounds")

	// ErrUnsupportedFormat is returned for formats the HAL cannot store.
	ErrUnsupportedFormat = errors.New("native: unsupported format")

	// ErrMapState is returned by Map on a mapped buffer and by Unmap on an
	// unmapped one.
	ErrMapState = errors.New("native: invalid map state")

	// ErrGPUTimeout is returned when submitted work does not complete.
	ErrGPUTimeout = errors.New("native: GPU wait timed out")
)

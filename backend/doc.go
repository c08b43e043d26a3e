// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend defines the native capabilities the state layer drives.
//
// The buffer and texture packages never call a graphics API directly. They
// allocate storage through a Device and then talk to the returned
// NativeBuffer and NativeImage values. One implementation exists per target
// API and is chosen when the Context is created:
//
//   - backend/native runs on the gogpu/wgpu HAL
//   - backend/backendtest records every call in memory for tests
//
// Optional capabilities are discovered with type assertions:
//
//	if r, ok := img.(backend.ContentReader); ok {
//	    data, pitch, err := r.ReadSubresource(level, layer)
//	    ...
//	}
//
// Levels passed to a NativeImage are native mip indices, counted from the
// first level the image was allocated with, not GL level numbers.
package backend

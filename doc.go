// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package glres tracks the logical state of GL buffer and texture objects and
// decides when their native storage must be recreated.
//
// # Overview
//
// A GL front end validates every call and then forwards it to the objects in
// this module. The objects keep what GL says about them (sizes, formats,
// mip levels, map state, bindings) and realize it lazily on a native backend:
//
//   - buffer: buffer state machine, contents observers, per-context vertex
//     binding masks and a cache of index ranges
//   - texture: image redefinition tracking, lazy image (re)allocation and a
//     cache of single-layer render target views
//   - vertexarray: a dependent that reacts to buffer content changes
//   - share: per share group object names and lifetimes
//
// Native storage is reached only through the capabilities in package
// backend. backend/native implements them on the gogpu/wgpu HAL and
// backend/backendtest records them in memory.
//
// # Quick Start
//
//	dev, release, err := backend.Open(backend.NameNative)
//	if err != nil {
//	    return err
//	}
//	defer release()
//
//	ctx := glres.NewContext(dev)
//	tex := texture.New(1, texture.Type2D)
//	if err := tex.SetImage(ctx, texture.Target2D, 0, backend.GLRGBA8,
//	    backend.Extents{Width: 256, Height: 256, Depth: 1}, nil, texture.Unpack{}); err != nil {
//	    return err
//	}
//	rt, err := tex.GetAttachmentRenderTarget(ctx, texture.Target2D, texture.ImageIndex{}, 1)
//
// # Errors
//
// Backend failures are returned, never panicked. They wrap ErrOutOfMemory or
// ErrContextLost, and paths that are not implemented wrap ErrUnsupported.
// A panic means an internal invariant was broken.
//
// # Concurrency
//
// Objects do no locking. Callers serialize all calls that touch objects of
// one share group. SetLogger and Logger are safe for concurrent use.
//
// # Logging
//
// The module is silent by default. See SetLogger.
package glres

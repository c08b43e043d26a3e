// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package texture implements GL texture objects: per-level image
// definitions, lazy allocation of the native image, and the render target
// views attached to it.
//
// Level-defining calls only record state and stage pixel data. The native
// image is (re)created on SyncState, GetAttachmentRenderTarget or
// GenerateMipmap, carrying over the contents of levels that were not
// redefined when the backend can read them back.
package texture

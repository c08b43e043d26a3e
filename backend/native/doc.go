// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native implements backend.Device on the gogpu/wgpu HAL.
//
// Buffers keep a CPU copy of their contents. Reads, maps and partial
// writes are served from it, and every change is pushed to the GPU with
// queue writes or copy commands. Images read back through a staging buffer
// and generate mipmaps on the CPU.
//
// Importing the package registers the device as backend.NameNative. The
// registered factory opens a standalone Vulkan device; use NewDevice or
// NewDeviceFromProvider to share an existing one.
package native

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backendtest

import (
	"errors"
	"fmt"

	"github.com/gogpu/glres/backend"
)

var (
	errBufferDestroyed = errors.New("backendtest: buffer destroyed")
	errBufferMapped    = errors.New("backendtest: buffer already mapped")
	errBufferNotMapped = errors.New("backendtest: buffer not mapped")
)

// Buffer is an in-memory backend.NativeBuffer.
type Buffer struct {
	dev       *Device
	desc      backend.BufferDesc
	data      []byte
	mapped    bool
	destroyed bool
}

// Desc returns the description the buffer was created with.
func (b *Buffer) Desc() backend.BufferDesc { return b.desc }

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte { return b.data }

// Destroyed reports whether Destroy was called.
func (b *Buffer) Destroyed() bool { return b.destroyed }

// Size implements backend.NativeBuffer.
func (b *Buffer) Size() uint64 { return uint64(len(b.data)) }

func (b *Buffer) span(offset, length uint64) error {
	if b.destroyed {
		return errBufferDestroyed
	}
	if offset+length > uint64(len(b.data)) {
		return fmt.Errorf("backendtest: range [%d, %d) exceeds buffer size %d", offset, offset+length, len(b.data))
	}
	return nil
}

// Write implements backend.NativeBuffer.
func (b *Buffer) Write(offset uint64, data []byte) error {
	if err := b.span(offset, uint64(len(data))); err != nil {
		return err
	}
	copy(b.data[offset:], data)
	b.dev.Stats.BufferWrites++
	return nil
}

// Read implements backend.NativeBuffer.
func (b *Buffer) Read(offset uint64, out []byte) error {
	if err := b.span(offset, uint64(len(out))); err != nil {
		return err
	}
	copy(out, b.data[offset:])
	return nil
}

// CopyFrom implements backend.NativeBuffer.
func (b *Buffer) CopyFrom(src backend.NativeBuffer, srcOffset, dstOffset, size uint64) error {
	s, ok := src.(*Buffer)
	if !ok {
		return fmt.Errorf("backendtest: cannot copy from %T", src)
	}
	if err := s.span(srcOffset, size); err != nil {
		return err
	}
	if err := b.span(dstOffset, size); err != nil {
		return err
	}
	copy(b.data[dstOffset:dstOffset+size], s.data[srcOffset:srcOffset+size])
	b.dev.Stats.BufferCopies++
	return nil
}

// Map implements backend.NativeBuffer. The returned slice aliases the
// buffer contents.
func (b *Buffer) Map(offset, length uint64, _ bool) ([]byte, error) {
	if err := b.span(offset, length); err != nil {
		return nil, err
	}
	if b.mapped {
		return nil, errBufferMapped
	}
	b.mapped = true
	return b.data[offset : offset+length : offset+length], nil
}

// Unmap implements backend.NativeBuffer.
func (b *Buffer) Unmap() error {
	if !b.mapped {
		return errBufferNotMapped
	}
	b.mapped = false
	return nil
}

// Destroy implements backend.NativeBuffer.
func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.dev.Stats.BuffersDestroyed++
}

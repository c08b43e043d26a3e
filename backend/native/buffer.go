// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glres/backend"
)

// Buffer is a backend.NativeBuffer backed by a hal.Buffer and a CPU copy
// of its contents.
type Buffer struct {
	dev  *Device
	raw  hal.Buffer
	desc backend.BufferDesc

	// shadow is the size of raw, rounded up to copyAlignment.
	shadow []byte

	mapped    bool
	mapWrite  bool
	mapOffset uint64
	mapLength uint64

	destroyed bool
}

// Raw returns the HAL buffer, or nil once destroyed.
func (b *Buffer) Raw() hal.Buffer {
	if b.destroyed {
		return nil
	}
	return b.raw
}

// Size implements backend.NativeBuffer.
func (b *Buffer) Size() uint64 { return b.desc.Size }

func (b *Buffer) check(offset, length uint64) error {
	if b.destroyed {
		return ErrBufferDestroyed
	}
	if offset > b.desc.Size || length > b.desc.Size-offset {
		return fmt.Errorf("%w: [%d, %d) in buffer of %d bytes", ErrOutOfRange, offset, offset+length, b.desc.Size)
	}
	return nil
}

// upload pushes [offset, offset+length) of the CPU copy to the GPU,
// widened to copy alignment.
func (b *Buffer) upload(offset, length uint64) error {
	if length == 0 {
		return nil
	}
	lo := offset &^ (copyAlignment - 1)
	hi := alignTo(offset+length, copyAlignment)
	if err := b.dev.queue.WriteBuffer(b.raw, lo, b.shadow[lo:hi]); err != nil {
		return fmt.Errorf("native: write buffer %q [%d, %d): %w", b.desc.Label, lo, hi, err)
	}
	return nil
}

// Write implements backend.NativeBuffer.
func (b *Buffer) Write(offset uint64, data []byte) error {
	if err := b.check(offset, uint64(len(data))); err != nil {
		return err
	}
	copy(b.shadow[offset:], data)
	return b.upload(offset, uint64(len(data)))
}

// Read implements backend.NativeBuffer.
func (b *Buffer) Read(offset uint64, out []byte) error {
	if err := b.check(offset, uint64(len(out))); err != nil {
		return err
	}
	copy(out, b.shadow[offset:])
	return nil
}

// CopyFrom implements backend.NativeBuffer. Aligned copies run on the GPU;
// others are uploaded from the CPU copy.
func (b *Buffer) CopyFrom(src backend.NativeBuffer, srcOffset, dstOffset, size uint64) error {
	s, ok := src.(*Buffer)
	if !ok {
		return fmt.Errorf("native: cannot copy from %T", src)
	}
	if err := s.check(srcOffset, size); err != nil {
		return err
	}
	if err := b.check(dstOffset, size); err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	copy(b.shadow[dstOffset:dstOffset+size], s.shadow[srcOffset:srcOffset+size])

	if (srcOffset|dstOffset|size)%copyAlignment != 0 {
		return b.upload(dstOffset, size)
	}
	return b.dev.submit("buffer-copy", func(encoder hal.CommandEncoder) {
		encoder.CopyBufferToBuffer(s.raw, b.raw, []hal.BufferCopy{
			{SrcOffset: srcOffset, DstOffset: dstOffset, Size: size},
		})
	})
}

// Map implements backend.NativeBuffer. The returned slice aliases the CPU
// copy.
func (b *Buffer) Map(offset, length uint64, write bool) ([]byte, error) {
	if err := b.check(offset, length); err != nil {
		return nil, err
	}
	if b.mapped {
		return nil, fmt.Errorf("%w: buffer %q already mapped", ErrMapState, b.desc.Label)
	}
	b.mapped, b.mapWrite = true, write
	b.mapOffset, b.mapLength = offset, length
	return b.shadow[offset : offset+length : offset+length], nil
}

// Unmap implements backend.NativeBuffer. A write mapping uploads the mapped
// range.
func (b *Buffer) Unmap() error {
	if b.destroyed {
		return ErrBufferDestroyed
	}
	if !b.mapped {
		return fmt.Errorf("%w: buffer %q not mapped", ErrMapState, b.desc.Label)
	}
	write := b.mapWrite
	b.mapped, b.mapWrite = false, false
	if write {
		return b.upload(b.mapOffset, b.mapLength)
	}
	return nil
}

// Destroy implements backend.NativeBuffer.
func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.mapped = false
	b.dev.device.DestroyBuffer(b.raw)
	b.shadow = nil
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glres"
	"github.com/gogpu/glres/backend"
)

// DefaultFenceTimeout bounds every wait for submitted work.
const DefaultFenceTimeout = 5 * time.Second

const pollInterval = 100 * time.Microsecond

// Device is a backend.Device on a HAL device and queue. It does not own
// them.
type Device struct {
	device hal.Device
	queue  hal.Queue

	fenceTimeout time.Duration
}

// NewDevice wraps a HAL device and its queue.
func NewDevice(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &Device{device: device, queue: queue, fenceTimeout: DefaultFenceTimeout}, nil
}

// NewDeviceFromProvider shares the device of a gpucontext provider. The
// provider must also expose HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewDeviceFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("native: provider %T does not expose HAL types", provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("native: provider HalDevice is not hal.Device: %w", ErrNilDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("native: provider HalQueue is not hal.Queue: %w", ErrNilDevice)
	}
	return NewDevice(device, queue)
}

// SetFenceTimeout changes how long the device waits for submitted work.
func (d *Device) SetFenceTimeout(timeout time.Duration) {
	d.fenceTimeout = timeout
}

// HalDevice returns the wrapped HAL device.
func (d *Device) HalDevice() hal.Device { return d.device }

// HalQueue returns the wrapped HAL queue.
func (d *Device) HalQueue() hal.Queue { return d.queue }

// CreateBuffer implements backend.Device.
func (d *Device) CreateBuffer(desc *backend.BufferDesc) (backend.NativeBuffer, error) {
	size := alignTo(max(desc.Size, copyAlignment), copyAlignment)
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  size,
		Usage: convertBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("native: create buffer %q: %w", desc.Label, err)
	}
	glres.Logger().Debug("native: buffer created", "label", desc.Label, "size", desc.Size)
	return &Buffer{
		dev:    d,
		raw:    raw,
		desc:   *desc,
		shadow: make([]byte, size),
	}, nil
}

// CreateImage implements backend.Device.
func (d *Device) CreateImage(desc *backend.ImageDesc) (backend.NativeImage, error) {
	if desc.LevelCount <= 0 || desc.LayerCount <= 0 || desc.Extents.Empty() {
		return nil, fmt.Errorf("native: image %q with %d levels %d layers %v: %w",
			desc.Label, desc.LevelCount, desc.LayerCount, desc.Extents, ErrOutOfRange)
	}
	format, ok := convertFormat(desc.Format.Actual)
	if !ok {
		return nil, fmt.Errorf("native: image %q format %v: %w", desc.Label, desc.Format.Actual, ErrUnsupportedFormat)
	}

	raw, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          textureSize(desc),
		MipLevelCount: uint32(desc.LevelCount),
		SampleCount:   uint32(max(desc.Samples, 1)),
		Dimension:     convertDimension(desc.Type),
		Format:        format,
		Usage:         convertImageUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("native: create image %q: %w", desc.Label, err)
	}
	glres.Logger().Debug("native: image created",
		"label", desc.Label, "format", desc.Format.Actual.String(),
		"extents", desc.Extents.String(), "levels", desc.LevelCount, "layers", desc.LayerCount)
	return &Image{dev: d, raw: raw, desc: *desc, format: format}, nil
}

// submit records commands with record, submits them and waits for the GPU
// to finish.
func (d *Device) submit(label string, record func(encoder hal.CommandEncoder)) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}
	record(encoder)
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	index, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	return d.waitSubmission(index, label)
}

// waitSubmission polls the queue until submission index completes or the
// fence timeout passes.
func (d *Device) waitSubmission(index uint64, label string) error {
	deadline := time.Now().Add(d.fenceTimeout)
	for d.queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %v (%s)", ErrGPUTimeout, d.fenceTimeout, label)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// readBuffer maps the first size bytes of a MapRead buffer and copies
// them out.
func (d *Device) readBuffer(buf hal.Buffer, size uint64) ([]byte, error) {
	m, err := d.device.MapBuffer(buf, 0, size)
	if err != nil {
		return nil, fmt.Errorf("native: map readback buffer: %w", err)
	}
	if m.Ptr == nil {
		_ = d.device.UnmapBuffer(buf)
		return nil, fmt.Errorf("native: map readback buffer: %w", ErrMapState)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(m.Ptr), size))
	if err := d.device.UnmapBuffer(buf); err != nil {
		return nil, fmt.Errorf("native: unmap readback buffer: %w", err)
	}
	return out, nil
}

func alignTo(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

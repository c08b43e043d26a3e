// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backendtest provides an in-memory backend.Device that records every
// allocation, upload and view it serves.
//
// Tests use the counters in Stats to assert how often the state layer
// allocates or tears down native storage:
//
//	dev := backendtest.NewDevice()
//	ctx := glres.NewContext(dev)
//	...
//	if dev.Stats.ImagesCreated != 1 { ... }
//
// The device registers itself with the backend registry as "memory".
package backendtest

import (
	"errors"
	"fmt"

	"github.com/gogpu/glres/backend"
)

// ErrInjected is the default error returned by injected failures.
var ErrInjected = errors.New("backendtest: injected failure")

// Stats counts device activity.
type Stats struct {
	BuffersCreated    int
	BuffersDestroyed  int
	BufferWrites      int
	BufferCopies      int
	ImagesCreated     int
	ImagesDestroyed   int
	Uploads           int
	ViewsCreated      int
	ViewsDestroyed    int
	MipmapGenerations int
}

// Device is an in-memory backend.Device. The zero value is not usable; call
// NewDevice.
type Device struct {
	Stats Stats

	// FailBuffers and FailImages, when non-nil, are returned by the next
	// allocation of that kind and then cleared.
	FailBuffers error
	FailImages  error

	// FailUploads, when non-nil, is returned by every image upload.
	FailUploads error

	// FailReads, when non-nil, is returned by every image readback.
	FailReads error

	// NoReadback hides the ContentReader capability of new images.
	NoReadback bool

	images  []*Image
	buffers []*Buffer
}

// NewDevice returns an empty device.
func NewDevice() *Device {
	return &Device{}
}

func init() {
	backend.Register(backend.NameMemory, func() (backend.Device, func(), error) {
		return NewDevice(), func() {}, nil
	})
}

// CreateBuffer implements backend.Device.
func (d *Device) CreateBuffer(desc *backend.BufferDesc) (backend.NativeBuffer, error) {
	if err := d.FailBuffers; err != nil {
		d.FailBuffers = nil
		return nil, err
	}
	b := &Buffer{dev: d, desc: *desc, data: make([]byte, desc.Size)}
	d.buffers = append(d.buffers, b)
	d.Stats.BuffersCreated++
	return b, nil
}

// CreateImage implements backend.Device.
func (d *Device) CreateImage(desc *backend.ImageDesc) (backend.NativeImage, error) {
	if err := d.FailImages; err != nil {
		d.FailImages = nil
		return nil, err
	}
	if desc.LevelCount <= 0 || desc.LayerCount <= 0 {
		return nil, fmt.Errorf("backendtest: invalid image %d levels %d layers", desc.LevelCount, desc.LayerCount)
	}
	img := newImage(d, desc)
	d.images = append(d.images, img)
	d.Stats.ImagesCreated++
	if d.NoReadback {
		return opaqueImage{img}, nil
	}
	return img, nil
}

// Images returns every image created so far, live or destroyed.
func (d *Device) Images() []*Image { return d.images }

// LastImage returns the most recently created image, or nil.
func (d *Device) LastImage() *Image {
	if len(d.images) == 0 {
		return nil
	}
	return d.images[len(d.images)-1]
}

// LiveImages returns the number of images not yet destroyed.
func (d *Device) LiveImages() int {
	n := 0
	for _, img := range d.images {
		if !img.destroyed {
			n++
		}
	}
	return n
}

// Buffers returns every buffer created so far.
func (d *Device) Buffers() []*Buffer { return d.buffers }

// opaqueImage hides the optional capabilities of Image.
type opaqueImage struct{ img *Image }

func (o opaqueImage) Desc() backend.ImageDesc        { return o.img.Desc() }
func (o opaqueImage) Upload(u *backend.Upload) error { return o.img.Upload(u) }
func (o opaqueImage) Destroy()                       { o.img.Destroy() }
func (o opaqueImage) CreateView(desc *backend.ViewDesc) (backend.View, error) {
	return o.img.CreateView(desc)
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

// Device allocates native storage.
type Device interface {
	// CreateBuffer allocates a buffer of desc.Size bytes.
	CreateBuffer(desc *BufferDesc) (NativeBuffer, error)

	// CreateImage allocates an image with every level and layer in desc.
	CreateImage(desc *ImageDesc) (NativeImage, error)
}

// BufferDesc describes a native buffer.
type BufferDesc struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// BufferUsage is a bitmask of native buffer uses.
type BufferUsage uint32

// Buffer usage flags.
const (
	BufferUsageCopySrc BufferUsage = 1 << iota
	BufferUsageCopyDst
	BufferUsageVertex
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndirect
	BufferUsageMapRead
	BufferUsageMapWrite
)

// NativeBuffer is realized buffer storage.
type NativeBuffer interface {
	// Size returns the allocated size in bytes.
	Size() uint64

	// Write copies data into the buffer at offset.
	Write(offset uint64, data []byte) error

	// Read copies len(out) bytes starting at offset into out.
	Read(offset uint64, out []byte) error

	// CopyFrom copies size bytes from src at srcOffset to this buffer at
	// dstOffset.
	CopyFrom(src NativeBuffer, srcOffset, dstOffset, size uint64) error

	// Map returns a CPU view of [offset, offset+length). Writes to the
	// returned slice become visible to the buffer after Unmap when write is
	// true.
	Map(offset, length uint64, write bool) ([]byte, error)

	// Unmap ends the current mapping.
	Unmap() error

	// Destroy releases the storage. It is safe to call more than once.
	Destroy()
}

// ImageType is the dimensionality of a native image.
type ImageType uint8

// Image types.
const (
	Image2D ImageType = iota
	Image2DArray
	Image2DMultisample
	Image3D
	ImageCube
)

// String returns the type name.
func (t ImageType) String() string {
	switch t {
	case Image2D:
		return "2D"
	case Image2DArray:
		return "2DArray"
	case Image2DMultisample:
		return "2DMultisample"
	case Image3D:
		return "3D"
	case ImageCube:
		return "Cube"
	default:
		return "unknown"
	}
}

// ImageUsage is a bitmask of native image uses.
type ImageUsage uint32

// Image usage flags.
const (
	ImageUsageCopySrc ImageUsage = 1 << iota
	ImageUsageCopyDst
	ImageUsageSampled
	ImageUsageRenderAttachment
	ImageUsageStorage
)

// DefaultImageUsage lets an image serve as copy source, copy destination,
// render attachment and sampling source.
const DefaultImageUsage = ImageUsageCopySrc | ImageUsageCopyDst |
	ImageUsageRenderAttachment | ImageUsageSampled

// ImageDesc describes a native image.
type ImageDesc struct {
	Label  string
	Type   ImageType
	Format Format

	// Extents of native level 0.
	Extents Extents

	// FirstLevel is the GL level stored at native level 0.
	FirstLevel int
	LevelCount int
	LayerCount int
	Samples    int
	Usage      ImageUsage
}

// Upload copies a block of pixels into one level of an image.
type Upload struct {
	// MipLevel is the native level index.
	MipLevel   int
	BaseLayer  int
	LayerCount int
	Offset     Offset
	Extents    Extents

	// Data holds LayerCount slices of Extents.Depth images, each made of
	// rows RowPitch bytes apart.
	Data       []byte
	RowPitch   uint32
	DepthPitch uint32
}

// NativeImage is realized image storage.
type NativeImage interface {
	// Desc returns the description the image was created with.
	Desc() ImageDesc

	// Upload writes pixels into the image.
	Upload(u *Upload) error

	// CreateView creates a view of a level range and layer range.
	CreateView(desc *ViewDesc) (View, error)

	// Destroy releases the storage. It is safe to call more than once.
	Destroy()
}

// ViewDesc describes an image view.
type ViewDesc struct {
	Label      string
	MipLevel   int
	LevelCount int
	BaseLayer  int
	LayerCount int
}

// View is a view of a NativeImage usable as a render target.
type View interface {
	Destroy()
}

// ContentReader is implemented by images whose contents can be read back.
type ContentReader interface {
	// ReadSubresource returns a tightly packed copy of one layer of a level
	// and its row pitch.
	ReadSubresource(mipLevel, layer int) ([]byte, uint32, error)
}

// MipmapGenerator is implemented by images that can fill levels from the
// level below.
type MipmapGenerator interface {
	// GenerateMipmaps fills native levels [baseLevel+1, baseLevel+levelCount).
	GenerateMipmaps(baseLevel, levelCount int) error
}

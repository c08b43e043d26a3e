// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import "fmt"

// Usage is the usage hint passed to BufferData. Values are the GL enums.
type Usage uint32

// Usage hints.
const (
	StreamDraw  Usage = 0x88E0
	StreamRead  Usage = 0x88E1
	StreamCopy  Usage = 0x88E2
	StaticDraw  Usage = 0x88E4
	StaticRead  Usage = 0x88E5
	StaticCopy  Usage = 0x88E6
	DynamicDraw Usage = 0x88E8
	DynamicRead Usage = 0x88E9
	DynamicCopy Usage = 0x88EA
)

// String returns the GL name of the usage.
func (u Usage) String() string {
	switch u {
	case StreamDraw:
		return "STREAM_DRAW"
	case StreamRead:
		return "STREAM_READ"
	case StreamCopy:
		return "STREAM_COPY"
	case StaticDraw:
		return "STATIC_DRAW"
	case StaticRead:
		return "STATIC_READ"
	case StaticCopy:
		return "STATIC_COPY"
	case DynamicDraw:
		return "DYNAMIC_DRAW"
	case DynamicRead:
		return "DYNAMIC_READ"
	case DynamicCopy:
		return "DYNAMIC_COPY"
	default:
		return fmt.Sprintf("Usage(0x%X)", uint32(u))
	}
}

// Binding is a buffer binding point.
type Binding uint8

// Binding points.
const (
	BindingArray Binding = iota
	BindingAtomicCounter
	BindingCopyRead
	BindingCopyWrite
	BindingDispatchIndirect
	BindingDrawIndirect
	BindingElementArray
	BindingPixelPack
	BindingPixelUnpack
	BindingShaderStorage
	BindingTexture
	BindingTransformFeedback
	BindingUniform
)

var bindingNames = [...]string{
	BindingArray:             "ARRAY_BUFFER",
	BindingAtomicCounter:     "ATOMIC_COUNTER_BUFFER",
	BindingCopyRead:          "COPY_READ_BUFFER",
	BindingCopyWrite:         "COPY_WRITE_BUFFER",
	BindingDispatchIndirect:  "DISPATCH_INDIRECT_BUFFER",
	BindingDrawIndirect:      "DRAW_INDIRECT_BUFFER",
	BindingElementArray:      "ELEMENT_ARRAY_BUFFER",
	BindingPixelPack:         "PIXEL_PACK_BUFFER",
	BindingPixelUnpack:       "PIXEL_UNPACK_BUFFER",
	BindingShaderStorage:     "SHADER_STORAGE_BUFFER",
	BindingTexture:           "TEXTURE_BUFFER",
	BindingTransformFeedback: "TRANSFORM_FEEDBACK_BUFFER",
	BindingUniform:           "UNIFORM_BUFFER",
}

// String returns the GL name of the binding point.
func (b Binding) String() string {
	if int(b) < len(bindingNames) {
		return bindingNames[b]
	}
	return fmt.Sprintf("Binding(%d)", uint8(b))
}

// Map access and storage flag bits. Values are the GL enums.
const (
	MapReadBit             uint32 = 0x0001
	MapWriteBit            uint32 = 0x0002
	MapInvalidateRangeBit  uint32 = 0x0004
	MapInvalidateBufferBit uint32 = 0x0008
	MapFlushExplicitBit    uint32 = 0x0010
	MapUnsynchronizedBit   uint32 = 0x0020
	MapPersistentBit       uint32 = 0x0040
	MapCoherentBit         uint32 = 0x0080
	DynamicStorageBit      uint32 = 0x0100
	ClientStorageBit       uint32 = 0x0200
)

// WriteOnlyOES is the only access value of OES_mapbuffer.
const WriteOnlyOES uint32 = 0x88B9

// WebGLType records whether a WebGL buffer was first bound as index data.
// WebGL forbids using one buffer for both.
type WebGLType uint8

// WebGL buffer types.
const (
	WebGLTypeUndefined WebGLType = iota
	WebGLTypeElementArray
	WebGLTypeOtherData
)

// IndexType is the element type of an index buffer.
type IndexType uint8

// Index types.
const (
	IndexUnsignedByte IndexType = iota
	IndexUnsignedShort
	IndexUnsignedInt
)

// Size returns the byte size of one index.
func (t IndexType) Size() int {
	switch t {
	case IndexUnsignedByte:
		return 1
	case IndexUnsignedShort:
		return 2
	case IndexUnsignedInt:
		return 4
	default:
		panic(fmt.Sprintf("buffer: invalid index type %d", t))
	}
}

// RestartIndex returns the primitive restart index of the type.
func (t IndexType) RestartIndex() uint32 {
	return uint32(uint64(1)<<(8*t.Size()) - 1)
}

// Feedback is reported by a backend after it changed a buffer behind the
// state layer's back.
type Feedback struct {
	// InternalMemoryAllocationChanged is set when the native storage was
	// replaced.
	InternalMemoryAllocationChanged bool

	// StateChanged is set when observers must re-read buffer state.
	StateChanged bool
}

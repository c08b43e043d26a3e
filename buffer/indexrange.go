// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import (
	"encoding/binary"

	"github.com/gogpu/glres/internal/cache"
)

// IndexRange is the span of vertex indices referenced by an index draw.
type IndexRange struct {
	Start uint32
	End   uint32

	// VertexIndexCount is the number of indices that are not the primitive
	// restart index.
	VertexIndexCount int
}

// VertexCount returns the number of vertices spanned by the range.
func (r IndexRange) VertexCount() int {
	if r.VertexIndexCount == 0 {
		return 0
	}
	return int(r.End-r.Start) + 1
}

type indexRangeKey struct {
	typ              IndexType
	offset           uint64
	count            int
	primitiveRestart bool
}

func (k indexRangeKey) overlaps(offset, size uint64) bool {
	end := k.offset + uint64(k.count*k.typ.Size())
	return k.offset < offset+size && offset < end
}

const indexRangeCacheSize = 64

func newIndexRangeCache() *cache.Cache[indexRangeKey, IndexRange] {
	return cache.New[indexRangeKey, IndexRange](indexRangeCacheSize)
}

// ComputeIndexRange scans count little-endian indices of type typ.
func ComputeIndexRange(typ IndexType, data []byte, count int, primitiveRestart bool) IndexRange {
	size := typ.Size()
	restart := typ.RestartIndex()

	var r IndexRange
	for i := range count {
		var v uint32
		switch typ {
		case IndexUnsignedByte:
			v = uint32(data[i])
		case IndexUnsignedShort:
			v = uint32(binary.LittleEndian.Uint16(data[i*size:]))
		case IndexUnsignedInt:
			v = binary.LittleEndian.Uint32(data[i*size:])
		}
		if primitiveRestart && v == restart {
			continue
		}
		if r.VertexIndexCount == 0 {
			r.Start, r.End = v, v
		} else {
			r.Start = min(r.Start, v)
			r.End = max(r.End, v)
		}
		r.VertexIndexCount++
	}
	return r
}

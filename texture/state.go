// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import "github.com/gogpu/glres/backend"

// DefaultMaxLevel is the initial TEXTURE_MAX_LEVEL.
const DefaultMaxLevel = 1000

// ImageDesc is the declared size and format of one level of one face.
type ImageDesc struct {
	Format  backend.Format
	Extents backend.Extents
}

// Defined reports whether the level has been given a size.
func (d ImageDesc) Defined() bool { return !d.Extents.Empty() }

// State is the GL-visible state of a texture that drives allocation.
type State struct {
	typ             Type
	descs           [CubeFaceCount][MaxLevels]ImageDesc
	baseLevel       int
	maxLevel        int
	immutableFormat bool
	immutableLevels int
	usage           backend.ImageUsage
}

func newState(typ Type) State {
	return State{typ: typ, maxLevel: DefaultMaxLevel, usage: backend.DefaultImageUsage}
}

// Type returns the texture type.
func (s *State) Type() Type { return s.typ }

// BaseLevel returns TEXTURE_BASE_LEVEL as set by the application.
func (s *State) BaseLevel() int { return s.baseLevel }

// MaxLevel returns TEXTURE_MAX_LEVEL as set by the application.
func (s *State) MaxLevel() int { return s.maxLevel }

// ImmutableFormat reports whether the storage was defined with SetStorage.
func (s *State) ImmutableFormat() bool { return s.immutableFormat }

// ImmutableLevels returns the level count of immutable storage.
func (s *State) ImmutableLevels() int { return s.immutableLevels }

// Usage returns the native usage every realized image must have.
func (s *State) Usage() backend.ImageUsage { return s.usage }

// ImageDesc returns the description of level on face.
func (s *State) ImageDesc(face, level int) ImageDesc {
	if level < 0 || level >= MaxLevels {
		return ImageDesc{}
	}
	return s.descs[face][level]
}

func (s *State) setImageDesc(face, level int, d ImageDesc) {
	s.descs[face][level] = d
}

// setLevelChain describes levels [first, first+count) of every face as a
// mip chain whose first level is d.
func (s *State) setLevelChain(first, count int, d ImageDesc) {
	for i := range count {
		level := first + i
		if level >= MaxLevels {
			break
		}
		ext := d.Extents.MipLevel(i, s.typ == Type3D)
		for face := range s.typ.faceCount() {
			s.descs[face][level] = ImageDesc{Format: d.Format, Extents: ext}
		}
	}
}

func (s *State) clearImageDescs() {
	s.descs = [CubeFaceCount][MaxLevels]ImageDesc{}
}

// EffectiveBaseLevel returns the base level clamped to the levels that can
// exist.
func (s *State) EffectiveBaseLevel() int {
	if s.immutableFormat {
		return min(max(s.baseLevel, 0), s.immutableLevels-1)
	}
	return min(max(s.baseLevel, 0), MaxLevels-1)
}

// EffectiveMaxLevel returns the max level clamped to the levels that can
// exist.
func (s *State) EffectiveMaxLevel() int {
	if s.immutableFormat {
		return min(max(s.maxLevel, s.EffectiveBaseLevel()), s.immutableLevels-1)
	}
	return min(s.maxLevel, MaxLevels-1)
}

// BaseLevelDesc returns the description of the effective base level of the
// first face.
func (s *State) BaseLevelDesc() ImageDesc {
	return s.ImageDesc(0, s.EffectiveBaseLevel())
}

// MipmapMaxLevel returns the last level of the full mip chain that starts
// at the base level, bounded by the max level.
func (s *State) MipmapMaxLevel() int {
	base := s.EffectiveBaseLevel()
	levels := backend.MaxMipLevels(s.BaseLevelDesc().Extents, s.typ == Type3D)
	return min(base+levels-1, s.EffectiveMaxLevel())
}

// EnabledLevelCount returns the number of consecutive levels, starting at
// the base level, that form a valid mip chain. Only the first face of a
// cube map is inspected.
func (s *State) EnabledLevelCount() int {
	base := s.EffectiveBaseLevel()
	last := min(s.EffectiveMaxLevel(), s.MipmapMaxLevel())

	count := 0
	var expected backend.Extents
	for level := base; level <= last; level++ {
		ext := s.descs[0][level].Extents
		if ext.Empty() {
			break
		}
		if count > 0 && ext != expected.MipLevel(1, s.typ == Type3D) {
			break
		}
		expected = ext
		count++
	}
	return count
}

// fullChainLevelCount returns the number of levels generateMipmap fills,
// base level included.
func (s *State) fullChainLevelCount() int {
	return s.MipmapMaxLevel() + 1 - s.EffectiveBaseLevel()
}

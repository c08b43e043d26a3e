// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glres/backend/backendtest"
)

const sampleTrace = `
label: sample
robust_init: true
ops:
  - {op: gen_buffers, count: 2}
  - {op: buffer_data, id: 1, size: 64, usage: dynamic_draw}
  - {op: buffer_sub_data, id: 1, offset: 0, data: [0, 0, 5, 0, 2, 0, 9, 0]}
  - {op: index_range, id: 1, count: 4, index_type: u16}
  - {op: buffer_data, id: 2, data: [1, 2, 3, 4, 5, 6, 7, 8]}
  - {op: copy_buffer, id: 1, source: 2, offset: 16, size: 8}
  - {op: bind_vertex_array, id: 1}
  - {op: bind_vertex_buffer, id: 1, slot: 0, buffer: 1, stride: 4}
  - {op: bind_vertex_buffer, id: 1, slot: 3, buffer: 2, stride: 4}
  - {op: gen_textures, count: 1}
  - {op: tex_image, id: 1, format: rgba8, width: 8, height: 8}
  - {op: tex_image, id: 1, level: 1, format: rgba8, width: 4, height: 4}
  - {op: render_target, id: 1}
  - {op: delete_buffer, id: 2}
`

func TestReplay(t *testing.T) {
	tr, err := ReadTrace(strings.NewReader(sampleTrace))
	require.NoError(t, err)
	require.Len(t, tr.Ops, 14)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, tr.Ops[4].Data)

	dev := backendtest.NewDevice()
	p := NewPlayer(dev, tr)
	assert.Equal(t, "sample", p.Context().Label())
	assert.True(t, p.Context().RobustResourceInit())

	s, err := p.Run(tr)
	require.NoError(t, err)
	assert.Equal(t, Summary{
		Ops:           14,
		Buffers:       1,
		BufferBytes:   64,
		Textures:      1,
		RenderTargets: 1,
		VertexArrays:  1,
	}, s)
	assert.Equal(t, 2, dev.Stats.BuffersCreated)
	assert.Equal(t, 1, dev.Stats.BuffersDestroyed, "deleting a bound buffer detaches it from the bound vertex array")
	assert.Equal(t, 1, dev.Stats.ImagesCreated)

	p.Close()
	assert.Equal(t, 2, dev.Stats.BuffersDestroyed)
	assert.Equal(t, 1, dev.Stats.ImagesDestroyed)

	var out bytes.Buffer
	printSummary(&out, s, dev)
	assert.Contains(t, out.String(), "buffers:        1 (64 bytes)")
	assert.Contains(t, out.String(), "device images:  1 created")
}

func TestReplayErrors(t *testing.T) {
	tests := []struct {
		name string
		ops  string
		want string
	}{
		{"unknown op", `[{op: frobnicate}]`, `unknown op "frobnicate"`},
		{"unknown format", `[{op: tex_image, id: 1, format: rgb9, width: 1, height: 1}]`, `unknown format "rgb9"`},
		{"missing buffer", `[{op: buffer_sub_data, id: 7, data: [1]}]`, "buffer 7 not created"},
		{"name zero", `[{op: buffer_data, id: 0, size: 4}]`, "buffer name 0"},
		{"slot", `[{op: bind_vertex_buffer, id: 1, slot: 16}]`, "slot 16"},
		{"type mismatch", `[{op: tex_image, id: 1, format: rgba8, width: 1, height: 1}, {op: tex_storage, id: 1, type: 3d, levels: 1, format: rgba8, width: 1, height: 1}]`, "type mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := ReadTrace(strings.NewReader("ops: " + tt.ops))
			require.NoError(t, err)
			p := NewPlayer(backendtest.NewDevice(), tr)
			defer p.Close()
			_, err = p.Run(tr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestKeepGoing(t *testing.T) {
	tr, err := ReadTrace(strings.NewReader(`ops: [{op: nope}, {op: gen_textures, count: 2}, {op: delete_texture, id: 1}]`))
	require.NoError(t, err)
	p := NewPlayer(backendtest.NewDevice(), tr)
	defer p.Close()
	p.KeepGoing = true

	s, err := p.Run(tr)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Ops)
	assert.Equal(t, 1, s.Failed)
	assert.Zero(t, s.Textures)
}

func TestReadTraceRejectsUnknownFields(t *testing.T) {
	_, err := ReadTrace(strings.NewReader("ops: [{op: gen_buffers, cnt: 1}]"))
	assert.ErrorIs(t, err, errTrace)
}

func TestOpenNoopDevice(t *testing.T) {
	dev, release, err := openDevice("noop")
	require.NoError(t, err)
	defer release()

	tr, err := ReadTrace(strings.NewReader(`ops: [{op: buffer_data, id: 1, size: 16}, {op: tex_storage, id: 1, levels: 3, format: rgba8, width: 4, height: 4}, {op: render_target, id: 1, level: 2}]`))
	require.NoError(t, err)
	p := NewPlayer(dev, tr)
	defer p.Close()
	s, err := p.Run(tr)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Buffers)
	assert.Equal(t, 1, s.RenderTargets)
}

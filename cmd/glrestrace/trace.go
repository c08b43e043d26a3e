// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/glres"
	"github.com/gogpu/glres/backend"
	"github.com/gogpu/glres/buffer"
	"github.com/gogpu/glres/resource"
	"github.com/gogpu/glres/share"
	"github.com/gogpu/glres/texture"
	"github.com/gogpu/glres/vertexarray"
)

// Trace is a recorded sequence of calls against one context.
type Trace struct {
	Label      string `yaml:"label"`
	WebGL      bool   `yaml:"webgl"`
	RobustInit bool   `yaml:"robust_init"`
	Ops        []Op   `yaml:"ops"`
}

// Op is one call. Which fields matter depends on Op.
type Op struct {
	Op string `yaml:"op"`

	ID     resource.ID `yaml:"id"`
	Source resource.ID `yaml:"source"`
	Buffer resource.ID `yaml:"buffer"`
	Count  int         `yaml:"count"`

	Size   int64  `yaml:"size"`
	Offset int64  `yaml:"offset"`
	Data   []byte `yaml:"data"`
	Usage  string `yaml:"usage"`
	Write  bool   `yaml:"write"`

	IndexType string `yaml:"index_type"`
	Restart   bool   `yaml:"restart"`

	Type    string `yaml:"type"`
	Target  string `yaml:"target"`
	Format  string `yaml:"format"`
	Level   int    `yaml:"level"`
	Layer   int    `yaml:"layer"`
	Levels  int    `yaml:"levels"`
	Samples int    `yaml:"samples"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Depth   int    `yaml:"depth"`

	Slot   int `yaml:"slot"`
	Stride int `yaml:"stride"`
}

// errTrace marks malformed trace input.
var errTrace = errors.New("glrestrace: bad trace")

// ReadTrace decodes a YAML trace.
func ReadTrace(r io.Reader) (*Trace, error) {
	var tr Trace
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: %w", errTrace, err)
	}
	return &tr, nil
}

// Summary is what is left after a replay.
type Summary struct {
	Ops           int
	Failed        int
	Buffers       int
	BufferBytes   int64
	Textures      int
	RenderTargets int
	VertexArrays  int
}

// Player replays traces against one context.
type Player struct {
	ctx    *glres.Context
	group  *share.Group
	arrays map[resource.ID]*vertexarray.VertexArray
	bound  *vertexarray.VertexArray

	// KeepGoing counts failing ops instead of stopping at the first.
	KeepGoing bool
}

// NewPlayer creates a context on dev configured by tr.
func NewPlayer(dev backend.Device, tr *Trace) *Player {
	var opts []glres.ContextOption
	if tr.WebGL {
		opts = append(opts, glres.WithWebGL())
	}
	if tr.RobustInit {
		opts = append(opts, glres.WithRobustResourceInit())
	}
	if tr.Label != "" {
		opts = append(opts, glres.WithLabel(tr.Label))
	}
	ctx := glres.NewContext(dev, opts...)
	return &Player{
		ctx:    ctx,
		group:  share.NewGroup(ctx.ShareGroup()),
		arrays: make(map[resource.ID]*vertexarray.VertexArray),
	}
}

// Context returns the replay context.
func (p *Player) Context() *glres.Context { return p.ctx }

// Run executes every op of tr in order.
func (p *Player) Run(tr *Trace) (Summary, error) {
	var s Summary
	for i := range tr.Ops {
		op := &tr.Ops[i]
		s.Ops++
		if err := p.exec(op); err != nil {
			err = fmt.Errorf("op %d (%s): %w", i, op.Op, err)
			if !p.KeepGoing {
				return p.summarize(s), err
			}
			s.Failed++
			glres.Logger().Warn("glrestrace: op failed", "err", err)
		}
	}
	return p.summarize(s), nil
}

func (p *Player) summarize(s Summary) Summary {
	for _, b := range p.group.Buffers() {
		s.Buffers++
		s.BufferBytes += b.Size()
	}
	for _, t := range p.group.Textures() {
		s.Textures++
		s.RenderTargets += t.RenderTargetCount()
	}
	s.VertexArrays = len(p.arrays)
	return s
}

// Close destroys every object of the replay.
func (p *Player) Close() {
	for id, va := range p.arrays {
		va.OnDestroy()
		delete(p.arrays, id)
	}
	p.bound = nil
	p.group.Release(p.ctx)
	p.ctx.Release()
}

func (p *Player) exec(op *Op) error {
	switch op.Op {
	case "gen_buffers":
		ids := p.group.GenBuffers(op.Count)
		glres.Logger().Debug("glrestrace: buffers generated", "ids", ids)
		return nil
	case "buffer_data":
		usage, err := parseUsage(op.Usage)
		if err != nil {
			return err
		}
		b, err := p.buffer(op.ID)
		if err != nil {
			return err
		}
		return b.BufferData(p.ctx, buffer.BindingArray, op.Data, max(op.Size, int64(len(op.Data))), usage)
	case "buffer_sub_data":
		b, err := p.existingBuffer(op.ID)
		if err != nil {
			return err
		}
		return b.BufferSubData(p.ctx, buffer.BindingArray, op.Data, op.Offset)
	case "copy_buffer":
		dst, err := p.existingBuffer(op.ID)
		if err != nil {
			return err
		}
		src, err := p.existingBuffer(op.Source)
		if err != nil {
			return err
		}
		return dst.CopyBufferSubData(p.ctx, src, 0, op.Offset, op.Size)
	case "map_range":
		b, err := p.existingBuffer(op.ID)
		if err != nil {
			return err
		}
		access := buffer.MapReadBit
		if op.Write {
			access = buffer.MapWriteBit
		}
		if err := b.MapRange(p.ctx, op.Offset, op.Size, access); err != nil {
			return err
		}
		if op.Write {
			copy(b.MapPointer(), op.Data)
		}
		return nil
	case "unmap":
		b, err := p.existingBuffer(op.ID)
		if err != nil {
			return err
		}
		_, err = b.Unmap(p.ctx)
		return err
	case "index_range":
		return p.indexRange(op)
	case "delete_buffer":
		if b := p.group.Buffer(op.ID); b != nil && p.bound != nil {
			p.bound.DetachBuffer(b)
		}
		p.group.DeleteBuffer(p.ctx, op.ID)
		return nil

	case "gen_textures":
		ids := p.group.GenTextures(op.Count)
		glres.Logger().Debug("glrestrace: textures generated", "ids", ids)
		return nil
	case "tex_image":
		return p.texImage(op)
	case "tex_storage":
		t, err := p.texture(op)
		if err != nil {
			return err
		}
		f, err := parseFormat(op.Format)
		if err != nil {
			return err
		}
		return t.SetStorage(p.ctx, op.Levels, f, op.extents())
	case "base_level":
		t, err := p.existingTexture(op.ID)
		if err != nil {
			return err
		}
		return t.SetBaseLevel(p.ctx, op.Level)
	case "max_level":
		t, err := p.existingTexture(op.ID)
		if err != nil {
			return err
		}
		return t.SetMaxLevel(p.ctx, op.Level)
	case "generate_mipmap":
		t, err := p.existingTexture(op.ID)
		if err != nil {
			return err
		}
		return t.GenerateMipmap(p.ctx)
	case "render_target":
		return p.renderTarget(op)
	case "delete_texture":
		p.group.DeleteTexture(p.ctx, op.ID)
		return nil

	case "bind_vertex_array":
		p.bound = p.vertexArray(op.ID)
		return nil
	case "bind_vertex_buffer":
		va := p.vertexArray(op.ID)
		if op.Slot < 0 || op.Slot >= vertexarray.MaxBindings {
			return fmt.Errorf("%w: slot %d", errTrace, op.Slot)
		}
		va.BindVertexBuffer(op.Slot, p.group.CheckBufferAllocation(op.Buffer), op.Offset, op.Stride)
		return nil
	case "delete_vertex_array":
		if va, ok := p.arrays[op.ID]; ok {
			va.OnDestroy()
			delete(p.arrays, op.ID)
			if p.bound == va {
				p.bound = nil
			}
		}
		return nil
	}
	return fmt.Errorf("%w: unknown op %q", errTrace, op.Op)
}

func (p *Player) buffer(id resource.ID) (*buffer.Buffer, error) {
	b := p.group.CheckBufferAllocation(id)
	if b == nil {
		return nil, fmt.Errorf("%w: buffer name %d", errTrace, id)
	}
	return b, nil
}

func (p *Player) existingBuffer(id resource.ID) (*buffer.Buffer, error) {
	b := p.group.Buffer(id)
	if b == nil {
		return nil, fmt.Errorf("%w: buffer %d not created", errTrace, id)
	}
	return b, nil
}

func (p *Player) existingTexture(id resource.ID) (*texture.Texture, error) {
	t := p.group.Texture(id)
	if t == nil {
		return nil, fmt.Errorf("%w: texture %d not created", errTrace, id)
	}
	return t, nil
}

func (p *Player) texture(op *Op) (*texture.Texture, error) {
	typ, err := parseType(op.Type)
	if err != nil {
		return nil, err
	}
	t, err := p.group.CheckTextureAllocation(op.ID, typ)
	if err == nil && t == nil {
		err = fmt.Errorf("%w: texture name %d", errTrace, op.ID)
	}
	return t, err
}

func (p *Player) vertexArray(id resource.ID) *vertexarray.VertexArray {
	va, ok := p.arrays[id]
	if !ok {
		va = vertexarray.New(p.ctx, id)
		p.arrays[id] = va
	}
	return va
}

func (p *Player) indexRange(op *Op) error {
	b, err := p.existingBuffer(op.ID)
	if err != nil {
		return err
	}
	typ, err := parseIndexType(op.IndexType)
	if err != nil {
		return err
	}
	r, err := b.GetIndexRange(p.ctx, typ, uint64(op.Offset), op.Count, op.Restart)
	if err != nil {
		return err
	}
	glres.Logger().Info("glrestrace: index range", "buffer", op.ID,
		"start", r.Start, "end", r.End, "vertices", r.VertexIndexCount)
	return nil
}

func (p *Player) texImage(op *Op) error {
	t, err := p.texture(op)
	if err != nil {
		return err
	}
	target, err := parseTarget(op.Target)
	if err != nil {
		return err
	}
	f, err := parseFormat(op.Format)
	if err != nil {
		return err
	}
	return t.SetImage(p.ctx, target, op.Level, f, op.extents(), op.Data, texture.Unpack{})
}

func (p *Player) renderTarget(op *Op) error {
	t, err := p.existingTexture(op.ID)
	if err != nil {
		return err
	}
	target, err := parseTarget(op.Target)
	if err != nil {
		return err
	}
	samples := max(op.Samples, 1)
	rt, err := t.GetAttachmentRenderTarget(p.ctx, target,
		texture.ImageIndex{Level: op.Level, Layer: op.Layer}, samples)
	if err != nil {
		return err
	}
	glres.Logger().Debug("glrestrace: render target", "texture", op.ID,
		"level", rt.Level(), "layer", rt.Layer())
	return nil
}

func (op *Op) extents() backend.Extents {
	return backend.Extents{Width: op.Width, Height: op.Height, Depth: max(op.Depth, 1)}
}

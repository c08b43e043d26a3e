// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/glres/backend"
)

var (
	nextContextID    atomic.Uint64
	nextShareGroupID atomic.Uint64
)

// ShareGroup identifies a set of contexts that may reference the same
// objects. Mutations inside one group must be serialized by the caller.
type ShareGroup struct {
	id       uint64
	contexts atomic.Int32
}

// NewShareGroup returns an empty share group.
func NewShareGroup() *ShareGroup {
	return &ShareGroup{id: nextShareGroupID.Add(1)}
}

// ID returns the group's unique identifier.
func (g *ShareGroup) ID() uint64 { return g.id }

// ContextCount returns the number of live contexts in the group.
func (g *ShareGroup) ContextCount() int { return int(g.contexts.Load()) }

// Context is the identity of one rendering context, together with the
// feature flags and native device every object operation needs.
//
// Buffers and textures take the Context performing the call. They key
// per-context state, such as vertex binding masks, by the Context pointer.
type Context struct {
	id         uint64
	device     backend.Device
	webGL      bool
	robustInit bool
	shareGroup *ShareGroup
	label      string
	lost       atomic.Bool
	released   bool
}

// NewContext creates a context that allocates native storage on device.
func NewContext(device backend.Device, opts ...ContextOption) *Context {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.shareGroup == nil {
		o.shareGroup = NewShareGroup()
	}
	o.shareGroup.contexts.Add(1)

	c := &Context{
		id:         nextContextID.Add(1),
		device:     device,
		webGL:      o.webGL,
		robustInit: o.robustInit,
		shareGroup: o.shareGroup,
		label:      o.label,
	}
	Logger().Debug("glres: context created",
		"context", c.String(), "shareGroup", c.shareGroup.id, "webgl", c.webGL)
	return c
}

// ID returns the context's unique identifier.
func (c *Context) ID() uint64 { return c.id }

// Device returns the native device.
func (c *Context) Device() backend.Device { return c.device }

// IsWebGL reports whether WebGL compatibility rules apply.
func (c *Context) IsWebGL() bool { return c.webGL }

// RobustResourceInit reports whether new storage must be cleared.
func (c *Context) RobustResourceInit() bool { return c.robustInit }

// ShareGroup returns the group the context belongs to.
func (c *Context) ShareGroup() *ShareGroup { return c.shareGroup }

// Label returns the debug label.
func (c *Context) Label() string { return c.label }

// IsLost reports whether a backend call reported device loss.
func (c *Context) IsLost() bool { return c.lost.Load() }

// Release removes the context from its share group. It is safe to call more
// than once.
func (c *Context) Release() {
	if c.released {
		return
	}
	c.released = true
	c.shareGroup.contexts.Add(-1)
}

// String returns the label, or the numeric ID when no label is set.
func (c *Context) String() string {
	if c == nil {
		return "<nil>"
	}
	if c.label != "" {
		return c.label
	}
	return fmt.Sprintf("context#%d", c.id)
}

// Fail converts a backend error returned during op into the error reported
// at the API boundary and logs it. Errors already carrying ErrUnsupported,
// ErrOutOfMemory or ErrContextLost keep their classification; device loss
// becomes ErrContextLost and marks the context lost; anything else is
// reported as ErrOutOfMemory. A nil err returns nil.
func (c *Context) Fail(op string, err error) error {
	if err == nil {
		return nil
	}

	var out error
	switch {
	case errors.Is(err, ErrUnsupported), errors.Is(err, ErrOutOfMemory), errors.Is(err, ErrContextLost):
		out = fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, backend.ErrDeviceLost):
		c.lost.Store(true)
		out = fmt.Errorf("%s: %w: %w", op, ErrContextLost, err)
	default:
		out = fmt.Errorf("%s: %w: %w", op, ErrOutOfMemory, err)
	}

	level := slog.LevelWarn
	if errors.Is(err, ErrUnsupported) {
		level = slog.LevelDebug
	}
	Logger().Log(context.Background(), level, "glres: operation failed",
		"op", op, "context", c.String(), "err", err)
	return out
}

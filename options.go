// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glres

// ContextOption configures a Context during creation.
//
// Example:
//
//	// Standalone desktop GL context
//	ctx := glres.NewContext(dev)
//
//	// WebGL context sharing objects with ctx
//	web := glres.NewContext(dev, glres.WithWebGL(), glres.WithShareGroup(ctx.ShareGroup()))
type ContextOption func(*contextOptions)

type contextOptions struct {
	webGL      bool
	robustInit bool
	shareGroup *ShareGroup
	label      string
}

func defaultOptions() contextOptions {
	return contextOptions{}
}

// WithWebGL enables WebGL compatibility rules, such as the transform
// feedback binding conflict check and buffer type tracking.
func WithWebGL() ContextOption {
	return func(o *contextOptions) {
		o.webGL = true
	}
}

// WithRobustResourceInit requests that newly allocated storage is cleared
// before first use.
func WithRobustResourceInit() ContextOption {
	return func(o *contextOptions) {
		o.robustInit = true
	}
}

// WithShareGroup makes the context a member of g. Contexts in one share group
// may reference the same buffers and textures. Without this option every
// context starts its own group.
func WithShareGroup(g *ShareGroup) ContextOption {
	return func(o *contextOptions) {
		o.shareGroup = g
	}
}

// WithLabel sets a debug label used in log output.
func WithLabel(label string) ContextOption {
	return func(o *contextOptions) {
		o.label = label
	}
}

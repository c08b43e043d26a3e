// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glres

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Enabled is false, so attribute values of
// Debug calls on hot paths like staged update flushes are never formatted.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(newNopLogger())
}

// SetLogger configures the logger for glres and all its sub-packages.
// By default, glres produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent logger.
//
// Log levels used by glres:
//   - [slog.LevelDebug]: allocation, teardown and flush decisions
//   - [slog.LevelInfo]: device selection in tools
//   - [slog.LevelWarn]: backend failures returned to the caller
//
// Example:
//
//	glres.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	current.Store(l)
}

// Logger returns the current logger. Sub-packages (buffer, texture,
// backend/native) call this to share one configuration.
func Logger() *slog.Logger {
	return current.Load()
}

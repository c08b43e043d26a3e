// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a small generic LRU cache for derived data that can
// be recomputed on a miss, such as the index ranges of a buffer.
//
//	c := cache.New[key, IndexRange](32)
//	c.Set(k, r)
//	r, ok := c.Get(k)
//	c.DeleteFunc(func(k key, _ IndexRange) bool { return k.overlaps(off, size) })
//
// # Thread Safety
//
// Cache does no locking. It lives inside objects whose callers already
// serialize access.
package cache

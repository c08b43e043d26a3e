// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Backend errors.
var (
	// ErrNotAvailable is returned when a requested device is not registered.
	ErrNotAvailable = errors.New("backend: not available")

	// ErrDeviceLost is wrapped by implementations when the native device
	// stops responding.
	ErrDeviceLost = errors.New("backend: device lost")
)

// Factory opens a Device together with a function releasing it.
type Factory func() (Device, func(), error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for Default (first registered wins).
	priority = []string{NameNative, NameMemory}
)

// Well-known device names.
const (
	NameNative = "native"
	NameMemory = "memory"
)

// Register registers a device factory under name. Packages call it from
// init. A factory registered under an existing name replaces it.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes name from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether name has a factory.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open opens the device registered under name.
func Open(name string) (Device, func(), error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrNotAvailable, name)
	}
	return factory()
}

// OpenDefault opens the first available device in priority order, falling
// back to any registered one.
func OpenDefault() (Device, func(), error) {
	registryMu.RLock()
	names := make([]string, 0, len(factories))
	for _, name := range priority {
		if _, ok := factories[name]; ok {
			names = append(names, name)
		}
	}
	for name := range factories {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	registryMu.RUnlock()

	var errs []error
	for _, name := range names {
		dev, release, err := Open(name)
		if err == nil {
			return dev, release, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, nil, ErrNotAvailable
	}
	return nil, nil, errors.Join(errs...)
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command glrestrace replays a YAML trace of buffer and texture calls and
// prints what the replay allocated.
//
// Usage:
//
//	glrestrace -trace calls.yaml [-device memory|native|noop] [-v]
//
// A trace looks like:
//
//	label: demo
//	ops:
//	  - {op: gen_buffers, count: 1}
//	  - {op: buffer_data, id: 1, size: 256, usage: dynamic_draw}
//	  - {op: tex_image, id: 1, format: rgba8, width: 64, height: 64}
//	  - {op: render_target, id: 1}
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/glres"
	"github.com/gogpu/glres/backend"
	"github.com/gogpu/glres/backend/backendtest"
	"github.com/gogpu/glres/backend/native"
)

func main() {
	var (
		tracePath = flag.String("trace", "", "trace file (default stdin)")
		device    = flag.String("device", backend.NameMemory, "device: memory, native or noop")
		verbose   = flag.Bool("v", false, "debug logging")
		keepGoing = flag.Bool("k", false, "keep going after a failing op")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	glres.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	in := io.Reader(os.Stdin)
	if *tracePath != "" {
		f, err := os.Open(*tracePath)
		if err != nil {
			log.Fatalf("Failed to open trace: %v", err)
		}
		defer f.Close()
		in = f
	}
	tr, err := ReadTrace(in)
	if err != nil {
		log.Fatalf("Failed to read trace: %v", err)
	}

	dev, release, err := openDevice(*device)
	if err != nil {
		log.Fatalf("Failed to open device %q: %v", *device, err)
	}
	defer release()

	p := NewPlayer(dev, tr)
	p.KeepGoing = *keepGoing
	summary, runErr := p.Run(tr)
	printSummary(os.Stdout, summary, dev)
	p.Close()
	if runErr != nil {
		log.Printf("Replay stopped: %v", runErr)
		release()
		os.Exit(1)
	}
}

// openDevice opens the device called name. "noop" is the HAL backend over
// the noop driver, which exercises the native path without a GPU.
func openDevice(name string) (backend.Device, func(), error) {
	if name != "noop" {
		return backend.Open(name)
	}
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, err
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, fmt.Errorf("%w: no noop adapters", backend.ErrNotAvailable)
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, err
	}
	dev, err := native.NewDevice(openDev.Device, openDev.Queue)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, nil, err
	}
	var released bool
	return dev, func() {
		if released {
			return
		}
		released = true
		openDev.Device.Destroy()
		instance.Destroy()
	}, nil
}

func printSummary(w io.Writer, s Summary, dev backend.Device) {
	fmt.Fprintf(w, "ops:            %d (%d failed)\n", s.Ops, s.Failed)
	fmt.Fprintf(w, "buffers:        %d (%d bytes)\n", s.Buffers, s.BufferBytes)
	fmt.Fprintf(w, "textures:       %d\n", s.Textures)
	fmt.Fprintf(w, "render targets: %d\n", s.RenderTargets)
	fmt.Fprintf(w, "vertex arrays:  %d\n", s.VertexArrays)
	if mem, ok := dev.(*backendtest.Device); ok {
		st := mem.Stats
		fmt.Fprintf(w, "device buffers: %d created, %d destroyed, %d writes, %d copies\n",
			st.BuffersCreated, st.BuffersDestroyed, st.BufferWrites, st.BufferCopies)
		fmt.Fprintf(w, "device images:  %d created, %d destroyed, %d uploads, %d mip generations\n",
			st.ImagesCreated, st.ImagesDestroyed, st.Uploads, st.MipmapGenerations)
		fmt.Fprintf(w, "device views:   %d created, %d destroyed\n", st.ViewsCreated, st.ViewsDestroyed)
	}
}

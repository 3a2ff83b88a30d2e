// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command mdview renders the built-in demo scenes, either interactively
// in a window or headless to a PNG.
//
// Usage:
//
//	mdview [-width 640] [-height 480] [-scene mesh|sdf|volumetric]
//	       [-config viewer.toml] [-gpu] [-output out.png [-frames 8]]
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/mdview"
	"github.com/gogpu/mdview/render"
)

func main() {
	width := flag.Int("width", 640, "viewport width")
	height := flag.Int("height", 480, "viewport height")
	scene := flag.String("scene", "mesh", "demo scene: mesh, sdf, volumetric")
	configPath := flag.String("config", "", "TOML quality config")
	useGPU := flag.Bool("gpu", false, "present frames through the GPU backend")
	output := flag.String("output", "", "render headless to this PNG instead of opening a window")
	frames := flag.Int("frames", 8, "frames to accumulate before a headless snapshot")
	verbose := flag.Bool("v", false, "log to stderr")
	flag.Parse()

	if *verbose {
		mdview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	cat, err := parseScene(*scene)
	if err != nil {
		log.Fatalf("mdview: %v", err)
	}

	var opts []render.Option
	if *configPath != "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			log.Fatalf("mdview: %v", err)
		}
		if opts, err = cfg.options(); err != nil {
			log.Fatalf("mdview: %v", err)
		}
	}

	if *output != "" {
		if err := renderHeadless(*width, *height, cat, *frames, *output, opts); err != nil {
			log.Fatalf("mdview: %v", err)
		}
		fmt.Printf("wrote %s\n", *output)
		return
	}

	v, err := newViewer(*width, *height, cat, *useGPU, opts)
	if err != nil {
		log.Fatalf("mdview: %v", err)
	}
	if err := runViewer(v); err != nil {
		log.Fatalf("mdview: %v", err)
	}
}

func parseScene(name string) (mdview.Category, error) {
	switch name {
	case "mesh":
		return mdview.CategoryMesh, nil
	case "sdf":
		return mdview.CategorySDF, nil
	case "volumetric":
		return mdview.CategoryVolumetric, nil
	}
	return 0, fmt.Errorf("unknown scene %q", name)
}

// renderHeadless runs the pipeline for a few frames so the volumetric
// history warms up, then writes the composited output as a PNG.
func renderHeadless(width, height int, cat mdview.Category, frames int, path string, opts []render.Option) error {
	pipe, err := render.NewPipeline(width, height, opts...)
	if err != nil {
		return err
	}
	defer pipe.Release()

	if frames < 1 {
		frames = 1
	}
	in := demoInput(cat, 0.6)
	for i := 0; i < frames; i++ {
		if err := pipe.RenderFrame(in); err != nil {
			return err
		}
	}

	out, err := pipe.Output()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, render.Snapshot(out))
}

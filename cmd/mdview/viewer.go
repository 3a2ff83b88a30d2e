// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/mdview"
	"github.com/gogpu/mdview/backend/wgpu"
	"github.com/gogpu/mdview/render"
)

// viewer drives the pipeline from an ebiten game loop. Keys 1/2/3 switch
// the object category, space pauses the orbit, S writes a screenshot next
// to the binary.
type viewer struct {
	pipe     *render.Pipeline
	width    int
	height   int
	category mdview.Category
	angle    float32
	paused   bool

	// GPU presentation, nil when no device opened. The CPU composite
	// is still the source of truth; the mirror only packs the output
	// target for display.
	dev       *wgpu.Device
	mirror    *wgpu.FrameMirror
	presenter *wgpu.Presenter

	frame  *ebiten.Image
	status string
}

func newViewer(width, height int, cat mdview.Category, useGPU bool, opts []render.Option) (*viewer, error) {
	pipe, err := render.NewPipeline(width, height, opts...)
	if err != nil {
		return nil, err
	}
	v := &viewer{pipe: pipe, width: width, height: height, category: cat}
	if useGPU {
		v.openGPU()
	}
	return v, nil
}

// openGPU tries to attach a presentation device. Failure is not fatal;
// the viewer falls back to CPU snapshots.
func (v *viewer) openGPU() {
	dev, err := wgpu.Open()
	if err != nil {
		mdview.Logger().Warn("gpu presentation unavailable", slog.String("err", err.Error()))
		return
	}
	mirror, err := wgpu.NewFrameMirror(dev, v.pipe.Resources())
	if err != nil {
		mdview.Logger().Warn("frame mirror init failed", slog.String("err", err.Error()))
		dev.Close()
		return
	}
	presenter, err := wgpu.NewPresenter(dev)
	if err != nil {
		mdview.Logger().Warn("presenter init failed", slog.String("err", err.Error()))
		mirror.Release()
		dev.Close()
		return
	}
	v.dev, v.mirror, v.presenter = dev, mirror, presenter
	info := dev.Info()
	v.status = "gpu: " + info.Name
	mdview.Logger().Info("gpu presentation enabled", slog.String("adapter", info.Name))
}

func (v *viewer) closeGPU() {
	if v.dev == nil {
		return
	}
	v.presenter.Destroy()
	v.mirror.Release()
	v.dev.Close()
	v.dev, v.mirror, v.presenter = nil, nil, nil
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		v.category = mdview.CategoryMesh
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		v.category = mdview.CategorySDF
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		v.category = mdview.CategoryVolumetric
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		v.paused = !v.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		if err := v.screenshot(); err != nil {
			mdview.Logger().Warn("screenshot failed", slog.String("err", err.Error()))
		}
	}
	if !v.paused {
		v.angle += 0.01
	}

	if err := v.pipe.RenderFrame(demoInput(v.category, v.angle)); err != nil {
		return err
	}
	return v.present()
}

// present copies the composited output into the ebiten frame image,
// through the GPU pack shader when a device is attached.
func (v *viewer) present() error {
	if v.frame == nil {
		v.frame = ebiten.NewImage(v.width, v.height)
	}
	if v.dev != nil {
		pix, err := wgpu.PresentPipeline(v.mirror, v.presenter, v.pipe)
		if err == nil {
			v.frame.WritePixels(pix)
			return nil
		}
		mdview.Logger().Warn("gpu present failed, dropping to cpu path", slog.String("err", err.Error()))
		v.closeGPU()
		v.status = ""
	}
	out, err := v.pipe.Output()
	if err != nil {
		return err
	}
	v.frame.WritePixels(render.Snapshot(out).Pix)
	return nil
}

func (v *viewer) screenshot() error {
	out, err := v.pipe.Output()
	if err != nil {
		return err
	}
	name := fmt.Sprintf("mdview-%s-%d.png", v.category, time.Now().Unix())
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, render.Snapshot(out)); err != nil {
		return err
	}
	mdview.Logger().Info("screenshot saved", slog.String("path", name))
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if v.frame != nil {
		screen.DrawImage(v.frame, nil)
	}
	msg := fmt.Sprintf("[1] mesh  [2] sdf  [3] volumetric  [space] pause  [s] shot\n%s  %s",
		v.category, v.status)
	ebitenutil.DebugPrint(screen, msg)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width, v.height
}

func runViewer(v *viewer) error {
	defer v.closeGPU()
	defer v.pipe.Release()
	ebiten.SetWindowTitle("mdview")
	ebiten.SetWindowSize(v.width*2, v.height*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(v)
}

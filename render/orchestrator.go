// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/mdview"
	"github.com/gogpu/mdview/internal/parallel"
)

// Pipeline sequences the render passes for each frame and manages the
// clear-vs-preserve contract of every target. It is single-threaded from
// the host's perspective: passes run in a fixed order on one logical
// stream with one producer per target per frame, so ordering alone
// replaces locks. Within a pass, rows are fanned out across a worker
// pool; rows never alias, so the fan-out is invisible to pass ordering.
//
// A frame either completes the pass sequence or is abandoned wholesale:
// validation and resource failures surface before any pass writes, and an
// abandoned frame leaves the previous output intact; no half-rendered
// frame is presented.
type Pipeline struct {
	res   *FrameResources
	accum *accumulator
	cfg   config
	pool  *parallel.Pool

	frame        uint64
	shadowValid  bool
	haveCategory bool
	lastCategory mdview.Category
	lastDim      int
}

// NewPipeline allocates a pipeline for a width x height frame.
func NewPipeline(width, height int, opts ...Option) (*Pipeline, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	res := NewFrameResources()
	res.shadowMapSize = cfg.shadowMapSize
	if err := res.Allocate(width, height); err != nil {
		return nil, fmt.Errorf("render: allocating frame resources: %w", err)
	}
	return &Pipeline{
		res:   res,
		accum: newAccumulator(res),
		cfg:   cfg,
		pool:  parallel.New(0),
	}, nil
}

// Resize abandons any in-flight state and reallocates every target. The
// next frame is a cold start: temporal history is discarded and shadows
// re-evaluate.
func (p *Pipeline) Resize(width, height int) error {
	if err := p.res.Allocate(width, height); err != nil {
		return err
	}
	if p.pool == nil {
		p.pool = parallel.New(0)
	}
	p.accum.invalidate()
	p.shadowValid = false
	return nil
}

// Release frees all GPU-side resources. The pipeline is unusable
// afterwards until Resize.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	p.res.Release()
}

// Resources exposes the target set for introspection and export.
func (p *Pipeline) Resources() *FrameResources { return p.res }

// Output returns the final composited color target for the
// post-processing handoff (tone mapping, bloom), read-only.
func (p *Pipeline) Output() (*Target, error) { return p.res.Get(TargetOutput) }

// Normals returns the G-buffer normal target for downstream SSAO or
// outline effects, read-only.
func (p *Pipeline) Normals() (*Target, error) { return p.res.Get(TargetGNormal) }

// ReadPixel reads one texel of a named target back to host memory.
// Accuracy is only guaranteed for full-precision targets; see
// Target.ReadPixel for the degraded half-float semantics.
func (p *Pipeline) ReadPixel(name string, x, y int) ([4]float32, error) {
	t, err := p.res.Get(name)
	if err != nil {
		return [4]float32{}, err
	}
	return t.ReadPixel(x, y)
}

// RenderFrame runs the pass sequence for one input snapshot:
//
//	object pass (auto-clear) -> volumetric sub-pipeline (preserving)
//	-> shadow pass -> lighting pass
//
// The input is read exactly once; light-list updates between frames never
// tear a frame.
func (p *Pipeline) RenderFrame(in mdview.FrameInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	if !p.haveCategory || in.Category != p.lastCategory || in.Dimension != p.lastDim {
		// Object or dimension change: shadow strategy re-resolves and
		// volumetric history no longer matches the scene.
		p.accum.invalidate()
		p.shadowValid = false
		p.haveCategory = true
		p.lastCategory = in.Category
		p.lastDim = in.Dimension
	}

	fs := &frameState{
		in:     &in,
		cam:    in.Camera.Frame(p.res.Width(), p.res.Height()),
		lights: mdview.ActiveLights(in.Lights),
		bounds: in.ObjectBounds(),
		cfg:    &p.cfg,
		pool:   p.pool,
	}

	g, err := p.res.gbuffer()
	if err != nil {
		return err
	}
	shadow, err := p.res.Get(TargetShadow)
	if err != nil {
		return err
	}
	shadowMap, err := p.res.Get(TargetShadowMap)
	if err != nil {
		return err
	}
	out, err := p.res.Get(TargetOutput)
	if err != nil {
		return err
	}

	mdview.Logger().Debug("render: frame start",
		slog.Uint64("frame", p.frame),
		slog.String("category", in.Category.String()),
		slog.Int("lights", len(fs.lights)))

	// Object pass: the frame's first producer auto-clears the G-buffer.
	g.begin()
	renderGBuffer(fs, g)

	// Volumetric sub-pipeline: composites over the object pass, so the
	// G-buffer must not auto-clear again.
	if in.Category == mdview.CategoryVolumetric {
		err := preserving(func() error {
			g.begin()
			return p.accum.render(fs, g)
		}, g.Color, g.Normal, g.Depth)
		if err != nil {
			return fmt.Errorf("render: volumetric pass: %w", err)
		}
	}

	// Shadow pass. With shadow animation off, the term re-evaluates on a
	// cadence and is preserved in between; skipped frames issue no pass
	// into the target, which is exactly the preserve contract.
	if p.cfg.shadowsEnabled && p.shadowDue() {
		evaluateShadow(fs, g, shadow, shadowMap)
		p.shadowValid = true
	}

	compositeLighting(fs, g, shadow, out)

	p.frame++
	return nil
}

// shadowDue reports whether the shadow term re-evaluates this frame.
func (p *Pipeline) shadowDue() bool {
	if p.cfg.shadowEveryFrame || !p.shadowValid {
		return true
	}
	return p.frame%uint64(p.cfg.shadowInterval) == 0
}

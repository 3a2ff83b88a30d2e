// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/mdview"
)

func TestPipelineUnitNormalsAllCategories(t *testing.T) {
	for _, cat := range []mdview.Category{
		mdview.CategoryMesh, mdview.CategorySDF, mdview.CategoryVolumetric,
	} {
		t.Run(cat.String(), func(t *testing.T) {
			p, err := NewPipeline(16, 16)
			if err != nil {
				t.Fatal(err)
			}
			defer p.Release()

			in := testInput(cat)
			if err := p.RenderFrame(in); err != nil {
				t.Fatal(err)
			}

			g, err := p.res.gbuffer()
			if err != nil {
				t.Fatal(err)
			}
			covered := 0
			for y := 0; y < 16; y++ {
				for x := 0; x < 16; x++ {
					if g.background(x, y) {
						continue
					}
					covered++
					n := DecodeNormal(g.Normal.at(x, y))
					if !near(n.Len(), 1, 1e-2) {
						t.Fatalf("pixel (%d,%d) normal length = %v", x, y, n.Len())
					}
					if d := g.Depth.at(x, y)[0]; d <= 0 {
						t.Fatalf("pixel (%d,%d) covered with depth %v", x, y, d)
					}
				}
			}
			if covered == 0 {
				t.Fatal("object not visible")
			}
		})
	}
}

func TestPipelineTemporalConvergence(t *testing.T) {
	p, err := NewPipeline(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	in := testInput(mdview.CategoryVolumetric)

	// Warm up past the cold start and one full dither cycle.
	for i := 0; i < 5; i++ {
		if err := p.RenderFrame(in); err != nil {
			t.Fatal(err)
		}
	}
	out, _ := p.Output()
	frameN := make([]float32, len(out.Pixels()))
	copy(frameN, out.Pixels())

	// One more full cycle over a static scene reproduces the frame.
	for i := 0; i < 4; i++ {
		if err := p.RenderFrame(in); err != nil {
			t.Fatal(err)
		}
	}
	for i, v := range out.Pixels() {
		if !near(v, frameN[i], 1e-5) {
			t.Fatalf("static scene diverged at %d: %v vs %v", i, frameN[i], v)
		}
	}
}

func TestPipelineResizeColdStarts(t *testing.T) {
	p, err := NewPipeline(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	in := testInput(mdview.CategoryVolumetric)
	for i := 0; i < 3; i++ {
		if err := p.RenderFrame(in); err != nil {
			t.Fatal(err)
		}
	}

	if err := p.Resize(24, 24); err != nil {
		t.Fatal(err)
	}
	if p.accum.warm {
		t.Error("resize should invalidate temporal history")
	}
	if err := p.RenderFrame(in); err != nil {
		t.Fatal(err)
	}
	// Cold start: cycle restarted at phase 0 and advanced once.
	if p.accum.cycle.phase != 1 {
		t.Errorf("phase = %d after post-resize frame", p.accum.cycle.phase)
	}
	if out, _ := p.Output(); out.Width() != 24 {
		t.Errorf("output width = %d", out.Width())
	}
}

func TestPipelineCategorySwitchInvalidates(t *testing.T) {
	p, err := NewPipeline(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	if err := p.RenderFrame(testInput(mdview.CategoryVolumetric)); err != nil {
		t.Fatal(err)
	}
	if !p.accum.warm {
		t.Fatal("accumulator should be warm")
	}

	if err := p.RenderFrame(testInput(mdview.CategoryMesh)); err != nil {
		t.Fatal(err)
	}
	if p.accum.warm {
		t.Error("category switch should drop volumetric history")
	}
}

func TestPipelineDimensionSwitchInvalidates(t *testing.T) {
	p, err := NewPipeline(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	in := testInput(mdview.CategoryVolumetric)
	if err := p.RenderFrame(in); err != nil {
		t.Fatal(err)
	}
	in.Dimension = 4
	if err := p.RenderFrame(in); err != nil {
		t.Fatal(err)
	}
	if p.accum.cycle.phase != 1 {
		t.Errorf("phase = %d, want cold restart on dimension change", p.accum.cycle.phase)
	}
}

func TestPipelineShadowCadencePreserves(t *testing.T) {
	p, err := NewPipeline(16, 16,
		WithShadowAnimation(false),
		WithShadowInterval(100))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	in := testInput(mdview.CategorySDF)
	if err := p.RenderFrame(in); err != nil {
		t.Fatal(err)
	}

	// Plant a sentinel in the shadow term. Frames that skip the shadow
	// pass issue no writes into the target at all, so it survives.
	shadow, _ := p.res.Get(TargetShadow)
	shadow.set(3, 3, [4]float32{0.123})

	if err := p.RenderFrame(in); err != nil {
		t.Fatal(err)
	}
	if v := shadow.at(3, 3)[0]; v != 0.123 {
		t.Errorf("skipped shadow frame wrote the target: %v", v)
	}

	// Every-frame mode recomputes immediately.
	p2, err := NewPipeline(16, 16, WithShadowAnimation(true))
	if err != nil {
		t.Fatal(err)
	}
	defer p2.Release()
	if err := p2.RenderFrame(in); err != nil {
		t.Fatal(err)
	}
	shadow2, _ := p2.res.Get(TargetShadow)
	shadow2.set(3, 3, [4]float32{0.123})
	if err := p2.RenderFrame(in); err != nil {
		t.Fatal(err)
	}
	if v := shadow2.at(3, 3)[0]; v == 0.123 {
		t.Error("animated shadow frame did not recompute")
	}
}

func TestPipelineShadowsDisabled(t *testing.T) {
	p, err := NewPipeline(16, 16, WithShadows(false))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	if err := p.RenderFrame(testInput(mdview.CategorySDF)); err != nil {
		t.Fatal(err)
	}
	shadow, _ := p.res.Get(TargetShadow)
	for _, v := range shadow.Pixels() {
		if v != 1 {
			t.Fatalf("shadows disabled but term = %v", v)
		}
	}
}

func TestPipelineInvalidInputAbandonsFrame(t *testing.T) {
	p, err := NewPipeline(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	if err := p.RenderFrame(testInput(mdview.CategorySDF)); err != nil {
		t.Fatal(err)
	}
	out, _ := p.Output()
	before := make([]float32, len(out.Pixels()))
	copy(before, out.Pixels())

	bad := testInput(mdview.CategorySDF)
	bad.Distance = nil
	if err := p.RenderFrame(bad); !errors.Is(err, mdview.ErrMissingGeometry) {
		t.Fatalf("err = %v, want ErrMissingGeometry", err)
	}
	badDim := testInput(mdview.CategorySDF)
	badDim.Dimension = 1
	if err := p.RenderFrame(badDim); !errors.Is(err, mdview.ErrInvalidDimension) {
		t.Fatalf("err = %v, want ErrInvalidDimension", err)
	}
	noBounds := testInput(mdview.CategoryVolumetric)
	noBounds.Bounds = mdview.AABB{}
	if err := p.RenderFrame(noBounds); !errors.Is(err, mdview.ErrMissingBounds) {
		t.Fatalf("err = %v, want ErrMissingBounds", err)
	}

	// The previous output is intact: no half-rendered frame.
	for i, v := range out.Pixels() {
		if v != before[i] {
			t.Fatalf("abandoned frame modified output at %d", i)
		}
	}
}

func TestPipelineReadPixelContract(t *testing.T) {
	p, err := NewPipeline(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	if err := p.RenderFrame(testInput(mdview.CategorySDF)); err != nil {
		t.Fatal(err)
	}

	if _, err := p.ReadPixel("nonesuch", 0, 0); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("unknown target err = %v", err)
	}
	if _, err := p.ReadPixel(TargetOutput, 99, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("out-of-bounds err = %v", err)
	}

	v, err := p.ReadPixel(TargetGColor, 8, 8)
	if !errors.Is(err, ErrPrecisionMismatch) {
		t.Fatalf("half-float readback err = %v", err)
	}
	if v != [4]float32{} {
		t.Errorf("half-float readback = %v, want zeros", v)
	}

	d, err := p.ReadPixel(TargetGDepth, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !near(d[0], 3, 0.05) {
		t.Errorf("center depth readback = %v", d[0])
	}
}

func TestPipelineOutputAndNormalsHandoff(t *testing.T) {
	p, err := NewPipeline(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	if err := p.RenderFrame(testInput(mdview.CategoryMesh)); err != nil {
		t.Fatal(err)
	}
	out, err := p.Output()
	if err != nil {
		t.Fatal(err)
	}
	if out.Name() != TargetOutput {
		t.Errorf("output target = %s", out.Name())
	}
	normals, err := p.Normals()
	if err != nil {
		t.Fatal(err)
	}
	if normals.Name() != TargetGNormal {
		t.Errorf("normals target = %s", normals.Name())
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/mdview"
)

func TestDitherCycle(t *testing.T) {
	var d ditherCycle
	want := [][2]int{{0, 0}, {1, 1}, {1, 0}, {0, 1}, {0, 0}}
	for i, w := range want {
		if d.offset() != w {
			t.Fatalf("frame %d offset = %v, want %v", i, d.offset(), w)
		}
		d.advance()
	}
	d.reset()
	if d.offset() != [2]int{0, 0} {
		t.Errorf("offset after reset = %v", d.offset())
	}
}

// poison fills a target with a sentinel so any read of stale contents is
// detectable in the result.
func poison(tg *Target, v float32) {
	pix := tg.Pixels()
	for i := range pix {
		pix[i] = v
	}
}

func volumetricSetup(t *testing.T, w, h int) (*FrameResources, *accumulator, *frameState, GBuffer) {
	t.Helper()
	r := NewFrameResources()
	if err := r.Allocate(w, h); err != nil {
		t.Fatal(err)
	}
	g, err := r.gbuffer()
	if err != nil {
		t.Fatal(err)
	}
	in := testInput(mdview.CategoryVolumetric)
	fs := newTestState(&in, w, h, defaultConfig())
	return r, newAccumulator(r), fs, g
}

func TestAccumulatorColdStartIgnoresHistory(t *testing.T) {
	_, a, fs, g := volumetricSetup(t, 16, 16)

	// History is undefined after allocation; make "undefined" loud.
	ch, cw, nh, nw, err := a.buffers()
	if err != nil {
		t.Fatal(err)
	}
	for _, tg := range []*Target{ch, cw, nh, nw} {
		poison(tg, 42)
	}

	g.begin()
	if err := a.render(fs, g); err != nil {
		t.Fatal(err)
	}

	// After the cold frame, last frame's write buffer is the new
	// history; no sentinel may survive in it.
	chNew, _, nhNew, _, _ := a.buffers()
	for _, tg := range []*Target{chNew, nhNew} {
		for _, v := range tg.Pixels() {
			if v == 42 {
				t.Fatalf("sentinel leaked through cold start in %s", tg.Name())
			}
		}
	}
	if !a.warm {
		t.Error("accumulator should be warm after a frame")
	}
	// Cold start resets the cycle to phase 0, then advances once.
	if a.cycle.phase != 1 {
		t.Errorf("phase = %d, want 1", a.cycle.phase)
	}
}

func TestAccumulatorParityPingPong(t *testing.T) {
	_, a, fs, g := volumetricSetup(t, 16, 16)

	g.begin()
	if err := a.render(fs, g); err != nil {
		t.Fatal(err)
	}
	if a.parity != 1 {
		t.Fatalf("parity = %d after first frame", a.parity)
	}

	// Phase 1 refreshes the (1,1) class. A sentinel planted in history
	// at an even texel must be copied through, proving both the role
	// resolution and the phase selection.
	ch, _, _, _, err := a.buffers()
	if err != nil {
		t.Fatal(err)
	}
	ch.set(0, 0, [4]float32{7, 7, 7, 7})
	ch.set(1, 1, [4]float32{7, 7, 7, 7})

	if err := preserving(func() error {
		g.begin()
		return a.render(fs, g)
	}, g.Color, g.Normal, g.Depth); err != nil {
		t.Fatal(err)
	}
	if a.parity != 0 {
		t.Fatalf("parity = %d after second frame", a.parity)
	}

	chNew, _, _, _, _ := a.buffers()
	if chNew.at(0, 0) != [4]float32{7, 7, 7, 7} {
		t.Error("non-phase texel was not copied from history")
	}
	if chNew.at(1, 1) == [4]float32{7, 7, 7, 7} {
		t.Error("phase texel was not refreshed")
	}
}

func TestAccumulatorInvalidateForcesColdStart(t *testing.T) {
	_, a, fs, g := volumetricSetup(t, 16, 16)

	g.begin()
	_ = a.render(fs, g)
	_ = a.render(fs, g)
	if a.cycle.phase != 2 {
		t.Fatalf("phase = %d after two frames", a.cycle.phase)
	}

	a.invalidate()
	_ = a.render(fs, g)
	if a.cycle.phase != 1 {
		t.Errorf("phase = %d, want cold restart at 0 then advance", a.cycle.phase)
	}
}

func TestAccumulatorGenerationMismatchForcesColdStart(t *testing.T) {
	r, a, fs, g := volumetricSetup(t, 16, 16)

	g.begin()
	_ = a.render(fs, g)
	_ = a.render(fs, g)

	// Reallocation bumps the generation; the accumulator must not trust
	// its warm flag across it.
	if err := r.Allocate(16, 16); err != nil {
		t.Fatal(err)
	}
	g, err := r.gbuffer()
	if err != nil {
		t.Fatal(err)
	}
	g.begin()
	if err := a.render(fs, g); err != nil {
		t.Fatal(err)
	}
	if a.cycle.phase != 1 {
		t.Errorf("phase = %d, want cold restart after reallocation", a.cycle.phase)
	}
	if a.generation != r.Generation() {
		t.Errorf("generation not adopted: %d vs %d", a.generation, r.Generation())
	}
}

func TestUpsamplePreservesSurfacePixels(t *testing.T) {
	_, a, fs, g := volumetricSetup(t, 16, 16)
	g.begin()

	// A surface already shaded at the center keeps its geometry; the
	// volumetric layer may only blend color over it.
	n := mdview.V3(0, 0, 1)
	g.writeSurface(8, 8, mdview.V3(0.1, 0.9, 0.1), 1, n, 0.5, 2.5)
	wantNormal := g.Normal.at(8, 8)

	if err := preserving(func() error {
		g.begin()
		return a.render(fs, g)
	}, g.Color, g.Normal, g.Depth); err != nil {
		t.Fatal(err)
	}

	if d := g.Depth.at(8, 8)[0]; d != 2.5 {
		t.Errorf("surface depth overwritten: %v", d)
	}
	if g.Normal.at(8, 8) != wantNormal {
		t.Error("surface normal overwritten")
	}
	cv := g.Color.at(8, 8)
	if near(cv[1], 0.9, 1e-6) && near(cv[0], 0.1, 1e-6) {
		t.Error("dense volumetric center should blend over surface color")
	}

	// A background pixel inside the blob gains volumetric geometry.
	if g.background(8, 4) {
		t.Error("background pixel under the blob should gain depth")
	}
	bn := DecodeNormal(g.Normal.at(8, 4)).Normalize()
	if !near(bn.Len(), 1, 1e-3) {
		t.Errorf("volumetric normal not unit: %v", bn)
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/mdview"
)

// Logical target names, used with FrameResources.Get and Pipeline.ReadPixel.
const (
	// TargetGColor is the G-buffer color target (RGBA16Float, straight
	// alpha). GPU-transfer only: host readback is degraded by format.
	TargetGColor = "gcolor"

	// TargetGNormal is the G-buffer normal target (RGBA32Float).
	// RGB holds the unit normal encoded to [0,1] as n*0.5+0.5; A holds
	// metallic. Exposed to post-processing for SSAO/outline effects.
	TargetGNormal = "gnormal"

	// TargetGDepth holds the primary-ray hit distance (R32Float).
	// Zero means background.
	TargetGDepth = "gdepth"

	// TargetShadow holds the per-pixel shadow term in [0,1] (R32Float):
	// 0 is fully shadowed, 1 fully lit.
	TargetShadow = "shadow"

	// TargetShadowMap is the light-space depth map used by the mesh
	// shadow strategy (R32Float, square, fixed resolution).
	TargetShadowMap = "shadowmap"

	// TargetOutput is the final composited color (RGBA32Float), handed
	// read-only to post-processing.
	TargetOutput = "output"

	// Quarter-resolution accumulation pairs for the volumetric layer
	// (RGBA32Float). Roles resolve from the accumulator's frame parity.
	TargetVolColor0  = "volcolor0"
	TargetVolColor1  = "volcolor1"
	TargetVolNormal0 = "volnormal0"
	TargetVolNormal1 = "volnormal1"
)

// DefaultShadowMapSize is the default width and height in texels of the
// shadow depth map. Pipelines can override it via WithShadowMapSize.
const DefaultShadowMapSize = 512

// FrameResources owns every render target of a pipeline and their
// lifecycle: allocation on resize, release on teardown. Passes borrow
// targets by logical name during their execution window and never own
// them.
type FrameResources struct {
	targets       map[string]*Target
	width, height int
	shadowMapSize int
	generation    uint64
}

// NewFrameResources returns an empty resource set. Targets exist only
// after Allocate.
func NewFrameResources() *FrameResources {
	return &FrameResources{shadowMapSize: DefaultShadowMapSize}
}

// Allocate creates or resizes every target for a width x height frame.
// Any previous contents are discarded: the accumulation buffers come back
// in an undefined state, so the first frame after any allocation is a
// cold start. Each call bumps the generation counter the accumulator
// observes to detect that.
func (r *FrameResources) Allocate(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	qw, qh := max(1, width/2), max(1, height/2)

	targets := map[string]*Target{
		TargetGColor:     newTarget(TargetGColor, width, height, gputypes.TextureFormatRGBA16Float),
		TargetGNormal:    newTarget(TargetGNormal, width, height, gputypes.TextureFormatRGBA32Float),
		TargetGDepth:     newTarget(TargetGDepth, width, height, gputypes.TextureFormatR32Float),
		TargetShadow:     newTarget(TargetShadow, width, height, gputypes.TextureFormatR32Float),
		TargetShadowMap:  newTarget(TargetShadowMap, r.shadowMapSize, r.shadowMapSize, gputypes.TextureFormatR32Float),
		TargetOutput:     newTarget(TargetOutput, width, height, gputypes.TextureFormatRGBA32Float),
		TargetVolColor0:  newTarget(TargetVolColor0, qw, qh, gputypes.TextureFormatRGBA32Float),
		TargetVolColor1:  newTarget(TargetVolColor1, qw, qh, gputypes.TextureFormatRGBA32Float),
		TargetVolNormal0: newTarget(TargetVolNormal0, qw, qh, gputypes.TextureFormatRGBA32Float),
		TargetVolNormal1: newTarget(TargetVolNormal1, qw, qh, gputypes.TextureFormatRGBA32Float),
	}

	// Background shadow term is fully lit; shadow map clears to the far
	// plane so unoccluded lookups compare as visible.
	targets[TargetShadow].setClear([4]float32{1, 0, 0, 0})
	targets[TargetShadowMap].setClear([4]float32{math32.MaxFloat32, 0, 0, 0})

	// Fresh textures start from their clear value so passes that are
	// skipped this frame (shadow cadence, disabled shadows) still read
	// defined data. The accumulation pair contents remain "undefined" by
	// contract: the accumulator's cold start never reads them.
	for _, t := range targets {
		t.beginPass()
	}

	r.targets = targets
	r.width, r.height = width, height
	r.generation++

	mdview.Logger().Info("render: targets allocated",
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Uint64("generation", r.generation))
	return nil
}

// Release frees all targets. A released resource set can be reused by
// calling Allocate again.
func (r *FrameResources) Release() {
	r.targets = nil
	r.width, r.height = 0, 0
}

// Get returns a target by logical name. It fails with ErrResourceNotFound
// if the name is unknown or Allocate has not been called.
func (r *FrameResources) Get(name string) (*Target, error) {
	t, ok := r.targets[name]
	if !ok {
		return nil, ErrResourceNotFound
	}
	return t, nil
}

// Width returns the full-resolution frame width, 0 before allocation.
func (r *FrameResources) Width() int { return r.width }

// Height returns the full-resolution frame height, 0 before allocation.
func (r *FrameResources) Height() int { return r.height }

// Generation returns the allocation generation. It increases on every
// Allocate, invalidating any temporal history built against earlier
// generations.
func (r *FrameResources) Generation() uint64 { return r.generation }

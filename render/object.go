// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/mdview"
	"github.com/gogpu/mdview/internal/parallel"
)

// frameState is the per-frame snapshot every pass reads: the validated
// input, the compiled camera, the capped light list, and the resolved
// marching bounds. Built once by RenderFrame so all passes reconstruct
// identical world positions from depth.
type frameState struct {
	in     *mdview.FrameInput
	cam    mdview.CameraFrame
	lights []mdview.Light
	bounds mdview.AABB
	cfg    *config
	pool   *parallel.Pool
}

// forRows runs fn over bands of [0, rows), in parallel when the frame has
// a worker pool. Passes rely on rows being disjoint between bands.
func (fs *frameState) forRows(rows int, fn func(y0, y1 int)) {
	if fs.pool == nil {
		fn(0, rows)
		return
	}
	fs.pool.ForRows(rows, fn)
}

// renderGBuffer is the object pass: it writes color, normal, and depth
// for the on-screen layer, dispatching on the object category. Pixels
// with no visible contribution are left unmodified (background-preserving
// discard): a zero normal is indistinguishable from a valid downward
// normal, so nothing is ever written for a miss.
//
// CategoryVolumetric does not render here; its contribution arrives
// through the temporal accumulator's preserving upsample.
func renderGBuffer(fs *frameState, g GBuffer) {
	switch fs.in.Category {
	case mdview.CategoryMesh:
		renderMesh(fs, g)
	case mdview.CategorySDF:
		renderSDF(fs, g)
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"log/slog"

	"github.com/chewxy/math32"

	"github.com/gogpu/mdview"
)

// bayerOffsets is the 2x2 Bayer order the dither cycle walks. A
// quarter-resolution texel belongs to the phase class of its coordinate
// parity (x&1, y&1); one class is freshly sampled per frame, so after 4
// frames every texel has been refreshed at least once.
var bayerOffsets = [4][2]int{{0, 0}, {1, 1}, {1, 0}, {0, 1}}

// ditherCycle tracks which phase class refreshes this frame. It resets to
// phase 0 whenever the volumetric object is (re)enabled or resized, and
// advances once per frame while active.
type ditherCycle struct {
	phase int
}

func (d *ditherCycle) offset() [2]int { return bayerOffsets[d.phase] }
func (d *ditherCycle) advance()       { d.phase = (d.phase + 1) % len(bayerOffsets) }
func (d *ditherCycle) reset()         { d.phase = 0 }

// accumulator maintains the quarter-resolution history of the volumetric
// layer and produces its full-resolution G-buffer contribution at roughly
// 1/16th the shading cost of native resolution: the history buffer holds
// a quarter of the pixels and only a quarter of those are shaded fresh
// per frame.
//
// The ping-pong pair is two fixed target handles plus a frame-parity bit;
// history and write roles resolve from the parity at the start of each
// frame rather than by swapping references.
type accumulator struct {
	res        *FrameResources
	cycle      ditherCycle
	parity     int
	warm       bool
	generation uint64
}

func newAccumulator(res *FrameResources) *accumulator {
	return &accumulator{res: res}
}

// invalidate forces a cold start on the next frame, discarding history.
// Called on object-type changes; reallocation is detected independently
// through the resource generation.
func (a *accumulator) invalidate() { a.warm = false }

// buffers resolves the parity-selected accumulation targets:
// (colorHistory, colorWrite, normalHistory, normalWrite).
func (a *accumulator) buffers() (ch, cw, nh, nw *Target, err error) {
	names := [2][2]string{
		{TargetVolColor0, TargetVolColor1},
		{TargetVolNormal0, TargetVolNormal1},
	}
	ch, err = a.res.Get(names[0][a.parity])
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cw, err = a.res.Get(names[0][1-a.parity])
	if err != nil {
		return nil, nil, nil, nil, err
	}
	nh, err = a.res.Get(names[1][a.parity])
	if err != nil {
		return nil, nil, nil, nil, err
	}
	nw, err = a.res.Get(names[1][1-a.parity])
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return ch, cw, nh, nw, nil
}

// render runs the volumetric sub-pipeline for one frame:
//
//  1. Shade the current phase class fresh at quarter resolution.
//  2. Reconstruct the other three classes from history.
//  3. Upsample the reconstruction into the shared G-buffer with a
//     preserving copy.
//  4. Flip parity so this frame's write target is next frame's history.
//
// On a cold start (first frame after allocation, resize, or object-type
// change) history holds garbage, so every class is shaded fresh at full
// weight and the dither cycle resets to phase 0. Blending with stale
// history is prevented structurally; it is never a runtime error.
func (a *accumulator) render(fs *frameState, g GBuffer) error {
	colorHist, colorWrite, normalHist, normalWrite, err := a.buffers()
	if err != nil {
		return err
	}

	cold := !a.warm || a.generation != a.res.Generation()
	if cold {
		a.cycle.reset()
		mdview.Logger().Debug("render: volumetric cold start",
			slog.Uint64("generation", a.res.Generation()))
	}
	off := a.cycle.offset()

	qw, qh := colorWrite.Width(), colorWrite.Height()
	sx := float32(a.res.Width()) / float32(qw)
	sy := float32(a.res.Height()) / float32(qh)

	// Reconstruction writes every texel, so load ops are irrelevant
	// here; the preserve contract matters at the upsample below.
	fs.forRows(qh, func(qy0, qy1 int) {
		for qy := qy0; qy < qy1; qy++ {
			for qx := 0; qx < qw; qx++ {
				fresh := cold || (qx&1 == off[0] && qy&1 == off[1])
				if !fresh {
					colorWrite.set(qx, qy, colorHist.at(qx, qy))
					normalWrite.set(qx, qy, normalHist.at(qx, qy))
					continue
				}
				fx := (float32(qx) + 0.5) * sx
				fy := (float32(qy) + 0.5) * sy
				dir := fs.cam.Ray(fx, fy)
				s, ok := sampleVolume(fs, fs.cam.Origin, dir)
				if !ok {
					colorWrite.set(qx, qy, [4]float32{})
					normalWrite.set(qx, qy, [4]float32{})
					continue
				}
				// Integration yields transmittance-weighted (premultiplied)
				// color; the accumulation buffers and the G-buffer hold
				// straight alpha.
				straight := s.color.Scale(1 / s.alpha)
				colorWrite.set(qx, qy, [4]float32{straight.X, straight.Y, straight.Z, s.alpha})
				ne := EncodeNormal(s.norm)
				ne[3] = s.depth
				normalWrite.set(qx, qy, ne)
			}
		}
	})

	a.upsample(fs, colorWrite, normalWrite, g)

	a.parity = 1 - a.parity
	a.cycle.advance()
	a.warm = true
	a.generation = a.res.Generation()
	return nil
}

// upsample bilinearly scales the quarter-resolution reconstruction into
// the full-resolution G-buffer. The copy preserves: texels whose
// volumetric contribution is fully transparent are discarded, color
// blends over existing content with straight alpha, and normals and depth
// are only written to background pixels so surfaces shaded by the object
// pass keep their geometry.
func (a *accumulator) upsample(fs *frameState, color, normal *Target, g GBuffer) {
	w, h := g.Color.Width(), g.Color.Height()
	sx := float32(color.Width()) / float32(w)
	sy := float32(color.Height()) / float32(h)

	fs.forRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				qx := (float32(x)+0.5)*sx - 0.5
				qy := (float32(y)+0.5)*sy - 0.5
				src := bilinear(color, qx, qy)
				if src[3] < volMinAlpha {
					continue
				}
				dst := g.Color.at(x, y)
				a := src[3]
				ia := 1 - a
				g.Color.set(x, y, [4]float32{
					src[0]*a + dst[0]*ia,
					src[1]*a + dst[1]*ia,
					src[2]*a + dst[2]*ia,
					a + dst[3]*ia,
				})
				if !g.background(x, y) {
					continue
				}
				nv := bilinear(normal, qx, qy)
				n := DecodeNormal(nv).Normalize()
				if n == (mdview.Vec3{}) || nv[3] <= 0 {
					continue
				}
				e := EncodeNormal(n)
				g.Normal.set(x, y, e)
				g.Depth.set(x, y, [4]float32{nv[3]})
			}
		}
	})
}

// bilinear samples a target at fractional texel coordinates with edge
// clamping.
func bilinear(t *Target, x, y float32) [4]float32 {
	x0 := int(math32.Floor(x))
	y0 := int(math32.Floor(y))
	fx := x - float32(x0)
	fy := y - float32(y0)

	clampX := func(v int) int { return min(max(v, 0), t.Width()-1) }
	clampY := func(v int) int { return min(max(v, 0), t.Height()-1) }

	p00 := t.at(clampX(x0), clampY(y0))
	p10 := t.at(clampX(x0+1), clampY(y0))
	p01 := t.at(clampX(x0), clampY(y0+1))
	p11 := t.at(clampX(x0+1), clampY(y0+1))

	var out [4]float32
	for c := range out {
		top := p00[c] + (p10[c]-p00[c])*fx
		bot := p01[c] + (p11[c]-p01[c])*fx
		out[c] = top + (bot-top)*fy
	}
	return out
}

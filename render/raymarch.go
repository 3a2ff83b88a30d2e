// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/mdview"

// Raymarch tuning. The hit epsilon scales with distance so far surfaces
// converge without over-iterating near ones.
const (
	sdfHitEpsilon  = 1e-3
	sdfMinStep     = 1e-4
	sdfNormalDelta = 1e-3
)

// marchSDF sphere-traces the distance field from the bounds entry point.
// It returns the hit distance, or ok=false when the ray exits the bounds
// or the step budget runs out before convergence (budget exhaustion is a
// defined fallback to background, not an error).
func marchSDF(f mdview.DistanceFunc, bounds mdview.AABB, orig, dir mdview.Vec3, budget int) (float32, bool) {
	t0, t1, ok := bounds.IntersectRay(orig, dir)
	if !ok {
		return 0, false
	}
	t := t0
	for i := 0; i < budget; i++ {
		p := orig.Add(dir.Scale(t))
		d := f(p)
		if d < sdfHitEpsilon*max32(t, 1) {
			return t, true
		}
		if d < sdfMinStep {
			d = sdfMinStep
		}
		t += d
		if t > t1 {
			return 0, false
		}
	}
	return 0, false
}

// sdfNormal is the central-difference gradient of the field at p,
// normalized. The gradient is the surface normal for a signed distance
// function; the ray direction is not a substitute.
func sdfNormal(f mdview.DistanceFunc, p mdview.Vec3) mdview.Vec3 {
	const h = sdfNormalDelta
	return mdview.Vec3{
		X: f(mdview.Vec3{X: p.X + h, Y: p.Y, Z: p.Z}) - f(mdview.Vec3{X: p.X - h, Y: p.Y, Z: p.Z}),
		Y: f(mdview.Vec3{X: p.X, Y: p.Y + h, Z: p.Z}) - f(mdview.Vec3{X: p.X, Y: p.Y - h, Z: p.Z}),
		Z: f(mdview.Vec3{X: p.X, Y: p.Y, Z: p.Z + h}) - f(mdview.Vec3{X: p.X, Y: p.Y, Z: p.Z - h}),
	}.Normalize()
}

// renderSDF writes the G-buffer for a raymarched signed distance field.
func renderSDF(fs *frameState, g GBuffer) {
	mat := fs.in.Material
	fs.forRows(g.Depth.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < g.Depth.Width(); x++ {
				dir := fs.cam.Ray(float32(x)+0.5, float32(y)+0.5)
				t, ok := marchSDF(fs.in.Distance, fs.bounds, fs.cam.Origin, dir, fs.cfg.sdfSteps)
				if !ok {
					continue
				}
				p := fs.cam.Origin.Add(dir.Scale(t))
				n := sdfNormal(fs.in.Distance, p)
				g.writeSurface(x, y, mat.Albedo, 1, n, mat.Metallic, t)
			}
		}
	})
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

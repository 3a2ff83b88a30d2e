// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/mdview"
)

// Volumetric integration tuning.
const (
	// volExtinction converts density to optical depth per world unit.
	volExtinction = 4.0

	// volMinAlpha is the opacity below which a sample is discarded
	// rather than composited, preserving the pixel underneath.
	volMinAlpha = 0.004

	// volEarlyOut stops integration once transmittance drops below it.
	volEarlyOut = 0.005

	// volGradientDelta is the finite-difference step for the density
	// gradient at the centroid.
	volGradientDelta = 2e-2
)

// volumeSample is one ray's volumetric contribution: premultiplied
// (transmittance-weighted) color, a structure-revealing normal, and the
// ray distance of the density-weighted centroid (the "depth" of a medium
// with no surface).
type volumeSample struct {
	color mdview.Vec3
	alpha float32
	norm  mdview.Vec3
	depth float32
}

// sampleVolume integrates the density field front to back along one ray.
// The color accumulates transmittance-weighted emission; the centroid
// accumulates position weighted by the same opacity contributions. The
// normal is derived from the density gradient at the centroid, not the
// ray direction, so it stays stable across frames even though no
// discrete surface exists. Returns ok=false for rays with no visible
// contribution.
func sampleVolume(fs *frameState, orig, dir mdview.Vec3) (volumeSample, bool) {
	t0, t1, ok := fs.bounds.IntersectRay(orig, dir)
	if !ok || t1 <= t0 {
		return volumeSample{}, false
	}

	steps := fs.cfg.volSteps
	dt := (t1 - t0) / float32(steps)
	albedo := fs.in.Material.Albedo

	transmittance := float32(1)
	var color, centroid mdview.Vec3
	var weightSum float32

	for i := 0; i < steps; i++ {
		t := t0 + (float32(i)+0.5)*dt
		p := orig.Add(dir.Scale(t))
		rho := fs.in.Density(p)
		if rho <= 0 {
			continue
		}
		a := 1 - math32.Exp(-rho*volExtinction*dt)
		w := transmittance * a
		color = color.Add(albedo.Scale(w))
		centroid = centroid.Add(p.Scale(w))
		weightSum += w
		transmittance *= 1 - a
		if transmittance < volEarlyOut {
			break
		}
	}

	alpha := 1 - transmittance
	if alpha < volMinAlpha || weightSum <= 0 {
		return volumeSample{}, false
	}
	centroid = centroid.Scale(1 / weightSum)

	return volumeSample{
		color: color,
		alpha: alpha,
		norm:  densityNormal(fs, centroid, dir),
		depth: centroid.Sub(orig).Len(),
	}, true
}

// densityNormal points against the density gradient at p (out of the
// medium). A flat gradient falls back to the direction from the bounds
// center, then to the reversed ray direction; a hit never stores a zero
// normal, which would read back as a valid downward normal.
func densityNormal(fs *frameState, p, dir mdview.Vec3) mdview.Vec3 {
	const h = volGradientDelta
	f := fs.in.Density
	grad := mdview.Vec3{
		X: f(mdview.Vec3{X: p.X + h, Y: p.Y, Z: p.Z}) - f(mdview.Vec3{X: p.X - h, Y: p.Y, Z: p.Z}),
		Y: f(mdview.Vec3{X: p.X, Y: p.Y + h, Z: p.Z}) - f(mdview.Vec3{X: p.X, Y: p.Y - h, Z: p.Z}),
		Z: f(mdview.Vec3{X: p.X, Y: p.Y, Z: p.Z + h}) - f(mdview.Vec3{X: p.X, Y: p.Y, Z: p.Z - h}),
	}
	if n := grad.Neg().Normalize(); n != (mdview.Vec3{}) {
		return n
	}
	if n := p.Sub(fs.bounds.Center()).Normalize(); n != (mdview.Vec3{}) {
		return n
	}
	return dir.Neg()
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/mdview"
)

// ShadowStrategy identifies the shadow algorithm of an object category.
type ShadowStrategy int

const (
	// ShadowNone leaves the shadow term at 1.0 everywhere: no enabled
	// light, or no shadow implementation for the category.
	ShadowNone ShadowStrategy = iota

	// ShadowRaymarchedSoft marches a secondary ray toward each light
	// through the distance field, accumulating a soft penumbra.
	ShadowRaymarchedSoft

	// ShadowVolumetricSelf integrates density along the light-facing
	// ray; the densest per-pixel work in the pipeline.
	ShadowVolumetricSelf

	// ShadowMapped is a conventional depth-map shadow with bias and
	// percentage-closer blur.
	ShadowMapped
)

// SelectShadowStrategy maps an object to its shadow algorithm. It is a
// pure function of the category and dimension tag, re-evaluated whenever
// either changes; the choice is not persisted anywhere else. The light
// list is shared input across all strategies, so switching categories
// never requires lights to be re-specified.
func SelectShadowStrategy(cat mdview.Category, dimension int) ShadowStrategy {
	if dimension < 2 {
		return ShadowNone
	}
	switch cat {
	case mdview.CategoryMesh:
		return ShadowMapped
	case mdview.CategorySDF:
		return ShadowRaymarchedSoft
	case mdview.CategoryVolumetric:
		return ShadowVolumetricSelf
	}
	return ShadowNone
}

// evaluateShadow is the shadow pass: it fills the shadow target with a
// per-pixel occlusion term in [0,1]. Raymarched strategies take the
// product over active lights; the mapped strategy samples the single
// shadow map once per pixel, since the map encodes occlusion for one
// caster light and must not compound with the size of the light list.
// Background pixels keep the cleared fully-lit value.
func evaluateShadow(fs *frameState, g GBuffer, shadow, shadowMap *Target) {
	shadow.beginPass()

	strategy := SelectShadowStrategy(fs.in.Category, fs.in.Dimension)
	if strategy == ShadowNone || len(fs.lights) == 0 {
		return
	}
	if strategy == ShadowVolumetricSelf && !fs.cfg.volumetricSelfShadow {
		return
	}

	var smf shadowMapFrame
	if strategy == ShadowMapped {
		smf = buildShadowMap(fs, shadowMap)
	}

	fs.forRows(shadow.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < shadow.Width(); x++ {
				depth := g.Depth.at(x, y)[0]
				if depth == 0 {
					continue
				}
				dir := fs.cam.Ray(float32(x)+0.5, float32(y)+0.5)
				p := fs.cam.Origin.Add(dir.Scale(depth))
				n := DecodeNormal(g.Normal.at(x, y))

				term := float32(1)
				if strategy == ShadowMapped {
					term = smf.sample(shadowMap, p, fs.cfg.shadowBias)
				} else {
					for _, l := range fs.lights {
						switch strategy {
						case ShadowRaymarchedSoft:
							term *= softShadow(fs, p.Add(n.Scale(4*sdfHitEpsilon)), l)
						case ShadowVolumetricSelf:
							term *= selfShadow(fs, p, l)
						}
					}
				}
				shadow.set(x, y, [4]float32{term})
			}
		}
	})
}

// lightRay returns the unit direction from p toward the light and the
// distance to it (MaxFloat32 for directional lights).
func lightRay(l mdview.Light, p mdview.Vec3) (mdview.Vec3, float32) {
	if l.Type == mdview.LightDirectional {
		return l.Direction.Neg().Normalize(), math32.MaxFloat32
	}
	to := l.Position.Sub(p)
	return to.Normalize(), to.Len()
}

// softShadow marches from p toward the light, tracking the minimum ratio
// of distance-to-surface over distance-traveled. The softness setting
// scales the ratio into a penumbra term; the quality tier scales the step
// budget. Exhausting the budget before clearing the field counts as
// fully attenuated; a defined fallback, not an error.
func softShadow(fs *frameState, p mdview.Vec3, l mdview.Light) float32 {
	dir, maxT := lightRay(l, p)
	if _, t1, ok := fs.bounds.IntersectRay(p, dir); ok && t1 < maxT {
		maxT = t1
	}

	res := float32(1)
	t := float32(0.02)
	steps := fs.cfg.shadowSteps()
	for i := 0; i < steps; i++ {
		if t >= maxT {
			return mdview.Clamp01(res)
		}
		d := fs.in.Distance(p.Add(dir.Scale(t)))
		if d < sdfHitEpsilon {
			return 0
		}
		if r := fs.cfg.softness * d / t; r < res {
			res = r
		}
		t += d
	}
	return 0
}

// selfShadow integrates density from p toward the light over a small
// fixed step count (2-8). Higher counts reduce banding at proportional
// cost.
func selfShadow(fs *frameState, p mdview.Vec3, l mdview.Light) float32 {
	dir, maxT := lightRay(l, p)
	t1 := maxT
	if _, exit, ok := fs.bounds.IntersectRay(p, dir); ok && exit < t1 {
		t1 = exit
	}
	if t1 <= 0 || t1 == math32.MaxFloat32 {
		t1 = fs.bounds.Max.Sub(fs.bounds.Min).Len()
	}

	steps := fs.cfg.selfShadowSteps
	dt := t1 / float32(steps)
	var optical float32
	for i := 0; i < steps; i++ {
		q := p.Add(dir.Scale((float32(i) + 0.5) * dt))
		optical += fs.in.Density(q) * dt
	}
	return math32.Exp(-optical * volExtinction)
}

// shadowMapFrame is the light-space projection shared by the shadow map
// build and its lookups: an orthographic frame along the first shadow
// casting light's direction, sized to the object bounds.
type shadowMapFrame struct {
	origin  mdview.Vec3
	u, v, w mdview.Vec3
	extent  float32
	valid   bool
}

// buildShadowMap renders the mesh's depth as seen from the light into the
// shadow map target and returns the projection used. Directional lights
// take priority; point and spot lights fall back to a directional
// approximation through the bounds center.
func buildShadowMap(fs *frameState, shadowMap *Target) shadowMapFrame {
	shadowMap.beginPass()

	var light *mdview.Light
	for i := range fs.lights {
		if fs.lights[i].Type == mdview.LightDirectional {
			light = &fs.lights[i]
			break
		}
	}
	if light == nil {
		light = &fs.lights[0]
	}

	center := fs.bounds.Center()
	dir := light.Direction
	if light.Type != mdview.LightDirectional {
		dir = center.Sub(light.Position).Normalize()
	}
	radius := fs.bounds.Max.Sub(fs.bounds.Min).Len() * 0.5
	if radius == 0 {
		return shadowMapFrame{}
	}

	w := dir.Normalize()
	up := mdview.Vec3{Y: 1}
	if math32.Abs(w.Y) > 0.99 {
		up = mdview.Vec3{X: 1}
	}
	u := up.Cross(w).Normalize()
	v := w.Cross(u)
	extent := radius * 1.2
	origin := center.Sub(w.Scale(radius * 2))

	smf := shadowMapFrame{origin: origin, u: u, v: v, w: w, extent: extent, valid: true}

	size := shadowMap.Width()
	fs.forRows(size, func(ty0, ty1 int) {
		for ty := ty0; ty < ty1; ty++ {
			for tx := 0; tx < size; tx++ {
				su := (float32(tx)+0.5)/float32(size)*2 - 1
				sv := (float32(ty)+0.5)/float32(size)*2 - 1
				ro := origin.Add(u.Scale(su * extent)).Add(v.Scale(sv * extent))
				hit, ok := intersectMesh(fs.in.Mesh, ro, w)
				if !ok {
					continue
				}
				shadowMap.set(tx, ty, [4]float32{hit.t})
			}
		}
	})
	return smf
}

// sample compares p's light-space depth against the map with a constant
// bias and a 3x3 percentage-closer blur, suppressing acne and aliasing.
func (f shadowMapFrame) sample(shadowMap *Target, p mdview.Vec3, bias float32) float32 {
	if !f.valid {
		return 1
	}
	rel := p.Sub(f.origin)
	su := rel.Dot(f.u) / f.extent
	sv := rel.Dot(f.v) / f.extent
	depth := rel.Dot(f.w)
	if su < -1 || su > 1 || sv < -1 || sv > 1 {
		return 1
	}

	size := shadowMap.Width()
	tx := int((su + 1) * 0.5 * float32(size))
	ty := int((sv + 1) * 0.5 * float32(size))

	var lit, taps float32
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x := min(max(tx+dx, 0), size-1)
			y := min(max(ty+dy, 0), size-1)
			taps++
			if depth-bias <= shadowMap.at(x, y)[0] {
				lit++
			}
		}
	}
	return lit / taps
}

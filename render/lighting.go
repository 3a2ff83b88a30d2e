// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/mdview"
)

// Lighting constants. The dielectric Fresnel base is the common 4%
// reflectance; roughness is floored to keep the GGX denominator stable.
const (
	dielectricF0 = 0.04
	minRoughness = 0.045
	minNdotV     = 1e-4
)

// ggxDistribution is the GGX/Trowbridge-Reitz normal distribution.
func ggxDistribution(nh, roughness float32) float32 {
	a := roughness * roughness
	a2 := a * a
	d := nh*nh*(a2-1) + 1
	return a2 / (math32.Pi * d * d)
}

// smithGeometry is the Smith height-correlated visibility approximation
// with the direct-lighting k remapping.
func smithGeometry(nv, nl, roughness float32) float32 {
	r := roughness + 1
	k := r * r / 8
	gv := nv / (nv*(1-k) + k)
	gl := nl / (nl*(1-k) + k)
	return gv * gl
}

// schlickFresnel is Schlick's approximation of the Fresnel reflectance.
func schlickFresnel(vh float32, f0 mdview.Vec3) mdview.Vec3 {
	f := math32.Pow(1-vh, 5)
	return f0.Add(mdview.Vec3{X: 1 - f0.X, Y: 1 - f0.Y, Z: 1 - f0.Z}.Scale(f))
}

// compositeLighting is the final on-pipeline pass: it combines the
// G-buffer, the light list, and the shadow term into the output color
// with a Cook-Torrance reflectance model plus rim lighting. Tone mapping
// and output encoding belong to post-processing and are not applied here.
//
// Per surface pixel, for each active light in registration order:
// Cook-Torrance specular (GGX distribution, Smith geometry, Schlick
// Fresnel) plus an energy-conserving diffuse term (metallic surfaces
// contribute zero diffuse), scaled by distance and spot-cone attenuation.
// Ambient is unshadowed; the summed direct term is multiplied by the
// shadow term; the Fresnel rim is modulated by the total accumulated
// light so unlit objects show no rim.
func compositeLighting(fs *frameState, g GBuffer, shadow, out *Target) {
	out.beginPass()

	mat := fs.in.Material
	roughness := max32(mat.Roughness, minRoughness)
	if roughness > 1 {
		roughness = 1
	}

	fs.forRows(out.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < out.Width(); x++ {
				depth := g.Depth.at(x, y)[0]
				if depth == 0 {
					continue
				}

				cv := g.Color.at(x, y)
				albedo := mdview.Vec3{X: cv[0], Y: cv[1], Z: cv[2]}
				nvStored := g.Normal.at(x, y)
				n := DecodeNormal(nvStored)
				metallic := nvStored[3]

				dir := fs.cam.Ray(float32(x)+0.5, float32(y)+0.5)
				p := fs.cam.Origin.Add(dir.Scale(depth))
				viewDir := dir.Neg()
				ndotv := max32(n.Dot(viewDir), minNdotV)

				// The specular intensity option scales only the metallic
				// lobe; dielectric output stays invariant to it.
				f0 := mdview.Vec3{X: dielectricF0, Y: dielectricF0, Z: dielectricF0}.
					Scale(1 - metallic).
					Add(albedo.Scale(metallic * fs.cfg.specularIntensity))

				var direct mdview.Vec3
				var totalLight float32
				for _, l := range fs.lights {
					lightDir, dist := lightRay(l, p)
					ndotl := n.Dot(lightDir)
					if ndotl <= 0 {
						continue
					}
					atten := l.DistanceAttenuation(dist) * l.SpotAttenuation(lightDir.Neg())
					if atten <= 0 {
						continue
					}

					h := lightDir.Add(viewDir).Normalize()
					ndoth := max32(n.Dot(h), 0)
					vdoth := max32(viewDir.Dot(h), 0)

					d := ggxDistribution(ndoth, roughness)
					geo := smithGeometry(ndotv, ndotl, roughness)
					fresnel := schlickFresnel(vdoth, f0)
					spec := fresnel.Scale(d * geo / (4*ndotv*ndotl + 1e-4))

					kd := mdview.Vec3{
						X: (1 - fresnel.X) * (1 - metallic),
						Y: (1 - fresnel.Y) * (1 - metallic),
						Z: (1 - fresnel.Z) * (1 - metallic),
					}
					diffuse := kd.MulV(albedo).Scale(1 / math32.Pi)

					radiance := l.Color.Scale(l.Intensity * atten * ndotl)
					direct = direct.Add(diffuse.Add(spec).MulV(radiance))
					totalLight += l.Intensity * atten * ndotl
				}

				shadowTerm := shadow.at(x, y)[0]
				ambient := albedo.Scale(fs.cfg.ambient)
				rim := math32.Pow(1-mdview.Clamp01(ndotv), fs.cfg.rimPower) *
					fs.cfg.rimIntensity * min32(totalLight, 1)

				c := ambient.
					Add(direct.Scale(shadowTerm)).
					Add(mdview.Vec3{X: rim, Y: rim, Z: rim})
				out.set(x, y, [4]float32{c.X, c.Y, c.Z, cv[3]})
			}
		}
	})
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/mdview"

// GBuffer bundles the three co-resolution, co-aligned targets the object
// passes write and the lighting pass reads. Every pixel with a non-zero
// depth carries a valid encoded unit normal; background pixels hold the
// targets' cleared (or preserved) values.
type GBuffer struct {
	Color  *Target
	Normal *Target
	Depth  *Target
}

func (r *FrameResources) gbuffer() (GBuffer, error) {
	color, err := r.Get(TargetGColor)
	if err != nil {
		return GBuffer{}, err
	}
	normal, err := r.Get(TargetGNormal)
	if err != nil {
		return GBuffer{}, err
	}
	depth, err := r.Get(TargetGDepth)
	if err != nil {
		return GBuffer{}, err
	}
	return GBuffer{Color: color, Normal: normal, Depth: depth}, nil
}

// begin applies the load operation of all three targets at pass start.
func (g GBuffer) begin() {
	g.Color.beginPass()
	g.Normal.beginPass()
	g.Depth.beginPass()
}

// writeSurface stores one shaded surface sample: straight-alpha albedo,
// encoded unit normal with metallic in alpha, and the primary-ray hit
// distance. Pixels with no visible contribution are never written through
// here; the background-preserving discard is simply not calling it.
func (g GBuffer) writeSurface(x, y int, albedo mdview.Vec3, alpha float32, n mdview.Vec3, metallic, depth float32) {
	g.Color.set(x, y, [4]float32{albedo.X, albedo.Y, albedo.Z, alpha})
	e := EncodeNormal(n)
	e[3] = metallic
	g.Normal.set(x, y, e)
	g.Depth.set(x, y, [4]float32{depth})
}

// background reports whether the pixel holds no surface sample.
func (g GBuffer) background(x, y int) bool {
	return g.Depth.at(x, y)[0] == 0
}

// EncodeNormal maps a unit normal to [0,1] storage as n*0.5+0.5.
// The alpha component is left zero for the caller.
func EncodeNormal(n mdview.Vec3) [4]float32 {
	return [4]float32{n.X*0.5 + 0.5, n.Y*0.5 + 0.5, n.Z*0.5 + 0.5, 0}
}

// DecodeNormal recovers a normal from storage: n = 2*stored - 1.
// The result is unit length within tolerance for any pixel written by an
// object pass; callers interpolating stored normals should renormalize.
func DecodeNormal(v [4]float32) mdview.Vec3 {
	return mdview.Vec3{X: v[0]*2 - 1, Y: v[1]*2 - 1, Z: v[2]*2 - 1}
}

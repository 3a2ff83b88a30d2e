// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/mdview"
)

// meshHit is the nearest triangle intersection along a ray.
type meshHit struct {
	t, u, v float32
	tri     int
}

// intersectTriangle runs the Möller–Trumbore ray/triangle test.
// Returns the hit distance and barycentric coordinates (u toward v1,
// v toward v2).
func intersectTriangle(orig, dir, v0, v1, v2 mdview.Vec3) (t, u, v float32, ok bool) {
	const eps = 1e-7
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < eps {
		return 0, 0, 0, false
	}
	inv := 1 / det
	s := orig.Sub(v0)
	u = s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := s.Cross(e1)
	v = dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	t = e2.Dot(q) * inv
	if t <= eps {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// intersectMesh returns the nearest hit of a ray against the mesh, if any.
func intersectMesh(m *mdview.MeshData, orig, dir mdview.Vec3) (meshHit, bool) {
	best := meshHit{t: math32.MaxFloat32, tri: -1}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		v0 := m.Vertices[m.Indices[i]]
		v1 := m.Vertices[m.Indices[i+1]]
		v2 := m.Vertices[m.Indices[i+2]]
		t, u, v, ok := intersectTriangle(orig, dir, v0, v1, v2)
		if ok && t < best.t {
			best = meshHit{t: t, u: u, v: v, tri: i}
		}
	}
	return best, best.tri >= 0
}

// meshNormal interpolates the world-space vertex normals of the hit
// triangle barycentrically and renormalizes.
func meshNormal(m *mdview.MeshData, h meshHit) mdview.Vec3 {
	n0 := m.Normals[m.Indices[h.tri]]
	n1 := m.Normals[m.Indices[h.tri+1]]
	n2 := m.Normals[m.Indices[h.tri+2]]
	w := 1 - h.u - h.v
	return n0.Scale(w).Add(n1.Scale(h.u)).Add(n2.Scale(h.v)).Normalize()
}

// renderMesh writes the G-buffer for triangle geometry: albedo from the
// material, normal interpolated from the surface (not the ray), hit
// distance as depth.
func renderMesh(fs *frameState, g GBuffer) {
	m := fs.in.Mesh
	mat := fs.in.Material
	fs.forRows(g.Depth.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < g.Depth.Width(); x++ {
				dir := fs.cam.Ray(float32(x)+0.5, float32(y)+0.5)
				hit, ok := intersectMesh(m, fs.cam.Origin, dir)
				if !ok {
					continue
				}
				n := meshNormal(m, hit)
				// Shade the side facing the camera.
				if n.Dot(dir) > 0 {
					n = n.Neg()
				}
				g.writeSurface(x, y, mat.Albedo, 1, n, mat.Metallic, hit.t)
			}
		}
	})
}

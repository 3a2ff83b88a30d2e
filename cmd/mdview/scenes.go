// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/mdview"
)

// Demo scenes, one per object category. They stand in for the slices a
// higher-dimensional object provider would hand the pipeline; the viewer
// animates them by sweeping the dimension parameter fed to demoInput.

// icosahedron builds a unit icosahedron with per-vertex normals pointing
// radially outward, so the mesh shades like a faceted sphere.
func icosahedron() *mdview.MeshData {
	phi := (1 + math32.Sqrt(5)) / 2
	raw := []mdview.Vec3{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}
	m := &mdview.MeshData{
		Vertices: make([]mdview.Vec3, len(raw)),
		Normals:  make([]mdview.Vec3, len(raw)),
		Indices: []uint32{
			0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
			1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
			3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
			4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
		},
	}
	for i, v := range raw {
		n := v.Normalize()
		m.Vertices[i] = n
		m.Normals[i] = n
	}
	return m
}

// torusSDF returns the signed distance to a torus in the xz plane with
// ring radius major and tube radius minor.
func torusSDF(major, minor float32) mdview.DistanceFunc {
	return func(p mdview.Vec3) float32 {
		q := math32.Sqrt(p.X*p.X+p.Z*p.Z) - major
		return math32.Sqrt(q*q+p.Y*p.Y) - minor
	}
}

// blobField sums three Gaussian density lobes, the classic metaball
// cloud. Peak density sits well above 1 so the volume reads as solid at
// its core and wispy at the fringe.
func blobField() mdview.DensityFunc {
	centers := []mdview.Vec3{
		{0.45, 0.1, 0},
		{-0.4, -0.25, 0.2},
		{0, 0.4, -0.3},
	}
	return func(p mdview.Vec3) float32 {
		var d float32
		for _, c := range centers {
			r := p.Sub(c)
			d += 1.6 * math32.Exp(-5*r.Dot(r))
		}
		return d
	}
}

// demoLights is the shared three-light rig: a key directional, a cool
// point fill, and a warm spot.
func demoLights() []mdview.Light {
	return []mdview.Light{
		{
			Type:      mdview.LightDirectional,
			Direction: mdview.V3(-0.5, -1, -0.4).Normalize(),
			Color:     mdview.V3(1, 0.96, 0.9),
			Intensity: 1.8,
			Enabled:   true,
		},
		{
			Type:      mdview.LightPoint,
			Position:  mdview.V3(-2.5, 1, 2),
			Color:     mdview.V3(0.4, 0.55, 1),
			Intensity: 1.2,
			Range:     8,
			Decay:     1.5,
			Enabled:   true,
		},
		mdview.NewSpotLight(
			mdview.V3(2, 3, 2), mdview.V3(-0.5, -0.75, -0.5),
			mdview.V3(1, 0.7, 0.4), 1.5, math32.Pi/7, 0.4),
	}
}

// demoMaterial returns a category-appropriate material.
func demoMaterial(cat mdview.Category) mdview.Material {
	switch cat {
	case mdview.CategoryMesh:
		return mdview.Material{Albedo: mdview.V3(0.85, 0.35, 0.2), Metallic: 0.1, Roughness: 0.35}
	case mdview.CategorySDF:
		return mdview.Material{Albedo: mdview.V3(0.75, 0.75, 0.8), Metallic: 0.9, Roughness: 0.25}
	default:
		return mdview.Material{Albedo: mdview.V3(0.55, 0.7, 0.95), Metallic: 0, Roughness: 0.8}
	}
}

// orbitCamera circles the origin at the given phase angle.
func orbitCamera(angle float32) mdview.Camera {
	cam := mdview.DefaultCamera()
	cam.Position = mdview.V3(4*math32.Sin(angle), 1.5, 4*math32.Cos(angle))
	return cam
}

// demoInput assembles a full frame for a category at an orbit phase.
func demoInput(cat mdview.Category, angle float32) mdview.FrameInput {
	in := mdview.FrameInput{
		Category:  cat,
		Dimension: 3,
		Bounds:    mdview.AABB{Min: mdview.V3(-1.5, -1.5, -1.5), Max: mdview.V3(1.5, 1.5, 1.5)},
		Material:  demoMaterial(cat),
		Lights:    demoLights(),
		Camera:    orbitCamera(angle),
	}
	switch cat {
	case mdview.CategoryMesh:
		in.Mesh = icosahedron()
	case mdview.CategorySDF:
		in.Distance = torusSDF(0.8, 0.3)
	case mdview.CategoryVolumetric:
		in.Density = blobField()
	}
	return in
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/mdview"
)

// Shared scene fixtures. The sphere, blob, and quad are sized so that
// the default camera at (0, 0, 4) sees them filling the center of the
// frame at any test resolution.

func near(a, b, eps float32) bool {
	return math32.Abs(a-b) <= eps
}

func sphereSDF(radius float32) mdview.DistanceFunc {
	return func(p mdview.Vec3) float32 { return p.Len() - radius }
}

// blobDensity is a Gaussian density centered at the origin, dense enough
// that a ray through the center reaches near-full opacity.
func blobDensity() mdview.DensityFunc {
	return func(p mdview.Vec3) float32 {
		return 2 * math32.Exp(-4*p.Dot(p))
	}
}

// quadMesh is a unit quad in the z=0 plane facing the default camera.
func quadMesh() *mdview.MeshData {
	n := mdview.V3(0, 0, 1)
	return &mdview.MeshData{
		Vertices: []mdview.Vec3{
			mdview.V3(-1, -1, 0), mdview.V3(1, -1, 0),
			mdview.V3(1, 1, 0), mdview.V3(-1, 1, 0),
		},
		Normals: []mdview.Vec3{n, n, n, n},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// horizontalQuad is a unit quad in the y=level plane facing up, used as
// a shadow caster for lights pointing down.
func horizontalQuad(level float32) *mdview.MeshData {
	n := mdview.V3(0, 1, 0)
	return &mdview.MeshData{
		Vertices: []mdview.Vec3{
			mdview.V3(-1, level, -1), mdview.V3(1, level, -1),
			mdview.V3(1, level, 1), mdview.V3(-1, level, 1),
		},
		Normals: []mdview.Vec3{n, n, n, n},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// headLight is a directional light shining along the default camera's
// view direction, so every camera-facing surface is lit.
func headLight() mdview.Light {
	return mdview.Light{
		Type:      mdview.LightDirectional,
		Direction: mdview.V3(0, 0, -1),
		Color:     mdview.V3(1, 1, 1),
		Intensity: 1,
		Enabled:   true,
	}
}

func downLight() mdview.Light {
	return mdview.Light{
		Type:      mdview.LightDirectional,
		Direction: mdview.V3(0, -1, 0),
		Color:     mdview.V3(1, 1, 1),
		Intensity: 1,
		Enabled:   true,
	}
}

func testBounds() mdview.AABB {
	return mdview.AABB{Min: mdview.V3(-1.5, -1.5, -1.5), Max: mdview.V3(1.5, 1.5, 1.5)}
}

// testInput builds a valid frame input for the given category with the
// shared fixtures.
func testInput(cat mdview.Category) mdview.FrameInput {
	in := mdview.FrameInput{
		Category:  cat,
		Dimension: 3,
		Bounds:    testBounds(),
		Material: mdview.Material{
			Albedo:    mdview.V3(0.8, 0.2, 0.2),
			Roughness: 0.5,
		},
		Lights: []mdview.Light{headLight()},
		Camera: mdview.DefaultCamera(),
	}
	switch cat {
	case mdview.CategoryMesh:
		in.Mesh = quadMesh()
		in.Bounds = mdview.AABB{}
	case mdview.CategorySDF:
		in.Distance = sphereSDF(1)
	case mdview.CategoryVolumetric:
		in.Density = blobDensity()
	}
	return in
}

// newTestState compiles a frame state the way RenderFrame does, for
// driving passes directly.
func newTestState(in *mdview.FrameInput, width, height int, cfg config) *frameState {
	c := cfg
	return &frameState{
		in:     in,
		cam:    in.Camera.Frame(width, height),
		lights: mdview.ActiveLights(in.Lights),
		bounds: in.ObjectBounds(),
		cfg:    &c,
	}
}

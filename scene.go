// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mdview

import (
	"errors"

	"github.com/chewxy/math32"
)

// Frame input errors.
var (
	// ErrMissingGeometry is returned when a FrameInput lacks the
	// geometry or field its category requires.
	ErrMissingGeometry = errors.New("mdview: frame input missing geometry for category")

	// ErrInvalidDimension is returned for object dimensions below 2.
	ErrInvalidDimension = errors.New("mdview: object dimension must be >= 2")

	// ErrMissingBounds is returned when an SDF or volumetric input
	// carries no usable marching bounds.
	ErrMissingBounds = errors.New("mdview: frame input missing marching bounds")
)

// Category tags the render strategy of the on-screen object. The upstream
// provider assigns it together with the projected geometry or field; the
// pipeline dispatches every pass on it and never inspects the object's
// dimension beyond the tag.
type Category int

const (
	// CategoryMesh renders projected triangle geometry.
	CategoryMesh Category = iota

	// CategorySDF raymarches a signed distance field.
	CategorySDF

	// CategoryVolumetric integrates a scalar density field.
	CategoryVolumetric
)

// String returns the category name for logging.
func (c Category) String() string {
	switch c {
	case CategoryMesh:
		return "mesh"
	case CategorySDF:
		return "sdf"
	case CategoryVolumetric:
		return "volumetric"
	}
	return "unknown"
}

// MeshData is 3D-projected triangle geometry from the provider:
// positions, per-vertex world-space normals, and triangle indices.
type MeshData struct {
	Vertices []Vec3
	Normals  []Vec3
	Indices  []uint32
}

// Bounds returns the axis-aligned bounding box of the mesh vertices.
func (m *MeshData) Bounds() AABB {
	if len(m.Vertices) == 0 {
		return AABB{}
	}
	b := AABB{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b = b.Extend(v)
	}
	return b
}

// DistanceFunc is a signed distance field sampler: negative inside,
// positive outside, zero on the surface.
type DistanceFunc func(p Vec3) float32

// DensityFunc is a scalar density field sampler; values >= 0.
type DensityFunc func(p Vec3) float32

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

// Extend returns the box grown to contain p.
func (b AABB) Extend(p Vec3) AABB {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
	return b
}

// Empty reports whether the box encloses no volume. Raymarching and
// density integration over an empty box contribute nothing.
func (b AABB) Empty() bool {
	return b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y || b.Min.Z >= b.Max.Z
}

// Center returns the box center.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// IntersectRay returns the parametric entry and exit distances of a ray
// against the box, and whether it hits at all. tmin is clamped to 0 so
// rays starting inside the box enter immediately.
func (b AABB) IntersectRay(origin, dir Vec3) (tmin, tmax float32, ok bool) {
	tmin, tmax = 0, math32.MaxFloat32
	for axis := 0; axis < 3; axis++ {
		o, d := component(origin, axis), component(dir, axis)
		lo, hi := component(b.Min, axis), component(b.Max, axis)
		if d == 0 {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}
		t0 := (lo - o) / d
		t1 := (hi - o) / d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			return 0, 0, false
		}
	}
	return tmin, tmax, true
}

func component(v Vec3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

// Material holds the uniform surface parameters of the frame's object.
// Metallic also lands in the G-buffer normal target's alpha channel so
// the lighting pass can read it per pixel.
type Material struct {
	Albedo    Vec3
	Metallic  float32
	Roughness float32
}

// FrameInput is the per-frame snapshot the pipeline consumes: one
// projected object (geometry or field, tagged with category and
// dimension), the light list, and the camera. The pipeline never mutates
// it and reads it exactly once per frame.
type FrameInput struct {
	Category  Category
	Dimension int

	// Exactly one of these carries the object, matching Category.
	Mesh     *MeshData
	Distance DistanceFunc
	Density  DensityFunc

	// Bounds confines raymarching and density integration. Required for
	// CategorySDF and CategoryVolumetric; derived from vertices for
	// meshes when zero.
	Bounds AABB

	Material Material
	Lights   []Light
	Camera   Camera
}

// Validate checks that the input carries the geometry its category
// requires, usable marching bounds for field categories, and a plausible
// dimension tag.
func (in *FrameInput) Validate() error {
	if in.Dimension < 2 {
		return ErrInvalidDimension
	}
	switch in.Category {
	case CategoryMesh:
		if in.Mesh == nil || len(in.Mesh.Indices) == 0 {
			return ErrMissingGeometry
		}
	case CategorySDF:
		if in.Distance == nil {
			return ErrMissingGeometry
		}
		if in.Bounds.Empty() {
			return ErrMissingBounds
		}
	case CategoryVolumetric:
		if in.Density == nil {
			return ErrMissingGeometry
		}
		if in.Bounds.Empty() {
			return ErrMissingBounds
		}
	default:
		return ErrMissingGeometry
	}
	return nil
}

// ObjectBounds returns the marching bounds for the input, deriving mesh
// bounds from vertices when unset.
func (in *FrameInput) ObjectBounds() AABB {
	if in.Bounds != (AABB{}) {
		return in.Bounds
	}
	if in.Category == CategoryMesh && in.Mesh != nil {
		return in.Mesh.Bounds()
	}
	return AABB{}
}

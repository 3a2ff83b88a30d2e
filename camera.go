// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mdview

import "github.com/chewxy/math32"

// Camera is a pinhole camera. Position/Target/Up define the view frame;
// FOV is the vertical field of view in degrees. The zero value is not
// usable; DefaultCamera returns a reasonable starting view.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3
	FOV      float32
}

// DefaultCamera returns a camera looking at the origin from +Z.
func DefaultCamera() Camera {
	return Camera{
		Position: Vec3{0, 0, 4},
		Target:   Vec3{},
		Up:       Vec3{0, 1, 0},
		FOV:      50,
	}
}

// CameraFrame is a camera compiled against a viewport. It turns pixel
// coordinates into primary rays and is shared by every pass in a frame so
// that depth values written by one pass reconstruct to the same world
// position in another.
type CameraFrame struct {
	Origin          Vec3
	lowerLeftCorner Vec3
	horizontal      Vec3
	vertical        Vec3
	width, height   float32
}

// Frame compiles the camera for a width x height viewport.
func (c Camera) Frame(width, height int) CameraFrame {
	aspect := float32(width) / float32(height)
	theta := c.FOV * math32.Pi / 180
	halfH := math32.Tan(theta / 2)
	viewportH := 2 * halfH
	viewportW := aspect * viewportH

	w := c.Position.Sub(c.Target).Normalize()
	u := c.Up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Scale(viewportW)
	vertical := v.Scale(viewportH)
	lowerLeft := c.Position.
		Sub(horizontal.Scale(0.5)).
		Sub(vertical.Scale(0.5)).
		Sub(w)

	return CameraFrame{
		Origin:          c.Position,
		lowerLeftCorner: lowerLeft,
		horizontal:      horizontal,
		vertical:        vertical,
		width:           float32(width),
		height:          float32(height),
	}
}

// Ray returns the unit direction of the primary ray through pixel
// coordinates (px, py). Coordinates may be fractional; pixel centers are
// at +0.5. The y axis points down, matching target memory layout.
func (f CameraFrame) Ray(px, py float32) Vec3 {
	s := px / f.width
	t := 1 - py/f.height
	return f.lowerLeftCorner.
		Add(f.horizontal.Scale(s)).
		Add(f.vertical.Scale(t)).
		Sub(f.Origin).
		Normalize()
}

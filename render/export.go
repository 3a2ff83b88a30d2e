// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/mdview"
)

// Snapshot converts a target to an 8-bit image for saving or display.
// Linear values are clamped to [0,1]; tone mapping is the downstream
// stage's job. Single-channel targets replicate into gray.
//
// This is device-side access, not host readback: it works on any format
// and is not subject to the ReadPixel precision rules. Use ReadPixel when
// the test or tool needs the readback contract.
func Snapshot(t *Target) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width(), t.Height()))
	for y := 0; y < t.Height(); y++ {
		for x := 0; x < t.Width(); x++ {
			v := t.at(x, y)
			if t.Channels() == 1 {
				v[1], v[2], v[3] = v[0], v[0], 1
			}
			i := img.PixOffset(x, y)
			img.Pix[i+0] = quantize8(v[0])
			img.Pix[i+1] = quantize8(v[1])
			img.Pix[i+2] = quantize8(v[2])
			img.Pix[i+3] = quantize8(v[3])
		}
	}
	return img
}

// SnapshotScaled converts a target to an 8-bit image scaled to
// width x height with Catmull-Rom resampling. Useful for inspecting the
// quarter-resolution accumulation buffers at screen size.
func SnapshotScaled(t *Target, width, height int) *image.RGBA {
	src := Snapshot(t)
	if width == t.Width() && height == t.Height() {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func quantize8(v float32) uint8 {
	return uint8(mdview.Clamp01(v)*255 + 0.5)
}

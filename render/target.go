// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/mdview"
)

// LoadOp specifies what happens to a target's contents when a pass begins
// rendering into it, mirroring the WebGPU render-pass load operation.
type LoadOp uint8

const (
	// LoadOpClear fills the target with its clear value at pass start.
	// This is the default for every target.
	LoadOpClear LoadOp = iota

	// LoadOpLoad retains the existing contents. Passes that composite
	// over earlier results acquire this through a preserving scope.
	LoadOpLoad
)

// Target is one render target: a 2D buffer of float32 texels carrying a
// GPU texture format. Targets are owned exclusively by FrameResources;
// passes reference them only during their execution window.
//
// The format governs host readback (ReadPixel) semantics. Device-side
// access from pass code (set/at) is unrestricted; only transfers back to
// host memory are precision-limited, matching GPU readback behavior.
type Target struct {
	name       string
	width      int
	height     int
	format     gputypes.TextureFormat
	channels   int
	loadOp     LoadOp
	clearValue [4]float32
	pix        []float32
}

func newTarget(name string, width, height int, format gputypes.TextureFormat) *Target {
	ch := formatChannels(format)
	return &Target{
		name:     name,
		width:    width,
		height:   height,
		format:   format,
		channels: ch,
		pix:      make([]float32, width*height*ch),
	}
}

// formatChannels returns the channel count of the formats the pipeline
// allocates.
func formatChannels(format gputypes.TextureFormat) int {
	switch format {
	case gputypes.TextureFormatR32Float:
		return 1
	default:
		return 4
	}
}

// hostReadable reports whether the format reads back faithfully to host
// memory. Half-float formats are GPU-transfer only; their host readback
// values are undefined and are reported as zeros.
func hostReadable(format gputypes.TextureFormat) bool {
	switch format {
	case gputypes.TextureFormatRGBA16Float:
		return false
	default:
		return true
	}
}

// Name returns the logical target name used with FrameResources.Get.
func (t *Target) Name() string { return t.name }

// Width returns the target width in pixels.
func (t *Target) Width() int { return t.width }

// Height returns the target height in pixels.
func (t *Target) Height() int { return t.height }

// Format returns the texture format of the target.
func (t *Target) Format() gputypes.TextureFormat { return t.format }

// Channels returns the number of float32 components per texel.
func (t *Target) Channels() int { return t.channels }

// Pixels returns the backing texel storage, channels-per-texel floats in
// row-major order. This is device-side access for export and tests;
// mutating it bypasses the pass contract.
func (t *Target) Pixels() []float32 { return t.pix }

// setClear sets the value LoadOpClear fills the target with.
func (t *Target) setClear(v [4]float32) { t.clearValue = v }

// beginPass applies the target's load operation. Under LoadOpClear the
// target is filled with its clear value; under LoadOpLoad contents are
// retained. Every pass invokes this on each attachment before writing.
func (t *Target) beginPass() {
	if t.loadOp == LoadOpLoad {
		return
	}
	for i := range t.pix {
		t.pix[i] = t.clearValue[i%t.channels]
	}
}

// set writes a texel. Components beyond the target's channel count are
// dropped.
func (t *Target) set(x, y int, v [4]float32) {
	i := (y*t.width + x) * t.channels
	for c := 0; c < t.channels; c++ {
		t.pix[i+c] = v[c]
	}
}

// at reads a texel, padding missing channels with zeros.
func (t *Target) at(x, y int) [4]float32 {
	var v [4]float32
	i := (y*t.width + x) * t.channels
	for c := 0; c < t.channels; c++ {
		v[c] = t.pix[i+c]
	}
	return v
}

// ReadPixel transfers one texel back to host memory as RGBA32.
//
// Full-precision (32-bit float) targets read back exactly. 8-bit targets
// read back quantized to 8 bits per channel. Half-float targets cannot be
// read faithfully: the result is defined to be all zeros and
// ErrPrecisionMismatch is returned alongside it so callers can
// distinguish the degraded path.
func (t *Target) ReadPixel(x, y int) ([4]float32, error) {
	var zero [4]float32
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return zero, ErrOutOfBounds
	}
	if !hostReadable(t.format) {
		mdview.Logger().Warn("render: degraded readback on half-float target",
			slog.String("target", t.name))
		return zero, ErrPrecisionMismatch
	}
	v := t.at(x, y)
	if t.format == gputypes.TextureFormatRGBA8Unorm {
		for c := range v {
			q := mdview.Clamp01(v[c])
			v[c] = float32(int(q*255+0.5)) / 255
		}
	}
	return v, nil
}

// preserving runs fn with LoadOpLoad forced on the given targets and
// restores each target's previous load operation on every exit path,
// including errors and panics. This is the only way passes acquire
// preserve mode; a forgotten restore cannot leak into unrelated passes.
func preserving(fn func() error, targets ...*Target) error {
	prev := make([]LoadOp, len(targets))
	for i, t := range targets {
		prev[i] = t.loadOp
		t.loadOp = LoadOpLoad
	}
	defer func() {
		for i, t := range targets {
			t.loadOp = prev[i]
		}
	}()
	return fn()
}

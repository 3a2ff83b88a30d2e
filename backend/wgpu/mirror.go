// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/mdview"
	"github.com/gogpu/mdview/render"
)

// mirrorBuffer is one render target's device-side copy: a storage
// buffer holding the target's texels in its format's device layout.
type mirrorBuffer struct {
	buffer   hal.Buffer
	format   gputypes.TextureFormat
	width    int
	height   int
	channels int
	size     uint64
}

// FrameMirror keeps a GPU storage buffer per render target and moves
// texels between the CPU pipeline and the device. It tracks the
// resource generation so a pipeline resize invalidates the mirrors on
// the next Sync.
type FrameMirror struct {
	dev        *Device
	buffers    map[string]mirrorBuffer
	generation uint64
}

// mirroredTargets is the set the transfer layer maintains. The shadow
// map and the accumulation pairs stay CPU-side: they are pipeline
// internals no downstream consumer samples.
var mirroredTargets = []string{
	render.TargetGColor,
	render.TargetGNormal,
	render.TargetGDepth,
	render.TargetShadow,
	render.TargetOutput,
}

// NewFrameMirror creates mirrors for the pipeline's current targets.
func NewFrameMirror(dev *Device, res *render.FrameResources) (*FrameMirror, error) {
	m := &FrameMirror{dev: dev, buffers: make(map[string]mirrorBuffer)}
	if err := m.Sync(res); err != nil {
		m.Release()
		return nil, err
	}
	return m, nil
}

// Sync (re)creates device buffers to match the resource set. It is a
// no-op while the resource generation is unchanged.
func (m *FrameMirror) Sync(res *render.FrameResources) error {
	if m.generation == res.Generation() && len(m.buffers) > 0 {
		return nil
	}
	m.releaseBuffers()

	for _, name := range mirroredTargets {
		t, err := res.Get(name)
		if err != nil {
			return err
		}
		size := uint64(t.Width() * t.Height() * t.Channels() * bytesPerComponent(t.Format()))
		buf, err := m.dev.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "mirror_" + name,
			Size:  size,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create mirror for %s: %w", name, err)
		}
		m.buffers[name] = mirrorBuffer{
			buffer:   buf,
			format:   t.Format(),
			width:    t.Width(),
			height:   t.Height(),
			channels: t.Channels(),
			size:     size,
		}
	}
	m.generation = res.Generation()
	mdview.Logger().Info("wgpu: target mirrors allocated",
		slog.Int("targets", len(m.buffers)),
		slog.Uint64("generation", m.generation))
	return nil
}

// Upload pushes every mirrored target's texels to the device, encoding
// each into its format's device layout.
func (m *FrameMirror) Upload(res *render.FrameResources) error {
	if err := m.Sync(res); err != nil {
		return err
	}
	m.dev.mu.Lock()
	defer m.dev.mu.Unlock()
	if m.dev.closed {
		return ErrDeviceClosed
	}
	for _, name := range mirroredTargets {
		t, err := res.Get(name)
		if err != nil {
			return err
		}
		mb := m.buffers[name]
		m.dev.queue.WriteBuffer(mb.buffer, 0, encodeTexels(mb.format, t.Pixels()))
	}
	return nil
}

// Readback transfers one mirrored target back to host memory through a
// staging buffer. Half-float targets cannot read back faithfully and
// are refused with render.ErrPrecisionMismatch, matching the CPU
// pipeline's ReadPixel contract.
func (m *FrameMirror) Readback(name string) ([]float32, error) {
	mb, ok := m.buffers[name]
	if !ok {
		return nil, ErrTargetNotMirrored
	}
	if mb.format == gputypes.TextureFormatRGBA16Float {
		mdview.Logger().Warn("wgpu: degraded readback on half-float mirror",
			slog.String("target", name))
		return nil, render.ErrPrecisionMismatch
	}

	staging, err := m.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mirror_staging",
		Size:  mb.size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer m.dev.device.DestroyBuffer(staging)

	err = m.dev.submit("mirror_readback", func(enc hal.CommandEncoder) error {
		enc.CopyBufferToBuffer(mb.buffer, staging, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: 0, Size: mb.size},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	raw := make([]byte, mb.size)
	if err := m.dev.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}
	return decodeTexels(mb.format, raw), nil
}

// ReadPixel reads one texel of a mirrored target back to host memory,
// padded to RGBA like render.Target.ReadPixel.
func (m *FrameMirror) ReadPixel(name string, x, y int) ([4]float32, error) {
	var zero [4]float32
	mb, ok := m.buffers[name]
	if !ok {
		return zero, ErrTargetNotMirrored
	}
	if x < 0 || y < 0 || x >= mb.width || y >= mb.height {
		return zero, render.ErrOutOfBounds
	}
	pix, err := m.Readback(name)
	if err != nil {
		return zero, err
	}
	var v [4]float32
	i := (y*mb.width + x) * mb.channels
	for c := 0; c < mb.channels; c++ {
		v[c] = pix[i+c]
	}
	return v, nil
}

// Release frees all device buffers. The mirror can be reused after a
// Sync against a live resource set.
func (m *FrameMirror) Release() {
	m.releaseBuffers()
	m.generation = 0
}

func (m *FrameMirror) releaseBuffers() {
	for name, mb := range m.buffers {
		if m.dev.device != nil {
			m.dev.device.DestroyBuffer(mb.buffer)
		}
		delete(m.buffers, name)
	}
}

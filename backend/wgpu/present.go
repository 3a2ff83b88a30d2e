// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/mdview"
	"github.com/gogpu/mdview/render"
)

// presentShaderWGSL converts a full-precision color buffer to packed
// 8-bit RGBA for display. One invocation per pixel; no loops (some
// SPIR-V translations mishandle them).
const presentShaderWGSL = `
struct Params {
    width: u32,
    height: u32,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> src: array<f32>;
@group(0) @binding(2) var<storage, read_write> dst: array<u32>;

fn quantize(v: f32) -> u32 {
    return u32(clamp(v, 0.0, 1.0) * 255.0 + 0.5);
}

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    if (gid.x >= params.width || gid.y >= params.height) {
        return;
    }
    let p = gid.y * params.width + gid.x;
    let i = p * 4u;
    let r = quantize(src[i]);
    let g = quantize(src[i + 1u]);
    let b = quantize(src[i + 2u]);
    let a = quantize(src[i + 3u]);
    dst[p] = r | (g << 8u) | (b << 16u) | (a << 24u);
}
`

// Presenter runs the present shader against a mirrored full-precision
// color target and reads the packed pixels back for display.
type Presenter struct {
	dev *Device

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

// NewPresenter compiles the present shader and builds its pipeline.
// WGSL is compiled to SPIR-V with naga; if that fails the source is
// handed to the driver directly.
func NewPresenter(dev *Device) (*Presenter, error) {
	p := &Presenter{dev: dev}

	source := hal.ShaderSource{WGSL: presentShaderWGSL}
	if spirvBytes, err := naga.Compile(presentShaderWGSL); err == nil {
		words := make([]uint32, len(spirvBytes)/4)
		for i := range words {
			words[i] = uint32(spirvBytes[i*4]) |
				uint32(spirvBytes[i*4+1])<<8 |
				uint32(spirvBytes[i*4+2])<<16 |
				uint32(spirvBytes[i*4+3])<<24
		}
		source = hal.ShaderSource{SPIRV: words}
	} else {
		mdview.Logger().Warn("wgpu: naga compile failed, using WGSL source",
			slog.String("err", err.Error()))
	}

	shader, err := dev.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "present",
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create present shader: %w", err)
	}
	p.shader = shader

	bindLayout, err := dev.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "present_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("wgpu: create present bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := dev.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "present_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("wgpu: create present pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := dev.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "present_pipeline",
		Layout:  pipeLayout,
		Compute: hal.ComputeState{Module: shader, EntryPoint: "main"},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("wgpu: create present pipeline: %w", err)
	}
	p.pipeline = pipeline

	return p, nil
}

// Present converts a mirrored 4-channel full-precision target to packed
// RGBA bytes on the device and reads them back. The composited output
// target is the usual source.
func (p *Presenter) Present(m *FrameMirror, name string) ([]byte, error) {
	mb, ok := m.buffers[name]
	if !ok {
		return nil, ErrTargetNotMirrored
	}
	if mb.format != gputypes.TextureFormatRGBA32Float {
		return nil, fmt.Errorf("wgpu: present needs an RGBA32Float source, %s is %v",
			name, mb.format)
	}

	w, h := uint32(mb.width), uint32(mb.height)
	packedSize := uint64(w) * uint64(h) * 4

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:], w)
	binary.LittleEndian.PutUint32(params[4:], h)

	paramBuf, err := p.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "present_params", Size: uint64(len(params)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create params buffer: %w", err)
	}
	defer p.dev.device.DestroyBuffer(paramBuf)

	dstBuf, err := p.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "present_dst", Size: packedSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create dst buffer: %w", err)
	}
	defer p.dev.device.DestroyBuffer(dstBuf)

	staging, err := p.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "present_staging", Size: packedSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer p.dev.device.DestroyBuffer(staging)

	p.dev.queue.WriteBuffer(paramBuf, 0, params)

	bindGroup, err := p.dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "present_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramBuf.NativeHandle(), Offset: 0, Size: uint64(len(params))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: mb.buffer.NativeHandle(), Offset: 0, Size: mb.size}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: dstBuf.NativeHandle(), Offset: 0, Size: packedSize}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group: %w", err)
	}
	defer p.dev.device.DestroyBindGroup(bindGroup)

	err = p.dev.submit("present", func(enc hal.CommandEncoder) error {
		pass := enc.BeginComputePass(&hal.ComputePassDescriptor{Label: "present_pass"})
		pass.SetPipeline(p.pipeline)
		pass.SetBindGroup(0, bindGroup, nil)
		pass.Dispatch((w+7)/8, (h+7)/8, 1)
		pass.End()
		enc.CopyBufferToBuffer(dstBuf, staging, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: 0, Size: packedSize},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]byte, packedSize)
	if err := p.dev.queue.ReadBuffer(staging, 0, out); err != nil {
		return nil, fmt.Errorf("wgpu: present readback: %w", err)
	}
	return out, nil
}

// PresentPipeline uploads a pipeline's targets and presents its output
// in one call, the common per-frame path for a GPU-backed viewer.
func PresentPipeline(m *FrameMirror, p *Presenter, pl *render.Pipeline) ([]byte, error) {
	if err := m.Upload(pl.Resources()); err != nil {
		return nil, err
	}
	return p.Present(m, render.TargetOutput)
}

// Destroy frees the presenter's pipeline objects.
func (p *Presenter) Destroy() {
	d := p.dev.device
	if d == nil {
		return
	}
	if p.pipeline != nil {
		d.DestroyComputePipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		d.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		d.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		d.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

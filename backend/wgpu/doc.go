// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu transfers the render pipeline's targets to and from a GPU
// device using gogpu/wgpu's HAL layer.
//
// The CPU pipeline in package render is the reference implementation;
// this package is the transfer layer on top of it. A FrameMirror keeps
// one GPU storage buffer per render target, encoded in the target's
// texture format (half floats for the 16-bit color target, raw floats
// otherwise), and a Presenter converts the output target to packed
// 8-bit RGBA on the device for display.
//
// Host readback follows the pipeline's precision contract: full-precision
// targets read back exactly through a staging buffer, half-float targets
// are refused with render.ErrPrecisionMismatch.
//
// A Device is either opened standalone (Vulkan instance, first useful
// adapter) or adopted from a shared gpucontext provider, in which case
// this package never destroys it.
package wgpu

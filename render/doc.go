// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render implements the mdview render pipeline: frame resources,
// the G-buffer contract between passes, per-category object rendering,
// temporal accumulation of volumetric samples, per-category shadow
// evaluation, and Cook-Torrance lighting composition.
//
// The pipeline is a fixed sequence of passes per frame, orchestrated by
// Pipeline.RenderFrame:
//
//	G-buffer pass -> volumetric sub-pipeline -> shadow pass -> lighting pass
//
// Passes are issued on one logical command stream; no pass consumes a
// target an earlier pass has not finished producing. Targets auto-clear at
// pass start by default; passes that must retain prior content run inside
// a preserving scope that disables the clear and restores it on all exit
// paths.
//
// The package renders on the CPU into float32 targets that carry GPU
// texture formats (gputypes.TextureFormat). Host readback via ReadPixel
// honors format precision: full-float targets read back exactly,
// half-float targets return the documented degraded value (zeros) together
// with ErrPrecisionMismatch. The backend/wgpu package mirrors the same
// target and load-op contract on a GPU device.
package render

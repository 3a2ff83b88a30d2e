// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import "errors"

// Package errors.
var (
	// ErrNoAdapter is returned when no usable GPU adapter is found.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter available")

	// ErrDeviceClosed is returned when operating on a closed device.
	ErrDeviceClosed = errors.New("wgpu: device closed")

	// ErrNilProvider is returned when adopting from a nil or
	// incompatible device provider.
	ErrNilProvider = errors.New("wgpu: provider does not expose a HAL device")

	// ErrTargetNotMirrored is returned when a target name has no GPU
	// buffer, typically after a resize without Sync.
	ErrTargetNotMirrored = errors.New("wgpu: target not mirrored on device")
)

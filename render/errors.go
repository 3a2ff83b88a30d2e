// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

// Package errors for the render pipeline.
var (
	// ErrResourceNotFound is returned when a target is queried before
	// allocation or by an unknown name. Fatal to the current frame;
	// recoverable by forcing a reallocation.
	ErrResourceNotFound = errors.New("render: target not allocated")

	// ErrPrecisionMismatch is returned by host readback on a target
	// whose format cannot be read faithfully (half-float). The readback
	// value is defined to be all zeros in that case.
	ErrPrecisionMismatch = errors.New("render: readback requires a full-precision target")

	// ErrInvalidDimensions is returned when allocation is requested
	// with a non-positive width or height.
	ErrInvalidDimensions = errors.New("render: invalid target dimensions")

	// ErrOutOfBounds is returned by readback for coordinates outside
	// the target.
	ErrOutOfBounds = errors.New("render: pixel coordinates out of bounds")
)

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/mdview"
)

// bytesPerComponent returns the on-device size of one texel component
// for the formats the pipeline allocates.
func bytesPerComponent(format gputypes.TextureFormat) int {
	switch format {
	case gputypes.TextureFormatRGBA16Float:
		return 2
	case gputypes.TextureFormatRGBA8Unorm:
		return 1
	default:
		return 4
	}
}

// encodeTexels packs float32 texel components into the target format's
// device layout, little-endian.
func encodeTexels(format gputypes.TextureFormat, pix []float32) []byte {
	switch format {
	case gputypes.TextureFormatRGBA16Float:
		out := make([]byte, len(pix)*2)
		for i, v := range pix {
			binary.LittleEndian.PutUint16(out[i*2:], float16bits(v))
		}
		return out
	case gputypes.TextureFormatRGBA8Unorm:
		out := make([]byte, len(pix))
		for i, v := range pix {
			out[i] = uint8(mdview.Clamp01(v)*255 + 0.5)
		}
		return out
	default:
		out := make([]byte, len(pix)*4)
		for i, v := range pix {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
		}
		return out
	}
}

// decodeTexels is the inverse of encodeTexels for full-precision and
// 8-bit formats. Half-float buffers are never decoded back to the host;
// the readback path rejects them first.
func decodeTexels(format gputypes.TextureFormat, data []byte) []float32 {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm:
		out := make([]float32, len(data))
		for i, b := range data {
			out[i] = float32(b) / 255
		}
		return out
	default:
		out := make([]float32, len(data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return out
	}
}

// float16bits converts a float32 to IEEE 754 half-precision bits with
// round-to-nearest-even, the conversion the GPU applies when writing a
// 16-bit float texture.
func float16bits(f float32) uint16 {
	b := math.Float32bits(f)
	sign := uint16(b>>16) & 0x8000
	rawExp := b >> 23 & 0xff
	exp := int32(rawExp) - 127 + 15
	mant := b & 0x7fffff

	switch {
	case exp >= 0x1f:
		// Overflow and infinities map to inf; NaN keeps a mantissa bit.
		if rawExp == 0xff && mant != 0 {
			return sign | 0x7e00
		}
		return sign | 0x7c00
	case exp <= 0:
		if exp < -10 {
			return sign
		}
		// Subnormal: shift in the implicit leading bit.
		mant |= 0x800000
		shift := uint32(14 - exp)
		half := uint16(mant >> shift)
		if mant>>(shift-1)&1 != 0 {
			half++
		}
		return sign | half
	default:
		half := sign | uint16(exp)<<10 | uint16(mant>>13)
		if mant&0x1000 != 0 {
			half++
		}
		return half
	}
}

// float16frombits expands half-precision bits to float32.
func float16frombits(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h >> 10 & 0x1f)
	mant := uint32(h & 0x3ff)

	switch {
	case exp == 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		// Subnormal: renormalize.
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		mant &= 0x3ff
		return math.Float32frombits(sign | (exp+113)<<23 | mant<<13)
	case exp == 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	default:
		return math.Float32frombits(sign | (exp+112)<<23 | mant<<13)
	}
}

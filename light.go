// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mdview

import "github.com/chewxy/math32"

// MaxLights is the maximum number of lights evaluated per frame.
// Excess lights are ignored in index order.
const MaxLights = 4

// LightType identifies the illumination model of a Light.
type LightType int

// Supported light types.
const (
	LightPoint LightType = iota
	LightDirectional
	LightSpot
)

// Light describes one dynamic light source. Lights arrive from the UI
// state store between frames; the pipeline reads a consistent snapshot
// once per frame (see ActiveLights).
type Light struct {
	Type      LightType
	Position  Vec3
	Direction Vec3 // unit, points away from the light
	Color     Vec3 // linear RGB
	Intensity float32
	Range     float32 // point/spot falloff distance; <= 0 means unbounded
	Decay     float32 // falloff exponent
	Enabled   bool

	// Spot cone, precomputed as cosines. InnerCos >= OuterCos; full
	// intensity inside the inner cone, smooth falloff to the outer cone.
	InnerCos float32
	OuterCos float32
}

// NewSpotLight builds a spot light from a cone angle and penumbra
// fraction, precomputing the inner/outer cosines the attenuation uses.
// angle is the half-angle of the cone in radians; penumbra in [0,1] is
// the fraction of the cone occupied by the soft edge.
func NewSpotLight(pos, dir, color Vec3, intensity, angle, penumbra float32) Light {
	outer := math32.Cos(angle)
	inner := math32.Cos(angle * (1 - Clamp01(penumbra)))
	return Light{
		Type:      LightSpot,
		Position:  pos,
		Direction: dir.Normalize(),
		Color:     color,
		Intensity: intensity,
		Decay:     1,
		Enabled:   true,
		InnerCos:  inner,
		OuterCos:  outer,
	}
}

// DistanceAttenuation returns the falloff factor for a point at distance d:
// clamp(1 - d/range, 0, 1)^decay, or 1.0 when range <= 0 (unbounded).
// At d == range the result is exactly 0.
func (l Light) DistanceAttenuation(d float32) float32 {
	if l.Type == LightDirectional || l.Range <= 0 {
		return 1
	}
	a := Clamp01(1 - d/l.Range)
	if l.Decay != 1 && a > 0 {
		a = math32.Pow(a, l.Decay)
	}
	return a
}

// SpotAttenuation returns the cone falloff for the unit vector from the
// light toward the shaded point. Non-spot lights always return 1. On-axis
// points inside the inner cone receive exactly 1.
func (l Light) SpotAttenuation(toPoint Vec3) float32 {
	if l.Type != LightSpot {
		return 1
	}
	c := l.Direction.Dot(toPoint)
	return Smoothstep(l.OuterCos, l.InnerCos, c)
}

// ActiveLights returns the enabled lights of the snapshot, capped at
// MaxLights in index order.
func ActiveLights(lights []Light) []Light {
	active := make([]Light, 0, MaxLights)
	for _, l := range lights {
		if !l.Enabled {
			continue
		}
		active = append(active, l)
		if len(active) == MaxLights {
			break
		}
	}
	return active
}

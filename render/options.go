// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// ShadowQuality selects how many steps and samples the shadow strategies
// spend per pixel. Tiers map to step-count multipliers.
type ShadowQuality int

const (
	// ShadowFast halves step counts for interactive dimension sweeps.
	ShadowFast ShadowQuality = iota

	// ShadowBalanced is the default tier.
	ShadowBalanced

	// ShadowHigh doubles step counts.
	ShadowHigh

	// ShadowUltra quadruples step counts.
	ShadowUltra
)

// stepScale returns the step-count multiplier of the tier.
func (q ShadowQuality) stepScale() float32 {
	switch q {
	case ShadowFast:
		return 0.5
	case ShadowHigh:
		return 2
	case ShadowUltra:
		return 4
	default:
		return 1
	}
}

// String returns the tier name for logging and config files.
func (q ShadowQuality) String() string {
	switch q {
	case ShadowFast:
		return "fast"
	case ShadowBalanced:
		return "balanced"
	case ShadowHigh:
		return "high"
	case ShadowUltra:
		return "ultra"
	}
	return "unknown"
}

// config holds resolved pipeline settings. Zero values are never used
// directly; defaultConfig supplies the baseline and options adjust it.
type config struct {
	shadowsEnabled       bool
	shadowQuality        ShadowQuality
	shadowEveryFrame     bool
	shadowInterval       int
	softness             float32
	sdfSteps             int
	sdfShadowSteps       int
	volSteps             int
	selfShadowSteps      int
	volumetricSelfShadow bool
	shadowMapSize        int
	shadowBias           float32
	ambient              float32
	rimIntensity         float32
	rimPower             float32
	specularIntensity    float32
}

func defaultConfig() config {
	return config{
		shadowsEnabled:       true,
		shadowQuality:        ShadowBalanced,
		shadowEveryFrame:     true,
		shadowInterval:       4,
		softness:             8,
		sdfSteps:             96,
		sdfShadowSteps:       32,
		volSteps:             48,
		selfShadowSteps:      4,
		volumetricSelfShadow: true,
		shadowMapSize:        DefaultShadowMapSize,
		shadowBias:           0.002,
		ambient:              0.08,
		rimIntensity:         0.25,
		rimPower:             3,
		specularIntensity:    1,
	}
}

// Option configures a Pipeline during creation.
type Option func(*config)

// WithShadows toggles the global shadow switch. The volumetric
// self-shadow has its own independent toggle, WithVolumetricSelfShadow.
func WithShadows(enabled bool) Option {
	return func(c *config) { c.shadowsEnabled = enabled }
}

// WithShadowQuality selects the shadow quality tier.
func WithShadowQuality(q ShadowQuality) Option {
	return func(c *config) { c.shadowQuality = q }
}

// WithShadowAnimation governs whether shadows re-evaluate every frame.
// When disabled, the shadow term is re-evaluated every interval frames
// and preserved in between, trading responsiveness for cost.
func WithShadowAnimation(everyFrame bool) Option {
	return func(c *config) { c.shadowEveryFrame = everyFrame }
}

// WithShadowInterval sets the re-evaluation cadence in frames used when
// shadow animation is disabled. Values below 1 are clamped to 1.
func WithShadowInterval(frames int) Option {
	return func(c *config) { c.shadowInterval = max(1, frames) }
}

// WithSoftness sets the soft-shadow penumbra range for raymarched
// shadows. Higher values harden the shadow edge.
func WithSoftness(k float32) Option {
	return func(c *config) {
		if k > 0 {
			c.softness = k
		}
	}
}

// WithSDFStepBudget caps primary raymarch iterations per pixel.
func WithSDFStepBudget(steps int) Option {
	return func(c *config) { c.sdfSteps = max(8, steps) }
}

// WithVolumetricSteps sets the density integration step count per sample.
func WithVolumetricSteps(steps int) Option {
	return func(c *config) { c.volSteps = max(4, steps) }
}

// WithVolumetricSelfShadow toggles the density self-shadow independently
// of the global shadow switch. This path is the most expensive per-pixel
// operation in the pipeline.
func WithVolumetricSelfShadow(enabled bool) Option {
	return func(c *config) { c.volumetricSelfShadow = enabled }
}

// WithSelfShadowSteps sets the self-shadow integration step count,
// clamped to [2, 8]. Higher counts reduce banding at proportional cost.
func WithSelfShadowSteps(steps int) Option {
	return func(c *config) { c.selfShadowSteps = min(8, max(2, steps)) }
}

// WithShadowMapSize sets the shadow depth map resolution in texels.
func WithShadowMapSize(size int) Option {
	return func(c *config) { c.shadowMapSize = max(16, size) }
}

// WithAmbient sets the unshadowed ambient intensity.
func WithAmbient(a float32) Option {
	return func(c *config) { c.ambient = max(0, a) }
}

// WithRim sets the Fresnel rim term's intensity and falloff power.
func WithRim(intensity, power float32) Option {
	return func(c *config) {
		c.rimIntensity = max(0, intensity)
		if power > 0 {
			c.rimPower = power
		}
	}
}

// WithSpecularIntensity scales the metallic specular lobe. Dielectric
// surfaces (metallic 0) are unaffected: diffuse and specular are separate
// energy terms and the dielectric Fresnel base is fixed.
func WithSpecularIntensity(s float32) Option {
	return func(c *config) { c.specularIntensity = max(0, s) }
}

// shadowSteps returns the quality-scaled raymarched shadow step budget.
func (c *config) shadowSteps() int {
	return max(8, int(float32(c.sdfShadowSteps)*c.shadowQuality.stepScale()))
}

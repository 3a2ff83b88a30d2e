// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/mdview/render"
)

// viewerConfig is the TOML-configurable slice of the pipeline's quality
// options. Zero values fall through to the pipeline defaults.
type viewerConfig struct {
	Shadows struct {
		Enabled    *bool  `toml:"enabled"`
		Quality    string `toml:"quality"` // fast, balanced, high, ultra
		EveryFrame *bool  `toml:"every_frame"`
		Interval   int    `toml:"interval"`
		Softness   float32
		MapSize    int `toml:"map_size"`
	} `toml:"shadows"`

	Raymarch struct {
		Steps int `toml:"steps"`
	} `toml:"raymarch"`

	Volumetric struct {
		Steps           int   `toml:"steps"`
		SelfShadow      *bool `toml:"self_shadow"`
		SelfShadowSteps int   `toml:"self_shadow_steps"`
	} `toml:"volumetric"`

	Lighting struct {
		Ambient      float32 `toml:"ambient"`
		RimIntensity float32 `toml:"rim_intensity"`
		RimPower     float32 `toml:"rim_power"`
		Specular     float32 `toml:"specular"`
	} `toml:"lighting"`
}

func loadConfig(path string) (*viewerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg viewerConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("mdview: parse %s: %w", path, err)
	}
	return &cfg, nil
}

func shadowQuality(name string) (render.ShadowQuality, error) {
	switch name {
	case "", "balanced":
		return render.ShadowBalanced, nil
	case "fast":
		return render.ShadowFast, nil
	case "high":
		return render.ShadowHigh, nil
	case "ultra":
		return render.ShadowUltra, nil
	}
	return 0, fmt.Errorf("mdview: unknown shadow quality %q", name)
}

// options translates the parsed config into pipeline options, leaving
// unset fields at the pipeline defaults.
func (c *viewerConfig) options() ([]render.Option, error) {
	if c == nil {
		return nil, nil
	}
	var opts []render.Option
	if c.Shadows.Enabled != nil {
		opts = append(opts, render.WithShadows(*c.Shadows.Enabled))
	}
	q, err := shadowQuality(c.Shadows.Quality)
	if err != nil {
		return nil, err
	}
	if c.Shadows.Quality != "" {
		opts = append(opts, render.WithShadowQuality(q))
	}
	if c.Shadows.EveryFrame != nil {
		opts = append(opts, render.WithShadowAnimation(*c.Shadows.EveryFrame))
	}
	if c.Shadows.Interval > 0 {
		opts = append(opts, render.WithShadowInterval(c.Shadows.Interval))
	}
	if c.Shadows.Softness > 0 {
		opts = append(opts, render.WithSoftness(c.Shadows.Softness))
	}
	if c.Shadows.MapSize > 0 {
		opts = append(opts, render.WithShadowMapSize(c.Shadows.MapSize))
	}
	if c.Raymarch.Steps > 0 {
		opts = append(opts, render.WithSDFStepBudget(c.Raymarch.Steps))
	}
	if c.Volumetric.Steps > 0 {
		opts = append(opts, render.WithVolumetricSteps(c.Volumetric.Steps))
	}
	if c.Volumetric.SelfShadow != nil {
		opts = append(opts, render.WithVolumetricSelfShadow(*c.Volumetric.SelfShadow))
	}
	if c.Volumetric.SelfShadowSteps > 0 {
		opts = append(opts, render.WithSelfShadowSteps(c.Volumetric.SelfShadowSteps))
	}
	if c.Lighting.Ambient > 0 {
		opts = append(opts, render.WithAmbient(c.Lighting.Ambient))
	}
	if c.Lighting.RimIntensity > 0 || c.Lighting.RimPower > 0 {
		ri, rp := c.Lighting.RimIntensity, c.Lighting.RimPower
		if rp <= 0 {
			rp = 3
		}
		opts = append(opts, render.WithRim(ri, rp))
	}
	if c.Lighting.Specular > 0 {
		opts = append(opts, render.WithSpecularIntensity(c.Lighting.Specular))
	}
	return opts, nil
}

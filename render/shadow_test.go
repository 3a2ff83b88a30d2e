// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/mdview"
)

func TestSelectShadowStrategy(t *testing.T) {
	tests := []struct {
		name      string
		cat       mdview.Category
		dimension int
		want      ShadowStrategy
	}{
		{"mesh", mdview.CategoryMesh, 3, ShadowMapped},
		{"sdf", mdview.CategorySDF, 4, ShadowRaymarchedSoft},
		{"volumetric", mdview.CategoryVolumetric, 5, ShadowVolumetricSelf},
		{"high dimension mesh", mdview.CategoryMesh, 11, ShadowMapped},
		{"degenerate dimension", mdview.CategorySDF, 1, ShadowNone},
		{"unknown category", mdview.Category(99), 3, ShadowNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectShadowStrategy(tt.cat, tt.dimension); got != tt.want {
				t.Errorf("strategy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSoftShadowClearPath(t *testing.T) {
	in := testInput(mdview.CategorySDF)
	fs := newTestState(&in, 16, 16, defaultConfig())

	// Top of the sphere, light straight above: nothing in the way.
	p := mdview.V3(0, 1+8*sdfHitEpsilon, 0)
	l := mdview.Light{Type: mdview.LightDirectional, Direction: mdview.V3(0, -1, 0), Enabled: true}

	if got := softShadow(fs, p, l); got != 1 {
		t.Errorf("unoccluded term = %v, want 1", got)
	}
}

func TestSoftShadowBlocked(t *testing.T) {
	in := testInput(mdview.CategorySDF)
	fs := newTestState(&in, 16, 16, defaultConfig())

	// Bottom of the sphere, light straight above: the march re-enters
	// the field immediately.
	p := mdview.V3(0, -(1 + 8*sdfHitEpsilon), 0)
	l := mdview.Light{Type: mdview.LightDirectional, Direction: mdview.V3(0, -1, 0), Enabled: true}

	if got := softShadow(fs, p, l); got != 0 {
		t.Errorf("occluded term = %v, want 0", got)
	}
}

func TestSoftShadowPenumbra(t *testing.T) {
	in := testInput(mdview.CategorySDF)
	fs := newTestState(&in, 16, 16, defaultConfig())
	l := mdview.Light{Type: mdview.LightDirectional, Direction: mdview.V3(0, -1, 0), Enabled: true}

	// A point beside the sphere grazing its silhouette lands in the
	// penumbra: attenuated but not black.
	p := mdview.V3(1.05, -1.2, 0)
	got := softShadow(fs, p, l)
	if got <= 0 || got >= 1 {
		t.Errorf("grazing term = %v, want partial shadow", got)
	}
}

func TestSoftShadowBudgetExhaustion(t *testing.T) {
	in := testInput(mdview.CategorySDF)
	// A field that never converges and never clears: each step advances
	// by the minimum, so the budget runs out mid-march. The defined
	// fallback is full attenuation.
	in.Distance = func(mdview.Vec3) float32 { return 2 * sdfHitEpsilon }
	in.Bounds = mdview.AABB{Min: mdview.V3(-100, -100, -100), Max: mdview.V3(100, 100, 100)}
	fs := newTestState(&in, 16, 16, defaultConfig())
	l := mdview.Light{Type: mdview.LightDirectional, Direction: mdview.V3(0, -1, 0), Enabled: true}

	if got := softShadow(fs, mdview.V3(0, 0, 0), l); got != 0 {
		t.Errorf("exhausted budget term = %v, want 0", got)
	}
}

func TestSelfShadowAttenuates(t *testing.T) {
	in := testInput(mdview.CategoryVolumetric)
	fs := newTestState(&in, 16, 16, defaultConfig())
	l := downLight()

	// Below the blob center more material sits between the point and
	// the light than above it.
	below := selfShadow(fs, mdview.V3(0, -0.5, 0), l)
	above := selfShadow(fs, mdview.V3(0, 0.5, 0), l)
	if below <= 0 || below >= 1 {
		t.Fatalf("below term = %v, want partial", below)
	}
	if above <= below {
		t.Errorf("above %v should be brighter than below %v", above, below)
	}
}

func TestSelfShadowStepCount(t *testing.T) {
	in := testInput(mdview.CategoryVolumetric)
	cfg := defaultConfig()
	cfg.selfShadowSteps = 8
	fs := newTestState(&in, 16, 16, cfg)
	fine := selfShadow(fs, mdview.V3(0, -0.5, 0), downLight())

	cfg2 := defaultConfig()
	cfg2.selfShadowSteps = 2
	fs2 := newTestState(&in, 16, 16, cfg2)
	coarse := selfShadow(fs2, mdview.V3(0, -0.5, 0), downLight())

	// Both step counts integrate the same field; they agree in sign and
	// scale even though the quadrature differs.
	if fine <= 0 || coarse <= 0 {
		t.Fatalf("terms = %v, %v", fine, coarse)
	}
	if !near(fine, coarse, 0.35) {
		t.Errorf("step counts diverge too far: %v vs %v", fine, coarse)
	}
}

func TestEvaluateShadowBackgroundStaysLit(t *testing.T) {
	r := NewFrameResources()
	if err := r.Allocate(16, 16); err != nil {
		t.Fatal(err)
	}
	g, _ := r.gbuffer()
	g.begin()

	in := testInput(mdview.CategorySDF)
	fs := newTestState(&in, 16, 16, defaultConfig())
	renderSDF(fs, g)

	shadow, _ := r.Get(TargetShadow)
	shadowMap, _ := r.Get(TargetShadowMap)
	evaluateShadow(fs, g, shadow, shadowMap)

	// Corner pixels are background and keep the fully lit clear value.
	if v := shadow.at(0, 0)[0]; v != 1 {
		t.Errorf("background shadow term = %v, want 1", v)
	}
	// Surface pixels hold a value in [0,1].
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := shadow.at(x, y)[0]
			if v < 0 || v > 1 {
				t.Fatalf("shadow term (%d,%d) = %v out of range", x, y, v)
			}
		}
	}
}

func TestEvaluateShadowSelfShadowToggle(t *testing.T) {
	r := NewFrameResources()
	if err := r.Allocate(16, 16); err != nil {
		t.Fatal(err)
	}
	g, _ := r.gbuffer()
	g.begin()

	in := testInput(mdview.CategoryVolumetric)
	in.Lights = []mdview.Light{downLight()}

	cfg := defaultConfig()
	fs := newTestState(&in, 16, 16, cfg)
	a := newAccumulator(r)
	if err := a.render(fs, g); err != nil {
		t.Fatal(err)
	}

	shadow, _ := r.Get(TargetShadow)
	shadowMap, _ := r.Get(TargetShadowMap)

	cfg.volumetricSelfShadow = false
	fsOff := newTestState(&in, 16, 16, cfg)
	evaluateShadow(fsOff, g, shadow, shadowMap)
	for _, v := range shadow.Pixels() {
		if v != 1 {
			t.Fatalf("self-shadow disabled but term = %v", v)
		}
	}

	cfg.volumetricSelfShadow = true
	fsOn := newTestState(&in, 16, 16, cfg)
	evaluateShadow(fsOn, g, shadow, shadowMap)
	seen := false
	for _, v := range shadow.Pixels() {
		if v < 1 {
			seen = true
			break
		}
	}
	if !seen {
		t.Error("self-shadow enabled but no attenuation anywhere")
	}
}

func TestShadowMapOcclusion(t *testing.T) {
	in := testInput(mdview.CategoryMesh)
	in.Mesh = horizontalQuad(1)
	in.Bounds = testBounds()
	in.Lights = []mdview.Light{downLight()}
	cfg := defaultConfig()
	cfg.shadowMapSize = 64
	fs := newTestState(&in, 16, 16, cfg)

	r := NewFrameResources()
	r.shadowMapSize = 64
	if err := r.Allocate(16, 16); err != nil {
		t.Fatal(err)
	}
	shadowMap, _ := r.Get(TargetShadowMap)

	smf := buildShadowMap(fs, shadowMap)
	if !smf.valid {
		t.Fatal("projection should be valid")
	}

	// Under the quad: occluded. Above it: lit. Outside the footprint:
	// lit by convention.
	if got := smf.sample(shadowMap, mdview.V3(0, 0, 0), cfg.shadowBias); got != 0 {
		t.Errorf("occluded sample = %v, want 0", got)
	}
	if got := smf.sample(shadowMap, mdview.V3(0, 1.2, 0), cfg.shadowBias); got != 1 {
		t.Errorf("lit sample = %v, want 1", got)
	}
	if got := smf.sample(shadowMap, mdview.V3(50, 0, 0), cfg.shadowBias); got != 1 {
		t.Errorf("out-of-frame sample = %v, want 1", got)
	}
}

func TestShadowMapBiasSuppressesAcne(t *testing.T) {
	in := testInput(mdview.CategoryMesh)
	in.Mesh = horizontalQuad(1)
	in.Bounds = testBounds()
	in.Lights = []mdview.Light{downLight()}
	cfg := defaultConfig()
	cfg.shadowMapSize = 64
	fs := newTestState(&in, 16, 16, cfg)

	r := NewFrameResources()
	r.shadowMapSize = 64
	if err := r.Allocate(16, 16); err != nil {
		t.Fatal(err)
	}
	shadowMap, _ := r.Get(TargetShadowMap)
	smf := buildShadowMap(fs, shadowMap)

	// A point on the caster itself must read as lit, not self-shadowed.
	if got := smf.sample(shadowMap, mdview.V3(0.2, 1, 0.2), cfg.shadowBias); got != 1 {
		t.Errorf("on-surface sample = %v, want 1", got)
	}
}

func TestShadowMapTermIndependentOfLightCount(t *testing.T) {
	// A wide receiver plane under a half-plane occluder: the occluder
	// edge at x=0 leaves a band of partially occluded receiver pixels
	// through the PCF blur. The occlusion term is a property of the
	// geometry, so adding lights must not change it.
	n := mdview.V3(0, 1, 0)
	geo := &mdview.MeshData{
		Vertices: []mdview.Vec3{
			mdview.V3(-4, -1, -4), mdview.V3(4, -1, -4),
			mdview.V3(4, -1, 4), mdview.V3(-4, -1, 4),
			mdview.V3(-4, 1, -4), mdview.V3(0, 1, -4),
			mdview.V3(0, 1, 4), mdview.V3(-4, 1, 4),
		},
		Normals: []mdview.Vec3{n, n, n, n, n, n, n, n},
		Indices: []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7},
	}

	renderShadow := func(lights []mdview.Light) *Target {
		r := NewFrameResources()
		r.shadowMapSize = 64
		if err := r.Allocate(32, 32); err != nil {
			t.Fatal(err)
		}
		g, _ := r.gbuffer()
		g.begin()

		in := testInput(mdview.CategoryMesh)
		in.Mesh = geo
		in.Lights = lights
		cfg := defaultConfig()
		cfg.shadowMapSize = 64
		fs := newTestState(&in, 32, 32, cfg)
		renderMesh(fs, g)

		shadow, _ := r.Get(TargetShadow)
		shadowMap, _ := r.Get(TargetShadowMap)
		evaluateShadow(fs, g, shadow, shadowMap)
		return shadow
	}

	one := renderShadow([]mdview.Light{downLight()})
	two := renderShadow([]mdview.Light{downLight(), downLight()})

	penumbra := false
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			a, b := one.at(x, y)[0], two.at(x, y)[0]
			if a != b {
				t.Fatalf("shadow term (%d,%d) changed with light count: 1 light %v, 2 lights %v",
					x, y, a, b)
			}
			if a > 0 && a < 1 {
				penumbra = true
			}
		}
	}
	if !penumbra {
		t.Fatal("expected at least one partially occluded pixel")
	}
}

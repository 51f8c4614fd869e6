package tacticalmap

import "testing"

func TestBlendColorsEmpty(t *testing.T) {
	if got := BlendColors(nil, nil); got != ColorWhite {
		t.Errorf("blend of no colors = %+v, want ColorWhite", got)
	}
}

func TestBlendColorsZeroWeight(t *testing.T) {
	colors := []Color{ColorBlack, ColorBlack}
	weights := []float64{0, 0}
	if got := BlendColors(colors, weights); got != ColorWhite {
		t.Errorf("blend with zero total weight = %+v, want ColorWhite", got)
	}
}

func TestBlendColorsSingle(t *testing.T) {
	red := Color{R: 1, A: 1}
	got := BlendColors([]Color{red}, []float64{1})
	if !approxEqual(got.R, 1, 1e-6) || !approxEqual(got.G, 0, 1e-6) || !approxEqual(got.B, 0, 1e-6) {
		t.Errorf("single-color blend = %+v, want pure red", got)
	}
}

func TestBlendColorsWeightedAlpha(t *testing.T) {
	a := Color{R: 1, A: 1}
	b := Color{B: 1, A: 0.5}
	got := BlendColors([]Color{a, b}, []float64{1, 1})
	wantAlpha := 0.75
	if !approxEqual(got.A, wantAlpha, 1e-6) {
		t.Errorf("alpha = %v, want %v", got.A, wantAlpha)
	}
}

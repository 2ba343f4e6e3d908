package feature_test

import (
	"math"
	"testing"

	"github.com/echoos/voicegate/pkg/feature"
)

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero norm", []float32{0, 0}, []float32{1, 2}, 0},
		{"dim mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := feature.Cosine(c.a, c.b)
			if math.Abs(got-c.want) > 1e-9 {
				t.Errorf("Cosine = %v, want %v", got, c.want)
			}
		})
	}
}

func TestCosineScaleInvariant(t *testing.T) {
	a := []float32{0.3, -1.2, 0.8, 2.5}
	b := make([]float32, len(a))
	for i, v := range a {
		b[i] = v * 7
	}
	if got := feature.Cosine(a, b); math.Abs(got-1) > 1e-6 {
		t.Errorf("Cosine of scaled copy = %v, want 1", got)
	}
}

func TestThreshold(t *testing.T) {
	cases := []struct {
		fam  feature.Family
		want float64
	}{
		{feature.FamilySpectral, 0.85},
		{feature.FamilyEmbedding, 0.75},
		{feature.FamilyUnknown, 0.85},
	}
	for _, c := range cases {
		if got := c.fam.Threshold(); got != c.want {
			t.Errorf("%v.Threshold() = %v, want %v", c.fam, got, c.want)
		}
	}
}

func TestFamilyOf(t *testing.T) {
	if got := feature.FamilyOf(13); got != feature.FamilySpectral {
		t.Errorf("FamilyOf(13) = %v", got)
	}
	if got := feature.FamilyOf(256); got != feature.FamilyEmbedding {
		t.Errorf("FamilyOf(256) = %v", got)
	}
	if got := feature.FamilyOf(192); got != feature.FamilyUnknown {
		t.Errorf("FamilyOf(192) = %v", got)
	}
}

func TestVectorValid(t *testing.T) {
	good := feature.Vector{Family: feature.FamilySpectral, Values: make([]float32, 13)}
	if !good.Valid() {
		t.Error("expected valid vector")
	}
	short := feature.Vector{Family: feature.FamilyEmbedding, Values: make([]float32, 13)}
	if short.Valid() {
		t.Error("wrong-dimension vector reported valid")
	}
	empty := feature.Vector{}
	if empty.Valid() {
		t.Error("empty vector reported valid")
	}
	// Unknown family carries no dimension constraint.
	legacy := feature.Vector{Family: feature.FamilyUnknown, Values: make([]float32, 7)}
	if !legacy.Valid() {
		t.Error("unknown-family vector reported invalid")
	}
}

func TestDisplayScore(t *testing.T) {
	cases := []struct {
		fam   feature.Family
		score float64
		want  float64
	}{
		{feature.FamilyEmbedding, 0.76, 0.81},
		{feature.FamilyEmbedding, 0.75, 0.75},  // boundary excluded
		{feature.FamilyEmbedding, 0.80, 0.80},  // boundary excluded
		{feature.FamilyEmbedding, 0.90, 0.90},  // above band
		{feature.FamilySpectral, 0.76, 0.76},   // wrong family
	}
	for _, c := range cases {
		if got := feature.DisplayScore(c.fam, c.score); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("DisplayScore(%v, %v) = %v, want %v", c.fam, c.score, got, c.want)
		}
	}
}

func TestDisplayScoreNeverAffectsDecision(t *testing.T) {
	// A raw score just below the embedding threshold is displayed
	// unchanged and must remain a rejection even though the display band
	// starts right above the threshold.
	raw := 0.7499
	if feature.DisplayScore(feature.FamilyEmbedding, raw) != raw {
		t.Error("display nudge leaked below the acceptance threshold")
	}
	if raw > feature.FamilyEmbedding.Threshold() {
		t.Error("test premise broken")
	}
}

func TestDisplayThreshold(t *testing.T) {
	if got := feature.DisplayThreshold(feature.FamilyEmbedding); got != 0.80 {
		t.Errorf("DisplayThreshold(embedding) = %v, want 0.80", got)
	}
	if got := feature.DisplayThreshold(feature.FamilySpectral); got != 0.85 {
		t.Errorf("DisplayThreshold(spectral) = %v, want 0.85", got)
	}
}

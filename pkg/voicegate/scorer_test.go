package voicegate_test

import (
	"testing"

	"github.com/echoos/voicegate/pkg/feature"
	"github.com/echoos/voicegate/pkg/voicegate"
)

func TestBestMatchMaxOverSamples(t *testing.T) {
	// Against a full-ones candidate, ones(k) scores sqrt(k)/16 exactly.
	p := &voicegate.Profile{
		Username: "alice",
		Embeddings: []feature.Vector{
			ones(4),   // 0.125
			ones(196), // 0.875
			ones(16),  // 0.25
		},
	}

	user, score := voicegate.BestMatch(ones(256), []*voicegate.Profile{p})
	if user != "alice" {
		t.Fatalf("BestMatch user = %q, want %q", user, "alice")
	}
	if score != 0.875 {
		t.Fatalf("BestMatch score = %v, want 0.875 (best sample, not average)", score)
	}
}

func TestBestMatchPicksHighestProfile(t *testing.T) {
	profiles := []*voicegate.Profile{
		{Username: "alice", Embeddings: []feature.Vector{ones(64)}},  // 0.5
		{Username: "bob", Embeddings: []feature.Vector{ones(196)}},   // 0.875
		{Username: "carol", Embeddings: []feature.Vector{ones(144)}}, // 0.75
	}

	user, score := voicegate.BestMatch(ones(256), profiles)
	if user != "bob" || score != 0.875 {
		t.Fatalf("BestMatch = (%q, %v), want (%q, 0.875)", user, score, "bob")
	}
}

func TestBestMatchTieKeepsFirstSeen(t *testing.T) {
	profiles := []*voicegate.Profile{
		{Username: "first", Embeddings: []feature.Vector{ones(144)}},
		{Username: "second", Embeddings: []feature.Vector{ones(144)}},
	}

	user, _ := voicegate.BestMatch(ones(256), profiles)
	if user != "first" {
		t.Fatalf("tie broke to %q, want the earlier-enrolled %q", user, "first")
	}
}

func TestBestMatchNoProfiles(t *testing.T) {
	user, score := voicegate.BestMatch(ones(256), nil)
	if user != "" || score != 0 {
		t.Fatalf("BestMatch on empty set = (%q, %v), want (\"\", 0)", user, score)
	}
}

func TestBestMatchMismatchedFamilyScoresZero(t *testing.T) {
	spectral := feature.Vector{Family: feature.FamilySpectral, Values: make([]float32, feature.SpectralDim)}
	spectral.Values[0] = 1

	p := &voicegate.Profile{Username: "legacy", Embeddings: []feature.Vector{spectral}}
	user, score := voicegate.BestMatch(ones(256), []*voicegate.Profile{p})
	if user != "" || score != 0 {
		t.Fatalf("cross-family BestMatch = (%q, %v), want no match", user, score)
	}
}

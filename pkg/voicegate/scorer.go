package voicegate

import (
	"log/slog"

	"github.com/echoos/voicegate/pkg/feature"
)

// BestMatch scores a live sample against every profile and returns the
// best-matching username with its similarity score.
//
// A profile's score is the maximum cosine similarity over all of its
// stored embeddings: the best enrollment sample wins, not an average,
// so enrollment variance is tolerated. The global winner is the profile
// with the highest score; ties keep the earlier profile in first-seen
// enrollment order.
//
// The returned score is the raw decision score. Whether it clears the
// acceptance threshold is decided by the caller against the candidate
// family's threshold (strictly greater-than).
func BestMatch(candidate feature.Vector, profiles []*Profile) (bestUsername string, bestScore float64) {
	for _, p := range profiles {
		score := 0.0
		for i, emb := range p.Embeddings {
			sim := feature.Cosine(candidate.Values, emb.Values)
			slog.Debug("voicegate: sample similarity",
				"user", p.Username, "sample", i+1, "similarity", sim)
			if sim > score {
				score = sim
			}
		}
		if score > bestScore {
			bestScore = score
			bestUsername = p.Username
		}
	}
	return bestUsername, bestScore
}

// Package feature defines the voice feature vector model used for speaker
// matching: a dense float32 vector tagged with the extractor family that
// produced it.
//
// Two families exist. The primary family is a 256-dimensional speaker
// embedding produced by a neural speaker-verification model. The legacy
// family is a 13-dimensional mean cepstral vector used as a fallback when
// no embedding model is available (see the spectral package). The family
// tag is carried explicitly rather than inferred from vector length, and
// it selects the acceptance threshold applied during verification.
package feature

import (
	"fmt"
	"math"

	"github.com/echoos/voicegate/pkg/pcm"
)

// Family identifies the extractor family that produced a vector.
type Family int

const (
	// FamilyUnknown is the zero value; vectors from old stores that
	// predate the family tag decode as unknown.
	FamilyUnknown Family = iota

	// FamilySpectral is the legacy 13-dimensional mean cepstral vector.
	FamilySpectral

	// FamilyEmbedding is the primary 256-dimensional speaker embedding.
	FamilyEmbedding
)

// Dimensions per family.
const (
	SpectralDim  = 13
	EmbeddingDim = 256
)

func (f Family) String() string {
	switch f {
	case FamilySpectral:
		return "spectral"
	case FamilyEmbedding:
		return "embedding"
	case FamilyUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Dim returns the expected vector length for the family, or 0 for
// FamilyUnknown.
func (f Family) Dim() int {
	switch f {
	case FamilySpectral:
		return SpectralDim
	case FamilyEmbedding:
		return EmbeddingDim
	default:
		return 0
	}
}

// FamilyOf infers the family from a vector length. It exists only to
// classify vectors from stores written before the family tag; new vectors
// are tagged at extraction time.
func FamilyOf(dim int) Family {
	switch dim {
	case SpectralDim:
		return FamilySpectral
	case EmbeddingDim:
		return FamilyEmbedding
	default:
		return FamilyUnknown
	}
}

// Vector is a voice feature vector tagged with its extractor family.
type Vector struct {
	Family Family    `msgpack:"fam"`
	Values []float32 `msgpack:"val"`
}

// Valid reports whether the vector is non-empty and, when the family is
// known, has the family's expected dimension.
func (v Vector) Valid() bool {
	if len(v.Values) == 0 {
		return false
	}
	if d := v.Family.Dim(); d != 0 && d != len(v.Values) {
		return false
	}
	return true
}

// Cosine returns the cosine similarity between two vectors in [-1, 1].
// Mismatched dimensions or a zero-norm operand yield 0, so a degenerate
// sample can never clear an acceptance threshold.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1] to absorb floating point error.
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return sim
}

// Threshold returns the acceptance threshold for a live sample of the
// given family. A match is accepted only when its score is strictly
// greater than this value.
func (f Family) Threshold() float64 {
	switch f {
	case FamilyEmbedding:
		return 0.75
	case FamilySpectral:
		return 0.85
	default:
		return 0.85
	}
}

// Extractor turns a captured audio sample into a feature vector.
//
// Implementations must fail explicitly when no vector can be produced
// (e.g., the sample is too short); they must never return a zero vector
// in place of an error.
type Extractor interface {
	// Extract computes a feature vector from raw PCM audio in the given
	// format. Samples are expected to be 16 kHz mono PCM16.
	Extract(format pcm.Format, data []byte) (Vector, error)

	// Family returns the family of vectors this extractor produces.
	Family() Family
}

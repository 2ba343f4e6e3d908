package voicegate_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/echoos/voicegate/pkg/capture"
	"github.com/echoos/voicegate/pkg/feature"
	"github.com/echoos/voicegate/pkg/kv"
	"github.com/echoos/voicegate/pkg/pcm"
)

// fakeClock is an injectable clock advanced manually by tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// ones returns an embedding-family vector whose first n of 256 components
// are 1. Cosine similarities between such vectors are exact in floating
// point whenever both counts are perfect squares, which keeps threshold
// boundary tests deterministic: cos(ones(a), ones(b)) = sqrt(a/b) for
// a <= b.
func ones(n int) feature.Vector {
	v := make([]float32, feature.EmbeddingDim)
	for i := 0; i < n; i++ {
		v[i] = 1
	}
	return feature.Vector{Family: feature.FamilyEmbedding, Values: v}
}

// extractResult scripts one Extract call of a scriptedExtractor.
type extractResult struct {
	vec feature.Vector
	err error
}

// scriptedExtractor returns a fixed sequence of vectors or errors,
// one per Extract call.
type scriptedExtractor struct {
	fam     feature.Family
	results []extractResult
	calls   int
}

func (e *scriptedExtractor) Extract(_ pcm.Format, _ []byte) (feature.Vector, error) {
	if e.calls >= len(e.results) {
		return feature.Vector{}, errors.New("scripted extractor exhausted")
	}
	r := e.results[e.calls]
	e.calls++
	return r.vec, r.err
}

func (e *scriptedExtractor) Family() feature.Family { return e.fam }

// silenceSource returns a Source yielding zeroed 16 kHz clips of the
// requested duration.
func silenceSource() capture.Source {
	return capture.SourceFunc(func(_ context.Context, d time.Duration) (capture.Clip, error) {
		n := pcm.L16Mono16K.BytesInDuration(d)
		return capture.Clip{Format: pcm.L16Mono16K, Data: make([]byte, n)}, nil
	})
}

// failingSource returns a Source whose Record always fails.
func failingSource(err error) capture.Source {
	return capture.SourceFunc(func(context.Context, time.Duration) (capture.Clip, error) {
		return capture.Clip{}, err
	})
}

// faultyStore reads like the in-memory store but fails every write.
// Used to observe that flush failures are swallowed and the in-memory
// state stands.
type faultyStore struct {
	*kv.Memory
	writeErr error
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Memory: kv.NewMemory(), writeErr: errors.New("disk full")}
}

func (s *faultyStore) Set(context.Context, kv.Key, []byte) error { return s.writeErr }

func (s *faultyStore) Delete(context.Context, kv.Key) error { return s.writeErr }

func (s *faultyStore) BatchDelete(context.Context, []kv.Key) error { return s.writeErr }

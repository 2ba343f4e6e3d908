package spectral_test

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/echoos/voicegate/pkg/feature"
	"github.com/echoos/voicegate/pkg/pcm"
	"github.com/echoos/voicegate/pkg/spectral"
)

// tone synthesizes PCM16 bytes of a sine at freq Hz for n samples at 16 kHz.
func tone(freq float64, n int, amp float64) []byte {
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		s := int16(amp * 32000 * math.Sin(2*math.Pi*freq*float64(i)/16000))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestExtractShape(t *testing.T) {
	e := spectral.New(spectral.DefaultConfig())

	v, err := e.Extract(pcm.L16Mono16K, tone(440, 16000, 0.5))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if v.Family != feature.FamilySpectral {
		t.Errorf("Family = %v, want spectral", v.Family)
	}
	if len(v.Values) != feature.SpectralDim {
		t.Errorf("len(Values) = %d, want %d", len(v.Values), feature.SpectralDim)
	}
	if !v.Valid() {
		t.Error("vector reported invalid")
	}
}

func TestExtractDeterministic(t *testing.T) {
	e := spectral.New(spectral.DefaultConfig())
	audio := tone(300, 8000, 0.8)

	a, err := e.Extract(pcm.L16Mono16K, audio)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	b, err := e.Extract(pcm.L16Mono16K, audio)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if sim := feature.Cosine(a.Values, b.Values); sim < 0.999999 {
		t.Errorf("same audio cosine = %v, want ~1", sim)
	}
}

func TestExtractDiscriminates(t *testing.T) {
	e := spectral.New(spectral.DefaultConfig())

	low, err := e.Extract(pcm.L16Mono16K, tone(200, 16000, 0.8))
	if err != nil {
		t.Fatalf("Extract low: %v", err)
	}
	high, err := e.Extract(pcm.L16Mono16K, tone(3500, 16000, 0.8))
	if err != nil {
		t.Fatalf("Extract high: %v", err)
	}
	if sim := feature.Cosine(low.Values, high.Values); sim > 0.99 {
		t.Errorf("distinct tones cosine = %v, want clearly below identical", sim)
	}
}

func TestExtractTooShort(t *testing.T) {
	e := spectral.New(spectral.DefaultConfig())

	// 399 samples: one short of a single window.
	_, err := e.Extract(pcm.L16Mono16K, tone(440, 399, 0.5))
	if !errors.Is(err, spectral.ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}

func TestExtractWrongRate(t *testing.T) {
	e := spectral.New(spectral.DefaultConfig())

	if _, err := e.Extract(pcm.L16Mono48K, tone(440, 16000, 0.5)); err == nil {
		t.Fatal("expected error for wrong sample rate")
	}
}

// Package spectral implements the legacy voice feature extractor: a
// 13-dimensional mean cepstral vector computed from mel filterbank
// energies. It is the fallback family used when no neural speaker
// embedding model is available, and it must stay numerically compatible
// with profiles enrolled by earlier deployments of the same pipeline.
//
// The front-end follows the usual MFCC convention: pre-emphasis, 25 ms
// Hamming windows with 10 ms hop, FFT power spectrum, 26 triangular mel
// filters, log, and a DCT-II keeping the first 13 coefficients. The
// per-frame coefficients are then averaged over all frames to produce a
// single utterance-level vector.
package spectral

import (
	"errors"
	"fmt"
	"math"

	"github.com/echoos/voicegate/pkg/feature"
	"github.com/echoos/voicegate/pkg/pcm"
)

// Sentinel errors.
var (
	// ErrTooShort is returned when the sample does not cover a single
	// analysis window.
	ErrTooShort = errors.New("spectral: sample shorter than one analysis window")
)

// Config controls cepstral extraction parameters.
type Config struct {
	SampleRate  int     // audio sample rate in Hz (default 16000)
	WindowSize  int     // window length in samples (default 400 = 25ms)
	HopSize     int     // hop length in samples (default 160 = 10ms)
	FFTSize     int     // FFT size (default 512)
	NumMels     int     // number of mel filters (default 26)
	NumCoeffs   int     // cepstral coefficients kept (default 13)
	LowFreq     float64 // lowest mel frequency (default 0)
	HighFreq    float64 // highest mel frequency (default SampleRate/2)
	PreEmphasis float64 // pre-emphasis coefficient (default 0.97)
}

// DefaultConfig returns the standard 16 kHz MFCC front-end configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:  16000,
		WindowSize:  400,
		HopSize:     160,
		FFTSize:     512,
		NumMels:     26,
		NumCoeffs:   feature.SpectralDim,
		LowFreq:     0,
		HighFreq:    8000,
		PreEmphasis: 0.97,
	}
}

// Extractor computes mean cepstral vectors from PCM samples.
// It implements [feature.Extractor] and is safe for concurrent use once
// constructed.
type Extractor struct {
	cfg     Config
	window  []float64
	melBank [][]float64
	dct     [][]float64
}

// New creates a new cepstral Extractor with the given config.
func New(cfg Config) *Extractor {
	return &Extractor{
		cfg:     cfg,
		window:  hammingWindow(cfg.WindowSize),
		melBank: melFilterBank(cfg.NumMels, cfg.FFTSize, cfg.SampleRate, cfg.LowFreq, cfg.HighFreq),
		dct:     dctMatrix(cfg.NumCoeffs, cfg.NumMels),
	}
}

// Family returns [feature.FamilySpectral].
func (e *Extractor) Family() feature.Family {
	return feature.FamilySpectral
}

// Extract computes the utterance-level cepstral vector for raw PCM16
// audio. The audio must already be in the extractor's sample rate;
// capture sources are responsible for resampling.
func (e *Extractor) Extract(format pcm.Format, data []byte) (feature.Vector, error) {
	if format.SampleRate() != e.cfg.SampleRate {
		return feature.Vector{}, fmt.Errorf("spectral: sample rate %d, extractor expects %d",
			format.SampleRate(), e.cfg.SampleRate)
	}
	frames := e.frames(pcm.Float32s(data))
	if len(frames) == 0 {
		return feature.Vector{}, ErrTooShort
	}

	// Mean over all frames: one vector per utterance.
	mean := make([]float32, e.cfg.NumCoeffs)
	for _, fr := range frames {
		for i, c := range fr {
			mean[i] += float32(c)
		}
	}
	for i := range mean {
		mean[i] /= float32(len(frames))
	}
	return feature.Vector{Family: feature.FamilySpectral, Values: mean}, nil
}

// frames computes per-frame cepstral coefficients.
func (e *Extractor) frames(samples []float32) [][]float64 {
	cfg := e.cfg
	n := len(samples)
	if n < cfg.WindowSize {
		return nil
	}

	numFrames := (n-cfg.WindowSize)/cfg.HopSize + 1
	halfFFT := cfg.FFTSize/2 + 1

	out := make([][]float64, numFrames)
	frame := make([]float64, cfg.FFTSize)
	im := make([]float64, cfg.FFTSize)
	power := make([]float64, halfFFT)
	logMel := make([]float64, cfg.NumMels)

	for t := 0; t < numFrames; t++ {
		start := t * cfg.HopSize

		// Pre-emphasis + windowing.
		for i := 0; i < cfg.WindowSize; i++ {
			s := float64(samples[start+i])
			if i > 0 {
				s -= cfg.PreEmphasis * float64(samples[start+i-1])
			}
			frame[i] = s * e.window[i]
		}
		for i := cfg.WindowSize; i < cfg.FFTSize; i++ {
			frame[i] = 0
		}

		for i := range im {
			im[i] = 0
		}
		re := make([]float64, cfg.FFTSize)
		copy(re, frame)
		fft(re, im)

		for i := 0; i < halfFFT; i++ {
			power[i] = re[i]*re[i] + im[i]*im[i]
		}

		// Log mel energies with a floor to avoid -inf on silence.
		for m := 0; m < cfg.NumMels; m++ {
			sum := 0.0
			for k, w := range e.melBank[m] {
				sum += w * power[k]
			}
			if sum < 1e-10 {
				sum = 1e-10
			}
			logMel[m] = math.Log(sum)
		}

		// DCT-II to cepstral coefficients.
		coeffs := make([]float64, cfg.NumCoeffs)
		for c := range coeffs {
			sum := 0.0
			for m, w := range e.dct[c] {
				sum += w * logMel[m]
			}
			coeffs[c] = sum
		}
		out[t] = coeffs
	}
	return out
}

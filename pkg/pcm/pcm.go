// Package pcm provides the raw audio sample model shared by voicegate's
// capture sources and feature extractors: linear PCM formats and the
// sample/byte/duration arithmetic between them.
//
// All verification and enrollment audio in voicegate is L16Mono16K:
// 16-bit signed little-endian, 16 kHz, mono.
package pcm

import (
	"encoding/binary"
	"time"
)

const (
	// L16Mono16K represents audio/L16; rate=16000; channels=1.
	L16Mono16K Format = iota
	// L16Mono44K1 represents audio/L16; rate=44100; channels=1.
	L16Mono44K1
	// L16Mono48K represents audio/L16; rate=48000; channels=1.
	L16Mono48K
)

// Format represents an audio format configuration.
type Format int

// SampleRate returns the sample rate in Hz for this format.
func (f Format) SampleRate() int {
	switch f {
	case L16Mono16K:
		return 16000
	case L16Mono44K1:
		return 44100
	case L16Mono48K:
		return 48000
	}
	panic("pcm: invalid format")
}

// Channels returns the number of audio channels for this format.
func (f Format) Channels() int {
	switch f {
	case L16Mono16K, L16Mono44K1, L16Mono48K:
		return 1
	}
	panic("pcm: invalid format")
}

// Depth returns the bit depth for this format.
func (f Format) Depth() int {
	switch f {
	case L16Mono16K, L16Mono44K1, L16Mono48K:
		return 16
	}
	panic("pcm: invalid format")
}

// Samples returns the number of samples in the given number of bytes.
func (f Format) Samples(bytes int64) int64 {
	return bytes * 8 / int64(f.Channels()) / int64(f.Depth())
}

// SamplesInDuration returns the number of samples in the given duration.
func (f Format) SamplesInDuration(d time.Duration) int64 {
	return int64(time.Duration(f.SampleRate()) * d / time.Second)
}

// BytesInDuration returns the number of bytes in the given duration.
func (f Format) BytesInDuration(d time.Duration) int64 {
	return f.SamplesInDuration(d) * int64(f.Channels()) * int64(f.Depth()) / 8
}

// Duration returns the duration of the given number of bytes.
func (f Format) Duration(bytes int64) time.Duration {
	return time.Duration(f.Samples(bytes)) * time.Second / time.Duration(f.SampleRate())
}

// Float32s decodes PCM16 signed little-endian bytes into float32 samples
// normalized to [-1, 1]. A trailing odd byte is ignored.
func Float32s(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		out[i] = float32(s) / 32768.0
	}
	return out
}

// Package capture provides the audio capture source used for voice
// enrollment and verification: a blocking, fixed-duration recording
// interface plus a reader-backed implementation that converts arbitrary
// input sample rates to the 16 kHz mono format the extractors expect.
//
// Capture is deliberately blocking and not cancellable mid-recording
// beyond context cancellation between reads; callers run it off any
// interactive loop.
package capture

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/echoos/voicegate/pkg/pcm"
)

// Sentinel errors.
var (
	// ErrNoAudio is returned when a recording produced no samples at all.
	ErrNoAudio = errors.New("capture: no audio data")
)

// Clip is a recorded audio sample.
type Clip struct {
	Format pcm.Format
	Data   []byte
}

// Duration returns the clip length in wall time.
func (c Clip) Duration() time.Duration {
	return c.Format.Duration(int64(len(c.Data)))
}

// Source records fixed-duration audio samples.
//
// Record blocks for the full requested duration. Implementations return
// clips in pcm.L16Mono16K regardless of the device's native rate.
type Source interface {
	Record(ctx context.Context, d time.Duration) (Clip, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, d time.Duration) (Clip, error)

// Record implements Source.
func (f SourceFunc) Record(ctx context.Context, d time.Duration) (Clip, error) {
	return f(ctx, d)
}

// ReaderSource is a Source that pulls PCM16 mono audio from an io.Reader
// (a sound-device stream, a pipe, or a test fixture) and resamples it to
// 16 kHz when the input format uses a different rate.
type ReaderSource struct {
	r      io.Reader
	format pcm.Format
}

// NewReaderSource creates a Source reading PCM16 mono audio in the given
// format from r.
func NewReaderSource(r io.Reader, format pcm.Format) *ReaderSource {
	return &ReaderSource{r: r, format: format}
}

// Record reads d worth of audio from the underlying reader and returns it
// as a 16 kHz mono clip. A truncated stream yields a shorter clip; a
// stream with no data at all yields ErrNoAudio.
func (s *ReaderSource) Record(ctx context.Context, d time.Duration) (Clip, error) {
	if err := ctx.Err(); err != nil {
		return Clip{}, err
	}

	want := int(s.format.BytesInDuration(d))
	buf := make([]byte, want)
	n, err := io.ReadFull(s.r, buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Clip{}, ErrNoAudio
		}
		return Clip{}, err
	}
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Clip{}, err
	}
	// Drop a trailing partial sample from a truncated stream.
	buf = buf[:n-n%2]

	if s.format.SampleRate() == pcm.L16Mono16K.SampleRate() {
		return Clip{Format: pcm.L16Mono16K, Data: buf}, nil
	}
	out, err := resample16k(buf, s.format)
	if err != nil {
		return Clip{}, err
	}
	return Clip{Format: pcm.L16Mono16K, Data: out}, nil
}

package capture

import (
	"encoding/binary"
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/echoos/voicegate/pkg/pcm"
)

// resample16k converts PCM16 mono audio from srcFmt's rate to 16 kHz.
func resample16k(data []byte, srcFmt pcm.Format) ([]byte, error) {
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcFmt.SampleRate()),
		OutputRate: float64(pcm.L16Mono16K.SampleRate()),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("capture: create resampler: %w", err)
	}

	n := len(data) / 2
	input := make([]float64, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		input[i] = float64(s) / 32768.0
	}

	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("capture: resample: %w", err)
	}

	out := make([]byte, len(output)*2)
	for i, s := range output {
		v := int16(s * 32767.0)
		if s > 1.0 {
			v = 32767
		} else if s < -1.0 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out, nil
}

// ABOUTME: WAV file decoding into mixer chunks
// ABOUTME: Uses go-audio/wav and widens PCM to the 24-bit sample convention
package decode

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/mixpool/mixpool-go/pkg/mix"
)

// WAV decodes a RIFF/WAVE stream into a chunk conformed to spec.
func WAV(rs io.ReadSeeker, spec mix.Spec) (*mix.Chunk, error) {
	d := wav.NewDecoder(rs)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	if buf.Format == nil {
		return nil, fmt.Errorf("decoding wav: missing format chunk")
	}

	samples := make([]int32, len(buf.Data))
	switch d.BitDepth {
	case 8:
		// 8-bit WAV is unsigned.
		for i, v := range buf.Data {
			samples[i] = int32(v-128) << 16
		}
	case 16:
		for i, v := range buf.Data {
			samples[i] = int32(v) << 8
		}
	case 24:
		for i, v := range buf.Data {
			samples[i] = int32(v)
		}
	case 32:
		for i, v := range buf.Data {
			samples[i] = int32(v >> 8)
		}
	default:
		return nil, fmt.Errorf("unsupported wav bit depth %d", d.BitDepth)
	}

	return conform(samples, buf.Format.SampleRate, buf.Format.NumChannels, spec)
}

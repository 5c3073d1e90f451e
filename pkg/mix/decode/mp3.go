// ABOUTME: MP3 stream decoding into mixer chunks
// ABOUTME: Uses hajimehoshi/go-mp3 which always emits 16-bit LE stereo
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/mixpool/mixpool-go/pkg/mix"
)

// MP3 decodes an MPEG audio stream into a chunk conformed to spec.
func MP3(r io.Reader, spec mix.Spec) (*mix.Chunk, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}

	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("reading mp3 frames: %w", err)
	}

	// go-mp3 output is 16-bit little-endian, two channels.
	samples := make([]int32, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = mix.SampleFromInt16(v)
	}

	return conform(samples, d.SampleRate(), 2, spec)
}

// ABOUTME: FLAC stream decoding into mixer chunks
// ABOUTME: Uses mewkiz/flac frame parsing and interleaves subframe samples
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/mixpool/mixpool-go/pkg/mix"
)

// FLAC decodes a native FLAC stream into a chunk conformed to spec.
func FLAC(r io.Reader, spec mix.Spec) (*mix.Chunk, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("decoding flac: %w", err)
	}

	channels := int(stream.Info.NChannels)
	rate := int(stream.Info.SampleRate)
	shift := 24 - int(stream.Info.BitsPerSample)

	var samples []int32
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parsing flac frame: %w", err)
		}
		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				v := frame.Subframes[ch].Samples[i]
				if shift >= 0 {
					samples = append(samples, v<<shift)
				} else {
					samples = append(samples, v>>(-shift))
				}
			}
		}
	}

	return conform(samples, rate, channels, spec)
}

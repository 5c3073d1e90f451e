// ABOUTME: Ogg/Opus stream decoding into mixer chunks
// ABOUTME: Uses hraban/opus; Opus always decodes at 48 kHz
package decode

import (
	"errors"
	"fmt"
	"io"

	opus "gopkg.in/hraban/opus.v2"

	"github.com/mixpool/mixpool-go/pkg/mix"
)

// opusRate is the fixed decode rate of the Opus codec.
const opusRate = 48000

// Opus decodes an Ogg-encapsulated Opus stream into a chunk conformed to
// spec. The Ogg layer does not expose the channel count, so the caller
// states it; channels must match the encoded stream (1 or 2).
func Opus(r io.Reader, channels int, spec mix.Spec) (*mix.Chunk, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("opus streams carry 1 or 2 channels, got %d", channels)
	}

	stream, err := opus.NewStream(r)
	if err != nil {
		return nil, fmt.Errorf("decoding opus: %w", err)
	}
	defer stream.Close()

	var samples []int32
	pcm := make([]int16, 4096*channels)
	for {
		n, err := stream.Read(pcm)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("reading opus frames: %w", err)
		}
		for _, v := range pcm[:n*channels] {
			samples = append(samples, mix.SampleFromInt16(v))
		}
	}

	return conform(samples, opusRate, channels, spec)
}

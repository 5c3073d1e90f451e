// ABOUTME: Raw PCM byte decoding into mixer chunks
// ABOUTME: Handles headerless 16- and 24-bit little-endian material
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/mixpool/mixpool-go/pkg/mix"
)

// PCM decodes headerless little-endian PCM into a chunk conformed to spec.
// bitDepth selects the source width: 16 or 24.
func PCM(data []byte, bitDepth, rate, channels int, spec mix.Spec) (*mix.Chunk, error) {
	var samples []int32
	switch bitDepth {
	case 16:
		samples = make([]int32, len(data)/2)
		for i := range samples {
			samples[i] = mix.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[i*2:])))
		}
	case 24:
		samples = make([]int32, len(data)/3)
		for i := range samples {
			samples[i] = mix.SampleFrom24Bit([3]byte{data[i*3], data[i*3+1], data[i*3+2]})
		}
	default:
		return nil, fmt.Errorf("unsupported pcm bit depth %d", bitDepth)
	}

	return conform(samples, rate, channels, spec)
}

// ABOUTME: Sample byte encoders for output streams
// ABOUTME: Converts int32 (24-bit) samples into the stream's wire format
package output

import (
	"encoding/binary"
	"math"
)

// Encode writes samples into dst using the given format and returns the
// number of bytes written. dst must hold at least
// len(samples)*format.BytesPerSample() bytes.
func Encode(format SampleFormat, samples []int32, dst []byte) int {
	switch format {
	case FormatU8:
		for i, s := range samples {
			dst[i] = uint8((s >> 16) + 128)
		}
		return len(samples)
	case FormatS8:
		for i, s := range samples {
			dst[i] = uint8(int8(s >> 16))
		}
		return len(samples)
	case FormatS16LE:
		for i, s := range samples {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(int16(s>>8)))
		}
		return len(samples) * 2
	case FormatS16BE:
		for i, s := range samples {
			binary.BigEndian.PutUint16(dst[i*2:], uint16(int16(s>>8)))
		}
		return len(samples) * 2
	case FormatF32LE:
		for i, s := range samples {
			f := float32(s) / float32(1<<23)
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
		}
		return len(samples) * 4
	}
	return 0
}

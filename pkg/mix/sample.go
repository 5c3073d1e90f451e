// ABOUTME: Sample value conversion helpers
// ABOUTME: Chunks carry int32 samples left-justified in the 24-bit range
package mix

const (
	// 24-bit sample range carried by Chunk and the mixer.
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// SampleFromInt16 widens a 16-bit sample into the 24-bit range.
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleToInt16 narrows a 24-bit sample to 16 bits.
func SampleToInt16(sample int32) int16 {
	return int16(sample >> 8)
}

// SampleFrom24Bit reconstructs a sample from 3 little-endian bytes,
// sign-extending to int32.
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if val&0x800000 != 0 {
		val |= ^int32(0xFFFFFF)
	}
	return val
}

// ABOUTME: Linear resampler for whole sample buffers
// ABOUTME: Converts interleaved audio between sample rates by interpolation
package resample

// Linear converts interleaved samples from fromRate to toRate in one pass
// using linear interpolation. The input is returned unchanged when the rates
// already match.
func Linear(input []int32, channels, fromRate, toRate int) []int32 {
	if fromRate == toRate || len(input) == 0 {
		return input
	}

	inFrames := len(input) / channels
	outFrames := int(int64(inFrames) * int64(toRate) / int64(fromRate))
	if outFrames == 0 {
		return nil
	}

	ratio := float64(fromRate) / float64(toRate)
	output := make([]int32, outFrames*channels)

	for out := 0; out < outFrames; out++ {
		pos := float64(out) * ratio
		idx := int(pos)
		frac := pos - float64(idx)

		// Hold the last frame at the tail instead of reading past the input.
		next := idx + 1
		if next >= inFrames {
			next = inFrames - 1
		}

		for ch := 0; ch < channels; ch++ {
			a := float64(input[idx*channels+ch])
			b := float64(input[next*channels+ch])
			output[out*channels+ch] = int32(a*(1.0-frac) + b*frac)
		}
	}

	return output
}

// ABOUTME: Frame-clock conversions for the mixing engine
// ABOUTME: Converts between milliseconds and sample frames at a fixed rate
package engine

// FramesFor converts a millisecond duration to sample frames at rate.
func FramesFor(ms int, rate int) int64 {
	return int64(ms) * int64(rate) / 1000
}

// MillisFor converts a frame count back to milliseconds at rate.
func MillisFor(frames int64, rate int) int {
	return int(frames * 1000 / int64(rate))
}

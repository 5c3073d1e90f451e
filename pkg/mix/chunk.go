// ABOUTME: Chunk type holding pre-decoded sample data
// ABOUTME: Borrowed by the mixer for playback, never owned or copied
package mix

import "time"

// Chunk is a pre-decoded audio sample: interleaved int32 samples (24-bit
// range) at a fixed rate and channel count. The mixer borrows the sample
// data for the duration of playback and never copies or mutates it; the
// caller must keep the chunk alive and unchanged while any channel plays it.
type Chunk struct {
	Samples  []int32
	Rate     int
	Channels int
}

// NewChunk wraps interleaved samples as a playable chunk.
func NewChunk(samples []int32, rate, channels int) *Chunk {
	return &Chunk{Samples: samples, Rate: rate, Channels: channels}
}

// Frames returns the chunk length in sample frames.
func (c *Chunk) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration returns the playback time of one pass through the chunk.
func (c *Chunk) Duration() time.Duration {
	if c.Rate == 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.Rate)
}

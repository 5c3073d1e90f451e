// ABOUTME: Per-channel playback state for the mixing engine
// ABOUTME: Tracks position, loops, volume, fade phase and expiry deadline
package engine

// Fading reports the fade phase of a channel.
type Fading int

const (
	NoFading Fading = iota
	FadingIn
	FadingOut
)

// String returns a short label for the fade phase.
func (f Fading) String() string {
	switch f {
	case FadingIn:
		return "fading-in"
	case FadingOut:
		return "fading-out"
	default:
		return "none"
	}
}

// MaxVolume is the per-channel volume ceiling.
const MaxVolume = 128

// noDeadline marks a channel without a scheduled expiry.
const noDeadline = int64(-1)

// channel is one playback slot. All fields are guarded by the engine mutex.
// Deadlines and fade starts are absolute frame positions on the engine clock.
type channel struct {
	pcm     []int32 // interleaved samples, borrowed from the caller's chunk
	pos     int     // next frame within pcm
	loops   int     // remaining restarts, -1 = infinite
	playing bool
	paused  bool
	volume  int // 0..MaxVolume

	fading     Fading
	fadeStart  int64
	fadeFrames int64

	deadline int64 // absolute halt frame, noDeadline = none
	pausedAt int64 // frame the current pause began, valid while paused
}

// frames returns the chunk length in frames for the given interleave count.
func (c *channel) frames(channels int) int {
	return len(c.pcm) / channels
}

// gainAt computes the effective gain at an absolute frame, combining channel
// volume with the fade ramp. Completing a fade-in drops the channel back to
// NoFading; gain is continuous across that transition.
func (c *channel) gainAt(now int64) float64 {
	g := float64(c.volume) / float64(MaxVolume)

	switch c.fading {
	case FadingIn:
		elapsed := now - c.fadeStart
		if elapsed >= c.fadeFrames {
			c.fading = NoFading
			return g
		}
		return g * float64(elapsed) / float64(c.fadeFrames)
	case FadingOut:
		elapsed := now - c.fadeStart
		if elapsed >= c.fadeFrames {
			return 0
		}
		return g * float64(c.fadeFrames-elapsed) / float64(c.fadeFrames)
	}

	return g
}

// reset returns the slot to idle, keeping its configured volume.
func (c *channel) reset() {
	c.pcm = nil
	c.pos = 0
	c.loops = 0
	c.playing = false
	c.paused = false
	c.fading = NoFading
	c.fadeStart = 0
	c.fadeFrames = 0
	c.deadline = noDeadline
	c.pausedAt = 0
}

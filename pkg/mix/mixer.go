// ABOUTME: Channel pool API: play, volume, pause, halt, expire, fades
// ABOUTME: Thin boundary over the mixing engine, translating the -1 sentinel
package mix

import (
	"fmt"

	"github.com/mixpool/mixpool-go/internal/engine"
)

// AllChannels broadcasts an operation to every allocated channel, or picks
// the first free channel when starting playback.
const AllChannels = -1

// MaxVolume is the per-channel volume ceiling; volumes clamp to [0, MaxVolume].
const MaxVolume = engine.MaxVolume

// DefaultChannels is the pool size used when NewMixer gets a non-positive count.
const DefaultChannels = 8

// NoTimeout plays without a duration ceiling.
const NoTimeout = -1

// Fading reports a channel's fade phase.
type Fading = engine.Fading

const (
	NoFading  = engine.NoFading
	FadingIn  = engine.FadingIn
	FadingOut = engine.FadingOut
)

// Mixer is a pool of independent playback channels over an open Device.
// All methods are non-blocking control calls; the actual mixing runs on the
// device backend's streaming context. Mixer methods must not be called after
// the device has been closed.
type Mixer struct {
	dev    *Device
	engine *engine.Engine
}

// NewMixer creates a channel pool bound to an open device. A non-positive
// numChannels allocates DefaultChannels. Only one mixer may be attached to a
// device.
func NewMixer(dev *Device, numChannels int) (*Mixer, error) {
	if numChannels <= 0 {
		numChannels = DefaultChannels
	}

	m := &Mixer{
		dev:    dev,
		engine: engine.New(dev.spec.Frequency, dev.spec.Channels, numChannels),
	}
	if err := dev.attach(m); err != nil {
		return nil, err
	}
	return m, nil
}

// AllocateChannels resizes the channel pool to n and returns the resulting
// size. Shrinking halts any channel beyond the new bound. A negative n only
// queries the current size.
func (m *Mixer) AllocateChannels(n int) int {
	return m.engine.Allocate(n)
}

// NumChannels returns the current pool size.
func (m *Mixer) NumChannels() int {
	return m.engine.NumChannels()
}

// SetVolume sets a channel's mix volume, clamped to [0, MaxVolume], and
// returns the resulting volume. AllChannels sets every channel and returns
// the resulting average.
func (m *Mixer) SetVolume(channel, volume int) int {
	return m.engine.SetVolume(channel, volume)
}

// Volume returns a channel's mix volume, or the pool average for AllChannels.
func (m *Mixer) Volume(channel int) int {
	return m.engine.Volume(channel)
}

// Play starts a chunk on the given channel (AllChannels picks the first free
// one) and returns the channel it plays on. loops of -1 repeats forever;
// passing 1 plays the chunk twice.
func (m *Mixer) Play(channel int, chunk *Chunk, loops int) (int, error) {
	return m.play(channel, chunk, loops, 0, NoTimeout)
}

// PlayTimed is Play with a hard playback ceiling of ticksMS milliseconds;
// the channel halts at the deadline even if loops remain. NoTimeout (-1)
// plays forever.
func (m *Mixer) PlayTimed(channel int, chunk *Chunk, loops, ticksMS int) (int, error) {
	return m.play(channel, chunk, loops, 0, ticksMS)
}

// FadeIn is Play with a linear ramp from silence to the channel's volume
// over fadeMS milliseconds.
func (m *Mixer) FadeIn(channel int, chunk *Chunk, loops, fadeMS int) (int, error) {
	return m.play(channel, chunk, loops, fadeMS, NoTimeout)
}

// FadeInTimed combines FadeIn and PlayTimed. Both clocks run from playback
// start; the deadline wins outright if it lands mid-fade.
func (m *Mixer) FadeInTimed(channel int, chunk *Chunk, loops, fadeMS, ticksMS int) (int, error) {
	return m.play(channel, chunk, loops, fadeMS, ticksMS)
}

func (m *Mixer) play(channel int, chunk *Chunk, loops, fadeMS, ticksMS int) (int, error) {
	if chunk == nil || len(chunk.Samples) == 0 {
		return -1, &PlayError{Reason: "empty chunk"}
	}

	spec := m.dev.spec
	if chunk.Rate != spec.Frequency || chunk.Channels != spec.Channels {
		return -1, &PlayError{Reason: fmt.Sprintf(
			"chunk format %dHz/%dch does not match device %dHz/%dch",
			chunk.Rate, chunk.Channels, spec.Frequency, spec.Channels)}
	}

	var fadeFrames int64
	if fadeMS > 0 {
		fadeFrames = engine.FramesFor(fadeMS, spec.Frequency)
	}
	limitFrames := int64(-1)
	if ticksMS >= 0 {
		limitFrames = engine.FramesFor(ticksMS, spec.Frequency)
	}

	idx, err := m.engine.Play(channel, chunk.Samples, loops, fadeFrames, limitFrames)
	if err != nil {
		return -1, &PlayError{Reason: "cannot start playback", Err: err}
	}
	return idx, nil
}

// Pause pauses a channel (or all). Pausing an already paused channel is a
// no-op; the playback position is held.
func (m *Mixer) Pause(channel int) {
	m.engine.Pause(channel)
}

// Resume unpauses a channel (or all). Resuming a channel that is not paused
// is a no-op.
func (m *Mixer) Resume(channel int) {
	m.engine.Resume(channel)
}

// Halt immediately stops a channel (or all), cancelling any pending fade or
// expiry deadline and freeing the channel.
func (m *Mixer) Halt(channel int) {
	m.engine.Halt(channel)
}

// Expire schedules a hard stop ticksMS milliseconds from now on a channel
// (or all), replacing any earlier deadline; a later Halt or Play overrides
// it. Negative ticksMS clears the deadline. Returns the number of channels
// given the new deadline, whether or not they are playing.
func (m *Mixer) Expire(channel, ticksMS int) int {
	frames := int64(-1)
	if ticksMS >= 0 {
		frames = engine.FramesFor(ticksMS, m.dev.spec.Frequency)
	}
	return m.engine.Expire(channel, frames)
}

// FadeOut begins a linear fade to silence over ms milliseconds on a channel
// (or all); each faded channel halts itself when the ramp completes. Only
// channels currently playing and not already fading out are affected.
// Returns the number affected.
func (m *Mixer) FadeOut(channel, ms int) int {
	return m.engine.FadeOut(channel, engine.FramesFor(ms, m.dev.spec.Frequency))
}

// Playing reports whether a channel is occupied (1 or 0), or the number of
// occupied channels for AllChannels. A paused channel still counts.
func (m *Mixer) Playing(channel int) int {
	return m.engine.Playing(channel)
}

// Paused reports whether a channel is paused (1 or 0), or the number of
// paused channels for AllChannels.
func (m *Mixer) Paused(channel int) int {
	return m.engine.Paused(channel)
}

// FadeState returns the fade phase of a concrete channel.
func (m *Mixer) FadeState(channel int) Fading {
	return m.engine.FadeState(channel)
}

// SetFinishedHandler installs the single handler invoked whenever a channel
// finishes playback, naturally or via halt, expiry or fade-out. Registering
// a new handler replaces the old one; nil disables notifications. The
// handler runs on the mixing engine's streaming context: it must return
// quickly and must not call back into the mixer.
func (m *Mixer) SetFinishedHandler(handler func(channel int)) {
	m.engine.SetFinished(handler)
}

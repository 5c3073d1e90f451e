// ABOUTME: Mixing engine with a pool of independent playback channels
// ABOUTME: Renders active channels into an output buffer on a frame clock
package engine

import (
	"errors"
	"sync"
)

// AllChannels addresses every allocated channel at once.
const AllChannels = -1

var (
	// ErrNoFreeChannel is returned by Play when no idle channel exists.
	ErrNoFreeChannel = errors.New("no free channel available")
	// ErrBadChannel is returned when a concrete index is out of range.
	ErrBadChannel = errors.New("channel index out of range")
)

// Engine mixes a resizable pool of playback channels into interleaved int32
// samples (24-bit range). Control calls mutate shared state under one mutex
// and return immediately; Render is driven by the output backend's streaming
// context and owns the clock. Broadcast operations (AllChannels) apply to a
// single locked snapshot of the pool.
type Engine struct {
	mu       sync.Mutex
	rate     int
	channels int // output interleave count
	frame    int64
	chs      []channel
	pending  []int // finished notifications awaiting the render context
	handler  func(int)
}

// New creates an engine for the given output rate and interleave count with
// numChannels playback slots.
func New(rate, channels, numChannels int) *Engine {
	e := &Engine{
		rate:     rate,
		channels: channels,
	}
	e.Allocate(numChannels)
	return e
}

// Rate returns the output sample rate in Hz.
func (e *Engine) Rate() int { return e.rate }

// Channels returns the output interleave count.
func (e *Engine) Channels() int { return e.channels }

// span expands a channel address into a half-open index range.
// Returns ok=false for a concrete index outside the pool.
func (e *Engine) span(ch int) (lo, hi int, ok bool) {
	if ch == AllChannels {
		return 0, len(e.chs), true
	}
	if ch < 0 || ch >= len(e.chs) {
		return 0, 0, false
	}
	return ch, ch + 1, true
}

// Allocate resizes the channel pool to n and returns the resulting size.
// Shrinking halts any channel beyond the new bound. Negative n only queries.
func (e *Engine) Allocate(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n < 0 {
		return len(e.chs)
	}
	for i := n; i < len(e.chs); i++ {
		e.finishLocked(i)
	}
	if n <= len(e.chs) {
		e.chs = e.chs[:n]
		return n
	}
	for i := len(e.chs); i < n; i++ {
		e.chs = append(e.chs, channel{
			volume:   MaxVolume,
			deadline: noDeadline,
		})
	}
	return n
}

// NumChannels returns the current pool size.
func (e *Engine) NumChannels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.chs)
}

// SetVolume sets the volume of a channel (or all), clamped to [0, MaxVolume].
// Returns the resulting volume, or the resulting average for AllChannels.
func (e *Engine) SetVolume(ch, volume int) int {
	if volume < 0 {
		volume = 0
	}
	if volume > MaxVolume {
		volume = MaxVolume
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	lo, hi, ok := e.span(ch)
	if !ok {
		return 0
	}
	for i := lo; i < hi; i++ {
		e.chs[i].volume = volume
	}
	return e.volumeLocked(ch)
}

// Volume returns a channel's volume, or the pool average for AllChannels.
func (e *Engine) Volume(ch int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volumeLocked(ch)
}

func (e *Engine) volumeLocked(ch int) int {
	if ch == AllChannels {
		if len(e.chs) == 0 {
			return 0
		}
		total := 0
		for i := range e.chs {
			total += e.chs[i].volume
		}
		return total / len(e.chs)
	}
	if ch < 0 || ch >= len(e.chs) {
		return 0
	}
	return e.chs[ch].volume
}

// Play starts pcm on a channel. ch == AllChannels picks the first idle slot.
// loops is the number of restarts (-1 = infinite), fadeFrames > 0 begins a
// linear fade-in, limitFrames >= 0 schedules a hard stop measured from now.
// A busy target channel is preempted (its finished notification is queued).
func (e *Engine) Play(ch int, pcm []int32, loops int, fadeFrames, limitFrames int64) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := ch
	if ch == AllChannels {
		idx = -1
		for i := range e.chs {
			if !e.chs[i].playing {
				idx = i
				break
			}
		}
		if idx == -1 {
			return -1, ErrNoFreeChannel
		}
	} else if ch < 0 || ch >= len(e.chs) {
		return -1, ErrBadChannel
	}

	c := &e.chs[idx]
	if c.playing {
		e.finishLocked(idx)
	}

	c.pcm = pcm
	c.pos = 0
	c.loops = loops
	c.playing = true
	c.paused = false
	if fadeFrames > 0 {
		c.fading = FadingIn
		c.fadeStart = e.frame
		c.fadeFrames = fadeFrames
	} else {
		c.fading = NoFading
	}
	if limitFrames >= 0 {
		c.deadline = e.frame + limitFrames
	} else {
		c.deadline = noDeadline
	}

	return idx, nil
}

// Pause pauses a playing channel (or all). Already-paused channels are left
// alone; the playback position is held.
func (e *Engine) Pause(ch int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lo, hi, ok := e.span(ch)
	if !ok {
		return
	}
	for i := lo; i < hi; i++ {
		if e.chs[i].playing && !e.chs[i].paused {
			e.chs[i].paused = true
			e.chs[i].pausedAt = e.frame
		}
	}
}

// Resume unpauses a channel (or all). Not-paused channels are left alone.
// An expiry deadline is pushed forward by the paused duration, so the
// channel keeps its full remaining budget.
func (e *Engine) Resume(ch int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lo, hi, ok := e.span(ch)
	if !ok {
		return
	}
	for i := lo; i < hi; i++ {
		c := &e.chs[i]
		if !c.paused {
			continue
		}
		c.paused = false
		if c.deadline != noDeadline {
			c.deadline += e.frame - c.pausedAt
		}
	}
}

// Halt stops a channel (or all) immediately, cancelling any pending fade or
// expiry. Finished notifications are queued for the render context.
func (e *Engine) Halt(ch int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lo, hi, ok := e.span(ch)
	if !ok {
		return
	}
	for i := lo; i < hi; i++ {
		e.finishLocked(i)
	}
}

// Expire schedules a hard stop frames from now on a channel (or all),
// replacing any previous deadline. Negative frames clears the deadline.
// Returns how many channels were touched, playing or not.
func (e *Engine) Expire(ch int, frames int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	lo, hi, ok := e.span(ch)
	if !ok {
		return 0
	}
	for i := lo; i < hi; i++ {
		if frames < 0 {
			e.chs[i].deadline = noDeadline
		} else {
			e.chs[i].deadline = e.frame + frames
		}
	}
	return hi - lo
}

// FadeOut begins a linear fade to silence over frames on each channel in the
// address that is currently playing and not already fading out. The channel
// halts itself when the fade completes. Returns the number affected.
func (e *Engine) FadeOut(ch int, frames int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	lo, hi, ok := e.span(ch)
	if !ok {
		return 0
	}
	affected := 0
	for i := lo; i < hi; i++ {
		c := &e.chs[i]
		if !c.playing || c.fading == FadingOut {
			continue
		}
		if frames <= 0 {
			e.finishLocked(i)
		} else {
			c.fading = FadingOut
			c.fadeStart = e.frame
			c.fadeFrames = frames
		}
		affected++
	}
	return affected
}

// Playing reports whether a channel is occupied (1/0), or the number of
// occupied channels for AllChannels. A paused channel still counts.
func (e *Engine) Playing(ch int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	lo, hi, ok := e.span(ch)
	if !ok {
		return 0
	}
	n := 0
	for i := lo; i < hi; i++ {
		if e.chs[i].playing {
			n++
		}
	}
	return n
}

// Paused reports whether a channel is paused (1/0), or the number of paused
// channels for AllChannels.
func (e *Engine) Paused(ch int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	lo, hi, ok := e.span(ch)
	if !ok {
		return 0
	}
	n := 0
	for i := lo; i < hi; i++ {
		if e.chs[i].paused {
			n++
		}
	}
	return n
}

// FadeState returns the fade phase of a concrete channel.
func (e *Engine) FadeState(ch int) Fading {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ch < 0 || ch >= len(e.chs) {
		return NoFading
	}
	return e.chs[ch].fading
}

// SetFinished installs the single finished-channel handler, replacing any
// previous one. The handler runs on the render context and must not call
// back into the engine. A nil handler disables notifications.
func (e *Engine) SetFinished(h func(channel int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = h
}

// Shutdown silences every channel and discards pending notifications. Used
// on device teardown, when the render context is going away.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.chs {
		e.chs[i].reset()
	}
	e.pending = nil
}

// finishLocked idles a channel and queues its notification. No-op when the
// channel is not occupied.
func (e *Engine) finishLocked(i int) {
	if !e.chs[i].playing {
		return
	}
	e.chs[i].reset()
	e.pending = append(e.pending, i)
}

// Render mixes all active channels into dst (interleaved int32, 24-bit
// range), advances the clock by len(dst)/Channels() frames and returns the
// number of samples written. Queued finished notifications fire here, after
// the engine state is released.
func (e *Engine) Render(dst []int32) int {
	for i := range dst {
		dst[i] = 0
	}

	e.mu.Lock()
	frames := len(dst) / e.channels
	start := e.frame

	for i := range e.chs {
		e.renderChannelLocked(i, dst, start, frames)
	}

	// Clamp the mix to the 24-bit sample range.
	for i := range dst {
		if dst[i] > maxSample {
			dst[i] = maxSample
		} else if dst[i] < minSample {
			dst[i] = minSample
		}
	}

	e.frame = start + int64(frames)
	done := e.pending
	e.pending = nil
	h := e.handler
	e.mu.Unlock()

	if h != nil {
		for _, ch := range done {
			h(ch)
		}
	}

	return frames * e.channels
}

const (
	maxSample = 8388607  // 2^23 - 1
	minSample = -8388608 // -2^23
)

// renderChannelLocked accumulates one channel into dst frame by frame,
// applying the fade ramp sample-accurately and honoring loop counts and the
// expiry deadline.
func (e *Engine) renderChannelLocked(idx int, dst []int32, start int64, frames int) {
	c := &e.chs[idx]
	if !c.playing || c.paused {
		return
	}

	total := c.frames(e.channels)
	if total == 0 {
		e.finishLocked(idx)
		return
	}

	for i := 0; i < frames; i++ {
		now := start + int64(i)

		if c.deadline != noDeadline && now >= c.deadline {
			e.finishLocked(idx)
			return
		}
		if c.fading == FadingOut && now >= c.fadeStart+c.fadeFrames {
			e.finishLocked(idx)
			return
		}

		g := c.gainAt(now)
		base := c.pos * e.channels
		out := i * e.channels
		for ch := 0; ch < e.channels; ch++ {
			dst[out+ch] += int32(float64(c.pcm[base+ch]) * g)
		}

		c.pos++
		if c.pos >= total {
			if c.loops == 0 {
				e.finishLocked(idx)
				return
			}
			if c.loops > 0 {
				c.loops--
			}
			c.pos = 0
		}
	}
}

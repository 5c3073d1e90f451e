// ABOUTME: Tests for the mixing engine and channel state machine
// ABOUTME: Drives Render directly so timing behavior is deterministic
package engine

import (
	"testing"
)

// testRate of 1000 Hz makes one frame equal one millisecond.
const testRate = 1000

// tone builds a mono chunk of the given length filled with a constant sample.
func tone(frames int, value int32) []int32 {
	pcm := make([]int32, frames)
	for i := range pcm {
		pcm[i] = value
	}
	return pcm
}

// pump renders the given number of mono frames and returns the output.
func pump(e *Engine, frames int) []int32 {
	dst := make([]int32, frames)
	e.Render(dst)
	return dst
}

func TestAllocateChannels(t *testing.T) {
	e := New(testRate, 1, 8)

	if got := e.NumChannels(); got != 8 {
		t.Errorf("expected 8 channels, got %d", got)
	}

	if got := e.Allocate(16); got != 16 {
		t.Errorf("expected 16 after grow, got %d", got)
	}
	if got := e.NumChannels(); got != 16 {
		t.Errorf("expected NumChannels 16, got %d", got)
	}

	if got := e.Allocate(4); got != 4 {
		t.Errorf("expected 4 after shrink, got %d", got)
	}

	// Negative only queries.
	if got := e.Allocate(-1); got != 4 {
		t.Errorf("expected query to return 4, got %d", got)
	}

	if got := e.Allocate(0); got != 0 {
		t.Errorf("expected 0 after full shrink, got %d", got)
	}
}

func TestAllocateShrinkHaltsChannels(t *testing.T) {
	e := New(testRate, 1, 8)

	idx, err := e.Play(6, tone(100, 1000), -1, 0, -1)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if idx != 6 {
		t.Fatalf("expected channel 6, got %d", idx)
	}

	e.Allocate(4)

	if got := e.Playing(AllChannels); got != 0 {
		t.Errorf("expected no playing channels after shrink, got %d", got)
	}
}

func TestSetVolumeClamps(t *testing.T) {
	e := New(testRate, 1, 4)

	if got := e.SetVolume(2, 500); got != MaxVolume {
		t.Errorf("expected clamp to %d, got %d", MaxVolume, got)
	}
	if got := e.Volume(2); got != MaxVolume {
		t.Errorf("expected volume %d, got %d", MaxVolume, got)
	}

	if got := e.SetVolume(2, -10); got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}

	if got := e.SetVolume(2, 64); got != 64 {
		t.Errorf("expected 64, got %d", got)
	}
}

func TestVolumeAverage(t *testing.T) {
	e := New(testRate, 1, 4)

	e.SetVolume(0, 0)
	e.SetVolume(1, 64)
	e.SetVolume(2, 64)
	e.SetVolume(3, 128)

	if got := e.Volume(AllChannels); got != 64 {
		t.Errorf("expected average 64, got %d", got)
	}

	// Broadcast set returns the resulting average.
	if got := e.SetVolume(AllChannels, 100); got != 100 {
		t.Errorf("expected broadcast set to return 100, got %d", got)
	}
	for i := 0; i < 4; i++ {
		if got := e.Volume(i); got != 100 {
			t.Errorf("channel %d: expected volume 100, got %d", i, got)
		}
	}
}

func TestPlayPicksFirstFreeChannel(t *testing.T) {
	e := New(testRate, 1, 4)

	idx, err := e.Play(AllChannels, tone(100, 1000), -1, 0, -1)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if idx != 0 {
		t.Errorf("expected channel 0, got %d", idx)
	}

	idx, err = e.Play(AllChannels, tone(100, 1000), -1, 0, -1)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected channel 1, got %d", idx)
	}

	if got := e.Playing(0); got != 1 {
		t.Errorf("expected channel 0 playing, got %d", got)
	}
}

func TestPlaySaturatedPoolFails(t *testing.T) {
	e := New(testRate, 1, 4)

	for i := 0; i < 4; i++ {
		if _, err := e.Play(AllChannels, tone(100, 1000), -1, 0, -1); err != nil {
			t.Fatalf("play %d failed: %v", i, err)
		}
	}

	if _, err := e.Play(AllChannels, tone(100, 1000), 0, 0, -1); err != ErrNoFreeChannel {
		t.Errorf("expected ErrNoFreeChannel, got %v", err)
	}
}

func TestPlayBadChannel(t *testing.T) {
	e := New(testRate, 1, 4)

	if _, err := e.Play(4, tone(10, 1000), 0, 0, -1); err != ErrBadChannel {
		t.Errorf("expected ErrBadChannel for index 4, got %v", err)
	}
	if _, err := e.Play(-2, tone(10, 1000), 0, 0, -1); err != ErrBadChannel {
		t.Errorf("expected ErrBadChannel for index -2, got %v", err)
	}
}

func TestPlayDirectIndexPreempts(t *testing.T) {
	e := New(testRate, 1, 4)

	var finished []int
	e.SetFinished(func(ch int) { finished = append(finished, ch) })

	if _, err := e.Play(2, tone(100, 1000), -1, 0, -1); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if _, err := e.Play(2, tone(100, 2000), -1, 0, -1); err != nil {
		t.Fatalf("preempting play failed: %v", err)
	}

	if got := e.Playing(2); got != 1 {
		t.Errorf("expected channel 2 still occupied, got %d", got)
	}

	// The preempted sound's notification fires on the next render pass.
	pump(e, 10)
	if len(finished) != 1 || finished[0] != 2 {
		t.Errorf("expected finished notification for channel 2, got %v", finished)
	}
}

func TestLoopsPlayCountTimes(t *testing.T) {
	e := New(testRate, 1, 2)

	// 10-frame chunk with 2 loops plays exactly 3 times = 30 frames.
	if _, err := e.Play(0, tone(10, 1000), 2, 0, -1); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	out := pump(e, 50)

	for i := 0; i < 30; i++ {
		if out[i] == 0 {
			t.Fatalf("frame %d: expected audio, got silence", i)
		}
	}
	for i := 30; i < 50; i++ {
		if out[i] != 0 {
			t.Fatalf("frame %d: expected silence after 3 plays, got %d", i, out[i])
		}
	}

	if got := e.Playing(0); got != 0 {
		t.Errorf("expected channel idle after loops exhausted, got %d", got)
	}
}

func TestInfiniteLoopKeepsPlaying(t *testing.T) {
	e := New(testRate, 1, 2)

	if _, err := e.Play(0, tone(10, 1000), -1, 0, -1); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	out := pump(e, 1000)
	for i, s := range out {
		if s == 0 {
			t.Fatalf("frame %d: expected continuous audio, got silence", i)
		}
	}
	if got := e.Playing(0); got != 1 {
		t.Errorf("expected channel still playing, got %d", got)
	}
}

func TestTimeoutHaltsDespiteLoops(t *testing.T) {
	e := New(testRate, 1, 2)

	// Infinite loops but a 20-frame ceiling.
	if _, err := e.Play(0, tone(10, 1000), -1, 0, 20); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	out := pump(e, 50)

	for i := 0; i < 20; i++ {
		if out[i] == 0 {
			t.Fatalf("frame %d: expected audio before deadline", i)
		}
	}
	for i := 20; i < 50; i++ {
		if out[i] != 0 {
			t.Fatalf("frame %d: expected silence after deadline, got %d", i, out[i])
		}
	}

	if got := e.Playing(0); got != 0 {
		t.Errorf("expected channel idle after timeout, got %d", got)
	}
}

func TestTimeoutWinsOverFadeIn(t *testing.T) {
	e := New(testRate, 1, 2)

	// Fade-in longer than the playback ceiling: the deadline stops it mid-ramp.
	if _, err := e.Play(0, tone(10, 1000), -1, 100, 20); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	pump(e, 30)

	if got := e.Playing(0); got != 0 {
		t.Errorf("expected hard stop at deadline during fade-in, got playing=%d", got)
	}
}

func TestFadeInRampsLinearly(t *testing.T) {
	e := New(testRate, 1, 2)

	if _, err := e.Play(0, tone(100, 10000), -1, 10, -1); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if got := e.FadeState(0); got != FadingIn {
		t.Fatalf("expected FadingIn, got %v", got)
	}

	out := pump(e, 20)

	if out[0] != 0 {
		t.Errorf("frame 0: expected silence at fade start, got %d", out[0])
	}
	if out[5] <= out[1] {
		t.Errorf("expected rising ramp, got out[1]=%d out[5]=%d", out[1], out[5])
	}
	if out[15] != 10000 {
		t.Errorf("frame 15: expected full volume 10000, got %d", out[15])
	}

	if got := e.FadeState(0); got != NoFading {
		t.Errorf("expected NoFading after ramp, got %v", got)
	}
}

func TestFadeOutSilencesAndHalts(t *testing.T) {
	e := New(testRate, 1, 2)

	if _, err := e.Play(0, tone(100, 10000), -1, 0, -1); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	pump(e, 5)

	if got := e.FadeOut(0, FramesFor(10, testRate)); got != 1 {
		t.Errorf("expected 1 channel affected, got %d", got)
	}
	if got := e.FadeState(0); got != FadingOut {
		t.Fatalf("expected FadingOut immediately, got %v", got)
	}

	out := pump(e, 20)

	if out[0] != 10000 {
		t.Errorf("frame 0: expected full volume at fade start, got %d", out[0])
	}
	if out[8] >= out[2] {
		t.Errorf("expected falling ramp, got out[2]=%d out[8]=%d", out[2], out[8])
	}
	for i := 10; i < 20; i++ {
		if out[i] != 0 {
			t.Fatalf("frame %d: expected silence after fade-out, got %d", i, out[i])
		}
	}

	if got := e.Playing(0); got != 0 {
		t.Errorf("expected channel idle after fade-out, got %d", got)
	}
}

func TestFadeOutAffectsOnlyPlayingChannels(t *testing.T) {
	e := New(testRate, 1, 4)

	e.Play(0, tone(100, 1000), -1, 0, -1)
	e.Play(1, tone(100, 1000), -1, 0, -1)
	e.FadeOut(1, 50)

	// Channel 1 already fading out, channels 2 and 3 idle.
	if got := e.FadeOut(AllChannels, 50); got != 1 {
		t.Errorf("expected 1 newly affected channel, got %d", got)
	}
}

func TestFadeOutZeroDurationHaltsNow(t *testing.T) {
	e := New(testRate, 1, 2)

	e.Play(0, tone(100, 1000), -1, 0, -1)
	if got := e.FadeOut(0, 0); got != 1 {
		t.Errorf("expected 1 channel affected, got %d", got)
	}
	if got := e.Playing(0); got != 0 {
		t.Errorf("expected immediate halt for zero-length fade, got %d", got)
	}
}

func TestPauseHoldsPosition(t *testing.T) {
	e := New(testRate, 1, 2)

	// Ramp chunk so the position is visible in the output.
	pcm := make([]int32, 100)
	for i := range pcm {
		pcm[i] = int32(i + 1)
	}
	e.Play(0, pcm, 0, 0, -1)

	pump(e, 10)

	e.Pause(0)
	if got := e.Paused(0); got != 1 {
		t.Errorf("expected paused, got %d", got)
	}
	if got := e.Playing(0); got != 1 {
		t.Errorf("expected paused channel to stay occupied, got %d", got)
	}

	out := pump(e, 10)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("frame %d: expected silence while paused, got %d", i, s)
		}
	}

	// Pausing again is a no-op, resuming picks up where it left off.
	e.Pause(0)
	e.Resume(0)
	if got := e.Paused(0); got != 0 {
		t.Errorf("expected unpaused, got %d", got)
	}

	out = pump(e, 5)
	if out[0] != 11 {
		t.Errorf("expected playback to resume at frame 10 (sample 11), got %d", out[0])
	}
}

func TestResumeWithoutPauseIsNoop(t *testing.T) {
	e := New(testRate, 1, 2)

	e.Play(0, tone(100, 1000), 0, 0, -1)
	e.Resume(0)
	if got := e.Paused(0); got != 0 {
		t.Errorf("expected not paused, got %d", got)
	}
	if got := e.Playing(0); got != 1 {
		t.Errorf("expected still playing, got %d", got)
	}
}

func TestPauseAllCounts(t *testing.T) {
	e := New(testRate, 1, 4)

	e.Play(0, tone(100, 1000), -1, 0, -1)
	e.Play(1, tone(100, 1000), -1, 0, -1)

	e.Pause(AllChannels)
	if got := e.Paused(AllChannels); got != 2 {
		t.Errorf("expected 2 paused channels, got %d", got)
	}

	e.Resume(AllChannels)
	if got := e.Paused(AllChannels); got != 0 {
		t.Errorf("expected 0 paused channels, got %d", got)
	}
}

func TestHaltAllStopsEverything(t *testing.T) {
	e := New(testRate, 1, 8)

	for i := 0; i < 5; i++ {
		if _, err := e.Play(AllChannels, tone(100, 1000), -1, 0, -1); err != nil {
			t.Fatalf("play %d failed: %v", i, err)
		}
	}
	e.Pause(3)

	e.Halt(AllChannels)

	if got := e.Playing(AllChannels); got != 0 {
		t.Errorf("expected no playing channels after Halt(-1), got %d", got)
	}
	if got := e.Paused(AllChannels); got != 0 {
		t.Errorf("expected no paused channels after Halt(-1), got %d", got)
	}
}

func TestHaltCancelsFadeAndExpiry(t *testing.T) {
	e := New(testRate, 1, 2)

	e.Play(0, tone(100, 1000), -1, 0, 50)
	e.FadeOut(0, 30)
	e.Halt(0)

	if got := e.FadeState(0); got != NoFading {
		t.Errorf("expected NoFading after halt, got %v", got)
	}

	// A new sound on the channel must not inherit the old deadline.
	e.Play(0, tone(10, 1000), -1, 0, -1)
	out := pump(e, 100)
	for i, s := range out {
		if s == 0 {
			t.Fatalf("frame %d: old deadline leaked into new playback", i)
		}
	}
}

func TestExpireCountsAndDeadline(t *testing.T) {
	e := New(testRate, 1, 8)

	e.Play(0, tone(100, 1000), -1, 0, -1)

	// Broadcast counts every allocated channel, playing or not.
	if got := e.Expire(AllChannels, 20); got != 8 {
		t.Errorf("expected 8 channels set to expire, got %d", got)
	}

	out := pump(e, 50)
	for i := 20; i < 50; i++ {
		if out[i] != 0 {
			t.Fatalf("frame %d: expected silence after expiry, got %d", i, out[i])
		}
	}
	if got := e.Playing(0); got != 0 {
		t.Errorf("expected channel idle after expiry, got %d", got)
	}
}

func TestExpireSingleChannel(t *testing.T) {
	e := New(testRate, 1, 4)

	e.Play(0, tone(100, 1000), -1, 0, -1)
	e.Play(1, tone(100, 1000), -1, 0, -1)

	if got := e.Expire(1, 10); got != 1 {
		t.Errorf("expected 1 channel set to expire, got %d", got)
	}

	pump(e, 30)

	if got := e.Playing(0); got != 1 {
		t.Errorf("expected channel 0 unaffected, got %d", got)
	}
	if got := e.Playing(1); got != 0 {
		t.Errorf("expected channel 1 expired, got %d", got)
	}
}

func TestExpireNegativeClearsDeadline(t *testing.T) {
	e := New(testRate, 1, 2)

	e.Play(0, tone(10, 1000), -1, 0, 20)
	e.Expire(0, -1)

	pump(e, 100)
	if got := e.Playing(0); got != 1 {
		t.Errorf("expected cleared deadline to keep channel playing, got %d", got)
	}
}

func TestNewPlayOverridesExpire(t *testing.T) {
	e := New(testRate, 1, 2)

	e.Play(0, tone(10, 1000), -1, 0, -1)
	e.Expire(0, 20)
	e.Play(0, tone(10, 2000), -1, 0, -1)

	pump(e, 100)
	if got := e.Playing(0); got != 1 {
		t.Errorf("expected new play to drop old deadline, got playing=%d", got)
	}
}

func TestPauseShiftsExpiryDeadline(t *testing.T) {
	e := New(testRate, 1, 2)

	e.Play(0, tone(10, 1000), -1, 0, -1)
	e.Expire(0, 100)

	// Burn half the budget, then pause well past the original deadline.
	pump(e, 50)
	e.Pause(0)
	pump(e, 200)
	if got := e.Playing(0); got != 1 {
		t.Errorf("expected paused channel to survive deadline, got %d", got)
	}

	// The remaining 50 frames of budget are granted after resume.
	e.Resume(0)
	pump(e, 10)
	if got := e.Playing(0); got != 1 {
		t.Errorf("expected resumed channel to keep its remaining budget, got %d", got)
	}

	pump(e, 45)
	if got := e.Playing(0); got != 0 {
		t.Errorf("expected channel to expire once the budget ran out, got %d", got)
	}
}

func TestFinishedHandlerOnNaturalEnd(t *testing.T) {
	e := New(testRate, 1, 2)

	var finished []int
	e.SetFinished(func(ch int) { finished = append(finished, ch) })

	e.Play(1, tone(10, 1000), 0, 0, -1)
	pump(e, 20)

	if len(finished) != 1 || finished[0] != 1 {
		t.Errorf("expected finished callback for channel 1, got %v", finished)
	}
}

func TestFinishedHandlerReplaced(t *testing.T) {
	e := New(testRate, 1, 2)

	firstCalls := 0
	secondCalls := 0
	e.SetFinished(func(int) { firstCalls++ })
	e.SetFinished(func(int) { secondCalls++ })

	e.Play(0, tone(10, 1000), 0, 0, -1)
	pump(e, 20)

	if firstCalls != 0 {
		t.Errorf("expected replaced handler to never fire, got %d calls", firstCalls)
	}
	if secondCalls != 1 {
		t.Errorf("expected new handler to fire once, got %d calls", secondCalls)
	}
}

func TestShutdownDropsPendingNotifications(t *testing.T) {
	e := New(testRate, 1, 2)

	calls := 0
	e.SetFinished(func(int) { calls++ })

	e.Play(0, tone(100, 1000), -1, 0, -1)
	e.Halt(0)
	e.Shutdown()

	pump(e, 10)
	if calls != 0 {
		t.Errorf("expected pending notifications dropped on shutdown, got %d", calls)
	}
}

func TestRenderMixesChannelsAndClamps(t *testing.T) {
	e := New(testRate, 1, 2)

	e.Play(0, tone(10, 6000000), -1, 0, -1)
	e.Play(1, tone(10, 6000000), -1, 0, -1)

	out := pump(e, 10)
	for i, s := range out {
		if s != maxSample {
			t.Fatalf("frame %d: expected clamp to %d, got %d", i, maxSample, s)
		}
	}
}

func TestRenderStereoInterleave(t *testing.T) {
	e := New(testRate, 2, 2)

	// Stereo chunk: left ramps, right is constant.
	pcm := make([]int32, 20)
	for i := 0; i < 10; i++ {
		pcm[i*2] = int32(i + 1)
		pcm[i*2+1] = 500
	}
	e.Play(0, pcm, 0, 0, -1)

	dst := make([]int32, 20)
	e.Render(dst)

	for i := 0; i < 10; i++ {
		if dst[i*2] != int32(i+1) {
			t.Errorf("frame %d left: expected %d, got %d", i, i+1, dst[i*2])
		}
		if dst[i*2+1] != 500 {
			t.Errorf("frame %d right: expected 500, got %d", i, dst[i*2+1])
		}
	}
}

func TestVolumeScalesOutput(t *testing.T) {
	e := New(testRate, 1, 2)

	e.SetVolume(0, MaxVolume/2)
	e.Play(0, tone(10, 10000), 0, 0, -1)

	out := pump(e, 10)
	if out[0] != 5000 {
		t.Errorf("expected half-volume sample 5000, got %d", out[0])
	}
}

func TestFramesForConversions(t *testing.T) {
	if got := FramesFor(1000, 44100); got != 44100 {
		t.Errorf("expected 44100 frames for 1s, got %d", got)
	}
	if got := FramesFor(20, 48000); got != 960 {
		t.Errorf("expected 960 frames for 20ms at 48k, got %d", got)
	}
	if got := MillisFor(960, 48000); got != 20 {
		t.Errorf("expected 20ms for 960 frames at 48k, got %d", got)
	}
}

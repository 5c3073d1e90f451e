// ABOUTME: Package documentation for the mix public API
// ABOUTME: Channel-based sample playback over one audio output device
// Package mix plays pre-decoded audio samples on a fixed pool of mixing
// channels over a single output device.
//
// A Device owns the process-wide audio output; at most one may be open at a
// time. A Mixer, constructed against an open Device, provides independent
// playback channels with per-channel volume, looping, pause/resume, timed
// expiry and linear fade-in/fade-out. The channel argument of most Mixer
// methods accepts AllChannels (-1) to broadcast, or to pick the first free
// channel when starting playback.
//
//	dev, err := mix.Open(mix.DefaultSpec())
//	defer dev.Close()
//	mixer, err := mix.NewMixer(dev, 8)
//	chunk, err := decode.LoadFile("hit.wav", dev.Spec())
//	ch, err := mixer.Play(mix.AllChannels, chunk, 0)
//
// Loading and decoding of sample data lives in the decode subpackage.
package mix

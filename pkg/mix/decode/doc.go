// ABOUTME: Package documentation for chunk decoding
// ABOUTME: Loads WAV, MP3, FLAC, Ogg/Opus and raw PCM into playable chunks
// Package decode loads encoded audio into mix.Chunk values ready for
// playback.
//
// Every loader converts the decoded samples to a target device spec
// (channel count and sample rate), so the resulting chunk can be handed to
// a Mixer bound to that device without further processing:
//
//	chunk, err := decode.LoadFile("explosion.wav", dev.Spec())
//	mixer.Play(mix.AllChannels, chunk, 0)
package decode

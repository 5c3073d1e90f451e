// ABOUTME: Audio output backend abstraction
// ABOUTME: Common interface for streaming playback backends (oto, malgo)
package output

import "fmt"

// Source produces interleaved int32 samples (24-bit range) on demand. It is
// pulled from the backend's streaming context.
type Source interface {
	// Render fills dst with mixed samples and returns the number written.
	Render(dst []int32) int
}

// SampleFormat enumerates the output byte formats a stream can carry.
type SampleFormat int

const (
	FormatU8 SampleFormat = iota
	FormatS8
	FormatS16LE
	FormatS16BE
	FormatF32LE
)

// BytesPerSample returns the encoded width of one sample.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatU8, FormatS8:
		return 1
	case FormatS16LE, FormatS16BE:
		return 2
	case FormatF32LE:
		return 4
	}
	return 0
}

// String returns the conventional name of the format.
func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatS8:
		return "s8"
	case FormatS16LE:
		return "s16le"
	case FormatS16BE:
		return "s16be"
	case FormatF32LE:
		return "f32le"
	}
	return fmt.Sprintf("unknown(%d)", int(f))
}

// StreamSpec describes an output stream.
type StreamSpec struct {
	Rate      int // sample rate in Hz
	Channels  int // interleave count
	Format    SampleFormat
	ChunkSize int // backend buffer size in bytes
}

// BytesPerFrame returns the encoded width of one interleaved frame.
func (s StreamSpec) BytesPerFrame() int {
	return s.Format.BytesPerSample() * s.Channels
}

// Backend is an audio output device implementation.
type Backend interface {
	// Start opens the stream and begins pulling samples from src.
	Start(src Source, spec StreamSpec) error

	// Close stops the stream and releases backend resources.
	Close() error
}

// New returns the backend registered under name. An empty name selects the
// default (oto) backend.
func New(name string) (Backend, error) {
	switch name {
	case "", "oto":
		return NewOto(), nil
	case "malgo":
		return NewMalgo(), nil
	default:
		return nil, fmt.Errorf("unknown output backend: %q", name)
	}
}

// ABOUTME: Exclusive audio output device handle
// ABOUTME: At most one Device is open per process; Close is idempotent
package mix

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/mixpool/mixpool-go/internal/engine"
	"github.com/mixpool/mixpool-go/internal/output"
)

// Format enumerates the sample formats a device stream can carry. Which
// formats actually open depends on the backend (oto cannot deliver signed
// 8-bit or big-endian output, for example).
type Format = output.SampleFormat

const (
	FormatU8    = output.FormatU8
	FormatS8    = output.FormatS8
	FormatS16LE = output.FormatS16LE
	FormatS16BE = output.FormatS16BE
	FormatF32LE = output.FormatF32LE
)

// Spec holds the parameters the device is opened with. They are fixed for
// the lifetime of the device.
type Spec struct {
	Frequency int    // sample rate in Hz
	Format    Format // output sample format
	Channels  int    // output channels: 1 mono, 2 stereo
	ChunkSize int    // output buffer size in bytes
	Backend   string // "oto" (default) or "malgo"
}

// DefaultSpec returns a spec suitable for most games: 44.1kHz 16-bit stereo
// with a 4KiB buffer.
func DefaultSpec() Spec {
	return Spec{
		Frequency: 44100,
		Format:    FormatS16LE,
		Channels:  2,
		ChunkSize: 4096,
	}
}

func (s Spec) stream() output.StreamSpec {
	return output.StreamSpec{
		Rate:      s.Frequency,
		Channels:  s.Channels,
		Format:    s.Format,
		ChunkSize: s.ChunkSize,
	}
}

func (s Spec) validate() error {
	if s.Frequency <= 0 {
		return &OpenError{Reason: fmt.Sprintf("frequency must be positive, got %d", s.Frequency)}
	}
	if s.Channels < 1 {
		return &OpenError{Reason: fmt.Sprintf("channel count must be at least 1, got %d", s.Channels)}
	}
	if s.ChunkSize <= 0 {
		return &OpenError{Reason: fmt.Sprintf("chunk size must be positive, got %d", s.ChunkSize)}
	}
	return nil
}

// The audio output is process-wide exclusive state.
var (
	deviceMu   sync.Mutex
	deviceOpen bool
)

// newBackend is swapped out by tests to avoid touching real hardware.
var newBackend = output.New

// deviceSource feeds the backend's streaming context. It renders silence
// until a mixer is attached.
type deviceSource struct {
	engine atomic.Pointer[engine.Engine]
}

func (s *deviceSource) Render(dst []int32) int {
	e := s.engine.Load()
	if e == nil {
		for i := range dst {
			dst[i] = 0
		}
		return len(dst)
	}
	return e.Render(dst)
}

// Device is the exclusive handle on the opened audio output. It is the
// precondition for all mixer operations: construct a Mixer against an open
// Device, and do not use the mixer after the device is closed.
type Device struct {
	mu      sync.Mutex
	spec    Spec
	backend output.Backend
	source  deviceSource
	mixer   *Mixer
	open    bool
}

// Open opens the process-wide audio output. It fails with *OpenError when
// the parameters are invalid, a device is already open in this process, or
// the backend cannot deliver the requested stream.
func Open(spec Spec) (*Device, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	deviceMu.Lock()
	defer deviceMu.Unlock()

	if deviceOpen {
		return nil, &OpenError{Reason: "an audio device is already open in this process"}
	}

	backend, err := newBackend(spec.Backend)
	if err != nil {
		return nil, &OpenError{Reason: "backend selection failed", Err: err}
	}

	d := &Device{spec: spec, backend: backend}
	if err := backend.Start(&d.source, spec.stream()); err != nil {
		return nil, &OpenError{Reason: "backend failed to start", Err: err}
	}

	d.open = true
	deviceOpen = true
	return d, nil
}

// Spec returns the parameters the device was opened with.
func (d *Device) Spec() Spec {
	return d.spec
}

// IsOpen reports whether the device still owns the audio output.
func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Close releases the audio output, halting all playback on the attached
// mixer. It is safe to call any number of times; only the first call
// releases the device. A later Open may then acquire the output again.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil
	}

	// Silence the mixer before tearing down its render context.
	if e := d.source.engine.Swap(nil); e != nil {
		e.Shutdown()
	}

	err := d.backend.Close()

	d.open = false
	deviceMu.Lock()
	deviceOpen = false
	deviceMu.Unlock()

	if err != nil {
		log.Printf("Audio device close: backend error: %v", err)
		return fmt.Errorf("close audio device: %w", err)
	}
	return nil
}

// attach binds a mixer's engine to the device stream. One mixer per device.
func (d *Device) attach(m *Mixer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return fmt.Errorf("audio device is closed")
	}
	if d.mixer != nil {
		return fmt.Errorf("a mixer is already attached to this device")
	}

	d.mixer = m
	d.source.engine.Store(m.engine)
	return nil
}

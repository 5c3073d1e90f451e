// ABOUTME: Malgo (miniaudio) output backend
// ABOUTME: Renders samples directly inside the miniaudio data callback
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/gen2brain/malgo"
)

// Malgo is an alternative output backend built on github.com/gen2brain/malgo.
type Malgo struct {
	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	spec     StreamSpec
	scratch  []int32
}

// NewMalgo creates a malgo output backend.
func NewMalgo() *Malgo {
	return &Malgo{}
}

// malgoFormat maps a stream format onto the formats miniaudio can deliver.
func malgoFormat(f SampleFormat) (malgo.FormatType, error) {
	switch f {
	case FormatU8:
		return malgo.FormatU8, nil
	case FormatS16LE:
		return malgo.FormatS16, nil
	case FormatF32LE:
		return malgo.FormatF32, nil
	default:
		return malgo.FormatUnknown, fmt.Errorf("sample format %s not supported by malgo output", f)
	}
}

// Start opens the playback device and begins pulling samples from src.
func (m *Malgo) Start(src Source, spec StreamSpec) error {
	format, err := malgoFormat(spec.Format)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return fmt.Errorf("malgo output already started")
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = format
	deviceConfig.Playback.Channels = uint32(spec.Channels)
	deviceConfig.SampleRate = uint32(spec.Rate)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			m.renderInto(src, spec, out, int(frameCount))
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	m.malgoCtx = ctx
	m.device = device
	m.spec = spec

	log.Printf("Audio output started: %dHz, %d channels, %s (malgo)",
		spec.Rate, spec.Channels, spec.Format)

	return nil
}

// renderInto fills one callback buffer. Runs on miniaudio's audio thread.
func (m *Malgo) renderInto(src Source, spec StreamSpec, out []byte, frames int) {
	samples := frames * spec.Channels
	if cap(m.scratch) < samples {
		m.scratch = make([]int32, samples)
	}
	buf := m.scratch[:samples]

	src.Render(buf)
	Encode(spec.Format, buf, out)
}

// Close stops the device and releases the miniaudio context.
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		m.device.Uninit()
		m.device = nil
	}
	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("malgo context uninit failed: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

// ABOUTME: Oto-based output backend
// ABOUTME: Streams encoded samples through a persistent oto player
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows exactly one context per process, so the context is a package
// singleton reused across device open/close cycles via Suspend/Resume.
var (
	otoMu        sync.Mutex
	otoCtx       *oto.Context
	otoSpec      StreamSpec
	otoSuspended bool
)

// Oto is the default output backend, built on github.com/ebitengine/oto.
type Oto struct {
	player *oto.Player
}

// NewOto creates an oto output backend.
func NewOto() *Oto {
	return &Oto{}
}

// otoFormat maps a stream format onto the formats oto can deliver.
func otoFormat(f SampleFormat) (oto.Format, error) {
	switch f {
	case FormatU8:
		return oto.FormatUnsignedInt8, nil
	case FormatS16LE:
		return oto.FormatSignedInt16LE, nil
	case FormatF32LE:
		return oto.FormatFloat32LE, nil
	default:
		return 0, fmt.Errorf("sample format %s not supported by oto output", f)
	}
}

// Start opens the stream and begins pulling samples from src.
func (o *Oto) Start(src Source, spec StreamSpec) error {
	format, err := otoFormat(spec.Format)
	if err != nil {
		return err
	}

	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   spec.Rate,
			ChannelCount: spec.Channels,
			Format:       format,
		}
		if spec.ChunkSize > 0 {
			frames := spec.ChunkSize / spec.BytesPerFrame()
			op.BufferSize = time.Duration(frames) * time.Second / time.Duration(spec.Rate)
		}

		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			return fmt.Errorf("failed to create oto context: %w", err)
		}
		<-ready

		otoCtx = ctx
		otoSpec = spec
	} else {
		// The process-wide context is fixed at first open; a later open must
		// match it because oto cannot be reinitialized.
		if spec.Rate != otoSpec.Rate || spec.Channels != otoSpec.Channels || spec.Format != otoSpec.Format {
			return fmt.Errorf("output already initialized as %dHz/%dch/%s, cannot reopen as %dHz/%dch/%s",
				otoSpec.Rate, otoSpec.Channels, otoSpec.Format,
				spec.Rate, spec.Channels, spec.Format)
		}
		if otoSuspended {
			if err := otoCtx.Resume(); err != nil {
				return fmt.Errorf("failed to resume oto context: %w", err)
			}
		}
	}
	otoSuspended = false

	o.player = otoCtx.NewPlayer(newRenderReader(src, spec))
	o.player.Play()

	log.Printf("Audio output started: %dHz, %d channels, %s (oto)",
		spec.Rate, spec.Channels, spec.Format)

	return nil
}

// Close stops the stream. The oto context itself is suspended, not
// destroyed, so a later Start can resume it.
func (o *Oto) Close() error {
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			log.Printf("oto player close failed: %v", err)
		}
		o.player = nil
	}

	otoMu.Lock()
	defer otoMu.Unlock()
	if otoCtx != nil && !otoSuspended {
		if err := otoCtx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend oto context: %w", err)
		}
		otoSuspended = true
	}
	return nil
}

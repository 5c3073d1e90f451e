// ABOUTME: Entry point for the mixpad sound board
// ABOUTME: Opens the audio device, loads a sound bank, and runs the TUI
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mixpool/mixpool-go/internal/ui"
	"github.com/mixpool/mixpool-go/internal/version"
	"github.com/mixpool/mixpool-go/pkg/mix"
	"github.com/mixpool/mixpool-go/pkg/mix/decode"
)

var (
	backend  = flag.String("backend", "", "Audio backend: oto (default) or malgo")
	rate     = flag.Int("rate", 44100, "Output sample rate in Hz")
	channels = flag.Int("channels", 2, "Output channel count")
	chunk    = flag.Int("chunk", 4096, "Output buffer size in bytes")
	voices   = flag.Int("voices", mix.DefaultChannels, "Number of mixing channels")
	logFile  = flag.String("log-file", "mixpad.log", "Log file path")
	showVer  = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: mixpad [flags] sound.wav [sound2.mp3 ...]\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// The TUI owns the terminal, so logs go to a file.
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()
	log.SetOutput(f)

	spec := mix.Spec{
		Frequency: *rate,
		Format:    mix.FormatS16LE,
		Channels:  *channels,
		ChunkSize: *chunk,
		Backend:   *backend,
	}

	dev, err := mix.Open(spec)
	if err != nil {
		log.Printf("Failed to open audio device: %v", err)
		fmt.Fprintf(os.Stderr, "mixpad: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = dev.Close() }()

	mixer, err := mix.NewMixer(dev, *voices)
	if err != nil {
		log.Fatalf("Failed to create mixer: %v", err)
	}

	pad := &padController{mixer: mixer}
	for _, path := range flag.Args() {
		c, err := decode.LoadFile(path, dev.Spec())
		if err != nil {
			log.Fatalf("Failed to load %s: %v", path, err)
		}
		pad.names = append(pad.names, filepath.Base(path))
		pad.bank = append(pad.bank, c)
		log.Printf("Loaded %s: %d frames at %d Hz", path, c.Frames(), c.Rate)
	}

	mixer.SetFinishedHandler(func(channel int) {
		log.Printf("Channel %d finished", channel)
	})

	log.Printf("Starting %s %s with %d sounds", version.Product, version.Version, len(pad.bank))

	if err := ui.Run(pad); err != nil {
		log.Fatalf("TUI error: %v", err)
	}

	log.Printf("Mixpad stopped")
}

// padController adapts a Mixer and sound bank to the board's controller.
type padController struct {
	mixer *mix.Mixer
	bank  []*mix.Chunk
	names []string
}

func (p *padController) Status() ui.Status {
	n := p.mixer.NumChannels()
	st := ui.Status{
		Playing: p.mixer.Playing(mix.AllChannels),
		Paused:  p.mixer.Paused(mix.AllChannels),
		Volume:  p.mixer.Volume(mix.AllChannels),
	}
	for ch := 0; ch < n; ch++ {
		st.Channels = append(st.Channels, ui.ChannelStatus{
			Index:   ch,
			Playing: p.mixer.Playing(ch) > 0,
			Paused:  p.mixer.Paused(ch) > 0,
			Fading:  p.mixer.FadeState(ch),
			Volume:  p.mixer.Volume(ch),
		})
	}
	return st
}

func (p *padController) Trigger(slot int) error {
	if slot < 0 || slot >= len(p.bank) {
		return fmt.Errorf("no sound in slot %d", slot+1)
	}
	ch, err := p.mixer.Play(mix.AllChannels, p.bank[slot], 0)
	if err != nil {
		return err
	}
	log.Printf("Playing %s on channel %d", p.names[slot], ch)
	return nil
}

func (p *padController) SetVolume(v int) {
	p.mixer.SetVolume(mix.AllChannels, v)
}

func (p *padController) PauseAll()  { p.mixer.Pause(mix.AllChannels) }
func (p *padController) ResumeAll() { p.mixer.Resume(mix.AllChannels) }
func (p *padController) HaltAll()   { p.mixer.Halt(mix.AllChannels) }

func (p *padController) FadeOutAll(ms int) {
	p.mixer.FadeOut(mix.AllChannels, ms)
}

func (p *padController) Sounds() []string { return p.names }

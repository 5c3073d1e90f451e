// ABOUTME: Container sniffing and sample conformance for decoded audio
// ABOUTME: Routes readers/files to format decoders and matches the device spec
package decode

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mixpool/mixpool-go/internal/resample"
	"github.com/mixpool/mixpool-go/pkg/mix"
)

// Load sniffs the container format from the stream's leading bytes and
// decodes it into a chunk conformed to spec. WAV requires seeking, which is
// why Load takes an io.ReadSeeker; MP3 and FLAC only read forward.
//
// Ogg/Opus is not sniffed here because the stream's channel count must be
// supplied by the caller; use Opus directly.
func Load(rs io.ReadSeeker, spec mix.Spec) (*mix.Chunk, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(rs, magic); err != nil {
		return nil, fmt.Errorf("reading container magic: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding stream: %w", err)
	}

	switch {
	case bytes.Equal(magic, []byte("RIFF")):
		return WAV(rs, spec)
	case bytes.Equal(magic, []byte("fLaC")):
		return FLAC(bufio.NewReader(rs), spec)
	default:
		// MP3 has no fixed magic (ID3 tag or raw frame sync), so it is
		// the fallback.
		return MP3(bufio.NewReader(rs), spec)
	}
}

// LoadFile opens path and decodes it based on its extension. Ogg/Opus files
// are assumed stereo; mono streams should go through Opus directly.
func LoadFile(path string, spec mix.Spec) (*mix.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return WAV(f, spec)
	case ".mp3":
		return MP3(bufio.NewReader(f), spec)
	case ".flac":
		return FLAC(bufio.NewReader(f), spec)
	case ".opus", ".ogg":
		return Opus(bufio.NewReader(f), 2, spec)
	default:
		return Load(f, spec)
	}
}

// conform reshapes decoded 24-bit samples to the target spec: channel remix
// first, then rate conversion.
func conform(samples []int32, rate, channels int, spec mix.Spec) (*mix.Chunk, error) {
	if rate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid source format: rate=%d channels=%d", rate, channels)
	}
	samples = remix(samples, channels, spec.Channels)
	samples = resample.Linear(samples, spec.Channels, rate, spec.Frequency)
	return mix.NewChunk(samples, spec.Frequency, spec.Channels), nil
}

// remix converts interleaved samples between channel counts. Matching counts
// pass through. Otherwise each source frame is averaged to mono and the mono
// value replicated across the target channels, which covers the practical
// mono/stereo cases without channel maps.
func remix(samples []int32, from, to int) []int32 {
	if from == to || from <= 0 || to <= 0 {
		return samples
	}
	frames := len(samples) / from
	out := make([]int32, frames*to)
	for f := 0; f < frames; f++ {
		var sum int64
		for c := 0; c < from; c++ {
			sum += int64(samples[f*from+c])
		}
		mono := int32(sum / int64(from))
		for c := 0; c < to; c++ {
			out[f*to+c] = mono
		}
	}
	return out
}

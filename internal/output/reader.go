// ABOUTME: io.Reader bridge between the sample source and byte-oriented backends
// ABOUTME: Pulls rendered samples and encodes them into the stream format
package output

// renderReader adapts a Source to io.Reader for backends that pull an
// encoded byte stream (oto). It never returns io.EOF: an idle mixer reads
// as silence.
type renderReader struct {
	src     Source
	spec    StreamSpec
	scratch []int32
}

func newRenderReader(src Source, spec StreamSpec) *renderReader {
	return &renderReader{src: src, spec: spec}
}

func (r *renderReader) Read(p []byte) (int, error) {
	frames := len(p) / r.spec.BytesPerFrame()
	if frames == 0 {
		return 0, nil
	}

	samples := frames * r.spec.Channels
	if cap(r.scratch) < samples {
		r.scratch = make([]int32, samples)
	}
	buf := r.scratch[:samples]

	r.src.Render(buf)
	return Encode(r.spec.Format, buf, p), nil
}

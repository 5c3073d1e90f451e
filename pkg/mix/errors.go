// ABOUTME: Error types for device and playback failures
// ABOUTME: OpenError and PlayError are the only failure modes callers see
package mix

import "fmt"

// OpenError reports that the audio output device could not be opened:
// invalid parameters, a device already open in this process, or a backend
// failure.
type OpenError struct {
	Reason string
	Err    error
}

func (e *OpenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("open audio device: %s: %v", e.Reason, e.Err)
	}
	return "open audio device: " + e.Reason
}

func (e *OpenError) Unwrap() error { return e.Err }

// PlayError reports that playback could not be started on a channel: no free
// channel was available, or the chunk cannot be mixed into the device stream.
type PlayError struct {
	Reason string
	Err    error
}

func (e *PlayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("play channel: %s: %v", e.Reason, e.Err)
	}
	return "play channel: " + e.Reason
}

func (e *PlayError) Unwrap() error { return e.Err }

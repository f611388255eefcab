// Package audio bridges a fetched byte stream to the output device and
// reports elapsed-time samples back to the engine.
package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// EventKind tags the events an output stream emits.
type EventKind int

const (
	// EventReady signals that a stream opened and is producing audio.
	EventReady EventKind = iota
	// EventPosition carries elapsed time since this stream's start.
	EventPosition
	// EventEndOfStream signals natural exhaustion of the stream.
	EventEndOfStream
	// EventFailure signals a decode or device failure mid-stream.
	EventFailure
)

// Event is a message from the audio layer to the engine. Gen identifies the
// stream generation it belongs to so the engine can discard stale ones.
type Event struct {
	Gen    uint64
	Kind   EventKind
	Pos    time.Duration
	Handle Handle // set on EventReady
	Err    error  // set on EventFailure
}

// Kind classifies an audio failure.
type Kind int

const (
	KindDecode Kind = iota
	KindDevice
)

func (k Kind) String() string {
	if k == KindDevice {
		return "device"
	}
	return "decode"
}

// Error is a classified audio failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("audio %s failure: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNoAudio is returned on platforms built without audio support.
var ErrNoAudio = errors.New("audio output not available in this build")

// OpenOptions configures a new stream.
type OpenOptions struct {
	VolumePercent int
	GainDB        float64 // replay gain hint applied on top of the volume
	StartPaused   bool
}

// Output is the decode/output capability the engine drives. Open decodes the
// byte stream and starts feeding the device; subsequent position, EOF and
// failure events are delivered on the provided channel tagged with gen.
// Exactly one production implementation exists (the beep speaker); tests
// inject fakes.
type Output interface {
	Open(stream io.ReadCloser, gen uint64, opts OpenOptions, events chan<- Event) (Handle, error)
}

// Handle controls one open stream. Commands are serialized by the device
// lock; Position is an idempotent query and safe to call concurrently.
type Handle interface {
	Pause()
	Resume()
	SetVolume(percent int)
	Position() time.Duration
	Close()
}

const (
	minVolumeDB         = -10.0
	volumeCurveExponent = 0.5
	// effects.Volume with base 2 changes loudness by roughly 6 dB per unit.
	gainDBPerUnit = 6.0
)

// volumeExponent maps a 0-100 percentage onto an exponent for a base-2
// volume streamer, using a perceptual square-root curve.
func volumeExponent(percent int) float64 {
	p := float64(percent)
	if p <= 0 {
		return minVolumeDB
	}
	if p >= 100 {
		return 0
	}
	return (1.0 - math.Pow(p/100.0, volumeCurveExponent)) * minVolumeDB
}

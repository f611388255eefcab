//go:build (linux && cgo) || windows || darwin

package audio

import (
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

const (
	outputSampleRate     = beep.SampleRate(44100)
	speakerBufferLen     = time.Second / 10
	resampleQuality      = 4
	positionPollInterval = 200 * time.Millisecond
)

// Speaker is the beep-backed production Output. The device is initialized
// once, on the first stream, and owned exclusively by this type.
type Speaker struct {
	mu          sync.Mutex
	initialized bool
}

func NewSpeaker() *Speaker {
	return &Speaker{}
}

func (s *Speaker) init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	if err := speaker.Init(outputSampleRate, outputSampleRate.N(speakerBufferLen)); err != nil {
		return &Error{Kind: KindDevice, Err: err}
	}
	s.initialized = true
	return nil
}

// Open decodes the stream as MP3 and starts playback. Position events are
// emitted every positionPollInterval until the handle is closed; end of
// stream and mid-stream decode failures are delivered exactly once.
func (s *Speaker) Open(stream io.ReadCloser, gen uint64, opts OpenOptions, events chan<- Event) (Handle, error) {
	streamer, format, err := mp3.Decode(stream)
	if err != nil {
		stream.Close()
		return nil, &Error{Kind: KindDecode, Err: err}
	}

	if err := s.init(); err != nil {
		streamer.Close()
		return nil, err
	}

	resampled := beep.Resample(resampleQuality, format.SampleRate, outputSampleRate, streamer)
	ctrl := &beep.Ctrl{Streamer: resampled, Paused: opts.StartPaused}
	vol := &effects.Volume{
		Streamer: ctrl,
		Base:     2,
		Volume:   volumeExponent(opts.VolumePercent) + opts.GainDB/gainDBPerUnit,
		Silent:   opts.VolumePercent <= 0,
	}

	h := &beepHandle{
		gen:      gen,
		format:   format,
		streamer: streamer,
		ctrl:     ctrl,
		vol:      vol,
		gainDB:   opts.GainDB,
		events:   events,
		done:     make(chan struct{}),
	}

	speaker.Play(beep.Seq(vol, beep.Callback(func() {
		h.deliver(Event{Gen: gen, Kind: EventEndOfStream})
	})))
	go h.poll()

	return h, nil
}

type beepHandle struct {
	gen      uint64
	format   beep.Format
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	vol      *effects.Volume
	gainDB   float64
	events   chan<- Event
	done     chan struct{}
	once     sync.Once
}

func (h *beepHandle) Pause() {
	speaker.Lock()
	h.ctrl.Paused = true
	speaker.Unlock()
}

func (h *beepHandle) Resume() {
	speaker.Lock()
	h.ctrl.Paused = false
	speaker.Unlock()
}

func (h *beepHandle) SetVolume(percent int) {
	speaker.Lock()
	h.vol.Volume = volumeExponent(percent) + h.gainDB/gainDBPerUnit
	h.vol.Silent = percent <= 0
	speaker.Unlock()
}

func (h *beepHandle) Position() time.Duration {
	speaker.Lock()
	pos := h.streamer.Position()
	speaker.Unlock()
	return h.format.SampleRate.D(pos)
}

// Close detaches the stream from the mixer and stops the poller. Any
// callback firing afterwards is suppressed here and, belt and braces,
// discarded by the engine's generation check.
func (h *beepHandle) Close() {
	h.once.Do(func() {
		close(h.done)
		speaker.Lock()
		h.ctrl.Paused = true
		h.ctrl.Streamer = nil
		speaker.Unlock()
		h.streamer.Close()
	})
}

// deliver sends a must-not-drop event unless the handle is already closed.
func (h *beepHandle) deliver(ev Event) {
	select {
	case <-h.done:
	default:
		select {
		case h.events <- ev:
		case <-h.done:
		}
	}
}

func (h *beepHandle) poll() {
	t := time.NewTicker(positionPollInterval)
	defer t.Stop()
	for {
		select {
		case <-h.done:
			return
		case <-t.C:
			if err := h.streamer.Err(); err != nil {
				h.deliver(Event{Gen: h.gen, Kind: EventFailure, Err: &Error{Kind: KindDecode, Err: err}})
				return
			}
			// Position samples are droppable; never block playback on a
			// full channel.
			select {
			case h.events <- Event{Gen: h.gen, Kind: EventPosition, Pos: h.Position()}:
			default:
			}
		}
	}
}

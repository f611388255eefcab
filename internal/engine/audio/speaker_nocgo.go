//go:build !((linux && cgo) || windows || darwin)

package audio

import "io"

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = false

// Speaker is a stub for platforms built without audio support.
type Speaker struct{}

func NewSpeaker() *Speaker { return &Speaker{} }

func (s *Speaker) Open(stream io.ReadCloser, gen uint64, opts OpenOptions, events chan<- Event) (Handle, error) {
	stream.Close()
	return nil, &Error{Kind: KindDevice, Err: ErrNoAudio}
}

package engine

import (
	"errors"
	"fmt"

	"github.com/tonearm/tonearm/internal/engine/audio"
	"github.com/tonearm/tonearm/internal/engine/fetch"
)

// ErrorKind classifies a playback failure for user display.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorNetwork
	ErrorServer
	ErrorDecode
	ErrorDevice
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorNetwork:
		return "network"
	case ErrorServer:
		return "server"
	case ErrorDecode:
		return "decode"
	case ErrorDevice:
		return "device"
	default:
		return "unknown"
	}
}

// PlaybackError is the classified failure surfaced through the snapshot when
// the transport enters the Error phase.
type PlaybackError struct {
	Kind    ErrorKind
	TrackID string
	Err     error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback failed (%s): %v", e.Kind, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// classify maps adapter errors onto an ErrorKind. Anything unrecognized is
// treated as a network failure since the fetch path is the usual culprit.
func classify(err error) ErrorKind {
	var fe *fetch.Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case fetch.KindServer:
			return ErrorServer
		default:
			return ErrorNetwork
		}
	}
	var ae *audio.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case audio.KindDevice:
			return ErrorDevice
		default:
			return ErrorDecode
		}
	}
	return ErrorNetwork
}

package engine

import "time"

// Phase is the transport state of the engine.
type Phase int

const (
	PhaseStopped Phase = iota
	PhaseLoading
	PhasePlaying
	PhasePaused
	PhaseSeeking
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseSeeking:
		return "seeking"
	case PhaseError:
		return "error"
	default:
		return "stopped"
	}
}

// Snapshot is the immutable per-tick projection of engine state. It is the
// only state the render loop reads; it is rebuilt on every Tick and never
// mutated in place.
type Snapshot struct {
	Track    Track
	HasTrack bool
	Phase    Phase

	Position time.Duration
	Duration time.Duration

	Volume  int
	Shuffle bool
	Repeat  RepeatMode

	// QueueIndex is the base index of the current track, -1 when none.
	QueueIndex int
	Queue      []Track

	Cues      []Cue
	ActiveCue int

	Err *PlaybackError
}

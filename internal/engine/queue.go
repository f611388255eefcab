package engine

import (
	"math/rand"
	"time"
)

// RepeatMode controls what happens when playback reaches the end of a track.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// Next cycles Off -> All -> One -> Off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// Direction selects which neighbour Advance moves to.
type Direction int

const (
	Next Direction = iota
	Previous
)

// PreviousRestartThreshold is the elapsed time at or beyond which a Previous
// intent restarts the current track instead of moving to the prior one.
const PreviousRestartThreshold = 3 * time.Second

// Queue owns track ordering, the shuffle permutation and the repeat policy.
// It never touches the transport; the engine asks it where to go and acts on
// the answer.
//
// tracks holds the user-visible base order. order, when non-nil, is a
// permutation of base indices and defines the active order. current indexes
// into the active order, -1 when nothing is current.
type Queue struct {
	tracks  []Track
	order   []int
	current int
	repeat  RepeatMode
	rng     *rand.Rand
}

func NewQueue() *Queue {
	return &Queue{
		current: -1,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (q *Queue) Len() int           { return len(q.tracks) }
func (q *Queue) Shuffled() bool     { return q.order != nil }
func (q *Queue) Repeat() RepeatMode { return q.repeat }

// CycleRepeat advances the repeat mode and returns the new one.
func (q *Queue) CycleRepeat() RepeatMode {
	q.repeat = q.repeat.Next()
	return q.repeat
}

// Tracks returns a copy of the queue in user-visible (base) order.
func (q *Queue) Tracks() []Track {
	out := make([]Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// baseIndexAt translates a position in the active order to a base index.
func (q *Queue) baseIndexAt(pos int) int {
	if q.order != nil {
		return q.order[pos]
	}
	return pos
}

// CurrentBaseIndex returns the base index of the current track, -1 when none.
func (q *Queue) CurrentBaseIndex() int {
	if q.current < 0 || q.current >= len(q.tracks) {
		return -1
	}
	return q.baseIndexAt(q.current)
}

// Current returns the current track, if any.
func (q *Queue) Current() (Track, bool) {
	i := q.CurrentBaseIndex()
	if i < 0 {
		return Track{}, false
	}
	return q.tracks[i], true
}

// SetCurrent makes the track at the given base index current.
func (q *Queue) SetCurrent(base int) (Track, bool) {
	if base < 0 || base >= len(q.tracks) {
		return Track{}, false
	}
	q.current = q.activePosOf(base)
	return q.tracks[base], true
}

// activePosOf finds the active-order position of a base index.
func (q *Queue) activePosOf(base int) int {
	if q.order == nil {
		return base
	}
	for p, b := range q.order {
		if b == base {
			return p
		}
	}
	return -1
}

// SetTracks replaces the queue contents. The current pointer is cleared and
// the shuffle permutation, if enabled, is regenerated.
func (q *Queue) SetTracks(ts []Track) {
	q.tracks = make([]Track, len(ts))
	copy(q.tracks, ts)
	q.current = -1
	if q.order != nil {
		q.order = q.permutation()
	}
}

// Append adds a track at the end of the base order.
func (q *Queue) Append(t Track) {
	q.mutate(func() {
		q.tracks = append(q.tracks, t)
	})
}

// AppendAll adds several tracks at the end of the base order.
func (q *Queue) AppendAll(ts []Track) {
	if len(ts) == 0 {
		return
	}
	q.mutate(func() {
		q.tracks = append(q.tracks, ts...)
	})
}

// InsertAt inserts a track before the given base index (clamped).
func (q *Queue) InsertAt(base int, t Track) {
	if base < 0 {
		base = 0
	}
	if base > len(q.tracks) {
		base = len(q.tracks)
	}
	q.mutate(func() {
		q.tracks = append(q.tracks[:base], append([]Track{t}, q.tracks[base:]...)...)
		if q.order == nil && q.current >= base {
			q.current++
		}
	})
}

// RemoveAt removes the track at the given base index. It reports whether the
// removed track was current; the caller is expected to advance as if playback
// ended rather than leave a dangling pointer.
func (q *Queue) RemoveAt(base int) (removedCurrent bool) {
	if base < 0 || base >= len(q.tracks) {
		return false
	}
	removedCurrent = q.CurrentBaseIndex() == base
	q.mutate(func() {
		q.tracks = append(q.tracks[:base], q.tracks[base+1:]...)
		if q.order == nil {
			switch {
			case removedCurrent:
				q.current = -1
			case q.current > base:
				q.current--
			}
		}
	})
	if removedCurrent {
		q.current = -1
	}
	return removedCurrent
}

// Move relocates a track between base indices, keeping the current pointer on
// the same track.
func (q *Queue) Move(from, to int) {
	n := len(q.tracks)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}
	q.mutate(func() {
		t := q.tracks[from]
		rest := append(q.tracks[:from], q.tracks[from+1:]...)
		q.tracks = append(rest[:to], append([]Track{t}, rest[to:]...)...)
		if q.order == nil && q.current >= 0 {
			switch cur := q.current; {
			case cur == from:
				q.current = to
			case from < cur && to >= cur:
				q.current--
			case from > cur && to <= cur:
				q.current++
			}
		}
	})
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.tracks = nil
	q.current = -1
	if q.order != nil {
		q.order = []int{}
	}
}

// mutate applies a structural change and, under shuffle, regenerates the
// permutation while preserving the identity of the current track.
func (q *Queue) mutate(apply func()) {
	var curID string
	if t, ok := q.Current(); ok {
		curID = t.ID
	}
	apply()
	if q.order == nil {
		return
	}
	q.order = q.permutation()
	q.current = -1
	if curID != "" {
		for base, t := range q.tracks {
			if t.ID == curID {
				q.current = q.activePosOf(base)
				break
			}
		}
	}
}

// permutation returns a fresh shuffle of the base indices.
func (q *Queue) permutation() []int {
	perm := make([]int, len(q.tracks))
	for i := range perm {
		perm[i] = i
	}
	q.rng.Shuffle(len(perm), func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})
	return perm
}

// ToggleShuffle flips shuffle mode and returns the new state. The currently
// playing track keeps its identity across the permutation swap.
func (q *Queue) ToggleShuffle() bool {
	if q.order != nil {
		if q.current >= 0 && q.current < len(q.order) {
			q.current = q.order[q.current]
		}
		q.order = nil
		return false
	}
	curBase := q.current
	q.order = q.permutation()
	if curBase >= 0 {
		q.current = q.activePosOf(curBase)
	}
	return true
}

// Advance moves the current pointer in the given direction and returns the
// track that should play next. ok is false when the queue is exhausted (or
// empty), which the engine treats as a normal stop, never an error.
//
// elapsed is the playback position of the current track; Previous restarts
// the current track once elapsed reaches PreviousRestartThreshold.
func (q *Queue) Advance(dir Direction, elapsed time.Duration) (Track, bool) {
	n := len(q.tracks)
	if n == 0 {
		return Track{}, false
	}
	if q.current < 0 || q.current >= n {
		q.current = 0
		return q.tracks[q.baseIndexAt(0)], true
	}

	switch dir {
	case Next:
		if q.repeat == RepeatOne {
			return q.tracks[q.baseIndexAt(q.current)], true
		}
		if q.current+1 < n {
			q.current++
		} else if q.repeat == RepeatAll {
			q.current = 0
		} else {
			return Track{}, false
		}
	case Previous:
		if elapsed < PreviousRestartThreshold && q.current > 0 {
			q.current--
		}
		// otherwise restart the current track
	}
	return q.tracks[q.baseIndexAt(q.current)], true
}

package engine

import (
	"sort"
	"time"
)

// Cue is a single time-coded lyric line.
type Cue struct {
	Start time.Duration
	Text  string
}

// lyricJitterEpsilon is the largest backward position wobble that will not
// move the active line back to the previous cue.
const lyricJitterEpsilon = 150 * time.Millisecond

// LyricSync maps playback position to the active lyric line. Cues are sorted
// and deduplicated once on load; lookups are a binary search per update.
type LyricSync struct {
	cues   []Cue
	active int
}

// NewLyricSync normalizes the cue list (ascending start times, duplicate
// timestamps collapsed to the last occurrence) and starts with no active line.
func NewLyricSync(cues []Cue) *LyricSync {
	sorted := make([]Cue, len(cues))
	copy(sorted, cues)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	deduped := sorted[:0]
	for _, c := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].Start == c.Start {
			deduped[n-1] = c
			continue
		}
		deduped = append(deduped, c)
	}
	return &LyricSync{cues: deduped, active: -1}
}

// Cues returns the normalized cue list.
func (s *LyricSync) Cues() []Cue { return s.cues }

// Active returns the index of the active line, -1 when none.
func (s *LyricSync) Active() int { return s.active }

// Update recomputes the active line for the given position and returns its
// index. The greatest cue with start <= pos wins; a backward move smaller
// than the jitter epsilon keeps the previous answer to avoid flicker.
func (s *LyricSync) Update(pos time.Duration) int {
	if len(s.cues) == 0 {
		s.active = -1
		return -1
	}
	// First cue index with start > pos; the active line sits just before it.
	i := sort.Search(len(s.cues), func(i int) bool { return s.cues[i].Start > pos }) - 1

	if i < s.active && s.active < len(s.cues) {
		if pos+lyricJitterEpsilon >= s.cues[s.active].Start {
			return s.active
		}
	}
	s.active = i
	return s.active
}

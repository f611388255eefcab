package engine

import "time"

// Track is an immutable description of a playable item, resolved from the
// catalog before it enters the queue.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
	Size     int64   // stream size in bytes, 0 when unknown
	BitRate  int     // kbps, 0 when unknown
	GainDB   float64 // replay gain hint, 0 when absent
	CoverArt string
	Starred  bool

	// StreamURL is the fully resolved fetch location for this track.
	StreamURL string
}

// byteOffsetFor estimates the byte position corresponding to a time offset
// into the track, used to reopen the stream for a seek. Prefers the known
// total size, falls back to the declared bitrate, and gives up (offset 0)
// when neither is available.
func (t Track) byteOffsetFor(offset time.Duration) int64 {
	if offset <= 0 {
		return 0
	}
	if t.Size > 0 && t.Duration > 0 {
		frac := float64(offset) / float64(t.Duration)
		if frac > 1 {
			frac = 1
		}
		return int64(frac * float64(t.Size))
	}
	if t.BitRate > 0 {
		// kbps -> bytes/s is *125
		return int64(offset.Seconds() * float64(t.BitRate) * 125)
	}
	return 0
}

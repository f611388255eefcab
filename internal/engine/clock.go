package engine

import "time"

// PositionSample is one elapsed-time report from the output adapter. Elapsed
// is relative to the start of the adapter's current stream, which resets on
// every seek or reopen; Gen identifies which stream it belongs to.
type PositionSample struct {
	Gen     uint64
	Elapsed time.Duration
}

// Clock reconciles adapter-relative elapsed times into an absolute track
// position. Each stream generation carries a base offset (the seek target the
// stream was opened at); samples from superseded generations are discarded.
type Clock struct {
	gen     uint64
	base    time.Duration
	elapsed time.Duration
}

// Restart binds the clock to a new stream generation starting at base.
func (c *Clock) Restart(gen uint64, base time.Duration) {
	c.gen = gen
	c.base = base
	c.elapsed = 0
}

// Observe folds a sample into the clock. It reports whether the sample was
// accepted; samples from any other generation are dropped.
func (c *Clock) Observe(s PositionSample) bool {
	if s.Gen != c.gen {
		return false
	}
	c.elapsed = s.Elapsed
	return true
}

// Position returns the absolute position within the current track.
func (c *Clock) Position() time.Duration {
	return c.base + c.elapsed
}

// Generation returns the stream generation the clock is bound to.
func (c *Clock) Generation() uint64 { return c.gen }

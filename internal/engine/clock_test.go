package engine

import (
	"testing"
	"time"
)

func TestClock_PositionIsBasePlusElapsed(t *testing.T) {
	var c Clock
	c.Restart(1, 30*time.Second)

	if !c.Observe(PositionSample{Gen: 1, Elapsed: 5 * time.Second}) {
		t.Fatal("sample from the active generation should be accepted")
	}
	if got := c.Position(); got != 35*time.Second {
		t.Errorf("Position() = %v, want 35s", got)
	}
}

func TestClock_DiscardsStaleGenerations(t *testing.T) {
	var c Clock
	c.Restart(1, 0)
	c.Observe(PositionSample{Gen: 1, Elapsed: 40 * time.Second})

	// Seek to 10s opens generation 2; a late sample from generation 1
	// must not yank the position back.
	c.Restart(2, 10*time.Second)
	if c.Observe(PositionSample{Gen: 1, Elapsed: 41 * time.Second}) {
		t.Error("sample from a superseded generation should be rejected")
	}
	if got := c.Position(); got != 10*time.Second {
		t.Errorf("Position() after stale sample = %v, want 10s", got)
	}

	c.Observe(PositionSample{Gen: 2, Elapsed: 2 * time.Second})
	if got := c.Position(); got != 12*time.Second {
		t.Errorf("Position() = %v, want 12s", got)
	}
}

func TestClock_RestartResetsElapsed(t *testing.T) {
	var c Clock
	c.Restart(1, 0)
	c.Observe(PositionSample{Gen: 1, Elapsed: time.Minute})

	c.Restart(2, 0)
	if got := c.Position(); got != 0 {
		t.Errorf("Position() after restart = %v, want 0", got)
	}
}

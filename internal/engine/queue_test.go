package engine

import (
	"fmt"
	"testing"
	"time"
)

func mkTracks(n int) []Track {
	ts := make([]Track, n)
	for i := range ts {
		ts[i] = Track{ID: fmt.Sprintf("t%d", i), Title: fmt.Sprintf("Track %d", i)}
	}
	return ts
}

func TestAdvanceNext_Sequential(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(3))
	q.SetCurrent(0)

	tr, ok := q.Advance(Next, 0)
	if !ok || tr.ID != "t1" {
		t.Fatalf("Advance(Next) = %v, %v; want t1, true", tr.ID, ok)
	}
	tr, ok = q.Advance(Next, 0)
	if !ok || tr.ID != "t2" {
		t.Fatalf("Advance(Next) = %v, %v; want t2, true", tr.ID, ok)
	}
}

func TestAdvanceNext_ExhaustedWithRepeatOff(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(2))
	q.SetCurrent(1)

	if _, ok := q.Advance(Next, 0); ok {
		t.Error("Advance(Next) at end with repeat off should report exhaustion")
	}
}

func TestAdvanceNext_RepeatAllWraps(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(2))
	q.SetCurrent(1)
	q.CycleRepeat() // off -> all

	tr, ok := q.Advance(Next, 0)
	if !ok || tr.ID != "t0" {
		t.Fatalf("Advance(Next) with repeat all = %v, %v; want t0, true", tr.ID, ok)
	}
}

func TestAdvanceNext_RepeatOneStays(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(3))
	q.SetCurrent(1)
	q.CycleRepeat() // all
	q.CycleRepeat() // one

	for i := 0; i < 3; i++ {
		tr, ok := q.Advance(Next, 0)
		if !ok || tr.ID != "t1" {
			t.Fatalf("Advance(Next) with repeat one = %v, %v; want t1, true", tr.ID, ok)
		}
	}
}

func TestAdvancePrevious_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		wantID  string
	}{
		{"well before threshold goes back", 1 * time.Second, "t0"},
		{"just below threshold goes back", PreviousRestartThreshold - time.Millisecond, "t0"},
		{"exactly at threshold restarts", PreviousRestartThreshold, "t1"},
		{"beyond threshold restarts", 10 * time.Second, "t1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			q.SetTracks(mkTracks(3))
			q.SetCurrent(1)

			tr, ok := q.Advance(Previous, tt.elapsed)
			if !ok || tr.ID != tt.wantID {
				t.Errorf("Advance(Previous, %v) = %v, %v; want %v, true", tt.elapsed, tr.ID, ok, tt.wantID)
			}
		})
	}
}

func TestAdvancePrevious_AtFirstTrackRestarts(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(3))
	q.SetCurrent(0)

	tr, ok := q.Advance(Previous, 1*time.Second)
	if !ok || tr.ID != "t0" {
		t.Fatalf("Advance(Previous) at first track = %v, %v; want t0, true", tr.ID, ok)
	}
}

func TestAdvance_NoCurrentStartsAtFirst(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(3))

	tr, ok := q.Advance(Next, 0)
	if !ok || tr.ID != "t0" {
		t.Fatalf("Advance(Next) with no current = %v, %v; want t0, true", tr.ID, ok)
	}
}

func TestToggleShuffle_PreservesCurrentTrack(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(20))
	q.SetCurrent(7)

	if !q.ToggleShuffle() {
		t.Fatal("ToggleShuffle should enable shuffle")
	}
	if tr, _ := q.Current(); tr.ID != "t7" {
		t.Errorf("current after shuffle on = %v, want t7", tr.ID)
	}

	if q.ToggleShuffle() {
		t.Fatal("ToggleShuffle should disable shuffle")
	}
	if tr, _ := q.Current(); tr.ID != "t7" {
		t.Errorf("current after shuffle off = %v, want t7", tr.ID)
	}
	if q.CurrentBaseIndex() != 7 {
		t.Errorf("base index after shuffle off = %d, want 7", q.CurrentBaseIndex())
	}
}

func TestShuffle_PermutationCoversAllTracks(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(10))
	q.ToggleShuffle()

	// First advance lands on the start of the permutation.
	tr, ok := q.Advance(Next, 0)
	if !ok {
		t.Fatal("first advance on a fresh shuffle should succeed")
	}
	seen := map[string]bool{tr.ID: true}
	for {
		tr, ok := q.Advance(Next, 0)
		if !ok {
			break
		}
		if seen[tr.ID] {
			t.Fatalf("track %v played twice in one shuffle pass", tr.ID)
		}
		seen[tr.ID] = true
	}
	if len(seen) != 10 {
		t.Errorf("shuffle pass visited %d tracks, want 10", len(seen))
	}
}

func TestRemoveAt_BeforeCurrentKeepsTrack(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(4))
	q.SetCurrent(2)

	if removed := q.RemoveAt(0); removed {
		t.Fatal("RemoveAt(0) should not report removing current")
	}
	if tr, _ := q.Current(); tr.ID != "t2" {
		t.Errorf("current after removal = %v, want t2", tr.ID)
	}
	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}
}

func TestRemoveAt_CurrentClearsPointer(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(3))
	q.SetCurrent(1)

	if removed := q.RemoveAt(1); !removed {
		t.Fatal("RemoveAt(1) should report removing current")
	}
	if _, ok := q.Current(); ok {
		t.Error("no track should be current after removing the current one")
	}
}

func TestMove_CurrentFollowsTrack(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(4))
	q.SetCurrent(1)

	q.Move(1, 3)
	if q.CurrentBaseIndex() != 3 {
		t.Errorf("base index after moving current = %d, want 3", q.CurrentBaseIndex())
	}
	if tr, _ := q.Current(); tr.ID != "t1" {
		t.Errorf("current after move = %v, want t1", tr.ID)
	}

	q.Move(0, 3)
	if tr, _ := q.Current(); tr.ID != "t1" {
		t.Errorf("current after moving another track = %v, want t1", tr.ID)
	}
}

func TestInsertAt_ShiftsCurrent(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(3))
	q.SetCurrent(1)

	q.InsertAt(0, Track{ID: "new"})
	if tr, _ := q.Current(); tr.ID != "t1" {
		t.Errorf("current after insert = %v, want t1", tr.ID)
	}
	if q.Tracks()[0].ID != "new" {
		t.Errorf("Tracks()[0] = %v, want new", q.Tracks()[0].ID)
	}
}

func TestSetCurrent_OutOfRange(t *testing.T) {
	q := NewQueue()
	q.SetTracks(mkTracks(2))

	if _, ok := q.SetCurrent(5); ok {
		t.Error("SetCurrent(5) should fail")
	}
	if _, ok := q.SetCurrent(-1); ok {
		t.Error("SetCurrent(-1) should fail")
	}
}

func TestRepeatMode_Cycle(t *testing.T) {
	q := NewQueue()
	if got := q.CycleRepeat(); got != RepeatAll {
		t.Errorf("first cycle = %v, want all", got)
	}
	if got := q.CycleRepeat(); got != RepeatOne {
		t.Errorf("second cycle = %v, want one", got)
	}
	if got := q.CycleRepeat(); got != RepeatOff {
		t.Errorf("third cycle = %v, want off", got)
	}
}

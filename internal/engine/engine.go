// Package engine owns the play queue, the transport state machine, the
// position clock and the lyric synchronizer. The UI loop drives it through
// intent methods and reads back an immutable Snapshot once per tick; all
// fetch and decode work happens on background goroutines that talk to the
// engine exclusively through generation-tagged events.
package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tonearm/tonearm/internal/engine/audio"
)

// Fetcher opens a track's stream URL at a byte offset.
type Fetcher interface {
	Open(ctx context.Context, url string, offset int64) (io.ReadCloser, int64, error)
}

// Catalog is the slice of the media server the engine talks to directly:
// lyric retrieval and listen reporting. Browsing stays with the UI layer.
type Catalog interface {
	NowPlaying(ctx context.Context, trackID string) error
	Scrobble(ctx context.Context, trackID string) error
	Lyrics(ctx context.Context, trackID string) ([]Cue, error)
}

const (
	// A track counts as played once position reaches half its duration,
	// capped at scrobbleHalfCap, and has been audible longer than
	// scrobbleFloor. Mirrors common scrobbling rules.
	scrobbleHalfCap = 4 * time.Minute
	scrobbleFloor   = 30 * time.Second

	eventBufferLen = 64
)

type lyricsMsg struct {
	trackID string
	cues    []Cue
}

// Options wires the engine's collaborators.
type Options struct {
	Output  audio.Output
	Fetcher Fetcher
	Catalog Catalog // optional
	Volume  int
	// Notify, when set, is called on a background goroutine whenever a new
	// track starts playing.
	Notify func(Track)
}

// Engine is the single owner of all playback state.
type Engine struct {
	mu        sync.Mutex
	ctx       context.Context
	cancelAll context.CancelFunc

	queue  *Queue
	phase  Phase
	gen    uint64
	clock  Clock
	lyrics *LyricSync

	output  audio.Output
	fetcher Fetcher
	catalog Catalog
	notify  func(Track)

	events   chan audio.Event
	lyricsCh chan lyricsMsg

	handle       audio.Handle
	cancelStream context.CancelFunc

	volume  int
	lastErr *PlaybackError

	// pausedIntent is the user's play/pause wish, preserved across seeks
	// and applied when a loading stream becomes ready.
	pausedIntent bool

	// Listen reporting state, reset per track instance (not per seek).
	nowPlayingSent bool
	scrobbled      bool
}

func New(opts Options) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		ctx:       ctx,
		cancelAll: cancel,
		queue:     NewQueue(),
		phase:     PhaseStopped,
		lyrics:    NewLyricSync(nil),
		output:    opts.Output,
		fetcher:   opts.Fetcher,
		catalog:   opts.Catalog,
		notify:    opts.Notify,
		events:    make(chan audio.Event, eventBufferLen),
		lyricsCh:  make(chan lyricsMsg, 1),
		volume:    opts.Volume,
	}
}

// Shutdown cancels all background work and releases the audio stream.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.teardownLocked()
	e.cancelAll()
}

// Tick drains pending adapter events, applies the ones that belong to the
// active stream generation, and returns a fresh snapshot. Called once per UI
// tick; never blocks.
func (e *Engine) Tick() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		select {
		case ev := <-e.events:
			e.handleEventLocked(ev)
		case lm := <-e.lyricsCh:
			if t, ok := e.queue.Current(); ok && t.ID == lm.trackID {
				e.lyrics = NewLyricSync(lm.cues)
			}
		default:
			return e.snapshotLocked()
		}
	}
}

func (e *Engine) handleEventLocked(ev audio.Event) {
	if ev.Gen != e.gen {
		// Event from a superseded stream. Its handle, if any, must still be
		// released, but nothing else about it may touch current state.
		if ev.Handle != nil {
			ev.Handle.Close()
		}
		slog.Debug("discarded stale audio event", "eventGen", ev.Gen, "activeGen", e.gen)
		return
	}

	switch ev.Kind {
	case audio.EventReady:
		e.handle = ev.Handle
		e.lastErr = nil
		// Intents may have arrived while the stream was opening; the open
		// options captured at start time are stale by now. Bring the handle
		// in line with the current pause intent and volume.
		ev.Handle.SetVolume(e.volume)
		if e.pausedIntent {
			ev.Handle.Pause()
			e.phase = PhasePaused
		} else {
			ev.Handle.Resume()
			e.phase = PhasePlaying
			e.fireNowPlayingLocked()
		}
	case audio.EventPosition:
		if e.clock.Observe(PositionSample{Gen: ev.Gen, Elapsed: ev.Pos}) {
			e.lyrics.Update(e.clock.Position())
			e.maybeScrobbleLocked()
		}
	case audio.EventEndOfStream:
		e.trackEndedLocked()
	case audio.EventFailure:
		e.teardownLocked()
		var trackID string
		if t, ok := e.queue.Current(); ok {
			trackID = t.ID
		}
		e.lastErr = &PlaybackError{Kind: classify(ev.Err), TrackID: trackID, Err: ev.Err}
		e.phase = PhaseError
		slog.Error("playback failed", "track", trackID, "kind", e.lastErr.Kind.String(), "error", ev.Err)
	}
}

// startStreamLocked opens a new stream generation for t at the given offset.
// fresh marks a new track instance (resets lyric and scrobble state); a seek
// reopen keeps them. Any in-flight stream is cancelled first and its late
// events die on the generation check.
func (e *Engine) startStreamLocked(t Track, offset time.Duration, fresh bool) {
	e.teardownLocked()
	e.gen++
	gen := e.gen
	e.clock.Restart(gen, offset)
	e.lastErr = nil

	if fresh {
		e.pausedIntent = false
		e.nowPlayingSent = false
		e.scrobbled = false
		e.lyrics = NewLyricSync(nil)
		e.requestLyricsLocked(t)
		if e.notify != nil {
			go e.notify(t)
		}
		e.phase = PhaseLoading
	} else {
		e.phase = PhaseSeeking
	}

	ctx, cancel := context.WithCancel(e.ctx)
	e.cancelStream = cancel

	opts := audio.OpenOptions{
		VolumePercent: e.volume,
		GainDB:        t.GainDB,
		StartPaused:   e.pausedIntent,
	}
	byteOffset := t.byteOffsetFor(offset)
	url := t.StreamURL

	go func() {
		stream, _, err := e.fetcher.Open(ctx, url, byteOffset)
		if err != nil {
			e.sendEvent(ctx, audio.Event{Gen: gen, Kind: audio.EventFailure, Err: err})
			return
		}
		h, err := e.output.Open(stream, gen, opts, e.events)
		if err != nil {
			e.sendEvent(ctx, audio.Event{Gen: gen, Kind: audio.EventFailure, Err: err})
			return
		}
		e.sendEvent(ctx, audio.Event{Gen: gen, Kind: audio.EventReady, Handle: h})
	}()
}

// sendEvent delivers a must-not-drop event unless the stream was cancelled
// meanwhile, in which case an attached handle is released instead.
func (e *Engine) sendEvent(ctx context.Context, ev audio.Event) {
	select {
	case e.events <- ev:
	case <-ctx.Done():
		if ev.Handle != nil {
			ev.Handle.Close()
		}
	}
}

func (e *Engine) teardownLocked() {
	if e.cancelStream != nil {
		e.cancelStream()
		e.cancelStream = nil
	}
	if e.handle != nil {
		e.handle.Close()
		e.handle = nil
	}
}

func (e *Engine) stopLocked() {
	e.teardownLocked()
	e.gen++
	e.clock.Restart(e.gen, 0)
	e.phase = PhaseStopped
	e.pausedIntent = false
	e.lyrics = NewLyricSync(nil)
}

func (e *Engine) trackEndedLocked() {
	e.teardownLocked()
	t, ok := e.queue.Advance(Next, e.clock.Position())
	if !ok {
		e.stopLocked()
		return
	}
	e.startStreamLocked(t, 0, true)
}

func (e *Engine) fireNowPlayingLocked() {
	if e.nowPlayingSent || e.catalog == nil {
		return
	}
	t, ok := e.queue.Current()
	if !ok {
		return
	}
	e.nowPlayingSent = true
	go func() {
		if err := e.catalog.NowPlaying(e.ctx, t.ID); err != nil {
			slog.Warn("now-playing report failed", "track", t.ID, "error", err)
		}
	}()
}

func (e *Engine) maybeScrobbleLocked() {
	if e.scrobbled || e.catalog == nil || e.phase != PhasePlaying {
		return
	}
	t, ok := e.queue.Current()
	if !ok || t.Duration <= 0 {
		return
	}
	threshold := t.Duration / 2
	if threshold > scrobbleHalfCap {
		threshold = scrobbleHalfCap
	}
	pos := e.clock.Position()
	if pos < threshold || pos <= scrobbleFloor {
		return
	}
	e.scrobbled = true
	go func() {
		if err := e.catalog.Scrobble(e.ctx, t.ID); err != nil {
			slog.Warn("scrobble failed", "track", t.ID, "error", err)
		}
	}()
}

func (e *Engine) requestLyricsLocked(t Track) {
	if e.catalog == nil {
		return
	}
	go func() {
		cues, err := e.catalog.Lyrics(e.ctx, t.ID)
		if err != nil {
			slog.Debug("no lyrics", "track", t.ID, "error", err)
			cues = nil
		}
		select {
		case e.lyricsCh <- lyricsMsg{trackID: t.ID, cues: cues}:
		case <-e.ctx.Done():
		}
	}()
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:      e.phase,
		Volume:     e.volume,
		Shuffle:    e.queue.Shuffled(),
		Repeat:     e.queue.Repeat(),
		QueueIndex: e.queue.CurrentBaseIndex(),
		Queue:      e.queue.Tracks(),
		Cues:       e.lyrics.Cues(),
		ActiveCue:  e.lyrics.Active(),
		Err:        e.lastErr,
	}
	if t, ok := e.queue.Current(); ok {
		snap.Track = t
		snap.HasTrack = true
		snap.Duration = t.Duration
	}
	if e.phase != PhaseStopped {
		snap.Position = e.clock.Position()
	}
	return snap
}

// --- Intents -------------------------------------------------------------
//
// Intents are accepted at any time; the ones that make no sense in the
// current state are no-ops, never errors.

// PlayIndex starts playback of the track at the given base queue index.
func (e *Engine) PlayIndex(base int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.queue.SetCurrent(base)
	if !ok {
		return
	}
	e.startStreamLocked(t, 0, true)
}

// TogglePause flips between playing and paused. While a stream is still
// loading or seeking it flips the intent applied once the stream is ready.
func (e *Engine) TogglePause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.phase {
	case PhasePlaying:
		e.pausedIntent = true
		e.phase = PhasePaused
		if e.handle != nil {
			e.handle.Pause()
		}
	case PhasePaused:
		e.pausedIntent = false
		e.phase = PhasePlaying
		if e.handle != nil {
			e.handle.Resume()
		}
		e.fireNowPlayingLocked()
	case PhaseLoading, PhaseSeeking:
		e.pausedIntent = !e.pausedIntent
	}
}

// Stop halts playback and invalidates all in-flight stream work. The queue
// position is kept.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Next advances in the active order. Exhausting the queue under repeat-off
// is a normal stop, not an error.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queue.Len() == 0 {
		return
	}
	t, ok := e.queue.Advance(Next, e.clock.Position())
	if !ok {
		e.stopLocked()
		return
	}
	e.startStreamLocked(t, 0, true)
}

// Previous restarts the current track when more than the restart threshold
// has elapsed, otherwise moves to the prior track.
func (e *Engine) Previous() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queue.Len() == 0 {
		return
	}
	t, ok := e.queue.Advance(Previous, e.clock.Position())
	if !ok {
		return
	}
	e.startStreamLocked(t, 0, true)
}

// SeekRelative seeks by a signed delta from the current position.
func (e *Engine) SeekRelative(delta time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seekLocked(e.clock.Position() + delta)
}

// SeekTo seeks to an absolute position. Seeking at or past the end of the
// track behaves like a natural end of stream.
func (e *Engine) SeekTo(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seekLocked(pos)
}

func (e *Engine) seekLocked(pos time.Duration) {
	switch e.phase {
	case PhasePlaying, PhasePaused, PhaseSeeking:
	default:
		return
	}
	t, ok := e.queue.Current()
	if !ok {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if t.Duration > 0 && pos >= t.Duration {
		e.trackEndedLocked()
		return
	}
	e.startStreamLocked(t, pos, false)
}

// SetVolume applies a volume level without disturbing transport state.
func (e *Engine) SetVolume(percent int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	e.volume = percent
	if e.handle != nil {
		e.handle.SetVolume(percent)
	}
}

// Volume returns the current volume level.
func (e *Engine) Volume() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// ToggleShuffle flips shuffle mode, preserving the playing track.
func (e *Engine) ToggleShuffle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.ToggleShuffle()
}

// CycleRepeat advances the repeat mode.
func (e *Engine) CycleRepeat() RepeatMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.CycleRepeat()
}

// Retry reloads the current track after an error.
func (e *Engine) Retry() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseError {
		return
	}
	t, ok := e.queue.Current()
	if !ok {
		return
	}
	e.startStreamLocked(t, 0, true)
}

// SetTracks replaces the queue. Playback of a removed current track stops.
func (e *Engine) SetTracks(ts []Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	wasActive := e.phase != PhaseStopped
	e.queue.SetTracks(ts)
	if wasActive {
		e.stopLocked()
	}
}

// Append adds a track to the end of the queue.
func (e *Engine) Append(t Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue.Append(t)
}

// AppendAll adds tracks to the end of the queue.
func (e *Engine) AppendAll(ts []Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue.AppendAll(ts)
}

// InsertAt inserts a track before the given base index.
func (e *Engine) InsertAt(base int, t Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue.InsertAt(base, t)
}

// RemoveAt removes a track by base index. Removing the current track
// advances as if playback ended rather than leaving a dangling pointer.
func (e *Engine) RemoveAt(base int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	removedCurrent := e.queue.RemoveAt(base)
	if !removedCurrent {
		return
	}
	switch e.phase {
	case PhaseLoading, PhasePlaying, PhasePaused, PhaseSeeking:
		e.trackEndedLocked()
	default:
		e.stopLocked()
	}
}

// Move relocates a track between base indices.
func (e *Engine) Move(from, to int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue.Move(from, to)
}

// ClearQueue empties the queue and stops playback.
func (e *Engine) ClearQueue() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue.Clear()
	e.stopLocked()
}

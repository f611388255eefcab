// Package ui is the bubbletea front end: it renders engine snapshots and
// translates key presses into engine intents. All playback state lives in
// the engine; the model only holds view concerns.
package ui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tonearm/tonearm/internal/engine"
)

const (
	tickInterval = 200 * time.Millisecond

	seekStepSmall = 10 * time.Second
	seekStepLarge = 60 * time.Second
	volumeStep    = 5
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Starrer is the favorite-toggling slice of the server client.
type Starrer interface {
	StarTrack(trackID string, starred bool)
}

// Model is the top-level bubbletea model.
type Model struct {
	eng     *engine.Engine
	starrer Starrer

	snap engine.Snapshot

	// Queue panel
	cursor         int
	viewportOffset int
	viewportHeight int

	// UI state
	width      int
	height     int
	helpView   bool
	showLyrics bool
	statusMsg  string
}

func NewModel(eng *engine.Engine, starrer Starrer) Model {
	return Model{
		eng:            eng,
		starrer:        starrer,
		snap:           eng.Tick(),
		showLyrics:     true,
		viewportHeight: 20,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.EnterAltScreen)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewportHeight = max(msg.Height-chromeRows(), 3)
		m = m.ensureCursorVisible()

	case tickMsg:
		m.snap = m.eng.Tick()
		if m.cursor >= len(m.snap.Queue) {
			m.cursor = max(0, len(m.snap.Queue)-1)
		}
		m = m.ensureCursorVisible()
		return m, tickCmd()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.helpView {
		m.helpView = false
		return m, nil
	}

	m.statusMsg = ""

	switch msg.String() {
	case "q", "ctrl+c":
		m.eng.Shutdown()
		return m, tea.Quit

	case "h", "?":
		m.helpView = true

	// Transport
	case " ":
		m.eng.TogglePause()
	case "enter":
		if m.cursor < len(m.snap.Queue) {
			m.eng.PlayIndex(m.cursor)
		}
	case "n":
		m.eng.Next()
	case "p":
		m.eng.Previous()
	case "s":
		m.eng.Stop()
	case "R":
		m.eng.Retry()

	// Seeking
	case "left":
		m.eng.SeekRelative(-seekStepSmall)
	case "right":
		m.eng.SeekRelative(seekStepSmall)
	case "shift+left", "[":
		m.eng.SeekRelative(-seekStepLarge)
	case "shift+right", "]":
		m.eng.SeekRelative(seekStepLarge)

	// Volume
	case "+", "=":
		m.eng.SetVolume(m.eng.Volume() + volumeStep)
	case "-":
		m.eng.SetVolume(m.eng.Volume() - volumeStep)

	// Modes
	case "z":
		if m.eng.ToggleShuffle() {
			m.statusMsg = "Shuffle on"
		} else {
			m.statusMsg = "Shuffle off"
		}
	case "r":
		m.statusMsg = "Repeat: " + m.eng.CycleRepeat().String()
	case "l":
		m.showLyrics = !m.showLyrics

	// Queue navigation
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m = m.ensureCursorVisible()
		}
	case "down", "j":
		if m.cursor < len(m.snap.Queue)-1 {
			m.cursor++
			m = m.ensureCursorVisible()
		}
	case "pgup", "ctrl+b":
		m.cursor = max(m.cursor-m.viewportHeight, 0)
		m = m.ensureCursorVisible()
	case "pgdown", "ctrl+f":
		m.cursor = min(m.cursor+m.viewportHeight, max(len(m.snap.Queue)-1, 0))
		m = m.ensureCursorVisible()
	case "g", "home":
		m.cursor = 0
		m = m.ensureCursorVisible()
	case "o":
		if m.snap.QueueIndex >= 0 {
			m.cursor = m.snap.QueueIndex
			m = m.ensureCursorVisible()
		}
	case "G", "end":
		m.cursor = max(len(m.snap.Queue)-1, 0)
		m = m.ensureCursorVisible()

	// Queue editing
	case "x", "delete":
		if m.cursor < len(m.snap.Queue) {
			m.eng.RemoveAt(m.cursor)
		}
	case "K", "shift+up":
		if m.cursor > 0 && m.cursor < len(m.snap.Queue) {
			m.eng.Move(m.cursor, m.cursor-1)
			m.cursor--
			m = m.ensureCursorVisible()
		}
	case "J", "shift+down":
		if m.cursor < len(m.snap.Queue)-1 {
			m.eng.Move(m.cursor, m.cursor+1)
			m.cursor++
			m = m.ensureCursorVisible()
		}
	case "c":
		m.eng.ClearQueue()
		m.cursor = 0
		m.statusMsg = "Queue cleared"

	// Extras
	case "f":
		if m.starrer != nil && m.cursor < len(m.snap.Queue) {
			t := m.snap.Queue[m.cursor]
			m.starrer.StarTrack(t.ID, !t.Starred)
			if t.Starred {
				m.statusMsg = "Unstarred " + t.Title
			} else {
				m.statusMsg = "Starred " + t.Title
			}
		}
	case "y":
		if m.snap.HasTrack {
			text := fmt.Sprintf("%s - %s", m.snap.Track.Artist, m.snap.Track.Title)
			if err := clipboard.WriteAll(text); err != nil {
				m.statusMsg = "Clipboard: " + err.Error()
			} else {
				m.statusMsg = "Copied: " + text
			}
		}
	}

	// Snapshot immediately so the key press is reflected this frame
	// instead of one tick later.
	m.snap = m.eng.Tick()
	return m, nil
}

func (m Model) ensureCursorVisible() Model {
	if m.cursor < m.viewportOffset {
		m.viewportOffset = m.cursor
	}
	if m.cursor >= m.viewportOffset+m.viewportHeight {
		m.viewportOffset = m.cursor - m.viewportHeight + 1
	}
	return m
}

// chromeRows is how many rows the now-playing bar, lyrics panel and footer
// take away from the queue viewport.
func chromeRows() int {
	return 12
}

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/tonearm/tonearm/internal/engine"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("238"))
	playingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	lyricStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	lyricOnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	barFillStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
)

const progressBarWidth = 40

func (m Model) View() string {
	if m.helpView {
		return m.renderHelpView()
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(m.renderNowPlaying())
	b.WriteString("\n")

	if m.snap.Err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  %s error: %v  (R to retry)", m.snap.Err.Kind, m.snap.Err.Err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderQueue())

	if m.showLyrics && len(m.snap.Cues) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderLyrics())
	}

	b.WriteString("\n")
	if m.statusMsg != "" {
		b.WriteString(titleStyle.Render("  " + m.statusMsg))
	} else {
		b.WriteString(dimStyle.Render("  h help • space play/pause • n/p next/prev • ←/→ seek • q quit"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderNowPlaying() string {
	var b strings.Builder

	if !m.snap.HasTrack {
		b.WriteString(dimStyle.Render("  Nothing playing"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  " + m.renderModeLine()))
		return b.String()
	}

	t := m.snap.Track
	star := ""
	if t.Starred {
		star = " ★"
	}
	line := fmt.Sprintf("%s %s", phaseIcon(m.snap.Phase), truncate(t.Title+star, max(m.width-30, 20)))
	b.WriteString("  ")
	b.WriteString(titleStyle.Render(line))
	b.WriteString("\n  ")
	b.WriteString(dimStyle.Render(truncate(t.Artist+" — "+t.Album, max(m.width-10, 20))))
	b.WriteString("\n  ")
	b.WriteString(m.renderProgress())
	b.WriteString("\n  ")
	b.WriteString(dimStyle.Render(m.renderModeLine()))
	return b.String()
}

func (m Model) renderProgress() string {
	pos := m.snap.Position
	dur := m.snap.Duration

	width := min(progressBarWidth, max(m.width-20, 10))
	filled := 0
	if dur > 0 {
		filled = int(int64(width) * int64(pos) / int64(dur))
		if filled > width {
			filled = width
		}
	}
	bar := barFillStyle.Render(strings.Repeat("━", filled)) +
		dimStyle.Render(strings.Repeat("─", width-filled))

	return fmt.Sprintf("%s %s/%s", bar, formatDuration(pos), formatDuration(dur))
}

func (m Model) renderModeLine() string {
	parts := []string{
		fmt.Sprintf("vol %d%%", m.snap.Volume),
		"repeat " + m.snap.Repeat.String(),
	}
	if m.snap.Shuffle {
		parts = append(parts, "shuffle")
	}
	return strings.Join(parts, " • ")
}

func (m Model) renderQueue() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("  Queue (%d)", len(m.snap.Queue))))
	b.WriteString("\n")

	if len(m.snap.Queue) == 0 {
		b.WriteString(dimStyle.Render("  Queue is empty"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.viewportOffset+m.viewportHeight, len(m.snap.Queue))
	for i := m.viewportOffset; i < end; i++ {
		t := m.snap.Queue[i]

		mark := "  "
		if i == m.snap.QueueIndex && m.snap.Phase != engine.PhaseStopped {
			mark = "▶ "
		}
		row := fmt.Sprintf(" %s%3d  %s  %s",
			mark, i+1,
			truncate(padRight(t.Title, 40), 40),
			truncate(t.Artist, max(m.width-56, 10)))

		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render(row))
		case i == m.snap.QueueIndex:
			b.WriteString(playingStyle.Render(row))
		default:
			b.WriteString(row)
		}
		b.WriteString("\n")
	}

	if len(m.snap.Queue) > m.viewportHeight {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  [%d-%d of %d]", m.viewportOffset+1, end, len(m.snap.Queue))))
		b.WriteString("\n")
	}

	return b.String()
}

// renderLyrics shows a three-line window around the active cue.
func (m Model) renderLyrics() string {
	var b strings.Builder
	active := m.snap.ActiveCue

	for off := -1; off <= 1; off++ {
		i := active + off
		b.WriteString("  ")
		if i >= 0 && i < len(m.snap.Cues) {
			line := truncate(m.snap.Cues[i].Text, max(m.width-4, 20))
			if off == 0 && active >= 0 {
				b.WriteString(lyricOnStyle.Render(line))
			} else {
				b.WriteString(lyricStyle.Render(line))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHelpView() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  tonearm - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("  Transport"))
	b.WriteString("\n")
	b.WriteString("    space     Play / pause\n")
	b.WriteString("    enter     Play track under cursor\n")
	b.WriteString("    n / p     Next / previous track\n")
	b.WriteString("    s         Stop\n")
	b.WriteString("    R         Retry after error\n")
	b.WriteString("    ←/→       Seek 10s back/forward\n")
	b.WriteString("    [/]       Seek 60s back/forward\n")
	b.WriteString("    +/-       Volume up/down\n")
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("  Modes"))
	b.WriteString("\n")
	b.WriteString("    z         Toggle shuffle\n")
	b.WriteString("    r         Cycle repeat (off/all/one)\n")
	b.WriteString("    l         Toggle lyrics panel\n")
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("  Queue"))
	b.WriteString("\n")
	b.WriteString("    ↑/k ↓/j   Move cursor\n")
	b.WriteString("    K / J     Move track up/down\n")
	b.WriteString("    x/del     Remove track\n")
	b.WriteString("    o         Jump to playing track\n")
	b.WriteString("    c         Clear queue\n")
	b.WriteString("    f         Star / unstar track\n")
	b.WriteString("    y         Copy artist - title to clipboard\n")
	b.WriteString("\n")

	b.WriteString(dimStyle.Render("  Press any key to close"))
	b.WriteString("\n")
	return b.String()
}

func phaseIcon(p engine.Phase) string {
	switch p {
	case engine.PhasePlaying:
		return "▶"
	case engine.PhasePaused:
		return "⏸"
	case engine.PhaseLoading, engine.PhaseSeeking:
		return "…"
	case engine.PhaseError:
		return "✗"
	default:
		return "■"
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total/60)%60, total%60)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

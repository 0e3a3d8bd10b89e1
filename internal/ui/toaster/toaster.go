// Package toaster shows short status notices over the editor.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/usekona/kona/internal/ui/overlay"
	"github.com/usekona/kona/internal/ui/styles"
)

// DefaultDuration is how long a toast stays up.
const DefaultDuration = 3 * time.Second

// maxWidth is where long messages wrap.
const maxWidth = 60

// Style picks the border color and symbol.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
)

// Model holds the toaster state.
type Model struct {
	message string
	style   Style
	visible bool
	// seq identifies the toast a DismissMsg was scheduled for.
	seq int
}

// DismissMsg hides the toast it was scheduled for.
type DismissMsg struct{ seq int }

func New() Model {
	return Model{}
}

// Show displays message and returns the command that dismisses it after d.
func (m Model) Show(message string, style Style, d time.Duration) (Model, tea.Cmd) {
	m.seq++
	m.message = message
	m.style = style
	m.visible = true
	seq := m.seq
	return m, tea.Tick(d, func(time.Time) tea.Msg { return DismissMsg{seq: seq} })
}

// Dismiss hides the toast unless a newer one replaced it.
func (m Model) Dismiss(msg DismissMsg) Model {
	if msg.seq != m.seq {
		return m
	}
	m.visible = false
	m.message = ""
	return m
}

func (m Model) Visible() bool { return m.visible }

// Message returns the shown text.
func (m Model) Message() string { return m.message }

// View renders the toast box, or "" when hidden.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}
	box := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	text := wordwrap.String(m.message, maxWidth)
	switch m.style {
	case StyleError:
		return box.BorderForeground(styles.StatusErrorColor).Render("✗ " + text)
	case StyleInfo:
		return box.BorderForeground(styles.AccentColor).Render("• " + text)
	default:
		return box.BorderForeground(styles.StatusSuccessColor).Render("✓ " + text)
	}
}

// Overlay draws the toast at the bottom of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		PadY:     1,
	}, m.View(), bg)
}

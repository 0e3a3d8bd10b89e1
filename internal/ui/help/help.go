// Package help contains the help overlay component.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/usekona/kona/internal/keys"
	"github.com/usekona/kona/internal/plugins/breaks"
	"github.com/usekona/kona/internal/plugins/formatting"
	"github.com/usekona/kona/internal/ui/overlay"
	"github.com/usekona/kona/internal/ui/styles"
)

// Shortcut is a typed markdown shortcut shown in the help.
type Shortcut struct {
	Typed string
	Desc  string
}

// Shortcuts returns the default typing shortcuts.
func Shortcuts() []Shortcut {
	return []Shortcut{
		{"# ", "heading 1"},
		{"## ", "heading 2"},
		{"### ", "heading 3"},
		{"- ", "list"},
		{"1. ", "numbered list"},
		{"**text** ", "bold"},
		{"*text* ", "italic"},
		{"~~text~~ ", "strikethrough"},
		{"`text` ", "code"},
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(2)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(12)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimaryColor)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// Model holds the help view state.
type Model struct {
	trigger   string
	shortcuts bool
	width     int
	height    int
}

// New creates a help view. trigger is the character that opens the slash
// menu; shortcuts says whether typing shortcuts are on.
func New(trigger string, shortcuts bool) Model {
	return Model{trigger: trigger, shortcuts: shortcuts}
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the help box centered in the viewport.
func (m Model) View() string {
	return m.Overlay("")
}

// Overlay renders the help box on top of a background view.
func (m Model) Overlay(background string) string {
	box := m.render()
	if background == "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, box, background)
}

func (m Model) render() string {
	column := lipgloss.NewStyle().MarginRight(4)

	var editing strings.Builder
	editing.WriteString(sectionStyle.Render("Editor"))
	editing.WriteString("\n")
	for _, b := range []key.Binding{keys.Editor.Save, keys.Editor.Palette, keys.Editor.Link, keys.Editor.Help, keys.Editor.Quit} {
		editing.WriteString(renderBinding(b))
	}
	editing.WriteString(renderKeyDesc(m.trigger, "slash commands"))
	for _, b := range []key.Binding{formatting.BoldKey, formatting.ItalicKey, formatting.UnderlineKey, breaks.SoftBreakKey} {
		editing.WriteString(renderBinding(b))
	}
	editing.WriteString(renderKeyDesc("tab", "indent list item"))

	var palette strings.Builder
	palette.WriteString(sectionStyle.Render("Commands"))
	palette.WriteString("\n")
	for _, group := range keys.Palette.FullHelp() {
		for _, b := range group {
			palette.WriteString(renderBinding(b))
		}
	}

	cols := []string{column.Render(editing.String()), column.Render(palette.String())}
	if m.shortcuts {
		var typed strings.Builder
		typed.WriteString(sectionStyle.Render("Shortcuts"))
		typed.WriteString("\n")
		for _, s := range Shortcuts() {
			typed.WriteString(renderKeyDesc(s.Typed, s.Desc))
		}
		cols = append(cols, typed.String())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("Press f1 or esc to close"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Padding(0, 2).
		Render(b.String())
}

func renderBinding(b key.Binding) string {
	h := b.Help()
	return renderKeyDesc(h.Key, h.Desc)
}

func renderKeyDesc(k, desc string) string {
	return keyStyle.Render(k) + descStyle.Render(desc) + "\n"
}

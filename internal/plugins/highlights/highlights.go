// Package highlights adds colored text highlights. A highlight is a text
// mark whose value is a color name; highlights live in the document only
// and are not written to markup.
package highlights

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/plugin"
)

// Mark is the text mark key.
const Mark = "highlight"

// DefaultColors maps color names to background colors.
var DefaultColors = map[string]lipgloss.TerminalColor{
	"yellow": lipgloss.AdaptiveColor{Light: "#F9E2AF", Dark: "#5C4B1A"},
	"green":  lipgloss.AdaptiveColor{Light: "#A6E3A1", Dark: "#2E4A2B"},
	"blue":   lipgloss.AdaptiveColor{Light: "#89B4FA", Dark: "#243B5E"},
	"pink":   lipgloss.AdaptiveColor{Light: "#F5C2E7", Dark: "#5A2F4F"},
}

// Options sets the color palette. Nil uses DefaultColors.
type Options struct {
	Colors map[string]lipgloss.TerminalColor
}

// New returns the highlights plugin.
func New(opts Options) plugin.Plugin {
	colors := opts.Colors
	if colors == nil {
		colors = DefaultColors
	}
	return plugin.Plugin{
		Name: "highlights",
		Leafs: []plugin.Leaf{{
			Render: func(props plugin.RenderLeafProps, _ *document.Editor) string {
				name, _ := props.Leaf.Marks[Mark].(string)
				bg, ok := colors[name]
				if !ok {
					return props.Children
				}
				return lipgloss.NewStyle().Background(bg).Render(props.Children)
			},
		}},
	}
}

// IsHighlightActive reports whether text at the selection is highlighted
// with color.
func IsHighlightActive(ed *document.Editor, color string) bool {
	v, _ := ed.Marks()[Mark].(string)
	return color != "" && v == color
}

// ToggleHighlight highlights the selection with color, or removes the
// highlight when color is already active.
func ToggleHighlight(ed *document.Editor, color string) error {
	if ed.Selection() == nil {
		return document.ErrNoSelection
	}
	if IsHighlightActive(ed, color) {
		return RemoveHighlight(ed)
	}
	if err := ed.AddMark(Mark, color); err != nil {
		return fmt.Errorf("highlight %s: %w", color, err)
	}
	return nil
}

// RemoveHighlight clears any highlight from the selection.
func RemoveHighlight(ed *document.Editor) error {
	if ed.Selection() == nil {
		return document.ErrNoSelection
	}
	if err := ed.RemoveMark(Mark); err != nil {
		return fmt.Errorf("remove highlight: %w", err)
	}
	return nil
}

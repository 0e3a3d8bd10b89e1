package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatCommandsJSON formats a list of commands as JSON
func (f *Formatter) FormatCommandsJSON(cmds []CommandDTO) error {
	return f.encode(cmds)
}

// FormatDocumentJSON formats a normalized document as JSON
func (f *Formatter) FormatDocumentJSON(doc DocumentDTO) error {
	return f.encode(doc)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

var (
	keyStyle   = lipgloss.NewStyle().Bold(true)
	crumbStyle = lipgloss.NewStyle().Faint(true)
)

// FormatCommands writes one line per command: key, title and breadcrumb,
// with submenus marked by a trailing "›".
func (f *Formatter) FormatCommands(cmds []CommandDTO) error {
	if len(cmds) == 0 {
		_, err := fmt.Fprintln(f.writer, "No matching commands")
		return err
	}
	keyWidth := 0
	for _, c := range cmds {
		keyWidth = max(keyWidth, runewidth.StringWidth(c.Key))
	}
	for _, c := range cmds {
		var sb strings.Builder
		sb.WriteString(keyStyle.Render(runewidth.FillRight(c.Key, keyWidth)))
		sb.WriteString("  ")
		if c.Icon != "" {
			sb.WriteString(c.Icon + " ")
		}
		sb.WriteString(c.Title)
		if c.Submenu {
			sb.WriteString(" ›")
		}
		if c.Breadcrumb != "" {
			sb.WriteString("  " + crumbStyle.Render(c.Breadcrumb))
		}
		if _, err := fmt.Fprintln(f.writer, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

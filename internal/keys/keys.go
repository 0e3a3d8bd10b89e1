// Package keys contains keybinding definitions.
package keys

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// PaletteKeyMap holds the command palette bindings.
type PaletteKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Enter  key.Binding // Open a submenu without running anything
	Back   key.Binding
	Cancel key.Binding
	Clear  key.Binding
}

// ShortHelp returns keybindings for the short help view.
func (k PaletteKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Cancel}
}

// FullHelp returns keybindings for the full help view.
func (k PaletteKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Select, k.Enter, k.Back},
		{k.Clear, k.Cancel},
	}
}

// EditorKeyMap holds the document view bindings. Text editing keys go
// straight to the editor plugins and are not listed here.
type EditorKeyMap struct {
	Save    key.Binding
	Palette key.Binding
	Link    key.Binding
	Logs    key.Binding // Only when the log overlay is enabled
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings for the short help view.
func (k EditorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Palette, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k EditorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Save, k.Palette, k.Link},
		{k.Help, k.Logs, k.Quit},
	}
}

// Palette and Editor are the active bindings. ApplyConfig rebinds them.
var (
	Palette = defaultPalette()
	Editor  = defaultEditor()
)

func defaultPalette() PaletteKeyMap {
	return PaletteKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑/ctrl+p", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓/ctrl+n", "next"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		Enter: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "open submenu"),
		),
		Back: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "back"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "clear search"),
		),
	}
}

func defaultEditor() EditorKeyMap {
	return EditorKeyMap{
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Palette: key.NewBinding(
			key.WithKeys("ctrl+@"),
			key.WithHelp("ctrl+space", "commands"),
		),
		Link: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "link"),
		),
		Logs: key.NewBinding(
			key.WithKeys("f12"),
			key.WithHelp("f12", "logs"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("ctrl+q", "quit"),
		),
	}
}

// ApplyConfig rebinds the configurable editor keys. Empty strings keep the
// current binding.
func ApplyConfig(save, palette string) {
	if save != "" {
		k := translateToTerminal(save)
		Editor.Save = key.NewBinding(key.WithKeys(k), key.WithHelp(translateToDisplay(k), "save"))
	}
	if palette != "" {
		k := translateToTerminal(palette)
		Editor.Palette = key.NewBinding(key.WithKeys(k), key.WithHelp(translateToDisplay(k), "commands"))
	}
}

// ResetForTesting restores the default bindings.
func ResetForTesting() {
	Palette = defaultPalette()
	Editor = defaultEditor()
}

// translateToTerminal maps user-facing key names to what bubbletea reports.
// Terminals send ctrl+space as NUL, which bubbletea names ctrl+@.
func translateToTerminal(k string) string {
	k = strings.ToLower(k)
	// "ctrl+ " ends in the space itself, so match before trimming.
	if strings.TrimLeft(k, " ") == "ctrl+ " {
		return "ctrl+@"
	}
	k = strings.TrimSpace(k)
	if k == "ctrl+space" {
		return "ctrl+@"
	}
	return k
}

func translateToDisplay(k string) string {
	if k == "ctrl+@" {
		return "ctrl+space"
	}
	return k
}

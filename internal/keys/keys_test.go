package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestPalette_Keys(t *testing.T) {
	tests := []struct {
		name    string
		binding key.Binding
		msg     tea.KeyMsg
	}{
		{"down arrow", Palette.Down, tea.KeyMsg{Type: tea.KeyDown}},
		{"ctrl+n", Palette.Down, tea.KeyMsg{Type: tea.KeyCtrlN}},
		{"up arrow", Palette.Up, tea.KeyMsg{Type: tea.KeyUp}},
		{"ctrl+p", Palette.Up, tea.KeyMsg{Type: tea.KeyCtrlP}},
		{"enter", Palette.Select, tea.KeyMsg{Type: tea.KeyEnter}},
		{"tab", Palette.Enter, tea.KeyMsg{Type: tea.KeyTab}},
		{"shift+tab", Palette.Back, tea.KeyMsg{Type: tea.KeyShiftTab}},
		{"esc", Palette.Cancel, tea.KeyMsg{Type: tea.KeyEsc}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
}

func TestEditor_PaletteIsCtrlSpace(t *testing.T) {
	ResetForTesting()

	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlAt}, Editor.Palette))
	require.Equal(t, "ctrl+space", Editor.Palette.Help().Key)
}

func TestHelp_ListsEveryBinding(t *testing.T) {
	count := 0
	for _, group := range Palette.FullHelp() {
		count += len(group)
	}
	require.Equal(t, 7, count)
	require.Len(t, Editor.ShortHelp(), 4)
}

func TestTranslateToTerminal(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ctrl+space", "ctrl+@"},
		{"ctrl+ ", "ctrl+@"},
		{"  ctrl+ ", "ctrl+@"},
		{"ctrl+space ", "ctrl+@"},
		{"Ctrl+Space", "ctrl+@"},
		{" ctrl+o ", "ctrl+o"},
		{"alt+s", "alt+s"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.want, translateToTerminal(tt.input))
		})
	}
}

func TestTranslateToDisplay(t *testing.T) {
	require.Equal(t, "ctrl+space", translateToDisplay("ctrl+@"))
	require.Equal(t, "f1", translateToDisplay("f1"))
}

func TestApplyConfig(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	ApplyConfig("ctrl+w", "Ctrl+Space")

	require.Equal(t, []string{"ctrl+w"}, Editor.Save.Keys())
	require.Equal(t, "save", Editor.Save.Help().Desc)
	require.Equal(t, []string{"ctrl+@"}, Editor.Palette.Keys())
	require.Equal(t, "ctrl+space", Editor.Palette.Help().Key)
}

func TestApplyConfig_EmptyKeepsBindings(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()
	ApplyConfig("ctrl+w", "")

	ApplyConfig("", "")

	require.Equal(t, []string{"ctrl+w"}, Editor.Save.Keys())
	require.Equal(t, []string{"ctrl+@"}, Editor.Palette.Keys())
}

func TestResetForTesting_RestoresDefaults(t *testing.T) {
	ApplyConfig("ctrl+x", "ctrl+y")

	ResetForTesting()

	require.Equal(t, []string{"ctrl+s"}, Editor.Save.Keys())
	require.Equal(t, []string{"ctrl+@"}, Editor.Palette.Keys())
}

func TestEditor_LinkAndLogs(t *testing.T) {
	ResetForTesting()

	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlK}, Editor.Link))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyF12}, Editor.Logs))
	count := 0
	for _, group := range Editor.FullHelp() {
		count += len(group)
	}
	require.Equal(t, 6, count)
}

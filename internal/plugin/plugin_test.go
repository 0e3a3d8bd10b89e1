package plugin

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestFindBlock_FirstInListOrder(t *testing.T) {
	plugins := []Plugin{
		{Name: "a", Blocks: []Block{{Type: "p"}}},
		{Name: "b", Blocks: []Block{{Type: "attach", IsVoid: Declare(true)}}},
		{Name: "c", Blocks: []Block{{Type: "attach", IsVoid: Declare(false)}}},
	}

	b, idx, ok := FindBlock(plugins, "attach")
	require.True(t, ok)
	require.Equal(t, 1, idx)
	require.True(t, *b.IsVoid)

	_, idx, ok = FindBlock(plugins, "missing")
	require.False(t, ok)
	require.Equal(t, -1, idx)
}

func TestDeclarations(t *testing.T) {
	plugins := []Plugin{
		{Blocks: []Block{{Type: "a"}}},
		{Blocks: []Block{{Type: "a", IsInline: Declare(true)}, {Type: "a", IsInline: Declare(false)}}},
		{Blocks: []Block{{Type: "a", IsInline: Declare(false)}}},
	}

	got := Declarations(plugins, "a", func(b Block) *bool { return b.IsInline })

	require.Equal(t, []bool{true, false}, got)
	require.Empty(t, Declarations(plugins, "a", func(b Block) *bool { return b.IsVoid }))
}

func TestTypes(t *testing.T) {
	plugins := []Plugin{
		{Blocks: []Block{{Type: "ul"}, {Type: "li"}}},
		{Blocks: []Block{{Type: "li"}, {Type: "h1"}}},
	}
	require.Equal(t, []string{"ul", "li", "h1"}, Types(plugins))
}

func TestKeyEvent_PreventDefault(t *testing.T) {
	ev := NewKeyEvent(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, "shift+tab", ev.String())
	require.False(t, ev.DefaultPrevented())
	ev.PreventDefault()
	require.True(t, ev.DefaultPrevented())
}

package commands

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/editor"
	"github.com/usekona/kona/internal/plugin"
)

func setup(t *testing.T, opts Options, initial ...document.Node) (*Menu, *editor.Editor) {
	t.Helper()
	if len(initial) == 0 {
		initial = []document.Node{document.Paragraph("")}
	}
	m := New(opts)
	e := editor.Compose([]plugin.Plugin{m.Plugin()}, editor.WithInitialValue(initial...))
	require.NoError(t, e.Select(document.Point{Path: document.Path{0, 0}}))
	return m, e
}

func typeKeys(e *editor.Editor, s string) {
	for _, r := range s {
		e.KeyDown(context.Background(), plugin.NewKeyEvent(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}))
	}
}

func pressKey(e *editor.Editor, typ tea.KeyType) *plugin.KeyEvent {
	ev := plugin.NewKeyEvent(tea.KeyMsg{Type: typ})
	e.KeyDown(context.Background(), ev)
	return ev
}

func blockTypes(e *editor.Editor) []string {
	out := []string{}
	for _, n := range e.Children() {
		out = append(out, document.AsElement(n).Type)
	}
	return out
}

func TestMenu_TriggerOpens(t *testing.T) {
	m, e := setup(t, Options{})

	typeKeys(e, "/")

	require.Equal(t, MenuState{IsOpen: true, HasFilter: true, OpenID: 1}, m.Store().Get())
}

func TestMenu_TracksFilter(t *testing.T) {
	m, e := setup(t, Options{})

	typeKeys(e, "/hea")
	st := m.Store().Get()
	require.True(t, st.IsOpen)
	require.Equal(t, "hea", st.Filter)

	pressKey(e, tea.KeyBackspace)
	require.Equal(t, "he", m.Store().Get().Filter)
}

func TestMenu_FilterFollowsLastTrigger(t *testing.T) {
	m, e := setup(t, Options{})

	typeKeys(e, "a/b/c")

	st := m.Store().Get()
	require.True(t, st.IsOpen)
	require.Equal(t, "c", st.Filter)
	require.Equal(t, 2, st.OpenID)
}

func TestMenu_ClosesWhenTriggerDeleted(t *testing.T) {
	m, e := setup(t, Options{})

	typeKeys(e, "/h")
	pressKey(e, tea.KeyBackspace)
	require.True(t, m.Store().Get().IsOpen)
	pressKey(e, tea.KeyBackspace)

	require.Equal(t, MenuState{OpenID: 1}, m.Store().Get())
}

func TestMenu_CustomTrigger(t *testing.T) {
	m, e := setup(t, Options{Trigger: "+"})

	typeKeys(e, "/x")
	require.False(t, m.Store().Get().IsOpen)

	typeKeys(e, "+y")
	st := m.Store().Get()
	require.True(t, st.IsOpen)
	require.Equal(t, "y", st.Filter)
	require.Equal(t, "+", m.Trigger())
}

func TestMenu_IgnoredBlock(t *testing.T) {
	m, e := setup(t, Options{IgnoreNodes: []string{"code"}}, document.NewElement("code", document.NewText("")))

	typeKeys(e, "/")

	require.False(t, m.Store().Get().IsOpen)
	require.Equal(t, "/", e.String(document.Path{0}))
}

func TestMenu_EscapeCloses(t *testing.T) {
	m, e := setup(t, Options{})
	typeKeys(e, "/x")

	ev := pressKey(e, tea.KeyEsc)

	require.True(t, ev.DefaultPrevented())
	require.False(t, m.Store().Get().IsOpen)
	require.Equal(t, "/x", e.String(document.Path{0}))
}

func TestMenu_EscapeIgnoredWhenClosed(t *testing.T) {
	_, e := setup(t, Options{})

	ev := pressKey(e, tea.KeyEsc)

	require.False(t, ev.DefaultPrevented())
}

func TestMenu_RunSetRemovesTypedCommand(t *testing.T) {
	m, e := setup(t, Options{})
	typeKeys(e, "/h1")
	cmd := Command{Name: "h1", Title: "Heading 1", Action: func(a Actions, _ *document.Editor) {
		require.NoError(t, a.Set(document.Props{document.PropType: "h1"}, document.NodeOptions{}))
	}}

	m.Run(e.Editor, cmd)

	require.Equal(t, []string{"h1", document.DefaultBlockType}, blockTypes(e))
	require.Equal(t, "", e.String(document.Path{0}))
	require.False(t, m.Store().Get().IsOpen)
}

func TestMenu_RunInsertKeepsPrecedingText(t *testing.T) {
	m, e := setup(t, Options{})
	typeKeys(e, "x/ins")
	cmd := Command{Name: "insert", Title: "Insert", Action: func(a Actions, _ *document.Editor) {
		require.NoError(t, a.Insert(document.Paragraph("new")))
	}}

	m.Run(e.Editor, cmd)

	require.Equal(t, "x", e.String(document.Path{0}))
	require.Equal(t, "new", e.String(document.Path{1}))
}

func TestMenu_RunSubmenuDoesNothing(t *testing.T) {
	m, e := setup(t, Options{})
	typeKeys(e, "/adv")

	m.Run(e.Editor, Command{Name: "advanced", GetCommands: static()})

	require.True(t, m.Store().Get().IsOpen)
	require.Equal(t, "/adv", e.String(document.Path{0}))
}

func TestActions_RemoveCommandWithoutTriggerDeletesOneCharacter(t *testing.T) {
	_, e := setup(t, Options{})
	typeKeys(e, "ab")

	require.NoError(t, NewActions(e.Editor, "", false).RemoveCommand())

	require.Equal(t, "a", e.String(document.Path{0}))
}

func TestActions_RemoveCommandCountsGraphemes(t *testing.T) {
	_, e := setup(t, Options{})
	e.InsertText("x/👍🏽")

	require.NoError(t, NewActions(e.Editor, "/👍🏽", true).RemoveCommand())

	require.Equal(t, "x", e.String(document.Path{0}))
}

func TestActions_NoSelection(t *testing.T) {
	_, e := setup(t, Options{})
	require.NoError(t, e.Deselect())

	err := NewActions(e.Editor, "/", true).Set(document.Props{document.PropType: "h1"}, document.NodeOptions{})

	require.ErrorIs(t, err, document.ErrNoSelection)
}

func TestMenu_UI(t *testing.T) {
	m, e := setup(t, Options{})
	require.Empty(t, e.UI(false))

	typeKeys(e, "/he")

	require.Contains(t, e.UI(false), "/he")
	require.Empty(t, e.UI(true))
	require.Empty(t, m.ui(plugin.UIParams{ReadOnly: true}))
}

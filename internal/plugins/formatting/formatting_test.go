package formatting

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/editor"
	"github.com/usekona/kona/internal/plugin"
)

func compose(t *testing.T, initial ...document.Node) *editor.Editor {
	t.Helper()
	e := editor.Compose([]plugin.Plugin{New()}, editor.WithInitialValue(initial...))
	require.NoError(t, e.Select(document.Point{Path: document.Path{0, 0}}))
	return e
}

func TestToggleMark_Collapsed(t *testing.T) {
	e := compose(t, document.Paragraph(""))

	require.NoError(t, ToggleBold(e.Editor))
	require.True(t, IsMarkActive(e.Editor, Bold))
	e.InsertText("loud")

	leaf, err := e.Leaf(document.Path{0, 0})
	require.NoError(t, err)
	require.True(t, leaf.HasMark(Bold))

	require.NoError(t, ToggleBold(e.Editor))
	require.False(t, IsMarkActive(e.Editor, Bold))
}

func TestToggleMark_Expanded(t *testing.T) {
	e := compose(t, document.Paragraph("hello world"))
	require.NoError(t, e.Select(document.Range{
		Anchor: document.Point{Path: document.Path{0, 0}, Offset: 0},
		Focus:  document.Point{Path: document.Path{0, 0}, Offset: 5},
	}))

	require.NoError(t, ToggleItalic(e.Editor))

	el := document.AsElement(e.Children()[0])
	require.Len(t, el.Children, 2)
	require.True(t, el.Children[0].(*document.Text).HasMark(Italic))
	require.Equal(t, "hello", el.Children[0].(*document.Text).Text)
	require.False(t, el.Children[1].(*document.Text).HasMark(Italic))
	require.True(t, IsMarkActive(e.Editor, Italic))
}

func TestToggleMark_NoSelection(t *testing.T) {
	e := compose(t, document.Paragraph(""))
	require.NoError(t, e.Deselect())

	require.ErrorIs(t, ToggleUnderline(e.Editor), document.ErrNoSelection)
}

func TestHotkeys(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		mark string
	}{
		{"bold", tea.KeyMsg{Type: tea.KeyCtrlB}, Bold},
		{"italic", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'i'}, Alt: true}, Italic},
		{"underline", tea.KeyMsg{Type: tea.KeyCtrlU}, Underline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := compose(t, document.Paragraph(""))
			ev := plugin.NewKeyEvent(tt.msg)

			e.KeyDown(context.Background(), ev)

			require.True(t, ev.DefaultPrevented())
			require.True(t, IsMarkActive(e.Editor, tt.mark))
			require.Equal(t, "", e.String(document.Path{0}))
		})
	}
}

func TestSerialize(t *testing.T) {
	e := compose(t, document.NewElement(document.DefaultBlockType,
		document.NewText("plain "),
		document.NewText("both", document.Props{Bold: true, Italic: true}),
		document.NewText(" <x>", document.Props{Code: true}),
	))

	require.Equal(t, "<p>plain <em><strong>both</strong></em><code> &lt;x&gt;</code></p>", e.Serialize())
}

func TestDeserialize(t *testing.T) {
	e := compose(t, document.Paragraph(""))

	nodes, err := e.Deserialize("<p>a <strong>b <em>c</em></strong> <del>d</del><b>e</b></p>")
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	texts := document.AsElement(nodes[0]).Children
	got := make(map[string]document.Props)
	for _, n := range texts {
		tx := n.(*document.Text)
		got[tx.Text] = tx.Marks
	}
	require.Nil(t, got["a "])
	require.Equal(t, document.Props{Bold: true}, got["b "])
	require.Equal(t, document.Props{Bold: true, Italic: true}, got["c"])
	require.Equal(t, document.Props{Strikethrough: true}, got["d"])
	require.Equal(t, document.Props{Bold: true}, got["e"])
}

func TestRenderLeaf(t *testing.T) {
	e := compose(t, document.NewElement(document.DefaultBlockType,
		document.NewText("plain"),
		document.NewText("bold", document.Props{Bold: true}),
	))

	require.Contains(t, e.Render(), "plain")
	require.Contains(t, e.Render(), "bold")
}

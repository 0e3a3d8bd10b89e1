package breaks

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/editor"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/plugins/headings"
)

func compose(t *testing.T, at document.Point, initial ...document.Node) *editor.Editor {
	t.Helper()
	e := editor.Compose(
		[]plugin.Plugin{headings.New(), New(Options{BreakNodes: []string{headings.Heading1}})},
		editor.WithInitialValue(initial...),
	)
	require.NoError(t, e.Select(at))
	return e
}

type block struct {
	typ  string
	text string
}

func blocks(e *editor.Editor) []block {
	var out []block
	for i, n := range e.Children() {
		out = append(out, block{document.AsElement(n).Type, e.String(document.Path{i})})
	}
	return out
}

func heading(s string) *document.Element {
	return document.NewElement(headings.Heading1, document.NewText(s))
}

func pt(offset int, path ...int) document.Point {
	return document.Point{Path: path, Offset: offset}
}

const p = document.DefaultBlockType

func TestInsertBreak(t *testing.T) {
	tests := []struct {
		name    string
		initial []document.Node
		at      document.Point
		want    []block
		cursor  document.Path
	}{
		{
			name:    "end of heading starts a paragraph",
			initial: []document.Node{heading("Title"), document.Paragraph("")},
			at:      pt(5, 0, 0),
			want:    []block{{headings.Heading1, "Title"}, {p, ""}, {p, ""}},
			cursor:  document.Path{1, 0},
		},
		{
			name:    "middle of heading moves the rest into a paragraph",
			initial: []document.Node{heading("Title"), document.Paragraph("")},
			at:      pt(2, 0, 0),
			want:    []block{{headings.Heading1, "Ti"}, {p, "tle"}, {p, ""}},
			cursor:  document.Path{1, 0},
		},
		{
			name:    "start of heading inserts a paragraph above",
			initial: []document.Node{heading("Title"), document.Paragraph("")},
			at:      pt(0, 0, 0),
			want:    []block{{p, ""}, {headings.Heading1, "Title"}, {p, ""}},
			cursor:  document.Path{1, 0},
		},
		{
			name:    "other blocks split as usual",
			initial: []document.Node{document.NewElement(headings.Heading2, document.NewText("Sub")), document.Paragraph("")},
			at:      pt(3, 0, 0),
			want:    []block{{headings.Heading2, "Sub"}, {headings.Heading2, ""}, {p, ""}},
			cursor:  document.Path{1, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := compose(t, tt.at, tt.initial...)

			e.KeyDown(context.Background(), plugin.NewKeyEvent(tea.KeyMsg{Type: tea.KeyEnter}))

			require.Equal(t, tt.want, blocks(e))
			require.Equal(t, tt.cursor, e.Selection().Focus.Path)
		})
	}
}

func TestSoftBreak(t *testing.T) {
	e := compose(t, pt(2, 0, 0), heading("Title"), document.Paragraph(""))
	ev := plugin.NewKeyEvent(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})

	e.KeyDown(context.Background(), ev)

	require.True(t, ev.DefaultPrevented())
	require.Equal(t, []block{{headings.Heading1, "Ti\ntle"}, {p, ""}}, blocks(e))
}

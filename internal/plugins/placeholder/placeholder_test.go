package placeholder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/editor"
	"github.com/usekona/kona/internal/plugin"
)

func compose(opts Options, initial ...document.Node) *editor.Editor {
	return editor.Compose([]plugin.Plugin{New(opts)}, editor.WithInitialValue(initial...))
}

func at(path ...int) document.Point { return document.Point{Path: path} }

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		initial []document.Node
		sel     *document.Point
		want    string
	}{
		{
			name:    "empty document without selection",
			initial: []document.Node{document.Paragraph("")},
			want:    "Start writing",
		},
		{
			name:    "empty document with selection",
			initial: []document.Node{document.Paragraph("")},
			sel:     &document.Point{Path: document.Path{0, 0}},
			want:    "Type / for commands",
		},
		{
			name:    "selected empty block",
			initial: []document.Node{document.Paragraph("a"), document.Paragraph("")},
			sel:     &document.Point{Path: document.Path{1, 0}},
			want:    "a\nType / for commands",
		},
		{
			name:    "unselected empty block",
			initial: []document.Node{document.Paragraph("a"), document.Paragraph(""), document.Paragraph("b")},
			sel:     &document.Point{Path: document.Path{0, 0}},
			want:    "a\n\nb",
		},
		{
			name:    "block with text",
			initial: []document.Node{document.Paragraph("hello")},
			sel:     &document.Point{Path: document.Path{0, 0}},
			want:    "hello",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := compose(Options{Focused: "Type / for commands", Unfocused: "Start writing"}, tt.initial...)
			if tt.sel != nil {
				require.NoError(t, e.Select(*tt.sel))
			}
			require.Equal(t, tt.want, e.Render())
		})
	}
}

func TestRender_IgnoredType(t *testing.T) {
	e := compose(Options{Focused: "hint", IgnoreTypes: []string{"h1"}}, document.NewElement("h1", document.NewText("")))
	require.NoError(t, e.Select(at(0, 0)))

	require.Equal(t, "", e.Render())
}

func TestRender_UnfocusedFallsBackToFocused(t *testing.T) {
	e := compose(Options{Focused: "hint"}, document.Paragraph(""))
	require.Equal(t, "hint", e.Render())
}

func TestDecorate_OnlyFirstTextOfBlock(t *testing.T) {
	ed := document.New(document.NewElement(document.DefaultBlockType, document.NewText(""), document.NewText("", document.Props{"bold": true})))
	opts := Options{Focused: "hint"}

	block := document.AsElement(ed.Children()[0])
	require.Len(t, decorate(opts, ed, document.NodeEntry{Node: block.Children[0], Path: document.Path{0, 0}}), 1)
	require.Empty(t, decorate(opts, ed, document.NodeEntry{Node: block.Children[1], Path: document.Path{0, 1}}))
	require.Empty(t, decorate(opts, ed, document.NodeEntry{Node: block, Path: document.Path{0}}))
}

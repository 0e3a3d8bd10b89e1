package editorview

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/editor"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/plugins/placeholder"
)

func TestDecorateCursor(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		end    int
	}{
		{"ascii", 0, 1},
		{"multibyte grapheme", 1, 3},
		{"end of text", 6, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := document.New(document.Paragraph("héllo"))
			require.NoError(t, ed.Select(document.Point{Path: document.Path{0, 0}, Offset: tt.offset}))
			text := document.AsElement(ed.Children()[0]).Children[0]

			decos := decorateCursor(ed, document.NodeEntry{Node: text, Path: document.Path{0, 0}})

			require.Len(t, decos, 1)
			start, end := decos[0].Range.Edges()
			require.Equal(t, tt.offset, start.Offset)
			require.Equal(t, tt.end, end.Offset)
		})
	}
}

func TestDecorateCursor_OtherLeaf(t *testing.T) {
	ed := document.New(document.Paragraph("a"), document.Paragraph("b"))
	require.NoError(t, ed.Select(document.Point{Path: document.Path{0, 0}}))
	text := document.AsElement(ed.Children()[1]).Children[0]

	require.Empty(t, decorateCursor(ed, document.NodeEntry{Node: text, Path: document.Path{1, 0}}))
}

func TestCursor_RendersAtEndOfBlock(t *testing.T) {
	e := editor.Compose([]plugin.Plugin{Cursor()}, editor.WithInitialValue(document.Paragraph("ab")))
	require.NoError(t, e.Select(document.Point{Path: document.Path{0, 0}, Offset: 2}))

	// The cursor past the last character takes a cell.
	require.Contains(t, e.Render(), "ab ")
}

func TestCursor_EmptyBlock(t *testing.T) {
	e := editor.Compose([]plugin.Plugin{Cursor()}, editor.WithInitialValue(document.Paragraph("")))
	require.NoError(t, e.Select(document.Point{Path: document.Path{0, 0}}))

	require.Equal(t, " ", e.Render())
}

func TestCursor_DrawsBeforePlaceholder(t *testing.T) {
	e := editor.Compose([]plugin.Plugin{
		placeholder.New(placeholder.Options{Focused: "Type here"}),
		Cursor(),
	}, editor.WithInitialValue(document.Paragraph("")))
	require.NoError(t, e.Select(document.Point{Path: document.Path{0, 0}}))

	require.Equal(t, " Type here", e.Render())
}

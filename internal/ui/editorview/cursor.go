package editorview

import (
	"github.com/rivo/uniseg"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/ui/styles"
)

// markCursor is the decoration prop on the grapheme under the cursor.
const markCursor = "kona.cursor"

// Cursor returns the plugin that draws the cursor. Compose it last so it
// wraps the other leaf renderers.
func Cursor() plugin.Plugin {
	return plugin.Plugin{
		Name:     "cursor",
		Decorate: decorateCursor,
		Leafs:    []plugin.Leaf{{Render: renderCursor}},
	}
}

func decorateCursor(ed *document.Editor, entry document.NodeEntry) []plugin.Decoration {
	t, ok := entry.Node.(*document.Text)
	if !ok {
		return nil
	}
	sel := ed.Selection()
	if sel == nil || !sel.Focus.Path.Equals(entry.Path) {
		return nil
	}
	start := sel.Focus
	end := start.Offset
	if end < len(t.Text) {
		cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(t.Text[end:], -1)
		end += len(cluster)
	}
	return []plugin.Decoration{{
		Range: document.Range{Anchor: start, Focus: document.Point{Path: entry.Path, Offset: end}},
		Props: document.Props{markCursor: true},
	}}
}

func renderCursor(props plugin.RenderLeafProps, _ *document.Editor) string {
	if !props.Leaf.HasMark(markCursor) {
		return props.Children
	}
	switch props.Leaf.Text {
	case "":
		// Children may hold a placeholder hint drawn after the cursor.
		return styles.CursorStyle.Render(" ") + props.Children
	case "\n":
		return styles.CursorStyle.Render(" ") + "\n"
	}
	return styles.CursorStyle.Render(props.Children)
}

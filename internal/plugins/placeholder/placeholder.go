// Package placeholder shows a hint in an empty block: the block holding a
// collapsed selection, or the only block of an empty document.
package placeholder

import (
	"slices"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/ui/styles"
)

// MarkPlaceholder is the decoration prop holding the hint text.
const MarkPlaceholder = "kona.placeholder"

// Options sets the hint texts.
type Options struct {
	// Focused is shown while the editor has a selection.
	Focused string
	// Unfocused is shown without a selection. Empty falls back to Focused.
	Unfocused string
	// IgnoreTypes are block types that never show the hint.
	IgnoreTypes []string
}

// New returns the placeholder plugin.
func New(opts Options) plugin.Plugin {
	if opts.Unfocused == "" {
		opts.Unfocused = opts.Focused
	}
	return plugin.Plugin{
		Name: "placeholder",
		Decorate: func(ed *document.Editor, entry document.NodeEntry) []plugin.Decoration {
			return decorate(opts, ed, entry)
		},
		Leafs: []plugin.Leaf{{Render: renderLeaf}},
	}
}

func decorate(opts Options, ed *document.Editor, entry document.NodeEntry) []plugin.Decoration {
	if _, ok := entry.Node.(*document.Text); !ok {
		return nil
	}
	block, ok := ed.Above(document.AboveOptions{At: entry.Path, Match: ed.MatchBlock()})
	if !ok || slices.Contains(opts.IgnoreTypes, block.Element().Type) {
		return nil
	}
	first, ok := ed.First(block.Path)
	if !ok || !first.Path.Equals(entry.Path) || document.TextContent(block.Node) != "" {
		return nil
	}

	sel := ed.Selection()
	text := opts.Focused
	if sel == nil {
		text = opts.Unfocused
	}
	selected := sel != nil && sel.IsCollapsed() && block.Path.IsAncestor(sel.Anchor.Path)
	if text == "" || !(selected || isEmpty(ed)) {
		return nil
	}
	at := document.Point{Path: entry.Path}
	return []plugin.Decoration{{
		Range: document.Range{Anchor: at, Focus: at},
		Props: document.Props{MarkPlaceholder: text},
	}}
}

// isEmpty reports whether the document is a single block without text.
func isEmpty(ed *document.Editor) bool {
	children := ed.Children()
	return len(children) <= 1 && (len(children) == 0 || document.TextContent(children[0]) == "")
}

func renderLeaf(props plugin.RenderLeafProps, _ *document.Editor) string {
	hint, _ := props.Leaf.Marks[MarkPlaceholder].(string)
	if hint == "" || props.Leaf.Text != "" {
		return props.Children
	}
	return props.Children + styles.PlaceholderStyle.Render(hint)
}

// Package headings adds three levels of section headings.
package headings

import (
	"fmt"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/ui/styles"
)

// Element types.
const (
	Heading1 = "h1"
	Heading2 = "h2"
	Heading3 = "h3"
)

var types = []string{Heading1, Heading2, Heading3}

// Level returns the level of a heading type, 1-based.
func Level(typ string) (int, bool) {
	for i, t := range types {
		if t == typ {
			return i + 1, true
		}
	}
	return 0, false
}

// Type returns the element type for a heading level.
func Type(level int) (string, error) {
	if level < 1 || level > len(types) {
		return "", fmt.Errorf("heading level %d out of range", level)
	}
	return types[level-1], nil
}

// New returns the headings plugin.
func New() plugin.Plugin {
	blocks := make([]plugin.Block, 0, len(types))
	for i, typ := range types {
		level := i + 1
		blocks = append(blocks, plugin.Block{
			Type: typ,
			Render: func(props plugin.RenderElementProps, _ *document.Editor) string {
				return styles.Heading(level).Render(props.Children)
			},
			Serialize:   plugin.SerializeTag(typ, typ),
			Deserialize: plugin.DeserializeTag(typ, typ),
		})
	}
	return plugin.Plugin{Name: "headings", Blocks: blocks}
}

// IsHeadingActive reports whether the selection touches a heading of level.
func IsHeadingActive(ed *document.Editor, level int) bool {
	typ, err := Type(level)
	if err != nil || ed.Selection() == nil {
		return false
	}
	return len(ed.Nodes(document.NodesOptions{Match: document.MatchType(typ)})) > 0
}

// ToggleHeading turns the selected blocks into headings of level, or back
// into paragraphs when they already are.
func ToggleHeading(ed *document.Editor, level int) error {
	typ, err := Type(level)
	if err != nil {
		return err
	}
	if ed.Selection() == nil {
		return document.ErrNoSelection
	}
	if IsHeadingActive(ed, level) {
		typ = document.DefaultBlockType
	}
	if err := ed.SetNodes(document.Props{document.PropType: typ}, document.NodeOptions{}); err != nil {
		return fmt.Errorf("toggle heading %d: %w", level, err)
	}
	return nil
}

// Package formatting adds inline text marks: bold, italic, underline,
// strikethrough and code.
package formatting

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/ui/styles"
)

// Mark keys.
const (
	Bold          = "bold"
	Italic        = "italic"
	Underline     = "underline"
	Strikethrough = "strikethrough"
	Code          = "code"
)

// marks in nesting order, innermost first.
var marks = []struct {
	key string
	tag string
}{
	{Code, "code"},
	{Bold, "strong"},
	{Italic, "em"},
	{Underline, "u"},
	{Strikethrough, "s"},
}

var tagMarks = map[string]string{
	"code":   Code,
	"strong": Bold,
	"b":      Bold,
	"em":     Italic,
	"i":      Italic,
	"u":      Underline,
	"s":      Strikethrough,
	"del":    Strikethrough,
}

// Key bindings. Terminals report ctrl+i as tab, so italic is on alt+i.
var (
	BoldKey      = key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "bold"))
	ItalicKey    = key.NewBinding(key.WithKeys("alt+i"), key.WithHelp("alt+i", "italic"))
	UnderlineKey = key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "underline"))
)

// New returns the formatting plugin.
func New() plugin.Plugin {
	return plugin.Plugin{
		Name: "formatting",
		Hotkeys: []plugin.Hotkey{
			{Binding: BoldKey, Run: toggleOnKey(Bold)},
			{Binding: ItalicKey, Run: toggleOnKey(Italic)},
			{Binding: UnderlineKey, Run: toggleOnKey(Underline)},
		},
		Leafs: []plugin.Leaf{{
			Render:      renderLeaf,
			Serialize:   serializeLeaf,
			Deserialize: deserializeLeaf,
		}},
	}
}

func toggleOnKey(mark string) func(*plugin.KeyEvent, *document.Editor) {
	return func(_ *plugin.KeyEvent, ed *document.Editor) {
		if err := ToggleMark(ed, mark); err != nil {
			log.ErrorErr(log.CatEditor, "toggle mark failed", err, "mark", mark)
		}
	}
}

// IsMarkActive reports whether text typed at the selection gets mark.
func IsMarkActive(ed *document.Editor, mark string) bool {
	v, _ := ed.Marks()[mark].(bool)
	return v
}

// ToggleMark adds mark to the selection, or removes it when active. With a
// collapsed selection the change applies to the next typed text.
func ToggleMark(ed *document.Editor, mark string) error {
	if ed.Selection() == nil {
		return document.ErrNoSelection
	}
	var err error
	if IsMarkActive(ed, mark) {
		err = ed.RemoveMark(mark)
	} else {
		err = ed.AddMark(mark, true)
	}
	if err != nil {
		return fmt.Errorf("toggle %s: %w", mark, err)
	}
	return nil
}

func ToggleBold(ed *document.Editor) error          { return ToggleMark(ed, Bold) }
func ToggleItalic(ed *document.Editor) error        { return ToggleMark(ed, Italic) }
func ToggleUnderline(ed *document.Editor) error     { return ToggleMark(ed, Underline) }
func ToggleStrikethrough(ed *document.Editor) error { return ToggleMark(ed, Strikethrough) }

func renderLeaf(props plugin.RenderLeafProps, _ *document.Editor) string {
	leaf := props.Leaf
	if len(leaf.Marks) == 0 {
		return props.Children
	}
	style := lipgloss.NewStyle()
	if leaf.HasMark(Code) {
		style = styles.CodeStyle
	}
	if leaf.HasMark(Bold) {
		style = style.Bold(true)
	}
	if leaf.HasMark(Italic) {
		style = style.Italic(true)
	}
	if leaf.HasMark(Underline) {
		style = style.Underline(true)
	}
	if leaf.HasMark(Strikethrough) {
		style = style.Strikethrough(true)
	}
	return style.Render(props.Children)
}

func serializeLeaf(n document.Node, children string) (string, bool) {
	t, ok := n.(*document.Text)
	if !ok {
		return "", false
	}
	out, wrapped := children, false
	for _, m := range marks {
		if t.HasMark(m.key) {
			out = "<" + m.tag + ">" + out + "</" + m.tag + ">"
			wrapped = true
		}
	}
	return out, wrapped
}

func deserializeLeaf(el *html.Node, children []document.Node) ([]document.Node, bool) {
	mark, ok := tagMarks[el.Data]
	if !ok {
		return nil, false
	}
	out := make([]document.Node, len(children))
	for i, ch := range children {
		out[i] = withMark(ch.Clone(), mark)
	}
	return out, true
}

// withMark sets mark on n and every text below it.
func withMark(n document.Node, mark string) document.Node {
	switch n := n.(type) {
	case *document.Text:
		if n.Marks == nil {
			n.Marks = document.Props{}
		}
		n.Marks[mark] = true
	case *document.Element:
		for _, ch := range n.Children {
			withMark(ch, mark)
		}
	}
	return n
}

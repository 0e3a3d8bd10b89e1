// Package breaks controls what Enter does in blocks that should not
// continue past a line, such as headings, and adds soft line breaks.
package breaks

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
)

// SoftBreakKey inserts a line break inside the current block. Terminals do
// not report shift+enter, so alt+enter and ctrl+j are used.
var SoftBreakKey = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("alt+enter", "line break"))

// Options configures the breaks plugin.
type Options struct {
	// BreakNodes are block types that Enter leaves for a paragraph.
	BreakNodes []string
}

// New returns the breaks plugin.
func New(opts Options) plugin.Plugin {
	return plugin.Plugin{
		Name: "breaks",
		Init: func(ed *document.Editor) *document.Editor {
			ed.WrapInsertBreak(func(next document.InsertBreakFunc) document.InsertBreakFunc {
				return func() { insertBreak(ed, opts.BreakNodes, next) }
			})
			return ed
		},
		Hotkeys: []plugin.Hotkey{{
			Binding: SoftBreakKey,
			Run:     func(_ *plugin.KeyEvent, ed *document.Editor) { ed.InsertSoftBreak() },
		}},
	}
}

func insertBreak(ed *document.Editor, breakNodes []string, next document.InsertBreakFunc) {
	sel := ed.Selection()
	if sel == nil {
		next()
		return
	}
	block, ok := ed.Above(document.AboveOptions{Match: ed.MatchBlock(), Mode: document.ModeLowest})
	if !ok || !slices.Contains(breakNodes, block.Element().Type) {
		next()
		return
	}

	if sel.IsCollapsed() && ed.IsStart(sel.Anchor, block.Path) {
		// The new paragraph goes above; the cursor stays in the block.
		err := ed.InsertNodes([]document.Node{document.Paragraph("")}, document.NodeOptions{At: block.Path})
		if err != nil {
			log.ErrorErr(log.CatEditor, "insert paragraph before block failed", err, "type", block.Element().Type)
		}
		return
	}

	next()
	err := ed.SetNodes(document.Props{document.PropType: document.DefaultBlockType}, document.NodeOptions{})
	if err != nil {
		log.ErrorErr(log.CatEditor, "reset block after break failed", err)
	}
}

package shortcuts

import (
	"regexp"

	"github.com/rivo/uniseg"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugins/codeblock"
	"github.com/usekona/kona/internal/plugins/formatting"
	"github.com/usekona/kona/internal/plugins/headings"
	"github.com/usekona/kona/internal/plugins/lists"
)

// Defaults returns the markdown shortcuts, all triggered by a space.
func Defaults() []Shortcut {
	return DefaultsFor(lists.BulletedList)
}

// DefaultsFor returns the default shortcuts with "- " and "* " toggling
// listType.
func DefaultsFor(listType string) []Shortcut {
	return []Shortcut{
		Fence(codeblock.DefaultLanguage),
		marked(`\*\*`, formatting.Bold),
		marked(`\*`, formatting.Italic),
		marked(`~~`, formatting.Strikethrough),
		marked("`", formatting.Code),
		block(`^###$`, func(ed *document.Editor) error { return setType(ed, headings.Heading3) }),
		block(`^##$`, func(ed *document.Editor) error { return setType(ed, headings.Heading2) }),
		block(`^#$`, func(ed *document.Editor) error { return setType(ed, headings.Heading1) }),
		block(`^[-*]$`, func(ed *document.Editor) error { return lists.ToggleList(ed, listType) }),
		block(`^1\.$`, func(ed *document.Editor) error { return lists.ToggleList(ed, lists.NumberedList) }),
	}
}

// Fence turns "```" at the start of a block into a code block. A language
// name may follow the backticks; language is used otherwise.
func Fence(language string) Shortcut {
	return Shortcut{
		Trigger: " ",
		Before:  regexp.MustCompile("^```(\\w*)$"),
		Change: func(ed *document.Editor, m Match) {
			lang := m.Before[1]
			if lang == "" {
				lang = language
			}
			var err error
			ed.WithoutNormalizing(func() {
				if err = deleteBack(ed, m.Before[0]); err != nil {
					return
				}
				err = codeblock.ToggleCodeBlock(ed, lang)
			})
			if err != nil {
				log.ErrorErr(log.CatEditor, "code fence shortcut failed", err, "language", lang)
			}
		},
	}
}

func setType(ed *document.Editor, typ string) error {
	return ed.SetNodes(document.Props{document.PropType: typ}, document.NodeOptions{})
}

// block removes the matched prefix and changes the block.
func block(pattern string, change func(ed *document.Editor) error) Shortcut {
	return Shortcut{
		Trigger: " ",
		Before:  regexp.MustCompile(pattern),
		Change: func(ed *document.Editor, m Match) {
			var err error
			ed.WithoutNormalizing(func() {
				if err = deleteBack(ed, m.Before[0]); err != nil {
					return
				}
				err = change(ed)
			})
			if err != nil {
				log.ErrorErr(log.CatEditor, "block shortcut failed", err, "text", m.Text)
			}
		},
	}
}

// marked replaces delim text delim with text carrying mark.
func marked(delim, mark string) Shortcut {
	return Shortcut{
		Trigger: " ",
		Before:  regexp.MustCompile(delim),
		After:   regexp.MustCompile(delim),
		Change: func(ed *document.Editor, m Match) {
			if err := replaceMarked(ed, m, mark); err != nil {
				log.ErrorErr(log.CatEditor, "mark shortcut failed", err, "mark", mark)
			}
		},
	}
}

func replaceMarked(ed *document.Editor, m Match, mark string) error {
	var err error
	ed.WithoutNormalizing(func() {
		if err = deleteBack(ed, m.Text); err != nil {
			return
		}
		if err = ed.InsertTextAt(m.CleanText, nil); err != nil {
			return
		}
		sel := ed.Selection()
		if sel == nil {
			return
		}
		end := sel.Focus
		start := document.Point{Path: end.Path, Offset: end.Offset - len(m.CleanText)}
		if err = ed.Select(document.Range{Anchor: start, Focus: end}); err != nil {
			return
		}
		if err = ed.AddMark(mark, true); err != nil {
			return
		}
		err = ed.Collapse(document.EdgeEnd)
	})
	return err
}

func deleteBack(ed *document.Editor, text string) error {
	sel := ed.Selection()
	if sel == nil {
		return document.ErrNoSelection
	}
	return ed.Delete(document.DeleteOptions{
		At:       sel.Focus,
		Unit:     document.UnitCharacter,
		Distance: uniseg.GraphemeClusterCount(text),
		Reverse:  true,
	})
}

// Package shortcuts runs markdown-style text shortcuts: typing a trigger
// right after text that matches a pattern replaces the text with a change,
// e.g. "# " turns the block into a heading.
package shortcuts

import (
	"regexp"
	"slices"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
)

// Shortcut fires when Trigger is typed with a collapsed selection and the
// text of the current leaf before the cursor matches. With only Before the
// text must match Before. With Before and After the text after the Before
// match must end with After and leave some text between them. Shortcuts
// without Before never fire.
type Shortcut struct {
	Trigger string
	Before  *regexp.Regexp
	After   *regexp.Regexp
	Change  func(ed *document.Editor, m Match)
}

// Match describes what a shortcut matched.
type Match struct {
	// Before and After hold the submatches of the patterns.
	Before []string
	After  []string
	// Text runs from the start of the Before match to the cursor.
	Text string
	// CleanText is Text without the Before and After matches.
	CleanText string
}

// Options configures the shortcuts plugin.
type Options struct {
	Shortcuts []Shortcut
	// IgnoreNodes lists top-level block types where shortcuts are off.
	IgnoreNodes []string
}

type compiled struct {
	Shortcut
	afterAtEnd *regexp.Regexp
}

// New returns the shortcuts plugin.
func New(opts Options) plugin.Plugin {
	shortcuts := make([]compiled, 0, len(opts.Shortcuts))
	for _, s := range opts.Shortcuts {
		c := compiled{Shortcut: s}
		if s.After != nil {
			c.afterAtEnd = regexp.MustCompile("(?:" + s.After.String() + ")$")
		}
		shortcuts = append(shortcuts, c)
	}
	return plugin.Plugin{
		Name: "shortcuts",
		Init: func(ed *document.Editor) *document.Editor {
			ed.WrapInsertText(func(next document.InsertTextFunc) document.InsertTextFunc {
				return func(text string) {
					if !run(ed, shortcuts, opts.IgnoreNodes, text) {
						next(text)
					}
				}
			})
			return ed
		},
	}
}

// run applies the first shortcut that matches text typed at the cursor.
func run(ed *document.Editor, shortcuts []compiled, ignore []string, text string) bool {
	sel := ed.Selection()
	if sel == nil || sel.IsExpanded() {
		return false
	}
	top, ok := ed.Above(document.AboveOptions{Mode: document.ModeHighest, Match: ed.MatchBlock()})
	if ok && slices.Contains(ignore, top.Element().Type) {
		return false
	}
	cursor := sel.Anchor
	leaf, err := ed.Leaf(cursor.Path)
	if err != nil {
		return false
	}
	before := leaf.Text[:min(cursor.Offset, len(leaf.Text))]

	for _, s := range shortcuts {
		if text != s.Trigger {
			continue
		}
		m, ok := s.match(before)
		if !ok {
			continue
		}
		log.Debug(log.CatEditor, "shortcut matched", "trigger", s.Trigger, "text", m.Text)
		s.Change(ed, m)
		return true
	}
	return false
}

func (s compiled) match(before string) (Match, bool) {
	if s.Before == nil {
		return Match{}, false
	}
	loc := s.Before.FindStringSubmatchIndex(before)
	if loc == nil {
		return Match{}, false
	}
	m := Match{Before: submatches(before, loc), Text: before[loc[0]:]}
	if s.After == nil {
		return m, true
	}
	between := before[loc[1]:]
	aloc := s.afterAtEnd.FindStringSubmatchIndex(between)
	if aloc == nil {
		return Match{}, false
	}
	m.After = submatches(between, aloc)
	m.CleanText = between[:aloc[0]]
	if m.CleanText == "" {
		return Match{}, false
	}
	return m, true
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

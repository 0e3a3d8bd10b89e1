// Package toc keeps a table of contents of the document's headings.
package toc

import (
	"slices"
	"strings"
	"sync/atomic"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/plugins/headings"
	"github.com/usekona/kona/internal/pubsub"
	"github.com/usekona/kona/internal/ui/styles"
)

// Entry is one heading in the table of contents.
type Entry struct {
	Path  document.Path
	Level int
	Text  string
	ID    string
}

// Options maps heading types to their level. Defaults to h1 to h3.
type Options struct {
	Levels map[string]int
}

// TOC is the table of contents plugin.
type TOC struct {
	levels map[string]int
	store  *pubsub.Store[[]Entry]
	primed atomic.Bool
}

func New(opts Options) *TOC {
	levels := opts.Levels
	if levels == nil {
		levels = map[string]int{
			headings.Heading1: 1,
			headings.Heading2: 2,
			headings.Heading3: 3,
		}
	}
	return &TOC{levels: levels, store: pubsub.NewStore[[]Entry](nil)}
}

// Plugin returns the plugin value to compose.
func (t *TOC) Plugin() plugin.Plugin {
	return plugin.Plugin{
		Name: "toc",
		Init: func(ed *document.Editor) *document.Editor {
			ed.OnChange(func(ev document.ChangeEvent) {
				if !selectionOnly(ev.Operations) {
					t.Refresh(ed)
				}
			})
			return ed
		},
		UI: t.ui,
	}
}

// Store holds the current entries.
func (t *TOC) Store() *pubsub.Store[[]Entry] { return t.store }

// Entries returns the current entries.
func (t *TOC) Entries() []Entry { return t.store.Get() }

// Refresh recomputes the entries from ed.
func (t *TOC) Refresh(ed *document.Editor) {
	t.primed.Store(true)
	found := ed.Nodes(document.NodesOptions{
		At: document.Path{},
		Match: func(n document.Node, _ document.Path) bool {
			el := document.AsElement(n)
			_, ok := t.levels[typeOf(el)]
			return ok
		},
	})
	entries := make([]Entry, 0, len(found))
	for _, f := range found {
		el := f.Element()
		entries = append(entries, Entry{
			Path:  f.Path,
			Level: t.levels[el.Type],
			Text:  document.TextContent(el),
			ID:    el.StringProp(document.PropNodeID),
		})
	}
	if slices.EqualFunc(entries, t.store.Get(), equalEntry) {
		return
	}
	t.store.Set(entries)
}

func typeOf(el *document.Element) string {
	if el == nil {
		return ""
	}
	return el.Type
}

func equalEntry(a, b Entry) bool {
	return a.Path.Equals(b.Path) && a.Level == b.Level && a.Text == b.Text && a.ID == b.ID
}

func selectionOnly(ops []document.Operation) bool {
	for _, op := range ops {
		if op.Type != document.OpSetSelection {
			return false
		}
	}
	return true
}

func (t *TOC) ui(params plugin.UIParams) string {
	if !t.primed.Load() && params.Editor != nil {
		t.Refresh(params.Editor)
	}
	entries := t.store.Get()
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, strings.Repeat("  ", max(0, e.Level-1))+styles.Heading(e.Level).Render(e.Text))
	}
	return strings.Join(lines, "\n")
}

// Package lists keeps bulleted and numbered lists well formed and adds the
// list editing keys.
//
// Structure rules, enforced on every normalization:
//   - a list item always has a list above it
//   - a list holds only list items and nested lists
//   - adjacent lists of the same type at the same depth are one list
package lists

import (
	"fmt"
	"slices"
	"strings"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/ui/styles"
)

// Element types.
const (
	BulletedList = "ul"
	NumberedList = "ol"
	ListItem     = "li"
)

// Options adds list and list item types on top of the defaults.
type Options struct {
	ListTypes     []string
	ListItemTypes []string
}

// Lists is the list plugin.
type Lists struct {
	listTypes []string
	itemTypes []string
}

// New returns the list plugin state. Extra list and item types from opts
// are treated like the built-in ones.
func New(opts Options) *Lists {
	return &Lists{
		listTypes: append([]string{BulletedList, NumberedList}, opts.ListTypes...),
		itemTypes: append([]string{ListItem}, opts.ListItemTypes...),
	}
}

func (l *Lists) isList(ed *document.Editor, n document.Node) bool {
	el := document.AsElement(n)
	return el != nil && ed.IsBlock(el) && slices.Contains(l.listTypes, el.Type)
}

func (l *Lists) isListItem(ed *document.Editor, n document.Node) bool {
	el := document.AsElement(n)
	return el != nil && ed.IsBlock(el) && slices.Contains(l.itemTypes, el.Type)
}

func (l *Lists) matchList(ed *document.Editor) document.MatchFunc {
	return func(n document.Node, _ document.Path) bool { return l.isList(ed, n) }
}

func (l *Lists) matchListItem(ed *document.Editor) document.MatchFunc {
	return func(n document.Node, _ document.Path) bool { return l.isListItem(ed, n) }
}

// depth counts the consecutive lists directly above path. A top-level list
// has depth 0 and its items depth 1.
func (l *Lists) depth(ed *document.Editor, path document.Path) int {
	count := 0
	for p := path.Parent(); len(p) > 0; p = p.Parent() {
		n, err := ed.Node(p)
		if err != nil || !l.isList(ed, n) {
			break
		}
		count++
	}
	return count
}

// Plugin returns the plugin value to compose.
func (l *Lists) Plugin() plugin.Plugin {
	return plugin.Plugin{
		Name: "lists",
		Init: l.init,
		Blocks: []plugin.Block{
			{
				Type:        BulletedList,
				Render:      renderList,
				Serialize:   plugin.SerializeTag(BulletedList, "ul"),
				Deserialize: plugin.DeserializeTag("ul", BulletedList),
			},
			{
				Type:        NumberedList,
				Render:      renderList,
				Serialize:   plugin.SerializeTag(NumberedList, "ol"),
				Deserialize: plugin.DeserializeTag("ol", NumberedList),
			},
			{
				Type:        ListItem,
				Render:      l.renderItem,
				Serialize:   plugin.SerializeTag(ListItem, "li"),
				Deserialize: plugin.DeserializeTag("li", ListItem),
			},
		},
		Handlers: plugin.Handlers{OnKeyDown: l.onKeyDown},
	}
}

func (l *Lists) init(ed *document.Editor) *document.Editor {
	ed.WrapNormalizeNode(func(next document.NormalizeFunc) document.NormalizeFunc {
		return func(entry document.NodeEntry) {
			if !l.normalize(ed, entry) {
				next(entry)
			}
		}
	})
	ed.WrapInsertBreak(func(next document.InsertBreakFunc) document.InsertBreakFunc {
		return func() {
			if !l.exitEmptyItem(ed) {
				next()
			}
		}
	})
	return ed
}

// normalize fixes one list rule violation at entry and reports whether it
// changed the document.
func (l *Lists) normalize(ed *document.Editor, entry document.NodeEntry) bool {
	el := entry.Element()
	if el == nil || len(entry.Path) == 0 {
		return false
	}
	path := entry.Path

	if l.isList(ed, el) {
		for i, child := range el.Children {
			if l.isListItem(ed, child) || l.isList(ed, child) {
				continue
			}
			childPath := path.Child(i)
			if document.IsText(child) {
				log.Debug(log.CatNormalize, "wrapping bare text in list item", "path", childPath)
				if err := ed.WrapNodes(document.NewElement(l.itemTypes[0]), document.NodeOptions{At: childPath, Voids: true}); err != nil {
					log.ErrorErr(log.CatNormalize, "wrap list text failed", err, "path", childPath)
				}
				return true
			}
			log.Debug(log.CatNormalize, "lifting non-item out of list", "path", childPath)
			if err := ed.LiftNodes(document.NodeOptions{At: childPath, Voids: true}); err != nil {
				log.ErrorErr(log.CatNormalize, "lift out of list failed", err, "path", childPath)
			}
			return true
		}
	}

	if l.isListItem(ed, el) {
		if _, ok := ed.Above(document.AboveOptions{At: path, Match: l.matchList(ed)}); !ok {
			return l.wrapOrphans(ed, path)
		}
	}

	if l.isList(ed, el) && path.HasPrevious() {
		prevPath, _ := path.Previous()
		prev, err := ed.Node(prevPath)
		if err == nil && l.isList(ed, prev) && document.AsElement(prev).Type == el.Type &&
			l.depth(ed, prevPath) == l.depth(ed, path) {
			if err := ed.MergeNodes(document.NodeOptions{At: path, Voids: true}); err != nil {
				log.Debug(log.CatNormalize, "list merge skipped", "path", path, "error", err)
				return false
			}
			return true
		}
	}
	return false
}

// wrapOrphans wraps the run of sibling list items around path in a new
// bulleted list.
func (l *Lists) wrapOrphans(ed *document.Editor, path document.Path) bool {
	parent, err := ed.Parent(path)
	if err != nil {
		return false
	}
	first, last := path.Last(), path.Last()
	for first > 0 && l.isListItem(ed, parent.Children[first-1]) {
		first--
	}
	for last < len(parent.Children)-1 && l.isListItem(ed, parent.Children[last+1]) {
		last++
	}
	parentPath := path.Parent()
	rng, ok := ed.RangeOf(parentPath.Child(first), parentPath.Child(last))
	if !ok {
		return false
	}
	log.Debug(log.CatNormalize, "wrapping orphan list items", "from", parentPath.Child(first), "count", last-first+1)
	err = ed.WrapNodes(document.NewElement(BulletedList), document.NodeOptions{
		At:    rng,
		Voids: true,
		Mode:  document.ModeHighest,
		Match: func(n document.Node, p document.Path) bool {
			return l.isListItem(ed, n) && parentPath.IsParent(p)
		},
	})
	if err != nil {
		log.ErrorErr(log.CatNormalize, "wrap orphan list items failed", err, "path", path)
	}
	return true
}

// exitEmptyItem turns an empty list item into a paragraph outside its list.
func (l *Lists) exitEmptyItem(ed *document.Editor) bool {
	block, ok := ed.Above(document.AboveOptions{Match: ed.MatchBlock()})
	if !ok || !l.isListItem(ed, block.Node) || !ed.IsEmpty(block.Element()) {
		return false
	}
	l.liftToParagraph(ed)
	return true
}

func (l *Lists) liftToParagraph(ed *document.Editor) {
	var err error
	ed.WithoutNormalizing(func() {
		if err = ed.SetNodes(document.Props{document.PropType: document.DefaultBlockType}, document.NodeOptions{}); err != nil {
			return
		}
		err = ed.UnwrapNodes(document.NodeOptions{Match: l.matchList(ed), Split: true})
	})
	if err != nil {
		log.ErrorErr(log.CatEditor, "leave list failed", err)
	}
}

func (l *Lists) onKeyDown(ev *plugin.KeyEvent, ed *document.Editor) {
	sel := ed.Selection()
	if sel == nil {
		return
	}
	items := ed.Nodes(document.NodesOptions{Match: l.matchListItem(ed)})
	if len(items) == 0 {
		return
	}
	item := items[0]

	switch ev.String() {
	case "backspace":
		if sel.IsCollapsed() && l.depth(ed, item.Path) == 1 && ed.IsStart(sel.Anchor, item.Path) {
			l.liftToParagraph(ed)
			ev.PreventDefault()
		}
	case "tab":
		// Empty items stay put; the tab is still swallowed.
		ev.PreventDefault()
		if !ed.IsEmpty(item.Element()) {
			l.Indent(ed)
		}
	case "shift+tab":
		ev.PreventDefault()
		l.Outdent(ed)
	}
}

// Indent nests the current list item one level deeper, in a list of the
// same type as its own. The item must not end up deeper than the item
// before it.
func (l *Lists) Indent(ed *document.Editor) {
	list, ok := ed.Above(document.AboveOptions{Match: l.matchList(ed)})
	if !ok {
		return
	}
	current, ok := ed.Above(document.AboveOptions{Match: l.matchListItem(ed)})
	if !ok {
		return
	}
	before, ok := ed.Before(current.Path, document.UnitBlock)
	if !ok {
		return
	}
	prev, ok := ed.Above(document.AboveOptions{At: before, Match: l.matchListItem(ed)})
	if !ok || l.depth(ed, prev.Path) < l.depth(ed, current.Path) {
		return
	}
	err := ed.WrapNodes(document.NewElement(list.Element().Type), document.NodeOptions{Match: l.matchListItem(ed)})
	if err != nil {
		log.ErrorErr(log.CatEditor, "indent list item failed", err)
	}
}

// Outdent lifts the current list item out of a nested list.
func (l *Lists) Outdent(ed *document.Editor) {
	list, ok := ed.Above(document.AboveOptions{Match: l.matchList(ed)})
	if !ok || len(list.Path) < 2 {
		return
	}
	if err := ed.LiftNodes(document.NodeOptions{Match: l.matchListItem(ed)}); err != nil {
		log.ErrorErr(log.CatEditor, "outdent list item failed", err)
	}
}

// ToggleList turns the selected blocks into a list of listType. Inside a
// list of that type the items become paragraphs again; inside another list
// type the list changes type.
func (l *Lists) ToggleList(ed *document.Editor, listType string) error {
	sel := ed.Selection()
	if sel == nil {
		return document.ErrNoSelection
	}
	var err error
	ed.WithoutNormalizing(func() {
		list, inList := ed.Above(document.AboveOptions{Match: l.matchList(ed)})
		switch {
		case inList && list.Element().Type == listType:
			err = ed.SetNodes(document.Props{document.PropType: document.DefaultBlockType}, document.NodeOptions{
				At:    *sel,
				Match: l.matchListItem(ed),
				Mode:  document.ModeHighest,
			})
		case inList:
			err = ed.SetNodes(document.Props{document.PropType: listType}, document.NodeOptions{At: list.Path})
		default:
			err = ed.SetNodes(document.Props{document.PropType: ListItem}, document.NodeOptions{At: *sel, Match: ed.MatchBlock()})
			if err != nil {
				return
			}
			err = ed.WrapNodes(document.NewElement(listType), document.NodeOptions{
				At:    *sel,
				Mode:  document.ModeHighest,
				Match: l.matchListItem(ed),
			})
		}
	})
	if err != nil {
		return fmt.Errorf("toggle %s: %w", listType, err)
	}
	return nil
}

var defaultLists = New(Options{})

// ToggleList toggles listType with the default list types.
func ToggleList(ed *document.Editor, listType string) error {
	return defaultLists.ToggleList(ed, listType)
}

// IsListActive reports whether the selection touches a list of typ.
func IsListActive(ed *document.Editor, typ string) bool {
	if ed.Selection() == nil {
		return false
	}
	return len(ed.Nodes(document.NodesOptions{Match: document.MatchType(typ)})) > 0
}

// IsBulletedListActive reports whether the selection touches a bulleted list.
func IsBulletedListActive(ed *document.Editor) bool { return IsListActive(ed, BulletedList) }

// IsNumberedListActive reports whether the selection touches a numbered list.
func IsNumberedListActive(ed *document.Editor) bool { return IsListActive(ed, NumberedList) }

func renderList(props plugin.RenderElementProps, _ *document.Editor) string {
	return props.Children
}

func (l *Lists) renderItem(props plugin.RenderElementProps, ed *document.Editor) string {
	marker := "•"
	parent, err := ed.Parent(props.Path)
	if err == nil && parent.Type == NumberedList {
		n := 1
		for _, sibling := range parent.Children[:props.Path.Last()] {
			if l.isListItem(ed, sibling) {
				n++
			}
		}
		marker = fmt.Sprintf("%d.", n)
	}
	indent := strings.Repeat("  ", max(0, l.depth(ed, props.Path)-1))
	return indent + styles.ListMarkerStyle.Render(marker) + " " + props.Children
}

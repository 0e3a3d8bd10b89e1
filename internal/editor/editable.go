package editor

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
)

// Render renders the document. Top-level blocks are separated by newlines.
func (e *Editor) Render() string {
	return strings.Join(e.RenderBlocks(), "\n")
}

// RenderBlocks renders each top-level block.
func (e *Editor) RenderBlocks() []string {
	parts := make([]string, 0, len(e.Children()))
	for i, child := range e.Children() {
		parts = append(parts, e.renderNode(child, document.Path{i}, nil))
	}
	return parts
}

func (e *Editor) decorations(entry document.NodeEntry) []plugin.Decoration {
	var out []plugin.Decoration
	for _, p := range e.plugins {
		if p.Decorate != nil {
			out = append(out, p.Decorate(e.Editor, entry)...)
		}
	}
	return out
}

func (e *Editor) renderNode(n document.Node, path document.Path, inherited []plugin.Decoration) string {
	decos := append(slices.Clone(inherited), e.decorations(document.NodeEntry{Node: n, Path: path})...)
	if t, ok := n.(*document.Text); ok {
		return e.renderText(t, path, decos)
	}
	el := n.(*document.Element)

	parts := make([]string, len(el.Children))
	for i, child := range el.Children {
		parts[i] = e.renderNode(child, path.Child(i), decos)
	}
	sep := ""
	if len(el.Children) > 0 && e.IsBlock(el.Children[0]) {
		sep = "\n"
	}
	props := plugin.RenderElementProps{
		Element:    el,
		Path:       path,
		Children:   strings.Join(parts, sep),
		ChildParts: parts,
	}

	out := ""
	for _, p := range e.plugins {
		for _, b := range p.Blocks {
			if b.Type != el.Type || b.Render == nil {
				continue
			}
			if r := b.Render(props, e.Editor); r != "" {
				out = r
			}
		}
	}
	if out == "" {
		out = props.Children
	}
	for _, p := range e.plugins {
		if p.RenderBlock != nil {
			props.Children = out
			out = p.RenderBlock(props)
		}
	}
	return out
}

// renderText splits a text at decoration edges and runs every leaf
// renderer over each segment in plugin order.
func (e *Editor) renderText(t *document.Text, path document.Path, decos []plugin.Decoration) string {
	var b strings.Builder
	for _, seg := range segments(t, path, decos) {
		props := plugin.RenderLeafProps{
			Leaf:     document.NewText(seg.text, seg.marks),
			Text:     t,
			Path:     path,
			Children: seg.text,
		}
		for _, p := range e.plugins {
			for _, l := range p.Leafs {
				if l.Render != nil {
					props.Children = l.Render(props, e.Editor)
				}
			}
		}
		b.WriteString(props.Children)
	}
	return b.String()
}

type segment struct {
	text  string
	marks document.Props
}

type decoSpan struct {
	start, end int
	props      document.Props
}

// segments cuts t into runs that share the same decorations. A decoration
// of zero width yields an empty segment at its offset.
func segments(t *document.Text, path document.Path, decos []plugin.Decoration) []segment {
	n := len(t.Text)
	whole := document.Range{
		Anchor: document.Point{Path: path, Offset: 0},
		Focus:  document.Point{Path: path, Offset: n},
	}
	var spans []decoSpan
	cuts := []int{0, n}
	for _, d := range decos {
		r, ok := d.Range.Intersection(whole)
		if !ok {
			continue
		}
		s, end := r.Edges()
		if !s.Path.Equals(path) || !end.Path.Equals(path) {
			continue
		}
		if s.Offset == end.Offset && d.Range.IsExpanded() {
			continue
		}
		spans = append(spans, decoSpan{start: s.Offset, end: end.Offset, props: d.Props})
		cuts = append(cuts, s.Offset, end.Offset)
	}
	if len(spans) == 0 {
		return []segment{{text: t.Text, marks: t.Marks}}
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	merge := func(covers func(sp decoSpan) bool) document.Props {
		m := t.Marks.Clone()
		for _, sp := range spans {
			if !covers(sp) {
				continue
			}
			if m == nil {
				m = document.Props{}
			}
			for k, v := range sp.props {
				m[k] = v
			}
		}
		return m
	}

	var out []segment
	for i, at := range cuts {
		for _, sp := range spans {
			if sp.start == at && sp.end == at {
				out = append(out, segment{marks: merge(func(o decoSpan) bool { return o.start <= at && o.end >= at })})
				break
			}
		}
		if i == len(cuts)-1 {
			break
		}
		next := cuts[i+1]
		out = append(out, segment{
			text:  t.Text[at:next],
			marks: merge(func(o decoSpan) bool { return o.start <= at && o.end >= next }),
		})
	}
	return out
}

// KeyDown dispatches a key press. Matching hotkeys run first and suppress
// the default behavior; every plugin's OnKeyDown handler runs next in list
// order. The editor's default runs unless a handler prevented it.
func (e *Editor) KeyDown(ctx context.Context, ev *plugin.KeyEvent) {
	for _, p := range e.plugins {
		for _, hk := range p.Hotkeys {
			if hk.Run != nil && key.Matches(ev.Msg, hk.Binding) {
				ev.PreventDefault()
				hk.Run(ev, e.Editor)
			}
		}
	}
	for _, p := range e.plugins {
		if p.Handlers.OnKeyDown != nil {
			p.Handlers.OnKeyDown(ev, e.Editor)
		}
	}
	if ev.DefaultPrevented() {
		return
	}
	e.defaultKeyDown(ctx, ev.Msg)
}

func (e *Editor) defaultKeyDown(ctx context.Context, msg tea.KeyMsg) {
	sel := e.Selection()
	if sel == nil {
		return
	}
	expanded := sel.IsExpanded()
	unit := document.UnitCharacter
	if msg.Alt {
		unit = document.UnitWord
	}

	var err error
	switch msg.Type {
	case tea.KeyEnter:
		e.InsertBreak()
	case tea.KeyBackspace:
		if expanded {
			e.DeleteFragment(ctx, document.Backward)
		} else {
			e.DeleteBackward(ctx, unit)
		}
	case tea.KeyDelete:
		if expanded {
			e.DeleteFragment(ctx, document.Forward)
		} else {
			e.DeleteForward(ctx, unit)
		}
	case tea.KeyLeft:
		err = e.Move(unit, true)
	case tea.KeyRight:
		err = e.Move(unit, false)
	case tea.KeyUp, tea.KeyHome:
		err = e.Move(document.UnitLine, true)
	case tea.KeyDown, tea.KeyEnd:
		err = e.Move(document.UnitLine, false)
	case tea.KeySpace:
		e.typeText(ctx, " ", expanded)
	case tea.KeyRunes:
		e.typeText(ctx, string(msg.Runes), expanded)
	}
	if err != nil {
		log.ErrorErr(log.CatEditor, "key handling failed", err, "key", msg.String())
	}
}

func (e *Editor) typeText(ctx context.Context, text string, expanded bool) {
	if expanded {
		e.DeleteFragment(ctx, document.Backward)
	}
	e.InsertText(text)
}

// Paste runs the plugins' paste handlers, then inserts the content unless
// a handler took it over. Markup is converted through the plugins.
func (e *Editor) Paste(ev *plugin.PasteEvent) error {
	for _, p := range e.plugins {
		if p.Handlers.OnPaste != nil {
			p.Handlers.OnPaste(ev, e.Editor)
		}
	}
	if ev.DefaultPrevented() {
		return nil
	}
	if ev.HTML != "" {
		nodes, err := e.Deserialize(ev.HTML)
		if err != nil {
			return err
		}
		e.InsertFragment(nodes)
		return nil
	}
	if ev.Text != "" {
		e.InsertText(ev.Text)
	}
	return nil
}

// Drop runs the plugins' drop handlers, then inserts dropped markup at the
// drop point.
func (e *Editor) Drop(ev *plugin.DropEvent) error {
	for _, p := range e.plugins {
		if p.Handlers.OnDrop != nil {
			p.Handlers.OnDrop(ev, e.Editor)
		}
	}
	if ev.DefaultPrevented() || ev.HTML == "" {
		return nil
	}
	nodes, err := e.Deserialize(ev.HTML)
	if err != nil {
		return err
	}
	if err := e.Select(ev.At); err != nil {
		return err
	}
	e.InsertFragment(nodes)
	return nil
}

// UI renders every plugin overlay, in list order.
func (e *Editor) UI(readOnly bool) string {
	params := plugin.UIParams{Editor: e.Editor, ReadOnly: readOnly, Children: e.Render()}
	var parts []string
	for _, p := range e.plugins {
		if p.UI == nil {
			continue
		}
		if out := p.UI(params); out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, "\n")
}

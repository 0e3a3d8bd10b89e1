// Package editor composes plugins into a working editor and dispatches
// rendering and input events to them.
package editor

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/serialize"
	"github.com/usekona/kona/internal/tracing"
)

// DispatchOrder picks the winner when several plugins declare the same
// block type.
type DispatchOrder int

const (
	// FirstWins uses the earliest plugin in list order.
	FirstWins DispatchOrder = iota
	// LastWins uses the latest plugin in list order.
	LastWins
)

// Editor is a document editor whose behaviors have been extended by an
// ordered list of plugins.
type Editor struct {
	*document.Editor

	plugins []plugin.Plugin
	order   DispatchOrder
	initial []document.Node
}

// Option configures Compose.
type Option func(*Editor)

// WithDispatchOrder sets how conflicting block declarations are resolved.
func WithDispatchOrder(order DispatchOrder) Option {
	return func(e *Editor) {
		e.order = order
	}
}

// WithInitialValue sets the document the editor starts with.
func WithInitialValue(nodes ...document.Node) Option {
	return func(e *Editor) {
		e.initial = nodes
	}
}

// Compose builds an editor from plugins. Each plugin's Init runs in list
// order on the result of the previous one; the composer's own overrides are
// installed last so they see every call first.
func Compose(plugins []plugin.Plugin, opts ...Option) *Editor {
	e := &Editor{plugins: plugins}
	for _, opt := range opts {
		opt(e)
	}

	ed := document.New(e.initial...)
	for _, p := range plugins {
		if p.Init == nil {
			continue
		}
		if next := p.Init(ed); next != nil {
			ed = next
		} else {
			log.Warn(log.CatEditor, "plugin init returned no editor", "plugin", p.Name)
		}
	}
	e.Editor = ed

	e.warnConflicts()
	ed.WrapIsVoid(e.declaredPredicate(func(b plugin.Block) *bool { return b.IsVoid }))
	ed.WrapIsInline(e.declaredPredicate(func(b plugin.Block) *bool { return b.IsInline }))
	ed.WrapDeleteBackward(e.deleteAdjacent(true))
	ed.WrapDeleteForward(e.deleteAdjacent(false))
	ed.WrapDeleteFragment(e.deleteFragment)
	ed.WrapNormalizeNode(e.trailingParagraph)

	log.Debug(log.CatEditor, "editor composed", "plugins", len(plugins))
	return e
}

// Plugins returns the plugins in composition order.
func (e *Editor) Plugins() []plugin.Plugin { return e.plugins }

// block returns the block entry that owns typ under the dispatch order.
func (e *Editor) block(typ string) (plugin.Block, bool) {
	if e.order == LastWins {
		for i := len(e.plugins) - 1; i >= 0; i-- {
			for _, b := range e.plugins[i].Blocks {
				if b.Type == typ {
					return b, true
				}
			}
		}
		return plugin.Block{}, false
	}
	b, _, ok := plugin.FindBlock(e.plugins, typ)
	return b, ok
}

func (e *Editor) declared(typ string, pick func(plugin.Block) *bool) (bool, bool) {
	decls := plugin.Declarations(e.plugins, typ, pick)
	if len(decls) == 0 {
		return false, false
	}
	if e.order == LastWins {
		return decls[len(decls)-1], true
	}
	return decls[0], true
}

func (e *Editor) declaredPredicate(pick func(plugin.Block) *bool) func(next document.ElementPredicate) document.ElementPredicate {
	return func(next document.ElementPredicate) document.ElementPredicate {
		return func(el *document.Element) bool {
			if v, ok := e.declared(el.Type, pick); ok {
				return v
			}
			return next(el)
		}
	}
}

func (e *Editor) warnConflicts() {
	for _, typ := range plugin.Types(e.plugins) {
		for name, pick := range map[string]func(plugin.Block) *bool{
			"isVoid":   func(b plugin.Block) *bool { return b.IsVoid },
			"isInline": func(b plugin.Block) *bool { return b.IsInline },
		} {
			decls := plugin.Declarations(e.plugins, typ, pick)
			for _, d := range decls[min(1, len(decls)):] {
				if d != decls[0] {
					log.Warn(log.CatEditor, "conflicting block declarations", "type", typ, "declaration", name)
					break
				}
			}
		}
	}
}

// deleteAdjacent special-cases deleting into a void block next to the
// cursor: the owning plugin may veto it, and an approved delete removes the
// whole block.
func (e *Editor) deleteAdjacent(reverse bool) func(next document.DeleteFunc) document.DeleteFunc {
	return func(next document.DeleteFunc) document.DeleteFunc {
		return func(ctx context.Context, unit document.Unit) {
			target, ok := e.adjacentVoid(reverse)
			if !ok {
				next(ctx, unit)
				return
			}
			e.removeBlocks(ctx, target)
		}
	}
}

func (e *Editor) adjacentVoid(reverse bool) (document.NodeEntry, bool) {
	ed := e.Editor
	sel := ed.Selection()
	if sel == nil || sel.IsExpanded() {
		return document.NodeEntry{}, false
	}
	anchor := sel.Anchor
	current, ok := ed.Above(document.AboveOptions{At: anchor, Match: ed.MatchBlock()})
	if !ok {
		return document.NodeEntry{}, false
	}

	var adjacent document.Point
	if reverse {
		if !ed.IsStart(anchor, current.Path) {
			return document.NodeEntry{}, false
		}
		adjacent, ok = ed.Before(anchor, document.UnitCharacter)
	} else {
		if !ed.IsEnd(anchor, current.Path) {
			return document.NodeEntry{}, false
		}
		adjacent, ok = ed.After(anchor, document.UnitCharacter)
	}
	if !ok {
		return document.NodeEntry{}, false
	}

	target, ok := ed.Above(document.AboveOptions{At: adjacent, Match: ed.MatchBlock(), Voids: true})
	if !ok || target.Path.Equals(current.Path) || !ed.IsVoid(target.Element()) {
		return document.NodeEntry{}, false
	}
	return target, true
}

// removeBlocks asks the owning plugin before removing a block. A hook that
// fails counts as a denial. It reports whether the block was removed.
func (e *Editor) removeBlocks(ctx context.Context, entry document.NodeEntry) bool {
	el := entry.Element()
	b, owned := e.block(el.Type)
	if owned && b.OnBeforeDelete != nil {
		approved, err := b.OnBeforeDelete(ctx, []*document.Element{el})
		if err != nil {
			log.ErrorErr(log.CatEditor, "delete hook failed", err, "type", el.Type)
			approved = false
		}
		if !approved {
			log.Debug(log.CatEditor, "delete denied", "type", el.Type, "path", entry.Path)
			return false
		}
	}
	if err := e.RemoveNodes(document.NodeOptions{At: entry.Path, Voids: true}); err != nil {
		log.ErrorErr(log.CatEditor, "remove block failed", err, "path", entry.Path)
		return false
	}
	if owned && b.OnDelete != nil {
		b.OnDelete([]*document.Element{el})
	}
	return true
}

// deleteFragment removes the highest blocks covered by a multi-leaf
// selection last to first, consulting their owners' hooks. A denied block
// stops the walk, leaving it and everything before it in place. An owned
// block without a hook hands the rest of the selection to the default
// delete.
func (e *Editor) deleteFragment(next document.DeleteFragmentFunc) document.DeleteFragmentFunc {
	return func(ctx context.Context, dir document.Direction) {
		ed := e.Editor
		sel := ed.Selection()
		if sel == nil || sel.IsCollapsed() || sel.Anchor.Path.Equals(sel.Focus.Path) {
			next(ctx, dir)
			return
		}
		entries := ed.Nodes(document.NodesOptions{
			At:      *sel,
			Match:   ed.MatchBlock(),
			Mode:    document.ModeHighest,
			Reverse: true,
			Voids:   true,
		})
		if len(entries) == 0 {
			next(ctx, dir)
			return
		}

		ed.WithoutNormalizing(func() {
			for _, entry := range entries {
				el := entry.Element()
				b, owned := e.block(el.Type)
				switch {
				case !owned:
					if err := ed.RemoveNodes(document.NodeOptions{At: entry.Path, Voids: true}); err != nil {
						log.ErrorErr(log.CatEditor, "remove block failed", err, "path", entry.Path)
					}
				case b.OnBeforeDelete != nil:
					if !e.removeBlocks(ctx, entry) {
						return
					}
				default:
					next(ctx, dir)
					return
				}
			}
		})
	}
}

// trailingParagraph keeps a plain paragraph at the end of the document.
func (e *Editor) trailingParagraph(next document.NormalizeFunc) document.NormalizeFunc {
	return func(entry document.NodeEntry) {
		if len(entry.Path) == 0 {
			children := e.Children()
			if len(children) == 0 || !document.IsType(children[len(children)-1], document.DefaultBlockType) {
				err := e.InsertNodes(
					[]document.Node{document.NewElement(document.DefaultBlockType, document.NewText(""))},
					document.NodeOptions{At: document.Path{len(children)}},
				)
				if err != nil {
					log.ErrorErr(log.CatNormalize, "insert trailing paragraph failed", err)
				}
				return
			}
		}
		next(entry)
	}
}

// NormalizeContext normalizes the document inside a tracing span.
func (e *Editor) NormalizeContext(ctx context.Context) error {
	_, span := tracing.Start(ctx, tracing.SpanNormalize, attribute.Int(tracing.AttrNodeCount, len(e.Children())))
	err := e.Normalize()
	tracing.End(span, err)
	return err
}

// Serialize renders the document as markup.
func (e *Editor) Serialize() string {
	return serialize.Serialize(e.plugins, e.Children()...)
}

// Deserialize converts markup to nodes using the editor's plugins.
func (e *Editor) Deserialize(markup string) ([]document.Node, error) {
	return serialize.Deserialize(e.plugins, markup)
}

// Load replaces the document with parsed markup and normalizes it.
func (e *Editor) Load(ctx context.Context, markup string) error {
	nodes, err := e.Deserialize(markup)
	if err != nil {
		return err
	}
	if err := e.Replace(nodes...); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return e.NormalizeContext(ctx)
}

// IsEmpty reports whether the document holds no text: either a bare text
// that is blank, or at most one block whose first child is an empty text.
func (e *Editor) IsEmpty() bool {
	children := e.Children()
	if len(children) == 0 {
		return true
	}
	if t, ok := children[0].(*document.Text); ok {
		return strings.TrimSpace(t.Text) == ""
	}
	if len(children) > 1 {
		return false
	}
	el := document.AsElement(children[0])
	if el == nil || len(el.Children) == 0 {
		return true
	}
	t, ok := el.Children[0].(*document.Text)
	return ok && t.Text == ""
}

// DeleteNode removes every node matching match.
func (e *Editor) DeleteNode(match document.MatchFunc) error {
	return e.RemoveNodes(document.NodeOptions{At: document.Path{}, Match: match, Voids: true})
}

// Focus places a collapsed selection at the start or end of the document.
func (e *Editor) Focus(end bool) error {
	pt, ok := e.Start(document.Path{})
	if end {
		pt, ok = e.End(document.Path{})
	}
	if !ok {
		return document.ErrNoSelection
	}
	return e.Select(pt)
}

package document

import (
	"context"

	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/pubsub"
)

// ApplyFunc applies a single operation.
type ApplyFunc func(op Operation) error

// ApplyMiddleware wraps an ApplyFunc. A middleware may rewrite the operation
// before passing it on, or swallow it by returning without calling next.
type ApplyMiddleware func(next ApplyFunc) ApplyFunc

// NormalizeFunc repairs one node. It fixes at most one problem per call;
// the driver calls it again until the tree is stable.
type NormalizeFunc func(entry NodeEntry)

// ElementPredicate answers a yes/no question about an element.
type ElementPredicate func(el *Element) bool

// InsertTextFunc inserts typed text at the selection.
type InsertTextFunc func(text string)

// InsertBreakFunc handles a paragraph break at the selection.
type InsertBreakFunc func()

// InsertFragmentFunc inserts pasted nodes at the selection.
type InsertFragmentFunc func(nodes []Node)

// DeleteFunc deletes one unit next to a collapsed selection. It may wait on
// plugin hooks and therefore takes a context.
type DeleteFunc func(ctx context.Context, unit Unit)

// DeleteFragmentFunc deletes an expanded selection.
type DeleteFragmentFunc func(ctx context.Context, dir Direction)

// ChangeEvent is published once per logical edit, after normalization.
type ChangeEvent struct {
	Operations []Operation
	Selection  *Range
}

// Editor owns a document tree and the behaviours used to edit it. Behaviours
// are function values that plugins replace by wrapping the previous value.
// An Editor is not safe for concurrent use.
type Editor struct {
	root      *Element
	selection *Range
	marks     Props

	apply          ApplyFunc
	normalizeNode  NormalizeFunc
	isVoid         ElementPredicate
	isInline       ElementPredicate
	insertText     InsertTextFunc
	insertBreak    InsertBreakFunc
	insertFragment InsertFragmentFunc
	deleteBackward DeleteFunc
	deleteForward  DeleteFunc
	deleteFragment DeleteFragmentFunc

	depth   int
	dirty   bool
	pending []Operation

	pathRefs  map[*PathRef]struct{}
	pointRefs map[*PointRef]struct{}
	rangeRefs map[*RangeRef]struct{}

	changes   *pubsub.Broker[ChangeEvent]
	listeners []func(ChangeEvent)
}

// New creates an editor holding the given top-level nodes.
func New(children ...Node) *Editor {
	ed := &Editor{
		root:      &Element{Children: children},
		pathRefs:  make(map[*PathRef]struct{}),
		pointRefs: make(map[*PointRef]struct{}),
		rangeRefs: make(map[*RangeRef]struct{}),
		changes:   pubsub.NewBroker[ChangeEvent](),
	}
	ed.apply = ed.applyCore
	ed.normalizeNode = ed.coreNormalizeNode
	ed.isVoid = func(*Element) bool { return false }
	ed.isInline = func(*Element) bool { return false }
	ed.insertText = ed.defaultInsertText
	ed.insertBreak = ed.defaultInsertBreak
	ed.insertFragment = ed.defaultInsertFragment
	ed.deleteBackward = ed.defaultDeleteBackward
	ed.deleteForward = ed.defaultDeleteForward
	ed.deleteFragment = ed.defaultDeleteFragment
	ed.dirty = true
	return ed
}

// Root returns the synthetic root element. Its children are the document.
func (ed *Editor) Root() *Element { return ed.root }

// Children returns the top-level nodes.
func (ed *Editor) Children() []Node { return ed.root.Children }

// Reset replaces the whole document without recording operations and clears
// the selection.
func (ed *Editor) Reset(children ...Node) {
	ed.root = &Element{Children: children}
	ed.selection = nil
	ed.marks = nil
	ed.dirty = true
}

// Replace swaps in children by inserting them through the apply chain, so
// middleware sees every node. Normalization is left to the caller.
func (ed *Editor) Replace(children ...Node) error {
	ed.Reset()
	ed.depth++
	defer func() { ed.depth-- }()
	for i, n := range children {
		if err := ed.apply(Operation{Type: OpInsertNode, Path: Path{i}, Node: n}); err != nil {
			return err
		}
	}
	return nil
}

// Selection returns a copy of the current selection, or nil.
func (ed *Editor) Selection() *Range {
	if ed.selection == nil {
		return nil
	}
	r := cloneRange(*ed.selection)
	return &r
}

// PendingMarks returns marks set for the next inserted text, or nil.
func (ed *Editor) PendingMarks() Props { return ed.marks.Clone() }

// SetPendingMarks replaces the marks applied to the next inserted text.
func (ed *Editor) SetPendingMarks(m Props) {
	ed.marks = m.Clone()
}

// WrapApply installs an operation middleware. Later middlewares run first.
func (ed *Editor) WrapApply(mw ApplyMiddleware) { ed.apply = mw(ed.apply) }

// WrapNormalizeNode installs a normalizer around the current one.
func (ed *Editor) WrapNormalizeNode(fn func(next NormalizeFunc) NormalizeFunc) {
	ed.normalizeNode = fn(ed.normalizeNode)
}

func (ed *Editor) WrapIsVoid(fn func(next ElementPredicate) ElementPredicate) {
	ed.isVoid = fn(ed.isVoid)
}

func (ed *Editor) WrapIsInline(fn func(next ElementPredicate) ElementPredicate) {
	ed.isInline = fn(ed.isInline)
}

func (ed *Editor) WrapInsertText(fn func(next InsertTextFunc) InsertTextFunc) {
	ed.insertText = fn(ed.insertText)
}

func (ed *Editor) WrapInsertBreak(fn func(next InsertBreakFunc) InsertBreakFunc) {
	ed.insertBreak = fn(ed.insertBreak)
}

func (ed *Editor) WrapInsertFragment(fn func(next InsertFragmentFunc) InsertFragmentFunc) {
	ed.insertFragment = fn(ed.insertFragment)
}

func (ed *Editor) WrapDeleteBackward(fn func(next DeleteFunc) DeleteFunc) {
	ed.deleteBackward = fn(ed.deleteBackward)
}

func (ed *Editor) WrapDeleteForward(fn func(next DeleteFunc) DeleteFunc) {
	ed.deleteForward = fn(ed.deleteForward)
}

func (ed *Editor) WrapDeleteFragment(fn func(next DeleteFragmentFunc) DeleteFragmentFunc) {
	ed.deleteFragment = fn(ed.deleteFragment)
}

// Apply runs op through the middleware chain and applies it.
func (ed *Editor) Apply(op Operation) error {
	var err error
	ed.WithoutNormalizing(func() { err = ed.apply(op) })
	return err
}

// NormalizeNode runs the normalizer chain on one entry.
func (ed *Editor) NormalizeNode(entry NodeEntry) { ed.normalizeNode(entry) }

func (ed *Editor) IsVoid(el *Element) bool   { return el != nil && ed.isVoid(el) }
func (ed *Editor) IsInline(el *Element) bool { return el != nil && ed.isInline(el) }

// IsBlock reports whether n is a block-level element.
func (ed *Editor) IsBlock(n Node) bool {
	el, ok := n.(*Element)
	return ok && el != ed.root && !ed.isInline(el)
}

func (ed *Editor) InsertText(text string)      { ed.insertText(text) }
func (ed *Editor) InsertBreak()                { ed.insertBreak() }
func (ed *Editor) InsertSoftBreak()            { ed.insertText("\n") }
func (ed *Editor) InsertFragment(nodes []Node) { ed.insertFragment(nodes) }

func (ed *Editor) DeleteBackward(ctx context.Context, unit Unit) {
	ed.deleteBackward(ctx, unit)
}
func (ed *Editor) DeleteForward(ctx context.Context, unit Unit) {
	ed.deleteForward(ctx, unit)
}
func (ed *Editor) DeleteFragment(ctx context.Context, dir Direction) {
	ed.deleteFragment(ctx, dir)
}

// OnChange registers a callback invoked synchronously after every edit.
func (ed *Editor) OnChange(fn func(ChangeEvent)) {
	ed.listeners = append(ed.listeners, fn)
}

// Subscribe returns a channel of change events. It closes when ctx is done.
func (ed *Editor) Subscribe(ctx context.Context) <-chan pubsub.Event[ChangeEvent] {
	return ed.changes.Subscribe(ctx)
}

// Close releases change subscribers.
func (ed *Editor) Close() { ed.changes.Close() }

// IsNormalizing reports whether edits are normalized when they finish.
func (ed *Editor) IsNormalizing() bool { return ed.depth == 0 }

// WithoutNormalizing runs fn as one logical edit: normalization and change
// notification are deferred until the outermost call returns.
func (ed *Editor) WithoutNormalizing(fn func()) {
	ed.depth++
	func() {
		defer func() { ed.depth-- }()
		fn()
	}()
	if ed.depth == 0 {
		if ed.dirty {
			_ = ed.normalize()
		}
		ed.flush()
	}
}

// Normalize brings the whole tree to a fixed point of NormalizeNode. It
// returns ErrNormalizeLoop when the normalizers keep producing operations.
func (ed *Editor) Normalize() error {
	if ed.depth > 0 {
		return nil
	}
	err := ed.normalize()
	ed.flush()
	return err
}

func (ed *Editor) normalize() error {
	ed.depth++
	defer func() {
		ed.depth--
		ed.dirty = false
	}()

	budget := countNodes(ed.root)*42 + 100
	fixes := 0
	for {
		changed := false
		for _, entry := range ed.walk(true) {
			before := len(ed.pending)
			ed.normalizeNode(entry)
			if len(ed.pending) != before {
				changed = true
				fixes++
				break
			}
		}
		if !changed {
			return nil
		}
		if fixes > budget {
			log.Error(log.CatNormalize, "normalization did not converge", "fixes", fixes, "budget", budget)
			return ErrNormalizeLoop
		}
	}
}

func (ed *Editor) flush() {
	if len(ed.pending) == 0 {
		return
	}
	ev := ChangeEvent{Operations: ed.pending, Selection: ed.Selection()}
	ed.pending = nil
	for _, fn := range ed.listeners {
		fn(ev)
	}
	ed.changes.Publish(pubsub.UpdatedEvent, ev)
}

// applyCore is the innermost ApplyFunc.
func (ed *Editor) applyCore(op Operation) error {
	if op.Type == OpSetSelection {
		if op.NewSelection == nil {
			ed.selection = nil
		} else {
			r := cloneRange(*op.NewSelection)
			ed.selection = &r
		}
		ed.marks = nil
		ed.pending = append(ed.pending, op)
		return nil
	}

	if err := applyToTree(ed.root, op); err != nil {
		log.ErrorErr(log.CatEditor, "apply failed", err, "op", op.String())
		return err
	}

	ed.transformSelection(op)
	for ref := range ed.pathRefs {
		ref.transform(op)
	}
	for ref := range ed.pointRefs {
		ref.transform(op)
	}
	for ref := range ed.rangeRefs {
		ref.transform(op)
	}

	ed.pending = append(ed.pending, op)
	ed.dirty = true
	return nil
}

func (ed *Editor) transformSelection(op Operation) {
	if ed.selection == nil {
		return
	}
	sel := *ed.selection
	points := []*Point{&sel.Anchor, &sel.Focus}
	for _, pt := range points {
		next, ok := pt.Transform(op, AffinityForward)
		if ok {
			*pt = next
			continue
		}
		if op.Type != OpRemoveNode {
			ed.selection = nil
			return
		}
		fallback, found := ed.removalFallback(op.Path)
		if !found {
			ed.selection = nil
			return
		}
		*pt = fallback
	}
	ed.selection = &sel
}

// removalFallback picks where a point inside a removed node goes: the end
// of the previous text, or the start of the next one.
func (ed *Editor) removalFallback(removed Path) (Point, bool) {
	var prev, next *NodeEntry
	for _, e := range ed.walk(false) {
		if !IsText(e.Node) {
			continue
		}
		entry := e
		if e.Path.Compare(removed) == -1 {
			prev = &entry
			continue
		}
		next = &entry
		break
	}
	preferNext := false
	if prev != nil && next != nil {
		if next.Path.Equals(removed) {
			preferNext = !next.Path.HasPrevious()
		} else {
			preferNext = len(prev.Path.Common(removed)) < len(next.Path.Common(removed))
		}
	}
	switch {
	case prev != nil && !preferNext:
		return Point{Path: prev.Path, Offset: len(prev.Node.(*Text).Text)}, true
	case next != nil:
		return Point{Path: next.Path, Offset: 0}, true
	}
	return Point{}, false
}

// PathRef follows a path across operations.
type PathRef struct {
	ed       *Editor
	current  Path
	gone     bool
	affinity Affinity
}

// PathRef starts tracking p.
func (ed *Editor) PathRef(p Path, affinity Affinity) *PathRef {
	ref := &PathRef{ed: ed, current: p.Clone(), affinity: affinity}
	ed.pathRefs[ref] = struct{}{}
	return ref
}

// Current returns the tracked path, or false once the node was removed.
func (r *PathRef) Current() (Path, bool) {
	if r.gone {
		return nil, false
	}
	return r.current.Clone(), true
}

// Unref stops tracking and returns the final path.
func (r *PathRef) Unref() (Path, bool) {
	delete(r.ed.pathRefs, r)
	return r.Current()
}

func (r *PathRef) transform(op Operation) {
	if r.gone {
		return
	}
	p, ok := r.current.Transform(op, r.affinity)
	if !ok {
		r.gone = true
		return
	}
	r.current = p
}

// PointRef follows a point across operations.
type PointRef struct {
	ed       *Editor
	current  *Point
	affinity Affinity
}

func (ed *Editor) PointRef(p Point, affinity Affinity) *PointRef {
	pt := Point{Path: p.Path.Clone(), Offset: p.Offset}
	ref := &PointRef{ed: ed, current: &pt, affinity: affinity}
	ed.pointRefs[ref] = struct{}{}
	return ref
}

func (r *PointRef) Current() (Point, bool) {
	if r.current == nil {
		return Point{}, false
	}
	return *r.current, true
}

func (r *PointRef) Unref() (Point, bool) {
	delete(r.ed.pointRefs, r)
	return r.Current()
}

func (r *PointRef) transform(op Operation) {
	if r.current == nil {
		return
	}
	p, ok := r.current.Transform(op, r.affinity)
	if !ok {
		r.current = nil
		return
	}
	r.current = &p
}

// RangeRef follows a range across operations.
type RangeRef struct {
	ed       *Editor
	current  *Range
	affinity Affinity
}

func (ed *Editor) RangeRef(rg Range, affinity Affinity) *RangeRef {
	c := cloneRange(rg)
	ref := &RangeRef{ed: ed, current: &c, affinity: affinity}
	ed.rangeRefs[ref] = struct{}{}
	return ref
}

func (r *RangeRef) Current() (Range, bool) {
	if r.current == nil {
		return Range{}, false
	}
	return *r.current, true
}

func (r *RangeRef) Unref() (Range, bool) {
	delete(r.ed.rangeRefs, r)
	return r.Current()
}

func (r *RangeRef) transform(op Operation) {
	if r.current == nil {
		return
	}
	rg, ok := r.current.Transform(op, r.affinity)
	if !ok {
		r.current = nil
		return
	}
	r.current = &rg
}

func cloneRange(r Range) Range {
	return Range{
		Anchor: Point{Path: r.Anchor.Path.Clone(), Offset: r.Anchor.Offset},
		Focus:  Point{Path: r.Focus.Path.Clone(), Offset: r.Focus.Offset},
	}
}

func countNodes(n Node) int {
	el, ok := n.(*Element)
	if !ok {
		return 1
	}
	c := 1
	for _, ch := range el.Children {
		c += countNodes(ch)
	}
	return c
}

package document

import (
	"fmt"
	"strings"
)

// Mode selects which of several nested matches a query yields.
type Mode int

const (
	ModeAll Mode = iota
	ModeHighest
	ModeLowest
)

// Unit is the granularity of cursor movement and deletion.
type Unit int

const (
	UnitCharacter Unit = iota
	UnitWord
	UnitLine
	UnitBlock
)

// Direction tells deleteFragment which way the user was deleting.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Edge selects the start or end of a location.
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

// MatchFunc selects nodes in queries and transforms.
type MatchFunc func(n Node, p Path) bool

// NodesOptions controls Nodes.
type NodesOptions struct {
	At      Location // defaults to the selection
	Match   MatchFunc
	Mode    Mode
	Reverse bool
	Voids   bool // descend into void elements
}

// Node returns the node at p.
func (ed *Editor) Node(p Path) (Node, error) {
	return nodeAt(ed.root, p)
}

// Has reports whether a node exists at p.
func (ed *Editor) Has(p Path) bool {
	_, err := nodeAt(ed.root, p)
	return err == nil
}

// Element returns the element at p.
func (ed *Editor) Element(p Path) (*Element, error) {
	n, err := nodeAt(ed.root, p)
	if err != nil {
		return nil, err
	}
	el, ok := n.(*Element)
	if !ok {
		return nil, fmt.Errorf("%w: node at %s is text", ErrInvalidPath, p)
	}
	return el, nil
}

// Leaf returns the text at p.
func (ed *Editor) Leaf(p Path) (*Text, error) {
	return textAt(ed.root, p)
}

// Parent returns the parent element of the node at p.
func (ed *Editor) Parent(p Path) (*Element, error) {
	el, _, err := parentAndIndex(ed.root, p)
	return el, err
}

// MatchPath returns a matcher for exactly the node currently at p.
func (ed *Editor) MatchPath(p Path) MatchFunc {
	target, err := nodeAt(ed.root, p)
	if err != nil {
		return func(Node, Path) bool { return false }
	}
	return func(n Node, _ Path) bool { return n == target }
}

// MatchBlock matches block elements.
func (ed *Editor) MatchBlock() MatchFunc {
	return func(n Node, _ Path) bool { return ed.IsBlock(n) }
}

// MatchType matches elements of any of the given types.
func MatchType(types ...string) MatchFunc {
	return func(n Node, _ Path) bool { return IsType(n, types...) }
}

// MatchText matches text leaves.
func MatchText(n Node, _ Path) bool { return IsText(n) }

// walk lists every node in document order.
func (ed *Editor) walk(includeRoot bool) []NodeEntry {
	var out []NodeEntry
	ed.traverse(nil, nil, false, nil, func(e NodeEntry) bool {
		if len(e.Path) > 0 || includeRoot {
			out = append(out, e)
		}
		return true
	})
	return out
}

// traverse visits nodes in document order (parents before children)
// between from and to. pass stops descent into an element.
func (ed *Editor) traverse(from, to Path, reverse bool, pass func(NodeEntry) bool, yield func(NodeEntry) bool) {
	var visit func(n Node, p Path) bool
	visit = func(n Node, p Path) bool {
		if to != nil && ((reverse && p.IsBefore(to)) || (!reverse && p.IsAfter(to))) {
			return false
		}
		entry := NodeEntry{Node: n, Path: p}
		if !yield(entry) {
			return false
		}
		el, ok := n.(*Element)
		if !ok || len(el.Children) == 0 || (pass != nil && pass(entry)) {
			return true
		}
		if !reverse {
			start := 0
			if p.IsAncestor(from) {
				start = from[len(p)]
			}
			for i := start; i < len(el.Children); i++ {
				if !visit(el.Children[i], p.Child(i)) {
					return false
				}
			}
			return true
		}
		start := len(el.Children) - 1
		if p.IsAncestor(from) {
			start = from[len(p)]
		}
		for i := start; i >= 0; i-- {
			if !visit(el.Children[i], p.Child(i)) {
				return false
			}
		}
		return true
	}
	visit(ed.root, Path{})
}

// Nodes lists the nodes within a location that satisfy Match, in document
// order. The root is never yielded.
func (ed *Editor) Nodes(opts NodesOptions) []NodeEntry {
	at := opts.At
	if at == nil {
		if ed.selection == nil {
			return nil
		}
		at = *ed.selection
	}
	first, err := ed.PathOf(at, EdgeStart)
	if err != nil {
		return nil
	}
	last, err := ed.PathOf(at, EdgeEnd)
	if err != nil {
		return nil
	}
	from, to := first, last
	if opts.Reverse {
		from, to = last, first
	}
	return ed.nodesSpan(from, to, opts)
}

func (ed *Editor) nodesSpan(from, to Path, opts NodesOptions) []NodeEntry {
	match := opts.Match
	if match == nil {
		match = func(Node, Path) bool { return true }
	}
	var pass func(NodeEntry) bool
	if !opts.Voids {
		pass = func(e NodeEntry) bool {
			el, ok := e.Node.(*Element)
			return ok && len(e.Path) > 0 && ed.IsVoid(el)
		}
	}

	var out []NodeEntry
	var hit *NodeEntry
	ed.traverse(from, to, opts.Reverse, pass, func(e NodeEntry) bool {
		if len(e.Path) == 0 {
			return true
		}
		isLower := hit != nil && e.Path.Compare(hit.Path) == 0
		if opts.Mode == ModeHighest && isLower {
			return true
		}
		if !match(e.Node, e.Path) {
			return true
		}
		if opts.Mode == ModeLowest && isLower {
			entry := e
			hit = &entry
			return true
		}
		if opts.Mode == ModeLowest {
			if hit != nil {
				out = append(out, *hit)
			}
		} else {
			out = append(out, e)
		}
		entry := e
		hit = &entry
		return true
	})
	if opts.Mode == ModeLowest && hit != nil {
		out = append(out, *hit)
	}
	return out
}

// AboveOptions controls Above.
type AboveOptions struct {
	At    Location // defaults to the selection
	Match MatchFunc
	Mode  Mode // ModeLowest (default) or ModeHighest
	Voids bool
}

// Above returns the closest ancestor of a location that satisfies Match.
// For a path or point the node at the path itself is not considered; for a
// range the ancestor must contain both ends.
func (ed *Editor) Above(opts AboveOptions) (NodeEntry, bool) {
	at := opts.At
	if at == nil {
		if ed.selection == nil {
			return NodeEntry{}, false
		}
		at = *ed.selection
	}
	var path Path
	switch at := at.(type) {
	case Path:
		path = at
	case Point:
		path = at.Path
	case Range:
		path = at.Anchor.Path.Common(at.Focus.Path)
	}
	levels := ed.Levels(path)
	if opts.Mode != ModeHighest {
		reverseEntries(levels)
	}
	for _, e := range levels {
		if IsText(e.Node) {
			continue
		}
		if opts.Match != nil && !opts.Match(e.Node, e.Path) {
			continue
		}
		if r, isRange := at.(Range); isRange {
			if e.Path.IsAncestor(r.Anchor.Path) && e.Path.IsAncestor(r.Focus.Path) {
				return e, true
			}
			continue
		}
		if !e.Path.Equals(path) {
			return e, true
		}
	}
	return NodeEntry{}, false
}

// Levels lists the nodes from the top-level ancestor of p down to p.
func (ed *Editor) Levels(p Path) []NodeEntry {
	var out []NodeEntry
	var n Node = ed.root
	for i, idx := range p {
		el, ok := n.(*Element)
		if !ok || idx < 0 || idx >= len(el.Children) {
			break
		}
		n = el.Children[idx]
		out = append(out, NodeEntry{Node: n, Path: p[:i+1].Clone()})
	}
	return out
}

// Block returns the lowest block containing the location.
func (ed *Editor) Block(at Location) (NodeEntry, bool) {
	if p, ok := at.(Path); ok {
		if n, err := ed.Node(p); err == nil && ed.IsBlock(n) {
			if !ed.hasBlockChildren(n.(*Element)) {
				return NodeEntry{Node: n, Path: p.Clone()}, true
			}
		}
	}
	return ed.Above(AboveOptions{At: at, Match: ed.MatchBlock()})
}

func (ed *Editor) hasBlockChildren(el *Element) bool {
	return len(el.Children) > 0 && ed.IsBlock(el.Children[0])
}

// Previous returns the closest matching node that ends before the location.
func (ed *Editor) Previous(at Location, match MatchFunc, mode Mode) (NodeEntry, bool) {
	before, ok := ed.Before(at, UnitCharacter)
	if !ok {
		return NodeEntry{}, false
	}
	first, ok := ed.First(Path{})
	if !ok {
		return NodeEntry{}, false
	}
	if match == nil {
		match = ed.siblingMatch(at)
	}
	if mode == ModeAll {
		mode = ModeLowest
	}
	entries := ed.nodesSpan(before.Path, first.Path, NodesOptions{Match: match, Mode: mode, Reverse: true})
	if len(entries) == 0 {
		return NodeEntry{}, false
	}
	return entries[0], true
}

// Next returns the closest matching node that starts after the location.
func (ed *Editor) Next(at Location, match MatchFunc, mode Mode) (NodeEntry, bool) {
	after, ok := ed.After(at, UnitCharacter)
	if !ok {
		return NodeEntry{}, false
	}
	last, ok := ed.Last(Path{})
	if !ok {
		return NodeEntry{}, false
	}
	if match == nil {
		match = ed.siblingMatch(at)
	}
	if mode == ModeAll {
		mode = ModeLowest
	}
	entries := ed.nodesSpan(after.Path, last.Path, NodesOptions{Match: match, Mode: mode})
	if len(entries) == 0 {
		return NodeEntry{}, false
	}
	return entries[0], true
}

func (ed *Editor) siblingMatch(at Location) MatchFunc {
	p, isPath := at.(Path)
	if !isPath || len(p) == 0 {
		return func(Node, Path) bool { return true }
	}
	parent, err := ed.Parent(p)
	if err != nil {
		return func(Node, Path) bool { return false }
	}
	return func(n Node, _ Path) bool {
		for _, ch := range parent.Children {
			if ch == n {
				return true
			}
		}
		return false
	}
}

// First returns the first text leaf at or below p.
func (ed *Editor) First(p Path) (NodeEntry, bool) {
	return ed.leafEdge(p, EdgeStart)
}

// Last returns the last text leaf at or below p.
func (ed *Editor) Last(p Path) (NodeEntry, bool) {
	return ed.leafEdge(p, EdgeEnd)
}

func (ed *Editor) leafEdge(p Path, edge Edge) (NodeEntry, bool) {
	n, err := ed.Node(p)
	if err != nil {
		return NodeEntry{}, false
	}
	path := p.Clone()
	for {
		el, ok := n.(*Element)
		if !ok {
			return NodeEntry{Node: n, Path: path}, true
		}
		if len(el.Children) == 0 {
			return NodeEntry{Node: n, Path: path}, true
		}
		i := 0
		if edge == EdgeEnd {
			i = len(el.Children) - 1
		}
		n = el.Children[i]
		path = append(path, i)
	}
}

// PathOf resolves a location to a path. A range resolves to the leaf at
// the requested edge.
func (ed *Editor) PathOf(at Location, edge Edge) (Path, error) {
	switch at := at.(type) {
	case Path:
		e, ok := ed.leafEdge(at, edge)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPath, at)
		}
		return e.Path, nil
	case Point:
		return at.Path.Clone(), nil
	case Range:
		if edge == EdgeStart {
			return at.Start().Path.Clone(), nil
		}
		return at.End().Path.Clone(), nil
	}
	return nil, fmt.Errorf("%w: nil location", ErrInvalidPath)
}

// PointOf resolves a location to a point at the requested edge.
func (ed *Editor) PointOf(at Location, edge Edge) (Point, bool) {
	switch at := at.(type) {
	case Point:
		return at, true
	case Range:
		if edge == EdgeStart {
			return at.Start(), true
		}
		return at.End(), true
	case Path:
		e, ok := ed.leafEdge(at, edge)
		if !ok {
			return Point{}, false
		}
		t, isText := e.Node.(*Text)
		if !isText {
			return Point{}, false
		}
		if edge == EdgeStart {
			return Point{Path: e.Path, Offset: 0}, true
		}
		return Point{Path: e.Path, Offset: len(t.Text)}, true
	}
	return Point{}, false
}

// Start returns the start point of a location.
func (ed *Editor) Start(at Location) (Point, bool) { return ed.PointOf(at, EdgeStart) }

// End returns the end point of a location.
func (ed *Editor) End(at Location) (Point, bool) { return ed.PointOf(at, EdgeEnd) }

// RangeOf returns the range from the start of at to the end of to.
func (ed *Editor) RangeOf(at, to Location) (Range, bool) {
	s, ok := ed.Start(at)
	if !ok {
		return Range{}, false
	}
	e, ok := ed.End(to)
	if !ok {
		return Range{}, false
	}
	return Range{Anchor: s, Focus: e}, true
}

func (ed *Editor) IsStart(pt Point, at Location) bool {
	s, ok := ed.Start(at)
	return ok && pt.Equals(s)
}

func (ed *Editor) IsEnd(pt Point, at Location) bool {
	e, ok := ed.End(at)
	return ok && pt.Equals(e)
}

func (ed *Editor) IsEdge(pt Point, at Location) bool {
	return ed.IsStart(pt, at) || ed.IsEnd(pt, at)
}

// IsEmpty reports whether an element holds nothing but one empty text.
func (ed *Editor) IsEmpty(el *Element) bool {
	if len(el.Children) == 0 {
		return true
	}
	if len(el.Children) != 1 {
		return false
	}
	t, ok := el.Children[0].(*Text)
	return ok && t.Text == "" && !ed.IsVoid(el)
}

// String returns the text content of a location.
func (ed *Editor) String(at Location) string {
	if p, ok := at.(Path); ok {
		n, err := ed.Node(p)
		if err != nil {
			return ""
		}
		return TextContent(n)
	}
	r, ok := at.(Range)
	if !ok {
		return ""
	}
	start, end := r.Edges()
	var b strings.Builder
	for _, e := range ed.Nodes(NodesOptions{At: r, Match: MatchText}) {
		t := e.Node.(*Text).Text
		from, to := 0, len(t)
		if e.Path.Equals(start.Path) {
			from = start.Offset
		}
		if e.Path.Equals(end.Path) {
			to = end.Offset
		}
		if from < to {
			b.WriteString(t[from:to])
		}
	}
	return b.String()
}

// Void returns the closest void element above a location.
func (ed *Editor) Void(at Location, mode Mode) (NodeEntry, bool) {
	return ed.Above(AboveOptions{
		At:   at,
		Mode: mode,
		Match: func(n Node, _ Path) bool {
			el, ok := n.(*Element)
			return ok && ed.IsVoid(el)
		},
	})
}

// texts lists every text leaf outside void elements.
func (ed *Editor) texts() []NodeEntry {
	var out []NodeEntry
	ed.traverse(nil, nil, false, func(e NodeEntry) bool {
		el, ok := e.Node.(*Element)
		return ok && len(e.Path) > 0 && ed.IsVoid(el)
	}, func(e NodeEntry) bool {
		if IsText(e.Node) {
			out = append(out, e)
			return true
		}
		if el, ok := e.Node.(*Element); ok && len(e.Path) > 0 && ed.IsVoid(el) {
			if first, found := ed.First(e.Path); found && IsText(first.Node) {
				out = append(out, first)
			}
		}
		return true
	})
	return out
}

func (ed *Editor) sameBlock(a, b Path) bool {
	ba, okA := ed.Above(AboveOptions{At: a, Match: ed.MatchBlock()})
	bb, okB := ed.Above(AboveOptions{At: b, Match: ed.MatchBlock()})
	return okA && okB && ba.Path.Equals(bb.Path)
}

// Before returns the point one unit before the location.
func (ed *Editor) Before(at Location, unit Unit) (Point, bool) {
	pt, ok := ed.PointOf(at, EdgeStart)
	if !ok {
		return Point{}, false
	}
	texts := ed.texts()
	idx := indexOfText(texts, pt.Path)
	if idx < 0 {
		return Point{}, false
	}

	if unit == UnitLine || unit == UnitBlock {
		block, found := ed.Block(pt.Path)
		if found {
			if start, okS := ed.Start(block.Path); okS && !start.Equals(pt) {
				return start, true
			}
		}
		if idx == 0 {
			return Point{}, false
		}
		prev := texts[idx-1]
		return Point{Path: prev.Path, Offset: len(prev.Node.(*Text).Text)}, true
	}

	for {
		t := texts[idx].Node.(*Text).Text
		if pt.Offset > 0 {
			return Point{Path: pt.Path, Offset: pt.Offset - stepBack(t, pt.Offset, unit)}, true
		}
		if idx == 0 {
			return Point{}, false
		}
		prev := texts[idx-1]
		end := Point{Path: prev.Path, Offset: len(prev.Node.(*Text).Text)}
		if !ed.sameBlock(prev.Path, pt.Path) {
			return end, true
		}
		pt = end
		idx--
	}
}

// After returns the point one unit after the location.
func (ed *Editor) After(at Location, unit Unit) (Point, bool) {
	pt, ok := ed.PointOf(at, EdgeEnd)
	if !ok {
		return Point{}, false
	}
	texts := ed.texts()
	idx := indexOfText(texts, pt.Path)
	if idx < 0 {
		return Point{}, false
	}

	if unit == UnitLine || unit == UnitBlock {
		block, found := ed.Block(pt.Path)
		if found {
			if end, okE := ed.End(block.Path); okE && !end.Equals(pt) {
				return end, true
			}
		}
		if idx == len(texts)-1 {
			return Point{}, false
		}
		return Point{Path: texts[idx+1].Path, Offset: 0}, true
	}

	for {
		t := texts[idx].Node.(*Text).Text
		if pt.Offset < len(t) {
			return Point{Path: pt.Path, Offset: pt.Offset + stepForward(t, pt.Offset, unit)}, true
		}
		if idx == len(texts)-1 {
			return Point{}, false
		}
		next := texts[idx+1]
		start := Point{Path: next.Path, Offset: 0}
		if !ed.sameBlock(next.Path, pt.Path) {
			return start, true
		}
		pt = start
		idx++
	}
}

func indexOfText(texts []NodeEntry, p Path) int {
	for i, e := range texts {
		if e.Path.Equals(p) {
			return i
		}
	}
	// A point inside a void element sits on the void's first text.
	for i, e := range texts {
		if e.Path.Compare(p) == 0 {
			return i
		}
	}
	return -1
}

// Marks returns the marks that text typed at the selection would receive.
func (ed *Editor) Marks() Props {
	if ed.marks != nil {
		return ed.marks.Clone()
	}
	if ed.selection == nil {
		return nil
	}
	if ed.selection.IsExpanded() {
		entries := ed.Nodes(NodesOptions{Match: MatchText})
		if len(entries) == 0 {
			return Props{}
		}
		return entries[0].Node.(*Text).Marks.Clone()
	}
	anchor := ed.selection.Anchor
	t, err := ed.Leaf(anchor.Path)
	if err != nil {
		return nil
	}
	node := t
	if anchor.Offset == 0 {
		prev, ok := ed.Previous(anchor.Path, MatchText, ModeLowest)
		if ok && ed.sameBlock(prev.Path, anchor.Path) {
			node = prev.Node.(*Text)
		}
	}
	m := node.Marks.Clone()
	if m == nil {
		m = Props{}
	}
	return m
}

func reverseEntries(s []NodeEntry) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

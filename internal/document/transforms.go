package document

import (
	"fmt"
	"reflect"
)

// NodeOptions controls the node transforms. Fields a transform does not use
// are ignored.
type NodeOptions struct {
	At    Location // defaults to the selection
	Match MatchFunc
	Mode  Mode
	Voids bool

	// Split splits text or blocks at the edges of a range before acting.
	Split bool
	// Select moves the selection to the end of inserted nodes.
	Select bool
	// Always splits even when the point is at an edge.
	Always bool
	// Height is how many levels above the point a split starts.
	Height int
	// To is the destination path for MoveNodes.
	To Path
}

// edit runs fn as a single logical edit and returns its error.
func (ed *Editor) edit(fn func() error) error {
	var err error
	ed.WithoutNormalizing(func() { err = fn() })
	return err
}

func (ed *Editor) resolveAt(at Location) (Location, bool) {
	if at != nil {
		return at, true
	}
	if ed.selection == nil {
		return nil, false
	}
	return *ed.selection, true
}

func (ed *Editor) defaultMatch(at Location) MatchFunc {
	if p, ok := at.(Path); ok {
		return ed.MatchPath(p)
	}
	return ed.MatchBlock()
}

func lowestByDefault(m Mode) Mode {
	if m == ModeAll {
		return ModeLowest
	}
	return m
}

func (ed *Editor) entryRefs(entries []NodeEntry) []*PathRef {
	refs := make([]*PathRef, len(entries))
	for i, e := range entries {
		refs[i] = ed.PathRef(e.Path, AffinityForward)
	}
	return refs
}

// InsertNodes inserts nodes at a location. At a point the text or block is
// split first; inserting at the end of a block goes after it.
func (ed *Editor) InsertNodes(nodes []Node, opts NodeOptions) error {
	if len(nodes) == 0 {
		return nil
	}
	return ed.edit(func() error {
		at := opts.At
		selectAfter := opts.Select
		if at == nil {
			if ed.selection != nil {
				at = *ed.selection
			} else {
				at = Path{len(ed.root.Children)}
			}
			selectAfter = true
		}
		mode := lowestByDefault(opts.Mode)

		if r, ok := at.(Range); ok {
			if r.IsCollapsed() {
				at = r.Anchor
			} else {
				ref := ed.PointRef(r.End(), AffinityForward)
				if err := ed.deleteRange(r, opts.Voids, false, false); err != nil {
					ref.Unref()
					return err
				}
				pt, found := ref.Unref()
				if !found {
					return nil
				}
				at = pt
			}
		}

		if pt, ok := at.(Point); ok {
			match := opts.Match
			if match == nil {
				first := nodes[0]
				if IsText(first) || ed.IsInline(AsElement(first)) {
					match = func(n Node, _ Path) bool { return IsText(n) || ed.IsInline(AsElement(n)) }
				} else {
					match = ed.MatchBlock()
				}
			}
			entries := ed.Nodes(NodesOptions{At: pt.Path, Match: match, Mode: mode, Voids: opts.Voids})
			if len(entries) == 0 {
				return nil
			}
			matchPath := entries[0].Path
			ref := ed.PathRef(matchPath, AffinityForward)
			isAtEnd := ed.IsEnd(pt, matchPath)
			if err := ed.SplitNodes(NodeOptions{At: pt, Match: match, Mode: mode, Voids: opts.Voids}); err != nil {
				ref.Unref()
				return err
			}
			path, found := ref.Unref()
			if !found {
				return nil
			}
			if isAtEnd {
				at = path.Next()
			} else {
				at = path
			}
		}

		path, ok := at.(Path)
		if !ok || len(path) == 0 {
			return fmt.Errorf("%w: cannot insert at %v", ErrInvalidPath, at)
		}
		parentPath := path.Parent()
		if !opts.Voids {
			if parent, err := ed.Element(parentPath); err == nil && len(parentPath) > 0 && ed.IsVoid(parent) {
				return nil
			}
			if _, inVoid := ed.Void(parentPath, ModeHighest); inVoid {
				return nil
			}
		}
		index := path.Last()
		for _, n := range nodes {
			if err := ed.apply(Operation{Type: OpInsertNode, Path: parentPath.Child(index), Node: n}); err != nil {
				return err
			}
			index++
		}
		if selectAfter {
			if end, found := ed.End(parentPath.Child(index - 1)); found {
				return ed.Select(end)
			}
		}
		return nil
	})
}

// RemoveNodes removes the matching nodes.
func (ed *Editor) RemoveNodes(opts NodeOptions) error {
	return ed.edit(func() error {
		at, ok := ed.resolveAt(opts.At)
		if !ok {
			return nil
		}
		match := opts.Match
		if match == nil {
			match = ed.defaultMatch(at)
		}
		entries := ed.Nodes(NodesOptions{At: at, Match: match, Mode: lowestByDefault(opts.Mode), Voids: opts.Voids})
		for _, ref := range ed.entryRefs(entries) {
			path, found := ref.Unref()
			if !found {
				continue
			}
			node, err := ed.Node(path)
			if err != nil {
				return err
			}
			if err := ed.apply(Operation{Type: OpRemoveNode, Path: path, Node: node.Clone()}); err != nil {
				return err
			}
		}
		return nil
	})
}

// MoveNodes moves the matching nodes to opts.To, keeping their order.
func (ed *Editor) MoveNodes(opts NodeOptions) error {
	return ed.edit(func() error {
		at, ok := ed.resolveAt(opts.At)
		if !ok {
			return nil
		}
		match := opts.Match
		if match == nil {
			match = ed.defaultMatch(at)
		}
		toRef := ed.PathRef(opts.To, AffinityForward)
		defer toRef.Unref()
		entries := ed.Nodes(NodesOptions{At: at, Match: match, Mode: lowestByDefault(opts.Mode), Voids: opts.Voids})
		for _, ref := range ed.entryRefs(entries) {
			path, found := ref.Unref()
			if !found {
				continue
			}
			newPath, found := toRef.Current()
			if !found {
				return fmt.Errorf("%w: move destination removed", ErrInvalidPath)
			}
			if len(path) != 0 {
				if err := ed.apply(Operation{Type: OpMoveNode, Path: path, NewPath: newPath}); err != nil {
					return err
				}
			}
			if cur, still := toRef.Current(); still && newPath.IsSibling(path) && newPath.IsAfter(path) {
				toRef.current = cur.Next()
			}
		}
		return nil
	})
}

func propOf(n Node, key string) (any, bool) {
	switch n := n.(type) {
	case *Element:
		return n.Prop(key)
	case *Text:
		v, ok := n.Marks[key]
		return v, ok
	}
	return nil, false
}

// SetNodes sets properties on the matching nodes. A nil value unsets the
// key. On text leaves the properties are marks.
func (ed *Editor) SetNodes(props Props, opts NodeOptions) error {
	return ed.edit(func() error {
		at, ok := ed.resolveAt(opts.At)
		if !ok {
			return nil
		}
		match := opts.Match
		if match == nil {
			match = ed.defaultMatch(at)
		}
		mode := lowestByDefault(opts.Mode)

		if r, isRange := at.(Range); isRange && opts.Split {
			if r.IsCollapsed() {
				if t, err := ed.Leaf(r.Anchor.Path); err == nil && t.Text != "" {
					return nil
				}
			}
			rangeRef := ed.RangeRef(r, AffinityInward)
			start, end := r.Edges()
			splitMode := ModeHighest
			if mode == ModeLowest {
				splitMode = ModeLowest
			}
			endAtEnd := ed.IsEnd(end, end.Path)
			if err := ed.SplitNodes(NodeOptions{At: end, Match: match, Mode: splitMode, Voids: opts.Voids, Always: !endAtEnd}); err != nil {
				rangeRef.Unref()
				return err
			}
			startAtStart := ed.IsStart(start, start.Path)
			if err := ed.SplitNodes(NodeOptions{At: start, Match: match, Mode: splitMode, Voids: opts.Voids, Always: !startAtStart}); err != nil {
				rangeRef.Unref()
				return err
			}
			nr, found := rangeRef.Unref()
			if !found {
				return nil
			}
			at = nr
			if opts.At == nil {
				if err := ed.Select(nr); err != nil {
					return err
				}
			}
		}

		for _, e := range ed.Nodes(NodesOptions{At: at, Match: match, Mode: mode, Voids: opts.Voids}) {
			old, next := Props{}, Props{}
			changed := false
			for k, v := range props {
				cur, has := propOf(e.Node, k)
				if v == nil {
					if has {
						changed = true
						old[k] = cur
					}
					continue
				}
				if has && reflect.DeepEqual(cur, v) {
					continue
				}
				changed = true
				if has {
					old[k] = cur
				}
				next[k] = v
			}
			if !changed {
				continue
			}
			if err := ed.apply(Operation{Type: OpSetNode, Path: e.Path, Properties: old, NewProperties: next}); err != nil {
				return err
			}
		}
		return nil
	})
}

// UnsetNodes removes properties from the matching nodes.
func (ed *Editor) UnsetNodes(keys []string, opts NodeOptions) error {
	props := make(Props, len(keys))
	for _, k := range keys {
		props[k] = nil
	}
	return ed.SetNodes(props, opts)
}

// SplitNodes splits the matching ancestors of a point so the content after
// the point starts new nodes. At a path, the parent is split so the node at
// the path starts the new sibling.
func (ed *Editor) SplitNodes(opts NodeOptions) error {
	return ed.edit(func() error {
		at, ok := ed.resolveAt(opts.At)
		if !ok {
			return nil
		}
		match := opts.Match
		if match == nil {
			match = ed.MatchBlock()
		}
		mode := lowestByDefault(opts.Mode)
		always := opts.Always
		height := opts.Height

		if r, isRange := at.(Range); isRange {
			if r.IsCollapsed() {
				at = r.Anchor
			} else {
				ref := ed.PointRef(r.End(), AffinityForward)
				if err := ed.deleteRange(r, opts.Voids, false, false); err != nil {
					ref.Unref()
					return err
				}
				pt, found := ref.Unref()
				if !found {
					return nil
				}
				at = pt
			}
		}

		if p, isPath := at.(Path); isPath {
			pt, found := ed.Start(p)
			if !found {
				return fmt.Errorf("%w: no point at %s", ErrInvalidPath, p)
			}
			parent, err := ed.Parent(p)
			if err != nil {
				return err
			}
			match = func(n Node, _ Path) bool { return n == parent }
			height = len(pt.Path) - len(p) + 1
			at = pt
			always = true
		}

		pt, isPoint := at.(Point)
		if !isPoint {
			return nil
		}
		beforeRef := ed.PointRef(pt, AffinityBackward)
		defer beforeRef.Unref()
		highest := ed.Nodes(NodesOptions{At: pt, Match: match, Mode: mode, Voids: opts.Voids})
		if len(highest) == 0 {
			return nil
		}
		highestPath := highest[0].Path
		afterRef := ed.PointRef(pt, AffinityForward)
		defer afterRef.Unref()

		depth := len(pt.Path) - height
		if depth < 0 {
			return fmt.Errorf("%w: split height %d too large", ErrInvalidOperation, height)
		}
		position := pt.Offset
		if height != 0 {
			position = pt.Path[depth]
		}
		levels := ed.Levels(pt.Path[:depth])
		reverseEntries(levels)
		for _, lv := range levels {
			if len(lv.Path) < len(highestPath) {
				break
			}
			if el, isEl := lv.Node.(*Element); isEl && !opts.Voids && ed.IsVoid(el) {
				break
			}
			cur, _ := beforeRef.Current()
			isEnd := ed.IsEnd(cur, lv.Path)
			split := false
			if always || !ed.IsEdge(cur, lv.Path) {
				split = true
				op := Operation{Type: OpSplitNode, Path: lv.Path, Position: position, Properties: extractProps(lv.Node)}
				if err := ed.apply(op); err != nil {
					return err
				}
			}
			position = lv.Path.Last()
			if split || isEnd {
				position++
			}
		}

		if opts.At == nil {
			p, found := afterRef.Current()
			if !found {
				p, _ = ed.End(Path{})
			}
			return ed.Select(p)
		}
		return nil
	})
}

// WrapNodes wraps the matching nodes in a copy of wrapper. Sibling matches
// share one wrapper.
func (ed *Editor) WrapNodes(wrapper *Element, opts NodeOptions) error {
	return ed.edit(func() error {
		at, ok := ed.resolveAt(opts.At)
		if !ok {
			return nil
		}
		mode := lowestByDefault(opts.Mode)
		inline := ed.IsInline(wrapper)
		match := opts.Match
		if match == nil {
			switch {
			case isPathLocation(at):
				match = ed.MatchPath(at.(Path))
			case inline:
				match = func(n Node, _ Path) bool { return IsText(n) || ed.IsInline(AsElement(n)) }
			default:
				match = ed.MatchBlock()
			}
		}

		if r, isRange := at.(Range); isRange && opts.Split {
			rangeRef := ed.RangeRef(r, AffinityInward)
			start, end := r.Edges()
			splitMode := ModeHighest
			if mode == ModeLowest {
				splitMode = ModeLowest
			}
			if err := ed.SplitNodes(NodeOptions{At: end, Match: match, Mode: splitMode, Voids: opts.Voids}); err != nil {
				rangeRef.Unref()
				return err
			}
			if err := ed.SplitNodes(NodeOptions{At: start, Match: match, Mode: splitMode, Voids: opts.Voids}); err != nil {
				rangeRef.Unref()
				return err
			}
			nr, found := rangeRef.Unref()
			if !found {
				return nil
			}
			at = nr
			if opts.At == nil {
				if err := ed.Select(nr); err != nil {
					return err
				}
			}
		}

		var roots []NodeEntry
		if inline {
			roots = ed.Nodes(NodesOptions{At: at, Match: ed.MatchBlock(), Mode: ModeLowest, Voids: opts.Voids})
		} else {
			roots = []NodeEntry{{Node: ed.root, Path: Path{}}}
		}

		for _, root := range roots {
			a := at
			if r, isRange := at.(Range); isRange {
				rootRange, found := ed.RangeOf(root.Path, root.Path)
				if !found {
					continue
				}
				inter, overlaps := r.Intersection(rootRange)
				if !overlaps {
					continue
				}
				a = inter
			}
			matches := ed.Nodes(NodesOptions{At: a, Match: match, Mode: mode, Voids: opts.Voids})
			if len(matches) == 0 {
				continue
			}
			firstPath := matches[0].Path
			lastPath := matches[len(matches)-1].Path
			commonPath := firstPath.Common(lastPath)
			if firstPath.Equals(lastPath) {
				commonPath = firstPath.Parent()
			}
			rng, found := ed.RangeOf(firstPath, lastPath)
			if !found {
				continue
			}
			commonNode, err := ed.Element(commonPath)
			if err != nil {
				return err
			}
			depth := len(commonPath) + 1
			wrapperPath := lastPath[:depth].Next()
			w := &Element{Type: wrapper.Type, Props: wrapper.Props.Clone()}
			if err := ed.InsertNodes([]Node{w}, NodeOptions{At: wrapperPath, Voids: opts.Voids}); err != nil {
				return err
			}
			err = ed.MoveNodes(NodeOptions{
				At:    rng,
				Match: childOf(commonNode),
				To:    wrapperPath.Child(0),
				Voids: opts.Voids,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func isPathLocation(at Location) bool {
	_, ok := at.(Path)
	return ok
}

// childOf matches the current direct children of parent.
func childOf(parent *Element) MatchFunc {
	children := append([]Node(nil), parent.Children...)
	return func(n Node, _ Path) bool {
		for _, c := range children {
			if c == n {
				return true
			}
		}
		return false
	}
}

// UnwrapNodes replaces each matching element with its children.
func (ed *Editor) UnwrapNodes(opts NodeOptions) error {
	return ed.edit(func() error {
		at, ok := ed.resolveAt(opts.At)
		if !ok {
			return nil
		}
		match := opts.Match
		if match == nil {
			match = ed.defaultMatch(at)
		}
		var rangeRef *RangeRef
		if r, isRange := at.(Range); isRange && opts.Split {
			rangeRef = ed.RangeRef(r, AffinityInward)
			defer rangeRef.Unref()
		}
		entries := ed.Nodes(NodesOptions{At: at, Match: match, Mode: lowestByDefault(opts.Mode), Voids: opts.Voids})
		refs := ed.entryRefs(entries)
		for i := len(refs) - 1; i >= 0; i-- {
			path, found := refs[i].Unref()
			if !found {
				continue
			}
			el, err := ed.Element(path)
			if err != nil {
				return err
			}
			rng, found := ed.RangeOf(path, path)
			if !found {
				continue
			}
			if rangeRef != nil {
				if cur, still := rangeRef.Current(); still {
					if inter, overlaps := cur.Intersection(rng); overlaps {
						rng = inter
					}
				}
			}
			if err := ed.LiftNodes(NodeOptions{At: rng, Match: childOf(el), Voids: opts.Voids}); err != nil {
				return err
			}
		}
		return nil
	})
}

// LiftNodes moves each matching node up one level, splitting its parent
// when the node sits between siblings.
func (ed *Editor) LiftNodes(opts NodeOptions) error {
	return ed.edit(func() error {
		at, ok := ed.resolveAt(opts.At)
		if !ok {
			return nil
		}
		match := opts.Match
		if match == nil {
			match = ed.defaultMatch(at)
		}
		entries := ed.Nodes(NodesOptions{At: at, Match: match, Mode: lowestByDefault(opts.Mode), Voids: opts.Voids})
		for _, ref := range ed.entryRefs(entries) {
			path, found := ref.Unref()
			if !found {
				continue
			}
			if len(path) < 2 {
				return fmt.Errorf("%w: cannot lift node at depth %d", ErrInvalidOperation, len(path))
			}
			parentPath := path.Parent()
			parent, err := ed.Element(parentPath)
			if err != nil {
				return err
			}
			index := path.Last()
			length := len(parent.Children)
			switch {
			case length == 1:
				if err := ed.MoveNodes(NodeOptions{At: path, To: parentPath.Next(), Voids: opts.Voids}); err != nil {
					return err
				}
				if err := ed.RemoveNodes(NodeOptions{At: parentPath, Voids: opts.Voids}); err != nil {
					return err
				}
			case index == 0:
				if err := ed.MoveNodes(NodeOptions{At: path, To: parentPath, Voids: opts.Voids}); err != nil {
					return err
				}
			case index == length-1:
				if err := ed.MoveNodes(NodeOptions{At: path, To: parentPath.Next(), Voids: opts.Voids}); err != nil {
					return err
				}
			default:
				if err := ed.SplitNodes(NodeOptions{At: path.Next(), Voids: opts.Voids}); err != nil {
					return err
				}
				if err := ed.MoveNodes(NodeOptions{At: path, To: parentPath.Next(), Voids: opts.Voids}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// MergeNodes merges a node into its previous sibling. At a point, the
// lowest block is merged into the previous block, moving it next to that
// block first when they are not siblings.
func (ed *Editor) MergeNodes(opts NodeOptions) error {
	return ed.edit(func() error {
		at, ok := ed.resolveAt(opts.At)
		if !ok {
			return nil
		}
		if r, isRange := at.(Range); isRange {
			if r.IsCollapsed() {
				at = r.Anchor
			} else {
				ref := ed.PointRef(r.End(), AffinityForward)
				if err := ed.deleteRange(r, opts.Voids, false, false); err != nil {
					ref.Unref()
					return err
				}
				pt, found := ref.Unref()
				if !found {
					return nil
				}
				at = pt
			}
		}

		var cur, prev NodeEntry
		if p, isPath := at.(Path); isPath {
			node, err := ed.Node(p)
			if err != nil {
				return err
			}
			prevPath, err := p.Previous()
			if err != nil {
				return err
			}
			prevNode, err := ed.Node(prevPath)
			if err != nil {
				return err
			}
			cur = NodeEntry{Node: node, Path: p.Clone()}
			prev = NodeEntry{Node: prevNode, Path: prevPath}
		} else {
			match := opts.Match
			if match == nil {
				match = ed.MatchBlock()
			}
			mode := lowestByDefault(opts.Mode)
			entries := ed.Nodes(NodesOptions{At: at, Match: match, Mode: mode, Voids: opts.Voids})
			if len(entries) == 0 {
				return nil
			}
			cur = entries[0]
			var found bool
			prev, found = ed.Previous(at, match, mode)
			if !found {
				return nil
			}
		}
		return ed.mergeEntries(cur, prev, opts.Voids)
	})
}

func (ed *Editor) mergeEntries(cur, prev NodeEntry, voids bool) error {
	path, prevPath := cur.Path, prev.Path
	if len(path) == 0 || len(prevPath) == 0 {
		return nil
	}
	newPath := prevPath.Next()
	commonPath := path.Common(prevPath)
	isPreviousSibling := path.IsSibling(prevPath)

	var between []Node
	levels := ed.Levels(path)
	if len(levels) > len(commonPath) {
		for _, lv := range levels[len(commonPath) : len(levels)-1] {
			between = append(between, lv.Node)
		}
	}
	var emptyRef *PathRef
	if len(between) > 0 {
		empty, found := ed.Above(AboveOptions{
			At:   path,
			Mode: ModeHighest,
			Match: func(n Node, _ Path) bool {
				for _, b := range between {
					if b == n {
						return ed.hasSingleChildNest(n)
					}
				}
				return false
			},
		})
		if found {
			emptyRef = ed.PathRef(empty.Path, AffinityForward)
			defer emptyRef.Unref()
		}
	}

	var position int
	switch p := prev.Node.(type) {
	case *Text:
		if _, isText := cur.Node.(*Text); !isText {
			return fmt.Errorf("%w at %s", ErrMergeIncompatible, path)
		}
		position = len(p.Text)
	case *Element:
		if _, isEl := cur.Node.(*Element); !isEl {
			return fmt.Errorf("%w at %s", ErrMergeIncompatible, path)
		}
		position = len(p.Children)
	}
	properties := extractProps(cur.Node)

	if !isPreviousSibling {
		if err := ed.MoveNodes(NodeOptions{At: path, To: newPath, Voids: voids}); err != nil {
			return err
		}
	}
	if emptyRef != nil {
		if p, found := emptyRef.Current(); found {
			if err := ed.RemoveNodes(NodeOptions{At: p, Voids: voids}); err != nil {
				return err
			}
		}
	}

	prevEmpty := false
	switch p := prev.Node.(type) {
	case *Element:
		prevEmpty = ed.IsEmpty(p)
	case *Text:
		prevEmpty = p.Text == "" && prevPath.Last() != 0
	}
	if prevEmpty {
		return ed.RemoveNodes(NodeOptions{At: prevPath, Voids: voids})
	}
	return ed.apply(Operation{Type: OpMergeNode, Path: newPath, Position: position, Properties: properties})
}

func (ed *Editor) hasSingleChildNest(n Node) bool {
	el, ok := n.(*Element)
	if !ok {
		return true
	}
	if ed.IsVoid(el) {
		return true
	}
	if len(el.Children) == 1 {
		return ed.hasSingleChildNest(el.Children[0])
	}
	return false
}

// Select sets the selection. A path selects its whole content and a point
// collapses the selection there.
func (ed *Editor) Select(at Location) error {
	var r Range
	switch at := at.(type) {
	case Range:
		r = at
	case Point:
		r = Collapsed(at)
	case Path:
		rg, found := ed.RangeOf(at, at)
		if !found {
			return fmt.Errorf("%w: nothing to select at %s", ErrInvalidPath, at)
		}
		r = rg
	default:
		return fmt.Errorf("%w: nil location", ErrInvalidPath)
	}
	if ed.selection != nil && ed.selection.Anchor.Equals(r.Anchor) && ed.selection.Focus.Equals(r.Focus) {
		return nil
	}
	return ed.Apply(Operation{Type: OpSetSelection, Selection: ed.Selection(), NewSelection: &r})
}

// Deselect clears the selection.
func (ed *Editor) Deselect() error {
	if ed.selection == nil {
		return nil
	}
	return ed.Apply(Operation{Type: OpSetSelection, Selection: ed.Selection()})
}

// Collapse collapses the selection to one of its edges.
func (ed *Editor) Collapse(edge Edge) error {
	if ed.selection == nil {
		return nil
	}
	if edge == EdgeStart {
		return ed.Select(ed.selection.Start())
	}
	return ed.Select(ed.selection.End())
}

// Move moves a collapsed selection by one unit.
func (ed *Editor) Move(unit Unit, reverse bool) error {
	if ed.selection == nil {
		return nil
	}
	pt := ed.selection.Focus
	var next Point
	var ok bool
	if reverse {
		next, ok = ed.Before(pt, unit)
	} else {
		next, ok = ed.After(pt, unit)
	}
	if !ok {
		return nil
	}
	return ed.Select(next)
}

package document

import "fmt"

// Location is a Path, a Point or a Range.
type Location interface {
	location()
}

// Point is a byte offset inside the text leaf at Path.
type Point struct {
	Path   Path
	Offset int
}

func (Point) location() {}

func (p Point) String() string {
	return fmt.Sprintf("%s:%d", p.Path, p.Offset)
}

// Compare orders two points in document order.
func (p Point) Compare(o Point) int {
	if c := p.Path.Compare(o.Path); c != 0 {
		return c
	}
	switch {
	case p.Offset < o.Offset:
		return -1
	case p.Offset > o.Offset:
		return 1
	}
	return 0
}

func (p Point) Equals(o Point) bool {
	return p.Offset == o.Offset && p.Path.Equals(o.Path)
}

func (p Point) IsBefore(o Point) bool { return p.Compare(o) == -1 }
func (p Point) IsAfter(o Point) bool  { return p.Compare(o) == 1 }

// Transform returns where the point ends up after op, or false when the
// point no longer exists.
func (p Point) Transform(op Operation, affinity Affinity) (Point, bool) {
	r := Point{Path: p.Path.Clone(), Offset: p.Offset}
	switch op.Type {
	case OpInsertNode, OpMoveNode:
		path, ok := r.Path.Transform(op, affinity)
		if !ok {
			return Point{}, false
		}
		r.Path = path
	case OpInsertText:
		if op.Path.Equals(r.Path) && (op.Offset < r.Offset || (op.Offset == r.Offset && affinity == AffinityForward)) {
			r.Offset += len(op.Text)
		}
	case OpMergeNode:
		if op.Path.Equals(r.Path) {
			r.Offset += op.Position
		}
		path, _ := r.Path.Transform(op, affinity)
		r.Path = path
	case OpRemoveText:
		if op.Path.Equals(r.Path) && op.Offset <= r.Offset {
			r.Offset -= min(r.Offset-op.Offset, len(op.Text))
		}
	case OpRemoveNode:
		if op.Path.Equals(r.Path) || op.Path.IsAncestor(r.Path) {
			return Point{}, false
		}
		path, _ := r.Path.Transform(op, affinity)
		r.Path = path
	case OpSplitNode:
		if op.Path.Equals(r.Path) {
			if op.Position == r.Offset && affinity == AffinityNone {
				return Point{}, false
			}
			if op.Position < r.Offset || (op.Position == r.Offset && affinity == AffinityForward) {
				r.Offset -= op.Position
				path, _ := r.Path.Transform(op, AffinityForward)
				r.Path = path
			}
		} else {
			path, ok := r.Path.Transform(op, affinity)
			if !ok {
				return Point{}, false
			}
			r.Path = path
		}
	}
	return r, true
}

// Range spans from Anchor to Focus. Either may come first in the document.
type Range struct {
	Anchor Point
	Focus  Point
}

func (Range) location() {}

// Collapsed returns a range with both ends at p.
func Collapsed(p Point) Range {
	return Range{Anchor: p, Focus: p}
}

func (r Range) IsCollapsed() bool { return r.Anchor.Equals(r.Focus) }
func (r Range) IsExpanded() bool  { return !r.IsCollapsed() }
func (r Range) IsBackward() bool  { return r.Anchor.IsAfter(r.Focus) }

// Edges returns the start and end points in document order.
func (r Range) Edges() (Point, Point) {
	if r.IsBackward() {
		return r.Focus, r.Anchor
	}
	return r.Anchor, r.Focus
}

func (r Range) Start() Point { s, _ := r.Edges(); return s }
func (r Range) End() Point   { _, e := r.Edges(); return e }

// Includes reports whether the point lies within the range, edges included.
func (r Range) Includes(p Point) bool {
	s, e := r.Edges()
	return p.Compare(s) >= 0 && p.Compare(e) <= 0
}

// IncludesPath reports whether the path intersects the range.
func (r Range) IncludesPath(p Path) bool {
	s, e := r.Edges()
	return p.Compare(s.Path) >= 0 && p.Compare(e.Path) <= 0
}

// Intersection returns the overlap of two ranges.
func (r Range) Intersection(o Range) (Range, bool) {
	s1, e1 := r.Edges()
	s2, e2 := o.Edges()
	s := s1
	if s2.IsAfter(s1) {
		s = s2
	}
	e := e1
	if e2.IsBefore(e1) {
		e = e2
	}
	if e.IsBefore(s) {
		return Range{}, false
	}
	return Range{Anchor: s, Focus: e}, true
}

// Transform moves both ends of the range across op. Affinity inward keeps
// the ends from growing over content inserted at their edges.
func (r Range) Transform(op Operation, affinity Affinity) (Range, bool) {
	var af, ff Affinity
	switch affinity {
	case AffinityInward:
		collapsed := r.IsCollapsed()
		if !r.IsBackward() {
			af = AffinityForward
			ff = AffinityBackward
		} else {
			af = AffinityBackward
			ff = AffinityForward
		}
		if collapsed {
			ff = af
		}
	case AffinityOutward:
		if !r.IsBackward() {
			af = AffinityBackward
			ff = AffinityForward
		} else {
			af = AffinityForward
			ff = AffinityBackward
		}
	default:
		af, ff = affinity, affinity
	}
	a, ok := r.Anchor.Transform(op, af)
	if !ok {
		return Range{}, false
	}
	f, ok := r.Focus.Transform(op, ff)
	if !ok {
		return Range{}, false
	}
	return Range{Anchor: a, Focus: f}, true
}

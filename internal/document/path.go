package document

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Path addresses a node by the child indexes leading to it from the root.
// The empty path is the root.
type Path []int

// Affinity decides which side a point or path sticks to when content is
// inserted or split exactly at its position.
type Affinity int

const (
	AffinityForward Affinity = iota
	AffinityBackward
	AffinityNone
	AffinityInward
	AffinityOutward
)

func (p Path) location() {}

// Clone returns a copy that shares no memory with p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Compare returns -1, 0 or 1 comparing the paths over their common length.
// An ancestor compares equal to its descendants.
func (p Path) Compare(o Path) int {
	n := min(len(p), len(o))
	for i := 0; i < n; i++ {
		if p[i] < o[i] {
			return -1
		}
		if p[i] > o[i] {
			return 1
		}
	}
	return 0
}

func (p Path) Equals(o Path) bool {
	return len(p) == len(o) && p.Compare(o) == 0
}

// IsAncestor reports whether p is a strict ancestor of o.
func (p Path) IsAncestor(o Path) bool {
	return len(p) < len(o) && p.Compare(o) == 0
}

// IsCommon reports whether p is o or one of its ancestors.
func (p Path) IsCommon(o Path) bool {
	return len(p) <= len(o) && p.Compare(o) == 0
}

// IsParent reports whether p is the direct parent of o.
func (p Path) IsParent(o Path) bool {
	return len(p)+1 == len(o) && p.Compare(o) == 0
}

// IsSibling reports whether p and o share a parent and differ.
func (p Path) IsSibling(o Path) bool {
	if len(p) == 0 || len(p) != len(o) {
		return false
	}
	n := len(p) - 1
	return p[:n].Equals(o[:n]) && p[n] != o[n]
}

// EndsBefore reports whether p is a sibling-level predecessor of o at p's
// depth: same parent prefix and a smaller last index.
func (p Path) EndsBefore(o Path) bool {
	i := len(p) - 1
	if i < 0 || len(o) <= i {
		return false
	}
	return p[:i].Equals(o[:i]) && p[i] < o[i]
}

func (p Path) IsBefore(o Path) bool { return p.Compare(o) == -1 }
func (p Path) IsAfter(o Path) bool  { return p.Compare(o) == 1 }

// Parent returns the parent path. The root has no parent and returns nil.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1].Clone()
}

// Last returns the last index, or -1 for the root.
func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// Next returns the path of the following sibling.
func (p Path) Next() Path {
	if len(p) == 0 {
		return nil
	}
	n := p.Clone()
	n[len(n)-1]++
	return n
}

// HasPrevious reports whether p has a preceding sibling.
func (p Path) HasPrevious() bool {
	return len(p) > 0 && p[len(p)-1] > 0
}

// Previous returns the path of the preceding sibling.
func (p Path) Previous() (Path, error) {
	if !p.HasPrevious() {
		return nil, fmt.Errorf("%w: %s has no previous sibling", ErrInvalidPath, p)
	}
	n := p.Clone()
	n[len(n)-1]--
	return n, nil
}

// Child returns the path of the i-th child of p.
func (p Path) Child(i int) Path {
	return append(p.Clone(), i)
}

// Common returns the longest shared prefix of p and o.
func (p Path) Common(o Path) Path {
	var c Path
	for i := 0; i < len(p) && i < len(o); i++ {
		if p[i] != o[i] {
			break
		}
		c = append(c, p[i])
	}
	return c
}

// Ancestors lists every strict ancestor of p, the root first.
func (p Path) Ancestors() []Path {
	out := make([]Path, 0, len(p))
	for i := 0; i < len(p); i++ {
		out = append(out, p[:i].Clone())
	}
	return out
}

// Transform returns where p ends up after op is applied, or false when op
// removes the node at p.
func (p Path) Transform(op Operation, affinity Affinity) (Path, bool) {
	if len(p) == 0 {
		return p, true
	}
	r := p.Clone()
	switch op.Type {
	case OpInsertNode:
		o := op.Path
		if o.Equals(r) || o.EndsBefore(r) || o.IsAncestor(r) {
			r[len(o)-1]++
		}
	case OpRemoveNode:
		o := op.Path
		if o.Equals(r) || o.IsAncestor(r) {
			return nil, false
		}
		if o.EndsBefore(r) {
			r[len(o)-1]--
		}
	case OpMergeNode:
		o := op.Path
		if o.Equals(r) || o.EndsBefore(r) {
			r[len(o)-1]--
		} else if o.IsAncestor(r) {
			r[len(o)-1]--
			r[len(o)] += op.Position
		}
	case OpSplitNode:
		o := op.Path
		if o.Equals(r) {
			switch affinity {
			case AffinityForward:
				r[len(r)-1]++
			case AffinityBackward:
			default:
				return nil, false
			}
		} else if o.EndsBefore(r) {
			r[len(o)-1]++
		} else if o.IsAncestor(r) && r[len(o)] >= op.Position {
			r[len(o)-1]++
			r[len(o)] -= op.Position
		}
	case OpMoveNode:
		o, onp := op.Path, op.NewPath
		if o.Equals(onp) {
			return r, true
		}
		switch {
		case o.IsAncestor(r) || o.Equals(r):
			c := onp.Clone()
			if o.EndsBefore(onp) && len(o) < len(onp) {
				c[len(o)-1]--
			}
			return append(c, r[len(o):]...), true
		case o.IsSibling(onp) && (onp.IsAncestor(r) || onp.Equals(r)):
			if o.EndsBefore(r) {
				r[len(o)-1]--
			} else {
				r[len(o)-1]++
			}
		case onp.EndsBefore(r) || onp.Equals(r) || onp.IsAncestor(r):
			if o.EndsBefore(r) {
				r[len(o)-1]--
			}
			r[len(onp)-1]++
		case o.EndsBefore(r):
			if onp.Equals(r) {
				r[len(onp)-1]++
			}
			r[len(o)-1]--
		}
	}
	return r, true
}

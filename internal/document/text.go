package document

import (
	"context"

	"github.com/usekona/kona/internal/log"
)

// DeleteOptions controls Delete.
type DeleteOptions struct {
	At       Location // defaults to the selection
	Unit     Unit
	Distance int // units to delete from a point; defaults to 1
	Reverse  bool
	Voids    bool
}

// Delete removes content. At a point it removes Distance units in the chosen
// direction, at a path the node, and at a range everything inside it,
// merging the blocks at either end.
func (ed *Editor) Delete(opts DeleteOptions) error {
	return ed.edit(func() error {
		at, ok := ed.resolveAt(opts.At)
		if !ok {
			return nil
		}
		if r, isRange := at.(Range); isRange && r.IsCollapsed() {
			at = r.Anchor
		}
		if pt, isPoint := at.(Point); isPoint {
			if v, inVoid := ed.Void(pt, ModeHighest); inVoid && !opts.Voids {
				at = v.Path
			} else {
				distance := max(opts.Distance, 1)
				target := pt
				for range distance {
					var next Point
					var found bool
					if opts.Reverse {
						next, found = ed.Before(target, opts.Unit)
					} else {
						next, found = ed.After(target, opts.Unit)
					}
					if !found {
						break
					}
					target = next
				}
				at = Range{Anchor: pt, Focus: target}
			}
		}
		if p, isPath := at.(Path); isPath {
			return ed.RemoveNodes(NodeOptions{At: p, Voids: opts.Voids})
		}
		r := at.(Range)
		if r.IsCollapsed() {
			return nil
		}
		return ed.deleteRange(r, opts.Voids, opts.At == nil, opts.Reverse)
	})
}

// deleteRange removes the content of r. Nodes lying wholly inside are
// removed; the text of the boundary leaves is trimmed; the end block is
// merged into the start block when they differ.
func (ed *Editor) deleteRange(r Range, voids, selectAfter, reverse bool) error {
	return ed.edit(func() error {
		start, end := r.Edges()
		startBlock, hasStart := ed.Above(AboveOptions{At: start, Match: ed.MatchBlock(), Voids: voids})
		endBlock, hasEnd := ed.Above(AboveOptions{At: end, Match: ed.MatchBlock(), Voids: voids})
		acrossBlocks := hasStart && hasEnd && !startBlock.Path.Equals(endBlock.Path)
		singleText := start.Path.Equals(end.Path)

		var startVoid, endVoid bool
		if !voids {
			_, startVoid = ed.Void(start, ModeHighest)
			_, endVoid = ed.Void(end, ModeHighest)
		}

		startRef := ed.PointRef(start, AffinityForward)
		endRef := ed.PointRef(end, AffinityForward)
		defer startRef.Unref()
		defer endRef.Unref()

		var matches []NodeEntry
		var lastPath Path
		for _, e := range ed.Nodes(NodesOptions{At: Range{Anchor: start, Focus: end}, Voids: voids}) {
			if lastPath != nil && e.Path.Compare(lastPath) == 0 {
				continue
			}
			el, isEl := e.Node.(*Element)
			if (!voids && isEl && ed.IsVoid(el)) || (!e.Path.IsCommon(start.Path) && !e.Path.IsCommon(end.Path)) {
				matches = append(matches, e)
				lastPath = e.Path
			}
		}
		refs := ed.entryRefs(matches)

		if !singleText && !startVoid {
			if cur, found := startRef.Current(); found {
				if t, err := ed.Leaf(cur.Path); err == nil && start.Offset < len(t.Text) {
					op := Operation{Type: OpRemoveText, Path: cur.Path, Offset: start.Offset, Text: t.Text[start.Offset:]}
					if err := ed.apply(op); err != nil {
						return err
					}
				}
			}
		}

		for i := len(refs) - 1; i >= 0; i-- {
			p, found := refs[i].Unref()
			if !found {
				continue
			}
			if err := ed.RemoveNodes(NodeOptions{At: p, Voids: voids}); err != nil {
				return err
			}
		}

		if !endVoid {
			if cur, found := endRef.Current(); found {
				if t, err := ed.Leaf(cur.Path); err == nil {
					from := 0
					if singleText {
						from = start.Offset
					}
					to := min(end.Offset, len(t.Text))
					if from < to {
						op := Operation{Type: OpRemoveText, Path: cur.Path, Offset: from, Text: t.Text[from:to]}
						if err := ed.apply(op); err != nil {
							return err
						}
					}
				}
			}
		}

		if !singleText && acrossBlocks {
			if cur, found := endRef.Current(); found {
				if _, hasStartPoint := startRef.Current(); hasStartPoint {
					if err := ed.MergeNodes(NodeOptions{At: cur, Voids: voids}); err != nil {
						return err
					}
				}
			}
		}

		if !selectAfter {
			return nil
		}
		s, okS := startRef.Current()
		e, okE := endRef.Current()
		pt, found := e, okE
		if reverse || !okE {
			pt, found = s, okS
			if !okS {
				pt, found = e, okE
			}
		}
		if !found {
			return nil
		}
		return ed.Select(pt)
	})
}

// InsertTextAt inserts text at a location, replacing an expanded range.
func (ed *Editor) InsertTextAt(text string, at Location) error {
	return ed.edit(func() error {
		loc, ok := ed.resolveAt(at)
		if !ok {
			return nil
		}
		if p, isPath := loc.(Path); isPath {
			r, found := ed.RangeOf(p, p)
			if !found {
				return nil
			}
			loc = r
		}
		if r, isRange := loc.(Range); isRange {
			if r.IsCollapsed() {
				loc = r.Anchor
			} else {
				start, end := r.Edges()
				startRef := ed.PointRef(start, AffinityForward)
				endRef := ed.PointRef(end, AffinityForward)
				if err := ed.deleteRange(r, false, false, false); err != nil {
					startRef.Unref()
					endRef.Unref()
					return err
				}
				s, okS := startRef.Unref()
				e, okE := endRef.Unref()
				switch {
				case okS:
					loc = s
				case okE:
					loc = e
				default:
					return nil
				}
				if err := ed.Select(loc); err != nil {
					return err
				}
			}
		}
		pt, isPoint := loc.(Point)
		if !isPoint {
			return nil
		}
		if _, inVoid := ed.Void(pt, ModeLowest); inVoid {
			return nil
		}
		if text == "" {
			return nil
		}
		return ed.apply(Operation{Type: OpInsertText, Path: pt.Path, Offset: pt.Offset, Text: text})
	})
}

func (ed *Editor) markable() MatchFunc {
	return func(n Node, p Path) bool {
		if !IsText(n) {
			return false
		}
		parent, err := ed.Parent(p)
		return err == nil && !ed.IsVoid(parent)
	}
}

// AddMark applies a mark to the selected text. With a collapsed selection
// the mark is held for the next inserted text.
func (ed *Editor) AddMark(key string, value any) error {
	if ed.selection == nil {
		return nil
	}
	if ed.selection.IsExpanded() {
		return ed.SetNodes(Props{key: value}, NodeOptions{Match: ed.markable(), Split: true, Voids: true})
	}
	m := ed.Marks()
	if m == nil {
		m = Props{}
	}
	m[key] = value
	ed.marks = m
	return nil
}

// RemoveMark removes a mark from the selected text or the pending marks.
func (ed *Editor) RemoveMark(key string) error {
	if ed.selection == nil {
		return nil
	}
	if ed.selection.IsExpanded() {
		return ed.UnsetNodes([]string{key}, NodeOptions{Match: ed.markable(), Split: true, Voids: true})
	}
	m := ed.Marks()
	if m == nil {
		m = Props{}
	}
	delete(m, key)
	ed.marks = m
	return nil
}

// mustNormalize logs a normalizer transform that failed. Normalizers have no
// caller to report to.
func (ed *Editor) mustNormalize(err error) {
	if err != nil {
		log.ErrorErr(log.CatNormalize, "normalizer transform failed", err)
	}
}

func (ed *Editor) defaultInsertText(text string) {
	if ed.selection == nil {
		return
	}
	var err error
	if ed.marks != nil {
		err = ed.InsertNodes([]Node{NewText(text, ed.marks)}, NodeOptions{})
	} else {
		err = ed.InsertTextAt(text, nil)
	}
	if err != nil {
		log.ErrorErr(log.CatEditor, "insert text failed", err)
	}
	ed.marks = nil
}

func (ed *Editor) defaultInsertBreak() {
	if err := ed.SplitNodes(NodeOptions{Always: true}); err != nil {
		log.ErrorErr(log.CatEditor, "insert break failed", err)
	}
}

func (ed *Editor) defaultDeleteBackward(_ context.Context, unit Unit) {
	if ed.selection == nil || ed.selection.IsExpanded() {
		return
	}
	if err := ed.Delete(DeleteOptions{Unit: unit, Reverse: true}); err != nil {
		log.ErrorErr(log.CatEditor, "delete backward failed", err)
	}
}

func (ed *Editor) defaultDeleteForward(_ context.Context, unit Unit) {
	if ed.selection == nil || ed.selection.IsExpanded() {
		return
	}
	if err := ed.Delete(DeleteOptions{Unit: unit}); err != nil {
		log.ErrorErr(log.CatEditor, "delete forward failed", err)
	}
}

func (ed *Editor) defaultDeleteFragment(_ context.Context, dir Direction) {
	if ed.selection == nil || ed.selection.IsCollapsed() {
		return
	}
	if err := ed.Delete(DeleteOptions{Reverse: dir == Backward}); err != nil {
		log.ErrorErr(log.CatEditor, "delete fragment failed", err)
	}
}

// defaultInsertFragment inserts pasted nodes. Inline content goes into the
// current block; blocks are inserted after it, replacing it when it is
// empty.
func (ed *Editor) defaultInsertFragment(nodes []Node) {
	if ed.selection == nil || len(nodes) == 0 {
		return
	}
	err := ed.edit(func() error {
		if ed.selection.IsExpanded() {
			if err := ed.Delete(DeleteOptions{}); err != nil {
				return err
			}
		}
		inline := true
		for _, n := range nodes {
			if el := AsElement(n); el != nil && !ed.IsInline(el) {
				inline = false
				break
			}
		}
		if inline {
			return ed.InsertNodes(nodes, NodeOptions{})
		}
		block, found := ed.Block(ed.selection.Anchor.Path)
		if found && ed.IsEmpty(block.Node.(*Element)) {
			if err := ed.RemoveNodes(NodeOptions{At: block.Path}); err != nil {
				return err
			}
			return ed.InsertNodes(nodes, NodeOptions{At: block.Path, Select: true})
		}
		return ed.InsertNodes(nodes, NodeOptions{})
	})
	if err != nil {
		log.ErrorErr(log.CatEditor, "insert fragment failed", err)
	}
}

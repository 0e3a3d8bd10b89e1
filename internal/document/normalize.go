package document

// coreNormalizeNode enforces the structural rules every document keeps:
// elements are never empty, a parent holds either blocks or inline content,
// inline elements are surrounded by texts, and adjacent texts with equal
// marks are merged.
func (ed *Editor) coreNormalizeNode(entry NodeEntry) {
	el, ok := entry.Node.(*Element)
	if !ok {
		return
	}
	path := entry.Path
	isRoot := len(path) == 0

	if !isRoot && len(el.Children) == 0 {
		ed.mustNormalize(ed.InsertNodes([]Node{NewText("")}, NodeOptions{At: path.Child(0), Voids: true}))
		return
	}

	shouldHaveInlines := !isRoot && (ed.IsInline(el) || IsText(el.Children[0]) || ed.IsInline(AsElement(el.Children[0])))

	for i, child := range el.Children {
		childPath := path.Child(i)
		var prev Node
		if i > 0 {
			prev = el.Children[i-1]
		}
		isInlineOrText := IsText(child) || ed.IsInline(AsElement(child))
		if isInlineOrText != shouldHaveInlines {
			ed.mustNormalize(ed.RemoveNodes(NodeOptions{At: childPath, Voids: true}))
			return
		}

		if ce, isEl := child.(*Element); isEl {
			if !ed.IsInline(ce) {
				continue
			}
			if prev == nil || !IsText(prev) {
				ed.mustNormalize(ed.InsertNodes([]Node{NewText("")}, NodeOptions{At: childPath, Voids: true}))
				return
			}
			if i == len(el.Children)-1 {
				ed.mustNormalize(ed.InsertNodes([]Node{NewText("")}, NodeOptions{At: childPath.Next(), Voids: true}))
				return
			}
			continue
		}

		t := child.(*Text)
		pt, prevIsText := prev.(*Text)
		if !prevIsText {
			continue
		}
		switch {
		case pt.Marks.Equal(t.Marks):
			ed.mustNormalize(ed.MergeNodes(NodeOptions{At: childPath, Voids: true}))
			return
		case pt.Text == "":
			ed.mustNormalize(ed.RemoveNodes(NodeOptions{At: path.Child(i - 1), Voids: true}))
			return
		case t.Text == "":
			ed.mustNormalize(ed.RemoveNodes(NodeOptions{At: childPath, Voids: true}))
			return
		}
	}
}

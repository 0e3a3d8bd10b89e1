package document

import (
	"errors"
	"fmt"
)

// OpType names a primitive mutation.
type OpType string

const (
	OpInsertNode   OpType = "insert_node"
	OpRemoveNode   OpType = "remove_node"
	OpMoveNode     OpType = "move_node"
	OpSplitNode    OpType = "split_node"
	OpMergeNode    OpType = "merge_node"
	OpSetNode      OpType = "set_node"
	OpInsertText   OpType = "insert_text"
	OpRemoveText   OpType = "remove_text"
	OpSetSelection OpType = "set_selection"
)

var (
	ErrInvalidPath       = errors.New("invalid path")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrMergeIncompatible = errors.New("cannot merge a text with an element")
	ErrNormalizeLoop     = errors.New("normalization did not converge")
	ErrNoSelection       = errors.New("no selection")
)

// Operation is one entry of the mutation log. Which fields are meaningful
// depends on Type.
type Operation struct {
	Type OpType

	Path    Path
	NewPath Path // move_node

	Node Node // insert_node, remove_node

	// Position is the split index for split_node and the length of the
	// previous sibling for merge_node.
	Position int

	Offset int    // insert_text, remove_text
	Text   string // insert_text, remove_text

	// Properties holds the old properties for set_node and the properties
	// of the new node for split_node and merge_node.
	Properties    Props
	NewProperties Props

	Selection    *Range // set_selection, before
	NewSelection *Range // set_selection, after
}

func (op Operation) String() string {
	switch op.Type {
	case OpMoveNode:
		return fmt.Sprintf("%s %s -> %s", op.Type, op.Path, op.NewPath)
	case OpInsertText, OpRemoveText:
		return fmt.Sprintf("%s %s@%d %q", op.Type, op.Path, op.Offset, op.Text)
	case OpSplitNode, OpMergeNode:
		return fmt.Sprintf("%s %s pos=%d", op.Type, op.Path, op.Position)
	case OpSetSelection:
		return string(op.Type)
	}
	return fmt.Sprintf("%s %s", op.Type, op.Path)
}

// Inverse returns the operation that undoes op.
func (op Operation) Inverse() Operation {
	inv := op
	switch op.Type {
	case OpInsertNode:
		inv.Type = OpRemoveNode
	case OpRemoveNode:
		inv.Type = OpInsertNode
	case OpInsertText:
		inv.Type = OpRemoveText
	case OpRemoveText:
		inv.Type = OpInsertText
	case OpMergeNode:
		inv.Type = OpSplitNode
		prev, _ := op.Path.Previous()
		inv.Path = prev
	case OpSplitNode:
		inv.Type = OpMergeNode
		inv.Path = op.Path.Next()
	case OpSetNode:
		inv.Properties, inv.NewProperties = op.NewProperties, op.Properties
	case OpSetSelection:
		inv.Selection, inv.NewSelection = op.NewSelection, op.Selection
	case OpMoveNode:
		if op.NewPath.Equals(op.Path) {
			return op
		}
		if op.Path.IsSibling(op.NewPath) {
			inv.Path, inv.NewPath = op.NewPath, op.Path
			return inv
		}
		np, _ := op.Path.Transform(op, AffinityForward)
		onp, _ := op.Path.Next().Transform(op, AffinityForward)
		inv.Path, inv.NewPath = np, onp
	}
	return inv
}

// applyToTree mutates root by op. Selection and refs are handled by the Editor.
func applyToTree(root *Element, op Operation) error {
	switch op.Type {
	case OpInsertNode:
		parent, index, err := parentAndIndex(root, op.Path)
		if err != nil {
			return err
		}
		if index > len(parent.Children) {
			return fmt.Errorf("%w: insert at %s beyond %d children", ErrInvalidPath, op.Path, len(parent.Children))
		}
		parent.Children = insertAt(parent.Children, index, op.Node.Clone())

	case OpRemoveNode:
		parent, index, err := parentAndIndex(root, op.Path)
		if err != nil {
			return err
		}
		if index >= len(parent.Children) {
			return fmt.Errorf("%w: remove %s", ErrInvalidPath, op.Path)
		}
		parent.Children = removeAt(parent.Children, index)

	case OpMoveNode:
		if op.Path.IsAncestor(op.NewPath) {
			return fmt.Errorf("%w: cannot move %s into its own descendant %s", ErrInvalidOperation, op.Path, op.NewPath)
		}
		node, err := nodeAt(root, op.Path)
		if err != nil {
			return err
		}
		parent, index, _ := parentAndIndex(root, op.Path)
		parent.Children = removeAt(parent.Children, index)
		truePath, _ := op.Path.Transform(op, AffinityForward)
		newParent, newIndex, err := parentAndIndex(root, truePath)
		if err != nil {
			return err
		}
		if newIndex > len(newParent.Children) {
			return fmt.Errorf("%w: move to %s", ErrInvalidPath, op.NewPath)
		}
		newParent.Children = insertAt(newParent.Children, newIndex, node)

	case OpSplitNode:
		node, err := nodeAt(root, op.Path)
		if err != nil {
			return err
		}
		parent, index, _ := parentAndIndex(root, op.Path)
		var next Node
		switch n := node.(type) {
		case *Text:
			if op.Position < 0 || op.Position > len(n.Text) {
				return fmt.Errorf("%w: split text at %d", ErrInvalidOperation, op.Position)
			}
			after := n.Text[op.Position:]
			n.Text = n.Text[:op.Position]
			next = &Text{Text: after, Marks: op.Properties.Clone()}
		case *Element:
			if op.Position < 0 || op.Position > len(n.Children) {
				return fmt.Errorf("%w: split element at %d", ErrInvalidOperation, op.Position)
			}
			after := append([]Node(nil), n.Children[op.Position:]...)
			n.Children = append([]Node(nil), n.Children[:op.Position]...)
			el := &Element{Type: n.Type, Children: after}
			setProps(el, op.Properties)
			next = el
		}
		parent.Children = insertAt(parent.Children, index+1, next)

	case OpMergeNode:
		node, err := nodeAt(root, op.Path)
		if err != nil {
			return err
		}
		prevPath, err := op.Path.Previous()
		if err != nil {
			return err
		}
		prev, err := nodeAt(root, prevPath)
		if err != nil {
			return err
		}
		switch n := node.(type) {
		case *Text:
			pt, ok := prev.(*Text)
			if !ok {
				return fmt.Errorf("%w at %s", ErrMergeIncompatible, op.Path)
			}
			pt.Text += n.Text
		case *Element:
			pe, ok := prev.(*Element)
			if !ok {
				return fmt.Errorf("%w at %s", ErrMergeIncompatible, op.Path)
			}
			pe.Children = append(pe.Children, n.Children...)
		}
		parent, index, _ := parentAndIndex(root, op.Path)
		parent.Children = removeAt(parent.Children, index)

	case OpSetNode:
		if len(op.Path) == 0 {
			return fmt.Errorf("%w: cannot set properties on the root", ErrInvalidOperation)
		}
		node, err := nodeAt(root, op.Path)
		if err != nil {
			return err
		}
		switch n := node.(type) {
		case *Text:
			for k, v := range op.NewProperties {
				if v == nil {
					delete(n.Marks, k)
					continue
				}
				if n.Marks == nil {
					n.Marks = Props{}
				}
				n.Marks[k] = v
			}
			for k := range op.Properties {
				if _, ok := op.NewProperties[k]; !ok {
					delete(n.Marks, k)
				}
			}
			if len(n.Marks) == 0 {
				n.Marks = nil
			}
		case *Element:
			setProps(n, op.NewProperties)
			for k := range op.Properties {
				if _, ok := op.NewProperties[k]; !ok && k != PropType {
					delete(n.Props, k)
				}
			}
			if len(n.Props) == 0 {
				n.Props = nil
			}
		}

	case OpInsertText:
		t, err := textAt(root, op.Path)
		if err != nil {
			return err
		}
		if op.Offset < 0 || op.Offset > len(t.Text) {
			return fmt.Errorf("%w: insert text at %d", ErrInvalidOperation, op.Offset)
		}
		t.Text = t.Text[:op.Offset] + op.Text + t.Text[op.Offset:]

	case OpRemoveText:
		t, err := textAt(root, op.Path)
		if err != nil {
			return err
		}
		end := op.Offset + len(op.Text)
		if op.Offset < 0 || end > len(t.Text) {
			return fmt.Errorf("%w: remove text %d..%d", ErrInvalidOperation, op.Offset, end)
		}
		t.Text = t.Text[:op.Offset] + t.Text[end:]

	case OpSetSelection:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidOperation, op.Type)
	}
	return nil
}

// setProps writes props onto el. A nil value unsets the key.
func setProps(el *Element, props Props) {
	for k, v := range props {
		if k == PropType {
			if s, ok := v.(string); ok {
				el.Type = s
			}
			continue
		}
		if v == nil {
			delete(el.Props, k)
			continue
		}
		if el.Props == nil {
			el.Props = Props{}
		}
		el.Props[k] = v
	}
}

func nodeAt(root *Element, p Path) (Node, error) {
	var n Node = root
	for i, idx := range p {
		el, ok := n.(*Element)
		if !ok || idx < 0 || idx >= len(el.Children) {
			return nil, fmt.Errorf("%w: no node at %s (depth %d)", ErrInvalidPath, p, i)
		}
		n = el.Children[idx]
	}
	return n, nil
}

func textAt(root *Element, p Path) (*Text, error) {
	n, err := nodeAt(root, p)
	if err != nil {
		return nil, err
	}
	t, ok := n.(*Text)
	if !ok {
		return nil, fmt.Errorf("%w: node at %s is not text", ErrInvalidPath, p)
	}
	return t, nil
}

func parentAndIndex(root *Element, p Path) (*Element, int, error) {
	if len(p) == 0 {
		return nil, 0, fmt.Errorf("%w: the root has no parent", ErrInvalidPath)
	}
	n, err := nodeAt(root, p[:len(p)-1])
	if err != nil {
		return nil, 0, err
	}
	el, ok := n.(*Element)
	if !ok {
		return nil, 0, fmt.Errorf("%w: parent of %s is text", ErrInvalidPath, p)
	}
	return el, p[len(p)-1], nil
}

func insertAt(s []Node, i int, n Node) []Node {
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = n
	return s
}

func removeAt(s []Node, i int) []Node {
	out := make([]Node, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

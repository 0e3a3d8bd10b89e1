// Package document implements the rich-text document model: a tree of
// elements and text leaves, addressed by paths and mutated only through
// operations applied by an Editor.
package document

import (
	"maps"
	"reflect"
	"strings"
)

// PropType is the property key that addresses Element.Type in property maps.
const PropType = "type"

// PropNodeID is the property key holding an element's stable identity.
const PropNodeID = "nodeId"

// DefaultBlockType is the element type of a plain paragraph.
const DefaultBlockType = "paragraph"

// Props is a bag of node properties. For elements it holds everything except
// the type and children; for text leaves it holds the marks.
type Props map[string]any

// Clone returns a shallow copy. A nil map clones to nil.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Equal reports whether two property maps hold the same keys and values.
// Nil and empty maps are equal.
func (p Props) Equal(o Props) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		ov, ok := o[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// Node is either a *Text or an *Element.
type Node interface {
	// Clone returns a deep copy of the node.
	Clone() Node
	isNode()
}

// Text is a leaf holding a string and its marks.
type Text struct {
	Text  string
	Marks Props
}

// Element is an interior node with a type, properties and children.
type Element struct {
	Type     string
	Props    Props
	Children []Node
}

func (*Text) isNode()    {}
func (*Element) isNode() {}

// NewText creates a text leaf with optional marks.
func NewText(s string, marks ...Props) *Text {
	t := &Text{Text: s}
	if len(marks) > 0 && len(marks[0]) > 0 {
		t.Marks = marks[0].Clone()
	}
	return t
}

// NewElement creates an element of the given type.
func NewElement(typ string, children ...Node) *Element {
	return &Element{Type: typ, Children: children}
}

// Paragraph creates a paragraph holding a single text leaf.
func Paragraph(s string) *Element {
	return NewElement(DefaultBlockType, NewText(s))
}

// WithProps sets properties on the element and returns it.
func (e *Element) WithProps(p Props) *Element {
	if e.Props == nil {
		e.Props = Props{}
	}
	for k, v := range p {
		if k == PropType {
			if s, ok := v.(string); ok {
				e.Type = s
			}
			continue
		}
		e.Props[k] = v
	}
	return e
}

// Prop returns a property value. The "type" key returns the element type.
func (e *Element) Prop(key string) (any, bool) {
	if key == PropType {
		return e.Type, true
	}
	v, ok := e.Props[key]
	return v, ok
}

// StringProp returns a string property, or "" if missing or not a string.
func (e *Element) StringProp(key string) string {
	v, _ := e.Prop(key)
	s, _ := v.(string)
	return s
}

func (t *Text) Clone() Node {
	return &Text{Text: t.Text, Marks: t.Marks.Clone()}
}

func (e *Element) Clone() Node {
	c := &Element{Type: e.Type, Props: e.Props.Clone()}
	if e.Children != nil {
		c.Children = make([]Node, len(e.Children))
		for i, ch := range e.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// HasMark reports whether the text carries a truthy mark.
func (t *Text) HasMark(key string) bool {
	v, ok := t.Marks[key]
	if !ok {
		return false
	}
	b, isBool := v.(bool)
	return !isBool || b
}

// IsText reports whether n is a text leaf.
func IsText(n Node) bool {
	_, ok := n.(*Text)
	return ok
}

// AsElement returns n as an element, or nil.
func AsElement(n Node) *Element {
	el, _ := n.(*Element)
	return el
}

// IsType reports whether n is an element of one of the given types.
func IsType(n Node, types ...string) bool {
	el, ok := n.(*Element)
	if !ok {
		return false
	}
	for _, t := range types {
		if el.Type == t {
			return true
		}
	}
	return false
}

// TextContent concatenates every text leaf under n.
func TextContent(n Node) string {
	switch n := n.(type) {
	case *Text:
		return n.Text
	case *Element:
		var b strings.Builder
		for _, ch := range n.Children {
			b.WriteString(TextContent(ch))
		}
		return b.String()
	}
	return ""
}

// Equal reports whether two nodes are structurally identical.
func Equal(a, b Node) bool {
	switch a := a.(type) {
	case *Text:
		bt, ok := b.(*Text)
		return ok && a.Text == bt.Text && a.Marks.Equal(bt.Marks)
	case *Element:
		be, ok := b.(*Element)
		if !ok || a.Type != be.Type || !a.Props.Equal(be.Props) || len(a.Children) != len(be.Children) {
			return false
		}
		for i := range a.Children {
			if !Equal(a.Children[i], be.Children[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// extractProps returns the properties of n in operation form: the marks of a
// text, or the props plus "type" of an element.
func extractProps(n Node) Props {
	switch n := n.(type) {
	case *Text:
		return n.Marks.Clone()
	case *Element:
		p := n.Props.Clone()
		if p == nil {
			p = Props{}
		}
		p[PropType] = n.Type
		return p
	}
	return nil
}

// NodeEntry pairs a node with its path.
type NodeEntry struct {
	Node Node
	Path Path
}

// Element returns the entry's node as an element, or nil.
func (e NodeEntry) Element() *Element {
	return AsElement(e.Node)
}

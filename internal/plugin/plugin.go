// Package plugin defines the contract behavior modules implement to extend
// the editor. A Plugin is a plain value: every capability is an optional
// field and the composer checks for presence explicitly.
package plugin

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/net/html"

	"github.com/usekona/kona/internal/document"
)

// Plugin bundles optional capabilities. Plugins are combined by their
// position in an ordered list; the position is the tie-break wherever a
// first or last plugin wins.
type Plugin struct {
	Name string

	// Init receives the editor produced by the previous plugin and returns
	// it, usually after wrapping some of its behaviors.
	Init func(ed *document.Editor) *document.Editor

	Blocks  []Block
	Leafs   []Leaf
	Hotkeys []Hotkey

	Handlers Handlers

	// Decorate annotates ranges of a node for leaf rendering.
	Decorate func(ed *document.Editor, entry document.NodeEntry) []Decoration

	// RenderBlock wraps the rendered output of every element.
	RenderBlock func(props RenderElementProps) string

	// UI renders an overlay outside the document.
	UI func(params UIParams) string
}

// Block describes one element type a plugin owns.
type Block struct {
	Type        string
	Render      func(props RenderElementProps, ed *document.Editor) string
	Serialize   SerializeFunc
	Deserialize DeserializeFunc

	// IsVoid and IsInline are explicit declarations; nil means the plugin
	// says nothing about the type.
	IsVoid   *bool
	IsInline *bool

	// OnBeforeDelete may veto removing the blocks. An error counts as a
	// veto.
	OnBeforeDelete func(ctx context.Context, blocks []*document.Element) (bool, error)
	OnDelete       func(blocks []*document.Element)
}

// Leaf renders and converts text leaves.
type Leaf struct {
	Render      func(props RenderLeafProps, ed *document.Editor) string
	IsVoid      *bool
	Serialize   SerializeFunc
	Deserialize DeserializeFunc
}

// Hotkey runs Run when a key event matches Binding.
type Hotkey struct {
	Binding key.Binding
	Run     func(ev *KeyEvent, ed *document.Editor)
}

// Handlers receive raw input events before the editor's defaults.
type Handlers struct {
	OnKeyDown func(ev *KeyEvent, ed *document.Editor)
	OnPaste   func(ev *PasteEvent, ed *document.Editor)
	OnDrop    func(ev *DropEvent, ed *document.Editor)
}

// SerializeFunc converts a node to markup. children is the serialized
// content of an element, or the escaped text of a text leaf. ok is false
// when the function does not handle the node.
type SerializeFunc func(node document.Node, children string) (out string, ok bool)

// DeserializeFunc converts a markup element to nodes. children holds the
// already converted content. ok is false when the element is not handled.
type DeserializeFunc func(el *html.Node, children []document.Node) (nodes []document.Node, ok bool)

// Decoration marks a range with extra leaf properties.
type Decoration struct {
	Range document.Range
	Props document.Props
}

// RenderElementProps is passed to block renderers.
type RenderElementProps struct {
	Element *document.Element
	Path    document.Path
	// Children is the rendered content; ChildParts holds each child's
	// rendering separately.
	Children   string
	ChildParts []string
}

// RenderLeafProps is passed to leaf renderers. A text leaf is rendered in
// segments split at decoration edges; Leaf carries the text's marks merged
// with the decorations covering the segment.
type RenderLeafProps struct {
	Leaf     *document.Text
	Text     *document.Text
	Path     document.Path
	Children string
}

// UIParams is passed to overlay renderers.
type UIParams struct {
	Editor   *document.Editor
	ReadOnly bool
	Children string
}

// KeyEvent wraps a terminal key press.
type KeyEvent struct {
	Msg       tea.KeyMsg
	prevented bool
}

func NewKeyEvent(msg tea.KeyMsg) *KeyEvent {
	return &KeyEvent{Msg: msg}
}

// String returns the key in bubbletea notation, e.g. "shift+tab".
func (e *KeyEvent) String() string { return e.Msg.String() }

// PreventDefault stops the editor's default handling of the key.
func (e *KeyEvent) PreventDefault() { e.prevented = true }

func (e *KeyEvent) DefaultPrevented() bool { return e.prevented }

// PasteEvent carries pasted content. HTML is preferred over Text.
type PasteEvent struct {
	HTML      string
	Text      string
	prevented bool
}

func (e *PasteEvent) PreventDefault()        { e.prevented = true }
func (e *PasteEvent) DefaultPrevented() bool { return e.prevented }

// DropEvent carries content dropped at a point.
type DropEvent struct {
	At        document.Point
	HTML      string
	prevented bool
}

func (e *DropEvent) PreventDefault()        { e.prevented = true }
func (e *DropEvent) DefaultPrevented() bool { return e.prevented }

// Declare returns a pointer for the IsVoid and IsInline declarations.
func Declare(b bool) *bool { return &b }

// FindBlock returns the first block entry for typ in list order, with the
// index of the plugin that owns it.
func FindBlock(plugins []Plugin, typ string) (Block, int, bool) {
	for i, p := range plugins {
		for _, b := range p.Blocks {
			if b.Type == typ {
				return b, i, true
			}
		}
	}
	return Block{}, -1, false
}

// Declarations lists every explicit declaration for typ in list order.
// pick selects the declaration field, e.g. func(b Block) *bool { return b.IsVoid }.
func Declarations(plugins []Plugin, typ string, pick func(Block) *bool) []bool {
	var out []bool
	for _, p := range plugins {
		for _, b := range p.Blocks {
			if b.Type != typ {
				continue
			}
			if v := pick(b); v != nil {
				out = append(out, *v)
			}
			break
		}
	}
	return out
}

// Types lists every block type declared by any plugin, in first-seen order.
func Types(plugins []Plugin) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range plugins {
		for _, b := range p.Blocks {
			if !seen[b.Type] {
				seen[b.Type] = true
				out = append(out, b.Type)
			}
		}
	}
	return out
}

// Attr returns an attribute of a parsed markup element.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SerializeTag serializes elements of typ as <tag>children</tag>.
func SerializeTag(typ, tag string) SerializeFunc {
	return func(n document.Node, children string) (string, bool) {
		if !document.IsType(n, typ) {
			return "", false
		}
		return "<" + tag + ">" + children + "</" + tag + ">", true
	}
}

// DeserializeTag turns <tag> elements into elements of typ.
func DeserializeTag(tag, typ string) DeserializeFunc {
	return func(el *html.Node, children []document.Node) ([]document.Node, bool) {
		if el.Data != tag {
			return nil, false
		}
		return []document.Node{document.NewElement(typ, children...)}, true
	}
}

// Package serialize converts documents to and from HTML through the ordered
// plugin list.
package serialize

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
)

// Serialize renders nodes as HTML. Texts are escaped and then offered to
// the serializers; elements get their serialized children. The first
// non-empty result in plugin list order wins. Paragraphs always become <p>,
// and elements nobody serializes degrade to their children.
func Serialize(plugins []plugin.Plugin, nodes ...document.Node) string {
	fns := serializers(plugins)
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(serializeNode(fns, n))
	}
	return b.String()
}

func serializers(plugins []plugin.Plugin) []plugin.SerializeFunc {
	var out []plugin.SerializeFunc
	for _, p := range plugins {
		for _, b := range p.Blocks {
			if b.Serialize != nil {
				out = append(out, b.Serialize)
			}
		}
		for _, l := range p.Leafs {
			if l.Serialize != nil {
				out = append(out, l.Serialize)
			}
		}
	}
	return out
}

func serializeNode(fns []plugin.SerializeFunc, n document.Node) string {
	switch n := n.(type) {
	case *document.Text:
		escaped := html.EscapeString(n.Text)
		if out := first(fns, n, escaped); out != "" {
			return out
		}
		return escaped
	case *document.Element:
		var b strings.Builder
		for _, ch := range n.Children {
			b.WriteString(serializeNode(fns, ch))
		}
		children := b.String()
		if n.Type == document.DefaultBlockType {
			return "<p>" + children + "</p>"
		}
		if out := first(fns, n, children); out != "" {
			return out
		}
		return children
	}
	return ""
}

func first(fns []plugin.SerializeFunc, n document.Node, children string) string {
	for _, fn := range fns {
		if s, ok := fn(n, children); ok && s != "" {
			return s
		}
	}
	return ""
}

// Deserialize parses markup into nodes. A body holding only inline content
// becomes one paragraph.
func Deserialize(plugins []plugin.Plugin, markup string) ([]document.Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	body := findBody(doc)
	if body == nil {
		return nil, nil
	}
	nodes := deserializeNode(plugins, body)
	log.Debug(log.CatSerialize, "deserialized html", "bytes", len(markup), "nodes", len(nodes))
	return nodes, nil
}

// DeserializeElement converts one parsed element, e.g. a pasted fragment.
func DeserializeElement(plugins []plugin.Plugin, el *html.Node) []document.Node {
	return deserializeNode(plugins, el)
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func deserializeNode(plugins []plugin.Plugin, n *html.Node) []document.Node {
	switch {
	case n.Type == html.TextNode:
		return []document.Node{document.NewText(n.Data)}
	case n.Type != html.ElementNode:
		return nil
	case n.DataAtom == atom.Br:
		return []document.Node{document.NewText("\n")}
	}

	children := deserializeChildren(plugins, n)
	if len(children) == 0 {
		children = []document.Node{document.NewText("")}
	}

	switch n.DataAtom {
	case atom.Body:
		for _, c := range children {
			if !document.IsText(c) {
				return children
			}
		}
		return []document.Node{document.NewElement(document.DefaultBlockType, children...)}
	case atom.P:
		return []document.Node{document.NewElement(document.DefaultBlockType, children...)}
	}

	// The first deserializer in plugin list order that claims the element
	// wins.
	for _, p := range plugins {
		for _, b := range p.Blocks {
			if out, ok := deserializeWith(b.Deserialize, n, children); ok {
				return out
			}
		}
		for _, l := range p.Leafs {
			if out, ok := deserializeWith(l.Deserialize, n, children); ok {
				return out
			}
		}
	}
	return children
}

func deserializeWith(fn plugin.DeserializeFunc, n *html.Node, children []document.Node) ([]document.Node, bool) {
	if fn == nil {
		return nil, false
	}
	out, ok := fn(n, children)
	return out, ok && out != nil
}

// deserializeChildren converts the children of n, dropping whitespace-only
// text that only separates markup lines.
func deserializeChildren(plugins []plugin.Plugin, n *html.Node) []document.Node {
	hasElements := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			hasElements = true
			break
		}
	}
	var out []document.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasElements && c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" && strings.Contains(c.Data, "\n") {
			continue
		}
		out = append(out, deserializeNode(plugins, c)...)
	}
	return out
}

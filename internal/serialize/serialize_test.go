package serialize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/plugin"
)

func quotePlugin() plugin.Plugin {
	return plugin.Plugin{
		Name: "quote",
		Blocks: []plugin.Block{{
			Type:        "blockquote",
			Serialize:   plugin.SerializeTag("blockquote", "blockquote"),
			Deserialize: plugin.DeserializeTag("blockquote", "blockquote"),
		}},
	}
}

func boldPlugin() plugin.Plugin {
	return plugin.Plugin{
		Name: "bold",
		Leafs: []plugin.Leaf{{
			Serialize: func(n document.Node, children string) (string, bool) {
				t, ok := n.(*document.Text)
				if !ok || !t.HasMark("bold") {
					return "", false
				}
				return "<strong>" + children + "</strong>", true
			},
			Deserialize: func(el *html.Node, children []document.Node) ([]document.Node, bool) {
				if el.Data != "strong" {
					return nil, false
				}
				out := make([]document.Node, 0, len(children))
				for _, c := range children {
					if t, ok := c.(*document.Text); ok {
						marks := t.Marks.Clone()
						if marks == nil {
							marks = document.Props{}
						}
						marks["bold"] = true
						c = document.NewText(t.Text, marks)
					}
					out = append(out, c)
				}
				return out, true
			},
		}},
	}
}

func plugins() []plugin.Plugin {
	return []plugin.Plugin{quotePlugin(), boldPlugin()}
}

func TestSerialize(t *testing.T) {
	tests := []struct {
		name  string
		nodes []document.Node
		want  string
	}{
		{
			name:  "paragraph",
			nodes: []document.Node{document.Paragraph("hi")},
			want:  "<p>hi</p>",
		},
		{
			name:  "escapes text",
			nodes: []document.Node{document.Paragraph("a < b & c")},
			want:  "<p>a &lt; b &amp; c</p>",
		},
		{
			name: "marks and blocks",
			nodes: []document.Node{document.NewElement("blockquote",
				document.NewText("x "),
				document.NewText("y", document.Props{"bold": true}),
			)},
			want: "<blockquote>x <strong>y</strong></blockquote>",
		},
		{
			name:  "unknown element degrades to children",
			nodes: []document.Node{document.NewElement("widget", document.NewText("kept"))},
			want:  "kept",
		},
		{
			name:  "empty paragraph",
			nodes: []document.Node{document.Paragraph("")},
			want:  "<p></p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Serialize(plugins(), tt.nodes...))
		})
	}
}

func TestSerialize_FirstSerializerWins(t *testing.T) {
	override := plugin.Plugin{
		Name: "quote-override",
		Blocks: []plugin.Block{{
			Type:      "blockquote",
			Serialize: plugin.SerializeTag("blockquote", "aside"),
		}},
	}
	node := document.NewElement("blockquote", document.NewText("q"))

	require.Equal(t, "<blockquote>q</blockquote>", Serialize(append(plugins(), override), node))
	require.Equal(t, "<aside>q</aside>", Serialize([]plugin.Plugin{override, quotePlugin()}, node))
}

func TestSerialize_EmptyResultFallsThrough(t *testing.T) {
	empty := plugin.Plugin{
		Name: "empty",
		Blocks: []plugin.Block{{
			Type:      "blockquote",
			Serialize: func(document.Node, string) (string, bool) { return "", true },
		}},
	}

	out := Serialize([]plugin.Plugin{empty, quotePlugin()}, document.NewElement("blockquote", document.NewText("q")))

	require.Equal(t, "<blockquote>q</blockquote>", out)
}

func TestDeserialize_FirstDeserializerWins(t *testing.T) {
	aside := plugin.Plugin{
		Name: "aside",
		Blocks: []plugin.Block{{
			Type:        "aside",
			Deserialize: plugin.DeserializeTag("blockquote", "aside"),
		}},
	}

	nodes, err := Deserialize([]plugin.Plugin{aside, quotePlugin()}, "<blockquote>q</blockquote>")
	require.NoError(t, err)
	require.Equal(t, "aside", document.AsElement(nodes[0]).Type)

	nodes, err = Deserialize([]plugin.Plugin{quotePlugin(), aside}, "<blockquote>q</blockquote>")
	require.NoError(t, err)
	require.Equal(t, "blockquote", document.AsElement(nodes[0]).Type)
}

func TestDeserialize(t *testing.T) {
	nodes, err := Deserialize(plugins(), "<blockquote>x <strong>y</strong></blockquote><p>z</p>")
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	quote := document.AsElement(nodes[0])
	require.Equal(t, "blockquote", quote.Type)
	require.Len(t, quote.Children, 2)
	require.False(t, quote.Children[0].(*document.Text).HasMark("bold"))
	require.True(t, quote.Children[1].(*document.Text).HasMark("bold"))

	require.Equal(t, document.DefaultBlockType, document.AsElement(nodes[1]).Type)
}

func TestDeserialize_InlineBodyBecomesParagraph(t *testing.T) {
	nodes, err := Deserialize(plugins(), "just <strong>text</strong>")
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	p := document.AsElement(nodes[0])
	require.Equal(t, document.DefaultBlockType, p.Type)
	require.Equal(t, "just text", document.TextContent(p))
}

func TestDeserialize_DropsLayoutWhitespace(t *testing.T) {
	nodes, err := Deserialize(plugins(), "<p>a</p>\n  <p>b</p>\n")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
}

func TestDeserialize_BreaksAndEmptyElements(t *testing.T) {
	nodes, err := Deserialize(plugins(), "<p>a<br>b</p><p></p>")
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	require.Equal(t, "a\nb", document.TextContent(document.AsElement(nodes[0])))
	empty := document.AsElement(nodes[1])
	require.Len(t, empty.Children, 1)
	require.Equal(t, "", empty.Children[0].(*document.Text).Text)
}

func TestRoundTrip(t *testing.T) {
	markup := "<blockquote>a <strong>b</strong></blockquote><p>c &amp; d</p>"

	nodes, err := Deserialize(plugins(), markup)
	require.NoError(t, err)

	require.Equal(t, markup, Serialize(plugins(), nodes...))
}

func TestDeserializeElement(t *testing.T) {
	frag, err := html.ParseFragment(strings.NewReader("<strong>x</strong>"), &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body})
	require.NoError(t, err)
	require.Len(t, frag, 1)

	nodes := DeserializeElement(plugins(), frag[0])

	require.Len(t, nodes, 1)
	require.True(t, nodes[0].(*document.Text).HasMark("bold"))
}

package codeblock

import (
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/editor"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/plugins/formatting"
)

func compose(initial ...document.Node) *editor.Editor {
	return editor.Compose([]plugin.Plugin{New(Options{}).Plugin(), formatting.New()}, editor.WithInitialValue(initial...))
}

func shape(n document.Node) string {
	if t, ok := n.(*document.Text); ok {
		return t.Text
	}
	el := document.AsElement(n)
	parts := make([]string, 0, len(el.Children))
	for _, ch := range el.Children {
		parts = append(parts, shape(ch))
	}
	typ := el.Type
	if typ == document.DefaultBlockType {
		typ = "p"
	}
	return typ + "(" + strings.Join(parts, ",") + ")"
}

func doc(e *editor.Editor) string {
	parts := make([]string, 0, len(e.Children()))
	for _, n := range e.Children() {
		parts = append(parts, shape(n))
	}
	return strings.Join(parts, ",")
}

func block(lang string, lines ...string) *document.Element {
	children := make([]document.Node, len(lines))
	for i, l := range lines {
		children[i] = document.NewElement(CodeLine, document.NewText(l))
	}
	return document.NewElement(Code, children...).WithProps(document.Props{PropLanguage: lang})
}

func at(offset int, path ...int) document.Point {
	return document.Point{Path: path, Offset: offset}
}

func press(e *editor.Editor, msg tea.KeyMsg) *plugin.KeyEvent {
	ev := plugin.NewKeyEvent(msg)
	e.KeyDown(context.Background(), ev)
	return ev
}

func TestToggle(t *testing.T) {
	c := New(Options{})
	e := compose(document.Paragraph("a"), document.Paragraph("b"), document.Paragraph("c"))
	require.NoError(t, e.Select(document.Range{Anchor: at(0, 0, 0), Focus: at(1, 1, 0)}))

	require.NoError(t, c.Toggle(e.Editor))
	require.Equal(t, "code(code-line(a),code-line(b)),p(c)", doc(e))
	require.Equal(t, "javascript", document.AsElement(e.Children()[0]).StringProp(PropLanguage))
	require.True(t, IsCodeBlockActive(e.Editor))

	require.NoError(t, c.Toggle(e.Editor))
	require.Equal(t, "p(a),p(b),p(c)", doc(e))
	require.False(t, IsCodeBlockActive(e.Editor))
}

func TestToggleCodeBlock_MiddleLineSplitsBlock(t *testing.T) {
	c := New(Options{})
	e := compose(block("go", "a", "b", "c"))
	require.NoError(t, e.Select(at(0, 0, 1, 0)))

	require.NoError(t, c.Toggle(e.Editor))

	require.Equal(t, "code(code-line(a)),p(b),code(code-line(c))", doc(e))
}

func TestToggleCodeBlock_Language(t *testing.T) {
	e := compose(document.Paragraph("x = 1"))
	require.NoError(t, e.Select(at(0, 0, 0)))

	require.NoError(t, ToggleCodeBlock(e.Editor, "go"))
	require.Equal(t, "go", document.AsElement(e.Children()[0]).StringProp(PropLanguage))

	require.NoError(t, SetLanguage(e.Editor, "rust"))
	require.Equal(t, "rust", document.AsElement(e.Children()[0]).StringProp(PropLanguage))
}

func TestToggleCodeBlock_NoSelection(t *testing.T) {
	e := compose(document.Paragraph("a"))
	require.ErrorIs(t, New(Options{}).Toggle(e.Editor), document.ErrNoSelection)
	require.False(t, IsCodeBlockActive(e.Editor))
}

func TestTab_InsertsIndent(t *testing.T) {
	e := compose(block("go", "x"))
	require.NoError(t, e.Select(at(0, 0, 0, 0)))

	ev := press(e, tea.KeyMsg{Type: tea.KeyTab})

	require.True(t, ev.DefaultPrevented())
	require.Equal(t, "    x", e.String(document.Path{0, 0}))
}

func TestTab_OutsideCodeIgnored(t *testing.T) {
	e := compose(document.Paragraph("x"))
	require.NoError(t, e.Select(at(0, 0, 0)))

	ev := press(e, tea.KeyMsg{Type: tea.KeyTab})

	require.False(t, ev.DefaultPrevented())
}

func TestShiftTab_Outdents(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		cursor int
		want   string
	}{
		{"before cursor", "ab    cd", 6, "abcd"},
		{"line start", "    ab", 6, "ab"},
		{"line start when cursor text is not indent", "    a b", 7, "a b"},
		{"nothing to remove", "  ab", 4, "  ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := compose(block("go", tt.line))
			require.NoError(t, e.Select(at(tt.cursor, 0, 0, 0)))

			ev := press(e, tea.KeyMsg{Type: tea.KeyShiftTab})

			require.True(t, ev.DefaultPrevented())
			require.Equal(t, tt.want, e.String(document.Path{0, 0}))
		})
	}
}

func TestCtrlA_SelectsBlock(t *testing.T) {
	e := compose(document.Paragraph("before"), block("go", "one", "two"))
	require.NoError(t, e.Select(at(1, 1, 0, 0)))

	ev := press(e, tea.KeyMsg{Type: tea.KeyCtrlA})

	require.True(t, ev.DefaultPrevented())
	sel := e.Selection()
	require.NotNil(t, sel)
	require.Equal(t, at(0, 1, 0, 0), sel.Anchor)
	require.Equal(t, at(3, 1, 1, 0), sel.Focus)
}

func TestDecorate_MarksTokens(t *testing.T) {
	e := compose(block("go", "func main() {}"))
	line := document.NodeEntry{Node: e.Children()[0].(*document.Element).Children[0], Path: document.Path{0, 0}}

	decos := decorate(e.Editor, line)

	require.NotEmpty(t, decos)
	first := decos[0]
	require.Equal(t, at(0, 0, 0, 0), first.Range.Anchor)
	require.Equal(t, at(4, 0, 0, 0), first.Range.Focus)
	tt, ok := first.Props[MarkToken].(chroma.TokenType)
	require.True(t, ok)
	require.True(t, tt.InCategory(chroma.Keyword))
	for _, d := range decos {
		require.LessOrEqual(t, d.Range.End().Offset, len("func main() {}"))
	}
}

func TestDecorate_SkipsOtherNodes(t *testing.T) {
	e := compose(document.Paragraph("func"), block("go", ""))

	require.Empty(t, decorate(e.Editor, document.NodeEntry{Node: e.Children()[0], Path: document.Path{0}}))
	line := document.AsElement(e.Children()[1]).Children[0]
	require.Empty(t, decorate(e.Editor, document.NodeEntry{Node: line, Path: document.Path{1, 0}}))
}

func TestPointAt_SpansTexts(t *testing.T) {
	line := document.NewElement(CodeLine, document.NewText("ab"), document.NewText("cd", document.Props{"bold": true}))
	path := document.Path{0, 0}

	require.Equal(t, at(1, 0, 0, 0), pointAt(line, path, 1))
	require.Equal(t, at(2, 0, 0, 0), pointAt(line, path, 2))
	require.Equal(t, at(1, 0, 0, 1), pointAt(line, path, 3))
	require.Equal(t, at(2, 0, 0, 1), pointAt(line, path, 9))

	off, ok := offsetOf(line, path, at(1, 0, 0, 1))
	require.True(t, ok)
	require.Equal(t, 3, off)
}

func TestSerializeRoundTrip(t *testing.T) {
	e := compose(document.Paragraph(""))
	markup := `<pre data-language="go"><code>a &lt; b</code><code></code></pre><p>x <code>y</code></p>`

	nodes, err := e.Deserialize(markup)
	require.NoError(t, err)
	e.Reset(nodes...)

	require.Equal(t, "code(code-line(a < b),code-line()),p(x ,y)", doc(e))
	require.True(t, document.AsElement(e.Children()[1]).Children[1].(*document.Text).HasMark(formatting.Code))
	require.Equal(t, markup, e.Serialize())
}

func TestDeserialize_BarePre(t *testing.T) {
	e := compose(document.Paragraph(""))

	nodes, err := e.Deserialize("<pre>one\ntwo</pre>")
	require.NoError(t, err)

	require.Len(t, nodes, 1)
	require.Equal(t, "code(code-line(one),code-line(two))", shape(nodes[0]))
	require.Equal(t, "", document.AsElement(nodes[0]).StringProp(PropLanguage))
}

func TestRender(t *testing.T) {
	e := compose(block("go", "x := 1"))
	out := e.Render()
	require.Contains(t, out, "go")
	require.Contains(t, out, "x")
	require.Contains(t, out, "1")
}

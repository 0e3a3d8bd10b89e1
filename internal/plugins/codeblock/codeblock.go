// Package codeblock adds fenced code: a code element holding one code-line
// element per source line, highlighted with chroma.
package codeblock

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/ui/styles"
)

// Element types.
const (
	Code     = "code"
	CodeLine = "code-line"
)

// PropLanguage names the language of a code element.
const PropLanguage = "language"

// MarkToken is the decoration prop holding a chroma.TokenType.
const MarkToken = "kona.token"

// DefaultLanguage is the language of new blocks when none is configured.
const DefaultLanguage = "javascript"

const (
	indent       = "    "
	defaultStyle = "catppuccin-mocha"
)

// Options tunes the plugin. Zero values pick the defaults.
type Options struct {
	// DefaultLanguage is set on blocks created by Toggle.
	DefaultLanguage string
	// Style is a chroma style name.
	Style string
}

// CodeBlock is the code block plugin.
type CodeBlock struct {
	language string
	style    *chroma.Style
}

// New returns the code block plugin state.
func New(opts Options) *CodeBlock {
	c := &CodeBlock{language: opts.DefaultLanguage, style: chromastyles.Get(opts.Style)}
	if c.language == "" {
		c.language = DefaultLanguage
	}
	if opts.Style == "" {
		c.style = chromastyles.Get(defaultStyle)
	}
	return c
}

// Plugin returns the plugin value to compose. Compose it before formatting
// so <code> inside <pre> is read as a line rather than a mark.
func (c *CodeBlock) Plugin() plugin.Plugin {
	return plugin.Plugin{
		Name: "codeblock",
		Blocks: []plugin.Block{
			{
				Type:        Code,
				Render:      renderCode,
				Serialize:   serializeCode,
				Deserialize: deserializeCode,
			},
			{
				Type:        CodeLine,
				Serialize:   plugin.SerializeTag(CodeLine, "code"),
				Deserialize: deserializeLine,
			},
		},
		Leafs:    []plugin.Leaf{{Render: c.renderLeaf}},
		Decorate: decorate,
		Handlers: plugin.Handlers{OnKeyDown: c.onKeyDown},
	}
}

// IsCodeBlockActive reports whether the selection touches a code block.
func IsCodeBlockActive(ed *document.Editor) bool {
	if ed.Selection() == nil {
		return false
	}
	return len(ed.Nodes(document.NodesOptions{Match: document.MatchType(Code)})) > 0
}

// Toggle runs ToggleCodeBlock with the configured default language.
func (c *CodeBlock) Toggle(ed *document.Editor) error {
	return ToggleCodeBlock(ed, c.language)
}

// ToggleCodeBlock turns the selected paragraphs into one code block in
// language, or turns the lines of the code block at the selection back into
// paragraphs.
func ToggleCodeBlock(ed *document.Editor, language string) error {
	if ed.Selection() == nil {
		return document.ErrNoSelection
	}
	active := IsCodeBlockActive(ed)
	var err error
	ed.WithoutNormalizing(func() {
		if active {
			err = ed.SetNodes(document.Props{document.PropType: document.DefaultBlockType}, document.NodeOptions{
				Match: document.MatchType(CodeLine),
			})
			if err != nil {
				return
			}
			err = ed.UnwrapNodes(document.NodeOptions{Match: document.MatchType(Code), Split: true})
			return
		}
		err = ed.SetNodes(document.Props{document.PropType: CodeLine}, document.NodeOptions{
			Match: document.MatchType(document.DefaultBlockType),
		})
		if err != nil {
			return
		}
		wrapper := document.NewElement(Code).WithProps(document.Props{PropLanguage: language})
		err = ed.WrapNodes(wrapper, document.NodeOptions{Match: document.MatchType(CodeLine)})
	})
	if err != nil {
		return fmt.Errorf("toggle code block: %w", err)
	}
	return nil
}

// SetLanguage changes the language of the code block at the selection.
func SetLanguage(ed *document.Editor, language string) error {
	block, ok := ed.Above(document.AboveOptions{Match: document.MatchType(Code)})
	if !ok {
		return fmt.Errorf("set language: no code block at selection")
	}
	return ed.SetNodes(document.Props{PropLanguage: language}, document.NodeOptions{At: block.Path})
}

func (c *CodeBlock) onKeyDown(ev *plugin.KeyEvent, ed *document.Editor) {
	sel := ed.Selection()
	if sel == nil {
		return
	}
	line, ok := ed.Above(document.AboveOptions{Match: document.MatchType(CodeLine)})
	if !ok {
		return
	}

	switch ev.String() {
	case "tab":
		ev.PreventDefault()
		ed.InsertText(indent)
	case "shift+tab":
		ev.PreventDefault()
		if err := outdent(ed, line, sel.Anchor); err != nil {
			log.ErrorErr(log.CatEditor, "outdent code line failed", err, "path", line.Path)
		}
	case "ctrl+a":
		block, ok := ed.Above(document.AboveOptions{Match: document.MatchType(Code)})
		if !ok {
			return
		}
		ev.PreventDefault()
		start, _ := ed.Start(block.Path)
		end, _ := ed.End(block.Path)
		if err := ed.Select(document.Range{Anchor: start, Focus: end}); err != nil {
			log.ErrorErr(log.CatEditor, "select code block failed", err, "path", block.Path)
		}
	}
}

// outdent removes one indent before the cursor, or else one from the start
// of the line.
func outdent(ed *document.Editor, line document.NodeEntry, at document.Point) error {
	el := line.Element()
	text := document.TextContent(el)
	offset, ok := offsetOf(el, line.Path, at)
	var from, to int
	switch {
	case ok && offset >= len(indent) && text[offset-len(indent):offset] == indent:
		from, to = offset-len(indent), offset
	case strings.HasPrefix(text, indent):
		from, to = 0, len(indent)
	default:
		return nil
	}
	return ed.Delete(document.DeleteOptions{At: document.Range{
		Anchor: pointAt(el, line.Path, from),
		Focus:  pointAt(el, line.Path, to),
	}})
}

// offsetOf maps a point in one of the line's texts to an offset into the
// line's text content.
func offsetOf(line *document.Element, path document.Path, pt document.Point) (int, bool) {
	n := 0
	for i, ch := range line.Children {
		if pt.Path.Equals(path.Child(i)) {
			return n + pt.Offset, true
		}
		n += len(document.TextContent(ch))
	}
	return 0, false
}

// pointAt maps an offset into the line's text content to a point in one of
// its direct texts.
func pointAt(line *document.Element, path document.Path, offset int) document.Point {
	last := document.Point{Path: path.Child(0)}
	for i, ch := range line.Children {
		size := len(document.TextContent(ch))
		if document.IsText(ch) {
			last = document.Point{Path: path.Child(i), Offset: min(offset, size)}
			if offset <= size {
				return last
			}
		}
		offset -= size
	}
	return last
}

func tokenise(language, text string) []chroma.Token {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, text)
	if err != nil {
		log.Debug(log.CatEditor, "tokenise failed", "language", language, "error", err)
		return nil
	}
	return it.Tokens()
}

// decorate marks the tokens of each code line.
func decorate(ed *document.Editor, entry document.NodeEntry) []plugin.Decoration {
	line := entry.Element()
	if line == nil || line.Type != CodeLine {
		return nil
	}
	parent, err := ed.Parent(entry.Path)
	if err != nil || parent.Type != Code {
		return nil
	}
	text := document.TextContent(line)
	if text == "" {
		return nil
	}
	var out []plugin.Decoration
	start := 0
	for _, tok := range tokenise(parent.StringProp(PropLanguage), text) {
		end := min(start+len(tok.Value), len(text))
		if end > start && tok.Type != chroma.Text && tok.Type != chroma.TextWhitespace {
			out = append(out, plugin.Decoration{
				Range: document.Range{
					Anchor: pointAt(line, entry.Path, start),
					Focus:  pointAt(line, entry.Path, end),
				},
				Props: document.Props{MarkToken: tok.Type},
			})
		}
		start = end
		if start >= len(text) {
			break
		}
	}
	return out
}

func (c *CodeBlock) renderLeaf(props plugin.RenderLeafProps, _ *document.Editor) string {
	tt, ok := props.Leaf.Marks[MarkToken].(chroma.TokenType)
	if !ok {
		return props.Children
	}
	entry := c.style.Get(tt)
	st := lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		st = st.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	return st.Render(props.Children)
}

func renderCode(props plugin.RenderElementProps, _ *document.Editor) string {
	body := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(styles.CodeColor).
		PaddingLeft(1).
		Render(strings.Join(props.ChildParts, "\n"))
	if lang := props.Element.StringProp(PropLanguage); lang != "" {
		return styles.CodeStyle.Render(lang) + "\n" + body
	}
	return body
}

func serializeCode(n document.Node, children string) (string, bool) {
	el := document.AsElement(n)
	if el == nil || el.Type != Code {
		return "", false
	}
	lang := el.StringProp(PropLanguage)
	if lang == "" {
		return "<pre>" + children + "</pre>", true
	}
	return `<pre data-language="` + html.EscapeString(lang) + `">` + children + "</pre>", true
}

// deserializeCode reads <pre>. Lines come from <code> children, or from
// splitting bare text at newlines.
func deserializeCode(el *html.Node, children []document.Node) ([]document.Node, bool) {
	if el.Data != "pre" {
		return nil, false
	}
	var lines []document.Node
	for _, ch := range children {
		if document.IsType(ch, CodeLine) {
			lines = append(lines, ch)
			continue
		}
		for _, s := range strings.Split(document.TextContent(ch), "\n") {
			lines = append(lines, document.NewElement(CodeLine, document.NewText(s)))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, document.NewElement(CodeLine, document.NewText("")))
	}
	code := document.NewElement(Code, lines...)
	if lang := plugin.Attr(el, "data-language"); lang != "" {
		code.WithProps(document.Props{PropLanguage: lang})
	}
	return []document.Node{code}, true
}

func deserializeLine(el *html.Node, children []document.Node) ([]document.Node, bool) {
	if el.Data != "code" || el.Parent == nil || el.Parent.Data != "pre" {
		return nil, false
	}
	return []document.Node{document.NewElement(CodeLine, children...)}, true
}

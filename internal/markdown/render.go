package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// noMarginStyle removes document margins so previews start at column 0.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer turns markdown into styled terminal output.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewRenderer creates a renderer wrapping at width. style is a glamour
// standard style ("dark", "light", "notty", "dracula", ...) or "auto",
// which queries the terminal background. Empty means "dark".
func NewRenderer(width int, style string) (*Renderer, error) {
	styleOpt := glamour.WithStylePath(style)
	switch style {
	case "":
		styleOpt = glamour.WithStylePath("dark")
	case "auto":
		styleOpt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render renders markdown, trimming the blank lines glamour adds around
// the document.
func (r *Renderer) Render(markdown string) (string, error) {
	out, err := r.renderer.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

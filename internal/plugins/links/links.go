// Package links adds inline hyperlinks. Typing or pasting a URL as one
// piece of text turns it into a link.
package links

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	nethtml "golang.org/x/net/html"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/ui/styles"
)

// Link is the element type; the target lives in the PropURL property.
const (
	Link    = "a"
	PropURL = "url"
)

// ErrInvalidURL is returned when a link target is not an absolute URL.
var ErrInvalidURL = errors.New("invalid url")

// Options configures the links plugin.
type Options struct {
	// Hint renders the overlay shown while the cursor is inside a link.
	// Defaults to the link's URL.
	Hint func(el *document.Element) string
}

// New returns the links plugin.
func New(opts Options) plugin.Plugin {
	if opts.Hint == nil {
		opts.Hint = func(el *document.Element) string { return el.StringProp(PropURL) }
	}
	return plugin.Plugin{
		Name: "links",
		Init: initLinks,
		Blocks: []plugin.Block{{
			Type:        Link,
			IsInline:    plugin.Declare(true),
			Render:      render,
			Serialize:   serialize,
			Deserialize: deserialize,
		}},
		UI: func(params plugin.UIParams) string {
			if params.ReadOnly || params.Editor == nil {
				return ""
			}
			entry, ok := Active(params.Editor)
			if !ok {
				return ""
			}
			return styles.StatusBarStyle.Render(opts.Hint(entry.Element()))
		},
	}
}

// IsURL reports whether s is an absolute http, https or mailto URL.
func IsURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "mailto":
		return u.Opaque != ""
	}
	return false
}

// NewLink creates a link element showing text.
func NewLink(target, text string) *document.Element {
	return document.NewElement(Link, document.NewText(text)).WithProps(document.Props{PropURL: target})
}

func initLinks(ed *document.Editor) *document.Editor {
	ed.WrapInsertText(func(next document.InsertTextFunc) document.InsertTextFunc {
		return func(text string) {
			if !IsURL(text) || ed.Selection() == nil {
				next(text)
				return
			}
			if err := insertLink(ed, text); err != nil {
				log.ErrorErr(log.CatEditor, "insert link failed", err, "url", text)
			}
		}
	})
	return ed
}

func matchLink(n document.Node, _ document.Path) bool { return document.IsType(n, Link) }

// Active returns the link around the selection focus.
func Active(ed *document.Editor) (document.NodeEntry, bool) {
	sel := ed.Selection()
	if sel == nil {
		return document.NodeEntry{}, false
	}
	return ed.Above(document.AboveOptions{At: sel.Focus, Match: matchLink})
}

// AddLink links the selection to target. A link already in the selection
// gets the new target; a collapsed selection inserts the URL as a link.
func AddLink(ed *document.Editor, target string) error {
	sel := ed.Selection()
	if sel == nil {
		return document.ErrNoSelection
	}
	if !IsURL(target) {
		return fmt.Errorf("%w: %q", ErrInvalidURL, target)
	}
	if existing := ed.Nodes(document.NodesOptions{At: *sel, Match: matchLink}); len(existing) > 0 {
		return ed.SetNodes(document.Props{PropURL: target}, document.NodeOptions{At: existing[0].Path})
	}
	return insertLink(ed, target)
}

func insertLink(ed *document.Editor, target string) error {
	sel := ed.Selection()
	var err error
	if sel.IsCollapsed() {
		err = ed.InsertNodes([]document.Node{NewLink(target, target)}, document.NodeOptions{})
	} else {
		wrapper := document.NewElement(Link).WithProps(document.Props{PropURL: target})
		if err = ed.WrapNodes(wrapper, document.NodeOptions{Split: true}); err == nil {
			err = ed.Collapse(document.EdgeEnd)
		}
	}
	if err != nil {
		return fmt.Errorf("link %q: %w", target, err)
	}
	return exitLink(ed)
}

// exitLink moves a cursor inside a link to the text right after it.
func exitLink(ed *document.Editor) error {
	link, ok := Active(ed)
	if !ok {
		return nil
	}
	pt, ok := ed.Start(link.Path.Next())
	if !ok {
		return nil
	}
	return ed.Select(pt)
}

// RemoveLink unwraps the links in the selection.
func RemoveLink(ed *document.Editor) error {
	if ed.Selection() == nil {
		return document.ErrNoSelection
	}
	if len(ed.Nodes(document.NodesOptions{Match: matchLink})) == 0 {
		return nil
	}
	return ed.UnwrapNodes(document.NodeOptions{Match: matchLink})
}

func render(props plugin.RenderElementProps, _ *document.Editor) string {
	return styles.LinkStyle.Render(props.Children)
}

func serialize(n document.Node, children string) (string, bool) {
	el := document.AsElement(n)
	if el == nil || el.Type != Link {
		return "", false
	}
	return `<a href="` + html.EscapeString(el.StringProp(PropURL)) + `">` + children + "</a>", true
}

func deserialize(el *nethtml.Node, children []document.Node) ([]document.Node, bool) {
	if el.Data != "a" {
		return nil, false
	}
	link := document.NewElement(Link, children...).WithProps(document.Props{PropURL: plugin.Attr(el, "href")})
	return []document.Node{link}, true
}

// Package attachments adds file attachment blocks. An attachment is a void
// block that references a file; the host decides whether it may be deleted.
package attachments

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/ui/styles"
)

// Attachment element type and properties.
const (
	Attachment = "attach"
	PropFile   = "file"
	PropName   = "name"
)

// Options wires the host into attachment lifecycle events.
type Options struct {
	// OnBeforeDelete may veto removing attachments. An error counts as a
	// veto.
	OnBeforeDelete func(ctx context.Context, files []string) (bool, error)
	// OnDelete runs after attachments were removed.
	OnDelete func(files []string)
	// Accept reports whether pasted text naming a file becomes an
	// attachment. Defaults to image files.
	Accept func(file string) bool
}

// New returns the attachments plugin.
func New(opts Options) plugin.Plugin {
	if opts.Accept == nil {
		opts.Accept = IsImage
	}
	block := plugin.Block{
		Type:        Attachment,
		IsVoid:      plugin.Declare(true),
		Render:      render,
		Serialize:   serialize,
		Deserialize: deserialize,
	}
	if opts.OnBeforeDelete != nil {
		block.OnBeforeDelete = func(ctx context.Context, blocks []*document.Element) (bool, error) {
			return opts.OnBeforeDelete(ctx, files(blocks))
		}
	}
	if opts.OnDelete != nil {
		block.OnDelete = func(blocks []*document.Element) {
			opts.OnDelete(files(blocks))
		}
	}
	return plugin.Plugin{
		Name:   "attachments",
		Blocks: []plugin.Block{block},
		Handlers: plugin.Handlers{
			OnPaste: func(ev *plugin.PasteEvent, ed *document.Editor) {
				file := strings.TrimSpace(ev.Text)
				if ev.HTML != "" || file == "" || strings.Contains(file, "\n") || !opts.Accept(file) {
					return
				}
				ev.PreventDefault()
				if err := Insert(ed, file); err != nil {
					log.ErrorErr(log.CatEditor, "insert attachment failed", err, "file", file)
				}
			},
		},
	}
}

// IsImage reports whether file has an image extension.
func IsImage(file string) bool {
	return strings.HasPrefix(mime.TypeByExtension(strings.ToLower(filepath.Ext(file))), "image/")
}

// NewAttachment creates an attachment element for file.
func NewAttachment(file string) *document.Element {
	return document.NewElement(Attachment, document.NewText("")).WithProps(document.Props{
		PropFile: file,
		PropName: filepath.Base(file),
	})
}

// Insert adds an attachment block for file at the selection.
func Insert(ed *document.Editor, file string) error {
	if ed.Selection() == nil {
		return document.ErrNoSelection
	}
	if err := ed.InsertNodes([]document.Node{NewAttachment(file)}, document.NodeOptions{}); err != nil {
		return fmt.Errorf("insert attachment %q: %w", file, err)
	}
	return nil
}

func files(blocks []*document.Element) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.StringProp(PropFile))
	}
	return out
}

func render(props plugin.RenderElementProps, _ *document.Editor) string {
	name := props.Element.StringProp(PropName)
	if name == "" {
		name = filepath.Base(props.Element.StringProp(PropFile))
	}
	return styles.AttachmentStyle.Render("[" + name + "]")
}

func serialize(n document.Node, _ string) (string, bool) {
	el := document.AsElement(n)
	if el == nil || el.Type != Attachment {
		return "", false
	}
	return `<div data-type="attach" data-file="` + html.EscapeString(el.StringProp(PropFile)) +
		`" data-name="` + html.EscapeString(el.StringProp(PropName)) + `"></div>`, true
}

func deserialize(el *html.Node, _ []document.Node) ([]document.Node, bool) {
	if el.Data != "div" || plugin.Attr(el, "data-type") != Attachment {
		return nil, false
	}
	att := NewAttachment(plugin.Attr(el, "data-file"))
	if name := plugin.Attr(el, "data-name"); name != "" {
		att.Props[PropName] = name
	}
	return []document.Node{att}, true
}

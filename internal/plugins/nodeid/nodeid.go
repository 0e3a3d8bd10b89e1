// Package nodeid gives every element a stable identity. Ids are stamped as
// operations pass through the editor: new elements get one, elements whose
// type changes get a fresh one, and the second half of a split gets its own.
package nodeid

import (
	"github.com/google/uuid"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
)

// Options configures the identity assigner.
type Options struct {
	// GenerateID returns a new id. Defaults to a random UUID.
	GenerateID func() string
}

// New returns the identity plugin.
func New(opts Options) plugin.Plugin {
	gen := opts.GenerateID
	if gen == nil {
		gen = uuid.NewString
	}
	return plugin.Plugin{
		Name: "nodeid",
		Init: func(ed *document.Editor) *document.Editor {
			ed.WrapApply(Middleware(ed, gen))
			return ed
		},
	}
}

// Middleware stamps ids on the operations ed applies.
func Middleware(ed *document.Editor, gen func() string) document.ApplyMiddleware {
	return func(next document.ApplyFunc) document.ApplyFunc {
		return func(op document.Operation) error {
			switch op.Type {
			case document.OpSetNode:
				if isElementAt(ed, op.Path) && op.Properties[document.PropType] != op.NewProperties[document.PropType] {
					op.NewProperties = withID(op.NewProperties, gen)
				}
			case document.OpInsertNode:
				if op.Node != nil {
					op.Node = op.Node.Clone()
					stampTree(op.Node, gen)
				}
			case document.OpSplitNode:
				if isElementAt(ed, op.Path) {
					op.Properties = withID(op.Properties, gen)
				}
			}
			return next(op)
		}
	}
}

func isElementAt(ed *document.Editor, p document.Path) bool {
	n, err := ed.Node(p)
	return err == nil && !document.IsText(n)
}

func withID(props document.Props, gen func() string) document.Props {
	out := props.Clone()
	if out == nil {
		out = document.Props{}
	}
	// Without a fresh id the split half must not inherit the original's.
	delete(out, document.PropNodeID)
	if id, ok := generate(gen); ok {
		out[document.PropNodeID] = id
	}
	return out
}

// generate calls gen, turning a panic into a skipped id.
func generate(gen func() string) (id string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatIdentity, "id generation failed", "panic", r)
			id, ok = "", false
		}
	}()
	return gen(), true
}

// stampTree gives every element under n that lacks an id a new one.
func stampTree(n document.Node, gen func() string) {
	el := document.AsElement(n)
	if el == nil {
		return
	}
	if Of(el) == "" {
		stamp(el, gen)
	}
	for _, child := range el.Children {
		stampTree(child, gen)
	}
}

func stamp(el *document.Element, gen func() string) {
	id, ok := generate(gen)
	if !ok {
		return
	}
	if el.Props == nil {
		el.Props = document.Props{}
	}
	el.Props[document.PropNodeID] = id
}

// Of returns the id of el, or "" when it has none.
func Of(el *document.Element) string {
	if el == nil {
		return ""
	}
	return el.StringProp(document.PropNodeID)
}

// Find returns the element carrying id.
func Find(ed *document.Editor, id string) (document.NodeEntry, bool) {
	if id == "" {
		return document.NodeEntry{}, false
	}
	entries := ed.Nodes(document.NodesOptions{
		At:    document.Path{},
		Voids: true,
		Match: func(n document.Node, _ document.Path) bool {
			return Of(document.AsElement(n)) == id
		},
	})
	if len(entries) == 0 {
		return document.NodeEntry{}, false
	}
	return entries[0], true
}

package commandset

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugins/codeblock"
	"github.com/usekona/kona/internal/plugins/commands"
	"github.com/usekona/kona/internal/plugins/formatting"
	"github.com/usekona/kona/internal/plugins/headings"
	"github.com/usekona/kona/internal/plugins/highlights"
	"github.com/usekona/kona/internal/plugins/links"
	"github.com/usekona/kona/internal/plugins/lists"
)

// ErrInvalid is returned for definitions that cannot be built.
var ErrInvalid = errors.New("invalid command")

// Provider produces the commands of a dynamic submenu.
type Provider func(ctx context.Context, gc commands.GetCommandsContext) ([]commands.Command, error)

// Options configures Build.
type Options struct {
	// Providers are looked up by name before the built-in providers.
	Providers map[string]Provider
	// Deserialize parses markup for insert actions. Required when any
	// definition uses one.
	Deserialize func(markup string) ([]document.Node, error)
}

var knownMarks = []string{
	formatting.Bold,
	formatting.Italic,
	formatting.Underline,
	formatting.Strikethrough,
	formatting.Code,
}

// Build validates defs and turns them into menu commands.
func Build(defs []Definition, opts Options) ([]commands.Command, error) {
	return buildLevel(defs, opts, nil)
}

func buildLevel(defs []Definition, opts Options, parent []string) ([]commands.Command, error) {
	seen := make(map[string]bool, len(defs))
	out := make([]commands.Command, 0, len(defs))
	for i, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: %s: entry %d has no name", ErrInvalid, where(parent), i)
		}
		path := append(parent[:len(parent):len(parent)], d.Name)
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: %s: duplicate name", ErrInvalid, where(path))
		}
		seen[d.Name] = true
		cmd, err := buildCommand(d, opts, path)
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, nil
}

func where(path []string) string {
	if len(path) == 0 {
		return "root"
	}
	return strings.Join(path, "/")
}

func buildCommand(d Definition, opts Options, path []string) (commands.Command, error) {
	cmd := commands.Command{
		Name:        d.Name,
		Title:       d.Title,
		CommandName: d.CommandName,
		Icon:        d.Icon,
	}
	if cmd.Title == "" {
		cmd.Title = d.Name
	}
	if cmd.CommandName == "" {
		cmd.CommandName = strings.ToLower(cmd.Title)
	}

	kinds := 0
	for _, set := range []bool{d.Action != nil, len(d.Children) > 0, d.Provider != ""} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return cmd, fmt.Errorf("%w: %s: needs exactly one of action, children or provider", ErrInvalid, where(path))
	}

	switch {
	case d.Action != nil:
		action, err := buildAction(*d.Action, opts)
		if err != nil {
			return cmd, fmt.Errorf("%w: %s: %w", ErrInvalid, where(path), err)
		}
		cmd.Action = logged(where(path), action)
	case len(d.Children) > 0:
		children, err := buildLevel(d.Children, opts, path)
		if err != nil {
			return cmd, err
		}
		cmd.GetCommands = func(context.Context, commands.GetCommandsContext) ([]commands.Command, error) {
			return children, nil
		}
	default:
		p, ok := lookupProvider(opts, d.Provider)
		if !ok {
			return cmd, fmt.Errorf("%w: %s: unknown provider %q", ErrInvalid, where(path), d.Provider)
		}
		cmd.GetCommands = func(ctx context.Context, gc commands.GetCommandsContext) ([]commands.Command, error) {
			return p(ctx, gc)
		}
	}
	return cmd, nil
}

type actionFunc func(a commands.Actions, ed *document.Editor) error

func logged(name string, fn actionFunc) func(commands.Actions, *document.Editor) {
	return func(a commands.Actions, ed *document.Editor) {
		if err := fn(a, ed); err != nil {
			log.ErrorErr(log.CatCommands, "command failed", err, "command", name)
		}
	}
}

func buildAction(def ActionDef, opts Options) (actionFunc, error) {
	kinds := 0
	for _, set := range []bool{
		def.Set != nil, def.Insert != "", def.Text != "", def.List != "",
		def.Heading != 0, def.Mark != "", def.Link != "",
		def.Code != "", def.Highlight != "",
	} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, errors.New("action needs exactly one kind")
	}

	switch {
	case def.Set != nil:
		props := document.Props(maps.Clone(def.Set))
		return func(a commands.Actions, _ *document.Editor) error {
			return a.Set(props.Clone(), document.NodeOptions{})
		}, nil

	case def.Insert != "":
		if opts.Deserialize == nil {
			return nil, errors.New("insert action without a deserializer")
		}
		if _, err := opts.Deserialize(def.Insert); err != nil {
			return nil, fmt.Errorf("insert markup: %w", err)
		}
		markup := def.Insert
		return func(a commands.Actions, _ *document.Editor) error {
			nodes, err := opts.Deserialize(markup)
			if err != nil {
				return err
			}
			return a.Insert(nodes...)
		}, nil

	case def.Text != "":
		text := def.Text
		return func(a commands.Actions, _ *document.Editor) error {
			if err := a.RemoveCommand(); err != nil {
				return err
			}
			a.InsertText(text)
			return nil
		}, nil

	case def.List != "":
		if def.List != lists.BulletedList && def.List != lists.NumberedList {
			return nil, fmt.Errorf("unknown list type %q", def.List)
		}
		listType := def.List
		return afterRemove(func(ed *document.Editor) error { return lists.ToggleList(ed, listType) }), nil

	case def.Heading != 0:
		if _, err := headings.Type(def.Heading); err != nil {
			return nil, err
		}
		level := def.Heading
		return afterRemove(func(ed *document.Editor) error { return headings.ToggleHeading(ed, level) }), nil

	case def.Mark != "":
		if !slices.Contains(knownMarks, def.Mark) {
			return nil, fmt.Errorf("unknown mark %q", def.Mark)
		}
		mark := def.Mark
		return afterRemove(func(ed *document.Editor) error { return formatting.ToggleMark(ed, mark) }), nil

	case def.Code != "":
		language := def.Code
		return afterRemove(func(ed *document.Editor) error { return codeblock.ToggleCodeBlock(ed, language) }), nil

	case def.Highlight != "":
		if _, ok := highlights.DefaultColors[def.Highlight]; !ok {
			return nil, fmt.Errorf("unknown highlight color %q", def.Highlight)
		}
		color := def.Highlight
		return afterRemove(func(ed *document.Editor) error { return highlights.ToggleHighlight(ed, color) }), nil

	default:
		if !links.IsURL(def.Link) {
			return nil, fmt.Errorf("%w: %q", links.ErrInvalidURL, def.Link)
		}
		target := def.Link
		return afterRemove(func(ed *document.Editor) error { return links.AddLink(ed, target) }), nil
	}
}

func afterRemove(fn func(ed *document.Editor) error) actionFunc {
	return func(a commands.Actions, ed *document.Editor) error {
		if err := a.RemoveCommand(); err != nil {
			return err
		}
		return fn(ed)
	}
}

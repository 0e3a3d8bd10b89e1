// Package commands implements the slash command menu: a tree of static and
// dynamic commands, a resolver that turns a navigation path and a filter
// into the visible entries, and the plugin that opens the menu while typing.
package commands

import (
	"context"
	"strings"

	"github.com/usekona/kona/internal/document"
)

// Command is one menu entry. A command with GetCommands is a submenu; a
// command with Action can be run.
type Command struct {
	Name        string
	Title       string
	CommandName string
	Icon        string
	Action      func(a Actions, ed *document.Editor)
	// GetCommands returns the children of a submenu. It may block; the
	// resolver calls it off the caller's goroutine.
	GetCommands func(ctx context.Context, gc GetCommandsContext) ([]Command, error)
	Render      func(p RenderParams) string
}

// IsSubmenu reports whether the command opens further commands.
func (c Command) IsSubmenu() bool { return c.GetCommands != nil }

// PathEntry returns the command's step in a navigation path.
func (c Command) PathEntry() PathEntry {
	return PathEntry{Name: c.Name, Title: c.Title, CommandName: c.CommandName}
}

// PathEntry is one step of a navigation path.
type PathEntry struct {
	Name        string
	Title       string
	CommandName string
}

// GetCommandsContext is passed to a submenu's GetCommands.
type GetCommandsContext struct {
	Query  string
	Editor *document.Editor
	Path   []PathEntry
	Parent Command
}

// RenderParams is passed to a command's Render.
type RenderParams struct {
	Command   Command
	IsSubmenu bool
	IsActive  bool
}

// ResolvedCommand is a visible entry with its full path.
type ResolvedCommand struct {
	Command Command
	Key     string
	Path    []PathEntry
	// Breadcrumb joins the titles of the entry's ancestors with " / ".
	Breadcrumb string
	IsSubmenu  bool
}

// State is what the menu shows.
type State struct {
	Commands  []ResolvedCommand
	IsLoading bool
	IsError   bool
}

// Request is one resolution. State is the resolver state right after the
// request started; Done yields the state once the request settles.
type Request struct {
	Generation uint64
	State      State
	Done       <-chan State
}

// Params selects what to resolve.
type Params struct {
	Root   []Command
	Filter string
	Path   []PathEntry
	Editor *document.Editor
}

func pathKey(path []PathEntry) string {
	names := make([]string, len(path))
	for i, p := range path {
		names[i] = p.Name
	}
	return strings.Join(names, "/")
}

func appendPath(path []PathEntry, e PathEntry) []PathEntry {
	out := make([]PathEntry, len(path), len(path)+1)
	copy(out, path)
	return append(out, e)
}

func resolved(c Command, parent []PathEntry) ResolvedCommand {
	path := appendPath(parent, c.PathEntry())
	titles := make([]string, len(parent))
	for i, p := range parent {
		titles[i] = p.Title
	}
	return ResolvedCommand{
		Command:    c,
		Key:        pathKey(path),
		Path:       path,
		Breadcrumb: strings.Join(titles, " / "),
		IsSubmenu:  c.IsSubmenu(),
	}
}

func matches(c Command, filter string) bool {
	q := strings.ToLower(filter)
	return strings.Contains(strings.ToLower(c.CommandName), q) ||
		strings.Contains(strings.ToLower(c.Title), q)
}

// Package app assembles the kona editor from configuration: the plugin
// list, the slash command tree and the menu that serves it.
package app

import (
	"context"
	"fmt"

	"github.com/usekona/kona/internal/commandset"
	"github.com/usekona/kona/internal/config"
	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/editor"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/plugins/attachments"
	"github.com/usekona/kona/internal/plugins/breaks"
	"github.com/usekona/kona/internal/plugins/codeblock"
	"github.com/usekona/kona/internal/plugins/commands"
	"github.com/usekona/kona/internal/plugins/formatting"
	"github.com/usekona/kona/internal/plugins/headings"
	"github.com/usekona/kona/internal/plugins/highlights"
	"github.com/usekona/kona/internal/plugins/links"
	"github.com/usekona/kona/internal/plugins/lists"
	"github.com/usekona/kona/internal/plugins/nodeid"
	"github.com/usekona/kona/internal/plugins/placeholder"
	"github.com/usekona/kona/internal/plugins/shortcuts"
	"github.com/usekona/kona/internal/plugins/toc"
	"github.com/usekona/kona/internal/serialize"
)

// Options tunes New beyond the config file.
type Options struct {
	// Providers are extra dynamic submenus for the command tree.
	Providers map[string]commandset.Provider
	// GenerateID overrides node id generation.
	GenerateID func() string
	// Extra plugins go last, after the built-in ones.
	Extra []plugin.Plugin
}

// Kona is a composed editor with handles on the plugins the UI talks to.
type Kona struct {
	Editor *editor.Editor
	Menu   *commands.Menu
	TOC    *toc.TOC
	Lists  *lists.Lists
	Code   *codeblock.CodeBlock

	cfg     config.Config
	opts    Options
	plugins []plugin.Plugin
}

// New builds the plugins from cfg, loads the command tree and composes the
// editor with initial as its document.
func New(cfg config.Config, opts Options, initial ...document.Node) (*Kona, error) {
	k := &Kona{
		Menu:  commands.New(commands.Options{Trigger: cfg.Editor.Trigger}),
		TOC:   toc.New(toc.Options{}),
		Lists: lists.New(lists.Options{}),
		Code:  codeblock.New(codeblock.Options{DefaultLanguage: cfg.Editor.CodeLanguage}),
		cfg:   cfg,
		opts:  opts,
	}
	k.plugins = k.buildPlugins()

	cmds, err := k.LoadCommands()
	if err != nil {
		return nil, err
	}
	k.Menu.SetCommands(cmds)

	var editorOpts []editor.Option
	if len(initial) > 0 {
		editorOpts = append(editorOpts, editor.WithInitialValue(initial...))
	}
	k.Editor = editor.Compose(k.plugins, editorOpts...)
	return k, nil
}

// Open composes an editor holding markup, normalized.
func Open(ctx context.Context, cfg config.Config, opts Options, markup string) (*Kona, error) {
	k, err := New(cfg, opts)
	if err != nil {
		return nil, err
	}
	if err := k.Editor.Load(ctx, markup); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return k, nil
}

func (k *Kona) buildPlugins() []plugin.Plugin {
	ec := k.cfg.Editor
	plugins := []plugin.Plugin{
		nodeid.New(nodeid.Options{GenerateID: k.opts.GenerateID}),
		k.Lists.Plugin(),
		headings.New(),
		k.Code.Plugin(),
		formatting.New(),
		highlights.New(highlights.Options{}),
		links.New(links.Options{}),
		attachments.New(attachments.Options{
			OnDelete: func(files []string) {
				log.Info(log.CatEditor, "attachments removed", "files", files)
			},
		}),
		breaks.New(breaks.Options{BreakNodes: ec.BreakNodes}),
	}
	if ec.Shortcuts {
		listType := ec.DefaultListType
		if listType == "" {
			listType = lists.BulletedList
		}
		defaults := shortcuts.DefaultsFor(listType)
		if ec.CodeLanguage != "" {
			defaults = append([]shortcuts.Shortcut{shortcuts.Fence(ec.CodeLanguage)}, defaults...)
		}
		plugins = append(plugins, shortcuts.New(shortcuts.Options{Shortcuts: defaults}))
	}
	if ec.Placeholder != "" {
		plugins = append(plugins, placeholder.New(placeholder.Options{
			Focused:     ec.Placeholder,
			IgnoreTypes: []string{codeblock.CodeLine},
		}))
	}
	plugins = append(plugins, k.Menu.Plugin(), k.TOC.Plugin())
	return append(plugins, k.opts.Extra...)
}

// Plugins returns the plugins in composition order.
func (k *Kona) Plugins() []plugin.Plugin { return k.plugins }

// Deserialize converts markup with the composed plugins.
func (k *Kona) Deserialize(markup string) ([]document.Node, error) {
	return serialize.Deserialize(k.plugins, markup)
}

// LoadCommands reads the configured command tree, or the built-in one when
// no file is configured.
func (k *Kona) LoadCommands() ([]commands.Command, error) {
	file := k.cfg.Commands.File
	var (
		defs []commandset.Definition
		err  error
	)
	if file == "" {
		defs, err = commandset.Default()
	} else {
		defs, err = commandset.Load(file)
	}
	if err != nil {
		return nil, err
	}
	return commandset.Build(defs, commandset.Options{
		Providers:   k.opts.Providers,
		Deserialize: k.Deserialize,
	})
}

// ReloadCommands swaps in a freshly loaded command tree. On error the
// current commands stay.
func (k *Kona) ReloadCommands() error {
	cmds, err := k.LoadCommands()
	if err != nil {
		log.ErrorErr(log.CatCommands, "reload commands failed", err, "file", k.cfg.Commands.File)
		return err
	}
	k.Menu.SetCommands(cmds)
	log.Info(log.CatCommands, "commands reloaded", "file", k.cfg.Commands.File, "count", len(cmds))
	return nil
}

// CommandsFile returns the configured command file, or "".
func (k *Kona) CommandsFile() string { return k.cfg.Commands.File }

// Normalize parses markup, normalizes it through the plugins and returns
// the serialized result.
func Normalize(ctx context.Context, cfg config.Config, opts Options, markup string) (string, error) {
	k, err := Open(ctx, cfg, opts, markup)
	if err != nil {
		return "", err
	}
	return k.Editor.Serialize(), nil
}

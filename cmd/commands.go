package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/usekona/kona/internal/app"
	"github.com/usekona/kona/internal/config"
	"github.com/usekona/kona/internal/plugins/commands"
	"github.com/usekona/kona/internal/presentation"
	"github.com/usekona/kona/internal/ui/commandpalette"
)

var (
	commandsPath        string
	commandsFilter      string
	commandsJSON        bool
	commandsInteractive bool
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List or search the slash commands",
	Long: `List the slash commands from the configured command file, or the
built-in commands when none is set.

Without flags the top level is listed. --path browses into a submenu and
--filter searches below the current level, including dynamic submenus.

Examples:
  # List the top level
  kona commands

  # Browse a submenu
  kona commands --path format

  # Search every level
  kona commands --filter head

  # Pick a command interactively and print its key
  kona commands -i`,
	Args: cobra.NoArgs,
	RunE: runCommands,
}

func init() {
	commandsCmd.Flags().StringVarP(&commandsPath, "path", "p", "", "submenu path as names joined by /, e.g. format")
	commandsCmd.Flags().StringVarP(&commandsFilter, "filter", "f", "", "search query")
	commandsCmd.Flags().BoolVar(&commandsJSON, "json", false, "print JSON")
	commandsCmd.Flags().BoolVarP(&commandsInteractive, "interactive", "i", false, "pick a command in the palette")
	rootCmd.AddCommand(commandsCmd)
}

func runCommands(cmd *cobra.Command, _ []string) error {
	k, err := app.New(cfg, app.Options{})
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if commandsInteractive {
		return pickCommand(ctx, k, cfg, out)
	}

	cmds, err := listCommands(ctx, k, splitPath(commandsPath), commandsFilter)
	if err != nil {
		return err
	}
	formatter := presentation.NewFormatter(out)
	dtos := presentation.FromResolvedCommands(cmds)
	if commandsJSON {
		return formatter.FormatCommandsJSON(dtos)
	}
	return formatter.FormatCommands(dtos)
}

func splitPath(p string) []string {
	var names []string
	for _, n := range strings.Split(p, "/") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// listCommands resolves the menu once, the way the palette would show it
// after browsing into names and typing filter.
func listCommands(ctx context.Context, k *app.Kona, names []string, filter string) ([]commands.ResolvedCommand, error) {
	path := make([]commands.PathEntry, len(names))
	for i, n := range names {
		path[i] = commands.PathEntry{Name: n}
	}
	req := commands.NewResolver().Resolve(ctx, commands.Params{
		Root:   k.Menu.Commands(),
		Filter: filter,
		Path:   path,
		Editor: k.Editor.Editor,
	})
	state := <-req.Done
	if state.IsError {
		return nil, fmt.Errorf("resolving commands failed, see the log for details")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(names) > 0 && filter == "" && len(state.Commands) == 0 && !hasSubmenuPath(ctx, k, path) {
		return nil, fmt.Errorf("no submenu at %q", strings.Join(names, "/"))
	}
	return state.Commands, nil
}

// hasSubmenuPath reports whether path names an existing, possibly empty,
// submenu.
func hasSubmenuPath(ctx context.Context, k *app.Kona, path []commands.PathEntry) bool {
	parent := path[:len(path)-1]
	req := commands.NewResolver().Resolve(ctx, commands.Params{Root: k.Menu.Commands(), Path: parent, Editor: k.Editor.Editor})
	state := <-req.Done
	last := path[len(path)-1].Name
	for _, rc := range state.Commands {
		if rc.Command.Name == last && rc.IsSubmenu {
			return true
		}
	}
	return false
}

// pickModel hosts a standalone palette and remembers the choice.
type pickModel struct {
	palette commandpalette.Model
	chosen  *commands.ResolvedCommand
}

func (m pickModel) Init() tea.Cmd { return m.palette.Init() }

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case commandpalette.SelectMsg:
		m.chosen = &msg.Command
		return m, tea.Quit
	case commandpalette.CancelMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.palette, cmd = m.palette.Update(msg)
	return m, cmd
}

func (m pickModel) View() string { return m.palette.View() }

func pickCommand(ctx context.Context, k *app.Kona, c config.Config, out io.Writer) error {
	palette := commandpalette.New(commandpalette.Config{
		Root:     k.Menu.Commands(),
		Editor:   k.Editor.Editor,
		Debounce: c.Editor.Debounce,
		Title:    "Commands",
		Input:    true,
		MaxWidth: 64,
	})
	defer palette.Close()

	final, err := tea.NewProgram(pickModel{palette: palette}, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("running palette: %w", err)
	}
	if m, ok := final.(pickModel); ok && m.chosen != nil {
		_, err = fmt.Fprintln(out, m.chosen.Key)
	}
	return err
}

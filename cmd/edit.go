package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/usekona/kona/internal/app"
	"github.com/usekona/kona/internal/flags"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/ui/editorview"
	"github.com/usekona/kona/internal/watcher"
)

var editNoWatch bool

var editCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Edit a document in the terminal",
	Long: `Open a document in the terminal editor. A missing file starts empty and
is created on save (ctrl+s).

When commands.file is set and commands.watch is on, edits to the command
file are picked up while the editor runs.

Examples:
  kona edit notes.html
  kona edit notes.html --no-watch`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().BoolVar(&editNoWatch, "no-watch", false, "do not reload the command file when it changes")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := commandContext(cmd)

	markup := ""
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		markup = string(data)
	case errors.Is(err, fs.ErrNotExist):
		log.Info(log.CatEditor, "starting new document", "path", path)
	default:
		return fmt.Errorf("reading %s: %w", path, err)
	}

	k, err := app.Open(ctx, cfg, app.Options{Extra: []plugin.Plugin{editorview.Cursor()}}, markup)
	if err != nil {
		return err
	}

	var reload <-chan []string
	if file := k.CommandsFile(); file != "" && cfg.Commands.Watch && !editNoWatch {
		w, err := watcher.New(watcher.DefaultConfig(file))
		if err != nil {
			return fmt.Errorf("watching %s: %w", file, err)
		}
		if reload, err = w.Start(); err != nil {
			_ = w.Stop()
			return fmt.Errorf("watching %s: %w", file, err)
		}
		defer func() { _ = w.Stop() }()
	}

	reg := flags.New(cfg.Flags)
	model := editorview.New(editorview.Config{
		Kona:      k,
		Path:      path,
		Debounce:  cfg.Editor.Debounce,
		Reload:    reload,
		Shortcuts: cfg.Editor.Shortcuts,
		Context:   ctx,
		Flags:     reg,
		// The overlay reads the debug log, so it needs --debug too.
		Logs: cfg.Debug && reg.Enabled(flags.FlagLogOverlay),
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	defer model.Close()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	if m, ok := final.(editorview.Model); ok && m.Dirty() {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "kona: unsaved changes to %s were discarded\n", path)
	}
	return nil
}

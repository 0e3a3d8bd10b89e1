package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/usekona/kona/internal/app"
	"github.com/usekona/kona/internal/config"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/presentation"
)

var (
	normalizeDiff  bool
	normalizeWrite bool
	normalizeJSON  bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Normalize a document and print the result",
	Long: `Parse a document, run every plugin's normalization and print the
serialized markup.

Use "-" to read from stdin.

Examples:
  # Print the normalized document
  kona normalize notes.html

  # Show what normalization changes, as a word diff
  kona normalize notes.html --diff

  # Machine-readable result
  kona normalize notes.html --json

  # Rewrite the file in place
  kona normalize notes.html --write`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().BoolVarP(&normalizeDiff, "diff", "d", false, "print a word diff instead of the document")
	normalizeCmd.Flags().BoolVarP(&normalizeWrite, "write", "w", false, "rewrite the file in place")
	normalizeCmd.Flags().BoolVar(&normalizeJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	path := args[0]
	if normalizeWrite && path == "-" {
		return fmt.Errorf("--write needs a file, not stdin")
	}
	before, err := readDocument(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	after, err := normalizeMarkup(cmd, cfg, before)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case normalizeWrite:
		if after == strings.TrimSpace(before) {
			return nil
		}
		if err := os.WriteFile(path, []byte(after+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Info(log.CatNormalize, "normalized file", "path", path)
	case normalizeJSON:
		doc := presentation.DocumentDTO{Markup: after, Changed: after != strings.TrimSpace(before)}
		if path != "-" {
			doc.Path = path
		}
		err = presentation.NewFormatter(out).FormatDocumentJSON(doc)
	case normalizeDiff:
		_, err = fmt.Fprintln(out, wordDiff(strings.TrimSpace(before), after))
	default:
		_, err = fmt.Fprintln(out, after)
	}
	return err
}

func normalizeMarkup(cmd *cobra.Command, c config.Config, markup string) (string, error) {
	out, err := app.Normalize(commandContext(cmd), c, app.Options{}, markup)
	if err != nil {
		return "", fmt.Errorf("normalizing: %w", err)
	}
	return out, nil
}

// readDocument reads path, or stdin for "-".
func readDocument(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// wordDiff renders the changes from before to after inline, with deletions
// as [-text-] and insertions as {+text+}.
func wordDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		}
	}
	return sb.String()
}

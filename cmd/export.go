package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usekona/kona/internal/app"
	"github.com/usekona/kona/internal/markdown"
)

var (
	exportFormat string
	previewWidth int
	previewStyle string
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Convert a document to another format",
	Long: `Load a document, normalize it and print it as html or markdown.

Use "-" to read from stdin.

Examples:
  kona export notes.html --format markdown > notes.md`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Render a document in the terminal",
	Long: `Render a document as styled terminal output, without opening the editor.

Styles are glamour styles: auto, dark, light, notty, dracula, tokyo-night
or a path to a JSON style file.

Examples:
  kona preview notes.html
  kona preview notes.html --width 100 --style light`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "output format: html or markdown")
	previewCmd.Flags().IntVarP(&previewWidth, "width", "W", 80, "wrap width")
	previewCmd.Flags().StringVarP(&previewStyle, "style", "s", "auto", "glamour style")
	rootCmd.AddCommand(exportCmd, previewCmd)
}

// loadMarkdown reads and normalizes path and converts it to markdown.
func loadMarkdown(cmd *cobra.Command, path string) (*app.Kona, string, error) {
	markup, err := readDocument(path, cmd.InOrStdin())
	if err != nil {
		return nil, "", err
	}
	k, err := app.Open(commandContext(cmd), cfg, app.Options{}, markup)
	if err != nil {
		return nil, "", err
	}
	return k, markdown.FromNodes(k.Editor.Children()), nil
}

func runExport(cmd *cobra.Command, args []string) error {
	k, md, err := loadMarkdown(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch exportFormat {
	case "markdown", "md":
		_, err = fmt.Fprint(out, md)
	case "html":
		_, err = fmt.Fprintln(out, k.Editor.Serialize())
	default:
		return fmt.Errorf("unknown format %q (want html or markdown)", exportFormat)
	}
	return err
}

func runPreview(cmd *cobra.Command, args []string) error {
	if previewWidth <= 0 {
		return fmt.Errorf("--width must be positive")
	}
	r, err := markdown.NewRenderer(previewWidth, previewStyle)
	if err != nil {
		return fmt.Errorf("style %q: %w", previewStyle, err)
	}
	_, md, err := loadMarkdown(cmd, args[0])
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

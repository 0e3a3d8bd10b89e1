package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/usekona/kona/internal/config"
	"github.com/usekona/kona/internal/keys"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/tracing"
	"github.com/usekona/kona/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version    = "dev"
	cfgFile    string
	cfg        = config.Defaults()
	configPath string
	configErr  error
	noColor    bool
	cleanups   []func()
)

var rootCmd = &cobra.Command{
	Use:   "kona",
	Short: "A rich-text document editor for the terminal",
	Long: `kona edits rich-text documents stored as HTML fragments.

Blocks, lists, headings, links and attachments are provided by plugins.
Type the trigger character (default "/") to open the slash command menu.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .kona/config.yaml, then ~/.config/kona/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "write debug logs")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors (also NO_COLOR)")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	cfg, configPath, configErr = loadConfig(viper.GetViper(), cfgFile)
}

// loadConfig reads the config file over config.Defaults(). Without an
// explicit path it looks for .kona/config.yaml, then
// ~/.config/kona/config.yaml. A missing file is not an error.
func loadConfig(v *viper.Viper, explicit string) (config.Config, string, error) {
	loaded := config.Defaults()

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else if _, err := os.Stat(config.LocalConfigPath); err == nil {
		v.SetConfigFile(config.LocalConfigPath)
	} else if user := config.UserConfigPath(); user != "" {
		if _, err := os.Stat(user); err == nil {
			v.SetConfigFile(user)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return loaded, v.ConfigFileUsed(), fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&loaded); err != nil {
		return loaded, v.ConfigFileUsed(), fmt.Errorf("decoding config: %w", err)
	}
	return loaded, v.ConfigFileUsed(), nil
}

// setup validates the config and starts logging, theming and tracing.
func setup(cmd *cobra.Command, _ []string) error {
	if configErr != nil {
		return configErr
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Debug {
		path := cfg.LogFile
		if path == "" {
			path = config.DefaultLogFile()
		}
		closeLog, err := log.Init(path)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		cleanups = append(cleanups, closeLog)
		log.Info(log.CatConfig, "kona starting", "version", version, "command", cmd.Name(), "config", configPath)
	}

	if noColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	if err := styles.ApplyTheme(cfg.Theme.Styles()); err != nil {
		return fmt.Errorf("applying theme: %w", err)
	}
	keys.ApplyConfig(cfg.Keys.Save, cfg.Keys.Palette)

	tc := cfg.Tracing
	if tc.FilePath == "" {
		tc.FilePath = config.DefaultTraceFile()
	}
	provider, err := tracing.NewProvider(tc)
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	cleanups = append(cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatConfig, "tracing shutdown failed", err)
		}
	})
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func teardown() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// Execute runs the root command
func Execute() error {
	defer teardown()
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

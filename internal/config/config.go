// Package config provides configuration types, defaults, and persistence for kona.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rivo/uniseg"

	"github.com/usekona/kona/internal/flags"
	"github.com/usekona/kona/internal/plugins/lists"
	"github.com/usekona/kona/internal/tracing"
	"github.com/usekona/kona/internal/ui/styles"
)

// Config lookup order used by the CLI.
const (
	LocalConfigPath = ".kona/config.yaml"
	userConfigDir   = ".config/kona"
)

// Config holds all configuration options for kona.
type Config struct {
	Debug    bool            `mapstructure:"debug" yaml:"debug"`
	LogFile  string          `mapstructure:"log_file" yaml:"log_file"`
	Editor   EditorConfig    `mapstructure:"editor" yaml:"editor"`
	Commands CommandsConfig  `mapstructure:"commands" yaml:"commands"`
	Keys     KeysConfig      `mapstructure:"keys" yaml:"keys"`
	Flags    map[string]bool `mapstructure:"flags" yaml:"flags"`
	Theme    ThemeConfig     `mapstructure:"theme" yaml:"theme"`
	Tracing  tracing.Config  `mapstructure:"tracing" yaml:"tracing"`
}

// EditorConfig configures the composed editor.
type EditorConfig struct {
	Trigger         string        `mapstructure:"trigger" yaml:"trigger"`                     // Opens the slash menu, one character
	Debounce        time.Duration `mapstructure:"debounce" yaml:"debounce"`                   // Palette filter debounce
	DefaultListType string        `mapstructure:"default_list_type" yaml:"default_list_type"` // ul or ol
	BreakNodes      []string      `mapstructure:"break_nodes" yaml:"break_nodes"`             // Blocks that reset to a paragraph on enter
	Shortcuts       bool          `mapstructure:"shortcuts" yaml:"shortcuts"`                 // Markdown typing shortcuts
	Placeholder     string        `mapstructure:"placeholder" yaml:"placeholder"`             // Hint shown in an empty block; empty disables it
	CodeLanguage    string        `mapstructure:"code_language" yaml:"code_language"`         // Language of new code blocks
}

// CommandsConfig points at the slash command definitions.
type CommandsConfig struct {
	// File is a YAML command tree. Empty uses the built-in commands.
	File  string `mapstructure:"file" yaml:"file"`
	Watch bool   `mapstructure:"watch" yaml:"watch"` // Reload File when it changes
}

// KeysConfig rebinds editor keys. Empty keeps the default.
type KeysConfig struct {
	Save    string `mapstructure:"save" yaml:"save"`       // default ctrl+s
	Palette string `mapstructure:"palette" yaml:"palette"` // default ctrl+space
}

// ThemeConfig holds all theme customization options.
type ThemeConfig struct {
	// Preset loads a built-in theme as the base (optional).
	// Valid values: "default", "catppuccin-mocha", "catppuccin-latte",
	// "dracula", "nord", "high-contrast"
	Preset string `mapstructure:"preset" yaml:"preset"`

	// Mode forces light or dark mode. If empty, uses terminal detection.
	Mode string `mapstructure:"mode" yaml:"mode"`

	// Colors overrides individual color tokens, nested or in dot notation:
	//   colors:
	//     document:
	//       heading: "#FF0000"
	//     "text.primary": "#FFFFFF"
	Colors map[string]any `mapstructure:"colors" yaml:"colors,omitempty"`
}

// FlattenedColors returns the Colors map flattened to dot-notation keys.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			// YAML sometimes produces map[any]any instead of map[string]any
			converted := make(map[string]any)
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// Styles converts the theme for styles.ApplyTheme.
func (t ThemeConfig) Styles() styles.ThemeConfig {
	return styles.ThemeConfig{Preset: t.Preset, Mode: t.Mode, Colors: t.FlattenedColors()}
}

// UserConfigPath returns ~/.config/kona/config.yaml, or "" without a home dir.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, userConfigDir, "config.yaml")
}

// DefaultLogFile returns ~/.config/kona/kona.log, or "" without a home dir.
func DefaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, userConfigDir, "kona.log")
}

// DefaultTraceFile returns ~/.config/kona/traces.jsonl, or "" without a home dir.
func DefaultTraceFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, userConfigDir, "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = "" // Derived from the config dir at runtime
	return Config{
		Editor: EditorConfig{
			Trigger:         "/",
			Debounce:        150 * time.Millisecond,
			DefaultListType: lists.BulletedList,
			BreakNodes:      []string{"h1", "h2", "h3"},
			Shortcuts:       true,
			Placeholder:     "Type / for commands",
			CodeLanguage:    "javascript",
		},
		Commands: CommandsConfig{
			Watch: true,
		},
		Flags:   flags.Defaults(),
		Tracing: tc,
	}
}

// Validate checks the configuration for errors. Empty values use defaults.
func Validate(cfg Config) error {
	if err := ValidateEditor(cfg.Editor); err != nil {
		return err
	}
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	if err := flags.Validate(cfg.Flags); err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateEditor checks editor configuration for errors.
func ValidateEditor(ed EditorConfig) error {
	if ed.Trigger != "" && uniseg.GraphemeClusterCount(ed.Trigger) != 1 {
		return fmt.Errorf("editor.trigger must be a single character, got %q", ed.Trigger)
	}
	if ed.Debounce < 0 {
		return fmt.Errorf("editor.debounce must not be negative, got %s", ed.Debounce)
	}
	switch ed.DefaultListType {
	case "", lists.BulletedList, lists.NumberedList:
	default:
		return fmt.Errorf("editor.default_list_type must be %q or %q, got %q", lists.BulletedList, lists.NumberedList, ed.DefaultListType)
	}
	return nil
}

// ValidateTheme checks the preset and mode names.
func ValidateTheme(theme ThemeConfig) error {
	if theme.Preset != "" {
		if _, ok := styles.Presets[theme.Preset]; !ok {
			return fmt.Errorf("theme.preset: unknown preset %q", theme.Preset)
		}
	}
	switch theme.Mode {
	case "", "light", "dark":
	default:
		return fmt.Errorf("theme.mode must be \"light\" or \"dark\", got %q", theme.Mode)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" {
		switch tc.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
		}
	}

	// Path requirements only matter when tracing is on
	if tc.Enabled && tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

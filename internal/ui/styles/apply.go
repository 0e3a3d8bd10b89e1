package styles

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ThemeConfig mirrors config.ThemeConfig to avoid circular imports.
type ThemeConfig struct {
	Preset string
	// Mode forces "light" or "dark". Empty uses terminal detection.
	Mode   string
	Colors map[string]string
}

// ApplyTheme applies a complete theme configuration:
// default colors, then the preset, then individual overrides.
func ApplyTheme(cfg ThemeConfig) error {
	colors := maps.Clone(DefaultPreset.Colors)

	if cfg.Preset != "" && cfg.Preset != "default" {
		preset, ok := Presets[cfg.Preset]
		if !ok {
			return fmt.Errorf("unknown theme preset: %s", cfg.Preset)
		}
		maps.Copy(colors, preset.Colors)
	}

	for key, value := range cfg.Colors {
		token := ColorToken(key)
		if !isValidToken(token) {
			return fmt.Errorf("unknown color token: %s", key)
		}
		if !isValidHexColor(value) {
			return fmt.Errorf("invalid hex color for %s: %s", key, value)
		}
		colors[token] = value
	}

	switch cfg.Mode {
	case "":
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	default:
		return fmt.Errorf("invalid theme mode: %s", cfg.Mode)
	}

	applyColors(colors)
	rebuildStyles()
	return nil
}

func applyColors(colors map[ColorToken]string) {
	// Same color for both modes
	makeColor := func(hex string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: hex, Dark: hex}
	}
	targets := map[ColorToken]*lipgloss.AdaptiveColor{
		TokenTextPrimary:        &TextPrimaryColor,
		TokenTextSecondary:      &TextSecondaryColor,
		TokenTextMuted:          &TextMutedColor,
		TokenTextPlaceholder:    &TextPlaceholderColor,
		TokenBorderDefault:      &BorderDefaultColor,
		TokenBorderFocus:        &BorderFocusColor,
		TokenStatusSuccess:      &StatusSuccessColor,
		TokenStatusError:        &StatusErrorColor,
		TokenAccent:             &AccentColor,
		TokenSelectionIndicator: &SelectionIndicatorColor,
		TokenHeading:            &HeadingColor,
		TokenListMarker:         &ListMarkerColor,
		TokenCode:               &CodeColor,
		TokenAttachment:         &AttachmentColor,
		TokenOverlayTitle:       &OverlayTitleColor,
		TokenOverlayBorder:      &OverlayBorderColor,
		TokenSpinner:            &SpinnerColor,
	}
	for token, target := range targets {
		if c, ok := colors[token]; ok {
			*target = makeColor(c)
		}
	}
}

// rebuildStyles recreates all Style objects with updated colors.
// lipgloss.Style objects capture colors at creation time.
func rebuildStyles() {
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	HeadingStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(HeadingColor).Bold(true).Underline(true),
		lipgloss.NewStyle().Foreground(HeadingColor).Bold(true),
		lipgloss.NewStyle().Foreground(HeadingColor),
	}
	ListMarkerStyle = lipgloss.NewStyle().Foreground(ListMarkerColor)
	LinkStyle = lipgloss.NewStyle().Foreground(AccentColor).Underline(true)
	CodeStyle = lipgloss.NewStyle().Foreground(CodeColor)
	AttachmentStyle = lipgloss.NewStyle().Foreground(AttachmentColor).Bold(true)
	PlaceholderStyle = lipgloss.NewStyle().Foreground(TextPlaceholderColor).Italic(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(TextSecondaryColor).
		Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(StatusErrorColor).
		Bold(true).
		Padding(1, 2)

	PrimaryButtonStyle = buttonStyle(AccentColor, false)
	PrimaryButtonFocusedStyle = buttonStyle(AccentColor, true)
	DangerButtonStyle = buttonStyle(StatusErrorColor, false)
	DangerButtonFocusedStyle = buttonStyle(StatusErrorColor, true)
	SecondaryButtonStyle = buttonStyle(BorderDefaultColor, false)
	SecondaryButtonFocusedStyle = buttonStyle(TextSecondaryColor, true)
}

func isValidToken(token ColorToken) bool {
	return slices.Contains(AllTokens(), token)
}

func isValidHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}

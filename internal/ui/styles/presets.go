package styles

// Preset represents a complete color theme.
type Preset struct {
	Name        string
	Description string
	Colors      map[ColorToken]string
}

// Presets contains all built-in theme presets.
var Presets = map[string]Preset{
	"default":          DefaultPreset,
	"catppuccin-mocha": CatppuccinMochaPreset,
	"catppuccin-latte": CatppuccinLattePreset,
	"dracula":          DraculaPreset,
	"nord":             NordPreset,
	"high-contrast":    HighContrastPreset,
}

// DefaultPreset matches the Dark values of the package color variables.
var DefaultPreset = Preset{
	Name:        "default",
	Description: "Default kona theme",
	Colors: map[ColorToken]string{
		TokenTextPrimary:        "#CCCCCC",
		TokenTextSecondary:      "#BBBBBB",
		TokenTextMuted:          "#696969",
		TokenTextPlaceholder:    "#777777",
		TokenBorderDefault:      "#696969",
		TokenBorderFocus:        "#FFFFFF",
		TokenStatusSuccess:      "#73F59F",
		TokenStatusError:        "#FF8787",
		TokenAccent:             "#89B4FA",
		TokenSelectionIndicator: "#FFFFFF",
		TokenHeading:            "#CBA6F7",
		TokenListMarker:         "#FAB387",
		TokenCode:               "#94E2D5",
		TokenAttachment:         "#F9E2AF",
		TokenOverlayTitle:       "#C9C9C9",
		TokenOverlayBorder:      "#8C8C8C",
		TokenSpinner:            "#FFFFFF",
	},
}

// CatppuccinMochaPreset is the Catppuccin Mocha (dark) theme.
// Colors from: https://catppuccin.com/palette
var CatppuccinMochaPreset = Preset{
	Name:        "catppuccin-mocha",
	Description: "Catppuccin Mocha - warm, cozy dark theme",
	Colors: map[ColorToken]string{
		TokenTextPrimary:        "#CDD6F4", // text
		TokenTextSecondary:      "#BAC2DE", // subtext1
		TokenTextMuted:          "#6C7086", // overlay0
		TokenTextPlaceholder:    "#585B70", // surface2
		TokenBorderDefault:      "#6C7086", // overlay0
		TokenBorderFocus:        "#CDD6F4", // text
		TokenStatusSuccess:      "#A6E3A1", // green
		TokenStatusError:        "#F38BA8", // red
		TokenAccent:             "#89B4FA", // blue
		TokenSelectionIndicator: "#CDD6F4", // text
		TokenHeading:            "#CBA6F7", // mauve
		TokenListMarker:         "#FAB387", // peach
		TokenCode:               "#94E2D5", // teal
		TokenAttachment:         "#F9E2AF", // yellow
		TokenOverlayTitle:       "#CDD6F4", // text
		TokenOverlayBorder:      "#6C7086", // overlay0
		TokenSpinner:            "#CBA6F7", // mauve
	},
}

// CatppuccinLattePreset is the Catppuccin Latte (light) theme.
var CatppuccinLattePreset = Preset{
	Name:        "catppuccin-latte",
	Description: "Catppuccin Latte - warm, cozy light theme",
	Colors: map[ColorToken]string{
		TokenTextPrimary:        "#4C4F69", // text
		TokenTextSecondary:      "#5C5F77", // subtext1
		TokenTextMuted:          "#9CA0B0", // overlay0
		TokenTextPlaceholder:    "#ACB0BE", // surface2
		TokenBorderDefault:      "#9CA0B0", // overlay0
		TokenBorderFocus:        "#4C4F69", // text
		TokenStatusSuccess:      "#40A02B", // green
		TokenStatusError:        "#D20F39", // red
		TokenAccent:             "#1E66F5", // blue
		TokenSelectionIndicator: "#4C4F69", // text
		TokenHeading:            "#8839EF", // mauve
		TokenListMarker:         "#FE640B", // peach
		TokenCode:               "#179299", // teal
		TokenAttachment:         "#DF8E1D", // yellow
		TokenOverlayTitle:       "#4C4F69", // text
		TokenOverlayBorder:      "#9CA0B0", // overlay0
		TokenSpinner:            "#8839EF", // mauve
	},
}

// DraculaPreset is the Dracula theme.
// Colors from: https://draculatheme.com/contribute
var DraculaPreset = Preset{
	Name:        "dracula",
	Description: "Dracula - dark theme with vibrant colors",
	Colors: map[ColorToken]string{
		TokenTextPrimary:        "#F8F8F2", // foreground
		TokenTextSecondary:      "#E2E2DC",
		TokenTextMuted:          "#6272A4", // comment
		TokenTextPlaceholder:    "#6272A4", // comment
		TokenBorderDefault:      "#6272A4", // comment
		TokenBorderFocus:        "#F8F8F2", // foreground
		TokenStatusSuccess:      "#50FA7B", // green
		TokenStatusError:        "#FF5555", // red
		TokenAccent:             "#8BE9FD", // cyan
		TokenSelectionIndicator: "#F8F8F2", // foreground
		TokenHeading:            "#BD93F9", // purple
		TokenListMarker:         "#FFB86C", // orange
		TokenCode:               "#50FA7B", // green
		TokenAttachment:         "#F1FA8C", // yellow
		TokenOverlayTitle:       "#F8F8F2", // foreground
		TokenOverlayBorder:      "#6272A4", // comment
		TokenSpinner:            "#FF79C6", // pink
	},
}

// NordPreset is the Nord theme.
// Colors from: https://www.nordtheme.com/docs/colors-and-palettes
var NordPreset = Preset{
	Name:        "nord",
	Description: "Nord - arctic, north-bluish palette",
	Colors: map[ColorToken]string{
		TokenTextPrimary:        "#ECEFF4", // nord6
		TokenTextSecondary:      "#E5E9F0", // nord5
		TokenTextMuted:          "#4C566A", // nord3
		TokenTextPlaceholder:    "#4C566A", // nord3
		TokenBorderDefault:      "#4C566A", // nord3
		TokenBorderFocus:        "#ECEFF4", // nord6
		TokenStatusSuccess:      "#A3BE8C", // nord14
		TokenStatusError:        "#BF616A", // nord11
		TokenAccent:             "#88C0D0", // nord8
		TokenSelectionIndicator: "#ECEFF4", // nord6
		TokenHeading:            "#B48EAD", // nord15
		TokenListMarker:         "#D08770", // nord12
		TokenCode:               "#8FBCBB", // nord7
		TokenAttachment:         "#EBCB8B", // nord13
		TokenOverlayTitle:       "#ECEFF4", // nord6
		TokenOverlayBorder:      "#4C566A", // nord3
		TokenSpinner:            "#88C0D0", // nord8
	},
}

// HighContrastPreset maximizes contrast for accessibility.
var HighContrastPreset = Preset{
	Name:        "high-contrast",
	Description: "High contrast for accessibility",
	Colors: map[ColorToken]string{
		TokenTextPrimary:        "#FFFFFF",
		TokenTextSecondary:      "#FFFFFF",
		TokenTextMuted:          "#C0C0C0",
		TokenTextPlaceholder:    "#C0C0C0",
		TokenBorderDefault:      "#FFFFFF",
		TokenBorderFocus:        "#FFFF00",
		TokenStatusSuccess:      "#00FF00",
		TokenStatusError:        "#FF0000",
		TokenAccent:             "#00FFFF",
		TokenSelectionIndicator: "#FFFF00",
		TokenHeading:            "#FFFFFF",
		TokenListMarker:         "#FFFF00",
		TokenCode:               "#00FF00",
		TokenAttachment:         "#FFFF00",
		TokenOverlayTitle:       "#FFFFFF",
		TokenOverlayBorder:      "#FFFFFF",
		TokenSpinner:            "#FFFFFF",
	},
}

// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#CCCCCC"} // Document text
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"} // Breadcrumbs, secondary info
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"} // Input placeholders

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#FFFFFF"}

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Accent color for the cursor, active menu rows and links
	AccentColor = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	// Document element colors (Catppuccin Mocha)
	HeadingColor    = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"} // mauve
	ListMarkerColor = lipgloss.AdaptiveColor{Light: "#FE640B", Dark: "#FAB387"} // peach
	CodeColor       = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"} // teal
	AttachmentColor = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"} // yellow

	// Overlay colors
	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#8C8C8C"}

	// Selection indicator style (used for ">" prefix in menus)
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	// Document styles
	HeadingStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(HeadingColor).Bold(true).Underline(true),
		lipgloss.NewStyle().Foreground(HeadingColor).Bold(true),
		lipgloss.NewStyle().Foreground(HeadingColor),
	}
	ListMarkerStyle  = lipgloss.NewStyle().Foreground(ListMarkerColor)
	LinkStyle        = lipgloss.NewStyle().Foreground(AccentColor).Underline(true)
	CodeStyle        = lipgloss.NewStyle().Foreground(CodeColor)
	AttachmentStyle  = lipgloss.NewStyle().Foreground(AttachmentColor).Bold(true)
	CursorStyle      = lipgloss.NewStyle().Reverse(true)
	PlaceholderStyle = lipgloss.NewStyle().Foreground(TextPlaceholderColor).Italic(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)

	// Modal buttons
	ButtonTextColor             = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
	PrimaryButtonStyle          = buttonStyle(AccentColor, false)
	PrimaryButtonFocusedStyle   = buttonStyle(AccentColor, true)
	DangerButtonStyle           = buttonStyle(StatusErrorColor, false)
	DangerButtonFocusedStyle    = buttonStyle(StatusErrorColor, true)
	SecondaryButtonStyle        = buttonStyle(BorderDefaultColor, false)
	SecondaryButtonFocusedStyle = buttonStyle(TextSecondaryColor, true)

	// Loading spinner color
	SpinnerColor = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#FFF"}
)

func buttonStyle(bg lipgloss.TerminalColor, focused bool) lipgloss.Style {
	st := lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(ButtonTextColor).Background(bg)
	if focused {
		st = st.Underline(true).UnderlineSpaces(true)
	}
	return st
}

// Heading returns the style for a heading level, 1-based.
func Heading(level int) lipgloss.Style {
	if level < 1 {
		level = 1
	}
	if level > len(HeadingStyles) {
		level = len(HeadingStyles)
	}
	return HeadingStyles[level-1]
}

package styles

// ColorToken represents a named, themeable color.
type ColorToken string

// Color tokens users can override in their config.
const (
	// Text hierarchy
	TokenTextPrimary     ColorToken = "text.primary"
	TokenTextSecondary   ColorToken = "text.secondary"
	TokenTextMuted       ColorToken = "text.muted"
	TokenTextPlaceholder ColorToken = "text.placeholder"

	// Borders
	TokenBorderDefault ColorToken = "border.default"
	TokenBorderFocus   ColorToken = "border.focus"

	// Status indicators
	TokenStatusSuccess ColorToken = "status.success"
	TokenStatusError   ColorToken = "status.error"

	// Cursor, active menu rows and links
	TokenAccent             ColorToken = "accent"
	TokenSelectionIndicator ColorToken = "selection.indicator"

	// Document elements
	TokenHeading    ColorToken = "document.heading"
	TokenListMarker ColorToken = "document.list_marker"
	TokenCode       ColorToken = "document.code"
	TokenAttachment ColorToken = "document.attachment"

	// Palette overlay
	TokenOverlayTitle  ColorToken = "overlay.title"
	TokenOverlayBorder ColorToken = "overlay.border"

	TokenSpinner ColorToken = "spinner"
)

// AllTokens returns all valid color tokens for validation.
func AllTokens() []ColorToken {
	return []ColorToken{
		TokenTextPrimary,
		TokenTextSecondary,
		TokenTextMuted,
		TokenTextPlaceholder,
		TokenBorderDefault,
		TokenBorderFocus,
		TokenStatusSuccess,
		TokenStatusError,
		TokenAccent,
		TokenSelectionIndicator,
		TokenHeading,
		TokenListMarker,
		TokenCode,
		TokenAttachment,
		TokenOverlayTitle,
		TokenOverlayBorder,
		TokenSpinner,
	}
}

package styles

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateString truncates a string to fit within maxWidth, adding ellipsis if needed.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// FormatBreadcrumb joins menu titles into a trail that fits maxWidth,
// dropping leading titles first.
func FormatBreadcrumb(titles []string, maxWidth int) string {
	for i := range titles {
		trail := strings.Join(titles[i:], " / ")
		if i > 0 {
			trail = "… / " + trail
		}
		if runewidth.StringWidth(trail) <= maxWidth {
			return trail
		}
	}
	if len(titles) == 0 {
		return ""
	}
	return TruncateString(titles[len(titles)-1], maxWidth)
}

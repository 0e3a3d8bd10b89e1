package styles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		width    int
		expected string
	}{
		{"fits", "Code", 10, "Code"},
		{"zero width", "Code", 0, ""},
		{"tiny width", "Paragraph", 2, ".."},
		{"truncated", "Paragraph", 7, "Para..."},
		{"wide runes", "日本語テキスト", 7, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, TruncateString(tt.in, tt.width))
		})
	}
}

func TestFormatBreadcrumb(t *testing.T) {
	titles := []string{"Insert", "Advanced", "Blocks"}

	require.Equal(t, "Insert / Advanced / Blocks", FormatBreadcrumb(titles, 40))
	require.Equal(t, "… / Advanced / Blocks", FormatBreadcrumb(titles, 22))
	require.Equal(t, "… / Blocks", FormatBreadcrumb(titles, 12))
	require.Equal(t, "Bl...", FormatBreadcrumb(titles, 5))
	require.Equal(t, "", FormatBreadcrumb(nil, 5))
}

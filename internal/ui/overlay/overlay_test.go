package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"
)

func grid(w, h int) string {
	rows := make([]string, h)
	for i := range rows {
		rows[i] = strings.Repeat(".", w)
	}
	return strings.Join(rows, "\n")
}

func TestPlace_Positions(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{
			name: "center",
			cfg:  Config{Width: 6, Height: 3, Position: Center},
			want: []string{"......", "..XX..", "......"},
		},
		{
			name: "top with padding",
			cfg:  Config{Width: 6, Height: 3, Position: Top, PadY: 1},
			want: []string{"......", "..XX..", "......"},
		},
		{
			name: "bottom",
			cfg:  Config{Width: 6, Height: 3, Position: Bottom},
			want: []string{"......", "......", "..XX.."},
		},
		{
			name: "anchor below",
			cfg:  Config{Width: 6, Height: 3, Position: Anchor, X: 1, Y: 0},
			want: []string{"......", ".XX...", "......"},
		},
		{
			name: "anchor flips above",
			cfg:  Config{Width: 6, Height: 3, Position: Anchor, X: 1, Y: 2},
			want: []string{"......", ".XX...", "......"},
		},
		{
			name: "anchor clamps to right edge",
			cfg:  Config{Width: 6, Height: 3, Position: Anchor, X: 5, Y: 0},
			want: []string{"......", "....XX", "......"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Place(tt.cfg, "XX", grid(6, 3))

			require.Equal(t, tt.want, strings.Split(out, "\n"))
		})
	}
}

func TestPlace_PadsShortBackground(t *testing.T) {
	out := Place(Config{Width: 4, Height: 3, Position: Bottom}, "XX", "ab")

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "ab", lines[0])
	require.Equal(t, " XX", lines[2])
}

func TestPlace_LargeForeground(t *testing.T) {
	out := Place(Config{Width: 3, Height: 2, Position: Center}, "XXXXX\nXXXXX\nXXXXX", grid(3, 2))

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "XXXXX", lines[0])
}

func TestPlace_KeepsStyledBackground(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("abcdef")

	out := Place(Config{Width: 6, Height: 1, Position: Center}, "XX", styled)

	require.Equal(t, 6, lipgloss.Width(out))
	require.Contains(t, out, "XX")
}

// Package overlay draws a box over an already rendered view, keeping the
// ANSI styling of both.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position says where the box goes.
type Position int

const (
	Center Position = iota
	Top
	Bottom
	// Anchor puts the box below the row Config.Y starting at column
	// Config.X, or above the row when there is no room below.
	Anchor
)

// Config describes the viewport and the placement.
type Config struct {
	Width    int
	Height   int
	Position Position
	// PadY keeps Top and Bottom boxes away from the edge.
	PadY int
	// X and Y are the anchor cell for Anchor.
	X, Y int
}

// Place renders fg on top of bg.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	rows := strings.Split(bg, "\n")
	for len(rows) < cfg.Height {
		rows = append(rows, "")
	}

	x, y := origin(cfg, lipgloss.Width(fg), len(fgLines))
	for i, line := range fgLines {
		row := y + i
		if row >= len(rows) {
			break
		}
		rows[row] = splice(rows[row], line, x)
	}
	return strings.Join(rows, "\n")
}

// splice writes line over row starting at column x.
func splice(row, line string, x int) string {
	left := ansi.Truncate(row, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	end := x + ansi.StringWidth(line)
	right := ""
	if end < ansi.StringWidth(row) {
		right = ansi.TruncateLeft(row, end, "")
	}
	return left + line + right
}

// origin returns the top left cell of the box, clamped to the viewport.
func origin(cfg Config, w, h int) (x, y int) {
	x = (cfg.Width - w) / 2
	switch cfg.Position {
	case Top:
		y = cfg.PadY
	case Bottom:
		y = cfg.Height - h - cfg.PadY
	case Anchor:
		x = min(cfg.X, cfg.Width-w)
		y = cfg.Y + 1
		if y+h > cfg.Height && cfg.Y-h >= 0 {
			y = cfg.Y - h
		}
	default:
		y = (cfg.Height - h) / 2
	}
	return max(x, 0), max(y, 0)
}

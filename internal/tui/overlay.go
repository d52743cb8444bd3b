package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// centerOverlay draws badge over the middle of a width x height screen.
// Base text to the left and right of the badge stays visible.
func centerOverlay(base, badge string, width, height int) string {
	rows := splitLines(base)
	for len(rows) < height {
		rows = append(rows, "")
	}
	marks := splitLines(badge)
	bw := maxLineWidth(marks)
	col := max(0, (width-bw)/2)
	top := max(0, (height-len(marks))/2)
	for i, m := range marks {
		r := top + i
		if r >= len(rows) {
			break
		}
		rows[r] = splice(rows[r], padRight(m, bw), col)
	}
	return strings.Join(rows, "\n")
}

// splice writes s over row starting at cell col. A wide rune split by
// either edge of s becomes a space.
func splice(row, s string, col int) string {
	left := ansi.Truncate(row, col, "")
	if w := ansi.StringWidth(left); w < col {
		left += strings.Repeat(" ", col-w)
	}
	end := col + ansi.StringWidth(s)
	rw := ansi.StringWidth(row)
	if rw <= end {
		return left + s
	}
	right := ansi.TruncateLeft(row, end, "")
	if ansi.StringWidth(right) > rw-end {
		right = " " + ansi.TruncateLeft(row, end+1, "")
	}
	return left + s + right
}

// splitLines splits a string on newlines, returning at least one element.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

// maxLineWidth returns the visual width of the widest line.
func maxLineWidth(lines []string) int {
	m := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > m {
			m = w
		}
	}
	return m
}

// padRight pads s with spaces so its visual width equals width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// truncate shortens s to width cells, appending an ellipsis if truncated.
// Wide CJK runes count as two cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
)

// column is a table header; numeric columns are right aligned.
type column struct {
	title string
	right bool
}

// formatTable lays rows out under cols, padding by terminal cell width so
// Bengali and wide glyphs stay aligned. Missing cells render empty.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := lo.Map(cols, func(c column, _ int) int { return runewidth.StringWidth(c.title) })
	for _, row := range rows {
		for i := range cols {
			if w := runewidth.StringWidth(cellAt(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	titles := lo.Map(cols, func(c column, _ int) string { return c.title })
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinCells(cols, titles, widths))
	for _, row := range rows {
		lines = append(lines, joinCells(cols, row, widths))
	}
	return lines
}

func joinCells(cols []column, row []string, widths []int) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cell := cellAt(row, i)
		pad := strings.Repeat(" ", max(widths[i]-runewidth.StringWidth(cell), 0))
		if c.right {
			cells[i] = pad + cell
		} else {
			cells[i] = cell + pad
		}
	}
	return strings.Join(cells, " ")
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

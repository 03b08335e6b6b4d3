package viz

import (
	"math"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerCell = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff")).Padding(0, 1)
	cell       = lipgloss.NewStyle().Padding(0, 1)
	oddCell    = cell.Foreground(lipgloss.Color("#aaaabb"))
)

func formatCell(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e9 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', 8, 64)
}

// Table renders iteration rows. When there are more than limit rows the
// middle is elided and the last row is always kept. A limit of zero shows
// every row.
func Table(header []string, rows [][]float64, limit int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Subtle).
		Headers(header...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCell
			case row%2 == 1:
				return oddCell
			default:
				return cell
			}
		})

	shown := rows
	elided := false
	if limit > 1 && len(rows) > limit {
		shown = append(append([][]float64{}, rows[:limit-1]...), rows[len(rows)-1])
		elided = true
	}

	for i, row := range shown {
		if elided && i == len(shown)-1 {
			gap := make([]string, len(header))
			for j := range gap {
				gap[j] = "…"
			}
			t.Row(gap...)
		}
		strs := make([]string, len(row))
		for j, v := range row {
			strs[j] = formatCell(v)
		}
		t.Row(strs...)
	}

	return t.Render()
}

// KeyValues renders a two column table of named values in key order.
func KeyValues(values map[string]float64) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Subtle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return cell.Foreground(lipgloss.Color("#888899"))
			}
			return cell.Foreground(lipgloss.Color("#00ccff"))
		})
	for _, k := range keys {
		t.Row(k, formatCell(values[k]))
	}
	return t.Render()
}

package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table is a bordered table rendered with lipgloss.
type Table struct {
	headers []string
	rows    [][]string
	styles  map[[2]int]lipgloss.Style
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, styles: make(map[[2]int]lipgloss.Style)}
}

// Row adds a row to the table.
func (t *Table) Row(cells ...string) *Table {
	t.rows = append(t.rows, cells)
	return t
}

// StyleCell overrides the style of one cell of the last added row.
func (t *Table) StyleCell(col int, style lipgloss.Style) *Table {
	if len(t.rows) > 0 {
		t.styles[[2]int{len(t.rows) - 1, col}] = style
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// String renders the table.
func (t *Table) String() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(ColorBlue).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorDimGray)).
		Headers(t.headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if s, ok := t.styles[[2]int{row, col}]; ok {
				return s.Padding(0, 1)
			}
			return cell
		})
	for _, row := range t.rows {
		tbl.Row(row...)
	}
	return tbl.String()
}

// LocaleStat is one row of the translation status table.
type LocaleStat struct {
	Locale     string
	Name       string
	Translated int
	Total      int
}

// Percent returns the translated share, rounded down.
func (s LocaleStat) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Translated * 100 / s.Total
}

// RenderStatusTable renders per-locale translation progress.
func RenderStatusTable(stats []LocaleStat) string {
	t := NewTable("LOCALE", "LANGUAGE", "TRANSLATED", "PROGRESS")
	for _, s := range stats {
		pct := s.Percent()
		t.Row(s.Locale, s.Name, fmt.Sprintf("%d/%d", s.Translated, s.Total), fmt.Sprintf("%d%%", pct))
		t.StyleCell(3, ProgressStyle(pct))
	}
	return t.String()
}

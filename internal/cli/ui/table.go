package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"
)

const emptyCell = "-"

// Section prints a titled header with an item count and returns a table
// for its rows. Callers print the table once the rows are added.
func Section(icon, title string, count int, headers ...string) table.Table {
	OutputLine("\n%s %s %s", icon, BoldStyle.Render(title), DimStyle.Render(fmt.Sprintf("(%d)", count)))

	cols := make([]interface{}, len(headers))
	for i, h := range headers {
		cols[i] = h
	}
	tbl := table.New(cols...).
		WithWriter(Out).
		WithPadding(2).
		WithWidthFunc(lipgloss.Width)

	// name column; a header formatter would misalign the columns
	tbl.WithFirstColumnFormatter(func(format string, vals ...interface{}) string {
		return BoldStyle.Render(fmt.Sprintf(format, vals...))
	})
	return tbl
}

// cell substitutes a dash for an empty value
func cell(v string) string {
	if v == "" {
		return emptyCell
	}
	return v
}

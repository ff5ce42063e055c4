package warehouse

import "strings"

// Table is a column-ordered result set with stringified cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Col returns the index of a named column, or -1 when absent.
func (t *Table) Col(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Markdown renders the pipe table that tool observations are built
// from. Cell text is flattened to one line so warehouse values with
// embedded newlines or pipes cannot break the table shape.
func (t *Table) Markdown() string {
	if t == nil || len(t.Columns) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("| ")
	b.WriteString(strings.Join(t.Columns, " | "))
	b.WriteString(" |\n|")
	for range t.Columns {
		b.WriteString(" --- |")
	}

	for _, row := range t.Rows {
		b.WriteString("\n|")
		for _, cell := range row {
			b.WriteString(" ")
			b.WriteString(flattenCell(cell))
			b.WriteString(" |")
		}
	}
	return b.String()
}

func flattenCell(cell string) string {
	cell = strings.ReplaceAll(cell, "\r\n", " ")
	cell = strings.ReplaceAll(cell, "\n", " ")
	return strings.ReplaceAll(cell, "|", "\\|")
}

package output

import (
	"io"
	"strings"
)

// Table lays out text rows in left-aligned columns. Short rows are padded and
// trailing blanks are trimmed from every line.
type Table struct {
	header []string
	rows   [][]string
	gap    string
}

// NewTable starts a table. Without headers no header row is printed.
func NewTable(headers ...string) *Table {
	return &Table{header: headers, gap: "  "}
}

// AddRow appends one row.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// SetNoHeader drops the header row and its underline.
func (t *Table) SetNoHeader(noHeader bool) {
	if noHeader {
		t.header = nil
	}
}

// SetSeparator replaces the two-space column gap.
func (t *Table) SetSeparator(sep string) {
	t.gap = sep
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	_, err := io.WriteString(w, t.String())
	return err
}

// String returns the rendered table.
func (t *Table) String() string {
	widths := t.widths()
	if len(widths) == 0 {
		return ""
	}

	var sb strings.Builder
	line := func(cells []string, fill func(i int, cell string) string) {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = fill(i, cell)
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, t.gap), " "))
		sb.WriteByte('\n')
	}
	pad := func(i int, cell string) string {
		return cell + strings.Repeat(" ", widths[i]-len(cell))
	}

	if len(t.header) > 0 {
		line(t.header, pad)
		line(nil, func(i int, _ string) string { return strings.Repeat("-", widths[i]) })
	}
	for _, row := range t.rows {
		line(row, pad)
	}
	return sb.String()
}

func (t *Table) widths() []int {
	var widths []int
	grow := func(cells []string) {
		for i, cell := range cells {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], len(cell))
		}
	}
	grow(t.header)
	for _, row := range t.rows {
		grow(row)
	}
	return widths
}

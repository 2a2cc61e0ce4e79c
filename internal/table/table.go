// Package table holds the in-memory spreadsheet the pipeline works on: named
// columns of typed cells, loaded once and read-only afterwards.
package table

import "fmt"

// Kind is the inferred type of a cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumeric
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Cell is one typed value. Text keeps the original cell content.
type Cell struct {
	Kind Kind
	Text string
}

// Column is a named, ordered sequence of cells.
type Column struct {
	Name  string
	Cells []Cell
}

// Table is an ordered set of equally long columns.
type Table struct {
	Name    string // source file or sheet, for reporting
	Columns []Column
}

// New builds a table from a header row and data rows, inferring cell kinds.
// Short rows are padded with empty cells; blank and duplicate header names are
// made unique.
func New(name string, header []string, rows [][]string) *Table {
	names := uniqueNames(header, rows)
	t := &Table{Name: name, Columns: make([]Column, len(names))}
	for j, n := range names {
		cells := make([]Cell, len(rows))
		for i, row := range rows {
			var raw string
			if j < len(row) {
				raw = row[j]
			}
			cells[i] = Cell{Kind: Infer(raw), Text: raw}
		}
		t.Columns[j] = Column{Name: n, Cells: cells}
	}
	return t
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Cell returns the cell at row i of the named column. Unknown columns and
// out-of-range rows read as empty.
func (t *Table) Cell(column string, i int) Cell {
	c, ok := t.Column(column)
	if !ok || i < 0 || i >= len(c.Cells) {
		return Cell{Kind: KindEmpty}
	}
	return c.Cells[i]
}

// uniqueNames names every column. Blank headers become column_<n>; a repeated
// name gets the first _<k> suffix that is neither taken nor a header of its own.
func uniqueNames(header []string, rows [][]string) []string {
	width := len(header)
	for _, r := range rows {
		width = max(width, len(r))
	}
	base := make([]string, width)
	reserved := make(map[string]bool, width)
	for j := range base {
		if j < len(header) {
			base[j] = trimSpace(header[j])
		}
		if base[j] == "" {
			base[j] = fmt.Sprintf("column_%d", j+1)
		}
		reserved[base[j]] = true
	}

	taken := make(map[string]bool, width)
	names := make([]string, width)
	for j, n := range base {
		if taken[n] {
			for k := 2; ; k++ {
				c := fmt.Sprintf("%s_%d", base[j], k)
				if !taken[c] && !reserved[c] {
					n = c
					break
				}
			}
		}
		taken[n] = true
		names[j] = n
	}
	return names
}

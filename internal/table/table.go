// Package table implements the file-table format used by the SYCL
// offload toolchain: a bracketed pipe-delimited header line followed by
// one pipe-delimited data line per row.
package table

import (
	"strings"

	ferrors "github.com/sycltools/aspect-filter/internal/errors"
)

// Table is an ordered set of named columns plus the rows beneath them.
// Column order is significant for serialization; every row has exactly
// one cell per column.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given column set.
// Column names must be non-empty and unique.
func New(columns []string) (*Table, error) {
	if len(columns) == 0 {
		return nil, ferrors.New(ferrors.ErrCategoryFormat, ferrors.CodeMalformedHeader,
			"table must declare at least one column")
	}
	seen := make(map[string]struct{}, len(columns))
	for _, name := range columns {
		if name == "" {
			return nil, ferrors.New(ferrors.ErrCategoryFormat, ferrors.CodeMalformedHeader,
				"table column name must not be empty")
		}
		if strings.ContainsAny(name, "|[]") {
			return nil, ferrors.Newf(ferrors.ErrCategoryFormat, ferrors.CodeMalformedHeader,
				"table column name %q contains a delimiter character", name)
		}
		if _, dup := seen[name]; dup {
			return nil, ferrors.Newf(ferrors.ErrCategoryFormat, ferrors.CodeMalformedHeader,
				"duplicate table column name %q", name)
		}
		seen[name] = struct{}{}
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}, nil
}

// ColumnIndex returns the position of the named column, or -1 if the
// table has no such column.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Cell returns the value at the given row for the named column.
func (t *Table) Cell(row int, column string) (string, bool) {
	if row < 0 || row >= len(t.Rows) {
		return "", false
	}
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return "", false
	}
	return t.Rows[row][idx], true
}

// AppendRow adds a row to the table. The row must have exactly one cell
// per declared column.
func (t *Table) AppendRow(row []string) error {
	if len(row) != len(t.Columns) {
		return ferrors.Newf(ferrors.ErrCategoryFormat, ferrors.CodeColumnMismatch,
			"row has %d cells, table has %d columns", len(row), len(t.Columns))
	}
	cells := make([]string, len(row))
	copy(cells, row)
	t.Rows = append(t.Rows, cells)
	return nil
}

package manifest

import (
	"strings"

	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

// Format identifies the file format a table was read from.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Table is the result of reading one manifest file.
type Table struct {
	// SourceFile is the path or upload name the table was read from.
	SourceFile string

	// Format is the reader that produced the table.
	Format Format

	// Sheet is the worksheet name for XLSX input.
	Sheet string

	// Header is the trimmed header row as found in the file.
	Header []string

	// Rows holds one RawRow per non-empty body row, in file order.
	Rows []types.RawRow

	// Missing lists required columns absent from the header. When it is
	// non-empty Rows is empty.
	Missing []string

	// SkippedEmpty counts body rows dropped because every cell was blank.
	SkippedEmpty int
}

// OK reports whether the header carried every required column.
func (t *Table) OK() bool {
	return len(t.Missing) == 0
}

// FromGrid builds a table from a grid whose first row is the header.
// An empty grid yields an empty table with no missing columns.
func FromGrid(grid [][]string) *Table {
	t := &Table{Rows: []types.RawRow{}}
	if len(grid) == 0 {
		return t
	}

	t.Header = make([]string, len(grid[0]))
	for i, h := range grid[0] {
		t.Header[i] = strings.TrimSpace(h)
	}

	cols, missing := ResolveColumns(grid[0])
	if len(missing) > 0 {
		t.Missing = missing
		return t
	}

	for _, cells := range grid[1:] {
		if IsRowEmpty(cells) {
			t.SkippedEmpty++
			continue
		}
		t.Rows = append(t.Rows, cols.Row(cells))
	}

	return t
}

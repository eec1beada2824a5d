// Package table holds the in-memory audit table handed from loaders to the aggregator.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FACorreiaa/auditoria/internal/domain/common"
)

// Cell is the raw text of one table cell. Valid is false when the row had no
// value at that position.
type Cell struct {
	Value string
	Valid bool
}

// Text builds a present cell.
func Text(value string) Cell {
	return Cell{Value: value, Valid: true}
}

// Row maps column name to cell.
type Row map[string]Cell

// Table is an ordered sequence of rows sharing one header.
type Table struct {
	Columns []string
	Rows    []Row
}

// New builds a table from a header record and data records. Headers are
// trimmed, blank headers become "Unnamed: <index>" and repeated headers get a
// ".1", ".2", ... suffix. Records shorter than the header produce invalid cells.
func New(header []string, records [][]string) *Table {
	columns := CleanHeaders(header)

	t := &Table{
		Columns: columns,
		Rows:    make([]Row, 0, len(records)),
	}
	for _, record := range records {
		t.Append(record)
	}
	return t
}

// Append adds one record, aligned to the table columns.
func (t *Table) Append(record []string) {
	row := make(Row, len(t.Columns))
	for i, col := range t.Columns {
		if i < len(record) {
			row[col] = Text(record[i])
		} else {
			row[col] = Cell{}
		}
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether name is one of the table columns.
func (t *Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Column returns the cells of one column in row order.
func (t *Table) Column(name string) ([]Cell, error) {
	if !t.HasColumn(name) {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidColumn, name)
	}

	cells := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[name]
	}
	return cells, nil
}

// CleanHeaders trims header names and makes them unique.
func CleanHeaders(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	suffix := make(map[string]int)

	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		base := name
		for seen[name] {
			suffix[base]++
			name = base + "." + strconv.Itoa(suffix[base])
		}
		seen[name] = true
		columns[i] = name
	}

	return columns
}

// IsBlank reports whether every field of a record is empty after trimming.
func IsBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

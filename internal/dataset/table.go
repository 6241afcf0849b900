// Package dataset provides the in-memory CSV table the pipeline stages
// operate on. Cells are kept as strings; the missing-value sentinel is the
// empty string (the literal NULL on input is normalized to it).
package dataset

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEmptyFile is returned when a CSV file has no header row.
var ErrEmptyFile = errors.New("dataset: empty file")

// MissingColumnError reports a column the stage requires but the table lacks.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("dataset: missing expected column %q", e.Column)
}

// Table is a rectangular string table with named columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Col returns the index of the named column.
func (t *Table) Col(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// HasCol reports whether the table has the named column.
func (t *Table) HasCol(name string) bool {
	_, ok := t.Col(name)
	return ok
}

// Require returns a MissingColumnError for the first absent column.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if !t.HasCol(n) {
			return &MissingColumnError{Column: n}
		}
	}
	return nil
}

// Value returns the cell at row i in the named column, or the empty string
// if the column does not exist.
func (t *Table) Value(i int, name string) string {
	j, ok := t.Col(name)
	if !ok {
		return ""
	}
	return t.Rows[i][j]
}

// SetValue sets the cell at row i in the named column. Unknown columns are
// ignored so stages can rewrite optional columns without guarding.
func (t *Table) SetValue(i int, name, v string) {
	if j, ok := t.Col(name); ok {
		t.Rows[i][j] = v
	}
}

// AppendRow adds a row. The row must match the column count.
func (t *Table) AppendRow(row []string) {
	t.Rows = append(t.Rows, row)
}

// AddColumn appends a new column filled with the given values. values must
// have one entry per row.
func (t *Table) AddColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("dataset: column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	if t.HasCol(name) {
		return fmt.Errorf("dataset: column %q already exists", name)
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// Drop removes the named columns where present.
func (t *Table) Drop(names ...string) {
	drop := make(map[int]bool, len(names))
	for _, n := range names {
		if j, ok := t.Col(n); ok {
			drop[j] = true
		}
	}
	if len(drop) == 0 {
		return
	}
	keep := make([]int, 0, len(t.Columns)-len(drop))
	cols := make([]string, 0, len(t.Columns)-len(drop))
	for j, c := range t.Columns {
		if !drop[j] {
			keep = append(keep, j)
			cols = append(cols, c)
		}
	}
	t.Columns = cols
	for i, row := range t.Rows {
		next := make([]string, len(keep))
		for k, j := range keep {
			next[k] = row[j]
		}
		t.Rows[i] = next
	}
}

// Select returns a new table restricted to the given columns, in order.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for k, n := range names {
		j, ok := t.Col(n)
		if !ok {
			return nil, &MissingColumnError{Column: n}
		}
		idx[k] = j
	}
	out := New(names...)
	for _, row := range t.Rows {
		next := make([]string, len(idx))
		for k, j := range idx {
			next[k] = row[j]
		}
		out.AppendRow(next)
	}
	return out, nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// Filter returns a new table with the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := New(t.Columns...)
	for i := range t.Rows {
		if keep(i) {
			out.AppendRow(append([]string(nil), t.Rows[i]...))
		}
	}
	return out
}

// IsNA reports whether a raw cell value counts as missing. Input files use
// both the empty string and the literal NULL.
func IsNA(s string) bool {
	return s == "" || s == "NULL"
}

// ValueCount is one distinct value of a column with its occurrence count.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts returns the distinct values of a column sorted by descending
// count, ties broken by value.
func (t *Table) ValueCounts(name string) ([]ValueCount, error) {
	j, ok := t.Col(name)
	if !ok {
		return nil, &MissingColumnError{Column: name}
	}
	counts := make(map[string]int)
	for _, row := range t.Rows {
		counts[row[j]]++
	}
	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Value < out[b].Value
	})
	return out, nil
}

// SplitByColumn partitions the table by the values of a column, preserving
// row order within each partition. Keys are returned in first-seen order.
func (t *Table) SplitByColumn(name string) ([]string, map[string]*Table, error) {
	j, ok := t.Col(name)
	if !ok {
		return nil, nil, &MissingColumnError{Column: name}
	}
	var keys []string
	parts := make(map[string]*Table)
	for _, row := range t.Rows {
		k := row[j]
		part, seen := parts[k]
		if !seen {
			part = New(t.Columns...)
			parts[k] = part
			keys = append(keys, k)
		}
		part.AppendRow(append([]string(nil), row...))
	}
	return keys, parts, nil
}

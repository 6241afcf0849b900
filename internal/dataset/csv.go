package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadFile loads a CSV file into a Table. The first record is the header.
// A UTF-8 byte-order mark on the first cell is stripped, and the literal
// NULL sentinel is normalized to the empty string.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()
	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return t, nil
}

// Read loads CSV data from r into a Table.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	t := New(header...)
	lineNum := 1
	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		for j, v := range row {
			if v == "NULL" {
				row[j] = ""
			}
		}
		t.AppendRow(row)
	}
	return t, nil
}

// WriteOptions controls CSV output.
type WriteOptions struct {
	// QuoteAll forces every field to be quoted, so numeric-looking tokens
	// such as zero-padded zip codes survive downstream type inference.
	QuoteAll bool
}

// WriteFile writes the table to path as UTF-8 CSV without a byte-order mark.
func (t *Table) WriteFile(path string, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %s: %w", path, err)
	}
	if err := t.Write(f, opts); err != nil {
		f.Close()
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("dataset: close %s: %w", path, err)
	}
	return nil
}

// Write writes the table to w as CSV.
func (t *Table) Write(w io.Writer, opts WriteOptions) error {
	if opts.QuoteAll {
		bw := bufio.NewWriter(w)
		writeQuoted(bw, t.Columns)
		for _, row := range t.Rows {
			writeQuoted(bw, row)
		}
		return bw.Flush()
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeQuoted emits one record with every field quoted. encoding/csv has no
// force-quote mode, so this is done by hand.
func writeQuoted(w *bufio.Writer, record []string) {
	for j, field := range record {
		if j > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}

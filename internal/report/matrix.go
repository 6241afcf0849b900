// Package report fits a tree-ensemble classifier on the prepared table and
// ranks features by importance. The model is implemented in-repo: an
// ensemble of CART trees with Gini splits, impurity importances and
// per-path contribution attribution.
package report

import (
	"fmt"
	"strconv"

	"github.com/dvloznov/fraudprep/internal/dataset"
	"github.com/dvloznov/fraudprep/internal/encode"
)

// Matrix is the numeric design matrix for model fitting.
type Matrix struct {
	Features []string
	X        [][]float64
	Y        []int
}

// BuildMatrix converts the table into a numeric matrix. Columns whose
// non-missing cells all parse as numbers are taken as-is (missing becomes
// zero); every other column is label-encoded. Encoders from the persisted
// set are used where available so codes stay stable across stages; columns
// without one are fit in-run.
func BuildMatrix(t *dataset.Table, label string, encoders encode.Set) (*Matrix, error) {
	labelIdx, ok := t.Col(label)
	if !ok {
		return nil, &dataset.MissingColumnError{Column: label}
	}

	m := &Matrix{
		X: make([][]float64, t.Len()),
		Y: make([]int, t.Len()),
	}
	for i := range m.X {
		m.X[i] = make([]float64, 0, len(t.Columns)-1)
	}

	for i := 0; i < t.Len(); i++ {
		raw := t.Rows[i][labelIdx]
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || (v != 0 && v != 1) {
			return nil, fmt.Errorf("report: row %d has unusable label %q", i, raw)
		}
		m.Y[i] = int(v)
	}

	for j, col := range t.Columns {
		if j == labelIdx {
			continue
		}
		m.Features = append(m.Features, col)

		if numeric, values := numericColumn(t, j); numeric {
			for i := range m.X {
				m.X[i] = append(m.X[i], values[i])
			}
			continue
		}

		enc := encoders[col]
		if enc == nil {
			var err error
			enc, err = encode.FitColumn(t, col)
			if err != nil {
				return nil, err
			}
		}
		for i := 0; i < t.Len(); i++ {
			code, err := enc.Transform(t.Rows[i][j])
			if err != nil {
				return nil, fmt.Errorf("report: column %s row %d: %w", col, i, err)
			}
			m.X[i] = append(m.X[i], float64(code))
		}
	}
	return m, nil
}

// numericColumn reports whether every non-missing cell of column j parses
// as a number, returning the parsed values (missing as zero) when it does.
func numericColumn(t *dataset.Table, j int) (bool, []float64) {
	values := make([]float64, t.Len())
	for i := 0; i < t.Len(); i++ {
		cell := t.Rows[i][j]
		if dataset.IsNA(cell) {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return false, nil
		}
		values[i] = v
	}
	return true, values
}

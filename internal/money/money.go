// Package money parses the currency strings found in the raw card and
// transaction files ("$1,234.56", "(45.00)", "59064").
package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/fraudprep/internal/dataset"
)

var stripper = strings.NewReplacer("$", "", ",", "", "(", "", ")", "", " ", "")

// ParseAmount converts a currency string to a non-negative float.
//
// Policy: the sign is discarded. The raw files encode returns both with a
// leading minus and with enclosing parentheses; every downstream consumer of
// amount works on magnitudes, so both notations collapse to the absolute
// value.
func ParseAmount(s string) (float64, bool) {
	cleaned := stripper.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	return d.Abs().InexactFloat64(), true
}

// FormatAmount renders an amount the way stage outputs carry it.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// CleanColumn rewrites a currency column in place as plain numbers. Cells
// that cannot be parsed degrade to the missing sentinel; the number of such
// cells is returned. A table without the column is left untouched.
func CleanColumn(t *dataset.Table, col string) int {
	j, ok := t.Col(col)
	if !ok {
		return 0
	}
	unparseable := 0
	for i := range t.Rows {
		raw := t.Rows[i][j]
		if dataset.IsNA(raw) {
			continue
		}
		v, ok := ParseAmount(raw)
		if !ok {
			t.Rows[i][j] = ""
			unparseable++
			continue
		}
		t.Rows[i][j] = FormatAmount(v)
	}
	return unparseable
}

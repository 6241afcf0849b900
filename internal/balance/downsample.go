// Package balance produces class-balanced training tables from the heavily
// imbalanced labeled set, either by plain random downsampling of the
// majority class or by sliding-window fraud augmentation with
// neighbor-guided undersampling.
package balance

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"github.com/dvloznov/fraudprep/internal/dataset"
)

// DownsampleMultiple is the non-fraud to fraud ratio of the simple strategy.
const DownsampleMultiple = 10

// DownsampleStats summarizes a downsampling pass.
type DownsampleStats struct {
	Fraud    int
	NonFraud int
	Rows     int
}

// fraudLabel parses a fraud cell ("1", "0", "1.0" and the like).
func fraudLabel(s string) (int, bool) {
	if dataset.IsNA(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if v == 1 {
		return 1, true
	}
	if v == 0 {
		return 0, true
	}
	return 0, false
}

// Downsample keeps every fraud row and samples exactly 10x as many non-fraud
// rows without replacement, then sorts the union chronologically. The result
// is deterministic for a given seed.
func Downsample(t *dataset.Table, seed int64) (*dataset.Table, DownsampleStats, error) {
	var st DownsampleStats
	if err := t.Require("fraud", "date"); err != nil {
		return nil, st, err
	}

	var fraudRows, nonFraudRows []int
	for i := 0; i < t.Len(); i++ {
		label, ok := fraudLabel(t.Value(i, "fraud"))
		if !ok {
			return nil, st, fmt.Errorf("balance: row %d has unusable fraud label %q", i, t.Value(i, "fraud"))
		}
		if label == 1 {
			fraudRows = append(fraudRows, i)
		} else {
			nonFraudRows = append(nonFraudRows, i)
		}
	}
	if len(fraudRows) == 0 {
		return nil, st, fmt.Errorf("balance: no fraud rows to balance against")
	}

	need := DownsampleMultiple * len(fraudRows)
	if len(nonFraudRows) < need {
		return nil, st, fmt.Errorf("balance: need %d non-fraud rows, have %d", need, len(nonFraudRows))
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(nonFraudRows))
	selected := append([]int(nil), fraudRows...)
	for _, p := range perm[:need] {
		selected = append(selected, nonFraudRows[p])
	}

	// The stage output is ordered by transaction date; the timestamp format
	// sorts lexicographically.
	dateIdx, _ := t.Col("date")
	sort.SliceStable(selected, func(a, b int) bool {
		return t.Rows[selected[a]][dateIdx] < t.Rows[selected[b]][dateIdx]
	})

	out := dataset.New(t.Columns...)
	for _, i := range selected {
		out.AppendRow(append([]string(nil), t.Rows[i]...))
	}

	st.Fraud = len(fraudRows)
	st.NonFraud = need
	st.Rows = out.Len()
	return out, st, nil
}

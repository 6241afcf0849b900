// Package labeling attaches the fraud label and the MCC category to the raw
// transaction table and normalizes the amount column.
package labeling

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dvloznov/fraudprep/internal/dataset"
	"github.com/dvloznov/fraudprep/internal/money"
)

// UnknownMCCType is the category assigned when an MCC code is not in the map.
const UnknownMCCType = "Unknown"

// Stats summarizes one labeling pass.
type Stats struct {
	Rows               int
	Fraud              int
	Legitimate         int
	Unlabeled          int
	UnknownMCC         int
	UnparseableAmounts int
}

// LoadMCCCodes reads the JSON mapping from MCC code to category string.
func LoadMCCCodes(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("labeling: read mcc codes: %w", err)
	}
	codes := make(map[string]string)
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, fmt.Errorf("labeling: parse mcc codes %s: %w", path, err)
	}
	return codes, nil
}

// LoadFraudLabels reads the fraud-status file (columns id, Status) into a
// map from transaction id to "1"/"0". Statuses other than Yes/No are
// skipped, so the transaction stays unlabeled.
func LoadFraudLabels(path string) (map[string]string, error) {
	t, err := dataset.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require("id", "Status"); err != nil {
		return nil, err
	}
	labels := make(map[string]string, t.Len())
	for i := 0; i < t.Len(); i++ {
		switch strings.TrimSpace(t.Value(i, "Status")) {
		case "Yes":
			labels[t.Value(i, "id")] = "1"
		case "No":
			labels[t.Value(i, "id")] = "0"
		}
	}
	return labels, nil
}

// Apply adds the mcc_type and fraud columns to the transaction table and
// rewrites the amount column as a non-negative number. Transactions without
// a label entry get the missing sentinel; the cleaner drops them later.
func Apply(t *dataset.Table, labels map[string]string, mccCodes map[string]string) (Stats, error) {
	var st Stats
	if err := t.Require("id", "mcc", "amount"); err != nil {
		return st, err
	}

	mccTypes := make([]string, t.Len())
	for i := range mccTypes {
		category, ok := mccCodes[t.Value(i, "mcc")]
		if !ok {
			category = UnknownMCCType
			st.UnknownMCC++
		}
		mccTypes[i] = category
	}
	if err := t.AddColumn("mcc_type", mccTypes); err != nil {
		return st, err
	}

	fraud := make([]string, t.Len())
	for i := range fraud {
		label, ok := labels[t.Value(i, "id")]
		if !ok {
			st.Unlabeled++
			continue
		}
		fraud[i] = label
		if label == "1" {
			st.Fraud++
		} else {
			st.Legitimate++
		}
	}
	if err := t.AddColumn("fraud", fraud); err != nil {
		return st, err
	}

	st.UnparseableAmounts = money.CleanColumn(t, "amount")
	st.Rows = t.Len()
	return st, nil
}

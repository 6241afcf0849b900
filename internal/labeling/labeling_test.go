package labeling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/fraudprep/internal/dataset"
)

func TestLoadMCCCodes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcc_codes.json")
	if err := os.WriteFile(path, []byte(`{"5411":"Grocery Stores","5812":"Eating Places"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	codes, err := LoadMCCCodes(path)
	if err != nil {
		t.Fatalf("LoadMCCCodes failed: %v", err)
	}
	if codes["5411"] != "Grocery Stores" {
		t.Errorf("unexpected mapping: %v", codes)
	}
}

func TestLoadMCCCodesMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(`{"5411":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMCCCodes(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestLoadFraudLabels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.csv")
	csv := "id,Status\n1,Yes\n2,No\n3, Yes \n4,Maybe\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	labels, err := LoadFraudLabels(path)
	if err != nil {
		t.Fatalf("LoadFraudLabels failed: %v", err)
	}
	if labels["1"] != "1" || labels["2"] != "0" {
		t.Errorf("unexpected labels: %v", labels)
	}
	if labels["3"] != "1" {
		t.Errorf("padded status not trimmed: %v", labels)
	}
	if _, ok := labels["4"]; ok {
		t.Error("unknown status should be skipped")
	}
}

func TestApply(t *testing.T) {
	tab := dataset.New("id", "amount", "mcc")
	tab.AppendRow([]string{"1", "$128.61", "5411"})
	tab.AppendRow([]string{"2", "-45.00", "5812"})
	tab.AppendRow([]string{"3", "bogus", "9999"})

	labels := map[string]string{"1": "1", "2": "0"}
	codes := map[string]string{"5411": "Grocery Stores", "5812": "Eating Places"}

	st, err := Apply(tab, labels, codes)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if st.Fraud != 1 || st.Legitimate != 1 || st.Unlabeled != 1 {
		t.Errorf("label stats = %+v", st)
	}
	if st.UnknownMCC != 1 {
		t.Errorf("UnknownMCC = %d, want 1", st.UnknownMCC)
	}
	if st.UnparseableAmounts != 1 {
		t.Errorf("UnparseableAmounts = %d, want 1", st.UnparseableAmounts)
	}

	if got := tab.Value(0, "fraud"); got != "1" {
		t.Errorf("row 0 fraud = %q", got)
	}
	if got := tab.Value(2, "fraud"); got != "" {
		t.Errorf("unlabeled row fraud = %q, want NA", got)
	}
	if got := tab.Value(0, "mcc_type"); got != "Grocery Stores" {
		t.Errorf("mcc_type = %q", got)
	}
	if got := tab.Value(2, "mcc_type"); got != UnknownMCCType {
		t.Errorf("unknown mcc_type = %q", got)
	}
	if got := tab.Value(1, "amount"); got != "45" {
		t.Errorf("amount sign not discarded: %q", got)
	}
}

func TestApplyMissingColumn(t *testing.T) {
	tab := dataset.New("id", "amount")
	if _, err := Apply(tab, nil, nil); err == nil {
		t.Error("expected error for missing mcc column")
	}
}

package sample

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/fraudprep/internal/dataset"
	"github.com/dvloznov/fraudprep/internal/labeling"
)

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	st, err := Generate(dir, cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if st.Transactions != cfg.Transactions {
		t.Errorf("Transactions = %d, want %d", st.Transactions, cfg.Transactions)
	}
	if st.Clients != cfg.Clients || st.Cards != cfg.Clients*cfg.CardsPerClient {
		t.Errorf("Clients = %d Cards = %d", st.Clients, st.Cards)
	}
	if st.Fraud == 0 {
		t.Error("no fraud rows generated")
	}

	txs, err := dataset.ReadFile(filepath.Join(dir, "transactions.csv"))
	if err != nil {
		t.Fatalf("transactions.csv: %v", err)
	}
	if err := txs.Require("id", "date", "client_id", "card_id", "amount",
		"merchant_city", "merchant_state", "zip", "mcc", "errors"); err != nil {
		t.Errorf("transactions schema: %v", err)
	}
	if txs.Len() != cfg.Transactions {
		t.Errorf("transactions rows = %d", txs.Len())
	}

	labels, err := labeling.LoadFraudLabels(filepath.Join(dir, "fraud_labels.csv"))
	if err != nil {
		t.Fatalf("fraud_labels.csv: %v", err)
	}
	if len(labels) != cfg.Transactions {
		t.Errorf("labels = %d, want every transaction labeled", len(labels))
	}

	codes, err := labeling.LoadMCCCodes(filepath.Join(dir, "mcc_codes.json"))
	if err != nil {
		t.Fatalf("mcc_codes.json: %v", err)
	}
	for i := 0; i < txs.Len(); i++ {
		if _, ok := codes[txs.Value(i, "mcc")]; !ok {
			t.Fatalf("row %d mcc %q not in mcc_codes.json", i, txs.Value(i, "mcc"))
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	cfg := DefaultConfig()
	cfg.Transactions = 50
	if _, err := Generate(dirA, cfg); err != nil {
		t.Fatalf("Generate A: %v", err)
	}
	if _, err := Generate(dirB, cfg); err != nil {
		t.Fatalf("Generate B: %v", err)
	}
	for _, name := range []string{"transactions.csv", "users.csv", "cards.csv", "fraud_labels.csv"} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join(dirB, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(a) != string(b) {
			t.Errorf("%s differs between runs with the same seed", name)
		}
	}
}

func TestGenerateRejectsBadCounts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Clients = 0
	if _, err := Generate(t.TempDir(), cfg); err == nil {
		t.Fatal("expected error for zero clients")
	}
}

package join

import (
	"errors"
	"testing"

	"github.com/dvloznov/fraudprep/internal/dataset"
)

func testTables() (txs, clients, cards *dataset.Table) {
	txs = dataset.New("id", "client_id", "card_id", "amount")
	txs.AppendRow([]string{"t1", "c1", "k1", "10"})
	txs.AppendRow([]string{"t2", "c2", "k2", "20"})
	txs.AppendRow([]string{"t3", "c1", "k2", "30"})

	clients = dataset.New("id", "gender", "credit_score")
	clients.AppendRow([]string{"c1", "F", "700"})
	clients.AppendRow([]string{"c2", "M", "650"})

	cards = dataset.New("id", "client_id", "card_brand", "card_number", "cvv", "card_on_dark_web", "credit_limit")
	cards.AppendRow([]string{"k1", "c1", "Visa", "4111", "123", "No", "$5,000"})
	cards.AppendRow([]string{"k2", "c2", "Mastercard", "5555", "456", "No", "$9,000"})
	return txs, clients, cards
}

func TestTransactionsJoin(t *testing.T) {
	txs, clients, cards := testTables()
	out, err := Transactions(txs, clients, cards)
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}

	// join cardinality: one output row per transaction
	if out.Len() != txs.Len() {
		t.Fatalf("len(joined) = %d, want %d", out.Len(), txs.Len())
	}

	if out.Value(0, "gender") != "F" || out.Value(1, "gender") != "M" {
		t.Error("client fields misjoined")
	}
	if out.Value(2, "card_brand") != "Mastercard" {
		t.Error("card fields misjoined")
	}
	for _, col := range []string{"card_number", "cvv", "card_on_dark_web"} {
		if out.HasCol(col) {
			t.Errorf("sensitive column %q leaked into join output", col)
		}
	}
	// the card's owner id is dropped, the transaction's kept
	if got := out.Value(0, "client_id"); got != "c1" {
		t.Errorf("client_id = %q", got)
	}
}

func TestTransactionsUnmatchedClient(t *testing.T) {
	txs, clients, cards := testTables()
	txs.AppendRow([]string{"t4", "c404", "k1", "40"})

	_, err := Transactions(txs, clients, cards)
	var unmatched *UnmatchedKeyError
	if !errors.As(err, &unmatched) {
		t.Fatalf("want UnmatchedKeyError, got %v", err)
	}
	if unmatched.Table != "client" || unmatched.Key != "c404" {
		t.Errorf("unexpected error detail: %+v", unmatched)
	}
}

func TestTransactionsUnmatchedCard(t *testing.T) {
	txs, clients, cards := testTables()
	txs.AppendRow([]string{"t4", "c1", "k404", "40"})

	_, err := Transactions(txs, clients, cards)
	var unmatched *UnmatchedKeyError
	if !errors.As(err, &unmatched) {
		t.Fatalf("want UnmatchedKeyError, got %v", err)
	}
	if unmatched.Table != "card" {
		t.Errorf("unexpected table: %q", unmatched.Table)
	}
}

func TestTransactionsDuplicateReferenceID(t *testing.T) {
	txs, clients, cards := testTables()
	clients.AppendRow([]string{"c1", "M", "500"})
	if _, err := Transactions(txs, clients, cards); err == nil {
		t.Error("expected error for duplicate client id")
	}
}

func TestJoinColumnSuffixes(t *testing.T) {
	txs := dataset.New("id", "client_id", "card_id", "credit_score")
	txs.AppendRow([]string{"t1", "c1", "k1", "x"})
	clients := dataset.New("id", "credit_score")
	clients.AppendRow([]string{"c1", "700"})
	cards := dataset.New("id", "client_id", "credit_score")
	cards.AppendRow([]string{"k1", "c1", "bad"})

	out, err := Transactions(txs, clients, cards)
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}
	if !out.HasCol("credit_score_client") || !out.HasCol("credit_score_card") {
		t.Errorf("collision suffixes missing: %v", out.Columns)
	}
	if got := out.Value(0, "credit_score_client"); got != "700" {
		t.Errorf("suffixed value = %q", got)
	}
}

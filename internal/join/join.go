// Package join merges the transaction table with the client and card
// reference tables by id. Unlike a plain inner merge, a transaction whose
// client or card id has no match fails the stage loudly instead of being
// silently dropped, so output cardinality always equals input cardinality.
package join

import (
	"fmt"

	"github.com/dvloznov/fraudprep/internal/dataset"
)

// sensitiveCardColumns are removed from the card table before joining.
// card_on_dark_web carries a single value across the whole dataset.
var sensitiveCardColumns = []string{"card_number", "cvv", "card_on_dark_web"}

// UnmatchedKeyError reports a foreign key with no row in a reference table.
type UnmatchedKeyError struct {
	Table string
	Key   string
}

func (e *UnmatchedKeyError) Error() string {
	return fmt.Sprintf("join: transaction references %s id %q with no matching row", e.Table, e.Key)
}

// Transactions joins each transaction with its client and card records.
// Reference columns are suffixed _client / _card when they collide with a
// transaction column; reference id columns and the card's client_id are not
// carried over.
func Transactions(txs, clients, cards *dataset.Table) (*dataset.Table, error) {
	if err := txs.Require("client_id", "card_id"); err != nil {
		return nil, err
	}
	if err := clients.Require("id"); err != nil {
		return nil, fmt.Errorf("clients table: %w", err)
	}
	if err := cards.Require("id"); err != nil {
		return nil, fmt.Errorf("cards table: %w", err)
	}

	cards = cards.Clone()
	cards.Drop(sensitiveCardColumns...)

	clientRows, err := indexByID(clients)
	if err != nil {
		return nil, fmt.Errorf("clients table: %w", err)
	}
	cardRows, err := indexByID(cards)
	if err != nil {
		return nil, fmt.Errorf("cards table: %w", err)
	}

	clientCols, clientIdx := joinColumns(txs, clients, "_client", "id")
	cardCols, cardIdx := joinColumns(txs, cards, "_card", "id", "client_id")

	out := dataset.New(append(append(append([]string{}, txs.Columns...), clientCols...), cardCols...)...)
	for i := 0; i < txs.Len(); i++ {
		clientID := txs.Value(i, "client_id")
		cardID := txs.Value(i, "card_id")

		client, ok := clientRows[clientID]
		if !ok {
			return nil, &UnmatchedKeyError{Table: "client", Key: clientID}
		}
		card, ok := cardRows[cardID]
		if !ok {
			return nil, &UnmatchedKeyError{Table: "card", Key: cardID}
		}

		row := make([]string, 0, len(out.Columns))
		row = append(row, txs.Rows[i]...)
		for _, j := range clientIdx {
			row = append(row, client[j])
		}
		for _, j := range cardIdx {
			row = append(row, card[j])
		}
		out.AppendRow(row)
	}
	return out, nil
}

// indexByID maps the id column to its row. Duplicate ids are an error: the
// join must stay many-to-one.
func indexByID(t *dataset.Table) (map[string][]string, error) {
	idx := make(map[string][]string, t.Len())
	for i := 0; i < t.Len(); i++ {
		id := t.Value(i, "id")
		if _, dup := idx[id]; dup {
			return nil, fmt.Errorf("duplicate id %q", id)
		}
		idx[id] = t.Rows[i]
	}
	return idx, nil
}

// joinColumns returns the output column names and source indices for a
// reference table, skipping the listed key columns and suffixing collisions.
func joinColumns(txs, ref *dataset.Table, suffix string, skip ...string) ([]string, []int) {
	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipSet[s] = true
	}
	var names []string
	var idx []int
	for j, c := range ref.Columns {
		if skipSet[c] {
			continue
		}
		name := c
		if txs.HasCol(c) {
			name = c + suffix
		}
		names = append(names, name)
		idx = append(idx, j)
	}
	return names, idx
}

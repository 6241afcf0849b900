package balance

import "github.com/dvloznov/fraudprep/internal/dataset"

// cardGroup is the transaction sequence of one (client, card) pair in
// original row order.
type cardGroup struct {
	clientID string
	cardID   string
	rows     []int
}

// groupByClientCard partitions row indices by (client_id, card_id),
// preserving chronological input order within each group. Groups appear in
// first-seen order.
func groupByClientCard(t *dataset.Table) []cardGroup {
	byKey := make(map[[2]string]int)
	var groups []cardGroup
	for i := 0; i < t.Len(); i++ {
		key := [2]string{t.Value(i, "client_id"), t.Value(i, "card_id")}
		g, ok := byKey[key]
		if !ok {
			g = len(groups)
			byKey[key] = g
			groups = append(groups, cardGroup{clientID: key[0], cardID: key[1]})
		}
		groups[g].rows = append(groups[g].rows, i)
	}
	return groups
}

// windowHasFraud reports whether any row in the window is fraud-labeled.
func windowHasFraud(t *dataset.Table, rows []int) bool {
	for _, i := range rows {
		if label, ok := fraudLabel(t.Value(i, "fraud")); ok && label == 1 {
			return true
		}
	}
	return false
}

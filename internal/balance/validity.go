package balance

import "github.com/dvloznov/fraudprep/internal/dataset"

// ValiditySets holds the location triples and MCC codes observed across the
// full dataset. Windows are only augmented when every row carries values
// from these sets, guarding against sentinel or malformed values introduced
// upstream.
type ValiditySets struct {
	combos map[[3]string]struct{}
	mccs   map[string]struct{}
}

// BuildValiditySets collects the (zip, merchant_state, merchant_city)
// triples and mcc values present in the table.
func BuildValiditySets(t *dataset.Table) (*ValiditySets, error) {
	if err := t.Require("zip", "merchant_state", "merchant_city", "mcc"); err != nil {
		return nil, err
	}
	v := &ValiditySets{
		combos: make(map[[3]string]struct{}),
		mccs:   make(map[string]struct{}),
	}
	for i := 0; i < t.Len(); i++ {
		v.combos[[3]string{
			t.Value(i, "zip"),
			t.Value(i, "merchant_state"),
			t.Value(i, "merchant_city"),
		}] = struct{}{}
		v.mccs[t.Value(i, "mcc")] = struct{}{}
	}
	return v, nil
}

// ValidRow reports whether a row's location triple and mcc are both known.
func (v *ValiditySets) ValidRow(zip, state, city, mcc string) bool {
	if _, ok := v.combos[[3]string{zip, state, city}]; !ok {
		return false
	}
	_, ok := v.mccs[mcc]
	return ok
}

// ValidWindow reports whether every row in the window passes ValidRow.
func (v *ValiditySets) ValidWindow(t *dataset.Table, rows []int) bool {
	for _, i := range rows {
		if !v.ValidRow(
			t.Value(i, "zip"),
			t.Value(i, "merchant_state"),
			t.Value(i, "merchant_city"),
			t.Value(i, "mcc"),
		) {
			return false
		}
	}
	return true
}

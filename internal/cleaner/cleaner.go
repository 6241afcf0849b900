// Package cleaner normalizes the labeled transaction table: zip codes for
// online and international merchants, categorical missing-value sentinels,
// and removal of rows without a fraud label.
package cleaner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dvloznov/fraudprep/internal/dataset"
)

const (
	onlineCity  = "ONLINE"
	onlineZip   = "00000"
	noErrorFill = "No Error"
)

// Stats summarizes one cleaning pass.
type Stats struct {
	OnlineZipFilled   int
	OnlineStateFilled int
	InternationalZips int
	ErrorsFilled      int
	DroppedNoLabel    int
	Rows              int
}

// NormalizeZip coerces a zip value to the pipeline's fixed-width form:
// numeric-looking values (including float text such as "74837.0") become
// zero-padded 5-digit strings, non-numeric values pass through trimmed, and
// missing stays missing. The function is a fixed point: applying it to its
// own output changes nothing.
func NormalizeZip(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%05d", int64(f))
}

// Clean runs the full normalization pass over the table in place, then
// drops rows without a fraud label. The zip, errors and fraud columns are
// optional, matching the column guards of the source data; merchant_city and
// merchant_state are required.
func Clean(t *dataset.Table) (*dataset.Table, Stats, error) {
	var st Stats
	if err := t.Require("merchant_city", "merchant_state"); err != nil {
		return nil, st, err
	}
	hasZip := t.HasCol("zip")

	for i := range t.Rows {
		city := t.Value(i, "merchant_city")
		state := t.Value(i, "merchant_state")

		// Online merchants: the state becomes ONLINE and the zip the
		// all-zero placeholder.
		if city == onlineCity {
			if dataset.IsNA(state) {
				t.SetValue(i, "merchant_state", onlineCity)
				state = onlineCity
				st.OnlineStateFilled++
			}
			if hasZip && dataset.IsNA(t.Value(i, "zip")) {
				t.SetValue(i, "zip", onlineZip)
				st.OnlineZipFilled++
			}
		}

		// International merchants with no zip: country placeholder.
		if hasZip && dataset.IsNA(t.Value(i, "zip")) &&
			!dataset.IsNA(state) && state != onlineCity && !IsUSState(state) {
			t.SetValue(i, "zip", CountryZip(state))
			st.InternationalZips++
		}

		if hasZip {
			t.SetValue(i, "zip", NormalizeZip(t.Value(i, "zip")))
		}

		if t.HasCol("errors") && dataset.IsNA(t.Value(i, "errors")) {
			t.SetValue(i, "errors", noErrorFill)
			st.ErrorsFilled++
		}
	}

	out := t
	if t.HasCol("fraud") {
		out = t.Filter(func(i int) bool {
			return !dataset.IsNA(t.Value(i, "fraud"))
		})
		st.DroppedNoLabel = t.Len() - out.Len()
	}
	st.Rows = out.Len()
	return out, st, nil
}

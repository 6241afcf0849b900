// Package features derives the model-input columns from the joined table.
// Every derivation is a pure function of fields already on the row; a
// missing or unparseable input yields a missing output, never an error.
package features

import (
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/fraudprep/internal/dataset"
	"github.com/dvloznov/fraudprep/internal/money"
)

// moneyColumns are cleaned from currency strings to plain numbers before
// any derivation runs.
var moneyColumns = []string{"per_capita_income", "yearly_income", "total_debt", "credit_limit", "amount"}

// droppedColumns are identifiers and raw fields the derived columns replace.
var droppedColumns = []string{
	"id", "card_id", "expires", "acct_open_date", "birth_year", "birth_month",
	"current_age", "retirement_age", "mcc_type", "zip", "date",
}

// Stats summarizes one derivation pass.
type Stats struct {
	Rows               int
	UnparseableAmounts int
	MissingDates       int
}

// Derive cleans the money columns and appends the derived feature columns,
// then drops the raw columns they replace.
func Derive(t *dataset.Table) (Stats, error) {
	var st Stats
	if err := t.Require("date", "zip"); err != nil {
		return st, err
	}

	for _, col := range moneyColumns {
		st.UnparseableAmounts += money.CleanColumn(t, col)
	}

	n := t.Len()
	hour := make([]string, n)
	dayofweek := make([]string, n)
	accountAge := make([]string, n)
	monthsToExpiry := make([]string, n)
	expiresLastDay := make([]string, n)
	transactionAge := make([]string, n)
	yearsToRetirement := make([]string, n)
	zipPrefix := make([]string, n)
	merchantRegion := make([]string, n)

	for i := 0; i < n; i++ {
		ts, tsOK := ParseTimestamp(t.Value(i, "date"))
		if !tsOK {
			st.MissingDates++
		}

		if tsOK {
			hour[i] = strconv.Itoa(ts.Hour())
			dayofweek[i] = strconv.Itoa(dayOfWeek(ts))
		}

		if open, ok := ParseMonthYear(t.Value(i, "acct_open_date")); ok && tsOK {
			days := int(ts.Sub(open).Hours() / 24)
			accountAge[i] = strconv.Itoa(days)
		}

		if exp, ok := ParseMonthYear(t.Value(i, "expires")); ok {
			last := lastDayOfMonth(exp)
			expiresLastDay[i] = last.Format("2006-01-02")
			if tsOK {
				monthsToExpiry[i] = strconv.Itoa(monthDiff(ts, last))
			}
		}

		if birthYear, ok := parseInt(t.Value(i, "birth_year")); ok && tsOK {
			age := ts.Year() - birthYear
			transactionAge[i] = strconv.Itoa(age)
			if retirement, ok := parseInt(t.Value(i, "retirement_age")); ok {
				yearsToRetirement[i] = strconv.Itoa(retirement - age)
			}
		}

		if zip := t.Value(i, "zip"); !dataset.IsNA(zip) {
			if len(zip) > 3 {
				zipPrefix[i] = zip[:3]
			} else {
				zipPrefix[i] = zip
			}
		}

		city := t.Value(i, "merchant_city")
		state := t.Value(i, "merchant_state")
		switch {
		case dataset.IsNA(city) && dataset.IsNA(state):
			// stays missing
		case dataset.IsNA(state):
			merchantRegion[i] = city
		case dataset.IsNA(city):
			merchantRegion[i] = state
		default:
			merchantRegion[i] = city + ", " + state
		}
	}

	derived := []struct {
		name   string
		values []string
	}{
		{"expires_last_day", expiresLastDay},
		{"transaction_hour", hour},
		{"transaction_dayofweek", dayofweek},
		{"account_age_days", accountAge},
		{"months_to_expiry", monthsToExpiry},
		{"transaction_age", transactionAge},
		{"years_to_retirement", yearsToRetirement},
		{"zip_prefix", zipPrefix},
		{"merchant_region", merchantRegion},
	}
	for _, d := range derived {
		if err := t.AddColumn(d.name, d.values); err != nil {
			return st, err
		}
	}

	t.Drop(droppedColumns...)
	st.Rows = t.Len()
	return st, nil
}

// timestampLayouts covers the formats the raw transaction files carry.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a transaction timestamp.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ParseMonthYear parses the MM/YYYY form used by expires and acct_open_date.
func ParseMonthYear(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse("01/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// dayOfWeek returns the weekday with Monday = 0, matching the convention of
// the downstream feature consumers.
func dayOfWeek(ts time.Time) int {
	return (int(ts.Weekday()) + 6) % 7
}

// lastDayOfMonth returns midnight on the last calendar day of ts's month.
func lastDayOfMonth(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, ts.Location()).AddDate(0, 1, -1)
}

// monthDiff returns the signed whole-month difference from a to b.
func monthDiff(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func parseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

package cleaner

// usStates is the set of two-letter US state, territory, and military-mail
// codes. A merchant_state outside this set (and not ONLINE) marks the
// transaction as international.
var usStates = map[string]bool{
	"AA": true, "AK": true, "AL": true, "AR": true, "AZ": true, "CA": true,
	"CO": true, "CT": true, "DC": true, "DE": true, "FL": true, "GA": true,
	"HI": true, "IA": true, "ID": true, "IL": true, "IN": true, "KS": true,
	"KY": true, "LA": true, "MA": true, "MD": true, "ME": true, "MI": true,
	"MN": true, "MO": true, "MS": true, "MT": true, "NC": true, "ND": true,
	"NE": true, "NH": true, "NJ": true, "NM": true, "NV": true, "NY": true,
	"OH": true, "OK": true, "OR": true, "PA": true, "RI": true, "SC": true,
	"SD": true, "TN": true, "TX": true, "UT": true, "VA": true, "VT": true,
	"WA": true, "WI": true, "WV": true, "WY": true,
}

// IsUSState reports whether code is a recognized US state or territory code.
func IsUSState(code string) bool {
	return usStates[code]
}

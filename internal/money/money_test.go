package money

import (
	"testing"

	"github.com/dvloznov/fraudprep/internal/dataset"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  float64
		valid bool
	}{
		{"plain", "59064", 59064, true},
		{"dollar sign", "$128.61", 128.61, true},
		{"thousands separator", "$24,295", 24295, true},
		{"parenthesized return", "($77.00)", 77, true},
		{"negative sign", "-45.50", 45.5, true},
		{"already numeric", "12.3", 12.3, true},
		{"spaces", " $1,000.00 ", 1000, true},
		{"empty", "", 0, false},
		{"garbage", "abc", 0, false},
		{"lone symbols", "$,", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			if ok != tt.valid {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.in, ok, tt.valid)
			}
			if ok && got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if ok && got < 0 {
				t.Errorf("ParseAmount(%q) = %v, amounts must be non-negative", tt.in, got)
			}
		})
	}
}

func TestCleanColumn(t *testing.T) {
	tab := dataset.New("amount", "other")
	tab.AppendRow([]string{"$1,234.56", "x"})
	tab.AppendRow([]string{"(9.99)", "y"})
	tab.AppendRow([]string{"not money", "z"})
	tab.AppendRow([]string{"", "w"})

	bad := CleanColumn(tab, "amount")
	if bad != 1 {
		t.Errorf("unparseable count = %d, want 1", bad)
	}
	if got := tab.Value(0, "amount"); got != "1234.56" {
		t.Errorf("row 0 = %q", got)
	}
	if got := tab.Value(1, "amount"); got != "9.99" {
		t.Errorf("row 1 = %q", got)
	}
	if got := tab.Value(2, "amount"); got != "" {
		t.Errorf("unparseable cell should degrade to NA, got %q", got)
	}
	if got := tab.Value(3, "amount"); got != "" {
		t.Errorf("NA cell should stay NA, got %q", got)
	}

	if n := CleanColumn(tab, "absent"); n != 0 {
		t.Errorf("absent column should be a no-op, got %d", n)
	}
}

package balance

import (
	"fmt"
	"math/rand"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/dvloznov/fraudprep/internal/dataset"
	"github.com/dvloznov/fraudprep/internal/logger"
)

// augInput builds a cleaned transaction table with one (client, card) group
// of groupSize rows whose fraudAt indices are fraud, plus extra non-fraud
// rows spread over other cards.
func augInput(groupSize int, fraudAt []int, extraNonFraud int) *dataset.Table {
	t := dataset.New(outputColumns...)
	isFraud := make(map[int]bool)
	for _, i := range fraudAt {
		isFraud[i] = true
	}
	n := 0
	add := func(clientID, cardID, amount, label string) {
		n++
		t.AppendRow([]string{
			strconv.Itoa(n),
			fmt.Sprintf("2020-01-15 %02d:%02d:00", n/60%24, n%60),
			clientID, cardID, amount, "Swipe Transaction", "m1",
			"La Verne", "CA", "91750", "5411", "No Error", label,
		})
	}
	for i := 0; i < groupSize; i++ {
		label := "0"
		if isFraud[i] {
			label = "1"
		}
		add("c1", "k1", "100.00", label)
	}
	for i := 0; i < extraNonFraud; i++ {
		add(fmt.Sprintf("c%d", i+2), fmt.Sprintf("k%d", i+2), fmt.Sprintf("%d.50", 10+i%90), "0")
	}
	return t
}

func TestAugmentRatiosAndIDs(t *testing.T) {
	tab := augInput(5, []int{2}, 60)
	cfg := DefaultAugmentConfig()

	out, st, err := Augment(tab, cfg, logger.NewWithWriter(testWriter{t}))
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}

	if st.OriginalFraud != 1 {
		t.Fatalf("OriginalFraud = %d, want 1", st.OriginalFraud)
	}
	// one valid fraud-bearing window yields one synthetic; dedup keeps it;
	// the 4x floor then resamples up to 4
	if st.AugmentedFraud != cfg.FraudFloorMultiple*st.OriginalFraud {
		t.Errorf("AugmentedFraud = %d, want %d", st.AugmentedFraud, cfg.FraudFloorMultiple)
	}
	// pool (64 non-fraud) covers the 9x target exactly
	wantNonFraud := cfg.NonFraudMultiple * st.AugmentedFraud
	if st.NonFraud != wantNonFraud {
		t.Errorf("NonFraud = %d, want %d", st.NonFraud, wantNonFraud)
	}
	if st.Degraded {
		t.Error("run should not be degraded")
	}
	if out.Len() != st.AugmentedFraud+st.NonFraud {
		t.Errorf("rows = %d, want %d", out.Len(), st.AugmentedFraud+st.NonFraud)
	}

	if !reflect.DeepEqual(out.Columns, outputColumns) {
		t.Errorf("columns = %v", out.Columns)
	}

	// ids are dense and gap-free after reassignment
	seen := make(map[int]bool)
	for i := 0; i < out.Len(); i++ {
		id, err := strconv.Atoi(out.Value(i, "id"))
		if err != nil || id < 1 || id > out.Len() || seen[id] {
			t.Fatalf("bad id %q at row %d", out.Value(i, "id"), i)
		}
		seen[id] = true
	}
}

func TestAugmentPerturbationBounds(t *testing.T) {
	tab := augInput(5, []int{2}, 60)
	out, _, err := Augment(tab, DefaultAugmentConfig(), logger.NewWithWriter(testWriter{t}))
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}

	base := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < out.Len(); i++ {
		label, _ := fraudLabel(out.Value(i, "fraud"))
		if label != 1 {
			continue
		}
		amount, err := strconv.ParseFloat(out.Value(i, "amount"), 64)
		if err != nil {
			t.Fatalf("row %d amount %q", i, out.Value(i, "amount"))
		}
		if amount < 90 || amount > 110 {
			t.Errorf("fraud amount %v outside [90, 110]", amount)
		}
		ts, ok := parseTestTime(out.Value(i, "date"))
		if !ok {
			t.Fatalf("row %d date %q", i, out.Value(i, "date"))
		}
		// originals sit in the first minutes of the hour; +-30min from any
		// original must stay within the day
		if ts.Before(base.Add(-time.Hour)) || ts.After(base.Add(24*time.Hour)) {
			t.Errorf("fraud timestamp %v drifted out of range", ts)
		}
	}
}

func TestAugmentDeterministic(t *testing.T) {
	run := func() *dataset.Table {
		out, _, err := Augment(augInput(5, []int{2}, 60), DefaultAugmentConfig(), logger.NewWithWriter(testWriter{t}))
		if err != nil {
			t.Fatalf("Augment failed: %v", err)
		}
		return out
	}
	if !reflect.DeepEqual(run().Rows, run().Rows) {
		t.Error("same seed produced different augmented tables")
	}
}

func TestAugmentDegradedPool(t *testing.T) {
	// only 9 non-fraud rows total: far below 9x the augmented fraud count
	tab := augInput(5, []int{2}, 5)
	out, st, err := Augment(tab, DefaultAugmentConfig(), logger.NewWithWriter(testWriter{t}))
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}
	if !st.Degraded {
		t.Error("expected degraded outcome")
	}
	if st.NonFraud != 9 {
		t.Errorf("NonFraud = %d, want the whole pool (9)", st.NonFraud)
	}
	if out.Len() != st.AugmentedFraud+9 {
		t.Errorf("rows = %d", out.Len())
	}
}

func TestAugmentNoFraud(t *testing.T) {
	tab := augInput(5, nil, 10)
	if _, _, err := Augment(tab, DefaultAugmentConfig(), logger.NewWithWriter(testWriter{t})); err == nil {
		t.Error("expected error with no fraud rows")
	}
}

// fixedIndex is a NeighborIndex stub that always matches row 0 and records
// its queries, exercising the pluggable-builder seam.
type fixedIndex struct {
	queries int
}

func (f *fixedIndex) Nearest(vec []float64) (int, float64) {
	f.queries++
	return 0, 0
}

func TestAugmentCustomIndexBuilder(t *testing.T) {
	idx := &fixedIndex{}
	cfg := DefaultAugmentConfig()
	cfg.BuildIndex = func(vectors [][]float64) (NeighborIndex, error) {
		return idx, nil
	}

	_, st, err := Augment(augInput(5, []int{2}, 60), cfg, logger.NewWithWriter(testWriter{t}))
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}
	if idx.queries != st.AugmentedFraud {
		t.Errorf("index queried %d times, want %d", idx.queries, st.AugmentedFraud)
	}
	// every query matched row 0, so exactly one neighbor is selected
	if st.NeighborMatched != 1 {
		t.Errorf("NeighborMatched = %d, want 1", st.NeighborMatched)
	}
}

func TestPerturbAmount(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		v := perturbAmount(rng, 100, 0.1)
		if v < 90 || v > 110 {
			t.Fatalf("perturbAmount escaped bounds: %v", v)
		}
		if v != float64(int64(v*100+0.5))/100 {
			t.Fatalf("perturbAmount not rounded to cents: %v", v)
		}
	}
	if got := perturbAmount(rng, 0, 0.1); got != 0 {
		t.Errorf("zero amount perturbed to %v", got)
	}
}

func TestPerturbTime(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2020, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 1000; i++ {
		ts := perturbTime(rng, base, -30, 30)
		delta := ts.Sub(base)
		if delta < -30*time.Minute || delta > 30*time.Minute {
			t.Fatalf("perturbTime escaped bounds: %v", delta)
		}
		if delta%time.Minute != 0 {
			t.Fatalf("perturbTime shift not whole minutes: %v", delta)
		}
	}
}

func TestPadDigits(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"123", 5, "00123"},
		{"90210", 5, "90210"},
		{"MEX00", 5, "MEX00"},
		{"742", 4, "0742"},
		{"", 5, ""},
		{" 12 ", 5, "00012"},
	}
	for _, tt := range tests {
		if got := padDigits(tt.in, tt.width); got != tt.want {
			t.Errorf("padDigits(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

// testWriter routes augmenter logs through the test log.
type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func parseTestTime(s string) (time.Time, bool) {
	ts, err := time.Parse("2006-01-02 15:04:05", s)
	return ts, err == nil
}

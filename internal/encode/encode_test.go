package encode

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dvloznov/fraudprep/internal/dataset"
)

func TestFitLexicographicOrder(t *testing.T) {
	enc := Fit([]string{"swipe", "chip", "online", "chip", "swipe"})

	want := []string{"chip", "online", "swipe"}
	if !reflect.DeepEqual(enc.Classes(), want) {
		t.Fatalf("classes = %v, want %v", enc.Classes(), want)
	}
	for i, c := range want {
		code, err := enc.Transform(c)
		if err != nil {
			t.Fatalf("Transform(%q) failed: %v", c, err)
		}
		if code != i {
			t.Errorf("Transform(%q) = %d, want %d", c, code, i)
		}
	}
}

func TestTransformUnknown(t *testing.T) {
	enc := Fit([]string{"a", "b"})
	_, err := enc.Transform("c")
	var unknown *UnknownValueError
	if !errors.As(err, &unknown) {
		t.Fatalf("want UnknownValueError, got %v", err)
	}
}

func TestFitColumn(t *testing.T) {
	tab := dataset.New("zip", "mcc")
	tab.AppendRow([]string{"00123", "5411"})
	tab.AppendRow([]string{"90210", "5411"})

	enc, err := FitColumn(tab, "zip")
	if err != nil {
		t.Fatalf("FitColumn failed: %v", err)
	}
	if enc.Len() != 2 {
		t.Errorf("Len = %d, want 2", enc.Len())
	}
	if _, err := FitColumn(tab, "missing"); err == nil {
		t.Error("expected error for missing column")
	}
}

func TestSetSaveLoadRoundTrip(t *testing.T) {
	tab := dataset.New("zip", "mcc")
	tab.AppendRow([]string{"00123", "5411"})
	tab.AppendRow([]string{"90210", "5812"})
	tab.AppendRow([]string{"00123", "5411"})

	set, err := FitSet(tab, "zip", "mcc")
	if err != nil {
		t.Fatalf("FitSet failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "encoders.json")
	if err := set.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := LoadSet(path)
	if err != nil {
		t.Fatalf("LoadSet failed: %v", err)
	}

	for col, enc := range set {
		got, ok := loaded[col]
		if !ok {
			t.Fatalf("column %q lost in round trip", col)
		}
		if !reflect.DeepEqual(got.Classes(), enc.Classes()) {
			t.Errorf("column %q classes changed: %v != %v", col, got.Classes(), enc.Classes())
		}
		// codes must be identical across the round trip
		for _, c := range enc.Classes() {
			a, _ := enc.Transform(c)
			b, err := got.Transform(c)
			if err != nil || a != b {
				t.Errorf("column %q code for %q changed: %d != %d (%v)", col, c, a, b, err)
			}
		}
	}
}

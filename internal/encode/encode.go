// Package encode maps categorical string columns to dense integer codes.
// An encoder is fit once over a column's unique values in lexicographic
// order and can be serialized, so the same mapping serves every stage that
// touches the column instead of being refit per run.
package encode

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/dvloznov/fraudprep/internal/dataset"
)

// UnknownValueError reports a value the encoder was not fit on.
type UnknownValueError struct {
	Value string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("encode: value %q not seen during fit", e.Value)
}

// LabelEncoder assigns each distinct string a dense code, ordered
// lexicographically over the fitted values.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// Fit builds an encoder over the unique values in the input.
func Fit(values []string) *LabelEncoder {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		seen[v] = true
	}
	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return fromClasses(classes)
}

// FitColumn builds an encoder over a table column.
func FitColumn(t *dataset.Table, col string) (*LabelEncoder, error) {
	j, ok := t.Col(col)
	if !ok {
		return nil, &dataset.MissingColumnError{Column: col}
	}
	values := make([]string, t.Len())
	for i := range values {
		values[i] = t.Rows[i][j]
	}
	return Fit(values), nil
}

func fromClasses(classes []string) *LabelEncoder {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return &LabelEncoder{classes: classes, index: index}
}

// Transform returns the code for a value.
func (e *LabelEncoder) Transform(v string) (int, error) {
	code, ok := e.index[v]
	if !ok {
		return 0, &UnknownValueError{Value: v}
	}
	return code, nil
}

// Classes returns the fitted values in code order.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Len returns the number of distinct classes.
func (e *LabelEncoder) Len() int { return len(e.classes) }

// MarshalJSON serializes the encoder as its ordered class list.
func (e *LabelEncoder) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.classes)
}

// UnmarshalJSON restores an encoder from its ordered class list.
func (e *LabelEncoder) UnmarshalJSON(data []byte) error {
	var classes []string
	if err := json.Unmarshal(data, &classes); err != nil {
		return err
	}
	*e = *fromClasses(classes)
	return nil
}

// Set is a collection of named column encoders.
type Set map[string]*LabelEncoder

// FitSet fits one encoder per listed column.
func FitSet(t *dataset.Table, cols ...string) (Set, error) {
	s := make(Set, len(cols))
	for _, col := range cols {
		enc, err := FitColumn(t, col)
		if err != nil {
			return nil, err
		}
		s[col] = enc
	}
	return s, nil
}

// Save writes the set to a JSON file.
func (s Set) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: marshal set: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("encode: write %s: %w", path, err)
	}
	return nil
}

// LoadSet reads a set from a JSON file.
func LoadSet(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("encode: read %s: %w", path, err)
	}
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("encode: parse %s: %w", path, err)
	}
	return s, nil
}

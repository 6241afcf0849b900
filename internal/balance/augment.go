package balance

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/fraudprep/internal/dataset"
	"github.com/dvloznov/fraudprep/internal/encode"
	"github.com/dvloznov/fraudprep/internal/features"
)

// outputColumns is the fixed column set of the augmented training table.
var outputColumns = []string{
	"id", "date", "client_id", "card_id", "amount", "use_chip", "merchant_id",
	"merchant_city", "merchant_state", "zip", "mcc", "errors", "fraud",
}

const timestampLayout = "2006-01-02 15:04:05"

// AugmentConfig sets the window, noise and ratio parameters of the
// sliding-window strategy.
type AugmentConfig struct {
	WindowSize int
	Stride     int

	// AmountNoiseRate is the half-width of the uniform relative amount
	// perturbation; 0.1 means every synthetic amount lands in [0.9a, 1.1a].
	AmountNoiseRate float64
	// DateNoiseMin/Max bound the uniform timestamp shift in whole minutes,
	// inclusive on both ends.
	DateNoiseMinMinutes int
	DateNoiseMaxMinutes int

	// FraudFloorMultiple is the minimum size of the augmented fraud set as a
	// multiple of the original fraud count; the union is resampled with
	// replacement up to it.
	FraudFloorMultiple int
	// NonFraudMultiple is the target non-fraud count as a multiple of the
	// augmented fraud count.
	NonFraudMultiple int

	Seed int64

	// BuildIndex constructs the neighbor index used for undersampling.
	// Defaults to the kd-tree index.
	BuildIndex IndexBuilder
}

// DefaultAugmentConfig returns the parameters of the production pipeline.
func DefaultAugmentConfig() AugmentConfig {
	return AugmentConfig{
		WindowSize:          5,
		Stride:              1,
		AmountNoiseRate:     0.1,
		DateNoiseMinMinutes: -30,
		DateNoiseMaxMinutes: 30,
		FraudFloorMultiple:  4,
		NonFraudMultiple:    9,
		Seed:                42,
		BuildIndex:          NewKDTreeIndex,
	}
}

// AugmentStats summarizes an augmentation pass.
type AugmentStats struct {
	OriginalFraud   int
	Synthesized     int
	AugmentedFraud  int
	NeighborMatched int
	RandomTopUp     int
	NonFraud        int
	Rows            int
	// Degraded is set when the non-fraud pool could not cover the target
	// multiple and the output carries fewer negatives than requested.
	Degraded bool
}

// FitEncoders fits the zip and mcc label encoders on the full table, after
// the same fixed-width padding Augment applies. The resulting set is what
// downstream stages load from disk, so codes stay consistent with the
// vectors used for neighbor selection here.
func FitEncoders(t *dataset.Table) (encode.Set, error) {
	if err := t.Require("zip", "mcc"); err != nil {
		return nil, err
	}
	t = t.Clone()
	for i := 0; i < t.Len(); i++ {
		t.SetValue(i, "zip", padDigits(t.Value(i, "zip"), 5))
		t.SetValue(i, "mcc", padDigits(t.Value(i, "mcc"), 4))
	}
	return encode.FitSet(t, "zip", "mcc")
}

// Augment runs the sliding-window fraud augmentation and neighbor-guided
// undersampling over the full cleaned transaction table, returning the
// shuffled training table with dense, gap-free ids.
func Augment(t *dataset.Table, cfg AugmentConfig, log zerolog.Logger) (*dataset.Table, AugmentStats, error) {
	var st AugmentStats
	if err := t.Require(outputColumns[1:]...); err != nil {
		return nil, st, err
	}
	if cfg.BuildIndex == nil {
		cfg.BuildIndex = NewKDTreeIndex
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	t = t.Clone()
	t.Drop("mcc_type")
	for i := 0; i < t.Len(); i++ {
		t.SetValue(i, "zip", padDigits(t.Value(i, "zip"), 5))
		t.SetValue(i, "mcc", padDigits(t.Value(i, "mcc"), 4))
	}

	validity, err := BuildValiditySets(t)
	if err != nil {
		return nil, st, err
	}

	var fraudRows, nonFraudRows []int
	for i := 0; i < t.Len(); i++ {
		if label, ok := fraudLabel(t.Value(i, "fraud")); ok && label == 1 {
			fraudRows = append(fraudRows, i)
		} else {
			nonFraudRows = append(nonFraudRows, i)
		}
	}
	st.OriginalFraud = len(fraudRows)
	if st.OriginalFraud == 0 {
		return nil, st, fmt.Errorf("balance: no fraud rows to augment")
	}
	log.Info().Int("fraud", st.OriginalFraud).Int("non_fraud", len(nonFraudRows)).Msg("class split")

	// Slide windows over each (client, card) sequence and synthesize a
	// perturbed copy of every fraud row inside a valid fraud-bearing window.
	var synthetic [][]string
	for _, g := range groupByClientCard(t) {
		for start := 0; start+cfg.WindowSize <= len(g.rows); start += cfg.Stride {
			window := g.rows[start : start+cfg.WindowSize]
			if !windowHasFraud(t, window) || !validity.ValidWindow(t, window) {
				continue
			}
			for _, i := range window {
				if label, ok := fraudLabel(t.Value(i, "fraud")); !ok || label != 1 {
					continue
				}
				row, err := synthesize(t, i, cfg, rng)
				if err != nil {
					return nil, st, fmt.Errorf("balance: row %d: %w", i, err)
				}
				synthetic = append(synthetic, row)
			}
		}
	}
	st.Synthesized = len(synthetic)
	log.Info().Int("synthesized", st.Synthesized).Msg("window augmentation done")

	// Union originals with synthetics, dropping exact duplicates.
	augmented := make([][]string, 0, len(fraudRows)+len(synthetic))
	seen := make(map[string]struct{})
	appendUnique := func(row []string) {
		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		augmented = append(augmented, row)
	}
	for _, i := range fraudRows {
		appendUnique(append([]string(nil), t.Rows[i]...))
	}
	for _, row := range synthetic {
		appendUnique(row)
	}

	// Resample with replacement up to the floor if augmentation fell short.
	floor := cfg.FraudFloorMultiple * st.OriginalFraud
	for len(augmented) < floor {
		augmented = append(augmented, append([]string(nil), augmented[rng.Intn(len(augmented))]...))
	}
	st.AugmentedFraud = len(augmented)

	// Encoders are fit on the full table so every zip and mcc the augmented
	// rows carry is covered.
	encoders, err := encode.FitSet(t, "zip", "mcc")
	if err != nil {
		return nil, st, err
	}

	selected, err := selectNegatives(t, augmented, nonFraudRows, encoders, cfg, rng, &st, log)
	if err != nil {
		return nil, st, err
	}

	return assemble(t, augmented, selected, rng, &st)
}

// selectNegatives picks the non-fraud rows: nearest neighbors of the
// augmented fraud rows first, topped up with uniform random draws from the
// remaining pool.
func selectNegatives(
	t *dataset.Table,
	augmented [][]string,
	nonFraudRows []int,
	encoders encode.Set,
	cfg AugmentConfig,
	rng *rand.Rand,
	st *AugmentStats,
	log zerolog.Logger,
) ([]int, error) {
	if len(nonFraudRows) == 0 {
		return nil, fmt.Errorf("balance: no non-fraud rows to undersample")
	}

	vectors := make([][]float64, len(nonFraudRows))
	for k, i := range nonFraudRows {
		vec, err := featureVector(t.Value(i, "amount"), t.Value(i, "zip"), t.Value(i, "mcc"), encoders)
		if err != nil {
			return nil, fmt.Errorf("balance: non-fraud row %d: %w", i, err)
		}
		vectors[k] = vec
	}
	index, err := cfg.BuildIndex(vectors)
	if err != nil {
		return nil, err
	}

	amountCol, _ := t.Col("amount")
	zipCol, _ := t.Col("zip")
	mccCol, _ := t.Col("mcc")

	matched := make(map[int]struct{})
	for _, row := range augmented {
		vec, err := featureVector(row[amountCol], row[zipCol], row[mccCol], encoders)
		if err != nil {
			return nil, fmt.Errorf("balance: augmented row: %w", err)
		}
		k, _ := index.Nearest(vec)
		matched[k] = struct{}{}
	}

	selected := make([]int, 0, len(matched))
	inSelection := make(map[int]struct{}, len(matched))
	for k := range nonFraudRows {
		if _, ok := matched[k]; ok {
			selected = append(selected, nonFraudRows[k])
			inSelection[k] = struct{}{}
		}
	}
	st.NeighborMatched = len(selected)

	target := cfg.NonFraudMultiple * len(augmented)
	if len(selected) < target {
		rest := make([]int, 0, len(nonFraudRows)-len(selected))
		for k, i := range nonFraudRows {
			if _, ok := inSelection[k]; !ok {
				rest = append(rest, i)
			}
		}
		needed := target - len(selected)
		if needed > len(rest) {
			st.Degraded = true
			log.Warn().
				Int("target", target).
				Int("available", len(selected)+len(rest)).
				Msg("non-fraud pool exhausted, proceeding with a smaller set")
			needed = len(rest)
		}
		rng.Shuffle(len(rest), func(a, b int) { rest[a], rest[b] = rest[b], rest[a] })
		selected = append(selected, rest[:needed]...)
		st.RandomTopUp = needed
	}
	st.NonFraud = len(selected)
	return selected, nil
}

// assemble reassigns dense ids, restricts to the output column set and
// shuffles.
func assemble(t *dataset.Table, augmented [][]string, selected []int, rng *rand.Rand, st *AugmentStats) (*dataset.Table, AugmentStats, error) {
	full := dataset.New(t.Columns...)
	idCol, _ := t.Col("id")
	next := 1
	for _, row := range augmented {
		row[idCol] = strconv.Itoa(next)
		next++
		full.AppendRow(row)
	}
	for _, i := range selected {
		row := append([]string(nil), t.Rows[i]...)
		row[idCol] = strconv.Itoa(next)
		next++
		full.AppendRow(row)
	}

	out, err := full.Select(outputColumns...)
	if err != nil {
		return nil, *st, err
	}
	rng.Shuffle(out.Len(), func(a, b int) {
		out.Rows[a], out.Rows[b] = out.Rows[b], out.Rows[a]
	})
	st.Rows = out.Len()
	return out, *st, nil
}

// synthesize copies a fraud row with perturbed amount and timestamp.
func synthesize(t *dataset.Table, i int, cfg AugmentConfig, rng *rand.Rand) ([]string, error) {
	row := append([]string(nil), t.Rows[i]...)

	amountCol, _ := t.Col("amount")
	amount, err := strconv.ParseFloat(row[amountCol], 64)
	if err != nil {
		return nil, fmt.Errorf("unparseable amount %q", row[amountCol])
	}
	row[amountCol] = strconv.FormatFloat(perturbAmount(rng, amount, cfg.AmountNoiseRate), 'f', 2, 64)

	dateCol, _ := t.Col("date")
	ts, ok := features.ParseTimestamp(row[dateCol])
	if !ok {
		return nil, fmt.Errorf("unparseable date %q", row[dateCol])
	}
	row[dateCol] = perturbTime(rng, ts, cfg.DateNoiseMinMinutes, cfg.DateNoiseMaxMinutes).Format(timestampLayout)
	return row, nil
}

// perturbAmount applies a uniform relative perturbation in [-rate, +rate],
// floored at zero and rounded to cents.
func perturbAmount(rng *rand.Rand, amount, rate float64) float64 {
	noise := (rng.Float64()*2 - 1) * rate
	v := amount + amount*noise
	if v < 0 {
		v = 0
	}
	return float64(int64(v*100+0.5)) / 100
}

// perturbTime shifts a timestamp by a uniform integer number of minutes in
// [minMinutes, maxMinutes].
func perturbTime(rng *rand.Rand, ts time.Time, minMinutes, maxMinutes int) time.Time {
	delta := rng.Intn(maxMinutes-minMinutes+1) + minMinutes
	return ts.Add(time.Duration(delta) * time.Minute)
}

// featureVector builds the {amount, zip code, mcc code} vector the neighbor
// search runs on.
func featureVector(amount, zip, mcc string, encoders encode.Set) ([]float64, error) {
	a, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return nil, fmt.Errorf("unparseable amount %q", amount)
	}
	z, err := encoders["zip"].Transform(zip)
	if err != nil {
		return nil, err
	}
	m, err := encoders["mcc"].Transform(mcc)
	if err != nil {
		return nil, err
	}
	return []float64{a, float64(z), float64(m)}, nil
}

// padDigits zero-pads an all-digit value to the given width; anything else
// passes through trimmed.
func padDigits(s string, width int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	for len(s) < width {
		s = "0" + s
	}
	return s
}

package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/fraudprep/internal/dataset"
	"github.com/dvloznov/fraudprep/internal/encode"
)

// Ranking method names.
const (
	MethodImpurity     = "impurity"
	MethodContribution = "contribution"
)

// Config controls the feature-importance report.
type Config struct {
	Label        string
	Method       string
	TestFraction float64
	Forest       ForestConfig
	Seed         int64
}

// DefaultConfig reports impurity importances for the fraud label with a
// held-out 20% evaluation split.
func DefaultConfig() Config {
	return Config{
		Label:        "fraud",
		Method:       MethodImpurity,
		TestFraction: 0.2,
		Forest:       DefaultForestConfig(),
		Seed:         42,
	}
}

// FeatureScore is one row of the ranking.
type FeatureScore struct {
	Feature string
	Score   float64
}

// Result holds the fitted ranking and the held-out evaluation.
type Result struct {
	Ranking  []FeatureScore
	Accuracy float64
	Trained  int
	Held     int
}

// Run fits the forest and ranks features. Categorical columns use the
// persisted encoders when given; pass nil to fit them in-run.
func Run(t *dataset.Table, encoders encode.Set, cfg Config, log zerolog.Logger) (*Result, error) {
	switch cfg.Method {
	case MethodImpurity, MethodContribution:
	default:
		return nil, fmt.Errorf("report: unknown ranking method %q", cfg.Method)
	}

	m, err := BuildMatrix(t, cfg.Label, encoders)
	if err != nil {
		return nil, err
	}

	train, test, err := StratifiedSplit(m.Y, cfg.TestFraction, cfg.Seed)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("train_rows", len(train)).
		Int("test_rows", len(test)).
		Int("features", len(m.Features)).
		Msg("fitting forest")

	forest, err := TrainForest(m, train, cfg.Forest)
	if err != nil {
		return nil, err
	}

	var scores []float64
	switch cfg.Method {
	case MethodImpurity:
		scores = forest.Importances()
	case MethodContribution:
		scores = forest.MeanAbsContributions(m, test)
	}

	res := &Result{
		Ranking:  rank(m.Features, scores),
		Accuracy: accuracy(forest, m, test),
		Trained:  len(train),
		Held:     len(test),
	}
	log.Info().
		Float64("accuracy", res.Accuracy).
		Str("method", cfg.Method).
		Msg("forest evaluated")
	return res, nil
}

func rank(features []string, scores []float64) []FeatureScore {
	ranking := make([]FeatureScore, len(features))
	for i, f := range features {
		ranking[i] = FeatureScore{Feature: f, Score: scores[i]}
	}
	sort.SliceStable(ranking, func(a, b int) bool {
		return ranking[a].Score > ranking[b].Score
	})
	return ranking
}

func accuracy(f *Forest, m *Matrix, rows []int) float64 {
	if len(rows) == 0 {
		return 0
	}
	correct := 0
	for _, i := range rows {
		if f.Predict(m.X[i]) == m.Y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(rows))
}

// WriteCSV writes the ranking as feature,importance rows.
func (r *Result) WriteCSV(path string) error {
	out := dataset.New("feature", "importance")
	for _, fs := range r.Ranking {
		out.AppendRow([]string{fs.Feature, strconv.FormatFloat(fs.Score, 'f', 6, 64)})
	}
	return out.WriteFile(path, dataset.WriteOptions{})
}

// Print echoes the ranking in rank order.
func (r *Result) Print(w io.Writer) {
	fmt.Fprintf(w, "held-out accuracy: %.4f (%d train / %d test)\n", r.Accuracy, r.Trained, r.Held)
	for i, fs := range r.Ranking {
		fmt.Fprintf(w, "%2d. %-24s %.6f\n", i+1, fs.Feature, fs.Score)
	}
}

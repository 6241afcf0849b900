package report

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// ForestConfig controls random forest training.
type ForestConfig struct {
	Trees          int
	MaxDepth       int
	MinSamplesLeaf int
	Seed           int64
}

// DefaultForestConfig mirrors the usual classifier defaults.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:          100,
		MaxDepth:       12,
		MinSamplesLeaf: 1,
		Seed:           42,
	}
}

// Forest is a bagged ensemble of CART trees with sqrt-of-features
// subsampling at every split.
type Forest struct {
	trees      []*tree
	features   []string
	importance []float64
}

var ErrNoTrainingData = errors.New("report: no training data")

// TrainForest fits cfg.Trees trees, each on a bootstrap sample of the
// given rows.
func TrainForest(m *Matrix, rows []int, cfg ForestConfig) (*Forest, error) {
	if len(rows) == 0 {
		return nil, ErrNoTrainingData
	}
	if cfg.Trees <= 0 {
		return nil, errors.New("report: tree count must be positive")
	}

	nFeatures := len(m.Features)
	maxFeatures := int(math.Ceil(math.Sqrt(float64(nFeatures))))
	tc := treeConfig{
		maxDepth:       cfg.MaxDepth,
		minSamplesLeaf: cfg.MinSamplesLeaf,
		maxFeatures:    maxFeatures,
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	importance := make([]float64, nFeatures)

	f := &Forest{
		trees:      make([]*tree, 0, cfg.Trees),
		features:   m.Features,
		importance: importance,
	}
	boot := make([]int, len(rows))
	for i := 0; i < cfg.Trees; i++ {
		for j := range boot {
			boot[j] = rows[rng.Intn(len(rows))]
		}
		f.trees = append(f.trees, growTree(m.X, m.Y, boot, tc, rng, importance))
	}

	if sum := floats.Sum(importance); sum > 0 {
		floats.Scale(1/sum, importance)
	}
	return f, nil
}

// PredictProb is the mean fraud probability across trees.
func (f *Forest) PredictProb(x []float64) float64 {
	total := 0.0
	for _, t := range f.trees {
		total += t.predict(x)
	}
	return total / float64(len(f.trees))
}

// Predict thresholds PredictProb at 0.5.
func (f *Forest) Predict(x []float64) int {
	if f.PredictProb(x) >= 0.5 {
		return 1
	}
	return 0
}

// Importances returns mean-decrease-in-impurity scores, normalized to
// sum to one, keyed per feature in m.Features order.
func (f *Forest) Importances() []float64 {
	out := make([]float64, len(f.importance))
	copy(out, f.importance)
	return out
}

// Features returns the column names the forest was trained on.
func (f *Forest) Features() []string {
	return f.features
}

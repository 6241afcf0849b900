package report

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Contributions decomposes a single prediction into a bias term plus one
// additive contribution per feature, following the tree-path attribution
// scheme: every split shifts the running probability, and the shift is
// credited to the split feature. bias + sum(contrib) equals PredictProb.
func (f *Forest) Contributions(x []float64) (bias float64, contrib []float64) {
	contrib = make([]float64, len(f.features))
	treeContrib := make([]float64, len(f.features))
	for _, t := range f.trees {
		for i := range treeContrib {
			treeContrib[i] = 0
		}
		t.contributions(x, treeContrib)
		floats.Add(contrib, treeContrib)
		bias += t.root.prob
	}
	n := float64(len(f.trees))
	floats.Scale(1/n, contrib)
	return bias / n, contrib
}

// MeanAbsContributions averages the absolute per-feature contributions
// over the given rows. This is the model-agnostic importance view the
// report can rank by instead of impurity decrease.
func (f *Forest) MeanAbsContributions(m *Matrix, rows []int) []float64 {
	total := make([]float64, len(f.features))
	if len(rows) == 0 {
		return total
	}
	for _, i := range rows {
		_, contrib := f.Contributions(m.X[i])
		for j, c := range contrib {
			total[j] += math.Abs(c)
		}
	}
	floats.Scale(1/float64(len(rows)), total)
	return total
}

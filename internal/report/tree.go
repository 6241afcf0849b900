package report

import (
	"math/rand"
	"sort"
)

// node is one CART node. Internal nodes split on feature < threshold;
// every node carries the fraud probability of its samples so per-path
// contributions can be read off the tree.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	prob      float64
	samples   int
}

func (n *node) leaf() bool { return n.left == nil }

type treeConfig struct {
	maxDepth       int
	minSamplesLeaf int
	maxFeatures    int
}

type tree struct {
	root *node
}

// growTree fits a CART tree on the given rows. Weighted impurity decreases
// are accumulated into importance (one slot per feature), normalized by the
// total sample count.
func growTree(X [][]float64, y []int, rows []int, cfg treeConfig, rng *rand.Rand, importance []float64) *tree {
	g := &grower{X: X, y: y, cfg: cfg, rng: rng, importance: importance, total: len(rows)}
	return &tree{root: g.grow(rows, 0)}
}

type grower struct {
	X          [][]float64
	y          []int
	cfg        treeConfig
	rng        *rand.Rand
	importance []float64
	total      int
}

func (g *grower) grow(rows []int, depth int) *node {
	pos := 0
	for _, i := range rows {
		pos += g.y[i]
	}
	n := &node{
		prob:    float64(pos) / float64(len(rows)),
		samples: len(rows),
	}

	if depth >= g.cfg.maxDepth || pos == 0 || pos == len(rows) || len(rows) < 2*g.cfg.minSamplesLeaf {
		return n
	}

	feature, threshold, gain, ok := g.bestSplit(rows)
	if !ok {
		return n
	}

	var left, right []int
	for _, i := range rows {
		if g.X[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < g.cfg.minSamplesLeaf || len(right) < g.cfg.minSamplesLeaf {
		return n
	}

	g.importance[feature] += float64(len(rows)) / float64(g.total) * gain
	n.feature = feature
	n.threshold = threshold
	n.left = g.grow(left, depth+1)
	n.right = g.grow(right, depth+1)
	return n
}

// bestSplit scans a random feature subset for the threshold with the
// largest Gini gain.
func (g *grower) bestSplit(rows []int) (feature int, threshold, gain float64, ok bool) {
	nFeatures := len(g.X[rows[0]])
	candidates := g.rng.Perm(nFeatures)[:g.cfg.maxFeatures]

	parent := gini(count(g.y, rows), len(rows))
	best := 0.0

	pairs := make([]splitPair, len(rows))

	for _, f := range candidates {
		for k, i := range rows {
			pairs[k] = splitPair{v: g.X[i][f], y: g.y[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		posLeft, nLeft := 0, 0
		posTotal := count(g.y, rows)
		for k := 0; k < len(pairs)-1; k++ {
			posLeft += pairs[k].y
			nLeft++
			if pairs[k].v == pairs[k+1].v {
				continue
			}
			nRight := len(pairs) - nLeft
			weighted := (float64(nLeft)*gini(posLeft, nLeft) +
				float64(nRight)*gini(posTotal-posLeft, nRight)) / float64(len(pairs))
			if gn := parent - weighted; gn > best {
				best = gn
				feature = f
				threshold = (pairs[k].v + pairs[k+1].v) / 2
				ok = true
			}
		}
	}
	return feature, threshold, best, ok
}

func count(y []int, rows []int) int {
	pos := 0
	for _, i := range rows {
		pos += y[i]
	}
	return pos
}

// gini is the binary Gini impurity of pos positives among n samples.
func gini(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}

type splitPair struct {
	v float64
	y int
}

// predict returns the fraud probability for one sample.
func (t *tree) predict(x []float64) float64 {
	n := t.root
	for !n.leaf() {
		if x[n.feature] < n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.prob
}

// contributions walks the sample's path, attributing each probability
// change to the split feature, and returns the leaf probability. The root
// probability is the bias term.
func (t *tree) contributions(x []float64, contrib []float64) float64 {
	n := t.root
	for !n.leaf() {
		next := n.right
		if x[n.feature] < n.threshold {
			next = n.left
		}
		contrib[n.feature] += next.prob - n.prob
		n = next
	}
	return n.prob
}

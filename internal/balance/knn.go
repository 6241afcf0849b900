package balance

import (
	"errors"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// NeighborIndex finds the reference row closest to a query vector. The
// undersampler only needs the identity of the match, so ties are broken by
// the underlying search's traversal order.
type NeighborIndex interface {
	Nearest(vec []float64) (row int, dist float64)
}

// IndexBuilder constructs a NeighborIndex over reference vectors. The
// augmenter takes one so the distance metric and backing structure can be
// swapped without touching the sampling control flow.
type IndexBuilder func(vectors [][]float64) (NeighborIndex, error)

// txPoint is one reference vector with its originating row, satisfying
// kdtree.Comparable over {amount, zip code, mcc code}.
type txPoint struct {
	vec [3]float64
	row int
}

func (p txPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(txPoint)
	return p.vec[d] - q.vec[d]
}

func (p txPoint) Dims() int { return len(p.vec) }

func (p txPoint) Dim(d kdtree.Dim) float64 { return p.vec[d] }

// Distance returns the squared Euclidean distance; monotone in the true
// distance, which is all the nearest query needs.
func (p txPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(txPoint)
	var sum float64
	for i := range p.vec {
		d := p.vec[i] - q.vec[i]
		sum += d * d
	}
	return sum
}

// txPoints satisfies kdtree.Interface.
type txPoints []txPoint

func (p txPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p txPoints) Len() int                              { return len(p) }
func (p txPoints) Pivot(d kdtree.Dim) int                { return txPlane{Dim: d, txPoints: p}.Pivot() }
func (p txPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// txPlane sorts txPoints along a single dimension for tree construction.
type txPlane struct {
	kdtree.Dim
	txPoints
}

func (p txPlane) Less(i, j int) bool {
	return p.txPoints[i].vec[p.Dim] < p.txPoints[j].vec[p.Dim]
}

func (p txPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p txPlane) Slice(start, end int) kdtree.SortSlicer {
	p.txPoints = p.txPoints[start:end]
	return p
}

func (p txPlane) Swap(i, j int) {
	p.txPoints[i], p.txPoints[j] = p.txPoints[j], p.txPoints[i]
}

// kdTreeIndex is the default NeighborIndex, a kd-tree over the reference
// vectors.
type kdTreeIndex struct {
	tree *kdtree.Tree
}

// NewKDTreeIndex builds a kd-tree NeighborIndex over 3-dimensional
// reference vectors.
func NewKDTreeIndex(vectors [][]float64) (NeighborIndex, error) {
	if len(vectors) == 0 {
		return nil, errors.New("balance: no reference vectors for neighbor index")
	}
	points := make(txPoints, len(vectors))
	for i, v := range vectors {
		if len(v) != 3 {
			return nil, errors.New("balance: neighbor index requires 3-dimensional vectors")
		}
		points[i] = txPoint{vec: [3]float64{v[0], v[1], v[2]}, row: i}
	}
	return &kdTreeIndex{tree: kdtree.New(points, false)}, nil
}

func (x *kdTreeIndex) Nearest(vec []float64) (int, float64) {
	q := txPoint{vec: [3]float64{vec[0], vec[1], vec[2]}, row: -1}
	got, dist := x.tree.Nearest(q)
	return got.(txPoint).row, dist
}

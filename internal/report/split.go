package report

import (
	"fmt"
	"math/rand"
)

// StratifiedSplit partitions row indices into train and test sets, keeping
// each class's proportion in both. Deterministic for a given seed.
func StratifiedSplit(y []int, testFraction float64, seed int64) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("report: test fraction %v outside (0, 1)", testFraction)
	}

	byClass := make(map[int][]int)
	var classes []int
	for i, label := range y {
		if _, ok := byClass[label]; !ok {
			classes = append(classes, label)
		}
		byClass[label] = append(byClass[label], i)
	}

	rng := rand.New(rand.NewSource(seed))
	for _, c := range classes {
		rows := byClass[c]
		if len(rows) < 2 {
			return nil, nil, fmt.Errorf("report: class %d has %d rows, cannot stratify", c, len(rows))
		}
		rng.Shuffle(len(rows), func(a, b int) { rows[a], rows[b] = rows[b], rows[a] })

		nTest := int(float64(len(rows))*testFraction + 0.5)
		if nTest == 0 {
			nTest = 1
		}
		if nTest == len(rows) {
			nTest = len(rows) - 1
		}
		test = append(test, rows[:nTest]...)
		train = append(train, rows[nTest:]...)
	}
	return train, test, nil
}

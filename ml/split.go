package ml

import (
	"errors"
	"math"
	"math/rand"
)

// Split holds the train/test partition of one dataset.
type Split struct {
	TrainX [][]float64
	TrainY []int
	TestX  [][]float64
	TestY  []int
}

// TrainTestSplit shuffles rows with a source seeded by seed and holds out the
// first ceil(n*testRatio) of them. The same inputs always give the same split.
func TrainTestSplit(features [][]float64, labels []int, testRatio float64, seed int64) (Split, error) {
	if len(features) != len(labels) {
		return Split{}, errors.New("features and labels size mismatch")
	}
	if testRatio <= 0 || testRatio >= 1 {
		return Split{}, errors.New("test ratio must be in (0,1)")
	}
	n := len(features)
	testSize := int(math.Ceil(float64(n) * testRatio))
	if testSize < 1 || n-testSize < 1 {
		return Split{}, errors.New("not enough samples to split")
	}

	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(n)

	var split Split
	for i, idx := range indices {
		if i < testSize {
			split.TestX = append(split.TestX, features[idx])
			split.TestY = append(split.TestY, labels[idx])
		} else {
			split.TrainX = append(split.TrainX, features[idx])
			split.TrainY = append(split.TrainY, labels[idx])
		}
	}
	return split, nil
}

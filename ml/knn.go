package ml

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// KNN is a k-nearest-neighbours classifier with euclidean distance and an
// unweighted majority vote.
type KNN struct {
	K      int
	points [][]float64
	labels []int
}

func NewKNN(k int) *KNN {
	return &KNN{K: k}
}

func (m *KNN) Fit(features [][]float64, labels []int) error {
	if err := validateTrainingSet(features, labels); err != nil {
		return err
	}
	if m.K <= 0 {
		return fmt.Errorf("k must be positive, got %d", m.K)
	}
	if len(features) < m.K {
		return fmt.Errorf("expected at least %d samples, got %d", m.K, len(features))
	}
	m.points = make([][]float64, len(features))
	for i, row := range features {
		m.points[i] = append([]float64(nil), row...)
	}
	m.labels = append([]int(nil), labels...)
	return nil
}

func (m *KNN) Predict(features []float64) (int, error) {
	if len(m.points) == 0 {
		return 0, ErrNotFitted
	}
	if err := checkWidth(features, len(m.points[0])); err != nil {
		return 0, err
	}

	type neighbour struct {
		dist  float64
		label int
	}
	neighbours := make([]neighbour, len(m.points))
	for i, point := range m.points {
		neighbours[i] = neighbour{dist: floats.Distance(features, point, 2), label: m.labels[i]}
	}
	// stable keeps training order among equidistant points
	sort.SliceStable(neighbours, func(a, b int) bool {
		return neighbours[a].dist < neighbours[b].dist
	})

	votes := make([]int, m.K)
	for i := 0; i < m.K; i++ {
		votes[i] = neighbours[i].label
	}
	return majorityLabel(votes), nil
}

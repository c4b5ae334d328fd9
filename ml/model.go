package ml

import (
	"errors"
	"fmt"
	"sort"
)

var ErrNotFitted = errors.New("model not trained")

// Classifier is a supervised model over dense float features and integer labels.
type Classifier interface {
	Fit(features [][]float64, labels []int) error
	Predict(features []float64) (int, error)
}

func validateTrainingSet(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	width := len(features[0])
	if width == 0 {
		return errors.New("features have no columns")
	}
	for i, row := range features {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), width)
		}
	}
	return nil
}

func checkWidth(features []float64, width int) error {
	if len(features) != width {
		return fmt.Errorf("expected %d features, got %d", width, len(features))
	}
	return nil
}

// uniqueLabels returns the distinct labels in ascending order.
func uniqueLabels(labels []int) []int {
	seen := make(map[int]bool)
	classes := make([]int, 0, 2)
	for _, label := range labels {
		if !seen[label] {
			seen[label] = true
			classes = append(classes, label)
		}
	}
	sort.Ints(classes)
	return classes
}

// majorityLabel picks the most frequent label; ties go to the smaller label.
func majorityLabel(labels []int) int {
	counts := make(map[int]int)
	for _, label := range labels {
		counts[label]++
	}
	best := 0
	bestCount := -1
	for _, label := range uniqueLabels(labels) {
		if counts[label] > bestCount {
			bestCount = counts[label]
			best = label
		}
	}
	return best
}

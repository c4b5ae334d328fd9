package ml

import (
	"errors"
	"testing"
)

// twoClusters is linearly separable: label 1 sits in the upper right corner.
func twoClusters() ([][]float64, []int) {
	features := [][]float64{
		{0.10, 0.20}, {0.20, 0.10}, {0.15, 0.25}, {0.30, 0.20}, {0.25, 0.05},
		{0.90, 0.80}, {0.80, 0.90}, {0.85, 0.75}, {0.70, 0.95}, {0.95, 0.85},
	}
	labels := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
	return features, labels
}

func TestClassifiersSeparateClusters(t *testing.T) {
	tests := []struct {
		name  string
		model Classifier
	}{
		{name: "logistic regression", model: NewLogisticRegression(1.0, 100)},
		{name: "knn", model: NewKNN(3)},
		{name: "naive bayes", model: NewGaussianNB()},
		{name: "decision tree", model: NewDecisionTree(0)},
	}

	features, labels := twoClusters()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.model.Fit(features, labels); err != nil {
				t.Fatalf("fit: %v", err)
			}
			eval, err := Evaluate(tt.model, features, labels)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if eval.Accuracy != 1 {
				t.Fatalf("expected perfect training accuracy, got %v", eval.Accuracy)
			}

			low, err := tt.model.Predict([]float64{0.12, 0.18})
			if err != nil {
				t.Fatalf("predict: %v", err)
			}
			high, _ := tt.model.Predict([]float64{0.88, 0.82})
			if low != 0 || high != 1 {
				t.Fatalf("expected 0/1, got %d/%d", low, high)
			}
		})
	}
}

func TestClassifiersRequireFit(t *testing.T) {
	models := map[string]Classifier{
		"logistic regression": NewLogisticRegression(1.0, 100),
		"knn":                 NewKNN(5),
		"naive bayes":         NewGaussianNB(),
	}
	for name, model := range models {
		if _, err := model.Predict([]float64{1, 2}); !errors.Is(err, ErrNotFitted) {
			t.Errorf("%s: expected ErrNotFitted, got %v", name, err)
		}
	}
}

func TestLogisticRegressionNeedsTwoClasses(t *testing.T) {
	model := NewLogisticRegression(1.0, 100)
	if err := model.Fit([][]float64{{1}, {2}, {3}}, []int{1, 1, 1}); err == nil {
		t.Fatal("expected error for a single class")
	}
}

func TestLogisticRegressionProbabilityIsMonotonic(t *testing.T) {
	features, labels := twoClusters()
	model := NewLogisticRegression(1.0, 100)
	if err := model.Fit(features, labels); err != nil {
		t.Fatalf("fit: %v", err)
	}
	low, _ := model.Probability([]float64{0, 0})
	mid, _ := model.Probability([]float64{0.5, 0.5})
	high, _ := model.Probability([]float64{1, 1})
	if !(low < mid && mid < high) {
		t.Fatalf("expected increasing probabilities, got %v %v %v", low, mid, high)
	}
}

func TestKNNVoteTieGoesToSmallerLabel(t *testing.T) {
	model := NewKNN(2)
	if err := model.Fit([][]float64{{0}, {2}}, []int{1, 0}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	label, err := model.Predict([]float64{1})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected tie to resolve to 0, got %d", label)
	}
}

func TestKNNNeedsEnoughSamples(t *testing.T) {
	if err := NewKNN(5).Fit([][]float64{{0}, {1}}, []int{0, 1}); err == nil {
		t.Fatal("expected error when samples < k")
	}
}

func TestGaussianNBHandlesConstantFeature(t *testing.T) {
	features := [][]float64{{1, 5}, {2, 5}, {8, 5}, {9, 5}}
	labels := []int{0, 0, 1, 1}
	model := NewGaussianNB()
	if err := model.Fit(features, labels); err != nil {
		t.Fatalf("fit: %v", err)
	}
	label, err := model.Predict([]float64{8.5, 5})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected 1, got %d", label)
	}
}

package ml

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDecisionTreeTrainPredict(t *testing.T) {
	features := [][]float64{
		{0.1, 0.2},
		{0.2, 0.1},
		{0.9, 0.8},
		{0.8, 0.9},
	}
	labels := []int{0, 0, 1, 1}

	model := NewDecisionTree(2)
	if err := model.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, err := model.Predict([]float64{0.15, 0.15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
	label, _ = model.Predict([]float64{0.85, 0.85})
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
}

func TestDecisionTreeUnlimitedDepthFitsTrainingSet(t *testing.T) {
	// alternating labels along one axis need several levels
	features := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}
	labels := []int{0, 1, 0, 1, 0, 1}

	model := NewDecisionTree(0)
	if err := model.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, row := range features {
		label, err := model.Predict(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if label != labels[i] {
			t.Fatalf("row %d: expected %d, got %d", i, labels[i], label)
		}
	}
	if model.Depth() < 3 {
		t.Fatalf("expected a deep tree, got depth %d", model.Depth())
	}

	shallow := NewDecisionTree(1)
	if err := shallow.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shallow.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", shallow.Depth())
	}
}

func TestDecisionTreeSaveLoad(t *testing.T) {
	features := [][]float64{{1, 5}, {2, 4}, {8, 1}, {9, 2}}
	labels := []int{1, 1, 0, 0}

	model := NewDecisionTree(0)
	if err := model.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := model.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadModel("decision_tree", path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i, row := range features {
		label, err := loaded.Predict(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if label != labels[i] {
			t.Fatalf("row %d: expected %d, got %d", i, labels[i], label)
		}
	}

	if _, err := LoadModel("random_forest", path); err == nil {
		t.Fatal("expected unsupported model type error")
	}
}

func TestDecisionTreeErrors(t *testing.T) {
	model := NewDecisionTree(0)
	if _, err := model.Predict([]float64{1}); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
	if err := model.Save(filepath.Join(t.TempDir(), "x.json")); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted on save, got %v", err)
	}
	if err := model.Fit([][]float64{{1}}, []int{0, 1}); err == nil {
		t.Fatal("expected size mismatch error")
	}
	if err := model.Fit([][]float64{{1}, {2}}, []int{0, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := model.Predict([]float64{1, 2}); err == nil {
		t.Fatal("expected width error")
	}
}

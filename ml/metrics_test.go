package ml

import "testing"

func TestScore(t *testing.T) {
	expected := []int{1, 0, 1, 1, 0}
	predicted := []int{1, 0, 0, 1, 1}

	eval, err := Score(expected, predicted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.Accuracy != 0.6 {
		t.Fatalf("expected accuracy 0.6, got %v", eval.Accuracy)
	}
	if eval.Precision != 2.0/3.0 {
		t.Fatalf("expected precision 2/3, got %v", eval.Precision)
	}
	if eval.Recall != 2.0/3.0 {
		t.Fatalf("expected recall 2/3, got %v", eval.Recall)
	}
	if eval.Samples != 5 {
		t.Fatalf("expected 5 samples, got %d", eval.Samples)
	}
}

func TestScoreErrors(t *testing.T) {
	if _, err := Score(nil, nil); err == nil {
		t.Fatal("expected error for empty labels")
	}
	if _, err := Score([]int{1}, []int{1, 0}); err == nil {
		t.Fatal("expected size mismatch error")
	}
}

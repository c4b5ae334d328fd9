package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"medicare/predictor"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "medicare.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func trainedModel(disease predictor.Disease, selected string, at time.Time) *predictor.Model {
	return &predictor.Model{
		Disease:  disease,
		Name:     selected,
		Accuracy: 90,
		Candidates: []predictor.CandidateResult{
			{Name: "Logistic Regression", Accuracy: 85, Precision: 0.8, Recall: 0.9},
			{Name: "KNN", Accuracy: 90, Precision: 0.85, Recall: 0.88},
			{Name: "Naive Bayes", Accuracy: 80},
			{Name: "Decision Tree", Accuracy: 75},
		},
		TrainSamples: 216,
		TestSamples:  54,
		TrainedAt:    at,
	}
}

func TestTrainingLog(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := store.SaveTrainingRun(ctx, trainedModel(predictor.Heart, "KNN", base)); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveTrainingRun(ctx, trainedModel(predictor.Diabetes, "KNN", base.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	all, err := store.LoadTrainingLog(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 8 {
		t.Fatalf("got %d rows, want 8", len(all))
	}
	if all[0].Disease != "diabetes" {
		t.Errorf("newest row first: got %s", all[0].Disease)
	}

	heart, err := store.LoadTrainingLog(ctx, "heart", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(heart) != 4 {
		t.Fatalf("got %d heart rows, want 4", len(heart))
	}
	selected := 0
	for _, row := range heart {
		if row.Selected {
			selected++
			if row.ModelName != "KNN" || row.Accuracy != 90 {
				t.Errorf("unexpected selected row %+v", row)
			}
		}
		if row.TrainSamples != 216 || row.TestSamples != 54 {
			t.Errorf("sample counts not stored: %+v", row)
		}
		if !row.TrainedAt.Equal(base) {
			t.Errorf("trained_at = %v, want %v", row.TrainedAt, base)
		}
	}
	if selected != 1 {
		t.Errorf("%d selected rows, want 1", selected)
	}

	limited, _ := store.LoadTrainingLog(ctx, "", 3)
	if len(limited) != 3 {
		t.Errorf("limit ignored: got %d rows", len(limited))
	}
}

func TestRecordPrediction(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	p := predictor.Prediction{Label: 1, Text: "Diabetic", ModelName: "KNN", Accuracy: 77}
	for i := 0; i < 3; i++ {
		if err := store.RecordPrediction(ctx, "diabetes", []float64{2, 150, 70, 80, 45, 31.2}, p); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.RecordPrediction(ctx, "heart", []float64{50, 1, 2, 130, 250, 150}, p); err != nil {
		t.Fatal(err)
	}

	n, err := store.CountPredictions(ctx, "diabetes")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("got %d diabetes predictions, want 3", n)
	}
	if n, _ := store.CountPredictions(ctx, ""); n != 4 {
		t.Errorf("got %d predictions, want 4", n)
	}

	logs, err := store.LoadPredictions(ctx, "heart", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d heart predictions, want 1", len(logs))
	}
	if logs[0].Prediction != "Diabetic" || len(logs[0].Features) != 6 || logs[0].Features[4] != 250 {
		t.Errorf("unexpected log %+v", logs[0])
	}
	if all, _ := store.LoadPredictions(ctx, "", 2); len(all) != 2 {
		t.Errorf("limit ignored: got %d", len(all))
	}
}

func TestNilStore(t *testing.T) {
	var store *Store
	if _, err := store.LoadTrainingLog(context.Background(), "", 10); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close on nil store: %v", err)
	}
}

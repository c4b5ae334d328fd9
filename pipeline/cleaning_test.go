package pipeline

import (
	"math"
	"strings"
	"testing"
)

const diabetesCSV = `Pregnancies,Glucose,Blood pressure,Insulin,Age,Body mass index,Outcome
1,0,70,0,30,25.0,0
2,100,0,80,40,,1
3,140,80,120,50,30.0,1
`

func mustFrame(t *testing.T, content string) *Frame {
	t.Helper()
	frame, err := ReadCSV(strings.NewReader(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return frame
}

func TestNewDataCleaner(t *testing.T) {
	cleaner := NewDataCleaner(NewZeroAsMissingRule("Glucose"))
	cleaner.AddRule(NewMeanImputeRule())

	names := cleaner.Rules()
	if len(names) != 2 || names[0] != "zero_as_missing" || names[1] != "mean_impute" {
		t.Fatalf("unexpected rules: %v", names)
	}
}

func TestZeroAsMissingThenImpute(t *testing.T) {
	frame := mustFrame(t, diabetesCSV)
	cleaner := NewDataCleaner(
		NewZeroAsMissingRule("Glucose", "Blood pressure", "Insulin"),
		NewMeanImputeRule(),
	)

	stats, err := cleaner.Clean(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	glucose, _ := frame.Float("Glucose")
	if glucose[0] != 120 {
		t.Fatalf("expected zero glucose replaced by mean 120, got %v", glucose[0])
	}
	pressure, _ := frame.Float("Blood pressure")
	if pressure[1] != 75 {
		t.Fatalf("expected zero pressure replaced by mean 75, got %v", pressure[1])
	}
	insulin, _ := frame.Float("Insulin")
	if insulin[0] != 100 {
		t.Fatalf("expected zero insulin replaced by mean 100, got %v", insulin[0])
	}
	bmi, _ := frame.Float("Body mass index")
	if bmi[1] != 27.5 {
		t.Fatalf("expected empty bmi filled with 27.5, got %v", bmi[1])
	}
	pregnancies, _ := frame.Float("Pregnancies")
	if pregnancies[0] != 1 {
		t.Fatalf("pregnancies must not be touched, got %v", pregnancies[0])
	}

	if stats.Replaced["Glucose"] != 1 || stats.Replaced["Insulin"] != 1 {
		t.Fatalf("unexpected replaced stats: %v", stats.Replaced)
	}
	if stats.Filled["Body mass index"] != 1 {
		t.Fatalf("unexpected filled stats: %v", stats.Filled)
	}

	if _, err := frame.Matrix([]string{"Pregnancies", "Glucose", "Blood pressure", "Insulin", "Age", "Body mass index"}); err != nil {
		t.Fatalf("expected no missing values after cleaning: %v", err)
	}
}

func TestZeroAsMissingSkipsAbsentColumns(t *testing.T) {
	frame := mustFrame(t, "Age,Outcome\n0,1\n20,0\n")
	rule := NewZeroAsMissingRule("Glucose", "Insulin")

	stats := CleaningStats{Replaced: map[string]int{}, Filled: map[string]int{}}
	if err := rule.Apply(frame, &stats); err != nil {
		t.Fatalf("absent columns must be skipped, got %v", err)
	}
	if len(stats.Skipped) != 2 {
		t.Fatalf("expected 2 skipped columns, got %v", stats.Skipped)
	}
	age, _ := frame.Float("Age")
	if age[0] != 0 {
		t.Fatalf("unlisted column changed: %v", age)
	}
}

func TestMeanImputeLeavesEmptyColumnMissing(t *testing.T) {
	frame := mustFrame(t, "A,B\n,1\n,3\n")
	if _, err := NewDataCleaner(NewMeanImputeRule()).Clean(frame); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := frame.Float("A")
	if !math.IsNaN(a[0]) {
		t.Fatalf("expected all-missing column to stay missing, got %v", a)
	}
	if _, err := frame.Matrix([]string{"A"}); err == nil {
		t.Fatal("expected matrix extraction to fail on missing values")
	}
}

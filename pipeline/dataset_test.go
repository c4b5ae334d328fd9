package pipeline

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCSVStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heart.csv")
	content := "\ufeffAge,Sex,Heart Disease\n52,1,Presence\n41,0,Absence\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	frame, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !frame.Has("Age") {
		t.Fatalf("expected BOM to be stripped from first header, got %q", frame.Columns())
	}
	if frame.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", frame.Len())
	}
	if !frame.IsNumeric("Age") || frame.IsNumeric("Heart Disease") {
		t.Fatal("unexpected column kinds")
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound, got %v", err)
	}
}

func TestReadCSVMissingMarkers(t *testing.T) {
	frame := mustFrame(t, "A,B\n1,x\nNA,y\n,z\n2.5,w\n")

	a, err := frame.Float("A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(a[1]) || !math.IsNaN(a[2]) || a[3] != 2.5 {
		t.Fatalf("unexpected values: %v", a)
	}
	if _, err := frame.Float("B"); err == nil {
		t.Fatal("expected error reading text column as float")
	}
	if _, err := frame.Float("C"); err == nil {
		t.Fatal("expected error for unknown column")
	}

	r, err := frame.ColumnRange("A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Min != 1 || r.Max != 2.5 {
		t.Fatalf("unexpected range: %+v", r)
	}
}

func TestReadCSVRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "duplicate header", content: "A,A\n1,2\n"},
		{name: "ragged row", content: "A,B\n1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.content)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestBinaryLabels(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []int
	}{
		{name: "numeric", content: "y\n1\n0\n1\n", want: []int{1, 0, 1}},
		{name: "presence words", content: "y\nPresence\nAbsence\n", want: []int{1, 0}},
		{name: "yes no", content: "y\nYes\nNo\n", want: []int{1, 0}},
		{name: "keyword fallback", content: "y\npresence\nAbsent\nYes please\n", want: []int{1, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, err := BinaryLabels(mustFrame(t, tt.content), "y")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(labels) != len(tt.want) {
				t.Fatalf("got %v want %v", labels, tt.want)
			}
			for i := range labels {
				if labels[i] != tt.want[i] {
					t.Fatalf("got %v want %v", labels, tt.want)
				}
			}
		})
	}
}

func TestTargetColumnFallback(t *testing.T) {
	frame := mustFrame(t, "Age,Target\n1,0\n")
	column, err := TargetColumn(frame, "Heart Disease", true)
	if err != nil || column != "Target" {
		t.Fatalf("expected fallback to last column, got %q %v", column, err)
	}
	if _, err := TargetColumn(frame, "Outcome", false); err == nil {
		t.Fatal("expected error without fallback")
	}
}

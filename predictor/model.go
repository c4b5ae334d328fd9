package predictor

import (
	"time"

	"medicare/ml"
	"medicare/pipeline"
)

// UntrainedName is reported in place of a model name when training failed.
const UntrainedName = "Not Trained"

// CandidateResult is the holdout score of one candidate algorithm. Accuracy
// is a percentage; precision and recall are fractions.
type CandidateResult struct {
	Name      string  `json:"name"`
	Scaled    bool    `json:"scaled"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// Model is the trained state for one disease. It is never mutated after
// Train returns, so it is safe to share between request goroutines.
type Model struct {
	Disease      Disease
	Name         string
	Accuracy     float64
	Candidates   []CandidateResult
	Ranges       map[string]pipeline.Range
	TrainSamples int
	TestSamples  int
	TrainedAt    time.Time

	classifier ml.Classifier
	scaler     *ml.MinMaxScaler
	scaled     bool
}

// Metadata is the public description of a model served by /info.
type Metadata struct {
	Accuracy      float64                   `json:"accuracy"`
	ModelName     string                    `json:"model_name"`
	Ranges        map[string]pipeline.Range `json:"ranges"`
	AllAccuracies map[string]float64        `json:"all_accuracies"`
}

// UntrainedMetadata is what /info reports for a model that failed to train.
func UntrainedMetadata() Metadata {
	return Metadata{
		ModelName:     UntrainedName,
		Ranges:        map[string]pipeline.Range{},
		AllAccuracies: map[string]float64{},
	}
}

// Predict classifies one feature vector in Disease.FeatureColumns order. The
// training scaler is applied only if the selected classifier was fitted on
// scaled features.
func (m *Model) Predict(features []float64) (int, error) {
	input := features
	if m.scaled {
		scaled, err := m.scaler.TransformRow(features)
		if err != nil {
			return 0, err
		}
		input = scaled
	}
	return m.classifier.Predict(input)
}

func (m *Model) Metadata() Metadata {
	ranges := make(map[string]pipeline.Range, len(m.Ranges))
	for name, r := range m.Ranges {
		ranges[name] = r
	}
	return Metadata{
		Accuracy:      m.Accuracy,
		ModelName:     m.Name,
		Ranges:        ranges,
		AllAccuracies: m.Accuracies(),
	}
}

func (m *Model) Accuracies() map[string]float64 {
	accuracies := make(map[string]float64, len(m.Candidates))
	for _, c := range m.Candidates {
		accuracies[c.Name] = c.Accuracy
	}
	return accuracies
}

// Classifier exposes the selected classifier, for export by offline tools.
func (m *Model) Classifier() ml.Classifier {
	return m.classifier
}

// Scaled reports whether requests are min-max scaled before prediction.
func (m *Model) Scaled() bool {
	return m.scaled
}

package ml

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// varSmoothing is added to every class variance as a fraction of the largest
// feature variance, so constant features do not divide by zero.
const varSmoothing = 1e-9

// GaussianNB models each feature as an independent normal distribution per class.
type GaussianNB struct {
	classes   []int
	logPriors []float64
	means     [][]float64
	variances [][]float64
}

func NewGaussianNB() *GaussianNB {
	return &GaussianNB{}
}

func (m *GaussianNB) Fit(features [][]float64, labels []int) error {
	if err := validateTrainingSet(features, labels); err != nil {
		return err
	}
	width := len(features[0])

	epsilon := 0.0
	column := make([]float64, len(features))
	for j := 0; j < width; j++ {
		for i, row := range features {
			column[i] = row[j]
		}
		_, variance := stat.PopMeanVariance(column, nil)
		epsilon = math.Max(epsilon, variance)
	}
	epsilon *= varSmoothing

	m.classes = uniqueLabels(labels)
	m.logPriors = make([]float64, len(m.classes))
	m.means = make([][]float64, len(m.classes))
	m.variances = make([][]float64, len(m.classes))

	for c, class := range m.classes {
		rows := make([][]float64, 0)
		for i, label := range labels {
			if label == class {
				rows = append(rows, features[i])
			}
		}
		m.logPriors[c] = math.Log(float64(len(rows)) / float64(len(labels)))
		m.means[c] = make([]float64, width)
		m.variances[c] = make([]float64, width)

		values := make([]float64, len(rows))
		for j := 0; j < width; j++ {
			for i, row := range rows {
				values[i] = row[j]
			}
			mean, variance := stat.PopMeanVariance(values, nil)
			m.means[c][j] = mean
			m.variances[c][j] = variance + epsilon
		}
	}
	return nil
}

func (m *GaussianNB) Predict(features []float64) (int, error) {
	if len(m.classes) == 0 {
		return 0, ErrNotFitted
	}
	if err := checkWidth(features, len(m.means[0])); err != nil {
		return 0, err
	}

	best := m.classes[0]
	bestScore := math.Inf(-1)
	for c, class := range m.classes {
		score := m.logPriors[c]
		for j, x := range features {
			variance := m.variances[c][j]
			if variance <= 0 {
				// every training value identical and epsilon zero: only an exact match is likely
				if x != m.means[c][j] {
					score = math.Inf(-1)
				}
				continue
			}
			diff := x - m.means[c][j]
			score -= 0.5*math.Log(2*math.Pi*variance) + diff*diff/(2*variance)
		}
		if score > bestScore {
			bestScore = score
			best = class
		}
	}
	return best, nil
}

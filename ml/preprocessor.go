package ml

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

// MinMaxScaler rescales each feature to [0,1] using the minimum and maximum
// seen during Fit. Values outside the fitted range are not clipped.
type MinMaxScaler struct {
	mins   []float64
	scales []float64
}

func (s *MinMaxScaler) Fit(features [][]float64) error {
	if len(features) == 0 {
		return errors.New("features is empty")
	}
	width := len(features[0])
	s.mins = make([]float64, width)
	s.scales = make([]float64, width)

	column := make([]float64, len(features))
	for j := 0; j < width; j++ {
		for i, row := range features {
			if len(row) != width {
				return errors.New("ragged feature matrix")
			}
			column[i] = row[j]
		}
		lo, hi := floats.Min(column), floats.Max(column)
		s.mins[j] = lo
		if hi > lo {
			s.scales[j] = 1 / (hi - lo)
		} else {
			s.scales[j] = 1
		}
	}
	return nil
}

func (s *MinMaxScaler) Transform(features [][]float64) ([][]float64, error) {
	out := make([][]float64, len(features))
	for i, row := range features {
		scaled, err := s.TransformRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

func (s *MinMaxScaler) TransformRow(row []float64) ([]float64, error) {
	if s.mins == nil {
		return nil, ErrNotFitted
	}
	if err := checkWidth(row, len(s.mins)); err != nil {
		return nil, err
	}
	scaled := make([]float64, len(row))
	floats.SubTo(scaled, row, s.mins)
	floats.Mul(scaled, s.scales)
	return scaled, nil
}

func (s *MinMaxScaler) FitTransform(features [][]float64) ([][]float64, error) {
	if err := s.Fit(features); err != nil {
		return nil, err
	}
	return s.Transform(features)
}

// Mins returns the fitted per-feature minimums.
func (s *MinMaxScaler) Mins() []float64 {
	return append([]float64(nil), s.mins...)
}

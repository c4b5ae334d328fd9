package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is a binary L2-regularised logistic model fitted with
// Newton's method. C is the inverse regularisation strength; the intercept is
// not regularised.
type LogisticRegression struct {
	C       float64
	MaxIter int
	Tol     float64

	classes   []int
	weights   []float64
	intercept float64
}

func NewLogisticRegression(c float64, maxIter int) *LogisticRegression {
	return &LogisticRegression{C: c, MaxIter: maxIter, Tol: 1e-8}
}

func (m *LogisticRegression) Fit(features [][]float64, labels []int) error {
	if err := validateTrainingSet(features, labels); err != nil {
		return err
	}
	if m.C <= 0 {
		return fmt.Errorf("C must be positive, got %v", m.C)
	}
	classes := uniqueLabels(labels)
	if len(classes) != 2 {
		return fmt.Errorf("logistic regression needs exactly 2 classes, got %d", len(classes))
	}
	maxIter := m.MaxIter
	if maxIter <= 0 {
		maxIter = 100
	}

	n, d := len(features), len(features[0])
	cols := d + 1
	data := make([]float64, 0, n*cols)
	y := make([]float64, n)
	for i, row := range features {
		data = append(data, row...)
		data = append(data, 1)
		if labels[i] == classes[1] {
			y[i] = 1
		}
	}
	x := mat.NewDense(n, cols, data)
	lambda := 1 / m.C

	w := mat.NewVecDense(cols, nil)
	loss := m.loss(x, y, w, lambda)
	for iter := 0; iter < maxIter; iter++ {
		var z mat.VecDense
		z.MulVec(x, w)

		grad := make([]float64, cols)
		hess := make([]float64, cols*cols)
		for i := 0; i < n; i++ {
			p := sigmoid(z.AtVec(i))
			residual := p - y[i]
			weight := p * (1 - p)
			row := x.RawRowView(i)
			for a := 0; a < cols; a++ {
				grad[a] += residual * row[a]
				for b := a; b < cols; b++ {
					hess[a*cols+b] += weight * row[a] * row[b]
				}
			}
		}
		for a := 0; a < cols; a++ {
			for b := 0; b < a; b++ {
				hess[a*cols+b] = hess[b*cols+a]
			}
		}
		for a := 0; a < d; a++ {
			grad[a] += lambda * w.AtVec(a)
			hess[a*cols+a] += lambda
		}
		hess[d*cols+d] += 1e-10

		var step mat.VecDense
		if err := step.SolveVec(mat.NewDense(cols, cols, hess), mat.NewVecDense(cols, grad)); err != nil {
			return fmt.Errorf("newton step: %w", err)
		}

		// backtracking keeps every accepted step a descent step
		scale := 1.0
		var next *mat.VecDense
		nextLoss := loss
		for tries := 0; tries < 30; tries++ {
			candidate := mat.NewVecDense(cols, nil)
			candidate.AddScaledVec(w, -scale, &step)
			candidateLoss := m.loss(x, y, candidate, lambda)
			if candidateLoss <= loss {
				next, nextLoss = candidate, candidateLoss
				break
			}
			scale /= 2
		}
		if next == nil {
			break
		}

		maxStep := 0.0
		for a := 0; a < cols; a++ {
			maxStep = math.Max(maxStep, math.Abs(scale*step.AtVec(a)))
		}
		w, loss = next, nextLoss
		if maxStep < m.tol() {
			break
		}
	}

	m.classes = classes
	m.weights = make([]float64, d)
	for a := 0; a < d; a++ {
		m.weights[a] = w.AtVec(a)
	}
	m.intercept = w.AtVec(d)
	return nil
}

func (m *LogisticRegression) tol() float64 {
	if m.Tol > 0 {
		return m.Tol
	}
	return 1e-8
}

// loss is the summed log loss plus the L2 penalty on the non-intercept weights.
func (m *LogisticRegression) loss(x *mat.Dense, y []float64, w *mat.VecDense, lambda float64) float64 {
	var z mat.VecDense
	z.MulVec(x, w)
	total := 0.0
	for i, target := range y {
		zi := z.AtVec(i)
		// log(1+exp(z)) - y*z, computed without overflow
		total += math.Max(zi, 0) + math.Log1p(math.Exp(-math.Abs(zi))) - target*zi
	}
	penalty := 0.0
	for a := 0; a < w.Len()-1; a++ {
		penalty += w.AtVec(a) * w.AtVec(a)
	}
	return total + lambda*penalty/2
}

// Probability returns P(label == second class | features).
func (m *LogisticRegression) Probability(features []float64) (float64, error) {
	if m.classes == nil {
		return 0, ErrNotFitted
	}
	if err := checkWidth(features, len(m.weights)); err != nil {
		return 0, err
	}
	z := m.intercept
	for i, v := range features {
		z += m.weights[i] * v
	}
	return sigmoid(z), nil
}

func (m *LogisticRegression) Predict(features []float64) (int, error) {
	p, err := m.Probability(features)
	if err != nil {
		return 0, err
	}
	if p > 0.5 {
		return m.classes[1], nil
	}
	return m.classes[0], nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

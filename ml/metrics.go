package ml

import "errors"

// Evaluation is the holdout score of one classifier. Precision and recall are
// measured for PositiveLabel.
type Evaluation struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	Samples   int
}

const PositiveLabel = 1

// Evaluate predicts every test row and compares it with the expected label.
func Evaluate(model Classifier, testX [][]float64, testY []int) (Evaluation, error) {
	if len(testX) == 0 {
		return Evaluation{}, errors.New("test set is empty")
	}
	if len(testX) != len(testY) {
		return Evaluation{}, errors.New("features and labels size mismatch")
	}

	predicted := make([]int, len(testX))
	for i, feature := range testX {
		label, err := model.Predict(feature)
		if err != nil {
			return Evaluation{}, err
		}
		predicted[i] = label
	}
	return Score(testY, predicted)
}

// Score compares expected and predicted labels.
func Score(expected, predicted []int) (Evaluation, error) {
	if len(expected) == 0 {
		return Evaluation{}, errors.New("no labels to score")
	}
	if len(expected) != len(predicted) {
		return Evaluation{}, errors.New("expected and predicted size mismatch")
	}

	var correct, truePositive, predictedPositive, actualPositive int
	for i, label := range predicted {
		if label == expected[i] {
			correct++
		}
		if label == PositiveLabel {
			predictedPositive++
		}
		if expected[i] == PositiveLabel {
			actualPositive++
			if label == PositiveLabel {
				truePositive++
			}
		}
	}

	eval := Evaluation{
		Accuracy: float64(correct) / float64(len(expected)),
		Samples:  len(expected),
	}
	if predictedPositive > 0 {
		eval.Precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		eval.Recall = float64(truePositive) / float64(actualPositive)
	}
	return eval, nil
}

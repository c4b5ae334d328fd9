package ml

import (
	"errors"
)

// LoadModel restores a classifier exported with Save. Only decision trees are
// exportable; the other classifiers live in memory only.
func LoadModel(modelType, path string) (Classifier, error) {
	switch modelType {
	case "decision_tree":
		model := &DecisionTree{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, errors.New("unsupported model type")
	}
}

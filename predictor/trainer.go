package predictor

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"medicare/config"
	"medicare/ml"
	"medicare/pipeline"
)

// Candidate is one algorithm entered into the comparison. Scaled candidates
// are fitted and evaluated on min-max scaled features, the others on raw ones.
type Candidate struct {
	Name   string
	Scaled bool
	New    func() ml.Classifier
}

// Candidates returns the four algorithms in comparison order. The order is
// also the tie-break: an earlier candidate wins equal accuracy.
func Candidates(cfg config.TrainingConfig) []Candidate {
	return []Candidate{
		{Name: "Logistic Regression", Scaled: true, New: func() ml.Classifier {
			return ml.NewLogisticRegression(cfg.LogisticC, cfg.LogisticMaxIter)
		}},
		{Name: "KNN", Scaled: true, New: func() ml.Classifier {
			return ml.NewKNN(cfg.KNNNeighbors)
		}},
		{Name: "Naive Bayes", Scaled: false, New: func() ml.Classifier {
			return ml.NewGaussianNB()
		}},
		{Name: "Decision Tree", Scaled: false, New: func() ml.Classifier {
			return ml.NewDecisionTree(cfg.MaxTreeDepth)
		}},
	}
}

type Trainer struct {
	config config.TrainingConfig
	logger *zap.Logger
	now    func() time.Time

	// OnCandidate, if set, sees every fitted candidate, selected or not.
	OnCandidate func(d Disease, name string, model ml.Classifier)
}

func NewTrainer(cfg config.TrainingConfig, logger *zap.Logger) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trainer{config: cfg, logger: logger, now: time.Now}
}

// Train loads the dataset at path, cleans it, and keeps the best of the four
// candidates by holdout accuracy.
func (t *Trainer) Train(d Disease, path string) (*Model, error) {
	log := t.logger.With(zap.String("disease", d.Key), zap.String("dataset", path))

	frame, err := pipeline.LoadCSV(path)
	if err != nil {
		return nil, err
	}

	rules := make([]pipeline.CleaningRule, 0, 2)
	if len(d.ZeroAsMissing) > 0 {
		rules = append(rules, pipeline.NewZeroAsMissingRule(d.ZeroAsMissing...))
	}
	rules = append(rules, pipeline.NewMeanImputeRule())
	stats, err := pipeline.NewDataCleaner(rules...).Clean(frame)
	if err != nil {
		return nil, fmt.Errorf("clean dataset: %w", err)
	}
	log.Debug("dataset cleaned",
		zap.Int("rows", stats.Rows),
		zap.Any("replaced", stats.Replaced),
		zap.Any("filled", stats.Filled),
		zap.Strings("skipped", stats.Skipped))

	target, err := pipeline.TargetColumn(frame, d.TargetColumn, d.TargetFallbackLast)
	if err != nil {
		return nil, err
	}
	labels, err := pipeline.BinaryLabels(frame, target)
	if err != nil {
		return nil, err
	}
	features, err := frame.Matrix(d.FeatureColumns)
	if err != nil {
		return nil, fmt.Errorf("extract features: %w", err)
	}

	ranges := make(map[string]pipeline.Range, len(d.FeatureColumns))
	for _, column := range d.FeatureColumns {
		r, err := frame.ColumnRange(column)
		if err != nil {
			return nil, err
		}
		ranges[column] = r
	}

	split, err := ml.TrainTestSplit(features, labels, t.config.TestRatio, t.config.Seed)
	if err != nil {
		return nil, err
	}

	scaler := &ml.MinMaxScaler{}
	scaledTrain, err := scaler.FitTransform(split.TrainX)
	if err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}
	scaledTest, err := scaler.Transform(split.TestX)
	if err != nil {
		return nil, fmt.Errorf("scale holdout: %w", err)
	}

	var (
		results   []CandidateResult
		best      ml.Classifier
		bestIndex = -1
	)
	for _, candidate := range Candidates(t.config) {
		trainX, testX := split.TrainX, split.TestX
		if candidate.Scaled {
			trainX, testX = scaledTrain, scaledTest
		}

		model := candidate.New()
		if err := model.Fit(trainX, split.TrainY); err != nil {
			return nil, fmt.Errorf("fit %s: %w", candidate.Name, err)
		}
		eval, err := ml.Evaluate(model, testX, split.TestY)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", candidate.Name, err)
		}

		result := CandidateResult{
			Name:      candidate.Name,
			Scaled:    candidate.Scaled,
			Accuracy:  eval.Accuracy * 100,
			Precision: eval.Precision,
			Recall:    eval.Recall,
		}
		results = append(results, result)
		if t.OnCandidate != nil {
			t.OnCandidate(d, candidate.Name, model)
		}
		log.Debug("candidate evaluated", zap.String("model", result.Name), zap.Float64("accuracy", result.Accuracy))

		if bestIndex == -1 || result.Accuracy > results[bestIndex].Accuracy {
			bestIndex = len(results) - 1
			best = model
		}
	}

	selected := results[bestIndex]
	log.Info("model trained",
		zap.String("model", selected.Name),
		zap.Float64("accuracy", selected.Accuracy),
		zap.Int("train_samples", len(split.TrainX)),
		zap.Int("test_samples", len(split.TestX)))

	return &Model{
		Disease:      d,
		Name:         selected.Name,
		Accuracy:     selected.Accuracy,
		Candidates:   results,
		Ranges:       ranges,
		TrainSamples: len(split.TrainX),
		TestSamples:  len(split.TestX),
		TrainedAt:    t.now().UTC(),
		classifier:   best,
		scaler:       scaler,
		scaled:       selected.Scaled,
	}, nil
}

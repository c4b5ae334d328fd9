package predictor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

var (
	ErrNotTrained     = errors.New("model not trained")
	ErrUnknownDisease = errors.New("unknown disease")
)

// Prediction is the outcome of one predict call.
type Prediction struct {
	Label     int     `json:"label"`
	Text      string  `json:"prediction"`
	ModelName string  `json:"model_used"`
	Accuracy  float64 `json:"accuracy"`
	Cached    bool    `json:"-"`
}

// Recorder persists served predictions.
type Recorder interface {
	RecordPrediction(ctx context.Context, disease string, features []float64, p Prediction) error
}

// Notifier publishes served predictions to live listeners.
type Notifier interface {
	NotifyPrediction(disease string, p Prediction)
}

type ServiceOption func(*Service) error

// WithCache memoizes predictions for identical inputs; size <= 0 disables it.
func WithCache(size int) ServiceOption {
	return func(s *Service) error {
		if size <= 0 {
			s.cache = nil
			return nil
		}
		cache, err := lru.New[string, Prediction](size)
		if err != nil {
			return fmt.Errorf("create prediction cache: %w", err)
		}
		s.cache = cache
		return nil
	}
}

func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) error {
		s.recorder = r
		return nil
	}
}

func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) error {
		s.notifier = n
		return nil
	}
}

// Service answers predictions from a fixed Registry.
type Service struct {
	registry *Registry
	cache    *lru.Cache[string, Prediction]
	recorder Recorder
	notifier Notifier
	logger   *zap.Logger
}

func NewService(registry *Registry, logger *zap.Logger, opts ...ServiceOption) (*Service, error) {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{registry: registry, logger: logger}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Predict classifies features with the model trained for disease.
func (s *Service) Predict(ctx context.Context, disease string, features []float64) (Prediction, error) {
	d, ok := Lookup(disease)
	if !ok {
		return Prediction{}, fmt.Errorf("%w: %s", ErrUnknownDisease, disease)
	}
	model, ok := s.registry.Get(d.Key)
	if !ok {
		return Prediction{}, fmt.Errorf("%s: %w", d.Title, ErrNotTrained)
	}
	if len(features) != len(d.FeatureColumns) {
		return Prediction{}, fmt.Errorf("%s expects %d features, got %d", d.Key, len(d.FeatureColumns), len(features))
	}

	key := cacheKey(d.Key, features)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			cached.Cached = true
			s.publish(ctx, d.Key, features, cached)
			return cached, nil
		}
	}

	label, err := model.Predict(features)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict %s: %w", d.Key, err)
	}
	p := Prediction{
		Label:     label,
		Text:      d.Text(label),
		ModelName: model.Name,
		Accuracy:  model.Accuracy,
	}
	if s.cache != nil {
		s.cache.Add(key, p)
	}
	s.publish(ctx, d.Key, features, p)
	return p, nil
}

// publish records and broadcasts p. Neither failure affects the response.
func (s *Service) publish(ctx context.Context, disease string, features []float64, p Prediction) {
	if s.recorder != nil {
		if err := s.recorder.RecordPrediction(ctx, disease, features, p); err != nil {
			s.logger.Warn("record prediction failed", zap.String("disease", disease), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyPrediction(disease, p)
	}
}

// ModelName returns the selected model name, or UntrainedName.
func (s *Service) ModelName(disease string) string {
	if m, ok := s.registry.Get(disease); ok {
		return m.Name
	}
	return UntrainedName
}

func (s *Service) Metadata(disease string) (Metadata, error) {
	d, ok := Lookup(disease)
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %s", ErrUnknownDisease, disease)
	}
	m, ok := s.registry.Get(d.Key)
	if !ok {
		return UntrainedMetadata(), nil
	}
	return m.Metadata(), nil
}

func cacheKey(disease string, features []float64) string {
	var b strings.Builder
	b.WriteString(disease)
	for _, f := range features {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return b.String()
}

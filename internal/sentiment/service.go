package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/sentiserve/internal/ml"
	"github.com/spacesedan/sentiserve/internal/models"
)

type State int32

const (
	StateUninitialized State = iota
	StateTraining
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateTraining:
		return "Training"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

var ErrTrainingInProgress = errors.New("training already in progress")

type Options struct {
	// TestFraction is the share of examples held out for evaluation, in
	// [0,1). Zero evaluates on the training examples.
	TestFraction float64
	Cache        Cache
	Publisher    Publisher
	RunStore     RunStore
}

// Service owns the fitted model and answers predictions against it.
type Service struct {
	mlctx  ml.Context
	loader Loader
	opts   Options

	state   atomic.Int32
	model   atomic.Pointer[ml.Model]
	metrics atomic.Pointer[ml.Metrics]
	trainMu sync.Mutex
}

// Comparison pairs the model's answer with the VADER baseline for the same text.
type Comparison struct {
	Prediction models.SentimentPrediction
	VaderScore float64
	VaderLabel string
}

// NewUntrained returns a service in the Uninitialized state. Predict fails
// until Retrain succeeds.
func NewUntrained(mlctx ml.Context, loader Loader, opts Options) *Service {
	return &Service{mlctx: mlctx, loader: loader, opts: opts}
}

// NewService loads the training data and fits the model before returning.
// Any load or fit failure is returned and no service is produced.
func NewService(ctx context.Context, mlctx ml.Context, loader Loader, opts Options) (*Service, error) {
	s := NewUntrained(mlctx, loader, opts)
	if err := s.Retrain(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) State() State { return State(s.state.Load()) }

// Metrics returns the evaluation of the current model.
func (s *Service) Metrics() (ml.Metrics, bool) {
	m := s.metrics.Load()
	if m == nil {
		return ml.Metrics{}, false
	}
	return *m, true
}

// Model returns the current artifact, or nil before the first successful fit.
func (s *Service) Model() *ml.Model { return s.model.Load() }

type trainResult struct {
	model   *ml.Model
	metrics ml.Metrics
	err     error
}

// Retrain fits a new model and swaps it in. A service that is already Ready
// keeps serving the previous model until the new one is stored. Concurrent
// calls fail with ErrTrainingInProgress.
func (s *Service) Retrain(ctx context.Context) error {
	if !s.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer s.trainMu.Unlock()

	if s.State() != StateReady {
		s.state.Store(int32(StateTraining))
	}
	start := time.Now()

	records, err := s.loader.Load(ctx)
	if err != nil {
		s.failTraining()
		return fmt.Errorf("[SentimentService] failed to load training data from %s: %w", s.loader.Source(), err)
	}

	done := make(chan trainResult, 1)
	go func() {
		model, metrics, err := ml.Train(s.mlctx, records, s.opts.TestFraction)
		done <- trainResult{model: model, metrics: metrics, err: err}
	}()

	var result trainResult
	select {
	case <-ctx.Done():
		s.failTraining()
		return fmt.Errorf("[SentimentService] training aborted: %w", ctx.Err())
	case result = <-done:
	}
	if result.err != nil {
		s.failTraining()
		return fmt.Errorf("[SentimentService] failed to fit model: %w", result.err)
	}

	s.model.Store(result.model)
	s.metrics.Store(&result.metrics)
	s.state.Store(int32(StateReady))

	elapsed := time.Since(start)
	slog.Info("[SentimentService] Model trained",
		slog.String("source", s.loader.Source()),
		slog.String("fingerprint", result.model.Fingerprint()),
		slog.Int("vocabulary", result.model.VocabularySize()),
		slog.Int("train", result.metrics.TrainCount),
		slog.Int("test", result.metrics.TestCount),
		slog.Float64("accuracy", result.metrics.Accuracy),
		slog.Float64("auc", result.metrics.AUC),
		slog.Float64("f1", result.metrics.F1),
		slog.Duration("elapsed", elapsed))

	s.saveRun(ctx, result, start, elapsed)
	return nil
}

func (s *Service) failTraining() {
	if s.model.Load() == nil {
		s.state.Store(int32(StateFailed))
	}
}

func (s *Service) saveRun(ctx context.Context, result trainResult, start time.Time, elapsed time.Duration) {
	if s.opts.RunStore == nil {
		return
	}

	run := models.TrainingRun{
		RunID:          uuid.NewString(),
		DataSource:     s.loader.Source(),
		Fingerprint:    result.model.Fingerprint(),
		VocabularySize: result.model.VocabularySize(),
		Metrics:        result.metrics,
		StartedAt:      start.UTC(),
		Duration:       elapsed,
	}
	if err := s.opts.RunStore.SaveTrainingRun(ctx, run); err != nil {
		slog.Warn("[SentimentService] Failed to record training run",
			slog.String("run_id", run.RunID),
			slog.String("error", err.Error()))
	}
}

// Predict scores text against the current model. Empty text is scored like
// any other input; callers that want to skip it must do so themselves.
func (s *Service) Predict(ctx context.Context, text string) (models.SentimentPrediction, error) {
	model := s.model.Load()
	if model == nil {
		return models.SentimentPrediction{}, &ml.InferenceError{
			Reason: fmt.Sprintf("model is not ready (state %s)", s.State()),
		}
	}

	key := CacheKey(model.Fingerprint(), text)
	if s.opts.Cache != nil {
		cached, ok, err := s.opts.Cache.GetPrediction(ctx, key)
		if err != nil {
			slog.Warn("[SentimentService] Cache lookup failed",
				slog.String("error", err.Error()))
		} else if ok {
			s.publish(ctx, model, text, cached)
			return cached, nil
		}
	}

	prediction := model.Predict(text)

	if s.opts.Cache != nil {
		if err := s.opts.Cache.SetPrediction(ctx, key, prediction); err != nil {
			slog.Warn("[SentimentService] Cache store failed",
				slog.String("error", err.Error()))
		}
	}
	s.publish(ctx, model, text, prediction)

	return prediction, nil
}

// Compare runs Predict and the VADER baseline on the same text.
func (s *Service) Compare(ctx context.Context, text string) (Comparison, error) {
	prediction, err := s.Predict(ctx, text)
	if err != nil {
		return Comparison{}, err
	}
	score, label := AnalyzeWithVADER(text)
	return Comparison{Prediction: prediction, VaderScore: score, VaderLabel: label}, nil
}

func (s *Service) publish(ctx context.Context, model *ml.Model, text string, prediction models.SentimentPrediction) {
	if s.opts.Publisher == nil {
		return
	}
	s.opts.Publisher.Publish(models.PredictionEvent{
		EventID:     uuid.NewString(),
		Fingerprint: model.Fingerprint(),
		Text:        text,
		Prediction:  prediction.Prediction,
		Probability: prediction.Probability,
		Source:      SourceFromContext(ctx),
		Timestamp:   time.Now().UTC(),
	})
}

// CacheKey namespaces text by the model that scored it.
func CacheKey(fingerprint, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "sentiment:" + fingerprint + ":" + hex.EncodeToString(sum[:])
}

type sourceKey struct{}

// WithSource tags predictions made with ctx with the name of the caller.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

func SourceFromContext(ctx context.Context) string {
	if source, ok := ctx.Value(sourceKey{}).(string); ok {
		return source
	}
	return "unknown"
}

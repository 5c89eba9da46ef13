package ml

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spacesedan/sentiserve/internal/models"
)

// Fit builds the vocabulary from examples and trains the classifier on them.
func Fit(ctx Context, examples []models.SentimentRecord) (*Model, error) {
	if len(examples) == 0 {
		return nil, &DataLoadError{Err: errors.New("no training examples")}
	}

	texts := make([]string, len(examples))
	labels := make([]bool, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Text
		labels[i] = ex.Label
	}

	featurizer := FitFeaturizer(ctx.Featurizer, texts)
	xs := make([]SparseVector, len(texts))
	for i, text := range texts {
		xs[i] = featurizer.Transform(text)
	}

	weights := TrainLogisticSDCA(ctx, xs, labels, featurizer.Size())
	return newModel(featurizer, weights), nil
}

// Train splits examples, fits on the train partition and evaluates on the
// held out one. When testFraction leaves no test examples the metrics are
// computed on the training partition instead. Metrics never gate the model.
func Train(ctx Context, examples []models.SentimentRecord, testFraction float64) (*Model, Metrics, error) {
	start := time.Now()

	train, test, err := TrainTestSplit(ctx, examples, testFraction)
	if err != nil {
		return nil, Metrics{}, err
	}

	model, err := Fit(ctx, train)
	if err != nil {
		return nil, Metrics{}, err
	}

	evalSet, evaluatedOn := test, "test"
	if len(test) == 0 {
		evalSet, evaluatedOn = train, "train"
	}
	metrics := EvaluateModel(model, evalSet)
	metrics.TrainCount = len(train)
	metrics.TestCount = len(test)
	metrics.EvaluatedOn = evaluatedOn

	ctx.logger().Debug("[Pipeline] Model fitted",
		slog.Int("train", len(train)),
		slog.Int("test", len(test)),
		slog.Int("vocabulary", model.VocabularySize()),
		slog.Duration("elapsed", time.Since(start)))

	return model, metrics, nil
}

// EvaluateModel runs the model over examples and computes metrics.
func EvaluateModel(model *Model, examples []models.SentimentRecord) Metrics {
	probabilities := make([]float64, len(examples))
	labels := make([]bool, len(examples))
	for i, ex := range examples {
		probabilities[i] = model.Predict(ex.Text).Probability
		labels[i] = ex.Label
	}
	return Evaluate(probabilities, labels)
}

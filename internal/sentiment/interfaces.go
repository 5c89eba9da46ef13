package sentiment

import (
	"context"
	"errors"

	"github.com/spacesedan/sentiserve/internal/ml"
	"github.com/spacesedan/sentiserve/internal/models"
)

// Loader supplies the labeled examples a model is trained on.
type Loader interface {
	Load(ctx context.Context) ([]models.SentimentRecord, error)
	Source() string
}

// Cache stores predictions keyed by model fingerprint and text.
type Cache interface {
	GetPrediction(ctx context.Context, key string) (models.SentimentPrediction, bool, error)
	SetPrediction(ctx context.Context, key string, prediction models.SentimentPrediction) error
}

// Publisher receives an event for every prediction served. Publish must not block.
type Publisher interface {
	Publish(event models.PredictionEvent)
}

// RunStore persists a record of each completed training run.
type RunStore interface {
	SaveTrainingRun(ctx context.Context, run models.TrainingRun) error
}

// FileLoader reads the tab separated training file at Path.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load(ctx context.Context) ([]models.SentimentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ml.LoadFromTextFile(l.Path)
}

func (l FileLoader) Source() string { return "file:" + l.Path }

// StaticLoader serves a fixed set of records.
type StaticLoader []models.SentimentRecord

func (l StaticLoader) Load(context.Context) ([]models.SentimentRecord, error) {
	if len(l) == 0 {
		return nil, &ml.DataLoadError{Path: l.Source(), Err: errors.New("no records")}
	}
	return append([]models.SentimentRecord(nil), l...), nil
}

func (l StaticLoader) Source() string { return "static" }

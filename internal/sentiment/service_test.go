package sentiment_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiserve/internal/ml"
	"github.com/spacesedan/sentiserve/internal/models"
	"github.com/spacesedan/sentiserve/internal/sentiment"
)

const trainingFile = `great product	1
terrible service	0
great service	1
terrible product	0
great food and great staff	1
terrible food and rude staff	0
really great value	1
really terrible value	0
the place was great	1
the place was terrible	0
`

func writeTrainingFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commentdata.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]models.SentimentPrediction
	gets    int
	failGet bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]models.SentimentPrediction{}}
}

func (c *fakeCache) GetPrediction(_ context.Context, key string) (models.SentimentPrediction, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return models.SentimentPrediction{}, false, errors.New("connection refused")
	}
	p, ok := c.entries[key]
	return p, ok, nil
}

func (c *fakeCache) SetPrediction(_ context.Context, key string, p models.SentimentPrediction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = p
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.PredictionEvent
}

func (p *fakePublisher) Publish(event models.PredictionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

type fakeRunStore struct {
	runs []models.TrainingRun
	err  error
}

func (s *fakeRunStore) SaveTrainingRun(_ context.Context, run models.TrainingRun) error {
	s.runs = append(s.runs, run)
	return s.err
}

type blockingLoader struct{}

func (blockingLoader) Load(ctx context.Context) ([]models.SentimentRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingLoader) Source() string { return "blocking" }

func TestNewService_TrainsFromFile(t *testing.T) {
	path := writeTrainingFile(t, trainingFile)
	store := &fakeRunStore{}

	svc, err := sentiment.NewService(context.Background(), ml.NewContext(1),
		sentiment.FileLoader{Path: path}, sentiment.Options{RunStore: store})
	require.NoError(t, err)
	assert.Equal(t, sentiment.StateReady, svc.State())

	metrics, ok := svc.Metrics()
	require.True(t, ok)
	assert.Equal(t, 10, metrics.TrainCount)

	got, err := svc.Predict(context.Background(), "great")
	require.NoError(t, err)
	assert.True(t, got.Prediction)
	assert.Greater(t, got.Probability, 0.5)

	require.Len(t, store.runs, 1)
	assert.Equal(t, svc.Model().Fingerprint(), store.runs[0].Fingerprint)
	assert.Equal(t, "file:"+path, store.runs[0].DataSource)
}

func TestNewService_MissingFileFailsFast(t *testing.T) {
	svc, err := sentiment.NewService(context.Background(), ml.NewContext(1),
		sentiment.FileLoader{Path: filepath.Join(t.TempDir(), "nope.txt")}, sentiment.Options{})
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.ErrorIs(t, err, ml.ErrDataLoad)
}

func TestNewService_MalformedFileFailsFast(t *testing.T) {
	path := writeTrainingFile(t, "great product\t1\nbroken line\n")

	_, err := sentiment.NewService(context.Background(), ml.NewContext(1),
		sentiment.FileLoader{Path: path}, sentiment.Options{})
	require.ErrorIs(t, err, ml.ErrDataLoad)

	var loadErr *ml.DataLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 2, loadErr.Line)
}

func TestNewService_DeadlineAbortsTraining(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := sentiment.NewService(ctx, ml.NewContext(1), blockingLoader{}, sentiment.Options{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPredict_BeforeTraining(t *testing.T) {
	svc := sentiment.NewUntrained(ml.NewContext(1), sentiment.StaticLoader{}, sentiment.Options{})
	assert.Equal(t, sentiment.StateUninitialized, svc.State())

	_, err := svc.Predict(context.Background(), "great")
	require.ErrorIs(t, err, ml.ErrInference)

	var inferErr *ml.InferenceError
	require.ErrorAs(t, err, &inferErr)
	assert.Contains(t, inferErr.Reason, "Uninitialized")
}

func TestRetrain_FailureLeavesFailedState(t *testing.T) {
	svc := sentiment.NewUntrained(ml.NewContext(1), sentiment.StaticLoader{}, sentiment.Options{})

	err := svc.Retrain(context.Background())
	require.ErrorIs(t, err, ml.ErrDataLoad)
	assert.Equal(t, sentiment.StateFailed, svc.State())

	_, err = svc.Predict(context.Background(), "great")
	require.ErrorIs(t, err, ml.ErrInference)
}

func trainedService(t *testing.T, opts sentiment.Options) *sentiment.Service {
	t.Helper()
	path := writeTrainingFile(t, trainingFile)
	svc, err := sentiment.NewService(context.Background(), ml.NewContext(1), sentiment.FileLoader{Path: path}, opts)
	require.NoError(t, err)
	return svc
}

func TestPredict_EmptyTextReturnsResult(t *testing.T) {
	svc := trainedService(t, sentiment.Options{})

	got, err := svc.Predict(context.Background(), "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.Probability, 0.0)
	assert.LessOrEqual(t, got.Probability, 1.0)
}

func TestPredict_ConcurrentCallersAgree(t *testing.T) {
	svc := trainedService(t, sentiment.Options{})
	want, err := svc.Predict(context.Background(), "the food was great")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]models.SentimentPrediction, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.Predict(context.Background(), "the food was great")
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestPredict_UsesCache(t *testing.T) {
	cache := newFakeCache()
	svc := trainedService(t, sentiment.Options{Cache: cache})

	first, err := svc.Predict(context.Background(), "great")
	require.NoError(t, err)

	key := sentiment.CacheKey(svc.Model().Fingerprint(), "great")
	require.Contains(t, cache.entries, key)

	planted := models.SentimentPrediction{Prediction: false, Probability: 0.01}
	cache.entries[key] = planted

	second, err := svc.Predict(context.Background(), "great")
	require.NoError(t, err)
	assert.Equal(t, planted, second)
	assert.NotEqual(t, first, second)
}

func TestPredict_CacheFailureFallsBackToModel(t *testing.T) {
	cache := newFakeCache()
	cache.failGet = true
	svc := trainedService(t, sentiment.Options{Cache: cache})

	got, err := svc.Predict(context.Background(), "great")
	require.NoError(t, err)
	assert.True(t, got.Prediction)
}

func TestPredict_PublishesEvents(t *testing.T) {
	pub := &fakePublisher{}
	svc := trainedService(t, sentiment.Options{Publisher: pub})

	ctx := sentiment.WithSource(context.Background(), "api")
	_, err := svc.Predict(ctx, "terrible")
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, "terrible", event.Text)
	assert.Equal(t, "api", event.Source)
	assert.False(t, event.Prediction)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, svc.Model().Fingerprint(), event.Fingerprint)
}

func TestRetrain_KeepsServing(t *testing.T) {
	store := &fakeRunStore{err: errors.New("table missing")}
	svc := trainedService(t, sentiment.Options{RunStore: store})
	before := svc.Model()

	require.NoError(t, svc.Retrain(context.Background()))
	assert.Equal(t, sentiment.StateReady, svc.State())
	assert.Equal(t, before.Fingerprint(), svc.Model().Fingerprint())
	assert.Len(t, store.runs, 2)
}

func TestCompare(t *testing.T) {
	svc := trainedService(t, sentiment.Options{})

	cmp, err := svc.Compare(context.Background(), "great service")
	require.NoError(t, err)
	assert.True(t, cmp.Prediction.Prediction)
	assert.Equal(t, "positive", cmp.VaderLabel)
	assert.Greater(t, cmp.VaderScore, 0.0)
}

func TestAnalyzeWithVADER(t *testing.T) {
	score, label := sentiment.AnalyzeWithVADER("This is **terrible**, I hate it")
	assert.Less(t, score, 0.0)
	assert.Equal(t, "negative", label)

	_, label = sentiment.AnalyzeWithVADER("the table")
	assert.Equal(t, "neutral", label)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Ready", sentiment.StateReady.String())
	assert.Equal(t, "State(9)", sentiment.State(9).String())
}

func TestNewService_TestFraction(t *testing.T) {
	path := writeTrainingFile(t, trainingFile)

	svc, err := sentiment.NewService(context.Background(), ml.NewContext(1),
		sentiment.FileLoader{Path: path}, sentiment.Options{TestFraction: 0})
	require.NoError(t, err)
	metrics, _ := svc.Metrics()
	assert.Equal(t, 10, metrics.TrainCount)
	assert.Equal(t, 0, metrics.TestCount)
	assert.Equal(t, "train", metrics.EvaluatedOn)

	svc, err = sentiment.NewService(context.Background(), ml.NewContext(1),
		sentiment.FileLoader{Path: path}, sentiment.Options{TestFraction: 0.2})
	require.NoError(t, err)
	metrics, _ = svc.Metrics()
	assert.Equal(t, 8, metrics.TrainCount)
	assert.Equal(t, 2, metrics.TestCount)

	for _, fraction := range []float64{-0.1, 1} {
		_, err := sentiment.NewService(context.Background(), ml.NewContext(1),
			sentiment.FileLoader{Path: path}, sentiment.Options{TestFraction: fraction})
		assert.ErrorIs(t, err, ml.ErrDataLoad, "fraction %v", fraction)
	}
}

func TestNewService_BundledCorpus(t *testing.T) {
	svc, err := sentiment.NewService(context.Background(), ml.NewContext(ml.DefaultSeed),
		sentiment.FileLoader{Path: filepath.Join("..", "..", "data", "commentdata.txt")},
		sentiment.Options{TestFraction: ml.DefaultTestFraction})
	require.NoError(t, err)

	metrics, ok := svc.Metrics()
	require.True(t, ok)
	assert.Equal(t, 48, metrics.TrainCount)
	assert.Equal(t, 12, metrics.TestCount)
	assert.Equal(t, "test", metrics.EvaluatedOn)
	assert.Greater(t, metrics.AUC, 0.5)
	assert.Greater(t, metrics.Accuracy, 0.5)

	prediction, err := svc.Predict(context.Background(), "great product")
	require.NoError(t, err)
	assert.True(t, prediction.Prediction)
}

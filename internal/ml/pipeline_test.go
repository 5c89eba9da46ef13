package ml_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiserve/internal/ml"
	"github.com/spacesedan/sentiserve/internal/models"
)

func TestTrainTestSplit_Reproducible(t *testing.T) {
	corpus := sampleCorpus()
	ctx := ml.NewContext(42)

	train1, test1, err := ml.TrainTestSplit(ctx, corpus, 0.25)
	require.NoError(t, err)
	train2, test2, err := ml.TrainTestSplit(ctx, corpus, 0.25)
	require.NoError(t, err)

	assert.Len(t, test1, 4)
	assert.Len(t, train1, 12)
	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)
}

func TestTrainTestSplit_KeepsOneTrainingExample(t *testing.T) {
	corpus := []models.SentimentRecord{{Text: "fine", Label: true}}

	train, test, err := ml.TrainTestSplit(ml.NewContext(1), corpus, 0.9)
	require.NoError(t, err)
	assert.Len(t, train, 1)
	assert.Empty(t, test)
}

func TestTrainTestSplit_InvalidFraction(t *testing.T) {
	for _, fraction := range []float64{-0.1, 1, 1.5} {
		_, _, err := ml.TrainTestSplit(ml.NewContext(1), sampleCorpus(), fraction)
		assert.ErrorIs(t, err, ml.ErrDataLoad, "fraction %v", fraction)
	}
}

func TestTrain_EmptyInput(t *testing.T) {
	_, _, err := ml.Train(ml.NewContext(1), nil, 0.2)
	require.ErrorIs(t, err, ml.ErrDataLoad)
}

func TestTrain_MetricsWithinBounds(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		model, metrics, err := ml.Train(ml.NewContext(seed), sampleCorpus(), 0.25)
		require.NoError(t, err)
		require.NotNil(t, model)

		for name, v := range map[string]float64{
			"accuracy":  metrics.Accuracy,
			"auc":       metrics.AUC,
			"f1":        metrics.F1,
			"precision": metrics.Precision,
			"recall":    metrics.Recall,
		} {
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.LessOrEqual(t, v, 1.0, name)
		}
		assert.Equal(t, 12, metrics.TrainCount)
		assert.Equal(t, 4, metrics.TestCount)
		assert.Equal(t, "test", metrics.EvaluatedOn)
	}
}

func TestTrain_NoTestPartitionEvaluatesOnTrain(t *testing.T) {
	_, metrics, err := ml.Train(ml.NewContext(1), sampleCorpus(), 0)
	require.NoError(t, err)

	assert.Equal(t, "train", metrics.EvaluatedOn)
	assert.Equal(t, 0, metrics.TestCount)
	assert.GreaterOrEqual(t, metrics.Accuracy, 0.9)
}

func TestModel_PredictKeywordScenario(t *testing.T) {
	model, _, err := ml.Train(ml.NewContext(1), sampleCorpus(), 0)
	require.NoError(t, err)

	great := model.Predict("great")
	assert.True(t, great.Prediction)
	assert.Greater(t, great.Probability, 0.5)

	terrible := model.Predict("terrible")
	assert.False(t, terrible.Prediction)
	assert.Less(t, terrible.Probability, 0.5)
}

func TestModel_HeldOutKeywordRoundTrip(t *testing.T) {
	var corpus []models.SentimentRecord
	fillers := []string{"the soup", "our table", "the waiter", "this menu", "that visit", "my order"}
	for _, f := range fillers {
		corpus = append(corpus,
			models.SentimentRecord{Text: f + " zephyr", Label: true},
			models.SentimentRecord{Text: f + " again", Label: false})
	}

	model, _, err := ml.Train(ml.NewContext(7), corpus, 0)
	require.NoError(t, err)

	w, ok := model.Weight("w:zephyr")
	require.True(t, ok)
	assert.Greater(t, w, 0.0)

	got := model.Predict("a brand new zephyr")
	assert.True(t, got.Prediction)
	assert.Greater(t, got.Probability, 0.5)
}

func TestModel_PredictIsDeterministic(t *testing.T) {
	model, _, err := ml.Train(ml.NewContext(3), sampleCorpus(), 0.2)
	require.NoError(t, err)

	a := model.Predict("the staff was great")
	b := model.Predict("the staff was great")
	assert.Equal(t, a, b)

	again, _, err := ml.Train(ml.NewContext(3), sampleCorpus(), 0.2)
	require.NoError(t, err)
	assert.Equal(t, model.Fingerprint(), again.Fingerprint())
	assert.Equal(t, a, again.Predict("the staff was great"))
}

func TestModel_PredictEmptyText(t *testing.T) {
	model, _, err := ml.Train(ml.NewContext(1), sampleCorpus(), 0)
	require.NoError(t, err)

	got := model.Predict("")
	assert.GreaterOrEqual(t, got.Probability, 0.0)
	assert.LessOrEqual(t, got.Probability, 1.0)
	assert.Equal(t, ml.Sigmoid(got.Score), got.Probability)
}

func TestModel_PredictConcurrentCallers(t *testing.T) {
	model, _, err := ml.Train(ml.NewContext(1), sampleCorpus(), 0)
	require.NoError(t, err)

	inputs := []string{"**great** food", "# terrible service", "[awful](https://example.com) place", ""}
	want := make([]float64, len(inputs))
	for i, text := range inputs {
		want[i] = model.Predict(text).Probability
	}

	var wg sync.WaitGroup
	results := make([][]float64, 16)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				for _, text := range inputs {
					results[g] = append(results[g], model.Predict(text).Probability)
				}
			}
		}(g)
	}
	wg.Wait()

	for _, got := range results {
		for i, p := range got {
			assert.Equal(t, want[i%len(inputs)], p)
		}
	}
}

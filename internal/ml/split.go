package ml

import (
	"fmt"
	"math"

	"github.com/spacesedan/sentiserve/internal/models"
)

// TrainTestSplit shuffles examples with the context seed and holds out
// floor(n*testFraction) of them. The train partition always keeps at least one example.
func TrainTestSplit(ctx Context, examples []models.SentimentRecord, testFraction float64) (train, test []models.SentimentRecord, err error) {
	if len(examples) == 0 {
		return nil, nil, &DataLoadError{Err: fmt.Errorf("no examples to split")}
	}
	if testFraction < 0 || testFraction >= 1 || math.IsNaN(testFraction) {
		return nil, nil, &DataLoadError{Err: fmt.Errorf("test fraction %v outside [0,1)", testFraction)}
	}

	n := len(examples)
	testCount := int(math.Floor(float64(n) * testFraction))
	if testCount >= n {
		testCount = n - 1
	}

	perm := ctx.rng().Perm(n)
	test = make([]models.SentimentRecord, 0, testCount)
	train = make([]models.SentimentRecord, 0, n-testCount)
	for i, idx := range perm {
		if i < testCount {
			test = append(test, examples[idx])
		} else {
			train = append(train, examples[idx])
		}
	}
	return train, test, nil
}

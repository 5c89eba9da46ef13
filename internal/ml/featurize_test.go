package ml_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiserve/internal/ml"
)

func TestFitFeaturizer_VocabularyIsSorted(t *testing.T) {
	opts := ml.FeaturizerOptions{WordBigrams: true}
	f := ml.FitFeaturizer(opts, []string{"great food", "bad food"})

	assert.Equal(t, []string{"b:bad|food", "b:great|food", "w:bad", "w:food", "w:great"}, f.Terms())
	assert.Equal(t, 5, f.Size())
}

func TestFitFeaturizer_MinTermCount(t *testing.T) {
	opts := ml.FeaturizerOptions{MinTermCount: 2}
	f := ml.FitFeaturizer(opts, []string{"great food", "bad food"})

	assert.Equal(t, []string{"w:food"}, f.Terms())
}

func TestTransform_NormalizedAndDeterministic(t *testing.T) {
	f := ml.FitFeaturizer(ml.NewContext(1).Featurizer, []string{"great food", "terrible service"})

	v1 := f.Transform("Great food, great FOOD")
	v2 := f.Transform("Great food, great FOOD")
	assert.Equal(t, v1, v2)
	assert.InDelta(t, 1.0, math.Sqrt(v1.SquaredNorm()), 1e-9)

	for i := 1; i < v1.Len(); i++ {
		require.Less(t, v1.Indices[i-1], v1.Indices[i])
	}
}

func TestTransform_UnknownAndEmpty(t *testing.T) {
	f := ml.FitFeaturizer(ml.FeaturizerOptions{}, []string{"great food"})

	assert.Equal(t, 0, f.Transform("").Len())
	assert.Equal(t, 0, f.Transform("zzz qqq").Len())
	assert.Equal(t, 1, f.Transform("great zzz").Len())
}

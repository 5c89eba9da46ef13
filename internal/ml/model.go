package ml

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/spacesedan/sentiserve/internal/models"
)

// Model is a fitted featurizer plus linear classifier. It is never modified
// after Fit returns, so one instance can serve any number of goroutines.
type Model struct {
	featurizer  *TextFeaturizer
	weights     LinearWeights
	fingerprint string
	trainedAt   time.Time
}

func newModel(featurizer *TextFeaturizer, weights LinearWeights) *Model {
	return &Model{
		featurizer:  featurizer,
		weights:     weights,
		fingerprint: fingerprint(featurizer.terms, weights),
		trainedAt:   time.Now().UTC(),
	}
}

// Predict scores text. Empty text only sees the bias term.
func (m *Model) Predict(text string) models.SentimentPrediction {
	score := m.weights.Score(m.featurizer.Transform(text))
	probability := Sigmoid(score)
	return models.SentimentPrediction{
		Prediction:  probability > 0.5,
		Probability: probability,
		Score:       score,
	}
}

func (m *Model) Fingerprint() string  { return m.fingerprint }
func (m *Model) VocabularySize() int  { return m.featurizer.Size() }
func (m *Model) TrainedAt() time.Time { return m.trainedAt }

// Weight returns the learned weight of a vocabulary term such as "w:great".
func (m *Model) Weight(term string) (float64, bool) {
	idx, ok := m.featurizer.vocabulary[term]
	if !ok {
		return 0, false
	}
	return m.weights.Weights[idx], true
}

func fingerprint(terms []string, weights LinearWeights) string {
	h := sha256.New()
	var buf [8]byte
	for i, term := range terms {
		h.Write([]byte(term))
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(weights.Weights[i]))
		h.Write(buf[:])
	}
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(weights.Bias))
	h.Write(buf[:])
	return hex.EncodeToString(h.Sum(nil))[:16]
}

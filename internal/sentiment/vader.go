package sentiment

import (
	"github.com/jonreiter/govader"

	"github.com/spacesedan/sentiserve/internal/ml"
)

const (
	VADER_POSITIVE_THRESHOLD = 0.20
	VADER_NEGATIVE_THRESHOLD = -0.20
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

// AnalyzeWithVADER scores text with the VADER lexicon. It is a baseline to
// compare the trained model against, not part of the prediction path.
func AnalyzeWithVADER(text string) (float64, string) {
	plainText := ml.ConvertMarkdownToText(text)

	sentiment := analyzer.PolarityScores(plainText)
	score := sentiment.Compound

	var label string
	if score >= VADER_POSITIVE_THRESHOLD {
		label = "positive"
	} else if score <= VADER_NEGATIVE_THRESHOLD {
		label = "negative"
	} else {
		label = "neutral"
	}

	return score, label
}

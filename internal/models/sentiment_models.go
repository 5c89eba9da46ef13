package models

// SentimentRecord is one labeled example read from the training source.
type SentimentRecord struct {
	Text  string `json:"text"`
	Label bool   `json:"label"`
}

// SentimentPrediction is the outcome of scoring a single text.
type SentimentPrediction struct {
	Prediction  bool    `json:"prediction"`
	Probability float64 `json:"probability"`
	Score       float64 `json:"score"`
}

// Label maps the boolean class onto the names used by the HTTP API.
func (p SentimentPrediction) Label() string {
	if p.Prediction {
		return "Positive"
	}
	return "Negative"
}

type PredictResponse struct {
	Sentiment   string  `json:"Sentiment"`
	Probability float64 `json:"Probability"`
}

type CompareResponse struct {
	Sentiment   string  `json:"Sentiment"`
	Probability float64 `json:"Probability"`
	VaderScore  float64 `json:"VaderScore"`
	VaderLabel  string  `json:"VaderLabel"`
}

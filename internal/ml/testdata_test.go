package ml_test

import (
	"github.com/spacesedan/sentiserve/internal/models"
)

var positivePhrases = []string{
	"great product",
	"great service",
	"great food and friendly staff",
	"really great value",
	"the staff was great",
	"great experience overall",
	"a great place to eat",
	"great prices, great people",
}

var negativePhrases = []string{
	"terrible service",
	"awful product",
	"bad food and rude staff",
	"terrible value",
	"the staff was horrible",
	"bad experience overall",
	"an awful place to eat",
	"slow and terrible",
}

func sampleCorpus() []models.SentimentRecord {
	records := make([]models.SentimentRecord, 0, len(positivePhrases)+len(negativePhrases))
	for i := range positivePhrases {
		records = append(records,
			models.SentimentRecord{Text: positivePhrases[i], Label: true},
			models.SentimentRecord{Text: negativePhrases[i], Label: false})
	}
	return records
}

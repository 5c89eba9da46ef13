package kafka_client

import "time"

const (
	KAFKA_TOPIC_PREDICTIONS = "sentiment-predictions" // every prediction served by the API and page
)

const (
	FLUSH_TIMEOUT_MS    = 5000
	TRANSACTIONAL_ID    = "sentiserve-producer-1"
	TRANSACTION_TIMEOUT = 10 * time.Second
)

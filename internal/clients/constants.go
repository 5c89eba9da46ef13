package clients

import "time"

const (
	MAX_RETRIES          = 3
	RETRY_DELAY          = 250 * time.Millisecond
	PREDICTION_CACHE_TTL = 24 * time.Hour
)

package models

import "time"

type EvaluationMetrics struct {
	Accuracy    float64 `json:"accuracy" dynamodbav:"accuracy"`
	AUC         float64 `json:"auc" dynamodbav:"auc"`
	F1          float64 `json:"f1" dynamodbav:"f1"`
	Precision   float64 `json:"precision" dynamodbav:"precision"`
	Recall      float64 `json:"recall" dynamodbav:"recall"`
	LogLoss     float64 `json:"log_loss" dynamodbav:"log_loss"`
	TrainCount  int     `json:"train_count" dynamodbav:"train_count"`
	TestCount   int     `json:"test_count" dynamodbav:"test_count"`
	EvaluatedOn string  `json:"evaluated_on" dynamodbav:"evaluated_on"`
}

// TrainingRun records a completed fit so runs can be compared over time.
type TrainingRun struct {
	RunID          string            `json:"run_id" dynamodbav:"run_id"`
	DataSource     string            `json:"data_source" dynamodbav:"data_source"`
	Fingerprint    string            `json:"fingerprint" dynamodbav:"fingerprint"`
	VocabularySize int               `json:"vocabulary_size" dynamodbav:"vocabulary_size"`
	Metrics        EvaluationMetrics `json:"metrics" dynamodbav:"metrics"`
	StartedAt      time.Time         `json:"started_at" dynamodbav:"started_at"`
	Duration       time.Duration     `json:"duration" dynamodbav:"duration_ns"`
}

// PredictionEvent is emitted for every prediction served.
type PredictionEvent struct {
	EventID     string    `json:"event_id"`
	Fingerprint string    `json:"fingerprint"`
	Text        string    `json:"text"`
	Prediction  bool      `json:"prediction"`
	Probability float64   `json:"probability"`
	Source      string    `json:"source"`
	Timestamp   time.Time `json:"timestamp"`
}

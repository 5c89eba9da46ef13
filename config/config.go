package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DATA_SOURCE_FILE     = "file"
	DATA_SOURCE_POSTGRES = "postgres"

	DEFAULT_DATA_PATH = "data/commentdata.txt"
)

type Config struct {
	Env      string
	HTTPAddr string
	LogLevel slog.Level

	DataSource   string
	DataPath     string
	DatabaseURL  string
	TestFraction float64
	Seed         int64
	L2           float64
	MaxIter      int
	TrainTimeout time.Duration

	AntiforgeryKey string

	ValkeyAddr     string
	ValkeyPassword string
	ValkeyTLS      bool

	KafkaBroker           string
	KafkaPredictionsTopic string

	AWSEndpoint   string
	AWSRegion     string
	TrainingTable string
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Env:      AppEnv(),
		HTTPAddr: getEnv("HTTP_ADDR", ":5139"),
		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),

		DataSource:   strings.ToLower(getEnv("SENTIMENT_DATA_SOURCE", DATA_SOURCE_FILE)),
		DataPath:     getEnv("SENTIMENT_DATA_PATH", DEFAULT_DATA_PATH),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		TestFraction: getEnvFloat("SENTIMENT_TEST_FRACTION", 0.2),
		Seed:         int64(getEnvInt("SENTIMENT_SEED", 1)),
		L2:           getEnvFloat("SENTIMENT_L2", 0.01),
		MaxIter:      getEnvInt("SENTIMENT_MAX_ITER", 100),
		TrainTimeout: getEnvDuration("SENTIMENT_TRAIN_TIMEOUT", 2*time.Minute),

		AntiforgeryKey: getEnv("ANTIFORGERY_KEY", ""),

		ValkeyAddr:     getEnv("VALKEY_INIT_ADDRESS", ""),
		ValkeyPassword: getEnv("VALKEY_PASSWORD", ""),
		ValkeyTLS:      getEnv("VALKEY_TLS", "") == "true",

		KafkaBroker:           getEnv("KAFKA_BROKER", ""),
		KafkaPredictionsTopic: getEnv("KAFKA_TOPIC_PREDICTIONS", "sentiment-predictions"),

		AWSEndpoint:   getEnv("AWS_ENDPOINT", ""),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		TrainingTable: getEnv("DYNAMODB_TRAINING_TABLE", ""),
	}
}

func (c Config) IsDev() bool { return c.Env == "dev" }

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

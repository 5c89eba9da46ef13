package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/sentiserve/internal/models"
)

type ValkeyConfig struct {
	Addr     string
	Password string
	TLS      bool
	TTL      time.Duration
}

// ValkeyClient caches predictions in Valkey. It satisfies sentiment.Cache.
type ValkeyClient struct {
	Client valkey.Client
	cfg    ValkeyConfig
	mu     sync.RWMutex
}

func NewValkeyClient(cfg ValkeyConfig) (*ValkeyClient, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = PREDICTION_CACHE_TTL
	}

	client, err := connectValkey(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("addr", cfg.Addr))
	return &ValkeyClient{Client: client, cfg: cfg}, nil
}

func connectValkey(cfg ValkeyConfig) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.Addr},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.Client
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connectValkey(vc.cfg)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed",
			slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) Close() {
	vc.client().Close()
}

// Ping reports whether Valkey answers within the context deadline.
func (vc *ValkeyClient) Ping(ctx context.Context) bool {
	c := vc.client()
	err := c.Do(ctx, c.B().Ping().Build()).Error()
	if isConnectionError(err) {
		vc.recreateClient()
	}
	return err == nil
}

func (vc *ValkeyClient) GetPrediction(ctx context.Context, key string) (models.SentimentPrediction, bool, error) {
	res := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Get().Key(key).Build()
	}, MAX_RETRIES)

	raw, err := res.AsBytes()
	if valkey.IsValkeyNil(err) {
		return models.SentimentPrediction{}, false, nil
	}
	if err != nil {
		return models.SentimentPrediction{}, false, err
	}

	prediction, err := DecodePrediction(raw)
	if err != nil {
		return models.SentimentPrediction{}, false, err
	}
	return prediction, true, nil
}

func (vc *ValkeyClient) SetPrediction(ctx context.Context, key string, prediction models.SentimentPrediction) error {
	raw, err := EncodePrediction(prediction)
	if err != nil {
		return err
	}

	res := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Set().Key(key).Value(valkey.BinaryString(raw)).ExSeconds(int64(vc.cfg.TTL.Seconds())).Build()
	}, MAX_RETRIES)
	return res.Error()
}

// DoWithRetry builds the command against the current client on every attempt
// so a recreated connection is picked up between retries.
func (vc *ValkeyClient) DoWithRetry(ctx context.Context, build func(valkey.Client) valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		c := vc.client()
		result = c.Do(ctx, build(c))
		err := result.Error()
		if err == nil || valkey.IsValkeyNil(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		if isConnectionError(err) {
			vc.recreateClient()
		}

		select {
		case <-ctx.Done():
			return result
		case <-time.After(RETRY_DELAY):
		}
	}

	return result
}

func EncodePrediction(p models.SentimentPrediction) ([]byte, error) {
	return json.Marshal(p)
}

func DecodePrediction(raw []byte) (models.SentimentPrediction, error) {
	var p models.SentimentPrediction
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("[ValkeyClient] invalid cached prediction: %w", err)
	}
	return p, nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}

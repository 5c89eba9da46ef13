package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/spacesedan/sentiserve/internal/models"
	"github.com/spacesedan/sentiserve/internal/utils"
)

const (
	BATCH_SIZE     = 50
	FLUSH_INTERVAL = 5 * time.Second
	MAX_RETRIES    = 3
	RETRY_DELAY    = 2 * time.Second
	MAX_BUFFERED   = 10 * BATCH_SIZE
)

// BatchSender delivers a batch of events, e.g. the Kafka producer.
type BatchSender interface {
	PublishBatch(ctx context.Context, events []models.PredictionEvent) error
}

// Publisher buffers prediction events and hands them to a BatchSender from a
// single background goroutine, either on a timer or once a batch fills up.
type Publisher struct {
	sender     BatchSender
	buffer     *utils.BatchBuffer[models.PredictionEvent]
	interval   time.Duration
	retryDelay time.Duration
	flushCh    chan struct{}
}

func NewPublisher(sender BatchSender, interval time.Duration) *Publisher {
	if interval <= 0 {
		interval = FLUSH_INTERVAL
	}
	return &Publisher{
		sender:     sender,
		buffer:     utils.NewBatchBuffer[models.PredictionEvent](BATCH_SIZE),
		interval:   interval,
		retryDelay: RETRY_DELAY,
		flushCh:    make(chan struct{}, 1),
	}
}

// Publish queues an event without blocking the caller.
func (p *Publisher) Publish(event models.PredictionEvent) {
	if p.buffer.Size() >= MAX_BUFFERED {
		slog.Warn("[EventPublisher] Buffer full, dropping event",
			slog.String("event_id", event.EventID))
		return
	}
	if p.buffer.Add(event) {
		select {
		case p.flushCh <- struct{}{}:
		default:
		}
	}
}

// Pending is the number of events waiting to be sent.
func (p *Publisher) Pending() int { return p.buffer.Size() }

// Run flushes until ctx is cancelled, then makes one last attempt with a
// short deadline so buffered events are not silently lost on shutdown.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := p.Flush(shutdownCtx); err != nil {
				slog.Error("[EventPublisher] Final flush failed",
					slog.Int("dropped", p.Pending()),
					slog.String("error", err.Error()))
			}
			cancel()
			return
		case <-ticker.C:
			p.flushLogged(ctx)
		case <-p.flushCh:
			p.flushLogged(ctx)
		}
	}
}

func (p *Publisher) flushLogged(ctx context.Context) {
	if err := p.Flush(ctx); err != nil {
		slog.Warn("[EventPublisher] Flush failed, events requeued",
			slog.Int("pending", p.Pending()),
			slog.String("error", err.Error()))
	}
}

// Flush sends everything buffered, retrying a few times. A batch that still
// cannot be delivered is put back in the buffer.
func (p *Publisher) Flush(ctx context.Context) error {
	batch := p.buffer.GetAndClear()
	if len(batch) == 0 {
		return nil
	}

	var err error
	for i := 0; i < MAX_RETRIES; i++ {
		err = p.sender.PublishBatch(ctx, batch)
		if err == nil {
			slog.Debug("[EventPublisher] Batch published",
				slog.Int("batch_size", len(batch)))
			return nil
		}
		slog.Warn("[EventPublisher] Batch publishing failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			p.buffer.Requeue(batch)
			return ctx.Err()
		case <-time.After(p.retryDelay):
		}
	}

	p.buffer.Requeue(batch)
	return err
}

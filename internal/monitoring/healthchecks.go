package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15

// Pinger reports whether a backing dependency answered.
type Pinger interface {
	Ping(ctx context.Context) bool
}

// MonitorCacheHealth pings the prediction cache every HEALTHCHECK_TIMER
// seconds and records the outcome in healthy.
func MonitorCacheHealth(ctx context.Context, cache Pinger, healthy *atomic.Bool) {
	monitor(ctx, "Cache", cache, time.Second*HEALTHCHECK_TIMER, healthy)
}

func monitor(ctx context.Context, name string, p Pinger, interval time.Duration, healthy *atomic.Bool) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval/2)
		defer cancel()

		isHealthy := p.Ping(pingCtx)
		if healthy.Swap(isHealthy) != isHealthy {
			if isHealthy {
				slog.Info("[HealthCheck] Dependency recovered", "dependency", name)
			} else {
				slog.Warn("[HealthCheck] Dependency is unhealthy", "dependency", name)
			}
		}
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

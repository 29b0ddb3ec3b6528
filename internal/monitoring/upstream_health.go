package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// UpstreamMonitor remembers whether the last upstream probe succeeded.
type UpstreamMonitor struct {
	checker  HealthChecker
	interval time.Duration
	healthy  atomic.Bool
}

func NewUpstreamMonitor(checker HealthChecker, interval time.Duration) *UpstreamMonitor {
	return &UpstreamMonitor{
		checker:  checker,
		interval: interval,
	}
}

func (m *UpstreamMonitor) Healthy() bool {
	return m.healthy.Load()
}

// Run probes once immediately, then every interval, until ctx is done.
func (m *UpstreamMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *UpstreamMonitor) probe(ctx context.Context) {
	isHealthy := m.checker.HealthCheck(ctx)
	was := m.healthy.Swap(isHealthy)

	switch {
	case !isHealthy && was:
		slog.Warn("[HealthCheck] Upstream became unhealthy")
	case !isHealthy:
		slog.Debug("[HealthCheck] Upstream is unhealthy")
	case !was:
		slog.Info("[HealthCheck] Upstream is healthy")
	}
}

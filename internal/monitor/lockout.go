// Package monitor samples the login throttle state into Prometheus.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

type lockCounter interface {
	CountAtLeast(ctx context.Context, pattern string, limit int) (int, error)
}

// LockoutSampler periodically counts attempt records that have reached the
// limit and publishes the number on a gauge.
type LockoutSampler struct {
	counter  lockCounter
	pattern  string
	limit    int
	schedule cron.Schedule
	gauge    prometheus.Gauge
	logger   *slog.Logger
}

// NewLockoutSampler accepts any standard cron expression or descriptor
// ("@every 1m", "*/5 * * * *").
func NewLockoutSampler(counter lockCounter, pattern string, limit int, spec string, gauge prometheus.Gauge, logger *slog.Logger) (*LockoutSampler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse sample schedule %q: %w", spec, err)
	}
	return &LockoutSampler{
		counter:  counter,
		pattern:  pattern,
		limit:    limit,
		schedule: schedule,
		gauge:    gauge,
		logger:   logger.With("component", "lockout_sampler"),
	}, nil
}

// Start samples once, then on every schedule tick until ctx is done.
func (s *LockoutSampler) Start(ctx context.Context) {
	s.logger.Info("lockout sampler started", "pattern", s.pattern)

	s.sample(ctx)

	for {
		timer := time.NewTimer(time.Until(s.schedule.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("lockout sampler shut down")
			return
		case <-timer.C:
			s.sample(ctx)
		}
	}
}

func (s *LockoutSampler) sample(ctx context.Context) {
	n, err := s.counter.CountAtLeast(ctx, s.pattern, s.limit)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.ErrorContext(ctx, "sample locked emails", "error", err)
		}
		return
	}
	s.gauge.Set(float64(n))
	if n > 0 {
		s.logger.DebugContext(ctx, "locked emails sampled", "count", n)
	}
}

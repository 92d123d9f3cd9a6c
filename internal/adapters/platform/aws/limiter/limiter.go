package limiter

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/ports"
	"golang.org/x/time/rate"
)

const (
	DefaultRPS = 20
	minRPS     = 1
	maxRPS     = 100
)

// Limiter throttles AWS API calls shared by all handlers of a provider.
type Limiter struct {
	limiter *rate.Limiter
	rps     int
}

// New returns a limiter allowing rps calls per second. Values outside the
// supported range fall back to DefaultRPS.
func New(rps int, logger ports.Logger) *Limiter {
	limit := DefaultRPS
	if rps >= minRPS && rps <= maxRPS {
		limit = rps
	} else if rps != 0 && logger != nil {
		logger.Warnf(context.Background(), "Invalid AWS API RPS configured (%d), using default %d RPS. Valid range: %d-%d.", rps, DefaultRPS, minRPS, maxRPS)
	}
	if logger != nil {
		logger.Debugf(context.Background(), "AWS API rate limiter: %d RPS", limit)
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(limit), limit), rps: limit}
}

func (l *Limiter) RPS() int { return l.rps }

func (l *Limiter) Wait(ctx context.Context, logger ports.Logger) error {
	if err := l.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil && logger != nil {
			logger.Warnf(ctx, "Error waiting for AWS API rate limiter: %v", err)
		}
		return err
	}
	return nil
}

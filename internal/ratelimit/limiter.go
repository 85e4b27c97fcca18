// Package ratelimit paces outbound page fetches so a run never exceeds
// the request rate the operator configured for the target site.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer is the single suspension point between page fetches.
//
// Implementations block until the next fetch may proceed. The pause
// observes context cancellation, so a caller can abort a run mid-delay.
type Pacer interface {
	// Wait blocks until the next fetch is allowed or ctx is cancelled.
	Wait(ctx context.Context) error
}

// IntervalPacer enforces a fixed minimum interval between fetches using
// a token bucket with burst 1: the first Wait returns immediately, every
// later Wait blocks until the interval since the previous fetch elapsed.
type IntervalPacer struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewIntervalPacer creates a pacer with the given inter-fetch interval.
// A zero or negative interval never blocks.
func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &IntervalPacer{
		limiter:  rate.NewLimiter(limit, 1),
		interval: interval,
	}
}

// Wait blocks until a fetch token is available
func (p *IntervalPacer) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return p.limiter.Wait(ctx)
}

// Interval returns the configured inter-fetch interval.
func (p *IntervalPacer) Interval() time.Duration {
	return p.interval
}

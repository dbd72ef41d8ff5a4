// Package ratelimit bounds outbound remote-model calls with a token bucket.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
)

// Limiter is a token bucket: capacity Burst, refilled at a fixed rate. Each
// outbound call consumes one token. Callers without a token wait up to
// maxWait, then are rejected as rate limited. Waiters are served roughly in
// arrival order; rate.Limiter does not guarantee strict FIFO.
type Limiter struct {
	bucket  *rate.Limiter
	maxWait time.Duration
}

// New creates a limiter from settings.
func New(cfg domain.RateLimitSettings) *Limiter {
	return &Limiter{
		bucket:  rate.NewLimiter(rate.Limit(cfg.RefillPerSecond), cfg.Burst),
		maxWait: cfg.MaxWait,
	}
}

// Acquire consumes one token, blocking until one is available or the bounded
// wait elapses. Returns domain.ErrRateLimited when the wait bound would be
// exceeded, or the context error when the caller is cancelled first.
//
// rate.Limiter.Wait fails fast when the deadline cannot be met, so a caller
// that would wait past maxWait is rejected immediately instead of parking.
func (l *Limiter) Acquire(ctx context.Context) error {
	waitCtx := ctx
	if l.maxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.maxWait)
		defer cancel()
	}

	if err := l.bucket.Wait(waitCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: no token within %s", domain.ErrRateLimited, l.maxWait)
	}
	return nil
}

// Allow consumes a token without waiting, reporting whether one was
// available. Used where blocking is not acceptable.
func (l *Limiter) Allow() bool {
	return l.bucket.Allow()
}

// Tokens returns the number of tokens currently available.
func (l *Limiter) Tokens() float64 {
	return l.bucket.Tokens()
}

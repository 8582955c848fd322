// Package ratelimit paces a batch run: callers wait on a Limiter once
// before opening each input, so a directory of large files doesn't
// starve I/O. Tokens within one input are not paced.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces successive Wait calls at a fixed rate per second.
type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or negative limit for no throttling.
func New(tokensPerSecond float64) *Limiter {
	if tokensPerSecond <= 0 {
		return &Limiter{
			limiter: rate.NewLimiter(rate.Inf, 1),
		}
	}

	// Burst of 1: the first token is free, subsequent ones pace at the
	// configured rate.
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(tokensPerSecond), 1),
	}
}

// Wait blocks until the next pull is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow is non-blocking and useful for checking throttling without pulling.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Reserve is for advanced pacing scenarios that need to inspect the
// delay before committing to it.
func (l *Limiter) Reserve() *rate.Reservation {
	return l.limiter.Reserve()
}

// SetLimit can be called at runtime, e.g. to slow down after a batch run
// starts falling behind on a slow input.
func (l *Limiter) SetLimit(tokensPerSecond float64) {
	if tokensPerSecond <= 0 {
		l.limiter.SetLimit(rate.Inf)
	} else {
		l.limiter.SetLimit(rate.Limit(tokensPerSecond))
	}
}

// Limit reports the current tokens/sec ceiling, or 0 if unthrottled.
func (l *Limiter) Limit() float64 {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}

package fetch

import (
	"context"
	"math/rand"
	"time"
)

// Limiter enforces a minimum inter-request delay plus random jitter,
// measured from the end of the previous request. Politeness assumes a
// single in-flight request, so there is no internal locking.
type Limiter struct {
	minDelay time.Duration
	jitter   time.Duration
	lastDone time.Time
}

// NewLimiter creates a limiter with the given minimum delay and jitter
// bound. Jitter is drawn uniformly from [0, jitter) per wait.
func NewLimiter(minDelay, jitter time.Duration) *Limiter {
	return &Limiter{minDelay: minDelay, jitter: jitter}
}

// Wait blocks until enough time has passed since the previous request
// finished. Returns early with the context's error on cancellation.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.lastDone.IsZero() {
		return nil
	}
	delay := l.minDelay
	if l.jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(l.jitter)))
	}
	remaining := delay - time.Since(l.lastDone)
	if remaining <= 0 {
		return nil
	}
	return sleep(ctx, remaining)
}

// Done marks the end of a request; the next Wait measures from this point.
func (l *Limiter) Done() {
	l.lastDone = time.Now()
}

// sleep is a context-aware time.Sleep.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

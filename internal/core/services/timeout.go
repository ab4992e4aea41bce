package services

import (
	"context"
	"time"
)

// withTimeout races fn against a deadline and returns fallback when fn
// does not settle in time. The slow call is not cancelled; it keeps
// running with the parent context and its eventual result is discarded
// into the buffered channel.
func withTimeout[T any](ctx context.Context, d time.Duration, fallback T, fn func(context.Context) T) T {
	ch := make(chan T, 1)
	go func() { ch <- fn(ctx) }()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case v := <-ch:
		return v
	case <-timer.C:
		return fallback
	case <-ctx.Done():
		return fallback
	}
}

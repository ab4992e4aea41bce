package guidance

import (
	"context"
	"time"
)

// within races fn against a deadline and reports whether it finished in
// time. The losing call is not force-terminated: it keeps the parent
// context and drains its result into the buffered channel, where it is
// discarded. Callers must tolerate late-arriving work being thrown away.
func within[T any](ctx context.Context, d time.Duration, fn func(context.Context) T) (T, bool) {
	ch := make(chan T, 1)
	go func() { ch <- fn(ctx) }()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case v := <-ch:
		return v, true
	case <-timer.C:
	case <-ctx.Done():
	}

	var zero T
	return zero, false
}

package runtime

import (
	"context"
	"time"
)

// retryInterval is how long an effect waits before re-posting a mutation the
// loop rejected because its queue was full.
const retryInterval = 5 * time.Millisecond

// Effect is background work that feeds mutations back to a Loop. Run owns its
// goroutine until ctx is cancelled and must only touch state through post.
type Effect struct {
	Run func(ctx context.Context, post PostFunc)
}

// After delivers fn once delay has elapsed. A non-positive delay delivers
// immediately.
func After(delay time.Duration, fn Mutation) Effect {
	return Effect{
		Run: func(ctx context.Context, post PostFunc) {
			if fn == nil || post == nil {
				return
			}
			if !sleep(ctx, delay) {
				return
			}
			deliver(ctx, post, fn)
		},
	}
}

// Every calls fn on each tick and delivers the mutation it returns. A nil
// mutation skips the tick. Ticks that arrive while a delivery is being
// retried are dropped rather than queued.
func Every(interval time.Duration, fn func(time.Time) Mutation) Effect {
	return Effect{
		Run: func(ctx context.Context, post PostFunc) {
			if interval <= 0 || fn == nil || post == nil {
				return
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case now := <-ticker.C:
					m := fn(now)
					if m == nil {
						continue
					}
					if !deliver(ctx, post, m) {
						return
					}
				}
			}
		},
	}
}

// deliver posts m until the loop accepts it. It reports false if ctx ends
// first, in which case m was never applied.
func deliver(ctx context.Context, post PostFunc, m Mutation) bool {
	for !post(m) {
		if !sleep(ctx, retryInterval) {
			return false
		}
	}
	return true
}

// sleep waits for d or for ctx, reporting whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

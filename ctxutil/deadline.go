package ctxutil

import (
	"context"
	"time"
)

// WithDelayedTimeout returns a context that outlives parent cancellation
// by delay: it stays alive while parent is alive, and once parent is done
// it is canceled delay later. Values still flow from parent.
func WithDelayedTimeout(parent context.Context, delay time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	stop := context.AfterFunc(parent, func() {
		time.AfterFunc(delay, cancel)
	})
	return ctx, func() {
		stop()
		cancel()
	}
}

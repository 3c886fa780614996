package throttle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Throttle runs at most one submitted function per interval and drops the
// rest. It keeps periodic progress output readable during bulk operations
// without slowing the hot path down.
type Throttle struct {
	intervalTicker *time.Ticker
	spent          atomic.Bool
	runLock        *sync.Mutex
	cancelTicker   context.CancelFunc
	done           chan struct{}
}

func New(ctx context.Context, interval time.Duration) *Throttle {
	ctx, cancel := context.WithCancel(ctx)
	th := &Throttle{
		intervalTicker: time.NewTicker(interval),
		spent:          atomic.Bool{},
		runLock:        &sync.Mutex{},
		cancelTicker:   cancel,
		done:           make(chan struct{}),
	}

	go th.runTicker(ctx)
	return th
}

func (t *Throttle) runTicker(ctx context.Context) {
	defer func() { t.done <- struct{}{} }()
	for {
		select {
		case <-t.intervalTicker.C:
			t.spent.Store(false)
		case <-ctx.Done():
			t.intervalTicker.Stop()
			return
		}
	}
}

func (t *Throttle) Close() {
	t.cancelTicker()
	<-t.done
}

// Do runs fn if nothing has run during the current interval, and drops it
// otherwise. Reports whether fn ran.
func (t *Throttle) Do(fn func()) bool {
	t.runLock.Lock()
	defer t.runLock.Unlock()

	if t.spent.Load() {
		return false
	}
	fn()
	t.spent.Store(true)
	return true
}

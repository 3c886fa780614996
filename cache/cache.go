package cache

import (
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

// Results is a TTL-bounded LRU cache for computed result sets, keyed by the
// normalized input that produced them. Fetch is serialized so concurrent
// lookups of the same key compute at most once.
type Results[V any] struct {
	c   *ccache.Cache[V]
	ttl time.Duration
	mux sync.Mutex
}

func NewResults[V any](maxEntries int64, ttl time.Duration) *Results[V] {
	c := ccache.New(
		ccache.Configure[V]().
			MaxSize(maxEntries).
			GetsPerPromote(3).
			ItemsToPrune(8),
	)
	return &Results[V]{
		c:   c,
		ttl: ttl,
		mux: sync.Mutex{},
	}
}

func (r *Results[V]) Fetch(k string, fetch func() (V, error)) (V, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	item, err := r.c.Fetch(k, r.ttl, fetch)
	if nil != err {
		var zero V
		return zero, err
	}
	return item.Value(), nil
}

func (r *Results[V]) Clear() {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.c.Clear()
}

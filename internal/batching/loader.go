package batching

import (
	"context"
	"fmt"
	"sync"
)

// FetchFunc resolves a deduplicated batch of keys in one backend round
// trip. The returned map holds one value per resolved key; keys absent from
// the map surface as per-key errors to their waiters.
type FetchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Loader coalesces concurrent Load calls into batched fetches. Loads block
// until the owning Dispatcher dispatches the batch; keys are deduplicated
// and fetched in first-request order.
type Loader[K comparable, V any] struct {
	name  string
	d     *Dispatcher
	fetch FetchFunc[K, V]

	mu      sync.Mutex
	order   []K
	waiters map[K][]chan result[V]
	armed   bool
}

type result[V any] struct {
	value V
	err   error
}

func NewLoader[K comparable, V any](d *Dispatcher, name string, fetch FetchFunc[K, V]) *Loader[K, V] {
	return &Loader[K, V]{
		name:    name,
		d:       d,
		fetch:   fetch,
		waiters: make(map[K][]chan result[V]),
	}
}

// Load requests the value for key and blocks until the batch containing it
// has been dispatched or ctx is done. The first pending key arms the
// loader's flush with the dispatcher, which announces batch readiness. The
// wait is reported to the dispatcher as a parked load: the key is already
// registered by then, so once every running task is parked the accumulated
// batch is complete and safe to dispatch.
func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, error) {
	ch := make(chan result[V], 1)
	l.mu.Lock()
	if _, ok := l.waiters[key]; !ok {
		l.order = append(l.order, key)
	}
	l.waiters[key] = append(l.waiters[key], ch)
	arm := !l.armed
	l.armed = true
	l.mu.Unlock()

	if arm {
		l.d.enqueue(ctx, l.flush)
	}

	l.d.waiterParked()
	defer l.d.waiterResumed()
	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// flush fetches every key accumulated so far and delivers the results to
// all waiters. Keys registered after the snapshot re-arm the loader for the
// next dispatch.
func (l *Loader[K, V]) flush(ctx context.Context) {
	l.mu.Lock()
	keys := l.order
	waiters := l.waiters
	l.order = nil
	l.waiters = make(map[K][]chan result[V])
	l.armed = false
	l.mu.Unlock()

	if len(keys) == 0 {
		return
	}
	values, err := l.fetch(ctx, keys)
	for key, chans := range waiters {
		r := result[V]{err: err}
		if err == nil {
			if v, ok := values[key]; ok {
				r.value = v
			} else {
				r.err = fmt.Errorf("batch %q returned no value for key %v", l.name, key)
			}
		}
		for _, ch := range chans {
			ch <- r
		}
	}
}

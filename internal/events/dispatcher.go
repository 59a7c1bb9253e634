// Package events runs fire-and-forget work off the request path.
//
// Events with the same key run one at a time in publish order; events with
// different keys may run in parallel. Delivery is at-most-once and
// best-effort: a full shard drops the event, and events still queued when
// the dispatcher stops without draining are lost.
package events

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"neuron_backoffice/internal/metrics"

	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("events: queue full")
	ErrStopped   = errors.New("events: dispatcher stopped")
)

// Handler does the work of one event.
type Handler func(ctx context.Context)

type task struct {
	name    string
	key     string
	handler Handler
}

type Dispatcher struct {
	shards []chan task
	logger *zap.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewDispatcher(workers, queueSize int, logger *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		shards: make([]chan task, workers),
		logger: logger,
	}
	for i := range d.shards {
		d.shards[i] = make(chan task, queueSize)
	}
	return d
}

// Start launches one worker per shard. Handlers receive a context cancelled by Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.ctx, d.cancel = context.WithCancel(ctx)
	for i := range d.shards {
		d.wg.Add(1)
		go d.work(d.shards[i])
	}
}

// Publish queues the handler on the shard owning key.
func (d *Dispatcher) Publish(name, key string, handler Handler) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	select {
	case d.shards[d.shardFor(key)] <- task{name: name, key: key, handler: handler}:
		metrics.ObserveEvent(name, "queued")
		return nil
	default:
		metrics.ObserveEvent(name, "dropped")
		d.logger.Warn("event dropped, queue full", zap.String("event", name), zap.String("key", key))
		return ErrQueueFull
	}
}

// Stop refuses new events, lets workers finish what is queued, and waits
// for them until ctx expires; then in-flight handlers are cancelled.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	for _, shard := range d.shards {
		close(shard)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}

func (d *Dispatcher) shardFor(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.shards)))
}

func (d *Dispatcher) work(queue <-chan task) {
	defer d.wg.Done()
	for t := range queue {
		d.run(t)
	}
}

func (d *Dispatcher) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ObserveEvent(t.name, "panicked")
			d.logger.Error("event handler panicked",
				zap.String("event", t.name),
				zap.String("key", t.key),
				zap.Any("panic", r),
			)
		}
	}()
	t.handler(d.ctx)
	metrics.ObserveEvent(t.name, "processed")
}

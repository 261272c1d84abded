// File: fiber/pool_fiber.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PoolFiber is a single-consumer serializing executor tied to a shared
// api.Executor. Tasks for a given fiber run one at a time and in posting
// order, though not necessarily on the same worker goroutine (§4.B).

package fiber

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/momentics/topic-fabric/api"
)

// PoolFiber serializes callbacks for one session onto a shared worker
// pool. When its queue transitions empty→non-empty it claims a worker by
// submitting a drain task; when drained, the worker returns to the pool.
type PoolFiber struct {
	pool api.Executor

	mu      sync.Mutex
	q       *queue.Queue
	draining bool
	closed  bool
}

// NewPoolFiber binds a fiber to the given shared executor.
func NewPoolFiber(pool api.Executor) *PoolFiber {
	return &PoolFiber{pool: pool, q: queue.New()}
}

// Post enqueues task for this fiber, claiming a worker if the fiber is
// currently idle. Returns api.ErrClosed if the fiber is closed, and the
// shared pool's error (api.ErrExecutorRejected while it shuts down) if
// the pool has rejected the claim.
func (f *PoolFiber) Post(task api.Task) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return api.ErrClosed
	}
	f.q.Add(task)
	needClaim := !f.draining
	if needClaim {
		f.draining = true
	}
	f.mu.Unlock()

	if !needClaim {
		return nil
	}
	if err := f.pool.Submit(f.drain); err != nil {
		f.mu.Lock()
		f.draining = false
		f.mu.Unlock()
		return err
	}
	return nil
}

// drain runs on a borrowed worker goroutine, executing queued tasks in
// posting order until the queue empties, then releases the claim.
func (f *PoolFiber) drain() {
	for {
		f.mu.Lock()
		if f.q.Length() == 0 {
			f.draining = false
			f.mu.Unlock()
			return
		}
		task := f.q.Remove().(api.Task)
		f.mu.Unlock()
		task()
	}
}

// Close marks the fiber closed; further Post calls fail with
// api.ErrClosed. Already-queued tasks still run to completion.
func (f *PoolFiber) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// File: fiber/worker_pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WorkerPool is a bounded goroutine pool shared by every session's pool
// fiber. Adapted from the teacher's internal/concurrency/executor.go
// (github.com/eapache/queue-backed dispatch), fixed to guard the shared
// queue with a mutex/condvar — the teacher's version let multiple worker
// goroutines call Dequeue concurrently with no synchronization, which
// races on eapache/queue's internal ring buffer.
package fiber

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/momentics/topic-fabric/api"
	"github.com/sirupsen/logrus"
)

// WorkerPool implements api.Executor.
type WorkerPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	q       *queue.Queue
	closed  bool
	workers int
	wg      sync.WaitGroup
}

// NewWorkerPool starts n worker goroutines draining a shared FIFO queue.
func NewWorkerPool(n int) *WorkerPool {
	if n <= 0 {
		n = 1
	}
	p := &WorkerPool{q: queue.New(), workers: n}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Submit enqueues task for the next free worker. Returns
// api.ErrExecutorRejected once the pool is closing (§4.B).
func (p *WorkerPool) Submit(task api.Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return api.ErrExecutorRejected
	}
	p.q.Add(task)
	p.mu.Unlock()
	p.cond.Signal()
	return nil
}

func (p *WorkerPool) run() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.q.Length() == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.q.Length() == 0 && p.closed {
			p.mu.Unlock()
			return
		}
		task := p.q.Remove().(api.Task)
		p.mu.Unlock()

		func() {
			defer func() {
				if rec := recover(); rec != nil {
					logrus.WithField("component", "fiber.WorkerPool").Errorf("task panic: %v", rec)
				}
			}()
			task()
		}()
	}
}

// NumWorkers returns the configured worker count.
func (p *WorkerPool) NumWorkers() int { return p.workers }

// Close stops accepting new work and waits for workers to drain.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

// File: reactor/task_queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FIFO task queue backing Execute(). Grounded on the teacher's
// internal/concurrency/executor.go use of github.com/eapache/queue, but
// that queue type is not safe for unsynchronized concurrent access —
// here it is guarded by a mutex so producers on any goroutine and the
// single consumer (the reactor loop) never race, matching §5's rule that
// only the reactor goroutine drains tasks.

package reactor

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/momentics/topic-fabric/api"
)

type taskQueue struct {
	mu sync.Mutex
	q  *queue.Queue
}

func newTaskQueue() *taskQueue {
	return &taskQueue{q: queue.New()}
}

// push enqueues a task; tasks pushed by the same goroutine in sequence
// are dequeued in that order (§4.A ordering guarantee).
func (t *taskQueue) push(task api.Task) {
	t.mu.Lock()
	t.q.Add(task)
	t.mu.Unlock()
}

// drainAll removes and returns every pending task, in FIFO order, leaving
// the queue empty. Called once per reactor loop iteration.
func (t *taskQueue) drainAll() []api.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.q.Length()
	if n == 0 {
		return nil
	}
	tasks := make([]api.Task, 0, n)
	for t.q.Length() > 0 {
		tasks = append(tasks, t.q.Remove().(api.Task))
	}
	return tasks
}

// File: reactor/timer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Absolute-deadline timer heap backing Schedule/ScheduleWithFixedDelay.
// Grounded on the teacher's internal/concurrency/scheduler.go (a
// container/heap timer queue) and on gaio's timedHeap pattern for
// reusing heap.Interface over a slice of pointers.

package reactor

import (
	"container/heap"
	"sync"
	"time"

	"github.com/momentics/topic-fabric/api"
	"golang.org/x/sys/cpu"
)

// timerEntry is one pending (or recurring) timer.
type timerEntry struct {
	deadline time.Time
	seq      uint64 // insertion order, breaks deadline ties (§4.A ordering)
	task     api.Task
	period   time.Duration // 0 for one-shot
	canceled bool
	index    int
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// timerWheel serializes access to the timer heap for a single reactor.
// Access is always from the reactor goroutine except for Schedule/Cancel,
// which may be called from any goroutine and only touch the heap through
// the mutex-guarded methods below — the reactor loop itself drains due
// timers without taking the lock per-entry by snapshotting under lock.
type timerWheel struct {
	mu      sync.Mutex
	heap    timerHeap
	seq     uint64
	prefetchHint bool // true when the CPU supports SSE2 wide-copy paths
}

func newTimerWheel() *timerWheel {
	return &timerWheel{prefetchHint: cpu.X86.HasSSE2}
}

// add inserts a new timer entry and returns a cancel handle. Cancel is
// idempotent: calling it twice, or after the timer has already fired, is
// a no-op (§4.A Cancellation).
func (w *timerWheel) add(task api.Task, delay, period time.Duration) api.CancelFunc {
	e := &timerEntry{
		deadline: time.Now().Add(delay),
		task:     task,
		period:   period,
	}
	w.mu.Lock()
	w.seq++
	e.seq = w.seq
	heap.Push(&w.heap, e)
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			e.canceled = true
			w.mu.Unlock()
		})
	}
}

// nextDeadline returns the deadline of the soonest pending timer, or the
// zero Time with ok=false if the heap is empty.
func (w *timerWheel) nextDeadline() (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.heap.Len() > 0 && w.heap[0].canceled {
		heap.Pop(&w.heap)
	}
	if w.heap.Len() == 0 {
		return time.Time{}, false
	}
	return w.heap[0].deadline, true
}

// fireDue pops every timer whose deadline has passed and returns their
// tasks in deadline order (ties by insertion order), re-arming fixed-delay
// timers for their next period. Must be called from the reactor goroutine.
func (w *timerWheel) fireDue(now time.Time) []api.Task {
	var due []api.Task
	w.mu.Lock()
	for w.heap.Len() > 0 && !w.heap[0].deadline.After(now) {
		e := heap.Pop(&w.heap).(*timerEntry)
		if e.canceled {
			continue
		}
		due = append(due, e.task)
		if e.period > 0 {
			e.deadline = now.Add(e.period)
			w.seq++
			e.seq = w.seq
			heap.Push(&w.heap, e)
		}
	}
	w.mu.Unlock()
	return due
}

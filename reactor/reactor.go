// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reactor is the concrete api.EventReactor: one goroutine owns the poll
// backend, the task queue, and the timer heap, and every handler callback
// for its connections runs on that goroutine (§4.A, §5).

package reactor

import (
	"sync"
	"time"

	"github.com/momentics/topic-fabric/api"
	"github.com/sirupsen/logrus"
)

const maxEventsPerWait = 128

// maxWaitMillis caps each backend Wait. Backends have no wakeup hook, so
// the cap bounds how long Stop, Execute and a newly scheduled timer wait
// for the loop to notice them.
const maxWaitMillis = 10

// Reactor implements api.EventReactor over a PollBackend.
type Reactor struct {
	backend api.PollBackend
	tasks   *taskQueue
	timers  *timerWheel
	log     *logrus.Entry

	mu       sync.Mutex
	handlers map[uintptr]api.ConnHandler // keyed by fd, the slab (§9 "Callback graphs")

	stopOnce sync.Once
	stopCh   chan struct{}
	stopped  chan struct{}
	running  bool
	runMu    sync.Mutex
}

// New constructs a Reactor over the given platform backend.
func New(backend api.PollBackend, name string) *Reactor {
	return &Reactor{
		backend:  backend,
		tasks:    newTaskQueue(),
		timers:   newTimerWheel(),
		log:      logrus.WithField("component", "reactor").WithField("name", name),
		handlers: make(map[uintptr]api.ConnHandler),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// AddHandler registers h with the poll backend.
func (r *Reactor) AddHandler(h api.ConnHandler) error {
	if err := r.backend.Register(h.FD(), h.FD()); err != nil {
		return err
	}
	r.mu.Lock()
	r.handlers[h.FD()] = h
	r.mu.Unlock()
	return nil
}

// Execute enqueues a task for the reactor goroutine (§4.A step 5).
func (r *Reactor) Execute(t api.Task) {
	select {
	case <-r.stopCh:
		// Shutdown: tasks enqueued after Stop are dropped silently (§4.A).
		return
	default:
	}
	r.tasks.push(t)
}

// Schedule arms a one-shot timer.
func (r *Reactor) Schedule(t api.Task, delayNanos int64) api.CancelFunc {
	return r.timers.add(t, time.Duration(delayNanos), 0)
}

// ScheduleWithFixedDelay arms a recurring timer.
func (r *Reactor) ScheduleWithFixedDelay(t api.Task, initialNanos, periodNanos int64) api.CancelFunc {
	return r.timers.add(t, time.Duration(initialNanos), time.Duration(periodNanos))
}

// Run drives the reactor loop until Stop is called (§4.A steps 1-5).
func (r *Reactor) Run() {
	r.runMu.Lock()
	r.running = true
	r.runMu.Unlock()

	events := make([]api.Event, maxEventsPerWait)
	defer close(r.stopped)
	for {
		select {
		case <-r.stopCh:
			r.drainOnEnd()
			return
		default:
		}

		timeout := maxWaitMillis
		if d, ok := r.timers.nextDeadline(); ok {
			until := time.Until(d)
			if until < 0 {
				until = 0
			}
			if ms := int(until.Milliseconds()); ms < timeout {
				timeout = ms
			}
		}

		n, err := r.backend.Wait(events, timeout)
		if err != nil {
			r.log.WithError(err).Warn("poll wait failed")
			continue
		}

		for i := 0; i < n; i++ {
			r.dispatch(events[i])
		}

		for _, task := range r.timers.fireDue(time.Now()) {
			r.safeRun(task)
		}

		for _, task := range r.tasks.drainAll() {
			r.safeRun(task)
		}
	}
}

func (r *Reactor) dispatch(ev api.Event) {
	r.mu.Lock()
	h, ok := r.handlers[ev.Fd]
	r.mu.Unlock()
	if !ok {
		return
	}
	keep := func() (k bool) {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.WithField("fd", ev.Fd).Errorf("handler panic: %v", rec)
				k = false
			}
		}()
		return h.OnSelect(ev)
	}()
	if !keep {
		r.removeHandler(h)
	}
}

func (r *Reactor) removeHandler(h api.ConnHandler) {
	r.mu.Lock()
	delete(r.handlers, h.FD())
	r.mu.Unlock()
	_ = r.backend.Unregister(h.FD())
	h.OnEnd()
}

func (r *Reactor) safeRun(t api.Task) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("task panic: %v", rec)
		}
	}()
	t()
}

// Stop requests loop exit; idempotent. Pending onEnd callbacks run, then
// the backend is released; tasks enqueued afterward are dropped (§4.A).
func (r *Reactor) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	r.runMu.Lock()
	started := r.running
	r.runMu.Unlock()
	if started {
		<-r.stopped
	}
	_ = r.backend.Close()
}

func (r *Reactor) drainOnEnd() {
	r.mu.Lock()
	handlers := make([]api.ConnHandler, 0, len(r.handlers))
	for _, h := range r.handlers {
		handlers = append(handlers, h)
	}
	r.handlers = make(map[uintptr]api.ConnHandler)
	r.mu.Unlock()
	for _, h := range handlers {
		_ = r.backend.Unregister(h.FD())
		h.OnEnd()
	}
}

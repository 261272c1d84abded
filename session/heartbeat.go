// File: session/heartbeat.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Heartbeat (§4.H): fixed-delay heartbeat frames posted on the
// session's send fiber, plus an idle-read timer that closes the session
// if no bytes arrive within readTimeout. Grounded on the teacher's
// internal/concurrency/scheduler.go fixed-delay primitive (here reused
// through api.EventReactor) and on the atomic-CAS "closed" idiom from
// protocol/connection.go, generalized to gate heartbeat stop instead of
// connection close.

package session

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/topic-fabric/api"
)

// Heartbeat drives periodic heartbeat sends and idle-read detection for
// one session.
type Heartbeat struct {
	reactor          api.EventReactor
	post             func(api.Task) error
	sendHeartbeat    func()
	onIdleTimeout    func()
	intervalNanos    int64
	readTimeoutNanos int64

	stopped int32 // CAS gate (§4.H "Stopping is idempotent")

	mu         sync.Mutex
	hbCancel   api.CancelFunc
	idleCancel api.CancelFunc
}

// NewHeartbeat constructs a Heartbeat bound to reactor for timing and
// post for delivering work onto the session's serializing fiber.
// intervalNanos <= 0 disables the periodic heartbeat; readTimeoutNanos
// <= 0 disables the idle-read timer (§6 "Configuration knobs").
func NewHeartbeat(reactor api.EventReactor, post func(api.Task) error, sendHeartbeat func(), onIdleTimeout func(), intervalNanos, readTimeoutNanos int64) *Heartbeat {
	return &Heartbeat{
		reactor:          reactor,
		post:             post,
		sendHeartbeat:    sendHeartbeat,
		onIdleTimeout:    onIdleTimeout,
		intervalNanos:    intervalNanos,
		readTimeoutNanos: readTimeoutNanos,
	}
}

// Start arms the heartbeat and idle-read timers.
func (h *Heartbeat) Start() {
	if atomic.LoadInt32(&h.stopped) == 1 {
		return
	}
	if h.intervalNanos > 0 {
		h.mu.Lock()
		h.hbCancel = h.reactor.ScheduleWithFixedDelay(h.fireHeartbeat, h.intervalNanos, h.intervalNanos)
		h.mu.Unlock()
	}
	if h.readTimeoutNanos > 0 {
		h.armIdleTimer()
	}
}

func (h *Heartbeat) fireHeartbeat() {
	if atomic.LoadInt32(&h.stopped) == 1 {
		// Close moves the writer to a draining-only state; no new
		// heartbeats are enqueued after close (§9).
		return
	}
	if h.sendHeartbeat != nil {
		_ = h.post(h.sendHeartbeat)
	}
}

// Touch resets the idle-read timer; call on every successful read.
func (h *Heartbeat) Touch() {
	if atomic.LoadInt32(&h.stopped) == 1 || h.readTimeoutNanos <= 0 {
		return
	}
	h.mu.Lock()
	if h.idleCancel != nil {
		h.idleCancel()
	}
	h.mu.Unlock()
	h.armIdleTimer()
}

func (h *Heartbeat) armIdleTimer() {
	h.mu.Lock()
	h.idleCancel = h.reactor.Schedule(h.fireIdleTimeout, h.readTimeoutNanos)
	h.mu.Unlock()
}

func (h *Heartbeat) fireIdleTimeout() {
	if atomic.LoadInt32(&h.stopped) == 1 {
		return
	}
	if h.onIdleTimeout != nil {
		_ = h.post(h.onIdleTimeout)
	}
}

// Stop cancels both timers exactly once, however many times it is
// called (§8 "Heartbeat idempotence").
func (h *Heartbeat) Stop() {
	if !atomic.CompareAndSwapInt32(&h.stopped, 0, 1) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hbCancel != nil {
		h.hbCancel()
	}
	if h.idleCancel != nil {
		h.idleCancel()
	}
}

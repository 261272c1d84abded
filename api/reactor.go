// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Defines the abstract interface for the event-driven I/O reactor (fiber)
// that multiplexes connections across a platform-specific polling backend
// (epoll, IOCP, or a test stub).

package api

// Event encapsulates a single OS-level readiness notification.
type Event struct {
	Fd       uintptr // file descriptor or system handle
	UserData uintptr // opaque application value — typically a connection slab index
	Readable bool
	Writable bool
	Error    bool
}

// PollBackend is the minimal contract a platform backend (epoll/IOCP/stub)
// must satisfy; EventReactor builds task scheduling and timers on top of it.
type PollBackend interface {
	// Register associates fd with the backend, tagging it with userData.
	Register(fd uintptr, userData uintptr) error

	// Modify updates the interest set (read/write) for an already
	// registered fd.
	Modify(fd uintptr, wantWrite bool) error

	// Unregister removes fd from the backend.
	Unregister(fd uintptr) error

	// Wait blocks up to timeoutMillis (negative = forever) and fills
	// events with ready notifications, returning the count filled.
	Wait(events []Event, timeoutMillis int) (int, error)

	// Close releases the backend's OS resources.
	Close() error
}

// Task is unit of work posted to a reactor or pool fiber.
type Task func()

// CancelFunc cancels a scheduled timer; idempotent.
type CancelFunc func()

// EventReactor is the single-threaded cooperative executor bound to a
// poll backend. Every task and every I/O callback for its connections
// runs on the reactor's own goroutine.
type EventReactor interface {
	// Run drives the select/dispatch loop until Stop is called.
	Run()

	// Stop requests the loop exit; pending onEnd callbacks fire, then
	// the backend is closed. Idempotent.
	Stop()

	// Execute enqueues a task for future execution on the reactor
	// goroutine, preserving FIFO order relative to other Execute calls.
	Execute(t Task)

	// Schedule runs t once after delay, returning an idempotent cancel
	// handle.
	Schedule(t Task, delay int64) CancelFunc

	// ScheduleWithFixedDelay runs t repeatedly: first after initial,
	// then every period, until canceled.
	ScheduleWithFixedDelay(t Task, initial, period int64) CancelFunc

	// AddHandler registers a connection handler; the reactor invokes
	// OnSelect on readiness and OnEnd exactly once when the handler is
	// removed or the reactor stops.
	AddHandler(h ConnHandler) error
}

// ConnHandler is bound to one registered file descriptor.
type ConnHandler interface {
	FD() uintptr
	// OnSelect is invoked when the fd is ready; returning false
	// deregisters the handler and triggers OnEnd.
	OnSelect(ev Event) bool
	// OnEnd is invoked exactly once when the handler is deregistered.
	OnEnd()
}

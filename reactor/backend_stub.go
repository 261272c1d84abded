//go:build !linux && !windows
// +build !linux,!windows

// File: reactor/backend_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Channel-driven backend for platforms without epoll/IOCP. Adapted from
// the teacher's reactor/reactor_stub.go, which merely returned an error;
// here the stub is usable: Wait never blocks, and it reports an event
// only for an fd passed to Notify, not for activity on a real socket.

package reactor

import (
	"sync"

	"github.com/momentics/topic-fabric/api"
)

type stubBackend struct {
	mu       sync.Mutex
	readable map[uintptr]bool
	pending  chan uintptr
	closed   bool
}

// NewPlatformBackend constructs the portable stub backend.
func NewPlatformBackend() (api.PollBackend, error) {
	return &stubBackend{
		readable: make(map[uintptr]bool),
		pending:  make(chan uintptr, 4096),
	}, nil
}

func (b *stubBackend) Register(fd uintptr, userData uintptr) error {
	b.mu.Lock()
	b.readable[fd] = true
	b.mu.Unlock()
	return nil
}

func (b *stubBackend) Modify(fd uintptr, wantWrite bool) error { return nil }

func (b *stubBackend) Unregister(fd uintptr) error {
	b.mu.Lock()
	delete(b.readable, fd)
	b.mu.Unlock()
	return nil
}

// Notify marks fd as having a pending event, waking Wait. Test-only hook.
func (b *stubBackend) Notify(fd uintptr) {
	select {
	case b.pending <- fd:
	default:
	}
}

func (b *stubBackend) Wait(events []api.Event, timeoutMillis int) (int, error) {
	select {
	case fd := <-b.pending:
		events[0] = api.Event{Fd: fd, UserData: fd, Readable: true, Writable: true}
		return 1, nil
	default:
		return 0, nil
	}
}

func (b *stubBackend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

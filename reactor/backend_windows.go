//go:build windows
// +build windows

// File: reactor/backend_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows IOCP poll backend. Adapted from the teacher's
// reactor/reactor_windows.go and reactor/iocp_reactor.go.

package reactor

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/topic-fabric/api"
	"golang.org/x/sys/windows"
)

type iocpBackend struct {
	iocp       windows.Handle
	mu         sync.Mutex
	keyToFD    map[uint32]uintptr
	keyCounter uint32
}

// NewPlatformBackend constructs the Windows IOCP backend.
func NewPlatformBackend() (api.PollBackend, error) {
	port, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("iocp create: %w", err)
	}
	return &iocpBackend{iocp: port, keyToFD: make(map[uint32]uintptr)}, nil
}

func (b *iocpBackend) Register(fd uintptr, userData uintptr) error {
	key := atomic.AddUint32(&b.keyCounter, 1)
	_, err := windows.CreateIoCompletionPort(windows.Handle(fd), b.iocp, uintptr(key), 0)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.keyToFD[key] = fd
	b.mu.Unlock()
	return nil
}

func (b *iocpBackend) Modify(fd uintptr, wantWrite bool) error {
	// IOCP has no readiness-interest toggle: completion packets are
	// posted per-operation, so interest is implicit in which op was
	// issued. Nothing to do here; kept to satisfy api.PollBackend.
	return nil
}

func (b *iocpBackend) Unregister(fd uintptr) error {
	b.mu.Lock()
	for k, v := range b.keyToFD {
		if v == fd {
			delete(b.keyToFD, k)
			break
		}
	}
	b.mu.Unlock()
	return nil
}

func (b *iocpBackend) Wait(events []api.Event, timeoutMillis int) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	var bytes uint32
	var key uintptr
	var overlapped *windows.Overlapped
	timeout := uint32(windows.INFINITE)
	if timeoutMillis >= 0 {
		timeout = uint32(timeoutMillis)
	}
	err := windows.GetQueuedCompletionStatus(b.iocp, &bytes, &key, &overlapped, timeout)
	if err != nil {
		if err == windows.WAIT_TIMEOUT {
			return 0, nil
		}
		return 0, err
	}
	b.mu.Lock()
	fd, ok := b.keyToFD[uint32(key)]
	b.mu.Unlock()
	if !ok {
		return 0, nil
	}
	events[0] = api.Event{Fd: fd, UserData: key, Readable: true}
	return 1, nil
}

func (b *iocpBackend) Close() error {
	return windows.CloseHandle(b.iocp)
}

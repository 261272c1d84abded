//go:build linux
// +build linux

// File: reactor/backend_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux epoll(7) poll backend. Adapted from the teacher's
// reactor/reactor_linux.go and reactor/epoll_reactor.go, merged into a
// single implementation that satisfies api.PollBackend (Register/Modify/
// Unregister/Wait/Close) instead of the teacher's two overlapping,
// partially-duplicate epoll wrappers.

package reactor

import (
	"fmt"

	"github.com/momentics/topic-fabric/api"
	"golang.org/x/sys/unix"
)

type epollBackend struct {
	epfd int
}

// NewPlatformBackend constructs the Linux epoll backend.
func NewPlatformBackend() (api.PollBackend, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epollBackend{epfd: epfd}, nil
}

func (b *epollBackend) Register(fd uintptr, userData uintptr) error {
	ev := &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLOUT,
		Fd:     int32(fd),
	}
	return unix.EpollCtl(b.epfd, unix.EPOLL_CTL_ADD, int(fd), ev)
}

func (b *epollBackend) Modify(fd uintptr, wantWrite bool) error {
	events := uint32(unix.EPOLLIN)
	if wantWrite {
		events |= unix.EPOLLOUT
	}
	ev := &unix.EpollEvent{Events: events, Fd: int32(fd)}
	return unix.EpollCtl(b.epfd, unix.EPOLL_CTL_MOD, int(fd), ev)
}

func (b *epollBackend) Unregister(fd uintptr) error {
	return unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, int(fd), nil)
}

func (b *epollBackend) Wait(events []api.Event, timeoutMillis int) (int, error) {
	raw := make([]unix.EpollEvent, len(events))
	n, err := unix.EpollWait(b.epfd, raw, timeoutMillis)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		events[i] = api.Event{
			Fd:       uintptr(raw[i].Fd),
			UserData: uintptr(raw[i].Fd),
			Readable: raw[i].Events&unix.EPOLLIN != 0,
			Writable: raw[i].Events&unix.EPOLLOUT != 0,
			Error:    raw[i].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0,
		}
	}
	return n, nil
}

func (b *epollBackend) Close() error {
	return unix.Close(b.epfd)
}

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package reactor implements the single-threaded, cooperative I/O event
// loop ("fiber") at the base of the fabric: a selector thread per reactor,
// an unbounded FIFO task queue, and a timer heap keyed by absolute
// deadline (§4.A). Platform polling is provided by epoll on Linux and
// IOCP on Windows; other platforms get a channel-backed stub whose Wait
// never blocks and which reports an event only for an fd passed to its
// Notify hook.
package reactor

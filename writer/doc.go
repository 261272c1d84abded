// File: writer/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package writer implements the non-blocking, back-pressured outbound
// writer (§4.C of the fabric design): direct writes when the socket is
// writable, FIFO buffering on short write, and a configurable high-water
// mark beyond which the writer is declared Overflowed: every later send
// returns Closed and the onOverflow callback runs once. The writer does
// not close the connection itself, and the acceptor's and client's
// overflow callbacks only log it.
//
// Grounded on the teacher's protocol/connection.go sendLoop/SendFrame
// pair, generalized from a channel-fed goroutine into a synchronous,
// lock-guarded buffer so producers on arbitrary fibers can call Send
// without an intermediate goroutine per connection.
package writer

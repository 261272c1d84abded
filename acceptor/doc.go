// File: acceptor/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package acceptor implements the server-side acceptor (§4.I): it
// listens on a TCP port, performs the HTTP upgrade handshake, and
// round-robins each accepted connection onto one of a pool of reader
// reactors, wiring a session, writer, and frame decoder around the raw
// file descriptor.
//
// Grounded on the teacher's transport/tcp/listener.go (goroutine-driven
// accept loop, inline handshake) and examples/reactor_echo's raw fd
// extraction/read/write pattern, generalized from a blocking
// conn.Read/Write echo loop into non-blocking reads dispatched from a
// registered reactor handler.
package acceptor

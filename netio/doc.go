// File: netio/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package netio provides the raw-fd connection adapter shared by the
// acceptor (server side) and client (client side) packages: extracting
// a net.Conn's raw file descriptor and reading/writing it directly with
// platform syscalls so the connection can be registered with a custom
// reactor poll backend instead of Go's own runtime netpoller.
//
// Grounded on the teacher's examples/reactor_echo (getFD via
// SyscallConn/Control, platform-specific socket_unix.go/socket_windows.go
// read/write/close helpers).
package netio

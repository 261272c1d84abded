// File: netio/netconn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// NetConn adapts a net.Conn into api.NetConn, extracting the raw fd so
// the connection can be registered directly with a reactor's poll
// backend. Grounded on the teacher's examples/reactor_echo getFD
// pattern; Close is delegated to the original net.Conn rather than a raw
// close, avoiding a double-close race between this adapter and the Go
// runtime's own bookkeeping for the *net.TCPConn.

package netio

import (
	"net"
	"syscall"

	"github.com/pkg/errors"
)

// NetConn implements api.NetConn over a raw, reactor-registered fd.
type NetConn struct {
	conn net.Conn
	fd   uintptr
}

// NewNetConn extracts the raw fd from conn, which must satisfy
// syscall.Conn (true of *net.TCPConn and *net.UnixConn).
func NewNetConn(conn net.Conn) (*NetConn, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil, errors.New("netio: connection does not expose SyscallConn")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return nil, errors.Wrap(err, "netio: SyscallConn")
	}
	var fd uintptr
	if ctlErr := raw.Control(func(f uintptr) { fd = f }); ctlErr != nil {
		return nil, errors.Wrap(ctlErr, "netio: raw fd control")
	}
	return &NetConn{conn: conn, fd: fd}, nil
}

func (c *NetConn) Read(p []byte) (int, error) {
	n, err := rawRead(c.fd, p)
	if err != nil && isWouldBlock(err) {
		return 0, nil
	}
	return n, err
}

func (c *NetConn) Write(p []byte) (int, error) {
	n, err := rawWrite(c.fd, p)
	if err != nil && isWouldBlock(err) {
		return 0, nil
	}
	return n, err
}

func (c *NetConn) Close() error {
	return c.conn.Close()
}

func (c *NetConn) RawFD() uintptr {
	return c.fd
}

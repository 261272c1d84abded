// File: api/errors.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error sentinels shared across the fabric's layers.

package api

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the reactor, writer, and session layers.
var (
	ErrClosed            = errors.New("topic-fabric: connection closed")
	ErrOverflowed         = errors.New("topic-fabric: writer buffer overflowed")
	ErrExecutorRejected   = errors.New("topic-fabric: executor rejected task")
	ErrProtocolViolation  = errors.New("topic-fabric: protocol violation")
	ErrInvalidUTF8        = errors.New("topic-fabric: invalid UTF-8 in text frame")
	ErrFrameTooLarge      = errors.New("topic-fabric: frame payload exceeds maximum size")
	ErrControlFrameFrag   = errors.New("topic-fabric: control frames must not be fragmented")
	ErrHandshakeFailed    = errors.New("topic-fabric: websocket handshake failed")
	ErrReactorShutdown    = errors.New("topic-fabric: reactor is shutting down")
)

// CloseError carries the RFC 6455 close code and reason associated with a
// session teardown, so callers can distinguish protocol closes from plain
// transport failures.
type CloseError struct {
	Code   int
	Reason string
}

func (e *CloseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("topic-fabric: closed with code %d", e.Code)
	}
	return fmt.Sprintf("topic-fabric: closed with code %d: %s", e.Code, e.Reason)
}

// File: client/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Config mirrors the teacher's ClientConfig (§6 "Configuration knobs"),
// trimmed of the teacher's NUMA/batch-size/zero-copy-buffer-pool fields
// (no SPEC_FULL.md component needs them on the client path — the
// client's send/receive path is frame-at-a-time, not batched) and
// generalized from a one-shot connect into an opt-in reconnect policy
// (Reconnect, off by default) driven by session.ReconnectPolicy.

package client

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/google/uuid"
)

// Config controls dialing, framing, and keepalive for one client handle.
type Config struct {
	// Addr is "host:port" to dial.
	Addr string
	// Path is the HTTP upgrade request path.
	Path string
	// DialTimeout bounds the initial TCP connect.
	DialTimeout time.Duration
	// MaxFramePayload bounds a single frame's payload (§6).
	MaxFramePayload int
	// HighWaterMark is the writer back-pressure threshold (§4.C).
	HighWaterMark int
	// HeartbeatIntervalNanos and ReadTimeoutNanos configure the
	// heartbeat scheduler (§4.H); either may be 0 to disable.
	HeartbeatIntervalNanos int64
	ReadTimeoutNanos       int64
	// Reconnect enables automatic reconnection on unexpected close,
	// unless Stop has been called (§7 "Retry/recovery").
	Reconnect           bool
	ReconnectDelayNanos int64
	// ReadBufferInitialSize and MaxReadBufferSize and
	// MaxReadLoopsPerWakeup mirror the acceptor's read-loop knobs
	// (§6), since the client's connHandler drives the same decode
	// loop over its own reactor-registered fd.
	ReadBufferInitialSize int
	MaxReadBufferSize     int
	MaxReadLoopsPerWakeup int
	// IDGenerator mints each session's ID. Defaults to uuid.NewString;
	// tests can seed a deterministic generator instead.
	IDGenerator func() string
	// Rand sources the Sec-WebSocket-Key and outbound frame mask keys.
	// Defaults to crypto/rand.Reader; tests can seed a deterministic
	// source instead (per spec.md's "Global state" note on threading
	// RNG/ID generation through config rather than calling a global
	// directly).
	Rand io.Reader
}

// DefaultConfig returns reasonable defaults for a client connecting to a
// broker on Path "/".
func DefaultConfig(addr string) Config {
	return Config{
		Addr:                  addr,
		Path:                  "/",
		DialTimeout:           5 * time.Second,
		MaxFramePayload:       1 << 20,
		HighWaterMark:         1 << 22,
		ReadBufferInitialSize: 4096,
		MaxReadBufferSize:     1 << 20,
		MaxReadLoopsPerWakeup: 16,
		IDGenerator:           uuid.NewString,
		Rand:                  rand.Reader,
	}
}

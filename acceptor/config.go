// File: acceptor/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Config collects the acceptor's tunables (§6 "Configuration knobs").

package acceptor

import "github.com/google/uuid"

// Config controls per-connection buffering, back-pressure, and keepalive
// behavior for every session the acceptor creates.
type Config struct {
	// ReadBufferInitialSize sizes the first chunk read off a fresh
	// connection's fd.
	ReadBufferInitialSize int
	// MaxReadBufferSize bounds how large the accumulated, not-yet-framed
	// read buffer may grow before the connection is closed as abusive.
	MaxReadBufferSize int
	// MaxReadLoopsPerWakeup bounds how many raw reads a single readiness
	// notification may perform before yielding back to the reactor,
	// since the backends are level-triggered and would otherwise starve
	// other connections on a very chatty peer.
	MaxReadLoopsPerWakeup int
	// HighWaterMark is the writer back-pressure threshold (§4.C).
	HighWaterMark int
	// MaxFramePayload bounds a single frame's payload (§6).
	MaxFramePayload int
	// HeartbeatIntervalNanos and ReadTimeoutNanos configure the
	// heartbeat scheduler (§4.H); either may be 0 to disable.
	HeartbeatIntervalNanos int64
	ReadTimeoutNanos       int64
	// RegistryEventBuffer is not read by the acceptor, which uses the
	// registry handed to New; server.Server sizes its registry from
	// server.Config.RegistryEventBuffer.
	RegistryEventBuffer int
	// PathOK routes the upgrade request by path; nil accepts every path.
	PathOK func(path string) bool
	// IDGenerator mints each accepted session's ID. Defaults to
	// uuid.NewString; tests can seed a deterministic generator instead
	// (per spec.md's "Global state" note on threading RNG/ID generation
	// through config rather than calling a global directly).
	IDGenerator func() string
}

// DefaultConfig returns reasonable defaults for a broker listener.
func DefaultConfig() Config {
	return Config{
		ReadBufferInitialSize:  4096,
		MaxReadBufferSize:      1 << 20,
		MaxReadLoopsPerWakeup:  16,
		HighWaterMark:          1 << 22,
		MaxFramePayload:        1 << 20,
		HeartbeatIntervalNanos: 0,
		ReadTimeoutNanos:       0,
		RegistryEventBuffer:    256,
		IDGenerator:            uuid.NewString,
	}
}

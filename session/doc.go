// File: session/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package session implements the session state machine (§4.F), the
// per-session context store and sharded manager (adapted from the
// teacher's internal/session package), the pub/sub registry (§4.G), and
// the heartbeat scheduler (§4.H).
package session

// File: server/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package server assembles the acceptor, a pool of reactors, a worker
// pool, and the pub/sub registry/session manager into a single runnable
// broker facade (§4.I "Server facade"). Grounded on the teacher's
// server/types.go (Config/DefaultConfig), server/options.go
// (ServerOption functional options), and lowlevel/server/run.go
// (Run: pin affinity, register handler, launch poller + accept loops,
// block on shutdown, graceful teardown with a timeout context) —
// generalized from the teacher's single built-in reactor to a
// configurable pool of reactors shared round-robin by the acceptor, and
// from the teacher's NUMA-affinity pinning to a plain runtime.GOMAXPROCS
// sized worker pool, since this module's reactor package has no NUMA or
// cgo affinity adapter (see DESIGN.md).
package server

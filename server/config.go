// File: server/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Config mirrors the teacher's server.Config (§4.I), trimmed of fields
// with no surviving component (IOBufferSize zero-copy pool sizing,
// NUMANode, AffinityScope, ReactorRing, BatchSize — see DESIGN.md for
// why each was dropped rather than carried) and extended with the
// acceptor's own tunables plus ReactorCount, since this module
// round-robins across a configurable pool of reactors instead of the
// teacher's single built-in one.

package server

import (
	"runtime"
	"time"

	"github.com/momentics/topic-fabric/acceptor"
)

// Config holds every parameter needed to build and run a Server.
type Config struct {
	// ListenAddr is "host:port" to accept connections on.
	ListenAddr string
	// ReactorCount is how many reactor goroutines the acceptor
	// round-robins connections across. Defaults to GOMAXPROCS.
	ReactorCount int
	// ExecutorWorkers sizes the shared pool fiber worker pool.
	ExecutorWorkers int
	// RegistryEventBuffer sizes the pub/sub registry's event channel.
	RegistryEventBuffer int
	// ShutdownTimeout bounds the context Run hands to Shutdown, i.e. how
	// long it waits for the accept loop to exit before stopping the
	// reactors; in-flight connections are not drained.
	ShutdownTimeout time.Duration
	// Acceptor carries the per-connection tunables (buffering,
	// back-pressure, heartbeat) handed straight to acceptor.New.
	Acceptor acceptor.Config
}

// DefaultConfig returns safe defaults for a broker listening on addr.
func DefaultConfig(addr string) Config {
	return Config{
		ListenAddr:          addr,
		ReactorCount:        runtime.GOMAXPROCS(0),
		ExecutorWorkers:     runtime.GOMAXPROCS(0) * 2,
		RegistryEventBuffer: 256,
		ShutdownTimeout:     30 * time.Second,
		Acceptor:            acceptor.DefaultConfig(),
	}
}

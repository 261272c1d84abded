// File: api/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor contract for the bounded worker pool backing pool fibers.

package api

// Executor abstracts a shared pool of worker goroutines.
type Executor interface {
	// Submit schedules task for execution, returning ErrExecutorRejected
	// if the pool is shutting down.
	Submit(task Task) error

	// NumWorkers returns the current worker count.
	NumWorkers() int

	// Close shuts the pool down; further Submit calls are rejected.
	Close()
}

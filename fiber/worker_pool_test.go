// File: fiber/worker_pool_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fiber

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWorkerPoolRunsSubmittedTasks(t *testing.T) {
	p := NewWorkerPool(2)
	defer p.Close()

	done := make(chan struct{})
	require.NoError(t, p.Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for task to run")
	}
}

func TestWorkerPoolSurvivesTaskPanic(t *testing.T) {
	p := NewWorkerPool(1)
	defer p.Close()

	require.NoError(t, p.Submit(func() { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, p.Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
}

func TestWorkerPoolRejectsAfterClose(t *testing.T) {
	p := NewWorkerPool(1)
	p.Close()

	err := p.Submit(func() {})
	require.Error(t, err)
}

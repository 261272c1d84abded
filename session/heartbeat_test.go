// File: session/heartbeat_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/topic-fabric/api"
	"github.com/momentics/topic-fabric/reactor"
	"github.com/stretchr/testify/require"
)

func newRunningReactor(t *testing.T) *reactor.Reactor {
	t.Helper()
	backend, err := reactor.NewPlatformBackend()
	require.NoError(t, err)
	r := reactor.New(backend, "heartbeat-test")
	go r.Run()
	t.Cleanup(r.Stop)
	return r
}

// immediatePost stands in for a session fiber's Post in these tests,
// running the task synchronously on the reactor's timer-firing goroutine.
func immediatePost(task api.Task) error {
	task()
	return nil
}

func TestHeartbeatFiresOnFixedDelay(t *testing.T) {
	r := newRunningReactor(t)
	var fired int32
	hb := NewHeartbeat(r, immediatePost,
		func() { atomic.AddInt32(&fired, 1) }, nil,
		int64(10*time.Millisecond), 0)
	hb.Start()
	defer hb.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fired) >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestHeartbeatStopIsIdempotent(t *testing.T) {
	r := newRunningReactor(t)
	var fired int32
	hb := NewHeartbeat(r, immediatePost,
		func() { atomic.AddInt32(&fired, 1) }, nil,
		int64(10*time.Millisecond), 0)
	hb.Start()

	hb.Stop()
	hb.Stop()
	hb.Stop()

	snapshot := atomic.LoadInt32(&fired)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, snapshot, atomic.LoadInt32(&fired))
}

func TestIdleReadTimeoutFiresWhenNoTouch(t *testing.T) {
	r := newRunningReactor(t)
	done := make(chan struct{})
	hb := NewHeartbeat(r, immediatePost,
		nil, func() { close(done) },
		0, int64(10*time.Millisecond))
	hb.Start()
	defer hb.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected idle-read timeout to fire")
	}
}

func TestTouchPostponesIdleTimeout(t *testing.T) {
	r := newRunningReactor(t)
	var fired int32
	hb := NewHeartbeat(r, immediatePost,
		nil, func() { atomic.AddInt32(&fired, 1) },
		0, int64(30*time.Millisecond))
	hb.Start()
	defer hb.Stop()

	for i := 0; i < 5; i++ {
		time.Sleep(15 * time.Millisecond)
		hb.Touch()
	}
	require.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

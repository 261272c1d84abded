// File: session/registry_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package session

import (
	"testing"
	"time"

	"github.com/momentics/topic-fabric/fiber"
	"github.com/momentics/topic-fabric/wire"
	"github.com/stretchr/testify/require"
)

// TestSubscribeFanOutAndUnsubscribe covers spec.md §8 scenario 6: two
// sessions subscribe to "t", a broadcast reaches both exactly once, then
// one unsubscribes and the next broadcast reaches only the other.
func TestSubscribeFanOutAndUnsubscribe(t *testing.T) {
	pool := fiber.NewWorkerPool(2)
	reg := NewRegistry(8)

	wa, wb := &fakeWriter{}, &fakeWriter{}
	sa := New("A", &memConn{}, wa, pool, nil, wire.NewCodec(wire.DefaultMaxFramePayload), nil)
	sb := New("B", &memConn{}, wb, pool, nil, wire.NewCodec(wire.DefaultMaxFramePayload), nil)

	reg.Subscribe(sa, "t")
	reg.Subscribe(sb, "t")

	require.True(t, sa.HasTopic("t"))
	require.True(t, sb.HasTopic("t"))

	reg.Broadcast("t", []byte("m"))
	waitForSent(t, wa, 1)
	waitForSent(t, wb, 1)

	reg.Unsubscribe(sa, "t")
	require.False(t, sa.HasTopic("t"))

	reg.Broadcast("t", []byte("m2"))
	waitForSent(t, wb, 2)

	// sa must not have received the second broadcast.
	time.Sleep(20 * time.Millisecond)
	wa.mu.Lock()
	defer wa.mu.Unlock()
	require.Len(t, wa.sent, 1)
}

func TestSubscribeEmitsEvent(t *testing.T) {
	pool := fiber.NewWorkerPool(1)
	reg := NewRegistry(8)
	s := New("A", &memConn{}, &fakeWriter{}, pool, nil, wire.NewCodec(wire.DefaultMaxFramePayload), nil)

	reg.Subscribe(s, "news")
	select {
	case ev := <-reg.Events():
		require.NotNil(t, ev.Subscribe)
		require.Equal(t, "news", ev.Subscribe.Topic)
		require.Equal(t, "A", ev.Subscribe.SessionID)
	case <-time.After(time.Second):
		t.Fatal("expected a SubscriptionRequest event")
	}
}

func TestPublishToDropsWhenNotSubscribed(t *testing.T) {
	pool := fiber.NewWorkerPool(1)
	reg := NewRegistry(8)
	w := &fakeWriter{}
	s := New("A", &memConn{}, w, pool, nil, wire.NewCodec(wire.DefaultMaxFramePayload), nil)

	reg.PublishTo(s, "unsubscribed-topic", []byte("x"))
	time.Sleep(20 * time.Millisecond)
	w.mu.Lock()
	defer w.mu.Unlock()
	require.Empty(t, w.sent)
}

func TestRemoveSessionClearsAllSubscriptions(t *testing.T) {
	pool := fiber.NewWorkerPool(1)
	reg := NewRegistry(8)
	s := New("A", &memConn{}, &fakeWriter{}, pool, nil, wire.NewCodec(wire.DefaultMaxFramePayload), nil)

	reg.Subscribe(s, "t1")
	reg.Subscribe(s, "t2")
	reg.RemoveSession(s)

	require.False(t, s.HasTopic("t1"))
	require.False(t, s.HasTopic("t2"))
}

func waitForSent(t *testing.T, w *fakeWriter, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w.mu.Lock()
		got := len(w.sent)
		w.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d sends", n)
}

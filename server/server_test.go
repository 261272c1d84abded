// File: server/server_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"testing"
	"time"

	"github.com/momentics/topic-fabric/api"
	"github.com/momentics/topic-fabric/client"
	"github.com/momentics/topic-fabric/fiber"
	"github.com/momentics/topic-fabric/middleware"
	"github.com/momentics/topic-fabric/reactor"
	"github.com/momentics/topic-fabric/session"
	"github.com/stretchr/testify/require"
)

func TestServeAcceptsClientAndRoutesMessage(t *testing.T) {
	received := make(chan string, 1)
	metrics := &middleware.Counters{}

	cfg := DefaultConfig("127.0.0.1:0")
	cfg.ReactorCount = 1
	cfg.ExecutorWorkers = 2

	srv := New(cfg, WithMiddleware(middleware.Recovery(), middleware.Metrics(metrics)))

	require.NoError(t, srv.Serve(api.HandlerFuncs{
		Message: func(_ api.NetConn, _ api.State, text string) {
			select {
			case received <- text:
			default:
			}
		},
	}))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	backend, err := reactor.NewPlatformBackend()
	require.NoError(t, err)
	r := reactor.New(backend, "server-test-client")
	go r.Run()
	defer r.Stop()

	pool := fiber.NewWorkerPool(2)
	defer pool.Close()

	h, err := client.Open(r, backend, pool, client.DefaultConfig(srv.Addr().String()), nil)
	require.NoError(t, err)
	defer h.Stop()

	res := h.Send("hello")
	require.Equal(t, api.Sent, res.Outcome)

	select {
	case text := <-received:
		require.Equal(t, "hello", text)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server to route message")
	}

	snap := metrics.Snapshot()
	require.Equal(t, int64(1), snap.ActiveConnections)

	stats := srv.Control().Stats()
	sessionStats := stats["sessions.stats"].(session.Stats)
	require.EqualValues(t, 1, sessionStats.FramesReceived)
	require.Positive(t, sessionStats.BytesReceived)
}

// File: client/client_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/momentics/topic-fabric/acceptor"
	"github.com/momentics/topic-fabric/api"
	"github.com/momentics/topic-fabric/fiber"
	"github.com/momentics/topic-fabric/reactor"
	"github.com/momentics/topic-fabric/session"
	"github.com/momentics/topic-fabric/wire"
	"github.com/stretchr/testify/require"
)

func startTestBroker(t *testing.T, handler api.Handler) (*acceptor.Acceptor, *session.Manager) {
	t.Helper()
	backend, err := reactor.NewPlatformBackend()
	require.NoError(t, err)
	r := reactor.New(backend, "client-test-broker")
	pool := fiber.NewWorkerPool(2)
	manager := session.NewManager(4)
	registry := session.NewRegistry(8)

	acc := acceptor.New("127.0.0.1:0", []acceptor.ReactorSlot{{Reactor: r, Backend: backend}},
		pool, manager, registry, handler, acceptor.DefaultConfig())
	require.NoError(t, acc.Listen())
	require.NoError(t, acc.Serve())
	t.Cleanup(func() {
		_ = acc.Shutdown(context.Background())
		pool.Close()
	})
	return acc, manager
}

func newClientReactor(t *testing.T) (api.EventReactor, api.PollBackend) {
	t.Helper()
	backend, err := reactor.NewPlatformBackend()
	require.NoError(t, err)
	r := reactor.New(backend, "client-test")
	go r.Run()
	t.Cleanup(r.Stop)
	return r, backend
}

func TestClientRoundTripSendAndReceive(t *testing.T) {
	serverReceived := make(chan string, 1)
	broker, _ := startTestBroker(t, api.HandlerFuncs{
		Message: func(_ api.NetConn, _ api.State, text string) {
			select {
			case serverReceived <- text:
			default:
			}
		},
	})

	r, backend := newClientReactor(t)
	pool := fiber.NewWorkerPool(2)
	defer pool.Close()

	cfg := DefaultConfig(broker.Addr().String())
	h, err := Open(r, backend, pool, cfg, nil)
	require.NoError(t, err)
	defer h.Stop()

	res := h.Send("ping")
	require.Equal(t, api.Sent, res.Outcome)

	select {
	case text := <-serverReceived:
		require.Equal(t, "ping", text)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server to receive message")
	}
}

func TestClientReceivesServerPush(t *testing.T) {
	broker, manager := startTestBroker(t, nil)

	r, backend := newClientReactor(t)
	pool := fiber.NewWorkerPool(2)
	defer pool.Close()

	clientReceived := make(chan string, 1)
	cfg := DefaultConfig(broker.Addr().String())
	h, err := Open(r, backend, pool, cfg, api.HandlerFuncs{
		Message: func(_ api.NetConn, _ api.State, text string) {
			select {
			case clientReceived <- text:
			default:
			}
		},
	})
	require.NoError(t, err)
	defer h.Stop()

	require.Eventually(t, func() bool { return manager.Count() == 1 }, time.Second, 10*time.Millisecond)

	var serverSess *session.Session
	manager.Range(func(s *session.Session) { serverSess = s })
	require.NotNil(t, serverSess)

	res := serverSess.Send("pushed")
	require.Equal(t, api.Sent, res.Outcome)

	select {
	case text := <-clientReceived:
		require.Equal(t, "pushed", text)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for client to receive server push")
	}
}

func TestClientHonorsConfiguredIDGeneratorAndRand(t *testing.T) {
	broker, manager := startTestBroker(t, nil)

	r, backend := newClientReactor(t)
	pool := fiber.NewWorkerPool(2)
	defer pool.Close()

	cfg := DefaultConfig(broker.Addr().String())
	cfg.IDGenerator = func() string { return "deterministic-client-id" }
	cfg.Rand = zeroReader{}
	h, err := Open(r, backend, pool, cfg, nil)
	require.NoError(t, err)
	defer h.Stop()

	require.Eventually(t, func() bool { return manager.Count() == 1 }, time.Second, 10*time.Millisecond)
	require.Equal(t, "deterministic-client-id", h.current().ID())

	res := h.Send("hi")
	require.Equal(t, api.Sent, res.Outcome)
}

// zeroReader is a deterministic stand-in for crypto/rand.Reader, used as
// client.Config.Rand so the handshake key and outbound mask keys are all
// zero bytes; the broker still accepts the upgrade and the masked frame.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestClientEmitsOnErrorBeforeCloseOnProtocolViolation(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, aerr := ln.Accept()
		if aerr != nil {
			return
		}
		req, hdr, herr := wire.ServerHandshake(conn, nil)
		if herr != nil {
			conn.Close()
			return
		}
		_ = req
		if werr := wire.WriteServerResponse(conn, hdr); werr != nil {
			conn.Close()
			return
		}
		accepted <- conn
	}()

	var mu sync.Mutex
	var gotError, gotClose bool
	errDone := make(chan struct{}, 1)
	closeDone := make(chan struct{}, 1)
	handler := api.HandlerFuncs{
		Error: func(_ api.NetConn, _ api.State, reason string) {
			mu.Lock()
			gotError = true
			closedAlready := gotClose
			mu.Unlock()
			require.False(t, closedAlready, "OnError must fire before OnClose")
			require.NotEmpty(t, reason)
			select {
			case errDone <- struct{}{}:
			default:
			}
		},
		Close: func(_ api.NetConn, _ api.State) {
			mu.Lock()
			gotClose = true
			sawError := gotError
			mu.Unlock()
			require.True(t, sawError, "OnClose must not fire before OnError")
			select {
			case closeDone <- struct{}{}:
			default:
			}
		},
	}

	r, backend := newClientReactor(t)
	pool := fiber.NewWorkerPool(2)
	defer pool.Close()

	cfg := DefaultConfig(ln.Addr().String())
	h, err := Open(r, backend, pool, cfg, handler)
	require.NoError(t, err)
	defer h.Stop()

	var serverConn net.Conn
	select {
	case serverConn = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fake broker to accept")
	}
	defer serverConn.Close()

	// A continuation frame with no preceding fragment is a protocol
	// violation (§7.2 / scenario 4): the client must close with 1002
	// and observe OnError before OnClose.
	codec := wire.NewCodec(wire.DefaultMaxFramePayload)
	encoded, err := codec.EncodeFrame(&wire.Frame{Opcode: wire.OpcodeContinuation, Fin: true, Payload: []byte("x")}, nil)
	require.NoError(t, err)
	_, err = serverConn.Write(encoded)
	require.NoError(t, err)

	select {
	case <-errDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OnError")
	}
	select {
	case <-closeDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OnClose")
	}
}

func TestClientStopPreventsReconnect(t *testing.T) {
	broker, _ := startTestBroker(t, nil)
	r, backend := newClientReactor(t)
	pool := fiber.NewWorkerPool(2)
	defer pool.Close()

	cfg := DefaultConfig(broker.Addr().String())
	cfg.Reconnect = true
	cfg.ReconnectDelayNanos = int64(10 * time.Millisecond)
	h, err := Open(r, backend, pool, cfg, nil)
	require.NoError(t, err)

	h.Stop()
	// Session.Stop posts the Closed transition onto the session fiber.
	require.Eventually(t, func() bool { return h.State() == session.Closed }, time.Second, 5*time.Millisecond)

	// A reconnect would swap in a fresh Open session; several reconnect
	// delays later the handle must still report Closed.
	time.Sleep(5 * time.Duration(cfg.ReconnectDelayNanos))
	require.Equal(t, session.Closed, h.State())
}

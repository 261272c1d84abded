// File: client/client.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handle is the client-side session facade (§6): open/send/sendBinary/
// sendClose/stop. Grounded on the teacher's WebSocketClient.connect/
// dialAndHandshake (dial, compose the RFC6455 upgrade request with a
// random Sec-WebSocket-Key, read the 101 response), generalized from the
// teacher's one-shot reconnect-attempts loop into session.ReconnectPolicy
// so a single Handle transparently survives across reconnects: Send/
// SendBinary/SendClose always operate on whichever session is currently
// live, addressed through an atomic pointer swap.

package client

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/momentics/topic-fabric/api"
	"github.com/momentics/topic-fabric/netio"
	bufpool "github.com/momentics/topic-fabric/pool"
	"github.com/momentics/topic-fabric/session"
	"github.com/momentics/topic-fabric/wire"
	"github.com/momentics/topic-fabric/writer"
	"github.com/sirupsen/logrus"
)

// Handle is a reconnect-transparent client session. The zero value is
// not usable; construct with Open.
type Handle struct {
	reactor api.EventReactor
	backend api.PollBackend
	pool    api.Executor
	handler api.Handler
	cfg     Config
	log     *logrus.Entry
	chunks  api.BufferPool

	sess    atomic.Pointer[session.Session]
	stopped int32
}

// Open dials cfg.Addr, performs the upgrade handshake, and registers the
// resulting connection with reactor/backend, returning a live Handle.
// reactor must already be running (Run called by the caller) — Open
// does not start it, since one reactor is typically shared by several
// client handles.
func Open(reactor api.EventReactor, backend api.PollBackend, pool api.Executor, cfg Config, handler api.Handler) (*Handle, error) {
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = uuid.NewString
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}
	h := &Handle{
		reactor: reactor,
		backend: backend,
		pool:    pool,
		handler: handler,
		cfg:     cfg,
		log:     logrus.WithField("component", "client"),
		chunks:  bufpool.NewChannelPool(32),
	}
	if err := h.connect(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Handle) connect() error {
	conn, err := net.DialTimeout("tcp", h.cfg.Addr, h.cfg.DialTimeout)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodGet, "http://"+h.cfg.Addr+h.cfg.Path, nil)
	if err != nil {
		_ = conn.Close()
		return err
	}
	keyBytes := make([]byte, 16)
	if _, err := io.ReadFull(h.cfg.Rand, keyBytes); err != nil {
		_ = conn.Close()
		return err
	}
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Sec-WebSocket-Key", base64.StdEncoding.EncodeToString(keyBytes))
	req.Header.Set("Sec-WebSocket-Version", "13")

	if err := wire.WriteClientRequest(conn, req); err != nil {
		_ = conn.Close()
		return err
	}
	if err := wire.ClientHandshake(conn, req); err != nil {
		_ = conn.Close()
		return err
	}

	rawConn, err := netio.NewNetConn(conn)
	if err != nil {
		_ = conn.Close()
		return err
	}

	id := h.cfg.IDGenerator()
	codec := wire.NewCodec(h.cfg.MaxFramePayload)
	maskGen := newMaskKeyFunc(h.cfg.Rand)
	armer := &netio.BackendArmer{Backend: h.backend, FD: rawConn.RawFD()}
	w := writer.New(rawConn, armer, h.cfg.HighWaterMark,
		func() { h.log.WithField("session", id).Warn("write buffer overflowed") },
		func(werr error) { h.log.WithField("session", id).WithError(werr).Debug("write error") },
	)

	sess := session.New(id, rawConn, w, h.pool, h.handler, codec, maskGen)
	if h.cfg.Reconnect {
		sess.SetReconnectPolicy(&session.ReconnectPolicy{
			Enabled:    true,
			DelayNanos: h.cfg.ReconnectDelayNanos,
			Reactor:    h.reactor,
			Connect: func() {
				if atomic.LoadInt32(&h.stopped) == 1 {
					return
				}
				if rerr := h.connect(); rerr != nil {
					h.log.WithError(rerr).Warn("reconnect attempt failed")
				}
			},
		})
	}

	hb := session.NewHeartbeat(h.reactor, sess.Post,
		func() {
			encoded, encErr := codec.EncodeFrame(wire.PingFrame(nil), maskGen)
			if encErr == nil {
				w.Send(encoded)
			}
		},
		func() { sess.SendClose(wire.CloseNormalClosure, "idle timeout") },
		h.cfg.HeartbeatIntervalNanos, h.cfg.ReadTimeoutNanos,
	)

	ch := &connHandler{
		fd:        rawConn.RawFD(),
		netConn:   rawConn,
		session:   sess,
		writer:    w,
		codec:     codec,
		decoder:   wire.NewDecoder(codec),
		mask:      maskGen,
		heartbeat: hb,
		chunks:    h.chunks,
		cfg:       h.cfg,
		log:       h.log.WithField("session", id),
		readBuf:   make([]byte, 0, h.cfg.ReadBufferInitialSize),
	}

	sess.Transition(session.AwaitingConnect)
	sess.Transition(session.Handshaking)
	sess.Transition(session.Open)

	if err := h.reactor.AddHandler(ch); err != nil {
		_ = rawConn.Close()
		return err
	}
	hb.Start()
	h.sess.Store(sess)

	if h.handler != nil {
		state := sess.State()
		_ = sess.Post(func() { h.handler.OnOpen(rawConn, nil, state) })
	}
	return nil
}

func newMaskKeyFunc(src io.Reader) wire.MaskKeyFunc {
	return func() [4]byte {
		var key [4]byte
		_, _ = io.ReadFull(src, key[:])
		return key
	}
}

// Send transmits text as a final text frame on the currently live session.
func (h *Handle) Send(text string) api.SendResult {
	return h.current().Send(text)
}

// SendBinary transmits data as a final binary frame.
func (h *Handle) SendBinary(data []byte) api.SendResult {
	return h.current().SendBinary(data)
}

// SendClose queues a close frame on the currently live session.
func (h *Handle) SendClose(code int, reason string) api.SendResult {
	return h.current().SendClose(code, reason)
}

// Stop latches the handle closed and tears down the live session;
// reconnect never fires again afterward (§7).
func (h *Handle) Stop() {
	atomic.StoreInt32(&h.stopped, 1)
	if s := h.current(); s != nil {
		s.Stop()
	}
}

// State exposes the currently live session's lifecycle state.
func (h *Handle) State() session.State {
	if s := h.current(); s != nil {
		return s.Phase()
	}
	return session.NotConnected
}

func (h *Handle) current() *session.Session {
	return h.sess.Load()
}

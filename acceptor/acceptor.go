// File: acceptor/acceptor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Acceptor is the server-side entry point (§4.I): it listens on a TCP
// port, performs the upgrade handshake inline on accept, and
// round-robins each new session onto one of a pool of reader reactors.
// Grounded on the teacher's lowlevel/server/run.go Run/Shutdown
// lifecycle (launch poller loops, accept loop, block, graceful
// teardown), adapted from the teacher's single built-in reactor to a
// round-robin pool, and from its zero-copy buffer-event pipeline to
// this module's decode-on-the-reactor-goroutine design.

package acceptor

import (
	"context"
	"net"
	"sync"
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

// ReactorSlot pairs a running reactor with the backend it was built
// over; the backend reference is needed for write-interest arming since
// api.EventReactor does not expose PollBackend.Modify directly.
type ReactorSlot struct {
	Reactor api.EventReactor
	Backend api.PollBackend
}

// Acceptor listens on one TCP address and hands off accepted connections
// to a rotating pool of reader reactors.
type Acceptor struct {
	addr     string
	reactors []ReactorSlot
	pool     api.Executor
	manager  *session.Manager
	registry *session.Registry
	handler  api.Handler
	cfg      Config
	log      *logrus.Entry
	chunks   api.BufferPool

	ln         net.Listener
	next       uint64
	shutdownCh chan struct{}
	shutOnce   sync.Once
	wg         sync.WaitGroup
}

// New constructs an Acceptor. pool backs every accepted session's
// serializing fiber; manager and registry, if non-nil, are kept in sync
// with each connection's lifecycle automatically.
func New(addr string, reactors []ReactorSlot, pool api.Executor, manager *session.Manager, registry *session.Registry, handler api.Handler, cfg Config) *Acceptor {
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = uuid.NewString
	}
	return &Acceptor{
		addr:       addr,
		reactors:   reactors,
		pool:       pool,
		manager:    manager,
		registry:   registry,
		handler:    handler,
		cfg:        cfg,
		log:        logrus.WithField("component", "acceptor"),
		chunks:     bufpool.NewChannelPool(256),
		shutdownCh: make(chan struct{}),
	}
}

// Listen opens the TCP listener without yet accepting connections.
func (a *Acceptor) Listen() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	return nil
}

// Addr returns the bound listener address; valid only after Listen.
func (a *Acceptor) Addr() net.Addr {
	if a.ln == nil {
		return nil
	}
	return a.ln.Addr()
}

// Serve starts every reader reactor's loop and the accept loop, then
// returns immediately; it does not block (unlike the teacher's Run,
// which blocks on its own shutdown channel — this module's Server
// facade owns that blocking wait instead, see server/server.go).
func (a *Acceptor) Serve() error {
	for _, slot := range a.reactors {
		go slot.Reactor.Run()
	}

	a.wg.Add(1)
	go a.acceptLoop()
	return nil
}

func (a *Acceptor) acceptLoop() {
	defer a.wg.Done()
	for {
		conn, err := a.ln.Accept()
		if err != nil {
			select {
			case <-a.shutdownCh:
				return
			default:
				a.log.WithError(err).Warn("accept failed")
				continue
			}
		}
		go a.handleAccept(conn)
	}
}

func (a *Acceptor) handleAccept(conn net.Conn) {
	req, hdr, err := wire.ServerHandshake(conn, a.cfg.PathOK)
	if err != nil {
		a.log.WithError(err).Debug("handshake rejected")
		_ = conn.Close()
		return
	}
	if err := wire.WriteServerResponse(conn, hdr); err != nil {
		a.log.WithError(err).Debug("failed to write handshake response")
		_ = conn.Close()
		return
	}

	rawConn, err := netio.NewNetConn(conn)
	if err != nil {
		a.log.WithError(err).Warn("failed to extract raw fd")
		_ = conn.Close()
		return
	}

	slot := a.reactors[atomic.AddUint64(&a.next, 1)%uint64(len(a.reactors))]
	id := a.cfg.IDGenerator()
	codec := wire.NewCodec(a.cfg.MaxFramePayload)
	armer := &netio.BackendArmer{Backend: slot.Backend, FD: rawConn.RawFD()}
	w := writer.New(rawConn, armer, a.cfg.HighWaterMark,
		func() { a.log.WithField("session", id).Warn("write buffer overflowed") },
		func(err error) { a.log.WithField("session", id).WithError(err).Debug("write error") },
	)

	sess := session.New(id, rawConn, w, a.pool, a.handler, codec, nil)
	if a.manager != nil {
		a.manager.Put(sess)
	}

	hb := session.NewHeartbeat(slot.Reactor, sess.Post,
		func() {
			encoded, encErr := codec.EncodeFrame(wire.PingFrame(nil), nil)
			if encErr == nil {
				w.Send(encoded)
			}
		},
		func() { sess.SendClose(wire.CloseNormalClosure, "idle timeout") },
		a.cfg.HeartbeatIntervalNanos, a.cfg.ReadTimeoutNanos,
	)

	ch := &connHandler{
		fd:        rawConn.RawFD(),
		netConn:   rawConn,
		session:   sess,
		writer:    w,
		codec:     codec,
		decoder:   wire.NewDecoder(codec),
		heartbeat: hb,
		manager:   a.manager,
		registry:  a.registry,
		chunks:    a.chunks,
		cfg:       a.cfg,
		log:       a.log.WithField("session", id),
		readBuf:   make([]byte, 0, a.cfg.ReadBufferInitialSize),
	}

	sess.Transition(session.AwaitingConnect)
	sess.Transition(session.Handshaking)
	sess.Transition(session.Open)

	if err := slot.Reactor.AddHandler(ch); err != nil {
		a.log.WithError(err).Warn("failed to register connection with reactor")
		_ = rawConn.Close()
		return
	}
	hb.Start()

	if a.handler != nil {
		headers := map[string][]string(req.Header)
		state := sess.State()
		_ = sess.Post(func() { a.handler.OnOpen(rawConn, headers, state) })
	}
}

// Shutdown stops accepting new connections, closes the listener, and
// stops every reader reactor, waiting up to ctx's deadline for the
// accept loop to drain (§4.I, teacher's Server.Shutdown/Run teardown).
func (a *Acceptor) Shutdown(ctx context.Context) error {
	a.shutOnce.Do(func() { close(a.shutdownCh) })
	if a.ln != nil {
		_ = a.ln.Close()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	for _, slot := range a.reactors {
		slot.Reactor.Stop()
	}
	return nil
}

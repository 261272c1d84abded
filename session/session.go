// File: session/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Session implements the state machine of §4.F plus the send-side
// facade of §6 ("Session facade"): send/sendBinary/sendClose/stop.
// Grounded on the teacher's internal/session/session.go (id, done
// channel, sync.Once cancellation) generalized from a bare cancellation
// token into the full tagged-union lifecycle SPEC_FULL.md requires, and
// wired to the writer/wire packages for actual frame transmission.

package session

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/topic-fabric/api"
	"github.com/momentics/topic-fabric/fiber"
	"github.com/momentics/topic-fabric/wire"
)

// Stats reports the cumulative frame/byte counters carried by a Session,
// the per-connection counterpart to the teacher's WSConnection.GetStats.
type Stats struct {
	FramesSent     int64
	BytesSent      int64
	FramesReceived int64
	BytesReceived  int64
}

// ReconnectPolicy configures client-side automatic reconnection on entry
// to Closed (§4.F, §7 "Retry/recovery"). Connect is invoked on Reactor
// after DelayNanos unless the session's stop() latch has been set.
type ReconnectPolicy struct {
	Enabled    bool
	DelayNanos int64
	Reactor    api.EventReactor
	Connect    func()
}

// Session is a logical presence above a connection: identity, lifecycle
// state, subscription set, and the send path (writer + fiber + codec).
type Session struct {
	id      string
	conn    api.NetConn
	writer  api.Writer
	fiber   *fiber.PoolFiber
	handler api.Handler
	ctx     *contextStore

	codec      *wire.Codec
	maskKeyGen wire.MaskKeyFunc // non-nil on the client side (outbound frames masked)

	mu        sync.Mutex
	phase     State
	stopped   bool
	topics    map[string]struct{}
	reconnect *ReconnectPolicy
	closeOnce sync.Once

	framesSent     int64
	bytesSent      int64
	framesReceived int64
	bytesReceived  int64
}

// New constructs a Session bound to conn/writer, dispatching handler
// callbacks serialized on a fresh pool fiber backed by pool.
func New(id string, conn api.NetConn, writer api.Writer, pool api.Executor, handler api.Handler, codec *wire.Codec, maskKeyGen wire.MaskKeyFunc) *Session {
	return &Session{
		id:         id,
		conn:       conn,
		writer:     writer,
		fiber:      fiber.NewPoolFiber(pool),
		handler:    handler,
		ctx:        newContextStore(),
		codec:      codec,
		maskKeyGen: maskKeyGen,
		topics:     make(map[string]struct{}),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Conn exposes the underlying transport, e.g. for handler callbacks.
func (s *Session) Conn() api.NetConn { return s.conn }

// State returns the per-session key/value store passed to handler
// callbacks.
func (s *Session) State() api.State { return s.ctx }

// Handler returns the registered application handler.
func (s *Session) Handler() api.Handler { return s.handler }

// Post enqueues task on the session's serializing fiber, preserving FIFO
// order with respect to other posted tasks and outbound sends (§4.B,
// §5 "Ordering").
func (s *Session) Post(task api.Task) error {
	return s.fiber.Post(task)
}

// SetReconnectPolicy installs (or clears, with nil) the client reconnect
// policy applied on entering Closed.
func (s *Session) SetReconnectPolicy(p *ReconnectPolicy) {
	s.mu.Lock()
	s.reconnect = p
	s.mu.Unlock()
}

// Phase returns the current lifecycle state.
func (s *Session) Phase() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Transition attempts to move the session to `to`, enforcing the legal
// edges of §4.F. Returns false if the edge is illegal (a no-op). Entering
// Closed triggers onClose exactly once and, if enabled, reconnect
// scheduling.
func (s *Session) Transition(to State) bool {
	s.mu.Lock()
	if !canTransition(s.phase, to) {
		s.mu.Unlock()
		return false
	}
	s.phase = to
	shouldClose := to == Closed
	s.mu.Unlock()

	if shouldClose {
		s.handleClosed()
	}
	return true
}

func (s *Session) handleClosed() {
	s.closeOnce.Do(func() {
		_ = s.fiber.Post(func() {
			if s.handler != nil {
				s.handler.OnClose(s.conn, s.ctx)
			}
		})
		s.maybeScheduleReconnect()
	})
}

func (s *Session) maybeScheduleReconnect() {
	s.mu.Lock()
	policy := s.reconnect
	stopped := s.stopped
	s.mu.Unlock()

	if policy == nil || !policy.Enabled || stopped || policy.Connect == nil || policy.Reactor == nil {
		return
	}
	policy.Reactor.Schedule(func() {
		s.mu.Lock()
		stillStopped := s.stopped
		s.mu.Unlock()
		if stillStopped {
			return
		}
		policy.Connect()
	}, policy.DelayNanos)
}

// Stop latches the session so that reconnect never fires again (§5
// "Cancellation"), then posts a shutdown task onto the fiber that
// transitions the session to Closed. Further Send/SendBinary calls
// return Closed once stopped.
func (s *Session) Stop() {
	s.mu.Lock()
	already := s.stopped
	s.stopped = true
	s.mu.Unlock()
	if already {
		return
	}
	_ = s.fiber.Post(func() {
		s.Transition(Closed)
	})
}

// Stopped reports whether Stop has been called.
func (s *Session) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Send encodes text as a final text frame and writes it through the
// session's writer.
func (s *Session) Send(text string) api.SendResult {
	return s.sendFrame(wire.TextFrame(text))
}

// SendBinary encodes data as a final binary frame and writes it through
// the session's writer.
func (s *Session) SendBinary(data []byte) api.SendResult {
	return s.sendFrame(wire.BinaryFrame(data))
}

// SendClose queues a close frame and puts the writer in a draining-only
// state (§4.C "Close handshake").
func (s *Session) SendClose(code int, reason string) api.SendResult {
	if s.Stopped() {
		return api.SendResult{Outcome: api.SendClosed}
	}
	encoded, err := s.codec.EncodeFrame(wire.CloseFrame(code, reason), s.maskKeyGen)
	if err != nil {
		return api.SendResult{Outcome: api.SendClosed}
	}
	s.Transition(Closing)
	return s.writer.SendClose(encoded)
}

func (s *Session) sendFrame(f *wire.Frame) api.SendResult {
	if s.Stopped() {
		return api.SendResult{Outcome: api.SendClosed}
	}
	encoded, err := s.codec.EncodeFrame(f, s.maskKeyGen)
	if err != nil {
		return api.SendResult{Outcome: api.SendClosed}
	}
	atomic.AddInt64(&s.framesSent, 1)
	atomic.AddInt64(&s.bytesSent, int64(len(encoded)))
	return s.writer.Send(encoded)
}

// RecordReceived accounts one inbound message frame of n payload bytes,
// called by the acceptor/client dispatch loop once a complete message has
// been decoded.
func (s *Session) RecordReceived(n int) {
	atomic.AddInt64(&s.framesReceived, 1)
	atomic.AddInt64(&s.bytesReceived, int64(n))
}

// Stats returns a snapshot of this session's cumulative frame/byte
// counters.
func (s *Session) Stats() Stats {
	return Stats{
		FramesSent:     atomic.LoadInt64(&s.framesSent),
		BytesSent:      atomic.LoadInt64(&s.bytesSent),
		FramesReceived: atomic.LoadInt64(&s.framesReceived),
		BytesReceived:  atomic.LoadInt64(&s.bytesReceived),
	}
}

// AddTopic adds topic to this session's subscription set.
func (s *Session) AddTopic(topic string) {
	s.mu.Lock()
	s.topics[topic] = struct{}{}
	s.mu.Unlock()
}

// RemoveTopic removes topic from this session's subscription set.
func (s *Session) RemoveTopic(topic string) {
	s.mu.Lock()
	delete(s.topics, topic)
	s.mu.Unlock()
}

// HasTopic reports whether this session is currently subscribed to topic.
func (s *Session) HasTopic(topic string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.topics[topic]
	return ok
}

// Topics returns a snapshot of the subscribed topic names.
func (s *Session) Topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.topics))
	for t := range s.topics {
		out = append(out, t)
	}
	return out
}

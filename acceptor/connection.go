// File: acceptor/connection.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// connHandler implements api.ConnHandler, bridging reactor readiness
// events for one accepted connection into frame decode, dispatch to the
// session's handler, and the writer's writable callback. Generalized
// from the teacher's examples/reactor_echo blocking-read-then-echo
// callback into a non-blocking, partial-frame-tolerant decode loop,
// since a reactor-driven socket may deliver a frame's bytes across many
// readiness wakeups.

package acceptor

import (
	"io"

	"github.com/momentics/topic-fabric/api"
	"github.com/momentics/topic-fabric/netio"
	"github.com/momentics/topic-fabric/session"
	"github.com/momentics/topic-fabric/wire"
	"github.com/momentics/topic-fabric/writer"
	"github.com/sirupsen/logrus"
)

// cursorReader lets DecodeFrame attempt a parse against an accumulated
// buffer without consuming it on failure: the caller only advances the
// buffer past cr.pos once DecodeFrame has returned a complete frame.
type cursorReader struct {
	buf []byte
	pos int
}

func (c *cursorReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.buf) {
		return 0, io.EOF
	}
	n := copy(p, c.buf[c.pos:])
	c.pos += n
	return n, nil
}

func incompleteFrame(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}

type connHandler struct {
	fd      uintptr
	netConn *netio.NetConn
	session *session.Session
	writer  *writer.Writer
	codec   *wire.Codec
	decoder *wire.Decoder

	heartbeat *session.Heartbeat
	manager   *session.Manager
	registry  *session.Registry
	chunks    api.BufferPool

	cfg Config
	log *logrus.Entry

	readBuf []byte
}

func (h *connHandler) FD() uintptr { return h.fd }

func (h *connHandler) OnSelect(ev api.Event) bool {
	if ev.Error {
		return false
	}
	if ev.Writable {
		h.writer.OnWritable()
	}
	if ev.Readable {
		return h.onReadable()
	}
	return true
}

func (h *connHandler) OnEnd() {
	h.session.Transition(session.Closed)
	if h.registry != nil {
		h.registry.RemoveSession(h.session)
	}
	if h.manager != nil {
		h.manager.Delete(h.session.ID())
	}
	if h.heartbeat != nil {
		h.heartbeat.Stop()
	}
	_ = h.netConn.Close()
}

func (h *connHandler) onReadable() bool {
	chunk := h.chunks.Get(h.cfg.ReadBufferInitialSize)
	defer chunk.Release()
	for i := 0; i < h.cfg.MaxReadLoopsPerWakeup; i++ {
		if len(h.readBuf) >= h.cfg.MaxReadBufferSize {
			h.log.Warn("read buffer exceeded maximum without a complete frame")
			return false
		}
		n, err := netio.Read(h.fd, chunk.Data)
		if err != nil {
			if netio.IsWouldBlock(err) {
				break
			}
			h.log.WithError(err).Debug("read error")
			return false
		}
		if n == 0 {
			return false // peer performed an orderly close
		}
		h.readBuf = append(h.readBuf, chunk.Data[:n]...)
		if h.heartbeat != nil {
			h.heartbeat.Touch()
		}
	}
	return h.drainFrames()
}

func (h *connHandler) drainFrames() bool {
	for {
		cr := &cursorReader{buf: h.readBuf}
		frame, err := h.codec.DecodeFrame(cr, true)
		if err != nil {
			if incompleteFrame(err) {
				return true
			}
			h.closeWithError(err)
			return false
		}
		h.readBuf = append([]byte(nil), h.readBuf[cr.pos:]...)
		if !h.dispatch(frame) {
			return false
		}
	}
}

func (h *connHandler) dispatch(frame *wire.Frame) bool {
	decoded, err := h.decoder.Feed(frame)
	if err != nil {
		h.closeWithError(err)
		return false
	}

	if decoded.AutoReply != nil {
		h.writeControlFrame(decoded.AutoReply)
	}
	if decoded.PeerClose != nil {
		code, reason, ok := decoded.PeerClose.CloseDetails()
		if !ok {
			code, reason = wire.CloseNoStatusRcvd, ""
		}
		h.session.Transition(session.Closing)
		h.session.SendClose(code, reason)
		return false
	}
	if decoded.Message != nil {
		h.dispatchMessage(decoded.Message)
	}
	return true
}

func (h *connHandler) dispatchMessage(msg *wire.Message) {
	h.session.RecordReceived(len(msg.Payload))
	handler := h.session.Handler()
	if handler == nil {
		return
	}
	conn := h.session.Conn()
	state := h.session.State()
	if msg.Opcode == wire.OpcodeText {
		payload := string(msg.Payload)
		_ = h.session.Post(func() { handler.OnMessage(conn, state, payload) })
		return
	}
	payload := msg.Payload
	_ = h.session.Post(func() { handler.OnBinaryMessage(conn, state, payload) })
}

func (h *connHandler) writeControlFrame(f *wire.Frame) {
	encoded, err := h.codec.EncodeFrame(f, nil)
	if err != nil {
		h.log.WithError(err).Warn("failed to encode control frame")
		return
	}
	h.writer.Send(encoded)
}

func (h *connHandler) closeWithError(err error) {
	if ce, ok := err.(*api.CloseError); ok {
		h.notifyError(ce.Reason)
		h.session.Transition(session.Closing)
		h.session.SendClose(ce.Code, ce.Reason)
		return
	}
	h.log.WithError(err).Debug("closing connection after decode error")
	h.notifyError(err.Error())
	h.session.Transition(session.Closing)
	h.session.SendClose(wire.CloseProtocolError, "")
}

// notifyError posts OnError on the session fiber ahead of the Closing
// transition, satisfying "emit onError before onClose" for protocol
// violations (malformed UTF-8, reserved bits, oversize control frames).
func (h *connHandler) notifyError(reason string) {
	handler := h.session.Handler()
	if handler == nil {
		return
	}
	conn := h.session.Conn()
	state := h.session.State()
	_ = h.session.Post(func() { handler.OnError(conn, state, reason) })
}

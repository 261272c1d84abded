// File: api/handler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Application-facing callback contract. Callbacks are invoked in posting
// order on the owning session's pool fiber (§4.B, §4.F).

package api

// State is the lightweight, per-session key/value store threaded through
// the handler callbacks (the `state` parameter of onOpen/onMessage/...).
// Adapted from the teacher's propagation-aware Context; propagation and
// TTL metadata are dropped since no SPEC_FULL.md component crosses a
// session boundary that would need them (see DESIGN.md).
type State interface {
	Set(key string, value any)
	Get(key string) (any, bool)
	Delete(key string)
}

// Handler receives session lifecycle and message callbacks. Implementors
// must not block for long — blocking stalls only that session's pool
// fiber, never the reactor goroutine, but it does delay later callbacks
// for the same session (§5).
type Handler interface {
	OnOpen(conn NetConn, headers map[string][]string, state State)
	OnMessage(conn NetConn, state State, text string)
	OnBinaryMessage(conn NetConn, state State, data []byte)
	OnClose(conn NetConn, state State)
	OnError(conn NetConn, state State, reason string)
	OnException(conn NetConn, state State, err error)
}

// HandlerFuncs is an adapter allowing a subset of callbacks to be
// supplied as plain functions, mirroring the teacher's adapters.HandlerFunc.
type HandlerFuncs struct {
	Open     func(NetConn, map[string][]string, State)
	Message  func(NetConn, State, string)
	Binary   func(NetConn, State, []byte)
	Close    func(NetConn, State)
	Error    func(NetConn, State, string)
	Exception func(NetConn, State, error)
}

func (h HandlerFuncs) OnOpen(c NetConn, hdr map[string][]string, s State) {
	if h.Open != nil {
		h.Open(c, hdr, s)
	}
}

func (h HandlerFuncs) OnMessage(c NetConn, s State, text string) {
	if h.Message != nil {
		h.Message(c, s, text)
	}
}

func (h HandlerFuncs) OnBinaryMessage(c NetConn, s State, data []byte) {
	if h.Binary != nil {
		h.Binary(c, s, data)
	}
}

func (h HandlerFuncs) OnClose(c NetConn, s State) {
	if h.Close != nil {
		h.Close(c, s)
	}
}

func (h HandlerFuncs) OnError(c NetConn, s State, reason string) {
	if h.Error != nil {
		h.Error(c, s, reason)
	}
}

func (h HandlerFuncs) OnException(c NetConn, s State, err error) {
	if h.Exception != nil {
		h.Exception(c, s, err)
	}
}

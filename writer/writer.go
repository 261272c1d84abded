// File: writer/writer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package writer

import (
	"sync"

	"github.com/momentics/topic-fabric/api"
)

// Writer is the non-blocking writer bound to one connection (§4.C).
// All exported methods serialize through mu; the critical section is
// short (a slice append and, in the common case, one syscall) so the
// lock stays uncontended in the hot path as required.
type Writer struct {
	conn  api.NetConn
	armer api.WriteArmer

	highWaterMark int
	onOverflow    func()
	onWriteError  func(error)

	mu      sync.Mutex
	pending []byte
	state   api.WriteState
	closing bool
}

// New constructs a Writer over conn, arming/disarming OP_WRITE interest
// via armer. onOverflow is invoked (at most once, outside the lock) the
// first time buffered bytes exceed highWaterMark; onWriteError is
// invoked (at most once) on the first hard write failure. Either may be
// nil.
func New(conn api.NetConn, armer api.WriteArmer, highWaterMark int, onOverflow func(), onWriteError func(error)) *Writer {
	return &Writer{
		conn:          conn,
		armer:         armer,
		highWaterMark: highWaterMark,
		onOverflow:    onOverflow,
		onWriteError:  onWriteError,
	}
}

// Send implements api.Writer.
func (w *Writer) Send(buf []byte) api.SendResult {
	w.mu.Lock()
	if w.state == api.WriteOverflowed || w.closing {
		w.mu.Unlock()
		return api.SendResult{Outcome: api.SendClosed}
	}
	res, overflowed, writeErr := w.enqueueLocked(buf)
	w.mu.Unlock()

	if writeErr != nil && w.onWriteError != nil {
		w.onWriteError(writeErr)
	}
	if overflowed && w.onOverflow != nil {
		w.onOverflow()
	}
	return res
}

// SendClose implements api.Writer. Idempotent: once closing, further
// calls (including repeated SendClose) return Closed without queuing a
// second close frame.
func (w *Writer) SendClose(payload []byte) api.SendResult {
	w.mu.Lock()
	if w.closing || w.state == api.WriteOverflowed {
		w.mu.Unlock()
		return api.SendResult{Outcome: api.SendClosed}
	}
	w.closing = true
	res, overflowed, writeErr := w.enqueueLocked(payload)
	w.mu.Unlock()

	if writeErr != nil && w.onWriteError != nil {
		w.onWriteError(writeErr)
	}
	if overflowed && w.onOverflow != nil {
		w.onOverflow()
	}
	return res
}

// enqueueLocked appends buf to the pending queue, attempting a direct
// write first when nothing is already queued. Must be called with mu
// held; returns whether this call caused Pending->Overflowed.
func (w *Writer) enqueueLocked(buf []byte) (api.SendResult, bool, error) {
	if len(w.pending) == 0 {
		n, err := w.conn.Write(buf)
		if err != nil {
			w.state = api.WriteOverflowed
			return api.SendResult{Outcome: api.SendClosed}, false, err
		}
		if n == len(buf) {
			return api.SendResult{Outcome: api.Sent}, false, nil
		}
		w.pending = append(w.pending, buf[n:]...)
		w.state = api.WritePending
		if w.armer != nil {
			_ = w.armer.ArmWrite()
		}
	} else {
		w.pending = append(w.pending, buf...)
	}

	if len(w.pending) > w.highWaterMark {
		w.state = api.WriteOverflowed
		return api.SendResult{Outcome: api.Buffered, Pending: len(w.pending)}, true, nil
	}
	return api.SendResult{Outcome: api.Buffered, Pending: len(w.pending)}, false, nil
}

// OnWritable implements api.Writer: drains the pending buffer FIFO. The
// reactor calls this exactly on OP_WRITE readiness for this connection's
// fd.
func (w *Writer) OnWritable() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		if w.armer != nil {
			_ = w.armer.DisarmWrite()
		}
		if w.state != api.WriteOverflowed {
			w.state = api.WriteEmpty
		}
		return
	}

	n, err := w.conn.Write(w.pending)
	if err != nil {
		w.state = api.WriteOverflowed
		w.pending = nil
		w.mu.Unlock()
		if w.onWriteError != nil {
			w.onWriteError(err)
		}
		w.mu.Lock()
		return
	}
	w.pending = w.pending[n:]
	if len(w.pending) == 0 {
		if w.state != api.WriteOverflowed {
			w.state = api.WriteEmpty
		}
		if w.armer != nil {
			_ = w.armer.DisarmWrite()
		}
	}
}

// State implements api.Writer.
func (w *Writer) State() api.WriteState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

var _ api.Writer = (*Writer)(nil)

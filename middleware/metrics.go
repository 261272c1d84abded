// File: middleware/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Metrics mirrors the teacher's MetricsMiddleware (active connection
// gauge via atomic counters), extended with message/byte counters since
// a fan-out broker's interesting metric is throughput, not just
// connection count.

package middleware

import (
	"sync/atomic"

	"github.com/momentics/topic-fabric/api"
)

// Counters holds the running totals a Metrics middleware updates. The
// zero value is ready to use; read fields with the atomic package.
type Counters struct {
	ActiveConnections int64
	MessagesReceived  int64
	BytesReceived     int64
}

// Metrics wraps next to maintain counters across the handler lifecycle.
func Metrics(counters *Counters) Middleware {
	return func(next api.Handler) api.Handler {
		return api.HandlerFuncs{
			Open: func(c api.NetConn, hdr map[string][]string, s api.State) {
				atomic.AddInt64(&counters.ActiveConnections, 1)
				next.OnOpen(c, hdr, s)
			},
			Message: func(c api.NetConn, s api.State, text string) {
				atomic.AddInt64(&counters.MessagesReceived, 1)
				atomic.AddInt64(&counters.BytesReceived, int64(len(text)))
				next.OnMessage(c, s, text)
			},
			Binary: func(c api.NetConn, s api.State, data []byte) {
				atomic.AddInt64(&counters.MessagesReceived, 1)
				atomic.AddInt64(&counters.BytesReceived, int64(len(data)))
				next.OnBinaryMessage(c, s, data)
			},
			Close: func(c api.NetConn, s api.State) {
				atomic.AddInt64(&counters.ActiveConnections, -1)
				next.OnClose(c, s)
			},
			Error: next.OnError,
			Exception: next.OnException,
		}
	}
}

// Snapshot returns a consistent-enough point-in-time copy of counters.
func (c *Counters) Snapshot() Counters {
	return Counters{
		ActiveConnections: atomic.LoadInt64(&c.ActiveConnections),
		MessagesReceived:  atomic.LoadInt64(&c.MessagesReceived),
		BytesReceived:     atomic.LoadInt64(&c.BytesReceived),
	}
}

// File: server/control.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// controlAdapter implements api.Control for a running Server, grounded
// on the teacher's adapters.ControlAdapter (Stats merges metrics and
// debug-probe snapshots; RegisterDebugProbe stores a named closure),
// trimmed of the teacher's hot-reload config store — this module has no
// live-reloadable config surface for SetConfig/OnReload to serve (see
// DESIGN.md).

package server

import (
	"sync"

	"github.com/momentics/topic-fabric/session"
)

type controlAdapter struct {
	srv *Server

	mu     sync.RWMutex
	probes map[string]func() any
}

func newControlAdapter(srv *Server) *controlAdapter {
	return &controlAdapter{srv: srv, probes: make(map[string]func() any)}
}

// Stats reports active-connection/message counters alongside any
// registered debug probe's current value.
func (c *controlAdapter) Stats() map[string]any {
	out := make(map[string]any)
	if c.srv.manager != nil {
		out["sessions.active"] = c.srv.manager.Count()
		out["sessions.stats"] = c.aggregateSessionStats()
	}
	out["metrics"] = c.srv.metrics.Snapshot()

	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, fn := range c.probes {
		out["debug."+name] = fn()
	}
	return out
}

// aggregateSessionStats sums every live session's frame/byte counters,
// carrying forward the teacher's per-connection GetStats as a fleet-wide
// total reachable through the control facade rather than per-fd lookup.
func (c *controlAdapter) aggregateSessionStats() session.Stats {
	var total session.Stats
	c.srv.manager.Range(func(s *session.Session) {
		st := s.Stats()
		total.FramesSent += st.FramesSent
		total.BytesSent += st.BytesSent
		total.FramesReceived += st.FramesReceived
		total.BytesReceived += st.BytesReceived
	})
	return total
}

// RegisterDebugProbe stores fn under name for the next Stats call.
func (c *controlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = fn
}

// File: session/context_store.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread-safe per-session key/value store implementing api.State.
// Adapted from the teacher's internal/session/context_store.go, trimmed
// of propagation flags and TTL expiry (no SPEC_FULL.md component
// propagates state across a session boundary; see DESIGN.md).

package session

import (
	"sync"

	"github.com/momentics/topic-fabric/api"
)

type contextStore struct {
	mu    sync.RWMutex
	store map[string]any
}

var _ api.State = (*contextStore)(nil)

// newContextStore constructs an empty per-session state store.
func newContextStore() *contextStore {
	return &contextStore{store: make(map[string]any)}
}

func (c *contextStore) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
}

func (c *contextStore) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.store[key]
	return v, ok
}

func (c *contextStore) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
}

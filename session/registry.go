// File: session/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Registry implements the pub/sub engine (§4.G): topic->sessions
// fan-out plus each session's own subscription set, kept in lockstep by
// the invariant `t ∈ S.subs ⇔ S ∈ registry[t]` (§8). Grounded on the
// teacher's internal/session/store.go sharded-map pattern, generalized
// from a flat session-by-ID store into a topic-keyed fan-out index.

package session

import (
	"sync"

	"github.com/momentics/topic-fabric/api"
)

// Registry is the concurrency-safe topic -> sessions index.
type Registry struct {
	mu     sync.RWMutex
	topics map[string]map[string]*Session // topic -> sessionID -> session

	events chan api.RegistryEvent
}

// NewRegistry constructs an empty registry. eventBuffer sizes the
// operator-observable event channel; 0 is legal (unbuffered).
func NewRegistry(eventBuffer int) *Registry {
	return &Registry{
		topics: make(map[string]map[string]*Session),
		events: make(chan api.RegistryEvent, eventBuffer),
	}
}

// Events returns the channel on which SubscriptionRequest/
// UnsubscribeRequest notifications are published (§4.G).
func (r *Registry) Events() <-chan api.RegistryEvent {
	return r.events
}

// Subscribe adds topic to session's set and publishes a
// SubscriptionRequest event. Safe for concurrent use from the acceptor
// dispatch thread and the session's handler fiber (§4.G "Concurrency").
func (r *Registry) Subscribe(s *Session, topic string) {
	r.mu.Lock()
	set, ok := r.topics[topic]
	if !ok {
		set = make(map[string]*Session)
		r.topics[topic] = set
	}
	set[s.ID()] = s
	r.mu.Unlock()

	s.AddTopic(topic)
	r.publishEvent(api.RegistryEvent{Subscribe: &api.SubscriptionRequest{Topic: topic, SessionID: s.ID()}})
}

// Unsubscribe removes topic from session's set and publishes an
// UnsubscribeRequest event.
func (r *Registry) Unsubscribe(s *Session, topic string) {
	r.mu.Lock()
	if set, ok := r.topics[topic]; ok {
		delete(set, s.ID())
		if len(set) == 0 {
			delete(r.topics, topic)
		}
	}
	r.mu.Unlock()

	s.RemoveTopic(topic)
	r.publishEvent(api.RegistryEvent{Unsubscribe: &api.UnsubscribeRequest{Topic: topic, SessionID: s.ID()}})
}

// RemoveSession tears down every subscription a departing session holds,
// e.g. on close, preserving the registry invariant.
func (r *Registry) RemoveSession(s *Session) {
	for _, topic := range s.Topics() {
		r.Unsubscribe(s, topic)
	}
}

// publishTo enqueues payload on session's writer via its send fiber if
// session is subscribed to topic; otherwise drops silently (§4.G).
// Ordering across publishes to one session is the fiber's posting order;
// no cross-session ordering is promised.
func (r *Registry) publishTo(s *Session, topic string, payload []byte) {
	if !s.HasTopic(topic) {
		return
	}
	_ = s.Post(func() {
		s.SendBinary(payload)
	})
}

// PublishTo is the exported form of publishTo, usable directly by
// callers holding a specific session (e.g. request/reply correlation).
func (r *Registry) PublishTo(s *Session, topic string, payload []byte) {
	r.publishTo(s, topic, payload)
}

// Broadcast performs publishTo for every session currently subscribed to
// topic.
func (r *Registry) Broadcast(topic string, payload []byte) {
	r.mu.RLock()
	set, ok := r.topics[topic]
	if !ok {
		r.mu.RUnlock()
		return
	}
	targets := make([]*Session, 0, len(set))
	for _, s := range set {
		targets = append(targets, s)
	}
	r.mu.RUnlock()

	for _, s := range targets {
		r.publishTo(s, topic, payload)
	}
}

func (r *Registry) publishEvent(ev api.RegistryEvent) {
	select {
	case r.events <- ev:
	default:
		// Event channel full: operators observing first-subscriber
		// semantics are best-effort, never a back-pressure source for
		// the data path.
	}
}

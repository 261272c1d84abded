// File: api/events.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Operator-observable events emitted by the pub/sub registry (§4.G).

package api

// SubscriptionRequest is published when a session subscribes to a topic.
type SubscriptionRequest struct {
	Topic     string
	SessionID string
}

// UnsubscribeRequest is published when a session unsubscribes from a topic.
type UnsubscribeRequest struct {
	Topic     string
	SessionID string
}

// RegistryEvent is the union type delivered on a registry's event channel.
type RegistryEvent struct {
	Subscribe   *SubscriptionRequest
	Unsubscribe *UnsubscribeRequest
}

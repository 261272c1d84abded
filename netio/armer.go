// File: netio/armer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BackendArmer bridges api.Writer's OP_WRITE requests to the specific
// PollBackend a connection's fd is registered with. EventReactor itself
// does not expose Modify, so callers (acceptor, client) keep the backend
// reference they built each reactor from alongside it (§4.C, §4.A).

package netio

import "github.com/momentics/topic-fabric/api"

// BackendArmer implements api.WriteArmer over a specific fd registered
// with backend.
type BackendArmer struct {
	Backend api.PollBackend
	FD      uintptr
}

func (a *BackendArmer) ArmWrite() error {
	return a.Backend.Modify(a.FD, true)
}

func (a *BackendArmer) DisarmWrite() error {
	return a.Backend.Modify(a.FD, false)
}

// File: middleware/middleware.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package middleware

import "github.com/momentics/topic-fabric/api"

// Middleware wraps a Handler to produce another Handler, mirroring the
// teacher's Middleware func(next func(*Conn)) func(*Conn), generalized
// from wrapping one callback to wrapping the whole api.Handler interface.
type Middleware func(next api.Handler) api.Handler

// Chain applies middleware to base in the order given: Chain(base, A, B)
// yields a Handler whose calls flow A -> B -> base, matching the
// teacher's applyMiddleware reverse-iteration (last-registered runs
// innermost, first-registered observes first).
func Chain(base api.Handler, mw ...Middleware) api.Handler {
	h := base
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// File: middleware/recovery.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Recovery mirrors the teacher's RecoveryMiddleware: recover from a
// panic inside any callback other than OnException, report it through OnException rather than
// letting it unwind onto the shared pool fiber worker goroutine.

package middleware

import (
	"fmt"

	"github.com/momentics/topic-fabric/api"
)

// Recovery wraps every callback of next except OnException with a
// recover that converts a panic into an OnException call instead of
// crashing the pool fiber worker goroutine the callback runs on. A panic
// inside OnException itself is passed through unrecovered.
func Recovery() Middleware {
	return func(next api.Handler) api.Handler {
		return api.HandlerFuncs{
			Open: func(c api.NetConn, hdr map[string][]string, s api.State) {
				defer guard(next, c, s)
				next.OnOpen(c, hdr, s)
			},
			Message: func(c api.NetConn, s api.State, text string) {
				defer guard(next, c, s)
				next.OnMessage(c, s, text)
			},
			Binary: func(c api.NetConn, s api.State, data []byte) {
				defer guard(next, c, s)
				next.OnBinaryMessage(c, s, data)
			},
			Close: func(c api.NetConn, s api.State) {
				defer guard(next, c, s)
				next.OnClose(c, s)
			},
			Error: func(c api.NetConn, s api.State, reason string) {
				defer guard(next, c, s)
				next.OnError(c, s, reason)
			},
			Exception: func(c api.NetConn, s api.State, err error) {
				next.OnException(c, s, err)
			},
		}
	}
}

func guard(next api.Handler, c api.NetConn, s api.State) {
	if r := recover(); r != nil {
		next.OnException(c, s, fmt.Errorf("panic recovered: %v", r))
	}
}

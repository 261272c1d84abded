// File: middleware/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package middleware provides a composable Handler-wrapping chain (§4.I
// "Server facade"), grounded on the teacher's highlevel.Middleware
// (func(next func(*Conn)) func(*Conn)) and its built-in Logging/
// Recovery/Metrics middleware from examples/highlevel/*_middleware, but
// retargeted from the teacher's single-callback *Conn handler onto this
// module's full api.Handler lifecycle (OnOpen/OnMessage/OnBinaryMessage/
// OnClose/OnError/OnException), so a middleware can observe and wrap
// every callback rather than only the connection's top-level entry
// point. Logging uses logrus, matching the rest of the module's ambient
// stack, in place of the teacher's fmt.Printf.
package middleware

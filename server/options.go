// File: server/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ServerOption mirrors the teacher's server/options.go functional
// options (WithMiddleware/WithAffinityScope/WithBatchSize/
// WithExecutorWorkers), adapted to this module's middleware.Middleware
// chain and dropped-NUMA config surface.

package server

import "github.com/momentics/topic-fabric/middleware"

// ServerOption customizes a Server before it starts serving.
type ServerOption func(*Server)

// WithMiddleware attaches middleware in the order given; see
// middleware.Chain for evaluation order.
func WithMiddleware(mw ...middleware.Middleware) ServerOption {
	return func(s *Server) {
		s.middleware = append(s.middleware, mw...)
	}
}

// WithExecutorWorkers overrides the shared pool fiber worker count.
func WithExecutorWorkers(n int) ServerOption {
	return func(s *Server) {
		s.cfg.ExecutorWorkers = n
	}
}

// WithReactorCount overrides how many reactors the acceptor round-robins
// connections across.
func WithReactorCount(n int) ServerOption {
	return func(s *Server) {
		s.cfg.ReactorCount = n
	}
}

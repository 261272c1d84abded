// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Server wires a pool of reactors, a shared worker pool, the pub/sub
// registry, and the acceptor into one runnable broker. Grounded on the
// teacher's lowlevel/server/run.go Run (launch poller + accept loops,
// block on the shutdown channel, graceful teardown bounded by a timeout
// context) and Shutdown, generalized from the teacher's single built-in
// reactor to ReactorCount reactors started up front and handed to the
// acceptor as a round-robin pool.

package server

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/momentics/topic-fabric/acceptor"
	"github.com/momentics/topic-fabric/api"
	"github.com/momentics/topic-fabric/fiber"
	"github.com/momentics/topic-fabric/middleware"
	"github.com/momentics/topic-fabric/reactor"
	"github.com/momentics/topic-fabric/session"
	"github.com/sirupsen/logrus"
)

// ErrAlreadyRunning mirrors the teacher's sentinel of the same name,
// returned by Run/Serve when called a second time on the same Server.
var ErrAlreadyRunning = errors.New("server already running")

// Server is the broker facade: one TCP listener, a pool of reactors, a
// shared executor, and the session manager/registry backing pub/sub.
type Server struct {
	cfg        Config
	middleware []middleware.Middleware
	log        *logrus.Entry

	pool     api.Executor
	manager  *session.Manager
	registry *session.Registry
	acc      *acceptor.Acceptor
	metrics  *middleware.Counters
	control  *controlAdapter

	mu      sync.Mutex
	running bool
}

// New builds a Server from cfg and opts but does not start it.
func New(cfg Config, opts ...ServerOption) *Server {
	s := &Server{
		cfg:     cfg,
		log:     logrus.WithField("component", "server"),
		metrics: &middleware.Counters{},
	}
	s.control = newControlAdapter(s)
	for _, o := range opts {
		o(s)
	}
	return s
}

// Manager exposes the session manager backing this server, once Serve
// or Run has built it.
func (s *Server) Manager() *session.Manager { return s.manager }

// Registry exposes the pub/sub registry backing this server.
func (s *Server) Registry() *session.Registry { return s.registry }

// Control exposes live stats and a debug-probe registry for this
// server, backed by a connection-count gauge that is tracked
// regardless of which middleware the caller installed.
func (s *Server) Control() api.Control { return s.control }

// Addr returns the bound listener address; valid after Serve/Run.
func (s *Server) Addr() net.Addr {
	return s.acc.Addr()
}

func (s *Server) build(handler api.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}

	s.pool = fiber.NewWorkerPool(s.cfg.ExecutorWorkers)
	s.manager = session.NewManager(s.cfg.ReactorCount)
	s.registry = session.NewRegistry(s.cfg.RegistryEventBuffer)

	reactors := make([]acceptor.ReactorSlot, 0, s.cfg.ReactorCount)
	for i := 0; i < s.cfg.ReactorCount; i++ {
		backend, err := reactor.NewPlatformBackend()
		if err != nil {
			return err
		}
		r := reactor.New(backend, "broker-reactor")
		reactors = append(reactors, acceptor.ReactorSlot{Reactor: r, Backend: backend})
	}

	chain := append(append([]middleware.Middleware{}, s.middleware...), middleware.Metrics(s.metrics))
	wrapped := middleware.Chain(handler, chain...)
	s.acc = acceptor.New(s.cfg.ListenAddr, reactors, s.pool, s.manager, s.registry, wrapped, s.cfg.Acceptor)
	if err := s.acc.Listen(); err != nil {
		return err
	}
	s.running = true
	return nil
}

// Serve builds the server and starts accepting connections without
// blocking; pair with Shutdown for lifecycle control. Mirrors the
// acceptor's own non-blocking Serve, one layer up.
func (s *Server) Serve(handler api.Handler) error {
	if err := s.build(handler); err != nil {
		return err
	}
	return s.acc.Serve()
}

// Run is the blocking convenience entry point: Serve, then wait until
// ctx is canceled, then Shutdown bounded by cfg.ShutdownTimeout.
// Mirrors the teacher's Run (launch, block on shutdown signal,
// graceful teardown with a timeout context).
func (s *Server) Run(ctx context.Context, handler api.Handler) error {
	if err := s.Serve(handler); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting new connections, waits (bounded by ctx) for
// the acceptor's accept loop to exit, then stops every reactor, which
// ends each registered connection, and closes the worker pool.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	acc := s.acc
	pool := s.pool
	s.running = false
	s.mu.Unlock()

	if acc == nil {
		return nil
	}
	err := acc.Shutdown(ctx)
	if pool != nil {
		pool.Close()
	}
	return err
}

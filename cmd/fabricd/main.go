// File: cmd/fabricd/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// fabricd is the broker binary: it parses flags with urfave/cli (§6
// "Configuration knobs"), builds a server.Server, wires the built-in
// logging/recovery/metrics middleware, subscribes new connections'
// publish requests into the shared pub/sub registry, and blocks until
// SIGINT/SIGTERM. Grounded on the teacher's cmd-style main functions
// (cli.NewApp, []cli.Flag struct literals, myApp.Action, myApp.Run) seen
// across the retrieved corpus (e.g. xtaci-kcptun's server/main.go).

package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/momentics/topic-fabric/api"
	"github.com/momentics/topic-fabric/middleware"
	"github.com/momentics/topic-fabric/server"
	"github.com/momentics/topic-fabric/session"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// VERSION is populated via build flags when packaging official binaries.
var VERSION = "SELFBUILD"

func main() {
	app := cli.NewApp()
	app.Name = "fabricd"
	app.Usage = "topic-oriented WebSocket messaging broker"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "listen, l",
			Value: ":9000",
			Usage: "broker listen address, eg. :9000",
		},
		cli.IntFlag{
			Name:  "reactors",
			Value: 0,
			Usage: "number of reactor goroutines the acceptor round-robins across, 0 = GOMAXPROCS",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "size of the shared pool fiber worker pool, 0 = 2*GOMAXPROCS",
		},
		cli.IntFlag{
			Name:  "max-frame-payload",
			Value: 1 << 20,
			Usage: "maximum accepted WebSocket frame payload in bytes",
		},
		cli.IntFlag{
			Name:  "high-water-mark",
			Value: 1 << 22,
			Usage: "per-connection write buffer back-pressure threshold in bytes",
		},
		cli.StringFlag{
			Name:  "heartbeat-interval",
			Value: "0s",
			Usage: "fixed-delay heartbeat ping interval, eg. 30s; 0 disables",
		},
		cli.StringFlag{
			Name:  "read-timeout",
			Value: "0s",
			Usage: "idle-read timeout before the session is closed; 0 disables",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "logrus level: trace, debug, info, warn, error",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("fabricd exited with error")
	}
}

func run(c *cli.Context) error {
	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	log := logrus.WithField("component", "fabricd")

	heartbeatInterval, err := time.ParseDuration(c.String("heartbeat-interval"))
	if err != nil {
		return err
	}
	readTimeout, err := time.ParseDuration(c.String("read-timeout"))
	if err != nil {
		return err
	}

	cfg := server.DefaultConfig(c.String("listen"))
	if n := c.Int("reactors"); n > 0 {
		cfg.ReactorCount = n
	}
	if n := c.Int("workers"); n > 0 {
		cfg.ExecutorWorkers = n
	}
	cfg.Acceptor.MaxFramePayload = c.Int("max-frame-payload")
	cfg.Acceptor.HighWaterMark = c.Int("high-water-mark")
	cfg.Acceptor.HeartbeatIntervalNanos = int64(heartbeatInterval)
	cfg.Acceptor.ReadTimeoutNanos = int64(readTimeout)

	metrics := &middleware.Counters{}
	srv := server.New(cfg,
		server.WithMiddleware(
			middleware.Recovery(),
			middleware.Logging(log),
			middleware.Metrics(metrics),
		),
	)

	handler := newBrokerHandler(srv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reportMetrics(ctx, log, metrics)

	log.WithField("addr", cfg.ListenAddr).Info("starting broker")
	return srv.Run(ctx, handler)
}

// brokerHandler routes inbound text frames shaped as "sub:<topic>",
// "unsub:<topic>", or "pub:<topic>:<payload>" into the shared registry,
// giving operators a working pub/sub broker without writing an
// application-specific handler. Grounded on the teacher's
// examples/broadcast handler composition (parse a tiny inline command
// protocol over plain text frames).
type brokerHandler struct {
	srv *server.Server
}

func newBrokerHandler(srv *server.Server) api.Handler {
	return &brokerHandler{srv: srv}
}

func (b *brokerHandler) OnOpen(conn api.NetConn, _ map[string][]string, _ api.State) {
	logrus.WithField("fd", conn.RawFD()).Debug("client connected")
}

func (b *brokerHandler) OnMessage(conn api.NetConn, state api.State, text string) {
	topic, payload, cmd := parseCommand(text)
	if cmd == "" {
		return
	}
	sess := sessionFor(b.srv, conn)
	if sess == nil {
		return
	}
	switch cmd {
	case "sub":
		b.srv.Registry().Subscribe(sess, topic)
	case "unsub":
		b.srv.Registry().Unsubscribe(sess, topic)
	case "pub":
		b.srv.Registry().Broadcast(topic, []byte(payload))
	}
}

func (b *brokerHandler) OnBinaryMessage(api.NetConn, api.State, []byte) {}

func (b *brokerHandler) OnClose(conn api.NetConn, _ api.State) {
	logrus.WithField("fd", conn.RawFD()).Debug("client disconnected")
}

func (b *brokerHandler) OnError(conn api.NetConn, _ api.State, reason string) {
	logrus.WithField("fd", conn.RawFD()).WithField("reason", reason).Warn("connection error")
}

func (b *brokerHandler) OnException(conn api.NetConn, _ api.State, err error) {
	logrus.WithField("fd", conn.RawFD()).WithError(err).Error("handler exception")
}

func sessionFor(srv *server.Server, conn api.NetConn) *session.Session {
	var found *session.Session
	srv.Manager().Range(func(s *session.Session) {
		if found == nil && s.Conn() == conn {
			found = s
		}
	})
	return found
}

// parseCommand splits "sub:topic", "unsub:topic", or "pub:topic:payload"
// into (topic, payload, cmd); cmd is "" for anything else.
func parseCommand(text string) (topic, payload, cmd string) {
	idx := indexByte(text, ':')
	if idx < 0 {
		return "", "", ""
	}
	head, rest := text[:idx], text[idx+1:]
	switch head {
	case "sub", "unsub":
		return rest, "", head
	case "pub":
		idx2 := indexByte(rest, ':')
		if idx2 < 0 {
			return "", "", ""
		}
		return rest[:idx2], rest[idx2+1:], head
	default:
		return "", "", ""
	}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func reportMetrics(ctx context.Context, log *logrus.Entry, counters *middleware.Counters) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := counters.Snapshot()
			log.WithField("active_connections", snap.ActiveConnections).
				WithField("messages_received", strconv.FormatInt(snap.MessagesReceived, 10)).
				WithField("bytes_received", snap.BytesReceived).
				Info("metrics snapshot")
		}
	}
}

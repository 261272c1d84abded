// File: cmd/fabric-client/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// fabric-client is a small interactive CLI exercising the client
// package against a running broker: it connects, optionally subscribes
// to a topic, reads lines from stdin and sends them as text frames, and
// prints every inbound text message. Grounded on the teacher's
// cmd-style main functions (cli.NewApp/[]cli.Flag/myApp.Action).

package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momentics/topic-fabric/api"
	"github.com/momentics/topic-fabric/client"
	"github.com/momentics/topic-fabric/fiber"
	"github.com/momentics/topic-fabric/reactor"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var VERSION = "SELFBUILD"

func main() {
	app := cli.NewApp()
	app.Name = "fabric-client"
	app.Usage = "interactive WebSocket messaging fabric client"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "addr, a",
			Value: "127.0.0.1:9000",
			Usage: "broker address to dial",
		},
		cli.StringFlag{
			Name:  "topic, t",
			Value: "",
			Usage: "topic to subscribe to on connect; empty disables",
		},
		cli.BoolFlag{
			Name:  "reconnect",
			Usage: "automatically reconnect after an unexpected close",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("fabric-client exited with error")
	}
}

func run(c *cli.Context) error {
	backend, err := reactor.NewPlatformBackend()
	if err != nil {
		return err
	}
	r := reactor.New(backend, "fabric-client")
	go r.Run()
	defer r.Stop()

	pool := fiber.NewWorkerPool(2)
	defer pool.Close()

	cfg := client.DefaultConfig(c.String("addr"))
	cfg.Reconnect = c.Bool("reconnect")
	cfg.ReconnectDelayNanos = int64(2 * time.Second)

	topic := c.String("topic")
	handler := api.HandlerFuncs{
		Open: func(api.NetConn, map[string][]string, api.State) {
			fmt.Println("connected")
		},
		Message: func(_ api.NetConn, _ api.State, text string) {
			fmt.Printf("< %s\n", text)
		},
		Close: func(api.NetConn, api.State) {
			fmt.Println("disconnected")
		},
	}

	h, err := client.Open(r, backend, pool, cfg, handler)
	if err != nil {
		return err
	}
	defer h.Stop()

	if topic != "" {
		h.Send("sub:" + topic)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	linesCh := make(chan string)
	go readLines(linesCh)

	for {
		select {
		case <-sigCh:
			return nil
		case line, ok := <-linesCh:
			if !ok {
				return nil
			}
			res := h.Send(line)
			if res.Outcome == api.SendClosed {
				fmt.Println("send rejected: connection closed")
			}
		}
	}
}

func readLines(out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}

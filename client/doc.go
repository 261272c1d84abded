// File: client/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package client implements the client-side session facade (§6 "Client
// facade"): open/send/sendBinary/sendClose/stop, plus automatic
// reconnect-after-delay unless the handle has been stopped.
//
// Grounded on the teacher's client/client.go (ClientConfig, dial-and-
// handshake, reconnect loop with backoff, recvLoop/heartbeatLoop
// goroutines), adapted from the teacher's bufio-blocking transport and
// channel-based recvLoop onto this module's reactor-registered raw fd
// and session/writer/wire stack, matching the acceptor's connection
// handling so client and server share one frame decode path.
package client

// File: wire/handshake_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package wire

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcceptKeyMatchesRFC6455Example(t *testing.T) {
	// The canonical example from RFC 6455 §1.3.
	require.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", AcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestServerHandshakeAcceptsValidUpgrade(t *testing.T) {
	raw := "GET /chat HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 13\r\n\r\n"

	req, hdr, err := ServerHandshake(strings.NewReader(raw), func(path string) bool { return path == "/chat" })
	require.NoError(t, err)
	require.Equal(t, "/chat", req.URL.Path)
	require.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", hdr.Get("Sec-WebSocket-Accept"))
}

func TestServerHandshakeRejectsUnroutedPath(t *testing.T) {
	raw := "GET /nope HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 13\r\n\r\n"

	_, _, err := ServerHandshake(strings.NewReader(raw), func(path string) bool { return path == "/chat" })
	require.Error(t, err)
}

func TestServerHandshakeRejectsBadVersion(t *testing.T) {
	raw := "GET /chat HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 8\r\n\r\n"

	_, _, err := ServerHandshake(strings.NewReader(raw), nil)
	require.ErrorIs(t, err, ErrBadWebSocketVersion)
}

func TestServerHandshakeRejectsMissingKey(t *testing.T) {
	raw := "GET /chat HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Version: 13\r\n\r\n"

	_, _, err := ServerHandshake(strings.NewReader(raw), nil)
	require.ErrorIs(t, err, ErrMissingWebSocketKey)
}

func TestServerHandshakeRejectsNonGET(t *testing.T) {
	raw := "POST /chat HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Content-Length: 0\r\n\r\n"

	_, _, err := ServerHandshake(strings.NewReader(raw), nil)
	require.ErrorIs(t, err, ErrNotGET)
}

func TestWriteServerResponseIncludesAcceptHeader(t *testing.T) {
	hdr := make(http.Header)
	hdr.Set("Upgrade", "websocket")
	hdr.Set("Connection", "Upgrade")
	hdr.Set("Sec-WebSocket-Accept", "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=")

	var buf bytes.Buffer
	require.NoError(t, WriteServerResponse(&buf, hdr))
	out := buf.String()
	require.Contains(t, out, "HTTP/1.1 101 Switching Protocols\r\n")
	require.Contains(t, out, "Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n")
}

func TestClientHandshakeRejectsNonSwitchingStatus(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com/chat", nil)
	require.NoError(t, err)

	raw := "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"
	err = ClientHandshake(strings.NewReader(raw), req)
	require.Error(t, err)
}

func TestClientHandshakeAcceptsSwitchingStatus(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com/chat", nil)
	require.NoError(t, err)

	raw := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n\r\n"
	require.NoError(t, ClientHandshake(strings.NewReader(raw), req))
}

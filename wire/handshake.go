// File: wire/handshake.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// HTTP/1.1 Upgrade handshake per RFC 6455 §4. Adapted nearly verbatim
// from the teacher's core/protocol/handshake.go, which already implements
// exactly this contract cleanly; trimmed of the teacher's duplicate
// protocol/handshake.go and protocol/native_handshake.go variants.

package wire

import (
	"bufio"
	"crypto/sha1"
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

const (
	webSocketGUID            = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
	headerConnection         = "Connection"
	headerUpgrade            = "Upgrade"
	headerSecWebSocketKey    = "Sec-WebSocket-Key"
	headerSecWebSocketVer    = "Sec-WebSocket-Version"
	requiredWebSocketVersion = "13"
	maxHandshakeHeadersSize  = 8192
)

// Errors for handshake validation.
var (
	ErrInvalidUpgradeHeaders = errors.New("wire: invalid websocket upgrade headers")
	ErrMissingWebSocketKey   = errors.New("wire: missing Sec-WebSocket-Key header")
	ErrBadWebSocketVersion   = errors.New("wire: unsupported websocket version; only '13' is supported")
	ErrNotGET                = errors.New("wire: upgrade request method must be GET")
)

// AcceptKey computes the Sec-WebSocket-Accept value for a given client key.
func AcceptKey(clientKey string) string {
	h := sha1.New()
	h.Write([]byte(clientKey + webSocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ServerHandshake reads and validates the HTTP/1.1 Upgrade request from r,
// routes it via pathOK, and returns the request plus the response headers
// to include in the 101 reply. routing is done by exact path or predicate
// (§4.E "Routing is done by exact path or user-supplied predicate").
func ServerHandshake(r io.Reader, pathOK func(path string) bool) (*http.Request, http.Header, error) {
	br := bufio.NewReader(r)
	req, err := http.ReadRequest(br)
	if err != nil {
		return nil, nil, errors.Wrap(err, "handshake: read request")
	}

	if req.Method != http.MethodGet {
		return nil, nil, ErrNotGET
	}

	total := 0
	for k, vs := range req.Header {
		total += len(k)
		for _, v := range vs {
			total += len(v)
		}
	}
	if total > maxHandshakeHeadersSize {
		return nil, nil, errors.New("wire: handshake headers too large")
	}

	if !headerContainsToken(req.Header, headerConnection, "Upgrade") ||
		!headerContainsToken(req.Header, headerUpgrade, "websocket") {
		return nil, nil, ErrInvalidUpgradeHeaders
	}
	if req.Header.Get(headerSecWebSocketVer) != requiredWebSocketVersion {
		return nil, nil, ErrBadWebSocketVersion
	}

	key := req.Header.Get(headerSecWebSocketKey)
	if key == "" {
		return nil, nil, ErrMissingWebSocketKey
	}

	if pathOK != nil && !pathOK(req.URL.Path) {
		return nil, nil, errors.Errorf("wire: no route for path %q", req.URL.Path)
	}

	hdr := make(http.Header)
	hdr.Set("Upgrade", "websocket")
	hdr.Set("Connection", "Upgrade")
	hdr.Set("Sec-WebSocket-Accept", AcceptKey(key))
	return req, hdr, nil
}

// WriteServerResponse writes the HTTP/1.1 101 Switching Protocols response.
func WriteServerResponse(w io.Writer, hdr http.Header) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("HTTP/1.1 101 Switching Protocols\r\n"); err != nil {
		return err
	}
	for k, vs := range hdr {
		for _, v := range vs {
			if _, err := bw.WriteString(k + ": " + v + "\r\n"); err != nil {
				return err
			}
		}
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteClientRequest serializes the HTTP GET Upgrade request to w.
func WriteClientRequest(w io.Writer, req *http.Request) error {
	req.RequestURI = ""
	return req.Write(w)
}

// ClientHandshake reads and validates the HTTP/1.1 101 response from r,
// using req for response-parsing context.
func ClientHandshake(r io.Reader, req *http.Request) error {
	br := bufio.NewReader(r)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		return errors.Wrap(err, "handshake: read response")
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		return errors.Errorf("wire: handshake failed with status %d", resp.StatusCode)
	}
	return nil
}

func headerContainsToken(h http.Header, headerName, token string) bool {
	vals := h[http.CanonicalHeaderKey(headerName)]
	token = strings.ToLower(token)
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if strings.ToLower(strings.TrimSpace(part)) == token {
				return true
			}
		}
	}
	return false
}

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package wire implements the WebSocket RFC 6455 wire protocol: frame
// encoding/decoding with masking, extended payload lengths, fragment
// reassembly, control-frame handling (§4.D), and the HTTP Upgrade
// handshake (§4.E). Adapted from the teacher's core/protocol package,
// which kept two parallel, partially-duplicate frame codecs (protocol/
// and core/protocol/) — this merges them into one validating
// implementation per SPEC_FULL.md's testable properties (§8).
package wire

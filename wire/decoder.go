// File: wire/decoder.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Decoder sits above Codec and implements fragment reassembly, control
// frame interleaving, and UTF-8 validation of reassembled text messages
// (§4.D "Fragmentation", "Ping/pong", "Close"; §8 testable properties on
// fragment reassembly). Grounded on the teacher's
// protocol/connection.go handleControl switch, generalized into a
// standalone state machine decoupled from any particular transport.

package wire

import (
	"unicode/utf8"

	"github.com/momentics/topic-fabric/api"
)

// Message is a fully reassembled application message.
type Message struct {
	Opcode  byte // OpcodeText or OpcodeBinary
	Payload []byte
}

// Decoded is the result of feeding one Frame to the Decoder.
type Decoded struct {
	// Message is non-nil when a fragment sequence (or single-frame
	// message) has just completed.
	Message *Message
	// AutoReply is a pong frame for the caller to send. The acceptor and
	// client hand it to the connection's writer like any other frame, so
	// it queues behind bytes already pending there; there is no separate
	// priority lane.
	AutoReply *Frame
	// PeerClose is non-nil when the peer sent a close frame; the caller
	// must echo it (possibly via AutoReply-style priority) and tear the
	// connection down.
	PeerClose *Frame
}

// Decoder accumulates fragmented messages and interleaves control frames.
type Decoder struct {
	codec       *Codec
	fragOpcode  byte
	fragBuf     []byte
	fragmenting bool
}

// NewDecoder constructs a Decoder bound to codec's payload ceiling.
func NewDecoder(codec *Codec) *Decoder {
	return &Decoder{codec: codec}
}

// Feed processes one already-parsed Frame (see Codec.DecodeFrame) and
// returns what the caller must do next. A non-nil error signals a
// protocol violation the caller must close the connection for.
func (d *Decoder) Feed(f *Frame) (Decoded, error) {
	if f.IsControl() {
		return d.feedControl(f)
	}
	return d.feedData(f)
}

func (d *Decoder) feedControl(f *Frame) (Decoded, error) {
	switch f.Opcode {
	case OpcodePing:
		return Decoded{AutoReply: PongFrame(f.Payload)}, nil
	case OpcodePong:
		return Decoded{}, nil
	case OpcodeClose:
		return Decoded{PeerClose: f}, nil
	default:
		return Decoded{}, &api.CloseError{Code: CloseProtocolError, Reason: "unknown control opcode"}
	}
}

func (d *Decoder) feedData(f *Frame) (Decoded, error) {
	if !d.fragmenting {
		if f.Opcode == OpcodeContinuation {
			return Decoded{}, &api.CloseError{Code: CloseProtocolError, Reason: "continuation without preceding fragment"}
		}
		if f.Fin {
			if err := validateIfText(f.Opcode, f.Payload); err != nil {
				return Decoded{}, err
			}
			return Decoded{Message: &Message{Opcode: f.Opcode, Payload: f.Payload}}, nil
		}
		d.fragOpcode = f.Opcode
		d.fragBuf = append([]byte(nil), f.Payload...)
		d.fragmenting = true
		return Decoded{}, nil
	}

	if f.Opcode != OpcodeContinuation {
		return Decoded{}, &api.CloseError{Code: CloseProtocolError, Reason: "expected continuation frame"}
	}
	if len(d.fragBuf)+len(f.Payload) > d.codec.MaxPayload {
		d.resetFragment()
		return Decoded{}, &api.CloseError{Code: CloseMessageTooBig, Reason: "reassembled message exceeds maximum size"}
	}
	d.fragBuf = append(d.fragBuf, f.Payload...)
	if !f.Fin {
		return Decoded{}, nil
	}

	opcode := d.fragOpcode
	payload := d.fragBuf
	d.resetFragment()
	if err := validateIfText(opcode, payload); err != nil {
		return Decoded{}, err
	}
	return Decoded{Message: &Message{Opcode: opcode, Payload: payload}}, nil
}

func (d *Decoder) resetFragment() {
	d.fragmenting = false
	d.fragOpcode = 0
	d.fragBuf = nil
}

func validateIfText(opcode byte, payload []byte) error {
	if opcode == OpcodeText && !utf8.Valid(payload) {
		return &api.CloseError{Code: CloseInvalidPayloadData, Reason: "invalid UTF-8 in text message"}
	}
	return nil
}

// File: wire/decoder_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFragmentedTextReassembly covers scenario 2 of spec.md §8:
// (text,fin=0,"he"), (continuation,fin=0,"ll"), (continuation,fin=1,"o").
func TestFragmentedTextReassembly(t *testing.T) {
	d := NewDecoder(NewCodec(DefaultMaxFramePayload))

	res, err := d.Feed(&Frame{Opcode: OpcodeText, Fin: false, Payload: []byte("he")})
	require.NoError(t, err)
	require.Nil(t, res.Message)

	res, err = d.Feed(&Frame{Opcode: OpcodeContinuation, Fin: false, Payload: []byte("ll")})
	require.NoError(t, err)
	require.Nil(t, res.Message)

	res, err = d.Feed(&Frame{Opcode: OpcodeContinuation, Fin: true, Payload: []byte("o")})
	require.NoError(t, err)
	require.NotNil(t, res.Message)
	require.Equal(t, "hello", string(res.Message.Payload))
	require.Equal(t, byte(OpcodeText), res.Message.Opcode)
}

// TestPingInterleavesWithoutDisturbingFragment covers scenario 3:
// (text,fin=0,"AB"), (ping,"x"), (continuation,fin=1,"CD") -> one message "ABCD".
func TestPingInterleavesWithoutDisturbingFragment(t *testing.T) {
	d := NewDecoder(NewCodec(DefaultMaxFramePayload))

	res, err := d.Feed(&Frame{Opcode: OpcodeText, Fin: false, Payload: []byte("AB")})
	require.NoError(t, err)
	require.Nil(t, res.Message)

	res, err = d.Feed(&Frame{Opcode: OpcodePing, Fin: true, Payload: []byte("x")})
	require.NoError(t, err)
	require.NotNil(t, res.AutoReply)
	require.Equal(t, byte(OpcodePong), res.AutoReply.Opcode)
	require.Equal(t, []byte("x"), res.AutoReply.Payload)

	res, err = d.Feed(&Frame{Opcode: OpcodeContinuation, Fin: true, Payload: []byte("CD")})
	require.NoError(t, err)
	require.NotNil(t, res.Message)
	require.Equal(t, "ABCD", string(res.Message.Payload))
}

func TestContinuationWithoutStartIsProtocolError(t *testing.T) {
	d := NewDecoder(NewCodec(DefaultMaxFramePayload))
	_, err := d.Feed(&Frame{Opcode: OpcodeContinuation, Fin: true, Payload: []byte("x")})
	require.Error(t, err)
}

func TestInterruptingFragmentWithDataFrameIsProtocolError(t *testing.T) {
	d := NewDecoder(NewCodec(DefaultMaxFramePayload))
	_, err := d.Feed(&Frame{Opcode: OpcodeText, Fin: false, Payload: []byte("a")})
	require.NoError(t, err)
	_, err = d.Feed(&Frame{Opcode: OpcodeText, Fin: true, Payload: []byte("b")})
	require.Error(t, err)
}

func TestInvalidUTF8TextClosesWithCode1007(t *testing.T) {
	d := NewDecoder(NewCodec(DefaultMaxFramePayload))
	_, err := d.Feed(&Frame{Opcode: OpcodeText, Fin: true, Payload: []byte{0xff, 0xfe, 0xfd}})
	require.Error(t, err)
	ce, ok := err.(interface{ Error() string })
	require.True(t, ok)
	require.Contains(t, ce.Error(), "1007")
}

func TestPeerCloseIsSurfaced(t *testing.T) {
	d := NewDecoder(NewCodec(DefaultMaxFramePayload))
	closeFrame := CloseFrame(CloseNormalClosure, "bye")
	res, err := d.Feed(closeFrame)
	require.NoError(t, err)
	require.NotNil(t, res.PeerClose)
	code, reason, ok := res.PeerClose.CloseDetails()
	require.True(t, ok)
	require.Equal(t, CloseNormalClosure, code)
	require.Equal(t, "bye", reason)
}

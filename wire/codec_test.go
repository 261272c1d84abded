// File: wire/codec_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func fixedMaskKey() [4]byte { return [4]byte{0x11, 0x22, 0x33, 0x44} }

func TestRoundTripAllOpcodesAndLengths(t *testing.T) {
	codec := NewCodec(2 << 20)
	lengths := []int{0, 125, 126, 65535, 65536, 1 << 20}
	opcodes := []byte{OpcodeText, OpcodeBinary}

	for _, op := range opcodes {
		for _, n := range lengths {
			payload := make([]byte, n)
			for i := range payload {
				payload[i] = byte(i)
			}
			if op == OpcodeText {
				// keep payload valid UTF-8 for the round-trip check
				for i := range payload {
					payload[i] = byte('a' + i%26)
				}
			}

			for _, masked := range []bool{false, true} {
				var keyGen MaskKeyFunc
				if masked {
					keyGen = fixedMaskKey
				}
				f := &Frame{Opcode: op, Fin: true, Payload: payload}
				encoded, err := codec.EncodeFrame(f, keyGen)
				require.NoError(t, err)

				decoded, err := codec.DecodeFrame(bytes.NewReader(encoded), masked)
				require.NoError(t, err)
				require.Equal(t, op, decoded.Opcode)
				require.True(t, decoded.Fin)
				require.Equal(t, payload, decoded.Payload)
			}
		}
	}
}

func TestRoundTripControlOpcodes(t *testing.T) {
	codec := NewCodec(DefaultMaxFramePayload)
	for _, op := range []byte{OpcodeClose, OpcodePing, OpcodePong} {
		f := &Frame{Opcode: op, Fin: true, Payload: []byte("hi")}
		encoded, err := codec.EncodeFrame(f, nil)
		require.NoError(t, err)
		decoded, err := codec.DecodeFrame(bytes.NewReader(encoded), false)
		require.NoError(t, err)
		require.Equal(t, op, decoded.Opcode)
		require.Equal(t, []byte("hi"), decoded.Payload)
	}
}

func TestDecodeRejectsReservedBits(t *testing.T) {
	codec := NewCodec(DefaultMaxFramePayload)
	raw := []byte{0x90 | OpcodeText, 0x00} // FIN and RSV3 set
	_, err := codec.DecodeFrame(bytes.NewReader(raw), false)
	require.Error(t, err)
}

func TestDecodeRejectsMaskMismatch(t *testing.T) {
	codec := NewCodec(DefaultMaxFramePayload)
	f := &Frame{Opcode: OpcodeText, Fin: true, Payload: []byte("x")}
	encoded, err := codec.EncodeFrame(f, nil) // unmasked
	require.NoError(t, err)
	// Server-side decode requires mask bit set; this frame is unmasked.
	_, err = codec.DecodeFrame(bytes.NewReader(encoded), true)
	require.Error(t, err)
}

func TestEncodeRejectsOversizeControlFrame(t *testing.T) {
	codec := NewCodec(DefaultMaxFramePayload)
	f := &Frame{Opcode: OpcodePing, Fin: true, Payload: make([]byte, 200)}
	_, err := codec.EncodeFrame(f, nil)
	require.Error(t, err)
}

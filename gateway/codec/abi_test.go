package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeCallMessageLayout(t *testing.T) {
	addr := [20]byte{
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xAA,
		0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0x11, 0x22, 0x33, 0x44,
	}
	encoded, err := EncodeCallMessage(ActionSupply, addr)
	require.NoError(t, err)
	require.Len(t, encoded, CallMessageLength)

	// Word 0: offset 64 in the last four bytes, zero elsewhere.
	require.True(t, bytes.Equal(encoded[:28], make([]byte, 28)))
	require.Equal(t, []byte{0, 0, 0, 64}, encoded[28:32])
	// Word 1: address widened to 32 bytes with a zero prefix.
	require.True(t, bytes.Equal(encoded[32:44], make([]byte, 12)))
	require.Equal(t, addr[:], encoded[44:64])
	// Word 2: string length 6.
	require.Equal(t, []byte{0, 0, 0, 6}, encoded[92:96])
	// Word 3: the action bytes then zero padding.
	require.Equal(t, []byte("supply"), encoded[96:102])
	require.True(t, bytes.Equal(encoded[102:], make([]byte, 26)))
}

func TestCallMessageRoundTrip(t *testing.T) {
	for _, action := range []string{ActionSupply, ActionRepay} {
		addr := [20]byte{0xFE, 0xDC}
		encoded, err := EncodeCallMessage(action, addr)
		require.NoError(t, err)

		gotAction, gotAddr, err := DecodeCallMessage(encoded)
		require.NoError(t, err)
		require.Equal(t, action, gotAction)
		require.Equal(t, addr, gotAddr)
	}
}

func TestEncodeCallMessageRejectsBadAction(t *testing.T) {
	_, err := EncodeCallMessage("", [20]byte{})
	require.Error(t, err)
	_, err = EncodeCallMessage("an-action-name-longer-than-one-abi-word", [20]byte{})
	require.Error(t, err)
}

func TestDecodeCallMessageRejectsBadLayout(t *testing.T) {
	encoded, err := EncodeCallMessage(ActionRepay, [20]byte{0x01})
	require.NoError(t, err)

	_, _, err = DecodeCallMessage(encoded[:127])
	require.ErrorIs(t, err, ErrMalformedDepositMessage)

	wrongOffset := append([]byte(nil), encoded...)
	wrongOffset[31] = 65
	_, _, err = DecodeCallMessage(wrongOffset)
	require.ErrorIs(t, err, ErrMalformedDepositMessage)

	dirtyPrefix := append([]byte(nil), encoded...)
	dirtyPrefix[33] = 0x01
	_, _, err = DecodeCallMessage(dirtyPrefix)
	require.ErrorIs(t, err, ErrMalformedDepositMessage)

	zeroLength := append([]byte(nil), encoded...)
	zeroLength[95] = 0
	_, _, err = DecodeCallMessage(zeroLength)
	require.ErrorIs(t, err, ErrMalformedDepositMessage)

	dirtyPadding := append([]byte(nil), encoded...)
	dirtyPadding[CallMessageLength-1] = 0xFF
	_, _, err = DecodeCallMessage(dirtyPadding)
	require.ErrorIs(t, err, ErrMalformedDepositMessage)
}

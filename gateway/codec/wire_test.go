package codec

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscriminatorConstants(t *testing.T) {
	// Pinned against the Anchor convention sha256("global:" + name)[:8].
	require.Equal(t, "4121bac672df8539", hex.EncodeToString(DiscriminatorDepositAndCall[:]))
	require.Equal(t, "0eb51bbbab3ded93", hex.EncodeToString(DiscriminatorDepositTokenAndCall[:]))
	require.Equal(t, "b55e38a1c2ddc803", hex.EncodeToString(DiscriminatorCall[:]))
}

func TestRoute(t *testing.T) {
	instruction, ok := Route(DiscriminatorDepositAndCall)
	require.True(t, ok)
	require.Equal(t, InstructionDepositAndCall, instruction)

	instruction, ok = Route(DiscriminatorDepositTokenAndCall)
	require.True(t, ok)
	require.Equal(t, InstructionDepositTokenAndCall, instruction)

	instruction, ok = Route(DiscriminatorCall)
	require.True(t, ok)
	require.Equal(t, InstructionCall, instruction)

	_, ok = Route([8]byte{0xDE, 0xAD})
	require.False(t, ok)
}

func TestDepositMessageRoundTrip(t *testing.T) {
	receiver := bytes.Repeat([]byte{0x11}, 20)

	encoded, err := EncodeDepositMessage(DiscriminatorDepositAndCall, 12_000_000, receiver, nil, nil)
	require.NoError(t, err)

	decoded, err := DecodeDepositMessage(encoded)
	require.NoError(t, err)
	require.Equal(t, DiscriminatorDepositAndCall, decoded.Discriminator)
	require.Equal(t, uint64(12_000_000), decoded.Amount)
	require.Equal(t, receiver, decoded.Receiver[:])
	require.Empty(t, decoded.Payload)
	require.Nil(t, decoded.Revert)
}

func TestDepositMessageRoundTripWithPayloadAndRevert(t *testing.T) {
	receiver := bytes.Repeat([]byte{0x22}, 20)
	payload, err := EncodeCallMessage(ActionSupply, [20]byte{0xAB})
	require.NoError(t, err)
	revert := &RevertOptions{
		RevertAddress:    [20]byte{0x01},
		CallOnRevert:     true,
		AbortAddress:     [20]byte{0x02},
		RevertMessage:    []byte("deposit failed"),
		OnRevertGasLimit: 200_000,
	}

	encoded, err := EncodeDepositMessage(DiscriminatorDepositTokenAndCall, 55, receiver, payload, revert)
	require.NoError(t, err)

	decoded, err := DecodeDepositMessage(encoded)
	require.NoError(t, err)
	require.Equal(t, uint64(55), decoded.Amount)
	require.Equal(t, payload, decoded.Payload)
	require.NotNil(t, decoded.Revert)
	require.Equal(t, revert.RevertAddress, decoded.Revert.RevertAddress)
	require.True(t, decoded.Revert.CallOnRevert)
	require.Equal(t, revert.AbortAddress, decoded.Revert.AbortAddress)
	require.Equal(t, revert.RevertMessage, decoded.Revert.RevertMessage)
	require.Equal(t, revert.OnRevertGasLimit, decoded.Revert.OnRevertGasLimit)
}

func TestEncodeRejectsShortReceiver(t *testing.T) {
	receiver := bytes.Repeat([]byte{0x11}, 19)
	_, err := EncodeDepositMessage(DiscriminatorDepositAndCall, 1, receiver, nil, nil)
	require.ErrorIs(t, err, ErrMalformedDepositMessage)
}

func TestDecodeRejectsBadLayout(t *testing.T) {
	receiver := bytes.Repeat([]byte{0x33}, 20)
	encoded, err := EncodeDepositMessage(DiscriminatorDepositAndCall, 7, receiver, []byte{0x01, 0x02}, nil)
	require.NoError(t, err)

	cases := map[string][]byte{
		"truncated header": encoded[:20],
		"missing tag":      encoded[:len(encoded)-1],
		"trailing byte":    append(append([]byte(nil), encoded...), 0x00),
	}
	for name, data := range cases {
		_, err := DecodeDepositMessage(data)
		require.ErrorIs(t, err, ErrMalformedDepositMessage, name)
	}

	// Payload length pointing past the end of the message.
	overrun := append([]byte(nil), encoded...)
	overrun[36] = 0xFF
	_, err = DecodeDepositMessage(overrun)
	require.ErrorIs(t, err, ErrMalformedDepositMessage)

	// Unknown revert tag.
	badTag := append([]byte(nil), encoded...)
	badTag[len(badTag)-1] = 0x07
	_, err = DecodeDepositMessage(badTag)
	require.ErrorIs(t, err, ErrMalformedDepositMessage)
}

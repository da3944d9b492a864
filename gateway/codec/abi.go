package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// CallMessageLength is the hard contract constant every inner call message is
// right-padded to. The padding length is agreed out-of-band; the receiver
// never infers it.
const CallMessageLength = 128

const abiWord = 32

// Inner message actions routed by the lending handler.
const (
	ActionSupply = "supply"
	ActionRepay  = "repay"
)

// EncodeCallMessage builds the ABI-style inner message
// abi.encode(action, onBehalfOf) right-padded to CallMessageLength:
// word 0 holds the offset to the string data, word 1 the 32-byte-widened
// address, word 2 the string length and word 3 the string bytes.
func EncodeCallMessage(action string, onBehalfOf [20]byte) ([]byte, error) {
	if action == "" || len(action) > abiWord {
		return nil, fmt.Errorf("codec: action %q must be 1..%d bytes", action, abiWord)
	}
	out := make([]byte, 0, CallMessageLength)

	var offsetWord [abiWord]byte
	binary.BigEndian.PutUint32(offsetWord[28:], 2*abiWord)
	out = append(out, offsetWord[:]...)

	var addressWord [abiWord]byte
	copy(addressWord[12:], onBehalfOf[:])
	out = append(out, addressWord[:]...)

	var lengthWord [abiWord]byte
	binary.BigEndian.PutUint32(lengthWord[28:], uint32(len(action)))
	out = append(out, lengthWord[:]...)

	var dataWord [abiWord]byte
	copy(dataWord[:], action)
	out = append(out, dataWord[:]...)

	// Already four words; keep the resize for when the constant grows.
	for len(out) < CallMessageLength {
		out = append(out, 0)
	}
	return out, nil
}

// DecodeCallMessage parses an inner call message back into its action string
// and on-behalf-of address. The full 128-byte layout is validated, including
// the zero prefix of the widened address.
func DecodeCallMessage(data []byte) (string, [20]byte, error) {
	var addr [20]byte
	if len(data) != CallMessageLength {
		return "", addr, fmt.Errorf("%w: call message must be %d bytes, got %d", ErrMalformedDepositMessage, CallMessageLength, len(data))
	}
	offset := binary.BigEndian.Uint32(data[28:32])
	if offset != 2*abiWord || !isZero(data[:28]) {
		return "", addr, fmt.Errorf("%w: unexpected string offset", ErrMalformedDepositMessage)
	}
	if !isZero(data[abiWord : abiWord+12]) {
		return "", addr, fmt.Errorf("%w: address word has non-zero prefix", ErrMalformedDepositMessage)
	}
	copy(addr[:], data[abiWord+12:2*abiWord])

	length := binary.BigEndian.Uint32(data[2*abiWord+28 : 3*abiWord])
	if !isZero(data[2*abiWord:2*abiWord+28]) || length == 0 || length > abiWord {
		return "", addr, fmt.Errorf("%w: invalid action length %d", ErrMalformedDepositMessage, length)
	}
	action := data[3*abiWord : 3*abiWord+int(length)]
	if !isZero(data[3*abiWord+int(length):]) {
		return "", addr, fmt.Errorf("%w: non-zero padding after action", ErrMalformedDepositMessage)
	}
	return string(action), addr, nil
}

func isZero(b []byte) bool {
	return bytes.Count(b, []byte{0}) == len(b)
}

package codec

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedDepositMessage indicates a payload whose byte layout does not
// match the deposit-and-call wire format exactly. There is no implicit
// padding anywhere in the layout.
var ErrMalformedDepositMessage = errors.New("codec: malformed deposit message")

const (
	discriminatorLen = 8
	amountLen        = 8
	receiverLen      = 20
	lengthPrefixLen  = 4
	revertTagLen     = 1

	revertTagNone    = 0x00
	revertTagOptions = 0x01
)

// Discriminator derives the 8-byte function tag from the canonical function
// name. Sender and receiver must compute it identically: nothing at this
// layer type-checks the payload against the handler it routes to.
func Discriminator(functionName string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + functionName))
	var out [8]byte
	copy(out[:], sum[:discriminatorLen])
	return out
}

// RevertOptions mirrors the gateway interface record carried behind revert
// tag 0x01: where to return funds and whether to call back when the
// destination-side call fails.
type RevertOptions struct {
	RevertAddress    [20]byte
	CallOnRevert     bool
	AbortAddress     [20]byte
	RevertMessage    []byte
	OnRevertGasLimit uint64
}

// DepositMessage is the decoded deposit-and-call instruction. It is
// constructed per cross-chain call and never persisted.
type DepositMessage struct {
	Discriminator [8]byte
	Amount        uint64
	Receiver      [20]byte
	Payload       []byte
	Revert        *RevertOptions
}

// EncodeDepositMessage serializes the instruction as
// [8-byte discriminator][u64 LE amount][20-byte receiver][u32 LE length]
// [inner bytes][1-byte revert tag]. The receiver must be exactly 20 bytes.
func EncodeDepositMessage(discriminator [8]byte, amount uint64, receiver []byte, payload []byte, revert *RevertOptions) ([]byte, error) {
	if len(receiver) != receiverLen {
		return nil, fmt.Errorf("%w: receiver must be %d bytes, got %d", ErrMalformedDepositMessage, receiverLen, len(receiver))
	}
	out := make([]byte, 0, discriminatorLen+amountLen+receiverLen+lengthPrefixLen+len(payload)+revertTagLen)
	out = append(out, discriminator[:]...)
	out = binary.LittleEndian.AppendUint64(out, amount)
	out = append(out, receiver...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, payload...)
	if revert == nil {
		out = append(out, revertTagNone)
		return out, nil
	}
	out = append(out, revertTagOptions)
	out = appendRevertOptions(out, revert)
	return out, nil
}

// DecodeDepositMessage parses the wire bytes back into a DepositMessage. Any
// length mismatch, truncation or trailing garbage fails
// ErrMalformedDepositMessage.
func DecodeDepositMessage(data []byte) (*DepositMessage, error) {
	header := discriminatorLen + amountLen + receiverLen + lengthPrefixLen
	if len(data) < header+revertTagLen {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the fixed header", ErrMalformedDepositMessage, len(data))
	}
	msg := &DepositMessage{}
	copy(msg.Discriminator[:], data[:discriminatorLen])
	offset := discriminatorLen
	msg.Amount = binary.LittleEndian.Uint64(data[offset:])
	offset += amountLen
	copy(msg.Receiver[:], data[offset:])
	offset += receiverLen
	payloadLen := int(binary.LittleEndian.Uint32(data[offset:]))
	offset += lengthPrefixLen
	if len(data) < offset+payloadLen+revertTagLen {
		return nil, fmt.Errorf("%w: payload length %d overruns message", ErrMalformedDepositMessage, payloadLen)
	}
	msg.Payload = append([]byte(nil), data[offset:offset+payloadLen]...)
	offset += payloadLen

	switch data[offset] {
	case revertTagNone:
		offset += revertTagLen
	case revertTagOptions:
		offset += revertTagLen
		revert, consumed, err := decodeRevertOptions(data[offset:])
		if err != nil {
			return nil, err
		}
		msg.Revert = revert
		offset += consumed
	default:
		return nil, fmt.Errorf("%w: unknown revert tag 0x%02x", ErrMalformedDepositMessage, data[offset])
	}
	if offset != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedDepositMessage, len(data)-offset)
	}
	return msg, nil
}

// appendRevertOptions writes the Borsh-style record: fixed-width addresses,
// one-byte bool, length-prefixed message, u64 LE gas limit.
func appendRevertOptions(out []byte, revert *RevertOptions) []byte {
	out = append(out, revert.RevertAddress[:]...)
	if revert.CallOnRevert {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = append(out, revert.AbortAddress[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(revert.RevertMessage)))
	out = append(out, revert.RevertMessage...)
	out = binary.LittleEndian.AppendUint64(out, revert.OnRevertGasLimit)
	return out
}

func decodeRevertOptions(data []byte) (*RevertOptions, int, error) {
	fixed := 20 + 1 + 20 + 4
	if len(data) < fixed {
		return nil, 0, fmt.Errorf("%w: truncated revert options", ErrMalformedDepositMessage)
	}
	revert := &RevertOptions{}
	copy(revert.RevertAddress[:], data[:20])
	switch data[20] {
	case 0:
	case 1:
		revert.CallOnRevert = true
	default:
		return nil, 0, fmt.Errorf("%w: revert bool byte 0x%02x", ErrMalformedDepositMessage, data[20])
	}
	copy(revert.AbortAddress[:], data[21:41])
	msgLen := int(binary.LittleEndian.Uint32(data[41:]))
	offset := fixed
	if len(data) < offset+msgLen+8 {
		return nil, 0, fmt.Errorf("%w: revert message length %d overruns record", ErrMalformedDepositMessage, msgLen)
	}
	revert.RevertMessage = append([]byte(nil), data[offset:offset+msgLen]...)
	offset += msgLen
	revert.OnRevertGasLimit = binary.LittleEndian.Uint64(data[offset:])
	offset += 8
	return revert, offset, nil
}

package gateway

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"crosslend/core/events"
	"crosslend/core/types"
	"crosslend/crypto"
	"crosslend/gateway/codec"
	"crosslend/native/lending"
	"crosslend/observability"
	"crosslend/storage"
)

var (
	ErrSourceChainNotAllowed  = errors.New("gateway: source chain not allowed")
	ErrUnknownExternalAsset   = errors.New("gateway: external asset not mapped")
	ErrUnsupportedInstruction = errors.New("gateway: instruction carries no asset")
	ErrUnknownAction          = errors.New("gateway: unknown call action")
	ErrMissingDeliveryID      = errors.New("gateway: delivery id required")
)

const replayPrefix = "gw/msg/"

// Ledger is the slice of the lending engine the inbound path drives.
type Ledger interface {
	Supply(user crypto.Address, asset string, amount *big.Int) error
	Repay(user crypto.Address, asset string, amount *big.Int) (*big.Int, error)
	CreditAccount(user crypto.Address, asset string, amount *big.Int) error
}

// ChainRules is the registry view the gateway consults before touching the
// ledger.
type ChainRules interface {
	IsSourceChainAllowed(chainID uint64) bool
	ResolveExternalAsset(chainID uint64, externalID string) (string, bool)
}

// EventSink receives gateway events. A nil sink drops them.
type EventSink interface {
	Emit(evt *types.Event)
}

// Inbound lands deposit-and-call messages on the ledger. Delivery from the
// host relayer is at-least-once; the replay ledger makes application
// exactly-once by message id.
type Inbound struct {
	ledger  Ledger
	rules   ChainRules
	replay  storage.Database
	events  EventSink
	metrics *observability.GatewayMetrics
}

func NewInbound(ledger Ledger, rules ChainRules, replay storage.Database) *Inbound {
	return &Inbound{
		ledger:  ledger,
		rules:   rules,
		replay:  replay,
		metrics: observability.Gateway(),
	}
}

// SetEventSink wires the event receiver.
func (in *Inbound) SetEventSink(sink EventSink) { in.events = sink }

func (in *Inbound) emit(evt interface{ Event() *types.Event }) {
	if in.events == nil {
		return
	}
	in.events.Emit(evt.Event())
}

// MessageID computes the replay key for a delivery: the digest of the source
// chain, the relayer's delivery identity (source transaction hash or nonce)
// and the raw payload bytes. The delivery id keeps two legitimate deposits
// with byte-identical payloads distinct; only a redelivery of the same source
// event maps to the same id.
func MessageID(sourceChain uint64, deliveryID string, data []byte) [32]byte {
	h := sha256.New()
	var chain [8]byte
	binary.LittleEndian.PutUint64(chain[:], sourceChain)
	h.Write(chain[:])
	h.Write([]byte(deliveryID))
	h.Write([]byte{0})
	h.Write(data)
	var id [32]byte
	copy(id[:], h.Sum(nil))
	return id
}

// HandleDepositAndCall processes one inbound delivery, identified by the
// source event's delivery id. Duplicates are acknowledged without re-applying.
// Failures are terminal for this delivery and leave the replay ledger
// untouched so the relayer can redeliver.
func (in *Inbound) HandleDepositAndCall(sourceChain uint64, deliveryID, externalAsset string, data []byte) error {
	if in == nil || in.ledger == nil || in.rules == nil || in.replay == nil {
		return errors.New("gateway: inbound not configured")
	}
	if deliveryID == "" {
		in.metrics.RecordInbound("rejected")
		return ErrMissingDeliveryID
	}
	id := MessageID(sourceChain, deliveryID, data)
	replayKey := []byte(replayPrefix + hex.EncodeToString(id[:]))
	seen, err := in.replay.Has(replayKey)
	if err != nil {
		return err
	}
	if seen {
		in.metrics.RecordInbound("duplicate")
		in.emit(events.GatewayDuplicateDelivery{MessageID: id, SourceChain: sourceChain})
		return nil
	}

	if !in.rules.IsSourceChainAllowed(sourceChain) {
		in.metrics.RecordInbound("rejected")
		return fmt.Errorf("%w: %d", ErrSourceChainNotAllowed, sourceChain)
	}
	hubAsset, ok := in.rules.ResolveExternalAsset(sourceChain, externalAsset)
	if !ok {
		in.metrics.RecordInbound("rejected")
		return fmt.Errorf("%w: chain %d asset %s", ErrUnknownExternalAsset, sourceChain, externalAsset)
	}

	msg, err := codec.DecodeDepositMessage(data)
	if err != nil {
		in.metrics.RecordInbound("malformed")
		return err
	}
	instruction, ok := codec.Route(msg.Discriminator)
	if !ok {
		in.metrics.RecordInbound("malformed")
		return fmt.Errorf("%w: unknown discriminator %x", codec.ErrMalformedDepositMessage, msg.Discriminator)
	}
	if instruction == codec.InstructionCall {
		in.metrics.RecordInbound("rejected")
		return fmt.Errorf("%w: %s", ErrUnsupportedInstruction, instruction)
	}

	action, onBehalfOf, err := codec.DecodeCallMessage(msg.Payload)
	if err != nil {
		in.metrics.RecordInbound("malformed")
		return err
	}
	user := crypto.NewAddress(onBehalfOf[:])
	amount := new(big.Int).SetUint64(msg.Amount)

	switch action {
	case codec.ActionSupply:
		if err := in.ledger.Supply(user, hubAsset, amount); err != nil {
			in.metrics.RecordInbound("error")
			return err
		}
	case codec.ActionRepay:
		// The attached funds land on the hub account first; Repay pulls
		// only the clamped portion so any excess stays spendable. A repay
		// against zero debt still consumes the delivery: the funds remain
		// on the hub balance and a retry must not credit them twice.
		if err := in.ledger.CreditAccount(user, hubAsset, amount); err != nil {
			in.metrics.RecordInbound("error")
			return err
		}
		if _, err := in.ledger.Repay(user, hubAsset, amount); err != nil && !errors.Is(err, lending.ErrNoDebtToRepay) {
			in.metrics.RecordInbound("error")
			return err
		}
	default:
		in.metrics.RecordInbound("rejected")
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if err := in.replay.Put(replayKey, []byte{1}); err != nil {
		return err
	}
	in.metrics.RecordInbound("accepted")
	in.emit(events.GatewayDepositCredited{
		MessageID:   id,
		SourceChain: sourceChain,
		Asset:       hubAsset,
		Amount:      amount,
		Receiver:    onBehalfOf,
	})
	return nil
}

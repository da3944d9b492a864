package events

import (
	"encoding/hex"
	"math/big"

	"crosslend/core/types"
	"crosslend/crypto"
)

const (
	TypeGatewayDepositCredited   = "gateway.deposit_credited"
	TypeGatewayDuplicateDelivery = "gateway.duplicate_delivery"
	TypeGatewayPayoutQueued      = "gateway.payout_queued"
)

type GatewayDepositCredited struct {
	MessageID   [32]byte
	SourceChain uint64
	Asset       string
	Amount      *big.Int
	Receiver    [20]byte
}

func (GatewayDepositCredited) EventType() string { return TypeGatewayDepositCredited }

func (e GatewayDepositCredited) Event() *types.Event {
	return &types.Event{
		Type: TypeGatewayDepositCredited,
		Attributes: map[string]string{
			"messageId":   hex.EncodeToString(e.MessageID[:]),
			"sourceChain": uintToString(e.SourceChain),
			"asset":       e.Asset,
			"amount":      formatAmount(e.Amount),
			"receiver":    crypto.NewAddress(e.Receiver[:]).String(),
		},
	}
}

type GatewayDuplicateDelivery struct {
	MessageID   [32]byte
	SourceChain uint64
}

func (GatewayDuplicateDelivery) EventType() string { return TypeGatewayDuplicateDelivery }

func (e GatewayDuplicateDelivery) Event() *types.Event {
	return &types.Event{
		Type: TypeGatewayDuplicateDelivery,
		Attributes: map[string]string{
			"messageId":   hex.EncodeToString(e.MessageID[:]),
			"sourceChain": uintToString(e.SourceChain),
		},
	}
}

type GatewayPayoutQueued struct {
	InstructionID    string
	Asset            string
	Amount           *big.Int
	DestinationChain uint64
	Recipient        [20]byte
}

func (GatewayPayoutQueued) EventType() string { return TypeGatewayPayoutQueued }

func (e GatewayPayoutQueued) Event() *types.Event {
	return &types.Event{
		Type: TypeGatewayPayoutQueued,
		Attributes: map[string]string{
			"instructionId":    e.InstructionID,
			"asset":            e.Asset,
			"amount":           formatAmount(e.Amount),
			"destinationChain": uintToString(e.DestinationChain),
			"recipient":        "0x" + hex.EncodeToString(e.Recipient[:]),
		},
	}
}

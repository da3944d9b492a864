package modules

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"crosslend/gateway"
	"crosslend/gateway/codec"
)

// GatewayModule exposes the inbound cross-chain entry point to the host
// relayer over RPC.
type GatewayModule struct {
	inbound *gateway.Inbound
}

func NewGatewayModule(inbound *gateway.Inbound) *GatewayModule {
	return &GatewayModule{inbound: inbound}
}

func (m *GatewayModule) moduleUnavailable() *ModuleError {
	return &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: "gateway module not available"}
}

// DeliverResult acknowledges an inbound delivery with its replay id.
type DeliverResult struct {
	MessageID string `json:"messageId"`
}

// Deliver decodes the hex payload and lands it on the ledger. The delivery id
// is the source event identity (transaction hash or nonce) the relayer
// observed; duplicates of the same delivery are acknowledged with the same
// message id.
func (m *GatewayModule) Deliver(sourceChain uint64, deliveryID, externalAsset, payloadHex string) (*DeliverResult, *ModuleError) {
	if m == nil || m.inbound == nil {
		return nil, m.moduleUnavailable()
	}
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return nil, invalidParams("deliveryId required")
	}
	data, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(payloadHex), "0x"))
	if err != nil {
		return nil, invalidParams(fmt.Sprintf("payload must be hex: %v", err))
	}
	if err := m.inbound.HandleDepositAndCall(sourceChain, deliveryID, externalAsset, data); err != nil {
		status := http.StatusInternalServerError
		code := codeServerError
		if errors.Is(err, codec.ErrMalformedDepositMessage) ||
			errors.Is(err, gateway.ErrSourceChainNotAllowed) ||
			errors.Is(err, gateway.ErrUnknownExternalAsset) ||
			errors.Is(err, gateway.ErrUnsupportedInstruction) ||
			errors.Is(err, gateway.ErrUnknownAction) ||
			errors.Is(err, gateway.ErrMissingDeliveryID) {
			status = http.StatusBadRequest
			code = codeInvalidParams
		}
		return nil, &ModuleError{HTTPStatus: status, Code: code, Message: err.Error()}
	}
	id := gateway.MessageID(sourceChain, deliveryID, data)
	return &DeliverResult{MessageID: hex.EncodeToString(id[:])}, nil
}

package rpc

import (
	"net/http"
)

type gatewayDeliverParams struct {
	SourceChain   uint64 `json:"sourceChain"`
	DeliveryID    string `json:"deliveryId"`
	ExternalAsset string `json:"externalAsset"`
	Payload       string `json:"payload"`
}

func (s *Server) handleGatewayDeliver(w http.ResponseWriter, req *RPCRequest) {
	var params gatewayDeliverParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	result, moduleErr := s.gateway.Deliver(params.SourceChain, params.DeliveryID, params.ExternalAsset, params.Payload)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, result)
}

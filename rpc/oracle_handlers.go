package rpc

import (
	"net/http"
)

type setPriceParams struct {
	Asset    string `json:"asset"`
	PriceUSD string `json:"priceUSD"`
}

type getPriceParams struct {
	Asset string `json:"asset"`
}

func (s *Server) handleOracleSetPrice(w http.ResponseWriter, req *RPCRequest) {
	var params setPriceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	if moduleErr := s.oracle.SetPrice(params.Asset, params.PriceUSD); moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, statusResult{Status: "ok"})
}

func (s *Server) handleOracleGetPrice(w http.ResponseWriter, req *RPCRequest) {
	var params getPriceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	price, moduleErr := s.oracle.GetPrice(params.Asset)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, price)
}

package rpc

import (
	"net/http"
)

type supplyParams struct {
	User   string `json:"user"`
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type transferParams struct {
	User             string `json:"user"`
	Asset            string `json:"asset"`
	Amount           string `json:"amount"`
	DestinationChain uint64 `json:"destinationChain,omitempty"`
	Recipient        string `json:"recipient,omitempty"`
}

type liquidateParams struct {
	Liquidator      string `json:"liquidator"`
	Borrower        string `json:"borrower"`
	CollateralAsset string `json:"collateralAsset"`
	DebtAsset       string `json:"debtAsset"`
	Amount          string `json:"amount"`
}

type accountParams struct {
	User string `json:"user"`
}

type positionParams struct {
	User  string `json:"user"`
	Asset string `json:"asset"`
}

type marketParams struct {
	Asset string `json:"asset"`
}

type statusResult struct {
	Status string `json:"status"`
}

type amountResult struct {
	Amount string `json:"amount"`
}

type boolResult struct {
	Allowed bool `json:"allowed"`
}

type liquidateResult struct {
	Repaid string `json:"repaid"`
	Seized string `json:"seized"`
}

func (s *Server) handleSupply(w http.ResponseWriter, req *RPCRequest) {
	var params supplyParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	if moduleErr := s.lending.Supply(params.User, params.Asset, params.Amount); moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, statusResult{Status: "ok"})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, req *RPCRequest) {
	var params transferParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	if moduleErr := s.lending.Withdraw(params.User, params.Asset, params.Amount, params.DestinationChain, params.Recipient); moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, statusResult{Status: "ok"})
}

func (s *Server) handleBorrow(w http.ResponseWriter, req *RPCRequest) {
	var params transferParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	if moduleErr := s.lending.Borrow(params.User, params.Asset, params.Amount, params.DestinationChain, params.Recipient); moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, statusResult{Status: "ok"})
}

func (s *Server) handleRepay(w http.ResponseWriter, req *RPCRequest) {
	var params supplyParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	repaid, moduleErr := s.lending.Repay(params.User, params.Asset, params.Amount)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, amountResult{Amount: repaid})
}

func (s *Server) handleLiquidate(w http.ResponseWriter, req *RPCRequest) {
	var params liquidateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	repaid, seized, moduleErr := s.lending.Liquidate(params.Liquidator, params.Borrower, params.CollateralAsset, params.DebtAsset, params.Amount)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, liquidateResult{Repaid: repaid, Seized: seized})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	overview, moduleErr := s.lending.GetAccount(params.User)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, overview)
}

func (s *Server) handleGetPosition(w http.ResponseWriter, req *RPCRequest) {
	var params positionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	position, moduleErr := s.lending.GetPosition(params.User, params.Asset)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, position)
}

func (s *Server) handleGetMarket(w http.ResponseWriter, req *RPCRequest) {
	var params marketParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	market, moduleErr := s.lending.GetMarket(params.Asset)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, market)
}

func (s *Server) handleMaxAvailableBorrows(w http.ResponseWriter, req *RPCRequest) {
	var params positionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	max, moduleErr := s.lending.MaxAvailableBorrows(params.User, params.Asset)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, amountResult{Amount: max})
}

func (s *Server) handleCanBorrow(w http.ResponseWriter, req *RPCRequest) {
	var params supplyParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	allowed, moduleErr := s.lending.CanBorrow(params.User, params.Asset, params.Amount)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, boolResult{Allowed: allowed})
}

func (s *Server) handleCanWithdraw(w http.ResponseWriter, req *RPCRequest) {
	var params supplyParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	allowed, moduleErr := s.lending.CanWithdraw(params.User, params.Asset, params.Amount)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, boolResult{Allowed: allowed})
}

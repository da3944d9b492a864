package modules

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"crosslend/crypto"
	"crosslend/native/lending"
	"crosslend/observability"
)

// LendingModule adapts the ledger engine to the JSON-RPC surface: it parses
// the string-typed request fields and maps engine errors to RPC errors.
type LendingModule struct {
	engine  *lending.Engine
	metrics *observability.LendingMetrics
}

func NewLendingModule(engine *lending.Engine) *LendingModule {
	return &LendingModule{engine: engine, metrics: observability.Lending()}
}

func (m *LendingModule) observe(operation string, start time.Time, moduleErr *ModuleError) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case moduleErr == nil:
	case moduleErr.Code == codeInvalidParams:
		outcome = "rejected"
	default:
		outcome = "error"
	}
	m.metrics.Observe(operation, outcome, time.Since(start))
}

func (m *LendingModule) moduleUnavailable() *ModuleError {
	return &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: "lending module not available"}
}

func (m *LendingModule) wrapError(err error) *ModuleError {
	if err == nil {
		return nil
	}
	status := http.StatusInternalServerError
	code := codeServerError
	message := err.Error()
	if strings.HasPrefix(message, "lending engine:") || strings.HasPrefix(message, "oracle:") || strings.HasPrefix(message, "registry:") {
		status = http.StatusBadRequest
		code = codeInvalidParams
	}
	return &ModuleError{HTTPStatus: status, Code: code, Message: message}
}

func parseAddress(field, value string) (crypto.Address, *ModuleError) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return crypto.Address{}, invalidParams(fmt.Sprintf("invalid %s address: %v", field, err))
	}
	return addr, nil
}

func parseAmount(value string) (*big.Int, *ModuleError) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return nil, invalidParams(fmt.Sprintf("invalid amount %q", value))
	}
	return amount, nil
}

func parseRecipient(value string) ([20]byte, *ModuleError) {
	var recipient [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if trimmed == "" {
		return recipient, nil
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil || len(raw) != 20 {
		return recipient, invalidParams(fmt.Sprintf("recipient must be 20 hex bytes, got %q", value))
	}
	copy(recipient[:], raw)
	return recipient, nil
}

func (m *LendingModule) Supply(user, asset, amount string) *ModuleError {
	if m == nil || m.engine == nil {
		return m.moduleUnavailable()
	}
	addr, moduleErr := parseAddress("user", user)
	if moduleErr != nil {
		return moduleErr
	}
	value, moduleErr := parseAmount(amount)
	if moduleErr != nil {
		return moduleErr
	}
	start := time.Now()
	moduleErr = m.wrapError(m.engine.Supply(addr, asset, value))
	m.observe("supply", start, moduleErr)
	return moduleErr
}

func (m *LendingModule) Withdraw(user, asset, amount string, destinationChain uint64, recipient string) *ModuleError {
	if m == nil || m.engine == nil {
		return m.moduleUnavailable()
	}
	addr, moduleErr := parseAddress("user", user)
	if moduleErr != nil {
		return moduleErr
	}
	value, moduleErr := parseAmount(amount)
	if moduleErr != nil {
		return moduleErr
	}
	target, moduleErr := parseRecipient(recipient)
	if moduleErr != nil {
		return moduleErr
	}
	if destinationChain == 0 {
		destinationChain = m.engine.HubChainID()
	}
	start := time.Now()
	moduleErr = m.wrapError(m.engine.Withdraw(addr, asset, value, destinationChain, target))
	m.observe("withdraw", start, moduleErr)
	return moduleErr
}

func (m *LendingModule) Borrow(user, asset, amount string, destinationChain uint64, recipient string) *ModuleError {
	if m == nil || m.engine == nil {
		return m.moduleUnavailable()
	}
	addr, moduleErr := parseAddress("user", user)
	if moduleErr != nil {
		return moduleErr
	}
	value, moduleErr := parseAmount(amount)
	if moduleErr != nil {
		return moduleErr
	}
	target, moduleErr := parseRecipient(recipient)
	if moduleErr != nil {
		return moduleErr
	}
	if destinationChain == 0 {
		destinationChain = m.engine.HubChainID()
	}
	start := time.Now()
	moduleErr = m.wrapError(m.engine.Borrow(addr, asset, value, destinationChain, target))
	m.observe("borrow", start, moduleErr)
	return moduleErr
}

func (m *LendingModule) Repay(user, asset, amount string) (string, *ModuleError) {
	if m == nil || m.engine == nil {
		return "", m.moduleUnavailable()
	}
	addr, moduleErr := parseAddress("user", user)
	if moduleErr != nil {
		return "", moduleErr
	}
	value, moduleErr := parseAmount(amount)
	if moduleErr != nil {
		return "", moduleErr
	}
	start := time.Now()
	repaid, err := m.engine.Repay(addr, asset, value)
	moduleErr = m.wrapError(err)
	m.observe("repay", start, moduleErr)
	if moduleErr != nil {
		return "", moduleErr
	}
	return repaid.String(), nil
}

func (m *LendingModule) Liquidate(liquidator, borrower, collateralAsset, debtAsset, amount string) (string, string, *ModuleError) {
	if m == nil || m.engine == nil {
		return "", "", m.moduleUnavailable()
	}
	liquidatorAddr, moduleErr := parseAddress("liquidator", liquidator)
	if moduleErr != nil {
		return "", "", moduleErr
	}
	borrowerAddr, moduleErr := parseAddress("borrower", borrower)
	if moduleErr != nil {
		return "", "", moduleErr
	}
	value, moduleErr := parseAmount(amount)
	if moduleErr != nil {
		return "", "", moduleErr
	}
	start := time.Now()
	repaid, seized, err := m.engine.Liquidate(liquidatorAddr, borrowerAddr, collateralAsset, debtAsset, value)
	moduleErr = m.wrapError(err)
	m.observe("liquidate", start, moduleErr)
	if moduleErr != nil {
		return "", "", moduleErr
	}
	return repaid.String(), seized.String(), nil
}

// AccountOverview is the read-side aggregate returned by lend_getAccount.
type AccountOverview struct {
	Address            string `json:"address"`
	TotalCollateralUSD string `json:"totalCollateralUSD"`
	TotalDebtUSD       string `json:"totalDebtUSD"`
	BorrowCapacityUSD  string `json:"borrowCapacityUSD"`
	HealthFactor       string `json:"healthFactor"`
}

func (m *LendingModule) GetAccount(user string) (*AccountOverview, *ModuleError) {
	if m == nil || m.engine == nil {
		return nil, m.moduleUnavailable()
	}
	addr, moduleErr := parseAddress("user", user)
	if moduleErr != nil {
		return nil, moduleErr
	}
	snapshot, err := m.engine.Snapshot(addr)
	if err != nil {
		return nil, m.wrapError(err)
	}
	return &AccountOverview{
		Address:            addr.String(),
		TotalCollateralUSD: snapshot.TotalCollateralUSD.String(),
		TotalDebtUSD:       snapshot.TotalDebtUSD.String(),
		BorrowCapacityUSD:  snapshot.BorrowCapacityUSD.String(),
		HealthFactor:       snapshot.HealthFactor.String(),
	}, nil
}

// PositionView is the per-asset balance pair returned by lend_getPosition.
type PositionView struct {
	Asset    string `json:"asset"`
	Supplied string `json:"supplied"`
	Borrowed string `json:"borrowed"`
}

func (m *LendingModule) GetPosition(user, asset string) (*PositionView, *ModuleError) {
	if m == nil || m.engine == nil {
		return nil, m.moduleUnavailable()
	}
	addr, moduleErr := parseAddress("user", user)
	if moduleErr != nil {
		return nil, moduleErr
	}
	supplied, err := m.engine.GetSupplyBalance(addr, asset)
	if err != nil {
		return nil, m.wrapError(err)
	}
	borrowed, err := m.engine.GetBorrowBalance(addr, asset)
	if err != nil {
		return nil, m.wrapError(err)
	}
	return &PositionView{Asset: asset, Supplied: supplied.String(), Borrowed: borrowed.String()}, nil
}

func (m *LendingModule) MaxAvailableBorrows(user, asset string) (string, *ModuleError) {
	if m == nil || m.engine == nil {
		return "", m.moduleUnavailable()
	}
	addr, moduleErr := parseAddress("user", user)
	if moduleErr != nil {
		return "", moduleErr
	}
	max, err := m.engine.MaxAvailableBorrows(addr, asset)
	if err != nil {
		return "", m.wrapError(err)
	}
	return max.String(), nil
}

func (m *LendingModule) CanBorrow(user, asset, amount string) (bool, *ModuleError) {
	if m == nil || m.engine == nil {
		return false, m.moduleUnavailable()
	}
	addr, moduleErr := parseAddress("user", user)
	if moduleErr != nil {
		return false, moduleErr
	}
	value, moduleErr := parseAmount(amount)
	if moduleErr != nil {
		return false, moduleErr
	}
	ok, err := m.engine.CanBorrow(addr, asset, value)
	if err != nil {
		return false, m.wrapError(err)
	}
	return ok, nil
}

func (m *LendingModule) CanWithdraw(user, asset, amount string) (bool, *ModuleError) {
	if m == nil || m.engine == nil {
		return false, m.moduleUnavailable()
	}
	addr, moduleErr := parseAddress("user", user)
	if moduleErr != nil {
		return false, moduleErr
	}
	value, moduleErr := parseAmount(amount)
	if moduleErr != nil {
		return false, moduleErr
	}
	ok, err := m.engine.CanWithdraw(addr, asset, value)
	if err != nil {
		return false, m.wrapError(err)
	}
	return ok, nil
}

// MarketView mirrors the persisted market aggregates as decimal strings.
type MarketView struct {
	Asset         string `json:"asset"`
	TotalSupplied string `json:"totalSupplied"`
	TotalBorrowed string `json:"totalBorrowed"`
}

func (m *LendingModule) GetMarket(asset string) (*MarketView, *ModuleError) {
	if m == nil || m.engine == nil {
		return nil, m.moduleUnavailable()
	}
	market, err := m.engine.GetMarket(asset)
	if err != nil {
		return nil, m.wrapError(err)
	}
	return &MarketView{
		Asset:         market.Asset,
		TotalSupplied: market.TotalSupplied.String(),
		TotalBorrowed: market.TotalBorrowed.String(),
	}, nil
}

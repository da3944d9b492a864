package lending

import (
	"math/big"
	"sync"

	"crosslend/core/events"
	"crosslend/core/types"
	"crosslend/crypto"
	nativecommon "crosslend/native/common"
	"crosslend/native/oracle"
	"crosslend/native/registry"
)

const moduleName = "lending"

// engineState is the persistence boundary for ledger records. The engine
// exclusively owns Position rows; markets aggregate protocol-wide totals and
// accounts hold spendable hub balances.
type engineState interface {
	GetPosition(addr crypto.Address, asset string) (*Position, error)
	PutPosition(position *Position) error
	ListPositions(addr crypto.Address) ([]*Position, error)
	GetMarket(asset string) (*Market, error)
	PutMarket(market *Market) error
	GetAccount(addr crypto.Address) (*types.Account, error)
	PutAccount(addr crypto.Address, account *types.Account) error
}

// PriceReader resolves a validated USD quote for an asset. Zero and stale
// prices surface as oracle.ErrStalePrice, never as a default value.
type PriceReader interface {
	GetPrice(asset string) (oracle.PriceQuote, error)
}

// AssetSource exposes the registry records the engine prices positions with.
type AssetSource interface {
	Get(id string) (registry.Asset, bool)
	IsSupported(id string) bool
}

// PayoutRouter queues a cross-chain payout instruction for withdrawals and
// borrows whose destination is not the hub chain. Delivery is at-least-once
// and owned by the host gateway.
type PayoutRouter interface {
	QueuePayout(asset string, amount *big.Int, destinationChain uint64, recipient [20]byte) error
}

// EventSink receives module events. A nil sink drops them.
type EventSink interface {
	Emit(evt *types.Event)
}

// Engine orchestrates the ledger state transitions. Every mutating call is
// serialized behind one mutex: health checks read cross-asset positions and
// borrow reads protocol-wide liquidity, so per-account locking would not be
// enough.
type Engine struct {
	mu         sync.Mutex
	state      engineState
	assets     AssetSource
	prices     PriceReader
	payouts    PayoutRouter
	events     EventSink
	pauses     nativecommon.PauseView
	hubChainID uint64
}

// NewEngine constructs a lending engine bound to the registry, the oracle
// adapter and the identifier of the hub chain itself.
func NewEngine(assets AssetSource, prices PriceReader, hubChainID uint64) *Engine {
	return &Engine{assets: assets, prices: prices, hubChainID: hubChainID}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetPayoutRouter wires the cross-chain payout queue.
func (e *Engine) SetPayoutRouter(router PayoutRouter) { e.payouts = router }

// SetEventSink wires the event receiver.
func (e *Engine) SetEventSink(sink EventSink) { e.events = sink }

// SetPauses wires the administrative pause switches.
func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// HubChainID returns the chain identifier payouts treat as local.
func (e *Engine) HubChainID() uint64 {
	if e == nil {
		return 0
	}
	return e.hubChainID
}

func (e *Engine) emit(evt interface{ Event() *types.Event }) {
	if e.events == nil {
		return
	}
	e.events.Emit(evt.Event())
}

// Supply credits collateral to the user's position. Supplying only improves
// solvency, so no health check runs.
func (e *Engine) Supply(user crypto.Address, asset string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.supplyLocked(user, asset, amount)
}

func (e *Engine) supplyLocked(user crypto.Address, asset string, amount *big.Int) error {
	if e.assets == nil {
		return errNilRegistry
	}
	if !e.assets.IsSupported(asset) {
		return ErrUnsupportedAsset
	}

	position, err := e.ensurePosition(user, asset)
	if err != nil {
		return err
	}
	market, err := e.ensureMarket(asset)
	if err != nil {
		return err
	}

	position.Supplied = new(big.Int).Add(position.Supplied, amount)
	market.TotalSupplied = new(big.Int).Add(market.TotalSupplied, amount)

	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	if err := e.state.PutMarket(market); err != nil {
		return err
	}

	var userBytes [20]byte
	copy(userBytes[:], user.Bytes())
	e.emit(events.LendingSupplied{User: userBytes, Asset: asset, Amount: amount})
	return nil
}

// Withdraw releases collateral after simulating the post-withdrawal health
// factor. When the destination chain is not the hub, the released amount is
// routed through the payout queue instead of the user's hub account.
func (e *Engine) Withdraw(user crypto.Address, asset string, amount *big.Int, destinationChain uint64, recipient [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	position, err := e.ensurePosition(user, asset)
	if err != nil {
		return err
	}
	if position.Supplied.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	// Simulate the account after the withdrawal before touching state.
	snapshot, err := e.snapshotLocked(user, &positionDelta{
		Asset:       asset,
		SupplyDelta: new(big.Int).Neg(amount),
	})
	if err != nil {
		return err
	}
	if snapshot.TotalDebtUSD.Sign() > 0 && snapshot.HealthFactor.Cmp(wad) < 0 {
		return ErrHealthFactorViolation
	}

	market, err := e.ensureMarket(asset)
	if err != nil {
		return err
	}
	if availableLiquidity(market).Cmp(amount) < 0 {
		return ErrInsufficientLiquidity
	}

	if destinationChain != e.hubChainID {
		if e.payouts == nil {
			return errNoPayoutRoute
		}
		if err := e.payouts.QueuePayout(asset, amount, destinationChain, recipient); err != nil {
			return err
		}
	} else {
		if err := e.creditAccount(user, asset, amount); err != nil {
			return err
		}
	}

	position.Supplied = new(big.Int).Sub(position.Supplied, amount)
	market.TotalSupplied = new(big.Int).Sub(market.TotalSupplied, amount)

	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	if err := e.state.PutMarket(market); err != nil {
		return err
	}

	var userBytes [20]byte
	copy(userBytes[:], user.Bytes())
	e.emit(events.LendingWithdrawn{User: userBytes, Asset: asset, Amount: amount, DestinationChain: destinationChain})
	return nil
}

// Borrow draws protocol liquidity against the user's collateral. The
// post-borrow health factor must stay at or above 1.0.
func (e *Engine) Borrow(user crypto.Address, asset string, amount *big.Int, destinationChain uint64, recipient [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if e.assets == nil {
		return errNilRegistry
	}
	if !e.assets.IsSupported(asset) {
		return ErrUnsupportedAsset
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	market, err := e.ensureMarket(asset)
	if err != nil {
		return err
	}
	if availableLiquidity(market).Cmp(amount) < 0 {
		return ErrInsufficientLiquidity
	}

	snapshot, err := e.snapshotLocked(user, &positionDelta{
		Asset:       asset,
		BorrowDelta: new(big.Int).Set(amount),
	})
	if err != nil {
		return err
	}
	if snapshot.HealthFactor.Cmp(wad) < 0 {
		return ErrInsufficientCollateral
	}

	if destinationChain != e.hubChainID {
		if e.payouts == nil {
			return errNoPayoutRoute
		}
		if err := e.payouts.QueuePayout(asset, amount, destinationChain, recipient); err != nil {
			return err
		}
	} else {
		if err := e.creditAccount(user, asset, amount); err != nil {
			return err
		}
	}

	position, err := e.ensurePosition(user, asset)
	if err != nil {
		return err
	}
	position.Borrowed = new(big.Int).Add(position.Borrowed, amount)
	market.TotalBorrowed = new(big.Int).Add(market.TotalBorrowed, amount)

	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	if err := e.state.PutMarket(market); err != nil {
		return err
	}

	var userBytes [20]byte
	copy(userBytes[:], user.Bytes())
	e.emit(events.LendingBorrowed{User: userBytes, Asset: asset, Amount: amount, DestinationChain: destinationChain})
	return nil
}

// Repay retires outstanding debt. The amount is clamped to the borrowed
// balance: only the clamped portion is pulled from the user's hub account,
// the excess is never absorbed. The actually repaid amount is returned.
func (e *Engine) Repay(user crypto.Address, asset string, amount *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	position, err := e.ensurePosition(user, asset)
	if err != nil {
		return nil, err
	}
	if position.Borrowed.Sign() == 0 {
		return nil, ErrNoDebtToRepay
	}

	repayAmount := new(big.Int).Set(amount)
	if repayAmount.Cmp(position.Borrowed) > 0 {
		repayAmount = new(big.Int).Set(position.Borrowed)
	}

	if err := e.debitAccount(user, asset, repayAmount, ErrInsufficientBalance); err != nil {
		return nil, err
	}

	market, err := e.ensureMarket(asset)
	if err != nil {
		return nil, err
	}

	position.Borrowed = new(big.Int).Sub(position.Borrowed, repayAmount)
	market.TotalBorrowed = new(big.Int).Sub(market.TotalBorrowed, repayAmount)

	if err := e.state.PutPosition(position); err != nil {
		return nil, err
	}
	if err := e.state.PutMarket(market); err != nil {
		return nil, err
	}

	var userBytes [20]byte
	copy(userBytes[:], user.Bytes())
	e.emit(events.LendingRepaid{User: userBytes, Asset: asset, Amount: repayAmount})
	return repayAmount, nil
}

// CreditAccount adds spendable hub balance outside of ledger accounting. The
// gateway uses it to land cross-chain funds before a repay is applied.
func (e *Engine) CreditAccount(user crypto.Address, asset string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.creditAccount(user, asset, amount)
}

func (e *Engine) ensurePosition(user crypto.Address, asset string) (*Position, error) {
	position, err := e.state.GetPosition(user, asset)
	if err != nil {
		return nil, err
	}
	if position == nil {
		position = &Position{Address: user, Asset: asset}
	}
	if position.Supplied == nil {
		position.Supplied = big.NewInt(0)
	}
	if position.Borrowed == nil {
		position.Borrowed = big.NewInt(0)
	}
	return position, nil
}

func (e *Engine) ensureMarket(asset string) (*Market, error) {
	market, err := e.state.GetMarket(asset)
	if err != nil {
		return nil, err
	}
	if market == nil {
		market = &Market{Asset: asset}
	}
	if market.TotalSupplied == nil {
		market.TotalSupplied = big.NewInt(0)
	}
	if market.TotalBorrowed == nil {
		market.TotalBorrowed = big.NewInt(0)
	}
	return market, nil
}

func (e *Engine) creditAccount(addr crypto.Address, asset string, amount *big.Int) error {
	account, err := e.loadAccount(addr)
	if err != nil {
		return err
	}
	account.SetBalance(asset, new(big.Int).Add(account.Balance(asset), amount))
	return e.state.PutAccount(addr, account)
}

func (e *Engine) debitAccount(addr crypto.Address, asset string, amount *big.Int, shortErr error) error {
	account, err := e.loadAccount(addr)
	if err != nil {
		return err
	}
	balance := account.Balance(asset)
	if balance.Cmp(amount) < 0 {
		return shortErr
	}
	account.SetBalance(asset, new(big.Int).Sub(balance, amount))
	return e.state.PutAccount(addr, account)
}

func (e *Engine) loadAccount(addr crypto.Address) (*types.Account, error) {
	account, err := e.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = types.NewAccount()
	}
	if account.Balances == nil {
		account.Balances = make(map[string]*big.Int)
	}
	return account, nil
}

func availableLiquidity(market *Market) *big.Int {
	liquidity := new(big.Int).Sub(market.TotalSupplied, market.TotalBorrowed)
	if liquidity.Sign() < 0 {
		return big.NewInt(0)
	}
	return liquidity
}

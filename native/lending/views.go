package lending

import (
	"fmt"
	"math/big"

	"crosslend/crypto"
)

// GetSupplyBalance returns the user's supplied balance in asset-native
// decimals. Accounts with no position read as zero.
func (e *Engine) GetSupplyBalance(user crypto.Address, asset string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	position, err := e.ensurePosition(user, asset)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(position.Supplied), nil
}

// GetBorrowBalance returns the user's outstanding debt in asset-native
// decimals.
func (e *Engine) GetBorrowBalance(user crypto.Address, asset string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	position, err := e.ensurePosition(user, asset)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(position.Borrowed), nil
}

// GetHealthFactor returns the WAD-scaled health factor. Accounts without debt
// report MaxHealthFactor.
func (e *Engine) GetHealthFactor(user crypto.Address) (*big.Int, error) {
	snapshot, err := e.Snapshot(user)
	if err != nil {
		return nil, err
	}
	return snapshot.HealthFactor, nil
}

// GetTotalCollateralValue returns the unweighted USD value of the user's
// collateral across all assets.
func (e *Engine) GetTotalCollateralValue(user crypto.Address) (*big.Int, error) {
	snapshot, err := e.Snapshot(user)
	if err != nil {
		return nil, err
	}
	return snapshot.TotalCollateralUSD, nil
}

// GetTotalDebtValue returns the USD value of the user's outstanding debt
// across all assets.
func (e *Engine) GetTotalDebtValue(user crypto.Address) (*big.Int, error) {
	snapshot, err := e.Snapshot(user)
	if err != nil {
		return nil, err
	}
	return snapshot.TotalDebtUSD, nil
}

// GetMarket returns the aggregate accounting for one asset.
func (e *Engine) GetMarket(asset string) (*Market, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ensureMarket(asset)
}

// CanBorrow reports whether a borrow of the given size would leave the
// account with a health factor at or above one. It never mutates state.
func (e *Engine) CanBorrow(user crypto.Address, asset string, amount *big.Int) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return false, ErrInvalidAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.assets.IsSupported(asset) {
		return false, fmt.Errorf("%w: %s", ErrUnsupportedAsset, asset)
	}
	snapshot, err := e.snapshotLocked(user, &positionDelta{Asset: asset, BorrowDelta: amount})
	if err != nil {
		return false, err
	}
	return snapshot.HealthFactor.Cmp(wad) >= 0, nil
}

// CanWithdraw reports whether removing the given collateral would leave the
// account with a health factor at or above one. It never mutates state.
func (e *Engine) CanWithdraw(user crypto.Address, asset string, amount *big.Int) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return false, ErrInvalidAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	position, err := e.ensurePosition(user, asset)
	if err != nil {
		return false, err
	}
	if position.Supplied.Cmp(amount) < 0 {
		return false, nil
	}
	snapshot, err := e.snapshotLocked(user, &positionDelta{Asset: asset, SupplyDelta: new(big.Int).Neg(amount)})
	if err != nil {
		return false, err
	}
	if snapshot.TotalDebtUSD.Sign() == 0 {
		return true, nil
	}
	return snapshot.HealthFactor.Cmp(wad) >= 0, nil
}

// MaxAvailableBorrows returns the largest amount of the asset the user could
// borrow right now: the USD headroom converted to asset units, capped by the
// market's available liquidity.
func (e *Engine) MaxAvailableBorrows(user crypto.Address, asset string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	record, ok := e.assets.Get(asset)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, asset)
	}
	snapshot, err := e.snapshotLocked(user, nil)
	if err != nil {
		return nil, err
	}
	quote, err := e.prices.GetPrice(asset)
	if err != nil {
		return nil, err
	}
	borrowable := amountFromUSD(snapshot.MaxBorrowUSD(), quote.PriceUSD, record.Decimals)
	market, err := e.ensureMarket(asset)
	if err != nil {
		return nil, err
	}
	if liquidity := availableLiquidity(market); borrowable.Cmp(liquidity) > 0 {
		borrowable = liquidity
	}
	return borrowable, nil
}

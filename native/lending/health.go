package lending

import (
	"fmt"
	"math/big"

	"crosslend/crypto"
)

// positionDelta is a hypothetical adjustment applied while valuing an
// account, used to simulate the outcome of a borrow or withdrawal before any
// state changes.
type positionDelta struct {
	Asset       string
	SupplyDelta *big.Int
	BorrowDelta *big.Int
}

// snapshotLocked recomputes the solvency view of one account from positions,
// registry parameters and oracle prices. Aggregates are never persisted.
// Callers hold e.mu.
func (e *Engine) snapshotLocked(user crypto.Address, delta *positionDelta) (AccountSnapshot, error) {
	if e.assets == nil {
		return AccountSnapshot{}, errNilRegistry
	}
	if e.prices == nil {
		return AccountSnapshot{}, errNilOracle
	}

	positions, err := e.state.ListPositions(user)
	if err != nil {
		return AccountSnapshot{}, err
	}

	// Fold the hypothetical adjustment in, creating a synthetic position
	// when the account has never touched the asset.
	if delta != nil {
		found := false
		for _, position := range positions {
			if position.Asset == delta.Asset {
				found = true
				break
			}
		}
		if !found {
			positions = append(positions, &Position{
				Address:  user,
				Asset:    delta.Asset,
				Supplied: big.NewInt(0),
				Borrowed: big.NewInt(0),
			})
		}
	}

	snapshot := AccountSnapshot{
		TotalCollateralUSD:     big.NewInt(0),
		TotalDebtUSD:           big.NewInt(0),
		BorrowCapacityUSD:      big.NewInt(0),
		LiquidationCapacityUSD: big.NewInt(0),
	}

	for _, position := range positions {
		supplied := position.Supplied
		borrowed := position.Borrowed
		if supplied == nil {
			supplied = big.NewInt(0)
		}
		if borrowed == nil {
			borrowed = big.NewInt(0)
		}
		if delta != nil && position.Asset == delta.Asset {
			if delta.SupplyDelta != nil {
				supplied = new(big.Int).Add(supplied, delta.SupplyDelta)
				if supplied.Sign() < 0 {
					return AccountSnapshot{}, ErrInsufficientBalance
				}
			}
			if delta.BorrowDelta != nil {
				borrowed = new(big.Int).Add(borrowed, delta.BorrowDelta)
				if borrowed.Sign() < 0 {
					borrowed = big.NewInt(0)
				}
			}
		}
		if supplied.Sign() == 0 && borrowed.Sign() == 0 {
			continue
		}

		asset, ok := e.assets.Get(position.Asset)
		if !ok {
			return AccountSnapshot{}, fmt.Errorf("%w: %s", ErrUnsupportedAsset, position.Asset)
		}
		quote, err := e.prices.GetPrice(position.Asset)
		if err != nil {
			return AccountSnapshot{}, err
		}

		if supplied.Sign() > 0 {
			collateralUSD := valueUSD(supplied, quote.PriceUSD, asset.Decimals)
			snapshot.TotalCollateralUSD.Add(snapshot.TotalCollateralUSD, collateralUSD)
			// The borrow-capacity sum and the liquidation-threshold sum stay
			// two distinct quantities; collapsing them enables over-borrowing.
			snapshot.BorrowCapacityUSD.Add(snapshot.BorrowCapacityUSD, applyBps(collateralUSD, asset.CollateralFactorBps))
			snapshot.LiquidationCapacityUSD.Add(snapshot.LiquidationCapacityUSD, applyBps(collateralUSD, asset.LiquidationThresholdBps))
		}
		if borrowed.Sign() > 0 {
			snapshot.TotalDebtUSD.Add(snapshot.TotalDebtUSD, valueUSD(borrowed, quote.PriceUSD, asset.Decimals))
		}
	}

	if snapshot.TotalDebtUSD.Sign() == 0 {
		snapshot.HealthFactor = new(big.Int).Set(MaxHealthFactor)
		return snapshot, nil
	}
	factor := new(big.Int).Mul(snapshot.LiquidationCapacityUSD, wad)
	snapshot.HealthFactor = factor.Quo(factor, snapshot.TotalDebtUSD)
	return snapshot, nil
}

// Snapshot returns the current solvency view of the account.
func (e *Engine) Snapshot(user crypto.Address) (AccountSnapshot, error) {
	if e == nil || e.state == nil {
		return AccountSnapshot{}, errNilState
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(user, nil)
}

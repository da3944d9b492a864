package lending

import (
	"math/big"

	"crosslend/crypto"
)

// Position tracks the supplied and borrowed balances a user holds in a single
// asset. Positions are created implicitly on first use and never deleted;
// zero balances are a valid resting state.
type Position struct {
	Address crypto.Address
	// Asset is the hub asset identifier from the registry.
	Asset string
	// Supplied is the collateral balance in asset-native decimals.
	Supplied *big.Int
	// Borrowed is the outstanding debt in asset-native decimals.
	Borrowed *big.Int
}

// Market captures the protocol-wide accounting for one asset. Available
// liquidity is the supplied total net of outstanding borrows.
type Market struct {
	Asset string
	// TotalSupplied is the aggregate collateral deposited across all users.
	TotalSupplied *big.Int
	// TotalBorrowed is the aggregate outstanding debt across all users.
	TotalBorrowed *big.Int
}

// AccountSnapshot is the recomputed solvency view of one user. Values are
// 18-decimal USD amounts except HealthFactor which is WAD-scaled. Snapshots
// are never persisted; they are derived from positions, risk parameters and
// oracle prices at read time.
type AccountSnapshot struct {
	TotalCollateralUSD *big.Int
	TotalDebtUSD       *big.Int
	// BorrowCapacityUSD is the collateral-factor weighted collateral sum.
	// It bounds new borrowing and is deliberately kept separate from
	// LiquidationCapacityUSD.
	BorrowCapacityUSD *big.Int
	// LiquidationCapacityUSD is the liquidation-threshold weighted sum that
	// feeds the health factor.
	LiquidationCapacityUSD *big.Int
	HealthFactor           *big.Int
}

// MaxBorrowUSD returns the remaining borrow headroom in USD, floored at zero.
func (s AccountSnapshot) MaxBorrowUSD() *big.Int {
	if s.BorrowCapacityUSD == nil || s.TotalDebtUSD == nil {
		return big.NewInt(0)
	}
	headroom := new(big.Int).Sub(s.BorrowCapacityUSD, s.TotalDebtUSD)
	if headroom.Sign() < 0 {
		return big.NewInt(0)
	}
	return headroom
}

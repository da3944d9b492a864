package events

import (
	"math/big"

	"crosslend/core/types"
	"crosslend/crypto"
)

const (
	TypeLendingSupplied             = "lending.supplied"
	TypeLendingWithdrawn            = "lending.withdrawn"
	TypeLendingBorrowed             = "lending.borrowed"
	TypeLendingRepaid               = "lending.repaid"
	TypeLendingLiquidated           = "lending.liquidated"
	TypeLendingLiquidationShortfall = "lending.liquidation_shortfall"
)

type LendingSupplied struct {
	User   [20]byte
	Asset  string
	Amount *big.Int
}

func (LendingSupplied) EventType() string { return TypeLendingSupplied }

func (e LendingSupplied) Event() *types.Event {
	return &types.Event{
		Type: TypeLendingSupplied,
		Attributes: map[string]string{
			"user":   crypto.NewAddress(e.User[:]).String(),
			"asset":  e.Asset,
			"amount": formatAmount(e.Amount),
		},
	}
}

type LendingWithdrawn struct {
	User             [20]byte
	Asset            string
	Amount           *big.Int
	DestinationChain uint64
}

func (LendingWithdrawn) EventType() string { return TypeLendingWithdrawn }

func (e LendingWithdrawn) Event() *types.Event {
	return &types.Event{
		Type: TypeLendingWithdrawn,
		Attributes: map[string]string{
			"user":             crypto.NewAddress(e.User[:]).String(),
			"asset":            e.Asset,
			"amount":           formatAmount(e.Amount),
			"destinationChain": uintToString(e.DestinationChain),
		},
	}
}

type LendingBorrowed struct {
	User             [20]byte
	Asset            string
	Amount           *big.Int
	DestinationChain uint64
}

func (LendingBorrowed) EventType() string { return TypeLendingBorrowed }

func (e LendingBorrowed) Event() *types.Event {
	return &types.Event{
		Type: TypeLendingBorrowed,
		Attributes: map[string]string{
			"user":             crypto.NewAddress(e.User[:]).String(),
			"asset":            e.Asset,
			"amount":           formatAmount(e.Amount),
			"destinationChain": uintToString(e.DestinationChain),
		},
	}
}

type LendingRepaid struct {
	User   [20]byte
	Asset  string
	Amount *big.Int
}

func (LendingRepaid) EventType() string { return TypeLendingRepaid }

func (e LendingRepaid) Event() *types.Event {
	return &types.Event{
		Type: TypeLendingRepaid,
		Attributes: map[string]string{
			"user":   crypto.NewAddress(e.User[:]).String(),
			"asset":  e.Asset,
			"amount": formatAmount(e.Amount),
		},
	}
}

type LendingLiquidated struct {
	Liquidator      [20]byte
	Borrower        [20]byte
	DebtAsset       string
	CollateralAsset string
	Repaid          *big.Int
	Seized          *big.Int
}

func (LendingLiquidated) EventType() string { return TypeLendingLiquidated }

func (e LendingLiquidated) Event() *types.Event {
	return &types.Event{
		Type: TypeLendingLiquidated,
		Attributes: map[string]string{
			"liquidator":      crypto.NewAddress(e.Liquidator[:]).String(),
			"borrower":        crypto.NewAddress(e.Borrower[:]).String(),
			"debtAsset":       e.DebtAsset,
			"collateralAsset": e.CollateralAsset,
			"repaid":          formatAmount(e.Repaid),
			"seized":          formatAmount(e.Seized),
		},
	}
}

// LendingLiquidationShortfall records a seizure capped by the borrower's
// remaining collateral. The liquidator accepted less than the bonus-adjusted
// amount; the gap may become bad debt.
type LendingLiquidationShortfall struct {
	Borrower        [20]byte
	CollateralAsset string
	Wanted          *big.Int
	Seized          *big.Int
}

func (LendingLiquidationShortfall) EventType() string { return TypeLendingLiquidationShortfall }

func (e LendingLiquidationShortfall) Event() *types.Event {
	return &types.Event{
		Type: TypeLendingLiquidationShortfall,
		Attributes: map[string]string{
			"borrower":        crypto.NewAddress(e.Borrower[:]).String(),
			"collateralAsset": e.CollateralAsset,
			"wanted":          formatAmount(e.Wanted),
			"seized":          formatAmount(e.Seized),
		},
	}
}

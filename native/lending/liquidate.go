package lending

import (
	"fmt"
	"math/big"

	"crosslend/core/events"
	"crosslend/crypto"
	nativecommon "crosslend/native/common"
)

// Liquidate lets a third party repay part of an unhealthy borrower's debt in
// exchange for a bonus-adjusted share of one collateral asset. The repaid
// debt and seized collateral amounts are returned.
//
// Seizure is capped at the borrower's collateral balance. A binding cap is a
// documented shortfall, not an error: the liquidator receives less than the
// bonus-adjusted amount and the gap is surfaced as an event.
func (e *Engine) Liquidate(liquidator, borrower crypto.Address, collateralAsset, debtAsset string, repayAmount *big.Int) (*big.Int, *big.Int, error) {
	if e == nil || e.state == nil {
		return nil, nil, errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, nil, err
	}
	if repayAmount == nil || repayAmount.Sign() <= 0 {
		return nil, nil, ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.snapshotLocked(borrower, nil)
	if err != nil {
		return nil, nil, err
	}
	if snapshot.TotalDebtUSD.Sign() == 0 || snapshot.HealthFactor.Cmp(wad) >= 0 {
		return nil, nil, ErrPositionHealthy
	}

	debtPosition, err := e.ensurePosition(borrower, debtAsset)
	if err != nil {
		return nil, nil, err
	}
	if debtPosition.Borrowed.Sign() == 0 {
		return nil, nil, ErrNoDebtToRepay
	}
	collateralPosition, err := e.ensurePosition(borrower, collateralAsset)
	if err != nil {
		return nil, nil, err
	}

	repaid := new(big.Int).Set(repayAmount)
	if repaid.Cmp(debtPosition.Borrowed) > 0 {
		repaid = new(big.Int).Set(debtPosition.Borrowed)
	}

	debtRecord, ok := e.assets.Get(debtAsset)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, debtAsset)
	}
	collateralRecord, ok := e.assets.Get(collateralAsset)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, collateralAsset)
	}
	debtQuote, err := e.prices.GetPrice(debtAsset)
	if err != nil {
		return nil, nil, err
	}
	collateralQuote, err := e.prices.GetPrice(collateralAsset)
	if err != nil {
		return nil, nil, err
	}

	// seized = floor(repaid * price[debt] * (1 + bonus) / price[collateral]),
	// carried out in USD to keep the rounding direction single and downward.
	repaidUSD := valueUSD(repaid, debtQuote.PriceUSD, debtRecord.Decimals)
	bonusUSD := new(big.Int).Add(repaidUSD, applyBps(repaidUSD, collateralRecord.LiquidationBonusBps))
	seized := amountFromUSD(bonusUSD, collateralQuote.PriceUSD, collateralRecord.Decimals)

	wanted := new(big.Int).Set(seized)
	if seized.Cmp(collateralPosition.Supplied) > 0 {
		seized = new(big.Int).Set(collateralPosition.Supplied)
	}

	// Pull the repayment from the liquidator before touching the borrower.
	if err := e.debitAccount(liquidator, debtAsset, repaid, ErrTransferFailed); err != nil {
		return nil, nil, err
	}
	if err := e.creditAccount(liquidator, collateralAsset, seized); err != nil {
		return nil, nil, err
	}

	debtPosition.Borrowed = new(big.Int).Sub(debtPosition.Borrowed, repaid)
	collateralPosition.Supplied = new(big.Int).Sub(collateralPosition.Supplied, seized)

	debtMarket, err := e.ensureMarket(debtAsset)
	if err != nil {
		return nil, nil, err
	}
	collateralMarket, err := e.ensureMarket(collateralAsset)
	if err != nil {
		return nil, nil, err
	}
	debtMarket.TotalBorrowed = new(big.Int).Sub(debtMarket.TotalBorrowed, repaid)
	collateralMarket.TotalSupplied = new(big.Int).Sub(collateralMarket.TotalSupplied, seized)

	if err := e.state.PutPosition(debtPosition); err != nil {
		return nil, nil, err
	}
	if err := e.state.PutPosition(collateralPosition); err != nil {
		return nil, nil, err
	}
	if err := e.state.PutMarket(debtMarket); err != nil {
		return nil, nil, err
	}
	if err := e.state.PutMarket(collateralMarket); err != nil {
		return nil, nil, err
	}

	var liquidatorBytes, borrowerBytes [20]byte
	copy(liquidatorBytes[:], liquidator.Bytes())
	copy(borrowerBytes[:], borrower.Bytes())
	e.emit(events.LendingLiquidated{
		Liquidator:      liquidatorBytes,
		Borrower:        borrowerBytes,
		DebtAsset:       debtAsset,
		CollateralAsset: collateralAsset,
		Repaid:          repaid,
		Seized:          seized,
	})
	if wanted.Cmp(seized) > 0 {
		e.emit(events.LendingLiquidationShortfall{
			Borrower:        borrowerBytes,
			CollateralAsset: collateralAsset,
			Wanted:          wanted,
			Seized:          seized,
		})
	}
	return repaid, seized, nil
}

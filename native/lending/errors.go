package lending

import "errors"

var (
	errNilState               = errors.New("lending engine: state not configured")
	errNilOracle              = errors.New("lending engine: oracle not configured")
	errNilRegistry            = errors.New("lending engine: asset registry not configured")
	errNoPayoutRoute          = errors.New("lending engine: cross-chain payout route not configured")
	ErrInvalidAmount          = errors.New("lending engine: amount must be positive")
	ErrUnsupportedAsset       = errors.New("lending engine: asset not supported")
	ErrInsufficientBalance    = errors.New("lending engine: insufficient balance")
	ErrInsufficientLiquidity  = errors.New("lending engine: insufficient liquidity")
	ErrInsufficientCollateral = errors.New("lending engine: insufficient collateral for borrow")
	ErrHealthFactorViolation  = errors.New("lending engine: health factor would drop below 1")
	ErrPositionHealthy        = errors.New("lending engine: borrower not eligible for liquidation")
	ErrNoDebtToRepay          = errors.New("lending engine: no outstanding debt to repay")
	ErrTransferFailed         = errors.New("lending engine: liquidator transfer failed")
)

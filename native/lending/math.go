package lending

import "math/big"

var (
	basisPoints = big.NewInt(10_000)
	// wad is the 1e18 fixed-point scale used for USD values and the health
	// factor.
	wad = big.NewInt(1_000_000_000_000_000_000)
)

// MaxHealthFactor is the sentinel returned for positions with zero debt. It
// keeps health-factor arithmetic total without resorting to an infinity
// encoding.
var MaxHealthFactor = new(big.Int).Mul(new(big.Int).SetUint64(1<<63), wad)

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// valueUSD converts an amount in asset-native decimals to an 18-decimal USD
// value given a WAD-scaled unit price. Division truncates toward zero.
func valueUSD(amount, priceUSD *big.Int, decimals uint8) *big.Int {
	if amount == nil || amount.Sign() == 0 || priceUSD == nil || priceUSD.Sign() <= 0 {
		return big.NewInt(0)
	}
	value := new(big.Int).Mul(amount, priceUSD)
	return value.Quo(value, pow10(decimals))
}

// amountFromUSD converts an 18-decimal USD value back to asset-native units,
// truncating toward zero.
func amountFromUSD(valueUSD, priceUSD *big.Int, decimals uint8) *big.Int {
	if valueUSD == nil || valueUSD.Sign() <= 0 || priceUSD == nil || priceUSD.Sign() <= 0 {
		return big.NewInt(0)
	}
	amount := new(big.Int).Mul(valueUSD, pow10(decimals))
	return amount.Quo(amount, priceUSD)
}

// applyBps scales a value by a basis-point factor, truncating toward zero.
func applyBps(value *big.Int, bps uint64) *big.Int {
	if value == nil || value.Sign() == 0 || bps == 0 {
		return big.NewInt(0)
	}
	scaled := new(big.Int).Mul(value, new(big.Int).SetUint64(bps))
	return scaled.Quo(scaled, basisPoints)
}

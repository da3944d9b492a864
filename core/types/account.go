package types

import "math/big"

// Account tracks the spendable balances an address holds on the hub chain,
// keyed by asset id. Module treasuries use the same representation.
type Account struct {
	Balances map[string]*big.Int
}

// NewAccount returns an account with an initialised balance map.
func NewAccount() *Account {
	return &Account{Balances: make(map[string]*big.Int)}
}

// Balance returns the balance for asset, treating missing entries as zero.
func (a *Account) Balance(asset string) *big.Int {
	if a == nil || a.Balances == nil {
		return big.NewInt(0)
	}
	if bal, ok := a.Balances[asset]; ok && bal != nil {
		return bal
	}
	return big.NewInt(0)
}

// SetBalance stores the balance for asset, initialising the map on demand.
func (a *Account) SetBalance(asset string, amount *big.Int) {
	if a.Balances == nil {
		a.Balances = make(map[string]*big.Int)
	}
	a.Balances[asset] = new(big.Int).Set(amount)
}

package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"crosslend/core/types"
	"crosslend/crypto"
	"crosslend/native/lending"
	"crosslend/storage"
)

const (
	positionPrefix      = "lend/pos/"
	positionIndexPrefix = "lend/posidx/"
	marketPrefix        = "lend/mkt/"
	accountPrefix       = "acct/"
)

// Store persists ledger records as JSON documents in the key-value database.
// It is the single writer for position, market and account rows; the lending
// engine serializes access above it.
type Store struct {
	db storage.Database
}

func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

type storedPosition struct {
	Address  string   `json:"address"`
	Asset    string   `json:"asset"`
	Supplied *big.Int `json:"supplied"`
	Borrowed *big.Int `json:"borrowed"`
}

type storedMarket struct {
	Asset         string   `json:"asset"`
	TotalSupplied *big.Int `json:"totalSupplied"`
	TotalBorrowed *big.Int `json:"totalBorrowed"`
}

type storedAccount struct {
	Balances map[string]*big.Int `json:"balances"`
}

func positionKey(addr crypto.Address, asset string) []byte {
	return []byte(positionPrefix + addr.String() + "/" + asset)
}

func positionIndexKey(addr crypto.Address) []byte {
	return []byte(positionIndexPrefix + addr.String())
}

// GetPosition loads one position row. Missing rows return nil without error
// so the engine can create positions implicitly.
func (s *Store) GetPosition(addr crypto.Address, asset string) (*lending.Position, error) {
	raw, err := s.db.Get(positionKey(addr, asset))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedPosition
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("state: decode position: %w", err)
	}
	decoded, err := crypto.DecodeAddress(stored.Address)
	if err != nil {
		return nil, fmt.Errorf("state: decode position address: %w", err)
	}
	return &lending.Position{
		Address:  decoded,
		Asset:    stored.Asset,
		Supplied: stored.Supplied,
		Borrowed: stored.Borrowed,
	}, nil
}

// PutPosition writes a position row and records the asset in the per-address
// index that backs ListPositions.
func (s *Store) PutPosition(position *lending.Position) error {
	if position == nil {
		return fmt.Errorf("state: nil position")
	}
	raw, err := json.Marshal(storedPosition{
		Address:  position.Address.String(),
		Asset:    position.Asset,
		Supplied: position.Supplied,
		Borrowed: position.Borrowed,
	})
	if err != nil {
		return fmt.Errorf("state: encode position: %w", err)
	}
	if err := s.db.Put(positionKey(position.Address, position.Asset), raw); err != nil {
		return err
	}
	return s.indexPosition(position.Address, position.Asset)
}

func (s *Store) indexPosition(addr crypto.Address, asset string) error {
	assets, err := s.positionAssets(addr)
	if err != nil {
		return err
	}
	for _, existing := range assets {
		if existing == asset {
			return nil
		}
	}
	assets = append(assets, asset)
	sort.Strings(assets)
	raw, err := json.Marshal(assets)
	if err != nil {
		return fmt.Errorf("state: encode position index: %w", err)
	}
	return s.db.Put(positionIndexKey(addr), raw)
}

func (s *Store) positionAssets(addr crypto.Address) ([]string, error) {
	raw, err := s.db.Get(positionIndexKey(addr))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var assets []string
	if err := json.Unmarshal(raw, &assets); err != nil {
		return nil, fmt.Errorf("state: decode position index: %w", err)
	}
	return assets, nil
}

// ListPositions returns every position the address has ever touched, in
// asset order.
func (s *Store) ListPositions(addr crypto.Address) ([]*lending.Position, error) {
	assets, err := s.positionAssets(addr)
	if err != nil {
		return nil, err
	}
	positions := make([]*lending.Position, 0, len(assets))
	for _, asset := range assets {
		position, err := s.GetPosition(addr, asset)
		if err != nil {
			return nil, err
		}
		if position != nil {
			positions = append(positions, position)
		}
	}
	return positions, nil
}

// GetMarket loads the aggregate accounting row for the asset, nil when the
// market has never been written.
func (s *Store) GetMarket(asset string) (*lending.Market, error) {
	raw, err := s.db.Get([]byte(marketPrefix + asset))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedMarket
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("state: decode market: %w", err)
	}
	return &lending.Market{
		Asset:         stored.Asset,
		TotalSupplied: stored.TotalSupplied,
		TotalBorrowed: stored.TotalBorrowed,
	}, nil
}

func (s *Store) PutMarket(market *lending.Market) error {
	if market == nil {
		return fmt.Errorf("state: nil market")
	}
	raw, err := json.Marshal(storedMarket{
		Asset:         market.Asset,
		TotalSupplied: market.TotalSupplied,
		TotalBorrowed: market.TotalBorrowed,
	})
	if err != nil {
		return fmt.Errorf("state: encode market: %w", err)
	}
	return s.db.Put([]byte(marketPrefix+market.Asset), raw)
}

// GetAccount loads the spendable balance record for the address, nil when the
// account has never been credited.
func (s *Store) GetAccount(addr crypto.Address) (*types.Account, error) {
	raw, err := s.db.Get([]byte(accountPrefix + addr.String()))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedAccount
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("state: decode account: %w", err)
	}
	account := types.NewAccount()
	for asset, balance := range stored.Balances {
		account.Balances[asset] = balance
	}
	return account, nil
}

func (s *Store) PutAccount(addr crypto.Address, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("state: nil account")
	}
	raw, err := json.Marshal(storedAccount{Balances: account.Balances})
	if err != nil {
		return fmt.Errorf("state: encode account: %w", err)
	}
	return s.db.Put([]byte(accountPrefix+addr.String()), raw)
}

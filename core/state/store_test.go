package state

import (
	"math/big"
	"testing"

	"crosslend/core/types"
	"crosslend/crypto"
	"crosslend/native/lending"
	"crosslend/storage"
)

func testAddr(b byte) crypto.Address {
	buf := make([]byte, 20)
	for i := range buf {
		buf[i] = b
	}
	return crypto.NewAddress(buf)
}

func TestPositionRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	addr := testAddr(0x11)

	missing, err := store.GetPosition(addr, "XTK")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing position = %+v, want nil", missing)
	}

	put := &lending.Position{
		Address:  addr,
		Asset:    "XTK",
		Supplied: big.NewInt(1234),
		Borrowed: big.NewInt(56),
	}
	if err := store.PutPosition(put); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.GetPosition(addr, "XTK")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Asset != "XTK" || got.Supplied.Cmp(put.Supplied) != 0 || got.Borrowed.Cmp(put.Borrowed) != 0 {
		t.Fatalf("position = %+v, want %+v", got, put)
	}
	if got.Address.String() != addr.String() {
		t.Fatalf("address = %s, want %s", got.Address, addr)
	}
}

func TestListPositionsUsesIndex(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	addr := testAddr(0x22)
	other := testAddr(0x33)

	for _, asset := range []string{"YUSD", "XTK"} {
		if err := store.PutPosition(&lending.Position{
			Address:  addr,
			Asset:    asset,
			Supplied: big.NewInt(1),
			Borrowed: big.NewInt(0),
		}); err != nil {
			t.Fatalf("put %s: %v", asset, err)
		}
	}
	if err := store.PutPosition(&lending.Position{
		Address:  other,
		Asset:    "ZBTC",
		Supplied: big.NewInt(9),
		Borrowed: big.NewInt(0),
	}); err != nil {
		t.Fatalf("put other: %v", err)
	}
	// Rewriting an existing row must not duplicate the index entry.
	if err := store.PutPosition(&lending.Position{
		Address:  addr,
		Asset:    "XTK",
		Supplied: big.NewInt(2),
		Borrowed: big.NewInt(0),
	}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	positions, err := store.ListPositions(addr)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("positions = %d, want 2", len(positions))
	}
	if positions[0].Asset != "XTK" || positions[1].Asset != "YUSD" {
		t.Fatalf("assets = [%s %s], want [XTK YUSD]", positions[0].Asset, positions[1].Asset)
	}
	if positions[0].Supplied.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("rewritten supply = %s, want 2", positions[0].Supplied)
	}
}

func TestMarketRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())

	missing, err := store.GetMarket("XTK")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing market = %+v, want nil", missing)
	}

	put := &lending.Market{
		Asset:         "XTK",
		TotalSupplied: big.NewInt(777),
		TotalBorrowed: big.NewInt(42),
	}
	if err := store.PutMarket(put); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.GetMarket("XTK")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalSupplied.Cmp(put.TotalSupplied) != 0 || got.TotalBorrowed.Cmp(put.TotalBorrowed) != 0 {
		t.Fatalf("market = %+v, want %+v", got, put)
	}
}

func TestAccountRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	addr := testAddr(0x44)

	account := types.NewAccount()
	account.SetBalance("XTK", big.NewInt(500))
	if err := store.PutAccount(addr, account); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.GetAccount(addr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Balance("XTK").Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("balance = %s, want 500", got.Balance("XTK"))
	}
	if got.Balance("YUSD").Sign() != 0 {
		t.Fatalf("untouched balance = %s, want 0", got.Balance("YUSD"))
	}
}

package oracle

import (
	"errors"
	"math/big"
	"testing"
	"time"
)

func TestAdapterRejectsStaleQuote(t *testing.T) {
	feed := NewManualFeed()
	base := time.Unix(1_700_000_000, 0)
	feed.SetClock(func() time.Time { return base })
	if err := feed.SetPrice("SOL", big.NewInt(2_000)); err != nil {
		t.Fatalf("set price: %v", err)
	}

	adapter := NewAdapter(feed, 2*time.Minute)
	adapter.SetClock(func() time.Time { return base.Add(time.Minute) })
	if _, err := adapter.GetPrice("SOL"); err != nil {
		t.Fatalf("fresh quote rejected: %v", err)
	}

	adapter.SetClock(func() time.Time { return base.Add(5 * time.Minute) })
	if _, err := adapter.GetPrice("SOL"); !errors.Is(err, ErrStalePrice) {
		t.Fatalf("expected stale price error, got %v", err)
	}
}

func TestAdapterRejectsMissingAndNonPositive(t *testing.T) {
	feed := NewManualFeed()
	adapter := NewAdapter(feed, time.Minute)

	if _, err := adapter.GetPrice("UNKNOWN"); !errors.Is(err, ErrStalePrice) {
		t.Fatalf("expected stale price for missing quote, got %v", err)
	}
	if err := feed.SetPrice("SOL", big.NewInt(0)); err == nil {
		t.Fatalf("expected rejection of zero price")
	}
	if err := feed.SetPrice("SOL", big.NewInt(-5)); err == nil {
		t.Fatalf("expected rejection of negative price")
	}
}

func TestAdapterReturnsDefensiveCopy(t *testing.T) {
	feed := NewManualFeed()
	if err := feed.SetPrice("ETH", big.NewInt(3_000)); err != nil {
		t.Fatalf("set price: %v", err)
	}
	adapter := NewAdapter(feed, 0)

	first, err := adapter.GetPrice("ETH")
	if err != nil {
		t.Fatalf("get price: %v", err)
	}
	first.PriceUSD.SetInt64(1)

	second, err := adapter.GetPrice("ETH")
	if err != nil {
		t.Fatalf("get price: %v", err)
	}
	if second.PriceUSD.Cmp(big.NewInt(3_000)) != 0 {
		t.Fatalf("quote mutated through shared pointer: %s", second.PriceUSD)
	}
}

func TestGetPriceIsIdempotent(t *testing.T) {
	feed := NewManualFeed()
	if err := feed.SetPrice("ETH", big.NewInt(3_000)); err != nil {
		t.Fatalf("set price: %v", err)
	}
	adapter := NewAdapter(feed, 0)

	a, err := adapter.GetPrice("ETH")
	if err != nil {
		t.Fatalf("get price: %v", err)
	}
	b, err := adapter.GetPrice("ETH")
	if err != nil {
		t.Fatalf("get price: %v", err)
	}
	if a.PriceUSD.Cmp(b.PriceUSD) != 0 || !a.Timestamp.Equal(b.Timestamp) {
		t.Fatalf("repeated reads diverged: %v vs %v", a, b)
	}
}

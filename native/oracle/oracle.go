package oracle

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"
)

var (
	// ErrStalePrice indicates the quote is missing, non-positive or older
	// than the configured freshness window.
	ErrStalePrice = errors.New("oracle: price stale or invalid")
)

// PriceQuote captures a USD price for a single asset along with the timestamp
// reported by the upstream feed. Prices are 18-decimal fixed point.
type PriceQuote struct {
	Asset     string
	PriceUSD  *big.Int
	Timestamp time.Time
}

// Clone returns a deep copy of the quote to prevent accidental mutations.
func (q PriceQuote) Clone() PriceQuote {
	clone := PriceQuote{Asset: q.Asset, Timestamp: q.Timestamp}
	if q.PriceUSD != nil {
		clone.PriceUSD = new(big.Int).Set(q.PriceUSD)
	}
	return clone
}

// PriceSource resolves the current USD quote for an asset. Implementations
// report whatever they last observed; freshness enforcement happens in the
// Adapter so every consumer applies the same window.
type PriceSource interface {
	GetPrice(asset string) (PriceQuote, error)
}

// Adapter wraps a PriceSource with the staleness policy. The clock is
// injectable so tests can pin time.
type Adapter struct {
	source PriceSource
	maxAge time.Duration
	now    func() time.Time
}

// NewAdapter constructs an adapter enforcing the supplied freshness window.
// A non-positive maxAge disables the age check but still rejects
// non-positive prices.
func NewAdapter(source PriceSource, maxAge time.Duration) *Adapter {
	return &Adapter{source: source, maxAge: maxAge, now: time.Now}
}

// SetClock overrides the time source used for staleness checks.
func (a *Adapter) SetClock(now func() time.Time) {
	if a == nil || now == nil {
		return
	}
	a.now = now
}

// GetPrice returns a validated quote for the asset. A zero price, a missing
// quote or one older than the freshness window yields ErrStalePrice; callers
// never see a silent default.
func (a *Adapter) GetPrice(asset string) (PriceQuote, error) {
	if a == nil || a.source == nil {
		return PriceQuote{}, fmt.Errorf("oracle: adapter not configured")
	}
	trimmed := strings.TrimSpace(asset)
	if trimmed == "" {
		return PriceQuote{}, fmt.Errorf("oracle: asset required")
	}
	quote, err := a.source.GetPrice(trimmed)
	if err != nil {
		return PriceQuote{}, err
	}
	if quote.PriceUSD == nil || quote.PriceUSD.Sign() <= 0 {
		return PriceQuote{}, fmt.Errorf("%w: %s has no positive price", ErrStalePrice, trimmed)
	}
	if a.maxAge > 0 {
		cutoff := a.now().Add(-a.maxAge)
		if quote.Timestamp.Before(cutoff) {
			return PriceQuote{}, fmt.Errorf("%w: %s quote from %s", ErrStalePrice, trimmed, quote.Timestamp.UTC().Format(time.RFC3339))
		}
	}
	return quote.Clone(), nil
}

// ManualFeed is a PriceSource whose quotes are pushed by the privileged
// oracle operator (the registry admin interface's updatePrice).
type ManualFeed struct {
	mu     sync.RWMutex
	quotes map[string]PriceQuote
	now    func() time.Time
}

func NewManualFeed() *ManualFeed {
	return &ManualFeed{
		quotes: make(map[string]PriceQuote),
		now:    time.Now,
	}
}

// SetClock overrides the timestamp source applied by SetPrice.
func (f *ManualFeed) SetClock(now func() time.Time) {
	if f == nil || now == nil {
		return
	}
	f.mu.Lock()
	f.now = now
	f.mu.Unlock()
}

// SetPrice records the latest observation for the asset. The price must be a
// positive 18-decimal fixed-point integer.
func (f *ManualFeed) SetPrice(asset string, priceUSD *big.Int) error {
	if f == nil {
		return fmt.Errorf("oracle: feed not configured")
	}
	trimmed := strings.TrimSpace(asset)
	if trimmed == "" {
		return fmt.Errorf("oracle: asset required")
	}
	if priceUSD == nil || priceUSD.Sign() <= 0 {
		return fmt.Errorf("oracle: price must be positive")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[trimmed] = PriceQuote{
		Asset:     trimmed,
		PriceUSD:  new(big.Int).Set(priceUSD),
		Timestamp: f.now(),
	}
	return nil
}

// SetPriceAt records an observation with an explicit timestamp, used by
// attested feeds that carry upstream report times.
func (f *ManualFeed) SetPriceAt(asset string, priceUSD *big.Int, at time.Time) error {
	if err := f.SetPrice(asset, priceUSD); err != nil {
		return err
	}
	f.mu.Lock()
	quote := f.quotes[strings.TrimSpace(asset)]
	quote.Timestamp = at
	f.quotes[strings.TrimSpace(asset)] = quote
	f.mu.Unlock()
	return nil
}

// GetPrice returns the last pushed quote for the asset.
func (f *ManualFeed) GetPrice(asset string) (PriceQuote, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	quote, ok := f.quotes[strings.TrimSpace(asset)]
	if !ok {
		return PriceQuote{}, fmt.Errorf("%w: no quote for %s", ErrStalePrice, asset)
	}
	return quote.Clone(), nil
}

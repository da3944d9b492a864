package registry

import (
	"errors"
	"testing"
)

func TestAddAssetValidatesRanges(t *testing.T) {
	cases := []struct {
		name      string
		cf        uint64
		threshold uint64
		bonus     uint64
	}{
		{"zero collateral factor", 0, 8_500, 500},
		{"collateral factor above one", 10_001, 8_500, 500},
		{"zero threshold", 8_000, 0, 500},
		{"threshold above one", 8_000, 10_001, 500},
		{"bonus at one", 8_000, 8_500, 10_000},
		{"factor above threshold", 9_000, 8_500, 500},
	}
	for _, tc := range cases {
		r := New()
		if err := r.AddAsset("SOL", 9, tc.cf, tc.threshold, tc.bonus); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("%s: expected ErrInvalidParameter, got %v", tc.name, err)
		}
	}
}

func TestAddAssetRejectsDuplicate(t *testing.T) {
	r := New()
	if err := r.AddAsset("SOL", 9, 8_000, 8_500, 500); err != nil {
		t.Fatalf("add asset: %v", err)
	}
	if err := r.AddAsset("SOL", 9, 8_000, 8_500, 500); !errors.Is(err, ErrAlreadySupported) {
		t.Fatalf("expected ErrAlreadySupported, got %v", err)
	}
}

func TestRemoveAssetKeepsRecord(t *testing.T) {
	r := New()
	if err := r.AddAsset("SOL", 9, 8_000, 8_500, 500); err != nil {
		t.Fatalf("add asset: %v", err)
	}
	if err := r.RemoveAsset("SOL"); err != nil {
		t.Fatalf("remove asset: %v", err)
	}
	if r.IsSupported("SOL") {
		t.Fatalf("asset still reported supported")
	}
	asset, ok := r.Get("SOL")
	if !ok || asset.LiquidationThresholdBps != 8_500 {
		t.Fatalf("asset record lost after removal: %+v ok=%v", asset, ok)
	}
	// A removed id may be re-registered.
	if err := r.AddAsset("SOL", 9, 7_000, 7_500, 400); err != nil {
		t.Fatalf("re-add removed asset: %v", err)
	}
}

func TestExternalAssetMapping(t *testing.T) {
	r := New()
	if err := r.MapExternalAsset(901, "So11111111111111111111111111111111111111112", "SOL"); !errors.Is(err, ErrUnknownAsset) {
		t.Fatalf("expected ErrUnknownAsset for unregistered hub asset, got %v", err)
	}
	if err := r.AddAsset("SOL", 9, 8_000, 8_500, 500); err != nil {
		t.Fatalf("add asset: %v", err)
	}
	if err := r.MapExternalAsset(901, "So11111111111111111111111111111111111111112", "SOL"); err != nil {
		t.Fatalf("map external asset: %v", err)
	}
	hubID, ok := r.ResolveExternalAsset(901, "So11111111111111111111111111111111111111112")
	if !ok || hubID != "SOL" {
		t.Fatalf("unexpected mapping result: %q ok=%v", hubID, ok)
	}
	if _, ok := r.ResolveExternalAsset(902, "So11111111111111111111111111111111111111112"); ok {
		t.Fatalf("mapping leaked across chains")
	}
}

func TestSourceChainAllowList(t *testing.T) {
	r := New()
	if r.IsSourceChainAllowed(901) {
		t.Fatalf("chain allowed by default")
	}
	r.SetAllowedSourceChain(901, true)
	if !r.IsSourceChainAllowed(901) {
		t.Fatalf("chain not allowed after enable")
	}
	r.SetAllowedSourceChain(901, false)
	if r.IsSourceChainAllowed(901) {
		t.Fatalf("chain allowed after disable")
	}
}

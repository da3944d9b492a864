package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrAlreadySupported = errors.New("registry: asset already supported")
	ErrUnknownAsset     = errors.New("registry: asset not registered")
	ErrInvalidParameter = errors.New("registry: invalid risk parameter")
)

const bpsDenominator = 10_000

// Asset describes a supported asset together with its risk parameters. All
// factors are expressed in basis points for deterministic accounting:
// collateral factor and liquidation threshold in (0, 10000], liquidation
// bonus in [0, 10000).
type Asset struct {
	ID                      string
	Decimals                uint8
	CollateralFactorBps     uint64
	LiquidationThresholdBps uint64
	LiquidationBonusBps     uint64
	IsSupported             bool
}

// Clone returns a copy so callers cannot mutate registry state in place.
func (a Asset) Clone() Asset { return a }

type externalKey struct {
	chainID uint64
	assetID string
}

// Registry is the sole source of per-asset risk parameters, the allow-list of
// deposit source chains and the mapping from external asset identifiers to
// hub asset ids. Parameter mutation is restricted upstream by the host
// dispatcher's authorization collaborator.
type Registry struct {
	mu            sync.RWMutex
	assets        map[string]Asset
	sourceChains  map[uint64]bool
	externalAsset map[externalKey]string
}

func New() *Registry {
	return &Registry{
		assets:        make(map[string]Asset),
		sourceChains:  make(map[uint64]bool),
		externalAsset: make(map[externalKey]string),
	}
}

// AddAsset registers a new supported asset. Factors outside their valid
// ranges fail ErrInvalidParameter; re-registering an id fails
// ErrAlreadySupported.
func (r *Registry) AddAsset(id string, decimals uint8, collateralFactorBps, liquidationThresholdBps, liquidationBonusBps uint64) error {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return fmt.Errorf("%w: empty asset id", ErrInvalidParameter)
	}
	if collateralFactorBps == 0 || collateralFactorBps > bpsDenominator {
		return fmt.Errorf("%w: collateral factor %d out of (0, %d]", ErrInvalidParameter, collateralFactorBps, bpsDenominator)
	}
	if liquidationThresholdBps == 0 || liquidationThresholdBps > bpsDenominator {
		return fmt.Errorf("%w: liquidation threshold %d out of (0, %d]", ErrInvalidParameter, liquidationThresholdBps, bpsDenominator)
	}
	if liquidationBonusBps >= bpsDenominator {
		return fmt.Errorf("%w: liquidation bonus %d out of [0, %d)", ErrInvalidParameter, liquidationBonusBps, bpsDenominator)
	}
	if collateralFactorBps > liquidationThresholdBps {
		return fmt.Errorf("%w: collateral factor above liquidation threshold", ErrInvalidParameter)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.assets[trimmed]; ok && existing.IsSupported {
		return fmt.Errorf("%w: %s", ErrAlreadySupported, trimmed)
	}
	r.assets[trimmed] = Asset{
		ID:                      trimmed,
		Decimals:                decimals,
		CollateralFactorBps:     collateralFactorBps,
		LiquidationThresholdBps: liquidationThresholdBps,
		LiquidationBonusBps:     liquidationBonusBps,
		IsSupported:             true,
	}
	return nil
}

// RemoveAsset marks an asset unsupported. Existing positions keep their
// balances; new supplies and borrows of the asset are rejected.
func (r *Registry) RemoveAsset(id string) error {
	trimmed := strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[trimmed]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, trimmed)
	}
	asset.IsSupported = false
	r.assets[trimmed] = asset
	return nil
}

// Get returns the asset record whether or not it is currently supported.
func (r *Registry) Get(id string) (Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	asset, ok := r.assets[strings.TrimSpace(id)]
	return asset, ok
}

// IsSupported reports whether the asset is registered and active.
func (r *Registry) IsSupported(id string) bool {
	asset, ok := r.Get(id)
	return ok && asset.IsSupported
}

// Assets returns a snapshot of all registered assets.
func (r *Registry) Assets() []Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Asset, 0, len(r.assets))
	for _, asset := range r.assets {
		out = append(out, asset)
	}
	return out
}

// SetAllowedSourceChain toggles whether deposits originating from the chain
// are accepted by the gateway entry point.
func (r *Registry) SetAllowedSourceChain(chainID uint64, allowed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if allowed {
		r.sourceChains[chainID] = true
		return
	}
	delete(r.sourceChains, chainID)
}

// IsSourceChainAllowed reports whether the chain is on the allow-list.
func (r *Registry) IsSourceChainAllowed(chainID uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sourceChains[chainID]
}

// MapExternalAsset binds a source-chain asset identifier (mint address,
// token contract) to a hub asset id. The hub asset must already be
// registered.
func (r *Registry) MapExternalAsset(chainID uint64, externalID, hubAssetID string) error {
	trimmedExternal := strings.TrimSpace(externalID)
	trimmedHub := strings.TrimSpace(hubAssetID)
	if trimmedExternal == "" || trimmedHub == "" {
		return fmt.Errorf("%w: external and hub asset ids required", ErrInvalidParameter)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[trimmedHub]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, trimmedHub)
	}
	r.externalAsset[externalKey{chainID: chainID, assetID: trimmedExternal}] = trimmedHub
	return nil
}

// ResolveExternalAsset returns the hub asset id for a source-chain asset.
func (r *Registry) ResolveExternalAsset(chainID uint64, externalID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hubID, ok := r.externalAsset[externalKey{chainID: chainID, assetID: strings.TrimSpace(externalID)}]
	return hubID, ok
}

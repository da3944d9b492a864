package codec

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"
)

// Seed prefixes used by the deposit contract's derived accounts.
const (
	SeedDepositContract = "deposit_contract"
	SeedAssetConfig     = "asset_config"
)

const derivedAddressMarker = "ProgramDerivedAddress"

// ErrNoDerivedAddress means every bump from 255 down to 0 produced a point on
// the ed25519 curve. The probability is negligible; the error keeps the
// search total.
var ErrNoDerivedAddress = errors.New("codec: no off-curve derived address found")

// DeriveProgramAddress finds the canonical derived address for the seeds:
// sha256(seeds .. bump .. programID .. marker) for the highest bump whose
// digest is not a valid curve point. Derived addresses must have no private
// key, hence the off-curve requirement.
func DeriveProgramAddress(seeds [][]byte, programID [32]byte) ([32]byte, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{uint8(bump)})
		h.Write(programID[:])
		h.Write([]byte(derivedAddressMarker))

		var candidate [32]byte
		copy(candidate[:], h.Sum(nil))
		if !onCurve(candidate[:]) {
			return candidate, uint8(bump), nil
		}
	}
	return [32]byte{}, 0, ErrNoDerivedAddress
}

// DepositContractAddress derives the singleton contract-state address.
func DepositContractAddress(programID [32]byte) ([32]byte, uint8, error) {
	return DeriveProgramAddress([][]byte{[]byte(SeedDepositContract)}, programID)
}

// AssetConfigAddress derives the per-mint asset configuration address.
func AssetConfigAddress(programID [32]byte, mint [32]byte) ([32]byte, uint8, error) {
	return DeriveProgramAddress([][]byte{[]byte(SeedAssetConfig), mint[:]}, programID)
}

func onCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveProgramAddressDeterministic(t *testing.T) {
	var programID [32]byte
	copy(programID[:], "lending-deposit-contract-v1-----")

	addr1, bump1, err := DepositContractAddress(programID)
	require.NoError(t, err)
	addr2, bump2, err := DepositContractAddress(programID)
	require.NoError(t, err)
	require.Equal(t, addr1, addr2)
	require.Equal(t, bump1, bump2)
	require.False(t, onCurve(addr1[:]))
}

func TestDeriveProgramAddressVariesWithSeeds(t *testing.T) {
	var programID, mintA, mintB [32]byte
	copy(programID[:], "lending-deposit-contract-v1-----")
	mintA[0] = 0x01
	mintB[0] = 0x02

	contractAddr, _, err := DepositContractAddress(programID)
	require.NoError(t, err)
	configA, _, err := AssetConfigAddress(programID, mintA)
	require.NoError(t, err)
	configB, _, err := AssetConfigAddress(programID, mintB)
	require.NoError(t, err)

	require.NotEqual(t, contractAddr, configA)
	require.NotEqual(t, configA, configB)
}

func TestDeriveProgramAddressVariesWithProgram(t *testing.T) {
	var programA, programB [32]byte
	programA[31] = 0xAA
	programB[31] = 0xBB

	addrA, _, err := DepositContractAddress(programA)
	require.NoError(t, err)
	addrB, _, err := DepositContractAddress(programB)
	require.NoError(t, err)
	require.NotEqual(t, addrA, addrB)
}

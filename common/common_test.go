// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package common

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressParse(t *testing.T) {
	addr := BytesToAddress([]byte("cluster"))

	parsed, err := ParseAddress(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)

	parsed, err = ParseAddress(addr.String()[2:])
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)

	_, err = ParseAddress("0x1234")
	assert.EqualError(t, err, "invalid length")

	_, err = ParseAddress("1x" + addr.String()[2:])
	assert.EqualError(t, err, "invalid prefix")

	assert.True(t, Address{}.IsZero())
	assert.False(t, addr.IsZero())
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("owner"))

	data, err := json.Marshal(&addr)
	require.NoError(t, err)
	assert.Equal(t, `"`+addr.String()+`"`, string(data))

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)

	// map keys go through the text marshaler
	m := map[Address]int{addr: 1}
	data, err = json.Marshal(m)
	require.NoError(t, err)
	var back map[Address]int
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)
}

func TestBytes32MarshalUnmarshal(t *testing.T) {
	originalHex := `"0x00000000000000000000000000000000000000000000000000006d6173746572"`

	var value Bytes32
	require.NoError(t, json.Unmarshal([]byte(originalHex), &value))

	marshalVal, err := json.Marshal(value)
	require.NoError(t, err)
	assert.Equal(t, originalHex, string(marshalVal))

	marshalPtr, err := json.Marshal(&value)
	require.NoError(t, err)
	assert.Equal(t, originalHex, string(marshalPtr))

	assert.Equal(t, BytesToBytes32([]byte("master")), value)
}

func TestUint64ToBytes32(t *testing.T) {
	b := Uint64ToBytes32(258)
	assert.Equal(t, byte(1), b[30])
	assert.Equal(t, byte(2), b[31])
	assert.Equal(t, BytesToBytes32([]byte{1, 2}), b)
}

func TestHashes(t *testing.T) {
	// keccak256 of the empty input
	assert.Equal(t,
		MustParseBytes32("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"),
		Keccak256(),
	)
	assert.Equal(t, Keccak256([]byte("ab")), Keccak256([]byte("a"), []byte("b")))
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
	assert.NotEqual(t, Blake2b([]byte("ab")), Keccak256([]byte("ab")))
}

func TestUnits(t *testing.T) {
	assert.Equal(t, big.NewInt(0).Mul(big.NewInt(3), big.NewInt(1e18)), Units(3))
	assert.Equal(t, 256, MaxUint256.BitLen())
}

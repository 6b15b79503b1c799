// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/builtin/token"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/test/datagen"
	"github.com/marlinprotocol/contracts-sub002/test/teststate"
)

func newRegistry(t *testing.T) *Registry {
	st := teststate.New(t)
	resolve := func(addr common.Address) Handle {
		return token.New(solidity.NewContext(addr, st, nil))
	}
	return New(solidity.NewContext(common.BytesToAddress([]byte("Tokens")), st, nil), resolve)
}

func TestID(t *testing.T) {
	handle := datagen.RandAddress()
	assert.Equal(t, common.Keccak256(handle.Bytes()), ID(handle))
	assert.NotEqual(t, ID(handle), ID(datagen.RandAddress()))
}

func TestAddAndLookup(t *testing.T) {
	r := newRegistry(t)
	pond, mpond := datagen.RandAddress(), datagen.RandAddress()

	status, err := r.Status(ID(pond))
	require.NoError(t, err)
	assert.Equal(t, Unknown, status)

	pondID, err := r.Add(pond, big.NewInt(1))
	require.NoError(t, err)
	mpondID, err := r.Add(mpond, big.NewInt(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, ID(pond), pondID)

	_, err = r.Add(pond, big.NewInt(1))
	assert.True(t, reverts.Is(err, reverts.InvalidInput))
	_, err = r.Add(common.Address{}, big.NewInt(1))
	assert.True(t, reverts.Is(err, reverts.InvalidInput))

	ids, err := r.List()
	require.NoError(t, err)
	assert.Equal(t, []common.Bytes32{pondID, mpondID}, ids)

	desc, err := r.Lookup(mpondID)
	require.NoError(t, err)
	assert.Equal(t, mpond, desc.Handle)
	assert.True(t, desc.Delegatable)
	assert.Equal(t, big.NewInt(1_000_000), desc.RewardFactor)

	desc, err = r.Lookup(datagen.RandomHash())
	require.NoError(t, err)
	assert.Nil(t, desc)
}

func TestStatusAndFactor(t *testing.T) {
	r := newRegistry(t)
	id, err := r.Add(datagen.RandAddress(), big.NewInt(2))
	require.NoError(t, err)

	require.NoError(t, r.Disable(id))
	status, _ := r.Status(id)
	assert.Equal(t, Inactive, status)
	assert.Equal(t, "inactive", status.String())

	require.NoError(t, r.Enable(id))
	status, _ = r.Status(id)
	assert.Equal(t, Active, status)

	require.NoError(t, r.SetRewardFactor(id, big.NewInt(5)))
	f, err := r.RewardFactor(id)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), f)

	assert.True(t, reverts.Is(r.SetRewardFactor(id, big.NewInt(-1)), reverts.InvalidInput))
	assert.True(t, reverts.Is(r.Enable(datagen.RandomHash()), reverts.NotFound))
	_, err = r.RewardFactor(datagen.RandomHash())
	assert.True(t, reverts.Is(err, reverts.NotFound))
}

func TestHandle(t *testing.T) {
	r := newRegistry(t)
	addr := datagen.RandAddress()
	id, err := r.Add(addr, big.NewInt(1))
	require.NoError(t, err)

	h, err := r.Handle(id)
	require.NoError(t, err)
	tk, ok := h.(*token.Token)
	require.True(t, ok)
	assert.Equal(t, addr, tk.Address())

	_, err = r.Handle(datagen.RandomHash())
	assert.True(t, reverts.Is(err, reverts.NotFound))
}

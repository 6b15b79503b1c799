// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/contracts-sub002/builtin/acl"
	"github.com/marlinprotocol/contracts-sub002/builtin/gascharger"
	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/test/datagen"
	"github.com/marlinprotocol/contracts-sub002/test/teststate"
)

func TestAddresses(t *testing.T) {
	assert.Equal(t, common.BytesToAddress([]byte("Staker")), Staker.Address)
	assert.Equal(t, "Params", Params.Name())

	seen := make(map[common.Address]bool)
	for _, c := range []*contract{Params.contract, ACL.contract, Tokens.contract, Clusters.contract, Staker.contract} {
		assert.False(t, seen[c.Address], "duplicate address of %s", c.name)
		seen[c.Address] = true
	}
}

func TestStakerBinding(t *testing.T) {
	st := teststate.New(t)
	admin := datagen.RandAddress()
	require.NoError(t, ACL.WithState(st).Grant(acl.Admin, admin))

	charger := gascharger.New()
	stk := Staker.WithState(st, charger)
	assert.Equal(t, Staker.Address, stk.Address())

	handle := common.BytesToAddress([]byte("POND"))
	id, err := stk.AddToken(admin, handle, big.NewInt(1))
	require.NoError(t, err)
	assert.NotZero(t, charger.TotalGas())

	// registries bound separately see the staker's writes
	desc, err := Tokens.WithState(st).Lookup(id)
	require.NoError(t, err)
	assert.Equal(t, handle, desc.Handle)

	owner := datagen.RandAddress()
	pond := TokenAt(handle, st)
	require.NoError(t, pond.Mint(owner, big.NewInt(10)))
	require.NoError(t, pond.Approve(owner, Staker.Address, big.NewInt(10)))

	stashID, err := stk.CreateStash(owner, []common.Bytes32{id}, []*big.Int{big.NewInt(10)})
	require.NoError(t, err)
	balance, err := pond.BalanceOf(Staker.Address)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance.Int64())

	_, err = stk.CreateStash(owner, []common.Bytes32{id}, []*big.Int{big.NewInt(1)})
	assert.True(t, reverts.Is(err, reverts.TransferFailed))

	s, err := stk.GetStash(stashID)
	require.NoError(t, err)
	assert.Equal(t, owner, s.Owner)
}

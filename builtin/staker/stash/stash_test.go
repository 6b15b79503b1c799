// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stash

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/test/datagen"
	"github.com/marlinprotocol/contracts-sub002/test/teststate"
)

func newService(t *testing.T) *Service {
	return New(solidity.NewContext(common.BytesToAddress([]byte("Staker")), teststate.New(t), nil))
}

func TestStashBalances(t *testing.T) {
	pond, mpond := datagen.RandomHash(), datagen.RandomHash()
	s := &Stash{Owner: datagen.RandAddress()}
	assert.True(t, s.IsEmpty())
	assert.False(t, s.IsDelegated())

	s.Add(pond, big.NewInt(10))
	s.Add(mpond, big.NewInt(0))
	s.Add(pond, big.NewInt(5))
	assert.Equal(t, []common.Bytes32{pond}, s.Tokens)
	assert.Equal(t, int64(15), s.Balance(pond).Int64())
	assert.Equal(t, 0, s.Balance(mpond).Sign())

	err := s.Sub(pond, big.NewInt(16))
	assert.True(t, reverts.Is(err, reverts.InsufficientBalance))
	err = s.Sub(mpond, big.NewInt(1))
	assert.True(t, reverts.Is(err, reverts.InsufficientBalance))

	require.NoError(t, s.Sub(pond, big.NewInt(5)))
	assert.Equal(t, int64(10), s.Balance(pond).Int64())
	require.NoError(t, s.Sub(pond, big.NewInt(10)))
	assert.True(t, s.IsEmpty())
}

func TestStashClone(t *testing.T) {
	pond := datagen.RandomHash()
	s := &Stash{Owner: datagen.RandAddress(), Cluster: datagen.RandAddress()}
	s.Add(pond, big.NewInt(7))

	c := s.Clone()
	c.Add(pond, big.NewInt(1))
	assert.Equal(t, int64(7), s.Balance(pond).Int64())
	assert.Equal(t, int64(8), c.Balance(pond).Int64())
	assert.True(t, c.IsDelegated())
}

func TestService(t *testing.T) {
	svc := newService(t)
	pond := datagen.RandomHash()
	owner := datagen.RandAddress()

	st := &Stash{Owner: owner}
	st.Add(pond, big.NewInt(100))

	id1, err := svc.Add(st)
	require.NoError(t, err)
	assert.Equal(t, ID(big.NewInt(1)), id1)
	id2, err := svc.Add(st.Clone())
	require.NoError(t, err)
	assert.Equal(t, ID(big.NewInt(2)), id2)
	assert.NotEqual(t, id1, id2)

	count, err := svc.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Int64())

	got, err := svc.Get(id1)
	require.NoError(t, err)
	assert.Equal(t, owner, got.Owner)
	assert.Equal(t, int64(100), got.Balance(pond).Int64())
	assert.False(t, got.IsDelegated())

	got.Cluster = datagen.RandAddress()
	require.NoError(t, svc.Update(id1, got))
	got, err = svc.Get(id1)
	require.NoError(t, err)
	assert.True(t, got.IsDelegated())

	svc.Delete(id1)
	got, err = svc.Get(id1)
	require.NoError(t, err)
	assert.Nil(t, got)

	missing, err := svc.Get(datagen.RandomHash())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

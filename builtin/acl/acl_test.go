// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/test/datagen"
	"github.com/marlinprotocol/contracts-sub002/test/teststate"
)

func TestRoles(t *testing.T) {
	a := New(solidity.NewContext(common.BytesToAddress([]byte("ACL")), teststate.New(t), nil))
	admin, feeder := datagen.RandAddress(), datagen.RandAddress()

	require.NoError(t, a.Grant(Admin, admin))
	require.NoError(t, a.Grant(Feeder, feeder))

	ok, err := a.HasRole(Admin, admin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.HasRole(Feeder, admin)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, a.Check(Feeder, feeder))
	assert.True(t, reverts.Is(a.Check(Admin, feeder), reverts.Unauthorized))

	a.Revoke(Feeder, feeder)
	assert.True(t, reverts.Is(a.Check(Feeder, feeder), reverts.Unauthorized))
}

func TestParseRole(t *testing.T) {
	for _, r := range []Role{Admin, Feeder} {
		parsed, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
	_, err := ParseRole("owner")
	assert.Error(t, err)
	assert.Equal(t, "role(9)", Role(9).String())
}

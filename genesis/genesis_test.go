// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/contracts-sub002/builtin"
	"github.com/marlinprotocol/contracts-sub002/builtin/acl"
	"github.com/marlinprotocol/contracts-sub002/builtin/params"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker"
	"github.com/marlinprotocol/contracts-sub002/builtin/tokens"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/genesis"
	"github.com/marlinprotocol/contracts-sub002/test/teststate"
)

const sample = `
launchTime: 1700000000
roles:
  - role: admin
    address: admin
  - role: feeder
    address: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
tokens:
  - address: POND
    name: Pond
    symbol: POND
    decimals: 18
    rewardFactor: 1
    reward: true
    balances:
      - address: alice
        amount: 5e18
      - address: bob
        amount: 1_000
  - address: MPOND
    name: MPond
    symbol: MPOND
    rewardFactor: 2
    disabled: true
clusters:
  - address: cluster-1
    commission: 25
    rewardAddress: operator
networks:
  - name: ETH
    weight: 3
params:
  total-rewards-per-epoch: 0x3e8
  allow-epoch-gaps: 1
rewardPool: 1000000
`

func TestParse(t *testing.T) {
	gen, err := genesis.Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, uint64(1700000000), gen.LaunchTime)
	require.Len(t, gen.Roles, 2)
	assert.Equal(t, common.BytesToAddress([]byte("admin")), gen.Roles[0].Address.Common())
	assert.Equal(t, common.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"), gen.Roles[1].Address.Common())

	require.Len(t, gen.Tokens, 2)
	assert.Equal(t, 0, gen.Tokens[0].Balances[0].Amount.Big().Cmp(common.Units(5)))
	assert.Equal(t, int64(1000), gen.Tokens[0].Balances[1].Amount.Big().Int64())
	assert.Equal(t, int64(1000), gen.Params["total-rewards-per-epoch"].Big().Int64())

	admin, ok := gen.Admin()
	assert.True(t, ok)
	assert.Equal(t, common.BytesToAddress([]byte("admin")), admin)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"0", "0", false},
		{"1_000", "1000", false},
		{"0x10", "16", false},
		{"3e2", "300", false},
		{"-1", "", true},
		{"1.5", "", true},
		{"1e", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := genesis.ParseAmount(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestParseAccount(t *testing.T) {
	addr, err := genesis.ParseAccount("alice")
	require.NoError(t, err)
	assert.Equal(t, common.BytesToAddress([]byte("alice")), addr)

	_, err = genesis.ParseAccount("an-alias-longer-than-twenty-bytes")
	assert.Error(t, err)

	_, err = genesis.ParseAccount("0x1234")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	gen, err := genesis.Parse([]byte(sample))
	require.NoError(t, err)

	st := teststate.New(t)
	require.NoError(t, gen.Apply(st))

	admin := common.BytesToAddress([]byte("admin"))
	alice := common.BytesToAddress([]byte("alice"))
	pond := common.BytesToAddress([]byte("POND"))
	mpond := common.BytesToAddress([]byte("MPOND"))
	cluster := common.BytesToAddress([]byte("cluster-1"))

	ok, err := builtin.ACL.WithState(st).HasRole(acl.Admin, admin)
	require.NoError(t, err)
	assert.True(t, ok)

	handle := builtin.TokenAt(pond, st)
	bal, err := handle.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Cmp(common.Units(5)))
	allowance, err := handle.Allowance(alice, builtin.Staker.Address)
	require.NoError(t, err)
	assert.Equal(t, 0, allowance.Cmp(common.Units(5)))
	pool, err := handle.BalanceOf(staker.RewardPool)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), pool.Int64())

	registry := builtin.Tokens.WithState(st)
	status, err := registry.Status(tokens.ID(pond))
	require.NoError(t, err)
	assert.Equal(t, tokens.Active, status)
	status, err = registry.Status(tokens.ID(mpond))
	require.NoError(t, err)
	assert.Equal(t, tokens.Inactive, status)

	p := builtin.Params.WithState(st)
	rewardToken, err := p.RewardTokenID()
	require.NoError(t, err)
	assert.Equal(t, tokens.ID(pond), rewardToken)
	gaps, err := p.Bool(params.AllowEpochGaps)
	require.NoError(t, err)
	assert.True(t, gaps)

	c, err := builtin.Clusters.WithState(st).Get(cluster)
	require.NoError(t, err)
	assert.True(t, c.Active)
	assert.Equal(t, uint64(25), c.Commission)
	assert.Equal(t, common.BytesToAddress([]byte("operator")), c.RewardAddress)

	network, err := builtin.Staker.WithState(st, nil).GetNetwork(genesis.NetworkID("ETH"))
	require.NoError(t, err)
	require.NotNil(t, network)
	assert.Equal(t, int64(3), network.Weight.Int64())
}

func TestApply_Invalid(t *testing.T) {
	tests := []struct {
		name string
		gen  *genesis.Genesis
	}{
		{"unknown role", &genesis.Genesis{Roles: []genesis.Role{{Role: "root"}}}},
		{"token without factor", &genesis.Genesis{Tokens: []genesis.Token{
			{Address: genesis.Address(common.BytesToAddress([]byte("T")))},
		}}},
		{"zero balance", &genesis.Genesis{Tokens: []genesis.Token{{
			Address:      genesis.Address(common.BytesToAddress([]byte("T"))),
			RewardFactor: genesis.NewAmount(big.NewInt(1)),
			Balances:     []genesis.Balance{{Amount: genesis.NewAmount(big.NewInt(0))}},
		}}}},
		{"unknown param", &genesis.Genesis{Params: map[string]*genesis.Amount{"gas": genesis.NewAmount(big.NewInt(1))}}},
		{"reward token param", &genesis.Genesis{Params: map[string]*genesis.Amount{"reward-token": genesis.NewAmount(big.NewInt(1))}}},
		{"network without admin", &genesis.Genesis{Networks: []genesis.Network{{"ETH", genesis.NewAmount(big.NewInt(1))}}}},
		{"commission above max", &genesis.Genesis{Clusters: []genesis.Cluster{{Commission: 101}}}},
		{"pool without reward token", &genesis.Genesis{RewardPool: genesis.NewAmount(big.NewInt(1))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.gen.Apply(teststate.New(t)))
		})
	}
}

func TestDevnet(t *testing.T) {
	gen := genesis.NewDevnet()
	st := teststate.New(t)
	require.NoError(t, gen.Apply(st))

	accs := genesis.DevAccounts()
	s := builtin.Staker.WithState(st, nil)

	ok, err := s.HasRole(acl.Feeder, accs[1].Address)
	require.NoError(t, err)
	assert.True(t, ok)

	bal, err := builtin.TokenAt(genesis.DevMPOND, st).BalanceOf(accs[3].Address)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Cmp(common.Units(1_000_000)))

	weight, err := s.TotalNetworkWeight()
	require.NoError(t, err)
	assert.Equal(t, int64(1), weight.Int64())
}

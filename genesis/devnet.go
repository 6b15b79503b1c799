// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/marlinprotocol/contracts-sub002/builtin/acl"
	"github.com/marlinprotocol/contracts-sub002/common"
)

// DevAccount account for development.
type DevAccount struct {
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-funded accounts of the dev genesis. The first one is
// the admin, the second one the feeder.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
		"88d2d80b12b92feaa0da6d62309463d20408157723f2d7e799b6a74ead9a673b",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{common.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

var (
	DevPOND    = common.BytesToAddress([]byte("POND"))
	DevMPOND   = common.BytesToAddress([]byte("MPOND"))
	DevCluster = common.BytesToAddress([]byte("cluster-1"))
)

// NewDevnet creates the genesis used for local simulation: POND (reward token,
// factor 1) and MPOND (factor 2) held by every dev account, one cluster with 10%
// commission and an ETH network.
func NewDevnet() *Genesis {
	accs := DevAccounts()
	balance := NewAmount(common.Units(1_000_000))

	var pondBalances, mpondBalances []Balance
	for _, acc := range accs {
		pondBalances = append(pondBalances, Balance{Address(acc.Address), balance})
		mpondBalances = append(mpondBalances, Balance{Address(acc.Address), balance})
	}

	return &Genesis{
		LaunchTime: 1_700_000_000,
		Roles: []Role{
			{acl.Admin.String(), Address(accs[0].Address)},
			{acl.Feeder.String(), Address(accs[1].Address)},
		},
		Tokens: []Token{
			{
				Address:      Address(DevPOND),
				Name:         "Pond",
				Symbol:       "POND",
				Decimals:     18,
				RewardFactor: NewAmount(big.NewInt(1)),
				Reward:       true,
				Balances:     pondBalances,
			},
			{
				Address:      Address(DevMPOND),
				Name:         "MPond",
				Symbol:       "MPOND",
				Decimals:     18,
				RewardFactor: NewAmount(big.NewInt(2)),
				Balances:     mpondBalances,
			},
		},
		Clusters: []Cluster{
			{Address(DevCluster), 10, Address(DevCluster)},
		},
		Networks: []Network{
			{"ETH", NewAmount(big.NewInt(1))},
		},
		Params: map[string]*Amount{
			"total-rewards-per-epoch": NewAmount(common.Units(1000)),
		},
		RewardPool: NewAmount(common.Units(100_000_000)),
	}
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package clusters

import "github.com/marlinprotocol/contracts-sub002/common"

// MaxCommission is the commission upper bound, in percent.
const MaxCommission = 100

type entry struct {
	Commission    uint64
	RewardAddress common.Address
	Active        bool
	Prev          *common.Address `rlp:"nil"`
	Next          *common.Address `rlp:"nil"`
}

// Cluster is the registry record of a cluster.
type Cluster struct {
	Address       common.Address
	Commission    uint64
	RewardAddress common.Address
	Active        bool
}

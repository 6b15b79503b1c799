// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package clusters

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/marlinprotocol/contracts-sub002/common"
)

type Cluster struct {
	Address           common.Address        `json:"address"`
	Active            bool                  `json:"active"`
	Commission        uint64                `json:"commission"`
	RewardAddress     common.Address        `json:"rewardAddress"`
	WeightedStake     *math.HexOrDecimal256 `json:"weightedStake"`
	LastWeightedStake *math.HexOrDecimal256 `json:"lastWeightedStake"`
	PendingCredit     *math.HexOrDecimal256 `json:"pendingCredit"`
	CommissionPaid    *math.HexOrDecimal256 `json:"commissionPaid"`
}

type Pool struct {
	Cluster           common.Address        `json:"cluster"`
	Token             common.Bytes32        `json:"token"`
	TotalDelegation   *math.HexOrDecimal256 `json:"totalDelegation"`
	AccRewardPerShare *math.HexOrDecimal256 `json:"accRewardPerShare"`
}

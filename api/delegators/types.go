// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegators

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/marlinprotocol/contracts-sub002/common"
)

// Rewards of a delegator at one cluster. Pending amounts reflect the last
// distribution; Projected ones also include credit fed since then.
type Rewards struct {
	Owner            common.Address        `json:"owner"`
	Cluster          common.Address        `json:"cluster"`
	Pending          *math.HexOrDecimal256 `json:"pending"`
	Projected        *math.HexOrDecimal256 `json:"projected"`
	ProjectionFailed bool                  `json:"projectionFailed"`
	RewardToken      *common.Bytes32       `json:"rewardToken"`
	Positions        []*Position           `json:"positions"`
}

type Position struct {
	Token      common.Bytes32        `json:"token"`
	Amount     *math.HexOrDecimal256 `json:"amount"`
	RewardDebt *math.HexOrDecimal256 `json:"rewardDebt"`
	Pending    *math.HexOrDecimal256 `json:"pending"`
}

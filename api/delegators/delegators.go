// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegators

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/api/utils"
	"github.com/marlinprotocol/contracts-sub002/builtin"
	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/ledger"
	"github.com/marlinprotocol/contracts-sub002/state"
)

type Delegators struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Delegators {
	return &Delegators{l}
}

func pendingTotal(stk *staker.Staker, owner, cluster common.Address, ids []common.Bytes32) (*big.Int, error) {
	total := new(big.Int)
	for _, id := range ids {
		pending, err := stk.PendingReward(owner, cluster, id)
		if err != nil {
			return nil, err
		}
		total.Add(total, pending)
	}
	return total, nil
}

func (d *Delegators) getRewards(owner, cluster common.Address) (*Rewards, error) {
	var result *Rewards
	err := d.ledger.ViewState(func(st *state.State) error {
		ids, err := builtin.Tokens.WithState(st).List()
		if err != nil {
			return err
		}
		stk := builtin.Staker.WithState(st, nil)

		result = &Rewards{
			Owner:     owner,
			Cluster:   cluster,
			Positions: make([]*Position, 0, len(ids)),
		}
		rewardToken, err := builtin.Params.WithState(st).RewardTokenID()
		if err != nil {
			return err
		}
		if !rewardToken.IsZero() {
			result.RewardToken = &rewardToken
		}

		pending := new(big.Int)
		for _, id := range ids {
			pos, err := stk.GetPosition(owner, cluster, id)
			if err != nil {
				return err
			}
			if pos.Amount.Sign() == 0 {
				continue
			}
			amount, err := stk.PendingReward(owner, cluster, id)
			if err != nil {
				return err
			}
			pending.Add(pending, amount)
			result.Positions = append(result.Positions, &Position{
				Token:      id,
				Amount:     (*math.HexOrDecimal256)(pos.Amount),
				RewardDebt: (*math.HexOrDecimal256)(pos.RewardDebt),
				Pending:    (*math.HexOrDecimal256)(amount),
			})
		}
		result.Pending = (*math.HexOrDecimal256)(pending)

		// distribute pending credit in this discarded view to project the reward
		credit, err := stk.PendingCredit(cluster)
		if err != nil {
			return err
		}
		result.Projected = (*math.HexOrDecimal256)(pending)
		if credit.Sign() == 0 {
			return nil
		}
		if err := stk.UpdateRewards(cluster); err != nil {
			if !reverts.IsRevertErr(err) {
				return err
			}
			// distribution reverted, e.g. reward pool short of funds
			result.ProjectionFailed = true
			return nil
		}
		projected, err := pendingTotal(stk, owner, cluster, ids)
		if err != nil {
			return err
		}
		result.Projected = (*math.HexOrDecimal256)(projected)
		return nil
	})
	return result, err
}

func (d *Delegators) handleGetRewards(w http.ResponseWriter, req *http.Request) error {
	owner, err := common.ParseAddress(mux.Vars(req)["owner"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "owner"))
	}
	cluster, err := common.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "cluster"))
	}
	rewards, err := d.getRewards(owner, cluster)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, rewards)
}

func (d *Delegators) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{owner}/clusters/{address}/rewards").
		Methods(http.MethodGet).
		Name("GET /delegators/{owner}/clusters/{address}/rewards").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetRewards))
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package clusters

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/api/utils"
	"github.com/marlinprotocol/contracts-sub002/builtin"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/ledger"
	"github.com/marlinprotocol/contracts-sub002/state"
)

type Clusters struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Clusters {
	return &Clusters{l}
}

func (c *Clusters) getCluster(addr common.Address) (*Cluster, error) {
	var result *Cluster
	err := c.ledger.ViewState(func(st *state.State) error {
		entry, err := builtin.Clusters.WithState(st).Get(addr)
		if err != nil || entry == nil {
			return err
		}
		stk := builtin.Staker.WithState(st, nil)
		weighted, err := stk.WeightedStake(addr)
		if err != nil {
			return err
		}
		last, err := stk.LastWeightedStake(addr)
		if err != nil {
			return err
		}
		credit, err := stk.PendingCredit(addr)
		if err != nil {
			return err
		}
		paid, err := stk.CommissionPaid(addr)
		if err != nil {
			return err
		}
		result = &Cluster{
			Address:           addr,
			Active:            entry.Active,
			Commission:        entry.Commission,
			RewardAddress:     entry.RewardAddress,
			WeightedStake:     (*math.HexOrDecimal256)(weighted),
			LastWeightedStake: (*math.HexOrDecimal256)(last),
			PendingCredit:     (*math.HexOrDecimal256)(credit),
			CommissionPaid:    (*math.HexOrDecimal256)(paid),
		}
		return nil
	})
	return result, err
}

func (c *Clusters) handleGetCluster(w http.ResponseWriter, req *http.Request) error {
	addr, err := common.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	cluster, err := c.getCluster(addr)
	if err != nil {
		return err
	}
	if cluster == nil {
		return utils.NotFound(errors.New("cluster not found"))
	}
	return utils.WriteJSON(w, cluster)
}

func (c *Clusters) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	addr, err := common.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	token, err := utils.ParseTokenID(mux.Vars(req)["token"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "token"))
	}

	var pool *Pool
	err = c.ledger.ViewState(func(st *state.State) error {
		// unknown tokens are reported rather than shown as empty pools
		if _, err := builtin.Tokens.WithState(st).RewardFactor(token); err != nil {
			return err
		}
		p, err := builtin.Staker.WithState(st, nil).GetPool(addr, token)
		if err != nil {
			return err
		}
		pool = &Pool{
			Cluster:           addr,
			Token:             token,
			TotalDelegation:   (*math.HexOrDecimal256)(p.TotalDelegation),
			AccRewardPerShare: (*math.HexOrDecimal256)(p.AccRewardPerShare),
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, pool)
}

func (c *Clusters) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /clusters/{address}").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetCluster))
	sub.Path("/{address}/tokens/{token}").
		Methods(http.MethodGet).
		Name("GET /clusters/{address}/tokens/{token}").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetPool))
}

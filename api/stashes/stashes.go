// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stashes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/api/utils"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/locks"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/ledger"
)

type Stashes struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Stashes {
	return &Stashes{l}
}

func (s *Stashes) getStash(id common.Bytes32) (*Stash, error) {
	var result *Stash
	err := s.ledger.View(func(stk *staker.Staker) error {
		st, err := stk.GetStash(id)
		if err != nil || st == nil {
			return err
		}
		redelegation, err := stk.GetLock(locks.Redelegation, id)
		if err != nil {
			return err
		}
		undelegation, err := stk.GetLock(locks.Undelegation, id)
		if err != nil {
			return err
		}
		result = convertStash(id, st, redelegation, undelegation)
		return nil
	})
	return result, err
}

func (s *Stashes) handleGetStash(w http.ResponseWriter, req *http.Request) error {
	id, err := common.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	st, err := s.getStash(id)
	if err != nil {
		return err
	}
	if st == nil {
		return utils.NotFound(errors.New("stash not found"))
	}
	return utils.WriteJSON(w, st)
}

func (s *Stashes) handleGetCount(w http.ResponseWriter, _ *http.Request) error {
	var count uint64
	err := s.ledger.View(func(stk *staker.Staker) error {
		n, err := stk.StashCount()
		if err != nil {
			return err
		}
		count = n.Uint64()
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"count": count})
}

func (s *Stashes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /stashes").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetCount))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /stashes/{id}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStash))
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/common"
)

// transfer is a token movement queued until the effects of an operation are done.
type transfer struct {
	token  common.Bytes32
	from   common.Address
	to     common.Address
	amount *big.Int
	// pull moves tokens with the allowance from granted to the ledger
	pull bool
}

// pull queues the deposit of amount from owner into custody.
func (s *Staker) pull(token common.Bytes32, owner common.Address, amount *big.Int) {
	s.transfers = append(s.transfers, &transfer{
		token:  token,
		from:   owner,
		to:     s.addr,
		amount: new(big.Int).Set(amount),
		pull:   true,
	})
}

// release queues the return of amount from custody to owner.
func (s *Staker) release(token common.Bytes32, owner common.Address, amount *big.Int) {
	s.transfers = append(s.transfers, &transfer{
		token:  token,
		from:   s.addr,
		to:     owner,
		amount: new(big.Int).Set(amount),
	})
}

// payReward queues a payment from the reward pool in the reward token.
func (s *Staker) payReward(to common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	id, err := s.params.RewardTokenID()
	if err != nil {
		return err
	}
	if id.IsZero() {
		return reverts.New(reverts.NotFound, "reward token not configured")
	}
	s.transfers = append(s.transfers, &transfer{
		token:  id,
		from:   RewardPool,
		to:     to,
		amount: new(big.Int).Set(amount),
	})
	return nil
}

func (s *Staker) flushTransfers() error {
	for _, t := range s.transfers {
		handle, err := s.tokens.Handle(t.token)
		if err != nil {
			return err
		}
		if t.pull {
			err = handle.TransferFrom(s.addr, t.from, t.to, t.amount)
		} else {
			err = handle.Transfer(t.from, t.to, t.amount)
		}
		if err != nil {
			if reverts.IsRevertErr(err) {
				return err
			}
			return errors.Wrapf(err, "failed to transfer token %v", t.token)
		}
	}
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stash

import (
	"math/big"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/common"
)

// Stash is an owned bundle of token balances, optionally delegated to a cluster.
// Tokens and Amounts are parallel and hold only non zero balances.
type Stash struct {
	Owner   common.Address
	Cluster common.Address
	Tokens  []common.Bytes32
	Amounts []*big.Int
}

func (s *Stash) IsDelegated() bool {
	return !s.Cluster.IsZero()
}

func (s *Stash) IsEmpty() bool {
	return len(s.Tokens) == 0
}

func (s *Stash) index(token common.Bytes32) int {
	for i, t := range s.Tokens {
		if t == token {
			return i
		}
	}
	return -1
}

// Balance returns a copy of the balance of token.
func (s *Stash) Balance(token common.Bytes32) *big.Int {
	if i := s.index(token); i >= 0 {
		return new(big.Int).Set(s.Amounts[i])
	}
	return new(big.Int)
}

func (s *Stash) Add(token common.Bytes32, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	if i := s.index(token); i >= 0 {
		s.Amounts[i] = new(big.Int).Add(s.Amounts[i], amount)
		return
	}
	s.Tokens = append(s.Tokens, token)
	s.Amounts = append(s.Amounts, new(big.Int).Set(amount))
}

// Sub removes amount of token, dropping the entry once it reaches zero.
func (s *Stash) Sub(token common.Bytes32, amount *big.Int) error {
	i := s.index(token)
	if i < 0 || s.Amounts[i].Cmp(amount) < 0 {
		return reverts.Newf(reverts.InsufficientBalance, "insufficient balance of token %v", token)
	}
	left := new(big.Int).Sub(s.Amounts[i], amount)
	if left.Sign() == 0 {
		s.Tokens = append(s.Tokens[:i], s.Tokens[i+1:]...)
		s.Amounts = append(s.Amounts[:i], s.Amounts[i+1:]...)
		return nil
	}
	s.Amounts[i] = left
	return nil
}

// Clone returns a deep copy.
func (s *Stash) Clone() *Stash {
	c := &Stash{
		Owner:   s.Owner,
		Cluster: s.Cluster,
		Tokens:  append([]common.Bytes32(nil), s.Tokens...),
		Amounts: make([]*big.Int, len(s.Amounts)),
	}
	for i, a := range s.Amounts {
		c.Amounts[i] = new(big.Int).Set(a)
	}
	return c
}

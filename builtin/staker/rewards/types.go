// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/marlinprotocol/contracts-sub002/common"
)

// Precision scales the accumulated reward per share.
var Precision = new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)

// Tokens is the part of the token registry the accumulator reads.
type Tokens interface {
	List() ([]common.Bytes32, error)
	RewardFactor(id common.Bytes32) (*big.Int, error)
}

// Clusters is the part of the cluster registry the accumulator reads.
type Clusters interface {
	IsValid(cluster common.Address) (bool, error)
	Commission(cluster common.Address) (uint64, error)
	RewardAddress(cluster common.Address) (common.Address, error)
}

// Pool is the aggregate of one token delegated to one cluster.
type Pool struct {
	TotalDelegation   *big.Int
	AccRewardPerShare *big.Int
}

func newPool() *Pool {
	return &Pool{TotalDelegation: new(big.Int), AccRewardPerShare: new(big.Int)}
}

// Position is the delegation of one owner in a pool. RewardDebt is the
// accumulator value the pending reward is measured from.
type Position struct {
	Amount     *big.Int
	RewardDebt *big.Int
}

func newPosition() *Position {
	return &Position{Amount: new(big.Int), RewardDebt: new(big.Int)}
}

// Pending is amount * (acc - debt) / Precision, rounded down.
func (p *Position) Pending(acc *big.Int) *big.Int {
	delta := new(big.Int).Sub(acc, p.RewardDebt)
	if delta.Sign() <= 0 || p.Amount.Sign() == 0 {
		return new(big.Int)
	}
	delta.Mul(delta, p.Amount)
	return delta.Quo(delta, Precision)
}

// Update describes one consumption of a cluster's pending credit.
type Update struct {
	Cluster       common.Address
	Reward        *big.Int
	Commission    *big.Int
	CommissionTo  common.Address
	Forfeited     *big.Int
	WeightedStake *big.Int
}

type poolKey struct {
	cluster common.Address
	token   common.Bytes32
}

func (k poolKey) Bytes() []byte {
	return append(k.cluster.Bytes(), k.token.Bytes()...)
}

type positionKey struct {
	owner   common.Address
	cluster common.Address
	token   common.Bytes32
}

func (k positionKey) Bytes() []byte {
	b := make([]byte, 0, 2*common.AddressLength+32)
	b = append(b, k.owner.Bytes()...)
	b = append(b, k.cluster.Bytes()...)
	return append(b, k.token.Bytes()...)
}

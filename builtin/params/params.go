// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params keeps the runtime parameters of the ledger.
package params

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/common"
)

var (
	// RedelegationWait is the delay in seconds between a redelegation request and its execution.
	RedelegationWait = solidity.NewConfigVariable("redelegation-wait", big.NewInt(86400))
	// UndelegationWait is the delay in seconds before an undelegated stash can be withdrawn.
	UndelegationWait = solidity.NewConfigVariable("undelegation-wait", big.NewInt(7*86400))
	// MinEpochGap is the minimum spacing in seconds between two feeds of a network.
	MinEpochGap = solidity.NewConfigVariable("min-epoch-gap", big.NewInt(3600))
	// TotalRewardsPerEpoch is the reward budget of one epoch across all networks.
	TotalRewardsPerEpoch = solidity.NewConfigVariable("total-rewards-per-epoch", big.NewInt(0))
	// AllowEpochGaps lets a feed skip epoch numbers when non zero.
	AllowEpochGaps = solidity.NewConfigVariable("allow-epoch-gaps", big.NewInt(0))
	// RewardToken is the id of the token rewards and commission are paid in.
	RewardToken = solidity.NewConfigVariable("reward-token", big.NewInt(0))

	all = []*solidity.ConfigVariable{
		RedelegationWait,
		UndelegationWait,
		MinEpochGap,
		TotalRewardsPerEpoch,
		AllowEpochGaps,
		RewardToken,
	}
)

// All returns every parameter.
func All() []*solidity.ConfigVariable {
	return all
}

// Lookup finds a parameter by name.
func Lookup(name string) (*solidity.ConfigVariable, bool) {
	for _, v := range all {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}

type Params struct {
	sctx *solidity.Context
}

func New(sctx *solidity.Context) *Params {
	return &Params{sctx}
}

func (p *Params) Get(v *solidity.ConfigVariable) (*big.Int, error) {
	value, err := v.Get(p.sctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get param %s", v.Name())
	}
	return value, nil
}

func (p *Params) Set(v *solidity.ConfigVariable, value *big.Int) error {
	if err := v.Set(p.sctx, value); err != nil {
		return errors.Wrapf(err, "failed to set param %s", v.Name())
	}
	return nil
}

// Uint64 returns the parameter saturated to uint64.
func (p *Params) Uint64(v *solidity.ConfigVariable) (uint64, error) {
	value, err := p.Get(v)
	if err != nil {
		return 0, err
	}
	if !value.IsUint64() {
		return ^uint64(0), nil
	}
	return value.Uint64(), nil
}

func (p *Params) Bool(v *solidity.ConfigVariable) (bool, error) {
	value, err := p.Get(v)
	if err != nil {
		return false, err
	}
	return value.Sign() != 0, nil
}

// RewardTokenID returns the reward token id, zero when not configured.
func (p *Params) RewardTokenID() (common.Bytes32, error) {
	value, err := p.Get(RewardToken)
	if err != nil {
		return common.Bytes32{}, err
	}
	return common.BytesToBytes32(value.Bytes()), nil
}

func (p *Params) SetRewardTokenID(id common.Bytes32) error {
	return p.Set(RewardToken, new(big.Int).SetBytes(id.Bytes()))
}

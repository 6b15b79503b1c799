// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards is the per cluster, per token reward accumulator.
//
// Credits fed for a cluster wait as pending credit until the next update,
// which takes the commission and spreads the remainder over the tokens
// delegated to the cluster in proportion to their weighted stake.
package rewards

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin/clusters"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/common"
)

var (
	slotPools          = common.BytesToBytes32([]byte("reward-pools"))
	slotPositions      = common.BytesToBytes32([]byte("reward-positions"))
	slotCredits        = common.BytesToBytes32([]byte("reward-credits"))
	slotWeightedStakes = common.BytesToBytes32([]byte("weighted-stakes"))
	slotCommissions    = common.BytesToBytes32([]byte("commissions-paid"))
	slotForfeited      = common.BytesToBytes32([]byte("rewards-forfeited"))
)

type Service struct {
	pools       *solidity.Mapping[poolKey, *Pool]
	positions   *solidity.Mapping[positionKey, *Position]
	credits     *solidity.Mapping[common.Address, *big.Int]
	weighted    *solidity.Mapping[common.Address, *big.Int]
	commissions *solidity.Mapping[common.Address, *big.Int]
	forfeited   *solidity.Uint256

	tokens   Tokens
	clusters Clusters
}

func New(sctx *solidity.Context, tokens Tokens, clusters Clusters) *Service {
	return &Service{
		pools:       solidity.NewMapping[poolKey, *Pool](sctx, slotPools),
		positions:   solidity.NewMapping[positionKey, *Position](sctx, slotPositions),
		credits:     solidity.NewMapping[common.Address, *big.Int](sctx, slotCredits),
		weighted:    solidity.NewMapping[common.Address, *big.Int](sctx, slotWeightedStakes),
		commissions: solidity.NewMapping[common.Address, *big.Int](sctx, slotCommissions),
		forfeited:   solidity.NewUint256(sctx, slotForfeited),
		tokens:      tokens,
		clusters:    clusters,
	}
}

//
// Getters
//

// Pool returns the aggregate of token delegated to cluster.
func (s *Service) Pool(cluster common.Address, token common.Bytes32) (*Pool, error) {
	p, err := s.pools.Get(poolKey{cluster, token})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward pool")
	}
	if p == nil {
		return newPool(), nil
	}
	return p, nil
}

func (s *Service) Position(owner, cluster common.Address, token common.Bytes32) (*Position, error) {
	p, err := s.positions.Get(positionKey{owner, cluster, token})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward position")
	}
	if p == nil {
		return newPosition(), nil
	}
	return p, nil
}

// Pending returns the reward owner has earned on token at cluster up to the last update.
func (s *Service) Pending(owner, cluster common.Address, token common.Bytes32) (*big.Int, error) {
	pool, err := s.Pool(cluster, token)
	if err != nil {
		return nil, err
	}
	pos, err := s.Position(owner, cluster, token)
	if err != nil {
		return nil, err
	}
	return pos.Pending(pool.AccRewardPerShare), nil
}

// PendingCredit returns the credit waiting for the next update of cluster.
func (s *Service) PendingCredit(cluster common.Address) (*big.Int, error) {
	return s.getBig(s.credits, cluster, "failed to get pending credit")
}

// LastWeightedStake returns the weighted stake cached at the last aggregate change.
func (s *Service) LastWeightedStake(cluster common.Address) (*big.Int, error) {
	return s.getBig(s.weighted, cluster, "failed to get weighted stake")
}

// CommissionPaid returns the commission cluster has taken so far.
func (s *Service) CommissionPaid(cluster common.Address) (*big.Int, error) {
	return s.getBig(s.commissions, cluster, "failed to get commission paid")
}

// Forfeited returns the credit consumed while nothing was delegated.
func (s *Service) Forfeited() (*big.Int, error) {
	return s.forfeited.Get()
}

// WeightedStake sums TotalDelegation * RewardFactor over every registered token.
func (s *Service) WeightedStake(cluster common.Address) (*big.Int, error) {
	ids, err := s.tokens.List()
	if err != nil {
		return nil, err
	}
	sum := new(big.Int)
	for _, id := range ids {
		pool, err := s.Pool(cluster, id)
		if err != nil {
			return nil, err
		}
		if pool.TotalDelegation.Sign() == 0 {
			continue
		}
		factor, err := s.tokens.RewardFactor(id)
		if err != nil {
			return nil, err
		}
		sum.Add(sum, new(big.Int).Mul(pool.TotalDelegation, factor))
	}
	return sum, nil
}

//
// Setters
//

// Credit adds amount to the pending credit of cluster.
func (s *Service) Credit(cluster common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	credit, err := s.PendingCredit(cluster)
	if err != nil {
		return err
	}
	if err := s.credits.Upsert(cluster, credit.Add(credit, amount)); err != nil {
		return errors.Wrap(err, "failed to set pending credit")
	}
	return nil
}

// Update consumes the pending credit of cluster. It returns nil when there is none.
func (s *Service) Update(cluster common.Address) (*Update, error) {
	credit, err := s.PendingCredit(cluster)
	if err != nil {
		return nil, err
	}
	if credit.Sign() == 0 {
		return nil, nil
	}
	s.credits.Delete(cluster)

	weighted, err := s.WeightedStake(cluster)
	if err != nil {
		return nil, err
	}
	upd := &Update{
		Cluster:       cluster,
		Reward:        credit,
		Commission:    new(big.Int),
		Forfeited:     new(big.Int),
		WeightedStake: weighted,
	}
	if weighted.Sign() == 0 {
		upd.Forfeited = credit
		if err := s.forfeited.Add(credit); err != nil {
			return nil, errors.Wrap(err, "failed to record forfeited reward")
		}
		return upd, nil
	}

	valid, err := s.clusters.IsValid(cluster)
	if err != nil {
		return nil, err
	}
	if valid {
		if err := s.takeCommission(upd); err != nil {
			return nil, err
		}
	}

	share := new(big.Int).Sub(credit, upd.Commission)
	ids, err := s.tokens.List()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		pool, err := s.Pool(cluster, id)
		if err != nil {
			return nil, err
		}
		if pool.TotalDelegation.Sign() == 0 {
			continue
		}
		factor, err := s.tokens.RewardFactor(id)
		if err != nil {
			return nil, err
		}
		if factor.Sign() == 0 {
			continue
		}
		inc := new(big.Int).Mul(share, factor)
		inc.Mul(inc, Precision)
		inc.Quo(inc, weighted)
		pool.AccRewardPerShare = new(big.Int).Add(pool.AccRewardPerShare, inc)
		if _, err := solidity.ToUint256(pool.AccRewardPerShare); err != nil {
			return nil, errors.Wrap(err, "accumulated reward per share")
		}
		if err := s.pools.Upsert(poolKey{cluster, id}, pool); err != nil {
			return nil, errors.Wrap(err, "failed to set reward pool")
		}
	}
	if err := s.weighted.Upsert(cluster, weighted); err != nil {
		return nil, errors.Wrap(err, "failed to set weighted stake")
	}
	return upd, nil
}

func (s *Service) takeCommission(upd *Update) error {
	commission, err := s.clusters.Commission(upd.Cluster)
	if err != nil {
		return err
	}
	if commission > clusters.MaxCommission {
		commission = clusters.MaxCommission
	}
	to, err := s.clusters.RewardAddress(upd.Cluster)
	if err != nil {
		return err
	}
	amount := new(big.Int).Mul(upd.Reward, new(big.Int).SetUint64(commission))
	amount.Quo(amount, big.NewInt(100))
	upd.Commission = amount
	upd.CommissionTo = to
	if amount.Sign() == 0 {
		return nil
	}

	paid, err := s.CommissionPaid(upd.Cluster)
	if err != nil {
		return err
	}
	if err := s.commissions.Upsert(upd.Cluster, paid.Add(paid, amount)); err != nil {
		return errors.Wrap(err, "failed to record commission")
	}
	return nil
}

// Harvest resets the debt of owner's positions at cluster to the current
// accumulator and returns the reward released. An empty filter means every
// registered token.
func (s *Service) Harvest(owner, cluster common.Address, filter []common.Bytes32) (*big.Int, error) {
	ids := filter
	if len(ids) == 0 {
		var err error
		if ids, err = s.tokens.List(); err != nil {
			return nil, err
		}
	}
	total := new(big.Int)
	for _, id := range ids {
		key := positionKey{owner, cluster, id}
		pos, err := s.positions.Get(key)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get reward position")
		}
		if pos == nil {
			continue
		}
		pool, err := s.Pool(cluster, id)
		if err != nil {
			return nil, err
		}
		if pos.RewardDebt.Cmp(pool.AccRewardPerShare) == 0 {
			continue
		}
		total.Add(total, pos.Pending(pool.AccRewardPerShare))
		pos.RewardDebt = new(big.Int).Set(pool.AccRewardPerShare)
		if err := s.positions.Update(key, pos); err != nil {
			return nil, errors.Wrap(err, "failed to update reward position")
		}
	}
	return total, nil
}

// Increase adds amount of token to owner's delegation at cluster.
// The caller must Update and Harvest first, the debt restarts from the current accumulator.
func (s *Service) Increase(owner, cluster common.Address, token common.Bytes32, amount *big.Int) error {
	return s.change(owner, cluster, token, amount)
}

// Decrease removes amount of token from owner's delegation at cluster.
// The caller must Update and Harvest first, the debt restarts from the current accumulator.
func (s *Service) Decrease(owner, cluster common.Address, token common.Bytes32, amount *big.Int) error {
	return s.change(owner, cluster, token, new(big.Int).Neg(amount))
}

func (s *Service) change(owner, cluster common.Address, token common.Bytes32, delta *big.Int) error {
	if delta.Sign() == 0 {
		return nil
	}
	pool, err := s.Pool(cluster, token)
	if err != nil {
		return err
	}
	key := positionKey{owner, cluster, token}
	pos, err := s.Position(owner, cluster, token)
	if err != nil {
		return err
	}

	amount := new(big.Int).Add(pos.Amount, delta)
	total := new(big.Int).Add(pool.TotalDelegation, delta)
	if amount.Sign() < 0 || total.Sign() < 0 {
		return errors.Errorf("delegation underflow: owner %v cluster %v token %v", owner, cluster, token)
	}

	if amount.Sign() == 0 {
		s.positions.Delete(key)
	} else {
		pos.Amount = amount
		pos.RewardDebt = new(big.Int).Set(pool.AccRewardPerShare)
		if err := s.positions.Upsert(key, pos); err != nil {
			return errors.Wrap(err, "failed to set reward position")
		}
	}

	pool.TotalDelegation = total
	if err := s.pools.Upsert(poolKey{cluster, token}, pool); err != nil {
		return errors.Wrap(err, "failed to set reward pool")
	}

	weighted, err := s.WeightedStake(cluster)
	if err != nil {
		return err
	}
	if err := s.weighted.Upsert(cluster, weighted); err != nil {
		return errors.Wrap(err, "failed to set weighted stake")
	}
	return nil
}

func (s *Service) getBig(m *solidity.Mapping[common.Address, *big.Int], key common.Address, msg string) (*big.Int, error) {
	v, err := m.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, msg)
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

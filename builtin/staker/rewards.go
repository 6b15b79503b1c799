// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/rewards"
	"github.com/marlinprotocol/contracts-sub002/common"
)

//
// Getters - no state change
//

// PendingReward returns what owner can withdraw for token at cluster as of the last update.
func (s *Staker) PendingReward(owner, cluster common.Address, token common.Bytes32) (*big.Int, error) {
	return s.rewardService.Pending(owner, cluster, token)
}

// GetPool returns the aggregate of token delegated to cluster.
func (s *Staker) GetPool(cluster common.Address, token common.Bytes32) (*rewards.Pool, error) {
	return s.rewardService.Pool(cluster, token)
}

// GetPosition returns the delegation of owner in token at cluster.
func (s *Staker) GetPosition(owner, cluster common.Address, token common.Bytes32) (*rewards.Position, error) {
	return s.rewardService.Position(owner, cluster, token)
}

// WeightedStake returns the live weighted stake of cluster.
func (s *Staker) WeightedStake(cluster common.Address) (*big.Int, error) {
	return s.rewardService.WeightedStake(cluster)
}

// LastWeightedStake returns the weighted stake cached at the last aggregate change of cluster.
func (s *Staker) LastWeightedStake(cluster common.Address) (*big.Int, error) {
	return s.rewardService.LastWeightedStake(cluster)
}

// PendingCredit returns the fed reward not yet distributed at cluster.
func (s *Staker) PendingCredit(cluster common.Address) (*big.Int, error) {
	return s.rewardService.PendingCredit(cluster)
}

func (s *Staker) CommissionPaid(cluster common.Address) (*big.Int, error) {
	return s.rewardService.CommissionPaid(cluster)
}

// Forfeited returns the rewards fed to clusters nobody was delegated to.
func (s *Staker) Forfeited() (*big.Int, error) {
	return s.rewardService.Forfeited()
}

//
// Setters - state change
//

// UpdateRewards distributes the pending credit of cluster. Anyone may call it.
func (s *Staker) UpdateRewards(cluster common.Address) error {
	err := s.run(func() error {
		return s.updateRewards(cluster)
	})
	if err != nil {
		logger.Info("update rewards failed", "cluster", cluster, "error", err)
		return err
	}
	return nil
}

// WithdrawRewards pays caller its pending reward at cluster, restricted to the given
// tokens when any.
func (s *Staker) WithdrawRewards(caller, cluster common.Address, ids ...common.Bytes32) (*big.Int, error) {
	logger.Debug("withdrawing rewards", "owner", caller, "cluster", cluster)

	var amount *big.Int
	err := s.run(func() error {
		for _, id := range ids {
			if _, err := s.tokens.RewardFactor(id); err != nil {
				return err
			}
		}
		var err error
		amount, err = s.settle(caller, cluster, ids)
		return err
	})
	if err != nil {
		logger.Info("withdraw rewards failed", "owner", caller, "cluster", cluster, "error", err)
		return nil, err
	}

	logger.Info("withdrew rewards", "owner", caller, "cluster", cluster, "amount", amount)
	return amount, nil
}

// WithdrawRewardsBatch withdraws caller's rewards from several clusters at once.
func (s *Staker) WithdrawRewardsBatch(caller common.Address, clusters []common.Address) (*big.Int, error) {
	total := new(big.Int)
	err := s.run(func() error {
		if len(clusters) == 0 {
			return reverts.New(reverts.InvalidInput, "no cluster given")
		}
		for _, cluster := range clusters {
			amount, err := s.settle(caller, cluster, nil)
			if err != nil {
				return err
			}
			total.Add(total, amount)
		}
		return nil
	})
	if err != nil {
		logger.Info("withdraw rewards batch failed", "owner", caller, "error", err)
		return nil, err
	}

	logger.Info("withdrew rewards", "owner", caller, "clusters", len(clusters), "amount", total)
	return total, nil
}

// settle distributes the pending credit of cluster and pays owner what it earned there.
func (s *Staker) settle(owner, cluster common.Address, ids []common.Bytes32) (*big.Int, error) {
	if err := s.updateRewards(cluster); err != nil {
		return nil, err
	}
	amount, err := s.rewardService.Harvest(owner, cluster, ids)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return amount, nil
	}
	if err := s.payReward(owner, amount); err != nil {
		return nil, err
	}
	s.emit(newEvent(EventRewardWithdrawn).withAccount(owner).withCluster(cluster).set("amount", amount))
	return amount, nil
}

func (s *Staker) updateRewards(cluster common.Address) error {
	upd, err := s.rewardService.Update(cluster)
	if err != nil || upd == nil {
		return err
	}
	s.emit(newEvent(EventRewardsUpdated).withCluster(cluster).
		set("reward", upd.Reward).set("weightedStake", upd.WeightedStake))

	if upd.Forfeited.Sign() > 0 {
		s.emit(newEvent(EventRewardForfeited).withCluster(cluster).set("amount", upd.Forfeited))
	}
	if upd.Commission.Sign() > 0 {
		if err := s.payReward(upd.CommissionTo, upd.Commission); err != nil {
			return err
		}
		s.emit(newEvent(EventCommissionPaid).withCluster(cluster).withAccount(upd.CommissionTo).
			set("amount", upd.Commission))
	}
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/marlinprotocol/contracts-sub002/builtin/acl"
	"github.com/marlinprotocol/contracts-sub002/builtin/params"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/oracle"
	"github.com/marlinprotocol/contracts-sub002/common"
)

//
// Getters - no state change
//

// GetNetwork returns nil for an unknown network.
func (s *Staker) GetNetwork(id common.Bytes32) (*oracle.Network, error) {
	return s.oracleService.Network(id)
}

func (s *Staker) Networks() ([]common.Bytes32, error) {
	return s.oracleService.Networks()
}

func (s *Staker) TotalNetworkWeight() (*big.Int, error) {
	return s.oracleService.TotalWeight()
}

// EpochDistributed returns the rewards already fed for epoch across every network.
func (s *Staker) EpochDistributed(epoch uint64) (*big.Int, error) {
	return s.oracleService.Distributed(epoch)
}

//
// Setters - state change
//

// Feed credits each cluster with its share of the epoch rewards of a network.
// payouts are fractions of the network share scaled by 1e18.
func (s *Staker) Feed(
	caller common.Address,
	network common.Bytes32,
	clusters []common.Address,
	payouts []*big.Int,
	epoch uint64,
	now uint64,
) (*big.Int, error) {
	logger.Debug("feeding epoch", "network", network, "epoch", epoch, "clusters", len(clusters))

	total := new(big.Int)
	err := s.run(func() error {
		if err := s.roles.Check(acl.Feeder, caller); err != nil {
			return err
		}
		cfg, err := s.feedConfig()
		if err != nil {
			return err
		}
		credits, err := s.oracleService.Feed(network, clusters, payouts, epoch, now, cfg)
		if err != nil {
			return err
		}
		for i, cluster := range clusters {
			if err := s.rewardService.Credit(cluster, credits[i]); err != nil {
				return err
			}
			total.Add(total, credits[i])
		}
		s.emit(newEvent(EventEpochFed).withAccount(caller).
			set("network", network).set("epoch", epoch).set("clusters", uint64(len(clusters))).set("total", total))
		return nil
	})
	if err != nil {
		logger.Info("feed failed", "network", network, "epoch", epoch, "error", err)
		return nil, err
	}

	logger.Info("fed epoch", "network", network, "epoch", epoch, "total", total)
	return total, nil
}

func (s *Staker) feedConfig() (*oracle.Config, error) {
	gap, err := s.params.Uint64(params.MinEpochGap)
	if err != nil {
		return nil, err
	}
	allowGaps, err := s.params.Bool(params.AllowEpochGaps)
	if err != nil {
		return nil, err
	}
	budget, err := s.params.Get(params.TotalRewardsPerEpoch)
	if err != nil {
		return nil, err
	}
	return &oracle.Config{
		MinEpochGap:          gap,
		AllowEpochGaps:       allowGaps,
		TotalRewardsPerEpoch: budget,
	}, nil
}

// AddNetwork activates a reward network. Admin only.
func (s *Staker) AddNetwork(caller common.Address, id common.Bytes32, weight *big.Int) error {
	return s.admin("add network", caller, func() error {
		return s.oracleService.AddNetwork(id, weight)
	}, "network", id, "weight", weight)
}

// UpdateNetworkWeight changes the share of a network in the epoch rewards. Admin only.
func (s *Staker) UpdateNetworkWeight(caller common.Address, id common.Bytes32, weight *big.Int) error {
	return s.admin("update network weight", caller, func() error {
		return s.oracleService.UpdateNetworkWeight(id, weight)
	}, "network", id, "weight", weight)
}

// RemoveNetwork stops a network from being fed. Admin only.
func (s *Staker) RemoveNetwork(caller common.Address, id common.Bytes32) error {
	return s.admin("remove network", caller, func() error {
		return s.oracleService.RemoveNetwork(id)
	}, "network", id)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package oracle converts per network epoch payouts into cluster reward credits.
package oracle

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/common"
)

// PayoutPrecision is the payout value standing for the whole network share.
var PayoutPrecision = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

var (
	slotNetworks    = common.BytesToBytes32([]byte("networks"))
	slotNetworkIDs  = common.BytesToBytes32([]byte("network-ids"))
	slotTotalWeight = common.BytesToBytes32([]byte("total-weight"))
	slotDistributed = common.BytesToBytes32([]byte("epoch-distributed"))
)

// Network is a reward network. A zero weight means the network was removed.
type Network struct {
	Weight             *big.Int
	LastEpoch          uint64
	LastEpochTimestamp uint64
}

// Config is the set of parameters a feed is checked against.
type Config struct {
	MinEpochGap          uint64
	AllowEpochGaps       bool
	TotalRewardsPerEpoch *big.Int
}

type epochKey uint64

func (k epochKey) Bytes() []byte {
	return common.Uint64ToBytes32(uint64(k)).Bytes()
}

type Service struct {
	networks    *solidity.Mapping[common.Bytes32, *Network]
	ids         *solidity.Raw[[]common.Bytes32]
	totalWeight *solidity.Uint256
	distributed *solidity.Mapping[epochKey, *big.Int]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		networks:    solidity.NewMapping[common.Bytes32, *Network](sctx, slotNetworks),
		ids:         solidity.NewRaw[[]common.Bytes32](sctx, slotNetworkIDs),
		totalWeight: solidity.NewUint256(sctx, slotTotalWeight),
		distributed: solidity.NewMapping[epochKey, *big.Int](sctx, slotDistributed),
	}
}

// Network returns nil for a network never added.
func (s *Service) Network(id common.Bytes32) (*Network, error) {
	n, err := s.networks.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get network")
	}
	return n, nil
}

// Networks lists every network ever added, removed ones included.
func (s *Service) Networks() ([]common.Bytes32, error) {
	ids, err := s.ids.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list networks")
	}
	return ids, nil
}

func (s *Service) TotalWeight() (*big.Int, error) {
	return s.totalWeight.Get()
}

// Distributed returns the rewards fed for epoch across every network.
func (s *Service) Distributed(epoch uint64) (*big.Int, error) {
	d, err := s.distributed.Get(epochKey(epoch))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get epoch distribution")
	}
	if d == nil {
		return new(big.Int), nil
	}
	return d, nil
}

func (s *Service) activeNetwork(id common.Bytes32) (*Network, error) {
	n, err := s.Network(id)
	if err != nil {
		return nil, err
	}
	if n == nil || n.Weight.Sign() == 0 {
		return nil, reverts.Newf(reverts.UnknownNetwork, "network %v not active", id)
	}
	return n, nil
}

// AddNetwork activates a network with a non zero weight. A removed network can be added back
// and keeps its epoch history.
func (s *Service) AddNetwork(id common.Bytes32, weight *big.Int) error {
	if weight == nil || weight.Sign() <= 0 {
		return reverts.New(reverts.InvalidInput, "network weight must be positive")
	}
	n, err := s.Network(id)
	if err != nil {
		return err
	}
	if n != nil && n.Weight.Sign() != 0 {
		return reverts.Newf(reverts.InvalidInput, "network %v already added", id)
	}
	if n == nil {
		n = &Network{}
		ids, err := s.Networks()
		if err != nil {
			return err
		}
		if err := s.ids.Upsert(append(ids, id)); err != nil {
			return errors.Wrap(err, "failed to list network")
		}
	}
	n.Weight = new(big.Int).Set(weight)
	if err := s.networks.Upsert(id, n); err != nil {
		return errors.Wrap(err, "failed to set network")
	}
	return s.totalWeight.Add(weight)
}

func (s *Service) UpdateNetworkWeight(id common.Bytes32, weight *big.Int) error {
	if weight == nil || weight.Sign() <= 0 {
		return reverts.New(reverts.InvalidInput, "network weight must be positive")
	}
	n, err := s.activeNetwork(id)
	if err != nil {
		return err
	}
	if err := s.totalWeight.Sub(n.Weight); err != nil {
		return err
	}
	if err := s.totalWeight.Add(weight); err != nil {
		return err
	}
	n.Weight = new(big.Int).Set(weight)
	return s.networks.Update(id, n)
}

// RemoveNetwork zeroes the weight of a network so it can no longer be fed.
func (s *Service) RemoveNetwork(id common.Bytes32) error {
	n, err := s.activeNetwork(id)
	if err != nil {
		return err
	}
	if err := s.totalWeight.Sub(n.Weight); err != nil {
		return err
	}
	n.Weight = new(big.Int)
	return s.networks.Update(id, n)
}

// Feed checks an epoch report of a network and returns the credit of each cluster:
// TotalRewardsPerEpoch * weight * payout / totalWeight / PayoutPrecision.
func (s *Service) Feed(
	id common.Bytes32,
	clusters []common.Address,
	payouts []*big.Int,
	epoch uint64,
	now uint64,
	cfg *Config,
) ([]*big.Int, error) {
	if len(clusters) != len(payouts) {
		return nil, reverts.New(reverts.InvalidInput, "clusters and payouts length mismatch")
	}
	for i, p := range payouts {
		if p == nil || p.Sign() < 0 {
			return nil, reverts.New(reverts.InvalidInput, "negative payout")
		}
		if clusters[i].IsZero() {
			return nil, reverts.New(reverts.InvalidInput, "zero cluster address")
		}
	}

	n, err := s.activeNetwork(id)
	if err != nil {
		return nil, err
	}
	// the gap applies from the second feed of a network on
	if next := nextFeedAt(n.LastEpochTimestamp, cfg.MinEpochGap); n.LastEpoch > 0 && now < next {
		return nil, reverts.Newf(reverts.EpochTooSoon, "next feed of network %v allowed at %d", id, next)
	}
	if !nextEpoch(n.LastEpoch, epoch, cfg.AllowEpochGaps) {
		return nil, reverts.Newf(reverts.EpochOutOfOrder, "epoch %d does not follow %d", epoch, n.LastEpoch)
	}

	totalWeight, err := s.TotalWeight()
	if err != nil {
		return nil, err
	}
	credits := make([]*big.Int, len(payouts))
	sum := new(big.Int)
	for i, p := range payouts {
		c := new(big.Int).Mul(cfg.TotalRewardsPerEpoch, n.Weight)
		c.Mul(c, p)
		c.Quo(c, totalWeight)
		c.Quo(c, PayoutPrecision)
		credits[i] = c
		sum.Add(sum, c)
	}

	distributed, err := s.Distributed(epoch)
	if err != nil {
		return nil, err
	}
	distributed.Add(distributed, sum)
	if distributed.Cmp(cfg.TotalRewardsPerEpoch) > 0 {
		return nil, reverts.Newf(reverts.RewardExceedsEpochBudget, "epoch %d rewards %v exceed budget %v", epoch, distributed, cfg.TotalRewardsPerEpoch)
	}
	if err := s.distributed.Upsert(epochKey(epoch), distributed); err != nil {
		return nil, errors.Wrap(err, "failed to set epoch distribution")
	}

	n.LastEpoch = epoch
	n.LastEpochTimestamp = now
	if err := s.networks.Update(id, n); err != nil {
		return nil, errors.Wrap(err, "failed to update network")
	}
	return credits, nil
}

func nextEpoch(last, epoch uint64, allowGaps bool) bool {
	if allowGaps {
		return epoch > last
	}
	return epoch == last+1
}

// nextFeedAt saturates so that a huge gap blocks feeding instead of wrapping around.
func nextFeedAt(last, gap uint64) uint64 {
	if next := last + gap; next >= last {
		return next
	}
	return math.MaxUint64
}

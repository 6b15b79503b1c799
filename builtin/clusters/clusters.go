// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clusters is the registry of node operators that receive delegations.
// Registered clusters are kept in a doubly linked list in registration order.
package clusters

import (
	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/log"
)

var (
	slotEntries = common.BytesToBytes32([]byte("entries"))
	slotHead    = common.BytesToBytes32([]byte("head"))
	slotTail    = common.BytesToBytes32([]byte("tail"))

	logger = log.WithContext("pkg", "clusters")
)

type Registry struct {
	entries *solidity.Mapping[common.Address, *entry]
	head    *solidity.Raw[*common.Address]
	tail    *solidity.Raw[*common.Address]
}

func New(sctx *solidity.Context) *Registry {
	return &Registry{
		entries: solidity.NewMapping[common.Address, *entry](sctx, slotEntries),
		head:    solidity.NewRaw[*common.Address](sctx, slotHead),
		tail:    solidity.NewRaw[*common.Address](sctx, slotTail),
	}
}

func (r *Registry) getEntry(cluster common.Address) (*entry, error) {
	e, err := r.entries.Get(cluster)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get cluster")
	}
	if e == nil {
		return &entry{}, nil
	}
	return e, nil
}

func (r *Registry) setEntry(cluster common.Address, e *entry) error {
	if err := r.entries.Upsert(cluster, e); err != nil {
		return errors.Wrap(err, "failed to set cluster")
	}
	return nil
}

// Register lists cluster with the given commission percent and reward address.
func (r *Registry) Register(cluster common.Address, commission uint64, rewardAddress common.Address) error {
	if cluster.IsZero() {
		return reverts.New(reverts.InvalidInput, "zero cluster address")
	}
	if commission > MaxCommission {
		return reverts.Newf(reverts.InvalidInput, "commission %d above %d", commission, MaxCommission)
	}
	e, err := r.getEntry(cluster)
	if err != nil {
		return err
	}
	if e.Active {
		return reverts.Newf(reverts.InvalidInput, "cluster %v already registered", cluster)
	}

	e.Commission = commission
	e.RewardAddress = rewardAddress
	e.Active = true

	tail, err := r.tail.Get()
	if err != nil {
		return err
	}
	e.Prev = tail

	if err := r.tail.Upsert(&cluster); err != nil {
		return err
	}
	if tail == nil {
		if err := r.head.Upsert(&cluster); err != nil {
			return err
		}
	} else {
		tailEntry, err := r.getEntry(*tail)
		if err != nil {
			return err
		}
		tailEntry.Next = &cluster
		if err := r.setEntry(*tail, tailEntry); err != nil {
			return err
		}
	}

	if err := r.setEntry(cluster, e); err != nil {
		return err
	}
	logger.Info("cluster registered", "cluster", cluster, "commission", commission, "rewardAddress", rewardAddress)
	return nil
}

// Unregister removes cluster from the list and marks it invalid.
// Its commission and reward address are kept.
func (r *Registry) Unregister(cluster common.Address) error {
	e, err := r.activeEntry(cluster)
	if err != nil {
		return err
	}

	if e.Prev == nil {
		if err := r.head.Upsert(e.Next); err != nil {
			return err
		}
	} else {
		prev, err := r.getEntry(*e.Prev)
		if err != nil {
			return err
		}
		prev.Next = e.Next
		if err := r.setEntry(*e.Prev, prev); err != nil {
			return err
		}
	}

	if e.Next == nil {
		if err := r.tail.Upsert(e.Prev); err != nil {
			return err
		}
	} else {
		next, err := r.getEntry(*e.Next)
		if err != nil {
			return err
		}
		next.Prev = e.Prev
		if err := r.setEntry(*e.Next, next); err != nil {
			return err
		}
	}

	e.Next = nil
	e.Prev = nil
	e.Active = false
	if err := r.setEntry(cluster, e); err != nil {
		return err
	}
	logger.Info("cluster unregistered", "cluster", cluster)
	return nil
}

func (r *Registry) activeEntry(cluster common.Address) (*entry, error) {
	e, err := r.getEntry(cluster)
	if err != nil {
		return nil, err
	}
	if !e.Active {
		return nil, reverts.Newf(reverts.NotFound, "cluster %v not registered", cluster)
	}
	return e, nil
}

func (r *Registry) UpdateCommission(cluster common.Address, commission uint64) error {
	if commission > MaxCommission {
		return reverts.Newf(reverts.InvalidInput, "commission %d above %d", commission, MaxCommission)
	}
	e, err := r.activeEntry(cluster)
	if err != nil {
		return err
	}
	e.Commission = commission
	return r.setEntry(cluster, e)
}

func (r *Registry) UpdateRewardAddress(cluster common.Address, rewardAddress common.Address) error {
	e, err := r.activeEntry(cluster)
	if err != nil {
		return err
	}
	e.RewardAddress = rewardAddress
	return r.setEntry(cluster, e)
}

// IsValid reports whether cluster is registered.
func (r *Registry) IsValid(cluster common.Address) (bool, error) {
	e, err := r.getEntry(cluster)
	if err != nil {
		return false, err
	}
	return e.Active, nil
}

// Commission returns the commission percent of cluster, zero when never registered.
func (r *Registry) Commission(cluster common.Address) (uint64, error) {
	e, err := r.getEntry(cluster)
	if err != nil {
		return 0, err
	}
	return e.Commission, nil
}

// RewardAddress returns where commission of cluster is paid.
// The cluster itself is used when no address was set.
func (r *Registry) RewardAddress(cluster common.Address) (common.Address, error) {
	e, err := r.getEntry(cluster)
	if err != nil {
		return common.Address{}, err
	}
	if e.RewardAddress.IsZero() {
		return cluster, nil
	}
	return e.RewardAddress, nil
}

// Get returns nil for a cluster never registered.
func (r *Registry) Get(cluster common.Address) (*Cluster, error) {
	e, err := r.entries.Get(cluster)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get cluster")
	}
	if e == nil {
		return nil, nil
	}
	return &Cluster{
		Address:       cluster,
		Commission:    e.Commission,
		RewardAddress: e.RewardAddress,
		Active:        e.Active,
	}, nil
}

// All returns the registered clusters in registration order.
func (r *Registry) All() ([]*Cluster, error) {
	ptr, err := r.head.Get()
	if err != nil {
		return nil, err
	}
	var clusters []*Cluster
	for ptr != nil {
		e, err := r.getEntry(*ptr)
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, &Cluster{
			Address:       *ptr,
			Commission:    e.Commission,
			RewardAddress: e.RewardAddress,
			Active:        e.Active,
		})
		ptr = e.Next
	}
	return clusters, nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tokens is the registry of stakeable tokens and their reward factors.
package tokens

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/log"
)

var (
	slotEntries = common.BytesToBytes32([]byte("entries"))
	slotIDs     = common.BytesToBytes32([]byte("ids"))

	logger = log.WithContext("pkg", "tokens")
)

type Registry struct {
	entries *solidity.Mapping[common.Bytes32, *entry]
	ids     *solidity.Raw[[]common.Bytes32]
	resolve Resolver
}

func New(sctx *solidity.Context, resolve Resolver) *Registry {
	return &Registry{
		entries: solidity.NewMapping[common.Bytes32, *entry](sctx, slotEntries),
		ids:     solidity.NewRaw[[]common.Bytes32](sctx, slotIDs),
		resolve: resolve,
	}
}

func (r *Registry) getEntry(id common.Bytes32) (*entry, error) {
	e, err := r.entries.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get token")
	}
	return e, nil
}

func (r *Registry) mustEntry(id common.Bytes32) (*entry, error) {
	e, err := r.getEntry(id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, reverts.Newf(reverts.NotFound, "token %v not registered", id)
	}
	return e, nil
}

// Add registers the token at handle as active and returns its id.
func (r *Registry) Add(handle common.Address, rewardFactor *big.Int) (common.Bytes32, error) {
	if handle.IsZero() {
		return common.Bytes32{}, reverts.New(reverts.InvalidInput, "zero token handle")
	}
	if rewardFactor == nil || rewardFactor.Sign() < 0 {
		return common.Bytes32{}, reverts.New(reverts.InvalidInput, "invalid reward factor")
	}
	id := ID(handle)
	existing, err := r.getEntry(id)
	if err != nil {
		return common.Bytes32{}, err
	}
	if existing != nil {
		return common.Bytes32{}, reverts.Newf(reverts.InvalidInput, "token %v already registered", id)
	}

	if err := r.entries.Insert(id, &entry{
		Handle:       handle,
		Delegatable:  true,
		RewardFactor: new(big.Int).Set(rewardFactor),
	}); err != nil {
		return common.Bytes32{}, errors.Wrap(err, "failed to add token")
	}
	ids, err := r.List()
	if err != nil {
		return common.Bytes32{}, err
	}
	if err := r.ids.Upsert(append(ids, id)); err != nil {
		return common.Bytes32{}, errors.Wrap(err, "failed to list token")
	}
	logger.Info("token added", "id", id, "handle", handle, "rewardFactor", rewardFactor)
	return id, nil
}

// SetRewardFactor changes the weight of one unit of the token in weighted stake.
func (r *Registry) SetRewardFactor(id common.Bytes32, rewardFactor *big.Int) error {
	if rewardFactor == nil || rewardFactor.Sign() < 0 {
		return reverts.New(reverts.InvalidInput, "invalid reward factor")
	}
	e, err := r.mustEntry(id)
	if err != nil {
		return err
	}
	e.RewardFactor = new(big.Int).Set(rewardFactor)
	return r.entries.Update(id, e)
}

// Enable allows new stake in the token.
func (r *Registry) Enable(id common.Bytes32) error {
	return r.setDelegatable(id, true)
}

// Disable rejects new stake in the token. Existing stake keeps earning.
func (r *Registry) Disable(id common.Bytes32) error {
	return r.setDelegatable(id, false)
}

func (r *Registry) setDelegatable(id common.Bytes32, delegatable bool) error {
	e, err := r.mustEntry(id)
	if err != nil {
		return err
	}
	e.Delegatable = delegatable
	return r.entries.Update(id, e)
}

func (r *Registry) Status(id common.Bytes32) (Status, error) {
	e, err := r.getEntry(id)
	if err != nil {
		return Unknown, err
	}
	switch {
	case e == nil:
		return Unknown, nil
	case e.Delegatable:
		return Active, nil
	default:
		return Inactive, nil
	}
}

// RewardFactor returns the factor of a registered token.
func (r *Registry) RewardFactor(id common.Bytes32) (*big.Int, error) {
	e, err := r.mustEntry(id)
	if err != nil {
		return nil, err
	}
	return e.RewardFactor, nil
}

// Lookup returns nil for an unknown id.
func (r *Registry) Lookup(id common.Bytes32) (*Descriptor, error) {
	e, err := r.getEntry(id)
	if err != nil || e == nil {
		return nil, err
	}
	return &Descriptor{
		ID:           id,
		Handle:       e.Handle,
		Delegatable:  e.Delegatable,
		RewardFactor: e.RewardFactor,
	}, nil
}

// List returns every registered id in registration order.
func (r *Registry) List() ([]common.Bytes32, error) {
	ids, err := r.ids.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tokens")
	}
	return ids, nil
}

// Handle resolves the token handle of a registered id.
func (r *Registry) Handle(id common.Bytes32) (Handle, error) {
	e, err := r.mustEntry(id)
	if err != nil {
		return nil, err
	}
	return r.resolve(e.Handle), nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stash

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/common"
)

var (
	slotStashes        = common.BytesToBytes32([]byte("stashes"))
	slotStashesCounter = common.BytesToBytes32([]byte("stashes-counter"))

	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

type Service struct {
	stashes   *solidity.Mapping[common.Bytes32, *Stash]
	idCounter *solidity.Raw[*big.Int]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		stashes:   solidity.NewMapping[common.Bytes32, *Stash](sctx, slotStashes),
		idCounter: solidity.NewRaw[*big.Int](sctx, slotStashesCounter),
	}
}

// Get returns nil when the stash does not exist.
func (s *Service) Get(id common.Bytes32) (*Stash, error) {
	st, err := s.stashes.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stash")
	}
	return st, nil
}

// Add stores a new stash and returns its id.
func (s *Service) Add(st *Stash) (common.Bytes32, error) {
	id, err := s.newStashID()
	if err != nil {
		return common.Bytes32{}, err
	}
	if err := s.stashes.Insert(id, st); err != nil {
		return common.Bytes32{}, errors.Wrap(err, "failed to insert stash")
	}
	return id, nil
}

func (s *Service) Update(id common.Bytes32, st *Stash) error {
	if err := s.stashes.Update(id, st); err != nil {
		return errors.Wrap(err, "failed to update stash")
	}
	return nil
}

func (s *Service) Delete(id common.Bytes32) {
	s.stashes.Delete(id)
}

// Count returns the number of ids handed out so far.
func (s *Service) Count() (*big.Int, error) {
	n, err := s.idCounter.Get()
	if err != nil {
		return nil, err
	}
	if n == nil {
		return new(big.Int), nil
	}
	return n, nil
}

func (s *Service) newStashID() (common.Bytes32, error) {
	id, err := s.idCounter.Get()
	if err != nil {
		return common.Bytes32{}, err
	}
	// first seen will be a nil pointer
	if id == nil {
		id = big.NewInt(0)
	}

	id.Add(id, big.NewInt(1))
	if id.Cmp(maxUint256) >= 0 {
		return common.Bytes32{}, errors.New("stash ID counter overflow: maximum stashes reached")
	}
	if err := s.idCounter.Upsert(id); err != nil {
		return common.Bytes32{}, err
	}
	return ID(id), nil
}

// ID derives the stash id from the counter value it was created at.
func ID(n *big.Int) common.Bytes32 {
	return common.Keccak256(common.BytesToBytes32(n.Bytes()).Bytes())
}

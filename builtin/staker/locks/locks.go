// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package locks keeps the time locks of pending stash transitions.
package locks

import (
	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/common"
)

// Selector names the kind of a lock.
type Selector common.Bytes32

var (
	Redelegation = Selector(common.Keccak256([]byte("REDELEGATION_LOCK")))
	Undelegation = Selector(common.Keccak256([]byte("UNDELEGATION_LOCK")))

	slotLocks = common.BytesToBytes32([]byte("locks"))
)

func (s Selector) String() string {
	switch s {
	case Redelegation:
		return "redelegation"
	case Undelegation:
		return "undelegation"
	}
	return common.Bytes32(s).String()
}

// Lock holds a transition until UnlockTime. Value is the cluster it refers to:
// the target of a redelegation or the prior cluster of an undelegation.
type Lock struct {
	UnlockTime uint64
	Value      common.Address
}

// Unlocked reports whether the lock has expired at now.
func (l *Lock) Unlocked(now uint64) bool {
	return now >= l.UnlockTime
}

type lockKey struct {
	selector Selector
	subject  common.Bytes32
}

func (k lockKey) Bytes() []byte {
	return append(common.Bytes32(k.selector).Bytes(), k.subject.Bytes()...)
}

type Service struct {
	locks *solidity.Mapping[lockKey, *Lock]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		locks: solidity.NewMapping[lockKey, *Lock](sctx, slotLocks),
	}
}

// Get returns nil when there is no lock.
func (s *Service) Get(sel Selector, subject common.Bytes32) (*Lock, error) {
	l, err := s.locks.Get(lockKey{sel, subject})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %v lock", sel)
	}
	return l, nil
}

// Set places or replaces a lock.
func (s *Service) Set(sel Selector, subject common.Bytes32, lock *Lock) error {
	if err := s.locks.Upsert(lockKey{sel, subject}, lock); err != nil {
		return errors.Wrapf(err, "failed to set %v lock", sel)
	}
	return nil
}

func (s *Service) Delete(sel Selector, subject common.Bytes32) {
	s.locks.Delete(lockKey{sel, subject})
}

// Clone copies the lock of from onto to, if any. It returns whether a lock was copied.
func (s *Service) Clone(sel Selector, from, to common.Bytes32) (bool, error) {
	l, err := s.Get(sel, from)
	if err != nil || l == nil {
		return false, err
	}
	return true, s.Set(sel, to, &Lock{UnlockTime: l.UnlockTime, Value: l.Value})
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/params"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/locks"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/stash"
	"github.com/marlinprotocol/contracts-sub002/builtin/tokens"
	"github.com/marlinprotocol/contracts-sub002/common"
)

//
// Getters - no state change
//

// GetStash returns nil when the stash does not exist.
func (s *Staker) GetStash(id common.Bytes32) (*stash.Stash, error) {
	return s.stashService.Get(id)
}

// GetLock returns the lock of kind sel on a stash, nil when there is none.
func (s *Staker) GetLock(sel locks.Selector, id common.Bytes32) (*locks.Lock, error) {
	return s.lockService.Get(sel, id)
}

// StashCount returns the number of stashes ever created.
func (s *Staker) StashCount() (*big.Int, error) {
	return s.stashService.Count()
}

//
// Setters - state change
//

// CreateStash opens a stash for caller and pulls the given amounts into custody.
func (s *Staker) CreateStash(caller common.Address, ids []common.Bytes32, amounts []*big.Int) (common.Bytes32, error) {
	logger.Debug("creating stash", "owner", caller, "tokens", len(ids))

	var id common.Bytes32
	err := s.run(func() error {
		if err := s.checkDeposit(ids, amounts); err != nil {
			return err
		}
		st := &stash.Stash{Owner: caller}
		for i, token := range ids {
			st.Add(token, amounts[i])
			s.pull(token, caller, amounts[i])
		}
		var err error
		if id, err = s.stashService.Add(st); err != nil {
			return err
		}
		s.emit(newEvent(EventStashCreated).withStash(id).withAccount(caller).
			set("tokens", ids).set("amounts", amounts))
		return nil
	})
	if err != nil {
		logger.Info("create stash failed", "owner", caller, "error", err)
		return common.Bytes32{}, err
	}

	logger.Info("created stash", "id", id, "owner", caller)
	return id, nil
}

// AddToStash deposits more tokens into a stash. Delegated stashes settle their rewards
// first and the new stake starts earning from the current accumulator.
func (s *Staker) AddToStash(caller common.Address, id common.Bytes32, ids []common.Bytes32, amounts []*big.Int) error {
	logger.Debug("adding to stash", "id", id, "owner", caller)

	err := s.run(func() error {
		st, err := s.ownedStash(caller, id)
		if err != nil {
			return err
		}
		if err := s.checkDeposit(ids, amounts); err != nil {
			return err
		}
		if st.IsDelegated() {
			if _, err := s.settle(caller, st.Cluster, nil); err != nil {
				return err
			}
		}
		for i, token := range ids {
			st.Add(token, amounts[i])
			if st.IsDelegated() {
				if err := s.rewardService.Increase(caller, st.Cluster, token, amounts[i]); err != nil {
					return err
				}
			}
			s.pull(token, caller, amounts[i])
		}
		if err := s.stashService.Update(id, st); err != nil {
			return err
		}
		s.emit(newEvent(EventStashDeposit).withStash(id).withAccount(caller).withCluster(st.Cluster).
			set("tokens", ids).set("amounts", amounts))
		return nil
	})
	if err != nil {
		logger.Info("add to stash failed", "id", id, "error", err)
		return err
	}

	logger.Info("added to stash", "id", id)
	return nil
}

// DelegateStash delegates an undelegated stash to cluster. While an undelegation is
// still locked the stash can only go back through CancelUndelegation.
func (s *Staker) DelegateStash(caller common.Address, id common.Bytes32, cluster common.Address, now uint64) error {
	logger.Debug("delegating stash", "id", id, "cluster", cluster)

	err := s.run(func() error {
		st, err := s.ownedStash(caller, id)
		if err != nil {
			return err
		}
		if cluster.IsZero() {
			return reverts.New(reverts.InvalidInput, "zero cluster address")
		}
		if st.IsDelegated() {
			return reverts.New(reverts.InvalidInput, "stash already delegated")
		}
		lock, err := s.lockService.Get(locks.Undelegation, id)
		if err != nil {
			return err
		}
		if lock != nil && !lock.Unlocked(now) {
			return reverts.Newf(reverts.StillLocked, "undelegation locked until %d, cancel it to delegate again", lock.UnlockTime)
		}
		if err := s.delegate(st, cluster); err != nil {
			return err
		}
		s.lockService.Delete(locks.Undelegation, id)
		if err := s.stashService.Update(id, st); err != nil {
			return err
		}
		s.emit(newEvent(EventStashDelegated).withStash(id).withAccount(caller).withCluster(cluster))
		return nil
	})
	if err != nil {
		logger.Info("delegate stash failed", "id", id, "cluster", cluster, "error", err)
		return err
	}

	logger.Info("delegated stash", "id", id, "cluster", cluster)
	return nil
}

// RequestStashRedelegation records newCluster as the target of a redelegation that can
// be executed once the redelegation wait has elapsed. A new request replaces the previous one.
func (s *Staker) RequestStashRedelegation(caller common.Address, id common.Bytes32, newCluster common.Address, now uint64) error {
	logger.Debug("requesting redelegation", "id", id, "cluster", newCluster)

	err := s.run(func() error {
		st, err := s.ownedStash(caller, id)
		if err != nil {
			return err
		}
		if !st.IsDelegated() {
			return reverts.New(reverts.InvalidInput, "stash not delegated")
		}
		if newCluster.IsZero() {
			return reverts.New(reverts.InvalidInput, "zero cluster address")
		}
		if newCluster == st.Cluster {
			return reverts.New(reverts.InvalidInput, "stash already delegated to cluster")
		}
		wait, err := s.params.Uint64(params.RedelegationWait)
		if err != nil {
			return err
		}
		unlock := saturatingAdd(now, wait)
		if err := s.lockService.Set(locks.Redelegation, id, &locks.Lock{UnlockTime: unlock, Value: newCluster}); err != nil {
			return err
		}
		s.emit(newEvent(EventRedelegationRequested).withStash(id).withAccount(caller).withCluster(newCluster).
			set("unlockTime", unlock))
		return nil
	})
	if err != nil {
		logger.Info("request redelegation failed", "id", id, "error", err)
		return err
	}

	logger.Info("requested redelegation", "id", id, "cluster", newCluster)
	return nil
}

// RedelegateStash moves a stash to the cluster of its unlocked redelegation request.
func (s *Staker) RedelegateStash(caller common.Address, id common.Bytes32, now uint64) error {
	logger.Debug("redelegating stash", "id", id)

	var target common.Address
	err := s.run(func() error {
		st, err := s.ownedStash(caller, id)
		if err != nil {
			return err
		}
		lock, err := s.lockService.Get(locks.Redelegation, id)
		if err != nil {
			return err
		}
		if lock == nil {
			return reverts.New(reverts.NotFound, "no redelegation requested")
		}
		if !lock.Unlocked(now) {
			return reverts.Newf(reverts.StillLocked, "redelegation locked until %d", lock.UnlockTime)
		}
		if !st.IsDelegated() {
			return reverts.New(reverts.InvalidInput, "stash not delegated")
		}
		prior := st.Cluster
		target = lock.Value
		if err := s.undelegate(st); err != nil {
			return err
		}
		if err := s.delegate(st, target); err != nil {
			return err
		}
		s.lockService.Delete(locks.Redelegation, id)
		if err := s.stashService.Update(id, st); err != nil {
			return err
		}
		s.emit(newEvent(EventStashRedelegated).withStash(id).withAccount(caller).withCluster(target).
			set("from", prior))
		return nil
	})
	if err != nil {
		logger.Info("redelegate stash failed", "id", id, "error", err)
		return err
	}

	logger.Info("redelegated stash", "id", id, "cluster", target)
	return nil
}

// CancelRedelegation drops the pending redelegation request of a stash.
func (s *Staker) CancelRedelegation(caller common.Address, id common.Bytes32) error {
	err := s.run(func() error {
		if _, err := s.ownedStash(caller, id); err != nil {
			return err
		}
		lock, err := s.lockService.Get(locks.Redelegation, id)
		if err != nil {
			return err
		}
		if lock == nil {
			return reverts.New(reverts.NotFound, "no redelegation requested")
		}
		s.lockService.Delete(locks.Redelegation, id)
		s.emit(newEvent(EventRedelegationCancelled).withStash(id).withAccount(caller).withCluster(lock.Value))
		return nil
	})
	if err != nil {
		logger.Info("cancel redelegation failed", "id", id, "error", err)
		return err
	}

	logger.Info("cancelled redelegation", "id", id)
	return nil
}

// UndelegateStash removes a stash from its cluster. Its tokens stay locked for the
// undelegation wait.
func (s *Staker) UndelegateStash(caller common.Address, id common.Bytes32, now uint64) error {
	logger.Debug("undelegating stash", "id", id)

	err := s.run(func() error {
		st, err := s.ownedStash(caller, id)
		if err != nil {
			return err
		}
		if !st.IsDelegated() {
			return reverts.New(reverts.InvalidInput, "stash not delegated")
		}
		wait, err := s.params.Uint64(params.UndelegationWait)
		if err != nil {
			return err
		}
		prior := st.Cluster
		if err := s.undelegate(st); err != nil {
			return err
		}
		unlock := saturatingAdd(now, wait)
		s.lockService.Delete(locks.Redelegation, id)
		if err := s.lockService.Set(locks.Undelegation, id, &locks.Lock{UnlockTime: unlock, Value: prior}); err != nil {
			return err
		}
		if err := s.stashService.Update(id, st); err != nil {
			return err
		}
		s.emit(newEvent(EventStashUndelegated).withStash(id).withAccount(caller).withCluster(prior).
			set("unlockTime", unlock))
		return nil
	})
	if err != nil {
		logger.Info("undelegate stash failed", "id", id, "error", err)
		return err
	}

	logger.Info("undelegated stash", "id", id)
	return nil
}

// CancelUndelegation puts a stash back on its prior cluster while its undelegation is still locked.
func (s *Staker) CancelUndelegation(caller common.Address, id common.Bytes32, now uint64) error {
	err := s.run(func() error {
		st, err := s.ownedStash(caller, id)
		if err != nil {
			return err
		}
		lock, err := s.lockService.Get(locks.Undelegation, id)
		if err != nil {
			return err
		}
		if lock == nil {
			return reverts.New(reverts.NotFound, "no undelegation pending")
		}
		if lock.Unlocked(now) {
			return reverts.New(reverts.LockConflict, "undelegation already completed")
		}
		if st.IsDelegated() {
			return reverts.New(reverts.InvalidInput, "stash already delegated")
		}
		if err := s.delegate(st, lock.Value); err != nil {
			return err
		}
		s.lockService.Delete(locks.Undelegation, id)
		if err := s.stashService.Update(id, st); err != nil {
			return err
		}
		s.emit(newEvent(EventUndelegationCancelled).withStash(id).withAccount(caller).withCluster(lock.Value))
		return nil
	})
	if err != nil {
		logger.Info("cancel undelegation failed", "id", id, "error", err)
		return err
	}

	logger.Info("cancelled undelegation", "id", id)
	return nil
}

// WithdrawStash returns every token of an undelegated, unlocked stash to its owner and
// deletes it. Anyone may trigger it.
func (s *Staker) WithdrawStash(caller common.Address, id common.Bytes32, now uint64) error {
	logger.Debug("withdrawing stash", "id", id, "caller", caller)

	err := s.run(func() error {
		st, err := s.existingStash(id)
		if err != nil {
			return err
		}
		if err := s.checkWithdrawable(id, st, now); err != nil {
			return err
		}
		for i, token := range st.Tokens {
			s.release(token, st.Owner, st.Amounts[i])
		}
		s.lockService.Delete(locks.Undelegation, id)
		s.stashService.Delete(id)
		s.emit(newEvent(EventStashWithdrawn).withStash(id).withAccount(st.Owner).
			set("tokens", st.Tokens).set("amounts", st.Amounts).set("closed", "true"))
		return nil
	})
	if err != nil {
		logger.Info("withdraw stash failed", "id", id, "error", err)
		return err
	}

	logger.Info("withdrew stash", "id", id)
	return nil
}

// WithdrawStashTokens returns part of an undelegated, unlocked stash to its owner.
// The stash is deleted once empty.
func (s *Staker) WithdrawStashTokens(
	caller common.Address,
	id common.Bytes32,
	ids []common.Bytes32,
	amounts []*big.Int,
	now uint64,
) error {
	logger.Debug("withdrawing stash tokens", "id", id, "tokens", len(ids))

	err := s.run(func() error {
		st, err := s.ownedStash(caller, id)
		if err != nil {
			return err
		}
		if err := checkAmounts(ids, amounts); err != nil {
			return err
		}
		if err := s.checkWithdrawable(id, st, now); err != nil {
			return err
		}
		for i, token := range ids {
			if err := st.Sub(token, amounts[i]); err != nil {
				return err
			}
			s.release(token, st.Owner, amounts[i])
		}
		closed := st.IsEmpty()
		if closed {
			s.lockService.Delete(locks.Undelegation, id)
			s.stashService.Delete(id)
		} else if err := s.stashService.Update(id, st); err != nil {
			return err
		}
		ev := newEvent(EventStashWithdrawn).withStash(id).withAccount(st.Owner).
			set("tokens", ids).set("amounts", amounts)
		if closed {
			ev.set("closed", "true")
		}
		s.emit(ev)
		return nil
	})
	if err != nil {
		logger.Info("withdraw stash tokens failed", "id", id, "error", err)
		return err
	}

	logger.Info("withdrew stash tokens", "id", id)
	return nil
}

// SplitStash moves the given amounts into a new stash of the same owner and cluster.
// Pending locks are carried over to the new stash.
func (s *Staker) SplitStash(
	caller common.Address,
	id common.Bytes32,
	ids []common.Bytes32,
	amounts []*big.Int,
	now uint64,
) (common.Bytes32, error) {
	logger.Debug("splitting stash", "id", id, "tokens", len(ids))

	var newID common.Bytes32
	err := s.run(func() error {
		st, err := s.ownedStash(caller, id)
		if err != nil {
			return err
		}
		if err := checkAmounts(ids, amounts); err != nil {
			return err
		}
		split := &stash.Stash{Owner: st.Owner, Cluster: st.Cluster}
		for i, token := range ids {
			if err := st.Sub(token, amounts[i]); err != nil {
				return err
			}
			split.Add(token, amounts[i])
		}
		if newID, err = s.stashService.Add(split); err != nil {
			return err
		}
		if _, err := s.lockService.Clone(locks.Redelegation, id, newID); err != nil {
			return err
		}
		lock, err := s.lockService.Get(locks.Undelegation, id)
		if err != nil {
			return err
		}
		if lock != nil && !lock.Unlocked(now) {
			if err := s.lockService.Set(locks.Undelegation, newID, lock); err != nil {
				return err
			}
		}
		ev := newEvent(EventStashSplit).withStash(id).withAccount(caller).withCluster(st.Cluster).
			set("newStash", newID).set("tokens", ids).set("amounts", amounts)
		// everything moved, the source is gone
		if st.IsEmpty() {
			s.lockService.Delete(locks.Redelegation, id)
			s.lockService.Delete(locks.Undelegation, id)
			s.stashService.Delete(id)
			ev.set("closed", "true")
		} else if err := s.stashService.Update(id, st); err != nil {
			return err
		}
		s.emit(ev)
		return nil
	})
	if err != nil {
		logger.Info("split stash failed", "id", id, "error", err)
		return common.Bytes32{}, err
	}

	logger.Info("split stash", "id", id, "new", newID)
	return newID, nil
}

// MergeStash moves every token of from into into and deletes from. Both stashes must
// share owner and cluster and carry compatible locks. Expired undelegation locks
// are ignored.
func (s *Staker) MergeStash(caller common.Address, from, into common.Bytes32, now uint64) error {
	logger.Debug("merging stash", "from", from, "into", into)

	err := s.run(func() error {
		if from == into {
			return reverts.New(reverts.InvalidInput, "cannot merge a stash into itself")
		}
		src, err := s.ownedStash(caller, from)
		if err != nil {
			return err
		}
		dst, err := s.ownedStash(caller, into)
		if err != nil {
			return err
		}
		if src.Cluster != dst.Cluster {
			return reverts.New(reverts.InvalidInput, "stashes delegated to different clusters")
		}
		for _, id := range []common.Bytes32{from, into} {
			lock, err := s.lockService.Get(locks.Redelegation, id)
			if err != nil {
				return err
			}
			if lock != nil {
				return reverts.Newf(reverts.LockConflict, "stash %v has a pending redelegation", id)
			}
		}
		if err := s.mergeUndelegationLocks(from, into, now); err != nil {
			return err
		}
		for i, token := range src.Tokens {
			dst.Add(token, src.Amounts[i])
		}
		s.stashService.Delete(from)
		if err := s.stashService.Update(into, dst); err != nil {
			return err
		}
		s.emit(newEvent(EventStashMerged).withStash(into).withAccount(caller).withCluster(dst.Cluster).
			set("from", from))
		return nil
	})
	if err != nil {
		logger.Info("merge stash failed", "from", from, "into", into, "error", err)
		return err
	}

	logger.Info("merged stash", "from", from, "into", into)
	return nil
}

func (s *Staker) mergeUndelegationLocks(from, into common.Bytes32, now uint64) error {
	src, err := s.liveUndelegationLock(from, now)
	if err != nil {
		return err
	}
	dst, err := s.liveUndelegationLock(into, now)
	if err != nil {
		return err
	}
	switch {
	case src == nil && dst == nil:
		s.lockService.Delete(locks.Undelegation, from)
		return nil
	case src == nil || dst == nil:
		return reverts.New(reverts.LockConflict, "undelegation locks differ")
	case src.Value != dst.Value:
		return reverts.New(reverts.LockConflict, "undelegated from different clusters")
	}
	s.lockService.Delete(locks.Undelegation, from)
	if src.UnlockTime > dst.UnlockTime {
		return s.lockService.Set(locks.Undelegation, into, src)
	}
	return nil
}

//
// helpers
//

// liveUndelegationLock returns the undelegation lock of a stash, nil when there is
// none or it has expired.
func (s *Staker) liveUndelegationLock(id common.Bytes32, now uint64) (*locks.Lock, error) {
	lock, err := s.lockService.Get(locks.Undelegation, id)
	if err != nil || lock == nil || lock.Unlocked(now) {
		return nil, err
	}
	return lock, nil
}

func (s *Staker) existingStash(id common.Bytes32) (*stash.Stash, error) {
	st, err := s.stashService.Get(id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, reverts.Newf(reverts.NotFound, "stash %v not found", id)
	}
	return st, nil
}

func (s *Staker) ownedStash(caller common.Address, id common.Bytes32) (*stash.Stash, error) {
	st, err := s.existingStash(id)
	if err != nil {
		return nil, err
	}
	if st.Owner != caller {
		return nil, reverts.Newf(reverts.Unauthorized, "stash %v is not owned by %v", id, caller)
	}
	return st, nil
}

func (s *Staker) checkWithdrawable(id common.Bytes32, st *stash.Stash, now uint64) error {
	if st.IsDelegated() {
		return reverts.New(reverts.StillLocked, "stash is delegated")
	}
	lock, err := s.lockService.Get(locks.Undelegation, id)
	if err != nil {
		return err
	}
	if lock != nil && !lock.Unlocked(now) {
		return reverts.Newf(reverts.StillLocked, "undelegation locked until %d", lock.UnlockTime)
	}
	return nil
}

// delegate settles owner's rewards at cluster and adds the stash to the cluster aggregates.
func (s *Staker) delegate(st *stash.Stash, cluster common.Address) error {
	if _, err := s.settle(st.Owner, cluster, nil); err != nil {
		return err
	}
	for i, token := range st.Tokens {
		if err := s.rewardService.Increase(st.Owner, cluster, token, st.Amounts[i]); err != nil {
			return err
		}
	}
	st.Cluster = cluster
	return nil
}

// undelegate settles owner's rewards at the stash cluster and removes the stash from its aggregates.
func (s *Staker) undelegate(st *stash.Stash) error {
	if _, err := s.settle(st.Owner, st.Cluster, nil); err != nil {
		return err
	}
	for i, token := range st.Tokens {
		if err := s.rewardService.Decrease(st.Owner, st.Cluster, token, st.Amounts[i]); err != nil {
			return err
		}
	}
	st.Cluster = common.Address{}
	return nil
}

// checkDeposit validates a deposit against the token registry.
func (s *Staker) checkDeposit(ids []common.Bytes32, amounts []*big.Int) error {
	if err := checkAmounts(ids, amounts); err != nil {
		return err
	}
	for _, id := range ids {
		status, err := s.tokens.Status(id)
		if err != nil {
			return err
		}
		switch status {
		case tokens.Unknown:
			return reverts.Newf(reverts.NotFound, "token %v not registered", id)
		case tokens.Inactive:
			return reverts.Newf(reverts.InvalidInput, "token %v not delegatable", id)
		}
	}
	return nil
}

func checkAmounts(ids []common.Bytes32, amounts []*big.Int) error {
	if len(ids) == 0 || len(ids) != len(amounts) {
		return reverts.New(reverts.InvalidInput, "tokens and amounts must be non empty and of equal length")
	}
	seen := make(map[common.Bytes32]struct{}, len(ids))
	for i, id := range ids {
		if _, ok := seen[id]; ok {
			return reverts.Newf(reverts.InvalidInput, "duplicate token %v", id)
		}
		seen[id] = struct{}{}
		if amounts[i] == nil || amounts[i].Sign() <= 0 {
			return reverts.Newf(reverts.InvalidInput, "amount of token %v must be positive", id)
		}
	}
	return nil
}

func saturatingAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint64(0)
}

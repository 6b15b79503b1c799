// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/contracts-sub002/builtin/params"
	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/locks"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/test/datagen"
)

const (
	redelegationWait = uint64(86400)
	undelegationWait = uint64(7 * 86400)
)

func ids(v ...common.Bytes32) []common.Bytes32 { return v }

func amounts(v ...*big.Int) []*big.Int { return v }

func Test_CreateStash(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	ts.fund(owner, ts.pond, common.Units(100))
	ts.fund(owner, ts.mpond, common.Units(3))

	id, err := ts.CreateStash(owner, ids(ts.pond, ts.mpond), amounts(common.Units(100), common.Units(3)))
	require.NoError(t, err)

	AssertStash(ts, id).
		Exists(true).
		Cluster(common.Address{}).
		Balance(ts.pond, common.Units(100)).
		Balance(ts.mpond, common.Units(3)).
		Assert(t)

	assert.Equal(t, 0, ts.balance(owner, ts.pond).Sign())
	assert.Equal(t, 0, common.Units(100).Cmp(ts.balance(stakerAddr, ts.pond)))
	assert.Equal(t, 0, common.Units(3).Cmp(ts.balance(stakerAddr, ts.mpond)))
	assert.Equal(t, []string{EventStashCreated}, ts.eventNames())
}

func Test_CreateStash_Invalid(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	ts.fund(owner, ts.pond, common.Units(10))
	one := common.Units(1)

	tests := []struct {
		name    string
		ids     []common.Bytes32
		amounts []*big.Int
		kind    reverts.Kind
	}{
		{"empty", nil, nil, reverts.InvalidInput},
		{"length mismatch", ids(ts.pond), amounts(one, one), reverts.InvalidInput},
		{"duplicate", ids(ts.pond, ts.pond), amounts(one, one), reverts.InvalidInput},
		{"zero amount", ids(ts.pond), amounts(big.NewInt(0)), reverts.InvalidInput},
		{"negative amount", ids(ts.pond), amounts(big.NewInt(-1)), reverts.InvalidInput},
		{"unknown token", ids(datagen.RandomHash()), amounts(one), reverts.NotFound},
		{"not funded", ids(ts.mpond), amounts(one), reverts.TransferFailed},
		{"more than balance", ids(ts.pond), amounts(common.Units(11)), reverts.TransferFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.CreateStash(owner, tt.ids, tt.amounts)
			assert.True(t, reverts.Is(err, tt.kind), "got %v", err)
		})
	}

	// inactive tokens are rejected for new deposits
	require.NoError(t, ts.DisableToken(ts.admin, ts.pond))
	_, err := ts.CreateStash(owner, ids(ts.pond), amounts(one))
	assert.True(t, reverts.Is(err, reverts.InvalidInput))

	// nothing of the failed operations remains
	count, err := ts.StashCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count.Sign())
	assert.Equal(t, 0, common.Units(10).Cmp(ts.balance(owner, ts.pond)))
	assert.Empty(t, ts.Events())
}

func Test_AddToStash(t *testing.T) {
	ts := newTest(t)
	owner, other := datagen.RandAddress(), datagen.RandAddress()
	cluster := ts.cluster(0)
	id := ts.stake(owner, common.Units(100), cluster)
	ts.fund(owner, ts.mpond, common.Units(10))

	err := ts.AddToStash(other, id, ids(ts.mpond), amounts(common.Units(1)))
	assert.True(t, reverts.Is(err, reverts.Unauthorized))
	err = ts.AddToStash(owner, datagen.RandomHash(), ids(ts.mpond), amounts(common.Units(1)))
	assert.True(t, reverts.Is(err, reverts.NotFound))

	require.NoError(t, ts.AddToStash(owner, id, ids(ts.mpond), amounts(common.Units(10))))
	AssertStash(ts, id).
		Balance(ts.pond, common.Units(100)).
		Balance(ts.mpond, common.Units(10)).
		Assert(t)

	pool, err := ts.GetPool(cluster, ts.mpond)
	require.NoError(t, err)
	assert.Equal(t, 0, common.Units(10).Cmp(pool.TotalDelegation))

	// 100 * 1 + 10 * 2
	ws, err := ts.WeightedStake(cluster)
	require.NoError(t, err)
	assert.Equal(t, 0, common.Units(120).Cmp(ws))
	last, err := ts.LastWeightedStake(cluster)
	require.NoError(t, err)
	assert.Equal(t, 0, ws.Cmp(last))
}

func Test_DelegateStash(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	cluster := ts.cluster(10)
	ts.fund(owner, ts.pond, common.Units(50))
	id, err := ts.CreateStash(owner, ids(ts.pond), amounts(common.Units(50)))
	require.NoError(t, err)

	assert.True(t, reverts.Is(ts.DelegateStash(owner, id, common.Address{}, start), reverts.InvalidInput))
	assert.True(t, reverts.Is(ts.DelegateStash(datagen.RandAddress(), id, cluster, start), reverts.Unauthorized))

	// registry validity is not required
	unregistered := datagen.RandAddress()
	require.NoError(t, ts.DelegateStash(owner, id, unregistered, start))
	assert.True(t, reverts.Is(ts.DelegateStash(owner, id, cluster, start), reverts.InvalidInput))

	AssertStash(ts, id).Cluster(unregistered).Assert(t)
	pos, err := ts.GetPosition(owner, unregistered, ts.pond)
	require.NoError(t, err)
	assert.Equal(t, 0, common.Units(50).Cmp(pos.Amount))
}

func Test_Redelegation(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	c1, c2, c3 := ts.cluster(0), ts.cluster(0), ts.cluster(0)
	id := ts.stake(owner, common.Units(10), c1)

	assert.True(t, reverts.Is(ts.RequestStashRedelegation(owner, id, c1, start), reverts.InvalidInput))
	assert.True(t, reverts.Is(ts.RequestStashRedelegation(owner, id, common.Address{}, start), reverts.InvalidInput))
	assert.True(t, reverts.Is(ts.RedelegateStash(owner, id, start), reverts.NotFound))

	NewSequence(ts).
		RequestRedelegation(owner, id, c2, start).
		// the latest request wins
		RequestRedelegation(owner, id, c3, start+10).
		Run(t)
	AssertStash(ts, id).Cluster(c1).RedelegationTo(c3).Assert(t)

	err := ts.RedelegateStash(owner, id, start+10+redelegationWait-1)
	assert.True(t, reverts.Is(err, reverts.StillLocked))

	NewSequence(ts).Redelegate(owner, id, start+10+redelegationWait).Run(t)
	AssertStash(ts, id).Cluster(c3).RedelegationTo(common.Address{}).Assert(t)

	old, err := ts.GetPool(c1, ts.pond)
	require.NoError(t, err)
	assert.Equal(t, 0, old.TotalDelegation.Sign())
	moved, err := ts.GetPool(c3, ts.pond)
	require.NoError(t, err)
	assert.Equal(t, 0, common.Units(10).Cmp(moved.TotalDelegation))
}

func Test_RedelegationUsesParam(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	c1, c2 := ts.cluster(0), ts.cluster(0)
	id := ts.stake(owner, common.Units(10), c1)

	require.NoError(t, ts.SetParam(ts.admin, params.RedelegationWait, big.NewInt(5)))
	NewSequence(ts).
		RequestRedelegation(owner, id, c2, start).
		Redelegate(owner, id, start+5).
		Run(t)
	AssertStash(ts, id).Cluster(c2).Assert(t)
}

func Test_Undelegation(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	c1, c2 := ts.cluster(0), ts.cluster(0)
	id := ts.stake(owner, common.Units(10), c1)

	assert.True(t, reverts.Is(ts.CancelUndelegation(owner, id, start), reverts.NotFound))

	NewSequence(ts).
		RequestRedelegation(owner, id, c2, start).
		Undelegate(owner, id, start).
		Run(t)

	// undelegation drops the pending redelegation
	AssertStash(ts, id).
		Cluster(common.Address{}).
		RedelegationTo(common.Address{}).
		UndelegatedFrom(c1).
		Assert(t)
	assert.True(t, reverts.Is(ts.UndelegateStash(owner, id, start), reverts.InvalidInput))

	pool, err := ts.GetPool(c1, ts.pond)
	require.NoError(t, err)
	assert.Equal(t, 0, pool.TotalDelegation.Sign())

	// cancelling is allowed strictly before the unlock time
	err = ts.CancelUndelegation(owner, id, start+undelegationWait)
	assert.True(t, reverts.Is(err, reverts.LockConflict))
	require.NoError(t, ts.CancelUndelegation(owner, id, start+undelegationWait-1))

	AssertStash(ts, id).Cluster(c1).UndelegatedFrom(common.Address{}).Assert(t)
	pool, err = ts.GetPool(c1, ts.pond)
	require.NoError(t, err)
	assert.Equal(t, 0, common.Units(10).Cmp(pool.TotalDelegation))
}

func Test_DelegateRejectedWhileUndelegating(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	c1, c2 := ts.cluster(0), ts.cluster(0)
	id := ts.stake(owner, common.Units(10), c1)

	NewSequence(ts).Undelegate(owner, id, start).Run(t)

	// a live undelegation can only be cancelled
	err := ts.DelegateStash(owner, id, c2, start+1)
	assert.True(t, reverts.Is(err, reverts.StillLocked))
	err = ts.DelegateStash(owner, id, c2, start+undelegationWait-1)
	assert.True(t, reverts.Is(err, reverts.StillLocked))
	AssertStash(ts, id).Cluster(common.Address{}).UndelegatedFrom(c1).Assert(t)
	pool, err := ts.GetPool(c2, ts.pond)
	require.NoError(t, err)
	assert.Equal(t, 0, pool.TotalDelegation.Sign())

	// once expired the stash is free to go anywhere
	NewSequence(ts).Delegate(owner, id, c2, start+undelegationWait).Run(t)
	AssertStash(ts, id).Cluster(c2).UndelegatedFrom(common.Address{}).Assert(t)
	lock, err := ts.GetLock(locks.Undelegation, id)
	require.NoError(t, err)
	assert.Nil(t, lock)
	pool, err = ts.GetPool(c2, ts.pond)
	require.NoError(t, err)
	assert.Equal(t, 0, common.Units(10).Cmp(pool.TotalDelegation))
}

func Test_WithdrawStash(t *testing.T) {
	ts := newTest(t)
	owner, anyone := datagen.RandAddress(), datagen.RandAddress()
	cluster := ts.cluster(0)
	id := ts.stake(owner, common.Units(10), cluster)

	assert.True(t, reverts.Is(ts.WithdrawStash(owner, id, start), reverts.StillLocked))
	NewSequence(ts).Undelegate(owner, id, start).Run(t)
	assert.True(t, reverts.Is(ts.WithdrawStash(owner, id, start+undelegationWait-1), reverts.StillLocked))

	// anyone may trigger the withdrawal, the owner gets the tokens
	NewSequence(ts).Withdraw(anyone, id, start+undelegationWait).Run(t)
	AssertStash(ts, id).Exists(false).Assert(t)
	assert.Equal(t, 0, common.Units(10).Cmp(ts.balance(owner, ts.pond)))
	assert.Equal(t, 0, ts.balance(anyone, ts.pond).Sign())
	assert.Equal(t, 0, ts.balance(stakerAddr, ts.pond).Sign())

	lock, err := ts.GetLock(locks.Undelegation, id)
	require.NoError(t, err)
	assert.Nil(t, lock)

	assert.True(t, reverts.Is(ts.WithdrawStash(owner, id, start+undelegationWait), reverts.NotFound))
}

func Test_WithdrawStashTokens(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	ts.fund(owner, ts.pond, common.Units(10))
	ts.fund(owner, ts.mpond, common.Units(4))
	id, err := ts.CreateStash(owner, ids(ts.pond, ts.mpond), amounts(common.Units(10), common.Units(4)))
	require.NoError(t, err)

	// never delegated stashes can be withdrawn at once
	err = ts.WithdrawStashTokens(owner, id, ids(ts.pond), amounts(common.Units(11)), start)
	assert.True(t, reverts.Is(err, reverts.InsufficientBalance))
	err = ts.WithdrawStashTokens(datagen.RandAddress(), id, ids(ts.pond), amounts(common.Units(1)), start)
	assert.True(t, reverts.Is(err, reverts.Unauthorized))

	require.NoError(t, ts.WithdrawStashTokens(owner, id, ids(ts.pond), amounts(common.Units(4)), start))
	AssertStash(ts, id).
		Exists(true).
		Balance(ts.pond, common.Units(6)).
		Balance(ts.mpond, common.Units(4)).
		Assert(t)
	assert.Equal(t, 0, common.Units(4).Cmp(ts.balance(owner, ts.pond)))

	require.NoError(t, ts.WithdrawStashTokens(owner, id, ids(ts.pond, ts.mpond), amounts(common.Units(6), common.Units(4)), start))
	AssertStash(ts, id).Exists(false).Assert(t)
	assert.Equal(t, 0, common.Units(10).Cmp(ts.balance(owner, ts.pond)))
	assert.Equal(t, 0, common.Units(4).Cmp(ts.balance(owner, ts.mpond)))
}

func Test_SplitStash(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	c1, c2 := ts.cluster(0), ts.cluster(0)
	id := ts.stake(owner, common.Units(10), c1)
	NewSequence(ts).RequestRedelegation(owner, id, c2, start).Run(t)

	_, err := ts.SplitStash(owner, id, ids(ts.pond), amounts(common.Units(11)), start)
	assert.True(t, reverts.Is(err, reverts.InsufficientBalance))
	_, err = ts.SplitStash(owner, id, ids(ts.mpond), amounts(common.Units(1)), start)
	assert.True(t, reverts.Is(err, reverts.InsufficientBalance))

	newID, err := ts.SplitStash(owner, id, ids(ts.pond), amounts(common.Units(3)), start)
	require.NoError(t, err)

	AssertStash(ts, id).Cluster(c1).Balance(ts.pond, common.Units(7)).Assert(t)
	AssertStash(ts, newID).Cluster(c1).Balance(ts.pond, common.Units(3)).RedelegationTo(c2).Assert(t)

	// aggregates are untouched
	pool, err := ts.GetPool(c1, ts.pond)
	require.NoError(t, err)
	assert.Equal(t, 0, common.Units(10).Cmp(pool.TotalDelegation))
}

func Test_SplitStash_UndelegationLock(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	cluster := ts.cluster(0)
	id := ts.stake(owner, common.Units(10), cluster)
	NewSequence(ts).Undelegate(owner, id, start).Run(t)

	locked, err := ts.SplitStash(owner, id, ids(ts.pond), amounts(common.Units(1)), start+1)
	require.NoError(t, err)
	AssertStash(ts, locked).UndelegatedFrom(cluster).Assert(t)
	assert.True(t, reverts.Is(ts.WithdrawStash(owner, locked, start+1), reverts.StillLocked))

	// an expired lock is not carried over
	free, err := ts.SplitStash(owner, id, ids(ts.pond), amounts(common.Units(1)), start+undelegationWait)
	require.NoError(t, err)
	AssertStash(ts, free).UndelegatedFrom(common.Address{}).Assert(t)
}

func Test_MergeStash(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	c1, c2 := ts.cluster(0), ts.cluster(0)
	a := ts.stake(owner, common.Units(10), c1)
	b := ts.stake(owner, common.Units(5), c1)
	c := ts.stake(owner, common.Units(1), c2)
	foreign := ts.stake(datagen.RandAddress(), common.Units(1), c1)

	assert.True(t, reverts.Is(ts.MergeStash(owner, a, a, start+100), reverts.InvalidInput))
	assert.True(t, reverts.Is(ts.MergeStash(owner, a, c, start+100), reverts.InvalidInput))
	assert.True(t, reverts.Is(ts.MergeStash(owner, a, foreign, start+100), reverts.Unauthorized))

	NewSequence(ts).RequestRedelegation(owner, b, c2, start).Run(t)
	assert.True(t, reverts.Is(ts.MergeStash(owner, a, b, start+100), reverts.LockConflict))
	require.NoError(t, ts.CancelRedelegation(owner, b))
	assert.True(t, reverts.Is(ts.CancelRedelegation(owner, b), reverts.NotFound))

	require.NoError(t, ts.MergeStash(owner, b, a, start+100))
	AssertStash(ts, b).Exists(false).Assert(t)
	AssertStash(ts, a).Balance(ts.pond, common.Units(15)).Cluster(c1).Assert(t)

	pool, err := ts.GetPool(c1, ts.pond)
	require.NoError(t, err)
	assert.Equal(t, 0, common.Units(16).Cmp(pool.TotalDelegation))
}

func Test_MergeStash_UndelegationLocks(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	c1, c2 := ts.cluster(0), ts.cluster(0)
	a := ts.stake(owner, common.Units(1), c1)
	b := ts.stake(owner, common.Units(1), c1)
	c := ts.stake(owner, common.Units(1), c2)

	NewSequence(ts).
		Undelegate(owner, a, start).
		Undelegate(owner, c, start).
		Run(t)

	// a delegated stash does not merge into an undelegated one
	assert.True(t, reverts.Is(ts.MergeStash(owner, b, a, start+100), reverts.InvalidInput))
	// different prior clusters do not merge
	assert.True(t, reverts.Is(ts.MergeStash(owner, c, a, start+100), reverts.LockConflict))

	NewSequence(ts).Undelegate(owner, b, start+100).Run(t)
	require.NoError(t, ts.MergeStash(owner, b, a, start+100))

	lock, err := ts.GetLock(locks.Undelegation, a)
	require.NoError(t, err)
	assert.Equal(t, start+100+undelegationWait, lock.UnlockTime)
	lock, err = ts.GetLock(locks.Undelegation, b)
	require.NoError(t, err)
	assert.Nil(t, lock)
}

func Test_MergeStash_ExpiredUndelegationLock(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	c1 := ts.cluster(0)
	id := ts.stake(owner, common.Units(10), c1)

	NewSequence(ts).Undelegate(owner, id, start).Run(t)

	// the split half carries no lock since the source one has expired
	later := start + undelegationWait + 1
	half, err := ts.SplitStash(owner, id, ids(ts.pond), amounts(common.Units(4)), later)
	require.NoError(t, err)
	lock, err := ts.GetLock(locks.Undelegation, half)
	require.NoError(t, err)
	assert.Nil(t, lock)

	require.NoError(t, ts.MergeStash(owner, half, id, later))
	AssertStash(ts, half).Exists(false).Assert(t)
	AssertStash(ts, id).Balance(ts.pond, common.Units(10)).Cluster(common.Address{}).Assert(t)

	// both ways round
	half, err = ts.SplitStash(owner, id, ids(ts.pond), amounts(common.Units(4)), later)
	require.NoError(t, err)
	require.NoError(t, ts.MergeStash(owner, id, half, later))
	AssertStash(ts, id).Exists(false).Assert(t)
	AssertStash(ts, half).Balance(ts.pond, common.Units(10)).Assert(t)
	lock, err = ts.GetLock(locks.Undelegation, id)
	require.NoError(t, err)
	assert.Nil(t, lock)
}

func Test_SplitStash_WholeBalanceClosesSource(t *testing.T) {
	ts := newTest(t)
	owner := datagen.RandAddress()
	c1, c2 := ts.cluster(0), ts.cluster(0)
	id := ts.stake(owner, common.Units(10), c1)
	ts.fund(owner, ts.mpond, common.Units(2))
	require.NoError(t, ts.AddToStash(owner, id, ids(ts.mpond), amounts(common.Units(2))))
	NewSequence(ts).RequestRedelegation(owner, id, c2, start).Run(t)

	moved, err := ts.SplitStash(owner, id, ids(ts.pond, ts.mpond), amounts(common.Units(10), common.Units(2)), start)
	require.NoError(t, err)

	AssertStash(ts, id).Exists(false).Assert(t)
	AssertStash(ts, moved).
		Cluster(c1).
		Balance(ts.pond, common.Units(10)).
		Balance(ts.mpond, common.Units(2)).
		RedelegationTo(c2).
		Assert(t)
	lock, err := ts.GetLock(locks.Redelegation, id)
	require.NoError(t, err)
	assert.Nil(t, lock)

	// delegation is unchanged by the move
	pool, err := ts.GetPool(c1, ts.pond)
	require.NoError(t, err)
	assert.Equal(t, 0, common.Units(10).Cmp(pool.TotalDelegation))
}

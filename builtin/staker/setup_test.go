// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/contracts-sub002/builtin/acl"
	"github.com/marlinprotocol/contracts-sub002/builtin/clusters"
	"github.com/marlinprotocol/contracts-sub002/builtin/params"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/locks"
	"github.com/marlinprotocol/contracts-sub002/builtin/token"
	"github.com/marlinprotocol/contracts-sub002/builtin/tokens"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/state"
	"github.com/marlinprotocol/contracts-sub002/test/datagen"
	"github.com/marlinprotocol/contracts-sub002/test/teststate"
)

const start = uint64(1_700_000_000)

var (
	stakerAddr   = common.BytesToAddress([]byte("Staker"))
	paramsAddr   = common.BytesToAddress([]byte("Params"))
	aclAddr      = common.BytesToAddress([]byte("ACL"))
	tokensAddr   = common.BytesToAddress([]byte("Tokens"))
	clustersAddr = common.BytesToAddress([]byte("Clusters"))
	pondAddr     = common.BytesToAddress([]byte("POND"))
	mpondAddr    = common.BytesToAddress([]byte("MPOND"))

	ethNetwork = common.Keccak256([]byte("ETH"))
	wholeShare = new(big.Int).Set(common.Ether)
)

type StakerTest struct {
	*Staker
	t *testing.T

	st       *state.State
	registry *tokens.Registry
	clusters *clusters.Registry

	admin  common.Address
	feeder common.Address

	pond    common.Bytes32
	mpond   common.Bytes32
	handles map[common.Bytes32]*token.Token
}

// newTest builds a staker with POND (factor 1) and MPOND (factor 2) registered,
// POND as reward token, one network and a reward budget of 1000 POND per epoch.
func newTest(t *testing.T) *StakerTest {
	return newTestWithResolver(t, nil)
}

func newTestWithResolver(t *testing.T, wrap func(tokens.Handle) tokens.Handle) *StakerTest {
	st := teststate.New(t)
	resolve := func(addr common.Address) tokens.Handle {
		h := tokens.Handle(token.New(solidity.NewContext(addr, st, nil)))
		if wrap != nil {
			return wrap(h)
		}
		return h
	}
	registry := tokens.New(solidity.NewContext(tokensAddr, st, nil), resolve)
	clusterRegistry := clusters.New(solidity.NewContext(clustersAddr, st, nil))
	roles := acl.New(solidity.NewContext(aclAddr, st, nil))
	param := params.New(solidity.NewContext(paramsAddr, st, nil))

	ts := &StakerTest{
		Staker:   New(stakerAddr, st, param, roles, registry, clusterRegistry, nil),
		t:        t,
		st:       st,
		registry: registry,
		clusters: clusterRegistry,
		admin:    datagen.RandAddress(),
		feeder:   datagen.RandAddress(),
		handles:  make(map[common.Bytes32]*token.Token),
	}

	require.NoError(t, roles.Grant(acl.Admin, ts.admin))
	require.NoError(t, roles.Grant(acl.Feeder, ts.feeder))

	var err error
	ts.pond, err = ts.AddToken(ts.admin, pondAddr, big.NewInt(1))
	require.NoError(t, err)
	ts.mpond, err = ts.AddToken(ts.admin, mpondAddr, big.NewInt(2))
	require.NoError(t, err)
	ts.handles[ts.pond] = token.New(solidity.NewContext(pondAddr, st, nil))
	ts.handles[ts.mpond] = token.New(solidity.NewContext(mpondAddr, st, nil))

	require.NoError(t, ts.SetRewardToken(ts.admin, ts.pond))
	require.NoError(t, ts.SetParam(ts.admin, params.TotalRewardsPerEpoch, common.Units(1000)))
	require.NoError(t, ts.AddNetwork(ts.admin, ethNetwork, big.NewInt(1)))
	require.NoError(t, ts.handles[ts.pond].Mint(RewardPool, common.Units(1_000_000)))

	// setup events are not part of any test
	ts.Events()
	return ts
}

// fund mints amount of token to addr and approves the staker for all of it.
func (ts *StakerTest) fund(addr common.Address, id common.Bytes32, amount *big.Int) {
	h := ts.handles[id]
	require.NoError(ts.t, h.Mint(addr, amount))
	require.NoError(ts.t, h.Approve(addr, stakerAddr, common.MaxUint256))
}

func (ts *StakerTest) balance(addr common.Address, id common.Bytes32) *big.Int {
	b, err := ts.handles[id].BalanceOf(addr)
	require.NoError(ts.t, err)
	return b
}

// cluster registers a fresh cluster that receives its commission at its own address.
func (ts *StakerTest) cluster(commission uint64) common.Address {
	addr := datagen.RandAddress()
	require.NoError(ts.t, ts.clusters.Register(addr, commission, addr))
	return addr
}

// stake funds owner, creates a stash of amount POND and delegates it to cluster.
func (ts *StakerTest) stake(owner common.Address, amount *big.Int, cluster common.Address) common.Bytes32 {
	ts.fund(owner, ts.pond, amount)
	id, err := ts.CreateStash(owner, []common.Bytes32{ts.pond}, []*big.Int{amount})
	require.NoError(ts.t, err)
	require.NoError(ts.t, ts.DelegateStash(owner, id, cluster, start))
	return id
}

// feed reports a single epoch of ethNetwork paying out the given shares.
func (ts *StakerTest) feed(epoch uint64, now uint64, payouts map[common.Address]*big.Int) *big.Int {
	cs := make([]common.Address, 0, len(payouts))
	ps := make([]*big.Int, 0, len(payouts))
	for c, p := range payouts {
		cs = append(cs, c)
		ps = append(ps, p)
	}
	total, err := ts.Feed(ts.feeder, ethNetwork, cs, ps, epoch, now)
	require.NoError(ts.t, err)
	return total
}

func (ts *StakerTest) eventNames() []string {
	events := ts.Events()
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Name
	}
	return names
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	staker *StakerTest

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(staker *StakerTest) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), staker: staker}
}

func (sq *TestSequence) AddFunc(f TestFunc) *TestSequence {
	sq.mu.Lock()
	defer sq.mu.Unlock()

	sq.funcs = append(sq.funcs, f)
	return sq
}

func (sq *TestSequence) Delegate(owner common.Address, id common.Bytes32, cluster common.Address, now uint64) *TestSequence {
	return sq.AddFunc(func(t *testing.T) {
		if err := sq.staker.DelegateStash(owner, id, cluster, now); err != nil {
			t.Fatalf("failed to delegate stash %s: %v", id, err)
		}
		t.Logf("delegated stash %s to %s", id, cluster)
	})
}

func (sq *TestSequence) RequestRedelegation(owner common.Address, id common.Bytes32, cluster common.Address, now uint64) *TestSequence {
	return sq.AddFunc(func(t *testing.T) {
		if err := sq.staker.RequestStashRedelegation(owner, id, cluster, now); err != nil {
			t.Fatalf("failed to request redelegation of stash %s: %v", id, err)
		}
		t.Logf("requested redelegation of stash %s to %s", id, cluster)
	})
}

func (sq *TestSequence) Redelegate(owner common.Address, id common.Bytes32, now uint64) *TestSequence {
	return sq.AddFunc(func(t *testing.T) {
		if err := sq.staker.RedelegateStash(owner, id, now); err != nil {
			t.Fatalf("failed to redelegate stash %s: %v", id, err)
		}
		t.Logf("redelegated stash %s", id)
	})
}

func (sq *TestSequence) CancelRedelegation(owner common.Address, id common.Bytes32) *TestSequence {
	return sq.AddFunc(func(t *testing.T) {
		if err := sq.staker.CancelRedelegation(owner, id); err != nil {
			t.Fatalf("failed to cancel redelegation of stash %s: %v", id, err)
		}
		t.Logf("cancelled redelegation of stash %s", id)
	})
}

func (sq *TestSequence) Undelegate(owner common.Address, id common.Bytes32, now uint64) *TestSequence {
	return sq.AddFunc(func(t *testing.T) {
		if err := sq.staker.UndelegateStash(owner, id, now); err != nil {
			t.Fatalf("failed to undelegate stash %s: %v", id, err)
		}
		t.Logf("undelegated stash %s", id)
	})
}

func (sq *TestSequence) Withdraw(caller common.Address, id common.Bytes32, now uint64) *TestSequence {
	return sq.AddFunc(func(t *testing.T) {
		if err := sq.staker.WithdrawStash(caller, id, now); err != nil {
			t.Fatalf("failed to withdraw stash %s: %v", id, err)
		}
		t.Logf("withdrew stash %s", id)
	})
}

func (sq *TestSequence) Feed(epoch uint64, now uint64, payouts map[common.Address]*big.Int) *TestSequence {
	return sq.AddFunc(func(t *testing.T) {
		total := sq.staker.feed(epoch, now, payouts)
		t.Logf("fed epoch %d, total %s", epoch, total)
	})
}

func (sq *TestSequence) UpdateRewards(cluster common.Address) *TestSequence {
	return sq.AddFunc(func(t *testing.T) {
		if err := sq.staker.UpdateRewards(cluster); err != nil {
			t.Fatalf("failed to update rewards of %s: %v", cluster, err)
		}
		t.Logf("updated rewards of %s", cluster)
	})
}

func (sq *TestSequence) Run(t *testing.T) {
	sq.mu.Lock()
	defer sq.mu.Unlock()

	for _, f := range sq.funcs {
		f(t)
	}

	t.Logf("All test functions executed successfully")
}

type StashAssertions struct {
	staker *StakerTest
	id     common.Bytes32

	exists     *bool
	cluster    *common.Address
	balances   map[common.Bytes32]*big.Int
	redelegate *common.Address
	undelegate *common.Address
}

func AssertStash(staker *StakerTest, id common.Bytes32) *StashAssertions {
	return &StashAssertions{staker: staker, id: id, balances: make(map[common.Bytes32]*big.Int)}
}

func (sa *StashAssertions) Exists(expected bool) *StashAssertions {
	sa.exists = &expected
	return sa
}

func (sa *StashAssertions) Cluster(expected common.Address) *StashAssertions {
	sa.cluster = &expected
	return sa
}

func (sa *StashAssertions) Balance(token common.Bytes32, expected *big.Int) *StashAssertions {
	sa.balances[token] = expected
	return sa
}

// RedelegationTo expects a redelegation lock targeting cluster, or none for the zero address.
func (sa *StashAssertions) RedelegationTo(cluster common.Address) *StashAssertions {
	sa.redelegate = &cluster
	return sa
}

// UndelegatedFrom expects an undelegation lock from cluster, or none for the zero address.
func (sa *StashAssertions) UndelegatedFrom(cluster common.Address) *StashAssertions {
	sa.undelegate = &cluster
	return sa
}

func (sa *StashAssertions) Assert(t *testing.T) {
	s, err := sa.staker.GetStash(sa.id)
	require.NoError(t, err, "failed to get stash %s", sa.id)

	if sa.exists != nil {
		assert.Equal(t, *sa.exists, s != nil, "stash %s existence mismatch", sa.id)
	}
	if s == nil {
		return
	}
	if sa.cluster != nil {
		assert.Equal(t, *sa.cluster, s.Cluster, "stash %s cluster mismatch", sa.id)
	}
	for token, expected := range sa.balances {
		assert.Equal(t, 0, expected.Cmp(s.Balance(token)), "stash %s balance of %s: want %s got %s", sa.id, token, expected, s.Balance(token))
	}
	for sel, expected := range map[locks.Selector]*common.Address{
		locks.Redelegation: sa.redelegate,
		locks.Undelegation: sa.undelegate,
	} {
		if expected == nil {
			continue
		}
		lock, err := sa.staker.GetLock(sel, sa.id)
		require.NoError(t, err)
		if expected.IsZero() {
			assert.Nil(t, lock, "stash %s has a %v lock", sa.id, sel)
			continue
		}
		if assert.NotNil(t, lock, "stash %s has no %v lock", sa.id, sel) {
			assert.Equal(t, *expected, lock.Value, "stash %s %v lock mismatch", sa.id, sel)
		}
	}
}

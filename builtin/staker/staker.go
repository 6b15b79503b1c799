// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/marlinprotocol/contracts-sub002/builtin/acl"
	"github.com/marlinprotocol/contracts-sub002/builtin/gascharger"
	"github.com/marlinprotocol/contracts-sub002/builtin/params"
	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/locks"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/oracle"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/rewards"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/stash"
	"github.com/marlinprotocol/contracts-sub002/builtin/tokens"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/log"
	"github.com/marlinprotocol/contracts-sub002/state"
)

var (
	logger = log.WithContext("pkg", "staker")

	// RewardPool holds the reward token balance rewards and commissions are paid from.
	RewardPool = common.BytesToAddress([]byte("RewardPool"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// TokenRegistry resolves token ids to their status, reward factor and handle.
type TokenRegistry interface {
	Status(id common.Bytes32) (tokens.Status, error)
	RewardFactor(id common.Bytes32) (*big.Int, error)
	List() ([]common.Bytes32, error)
	Handle(id common.Bytes32) (tokens.Handle, error)
}

// TokenAdmin is a token registry that can be changed.
type TokenAdmin interface {
	TokenRegistry
	Add(handle common.Address, rewardFactor *big.Int) (common.Bytes32, error)
	SetRewardFactor(id common.Bytes32, rewardFactor *big.Int) error
	Enable(id common.Bytes32) error
	Disable(id common.Bytes32) error
}

// ClusterRegistry tells whether a cluster is valid and what it charges.
type ClusterRegistry interface {
	IsValid(cluster common.Address) (bool, error)
	Commission(cluster common.Address) (uint64, error)
	RewardAddress(cluster common.Address) (common.Address, error)
}

// Staker implements the stash ledger, the reward accumulator and the epoch feed.
// It also keeps custody of every staked token at its own address.
type Staker struct {
	addr     common.Address
	state    *state.State
	params   *params.Params
	roles    *acl.ACL
	tokens   TokenRegistry
	clusters ClusterRegistry

	stashService  *stash.Service
	lockService   *locks.Service
	rewardService *rewards.Service
	oracleService *oracle.Service

	entered   bool
	events    []*Event
	transfers []*transfer
}

// New create a new instance.
func New(
	addr common.Address,
	state *state.State,
	params *params.Params,
	roles *acl.ACL,
	tokenRegistry TokenRegistry,
	clusterRegistry ClusterRegistry,
	charger *gascharger.Charger,
) *Staker {
	var charge solidity.UseGasFunc
	if charger != nil {
		charge = charger.Charge
	}
	sctx := solidity.NewContext(addr, state, charge)

	return &Staker{
		addr:     addr,
		state:    state,
		params:   params,
		roles:    roles,
		tokens:   tokenRegistry,
		clusters: clusterRegistry,

		stashService:  stash.New(sctx),
		lockService:   locks.New(sctx),
		rewardService: rewards.New(sctx, tokenRegistry, clusterRegistry),
		oracleService: oracle.New(sctx),
	}
}

// Address is the custody address of staked tokens.
func (s *Staker) Address() common.Address {
	return s.addr
}

// Events returns and clears the events of the operations applied so far.
// Events of reverted operations are never returned.
func (s *Staker) Events() []*Event {
	events := s.events
	s.events = nil
	return events
}

// run applies fn as one all-or-nothing operation: any error reverts its state
// changes, queued transfers and events.
func (s *Staker) run(fn func() error) error {
	if s.entered {
		return reverts.New(reverts.Reentrancy, "reentrant call")
	}
	s.entered = true
	defer func() { s.entered = false }()

	checkpoint := s.state.NewCheckpoint()
	emitted := len(s.events)
	s.transfers = nil

	err := fn()
	if err == nil {
		// interactions come last
		err = s.flushTransfers()
	}
	s.transfers = nil
	if err != nil {
		s.state.RevertTo(checkpoint)
		s.events = s.events[:emitted]
		return err
	}
	return nil
}

func (s *Staker) emit(ev *Event) {
	s.events = append(s.events, ev)
}

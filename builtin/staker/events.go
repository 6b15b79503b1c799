// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/marlinprotocol/contracts-sub002/common"
)

const (
	EventStashCreated          = "StashCreated"
	EventStashDeposit          = "StashDeposit"
	EventStashDelegated        = "StashDelegated"
	EventRedelegationRequested = "RedelegationRequested"
	EventRedelegationCancelled = "RedelegationCancelled"
	EventStashRedelegated      = "StashRedelegated"
	EventStashUndelegated      = "StashUndelegated"
	EventUndelegationCancelled = "UndelegationCancelled"
	EventStashWithdrawn        = "StashWithdrawn"
	EventStashSplit            = "StashSplit"
	EventStashMerged           = "StashMerged"
	EventRewardsUpdated        = "RewardsUpdated"
	EventCommissionPaid        = "CommissionPaid"
	EventRewardWithdrawn       = "RewardWithdrawn"
	EventRewardForfeited       = "RewardForfeited"
	EventEpochFed              = "EpochFed"
)

// Event records one effect of a successful operation. Stash, Account and
// Cluster are the indexed subjects, zero when not relevant.
type Event struct {
	Name    string
	Stash   common.Bytes32
	Account common.Address
	Cluster common.Address
	Data    map[string]string
}

func newEvent(name string) *Event {
	return &Event{Name: name, Data: make(map[string]string)}
}

func (e *Event) withStash(id common.Bytes32) *Event {
	e.Stash = id
	return e
}

func (e *Event) withAccount(addr common.Address) *Event {
	e.Account = addr
	return e
}

func (e *Event) withCluster(addr common.Address) *Event {
	e.Cluster = addr
	return e
}

func (e *Event) set(key string, value any) *Event {
	switch v := value.(type) {
	case *big.Int:
		e.Data[key] = v.String()
	case uint64:
		e.Data[key] = strconv.FormatUint(v, 10)
	case []common.Bytes32:
		ids := make([]string, len(v))
		for i, id := range v {
			ids[i] = id.String()
		}
		e.Data[key] = strings.Join(ids, ",")
	case []*big.Int:
		amounts := make([]string, len(v))
		for i, a := range v {
			amounts[i] = a.String()
		}
		e.Data[key] = strings.Join(amounts, ",")
	case interface{ String() string }:
		e.Data[key] = v.String()
	case string:
		e.Data[key] = v
	}
	return e
}

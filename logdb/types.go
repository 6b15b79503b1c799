// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/marlinprotocol/contracts-sub002/builtin/staker"
	"github.com/marlinprotocol/contracts-sub002/common"
)

// Op is a committed ledger operation.
type Op struct {
	Seq       uint64
	Name      string
	Caller    common.Address
	Timestamp uint64
}

// Event is a staker.Event stored with the operation that emitted it.
type Event struct {
	Seq       uint64
	Index     uint32
	Timestamp uint64
	Name      string
	Stash     common.Bytes32
	Account   common.Address
	Cluster   common.Address
	Data      map[string]string
}

func newEvent(seq uint64, index uint32, timestamp uint64, ev *staker.Event) *Event {
	return &Event{
		Seq:       seq,
		Index:     index,
		Timestamp: timestamp,
		Name:      ev.Name,
		Stash:     ev.Stash,
		Account:   ev.Account,
		Cluster:   ev.Cluster,
		Data:      ev.Data,
	}
}

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events on every non-nil field.
type EventCriteria struct {
	Name    *string
	Stash   *common.Bytes32
	Account *common.Address
	Cluster *common.Address
}

// EventFilter matches events satisfying any of the criteria.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

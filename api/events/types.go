// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/logdb"
)

type Event struct {
	Seq       uint64            `json:"seq"`
	Index     uint32            `json:"index"`
	Timestamp uint64            `json:"timestamp"`
	Name      string            `json:"name"`
	Stash     *common.Bytes32   `json:"stash,omitempty"`
	Account   *common.Address   `json:"account,omitempty"`
	Cluster   *common.Address   `json:"cluster,omitempty"`
	Data      map[string]string `json:"data"`
}

func convertEvent(e *logdb.Event) *Event {
	ev := &Event{
		Seq:       e.Seq,
		Index:     e.Index,
		Timestamp: e.Timestamp,
		Name:      e.Name,
		Data:      e.Data,
	}
	if !e.Stash.IsZero() {
		stash := e.Stash
		ev.Stash = &stash
	}
	if !e.Account.IsZero() {
		account := e.Account
		ev.Account = &account
	}
	if !e.Cluster.IsZero() {
		cluster := e.Cluster
		ev.Cluster = &cluster
	}
	return ev
}

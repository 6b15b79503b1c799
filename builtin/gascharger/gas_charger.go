// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gascharger tallies the storage cost of one ledger operation.
package gascharger

import (
	"fmt"

	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
)

type Charger struct {
	sloadOps       uint64
	sstoreSetOps   uint64
	sstoreResetOps uint64
	customGas      uint64
	totalGas       uint64
}

func New() *Charger {
	return &Charger{}
}

func (c *Charger) Charge(gas uint64) {
	c.totalGas += gas

	switch {
	case gas == 0:
	// Handle multiples and single operations
	case gas%solidity.SstoreSetGas == 0:
		c.sstoreSetOps += gas / solidity.SstoreSetGas
	case gas%solidity.SstoreResetGas == 0:
		c.sstoreResetOps += gas / solidity.SstoreResetGas
	case gas%solidity.SloadGas == 0:
		c.sloadOps += gas / solidity.SloadGas
	default:
		c.customGas += gas
	}
}

func (c *Charger) Breakdown() string {
	return fmt.Sprintf(
		"SLOAD: %d ops (%d gas) | SSTORE_SET: %d ops (%d gas) | SSTORE_RESET: %d ops (%d gas) | CUSTOM: %d gas | TOTAL: %d gas",
		c.sloadOps,
		c.sloadOps*solidity.SloadGas,
		c.sstoreSetOps,
		c.sstoreSetOps*solidity.SstoreSetGas,
		c.sstoreResetOps,
		c.sstoreResetOps*solidity.SstoreResetGas,
		c.customGas,
		c.totalGas,
	)
}

func (c *Charger) TotalGas() uint64 {
	return c.totalGas
}

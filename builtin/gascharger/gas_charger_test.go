// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
)

func TestCharger(t *testing.T) {
	c := New()
	c.Charge(0)
	c.Charge(2 * solidity.SstoreSetGas)
	c.Charge(solidity.SstoreResetGas)
	c.Charge(3 * solidity.SloadGas)
	c.Charge(7)

	assert.Equal(t, 2*solidity.SstoreSetGas+solidity.SstoreResetGas+3*solidity.SloadGas+7, c.TotalGas())
	assert.Equal(t, uint64(2), c.sstoreSetOps)
	assert.Equal(t, uint64(1), c.sstoreResetOps)
	assert.Equal(t, uint64(3), c.sloadOps)
	assert.Equal(t, uint64(7), c.customGas)
	assert.Contains(t, c.Breakdown(), "SSTORE_SET: 2 ops (40000 gas)")
}

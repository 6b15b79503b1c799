// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/state"
)

type contract struct {
	name    string
	Address common.Address
}

func newContract(name string) *contract {
	return &contract{
		name,
		common.BytesToAddress([]byte(name)),
	}
}

func (c *contract) Name() string {
	return c.name
}

func (c *contract) context(state *state.State, charge solidity.UseGasFunc) *solidity.Context {
	return solidity.NewContext(c.Address, state, charge)
}

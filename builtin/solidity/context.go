// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/state"
)

type UseGasFunc func(gas uint64)

// Context binds typed storage to the slots of one address.
type Context struct {
	address common.Address
	state   *state.State
	charger UseGasFunc
}

func NewContext(address common.Address, state *state.State, charger UseGasFunc) *Context {
	return &Context{
		address: address,
		state:   state,
		charger: charger,
	}
}

func (c *Context) Address() common.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// WithCharger returns a context over the same address and state charging to charger.
func (c *Context) WithCharger(charger UseGasFunc) *Context {
	return &Context{address: c.address, state: c.state, charger: charger}
}

func (c *Context) UseGas(gas uint64) {
	if c.charger != nil {
		c.charger(gas)
	}
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/marlinprotocol/contracts-sub002/common"
)

// ConfigVariable is a named numeric setting with a default used until it is first written.
type ConfigVariable struct {
	slot         common.Bytes32
	name         string
	defaultValue *big.Int
}

func NewConfigVariable(name string, defaultValue *big.Int) *ConfigVariable {
	return &ConfigVariable{
		slot:         common.BytesToBytes32([]byte(name)),
		name:         name,
		defaultValue: defaultValue,
	}
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Slot() common.Bytes32 {
	return c.slot
}

func (c *ConfigVariable) Default() *big.Int {
	return new(big.Int).Set(c.defaultValue)
}

// Get returns the stored value, or the default when never written.
func (c *ConfigVariable) Get(ctx *Context) (*big.Int, error) {
	var value *big.Int
	err := ctx.state.DecodeStorage(ctx.address, c.slot, func(raw []byte) error {
		ctx.UseGas(SloadGas)
		if len(raw) == 0 {
			return nil
		}
		value = new(big.Int)
		return rlp.DecodeBytes(raw, value)
	})
	if err != nil {
		return nil, err
	}
	if value == nil {
		return c.Default(), nil
	}
	return value, nil
}

// Set stores the value. Zero is a valid setting distinct from unset.
func (c *ConfigVariable) Set(ctx *Context, value *big.Int) error {
	if _, err := ToUint256(value); err != nil {
		return err
	}
	return ctx.state.EncodeStorage(ctx.address, c.slot, func() ([]byte, error) {
		ctx.UseGas(SstoreResetGas)
		return rlp.EncodeToBytes(value)
	})
}

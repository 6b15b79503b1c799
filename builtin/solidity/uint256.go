// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/common"
)

// Uint256 is an unsigned 256 bits integer stored as a word.
type Uint256 struct {
	context *Context
	pos     common.Bytes32
}

func NewUint256(context *Context, pos common.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	u.context.UseGas(SloadGas)
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) error {
	v, err := ToUint256(value)
	if err != nil {
		return err
	}
	u.context.UseGas(SstoreResetGas)
	u.context.state.SetStorage(u.context.address, u.pos, common.Bytes32(v.Bytes32()))
	return nil
}

func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(storage.Add(storage, value))
}

func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	if storage.Cmp(value) < 0 {
		return errors.New("uint256 underflow")
	}
	return u.Set(storage.Sub(storage, value))
}

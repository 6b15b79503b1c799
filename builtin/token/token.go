// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements a fungible token kept in state: balances,
// allowances and a total supply.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/common"
)

var (
	slotBalances   = common.BytesToBytes32([]byte("balances"))
	slotAllowances = common.BytesToBytes32([]byte("allowances"))
	slotSupply     = common.BytesToBytes32([]byte("total-supply"))
	slotMeta       = common.BytesToBytes32([]byte("meta"))
)

type allowanceKey struct {
	owner   common.Address
	spender common.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Meta describes the token.
type Meta struct {
	Name     string
	Symbol   string
	Decimals uint8
}

type Token struct {
	addr       common.Address
	balances   *solidity.Mapping[common.Address, *big.Int]
	allowances *solidity.Mapping[allowanceKey, *big.Int]
	supply     *solidity.Uint256
	meta       *solidity.Raw[*Meta]
}

func New(sctx *solidity.Context) *Token {
	return &Token{
		addr:       sctx.Address(),
		balances:   solidity.NewMapping[common.Address, *big.Int](sctx, slotBalances),
		allowances: solidity.NewMapping[allowanceKey, *big.Int](sctx, slotAllowances),
		supply:     solidity.NewUint256(sctx, slotSupply),
		meta:       solidity.NewRaw[*Meta](sctx, slotMeta),
	}
}

// Address returns the handle address of the token.
func (t *Token) Address() common.Address {
	return t.addr
}

func (t *Token) Initialize(meta *Meta) error {
	return t.meta.Upsert(meta)
}

// Meta returns nil for an uninitialized token.
func (t *Token) Meta() (*Meta, error) {
	return t.meta.Get()
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

func (t *Token) BalanceOf(owner common.Address) (*big.Int, error) {
	bal, err := t.balances.Get(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

func (t *Token) Allowance(owner, spender common.Address) (*big.Int, error) {
	v, err := t.allowances.Get(allowanceKey{owner, spender})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allowance")
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// Mint creates amount for to.
func (t *Token) Mint(to common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidInput, "negative amount")
	}
	if err := t.supply.Add(amount); err != nil {
		return errors.Wrap(err, "failed to update supply")
	}
	return t.addBalance(to, amount)
}

func (t *Token) Approve(owner, spender common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidInput, "negative amount")
	}
	if err := t.allowances.Upsert(allowanceKey{owner, spender}, new(big.Int).Set(amount)); err != nil {
		return errors.Wrap(err, "failed to set allowance")
	}
	return nil
}

// Transfer moves amount from the caller to to.
func (t *Token) Transfer(from, to common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidInput, "negative amount")
	}
	if err := t.subBalance(from, amount); err != nil {
		return err
	}
	return t.addBalance(to, amount)
}

// TransferFrom moves amount from from to to, spending the allowance granted to spender.
// An allowance of max uint256 is never decreased.
func (t *Token) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidInput, "negative amount")
	}
	allowance, err := t.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return reverts.New(reverts.TransferFailed, "insufficient allowance")
	}
	if allowance.Cmp(common.MaxUint256) != 0 {
		if err := t.allowances.Update(allowanceKey{from, spender}, allowance.Sub(allowance, amount)); err != nil {
			return errors.Wrap(err, "failed to set allowance")
		}
	}
	return t.Transfer(from, to, amount)
}

func (t *Token) addBalance(addr common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := t.BalanceOf(addr)
	if err != nil {
		return err
	}
	bal.Add(bal, amount)
	if _, err := solidity.ToUint256(bal); err != nil {
		return reverts.New(reverts.TransferFailed, "balance overflow")
	}
	return t.balances.Upsert(addr, bal)
}

func (t *Token) subBalance(addr common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := t.BalanceOf(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.New(reverts.TransferFailed, "insufficient balance")
	}
	bal.Sub(bal, amount)
	if bal.Sign() == 0 {
		t.balances.Delete(addr)
		return nil
	}
	return t.balances.Update(addr, bal)
}

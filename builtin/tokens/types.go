// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"math/big"

	"github.com/marlinprotocol/contracts-sub002/common"
)

// Status of a token id in the registry.
type Status uint8

const (
	Unknown Status = iota
	Active
	Inactive
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// Handle is the fungible token a registered id refers to.
type Handle interface {
	BalanceOf(owner common.Address) (*big.Int, error)
	Transfer(from, to common.Address, amount *big.Int) error
	TransferFrom(spender, from, to common.Address, amount *big.Int) error
	Approve(owner, spender common.Address, amount *big.Int) error
}

// Resolver returns the handle deployed at an address.
type Resolver func(handle common.Address) Handle

// Descriptor is the registry record of a token.
type Descriptor struct {
	ID           common.Bytes32
	Handle       common.Address
	Delegatable  bool
	RewardFactor *big.Int
}

type entry struct {
	Handle       common.Address
	Delegatable  bool
	RewardFactor *big.Int
}

// ID derives the token id from the handle address.
func ID(handle common.Address) common.Bytes32 {
	return common.Keccak256(handle.Bytes())
}

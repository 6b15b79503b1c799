// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	SloadGas       uint64 = 200
	SstoreSetGas   uint64 = 20000
	SstoreResetGas uint64 = 5000
)

// slots returns the count of 32 bytes words occupied by an encoded value, at least 1.
func slots(length int) uint64 {
	if length == 0 {
		return 1
	}
	return (uint64(length) + 31) / 32
}

// ErrOverflow is returned when a value does not fit in 256 bits.
var ErrOverflow = errors.New("uint256 overflow")

// ToUint256 checks v is a valid unsigned 256 bits integer.
func ToUint256(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, errors.New("negative uint256")
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrOverflow
	}
	return u, nil
}

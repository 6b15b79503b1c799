// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package common

import "math/big"

var (
	// Ether is 1e18 base units.
	Ether = big.NewInt(1e18)

	// MaxUint256 is the largest value storable in a contract slot.
	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// Units returns n * 1e18 as a new big int.
func Units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Ether)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/marlinprotocol/contracts-sub002/common"
)

// Address accepts either a 0x-prefixed hex address or a short alias such as
// "alice", which maps to the address holding the alias bytes.
type Address common.Address

func (a *Address) UnmarshalYAML(node *yaml.Node) error {
	addr, err := ParseAccount(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*a = Address(addr)
	return nil
}

func (a Address) MarshalYAML() (any, error) {
	return common.Address(a).String(), nil
}

// Common returns the address as a common.Address.
func (a Address) Common() common.Address {
	return common.Address(a)
}

// ParseAccount parses a hex address or an alias.
func ParseAccount(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return common.ParseAddress(s)
	}
	if s == "" || len(s) > common.AddressLength {
		return common.Address{}, fmt.Errorf("invalid account %q", s)
	}
	return common.BytesToAddress([]byte(s)), nil
}

// Amount is a non-negative integer written in decimal, 0x hex, or with a
// decimal exponent like 5e18.
type Amount big.Int

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseAmount(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*a = Amount(*v)
	return nil
}

func (a *Amount) MarshalYAML() (any, error) {
	return a.Big().String(), nil
}

// Big returns a copy of the amount, zero when a is nil.
func (a *Amount) Big() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

// NewAmount wraps v.
func NewAmount(v *big.Int) *Amount {
	return (*Amount)(new(big.Int).Set(v))
}

// ParseAmount parses an Amount literal.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	mantissa, exp, hasExp := s, "", false
	if !strings.HasPrefix(s, "0x") {
		if i := strings.IndexAny(s, "eE"); i >= 0 {
			mantissa, exp, hasExp = s[:i], s[i+1:], true
		}
	}
	v, ok := new(big.Int).SetString(mantissa, 0)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if hasExp {
		e, err := strconv.ParseUint(exp, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid amount exponent %q", s)
		}
		v.Mul(v, new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(e), nil))
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return v, nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/marlinprotocol/contracts-sub002/builtin/acl"
	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/builtin/tokens"
	"github.com/marlinprotocol/contracts-sub002/common"
)

// admin runs fn as an operation restricted to the admin role.
func (s *Staker) admin(op string, caller common.Address, fn func() error, ctx ...any) error {
	err := s.run(func() error {
		if err := s.roles.Check(acl.Admin, caller); err != nil {
			return err
		}
		return fn()
	})
	if err != nil {
		logger.Info(op+" failed", append(ctx, "caller", caller, "error", err)...)
		return err
	}
	logger.Info(op, ctx...)
	return nil
}

func (s *Staker) tokenAdmin() (TokenAdmin, error) {
	t, ok := s.tokens.(TokenAdmin)
	if !ok {
		return nil, reverts.New(reverts.InvalidInput, "token registry is read only")
	}
	return t, nil
}

// SetParam changes a runtime parameter. Admin only.
func (s *Staker) SetParam(caller common.Address, v *solidity.ConfigVariable, value *big.Int) error {
	return s.admin("set param", caller, func() error {
		if value == nil || value.Sign() < 0 {
			return reverts.New(reverts.InvalidInput, "negative parameter value")
		}
		return s.params.Set(v, value)
	}, "name", v.Name(), "value", value)
}

// SetRewardToken selects the registered token rewards are paid in. Admin only.
func (s *Staker) SetRewardToken(caller common.Address, id common.Bytes32) error {
	return s.admin("set reward token", caller, func() error {
		status, err := s.tokens.Status(id)
		if err != nil {
			return err
		}
		if status == tokens.Unknown {
			return reverts.Newf(reverts.NotFound, "token %v not registered", id)
		}
		return s.params.SetRewardTokenID(id)
	}, "token", id)
}

// AddToken registers the token at handle. Admin only.
func (s *Staker) AddToken(caller common.Address, handle common.Address, rewardFactor *big.Int) (common.Bytes32, error) {
	var id common.Bytes32
	err := s.admin("add token", caller, func() error {
		t, err := s.tokenAdmin()
		if err != nil {
			return err
		}
		id, err = t.Add(handle, rewardFactor)
		return err
	}, "handle", handle, "rewardFactor", rewardFactor)
	return id, err
}

// SetRewardFactor changes the weight of a token. It applies to credits distributed from
// now on. Admin only.
func (s *Staker) SetRewardFactor(caller common.Address, id common.Bytes32, rewardFactor *big.Int) error {
	return s.admin("set reward factor", caller, func() error {
		t, err := s.tokenAdmin()
		if err != nil {
			return err
		}
		return t.SetRewardFactor(id, rewardFactor)
	}, "token", id, "rewardFactor", rewardFactor)
}

// EnableToken accepts new deposits of a token. Admin only.
func (s *Staker) EnableToken(caller common.Address, id common.Bytes32) error {
	return s.admin("enable token", caller, func() error {
		t, err := s.tokenAdmin()
		if err != nil {
			return err
		}
		return t.Enable(id)
	}, "token", id)
}

// DisableToken rejects new deposits of a token; staked balances keep earning. Admin only.
func (s *Staker) DisableToken(caller common.Address, id common.Bytes32) error {
	return s.admin("disable token", caller, func() error {
		t, err := s.tokenAdmin()
		if err != nil {
			return err
		}
		return t.Disable(id)
	}, "token", id)
}

// GrantRole gives addr a role. Admin only.
func (s *Staker) GrantRole(caller common.Address, role acl.Role, addr common.Address) error {
	return s.admin("grant role", caller, func() error {
		return s.roles.Grant(role, addr)
	}, "role", role, "addr", addr)
}

// RevokeRole takes a role from addr. Admin only.
func (s *Staker) RevokeRole(caller common.Address, role acl.Role, addr common.Address) error {
	return s.admin("revoke role", caller, func() error {
		if role == acl.Admin && addr == caller {
			return reverts.New(reverts.InvalidInput, "admin cannot revoke itself")
		}
		s.roles.Revoke(role, addr)
		return nil
	}, "role", role, "addr", addr)
}

// HasRole reports whether addr holds role.
func (s *Staker) HasRole(role acl.Role, addr common.Address) (bool, error) {
	return s.roles.HasRole(role, addr)
}

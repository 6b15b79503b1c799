// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package acl keeps role membership.
package acl

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/common"
)

type Role uint8

const (
	Admin Role = iota + 1
	Feeder
)

func (r Role) String() string {
	switch r {
	case Admin:
		return "admin"
	case Feeder:
		return "feeder"
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return Admin, nil
	case "feeder":
		return Feeder, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

var slotMembers = common.BytesToBytes32([]byte("members"))

type memberKey struct {
	role Role
	addr common.Address
}

func (k memberKey) Bytes() []byte {
	return append([]byte{byte(k.role)}, k.addr.Bytes()...)
}

type ACL struct {
	members *solidity.Mapping[memberKey, bool]
}

func New(sctx *solidity.Context) *ACL {
	return &ACL{
		members: solidity.NewMapping[memberKey, bool](sctx, slotMembers),
	}
}

func (a *ACL) HasRole(role Role, addr common.Address) (bool, error) {
	ok, err := a.members.Get(memberKey{role, addr})
	if err != nil {
		return false, errors.Wrap(err, "failed to get role")
	}
	return ok, nil
}

func (a *ACL) Grant(role Role, addr common.Address) error {
	return a.members.Upsert(memberKey{role, addr}, true)
}

func (a *ACL) Revoke(role Role, addr common.Address) {
	a.members.Delete(memberKey{role, addr})
}

// Check returns an Unauthorized revert unless addr holds role.
func (a *ACL) Check(role Role, addr common.Address) error {
	ok, err := a.HasRole(role, addr)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Newf(reverts.Unauthorized, "%v is not %v", addr, role)
	}
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin binds the ledger contracts to their fixed addresses.
package builtin

import (
	"github.com/marlinprotocol/contracts-sub002/builtin/acl"
	"github.com/marlinprotocol/contracts-sub002/builtin/clusters"
	"github.com/marlinprotocol/contracts-sub002/builtin/gascharger"
	"github.com/marlinprotocol/contracts-sub002/builtin/params"
	"github.com/marlinprotocol/contracts-sub002/builtin/solidity"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker"
	"github.com/marlinprotocol/contracts-sub002/builtin/token"
	"github.com/marlinprotocol/contracts-sub002/builtin/tokens"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/state"
)

// Builtin contracts binding.
var (
	Params   = &paramsContract{newContract("Params")}
	ACL      = &aclContract{newContract("ACL")}
	Tokens   = &tokensContract{newContract("Tokens")}
	Clusters = &clustersContract{newContract("Clusters")}
	Staker   = &stakerContract{newContract("Staker")}
)

type (
	paramsContract   struct{ *contract }
	aclContract      struct{ *contract }
	tokensContract   struct{ *contract }
	clustersContract struct{ *contract }
	stakerContract   struct{ *contract }
)

func (p *paramsContract) WithState(state *state.State) *params.Params {
	return params.New(p.context(state, nil))
}

func (a *aclContract) WithState(state *state.State) *acl.ACL {
	return acl.New(a.context(state, nil))
}

func (t *tokensContract) WithState(state *state.State) *tokens.Registry {
	return tokens.New(t.context(state, nil), Resolver(state))
}

func (c *clustersContract) WithState(state *state.State) *clusters.Registry {
	return clusters.New(c.context(state, nil))
}

// WithState binds the staker and its registries to state, metering every
// storage access on charger. charger may be nil.
func (s *stakerContract) WithState(state *state.State, charger *gascharger.Charger) *staker.Staker {
	var charge solidity.UseGasFunc
	if charger != nil {
		charge = charger.Charge
	}
	return staker.New(
		s.Address,
		state,
		params.New(Params.context(state, charge)),
		acl.New(ACL.context(state, charge)),
		tokens.New(Tokens.context(state, charge), Resolver(state)),
		clusters.New(Clusters.context(state, charge)),
		charger,
	)
}

// TokenAt binds the token deployed at addr.
func TokenAt(addr common.Address, state *state.State) *token.Token {
	return token.New(solidity.NewContext(addr, state, nil))
}

// Resolver resolves token handles on state.
func Resolver(state *state.State) tokens.Resolver {
	return func(addr common.Address) tokens.Handle {
		return TokenAt(addr, state)
	}
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes and builds the initial ledger state.
package genesis

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/marlinprotocol/contracts-sub002/builtin"
	"github.com/marlinprotocol/contracts-sub002/builtin/acl"
	"github.com/marlinprotocol/contracts-sub002/builtin/clusters"
	"github.com/marlinprotocol/contracts-sub002/builtin/params"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker"
	"github.com/marlinprotocol/contracts-sub002/builtin/token"
	"github.com/marlinprotocol/contracts-sub002/builtin/tokens"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/state"
)

// Genesis is the user supplied initial state.
type Genesis struct {
	LaunchTime uint64             `yaml:"launchTime"`
	Roles      []Role             `yaml:"roles"`
	Tokens     []Token            `yaml:"tokens"`
	Clusters   []Cluster          `yaml:"clusters"`
	Networks   []Network          `yaml:"networks"`
	Params     map[string]*Amount `yaml:"params,omitempty"`
	RewardPool *Amount            `yaml:"rewardPool,omitempty"`
}

// Role grants a role to an account.
type Role struct {
	Role    string  `yaml:"role"`
	Address Address `yaml:"address"`
}

// Token is a token contract with initial balances. Balance holders approve the
// staker for their whole balance.
type Token struct {
	Address      Address   `yaml:"address"`
	Name         string    `yaml:"name"`
	Symbol       string    `yaml:"symbol"`
	Decimals     uint8     `yaml:"decimals"`
	RewardFactor *Amount   `yaml:"rewardFactor"`
	Reward       bool      `yaml:"reward,omitempty"`
	Disabled     bool      `yaml:"disabled,omitempty"`
	Balances     []Balance `yaml:"balances,omitempty"`
}

// Balance is an initial token balance.
type Balance struct {
	Address Address `yaml:"address"`
	Amount  *Amount `yaml:"amount"`
}

// Cluster is a registered cluster.
type Cluster struct {
	Address       Address `yaml:"address"`
	Commission    uint64  `yaml:"commission"`
	RewardAddress Address `yaml:"rewardAddress"`
}

// Network is an oracle network, identified by the keccak256 of its name.
type Network struct {
	Name   string  `yaml:"name"`
	Weight *Amount `yaml:"weight"`
}

// NetworkID returns the id of a network name.
func NetworkID(name string) common.Bytes32 {
	return common.Keccak256([]byte(name))
}

// Parse decodes a YAML genesis.
func Parse(data []byte) (*Genesis, error) {
	var gen Genesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &gen, nil
}

// Load reads a YAML genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Apply builds the genesis into st without committing it.
func (g *Genesis) Apply(st *state.State) error {
	b, err := g.Builder()
	if err != nil {
		return err
	}
	_, err = b.Build(st)
	return err
}

// Admin returns the first account granted the admin role.
func (g *Genesis) Admin() (common.Address, bool) {
	for _, r := range g.Roles {
		if r.Role == acl.Admin.String() {
			return r.Address.Common(), true
		}
	}
	return common.Address{}, false
}

func (g *Genesis) validate() error {
	for _, r := range g.Roles {
		if _, err := acl.ParseRole(r.Role); err != nil {
			return err
		}
	}
	rewardTokens := 0
	seen := make(map[common.Address]bool)
	for _, t := range g.Tokens {
		if t.Address.Common().IsZero() {
			return errors.New("token address must be set")
		}
		if seen[t.Address.Common()] {
			return fmt.Errorf("%s: duplicated token", t.Address.Common())
		}
		seen[t.Address.Common()] = true
		if t.RewardFactor == nil {
			return fmt.Errorf("%s: rewardFactor must be set", t.Address.Common())
		}
		if t.Reward {
			rewardTokens++
		}
		for _, bal := range t.Balances {
			if bal.Amount == nil || bal.Amount.Big().Sign() < 1 {
				return fmt.Errorf("%s: balance of %s must be a non-zero integer", t.Address.Common(), bal.Address.Common())
			}
		}
	}
	if rewardTokens > 1 {
		return errors.New("at most one reward token")
	}
	if g.RewardPool != nil && g.RewardPool.Big().Sign() > 0 && rewardTokens == 0 {
		return errors.New("rewardPool needs a reward token")
	}
	for name := range g.Params {
		if _, ok := params.Lookup(name); !ok {
			return fmt.Errorf("unknown param %q", name)
		}
		if name == params.RewardToken.Name() {
			return fmt.Errorf("param %q is derived from the reward token", name)
		}
	}
	for _, c := range g.Clusters {
		if c.Commission > clusters.MaxCommission {
			return fmt.Errorf("%s: commission must be at most %d", c.Address.Common(), clusters.MaxCommission)
		}
	}
	if len(g.Networks) > 0 {
		if _, ok := g.Admin(); !ok {
			return errors.New("networks need an admin role")
		}
	}
	for _, n := range g.Networks {
		if n.Name == "" {
			return errors.New("network name must be set")
		}
		if n.Weight == nil || n.Weight.Big().Sign() < 1 {
			return fmt.Errorf("network %s: weight must be a non-zero integer", n.Name)
		}
	}
	return nil
}

// Builder validates the genesis and returns the builder producing it.
func (g *Genesis) Builder() (*Builder, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	builder := new(Builder).
		State(func(st *state.State) error {
			roles := builtin.ACL.WithState(st)
			for _, r := range g.Roles {
				role, _ := acl.ParseRole(r.Role)
				if err := roles.Grant(role, r.Address.Common()); err != nil {
					return err
				}
			}
			return nil
		}).
		State(func(st *state.State) error {
			registry := builtin.Tokens.WithState(st)
			for _, t := range g.Tokens {
				if err := g.allocToken(st, registry, t); err != nil {
					return err
				}
			}
			return nil
		}).
		State(func(st *state.State) error {
			registry := builtin.Clusters.WithState(st)
			for _, c := range g.Clusters {
				if err := registry.Register(c.Address.Common(), c.Commission, c.RewardAddress.Common()); err != nil {
					return err
				}
			}
			return nil
		}).
		State(func(st *state.State) error {
			p := builtin.Params.WithState(st)
			// sorted for a deterministic write order
			names := make([]string, 0, len(g.Params))
			for name := range g.Params {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				v, _ := params.Lookup(name)
				if err := p.Set(v, g.Params[name].Big()); err != nil {
					return err
				}
			}
			return nil
		})

	if admin, ok := g.Admin(); ok {
		for _, n := range g.Networks {
			id, weight := NetworkID(n.Name), n.Weight.Big()
			builder.Call("add network "+n.Name, func(s *staker.Staker) error {
				return s.AddNetwork(admin, id, weight)
			})
		}
	}
	return builder, nil
}

func (g *Genesis) allocToken(st *state.State, registry *tokens.Registry, t Token) error {
	handle := builtin.TokenAt(t.Address.Common(), st)
	if err := handle.Initialize(&token.Meta{
		Name:     t.Name,
		Symbol:   t.Symbol,
		Decimals: t.Decimals,
	}); err != nil {
		return err
	}
	for _, bal := range t.Balances {
		owner, amount := bal.Address.Common(), bal.Amount.Big()
		if err := handle.Mint(owner, amount); err != nil {
			return err
		}
		if err := handle.Approve(owner, builtin.Staker.Address, amount); err != nil {
			return err
		}
	}

	id, err := registry.Add(t.Address.Common(), t.RewardFactor.Big())
	if err != nil {
		return err
	}
	if t.Disabled {
		if err := registry.Disable(id); err != nil {
			return err
		}
	}
	if t.Reward {
		if err := builtin.Params.WithState(st).SetRewardTokenID(id); err != nil {
			return err
		}
		if pool := g.RewardPool.Big(); pool.Sign() > 0 {
			if err := handle.Mint(staker.RewardPool, pool); err != nil {
				return err
			}
		}
	}
	return nil
}

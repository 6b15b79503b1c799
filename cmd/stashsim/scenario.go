// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/marlinprotocol/contracts-sub002/builtin/acl"
	"github.com/marlinprotocol/contracts-sub002/builtin/params"
	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/stash"
	"github.com/marlinprotocol/contracts-sub002/builtin/tokens"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/genesis"
	"github.com/marlinprotocol/contracts-sub002/ledger"
)

// Scenario is a genesis plus a list of operations replayed against it.
// Without a genesis the devnet is used.
type Scenario struct {
	Genesis *genesis.Genesis `yaml:"genesis,omitempty"`
	Steps   []Step           `yaml:"steps"`
}

// Step is one operation. At is in seconds after the genesis launch time and
// never goes backwards; zero keeps the time of the previous step.
type Step struct {
	Op     string            `yaml:"op"`
	Caller string            `yaml:"caller"`
	At     uint64            `yaml:"at,omitempty"`
	As     string            `yaml:"as,omitempty"`
	Expect string            `yaml:"expect,omitempty"`
	Args   map[string]string `yaml:"args,omitempty"`
}

// StepResult reports how a step went.
type StepResult struct {
	Index  int
	Op     string
	Seq    uint64
	Err    error
	Events []*staker.Event
}

// Failed reports whether the step did not end the way it expected.
func (r *StepResult) Failed() bool {
	return r.Err != nil
}

// ParseScenario decodes a scenario and checks its steps are well formed.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if sc.Genesis == nil {
		sc.Genesis = genesis.NewDevnet()
	}
	for i, step := range sc.Steps {
		if _, ok := operations[step.Op]; !ok {
			return nil, fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
		if _, err := genesis.ParseAccount(step.Caller); err != nil {
			return nil, errors.Wrapf(err, "step %d: caller", i)
		}
	}
	return &sc, nil
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

type runner struct {
	gen     *genesis.Genesis
	l       *ledger.Ledger
	now     uint64
	symbols map[string]common.Bytes32
	labels  map[string]common.Bytes32
	aliases map[string]common.Address
}

func newRunner(gen *genesis.Genesis, l *ledger.Ledger) *runner {
	r := &runner{
		gen:     gen,
		l:       l,
		now:     gen.LaunchTime,
		symbols: make(map[string]common.Bytes32),
		labels:  make(map[string]common.Bytes32),
		aliases: make(map[string]common.Address),
	}
	for i, acc := range genesis.DevAccounts() {
		r.aliases[fmt.Sprintf("dev%d", i)] = acc.Address
	}
	for _, t := range gen.Tokens {
		r.symbols[strings.ToUpper(t.Symbol)] = tokens.ID(t.Address.Common())
	}
	return r
}

// Run replays every step of the scenario. A step whose outcome differs from
// what it expects is reported in its result; run continues with the next one.
// progress, when set, is called after each step.
func (r *runner) Run(steps []Step, progress func(*StepResult)) []*StepResult {
	results := make([]*StepResult, 0, len(steps))
	for i, step := range steps {
		res := r.step(i, step)
		results = append(results, res)
		if progress != nil {
			progress(res)
		}
	}
	return results
}

func (r *runner) step(i int, step Step) *StepResult {
	res := &StepResult{Index: i, Op: step.Op}
	if at := r.gen.LaunchTime + step.At; step.At > 0 && at > r.now {
		r.now = at
	}
	caller, err := r.account(step.Caller)
	if err != nil {
		res.Err = err
		return res
	}

	var label common.Bytes32
	receipt, err := r.l.Do(ledger.Op{Name: step.Op, Caller: caller, Timestamp: r.now}, func(s *staker.Staker) error {
		id, err := operations[step.Op](r, s, caller, args(step.Args))
		label = id
		return err
	})

	switch {
	case err == nil && step.Expect != "":
		res.Err = fmt.Errorf("expected %v, succeeded", step.Expect)
	case err != nil && step.Expect == "":
		res.Err = err
	case err != nil && reverts.KindOf(err).String() != step.Expect:
		res.Err = errors.Wrapf(err, "expected %v, got %v", step.Expect, reverts.KindOf(err))
	}
	if receipt != nil {
		res.Seq = receipt.Seq
		res.Events = receipt.Events
		if step.As != "" && !label.IsZero() {
			r.labels[step.As] = label
		}
	}
	return res
}

// Stashes returns the labelled stashes still open, keyed by label.
func (r *runner) Stashes() (map[string]*stash.Stash, error) {
	out := make(map[string]*stash.Stash, len(r.labels))
	err := r.l.View(func(s *staker.Staker) error {
		for name, id := range r.labels {
			st, err := s.GetStash(id)
			if err != nil {
				return err
			}
			if st != nil && !st.IsEmpty() {
				out[name] = st
			}
		}
		return nil
	})
	return out, err
}

// account resolves devN to the dev accounts, anything else as in genesis files.
func (r *runner) account(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if addr, ok := r.aliases[s]; ok {
		return addr, nil
	}
	addr, err := genesis.ParseAccount(s)
	if err != nil {
		return common.Address{}, reverts.New(reverts.InvalidInput, err.Error())
	}
	return addr, nil
}

func (r *runner) token(s string) (common.Bytes32, error) {
	if id, ok := r.symbols[strings.ToUpper(s)]; ok {
		return id, nil
	}
	switch len(s) {
	case 2 + common.AddressLength*2:
		handle, err := common.ParseAddress(s)
		if err != nil {
			return common.Bytes32{}, err
		}
		return tokens.ID(handle), nil
	case 2 + len(common.Bytes32{})*2:
		return common.ParseBytes32(s)
	}
	return common.Bytes32{}, reverts.Newf(reverts.InvalidInput, "unknown token %q", s)
}

func (r *runner) stash(s string) (common.Bytes32, error) {
	if id, ok := r.labels[s]; ok {
		return id, nil
	}
	if strings.HasPrefix(s, "0x") {
		return common.ParseBytes32(s)
	}
	return common.Bytes32{}, reverts.Newf(reverts.InvalidInput, "unknown stash %q", s)
}

// args are the raw string arguments of a step.
type args map[string]string

func (a args) get(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == "" {
		return "", reverts.Newf(reverts.InvalidInput, "missing argument %q", name)
	}
	return v, nil
}

func (a args) account(r *runner, name string) (common.Address, error) {
	v, err := a.get(name)
	if err != nil {
		return common.Address{}, err
	}
	return r.account(v)
}

func (a args) amount(name string) (*big.Int, error) {
	v, err := a.get(name)
	if err != nil {
		return nil, err
	}
	amount, err := genesis.ParseAmount(v)
	if err != nil {
		return nil, reverts.New(reverts.InvalidInput, err.Error())
	}
	return amount, nil
}

func (a args) uint64(name string) (uint64, error) {
	v, err := a.amount(name)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, reverts.Newf(reverts.InvalidInput, "argument %q out of range", name)
	}
	return v.Uint64(), nil
}

func (a args) stash(r *runner, name string) (common.Bytes32, error) {
	v, err := a.get(name)
	if err != nil {
		return common.Bytes32{}, err
	}
	return r.stash(v)
}

func (a args) token(r *runner, name string) (common.Bytes32, error) {
	v, err := a.get(name)
	if err != nil {
		return common.Bytes32{}, err
	}
	return r.token(v)
}

// pairs splits "k1:v1,k2:v2" into its keys and values in the given order.
func (a args) pairs(name string) ([]string, []string, error) {
	v, err := a.get(name)
	if err != nil {
		return nil, nil, err
	}
	var keys, values []string
	for _, item := range strings.Split(v, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(item), ":")
		if !ok {
			return nil, nil, reverts.Newf(reverts.InvalidInput, "argument %q: malformed pair %q", name, item)
		}
		keys = append(keys, strings.TrimSpace(k))
		values = append(values, strings.TrimSpace(val))
	}
	return keys, values, nil
}

// tokenAmounts parses "POND:100,MPOND:2e18".
func (a args) tokenAmounts(r *runner, name string) ([]common.Bytes32, []*big.Int, error) {
	keys, values, err := a.pairs(name)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]common.Bytes32, len(keys))
	amounts := make([]*big.Int, len(keys))
	for i := range keys {
		if ids[i], err = r.token(keys[i]); err != nil {
			return nil, nil, err
		}
		if amounts[i], err = genesis.ParseAmount(values[i]); err != nil {
			return nil, nil, reverts.New(reverts.InvalidInput, err.Error())
		}
	}
	return ids, amounts, nil
}

type operation func(r *runner, s *staker.Staker, caller common.Address, a args) (common.Bytes32, error)

// noID adapts operations that create nothing worth labelling.
func noID(fn func(r *runner, s *staker.Staker, caller common.Address, a args) error) operation {
	return func(r *runner, s *staker.Staker, caller common.Address, a args) (common.Bytes32, error) {
		return common.Bytes32{}, fn(r, s, caller, a)
	}
}

var operations map[string]operation

func init() {
	operations = map[string]operation{
		"create-stash": func(r *runner, s *staker.Staker, caller common.Address, a args) (common.Bytes32, error) {
			ids, amounts, err := a.tokenAmounts(r, "tokens")
			if err != nil {
				return common.Bytes32{}, err
			}
			id, err := s.CreateStash(caller, ids, amounts)
			if err != nil {
				return common.Bytes32{}, err
			}
			if _, ok := a["cluster"]; ok {
				cluster, err := a.account(r, "cluster")
				if err != nil {
					return common.Bytes32{}, err
				}
				if err := s.DelegateStash(caller, id, cluster, r.now); err != nil {
					return common.Bytes32{}, err
				}
			}
			return id, nil
		},
		"add-to-stash": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			id, err := a.stash(r, "stash")
			if err != nil {
				return err
			}
			ids, amounts, err := a.tokenAmounts(r, "tokens")
			if err != nil {
				return err
			}
			return s.AddToStash(caller, id, ids, amounts)
		}),
		"delegate": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			id, err := a.stash(r, "stash")
			if err != nil {
				return err
			}
			cluster, err := a.account(r, "cluster")
			if err != nil {
				return err
			}
			return s.DelegateStash(caller, id, cluster, r.now)
		}),
		"request-redelegation": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			id, err := a.stash(r, "stash")
			if err != nil {
				return err
			}
			cluster, err := a.account(r, "cluster")
			if err != nil {
				return err
			}
			return s.RequestStashRedelegation(caller, id, cluster, r.now)
		}),
		"redelegate": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			id, err := a.stash(r, "stash")
			if err != nil {
				return err
			}
			return s.RedelegateStash(caller, id, r.now)
		}),
		"cancel-redelegation": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			id, err := a.stash(r, "stash")
			if err != nil {
				return err
			}
			return s.CancelRedelegation(caller, id)
		}),
		"undelegate": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			id, err := a.stash(r, "stash")
			if err != nil {
				return err
			}
			return s.UndelegateStash(caller, id, r.now)
		}),
		"cancel-undelegation": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			id, err := a.stash(r, "stash")
			if err != nil {
				return err
			}
			return s.CancelUndelegation(caller, id, r.now)
		}),
		"withdraw-stash": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			id, err := a.stash(r, "stash")
			if err != nil {
				return err
			}
			if _, ok := a["tokens"]; !ok {
				return s.WithdrawStash(caller, id, r.now)
			}
			ids, amounts, err := a.tokenAmounts(r, "tokens")
			if err != nil {
				return err
			}
			return s.WithdrawStashTokens(caller, id, ids, amounts, r.now)
		}),
		"split-stash": func(r *runner, s *staker.Staker, caller common.Address, a args) (common.Bytes32, error) {
			id, err := a.stash(r, "stash")
			if err != nil {
				return common.Bytes32{}, err
			}
			ids, amounts, err := a.tokenAmounts(r, "tokens")
			if err != nil {
				return common.Bytes32{}, err
			}
			return s.SplitStash(caller, id, ids, amounts, r.now)
		},
		"merge-stash": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			from, err := a.stash(r, "from")
			if err != nil {
				return err
			}
			into, err := a.stash(r, "into")
			if err != nil {
				return err
			}
			return s.MergeStash(caller, from, into, r.now)
		}),
		"feed": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			network, err := a.get("network")
			if err != nil {
				return err
			}
			epoch, err := a.uint64("epoch")
			if err != nil {
				return err
			}
			keys, values, err := a.pairs("payouts")
			if err != nil {
				return err
			}
			clusters := make([]common.Address, len(keys))
			payouts := make([]*big.Int, len(keys))
			for i := range keys {
				if clusters[i], err = r.account(keys[i]); err != nil {
					return reverts.New(reverts.InvalidInput, err.Error())
				}
				if payouts[i], err = genesis.ParseAmount(values[i]); err != nil {
					return reverts.New(reverts.InvalidInput, err.Error())
				}
			}
			_, err = s.Feed(caller, genesis.NetworkID(network), clusters, payouts, epoch, r.now)
			return err
		}),
		"update-rewards": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			cluster, err := a.account(r, "cluster")
			if err != nil {
				return err
			}
			return s.UpdateRewards(cluster)
		}),
		"withdraw-rewards": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			list, err := a.get("clusters")
			if err != nil {
				return err
			}
			var clusters []common.Address
			for _, item := range strings.Split(list, ",") {
				cluster, err := r.account(item)
				if err != nil {
					return reverts.New(reverts.InvalidInput, err.Error())
				}
				clusters = append(clusters, cluster)
			}
			_, err = s.WithdrawRewardsBatch(caller, clusters)
			return err
		}),
		"set-param": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			name, err := a.get("name")
			if err != nil {
				return err
			}
			v, ok := params.Lookup(name)
			if !ok {
				return reverts.Newf(reverts.InvalidInput, "unknown param %q", name)
			}
			value, err := a.amount("value")
			if err != nil {
				return err
			}
			return s.SetParam(caller, v, value)
		}),
		"set-reward-token": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			id, err := a.token(r, "token")
			if err != nil {
				return err
			}
			return s.SetRewardToken(caller, id)
		}),
		"add-token": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			handle, err := a.account(r, "handle")
			if err != nil {
				return err
			}
			factor, err := a.amount("factor")
			if err != nil {
				return err
			}
			_, err = s.AddToken(caller, handle, factor)
			return err
		}),
		"set-reward-factor": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			id, err := a.token(r, "token")
			if err != nil {
				return err
			}
			factor, err := a.amount("factor")
			if err != nil {
				return err
			}
			return s.SetRewardFactor(caller, id, factor)
		}),
		"enable-token": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			id, err := a.token(r, "token")
			if err != nil {
				return err
			}
			return s.EnableToken(caller, id)
		}),
		"disable-token": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			id, err := a.token(r, "token")
			if err != nil {
				return err
			}
			return s.DisableToken(caller, id)
		}),
		"grant-role": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			role, addr, err := roleArgs(r, a)
			if err != nil {
				return err
			}
			return s.GrantRole(caller, role, addr)
		}),
		"revoke-role": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			role, addr, err := roleArgs(r, a)
			if err != nil {
				return err
			}
			return s.RevokeRole(caller, role, addr)
		}),
		"add-network": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			name, err := a.get("network")
			if err != nil {
				return err
			}
			weight, err := a.amount("weight")
			if err != nil {
				return err
			}
			return s.AddNetwork(caller, genesis.NetworkID(name), weight)
		}),
		"update-network": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			name, err := a.get("network")
			if err != nil {
				return err
			}
			weight, err := a.amount("weight")
			if err != nil {
				return err
			}
			return s.UpdateNetworkWeight(caller, genesis.NetworkID(name), weight)
		}),
		"remove-network": noID(func(r *runner, s *staker.Staker, caller common.Address, a args) error {
			name, err := a.get("network")
			if err != nil {
				return err
			}
			return s.RemoveNetwork(caller, genesis.NetworkID(name))
		}),
	}
}

func roleArgs(r *runner, a args) (acl.Role, common.Address, error) {
	name, err := a.get("role")
	if err != nil {
		return 0, common.Address{}, err
	}
	role, err := acl.ParseRole(name)
	if err != nil {
		return 0, common.Address{}, reverts.New(reverts.InvalidInput, err.Error())
	}
	addr, err := a.account(r, "account")
	if err != nil {
		return 0, common.Address{}, err
	}
	return role, addr, nil
}

// Operations lists the op names a scenario may use.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

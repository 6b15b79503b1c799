// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker"
	"github.com/marlinprotocol/contracts-sub002/state"
)

// Builder helper to build the initial ledger state.
type Builder struct {
	stateProcs []func(state *state.State) error
	calls      []call
}

type call struct {
	name string
	fn   func(*staker.Staker) error
}

// State add a state process
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Call add a staker call, executed after every state process.
func (b *Builder) Call(name string, fn func(*staker.Staker) error) *Builder {
	b.calls = append(b.calls, call{name, fn})
	return b
}

// Build applies the processes and calls to st. Events of the calls are returned
// in order; st is left uncommitted.
func (b *Builder) Build(st *state.State) (events []*staker.Event, err error) {
	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return nil, errors.Wrap(err, "state process")
		}
	}

	stk := builtin.Staker.WithState(st, nil)
	for _, call := range b.calls {
		if err := call.fn(stk); err != nil {
			return nil, errors.Wrap(err, call.name)
		}
	}
	return stk.Events(), nil
}

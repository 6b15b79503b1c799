// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package teststate builds in-memory states for tests.
package teststate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/contracts-sub002/lvldb"
	"github.com/marlinprotocol/contracts-sub002/state"
)

// New returns a state over a fresh in-memory leveldb closed on test cleanup.
func New(t testing.TB) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db, 256)
	require.NoError(t, err)
	return st
}

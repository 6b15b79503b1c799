// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot_PerMille(t *testing.T) {
	assert.Equal(t, int64(0), Snapshot{}.PerMille())
	assert.Equal(t, int64(1000), Snapshot{Hits: 4}.PerMille())
	assert.Equal(t, int64(250), Snapshot{Hits: 1, Misses: 3}.PerMille())
	assert.Equal(t, int64(333), Snapshot{Hits: 1, Misses: 2}.PerMille())
}

func TestStats_RateChanged(t *testing.T) {
	var cs Stats

	// nothing looked up yet, rate stays at zero
	_, changed := cs.RateChanged()
	assert.False(t, changed)

	cs.Hit()
	cs.Miss()
	s, changed := cs.RateChanged()
	assert.True(t, changed)
	assert.Equal(t, Snapshot{Hits: 1, Misses: 1}, s)

	_, changed = cs.RateChanged()
	assert.False(t, changed)

	// same ratio, same rate
	cs.Hit()
	cs.Miss()
	_, changed = cs.RateChanged()
	assert.False(t, changed)

	assert.Equal(t, int64(3), cs.Hit())
	s, changed = cs.RateChanged()
	assert.True(t, changed)
	assert.Equal(t, int64(600), s.PerMille())
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Snapshot is a point in time view of a cache's lookups.
type Snapshot struct {
	Hits   int64
	Misses int64
}

// PerMille returns the hit rate in thousandths, 0 when nothing was looked up.
func (s Snapshot) PerMille() int64 {
	lookups := s.Hits + s.Misses
	if lookups == 0 {
		return 0
	}
	return s.Hits * 1000 / lookups
}

// Stats counts cache hits and misses. The zero value is ready to use.
type Stats struct {
	hit, miss atomic.Int64
	lastRate  atomic.Int64
}

func (cs *Stats) Hit() int64  { return cs.hit.Add(1) }
func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

func (cs *Stats) Snapshot() Snapshot {
	return Snapshot{Hits: cs.hit.Load(), Misses: cs.miss.Load()}
}

// RateChanged returns the current snapshot and whether its hit rate moved by
// at least one per mille since the previous call.
func (cs *Stats) RateChanged() (Snapshot, bool) {
	s := cs.Snapshot()
	rate := s.PerMille()
	return s, cs.lastRate.Swap(rate) != rate
}

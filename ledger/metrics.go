// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "github.com/marlinprotocol/contracts-sub002/metrics"

var (
	metricOpCount      = metrics.LazyLoadCounterVec("ledger_ops_total", []string{"op", "result"})
	metricOpDuration   = metrics.LazyLoadHistogramVec("ledger_op_duration_us", []string{"op"}, metrics.BucketOps)
	metricGasUsed      = metrics.LazyLoadHistogramVec("ledger_op_gas", []string{"op"}, []int64{0, 5_000, 20_000, 50_000, 100_000, 250_000, 500_000, 1_000_000})
	metricSlotsWritten = metrics.LazyLoadCounter("ledger_slots_written_total")
	metricCacheHitRate = metrics.LazyLoadGauge("ledger_state_cache_hit_permille")
)

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	Counter("ops_total").Add(1)
	CounterVec("ops", []string{"op"}).AddWithLabel(1, map[string]string{"op": "create"})
	Gauge("stashes").Set(3)
	GaugeVec("stashes_by_state", []string{"state"}).SetWithLabel(1, map[string]string{"bogus": "label"})
	HistogramVec("op_duration", []string{"op"}, BucketOps).ObserveWithLabels(10, map[string]string{"op": "feed"})

	// noop exposes no handler, so the default mux answers
	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

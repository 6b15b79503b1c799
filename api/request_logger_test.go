// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/contracts-sub002/log"
)

func TestRequestLoggerHandler(t *testing.T) {
	var buf bytes.Buffer
	h, err := log.NewHandler("json", &buf, slog.LevelDebug, false)
	require.NoError(t, err)
	logger := log.NewLogger(h)

	handler := RequestLoggerHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}), logger)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stashes?x=1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"msg":"API request"`)
	assert.Contains(t, buf.String(), `"uri":"/stashes?x=1"`)
	assert.Contains(t, buf.String(), `"status":200`)

	buf.Reset()
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, buf.String(), `"msg":"API request failed"`)
	assert.Contains(t, buf.String(), `"status":404`)
}

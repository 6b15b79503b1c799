// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"time"

	"github.com/marlinprotocol/contracts-sub002/log"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLoggerHandler logs every request once it has been served. Failed
// requests are logged at warn level.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler.ServeHTTP(rec, r)

		ctx := []any{
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"status", rec.status,
			"elapsed", time.Since(started),
		}
		if rec.status >= http.StatusBadRequest {
			logger.Warn("API request failed", ctx...)
			return
		}
		logger.Info("API request", ctx...)
	})
}

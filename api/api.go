// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/marlinprotocol/contracts-sub002/api/clusters"
	"github.com/marlinprotocol/contracts-sub002/api/delegators"
	"github.com/marlinprotocol/contracts-sub002/api/events"
	"github.com/marlinprotocol/contracts-sub002/api/stashes"
	"github.com/marlinprotocol/contracts-sub002/ledger"
	"github.com/marlinprotocol/contracts-sub002/log"
	"github.com/marlinprotocol/contracts-sub002/metrics"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EnableReqLogger bool
	EnableMetrics   bool
	EventsLimit     uint64
}

// New return api router
func New(l *ledger.Ledger, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	if opts.EventsLimit == 0 {
		opts.EventsLimit = 1000
	}

	router := mux.NewRouter()

	stashes.New(l).
		Mount(router, "/stashes")
	clusters.New(l).
		Mount(router, "/clusters")
	delegators.New(l).
		Mount(router, "/delegators")
	events.New(l, opts.EventsLimit).
		Mount(router, "/events")

	if opts.EnableMetrics {
		if h := metrics.HTTPHandler(); h != nil {
			router.Path("/metrics").Methods(http.MethodGet).Name("GET /metrics").Handler(h)
		}
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP
}

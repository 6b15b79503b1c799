// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the ledger databases",
	}
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to a genesis file",
	}
	devFlag = cli.BoolFlag{
		Name:  "dev",
		Usage: "use the dev genesis",
	}
	inMemFlag = cli.BoolFlag{
		Name:  "in-mem",
		Usage: "keep the ledger in memory",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 64,
		Usage: "leveldb cache size in MiB",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiLogsFlag = cli.BoolFlag{
		Name:  "api-logs",
		Usage: "enables API requests logging",
	}
	apiEventsLimitFlag = cli.Uint64Flag{
		Name:  "api-events-limit",
		Value: 1000,
		Usage: "limit the number of events returned by a single query",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	logFormatFlag = cli.StringFlag{
		Name:  "log-format",
		Value: "terminal",
		Usage: "log output format (terminal|json|logfmt)",
	}
	dumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "dump the labelled stashes once the scenario is done",
	}
	keepGoingFlag = cli.BoolFlag{
		Name:  "keep-going",
		Usage: "exit successfully even if some steps failed",
	}
)

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/marlinprotocol/contracts-sub002/api"
	"github.com/marlinprotocol/contracts-sub002/log"
	"github.com/marlinprotocol/contracts-sub002/metrics"
)

var (
	version   string
	gitCommit string

	logger = log.WithContext("pkg", "stashsim")
)

func fullVersion() string {
	if gitCommit == "" {
		return version
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "stashsim",
		Usage:   "Stash ledger simulator",
		Flags: []cli.Flag{
			verbosityFlag,
			logFormatFlag,
		},
		Before: initLogger,
		Commands: []cli.Command{
			{
				Name:      "run",
				Usage:     "replay a scenario file",
				ArgsUsage: "<scenario.yaml>",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					dumpFlag,
					keepGoingFlag,
				},
				Action: runScenario,
			},
			{
				Name:  "serve",
				Usage: "serve the ledger over HTTP",
				Flags: []cli.Flag{
					dataDirFlag,
					genesisFlag,
					devFlag,
					inMemFlag,
					cacheFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiLogsFlag,
					apiEventsLimitFlag,
					enableMetricsFlag,
				},
				Action: serve,
			},
			{
				Name:  "ops",
				Usage: "list the operations a scenario may use",
				Action: func(ctx *cli.Context) error {
					for _, name := range Operations() {
						fmt.Println(name)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func runScenario(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("expected one scenario file", 2)
	}
	sc, err := LoadScenario(ctx.Args().First())
	if err != nil {
		return err
	}
	// without an explicit data dir nothing outlives the run
	l, err := openLedger(ctx, sc.Genesis, !ctx.IsSet(dataDirFlag.Name))
	if err != nil {
		return err
	}
	defer l.Close()

	var bar *pb.ProgressBar
	if isTerminal(os.Stdout) {
		bar = pb.New(len(sc.Steps)).SetMaxWidth(90).Start()
		defer func() { bar.NotPrint = true }()
	}

	r := newRunner(sc.Genesis, l)
	results := r.Run(sc.Steps, func(res *StepResult) {
		if bar != nil {
			bar.Increment()
		}
		if res.Failed() {
			logger.Debug("step failed", "step", res.Index, "op", res.Op, "events", spew.Sdump(res.Events))
		}
	})
	if bar != nil {
		bar.Finish()
	}

	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
			fmt.Printf("step %d (%s): %v\n", res.Index, res.Op, res.Err)
		}
	}
	fmt.Printf("%d steps, %d failed\n", len(results), failed)

	if ctx.Bool(dumpFlag.Name) {
		stashes, err := r.Stashes()
		if err != nil {
			return err
		}
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cfg.Dump(stashes)
	}

	if failed > 0 && !ctx.Bool(keepGoingFlag.Name) {
		return cli.NewExitError(fmt.Sprintf("%d steps failed", failed), 1)
	}
	return nil
}

func serve(ctx *cli.Context) error {
	gen, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}
	l, err := openLedger(ctx, gen, ctx.Bool(inMemFlag.Name))
	if err != nil {
		return err
	}
	defer l.Close()

	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	handler := api.New(l, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EnableReqLogger: ctx.Bool(apiLogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		EventsLimit:     ctx.Uint64(apiEventsLimitFlag.Name),
	})
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}

	exitCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(exitCtx)
	g.Go(func() error {
		logger.Info("API started", "url", "http://"+listener.Addr().String())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/genesis"
	"github.com/marlinprotocol/contracts-sub002/ledger"
	"github.com/marlinprotocol/contracts-sub002/log"
)

const genesisHashFile = "genesis.hash"

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".stashsim")
	}
	return ".stashsim"
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func initLogger(ctx *cli.Context) error {
	color := isTerminal(os.Stderr) && os.Getenv("TERM") != "dumb"
	handler, err := log.NewHandler(
		ctx.GlobalString(logFormatFlag.Name),
		os.Stderr,
		log.FromVerbosity(ctx.GlobalInt(verbosityFlag.Name)),
		color,
	)
	if err != nil {
		return err
	}
	log.SetDefault(log.NewLogger(handler))
	return nil
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	if path := ctx.String(genesisFlag.Name); path != "" {
		return genesis.Load(path)
	}
	return genesis.NewDevnet(), nil
}

func genesisHash(gen *genesis.Genesis) (common.Bytes32, error) {
	data, err := yaml.Marshal(gen)
	if err != nil {
		return common.Bytes32{}, err
	}
	return common.Keccak256(data), nil
}

// openLedger opens the ledger of the command and seeds it with gen the first
// time. Reopening a data dir with another genesis fails.
func openLedger(ctx *cli.Context, gen *genesis.Genesis, inMem bool) (*ledger.Ledger, error) {
	hash, err := genesisHash(gen)
	if err != nil {
		return nil, errors.Wrap(err, "hash genesis")
	}

	if inMem {
		l, err := ledger.OpenMem()
		if err != nil {
			return nil, err
		}
		if err := l.Apply(gen.Apply); err != nil {
			l.Close()
			return nil, errors.Wrap(err, "apply genesis")
		}
		return l, nil
	}

	dir := ctx.String(dataDirFlag.Name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create data dir [%v]", dir)
	}
	l, err := ledger.Open(dir, ledger.Options{
		CacheSize:              ctx.Int(cacheFlag.Name),
		OpenFilesCacheCapacity: 64,
	})
	if err != nil {
		return nil, err
	}

	hashPath := filepath.Join(dir, genesisHashFile)
	stored, err := os.ReadFile(hashPath)
	switch {
	case err == nil:
		if !bytes.Equal(bytes.TrimSpace(stored), []byte(hash.String())) {
			l.Close()
			return nil, fmt.Errorf("genesis mismatch: data dir [%v] was initialised with %s", dir, bytes.TrimSpace(stored))
		}
		logger.Info("opened ledger", "dir", dir, "genesis", hash)
		return l, nil
	case os.IsNotExist(err):
		if err := l.Apply(gen.Apply); err != nil {
			l.Close()
			return nil, errors.Wrap(err, "apply genesis")
		}
		if err := os.WriteFile(hashPath, []byte(hash.String()+"\n"), 0o600); err != nil {
			l.Close()
			return nil, errors.Wrap(err, "write genesis hash")
		}
		logger.Info("initialised ledger", "dir", dir, "genesis", hash)
		return l, nil
	default:
		l.Close()
		return nil, err
	}
}

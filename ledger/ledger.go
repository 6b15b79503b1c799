// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger serialises staker operations over persistent storage.
package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin"
	"github.com/marlinprotocol/contracts-sub002/builtin/gascharger"
	"github.com/marlinprotocol/contracts-sub002/builtin/reverts"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/kv"
	"github.com/marlinprotocol/contracts-sub002/log"
	"github.com/marlinprotocol/contracts-sub002/logdb"
	"github.com/marlinprotocol/contracts-sub002/lvldb"
	"github.com/marlinprotocol/contracts-sub002/state"
)

var logger = log.WithContext("pkg", "ledger")

func SetLogger(l log.Logger) {
	logger = l
}

const (
	stateDirName   = "state"
	eventsFileName = "events.db"
)

// Options for opening a persistent ledger.
type Options struct {
	CacheSize              int // leveldb cache in MiB
	OpenFilesCacheCapacity int
	StateCacheSize         int // committed slots kept in memory
}

// Op identifies an operation submitted to the ledger.
type Op struct {
	Name      string
	Caller    common.Address
	Timestamp uint64
}

// Receipt describes a committed operation.
type Receipt struct {
	Seq     uint64
	GasUsed uint64
	Slots   int
	Events  []*staker.Event
}

// Ledger is the single writer over the staker state. All methods are safe for
// concurrent use.
type Ledger struct {
	mu     sync.Mutex
	db     kv.Store
	logDB  *logdb.LogDB
	state  *state.State
	closer func() error
}

// Open opens or creates a ledger under dir.
func Open(dir string, opts Options) (*Ledger, error) {
	db, err := lvldb.New(filepath.Join(dir, stateDirName), lvldb.Options{
		CacheSize:              opts.CacheSize,
		OpenFilesCacheCapacity: opts.OpenFilesCacheCapacity,
	})
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.New(filepath.Join(dir, eventsFileName))
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "open event log")
	}
	return newLedger(db, logDB, opts.StateCacheSize, db.Close)
}

// OpenMem creates a ledger kept in memory.
func OpenMem() (*Ledger, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "open event log")
	}
	return newLedger(db, logDB, 0, db.Close)
}

func newLedger(db kv.Store, logDB *logdb.LogDB, cacheSize int, closer func() error) (*Ledger, error) {
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	st, err := state.New(db, cacheSize)
	if err != nil {
		closer()
		logDB.Close()
		return nil, err
	}
	return &Ledger{
		db:     db,
		logDB:  logDB,
		state:  st,
		closer: closer,
	}, nil
}

// Close releases the underlying stores.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	logErr := l.logDB.Close()
	if err := l.closer(); err != nil {
		return err
	}
	return logErr
}

// Do runs fn against the staker and commits its effects when it succeeds.
// On failure no state is written and no event is recorded.
func (l *Ledger) Do(op Op, fn func(*staker.Staker) error) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	started := time.Now()
	charger := gascharger.New()
	stk := builtin.Staker.WithState(l.state, charger)

	logger.Debug("executing op", "op", op.Name, "caller", op.Caller, "timestamp", op.Timestamp)
	if err := fn(stk); err != nil {
		l.state.Discard()
		metricOpCount().AddWithLabel(1, map[string]string{"op": op.Name, "result": result(err)})
		logger.Debug("op failed", "op", op.Name, "caller", op.Caller, "error", err)
		return nil, err
	}

	events := stk.Events()
	slots, err := l.state.Commit()
	if err != nil {
		l.state.Discard()
		metricOpCount().AddWithLabel(1, map[string]string{"op": op.Name, "result": result(err)})
		return nil, errors.Wrap(err, "commit state")
	}
	seq, err := l.logDB.Prepare(op.Name, op.Caller, op.Timestamp).Insert(events...).Commit()
	if err != nil {
		// state is already durable, the event log lags behind
		logger.Error("failed to record events", "op", op.Name, "error", err)
		return nil, errors.Wrap(err, "record events")
	}

	metricOpCount().AddWithLabel(1, map[string]string{"op": op.Name, "result": "ok"})
	metricOpDuration().ObserveWithLabels(time.Since(started).Microseconds(), map[string]string{"op": op.Name})
	metricGasUsed().ObserveWithLabels(int64(charger.TotalGas()), map[string]string{"op": op.Name})
	metricSlotsWritten().Add(int64(slots))
	if rate, changed := l.state.CacheHitRate(); changed {
		metricCacheHitRate().Set(rate)
	}

	logger.Debug("op committed", "op", op.Name, "seq", seq, "events", len(events), "slots", slots, "gas", charger.TotalGas())
	return &Receipt{
		Seq:     seq,
		GasUsed: charger.TotalGas(),
		Slots:   slots,
		Events:  events,
	}, nil
}

// Apply runs fn directly against the state and commits it. It bypasses the
// staker and records no events; genesis uses it to seed registries.
func (l *Ledger) Apply(fn func(*state.State) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := fn(l.state); err != nil {
		l.state.Discard()
		return err
	}
	if _, err := l.state.Commit(); err != nil {
		l.state.Discard()
		return errors.Wrap(err, "commit state")
	}
	return nil
}

// View runs a read-only fn against the staker. Any change it makes is dropped.
func (l *Ledger) View(fn func(*staker.Staker) error) error {
	return l.ViewState(func(st *state.State) error {
		return fn(builtin.Staker.WithState(st, nil))
	})
}

// ViewState runs a read-only fn against the raw state.
func (l *Ledger) ViewState(fn func(*state.State) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	defer l.state.Discard()

	return fn(l.state)
}

// FilterEvents queries recorded events.
func (l *Ledger) FilterEvents(ctx context.Context, filter *logdb.EventFilter) ([]*logdb.Event, error) {
	return l.logDB.FilterEvents(ctx, filter)
}

// LastSeq returns the sequence of the latest committed operation.
func (l *Ledger) LastSeq(ctx context.Context) (uint64, error) {
	return l.logDB.LastSeq(ctx)
}

// CacheStats reports hit and miss counts of the state slot cache.
func (l *Ledger) CacheStats() (int64, int64) {
	return l.state.CacheStats()
}

func result(err error) string {
	if reverts.IsRevertErr(err) {
		return "revert"
	}
	return "error"
}

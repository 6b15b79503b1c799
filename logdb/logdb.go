// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"encoding/json"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/builtin/staker"
	"github.com/marlinprotocol/contracts-sub002/common"
)

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(opTableSchema + eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Prepare starts a batch for one operation.
func (db *LogDB) Prepare(name string, caller common.Address, timestamp uint64) *OpBatch {
	return &OpBatch{
		db:        db.db,
		name:      name,
		caller:    caller,
		timestamp: timestamp,
	}
}

// LastSeq returns the sequence of the latest committed operation, 0 if none.
func (db *LogDB) LastSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM op").Scan(&seq); err != nil {
		return 0, err
	}
	return uint64(seq.Int64), nil
}

// GetOp returns the operation with the given sequence, nil if absent.
func (db *LogDB) GetOp(ctx context.Context, seq uint64) (*Op, error) {
	var (
		op     Op
		caller []byte
	)
	err := db.db.QueryRowContext(ctx, "SELECT seq, name, caller, timestamp FROM op WHERE seq = ?", seq).
		Scan(&op.Seq, &op.Name, &caller, &op.Timestamp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	op.Caller = common.BytesToAddress(caller)
	return &op, nil
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	const query = "SELECT seq, eventIndex, timestamp, name, stash, account, cluster, data FROM event"

	if filter == nil {
		return db.queryEvents(ctx, query+" ORDER BY seq ASC, eventIndex ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := query + " WHERE 1"
	condition := "seq"
	if filter.Range != nil {
		if filter.Range.Unit == Time {
			condition = "timestamp"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ? "
		}
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Name != nil {
			args = append(args, *criteria.Name)
			stmt += " AND name = ? "
		}
		if criteria.Stash != nil {
			args = append(args, criteria.Stash.Bytes())
			stmt += " AND stash = ? "
		}
		if criteria.Account != nil {
			args = append(args, criteria.Account.Bytes())
			stmt += " AND account = ? "
		}
		if criteria.Cluster != nil {
			args = append(args, criteria.Cluster.Bytes())
			stmt += " AND cluster = ? "
		}
		stmt += ")"
	}
	if len(filter.CriteriaSet) > 0 {
		stmt += ")"
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC, eventIndex DESC "
	} else {
		stmt += " ORDER BY seq ASC, eventIndex ASC "
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       uint64
			index     uint32
			timestamp uint64
			name      string
			stash     []byte
			account   []byte
			cluster   []byte
			data      sql.NullString
		)
		if err := rows.Scan(
			&seq,
			&index,
			&timestamp,
			&name,
			&stash,
			&account,
			&cluster,
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			Seq:       seq,
			Index:     index,
			Timestamp: timestamp,
			Name:      name,
			Stash:     common.BytesToBytes32(stash),
			Account:   common.BytesToAddress(account),
			Cluster:   common.BytesToAddress(cluster),
			Data:      map[string]string{},
		}
		if data.Valid && data.String != "" {
			if err := json.Unmarshal([]byte(data.String), &event.Data); err != nil {
				return nil, errors.Wrap(err, "decode event data")
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func bytesOrNull(b []byte, zero bool) any {
	if zero {
		return nil
	}
	return b
}

// OpBatch collects the events of one operation and writes them with a new sequence.
type OpBatch struct {
	db        *sql.DB
	name      string
	caller    common.Address
	timestamp uint64
	events    []*staker.Event
}

// Insert appends events in emission order.
func (b *OpBatch) Insert(events ...*staker.Event) *OpBatch {
	b.events = append(b.events, events...)
	return b
}

func (b *OpBatch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Commit writes the operation and its events, returning the assigned sequence.
func (b *OpBatch) Commit() (seq uint64, err error) {
	err = b.execInTx(func(tx *sql.Tx) error {
		res, err := tx.Exec("INSERT INTO op(name, caller, timestamp) VALUES (?, ?, ?);",
			b.name,
			b.caller.Bytes(),
			b.timestamp,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		seq = uint64(id)

		for i, ev := range b.events {
			stored := newEvent(seq, uint32(i), b.timestamp, ev)
			data, err := json.Marshal(stored.Data)
			if err != nil {
				return errors.Wrap(err, "encode event data")
			}
			if _, err := tx.Exec("INSERT INTO event(seq, eventIndex, timestamp, name, stash, account, cluster, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?);",
				stored.Seq,
				stored.Index,
				stored.Timestamp,
				stored.Name,
				bytesOrNull(stored.Stash.Bytes(), stored.Stash.IsZero()),
				bytesOrNull(stored.Account.Bytes(), stored.Account.IsZero()),
				bytesOrNull(stored.Cluster.Bytes(), stored.Cluster.IsZero()),
				string(data),
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// each committed ledger operation
const opTableSchema = `CREATE TABLE IF NOT EXISTS op (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	caller BLOB(20) NOT NULL,
	timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS opNameIndex ON op(name);
`

// events emitted by committed operations
const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	timestamp INTEGER NOT NULL,
	name TEXT NOT NULL,
	stash BLOB(32),
	account BLOB(20),
	cluster BLOB(20),
	data TEXT,
	PRIMARY KEY (seq, eventIndex)
);

CREATE INDEX IF NOT EXISTS eventTimeIndex ON event(timestamp);
CREATE INDEX IF NOT EXISTS eventNameIndex ON event(name);
CREATE INDEX IF NOT EXISTS eventStashIndex ON event(stash);
CREATE INDEX IF NOT EXISTS eventAccountIndex ON event(account);
CREATE INDEX IF NOT EXISTS eventClusterIndex ON event(cluster);
`

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state keeps contract storage slots on top of a kv store. Writes are
// journaled in memory, can be reverted to any checkpoint and are flushed to
// the store by Commit.
package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/marlinprotocol/contracts-sub002/cache"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/kv"
	"github.com/marlinprotocol/contracts-sub002/stackedmap"
)

// StoreName is the bucket of storage slots in the underlying kv store.
const StoreName = "state.s"

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr common.Address
	key  common.Bytes32
}

func (k storageKey) dbKey() []byte {
	return append(k.addr.Bytes(), k.key.Bytes()...)
}

// State manages storage slots of all addresses.
type State struct {
	db    kv.Store
	cache *cache.LRU[storageKey, rlp.RawValue] // committed slots
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New creates a state reading committed slots from db.
func New(db kv.Store, cacheSize int) (*State, error) {
	c, err := cache.NewLRU[storageKey, rlp.RawValue](cacheSize)
	if err != nil {
		return nil, err
	}
	s := &State{
		db:    kv.Bucket(StoreName).NewStore(db),
		cache: c,
	}
	s.reset()
	return s, nil
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.load)
	s.sm.Push()
}

func (s *State) load(key storageKey) (rlp.RawValue, bool, error) {
	v, err := s.cache.GetOrLoad(key, func(key storageKey) (rlp.RawValue, error) {
		return kv.GetOrNil(s.db, key.dbKey())
	})
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// GetRawStorage returns the rlp encoded value of the slot. Empty means unset.
func (s *State) GetRawStorage(addr common.Address, key common.Bytes32) (rlp.RawValue, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// SetRawStorage sets the raw value of the slot. Empty value clears the slot.
func (s *State) SetRawStorage(addr common.Address, key common.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns the slot as a 32 bytes word.
func (s *State) GetStorage(addr common.Address, key common.Bytes32) (common.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return common.Bytes32{}, err
	}
	if len(raw) == 0 {
		return common.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return common.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// structured value, identify it by its hash
		return common.Blake2b(raw), nil
	}
	return common.BytesToBytes32(content), nil
}

// SetStorage sets the slot to a 32 bytes word.
func (s *State) SetStorage(addr common.Address, key, value common.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage sets the slot to what enc produces.
func (s *State) EncodeStorage(addr common.Address, key common.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage passes the raw slot value to dec.
func (s *State) DecodeStorage(addr common.Address, key common.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage collects the pending changes.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return &Stage{changes: changes}
}

// Commit writes pending changes to the store in one batch and clears the journal.
// It returns the number of slots written.
func (s *State) Commit() (int, error) {
	stage := s.Stage()
	bulk := s.db.Bulk()
	if err := stage.writeTo(bulk); err != nil {
		return 0, &Error{err}
	}
	if err := bulk.Write(); err != nil {
		return 0, &Error{err}
	}
	for k, v := range stage.changes {
		s.cache.Add(k, v)
	}
	s.reset()
	return stage.Len(), nil
}

// Discard drops all pending changes.
func (s *State) Discard() {
	s.reset()
}

// CacheStats reports hit and miss counts of the committed slot cache.
func (s *State) CacheStats() (int64, int64) {
	stats := s.cache.Stats()
	return stats.Hits, stats.Misses
}

// CacheHitRate returns the slot cache hit rate in per mille and whether it
// moved since the previous call.
func (s *State) CacheHitRate() (int64, bool) {
	stats, changed := s.cache.RateChanged()
	return stats.PerMille(), changed
}

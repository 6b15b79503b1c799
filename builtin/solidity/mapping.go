// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/marlinprotocol/contracts-sub002/common"
)

type Key interface {
	Bytes() []byte
}

// Mapping stores rlp encoded values at blake2b(key, base) positions.
type Mapping[K Key, V any] struct {
	context *Context
	basePos common.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos common.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) common.Bytes32 {
	return common.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get returns the value of key, or the zero value when absent.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		m.context.UseGas(slots(len(raw)) * SloadGas)
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Exists reports whether key holds a value.
func (m *Mapping[K, V]) Exists(key K) (bool, error) {
	raw, err := m.context.state.GetRawStorage(m.context.address, m.position(key))
	if err != nil {
		return false, err
	}
	m.context.UseGas(SloadGas)
	return len(raw) > 0, nil
}

// Insert writes a value into a fresh slot.
func (m *Mapping[K, V]) Insert(key K, value V) error {
	return m.set(key, value, SstoreSetGas)
}

// Update overwrites the value of an existing slot.
func (m *Mapping[K, V]) Update(key K, value V) error {
	return m.set(key, value, SstoreResetGas)
}

// Upsert inserts or updates depending on whether the slot is occupied.
func (m *Mapping[K, V]) Upsert(key K, value V) error {
	exists, err := m.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return m.Update(key, value)
	}
	return m.Insert(key, value)
}

// Delete clears the slot of key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}

func (m *Mapping[K, V]) set(key K, value V, gas uint64) error {
	pos := m.position(key)
	if isZero(value) {
		m.context.state.SetRawStorage(m.context.address, pos, nil)
		return nil
	}
	return m.context.state.EncodeStorage(m.context.address, pos, func() ([]byte, error) {
		val, err := rlp.EncodeToBytes(value)
		if err != nil {
			return nil, err
		}
		m.context.UseGas(slots(len(val)) * gas)
		return val, nil
	})
}

// isZero treats nil pointers and zero comparable values as empty.
func isZero[V any](value V) bool {
	rv := reflect.ValueOf(&value).Elem()
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}

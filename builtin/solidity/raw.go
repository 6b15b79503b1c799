// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import "github.com/marlinprotocol/contracts-sub002/common"

// Raw is a single rlp encoded value stored at a fixed slot.
type Raw[V any] struct {
	m *Mapping[common.Bytes32, V]
}

func NewRaw[V any](context *Context, pos common.Bytes32) *Raw[V] {
	return &Raw[V]{m: NewMapping[common.Bytes32, V](context, pos)}
}

func (r *Raw[V]) Get() (V, error) {
	return r.m.Get(common.Bytes32{})
}

func (r *Raw[V]) Upsert(value V) error {
	return r.m.Upsert(common.Bytes32{}, value)
}

func (r *Raw[V]) Delete() {
	r.m.Delete(common.Bytes32{})
}

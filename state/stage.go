// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/marlinprotocol/contracts-sub002/kv"
)

// Stage holds the last written value of every touched slot.
type Stage struct {
	changes map[storageKey]rlp.RawValue
}

// Len returns the count of touched slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

func (s *Stage) writeTo(putter kv.Putter) error {
	for k, v := range s.changes {
		if len(v) == 0 {
			if err := putter.Delete(k.dbKey()); err != nil {
				return err
			}
			continue
		}
		if err := putter.Put(k.dbKey(), v); err != nil {
			return err
		}
	}
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stashes

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/marlinprotocol/contracts-sub002/builtin/staker/locks"
	"github.com/marlinprotocol/contracts-sub002/builtin/staker/stash"
	"github.com/marlinprotocol/contracts-sub002/common"
)

type Stash struct {
	ID           common.Bytes32  `json:"id"`
	Owner        common.Address  `json:"owner"`
	Cluster      *common.Address `json:"cluster"`
	Balances     []*Balance      `json:"balances"`
	Redelegation *Lock           `json:"redelegation"`
	Undelegation *Lock           `json:"undelegation"`
}

type Balance struct {
	Token  common.Bytes32        `json:"token"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Lock is a pending redelegation (Value is the target cluster) or
// undelegation (Value is the cluster left).
type Lock struct {
	UnlockTime uint64         `json:"unlockTime"`
	Value      common.Address `json:"value"`
}

func convertStash(id common.Bytes32, st *stash.Stash, redelegation, undelegation *locks.Lock) *Stash {
	s := &Stash{
		ID:       id,
		Owner:    st.Owner,
		Balances: make([]*Balance, 0, len(st.Tokens)),
	}
	if st.IsDelegated() {
		cluster := st.Cluster
		s.Cluster = &cluster
	}
	for i, token := range st.Tokens {
		s.Balances = append(s.Balances, &Balance{
			Token:  token,
			Amount: (*math.HexOrDecimal256)(st.Amounts[i]),
		})
	}
	s.Redelegation = convertLock(redelegation)
	s.Undelegation = convertLock(undelegation)
	return s
}

func convertLock(l *locks.Lock) *Lock {
	if l == nil {
		return nil
	}
	return &Lock{UnlockTime: l.UnlockTime, Value: l.Value}
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New(NotFound, "stash not found")
	assert.Equal(t, "stash not found", revert.Error())
	assert.Equal(t, NotFound, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))

	wrapped := errors.Wrap(revert, "withdraw")
	assert.True(t, IsRevertErr(wrapped))
	assert.True(t, Is(wrapped, NotFound))
	assert.False(t, Is(wrapped, StillLocked))
	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.Equal(t, Kind(0), KindOf(errors.New("x")))
}

func Test_KindString(t *testing.T) {
	assert.Equal(t, "EpochTooSoon", EpochTooSoon.String())
	assert.Equal(t, "Reentrancy", Reentrancy.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func Test_Bytes(t *testing.T) {
	var nilRevert *ErrRevert
	assert.Nil(t, nilRevert.Bytes())

	b := Newf(InvalidInput, "bad %s", "shape").Bytes()
	assert.Len(t, b, 4+32+32+32)
	assert.Equal(t, []byte{0x08, 0xc3, 0x79, 0xa0}, b[:4])
	assert.Equal(t, byte(32), b[4+31])
	assert.Equal(t, byte(len("bad shape")), b[4+32+31])
	assert.Equal(t, "bad shape", string(b[4+64:4+64+len("bad shape")]))
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the user facing failures of ledger operations.
// A revert leaves state untouched; any other error is an internal failure.
package reverts

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

type Kind uint8

const (
	InvalidInput Kind = iota + 1
	Unauthorized
	NotFound
	StillLocked
	LockConflict
	InsufficientBalance
	TransferFailed
	EpochOutOfOrder
	EpochTooSoon
	RewardExceedsEpochBudget
	UnknownNetwork
	Reentrancy
)

var kindNames = map[Kind]string{
	InvalidInput:             "InvalidInput",
	Unauthorized:             "Unauthorized",
	NotFound:                 "NotFound",
	StillLocked:              "StillLocked",
	LockConflict:             "LockConflict",
	InsufficientBalance:      "InsufficientBalance",
	TransferFailed:           "TransferFailed",
	EpochOutOfOrder:          "EpochOutOfOrder",
	EpochTooSoon:             "EpochTooSoon",
	RewardExceedsEpochBudget: "RewardExceedsEpochBudget",
	UnknownNetwork:           "UnknownNetwork",
	Reentrancy:               "Reentrancy",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Bytes encodes the revert as the abi Error(string) payload.
func (e *ErrRevert) Bytes() []byte {
	if e == nil {
		return nil
	}

	// 4-byte selector for Error(string)
	selector, _ := hex.DecodeString("08c379a0")
	msgBytes := []byte(e.message)
	padded := ((len(msgBytes) + 31) / 32) * 32

	encoded := make([]byte, 0, 4+32+32+padded)
	encoded = append(encoded, selector...)

	// offset is always 0x20 after the selector
	offset := make([]byte, 32)
	binary.BigEndian.PutUint64(offset[24:], 32)
	encoded = append(encoded, offset...)

	length := make([]byte, 32)
	binary.BigEndian.PutUint64(length[24:], uint64(len(msgBytes)))
	encoded = append(encoded, length...)

	data := make([]byte, padded)
	copy(data, msgBytes)
	return append(encoded, data...)
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// Is reports whether err is a revert of the given kind.
func Is(err error, kind Kind) bool {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind == kind
	}
	return false
}

// KindOf returns the kind of a revert, or zero for other errors.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return 0
}

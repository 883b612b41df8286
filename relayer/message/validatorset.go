// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package message

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

const ValidatorSetUpdateLength = 3 * 32

// ValidatorSetUpdate is the (root, threshold, expiration) triple replacing a
// Merkle validator set.
type ValidatorSetUpdate struct {
	Root       common.Hash
	Threshold  uint64
	Expiration uint64
}

func (u ValidatorSetUpdate) Encode() []byte {
	buf := make([]byte, 0, ValidatorSetUpdateLength)
	buf = append(buf, u.Root.Bytes()...)
	buf = append(buf, math.U256Bytes(new(big.Int).SetUint64(u.Threshold))...)
	buf = append(buf, math.U256Bytes(new(big.Int).SetUint64(u.Expiration))...)
	return buf
}

func (u ValidatorSetUpdate) Hash() common.Hash {
	return SigningHash(u.Encode())
}

func DecodeValidatorSetUpdate(raw []byte) (ValidatorSetUpdate, error) {
	if len(raw) != ValidatorSetUpdateLength {
		return ValidatorSetUpdate{}, fmt.Errorf("%w: %d", ErrInvalidLength, len(raw))
	}
	threshold := new(big.Int).SetBytes(raw[32:64])
	expiration := new(big.Int).SetBytes(raw[64:96])
	if !threshold.IsUint64() || !expiration.IsUint64() {
		return ValidatorSetUpdate{}, ErrValueOverflow
	}
	return ValidatorSetUpdate{
		Root:       common.BytesToHash(raw[:32]),
		Threshold:  threshold.Uint64(),
		Expiration: expiration.Uint64(),
	}, nil
}

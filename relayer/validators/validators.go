// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package validators

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ChainSafe/utopia-relay/store"
)

var (
	ErrNotValidator        = errors.New("address is not a validator")
	ErrAlreadyValidator    = errors.New("address is already a validator")
	ErrZeroAddress         = errors.New("zero address")
	ErrInvalidThreshold    = errors.New("threshold must be greater than zero and not exceed the validator count")
	ErrAlreadyInitialized  = errors.New("validator set already initialized")
	ErrNoValidatorSet      = errors.New("validator set not initialized")
	ErrValidatorSetExpired = errors.New("validator set expired")
	ErrStaleExpiration     = errors.New("expiration must be in the future")
	ErrRootMismatch        = errors.New("validator entries do not match the committed root")
	ErrZeroRoot            = errors.New("validator root is empty")
)

// Oracle answers membership questions for the current validator set and
// verifies threshold signatures made by it.
type Oracle interface {
	// IsMember reports whether addr is a current validator. Registry backed
	// oracles ignore the proof.
	IsMember(r store.KeyValueReader, addr common.Address, proof []common.Hash) (bool, error)
	// VerifySignatures returns the signers if blob carries enough valid
	// signatures of current validators over hash.
	VerifySignatures(r store.KeyValueReader, hash common.Hash, blob []byte, now time.Time) ([]common.Address, error)
}

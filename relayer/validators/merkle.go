// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package validators

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ChainSafe/utopia-relay/relayer/merkle"
	"github.com/ChainSafe/utopia-relay/relayer/message"
	"github.com/ChainSafe/utopia-relay/relayer/signature"
	"github.com/ChainSafe/utopia-relay/store"
)

const (
	merkleRootKey       = "validators:merkle:root"
	merkleThresholdKey  = "validators:merkle:threshold"
	merkleExpirationKey = "validators:merkle:expiration"
)

// MerkleSet keeps the committed root of a sorted validator list together with
// its threshold and expiration. The three values are always replaced together.
type MerkleSet struct {
	verifier *signature.Verifier
}

func NewMerkleSet(verifier *signature.Verifier) *MerkleSet {
	return &MerkleSet{verifier: verifier}
}

func (m *MerkleSet) Current(kv store.KeyValueReader) (message.ValidatorSetUpdate, error) {
	root, err := kv.GetByKey([]byte(merkleRootKey))
	if err != nil {
		if store.IsNotFound(err) {
			return message.ValidatorSetUpdate{}, ErrNoValidatorSet
		}
		return message.ValidatorSetUpdate{}, err
	}
	threshold, err := store.GetUint64(kv, []byte(merkleThresholdKey))
	if err != nil {
		return message.ValidatorSetUpdate{}, err
	}
	expiration, err := store.GetUint64(kv, []byte(merkleExpirationKey))
	if err != nil {
		return message.ValidatorSetUpdate{}, err
	}
	return message.ValidatorSetUpdate{
		Root:       common.BytesToHash(root),
		Threshold:  threshold,
		Expiration: expiration,
	}, nil
}

// Initialize stores the first validator set.
func (m *MerkleSet) Initialize(rw store.KeyValueReaderWriter, set message.ValidatorSetUpdate, now time.Time) error {
	_, err := m.Current(rw)
	if err == nil {
		return ErrAlreadyInitialized
	}
	if !errors.Is(err, ErrNoValidatorSet) {
		return err
	}
	return m.ForceUpdate(rw, set, now)
}

// Update replaces the validator set if the current set signed the new triple
// with at least the current threshold.
func (m *MerkleSet) Update(rw store.KeyValueReaderWriter, update message.ValidatorSetUpdate, blob []byte, now time.Time) error {
	if err := validateUpdate(update, now); err != nil {
		return err
	}
	if _, err := m.VerifySignatures(rw, update.Hash(), blob, now); err != nil {
		return err
	}
	return m.write(rw, update)
}

// ForceUpdate replaces the validator set without signatures. Callers gate it
// on the owner.
func (m *MerkleSet) ForceUpdate(rw store.KeyValueReaderWriter, update message.ValidatorSetUpdate, now time.Time) error {
	if err := validateUpdate(update, now); err != nil {
		return err
	}
	return m.write(rw, update)
}

func (m *MerkleSet) write(rw store.KeyValueReaderWriter, update message.ValidatorSetUpdate) error {
	if err := rw.SetByKey([]byte(merkleRootKey), update.Root.Bytes()); err != nil {
		return err
	}
	if err := store.SetUint64(rw, []byte(merkleThresholdKey), update.Threshold); err != nil {
		return err
	}
	return store.SetUint64(rw, []byte(merkleExpirationKey), update.Expiration)
}

func validateUpdate(update message.ValidatorSetUpdate, now time.Time) error {
	if update.Root == (common.Hash{}) {
		return ErrZeroRoot
	}
	if update.Threshold == 0 {
		return ErrInvalidThreshold
	}
	if update.Expiration <= uint64(now.Unix()) {
		return fmt.Errorf("%w: %d", ErrStaleExpiration, update.Expiration)
	}
	return nil
}

func (m *MerkleSet) IsMember(kv store.KeyValueReader, addr common.Address, proof []common.Hash) (bool, error) {
	set, err := m.Current(kv)
	if err != nil {
		return false, err
	}
	return merkle.Verify(set.Root, merkle.Leaf(addr), proof), nil
}

// VerifySignatures expects an interleaved blob listing every validator of the
// set in ascending order. The listed addresses must rebuild the committed root
// and at least threshold of them must carry a valid signature.
func (m *MerkleSet) VerifySignatures(kv store.KeyValueReader, hash common.Hash, blob []byte, now time.Time) ([]common.Address, error) {
	set, err := m.Current(kv)
	if err != nil {
		return nil, err
	}
	if uint64(now.Unix()) >= set.Expiration {
		return nil, ErrValidatorSetExpired
	}

	entries, err := m.verifier.ParseInterleaved(hash, blob)
	if err != nil {
		return nil, err
	}

	leaves := make([]common.Hash, len(entries))
	signers := make([]common.Address, 0, len(entries))
	for i, e := range entries {
		leaves[i] = merkle.Leaf(e.Address)
		if e.Signed {
			signers = append(signers, e.Address)
		}
	}

	root, err := merkle.Root(leaves)
	if err != nil {
		return nil, err
	}
	if root != set.Root {
		return nil, ErrRootMismatch
	}
	if uint64(len(signers)) < set.Threshold {
		return nil, fmt.Errorf("%w: got %d, required %d", signature.ErrInsufficientSignatures, len(signers), set.Threshold)
	}
	return signers, nil
}

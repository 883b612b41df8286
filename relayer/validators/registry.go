// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package validators

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ChainSafe/utopia-relay/relayer/signature"
	"github.com/ChainSafe/utopia-relay/store"
)

const (
	registryMemberPrefix = "validators:registry:member:"
	registryMemberKey    = registryMemberPrefix + "%s"
	registryRequiredKey  = "validators:registry:required"
	registryCountKey     = "validators:registry:count"
)

// Registry is a governance managed mapping of validators with a live
// required signatures counter. Membership and threshold are read at
// verification time, so changes between off-chain signature collection and
// submission affect pending messages.
type Registry struct {
	verifier *signature.Verifier
}

func NewRegistry(verifier *signature.Verifier) *Registry {
	return &Registry{verifier: verifier}
}

func (r *Registry) IsValidator(kv store.KeyValueReader, addr common.Address) (bool, error) {
	return store.GetBool(kv, store.Key(registryMemberKey, addr.Hex()))
}

func (r *Registry) RequiredSignatures(kv store.KeyValueReader) (uint64, error) {
	return store.GetUint64(kv, []byte(registryRequiredKey))
}

func (r *Registry) Count(kv store.KeyValueReader) (uint64, error) {
	return store.GetUint64(kv, []byte(registryCountKey))
}

// Validators lists registered validators in ascending order.
func (r *Registry) Validators(db store.KeyValueStore) ([]common.Address, error) {
	validators := make([]common.Address, 0)
	err := db.Iterate([]byte(registryMemberPrefix), func(key, value []byte) bool {
		if bytes.Equal(value, []byte{1}) {
			validators = append(validators, common.HexToAddress(string(key[len(registryMemberPrefix):])))
		}
		return true
	})
	return validators, err
}

// Initialize sets the first validator set. It fails once validators exist.
func (r *Registry) Initialize(rw store.KeyValueReaderWriter, validators []common.Address, required uint64) error {
	count, err := r.Count(rw)
	if err != nil {
		return err
	}
	if count != 0 {
		return ErrAlreadyInitialized
	}
	for _, v := range validators {
		if err := r.AddValidator(rw, v); err != nil {
			return err
		}
	}
	return r.SetRequiredSignatures(rw, required)
}

func (r *Registry) AddValidator(rw store.KeyValueReaderWriter, addr common.Address) error {
	if addr == (common.Address{}) {
		return ErrZeroAddress
	}
	isValidator, err := r.IsValidator(rw, addr)
	if err != nil {
		return err
	}
	if isValidator {
		return fmt.Errorf("%w: %s", ErrAlreadyValidator, addr)
	}
	count, err := r.Count(rw)
	if err != nil {
		return err
	}

	if err := store.SetBool(rw, store.Key(registryMemberKey, addr.Hex()), true); err != nil {
		return err
	}
	return store.SetUint64(rw, []byte(registryCountKey), count+1)
}

// RemoveValidator keeps the count at or above the required signatures.
func (r *Registry) RemoveValidator(rw store.KeyValueReaderWriter, addr common.Address) error {
	isValidator, err := r.IsValidator(rw, addr)
	if err != nil {
		return err
	}
	if !isValidator {
		return fmt.Errorf("%w: %s", ErrNotValidator, addr)
	}
	count, err := r.Count(rw)
	if err != nil {
		return err
	}
	required, err := r.RequiredSignatures(rw)
	if err != nil {
		return err
	}
	if count-1 < required {
		return fmt.Errorf("%w: removing %s leaves %d validators for %d required signatures", ErrInvalidThreshold, addr, count-1, required)
	}

	if err := store.SetBool(rw, store.Key(registryMemberKey, addr.Hex()), false); err != nil {
		return err
	}
	return store.SetUint64(rw, []byte(registryCountKey), count-1)
}

func (r *Registry) SetRequiredSignatures(rw store.KeyValueReaderWriter, required uint64) error {
	count, err := r.Count(rw)
	if err != nil {
		return err
	}
	if required == 0 || required > count {
		return fmt.Errorf("%w: required %d, validators %d", ErrInvalidThreshold, required, count)
	}
	return store.SetUint64(rw, []byte(registryRequiredKey), required)
}

func (r *Registry) IsMember(kv store.KeyValueReader, addr common.Address, _ []common.Hash) (bool, error) {
	return r.IsValidator(kv, addr)
}

func (r *Registry) VerifySignatures(kv store.KeyValueReader, hash common.Hash, blob []byte, _ time.Time) ([]common.Address, error) {
	required, err := r.RequiredSignatures(kv)
	if err != nil {
		return nil, err
	}

	view := &registryView{registry: r, kv: kv, required: required}
	signers, err := r.verifier.VerifyPacked(hash, blob, view)
	if view.err != nil {
		return nil, view.err
	}
	return signers, err
}

// registryView adapts the registry to signature.Membership and keeps the
// first storage error it hit.
type registryView struct {
	registry *Registry
	kv       store.KeyValueReader
	required uint64
	err      error
}

func (v *registryView) IsValidator(addr common.Address) bool {
	ok, err := v.registry.IsValidator(v.kv, addr)
	if err != nil && v.err == nil {
		v.err = err
	}
	return ok
}

func (v *registryView) RequiredSignatures() uint64 {
	return v.required
}

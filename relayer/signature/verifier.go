// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package signature

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 4096

// Membership answers whether an address belongs to the current validator set.
type Membership interface {
	IsValidator(addr common.Address) bool
	RequiredSignatures() uint64
}

type cacheKey struct {
	hash common.Hash
	sig  [SignatureLength]byte
}

// Verifier recovers signers of packed signature blobs and checks them against
// a validator set. Recovered addresses are cached per (hash, signature).
type Verifier struct {
	cache *lru.Cache[cacheKey, common.Address]
}

func NewVerifier(cacheSize int) (*Verifier, error) {
	cache, err := lru.New[cacheKey, common.Address](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Verifier{cache: cache}, nil
}

func (v *Verifier) Recover(hash common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return Recover(hash, sig)
	}

	key := cacheKey{hash: hash}
	copy(key.sig[:], sig)
	if addr, ok := v.cache.Get(key); ok {
		return addr, nil
	}

	addr, err := Recover(hash, sig)
	if err != nil {
		return common.Address{}, err
	}
	v.cache.Add(key, addr)
	return addr, nil
}

// RecoverAll returns the signer of every signature in the blob, in blob order.
func (v *Verifier) RecoverAll(hash common.Hash, blob []byte) ([]common.Address, error) {
	sigs, err := Split(blob)
	if err != nil {
		return nil, err
	}

	signers := make([]common.Address, len(sigs))
	for i, sig := range sigs {
		signers[i], err = v.Recover(hash, sig)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
	}
	return signers, nil
}

// VerifyPacked checks that every signature in the blob comes from a distinct
// current validator and that there are at least RequiredSignatures of them.
// Order is not enforced.
func (v *Verifier) VerifyPacked(hash common.Hash, blob []byte, members Membership) ([]common.Address, error) {
	required := members.RequiredSignatures()
	if required == 0 {
		return nil, ErrInvalidThreshold
	}

	signers, err := v.RecoverAll(hash, blob)
	if err != nil {
		return nil, err
	}
	if uint64(len(signers)) < required {
		return nil, fmt.Errorf("%w: got %d, required %d", ErrInsufficientSignatures, len(signers), required)
	}

	seen := make(map[common.Address]struct{}, len(signers))
	for _, signer := range signers {
		if _, ok := seen[signer]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSigner, signer)
		}
		seen[signer] = struct{}{}

		if !members.IsValidator(signer) {
			return nil, fmt.Errorf("%w: %s", ErrNotValidator, signer)
		}
	}
	return signers, nil
}

// Entry is one validator slot of an interleaved blob.
type Entry struct {
	Address common.Address
	Signed  bool
}

// ParseInterleaved scans a blob of v||r||s signer entries and 0x00||address
// placeholders in a single pass. Signer entries carry v as 27 or 28 so that
// the leading byte tells them apart from placeholders. Addresses must be strictly ascending, which
// also rules out duplicates.
func (v *Verifier) ParseInterleaved(hash common.Hash, blob []byte) ([]Entry, error) {
	if len(blob) == 0 {
		return nil, ErrNoSignatures
	}

	entries := make([]Entry, 0, len(blob)/PlaceholderLength)
	for offset := 0; offset < len(blob); {
		var entry Entry
		if blob[offset] == 0x00 {
			if offset+PlaceholderLength > len(blob) {
				return nil, fmt.Errorf("%w: truncated placeholder at offset %d", ErrMalformedSignatures, offset)
			}
			entry.Address = common.BytesToAddress(blob[offset+1 : offset+PlaceholderLength])
			offset += PlaceholderLength
		} else {
			if blob[offset] != 27 && blob[offset] != 28 {
				return nil, fmt.Errorf("%w: entry %d has v %d, interleaved signatures need 27 or 28", ErrInvalidV, len(entries), blob[offset])
			}
			if offset+SignatureLength > len(blob) {
				return nil, fmt.Errorf("%w: truncated signature at offset %d", ErrMalformedSignatures, offset)
			}
			sig := make([]byte, SignatureLength)
			copy(sig, blob[offset+1:offset+SignatureLength])
			sig[64] = blob[offset]

			addr, err := v.Recover(hash, sig)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", len(entries), err)
			}
			entry.Address = addr
			entry.Signed = true
			offset += SignatureLength
		}

		if n := len(entries); n > 0 && bytes.Compare(entries[n-1].Address.Bytes(), entry.Address.Bytes()) >= 0 {
			return nil, fmt.Errorf("%w: %s after %s", ErrUnsortedEntries, entry.Address, entries[n-1].Address)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// PackInterleaved builds an interleaved blob from ascending validators and the
// signatures (r||s||v) of those who signed. A v of 0 or 1 is written as 27 or 28.
func PackInterleaved(validators []common.Address, sigs map[common.Address][]byte) []byte {
	blob := make([]byte, 0, len(validators)*SignatureLength)
	for _, addr := range validators {
		sig, ok := sigs[addr]
		if !ok {
			blob = append(blob, 0x00)
			blob = append(blob, addr.Bytes()...)
			continue
		}
		v := sig[64]
		if v < 27 {
			v += 27
		}
		blob = append(blob, v)
		blob = append(blob, sig[:64]...)
	}
	return blob
}

// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package signature

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// SignatureLength is the size of a packed r||s||v signature.
	SignatureLength = crypto.SignatureLength
	// PlaceholderLength is the size of a 0x00||address entry for a non signing validator.
	PlaceholderLength = 1 + common.AddressLength
)

var (
	ErrMalformedSignatures    = errors.New("malformed signature blob")
	ErrNoSignatures           = errors.New("no signatures provided")
	ErrInvalidV               = errors.New("invalid signature recovery id")
	ErrInvalidSignature       = errors.New("invalid signature values")
	ErrDuplicateSigner        = errors.New("duplicate signer")
	ErrNotValidator           = errors.New("signer is not a validator")
	ErrInsufficientSignatures = errors.New("not enough valid signatures")
	ErrInvalidThreshold       = errors.New("required signatures must be greater than zero")
	ErrUnsortedEntries        = errors.New("validator entries are not in strictly ascending order")
)

// Recover returns the address that produced sig over hash. sig is r||s||v with
// v in {27, 28} or {0, 1}.
func Recover(hash common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: signature length %d", ErrMalformedSignatures, len(sig))
	}

	v := sig[64]
	switch v {
	case 27, 28:
		v -= 27
	case 0, 1:
	default:
		return common.Address{}, fmt.Errorf("%w: %d", ErrInvalidV, sig[64])
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return common.Address{}, ErrInvalidSignature
	}

	normalized := make([]byte, SignatureLength)
	copy(normalized, sig[:64])
	normalized[64] = v
	pub, err := crypto.SigToPub(hash.Bytes(), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Split cuts a packed blob into 65 byte signatures. The count is derived from
// the blob length which must be an exact multiple of 65.
func Split(blob []byte) ([][]byte, error) {
	if len(blob) == 0 {
		return nil, ErrNoSignatures
	}
	if len(blob)%SignatureLength != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of %d", ErrMalformedSignatures, len(blob), SignatureLength)
	}

	count := len(blob) / SignatureLength
	sigs := make([][]byte, count)
	for i := 0; i < count; i++ {
		sigs[i] = blob[i*SignatureLength : (i+1)*SignatureLength]
	}
	return sigs, nil
}

// Pack concatenates signatures into a blob accepted by Split.
func Pack(sigs ...[]byte) []byte {
	blob := make([]byte, 0, len(sigs)*SignatureLength)
	for _, sig := range sigs {
		blob = append(blob, sig...)
	}
	return blob
}

// SignHash produces an r||s||v signature over hash with v in {27, 28}.
func SignHash(hash common.Hash, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(hash.Bytes(), key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

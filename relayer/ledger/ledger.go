// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ChainSafe/utopia-relay/store"
)

var (
	ErrAlreadyRelayed   = errors.New("message already relayed")
	ErrAlreadySigned    = errors.New("message already signed by signer")
	ErrAlreadyFixed     = errors.New("message already fixed")
	ErrAlreadyCollected = errors.New("signatures already collected")
	ErrUnknownMessage   = errors.New("unknown message")
)

var (
	relayedKey        = "ledger:relayed:%s"
	signedKey         = "ledger:signed:%s"
	fixedKey          = "ledger:fixed:%s"
	messageKey        = "ledger:message:%s"
	signatureKey      = "ledger:signature:%s:%d"
	signatureCountKey = "ledger:signatures:%s"
	collectedKey      = "ledger:collected:%s"
	affirmationKey    = "ledger:affirmations:%s"
	affirmedKey       = "ledger:affirmed:%s"
	callStatusKey     = "ledger:callstatus:%s"
	depositKey        = "ledger:deposit:%s"
	nonceKey          = "ledger:nonce"
)

// Ledger tracks per message idempotency flags. Every Mark* call fails if the
// flag is already set; a failed mark must abort the surrounding call.
type Ledger struct{}

func New() *Ledger {
	return &Ledger{}
}

func (l *Ledger) IsRelayed(r store.KeyValueReader, id common.Hash) (bool, error) {
	return store.GetBool(r, store.Key(relayedKey, id.Hex()))
}

func (l *Ledger) MarkRelayed(rw store.KeyValueReaderWriter, id common.Hash) error {
	return markOnce(rw, store.Key(relayedKey, id.Hex()), fmt.Errorf("%w: %s", ErrAlreadyRelayed, id))
}

// signedID is keccak(signer || messageHash).
func signedID(signer common.Address, hash common.Hash) common.Hash {
	return crypto.Keccak256Hash(signer.Bytes(), hash.Bytes())
}

func (l *Ledger) IsSigned(r store.KeyValueReader, signer common.Address, hash common.Hash) (bool, error) {
	return store.GetBool(r, store.Key(signedKey, signedID(signer, hash).Hex()))
}

func (l *Ledger) MarkSigned(rw store.KeyValueReaderWriter, signer common.Address, hash common.Hash) error {
	return markOnce(
		rw,
		store.Key(signedKey, signedID(signer, hash).Hex()),
		fmt.Errorf("%w: %s signed %s", ErrAlreadySigned, signer, hash),
	)
}

func (l *Ledger) IsFixed(r store.KeyValueReader, id common.Hash) (bool, error) {
	return store.GetBool(r, store.Key(fixedKey, id.Hex()))
}

func (l *Ledger) MarkFixed(rw store.KeyValueReaderWriter, id common.Hash) error {
	return markOnce(rw, store.Key(fixedKey, id.Hex()), fmt.Errorf("%w: %s", ErrAlreadyFixed, id))
}

func markOnce(rw store.KeyValueReaderWriter, key []byte, alreadySet error) error {
	set, err := store.GetBool(rw, key)
	if err != nil {
		return err
	}
	if set {
		return alreadySet
	}
	return store.SetBool(rw, key, true)
}

// SetMessage keeps the raw message so relayers can fetch it with its signatures.
func (l *Ledger) SetMessage(rw store.KeyValueReaderWriter, hash common.Hash, raw []byte) error {
	return rw.SetByKey(store.Key(messageKey, hash.Hex()), raw)
}

func (l *Ledger) Message(r store.KeyValueReader, hash common.Hash) ([]byte, error) {
	raw, err := r.GetByKey(store.Key(messageKey, hash.Hex()))
	if err != nil {
		if store.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMessage, hash)
		}
		return nil, err
	}
	return raw, nil
}

// AddSignature appends sig to the collection of hash and returns the new count.
func (l *Ledger) AddSignature(rw store.KeyValueReaderWriter, hash common.Hash, sig []byte) (uint64, error) {
	count, err := l.SignatureCount(rw, hash)
	if err != nil {
		return 0, err
	}
	if err := rw.SetByKey(store.Key(signatureKey, hash.Hex(), count), sig); err != nil {
		return 0, err
	}
	count++
	return count, store.SetUint64(rw, store.Key(signatureCountKey, hash.Hex()), count)
}

func (l *Ledger) SignatureCount(r store.KeyValueReader, hash common.Hash) (uint64, error) {
	return store.GetUint64(r, store.Key(signatureCountKey, hash.Hex()))
}

func (l *Ledger) Signatures(r store.KeyValueReader, hash common.Hash) ([][]byte, error) {
	count, err := l.SignatureCount(r, hash)
	if err != nil {
		return nil, err
	}
	sigs := make([][]byte, count)
	for i := uint64(0); i < count; i++ {
		sigs[i], err = r.GetByKey(store.Key(signatureKey, hash.Hex(), i))
		if err != nil {
			return nil, err
		}
	}
	return sigs, nil
}

func (l *Ledger) IsCollected(r store.KeyValueReader, hash common.Hash) (bool, error) {
	return store.GetBool(r, store.Key(collectedKey, hash.Hex()))
}

// MarkCollected records the first threshold crossing of a signature collection.
func (l *Ledger) MarkCollected(rw store.KeyValueReaderWriter, hash common.Hash) error {
	return markOnce(rw, store.Key(collectedKey, hash.Hex()), fmt.Errorf("%w: %s", ErrAlreadyCollected, hash))
}

// AddAffirmation increments the affirmation count of hash and returns it.
func (l *Ledger) AddAffirmation(rw store.KeyValueReaderWriter, hash common.Hash) (uint64, error) {
	count, err := l.Affirmations(rw, hash)
	if err != nil {
		return 0, err
	}
	count++
	return count, store.SetUint64(rw, store.Key(affirmationKey, hash.Hex()), count)
}

func (l *Ledger) Affirmations(r store.KeyValueReader, hash common.Hash) (uint64, error) {
	return store.GetUint64(r, store.Key(affirmationKey, hash.Hex()))
}

func (l *Ledger) IsAffirmationProcessed(r store.KeyValueReader, hash common.Hash) (bool, error) {
	return store.GetBool(r, store.Key(affirmedKey, hash.Hex()))
}

func (l *Ledger) MarkAffirmationProcessed(rw store.KeyValueReaderWriter, hash common.Hash) error {
	return markOnce(rw, store.Key(affirmedKey, hash.Hex()), fmt.Errorf("%w: %s", ErrAlreadyRelayed, hash))
}

// SetCallStatus records the outcome of an arbitrary call executed for id.
func (l *Ledger) SetCallStatus(rw store.KeyValueReaderWriter, id common.Hash, ok bool) error {
	status := byte(0)
	if ok {
		status = 1
	}
	return rw.SetByKey(store.Key(callStatusKey, id.Hex()), []byte{status})
}

// CallStatus returns the recorded outcome and whether one exists.
func (l *Ledger) CallStatus(r store.KeyValueReader, id common.Hash) (bool, bool, error) {
	v, err := r.GetByKey(store.Key(callStatusKey, id.Hex()))
	if err != nil {
		if store.IsNotFound(err) {
			return false, false, nil
		}
		return false, false, err
	}
	return len(v) == 1 && v[0] == 1, true, nil
}

// Deposit is an outbound transfer that may later be refunded by a fix.
type Deposit struct {
	Sender    common.Address
	Recipient common.Address
	Value     *big.Int
}

func (l *Ledger) RecordDeposit(rw store.KeyValueReaderWriter, id common.Hash, d Deposit) error {
	raw := make([]byte, 0, 2*common.AddressLength+32)
	raw = append(raw, d.Sender.Bytes()...)
	raw = append(raw, d.Recipient.Bytes()...)
	raw = append(raw, d.Value.Bytes()...)
	return rw.SetByKey(store.Key(depositKey, id.Hex()), raw)
}

func (l *Ledger) Deposit(r store.KeyValueReader, id common.Hash) (*Deposit, error) {
	raw, err := r.GetByKey(store.Key(depositKey, id.Hex()))
	if err != nil {
		if store.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMessage, id)
		}
		return nil, err
	}
	if len(raw) < 2*common.AddressLength {
		return nil, fmt.Errorf("corrupted deposit record %s", id)
	}
	return &Deposit{
		Sender:    common.BytesToAddress(raw[:common.AddressLength]),
		Recipient: common.BytesToAddress(raw[common.AddressLength : 2*common.AddressLength]),
		Value:     new(big.Int).SetBytes(raw[2*common.AddressLength:]),
	}, nil
}

// NextNonce returns the current deposit nonce and stores its successor.
func (l *Ledger) NextNonce(rw store.KeyValueReaderWriter) (uint64, error) {
	nonce, err := store.GetUint64(rw, []byte(nonceKey))
	if err != nil {
		return 0, err
	}
	return nonce, store.SetUint64(rw, []byte(nonceKey), nonce+1)
}

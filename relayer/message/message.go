// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package message

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	RecipientLength = common.AddressLength
	ValueLength     = 32
	TxHashLength    = common.HashLength
	ContractLength  = common.AddressLength
	GasPriceLength  = 32
	CallGasLength   = 32

	// Length is the encoded size of a withdrawal message without gas price.
	Length = RecipientLength + ValueLength + TxHashLength + ContractLength
	// LengthWithGasPrice is the encoded size of a message carrying the home gas price.
	LengthWithGasPrice = Length + GasPriceLength
	// MinCallLength is the encoded size of a call message with empty calldata.
	MinCallLength = Length + CallGasLength
)

var (
	ErrInvalidLength = errors.New("invalid message length")
	ErrValueOverflow = errors.New("value does not fit into 256 bits")
	ErrGasOverflow   = errors.New("call gas does not fit into 64 bits")
	ErrCallGasPrice  = errors.New("call messages do not carry a gas price")
)

// Message is a validator signed withdrawal message. GasPrice is nil for the
// variant that does not carry the home gas price. Call is set for messages
// that ask the bridge to call Recipient.
type Message struct {
	Recipient common.Address
	Value     *big.Int
	TxHash    common.Hash
	Contract  common.Address
	GasPrice  *big.Int
	Call      *Call
}

// Call is the gas budget and calldata of a call message.
type Call struct {
	Gas  uint64
	Data []byte
}

func NewMessage(recipient common.Address, value *big.Int, txHash common.Hash, contract common.Address) *Message {
	return &Message{
		Recipient: recipient,
		Value:     value,
		TxHash:    txHash,
		Contract:  contract,
	}
}

// Encode returns the canonical fixed width encoding that validators sign.
func (m *Message) Encode() ([]byte, error) {
	if m.Value == nil || m.Value.Sign() < 0 || m.Value.BitLen() > 256 {
		return nil, ErrValueOverflow
	}
	buf := bytes.Buffer{}
	buf.Write(m.Recipient.Bytes())
	buf.Write(math.U256Bytes(new(big.Int).Set(m.Value)))
	buf.Write(m.TxHash.Bytes())
	buf.Write(m.Contract.Bytes())
	if m.GasPrice != nil {
		if m.GasPrice.Sign() < 0 || m.GasPrice.BitLen() > 256 {
			return nil, ErrValueOverflow
		}
		buf.Write(math.U256Bytes(new(big.Int).Set(m.GasPrice)))
	}
	if m.Call != nil {
		if m.GasPrice != nil {
			return nil, ErrCallGasPrice
		}
		buf.Write(math.U256Bytes(new(big.Int).SetUint64(m.Call.Gas)))
		buf.Write(m.Call.Data)
	}
	return buf.Bytes(), nil
}

// Hash returns the digest signed by validators for the encoded message.
func (m *Message) Hash() (common.Hash, error) {
	raw, err := m.Encode()
	if err != nil {
		return common.Hash{}, err
	}
	return SigningHash(raw), nil
}

// Decode parses a canonical message. Both the 104 and 136 byte variants are accepted.
func Decode(raw []byte) (*Message, error) {
	if len(raw) != Length && len(raw) != LengthWithGasPrice {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, len(raw))
	}
	m := decodeBase(raw)
	if len(raw) == LengthWithGasPrice {
		m.GasPrice = new(big.Int).SetBytes(raw[Length:LengthWithGasPrice])
	}
	return m, nil
}

// DecodeCall parses a call message: the 104 byte base followed by a 32 byte
// gas budget and the calldata.
func DecodeCall(raw []byte) (*Message, error) {
	if len(raw) < MinCallLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, len(raw))
	}
	m := decodeBase(raw)
	gas := new(big.Int).SetBytes(raw[Length:MinCallLength])
	if !gas.IsUint64() {
		return nil, fmt.Errorf("%w: %s", ErrGasOverflow, gas)
	}
	m.Call = &Call{
		Gas:  gas.Uint64(),
		Data: bytes.Clone(raw[MinCallLength:]),
	}
	return m, nil
}

func decodeBase(raw []byte) *Message {
	offset := 0
	m := &Message{}
	m.Recipient = common.BytesToAddress(raw[offset : offset+RecipientLength])
	offset += RecipientLength
	m.Value = new(big.Int).SetBytes(raw[offset : offset+ValueLength])
	offset += ValueLength
	m.TxHash = common.BytesToHash(raw[offset : offset+TxHashLength])
	offset += TxHashLength
	m.Contract = common.BytesToAddress(raw[offset : offset+ContractLength])
	return m
}

// SigningHash applies the "signed message" domain prefix to raw bytes.
func SigningHash(raw []byte) common.Hash {
	return common.BytesToHash(accounts.TextHash(raw))
}

// AffirmationHash identifies an inbound transfer affirmed by home validators.
func AffirmationHash(recipient common.Address, value *big.Int, txHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(
		recipient.Bytes(),
		math.U256Bytes(new(big.Int).Set(value)),
		txHash.Bytes(),
	)
}

// FixHash is signed by validators to authorize refunding a failed message.
func FixHash(contract common.Address, messageID common.Hash) common.Hash {
	return SigningHash(append([]byte("fix"), append(contract.Bytes(), messageID.Bytes()...)...))
}

// RejectionHash is signed by validators to challenge a pending commit.
func RejectionHash(contract common.Address, messageID common.Hash, commitTimestamp uint64) common.Hash {
	buf := bytes.Buffer{}
	buf.WriteString("reject")
	buf.Write(contract.Bytes())
	buf.Write(messageID.Bytes())
	buf.Write(math.U256Bytes(new(big.Int).SetUint64(commitTimestamp)))
	return SigningHash(buf.Bytes())
}

// DepositID derives the id of an outbound deposit from the bridge address and its nonce.
func DepositID(bridge common.Address, nonce uint64) common.Hash {
	return crypto.Keccak256Hash(bridge.Bytes(), math.U256Bytes(new(big.Int).SetUint64(nonce)))
}

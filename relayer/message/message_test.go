package message_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/suite"

	"github.com/ChainSafe/utopia-relay/relayer/message"
)

var (
	recipient = common.HexToAddress("0x1111111111111111111111111111111111111111")
	contract  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	txHash    = common.HexToHash("0xabcdef")
)

type MessageTestSuite struct {
	suite.Suite
}

func TestRunMessageTestSuite(t *testing.T) {
	suite.Run(t, new(MessageTestSuite))
}

func (s *MessageTestSuite) Test_EncodeLayout() {
	raw, err := message.NewMessage(recipient, big.NewInt(258), txHash, contract).Encode()

	s.Nil(err)
	s.Len(raw, message.Length)
	s.Equal(recipient.Bytes(), raw[:20])
	s.Equal(byte(1), raw[20+30])
	s.Equal(byte(2), raw[20+31])
	s.Equal(txHash.Bytes(), raw[52:84])
	s.Equal(contract.Bytes(), raw[84:104])
}

func (s *MessageTestSuite) Test_DecodeBothVariants() {
	msg := message.NewMessage(recipient, big.NewInt(100), txHash, contract)
	raw, err := msg.Encode()
	s.Nil(err)

	decoded, err := message.Decode(raw)
	s.Nil(err)
	s.Equal(recipient, decoded.Recipient)
	s.Equal(0, decoded.Value.Cmp(big.NewInt(100)))
	s.Nil(decoded.GasPrice)

	msg.GasPrice = big.NewInt(5)
	raw, err = msg.Encode()
	s.Nil(err)
	s.Len(raw, message.LengthWithGasPrice)

	decoded, err = message.Decode(raw)
	s.Nil(err)
	s.Equal(0, decoded.GasPrice.Cmp(big.NewInt(5)))
	s.Equal(contract, decoded.Contract)
	s.Equal(txHash, decoded.TxHash)
}

func (s *MessageTestSuite) Test_DecodeInvalidLength() {
	_, err := message.Decode(make([]byte, message.Length-1))
	s.ErrorIs(err, message.ErrInvalidLength)

	_, err = message.Decode(make([]byte, message.Length+1))
	s.ErrorIs(err, message.ErrInvalidLength)
}

func (s *MessageTestSuite) Test_CallMessageRoundTrip() {
	msg := message.NewMessage(recipient, big.NewInt(7), txHash, contract)
	msg.Call = &message.Call{Gas: 50000, Data: []byte{0xca, 0xfe}}

	raw, err := msg.Encode()
	s.Nil(err)
	s.Len(raw, message.MinCallLength+2)

	decoded, err := message.DecodeCall(raw)
	s.Nil(err)
	s.Equal(recipient, decoded.Recipient)
	s.Equal(uint64(50000), decoded.Call.Gas)
	s.Equal([]byte{0xca, 0xfe}, decoded.Call.Data)
	s.Nil(decoded.GasPrice)
}

func (s *MessageTestSuite) Test_DecodeCallInvalid() {
	_, err := message.DecodeCall(make([]byte, message.MinCallLength-1))
	s.ErrorIs(err, message.ErrInvalidLength)

	raw := make([]byte, message.MinCallLength)
	raw[message.Length] = 1
	_, err = message.DecodeCall(raw)
	s.ErrorIs(err, message.ErrGasOverflow)

	msg := message.NewMessage(recipient, big.NewInt(7), txHash, contract)
	msg.GasPrice = big.NewInt(1)
	msg.Call = &message.Call{Gas: 1}
	_, err = msg.Encode()
	s.ErrorIs(err, message.ErrCallGasPrice)
}

func (s *MessageTestSuite) Test_EncodeValueOverflow() {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)

	_, err := message.NewMessage(recipient, tooBig, txHash, contract).Encode()
	s.ErrorIs(err, message.ErrValueOverflow)

	_, err = message.NewMessage(recipient, big.NewInt(-1), txHash, contract).Encode()
	s.ErrorIs(err, message.ErrValueOverflow)
}

func (s *MessageTestSuite) Test_SigningHashUsesDomainPrefix() {
	raw := []byte("payload")
	expected := crypto.Keccak256Hash([]byte("\x19Ethereum Signed Message:\n7payload"))

	s.Equal(expected, message.SigningHash(raw))
}

func (s *MessageTestSuite) Test_HashMatchesSigningHashOfEncoding() {
	msg := message.NewMessage(recipient, big.NewInt(1), txHash, contract)
	raw, err := msg.Encode()
	s.Nil(err)

	hash, err := msg.Hash()

	s.Nil(err)
	s.Equal(message.SigningHash(raw), hash)
}

func (s *MessageTestSuite) Test_DomainSeparatedHashes() {
	id := common.HexToHash("0x01")

	s.NotEqual(message.FixHash(contract, id), message.RejectionHash(contract, id, 0))
	s.NotEqual(message.RejectionHash(contract, id, 1), message.RejectionHash(contract, id, 2))
	s.NotEqual(message.DepositID(contract, 0), message.DepositID(contract, 1))
	s.NotEqual(message.DepositID(contract, 0), message.DepositID(recipient, 0))
}

type ModeTestSuite struct {
	suite.Suite
}

func TestRunModeTestSuite(t *testing.T) {
	suite.Run(t, new(ModeTestSuite))
}

func (s *ModeTestSuite) Test_TagsAreDistinct() {
	seen := map[message.Mode]string{}
	for name, mode := range message.Modes() {
		other, ok := seen[mode]
		s.False(ok, "%s collides with %s", name, other)
		seen[mode] = name
	}
}

func (s *ModeTestSuite) Test_ModeFromString() {
	mode, err := message.ModeFromString("optimistic")
	s.Nil(err)
	s.Equal(message.Optimistic, mode)

	_, err = message.ModeFromString("unknown")
	s.NotNil(err)
}

func (s *ModeTestSuite) Test_TagIsKeccakPrefix() {
	s.Equal(crypto.Keccak256([]byte("erc-to-native-core"))[:4], message.ErcToNative[:])
}

type ValidatorSetUpdateTestSuite struct {
	suite.Suite
}

func TestRunValidatorSetUpdateTestSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSetUpdateTestSuite))
}

func (s *ValidatorSetUpdateTestSuite) Test_EncodeDecode() {
	update := message.ValidatorSetUpdate{
		Root:       common.HexToHash("0xdead"),
		Threshold:  3,
		Expiration: 1700000000,
	}

	raw := update.Encode()
	s.Len(raw, message.ValidatorSetUpdateLength)

	decoded, err := message.DecodeValidatorSetUpdate(raw)
	s.Nil(err)
	s.Equal(update, decoded)
	s.Equal(message.SigningHash(raw), update.Hash())
}

func (s *ValidatorSetUpdateTestSuite) Test_DecodeInvalid() {
	_, err := message.DecodeValidatorSetUpdate(make([]byte, 95))
	s.ErrorIs(err, message.ErrInvalidLength)

	raw := make([]byte, message.ValidatorSetUpdateLength)
	raw[32] = 1
	_, err = message.DecodeValidatorSetUpdate(raw)
	s.ErrorIs(err, message.ErrValueOverflow)
}

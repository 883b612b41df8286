package bridge_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"github.com/ChainSafe/utopia-relay/relayer/bridge"
	"github.com/ChainSafe/utopia-relay/relayer/events"
	"github.com/ChainSafe/utopia-relay/relayer/merkle"
	"github.com/ChainSafe/utopia-relay/relayer/message"
	"github.com/ChainSafe/utopia-relay/relayer/signature"
	"github.com/ChainSafe/utopia-relay/relayer/validators"
)

type MerkleBridgeTestSuite struct {
	suite.Suite
	env        *bridgeEnv
	validators []validator
	tree       *merkle.Tree
	expiration uint64
}

func TestRunMerkleBridgeTestSuite(t *testing.T) {
	suite.Run(t, new(MerkleBridgeTestSuite))
}

func addressesOf(vals []validator) []common.Address {
	addrs := make([]common.Address, len(vals))
	for i, v := range vals {
		addrs[i] = v.addr
	}
	return addrs
}

func (s *MerkleBridgeTestSuite) SetupTest() {
	var err error
	s.validators = newValidators(4)
	s.tree, err = merkle.NewTree(addressesOf(s.validators))
	s.Require().Nil(err)
	s.expiration = 1700000000 + 3600

	s.env = newBridgeEnv(&s.Suite, map[string]interface{}{
		"mode":    "erc-to-erc",
		"address": bridgeAddress.Hex(),
		"owner":   ownerAddress.Hex(),
		"oracle":  bridge.MerkleOracle,
		"validatorSet": map[string]interface{}{
			"root":       s.tree.Root().Hex(),
			"threshold":  3,
			"expiration": s.expiration,
		},
		"inbound":  limitsConfig("1000", "500", "1"),
		"outbound": limitsConfig("1000", "500", "1"),
	})
}

func (s *MerkleBridgeTestSuite) interleaved(vals []validator, hash common.Hash, signers ...int) []byte {
	sigs := map[common.Address][]byte{}
	for _, i := range signers {
		sigs[vals[i].addr] = sign(hash, vals[i])
	}
	return signature.PackInterleaved(addressesOf(vals), sigs)
}

func (s *MerkleBridgeTestSuite) message(txHash common.Hash) ([]byte, common.Hash) {
	raw, err := message.NewMessage(recipient, big.NewInt(10), txHash, bridgeAddress).Encode()
	s.Require().Nil(err)
	return raw, message.SigningHash(raw)
}

func (s *MerkleBridgeTestSuite) Test_ExecuteSignatures() {
	raw, hash := s.message(common.HexToHash("0x01"))

	_, err := s.env.bridge.ExecuteSignatures(context.Background(), raw, s.interleaved(s.validators, hash, 0, 2, 3))

	s.Nil(err)
	s.Equal("10", s.env.balance(&s.Suite, recipient))
}

func (s *MerkleBridgeTestSuite) Test_ExecuteSignatures_BelowThreshold() {
	raw, hash := s.message(common.HexToHash("0x02"))

	_, err := s.env.bridge.ExecuteSignatures(context.Background(), raw, s.interleaved(s.validators, hash, 0, 1))

	s.ErrorIs(err, signature.ErrInsufficientSignatures)
	s.Equal("0", s.env.balance(&s.Suite, recipient))
}

func (s *MerkleBridgeTestSuite) Test_ExecuteSignatures_ExpiredSet() {
	raw, hash := s.message(common.HexToHash("0x03"))
	s.env.clock.Add(time.Hour)

	_, err := s.env.bridge.ExecuteSignatures(context.Background(), raw, s.interleaved(s.validators, hash, 0, 1, 2))

	s.ErrorIs(err, validators.ErrValidatorSetExpired)
}

func (s *MerkleBridgeTestSuite) Test_UpdateValidatorSet() {
	next := newValidators(2)
	tree, err := merkle.NewTree(addressesOf(next))
	s.Nil(err)
	update := message.ValidatorSetUpdate{Root: tree.Root(), Threshold: 2, Expiration: s.expiration + 3600}

	s.Nil(s.env.bridge.UpdateValidatorSet(update, s.interleaved(s.validators, update.Hash(), 0, 1, 2)))

	set, err := s.env.bridge.ValidatorSet()
	s.Nil(err)
	s.Equal(update, set)
	_, ok := s.env.recorder.Last().(events.NewValidatorSet)
	s.True(ok)

	raw, hash := s.message(common.HexToHash("0x04"))
	_, err = s.env.bridge.ExecuteSignatures(context.Background(), raw, s.interleaved(s.validators, hash, 0, 1, 2))
	s.ErrorIs(err, validators.ErrRootMismatch)
	_, err = s.env.bridge.ExecuteSignatures(context.Background(), raw, s.interleaved(next, hash, 0, 1))
	s.Nil(err)
}

func (s *MerkleBridgeTestSuite) Test_UpdateValidatorSet_InsufficientSignatures() {
	update := message.ValidatorSetUpdate{Root: common.HexToHash("0x01"), Threshold: 1, Expiration: s.expiration}

	err := s.env.bridge.UpdateValidatorSet(update, s.interleaved(s.validators, update.Hash(), 0))

	s.ErrorIs(err, signature.ErrInsufficientSignatures)
	set, err := s.env.bridge.ValidatorSet()
	s.Nil(err)
	s.Equal(s.tree.Root(), set.Root)
}

func (s *MerkleBridgeTestSuite) Test_ForceUpdateValidatorSet() {
	update := message.ValidatorSetUpdate{Root: common.HexToHash("0x01"), Threshold: 1, Expiration: s.expiration}

	err := s.env.bridge.ForceUpdateValidatorSet(sender, update)
	s.ErrorIs(err, bridge.ErrNotOwner)

	s.Nil(s.env.bridge.ForceUpdateValidatorSet(ownerAddress, update))
	set, err := s.env.bridge.ValidatorSet()
	s.Nil(err)
	s.Equal(update.Root, set.Root)
}

func (s *MerkleBridgeTestSuite) Test_RegistryOperationsUnsupported() {
	raw, hash := s.message(common.HexToHash("0x05"))

	err := s.env.bridge.SubmitSignature(s.validators[0].addr, sign(hash, s.validators[0]), raw)
	s.ErrorIs(err, bridge.ErrUnsupportedOperation)

	err = s.env.bridge.AddValidator(ownerAddress, sender)
	s.ErrorIs(err, bridge.ErrUnsupportedOperation)
}

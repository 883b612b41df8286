// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package bridge_test

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"math/big"
	"sort"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/ChainSafe/utopia-relay/lvldb"
	mock_bridge "github.com/ChainSafe/utopia-relay/mock/bridge"
	"github.com/ChainSafe/utopia-relay/relayer/bridge"
	"github.com/ChainSafe/utopia-relay/relayer/effects"
	"github.com/ChainSafe/utopia-relay/relayer/events"
	"github.com/ChainSafe/utopia-relay/relayer/ledger"
	"github.com/ChainSafe/utopia-relay/relayer/limits"
	"github.com/ChainSafe/utopia-relay/relayer/message"
	"github.com/ChainSafe/utopia-relay/relayer/signature"
	"github.com/ChainSafe/utopia-relay/relayer/validators"
)

var (
	bridgeAddress      = common.HexToAddress("0x00000000000000000000000000000000000b71d9")
	counterpartAddress = common.HexToAddress("0x00000000000000000000000000000000000c0a7e")
	ownerAddress       = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	mediatorAddress    = common.HexToAddress("0x000000000000000000000000000000000000ed1a")
	recipient          = common.HexToAddress("0x0000000000000000000000000000000000000bee")
	sender             = common.HexToAddress("0x0000000000000000000000000000000000005e4d")
)

type validator struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

func newValidators(n int) []validator {
	vals := make([]validator, n)
	for i := range vals {
		key, err := crypto.GenerateKey()
		if err != nil {
			panic(err)
		}
		vals[i] = validator{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
	}
	sort.Slice(vals, func(i, j int) bool {
		return bytes.Compare(vals[i].addr.Bytes(), vals[j].addr.Bytes()) < 0
	})
	return vals
}

func hexAddresses(vals []validator) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.addr.Hex()
	}
	return out
}

func sign(hash common.Hash, v validator) []byte {
	sig, err := signature.SignHash(hash, v.key)
	if err != nil {
		panic(err)
	}
	return sig
}

func limitsConfig(daily, maxPerTx, minPerTx string) map[string]interface{} {
	return map[string]interface{}{"dailyLimit": daily, "maxPerTx": maxPerTx, "minPerTx": minPerTx}
}

func anyMetrics(ctrl *gomock.Controller) *mock_bridge.MockMetrics {
	metrics := mock_bridge.NewMockMetrics(ctrl)
	metrics.EXPECT().TrackDeposit(gomock.Any()).AnyTimes()
	metrics.EXPECT().TrackRelayedMessage(gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().TrackRejectedCall(gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().TrackCollectedSignatures().AnyTimes()
	metrics.EXPECT().TrackCommit().AnyTimes()
	metrics.EXPECT().TrackExecution(gomock.Any()).AnyTimes()
	return metrics
}

// bridgeEnv is a bank backed bridge with a mocked clock.
type bridgeEnv struct {
	db       *lvldb.LVLDB
	bank     *effects.Bank
	minter   *effects.MinterCredential
	router   *effects.Router
	clock    *clock.Mock
	recorder *events.Recorder
	bridge   *bridge.Bridge
}

func newBridgeEnv(s *suite.Suite, raw map[string]interface{}) *bridgeEnv {
	config, err := bridge.NewBridgeConfig(raw)
	s.Require().Nil(err)

	db, err := lvldb.NewMemLvlDB()
	s.Require().Nil(err)
	env := &bridgeEnv{
		db:       db,
		bank:     effects.NewBank(db),
		router:   effects.NewRouter(effects.DefaultGasUnitTime),
		clock:    clock.NewMock(),
		recorder: &events.Recorder{},
	}
	env.minter = env.bank.IssueMinter()
	env.clock.Set(time.Unix(1700000000, 0))

	env.bridge, err = bridge.NewBridge(config, db, bridge.Collaborators{
		Minter:   env.minter,
		Custody:  env.bank,
		Caller:   env.router,
		Treasury: env.bank,
	}, env.recorder, anyMetrics(gomock.NewController(s.T())), env.clock)
	s.Require().Nil(err)
	return env
}

func (e *bridgeEnv) balance(s *suite.Suite, addr common.Address) string {
	balance, err := e.bank.BalanceOf(addr)
	s.Nil(err)
	return balance.String()
}

type RegistryBridgeTestSuite struct {
	suite.Suite
	env        *bridgeEnv
	validators []validator
}

func TestRunRegistryBridgeTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryBridgeTestSuite))
}

func (s *RegistryBridgeTestSuite) SetupTest() {
	s.validators = newValidators(3)
	s.env = newBridgeEnv(&s.Suite, map[string]interface{}{
		"mode":               "erc-to-native",
		"address":            bridgeAddress.Hex(),
		"counterpart":        counterpartAddress.Hex(),
		"owner":              ownerAddress.Hex(),
		"validators":         hexAddresses(s.validators),
		"requiredSignatures": 2,
		"inbound":            limitsConfig("1000", "500", "1"),
		"outbound":           limitsConfig("1000", "500", "1"),
	})
	s.Nil(s.env.minter.Mint(context.Background(), effects.CustodyAccount, big.NewInt(1000)))
	s.Nil(s.env.minter.Mint(context.Background(), sender, big.NewInt(1000)))
}

func (s *RegistryBridgeTestSuite) inbound(value int64, txHash common.Hash) ([]byte, common.Hash) {
	raw, err := message.NewMessage(recipient, big.NewInt(value), txHash, bridgeAddress).Encode()
	s.Require().Nil(err)
	return raw, message.SigningHash(raw)
}

func (s *RegistryBridgeTestSuite) packed(hash common.Hash, signers ...int) []byte {
	sigs := make([][]byte, len(signers))
	for i, idx := range signers {
		sigs[i] = sign(hash, s.validators[idx])
	}
	return signature.Pack(sigs...)
}

func (s *RegistryBridgeTestSuite) Test_ExecuteSignatures_RelaysOnce() {
	txHash := common.HexToHash("0x01")
	raw, hash := s.inbound(100, txHash)

	id, err := s.env.bridge.ExecuteSignatures(context.Background(), raw, s.packed(hash, 0, 2))

	s.Nil(err)
	s.Equal(txHash, id)
	s.Equal("100", s.env.balance(&s.Suite, recipient))
	relayed, ok := s.env.recorder.Last().(events.RelayedMessage)
	s.True(ok)
	s.Equal(txHash, relayed.MessageID)

	_, err = s.env.bridge.ExecuteSignatures(context.Background(), raw, s.packed(hash, 1, 2))
	s.ErrorIs(err, ledger.ErrAlreadyRelayed)
	s.Equal(bridge.IdempotencyError, bridge.Classify(err))
	s.Equal("100", s.env.balance(&s.Suite, recipient))
	s.Len(s.env.recorder.Events(), 1)

	status, err := s.env.bridge.MessageStatus(txHash)
	s.Nil(err)
	s.True(status.Relayed)
}

func (s *RegistryBridgeTestSuite) Test_ExecuteSignatures_BelowThreshold() {
	raw, hash := s.inbound(100, common.HexToHash("0x02"))

	_, err := s.env.bridge.ExecuteSignatures(context.Background(), raw, s.packed(hash, 1))

	s.ErrorIs(err, signature.ErrInsufficientSignatures)
	s.Equal(bridge.AuthorizationError, bridge.Classify(err))
	status, err := s.env.bridge.MessageStatus(common.HexToHash("0x02"))
	s.Nil(err)
	s.False(status.Relayed)
}

func (s *RegistryBridgeTestSuite) Test_ExecuteSignatures_DuplicateSigner() {
	raw, hash := s.inbound(100, common.HexToHash("0x03"))

	_, err := s.env.bridge.ExecuteSignatures(context.Background(), raw, s.packed(hash, 1, 1))

	s.ErrorIs(err, signature.ErrDuplicateSigner)
}

func (s *RegistryBridgeTestSuite) Test_ExecuteSignatures_WrongContract() {
	raw, err := message.NewMessage(recipient, big.NewInt(100), common.HexToHash("0x04"), counterpartAddress).Encode()
	s.Nil(err)

	_, err = s.env.bridge.ExecuteSignatures(context.Background(), raw, s.packed(message.SigningHash(raw), 0, 1))

	s.ErrorIs(err, bridge.ErrWrongContract)
	s.Equal(bridge.ValidationError, bridge.Classify(err))
}

func (s *RegistryBridgeTestSuite) Test_ExecuteSignatures_GasPriceVariantRejected() {
	m := message.NewMessage(recipient, big.NewInt(100), common.HexToHash("0x05"), bridgeAddress)
	m.GasPrice = big.NewInt(1)
	raw, err := m.Encode()
	s.Nil(err)

	_, err = s.env.bridge.ExecuteSignatures(context.Background(), raw, s.packed(message.SigningHash(raw), 0, 1))

	s.ErrorIs(err, bridge.ErrMessageFormat)
}

func (s *RegistryBridgeTestSuite) Test_ExecuteSignatures_FailedEffectRevertsMarks() {
	s.Nil(s.env.bank.Transfer(effects.CustodyAccount, ownerAddress, big.NewInt(1000)))
	txHash := common.HexToHash("0x06")
	raw, hash := s.inbound(100, txHash)

	_, err := s.env.bridge.ExecuteSignatures(context.Background(), raw, s.packed(hash, 0, 1))

	s.ErrorIs(err, effects.ErrInsufficientBalance)
	s.Equal(bridge.EffectError, bridge.Classify(err))
	status, err := s.env.bridge.MessageStatus(txHash)
	s.Nil(err)
	s.False(status.Relayed)
	l, err := s.env.bridge.Limits(limits.Inbound)
	s.Nil(err)
	s.Equal("0", l.TotalToday.String())
	s.Empty(s.env.recorder.Events())

	s.Nil(s.env.minter.Mint(context.Background(), effects.CustodyAccount, big.NewInt(100)))
	_, err = s.env.bridge.ExecuteSignatures(context.Background(), raw, s.packed(hash, 0, 1))
	s.Nil(err)
	s.Equal("100", s.env.balance(&s.Suite, recipient))
}

func (s *RegistryBridgeTestSuite) Test_ExecuteSignatures_DailyLimit() {
	for i, value := range []int64{500, 500} {
		raw, hash := s.inbound(value, common.BigToHash(big.NewInt(int64(10+i))))
		_, err := s.env.bridge.ExecuteSignatures(context.Background(), raw, s.packed(hash, 0, 1))
		s.Nil(err)
	}

	raw, hash := s.inbound(1, common.HexToHash("0x20"))
	_, err := s.env.bridge.ExecuteSignatures(context.Background(), raw, s.packed(hash, 0, 1))
	s.ErrorIs(err, limits.ErrDailyLimitExceeded)
	s.Equal(bridge.LimitError, bridge.Classify(err))

	s.env.clock.Add(24 * time.Hour)
	_, err = s.env.bridge.ExecuteSignatures(context.Background(), raw, s.packed(hash, 0, 1))
	s.Nil(err)
}

func (s *RegistryBridgeTestSuite) outbound(value int64, txHash common.Hash) ([]byte, common.Hash) {
	raw, err := message.NewMessage(recipient, big.NewInt(value), txHash, counterpartAddress).Encode()
	s.Require().Nil(err)
	return raw, message.SigningHash(raw)
}

func (s *RegistryBridgeTestSuite) Test_SubmitSignature_CollectsOnce() {
	raw, hash := s.outbound(100, common.HexToHash("0x30"))

	s.Nil(s.env.bridge.SubmitSignature(s.validators[0].addr, sign(hash, s.validators[0]), raw))
	s.Len(s.env.recorder.Events(), 1)

	err := s.env.bridge.SubmitSignature(s.validators[0].addr, sign(hash, s.validators[0]), raw)
	s.ErrorIs(err, ledger.ErrAlreadySigned)

	s.Nil(s.env.bridge.SubmitSignature(s.validators[1].addr, sign(hash, s.validators[1]), raw))
	collected, ok := s.env.recorder.Last().(events.CollectedSignatures)
	s.True(ok)
	s.Equal(uint64(2), collected.NumberOfCollectedSignatures)
	s.Equal(s.validators[1].addr, collected.AuthorityResponsibleForRelay)

	s.Nil(s.env.bridge.SubmitSignature(s.validators[2].addr, sign(hash, s.validators[2]), raw))
	_, ok = s.env.recorder.Last().(events.SignedForUserRequest)
	s.True(ok)

	signed, err := s.env.bridge.SignedMessage(hash)
	s.Nil(err)
	s.True(signed.Collected)
	s.Len(signed.Signatures, 3)
	s.Equal(raw, signed.Message)
}

func (s *RegistryBridgeTestSuite) Test_SubmitSignature_SignerMismatch() {
	raw, hash := s.outbound(100, common.HexToHash("0x31"))

	err := s.env.bridge.SubmitSignature(s.validators[1].addr, sign(hash, s.validators[0]), raw)

	s.ErrorIs(err, bridge.ErrSignerMismatch)
}

func (s *RegistryBridgeTestSuite) Test_SubmitSignature_NonValidator() {
	raw, hash := s.outbound(100, common.HexToHash("0x32"))
	outsider := newValidators(1)[0]

	err := s.env.bridge.SubmitSignature(outsider.addr, sign(hash, outsider), raw)

	s.ErrorIs(err, validators.ErrNotValidator)
}

func (s *RegistryBridgeTestSuite) Test_SubmitSignature_WrongContract() {
	raw, hash := s.inbound(100, common.HexToHash("0x33"))

	err := s.env.bridge.SubmitSignature(s.validators[0].addr, sign(hash, s.validators[0]), raw)

	s.ErrorIs(err, bridge.ErrWrongContract)
}

func (s *RegistryBridgeTestSuite) Test_ExecuteAffirmation() {
	txHash := common.HexToHash("0x40")
	ctx := context.Background()

	s.Nil(s.env.bridge.ExecuteAffirmation(ctx, s.validators[0].addr, recipient, big.NewInt(50), txHash))
	s.Equal("0", s.env.balance(&s.Suite, recipient))

	err := s.env.bridge.ExecuteAffirmation(ctx, s.validators[0].addr, recipient, big.NewInt(50), txHash)
	s.ErrorIs(err, ledger.ErrAlreadySigned)

	s.Nil(s.env.bridge.ExecuteAffirmation(ctx, s.validators[1].addr, recipient, big.NewInt(50), txHash))
	s.Equal("50", s.env.balance(&s.Suite, recipient))
	_, ok := s.env.recorder.Last().(events.AffirmationCompleted)
	s.True(ok)

	err = s.env.bridge.ExecuteAffirmation(ctx, s.validators[2].addr, recipient, big.NewInt(50), txHash)
	s.ErrorIs(err, ledger.ErrAlreadyRelayed)

	l, err := s.env.bridge.Limits(limits.Inbound)
	s.Nil(err)
	s.Equal("50", l.TotalToday.String())
}

func (s *RegistryBridgeTestSuite) Test_ExecuteAffirmation_NonValidator() {
	err := s.env.bridge.ExecuteAffirmation(context.Background(), sender, recipient, big.NewInt(50), common.HexToHash("0x41"))

	s.ErrorIs(err, validators.ErrNotValidator)
}

func (s *RegistryBridgeTestSuite) Test_RelayTokensAndFix() {
	ctx := context.Background()

	id, err := s.env.bridge.RelayTokens(ctx, sender, recipient, big.NewInt(200))

	s.Nil(err)
	s.Equal(message.DepositID(bridgeAddress, 0), id)
	s.Equal("800", s.env.balance(&s.Suite, sender))
	request, ok := s.env.recorder.Last().(events.UserRequestForSignature)
	s.True(ok)
	s.Equal(id, request.MessageID)

	fixHash := message.FixHash(bridgeAddress, id)
	blob := signature.Pack(sign(fixHash, s.validators[0]), sign(fixHash, s.validators[1]))
	s.Nil(s.env.bridge.FixFailedMessage(ctx, id, blob))
	s.Equal("1000", s.env.balance(&s.Suite, sender))

	err = s.env.bridge.FixFailedMessage(ctx, id, blob)
	s.ErrorIs(err, ledger.ErrAlreadyFixed)
	status, err := s.env.bridge.MessageStatus(id)
	s.Nil(err)
	s.True(status.Fixed)
}

func (s *RegistryBridgeTestSuite) Test_FixUnknownDeposit() {
	id := message.DepositID(bridgeAddress, 7)
	fixHash := message.FixHash(bridgeAddress, id)

	err := s.env.bridge.FixFailedMessage(context.Background(), id, signature.Pack(sign(fixHash, s.validators[0]), sign(fixHash, s.validators[1])))

	s.ErrorIs(err, ledger.ErrUnknownMessage)
	s.Equal(bridge.NotFoundError, bridge.Classify(err))
}

func (s *RegistryBridgeTestSuite) Test_RelayTokens_LockFailureReverts() {
	poor := common.HexToAddress("0x9009")

	_, err := s.env.bridge.RelayTokens(context.Background(), poor, recipient, big.NewInt(200))

	s.ErrorIs(err, effects.ErrInsufficientBalance)
	l, err := s.env.bridge.Limits(limits.Outbound)
	s.Nil(err)
	s.Equal("0", l.TotalToday.String())

	id, err := s.env.bridge.RelayTokens(context.Background(), sender, recipient, big.NewInt(200))
	s.Nil(err)
	s.Equal(message.DepositID(bridgeAddress, 0), id)
}

func (s *RegistryBridgeTestSuite) Test_RelayTokens_Limits() {
	_, err := s.env.bridge.RelayTokens(context.Background(), sender, recipient, big.NewInt(501))
	s.ErrorIs(err, limits.ErrAboveMaxPerTx)

	_, err = s.env.bridge.RelayTokens(context.Background(), sender, common.Address{}, big.NewInt(1))
	s.ErrorIs(err, bridge.ErrZeroRecipient)

	s.Equal("1000", s.env.balance(&s.Suite, sender))
}

func (s *RegistryBridgeTestSuite) Test_HandleBridgedTokens_WithoutMediator() {
	err := s.env.bridge.HandleBridgedTokens(context.Background(), mediatorAddress, common.HexToHash("0x50"), recipient, big.NewInt(1))

	s.ErrorIs(err, bridge.ErrNotMediator)
}

func (s *RegistryBridgeTestSuite) Test_UnsupportedOperations() {
	err := s.env.bridge.Commit(context.Background(), sender, common.HexToHash("0x60"), recipient, nil, big.NewInt(1))
	s.ErrorIs(err, bridge.ErrUnsupportedOperation)
	s.Equal(bridge.PreconditionError, bridge.Classify(err))

	err = s.env.bridge.UpdateValidatorSet(message.ValidatorSetUpdate{}, nil)
	s.ErrorIs(err, bridge.ErrUnsupportedOperation)
}

func (s *RegistryBridgeTestSuite) Test_Admin() {
	err := s.env.bridge.SetDailyLimit(sender, limits.Inbound, big.NewInt(2000))
	s.ErrorIs(err, bridge.ErrNotOwner)

	s.Nil(s.env.bridge.SetDailyLimit(ownerAddress, limits.Inbound, big.NewInt(2000)))
	changed, ok := s.env.recorder.Last().(events.LimitsChanged)
	s.True(ok)
	s.Equal("2000", changed.DailyLimit.String())

	err = s.env.bridge.SetMaxPerTx(ownerAddress, limits.Inbound, big.NewInt(3000))
	s.ErrorIs(err, limits.ErrInvalidLimits)

	outsider := common.HexToAddress("0x7777")
	s.Nil(s.env.bridge.AddValidator(ownerAddress, outsider))
	s.Nil(s.env.bridge.SetRequiredSignatures(ownerAddress, 3))
	vals, required, err := s.env.bridge.Validators()
	s.Nil(err)
	s.Len(vals, 4)
	s.Equal(uint64(3), required)

	s.Nil(s.env.bridge.RemoveValidator(ownerAddress, outsider))
	err = s.env.bridge.RemoveValidator(sender, s.validators[0].addr)
	s.ErrorIs(err, bridge.ErrNotOwner)
}

func (s *RegistryBridgeTestSuite) Test_RaisedThresholdAppliesToCollectedSignatures() {
	raw, hash := s.inbound(100, common.HexToHash("0x70"))
	blob := s.packed(hash, 0, 1)
	s.Nil(s.env.bridge.SetRequiredSignatures(ownerAddress, 3))

	_, err := s.env.bridge.ExecuteSignatures(context.Background(), raw, blob)

	s.ErrorIs(err, signature.ErrInsufficientSignatures)
}

type DecimalShiftBridgeTestSuite struct {
	suite.Suite
}

func TestRunDecimalShiftBridgeTestSuite(t *testing.T) {
	suite.Run(t, new(DecimalShiftBridgeTestSuite))
}

func (s *DecimalShiftBridgeTestSuite) Test_MintsShiftedValue() {
	vals := newValidators(1)
	env := newBridgeEnv(&s.Suite, map[string]interface{}{
		"mode":               "erc-to-erc",
		"address":            bridgeAddress.Hex(),
		"owner":              ownerAddress.Hex(),
		"validators":         hexAddresses(vals),
		"requiredSignatures": 1,
		"decimalShift":       2,
		"inbound":            limitsConfig("1000", "500", "1"),
		"outbound":           limitsConfig("1000", "500", "1"),
	})
	raw, err := message.NewMessage(recipient, big.NewInt(3), common.HexToHash("0x01"), bridgeAddress).Encode()
	s.Nil(err)

	_, err = env.bridge.ExecuteSignatures(context.Background(), raw, sign(message.SigningHash(raw), vals[0]))

	s.Nil(err)
	s.Equal("300", env.balance(&s.Suite, recipient))
	l, err := env.bridge.Limits(limits.Inbound)
	s.Nil(err)
	s.Equal("3", l.TotalToday.String())
}

func (s *DecimalShiftBridgeTestSuite) Test_MediatorMintsOnce() {
	vals := newValidators(1)
	env := newBridgeEnv(&s.Suite, map[string]interface{}{
		"mode":               "mediator",
		"address":            bridgeAddress.Hex(),
		"owner":              ownerAddress.Hex(),
		"mediator":           mediatorAddress.Hex(),
		"validators":         hexAddresses(vals),
		"requiredSignatures": 1,
		"inbound":            limitsConfig("1000", "500", "1"),
		"outbound":           limitsConfig("1000", "500", "1"),
	})
	id := common.HexToHash("0x80")

	err := env.bridge.HandleBridgedTokens(context.Background(), sender, id, recipient, big.NewInt(10))
	s.ErrorIs(err, bridge.ErrNotMediator)

	s.Nil(env.bridge.HandleBridgedTokens(context.Background(), mediatorAddress, id, recipient, big.NewInt(10)))
	s.Equal("10", env.balance(&s.Suite, recipient))
	_, ok := env.recorder.Last().(events.TokensBridged)
	s.True(ok)

	err = env.bridge.HandleBridgedTokens(context.Background(), mediatorAddress, id, recipient, big.NewInt(10))
	s.ErrorIs(err, ledger.ErrAlreadyRelayed)
	s.Equal("10", env.balance(&s.Suite, recipient))
}

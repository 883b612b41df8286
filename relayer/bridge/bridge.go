// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package bridge

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/ChainSafe/utopia-relay/relayer/effects"
	"github.com/ChainSafe/utopia-relay/relayer/events"
	"github.com/ChainSafe/utopia-relay/relayer/ledger"
	"github.com/ChainSafe/utopia-relay/relayer/limits"
	"github.com/ChainSafe/utopia-relay/relayer/message"
	"github.com/ChainSafe/utopia-relay/relayer/optimistic"
	"github.com/ChainSafe/utopia-relay/relayer/signature"
	"github.com/ChainSafe/utopia-relay/relayer/validators"
	"github.com/ChainSafe/utopia-relay/store"
)

var (
	ErrNotOwner             = errors.New("caller is not the owner")
	ErrNotMediator          = errors.New("caller is not the mediator")
	ErrWrongContract        = errors.New("message is addressed to a different contract")
	ErrSignerMismatch       = errors.New("recovered signer does not match the submitter")
	ErrZeroRecipient        = errors.New("recipient is zero address")
	ErrMessageFormat        = errors.New("message format does not match the bridge configuration")
	ErrUnsupportedOperation = errors.New("operation not supported by this bridge")
)

const (
	initializedKey  = "bridge:initialized"
	decimalShiftKey = "bridge:decimalshift"
)

type Metrics interface {
	TrackDeposit(value *big.Int)
	TrackRelayedMessage(operation string, value *big.Int)
	TrackRejectedCall(operation string, err error)
	TrackCollectedSignatures()
	TrackCommit()
	TrackExecution(status bool)
}

// Collaborators are the external components effects are applied through.
type Collaborators struct {
	Minter   effects.Minter
	Custody  effects.Custody
	Caller   effects.Caller
	Treasury effects.Treasury
}

// Bridge is the relay orchestrator. Entry points are serialized and each of
// them either fully succeeds or leaves no state change behind. Events are
// emitted only after a successful call.
type Bridge struct {
	mu sync.Mutex

	config  *BridgeConfig
	db      store.KeyValueStore
	clock   clock.Clock
	sink    events.Sink
	metrics Metrics

	verifier  *signature.Verifier
	oracle    validators.Oracle
	registry  *validators.Registry
	merkleSet *validators.MerkleSet
	ledger    *ledger.Ledger
	limiter   *limits.Limiter
	engine    *optimistic.Engine
	effect    effects.Effect
	custody   effects.Custody
}

func NewBridge(
	config *BridgeConfig,
	db store.KeyValueStore,
	collaborators Collaborators,
	sink events.Sink,
	metrics Metrics,
	clk clock.Clock,
) (*Bridge, error) {
	verifier, err := signature.NewVerifier(config.SignatureCacheSize)
	if err != nil {
		return nil, err
	}
	effect, err := effects.NewEffect(config.Effect, collaborators.Minter, collaborators.Custody, collaborators.Caller)
	if err != nil {
		return nil, err
	}

	b := &Bridge{
		config:   config,
		db:       db,
		clock:    clk,
		sink:     sink,
		metrics:  metrics,
		verifier: verifier,
		ledger:   ledger.New(),
		limiter:  limits.NewLimiter(),
		engine:   optimistic.NewEngine(collaborators.Caller, collaborators.Treasury),
		effect:   effect,
		custody:  collaborators.Custody,
	}
	switch config.Oracle {
	case RegistryOracle:
		b.registry = validators.NewRegistry(verifier)
		b.oracle = b.registry
	case MerkleOracle:
		b.merkleSet = validators.NewMerkleSet(verifier)
		b.oracle = b.merkleSet
	default:
		return nil, fmt.Errorf("unknown oracle %s", config.Oracle)
	}

	if err := b.initialize(); err != nil {
		return nil, err
	}
	return b, nil
}

// initialize stores the configured initial state on first start. The
// decimal shift can not change afterwards.
func (b *Bridge) initialize() error {
	initialized, err := store.GetBool(b.db, []byte(initializedKey))
	if err != nil {
		return err
	}
	if initialized {
		shift, err := b.db.GetByKey([]byte(decimalShiftKey))
		if err != nil {
			return err
		}
		if limits.DecimalShift(int8(shift[0])) != b.config.DecimalShift {
			return fmt.Errorf("%w: configured %d, stored %d", limits.ErrInvalidDecimalShift, b.config.DecimalShift, int8(shift[0]))
		}
		return nil
	}

	tx := store.NewTx(b.db)
	now := b.clock.Now()
	switch {
	case b.registry != nil:
		err = b.registry.Initialize(tx, b.config.Validators, b.config.RequiredSignatures)
	case b.merkleSet != nil:
		err = b.merkleSet.Initialize(tx, b.config.ValidatorSet, now)
	}
	if err != nil {
		return err
	}
	if err := b.limiter.Initialize(tx, limits.Inbound, b.config.Inbound); err != nil {
		return err
	}
	if err := b.limiter.Initialize(tx, limits.Outbound, b.config.Outbound); err != nil {
		return err
	}
	if err := b.engine.SetConfig(tx, b.config.Commit); err != nil {
		return err
	}
	if err := tx.SetByKey([]byte(decimalShiftKey), []byte{byte(int8(b.config.DecimalShift))}); err != nil {
		return err
	}
	if err := store.SetBool(tx, []byte(initializedKey), true); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info().Str("mode", b.config.Mode.String()).Str("oracle", b.config.Oracle).Msgf("Initialized bridge %s", b.config.Address)
	return nil
}

func (b *Bridge) Mode() message.Mode {
	return b.config.Mode
}

func (b *Bridge) Config() *BridgeConfig {
	return b.config
}

// call runs fn inside a fresh transaction under the bridge lock.
func (b *Bridge) call(operation string, fn func(tx *store.Tx, now time.Time) ([]events.Event, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx := store.NewTx(b.db)
	evts, err := fn(tx, b.clock.Now())
	if err != nil {
		if !tx.Committed() {
			_ = tx.Revert()
		}
		log.Debug().Str("operation", operation).Err(err).Msg("Bridge call failed")
		b.metrics.TrackRejectedCall(operation, err)
		return err
	}
	if !tx.Committed() {
		if err := tx.Commit(); err != nil {
			b.metrics.TrackRejectedCall(operation, err)
			return err
		}
	}

	b.sink.Emit(evts...)
	return nil
}

// apply commits the marks staged in tx and then applies the effect. A failed
// effect reverts the marks.
func (b *Bridge) apply(ctx context.Context, tx *store.Tx, effect effects.Effect, action effects.Action) error {
	if err := tx.Commit(); err != nil {
		return err
	}
	if err := effect.Apply(ctx, action); err != nil {
		cause := fmt.Errorf("%s effect for %s failed: %w", effect.Kind(), action.MessageID, err)
		if rerr := tx.Revert(); rerr != nil {
			log.Error().Err(rerr).Str("messageID", action.MessageID.Hex()).Msg("Failed reverting relay marks")
			return errors.Join(cause, rerr)
		}
		return cause
	}
	return nil
}

func (b *Bridge) checkOwner(caller common.Address) error {
	if caller != b.config.Owner {
		return fmt.Errorf("%w: %s", ErrNotOwner, caller)
	}
	return nil
}

func (b *Bridge) decode(raw []byte) (*message.Message, error) {
	if b.config.Effect == effects.CallKind {
		return message.DecodeCall(raw)
	}
	msg, err := message.Decode(raw)
	if err != nil {
		return nil, err
	}
	if (msg.GasPrice != nil) != b.config.IncludeGasPrice {
		return nil, fmt.Errorf("%w: gas price included %v", ErrMessageFormat, msg.GasPrice != nil)
	}
	return msg, nil
}

func (b *Bridge) requireRegistry() error {
	if b.registry == nil {
		return fmt.Errorf("%w: requires registry validators", ErrUnsupportedOperation)
	}
	return nil
}

func (b *Bridge) requireMerkle() error {
	if b.merkleSet == nil {
		return fmt.Errorf("%w: requires merkle validator set", ErrUnsupportedOperation)
	}
	return nil
}

// requireValueEffect guards entry points whose input carries no calldata.
func (b *Bridge) requireValueEffect() error {
	if b.config.Effect == effects.CallKind {
		return fmt.Errorf("%w: %s effect needs call messages", ErrUnsupportedOperation, b.config.Effect)
	}
	return nil
}

func (b *Bridge) requireOptimistic() error {
	if b.config.Mode != message.Optimistic {
		return fmt.Errorf("%w: commits require optimistic mode", ErrUnsupportedOperation)
	}
	return nil
}

// RelayTokens locks value of sender and registers an outbound deposit that
// validators will sign for.
func (b *Bridge) RelayTokens(ctx context.Context, sender, recipient common.Address, value *big.Int) (common.Hash, error) {
	var id common.Hash
	err := b.call("relayTokens", func(tx *store.Tx, now time.Time) ([]events.Event, error) {
		if recipient == (common.Address{}) {
			return nil, ErrZeroRecipient
		}
		if err := b.limiter.Record(tx, limits.Outbound, value, now); err != nil {
			return nil, err
		}
		nonce, err := b.ledger.NextNonce(tx)
		if err != nil {
			return nil, err
		}
		id = message.DepositID(b.config.Address, nonce)
		err = b.ledger.RecordDeposit(tx, id, ledger.Deposit{Sender: sender, Recipient: recipient, Value: value})
		if err != nil {
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			return nil, err
		}
		if err := b.custody.Lock(ctx, sender, value); err != nil {
			return nil, errors.Join(fmt.Errorf("lock deposit %s: %w", id, err), tx.Revert())
		}

		log.Info().Str("messageID", id.Hex()).Str("direction", limits.Outbound.String()).Msgf("Deposit of %s from %s", value, sender)
		b.metrics.TrackDeposit(value)
		return []events.Event{events.UserRequestForSignature{
			MessageID: id,
			Sender:    sender,
			Recipient: recipient,
			Value:     value,
		}}, nil
	})
	return id, err
}

// SubmitSignature collects a validator signature over an outbound message.
// Reaching the required signatures for the first time emits
// CollectedSignatures.
func (b *Bridge) SubmitSignature(signer common.Address, sig []byte, raw []byte) error {
	return b.call("submitSignature", func(tx *store.Tx, now time.Time) ([]events.Event, error) {
		if err := b.requireRegistry(); err != nil {
			return nil, err
		}
		msg, err := b.decode(raw)
		if err != nil {
			return nil, err
		}
		if msg.Contract != b.config.Counterpart {
			return nil, fmt.Errorf("%w: %s", ErrWrongContract, msg.Contract)
		}

		hash := message.SigningHash(raw)
		recovered, err := b.verifier.Recover(hash, sig)
		if err != nil {
			return nil, err
		}
		if recovered != signer {
			return nil, fmt.Errorf("%w: recovered %s, submitter %s", ErrSignerMismatch, recovered, signer)
		}
		isValidator, err := b.registry.IsValidator(tx, signer)
		if err != nil {
			return nil, err
		}
		if !isValidator {
			return nil, fmt.Errorf("%w: %s", validators.ErrNotValidator, signer)
		}

		if err := b.ledger.MarkSigned(tx, signer, hash); err != nil {
			return nil, err
		}
		if err := b.ledger.SetMessage(tx, hash, raw); err != nil {
			return nil, err
		}
		count, err := b.ledger.AddSignature(tx, hash, sig)
		if err != nil {
			return nil, err
		}

		evts := []events.Event{events.SignedForUserRequest{Signer: signer, MessageHash: hash}}
		required, err := b.registry.RequiredSignatures(tx)
		if err != nil {
			return nil, err
		}
		if count < required {
			return evts, nil
		}
		collected, err := b.ledger.IsCollected(tx, hash)
		if err != nil {
			return nil, err
		}
		if collected {
			return evts, nil
		}
		if err := b.ledger.MarkCollected(tx, hash); err != nil {
			return nil, err
		}

		log.Info().Str("messageHash", hash.Hex()).Msgf("Collected %d signatures", count)
		b.metrics.TrackCollectedSignatures()
		return append(evts, events.CollectedSignatures{
			AuthorityResponsibleForRelay: signer,
			MessageHash:                  hash,
			NumberOfCollectedSignatures:  count,
		}), nil
	})
}

// ExecuteAffirmation records a validator affirming an inbound transfer. The
// transfer is executed once the required number of validators affirmed it.
func (b *Bridge) ExecuteAffirmation(ctx context.Context, signer, recipient common.Address, value *big.Int, txHash common.Hash) error {
	return b.call("executeAffirmation", func(tx *store.Tx, now time.Time) ([]events.Event, error) {
		if err := b.requireRegistry(); err != nil {
			return nil, err
		}
		if err := b.requireValueEffect(); err != nil {
			return nil, err
		}
		isValidator, err := b.registry.IsValidator(tx, signer)
		if err != nil {
			return nil, err
		}
		if !isValidator {
			return nil, fmt.Errorf("%w: %s", validators.ErrNotValidator, signer)
		}
		if recipient == (common.Address{}) {
			return nil, ErrZeroRecipient
		}
		if value == nil || value.Sign() <= 0 {
			return nil, limits.ErrZeroValue
		}

		hash := message.AffirmationHash(recipient, value, txHash)
		processed, err := b.ledger.IsAffirmationProcessed(tx, hash)
		if err != nil {
			return nil, err
		}
		if processed {
			return nil, fmt.Errorf("%w: %s", ledger.ErrAlreadyRelayed, txHash)
		}
		if err := b.ledger.MarkSigned(tx, signer, hash); err != nil {
			return nil, err
		}

		count, err := b.ledger.Affirmations(tx, hash)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			if err := b.limiter.Record(tx, limits.Inbound, value, now); err != nil {
				return nil, err
			}
		}
		count, err = b.ledger.AddAffirmation(tx, hash)
		if err != nil {
			return nil, err
		}

		evts := []events.Event{events.SignedForAffirmation{Signer: signer, TxHash: txHash}}
		required, err := b.registry.RequiredSignatures(tx)
		if err != nil {
			return nil, err
		}
		if count < required {
			return evts, nil
		}

		if err := b.ledger.MarkAffirmationProcessed(tx, hash); err != nil {
			return nil, err
		}
		if err := b.ledger.MarkRelayed(tx, txHash); err != nil {
			return nil, err
		}
		action := effects.Action{
			MessageID: txHash,
			Recipient: recipient,
			Value:     b.config.DecimalShift.ToHome(value),
		}
		if err := b.apply(ctx, tx, b.effect, action); err != nil {
			return nil, err
		}

		log.Info().Str("messageID", txHash.Hex()).Msgf("Affirmation completed, %s to %s", action.Value, recipient)
		b.metrics.TrackRelayedMessage("executeAffirmation", value)
		return append(evts, events.AffirmationCompleted{
			Recipient: recipient,
			Value:     value,
			TxHash:    txHash,
		}), nil
	})
}

// ExecuteSignatures relays a message signed by a threshold of validators.
func (b *Bridge) ExecuteSignatures(ctx context.Context, raw []byte, signatures []byte) (common.Hash, error) {
	var id common.Hash
	err := b.call("executeSignatures", func(tx *store.Tx, now time.Time) ([]events.Event, error) {
		msg, err := b.decode(raw)
		if err != nil {
			return nil, err
		}
		if msg.Contract != b.config.Address {
			return nil, fmt.Errorf("%w: %s", ErrWrongContract, msg.Contract)
		}
		if msg.Recipient == (common.Address{}) {
			return nil, ErrZeroRecipient
		}
		id = msg.TxHash

		hash := message.SigningHash(raw)
		if _, err := b.oracle.VerifySignatures(tx, hash, signatures, now); err != nil {
			return nil, err
		}
		if err := b.ledger.MarkRelayed(tx, id); err != nil {
			return nil, err
		}
		// call messages without value move nothing the limits account for
		if msg.Call == nil || msg.Value.Sign() > 0 {
			if err := b.limiter.Record(tx, limits.Inbound, msg.Value, now); err != nil {
				return nil, err
			}
		}
		action := effects.Action{
			MessageID: id,
			Recipient: msg.Recipient,
			Value:     b.config.DecimalShift.ToHome(msg.Value),
		}
		if msg.Call != nil {
			action.Data = msg.Call.Data
			action.Gas = msg.Call.Gas
		}
		if err := b.apply(ctx, tx, b.effect, action); err != nil {
			return nil, err
		}

		log.Info().Str("messageID", id.Hex()).Msgf("Relayed %s to %s", action.Value, msg.Recipient)
		b.metrics.TrackRelayedMessage("executeSignatures", msg.Value)
		return []events.Event{events.RelayedMessage{
			Recipient: msg.Recipient,
			Value:     msg.Value,
			MessageID: id,
		}}, nil
	})
	return id, err
}

// HandleBridgedTokens executes a transfer delivered by the configured
// mediator.
func (b *Bridge) HandleBridgedTokens(ctx context.Context, caller common.Address, id common.Hash, recipient common.Address, value *big.Int) error {
	return b.call("handleBridgedTokens", func(tx *store.Tx, now time.Time) ([]events.Event, error) {
		if err := b.requireValueEffect(); err != nil {
			return nil, err
		}
		if b.config.Mediator == (common.Address{}) || caller != b.config.Mediator {
			return nil, fmt.Errorf("%w: %s", ErrNotMediator, caller)
		}
		if recipient == (common.Address{}) {
			return nil, ErrZeroRecipient
		}
		if err := b.ledger.MarkRelayed(tx, id); err != nil {
			return nil, err
		}
		if err := b.limiter.Record(tx, limits.Inbound, value, now); err != nil {
			return nil, err
		}
		action := effects.Action{
			MessageID: id,
			Recipient: recipient,
			Value:     b.config.DecimalShift.ToHome(value),
		}
		if err := b.apply(ctx, tx, b.effect, action); err != nil {
			return nil, err
		}

		log.Info().Str("messageID", id.Hex()).Msgf("Bridged %s to %s", action.Value, recipient)
		b.metrics.TrackRelayedMessage("handleBridgedTokens", value)
		return []events.Event{events.TokensBridged{
			Recipient: recipient,
			Value:     value,
			MessageID: id,
		}}, nil
	})
}

// FixFailedMessage refunds the sender of a deposit whose counterpart
// execution failed. Validators authorize the fix by signing FixHash.
func (b *Bridge) FixFailedMessage(ctx context.Context, id common.Hash, signatures []byte) error {
	return b.call("fixFailedMessage", func(tx *store.Tx, now time.Time) ([]events.Event, error) {
		hash := message.FixHash(b.config.Address, id)
		if _, err := b.oracle.VerifySignatures(tx, hash, signatures, now); err != nil {
			return nil, err
		}
		deposit, err := b.ledger.Deposit(tx, id)
		if err != nil {
			return nil, err
		}
		if err := b.ledger.MarkFixed(tx, id); err != nil {
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			return nil, err
		}
		if err := b.custody.Release(ctx, deposit.Sender, deposit.Value); err != nil {
			return nil, errors.Join(fmt.Errorf("refund deposit %s: %w", id, err), tx.Revert())
		}

		log.Info().Str("messageID", id.Hex()).Msgf("Fixed failed message, refunded %s to %s", deposit.Value, deposit.Sender)
		return []events.Event{events.FailedMessageFixed{
			MessageID: id,
			Recipient: deposit.Sender,
			Value:     deposit.Value,
		}}, nil
	})
}

// UpdateValidatorSet rotates the merkle validator set. The current set must
// sign the new one in interleaved form.
func (b *Bridge) UpdateValidatorSet(update message.ValidatorSetUpdate, signatures []byte) error {
	return b.call("updateValidatorSet", func(tx *store.Tx, now time.Time) ([]events.Event, error) {
		if err := b.requireMerkle(); err != nil {
			return nil, err
		}
		if err := b.merkleSet.Update(tx, update, signatures, now); err != nil {
			return nil, err
		}
		log.Info().Msgf("New validator set %s, threshold %d", update.Root, update.Threshold)
		return []events.Event{newValidatorSetEvent(update)}, nil
	})
}

// ForceUpdateValidatorSet replaces the merkle validator set without
// signatures.
func (b *Bridge) ForceUpdateValidatorSet(caller common.Address, update message.ValidatorSetUpdate) error {
	return b.call("forceUpdateValidatorSet", func(tx *store.Tx, now time.Time) ([]events.Event, error) {
		if err := b.checkOwner(caller); err != nil {
			return nil, err
		}
		if err := b.requireMerkle(); err != nil {
			return nil, err
		}
		if err := b.merkleSet.ForceUpdate(tx, update, now); err != nil {
			return nil, err
		}
		log.Warn().Msgf("Validator set force updated to %s by owner", update.Root)
		return []events.Event{newValidatorSetEvent(update)}, nil
	})
}

func newValidatorSetEvent(update message.ValidatorSetUpdate) events.Event {
	return events.NewValidatorSet{
		Root:       update.Root,
		Threshold:  update.Threshold,
		Expiration: update.Expiration,
	}
}

// Commit stores a bonded commitment to call executor with data after the
// challenge window.
func (b *Bridge) Commit(ctx context.Context, sender common.Address, id common.Hash, executor common.Address, data []byte, bond *big.Int) error {
	return b.call("commit", func(tx *store.Tx, now time.Time) ([]events.Event, error) {
		if err := b.requireOptimistic(); err != nil {
			return nil, err
		}
		c, err := b.engine.Commit(ctx, tx, sender, id, executor, data, bond, now)
		if err != nil {
			return nil, err
		}

		log.Info().Str("messageID", id.Hex()).Msgf("Commit by %s with bond %s", sender, c.Bond)
		b.metrics.TrackCommit()
		return []events.Event{events.Commit{
			MessageID: id,
			Sender:    sender,
			Executor:  executor,
			Bond:      c.Bond,
		}}, nil
	})
}

// Execute runs a matured commit. The returned status reports whether the
// executor call succeeded.
func (b *Bridge) Execute(ctx context.Context, id common.Hash, gas uint64) (bool, error) {
	var status bool
	err := b.call("execute", func(tx *store.Tx, now time.Time) ([]events.Event, error) {
		if err := b.requireOptimistic(); err != nil {
			return nil, err
		}
		result, err := b.engine.Execute(ctx, tx, id, gas, now)
		if err != nil {
			return nil, err
		}
		status = result.Status

		statusTx := store.NewTx(b.db)
		if err := b.ledger.SetCallStatus(statusTx, id, status); err == nil {
			err = statusTx.Commit()
		}
		if err != nil {
			log.Error().Err(err).Str("messageID", id.Hex()).Msg("Failed storing call status")
		}

		log.Info().Str("messageID", id.Hex()).Bool("status", status).Msgf("Executed commit, refunded %s to %s", result.Commit.Bond, result.Commit.Sender)
		b.metrics.TrackExecution(status)
		return []events.Event{events.Execute{MessageID: id, Status: status}}, nil
	})
	return status, err
}

// Reject records a validator challenge against a live commit. The
// signature must be made over RejectionHash of the commit.
func (b *Bridge) Reject(ctx context.Context, validator common.Address, proof []common.Hash, id common.Hash, sig []byte) error {
	return b.call("reject", func(tx *store.Tx, now time.Time) ([]events.Event, error) {
		if err := b.requireOptimistic(); err != nil {
			return nil, err
		}
		c, err := b.engine.Get(tx, id)
		if err != nil {
			return nil, err
		}
		if b.merkleSet != nil {
			set, err := b.merkleSet.Current(tx)
			if err != nil {
				return nil, err
			}
			if uint64(now.Unix()) >= set.Expiration {
				return nil, validators.ErrValidatorSetExpired
			}
		}

		hash := message.RejectionHash(b.config.Address, id, c.Timestamp)
		recovered, err := b.verifier.Recover(hash, sig)
		if err != nil {
			return nil, err
		}
		if recovered != validator {
			return nil, fmt.Errorf("%w: recovered %s, submitter %s", ErrSignerMismatch, recovered, validator)
		}
		isMember, err := b.oracle.IsMember(tx, validator, proof)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, fmt.Errorf("%w: %s", validators.ErrNotValidator, validator)
		}

		result, err := b.engine.Reject(ctx, tx, validator, id)
		if err != nil {
			return nil, err
		}
		evts := []events.Event{events.RejectSubmitted{MessageID: id, Validator: validator, Rejects: result.Rejects}}
		if result.Rejected {
			log.Warn().Str("messageID", id.Hex()).Msgf("Commit rejected by %d validators, bond %s forfeited", result.Rejects, c.Bond)
			evts = append(evts, events.CommitRejected{MessageID: id, Rejects: result.Rejects})
		}
		return evts, nil
	})
}

// MaturedCommits returns the ids of live commits whose challenge window has
// elapsed.
func (b *Bridge) MaturedCommits() ([]common.Hash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	config, err := b.engine.Config(b.db)
	if err != nil {
		return nil, err
	}
	pending, err := b.engine.Pending(b.db)
	if err != nil {
		return nil, err
	}
	now := b.clock.Now()
	var ids []common.Hash
	for _, p := range pending {
		if p.Matured(now, config.ChallengeWindow) {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

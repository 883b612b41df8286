package events

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// Event is an observable outcome of a bridge call. Off-chain relayers
// coordinate on these.
type Event interface {
	Name() string
}

type SignedForUserRequest struct {
	Signer      common.Address `json:"signer"`
	MessageHash common.Hash    `json:"messageHash"`
}

func (SignedForUserRequest) Name() string { return "SignedForUserRequest" }

type SignedForAffirmation struct {
	Signer common.Address `json:"signer"`
	TxHash common.Hash    `json:"txHash"`
}

func (SignedForAffirmation) Name() string { return "SignedForAffirmation" }

type CollectedSignatures struct {
	AuthorityResponsibleForRelay common.Address `json:"authorityResponsibleForRelay"`
	MessageHash                  common.Hash    `json:"messageHash"`
	NumberOfCollectedSignatures  uint64         `json:"numberOfCollectedSignatures"`
}

func (CollectedSignatures) Name() string { return "CollectedSignatures" }

type UserRequestForSignature struct {
	MessageID common.Hash    `json:"messageId"`
	Sender    common.Address `json:"sender"`
	Recipient common.Address `json:"recipient"`
	Value     *big.Int       `json:"value"`
}

func (UserRequestForSignature) Name() string { return "UserRequestForSignature" }

type AffirmationCompleted struct {
	Recipient common.Address `json:"recipient"`
	Value     *big.Int       `json:"value"`
	TxHash    common.Hash    `json:"txHash"`
}

func (AffirmationCompleted) Name() string { return "AffirmationCompleted" }

type RelayedMessage struct {
	Recipient common.Address `json:"recipient"`
	Value     *big.Int       `json:"value"`
	MessageID common.Hash    `json:"messageId"`
}

func (RelayedMessage) Name() string { return "RelayedMessage" }

type TokensBridged struct {
	Recipient common.Address `json:"recipient"`
	Value     *big.Int       `json:"value"`
	MessageID common.Hash    `json:"messageId"`
}

func (TokensBridged) Name() string { return "TokensBridged" }

type FailedMessageFixed struct {
	MessageID common.Hash    `json:"messageId"`
	Recipient common.Address `json:"recipient"`
	Value     *big.Int       `json:"value"`
}

func (FailedMessageFixed) Name() string { return "FailedMessageFixed" }

type NewValidatorSet struct {
	Root       common.Hash `json:"root"`
	Threshold  uint64      `json:"threshold"`
	Expiration uint64      `json:"expiration"`
}

func (NewValidatorSet) Name() string { return "NewValidatorSet" }

type Commit struct {
	MessageID common.Hash    `json:"messageId"`
	Sender    common.Address `json:"sender"`
	Executor  common.Address `json:"executor"`
	Bond      *big.Int       `json:"bond"`
}

func (Commit) Name() string { return "Commit" }

type Execute struct {
	MessageID common.Hash `json:"messageId"`
	Status    bool        `json:"status"`
}

func (Execute) Name() string { return "Execute" }

type RejectSubmitted struct {
	MessageID common.Hash    `json:"messageId"`
	Validator common.Address `json:"validator"`
	Rejects   uint64         `json:"rejects"`
}

func (RejectSubmitted) Name() string { return "RejectSubmitted" }

type CommitRejected struct {
	MessageID common.Hash `json:"messageId"`
	Rejects   uint64      `json:"rejects"`
}

func (CommitRejected) Name() string { return "CommitRejected" }

type ValidatorAdded struct {
	Validator common.Address `json:"validator"`
}

func (ValidatorAdded) Name() string { return "ValidatorAdded" }

type ValidatorRemoved struct {
	Validator common.Address `json:"validator"`
}

func (ValidatorRemoved) Name() string { return "ValidatorRemoved" }

type RequiredSignaturesChanged struct {
	RequiredSignatures uint64 `json:"requiredSignatures"`
}

func (RequiredSignaturesChanged) Name() string { return "RequiredSignaturesChanged" }

type LimitsChanged struct {
	Direction  string   `json:"direction"`
	DailyLimit *big.Int `json:"dailyLimit"`
	MaxPerTx   *big.Int `json:"maxPerTx"`
	MinPerTx   *big.Int `json:"minPerTx"`
}

func (LimitsChanged) Name() string { return "LimitsChanged" }

type CommitParamsChanged struct {
	MinimalBond      *big.Int `json:"minimalBond"`
	ChallengeWindow  uint64   `json:"challengeWindow"`
	DailyLimit       uint64   `json:"dailyLimit"`
	RejectsThreshold uint64   `json:"rejectsThreshold"`
}

func (CommitParamsChanged) Name() string { return "CommitParamsChanged" }

// Sink receives events after the call that produced them succeeded.
type Sink interface {
	Emit(events ...Event)
}

// LogSink writes every event to the global logger.
type LogSink struct{}

func (LogSink) Emit(events ...Event) {
	for _, e := range events {
		log.Info().Str("event", e.Name()).Interface("data", e).Msg("Bridge event")
	}
}

// Recorder keeps emitted events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(events ...Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event{}, r.events...)
}

// Last returns the most recent recorded event or nil.
func (r *Recorder) Last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Multi fans events out to several sinks.
type Multi []Sink

func (m Multi) Emit(events ...Event) {
	for _, s := range m {
		s.Emit(events...)
	}
}

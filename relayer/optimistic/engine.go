// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package optimistic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/ChainSafe/utopia-relay/relayer/effects"
	"github.com/ChainSafe/utopia-relay/relayer/limits"
	"github.com/ChainSafe/utopia-relay/store"
)

var (
	ErrCommitExists         = errors.New("commit already exists")
	ErrNoCommit             = errors.New("no live commit")
	ErrChallengeWindow      = errors.New("challenge window has not elapsed")
	ErrBondTooLow           = errors.New("bond below commit minimal bond")
	ErrDailyCommitLimit     = errors.New("daily commit limit exceeded")
	ErrAlreadyRejected      = errors.New("validator already rejected commit")
	ErrInvalidConfig        = errors.New("invalid commit config")
	ErrZeroExecutor         = errors.New("executor is zero address")
	ErrConfigNotInitialized = errors.New("commit config not initialized")
)

const (
	minimalBondKey      = "optimistic:config:minimalbond"
	challengeWindowKey  = "optimistic:config:window"
	dailyLimitKey       = "optimistic:config:dailylimit"
	rejectsThresholdKey = "optimistic:config:rejects"
	commitPrefix        = "optimistic:commit:"
	commitKey           = commitPrefix + "%s"
	commitCountKey      = "optimistic:commits:%d"
	rejectersKey        = "optimistic:rejecters:%s:%d"
)

// Config holds the governance tunable commit parameters.
type Config struct {
	MinimalBond      *big.Int
	ChallengeWindow  time.Duration
	DailyLimit       uint64
	RejectsThreshold uint64
}

func (c Config) Validate() error {
	if c.MinimalBond == nil || c.MinimalBond.Sign() <= 0 {
		return fmt.Errorf("%w: minimal bond must be positive", ErrInvalidConfig)
	}
	if c.ChallengeWindow < time.Second {
		return fmt.Errorf("%w: challenge window must be at least a second", ErrInvalidConfig)
	}
	if c.DailyLimit == 0 {
		return fmt.Errorf("%w: daily limit must be positive", ErrInvalidConfig)
	}
	if c.RejectsThreshold == 0 {
		return fmt.Errorf("%w: rejects threshold must be positive", ErrInvalidConfig)
	}
	return nil
}

// Commit is a bonded promise to call Executor with Data once the challenge
// window elapsed.
type Commit struct {
	Sender    common.Address
	Executor  common.Address
	Bond      *big.Int
	Data      []byte
	Timestamp uint64
}

// Matured reports whether the challenge window of the commit elapsed at now.
func (c *Commit) Matured(now time.Time, window time.Duration) bool {
	return uint64(now.Unix()) >= c.Timestamp+uint64(window/time.Second)
}

type PendingCommit struct {
	ID common.Hash
	*Commit
}

// ExecuteResult describes a finished execution.
type ExecuteResult struct {
	Commit  *Commit
	Status  bool
	CallErr error
}

// RejectResult describes a stored rejection. Rejected is set once the reject
// threshold was reached and the commit was dropped.
type RejectResult struct {
	Commit   *Commit
	Rejects  uint64
	Rejected bool
}

// Engine is the commit-delay state machine. Every operation receives a fresh
// transaction; operations that move value commit it themselves before
// calling out and revert it if the value transfer fails.
type Engine struct {
	caller   effects.Caller
	treasury effects.Treasury
}

func NewEngine(caller effects.Caller, treasury effects.Treasury) *Engine {
	return &Engine{
		caller:   caller,
		treasury: treasury,
	}
}

func (e *Engine) Config(r store.KeyValueReader) (Config, error) {
	bond, err := store.GetBig(r, []byte(minimalBondKey))
	if err != nil {
		return Config{}, err
	}
	window, err := store.GetUint64(r, []byte(challengeWindowKey))
	if err != nil {
		return Config{}, err
	}
	daily, err := store.GetUint64(r, []byte(dailyLimitKey))
	if err != nil {
		return Config{}, err
	}
	rejects, err := store.GetUint64(r, []byte(rejectsThresholdKey))
	if err != nil {
		return Config{}, err
	}
	return Config{
		MinimalBond:      bond,
		ChallengeWindow:  time.Duration(window) * time.Second,
		DailyLimit:       daily,
		RejectsThreshold: rejects,
	}, nil
}

func (e *Engine) SetConfig(rw store.KeyValueReaderWriter, config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := store.SetBig(rw, []byte(minimalBondKey), config.MinimalBond); err != nil {
		return err
	}
	if err := store.SetUint64(rw, []byte(challengeWindowKey), uint64(config.ChallengeWindow/time.Second)); err != nil {
		return err
	}
	if err := store.SetUint64(rw, []byte(dailyLimitKey), config.DailyLimit); err != nil {
		return err
	}
	return store.SetUint64(rw, []byte(rejectsThresholdKey), config.RejectsThreshold)
}

func (e *Engine) initializedConfig(r store.KeyValueReader) (Config, error) {
	config, err := e.Config(r)
	if err != nil {
		return Config{}, err
	}
	if config.MinimalBond.Sign() == 0 {
		return Config{}, ErrConfigNotInitialized
	}
	return config, nil
}

// Get returns the live commit of id or ErrNoCommit.
func (e *Engine) Get(r store.KeyValueReader, id common.Hash) (*Commit, error) {
	raw, err := r.GetByKey(store.Key(commitKey, id.Hex()))
	if err != nil {
		if store.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoCommit, id)
		}
		return nil, err
	}
	return decodeCommit(raw)
}

func (e *Engine) CommitsForDay(r store.KeyValueReader, day uint64) (uint64, error) {
	return store.GetUint64(r, store.Key(commitCountKey, day))
}

// Rejects returns the rejections collected by the live commit of id.
func (e *Engine) Rejects(r store.KeyValueReader, id common.Hash) (uint64, error) {
	c, err := e.Get(r, id)
	if err != nil {
		return 0, err
	}
	rejecters, err := e.rejecters(r, id, c)
	if err != nil {
		return 0, err
	}
	return uint64(len(rejecters)), nil
}

// rejecters lists the validators that rejected the live commit c of id.
func (e *Engine) rejecters(r store.KeyValueReader, id common.Hash, c *Commit) ([]common.Address, error) {
	raw, err := r.GetByKey(store.Key(rejectersKey, id.Hex(), c.Timestamp))
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var rejecters []common.Address
	if err := rlp.DecodeBytes(raw, &rejecters); err != nil {
		return nil, fmt.Errorf("decode rejecters: %w", err)
	}
	return rejecters, nil
}

// Pending lists all live commits.
func (e *Engine) Pending(db store.KeyValueStore) ([]PendingCommit, error) {
	var (
		pending []PendingCommit
		decErr  error
	)
	err := db.Iterate([]byte(commitPrefix), func(key, value []byte) bool {
		c, err := decodeCommit(value)
		if err != nil {
			decErr = err
			return false
		}
		id := strings.TrimPrefix(string(key), commitPrefix)
		pending = append(pending, PendingCommit{ID: common.HexToHash(id), Commit: c})
		return true
	})
	if err != nil {
		return nil, err
	}
	return pending, decErr
}

// Commit stores a new bonded commit and escrows the bond from sender.
func (e *Engine) Commit(
	ctx context.Context,
	tx *store.Tx,
	sender common.Address,
	id common.Hash,
	executor common.Address,
	data []byte,
	bond *big.Int,
	now time.Time,
) (*Commit, error) {
	if executor == (common.Address{}) {
		return nil, ErrZeroExecutor
	}
	config, err := e.initializedConfig(tx)
	if err != nil {
		return nil, err
	}

	_, err = e.Get(tx, id)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCommitExists, id)
	}
	if !errors.Is(err, ErrNoCommit) {
		return nil, err
	}

	day := limits.CurrentDay(now)
	count, err := e.CommitsForDay(tx, day)
	if err != nil {
		return nil, err
	}
	if count+1 > config.DailyLimit {
		return nil, fmt.Errorf("%w: %d commits on day %d", ErrDailyCommitLimit, count, day)
	}
	if bond == nil || bond.Cmp(config.MinimalBond) < 0 {
		return nil, fmt.Errorf("%w: bond %v, minimal %s", ErrBondTooLow, bond, config.MinimalBond)
	}

	c := &Commit{
		Sender:    sender,
		Executor:  executor,
		Bond:      new(big.Int).Set(bond),
		Data:      bytes.Clone(data),
		Timestamp: uint64(now.Unix()),
	}
	raw, err := rlp.EncodeToBytes(c)
	if err != nil {
		return nil, err
	}
	if err := tx.SetByKey(store.Key(commitKey, id.Hex()), raw); err != nil {
		return nil, err
	}
	if err := store.SetUint64(tx, store.Key(commitCountKey, day), count+1); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if err := e.treasury.Escrow(ctx, sender, c.Bond); err != nil {
		return nil, e.revert(tx, fmt.Errorf("escrow bond of %s: %w", id, err))
	}
	return c, nil
}

// Execute clears a matured commit, refunds the bond to the committer and then
// calls the executor with at most gas. A failed refund restores the commit
// before any call was made. A failed call is reported through the result
// status and does not fail the execution.
func (e *Engine) Execute(ctx context.Context, tx *store.Tx, id common.Hash, gas uint64, now time.Time) (*ExecuteResult, error) {
	config, err := e.initializedConfig(tx)
	if err != nil {
		return nil, err
	}
	c, err := e.Get(tx, id)
	if err != nil {
		return nil, err
	}
	if !c.Matured(now, config.ChallengeWindow) {
		return nil, fmt.Errorf(
			"%w: committed at %d, executable from %d",
			ErrChallengeWindow, c.Timestamp, c.Timestamp+uint64(config.ChallengeWindow/time.Second),
		)
	}

	if err := e.clear(tx, id, c); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if err := e.treasury.Refund(ctx, c.Sender, c.Bond); err != nil {
		return nil, e.revert(tx, fmt.Errorf("refund bond of %s: %w", id, err))
	}

	callErr := e.caller.Call(ctx, c.Executor, c.Data, gas)
	if callErr != nil {
		log.Warn().Str("messageID", id.Hex()).Err(callErr).Msgf("Call to %s failed", c.Executor)
	}
	return &ExecuteResult{
		Commit:  c,
		Status:  callErr == nil,
		CallErr: callErr,
	}, nil
}

// Reject records a rejection of the live commit of id by an already
// authenticated validator. Reaching the rejects threshold drops the commit
// and forfeits its bond.
func (e *Engine) Reject(ctx context.Context, tx *store.Tx, validator common.Address, id common.Hash) (*RejectResult, error) {
	config, err := e.initializedConfig(tx)
	if err != nil {
		return nil, err
	}
	c, err := e.Get(tx, id)
	if err != nil {
		return nil, err
	}

	rejecters, err := e.rejecters(tx, id, c)
	if err != nil {
		return nil, err
	}
	if slices.Contains(rejecters, validator) {
		return nil, fmt.Errorf("%w: %s rejected %s", ErrAlreadyRejected, validator, id)
	}
	rejecters = append(rejecters, validator)
	raw, err := rlp.EncodeToBytes(rejecters)
	if err != nil {
		return nil, err
	}
	if err := tx.SetByKey(store.Key(rejectersKey, id.Hex(), c.Timestamp), raw); err != nil {
		return nil, err
	}
	rejects := uint64(len(rejecters))

	result := &RejectResult{Commit: c, Rejects: rejects}
	if rejects < config.RejectsThreshold {
		return result, tx.Commit()
	}

	if err := e.clear(tx, id, c); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	if err := e.treasury.Forfeit(ctx, c.Bond); err != nil {
		return nil, e.revert(tx, fmt.Errorf("forfeit bond of %s: %w", id, err))
	}
	result.Rejected = true
	return result, nil
}

func (e *Engine) clear(tx *store.Tx, id common.Hash, c *Commit) error {
	if err := tx.DeleteByKey(store.Key(commitKey, id.Hex())); err != nil {
		return err
	}
	return tx.DeleteByKey(store.Key(rejectersKey, id.Hex(), c.Timestamp))
}

func (e *Engine) revert(tx *store.Tx, cause error) error {
	if err := tx.Revert(); err != nil {
		log.Error().Err(err).Msg("Failed reverting commit state")
		return errors.Join(cause, err)
	}
	return cause
}

func decodeCommit(raw []byte) (*Commit, error) {
	c := new(Commit)
	if err := rlp.DecodeBytes(raw, c); err != nil {
		return nil, fmt.Errorf("decode commit: %w", err)
	}
	return c, nil
}

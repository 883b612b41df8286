package bridge

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ChainSafe/utopia-relay/relayer/ledger"
	"github.com/ChainSafe/utopia-relay/relayer/limits"
	"github.com/ChainSafe/utopia-relay/relayer/message"
	"github.com/ChainSafe/utopia-relay/relayer/optimistic"
)

type MessageStatus struct {
	Relayed bool
	Fixed   bool
	// CallStatus is nil until a commit with this id was executed.
	CallStatus *bool
}

type SignedMessage struct {
	Message    []byte
	Signatures [][]byte
	Collected  bool
}

type LimitsStatus struct {
	limits.Limits
	Day        uint64
	TotalToday *big.Int
}

func (b *Bridge) MessageStatus(id common.Hash) (*MessageStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	relayed, err := b.ledger.IsRelayed(b.db, id)
	if err != nil {
		return nil, err
	}
	fixed, err := b.ledger.IsFixed(b.db, id)
	if err != nil {
		return nil, err
	}
	status := &MessageStatus{Relayed: relayed, Fixed: fixed}
	ok, known, err := b.ledger.CallStatus(b.db, id)
	if err != nil {
		return nil, err
	}
	if known {
		status.CallStatus = &ok
	}
	return status, nil
}

// SignedMessage returns an outbound message with the signatures collected
// for it so far.
func (b *Bridge) SignedMessage(hash common.Hash) (*SignedMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	raw, err := b.ledger.Message(b.db, hash)
	if err != nil {
		return nil, err
	}
	sigs, err := b.ledger.Signatures(b.db, hash)
	if err != nil {
		return nil, err
	}
	collected, err := b.ledger.IsCollected(b.db, hash)
	if err != nil {
		return nil, err
	}
	return &SignedMessage{Message: raw, Signatures: sigs, Collected: collected}, nil
}

func (b *Bridge) Deposit(id common.Hash) (*ledger.Deposit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ledger.Deposit(b.db, id)
}

func (b *Bridge) Limits(dir limits.Direction) (*LimitsStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, err := b.limiter.Limits(b.db, dir)
	if err != nil {
		return nil, err
	}
	day := limits.CurrentDay(b.clock.Now())
	total, err := b.limiter.TotalForDay(b.db, dir, day)
	if err != nil {
		return nil, err
	}
	return &LimitsStatus{Limits: l, Day: day, TotalToday: total}, nil
}

func (b *Bridge) GetCommit(id common.Hash) (*optimistic.Commit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Get(b.db, id)
}

func (b *Bridge) CommitConfig() (optimistic.Config, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Config(b.db)
}

// Validators returns the registry validators and the required signatures.
func (b *Bridge) Validators() ([]common.Address, uint64, error) {
	if err := b.requireRegistry(); err != nil {
		return nil, 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	vals, err := b.registry.Validators(b.db)
	if err != nil {
		return nil, 0, err
	}
	required, err := b.registry.RequiredSignatures(b.db)
	return vals, required, err
}

func (b *Bridge) ValidatorSet() (message.ValidatorSetUpdate, error) {
	if err := b.requireMerkle(); err != nil {
		return message.ValidatorSetUpdate{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.merkleSet.Current(b.db)
}

// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package effects

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Action is what a validated message asks the bridge to do.
type Action struct {
	MessageID common.Hash
	Recipient common.Address
	Value     *big.Int
	Data      []byte
	Gas       uint64
}

// Effect is applied by the orchestrator once a message passed validation and
// has been marked as relayed.
type Effect interface {
	Kind() Kind
	Apply(ctx context.Context, action Action) error
}

type Kind string

const (
	MintKind   Kind = "mint"
	UnlockKind Kind = "unlock"
	CallKind   Kind = "call"
)

// Minter is the credential allowing the bridge to create tokens.
type Minter interface {
	Mint(ctx context.Context, to common.Address, amount *big.Int) error
}

// Custody holds value locked by outbound deposits.
type Custody interface {
	Lock(ctx context.Context, from common.Address, amount *big.Int) error
	Release(ctx context.Context, to common.Address, amount *big.Int) error
}

// Caller performs a call bounded by a gas budget.
type Caller interface {
	Call(ctx context.Context, target common.Address, data []byte, gas uint64) error
}

// Treasury escrows commit bonds.
type Treasury interface {
	Escrow(ctx context.Context, from common.Address, amount *big.Int) error
	Refund(ctx context.Context, to common.Address, amount *big.Int) error
	Forfeit(ctx context.Context, amount *big.Int) error
}

type MintEffect struct {
	minter Minter
}

func NewMintEffect(minter Minter) *MintEffect {
	return &MintEffect{minter: minter}
}

func (e *MintEffect) Kind() Kind {
	return MintKind
}

func (e *MintEffect) Apply(ctx context.Context, action Action) error {
	return e.minter.Mint(ctx, action.Recipient, action.Value)
}

type UnlockEffect struct {
	custody Custody
}

func NewUnlockEffect(custody Custody) *UnlockEffect {
	return &UnlockEffect{custody: custody}
}

func (e *UnlockEffect) Kind() Kind {
	return UnlockKind
}

func (e *UnlockEffect) Apply(ctx context.Context, action Action) error {
	return e.custody.Release(ctx, action.Recipient, action.Value)
}

// CallEffect calls the recipient with the action data.
type CallEffect struct {
	caller Caller
}

func NewCallEffect(caller Caller) *CallEffect {
	return &CallEffect{caller: caller}
}

func (e *CallEffect) Kind() Kind {
	return CallKind
}

func (e *CallEffect) Apply(ctx context.Context, action Action) error {
	return e.caller.Call(ctx, action.Recipient, action.Data, action.Gas)
}

// NewEffect builds the effect of the given kind from the available collaborators.
func NewEffect(kind Kind, minter Minter, custody Custody, caller Caller) (Effect, error) {
	switch kind {
	case MintKind:
		return NewMintEffect(minter), nil
	case UnlockKind:
		return NewUnlockEffect(custody), nil
	case CallKind:
		return NewCallEffect(caller), nil
	}
	return nil, fmt.Errorf("unknown effect kind %s", kind)
}

// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package effects

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/ChainSafe/utopia-relay/store"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrRevokedMinter       = errors.New("minter credential revoked")
)

var (
	// CustodyAccount holds value locked by deposits.
	CustodyAccount = common.HexToAddress("0x000000000000000000000000000000000000c0de")
	// EscrowAccount holds commit bonds.
	EscrowAccount = common.HexToAddress("0x000000000000000000000000000000000000b0d5")
	// ForfeitAccount receives bonds of rejected commits.
	ForfeitAccount = common.HexToAddress("0x000000000000000000000000000000000000dead")
)

const balanceKey = "bank:balance:%s"

// Bank is a native currency ledger backing the custody, treasury and minting
// collaborators of a single bridge instance.
type Bank struct {
	mu sync.Mutex
	db store.KeyValueStore

	minter *MinterCredential
}

func NewBank(db store.KeyValueStore) *Bank {
	return &Bank{db: db}
}

// MinterCredential allows minting on a bank until it is revoked.
type MinterCredential struct {
	bank    *Bank
	revoked bool
}

// IssueMinter hands out the single minting credential. Issuing again revokes
// the previous credential.
func (b *Bank) IssueMinter() *MinterCredential {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.minter != nil {
		b.minter.revoked = true
	}
	b.minter = &MinterCredential{bank: b}
	return b.minter
}

func (c *MinterCredential) Mint(ctx context.Context, to common.Address, amount *big.Int) error {
	c.bank.mu.Lock()
	defer c.bank.mu.Unlock()

	if c.revoked || c.bank.minter != c {
		return ErrRevokedMinter
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := c.bank.balance(to)
	if err != nil {
		return err
	}
	log.Debug().Str("to", to.Hex()).Str("amount", amount.String()).Msg("Minting")
	return store.SetBig(c.bank.db, store.Key(balanceKey, to.Hex()), balance.Add(balance, amount))
}

func (b *Bank) BalanceOf(addr common.Address) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balance(addr)
}

func (b *Bank) balance(addr common.Address) (*big.Int, error) {
	return store.GetBig(b.db, store.Key(balanceKey, addr.Hex()))
}

// Transfer moves amount between two accounts atomically.
func (b *Bank) Transfer(from, to common.Address, amount *big.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transfer(from, to, amount)
}

func (b *Bank) transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	fromBalance, err := b.balance(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from, fromBalance, amount)
	}
	toBalance, err := b.balance(to)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}

	batch := new(leveldb.Batch)
	batch.Put(store.Key(balanceKey, from.Hex()), fromBalance.Sub(fromBalance, amount).Bytes())
	batch.Put(store.Key(balanceKey, to.Hex()), toBalance.Add(toBalance, amount).Bytes())
	return b.db.Write(batch)
}

func (b *Bank) Lock(_ context.Context, from common.Address, amount *big.Int) error {
	return b.Transfer(from, CustodyAccount, amount)
}

func (b *Bank) Release(_ context.Context, to common.Address, amount *big.Int) error {
	return b.Transfer(CustodyAccount, to, amount)
}

func (b *Bank) Escrow(_ context.Context, from common.Address, amount *big.Int) error {
	return b.Transfer(from, EscrowAccount, amount)
}

func (b *Bank) Refund(_ context.Context, to common.Address, amount *big.Int) error {
	return b.Transfer(EscrowAccount, to, amount)
}

func (b *Bank) Forfeit(_ context.Context, amount *big.Int) error {
	return b.Transfer(EscrowAccount, ForfeitAccount, amount)
}

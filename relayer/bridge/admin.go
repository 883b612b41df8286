// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package bridge

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/ChainSafe/utopia-relay/relayer/events"
	"github.com/ChainSafe/utopia-relay/relayer/limits"
	"github.com/ChainSafe/utopia-relay/relayer/optimistic"
	"github.com/ChainSafe/utopia-relay/store"
)

type limitSetter func(rw store.KeyValueReaderWriter, dir limits.Direction, value *big.Int) error

func (b *Bridge) setLimit(operation string, caller common.Address, dir limits.Direction, value *big.Int, set limitSetter) error {
	return b.call(operation, func(tx *store.Tx, _ time.Time) ([]events.Event, error) {
		if err := b.checkOwner(caller); err != nil {
			return nil, err
		}
		if value == nil {
			return nil, limits.ErrInvalidLimits
		}
		if err := set(tx, dir, value); err != nil {
			return nil, err
		}
		l, err := b.limiter.Limits(tx, dir)
		if err != nil {
			return nil, err
		}
		log.Info().Str("direction", dir.String()).Msgf("%s set to %s", operation, value)
		return []events.Event{events.LimitsChanged{
			Direction:  dir.String(),
			DailyLimit: l.DailyLimit,
			MaxPerTx:   l.MaxPerTx,
			MinPerTx:   l.MinPerTx,
		}}, nil
	})
}

func (b *Bridge) SetDailyLimit(caller common.Address, dir limits.Direction, value *big.Int) error {
	return b.setLimit("setDailyLimit", caller, dir, value, b.limiter.SetDailyLimit)
}

func (b *Bridge) SetMaxPerTx(caller common.Address, dir limits.Direction, value *big.Int) error {
	return b.setLimit("setMaxPerTx", caller, dir, value, b.limiter.SetMaxPerTx)
}

func (b *Bridge) SetMinPerTx(caller common.Address, dir limits.Direction, value *big.Int) error {
	return b.setLimit("setMinPerTx", caller, dir, value, b.limiter.SetMinPerTx)
}

func (b *Bridge) AddValidator(caller common.Address, validator common.Address) error {
	return b.call("addValidator", func(tx *store.Tx, _ time.Time) ([]events.Event, error) {
		if err := b.checkOwner(caller); err != nil {
			return nil, err
		}
		if err := b.requireRegistry(); err != nil {
			return nil, err
		}
		if err := b.registry.AddValidator(tx, validator); err != nil {
			return nil, err
		}
		log.Info().Msgf("Validator %s added", validator)
		return []events.Event{events.ValidatorAdded{Validator: validator}}, nil
	})
}

func (b *Bridge) RemoveValidator(caller common.Address, validator common.Address) error {
	return b.call("removeValidator", func(tx *store.Tx, _ time.Time) ([]events.Event, error) {
		if err := b.checkOwner(caller); err != nil {
			return nil, err
		}
		if err := b.requireRegistry(); err != nil {
			return nil, err
		}
		if err := b.registry.RemoveValidator(tx, validator); err != nil {
			return nil, err
		}
		log.Info().Msgf("Validator %s removed", validator)
		return []events.Event{events.ValidatorRemoved{Validator: validator}}, nil
	})
}

// SetRequiredSignatures changes the registry threshold. Signatures collected
// before the change are verified against the new value.
func (b *Bridge) SetRequiredSignatures(caller common.Address, required uint64) error {
	return b.call("setRequiredSignatures", func(tx *store.Tx, _ time.Time) ([]events.Event, error) {
		if err := b.checkOwner(caller); err != nil {
			return nil, err
		}
		if err := b.requireRegistry(); err != nil {
			return nil, err
		}
		if err := b.registry.SetRequiredSignatures(tx, required); err != nil {
			return nil, err
		}
		log.Info().Msgf("Required signatures set to %d", required)
		return []events.Event{events.RequiredSignaturesChanged{RequiredSignatures: required}}, nil
	})
}

func (b *Bridge) SetCommitConfig(caller common.Address, config optimistic.Config) error {
	return b.call("setCommitConfig", func(tx *store.Tx, _ time.Time) ([]events.Event, error) {
		if err := b.checkOwner(caller); err != nil {
			return nil, err
		}
		if err := b.engine.SetConfig(tx, config); err != nil {
			return nil, err
		}
		log.Info().Msgf("Commit config changed, window %s", config.ChallengeWindow)
		return []events.Event{events.CommitParamsChanged{
			MinimalBond:      config.MinimalBond,
			ChallengeWindow:  uint64(config.ChallengeWindow / time.Second),
			DailyLimit:       config.DailyLimit,
			RejectsThreshold: config.RejectsThreshold,
		}}, nil
	})
}

// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package bridge

import (
	"fmt"
	"math/big"
	"time"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mitchellh/mapstructure"

	"github.com/ChainSafe/utopia-relay/relayer/effects"
	"github.com/ChainSafe/utopia-relay/relayer/limits"
	"github.com/ChainSafe/utopia-relay/relayer/message"
	"github.com/ChainSafe/utopia-relay/relayer/optimistic"
)

const (
	RegistryOracle = "registry"
	MerkleOracle   = "merkle"

	DefaultCallMethod = "relay_execute"
)

type BridgeConfig struct {
	Name               string
	Mode               message.Mode
	Effect             effects.Kind
	Address            common.Address
	Counterpart        common.Address
	Owner              common.Address
	Mediator           common.Address
	IncludeGasPrice    bool
	Oracle             string
	Validators         []common.Address
	RequiredSignatures uint64
	ValidatorSet       message.ValidatorSetUpdate
	Inbound            limits.Limits
	Outbound           limits.Limits
	DecimalShift       limits.DecimalShift
	Commit             optimistic.Config
	SignatureCacheSize int
	GasUnitTime        time.Duration
	CallTargets        []CallTarget
}

// CallTarget is a JSON-RPC endpoint that executes calls addressed to Address.
type CallTarget struct {
	Address common.Address
	URL     string
	Method  string
}

type RawLimitsConfig struct {
	DailyLimit string `mapstructure:"dailyLimit" default:"0"`
	MaxPerTx   string `mapstructure:"maxPerTx" default:"0"`
	MinPerTx   string `mapstructure:"minPerTx" default:"0"`
}

type RawValidatorSetConfig struct {
	Root       string `mapstructure:"root"`
	Threshold  uint64 `mapstructure:"threshold"`
	Expiration uint64 `mapstructure:"expiration"`
}

type RawCommitConfig struct {
	MinimalBond      string `mapstructure:"minimalBond" default:"1000000000000000000"`
	ChallengeWindow  string `mapstructure:"challengeWindow" default:"1h"`
	DailyLimit       uint64 `mapstructure:"dailyLimit" default:"100"`
	RejectsThreshold uint64 `mapstructure:"rejectsThreshold" default:"1"`
}

type RawCallTargetConfig struct {
	Address string `mapstructure:"address"`
	URL     string `mapstructure:"url"`
	Method  string `mapstructure:"method"`
}

type RawBridgeConfig struct {
	Name               string                `mapstructure:"name"`
	Mode               string                `mapstructure:"mode" default:"erc-to-native"`
	Effect             string                `mapstructure:"effect"`
	Address            string                `mapstructure:"address"`
	Counterpart        string                `mapstructure:"counterpart"`
	Owner              string                `mapstructure:"owner"`
	Mediator           string                `mapstructure:"mediator"`
	IncludeGasPrice    bool                  `mapstructure:"includeGasPrice"`
	Oracle             string                `mapstructure:"oracle" default:"registry"`
	Validators         []string              `mapstructure:"validators"`
	RequiredSignatures uint64                `mapstructure:"requiredSignatures"`
	ValidatorSet       RawValidatorSetConfig `mapstructure:"validatorSet"`
	Inbound            RawLimitsConfig       `mapstructure:"inbound"`
	Outbound           RawLimitsConfig       `mapstructure:"outbound"`
	DecimalShift       int                   `mapstructure:"decimalShift"`
	Commit             RawCommitConfig       `mapstructure:"commit"`
	SignatureCacheSize int                   `mapstructure:"signatureCacheSize" default:"4096"`
	GasUnitTime        string                `mapstructure:"gasUnitTime" default:"10us"`
	CallTargets        []RawCallTargetConfig `mapstructure:"callTargets"`
}

func (c *RawBridgeConfig) Validate() error {
	if !common.IsHexAddress(c.Address) {
		return fmt.Errorf("required field bridge.Address invalid: %q", c.Address)
	}
	if !common.IsHexAddress(c.Owner) {
		return fmt.Errorf("required field bridge.Owner invalid: %q", c.Owner)
	}
	if c.Counterpart != "" && !common.IsHexAddress(c.Counterpart) {
		return fmt.Errorf("bridge.Counterpart invalid: %q", c.Counterpart)
	}
	if c.Mediator != "" && !common.IsHexAddress(c.Mediator) {
		return fmt.Errorf("bridge.Mediator invalid: %q", c.Mediator)
	}
	for _, v := range c.Validators {
		if !common.IsHexAddress(v) {
			return fmt.Errorf("invalid validator address %q", v)
		}
	}
	switch c.Oracle {
	case RegistryOracle:
		if len(c.Validators) == 0 {
			return fmt.Errorf("registry oracle requires validators")
		}
		if c.RequiredSignatures == 0 || c.RequiredSignatures > uint64(len(c.Validators)) {
			return fmt.Errorf("requiredSignatures %d invalid for %d validators", c.RequiredSignatures, len(c.Validators))
		}
	case MerkleOracle:
		if c.ValidatorSet.Root == "" {
			return fmt.Errorf("merkle oracle requires validatorSet.root")
		}
	default:
		return fmt.Errorf("unknown oracle %q", c.Oracle)
	}
	if c.SignatureCacheSize <= 0 {
		return fmt.Errorf("signatureCacheSize must be positive")
	}
	for _, t := range c.CallTargets {
		if !common.IsHexAddress(t.Address) {
			return fmt.Errorf("invalid call target address %q", t.Address)
		}
		if t.URL == "" {
			return fmt.Errorf("call target %s requires url", t.Address)
		}
	}
	return nil
}

// NewBridgeConfig decodes and validates an instance of BridgeConfig from
// the raw bridge config
func NewBridgeConfig(rawConfig map[string]interface{}) (*BridgeConfig, error) {
	var c RawBridgeConfig
	err := mapstructure.Decode(rawConfig, &c)
	if err != nil {
		return nil, err
	}

	err = defaults.Set(&c)
	if err != nil {
		return nil, err
	}

	err = c.Validate()
	if err != nil {
		return nil, err
	}

	mode, err := message.ModeFromString(c.Mode)
	if err != nil {
		return nil, err
	}
	effect := effects.Kind(c.Effect)
	if c.Effect == "" {
		effect = defaultEffect(mode)
	}
	if effect == effects.CallKind && c.IncludeGasPrice {
		return nil, fmt.Errorf("includeGasPrice can not be combined with the %s effect", effect)
	}
	gasUnitTime, err := time.ParseDuration(c.GasUnitTime)
	if err != nil {
		return nil, fmt.Errorf("unable to parse gas unit time: %w", err)
	}
	if gasUnitTime <= 0 {
		return nil, fmt.Errorf("gasUnitTime must be positive")
	}
	targets := make([]CallTarget, len(c.CallTargets))
	for i, t := range c.CallTargets {
		method := t.Method
		if method == "" {
			method = DefaultCallMethod
		}
		targets[i] = CallTarget{Address: common.HexToAddress(t.Address), URL: t.URL, Method: method}
	}
	shift, err := limits.NewDecimalShift(c.DecimalShift)
	if err != nil {
		return nil, err
	}
	inbound, err := parseLimits(c.Inbound)
	if err != nil {
		return nil, fmt.Errorf("inbound limits: %w", err)
	}
	outbound, err := parseLimits(c.Outbound)
	if err != nil {
		return nil, fmt.Errorf("outbound limits: %w", err)
	}
	minimalBond, ok := new(big.Int).SetString(c.Commit.MinimalBond, 10)
	if !ok {
		return nil, fmt.Errorf("invalid commit.minimalBond %q", c.Commit.MinimalBond)
	}
	window, err := time.ParseDuration(c.Commit.ChallengeWindow)
	if err != nil {
		return nil, fmt.Errorf("unable to parse commit challenge window: %w", err)
	}

	validators := make([]common.Address, len(c.Validators))
	for i, v := range c.Validators {
		validators[i] = common.HexToAddress(v)
	}

	config := &BridgeConfig{
		Name:               c.Name,
		Mode:               mode,
		Effect:             effect,
		Address:            common.HexToAddress(c.Address),
		Counterpart:        common.HexToAddress(c.Counterpart),
		Owner:              common.HexToAddress(c.Owner),
		Mediator:           common.HexToAddress(c.Mediator),
		IncludeGasPrice:    c.IncludeGasPrice,
		Oracle:             c.Oracle,
		Validators:         validators,
		RequiredSignatures: c.RequiredSignatures,
		ValidatorSet: message.ValidatorSetUpdate{
			Root:       common.HexToHash(c.ValidatorSet.Root),
			Threshold:  c.ValidatorSet.Threshold,
			Expiration: c.ValidatorSet.Expiration,
		},
		Inbound:      inbound,
		Outbound:     outbound,
		DecimalShift: shift,
		Commit: optimistic.Config{
			MinimalBond:      minimalBond,
			ChallengeWindow:  window,
			DailyLimit:       c.Commit.DailyLimit,
			RejectsThreshold: c.Commit.RejectsThreshold,
		},
		SignatureCacheSize: c.SignatureCacheSize,
		GasUnitTime:        gasUnitTime,
		CallTargets:        targets,
	}
	if err := config.Inbound.Validate(); err != nil {
		return nil, fmt.Errorf("inbound limits: %w", err)
	}
	if err := config.Outbound.Validate(); err != nil {
		return nil, fmt.Errorf("outbound limits: %w", err)
	}
	if err := config.Commit.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func parseLimits(raw RawLimitsConfig) (limits.Limits, error) {
	daily, ok := new(big.Int).SetString(raw.DailyLimit, 10)
	if !ok {
		return limits.Limits{}, fmt.Errorf("invalid dailyLimit %q", raw.DailyLimit)
	}
	maxPerTx, ok := new(big.Int).SetString(raw.MaxPerTx, 10)
	if !ok {
		return limits.Limits{}, fmt.Errorf("invalid maxPerTx %q", raw.MaxPerTx)
	}
	minPerTx, ok := new(big.Int).SetString(raw.MinPerTx, 10)
	if !ok {
		return limits.Limits{}, fmt.Errorf("invalid minPerTx %q", raw.MinPerTx)
	}
	return limits.Limits{DailyLimit: daily, MaxPerTx: maxPerTx, MinPerTx: minPerTx}, nil
}

func defaultEffect(mode message.Mode) effects.Kind {
	switch mode {
	case message.ErcToErc, message.NativeToErc, message.TokenMediator:
		return effects.MintKind
	case message.ErcToNative:
		return effects.UnlockKind
	default:
		return effects.CallKind
	}
}

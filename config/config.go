// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/imdario/mergo"
	"github.com/spf13/viper"

	"github.com/ChainSafe/utopia-relay/config/relayer"
)

type Config struct {
	RelayerConfig relayer.RelayerConfig
	BridgeConfig  map[string]interface{}
}

type RawConfig struct {
	RelayerConfig relayer.RawRelayerConfig `mapstructure:"relayer" json:"relayer"`
	BridgeConfig  map[string]interface{}   `mapstructure:"bridge" json:"-"`
}

// GetConfigFromENV reads config from Env variables, validates it and parses
// it into config suitable for application
//
// Properties of RelayerConfig are expected to be defined as separate Env variables
// where Env variable name reflects properties position in structure. Each Env variable needs to be prefixed with UTR.
//
// If you want to set Config.RelayerConfig.CommitExecution.Interval this would
// translate to Env variable named UTR_RELAYER_COMMITEXECUTION_INTERVAL.
// The bridge config is expected as a JSON object in UTR_BRIDGE.
func GetConfigFromENV(config *Config) (*Config, error) {
	rawConfig, err := loadFromEnv()
	if err != nil {
		return config, err
	}

	return processRawConfig(rawConfig, config)
}

// GetConfigFromFile reads config from file, validates it and parses
// it into config suitable for application
func GetConfigFromFile(path string, config *Config) (*Config, error) {
	rawConfig := RawConfig{}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	err := v.ReadInConfig()
	if err != nil {
		return config, err
	}

	err = v.Unmarshal(&rawConfig)
	if err != nil {
		return config, err
	}

	return processRawConfig(rawConfig, config)
}

// processRawConfig applies defaults and merges the bridge config over the
// base bridge config already present in config.
func processRawConfig(rawConfig RawConfig, config *Config) (*Config, error) {
	if err := defaults.Set(&rawConfig); err != nil {
		return config, err
	}

	relayerConfig, err := relayer.NewRelayerConfig(rawConfig.RelayerConfig)
	if err != nil {
		return config, err
	}

	bridgeConfig := rawConfig.BridgeConfig
	if bridgeConfig == nil {
		bridgeConfig = make(map[string]interface{})
	}
	if config.BridgeConfig != nil {
		if err := mergo.Merge(&bridgeConfig, config.BridgeConfig); err != nil {
			return config, err
		}
	}
	if bridgeConfig["address"] == "" || bridgeConfig["address"] == nil {
		return config, fmt.Errorf("bridge 'address' must be provided")
	}

	config.BridgeConfig = bridgeConfig
	config.RelayerConfig = relayerConfig
	return config, nil
}

// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package relayer

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type RelayerConfig struct {
	OpenTelemetryCollectorURL string
	LogLevel                  zerolog.Level
	LogFile                   string
	HealthPort                uint16
	ApiPort                   uint16
	ApiRateLimit              float64
	ApiBurst                  int
	CommitExecution           CommitExecutionConfig
}

type CommitExecutionConfig struct {
	Disabled  bool
	Interval  time.Duration
	GasBudget uint64
}

type RawRelayerConfig struct {
	OpenTelemetryCollectorURL string                   `mapstructure:"OpenTelemetryCollectorURL" json:"opentelemetryCollectorURL"`
	LogLevel                  string                   `mapstructure:"LogLevel" json:"logLevel" default:"info"`
	LogFile                   string                   `mapstructure:"LogFile" json:"logFile" default:"out.log"`
	HealthPort                uint16                   `mapstructure:"HealthPort" json:"healthPort,string" default:"9001"`
	ApiPort                   uint16                   `mapstructure:"ApiPort" json:"apiPort,string" default:"8080"`
	ApiRateLimit              float64                  `mapstructure:"ApiRateLimit" json:"apiRateLimit,string" default:"10"`
	ApiBurst                  int                      `mapstructure:"ApiBurst" json:"apiBurst,string" default:"20"`
	CommitExecution           RawCommitExecutionConfig `mapstructure:"CommitExecution" json:"commitExecution"`
}

type RawCommitExecutionConfig struct {
	Disabled  bool   `mapstructure:"Disabled" json:"disabled,string"`
	Interval  string `mapstructure:"Interval" json:"interval" default:"30s"`
	GasBudget uint64 `mapstructure:"GasBudget" json:"gasBudget,string" default:"200000"`
}

func (c *RawRelayerConfig) Validate() error {
	if c.ApiRateLimit <= 0 {
		return fmt.Errorf("apiRateLimit has to be positive")
	}
	if c.ApiBurst < 1 {
		return fmt.Errorf("apiBurst has to be >=1")
	}
	if c.CommitExecution.GasBudget == 0 {
		return fmt.Errorf("commit execution gas budget has to be positive")
	}
	return nil
}

// NewRelayerConfig parses RawRelayerConfig into RelayerConfig
func NewRelayerConfig(rawConfig RawRelayerConfig) (RelayerConfig, error) {
	config := RelayerConfig{}
	err := rawConfig.Validate()
	if err != nil {
		return config, err
	}

	logLevel, err := zerolog.ParseLevel(rawConfig.LogLevel)
	if err != nil {
		return config, fmt.Errorf("unknown log level: %s", rawConfig.LogLevel)
	}
	config.LogLevel = logLevel

	interval, err := time.ParseDuration(rawConfig.CommitExecution.Interval)
	if err != nil {
		return RelayerConfig{}, fmt.Errorf("unable to parse commit execution interval: %w", err)
	}

	config.LogFile = rawConfig.LogFile
	config.OpenTelemetryCollectorURL = rawConfig.OpenTelemetryCollectorURL
	config.HealthPort = rawConfig.HealthPort
	config.ApiPort = rawConfig.ApiPort
	config.ApiRateLimit = rawConfig.ApiRateLimit
	config.ApiBurst = rawConfig.ApiBurst
	config.CommitExecution = CommitExecutionConfig{
		Disabled:  rawConfig.CommitExecution.Disabled,
		Interval:  interval,
		GasBudget: rawConfig.CommitExecution.GasBudget,
	}
	return config, nil
}

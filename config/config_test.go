// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"github.com/ChainSafe/utopia-relay/config"
	"github.com/ChainSafe/utopia-relay/config/relayer"
)

type GetConfigTestSuite struct {
	suite.Suite
}

func TestRunGetConfigTestSuite(t *testing.T) {
	suite.Run(t, new(GetConfigTestSuite))
}

func (s *GetConfigTestSuite) TearDownTest() {
	os.Clearenv()
}

func (s *GetConfigTestSuite) Test_GetConfigFromFile_InvalidPath() {
	_, err := config.GetConfigFromFile("invalid", &config.Config{})

	s.NotNil(err)
}

func (s *GetConfigTestSuite) Test_GetConfigFromFile() {
	path := filepath.Join(s.T().TempDir(), "config.json")
	err := os.WriteFile(path, []byte(`{
  "relayer": {
    "logLevel": "debug",
    "healthPort": 9500,
    "commitExecution": {"interval": "10s"}
  },
  "bridge": {
    "address": "0xd606A00c1A39dA53EA7Bb3Ab570BBE40b156EB66",
    "mode": "optimistic"
  }
}`), 0o600)
	s.Nil(err)

	cnf, err := config.GetConfigFromFile(path, &config.Config{})

	s.Nil(err)
	s.Equal(relayer.RelayerConfig{
		LogLevel:     zerolog.DebugLevel,
		LogFile:      "out.log",
		HealthPort:   9500,
		ApiPort:      8080,
		ApiRateLimit: 10,
		ApiBurst:     20,
		CommitExecution: relayer.CommitExecutionConfig{
			Interval:  10 * time.Second,
			GasBudget: 200000,
		},
	}, cnf.RelayerConfig)
	s.Equal("optimistic", cnf.BridgeConfig["mode"])
}

func (s *GetConfigTestSuite) Test_GetConfigFromENV() {
	_ = os.Setenv("UTR_BRIDGE", `{
  "address": "0xd606A00c1A39dA53EA7Bb3Ab570BBE40b156EB66",
  "mode": "erc-to-native",
  "requiredSignatures": 2
}`)
	_ = os.Setenv("UTR_RELAYER_HEALTHPORT", "9001")

	cnf, err := config.GetConfigFromENV(&config.Config{BridgeConfig: map[string]interface{}{
		"requiredSignatures": 3,
		"owner":              "0xff93B45308FD417dF303D6515aB04D9e89a750Ca",
	}})

	s.Nil(err)
	s.Equal(config.Config{
		RelayerConfig: relayer.RelayerConfig{
			LogLevel:     zerolog.InfoLevel,
			LogFile:      "out.log",
			HealthPort:   9001,
			ApiPort:      8080,
			ApiRateLimit: 10,
			ApiBurst:     20,
			CommitExecution: relayer.CommitExecutionConfig{
				Interval:  30 * time.Second,
				GasBudget: 200000,
			},
		},
		BridgeConfig: map[string]interface{}{
			"address":            "0xd606A00c1A39dA53EA7Bb3Ab570BBE40b156EB66",
			"mode":               "erc-to-native",
			"requiredSignatures": float64(2),
			"owner":              "0xff93B45308FD417dF303D6515aB04D9e89a750Ca",
		},
	}, *cnf)
}

func (s *GetConfigTestSuite) Test_GetConfigFromENV_MissingBridgeAddress() {
	_ = os.Setenv("UTR_BRIDGE", `{"mode": "erc-to-native"}`)

	_, err := config.GetConfigFromENV(&config.Config{})

	s.NotNil(err)
}

func (s *GetConfigTestSuite) Test_GetConfigFromENV_InvalidLogLevel() {
	_ = os.Setenv("UTR_BRIDGE", `{"address": "0xd606A00c1A39dA53EA7Bb3Ab570BBE40b156EB66"}`)
	_ = os.Setenv("UTR_RELAYER_LOGLEVEL", "loud")

	_, err := config.GetConfigFromENV(&config.Config{})

	s.NotNil(err)
}

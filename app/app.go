// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package app

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/ChainSafe/utopia-relay/api"
	"github.com/ChainSafe/utopia-relay/config"
	"github.com/ChainSafe/utopia-relay/flags"
	"github.com/ChainSafe/utopia-relay/health"
	"github.com/ChainSafe/utopia-relay/jobs"
	"github.com/ChainSafe/utopia-relay/logger"
	"github.com/ChainSafe/utopia-relay/lvldb"
	"github.com/ChainSafe/utopia-relay/metrics"
	"github.com/ChainSafe/utopia-relay/relayer/bridge"
	"github.com/ChainSafe/utopia-relay/relayer/effects"
	"github.com/ChainSafe/utopia-relay/relayer/events"
	"github.com/ChainSafe/utopia-relay/relayer/limits"
	"github.com/ChainSafe/utopia-relay/relayer/message"
)

func Run() error {
	var err error

	configFlag := viper.GetString(flags.ConfigFlagName)
	configuration := &config.Config{}
	if strings.ToLower(configFlag) == "env" {
		configuration, err = config.GetConfigFromENV(configuration)
	} else {
		configuration, err = config.GetConfigFromFile(configFlag, configuration)
	}
	panicOnError(err)

	err = logger.ConfigureLogger(configuration.RelayerConfig.LogLevel, os.Stdout, configuration.RelayerConfig.LogFile)
	panicOnError(err)

	log.Info().Msg("Successfully loaded configuration")

	bridgeConfig, err := bridge.NewBridgeConfig(configuration.BridgeConfig)
	panicOnError(err)

	// the previous instance may still hold the database lock during a
	// rolling restart
	var db *lvldb.LVLDB
	for {
		db, err = lvldb.NewLvlDB(viper.GetString(flags.DBPathFlagName))
		if err != nil {
			log.Error().Err(err).Msg("Unable to open relay database, retry in 10 seconds")
			time.Sleep(10 * time.Second)
		} else {
			log.Info().Msg("Successfully opened relay database")
			break
		}
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relayerName := viper.GetString(flags.NameFlagName)
	if relayerName == "" {
		relayerName = bridgeConfig.Name
	}

	meter, err := metrics.DefaultMeter(ctx, configuration.RelayerConfig.OpenTelemetryCollectorURL, relayerName)
	panicOnError(err)
	relayMetrics, err := metrics.NewRelayMetrics(ctx, meter, relayerName, modeName(bridgeConfig.Mode))
	panicOnError(err)

	router := effects.NewRouter(bridgeConfig.GasUnitTime)
	for _, target := range bridgeConfig.CallTargets {
		client, err := router.DialRPCTarget(ctx, target.Address, target.URL, target.Method)
		panicOnError(err)
		defer client.Close()
		log.Info().Msgf("Registered call target %s at %s", target.Address, target.URL)
	}

	bank := effects.NewBank(db)
	b, err := bridge.NewBridge(
		bridgeConfig,
		db,
		bridge.Collaborators{
			Minter:   bank.IssueMinter(),
			Custody:  bank,
			Caller:   router,
			Treasury: bank,
		},
		events.LogSink{},
		relayMetrics,
		clock.New(),
	)
	panicOnError(err)

	go health.StartHealthEndpoint(configuration.RelayerConfig.HealthPort, func() error {
		_, err := b.Limits(limits.Inbound)
		return err
	})

	errChn := make(chan error, 1)
	go func() {
		err := api.Serve(ctx, b, api.Options{
			Port:      configuration.RelayerConfig.ApiPort,
			RateLimit: configuration.RelayerConfig.ApiRateLimit,
			Burst:     configuration.RelayerConfig.ApiBurst,
		})
		if err != nil {
			errChn <- err
		}
	}()

	commitExecution := configuration.RelayerConfig.CommitExecution
	if b.Mode() == message.Optimistic && !commitExecution.Disabled {
		go jobs.StartCommitExecutionJob(ctx, b, clock.New(), commitExecution.Interval, commitExecution.GasBudget)
	}

	sysErr := make(chan os.Signal, 1)
	signal.Notify(sysErr,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGQUIT)

	log.Info().Str("mode", modeName(bridgeConfig.Mode)).Msgf("Started relayer: %s for bridge %s", relayerName, bridgeConfig.Address)

	select {
	case err := <-errChn:
		log.Error().Err(err).Msg("failed to listen and serve")
		return err
	case sig := <-sysErr:
		log.Info().Msgf("terminating got ` [%v] signal", sig)
		return nil
	}
}

func modeName(mode message.Mode) string {
	for name, m := range message.Modes() {
		if m == mode {
			return name
		}
	}
	return mode.String()
}

func panicOnError(err error) {
	if err != nil {
		panic(err)
	}
}

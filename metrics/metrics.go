// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package metrics

import (
	"context"
	"math/big"

	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"

	"github.com/ChainSafe/utopia-relay/relayer/bridge"
)

type RelayMetrics struct {
	*HostMetrics

	opts api.MeasurementOption

	deposits            api.Int64Counter
	depositedValue      api.Float64Counter
	relayedMessages     api.Int64Counter
	relayedValue        api.Float64Counter
	rejectedCalls       api.Int64Counter
	collectedSignatures api.Int64Counter
	commits             api.Int64Counter
	executions          api.Int64Counter
}

// NewRelayMetrics creates an instance of metrics tracking bridge calls
func NewRelayMetrics(ctx context.Context, meter api.Meter, name string, mode string) (*RelayMetrics, error) {
	opts := api.WithAttributes(attribute.String("relayer", name), attribute.String("mode", mode))
	hostMetrics, err := NewHostMetrics(ctx, meter, opts)
	if err != nil {
		return nil, err
	}

	deposits, err := meter.Int64Counter(
		"relayer.Deposits",
		api.WithDescription("Number of outbound deposits"),
	)
	if err != nil {
		return nil, err
	}
	depositedValue, err := meter.Float64Counter(
		"relayer.DepositedValue",
		api.WithDescription("Value locked by outbound deposits"),
	)
	if err != nil {
		return nil, err
	}
	relayedMessages, err := meter.Int64Counter(
		"relayer.RelayedMessages",
		api.WithDescription("Number of executed inbound messages"),
	)
	if err != nil {
		return nil, err
	}
	relayedValue, err := meter.Float64Counter(
		"relayer.RelayedValue",
		api.WithDescription("Value of executed inbound messages"),
	)
	if err != nil {
		return nil, err
	}
	rejectedCalls, err := meter.Int64Counter(
		"relayer.RejectedCalls",
		api.WithDescription("Number of failed bridge calls by operation and reason"),
	)
	if err != nil {
		return nil, err
	}
	collectedSignatures, err := meter.Int64Counter(
		"relayer.CollectedSignatures",
		api.WithDescription("Number of messages that collected the required signatures"),
	)
	if err != nil {
		return nil, err
	}
	commits, err := meter.Int64Counter(
		"relayer.Commits",
		api.WithDescription("Number of optimistic commits"),
	)
	if err != nil {
		return nil, err
	}
	executions, err := meter.Int64Counter(
		"relayer.Executions",
		api.WithDescription("Number of executed commits by call status"),
	)
	if err != nil {
		return nil, err
	}

	return &RelayMetrics{
		HostMetrics:         hostMetrics,
		opts:                opts,
		deposits:            deposits,
		depositedValue:      depositedValue,
		relayedMessages:     relayedMessages,
		relayedValue:        relayedValue,
		rejectedCalls:       rejectedCalls,
		collectedSignatures: collectedSignatures,
		commits:             commits,
		executions:          executions,
	}, nil
}

func (m *RelayMetrics) TrackDeposit(value *big.Int) {
	m.deposits.Add(context.Background(), 1, m.opts)
	m.depositedValue.Add(context.Background(), toFloat(value), m.opts)
}

func (m *RelayMetrics) TrackRelayedMessage(operation string, value *big.Int) {
	op := api.WithAttributes(attribute.String("operation", operation))
	m.relayedMessages.Add(context.Background(), 1, m.opts, op)
	m.relayedValue.Add(context.Background(), toFloat(value), m.opts, op)
}

func (m *RelayMetrics) TrackRejectedCall(operation string, err error) {
	m.rejectedCalls.Add(
		context.Background(),
		1,
		m.opts,
		api.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("reason", string(bridge.Classify(err))),
		),
	)
}

func (m *RelayMetrics) TrackCollectedSignatures() {
	m.collectedSignatures.Add(context.Background(), 1, m.opts)
}

func (m *RelayMetrics) TrackCommit() {
	m.commits.Add(context.Background(), 1, m.opts)
}

func (m *RelayMetrics) TrackExecution(status bool) {
	m.executions.Add(context.Background(), 1, m.opts, api.WithAttributes(attribute.Bool("status", status)))
}

func toFloat(value *big.Int) float64 {
	if value == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(value).Float64()
	return f
}

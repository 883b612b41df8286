package jobs

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

type CommitExecutor interface {
	MaturedCommits() ([]common.Hash, error)
	Execute(ctx context.Context, id common.Hash, gas uint64) (bool, error)
}

// StartCommitExecutionJob executes matured commits every interval until ctx
// is cancelled.
func StartCommitExecutionJob(ctx context.Context, executor CommitExecutor, clk clock.Clock, interval time.Duration, gas uint64) {
	ticker := clk.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			executed := ExecuteMaturedCommits(ctx, executor, gas)
			if executed > 0 {
				log.Info().Msgf("Executed %d matured commits", executed)
			}
		}
	}
}

// ExecuteMaturedCommits executes every matured commit once and returns the
// number of successful executions. Failures are logged and retried on the
// next run.
func ExecuteMaturedCommits(ctx context.Context, executor CommitExecutor, gas uint64) int {
	ids, err := executor.MaturedCommits()
	if err != nil {
		log.Error().Err(err).Msg("Failed listing matured commits")
		return 0
	}

	executed := 0
	for _, id := range ids {
		status, err := executor.Execute(ctx, id, gas)
		if err != nil {
			log.Warn().Err(err).Str("messageID", id.Hex()).Msg("Failed executing commit")
			continue
		}
		log.Debug().Str("messageID", id.Hex()).Bool("status", status).Msg("Executed commit")
		executed++
	}
	return executed
}

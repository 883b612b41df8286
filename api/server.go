package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/ChainSafe/utopia-relay/relayer/bridge"
	"github.com/ChainSafe/utopia-relay/relayer/signature"
)

const (
	seenRequestsSize = 65536
	shutdownTimeout  = 5 * time.Second
)

type Options struct {
	Port      uint16
	RateLimit float64
	Burst     int
	Now       func() time.Time
}

// NewRouter builds the relay API router around b.
func NewRouter(b *bridge.Bridge, opts Options) (*mux.Router, error) {
	verifier, err := signature.NewVerifier(b.Config().SignatureCacheSize)
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	guard, err := newRequestGuard(verifier, seenRequestsSize, now)
	if err != nil {
		return nil, err
	}
	limiter, err := NewRateLimiter(opts.RateLimit, opts.Burst)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	r.Use(loggingMiddleware, limiter.Middleware)
	h := &Handler{bridge: b, guard: guard}
	h.RegisterRoutes(r)
	return r, nil
}

// Serve runs the relay API until ctx is cancelled.
func Serve(ctx context.Context, b *bridge.Bridge, opts Options) error {
	router, err := NewRouter(b, opts)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed shutting down api server")
		}
	}()

	log.Info().Msgf("Starting relay api on port %d", opts.Port)
	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
